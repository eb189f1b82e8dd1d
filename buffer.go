package microrpc

// Buffer is an append-only byte writer over a caller-owned fixed backing
// slice. Appends advance the logical length by the full intended amount but
// copy only the bytes that still fit, so the buffer never grows and never
// writes past its capacity. After a sequence of appends, Len reports how long
// the output would have been had it fit, which lets a caller detect truncation
// without double-buffering.
type Buffer struct {
	buf []byte
	n   int
}

// NewBuffer returns a Buffer writing into backing. The buffer's capacity is
// fixed at len(backing) for its lifetime.
func NewBuffer(backing []byte) Buffer {
	return Buffer{buf: backing}
}

// Append writes p at the current logical length. Bytes beyond capacity are
// dropped; the logical length advances by len(p) regardless.
func (b *Buffer) Append(p []byte) {
	if b.n < len(b.buf) {
		copy(b.buf[b.n:], p)
	}
	b.n += len(p)
}

// AppendString writes s at the current logical length, with the same
// truncation behavior as Append.
func (b *Buffer) AppendString(s string) {
	if b.n < len(b.buf) {
		copy(b.buf[b.n:], s)
	}
	b.n += len(s)
}

// Len returns the logical length: the total number of bytes appended, whether
// or not they fit.
func (b *Buffer) Len() int {
	return b.n
}

// Cap returns the size of the backing slice.
func (b *Buffer) Cap() int {
	return len(b.buf)
}

// Truncated reports whether appended bytes were dropped because the logical
// length exceeded capacity.
func (b *Buffer) Truncated() bool {
	return b.n > len(b.buf)
}

// Bytes returns the written prefix: the appended bytes that fit. It does not
// include the terminator written by Finalize.
func (b *Buffer) Bytes() []byte {
	if b.n < len(b.buf) {
		return b.buf[:b.n]
	}
	return b.buf
}

// Reset rewinds the logical length to zero, keeping the backing slice.
func (b *Buffer) Reset() {
	b.n = 0
}

// Finalize zero-terminates the buffer at min(Len, Cap-1) and returns the bytes
// before the terminator. When the output filled the buffer, the terminator
// claims the last writable byte. A zero-capacity buffer finalizes to nil.
func (b *Buffer) Finalize() []byte {
	if len(b.buf) == 0 {
		return nil
	}
	end := b.n
	if end > len(b.buf)-1 {
		end = len(b.buf) - 1
	}
	b.buf[end] = 0
	return b.buf[:end]
}
