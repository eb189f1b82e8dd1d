package microrpc

import "strconv"

const (
	v2ResponsePrefix = `{"jsonrpc": "2.0"`
	v1ResponsePrefix = `{`

	// v2RequestMarker is what a whitespace-stripped 2.0 request starts with.
	// It decides the error dialect when parsing failed before the request's
	// own jsonrpc member could be read.
	v2RequestMarker = `{"jsonrpc":"2.0",`
)

// ResponseWriter composes the response fragment for a single request into the
// exchange's bounded response buffer. A handler must call exactly one of
// Result or Error, exactly once; the writer does not enforce this. For
// notifications both calls are no-ops, so a batch of notifications yields an
// empty (or bare "[]") response.
type ResponseWriter struct {
	buf          *Buffer
	id           []byte
	v2           bool
	notification bool
}

// Result writes a success response around text, which must already be valid
// JSON. The id is echoed byte-for-byte as it appeared in the request, so a
// hex or octal id keeps its original spelling.
func (w *ResponseWriter) Result(text string) {
	if w.notification {
		return
	}
	if w.buf.Len() > 2 { // not the first fragment of a batch
		w.buf.AppendString(", ")
	}
	if w.v2 {
		w.buf.AppendString(v2ResponsePrefix)
	} else {
		// 1.x responses carry an error member even on success.
		w.buf.AppendString(v1ResponsePrefix)
		w.buf.AppendString(`"error": null`)
	}
	if w.id != nil {
		w.buf.AppendString(`, "id": `)
		w.buf.Append(w.id)
	}
	w.buf.AppendString(`, "result": `)
	w.buf.AppendString(text)
	w.buf.AppendString("}")
}

// Error writes an error response. Codes from the standard catalog use their
// canonical message and ignore the caller's; any other code is formatted as a
// signed decimal with the caller's message. The id member is always present,
// echoing the request id when one was captured and null otherwise.
func (w *ResponseWriter) Error(code ErrorCode, message string) {
	if w.notification {
		return
	}
	if msg, ok := catalogMessage(code); ok {
		message = msg
	}
	if w.buf.Len() > 2 { // not the first fragment of a batch
		w.buf.AppendString(", ")
	}
	if w.v2 {
		w.buf.AppendString(v2ResponsePrefix)
		w.buf.AppendString(", ")
	} else {
		w.buf.AppendString(v1ResponsePrefix)
	}
	w.buf.AppendString(`"error": {"code": `)
	var tmp [20]byte
	w.buf.Append(strconv.AppendInt(tmp[:0], int64(code), 10))
	w.buf.AppendString(`, "message": "`)
	w.buf.AppendString(message)
	w.buf.AppendString(`"}`)
	w.buf.AppendString(`, "id": `)
	if w.id != nil {
		w.buf.Append(w.id)
	} else {
		w.buf.AppendString("null")
	}
	w.buf.AppendString("}")
}

// sniffV2 reports whether raw starts with the 2.0 request marker once
// whitespace is stripped. Only the first filtered bytes are compared; the
// scan never looks past a mismatch.
func sniffV2(raw []byte) bool {
	n := 0
	for _, c := range raw {
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		if c != v2RequestMarker[n] {
			return false
		}
		n++
		if n == len(v2RequestMarker) {
			return true
		}
	}
	return false
}
