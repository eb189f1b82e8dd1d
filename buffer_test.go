package microrpc_test

import (
	"testing"

	"github.com/MegaGrindStone/go-microrpc"
)

func TestBufferAppend(t *testing.T) {
	b := microrpc.NewBuffer(make([]byte, 16))

	b.AppendString("hello")
	b.Append([]byte(" world"))

	if got := b.Len(); got != 11 {
		t.Errorf("expected length 11, got %d", got)
	}
	if got := b.Cap(); got != 16 {
		t.Errorf("expected capacity 16, got %d", got)
	}
	if b.Truncated() {
		t.Errorf("expected no truncation")
	}
	if got := string(b.Bytes()); got != "hello world" {
		t.Errorf("expected hello world, got %s", got)
	}
}

func TestBufferTruncation(t *testing.T) {
	b := microrpc.NewBuffer(make([]byte, 8))

	b.AppendString("hello")
	// The straddling append keeps the bytes that still fit.
	b.AppendString(" world")

	if got := b.Len(); got != 11 {
		t.Errorf("expected logical length 11, got %d", got)
	}
	if !b.Truncated() {
		t.Errorf("expected truncation")
	}
	if got := string(b.Bytes()); got != "hello wo" {
		t.Errorf("expected hello wo, got %s", got)
	}

	// Appends past a full buffer still advance the logical length.
	b.AppendString("!")
	if got := b.Len(); got != 12 {
		t.Errorf("expected logical length 12, got %d", got)
	}
	if got := string(b.Bytes()); got != "hello wo" {
		t.Errorf("expected hello wo, got %s", got)
	}
}

func TestBufferFinalize(t *testing.T) {
	type testCase struct {
		name     string
		capacity int
		input    string
		want     string
	}

	testCases := []testCase{
		{name: "fits", capacity: 8, input: "abc", want: "abc"},
		{name: "overflows", capacity: 8, input: "0123456789", want: "0123456"},
		{name: "exact fit loses a byte to the terminator", capacity: 4, input: "abcd", want: "abc"},
		{name: "one below capacity", capacity: 4, input: "abc", want: "abc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			backing := make([]byte, tc.capacity)
			b := microrpc.NewBuffer(backing)
			b.AppendString(tc.input)

			got := b.Finalize()
			if string(got) != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
			if backing[len(got)] != 0 {
				t.Errorf("expected terminator after %d bytes, got %d", len(got), backing[len(got)])
			}
		})
	}

	var empty microrpc.Buffer
	if got := empty.Finalize(); got != nil {
		t.Errorf("expected nil from zero-capacity buffer, got %q", got)
	}
}

func TestBufferReset(t *testing.T) {
	b := microrpc.NewBuffer(make([]byte, 8))

	b.AppendString("0123456789")
	if !b.Truncated() {
		t.Fatalf("expected truncation before reset")
	}

	b.Reset()
	if got := b.Len(); got != 0 {
		t.Errorf("expected length 0, got %d", got)
	}
	if b.Truncated() {
		t.Errorf("expected no truncation after reset")
	}

	b.AppendString("ok")
	if got := string(b.Bytes()); got != "ok" {
		t.Errorf("expected ok, got %s", got)
	}
}
