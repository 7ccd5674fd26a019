package socklinelib

import "bytes"

// buffer accumulates received bytes at the tail and hands out frames from
// the head. Single-writer (the receive loop), single-reader (the one
// in-flight read operation); the owning conn's mutex covers both sides.
type buffer struct {
	data []byte
}

func (b *buffer) Append(p []byte) {
	b.data = append(b.data, p...)
}

// Index reports the offset of the first occurrence of pattern, or -1.
// A pattern split across appends is only found once fully present.
func (b *buffer) Index(pattern []byte) int {
	return bytes.Index(b.data, pattern)
}

// Next removes and returns the first n bytes. Callers must establish
// Len() >= n first.
func (b *buffer) Next(n int) []byte {
	out := make([]byte, n)
	copy(out, b.data[:n])
	b.data = b.data[:copy(b.data, b.data[n:])]
	return out
}

func (b *buffer) Len() int { return len(b.data) }

// Bytes exposes the buffered content without consuming it.
func (b *buffer) Bytes() []byte { return b.data }

// Reset discards buffered content. It does not touch the owning conn's
// terminal state.
func (b *buffer) Reset() { b.data = b.data[:0] }
