package socklinelib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferAppendNext(t *testing.T) {
	var b buffer
	require.Zero(t, b.Len())

	b.Append([]byte("hello "))
	b.Append([]byte("world"))
	require.Equal(t, 11, b.Len())

	require.Equal(t, []byte("hello world"), b.Bytes())

	out := b.Next(6)
	require.Equal(t, []byte("hello "), out)
	require.Equal(t, 5, b.Len())
	require.Equal(t, []byte("world"), b.Bytes())

	out = b.Next(5)
	require.Equal(t, []byte("world"), out)
	require.Zero(t, b.Len())
}

func TestBufferNextCopiesOut(t *testing.T) {
	var b buffer
	b.Append([]byte("abcdef"))

	out := b.Next(3)
	b.Append([]byte("xyz"))
	require.Equal(t, []byte("abc"), out)
	require.Equal(t, []byte("def"), b.Next(3))
}

func TestBufferIndexSplitPattern(t *testing.T) {
	// The pattern must only be found once every byte of it has arrived,
	// regardless of how the appends split it.
	payload := []byte("command\r\nrest")
	pattern := []byte("\r\n")

	for split := 0; split <= len(payload); split++ {
		var b buffer
		b.Append(payload[:split])
		if i := b.Index(pattern); i >= 0 {
			require.GreaterOrEqual(t, split, 9, "split=%d", split)
		}
		b.Append(payload[split:])
		require.Equal(t, 7, b.Index(pattern), "split=%d", split)
	}
}

func TestBufferReset(t *testing.T) {
	var b buffer
	b.Append([]byte("stale"))
	b.Reset()
	require.Zero(t, b.Len())
	require.Equal(t, -1, b.Index([]byte("\n")))

	b.Append([]byte("fresh\n"))
	require.Equal(t, 5, b.Index([]byte("\n")))
}
