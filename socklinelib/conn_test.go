package socklinelib

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestConn(onLost func(error), onEOF func()) (*conn, net.Conn) {
	client, server := net.Pipe()
	return newConn(client, zerolog.Nop(), onLost, onEOF), server
}

func TestConnReadUntilAcrossArrivals(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, server := newTestConn(nil, nil)
	defer c.Close()
	defer server.Close()

	go func() {
		server.Write([]byte("par"))
		time.Sleep(10 * time.Millisecond)
		server.Write([]byte("tial\nnext"))
	}()

	out, err := c.ReadUntil(context.Background(), []byte("\n"))
	require.NoError(t, err)
	require.Equal(t, []byte("partial\n"), out)
	require.True(t, c.Alive())
}

func TestConnReadExactlySplit(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, server := newTestConn(nil, nil)
	defer c.Close()
	defer server.Close()

	go func() {
		server.Write([]byte("abc"))
		time.Sleep(10 * time.Millisecond)
		server.Write([]byte("defgh"))
	}()

	out, err := c.ReadExactly(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, []byte("abcde"), out)

	out, err = c.ReadExactly(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, []byte("fgh"), out)
}

func TestConnReadDrainsUntilEOF(t *testing.T) {
	defer goleak.VerifyNone(t)

	var eofs uint32
	c, server := newTestConn(nil, func() { atomic.AddUint32(&eofs, 1) })
	defer c.Close()

	go func() {
		server.Write([]byte("every"))
		server.Write([]byte("thing"))
		server.Close()
	}()

	out, err := c.Read(context.Background(), -1)
	require.NoError(t, err)
	require.Equal(t, []byte("everything"), out)
	require.False(t, c.Alive())
	require.Eventually(t, func() bool { return atomic.LoadUint32(&eofs) == 1 },
		time.Second, 5*time.Millisecond)
}

func TestConnReadAtMost(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, server := newTestConn(nil, nil)
	defer c.Close()
	defer server.Close()

	go server.Write([]byte("0123456789"))

	out, err := c.Read(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, []byte("0123"), out)

	// The rest stays buffered.
	require.Eventually(t, func() bool { return c.InWaiting() == 6 },
		time.Second, 5*time.Millisecond)

	out, err = c.Read(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, []byte("456789"), out)
}

func TestConnEOFTerminatesReads(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, server := newTestConn(nil, nil)
	defer c.Close()
	server.Close()

	_, err := c.ReadUntil(context.Background(), []byte("\n"))
	require.ErrorIs(t, err, ErrConnectionClosed)
	require.False(t, c.Alive())
}

func TestConnLostFiresCallback(t *testing.T) {
	defer goleak.VerifyNone(t)

	lost := make(chan error, 1)
	c, server := newTestConn(func(err error) { lost <- err }, nil)
	defer server.Close()

	// Closing our own side is an abortive end, not an orderly EOF.
	c.Close()

	select {
	case err := <-lost:
		var cle *ConnectionLostError
		require.ErrorAs(t, err, &cle)
	case <-time.After(time.Second):
		t.Fatal("connection lost callback never fired")
	}
	require.False(t, c.Alive())
}

func TestConnWaitDataHonorsContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, server := newTestConn(nil, nil)
	defer c.Close()
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.ReadUntil(ctx, []byte("\n"))
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.True(t, c.Alive())
}

func TestConnResetKeepsBufferEmpty(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, server := newTestConn(nil, nil)
	defer c.Close()
	defer server.Close()

	go server.Write([]byte("stale bytes"))
	require.Eventually(t, func() bool { return c.InWaiting() > 0 },
		time.Second, 5*time.Millisecond)

	c.Reset()
	require.Zero(t, c.InWaiting())
	require.True(t, c.Alive())
}

func TestConnReadAvailable(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, server := newTestConn(nil, nil)
	defer c.Close()
	defer server.Close()

	require.Empty(t, c.ReadAvailable())

	go server.Write([]byte("burst"))
	require.Eventually(t, func() bool { return c.InWaiting() == 5 },
		time.Second, 5*time.Millisecond)

	require.Equal(t, []byte("burst"), c.ReadAvailable())
	require.Zero(t, c.InWaiting())
}

func TestConnCloseIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, server := newTestConn(nil, nil)
	defer server.Close()

	c.Close()
	c.Close()
	require.False(t, c.Alive())
}
