package socklinelib

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const readChunkSize = 16 * 1024

// conn bridges one live TCP connection to the frame buffer. Exactly one
// receive loop appends at the tail and records the terminal condition;
// reconnection is the client's job, which always builds a fresh conn.
type conn struct {
	nc  net.Conn
	log zerolog.Logger

	onConnectionLost func(error)
	onEOFReceived    func()

	mu   sync.Mutex
	buf  buffer
	term error // terminal condition, set once by the receive loop

	wake chan struct{} // level-triggered data/terminal signal
	done chan struct{} // closed when the receive loop exits

	closeOnce sync.Once
}

func newConn(nc net.Conn, log zerolog.Logger, onLost func(error), onEOF func()) *conn {
	c := &conn{
		nc:               nc,
		log:              log,
		onConnectionLost: onLost,
		onEOFReceived:    onEOF,
		wake:             make(chan struct{}, 1),
		done:             make(chan struct{}),
	}
	go c.receiveLoop()
	return c
}

func (c *conn) receiveLoop() {
	var term error
	chunk := make([]byte, readChunkSize)
	for {
		n, err := c.nc.Read(chunk)
		if n > 0 {
			c.mu.Lock()
			c.buf.Append(chunk[:n])
			c.mu.Unlock()
			c.log.Debug().Int("bytes", n).Msg("received")
			c.signal()
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			term = ErrConnectionClosed
		} else {
			term = &ConnectionLostError{Err: err}
		}
		break
	}

	c.mu.Lock()
	c.term = term
	c.mu.Unlock()
	c.signal()

	// done closes before the callbacks fire, so a callback may call Close
	// (which waits on done) without deadlocking.
	close(c.done)
	c.log.Debug().Err(term).Msg("receive loop done")

	if errors.Is(term, ErrConnectionClosed) {
		runCallback(c.log, "on_eof_received", c.onEOFReceived)
	} else if c.onConnectionLost != nil {
		runCallback(c.log, "on_connection_lost", func() { c.onConnectionLost(term) })
	}
}

func (c *conn) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// waitData suspends until the receive loop signals new bytes or a terminal
// condition, or ctx expires. Callers re-check the buffer after a wake.
func (c *conn) waitData(ctx context.Context) error {
	select {
	case <-c.wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Alive reports whether the receive loop is still feeding the buffer.
func (c *conn) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.term == nil
}

func (c *conn) InWaiting() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len()
}

// Reset discards buffered bytes. The terminal condition, if any, stays.
func (c *conn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Reset()
}

// ReadUntil consumes and returns bytes up to and including the first
// occurrence of sep.
func (c *conn) ReadUntil(ctx context.Context, sep []byte) ([]byte, error) {
	for {
		c.mu.Lock()
		if i := c.buf.Index(sep); i >= 0 {
			out := c.buf.Next(i + len(sep))
			c.mu.Unlock()
			return out, nil
		}
		term := c.term
		c.mu.Unlock()
		if term != nil {
			return nil, term
		}
		if err := c.waitData(ctx); err != nil {
			return nil, err
		}
	}
}

// ReadExactly consumes and returns exactly n bytes.
func (c *conn) ReadExactly(ctx context.Context, n int) ([]byte, error) {
	for {
		c.mu.Lock()
		if c.buf.Len() >= n {
			out := c.buf.Next(n)
			c.mu.Unlock()
			return out, nil
		}
		term := c.term
		c.mu.Unlock()
		if term != nil {
			return nil, term
		}
		if err := c.waitData(ctx); err != nil {
			return nil, err
		}
	}
}

// Read returns up to n buffered bytes, waiting for at least one byte.
// n < 0 drains the stream until the peer closes it.
func (c *conn) Read(ctx context.Context, n int) ([]byte, error) {
	if n < 0 {
		for {
			c.mu.Lock()
			term := c.term
			c.mu.Unlock()
			if errors.Is(term, ErrConnectionClosed) {
				c.mu.Lock()
				out := c.buf.Next(c.buf.Len())
				c.mu.Unlock()
				return out, nil
			}
			if term != nil {
				return nil, term
			}
			if err := c.waitData(ctx); err != nil {
				return nil, err
			}
		}
	}

	for {
		c.mu.Lock()
		if c.buf.Len() > 0 {
			k := c.buf.Len()
			if k > n {
				k = n
			}
			out := c.buf.Next(k)
			c.mu.Unlock()
			return out, nil
		}
		term := c.term
		c.mu.Unlock()
		if term != nil {
			return nil, term
		}
		if err := c.waitData(ctx); err != nil {
			return nil, err
		}
	}
}

// ReadAvailable returns and clears whatever is buffered, possibly nothing.
// It never suspends.
func (c *conn) ReadAvailable() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Next(c.buf.Len())
}

// Write performs a full send. Failures are reported, not retried.
func (c *conn) Write(ctx context.Context, p []byte) error {
	if dl, ok := ctx.Deadline(); ok {
		_ = c.nc.SetWriteDeadline(dl)
		defer c.nc.SetWriteDeadline(time.Time{})
	}
	if _, err := c.nc.Write(p); err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return context.DeadlineExceeded
		}
		return &ConnectionLostError{Err: err}
	}
	return nil
}

// Close releases the socket and waits for the receive loop's terminal
// state. The loop's lost/eof callback may still be running when Close
// returns. Idempotent.
func (c *conn) Close() {
	c.closeOnce.Do(func() {
		_ = c.nc.Close()
	})
	<-c.done
}
