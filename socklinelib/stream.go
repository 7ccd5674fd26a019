package socklinelib

import (
	"context"
	"errors"
)

// Lines returns an iterator over line-framed replies. Iteration ends
// cleanly when the peer closes the connection; any other failure is
// reported by Err. The iterator is bound to the connection it starts on
// and does not survive a reconnect, so buffered frames are still drained
// after the peer closes. Each frame read runs under the client's Timeout;
// a frame timeout ends iteration with a TimeoutError and leaves the
// connection open.
func (c *Client) Lines(ctx context.Context) *LineIter {
	eng, err := c.ensure(ctx)
	if err != nil {
		return &LineIter{err: err, done: true}
	}
	eol := c.eol()
	return &LineIter{next: func() ([]byte, error) {
		return c.frame(ctx, eng, "lines", func(ctx context.Context) ([]byte, error) {
			return eng.ReadUntil(ctx, eol)
		})
	}}
}

// Blocks returns an iterator over fixed-size frames of size bytes,
// terminating the same way Lines does.
func (c *Client) Blocks(ctx context.Context, size int) *LineIter {
	eng, err := c.ensure(ctx)
	if err != nil {
		return &LineIter{err: err, done: true}
	}
	return &LineIter{next: func() ([]byte, error) {
		return c.frame(ctx, eng, "blocks", func(ctx context.Context) ([]byte, error) {
			return eng.ReadExactly(ctx, size)
		})
	}}
}

// frame applies do's per-call budget and teardown policy to one iterator
// read, minus the reconnect guard: the iterator stays on its connection.
// Terminal errors, the orderly close included, release the conn here so
// the socket does not linger until the next ensure.
func (c *Client) frame(ctx context.Context, eng *conn, op string, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	tctx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	out, err := fn(tctx)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, &TimeoutError{Op: op, Addr: c.Addr(), Budget: c.Timeout}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return nil, err
	}

	c.teardown(eng)
	return nil, err
}

// LineIter walks a lazy, finite sequence of frames in the bufio.Scanner
// style: Next advances, Bytes holds the current frame, Err reports any
// failure other than an orderly close.
type LineIter struct {
	next func() ([]byte, error)
	cur  []byte
	err  error
	done bool
}

func (it *LineIter) Next() bool {
	if it.done {
		return false
	}
	frame, err := it.next()
	if err != nil {
		it.done = true
		if !errors.Is(err, ErrConnectionClosed) {
			it.err = err
		}
		return false
	}
	it.cur = frame
	return true
}

func (it *LineIter) Bytes() []byte { return it.cur }

func (it *LineIter) Err() error { return it.err }
