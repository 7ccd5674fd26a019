package bridge

import (
	"context"
	"errors"
	"time"
)

// ErrWaitTimeout reports that a Deferred was not resolved within the
// waiting budget. The operation keeps running; Wait can be called again.
var ErrWaitTimeout = errors.New("bridge: deferred result wait timeout")

// Deferred is the handle for an operation submitted without waiting.
type Deferred struct {
	done  chan struct{}
	bytes []byte
	lines [][]byte
	err   error
}

func newDeferred() *Deferred {
	return &Deferred{done: make(chan struct{})}
}

func (d *Deferred) resolve(bytes []byte, lines [][]byte, err error) {
	d.bytes = bytes
	d.lines = lines
	d.err = err
	close(d.done)
}

func failedDeferred(err error) *Deferred {
	d := newDeferred()
	d.resolve(nil, nil, err)
	return d
}

// Wait blocks until the operation has run and returns its error.
func (d *Deferred) Wait() error {
	<-d.done
	return d.err
}

// WaitTimeout is Wait bounded by timeout.
func (d *Deferred) WaitTimeout(timeout time.Duration) error {
	t := timerPool.acquire(timeout)
	defer timerPool.release(t)

	select {
	case <-d.done:
		return d.err
	case <-t.C:
		return ErrWaitTimeout
	}
}

// Bytes waits and returns the single-frame result.
func (d *Deferred) Bytes() ([]byte, error) {
	<-d.done
	return d.bytes, d.err
}

// Lines waits and returns the multi-frame result.
func (d *Deferred) Lines() ([][]byte, error) {
	<-d.done
	return d.lines, d.err
}

// DeferredProxy forwards operations onto the target's dispatch queue and
// returns immediately; results are collected through the Deferred. The
// queue still runs one operation at a time in submission order.
type DeferredProxy struct {
	b      *Bridge
	target Ops
}

func (p *DeferredProxy) submit(fn func(d *Deferred)) *Deferred {
	d := newDeferred()
	if err := p.b.dispatch(p.target, func() { fn(d) }); err != nil {
		return failedDeferred(err)
	}
	return d
}

func (p *DeferredProxy) Open(ctx context.Context) *Deferred {
	return p.submit(func(d *Deferred) { d.resolve(nil, nil, p.target.Open(ctx)) })
}

func (p *DeferredProxy) Close() *Deferred {
	return p.submit(func(d *Deferred) { d.resolve(nil, nil, p.target.Close()) })
}

func (p *DeferredProxy) Read(ctx context.Context, n int) *Deferred {
	return p.submit(func(d *Deferred) {
		out, err := p.target.Read(ctx, n)
		d.resolve(out, nil, err)
	})
}

func (p *DeferredProxy) ReadLine(ctx context.Context) *Deferred {
	return p.submit(func(d *Deferred) {
		out, err := p.target.ReadLine(ctx)
		d.resolve(out, nil, err)
	})
}

func (p *DeferredProxy) ReadUntil(ctx context.Context, sep []byte) *Deferred {
	return p.submit(func(d *Deferred) {
		out, err := p.target.ReadUntil(ctx, sep)
		d.resolve(out, nil, err)
	})
}

func (p *DeferredProxy) ReadExactly(ctx context.Context, n int) *Deferred {
	return p.submit(func(d *Deferred) {
		out, err := p.target.ReadExactly(ctx, n)
		d.resolve(out, nil, err)
	})
}

func (p *DeferredProxy) ReadLines(ctx context.Context, n int) *Deferred {
	return p.submit(func(d *Deferred) {
		out, err := p.target.ReadLines(ctx, n)
		d.resolve(nil, out, err)
	})
}

func (p *DeferredProxy) ReadAvailable(ctx context.Context) *Deferred {
	return p.submit(func(d *Deferred) {
		out, err := p.target.ReadAvailable(ctx)
		d.resolve(out, nil, err)
	})
}

func (p *DeferredProxy) Write(ctx context.Context, data []byte) *Deferred {
	return p.submit(func(d *Deferred) { d.resolve(nil, nil, p.target.Write(ctx, data)) })
}

func (p *DeferredProxy) WriteLines(ctx context.Context, lines ...[]byte) *Deferred {
	return p.submit(func(d *Deferred) { d.resolve(nil, nil, p.target.WriteLines(ctx, lines...)) })
}

func (p *DeferredProxy) WriteRead(ctx context.Context, data []byte, n int) *Deferred {
	return p.submit(func(d *Deferred) {
		out, err := p.target.WriteRead(ctx, data, n)
		d.resolve(out, nil, err)
	})
}

func (p *DeferredProxy) WriteReadLine(ctx context.Context, data []byte) *Deferred {
	return p.submit(func(d *Deferred) {
		out, err := p.target.WriteReadLine(ctx, data)
		d.resolve(out, nil, err)
	})
}

func (p *DeferredProxy) WriteReadLines(ctx context.Context, data []byte, n int) *Deferred {
	return p.submit(func(d *Deferred) {
		out, err := p.target.WriteReadLines(ctx, data, n)
		d.resolve(nil, out, err)
	})
}

func (p *DeferredProxy) WritelinesReadlines(ctx context.Context, lines ...[]byte) *Deferred {
	return p.submit(func(d *Deferred) {
		out, err := p.target.WritelinesReadlines(ctx, lines...)
		d.resolve(nil, out, err)
	})
}
