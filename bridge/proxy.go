package bridge

import "context"

// Proxy forwards every operation onto the target's dispatch queue and
// blocks for the result. Operations submitted from one goroutine run in
// submission order; submissions from different goroutines are serialized
// in arrival order. Target errors pass through unchanged.
//
// The status getters (Connected, ConnectionCount, InWaiting) have no error
// channel, so on a stopped bridge they return the zero value instead of
// ErrBridgeDead. Callers that need to tell the two apart must use an
// error-returning operation.
type Proxy struct {
	b      *Bridge
	target Ops
}

func (p *Proxy) Open(ctx context.Context) error {
	var err error
	if serr := p.b.call(p.target, func() { err = p.target.Open(ctx) }); serr != nil {
		return serr
	}
	return err
}

func (p *Proxy) Close() error {
	var err error
	if serr := p.b.call(p.target, func() { err = p.target.Close() }); serr != nil {
		return serr
	}
	return err
}

func (p *Proxy) Connected() bool {
	var ok bool
	if serr := p.b.call(p.target, func() { ok = p.target.Connected() }); serr != nil {
		return false
	}
	return ok
}

func (p *Proxy) ConnectionCount() uint64 {
	var n uint64
	if serr := p.b.call(p.target, func() { n = p.target.ConnectionCount() }); serr != nil {
		return 0
	}
	return n
}

func (p *Proxy) InWaiting() int {
	var n int
	if serr := p.b.call(p.target, func() { n = p.target.InWaiting() }); serr != nil {
		return 0
	}
	return n
}

func (p *Proxy) Reset() {
	_ = p.b.call(p.target, func() { p.target.Reset() })
}

func (p *Proxy) Read(ctx context.Context, n int) ([]byte, error) {
	var out []byte
	var err error
	if serr := p.b.call(p.target, func() { out, err = p.target.Read(ctx, n) }); serr != nil {
		return nil, serr
	}
	return out, err
}

func (p *Proxy) ReadLine(ctx context.Context) ([]byte, error) {
	var out []byte
	var err error
	if serr := p.b.call(p.target, func() { out, err = p.target.ReadLine(ctx) }); serr != nil {
		return nil, serr
	}
	return out, err
}

func (p *Proxy) ReadUntil(ctx context.Context, sep []byte) ([]byte, error) {
	var out []byte
	var err error
	if serr := p.b.call(p.target, func() { out, err = p.target.ReadUntil(ctx, sep) }); serr != nil {
		return nil, serr
	}
	return out, err
}

func (p *Proxy) ReadExactly(ctx context.Context, n int) ([]byte, error) {
	var out []byte
	var err error
	if serr := p.b.call(p.target, func() { out, err = p.target.ReadExactly(ctx, n) }); serr != nil {
		return nil, serr
	}
	return out, err
}

func (p *Proxy) ReadLines(ctx context.Context, n int) ([][]byte, error) {
	var out [][]byte
	var err error
	if serr := p.b.call(p.target, func() { out, err = p.target.ReadLines(ctx, n) }); serr != nil {
		return nil, serr
	}
	return out, err
}

func (p *Proxy) ReadAvailable(ctx context.Context) ([]byte, error) {
	var out []byte
	var err error
	if serr := p.b.call(p.target, func() { out, err = p.target.ReadAvailable(ctx) }); serr != nil {
		return nil, serr
	}
	return out, err
}

func (p *Proxy) Write(ctx context.Context, data []byte) error {
	var err error
	if serr := p.b.call(p.target, func() { err = p.target.Write(ctx, data) }); serr != nil {
		return serr
	}
	return err
}

func (p *Proxy) WriteLines(ctx context.Context, lines ...[]byte) error {
	var err error
	if serr := p.b.call(p.target, func() { err = p.target.WriteLines(ctx, lines...) }); serr != nil {
		return serr
	}
	return err
}

func (p *Proxy) WriteRead(ctx context.Context, data []byte, n int) ([]byte, error) {
	var out []byte
	var err error
	if serr := p.b.call(p.target, func() { out, err = p.target.WriteRead(ctx, data, n) }); serr != nil {
		return nil, serr
	}
	return out, err
}

func (p *Proxy) WriteReadLine(ctx context.Context, data []byte) ([]byte, error) {
	var out []byte
	var err error
	if serr := p.b.call(p.target, func() { out, err = p.target.WriteReadLine(ctx, data) }); serr != nil {
		return nil, serr
	}
	return out, err
}

func (p *Proxy) WriteReadLines(ctx context.Context, data []byte, n int) ([][]byte, error) {
	var out [][]byte
	var err error
	if serr := p.b.call(p.target, func() { out, err = p.target.WriteReadLines(ctx, data, n) }); serr != nil {
		return nil, serr
	}
	return out, err
}

func (p *Proxy) WritelinesReadlines(ctx context.Context, lines ...[]byte) ([][]byte, error) {
	var out [][]byte
	var err error
	if serr := p.b.call(p.target, func() { out, err = p.target.WritelinesReadlines(ctx, lines...) }); serr != nil {
		return nil, serr
	}
	return out, err
}
