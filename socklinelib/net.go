package socklinelib

import (
	"context"
	"net"
	"time"
)

// IP type-of-service hints (RFC 791). Low delay is the default for
// request/reply traffic.
const (
	TOSNormal      = 0x00
	TOSLowDelay    = 0x10
	TOSThroughput  = 0x08
	TOSReliability = 0x04
	TOSMinCost     = 0x02
)

// KeepAlive configures OS-level TCP keep-alive probes. Zero durations and
// counts leave the OS defaults in place.
type KeepAlive struct {
	Enable   bool
	Idle     time.Duration
	Interval time.Duration
	Count    int
}

type dialConfig struct {
	addr      string
	noDelay   bool
	tos       int
	keepAlive *KeepAlive
}

// dialTCP establishes the connection and applies socket options. Options
// are best-effort: platforms lacking one simply skip it.
func dialTCP(ctx context.Context, cfg dialConfig) (*net.TCPConn, error) {
	d := net.Dialer{KeepAlive: -1}
	if ka := cfg.keepAlive; ka != nil && ka.Enable {
		d.KeepAlive = 0
		d.KeepAliveConfig = net.KeepAliveConfig{
			Enable:   true,
			Idle:     ka.Idle,
			Interval: ka.Interval,
			Count:    ka.Count,
		}
	}

	nc, err := d.DialContext(ctx, "tcp", cfg.addr)
	if err != nil {
		return nil, &ConnectError{Addr: cfg.addr, Err: err}
	}

	tc := nc.(*net.TCPConn)
	_ = tc.SetNoDelay(cfg.noDelay)
	setTOS(tc, cfg.tos)
	return tc, nil
}
