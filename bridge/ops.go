package bridge

import (
	"context"

	"github.com/sockline/sockline/socklinelib"
)

// Ops is the fixed set of client operations a proxy forwards. Keeping the
// set explicit (rather than reflecting over the target) makes the bridge
// surface checkable at compile time.
type Ops interface {
	Open(ctx context.Context) error
	Close() error
	Connected() bool
	ConnectionCount() uint64
	InWaiting() int
	Reset()

	Read(ctx context.Context, n int) ([]byte, error)
	ReadLine(ctx context.Context) ([]byte, error)
	ReadUntil(ctx context.Context, sep []byte) ([]byte, error)
	ReadExactly(ctx context.Context, n int) ([]byte, error)
	ReadLines(ctx context.Context, n int) ([][]byte, error)
	ReadAvailable(ctx context.Context) ([]byte, error)

	Write(ctx context.Context, data []byte) error
	WriteLines(ctx context.Context, lines ...[]byte) error
	WriteRead(ctx context.Context, data []byte, n int) ([]byte, error)
	WriteReadLine(ctx context.Context, data []byte) ([]byte, error)
	WriteReadLines(ctx context.Context, data []byte, n int) ([][]byte, error)
	WritelinesReadlines(ctx context.Context, lines ...[]byte) ([][]byte, error)
}

var _ Ops = (*socklinelib.Client)(nil)
var _ Ops = (*Proxy)(nil)
