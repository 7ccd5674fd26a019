package socklinelib

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAlreadyOpen is returned by Open on a connected client.
	ErrAlreadyOpen = errors.New("sockline: already open, must close it first")

	// ErrNotConnected is returned by data operations when the client is
	// closed and auto-reconnect is disabled.
	ErrNotConnected = errors.New("sockline: not connected")

	// ErrConnectionClosed reports an orderly close by the peer (EOF).
	ErrConnectionClosed = errors.New("sockline: connection closed by peer")

	// ErrUnsupportedScheme is returned by ForURL for anything but tcp.
	ErrUnsupportedScheme = errors.New("sockline: unsupported scheme")
)

// ConnectError reports a failed or timed-out connect handshake.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("sockline: connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ConnectionLostError reports an I/O failure mid-stream. The engine that
// produced it is no longer usable.
type ConnectionLostError struct {
	Err error
}

func (e *ConnectionLostError) Error() string {
	return fmt.Sprintf("sockline: connection lost: %v", e.Err)
}

func (e *ConnectionLostError) Unwrap() error { return e.Err }

// TimeoutError reports a single call exceeding its budget. The connection
// is left open; a subsequent call may still observe the late reply unless
// the caller drains first.
type TimeoutError struct {
	Op     string
	Addr   string
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("sockline: %s call timeout (%s) on %s", e.Op, e.Budget, e.Addr)
}

func (e *TimeoutError) Timeout() bool { return true }
