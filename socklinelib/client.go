package socklinelib

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jpillora/backoff"
	"github.com/rs/zerolog"
	"github.com/valyala/bytebufferpool"
)

// RetryPolicy bounds the connect attempts made by an implicit reopen.
// The zero value makes a single attempt, so the one call racing an outage
// fails and the next call recovers. Backoff bound defaults kick in only
// when Attempts > 1.
type RetryPolicy struct {
	Attempts int
	Min      time.Duration
	Max      time.Duration
	Factor   float64
	Jitter   bool
}

func (p RetryPolicy) backoff() *backoff.Backoff {
	b := &backoff.Backoff{Min: p.Min, Max: p.Max, Factor: p.Factor, Jitter: p.Jitter}
	if b.Min <= 0 {
		b.Min = 500 * time.Millisecond
	}
	if b.Max <= 0 {
		b.Max = 1 * time.Second
	}
	if b.Factor <= 0 {
		b.Factor = 1.25
	}
	return b
}

// Client is a line/block framed request-reply client for one TCP endpoint.
// It owns at most one live conn at a time and reconnects to the same
// endpoint only.
//
// Data operations assume at most one outstanding read-family call at a
// time. The client does not lock per call; callers issuing concurrent
// operation sequences must serialize them (or go through a bridge proxy).
//
// The zero value is not ready for use; construct with NewClient.
type Client struct {
	Host string
	Port int

	// EOL is the line terminator for the read/write line family.
	EOL []byte

	// AutoReconnect makes data operations reopen a closed connection
	// before proceeding.
	AutoReconnect bool

	// ConnectionTimeout bounds the connect handshake; Timeout bounds each
	// data operation. Zero means unbounded.
	ConnectionTimeout time.Duration
	Timeout           time.Duration

	NoDelay   bool
	TOS       int
	KeepAlive *KeepAlive

	Retry RetryPolicy

	OnConnectionMade func()
	OnConnectionLost func(error)
	OnEOFReceived    func()

	Logger zerolog.Logger

	mu      sync.Mutex
	eng     *conn
	counter uint64
}

func NewClient(host string, port int) *Client {
	return &Client{
		Host:          host,
		Port:          port,
		EOL:           []byte("\n"),
		AutoReconnect: true,
		NoDelay:       true,
		TOS:           TOSLowDelay,
		Logger:        zerolog.Nop(),
	}
}

func (c *Client) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Client) eol() []byte {
	if len(c.EOL) == 0 {
		return []byte("\n")
	}
	return c.EOL
}

// Connected reports whether a conn exists and its receive loop is alive.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng != nil && c.eng.Alive()
}

// ConnectionCount returns the number of successful opens over the client's
// lifetime. It never decreases.
func (c *Client) ConnectionCount() uint64 {
	return atomic.LoadUint64(&c.counter)
}

// InWaiting returns the number of buffered unread bytes.
func (c *Client) InWaiting() int {
	c.mu.Lock()
	eng := c.eng
	c.mu.Unlock()
	if eng == nil {
		return 0
	}
	return eng.InWaiting()
}

// Reset discards buffered unread bytes, e.g. to drop a late reply after a
// timed-out call before reusing the connection.
func (c *Client) Reset() {
	c.mu.Lock()
	eng := c.eng
	c.mu.Unlock()
	if eng != nil {
		eng.Reset()
	}
}

// Open connects to the endpoint and starts the receive loop. It fails with
// ErrAlreadyOpen on a connected client and leaves the counter untouched.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.openLocked(ctx)
}

func (c *Client) openLocked(ctx context.Context) error {
	if c.eng != nil && c.eng.Alive() {
		return ErrAlreadyOpen
	}
	if c.eng != nil {
		// Dead conn from a previous attempt; its buffer is not reused.
		c.eng.Close()
		c.eng = nil
	}

	if c.ConnectionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.ConnectionTimeout)
		defer cancel()
	}

	log := c.Logger.With().Str("endpoint", c.Addr()).Logger()
	log.Debug().Uint64("connections", atomic.LoadUint64(&c.counter)).Msg("opening")

	nc, err := dialTCP(ctx, dialConfig{
		addr:      c.Addr(),
		noDelay:   c.NoDelay,
		tos:       c.TOS,
		keepAlive: c.KeepAlive,
	})
	if err != nil {
		return err
	}

	c.eng = newConn(nc, log, c.OnConnectionLost, c.OnEOFReceived)
	atomic.AddUint64(&c.counter, 1)
	runCallback(log, "on_connection_made", c.OnConnectionMade)
	return nil
}

// Close stops the receive loop, releases the socket and discards the conn.
// No-op when already closed.
func (c *Client) Close() error {
	c.mu.Lock()
	eng := c.eng
	c.eng = nil
	c.mu.Unlock()
	if eng != nil {
		eng.Close()
	}
	return nil
}

// ensure returns a live conn, implicitly reopening per the retry policy
// when auto-reconnect is on.
func (c *Client) ensure(ctx context.Context) (*conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.eng != nil && c.eng.Alive() {
		return c.eng, nil
	}
	if !c.AutoReconnect {
		return nil, ErrNotConnected
	}

	attempts := c.Retry.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	b := c.Retry.backoff()

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if serr := sleep(ctx, b.Duration()); serr != nil {
				return nil, serr
			}
		}
		if err = c.openLocked(ctx); err == nil {
			return c.eng, nil
		}
	}
	return nil, err
}

// do runs one data operation through the uniform guard: connection ensured,
// per-call budget raced, TimeoutError keeps the connection, genuine
// connection errors tear the conn down so the next call can reconnect.
func (c *Client) do(ctx context.Context, op string, fn func(ctx context.Context, eng *conn) error) error {
	eng, err := c.ensure(ctx)
	if err != nil {
		return err
	}

	tctx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	err = fn(tctx, eng)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return &TimeoutError{Op: op, Addr: c.Addr(), Budget: c.Timeout}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	c.teardown(eng)
	return err
}

func (c *Client) teardown(eng *conn) {
	c.mu.Lock()
	if c.eng == eng {
		c.eng = nil
	}
	c.mu.Unlock()
	eng.Close()
}

// Read returns up to n buffered bytes, waiting for at least one. n < 0
// drains the stream until the peer closes it.
func (c *Client) Read(ctx context.Context, n int) ([]byte, error) {
	var out []byte
	err := c.do(ctx, "read", func(ctx context.Context, eng *conn) error {
		var err error
		out, err = eng.Read(ctx, n)
		return err
	})
	return out, err
}

// ReadLine returns the next line including its terminator.
func (c *Client) ReadLine(ctx context.Context) ([]byte, error) {
	return c.ReadUntil(ctx, c.eol())
}

// ReadUntil returns bytes up to and including the first occurrence of sep.
func (c *Client) ReadUntil(ctx context.Context, sep []byte) ([]byte, error) {
	var out []byte
	err := c.do(ctx, "readuntil", func(ctx context.Context, eng *conn) error {
		var err error
		out, err = eng.ReadUntil(ctx, sep)
		return err
	})
	return out, err
}

// ReadExactly returns exactly n bytes.
func (c *Client) ReadExactly(ctx context.Context, n int) ([]byte, error) {
	var out []byte
	err := c.do(ctx, "readexactly", func(ctx context.Context, eng *conn) error {
		var err error
		out, err = eng.ReadExactly(ctx, n)
		return err
	})
	return out, err
}

// ReadLines returns the next n lines under a single call budget.
func (c *Client) ReadLines(ctx context.Context, n int) ([][]byte, error) {
	var out [][]byte
	err := c.do(ctx, "readlines", func(ctx context.Context, eng *conn) error {
		var err error
		out, err = readLines(ctx, eng, c.eol(), n)
		return err
	})
	return out, err
}

// ReadAvailable returns and clears whatever is buffered without waiting.
func (c *Client) ReadAvailable(ctx context.Context) ([]byte, error) {
	var out []byte
	err := c.do(ctx, "readavailable", func(ctx context.Context, eng *conn) error {
		out = eng.ReadAvailable()
		return nil
	})
	return out, err
}

// Write performs a full send of data.
func (c *Client) Write(ctx context.Context, data []byte) error {
	return c.do(ctx, "write", func(ctx context.Context, eng *conn) error {
		return eng.Write(ctx, data)
	})
}

// WriteLines joins lines into one pooled payload and sends it as a single
// write.
func (c *Client) WriteLines(ctx context.Context, lines ...[]byte) error {
	return c.do(ctx, "writelines", func(ctx context.Context, eng *conn) error {
		return writeJoined(ctx, eng, lines)
	})
}

// WriteRead sends data and returns the next read of up to n bytes as one
// logical operation.
func (c *Client) WriteRead(ctx context.Context, data []byte, n int) ([]byte, error) {
	var out []byte
	err := c.do(ctx, "write_read", func(ctx context.Context, eng *conn) error {
		if err := eng.Write(ctx, data); err != nil {
			return err
		}
		var err error
		out, err = eng.Read(ctx, n)
		return err
	})
	return out, err
}

// WriteReadLine sends data and returns the next reply line as one logical
// operation.
func (c *Client) WriteReadLine(ctx context.Context, data []byte) ([]byte, error) {
	var out []byte
	err := c.do(ctx, "write_readline", func(ctx context.Context, eng *conn) error {
		if err := eng.Write(ctx, data); err != nil {
			return err
		}
		var err error
		out, err = eng.ReadUntil(ctx, c.eol())
		return err
	})
	return out, err
}

// WriteReadLines sends data and returns the next n reply lines as one
// logical operation.
func (c *Client) WriteReadLines(ctx context.Context, data []byte, n int) ([][]byte, error) {
	var out [][]byte
	err := c.do(ctx, "write_readlines", func(ctx context.Context, eng *conn) error {
		if err := eng.Write(ctx, data); err != nil {
			return err
		}
		var err error
		out, err = readLines(ctx, eng, c.eol(), n)
		return err
	})
	return out, err
}

// WritelinesReadlines sends lines as a single write and returns one reply
// line per request line.
func (c *Client) WritelinesReadlines(ctx context.Context, lines ...[]byte) ([][]byte, error) {
	var out [][]byte
	err := c.do(ctx, "writelines_readlines", func(ctx context.Context, eng *conn) error {
		if err := writeJoined(ctx, eng, lines); err != nil {
			return err
		}
		var err error
		out, err = readLines(ctx, eng, c.eol(), len(lines))
		return err
	})
	return out, err
}

func readLines(ctx context.Context, eng *conn, eol []byte, n int) ([][]byte, error) {
	out := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		line, err := eng.ReadUntil(ctx, eol)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

func writeJoined(ctx context.Context, eng *conn, lines [][]byte) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for _, line := range lines {
		_, _ = buf.Write(line)
	}
	return eng.Write(ctx, buf.B)
}
