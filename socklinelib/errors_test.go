package socklinelib

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConnectErrorUnwrap(t *testing.T) {
	inner := errors.New("refused")
	err := error(&ConnectError{Addr: "localhost:5000", Err: inner})
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "localhost:5000")
}

func TestConnectionLostErrorUnwrap(t *testing.T) {
	err := error(&ConnectionLostError{Err: io.ErrUnexpectedEOF})
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestTimeoutError(t *testing.T) {
	err := &TimeoutError{Op: "readline", Addr: "localhost:5000", Budget: 90 * time.Millisecond}
	require.True(t, err.Timeout())
	require.Contains(t, err.Error(), "readline")
	require.Contains(t, err.Error(), "90ms")
}
