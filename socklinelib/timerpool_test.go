package socklinelib

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerPoolReuse(t *testing.T) {
	p := newTimerPool()

	tm := p.acquire(time.Hour)
	p.release(tm)

	tm2 := p.acquire(10 * time.Millisecond)
	select {
	case <-tm2.C:
	case <-time.After(time.Second):
		t.Fatal("reused timer never fired")
	}
	p.release(tm2)
}

func TestSleep(t *testing.T) {
	require.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
}

func TestJsonStringPoolMetrics(t *testing.T) {
	sleep(context.Background(), time.Millisecond)
	require.Contains(t, JsonStringPoolMetrics(), "TimerPool")
}
