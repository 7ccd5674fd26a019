package socklinelib

import (
	"fmt"
	"sync/atomic"
)

// na + nr equal the total number of acquires.
// na + nr - np equal the number still checked out.
type PoolMetrics struct {
	na uint32 // number of new acquires
	nr uint32 // number of reuse from pool
	np uint32 // number of put back to pool
}

func (p *PoolMetrics) metricsString() string {
	return fmt.Sprintf("[ %v|%v|%v ]",
		atomic.LoadUint32(&p.na),
		atomic.LoadUint32(&p.nr),
		atomic.LoadUint32(&p.np),
	)
}

func JsonStringPoolMetrics() string {
	return fmt.Sprintf("{\"TimerPool\" = %s}", timerPool.m.metricsString())
}
