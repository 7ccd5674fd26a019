package bridge

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	taskPool  = &TaskPool{}
	timerPool = &TimerPool{}
)

// task is one marshalled operation. wg signals the submitter that the
// operation has run; background tasks are released by the worker since no
// one waits on them.
type task struct {
	fn         func()
	background bool
	wg         sync.WaitGroup
}

type TaskPool struct {
	sp sync.Pool
	m  PoolMetrics
}

func (p *TaskPool) acquire(fn func(), background bool) *task {
	v := p.sp.Get()
	if v == nil {
		v = &task{}
		atomic.AddUint32(&p.m.na, uint32(1))
	} else {
		atomic.AddUint32(&p.m.nr, uint32(1))
	}
	t := v.(*task)
	t.fn = fn
	t.background = background
	t.wg.Add(1)
	return t
}

func (p *TaskPool) release(t *task) {
	t.fn = nil
	p.sp.Put(t)
	atomic.AddUint32(&p.m.np, uint32(1))
}

type TimerPool struct {
	sp sync.Pool
	m  PoolMetrics
}

func (p *TimerPool) acquire(timeout time.Duration) *time.Timer {
	v := p.sp.Get()
	if v == nil {
		atomic.AddUint32(&p.m.na, uint32(1))
		return time.NewTimer(timeout)
	}
	atomic.AddUint32(&p.m.nr, uint32(1))
	t := v.(*time.Timer)
	t.Reset(timeout)
	return t
}

func (p *TimerPool) release(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	p.sp.Put(t)
	atomic.AddUint32(&p.m.np, uint32(1))
}

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
	return fmt.Sprintf("{\"TaskPool\" = %s, \"TimerPool\" = %s}",
		taskPool.m.metricsString(),
		timerPool.m.metricsString(),
	)
}
