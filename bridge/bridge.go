// Package bridge drives socklinelib clients safely from arbitrary
// goroutines: every operation against a proxied target is marshalled onto
// that target's serial dispatch queue, executed one at a time in
// submission order, and the result handed back either resolved (Proxy) or
// as a deferred handle (DeferredProxy).
package bridge

import (
	"errors"
	"sync"
)

// ErrBridgeDead reports a failure in the marshalling machinery itself, as
// opposed to an error from the proxied operation, which passes through
// unchanged.
var ErrBridgeDead = errors.New("bridge: dispatcher stopped")

// Bridge owns one serial dispatch queue per proxied target. Targets are
// never executed concurrently with themselves; distinct targets proceed
// independently.
type Bridge struct {
	mu      sync.Mutex
	workers map[Ops]*worker
	stopped bool
}

func New() *Bridge {
	return &Bridge{workers: make(map[Ops]*worker)}
}

// Proxy returns a handle whose operations block for their result.
// Proxies of the same target share its queue.
func (b *Bridge) Proxy(target Ops) *Proxy {
	return &Proxy{b: b, target: target}
}

// DeferredProxy returns a handle whose operations return immediately with
// a Deferred carrying the eventual result.
func (b *Bridge) DeferredProxy(target Ops) *DeferredProxy {
	return &DeferredProxy{b: b, target: target}
}

// Stop drains every queue and refuses further submissions. Idempotent.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	workers := make([]*worker, 0, len(b.workers))
	for _, w := range b.workers {
		workers = append(workers, w)
	}
	b.mu.Unlock()

	for _, w := range workers {
		w.stop()
	}
}

func (b *Bridge) workerFor(target Ops) (*worker, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, ErrBridgeDead
	}
	w, ok := b.workers[target]
	if !ok {
		w = newWorker()
		b.workers[target] = w
	}
	return w, nil
}

// call executes fn on the target's queue and waits for it.
func (b *Bridge) call(target Ops, fn func()) error {
	w, err := b.workerFor(target)
	if err != nil {
		return err
	}
	t := taskPool.acquire(fn, false)
	if err := w.submit(t); err != nil {
		t.wg.Done()
		taskPool.release(t)
		return err
	}
	t.wg.Wait()
	taskPool.release(t)
	return nil
}

// dispatch enqueues fn without waiting; the worker releases the task.
func (b *Bridge) dispatch(target Ops, fn func()) error {
	w, err := b.workerFor(target)
	if err != nil {
		return err
	}
	t := taskPool.acquire(fn, true)
	if err := w.submit(t); err != nil {
		t.wg.Done()
		taskPool.release(t)
		return err
	}
	return nil
}

type worker struct {
	mu     sync.Mutex
	closed bool
	tasks  chan *task
	done   chan struct{}
}

func newWorker() *worker {
	w := &worker{
		tasks: make(chan *task, 16),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *worker) run() {
	defer close(w.done)
	for t := range w.tasks {
		t.fn()
		t.wg.Done()
		if t.background {
			taskPool.release(t)
		}
	}
}

func (w *worker) submit(t *task) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrBridgeDead
	}
	w.tasks <- t
	return nil
}

func (w *worker) stop() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.tasks)
	}
	w.mu.Unlock()
	<-w.done
}
