package deferred

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/gfx"
)

// ErrExecutorClosed is returned when work is submitted to, or awaited
// from, an executor that has been closed.
var ErrExecutorClosed = errors.New("deferred: executor closed")

type task struct {
	token uint64
	name  string
	fn    func()
}

// Executor runs submitted work in submission order on one goroutine, the
// execution boundary of the recorded backend. Every submission gets a
// sync token that is released once the work, and all work submitted
// before it, has run.
type Executor struct {
	log *slog.Logger

	submitMu  sync.Mutex
	tasks     chan task
	submitted uint64
	closed    bool

	relMu    sync.Mutex
	released uint64
	stopped  bool
	notify   chan struct{}

	done chan struct{}
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger logs executor events to l instead of the package
// logger.
func WithExecutorLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.log = l
	}
}

// WithQueueDepth sets how many tasks may wait before Submit blocks.
func WithQueueDepth(n int) ExecutorOption {
	return func(e *Executor) {
		if n >= 0 {
			e.tasks = make(chan task, n)
		}
	}
}

// NewExecutor starts an executor goroutine. Close stops it.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		tasks:  make(chan task, 64),
		notify: make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	go e.run()
	e.logger().Info("deferred: executor started")
	return e
}

func (e *Executor) logger() *slog.Logger {
	if e.log != nil {
		return e.log
	}
	return compositor.Logger()
}

// Submit queues fn and returns the token released once it has run.
func (e *Executor) Submit(name string, fn func()) (gfx.SyncToken, error) {
	e.submitMu.Lock()
	defer e.submitMu.Unlock()
	if e.closed {
		return gfx.SyncToken{}, ErrExecutorClosed
	}
	e.submitted++
	e.tasks <- task{token: e.submitted, name: name, fn: fn}
	return gfx.SyncToken{Release: e.submitted}, nil
}

// IsReleased reports whether the work before t has run. The invalid
// token is always released.
func (e *Executor) IsReleased(t gfx.SyncToken) bool {
	e.relMu.Lock()
	defer e.relMu.Unlock()
	return t.Release <= e.released
}

// Wait blocks until t is released or ctx is done. It returns
// ErrExecutorClosed if the executor stopped before reaching t.
func (e *Executor) Wait(ctx context.Context, t gfx.SyncToken) error {
	for {
		e.relMu.Lock()
		if t.Release <= e.released {
			e.relMu.Unlock()
			return nil
		}
		stopped, ch := e.stopped, e.notify
		e.relMu.Unlock()
		if stopped {
			return fmt.Errorf("%w: %v never released", ErrExecutorClosed, t)
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close runs the queued work, stops the goroutine and waits for it. It is
// safe to call more than once.
func (e *Executor) Close() error {
	e.submitMu.Lock()
	if !e.closed {
		e.closed = true
		close(e.tasks)
	}
	e.submitMu.Unlock()
	<-e.done
	return nil
}

func (e *Executor) run() {
	defer func() {
		e.relMu.Lock()
		e.stopped = true
		close(e.notify)
		e.relMu.Unlock()
		close(e.done)
		e.logger().Info("deferred: executor stopped")
	}()
	for t := range e.tasks {
		e.exec(t)
		e.relMu.Lock()
		e.released = t.token
		close(e.notify)
		e.notify = make(chan struct{})
		e.relMu.Unlock()
	}
}

// exec runs one task. A panicking task is logged and its token still
// released so waiters do not hang.
func (e *Executor) exec(t task) {
	defer func() {
		if r := recover(); r != nil {
			e.logger().Error("deferred: task panicked", "task", t.name, "token", t.token, "panic", r)
		}
	}()
	t.fn()
}
