package deferred

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/compositor/gfx"
)

func TestExecutorOrder(t *testing.T) {
	e := NewExecutor()
	defer e.Close()

	var mu sync.Mutex
	var order []int
	var last gfx.SyncToken
	for i := 0; i < 20; i++ {
		tok, err := e.Submit("step", func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if tok.Release <= last.Release {
			t.Fatalf("Submit() token %v not after %v", tok, last)
		}
		last = tok
	}
	if err := e.Wait(context.Background(), last); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != 20 {
		t.Fatalf("ran %d tasks, want 20", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Errorf("order[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestExecutorIsReleased(t *testing.T) {
	e := NewExecutor()
	defer e.Close()

	if !e.IsReleased(gfx.SyncToken{}) {
		t.Error("IsReleased(invalid) = false, want true")
	}

	gate := make(chan struct{})
	tok, _ := e.Submit("blocked", func() { <-gate })
	if e.IsReleased(tok) {
		t.Error("IsReleased() = true before the task ran")
	}
	close(gate)
	if err := e.Wait(context.Background(), tok); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !e.IsReleased(tok) {
		t.Error("IsReleased() = false after Wait")
	}
}

func TestExecutorWaitCanceled(t *testing.T) {
	e := NewExecutor()
	gate := make(chan struct{})
	tok, _ := e.Submit("blocked", func() { <-gate })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := e.Wait(ctx, tok); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want DeadlineExceeded", err)
	}
	close(gate)
	e.Close()
}

func TestExecutorPanicReleasesToken(t *testing.T) {
	e := NewExecutor()
	defer e.Close()

	tok, _ := e.Submit("boom", func() { panic("boom") })
	after, _ := e.Submit("after", func() {})
	if err := e.Wait(context.Background(), after); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !e.IsReleased(tok) {
		t.Error("panicking task token not released")
	}
}

func TestExecutorClose(t *testing.T) {
	e := NewExecutor(WithQueueDepth(4))
	ran := false
	tok, _ := e.Submit("queued", func() { ran = true })
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !ran {
		t.Error("Close() did not run queued work")
	}
	if !e.IsReleased(tok) {
		t.Error("queued token not released by Close")
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := e.Submit("late", func() {}); !errors.Is(err, ErrExecutorClosed) {
		t.Errorf("Submit() after Close = %v, want ErrExecutorClosed", err)
	}
	if err := e.Wait(context.Background(), gfx.SyncToken{Release: tok.Release + 1}); !errors.Is(err, ErrExecutorClosed) {
		t.Errorf("Wait() for unsubmitted token = %v, want ErrExecutorClosed", err)
	}
}
