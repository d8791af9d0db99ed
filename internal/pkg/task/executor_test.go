package task_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"bazaar/internal/pkg/task"
)

func TestSubmitRunsTasks(t *testing.T) {
	e := task.NewExecutor(4)
	var ran atomic.Int32

	for i := 0; i < 10; i++ {
		e.Submit("count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	e.Shutdown()
	assert.Equal(t, int32(10), ran.Load())
}

func TestTaskErrorDoesNotStopOthers(t *testing.T) {
	e := task.NewExecutor(2)
	var ran atomic.Int32

	e.Submit("boom", func(ctx context.Context) error {
		return errors.New("boom")
	})
	e.Submit("ok", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	e.Shutdown()
	assert.Equal(t, int32(1), ran.Load(), "a failing task never takes the pool down")
}

func TestTaskPanicIsContained(t *testing.T) {
	e := task.NewExecutor(2)
	var ran atomic.Int32

	e.Submit("panic", func(ctx context.Context) error {
		panic("boom")
	})
	e.Submit("ok", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	e.Shutdown()
	assert.Equal(t, int32(1), ran.Load())
}

func TestShutdownWaitsForInflight(t *testing.T) {
	e := task.NewExecutor(1)
	done := make(chan struct{})

	e.Submit("slow", func(ctx context.Context) error {
		close(done)
		return nil
	})

	e.Shutdown()
	select {
	case <-done:
	default:
		t.Fatal("Shutdown returned before the in-flight task finished")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	e := task.NewExecutor(1)
	e.Submit("noop", func(ctx context.Context) error { return nil })
	e.Shutdown()
	e.Shutdown()
}
