package shutdownqueue

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fresh empties the global queue before and after a test.
func fresh(t *testing.T) {
	t.Helper()

	reset := func() {
		q.mu.Lock()
		q.steps = nil
		q.drained = false
		q.mu.Unlock()
	}

	reset()
	t.Cleanup(reset)
}

func noop(context.Context) error { return nil }

//nolint:paralleltest
func TestShutdown_NewestFirst(t *testing.T) {
	fresh(t)

	var order []string

	for _, name := range []string{"db", "cache", "http"} {
		Add(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	err := Shutdown(t.Context())
	if err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	want := []string{"http", "cache", "db"}
	if !slices.Equal(order, want) {
		t.Fatalf("order: want %v, got %v", want, order)
	}
}

//nolint:paralleltest
func TestShutdown_NilAndEmpty(t *testing.T) {
	fresh(t)

	Add("nothing", nil)
	AddCloser("nothing either", nil)

	for i := range 2 {
		err := Shutdown(t.Context())
		if err != nil {
			t.Fatalf("call %d: want nil, got %v", i, err)
		}
	}
}

//nolint:paralleltest
func TestShutdown_ErrorsCarryStepNames(t *testing.T) {
	fresh(t)

	errPool := errors.New("pool busy")
	errWriter := errors.New("writer flush")

	Add("pool", func(context.Context) error { return errPool })
	AddCloser("writer", func() error { return errWriter })
	Add("fine", noop)

	err := Shutdown(t.Context())
	if !errors.Is(err, errPool) || !errors.Is(err, errWriter) {
		t.Fatalf("want both step errors, got %v", err)
	}

	msg := err.Error()
	if !strings.Contains(msg, `"pool"`) || !strings.Contains(msg, `"writer"`) {
		t.Fatalf("step names missing from %q", msg)
	}
}

//nolint:paralleltest
func TestShutdown_PanicIsReportedAndDrainContinues(t *testing.T) {
	fresh(t)

	var ranOlder atomic.Bool

	Add("older", func(context.Context) error {
		ranOlder.Store(true)
		return nil
	})
	Add("broken", func(context.Context) error { panic("boom") })

	err := Shutdown(t.Context())
	if err == nil || !strings.Contains(err.Error(), `"broken" panicked: boom`) {
		t.Fatalf("want panic report, got %v", err)
	}
	if !ranOlder.Load() {
		t.Fatal("steps after the panic did not run")
	}
}

//nolint:paralleltest
func TestShutdown_StopsWhenContextEnds(t *testing.T) {
	fresh(t)

	errSkipped := errors.New("skipped step ran")

	var ranSkipped atomic.Bool

	Add("skipped", func(context.Context) error {
		ranSkipped.Store(true)
		return errSkipped
	})

	entered := make(chan struct{})
	Add("slow", func(ctx context.Context) error {
		close(entered)
		<-ctx.Done()

		return nil
	})

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)

	go func() { done <- Shutdown(ctx) }()

	<-entered
	cancel()

	err := <-done
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if ranSkipped.Load() || errors.Is(err, errSkipped) {
		t.Fatal("step after cancellation ran")
	}
}

//nolint:paralleltest
func TestShutdown_RunsOnceAndIgnoresLateSteps(t *testing.T) {
	fresh(t)

	var runs atomic.Int32

	started := make(chan struct{})
	release := make(chan struct{})

	Add("counted", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	Add("blocking", func(context.Context) error {
		close(started)
		<-release

		return nil
	})

	done := make(chan error, 1)

	go func() { done <- Shutdown(t.Context()) }()

	<-started

	var lateRan atomic.Bool

	Add("late", func(context.Context) error {
		lateRan.Store(true)
		return nil
	})
	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not finish")
	}

	err := Shutdown(t.Context())
	if err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
	if runs.Load() != 1 {
		t.Fatalf("runs: want 1, got %d", runs.Load())
	}
	if lateRan.Load() {
		t.Fatal("step added during shutdown ran")
	}
}
