// Package shutdownqueue is the process-wide list of cleanup steps run when
// a binary exits.
//
// Components register a named step right after they start:
//
//	shutdownqueue.Add("http server", srv.Shutdown)
//
// and main drains the queue once, under a deadline:
//
//	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
//	defer cancel()
//	err := shutdownqueue.Shutdown(ctx)
//
// Steps run in reverse order of registration, so a server stops before the
// pool it writes to is closed. A panicking step is recovered and reported.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task is one cleanup step. It should return once ctx is done.
type Task func(ctx context.Context) error

type step struct {
	name string
	run  Task
}

type queue struct {
	mu      sync.Mutex
	steps   []step
	drained bool
}

var q = &queue{steps: make([]step, 0, 8)}

// Add registers a named step. Nil steps and steps added once Shutdown has
// started are ignored.
func Add(name string, t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.drained {
		slog.Warn("shutdown step registered too late", "step", name)
		return
	}

	q.steps = append(q.steps, step{name: name, run: t})
}

// AddCloser registers a step for a resource whose Close takes no context.
func AddCloser(name string, closeFn func() error) {
	if closeFn == nil {
		return
	}

	Add(name, func(context.Context) error { return closeFn() })
}

// Shutdown runs the registered steps newest first. Only the first call does
// any work. When ctx ends mid-drain the remaining steps are skipped and the
// context error is joined to the step errors collected so far.
func Shutdown(ctx context.Context) error {
	q.mu.Lock()
	steps := q.steps
	q.steps = nil
	q.drained = true
	q.mu.Unlock()

	var errs []error

	for i := len(steps) - 1; i >= 0; i-- {
		err := ctx.Err()
		if err != nil {
			errs = append(errs, fmt.Errorf("shutdown interrupted before %q: %w", steps[i].name, err))

			return errors.Join(errs...)
		}

		err = runStep(ctx, steps[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runStep(ctx context.Context, s step) (err error) {
	started := time.Now()

	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("shutdown step %q panicked: %v", s.name, r)
		}

		if err != nil {
			slog.Error("shutdown step failed", "step", s.name, "error", err)
			return
		}

		slog.Info("shutdown step done", "step", s.name, "took", time.Since(started))
	}()

	err = s.run(ctx)
	if err != nil {
		return fmt.Errorf("shutdown step %q: %w", s.name, err)
	}

	return nil
}
