package page

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Task is a unit of work run by a Scheduler. A task that returns a non-nil
// error ends the page lifetime; ErrUnloaded ends it cleanly.
type Task func(ctx context.Context) error

// Scheduler registers timer driven tasks. Registration never blocks and there
// is no way to cancel a task once registered: tasks live until the page
// lifetime ends.
type Scheduler interface {
	// Every runs task each time interval elapses.
	Every(interval time.Duration, task Task)
	// After runs task once, delay after registration.
	After(delay time.Duration, task Task)
}

// Loop is a Scheduler that runs every task on a single dispatch goroutine.
//
// Timers only deliver tasks to Run; they never execute them. Two tasks of the
// same Loop therefore never run at the same time and the state they own needs
// no locking. There is no ordering guarantee between tasks of different
// timers.
type Loop struct {
	ctx    context.Context
	cancel context.CancelFunc
	tasks  chan Task
	wg     sync.WaitGroup
}

// NewLoop creates a Loop whose timers stop when ctx is cancelled or when the
// loop is closed.
func NewLoop(ctx context.Context) *Loop {
	ctx, cancel := context.WithCancel(ctx)
	return &Loop{
		ctx:    ctx,
		cancel: cancel,
		tasks:  make(chan Task),
	}
}

// Every implements Scheduler.
func (l *Loop) Every(interval time.Duration, task Task) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-l.ctx.Done():
				return
			case <-ticker.C:
				if !l.deliver(task) {
					return
				}
			}
		}
	}()
}

// After implements Scheduler.
func (l *Loop) After(delay time.Duration, task Task) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-l.ctx.Done():
		case <-timer.C:
			l.deliver(task)
		}
	}()
}

func (l *Loop) deliver(task Task) bool {
	select {
	case l.tasks <- task:
		return true
	case <-l.ctx.Done():
		return false
	}
}

// Run dispatches tasks until one of them fails, one of them unloads the page,
// or the parent context is cancelled. It returns nil when the page was
// unloaded, the task's error when a task failed, and the context error on
// cancellation. All timers are stopped before Run returns.
func (l *Loop) Run() error {
	defer l.Close()

	for {
		select {
		case <-l.ctx.Done():
			return l.ctx.Err()
		case task := <-l.tasks:
			if err := task(l.ctx); err != nil {
				if errors.Is(err, ErrUnloaded) {
					return nil
				}
				return err
			}
		}
	}
}

// Close stops every timer and waits for their goroutines to exit. It is safe
// to call more than once.
func (l *Loop) Close() {
	l.cancel()
	l.wg.Wait()
}
