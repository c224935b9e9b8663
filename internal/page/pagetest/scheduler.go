package pagetest

import (
	"context"
	"time"

	"proximity.onebusaway.org/internal/page"
)

// Timer is a task registered with a Scheduler.
type Timer struct {
	Interval time.Duration
	Repeat   bool
	Task     page.Task

	next time.Duration
	seq  int
	done bool
}

// Scheduler is a page.Scheduler driven by a virtual clock. Tasks run only
// when Advance is called, in due-time order, ties broken by registration
// order.
type Scheduler struct {
	Timers []*Timer
	now    time.Duration
}

// Every implements page.Scheduler.
func (s *Scheduler) Every(interval time.Duration, task page.Task) {
	s.add(interval, true, task)
}

// After implements page.Scheduler.
func (s *Scheduler) After(delay time.Duration, task page.Task) {
	s.add(delay, false, task)
}

func (s *Scheduler) add(d time.Duration, repeat bool, task page.Task) {
	s.Timers = append(s.Timers, &Timer{
		Interval: d,
		Repeat:   repeat,
		Task:     task,
		next:     s.now + d,
		seq:      len(s.Timers),
	})
}

// Recurring returns the registered recurring timers.
func (s *Scheduler) Recurring() []*Timer {
	return s.filter(true)
}

// OneShot returns the registered one-shot timers.
func (s *Scheduler) OneShot() []*Timer {
	return s.filter(false)
}

func (s *Scheduler) filter(repeat bool) []*Timer {
	var out []*Timer
	for _, t := range s.Timers {
		if t.Repeat == repeat {
			out = append(out, t)
		}
	}
	return out
}

// Now returns the virtual time elapsed since the scheduler was created.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Advance moves the virtual clock forward by d, running every task that
// becomes due. It stops at the first task error and returns it; the clock is
// left at that task's due time.
func (s *Scheduler) Advance(ctx context.Context, d time.Duration) error {
	target := s.now + d
	for {
		t := s.due(target)
		if t == nil {
			s.now = target
			return nil
		}
		s.now = t.next
		if t.Repeat {
			t.next += t.Interval
		} else {
			t.done = true
		}
		if err := t.Task(ctx); err != nil {
			return err
		}
	}
}

func (s *Scheduler) due(target time.Duration) *Timer {
	var found *Timer
	for _, t := range s.Timers {
		if t.done || t.next > target {
			continue
		}
		if found == nil || t.next < found.next || (t.next == found.next && t.seq < found.seq) {
			found = t
		}
	}
	return found
}
