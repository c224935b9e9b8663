package page

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopRun(t *testing.T) {
	t.Run("Unload ends the lifetime cleanly", func(t *testing.T) {
		loop := NewLoop(context.Background())

		var ticks atomic.Int32
		loop.Every(5*time.Millisecond, func(ctx context.Context) error {
			ticks.Add(1)
			return nil
		})
		loop.After(60*time.Millisecond, func(ctx context.Context) error {
			return ErrUnloaded
		})

		if err := loop.Run(); err != nil {
			t.Fatalf("Expected nil error after unload, got %v", err)
		}
		if ticks.Load() == 0 {
			t.Error("Expected the recurring task to run at least once before unload")
		}

		seen := ticks.Load()
		time.Sleep(20 * time.Millisecond)
		if ticks.Load() != seen {
			t.Error("Recurring task kept running after the lifetime ended")
		}
	})

	t.Run("Task failure is returned", func(t *testing.T) {
		loop := NewLoop(context.Background())
		boom := Fatal("flash", ErrStyleMutationFailed)

		loop.Every(time.Millisecond, func(ctx context.Context) error {
			return boom
		})

		err := loop.Run()
		if !errors.Is(err, ErrStyleMutationFailed) {
			t.Fatalf("Expected ErrStyleMutationFailed, got %v", err)
		}
		var fatal *FatalError
		if !errors.As(err, &fatal) || fatal.Op != "flash" {
			t.Errorf("Expected FatalError for op flash, got %#v", err)
		}
	})

	t.Run("Parent cancellation stops the loop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		loop := NewLoop(ctx)
		loop.After(time.Hour, func(ctx context.Context) error { return ErrUnloaded })

		time.AfterFunc(10*time.Millisecond, cancel)

		if err := loop.Run(); !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled, got %v", err)
		}
	})

	t.Run("Tasks never overlap", func(t *testing.T) {
		loop := NewLoop(context.Background())

		var running, overlaps atomic.Int32
		task := func(ctx context.Context) error {
			if running.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
			return nil
		}
		loop.Every(time.Millisecond, task)
		loop.Every(2*time.Millisecond, task)
		loop.After(40*time.Millisecond, func(ctx context.Context) error { return ErrUnloaded })

		if err := loop.Run(); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if overlaps.Load() != 0 {
			t.Errorf("Expected no overlapping tasks, got %d", overlaps.Load())
		}
	})
}

func TestParsePlacement(t *testing.T) {
	for _, s := range []string{"beforebegin", "afterbegin", "beforeend", "afterend"} {
		if _, err := ParsePlacement(s); err != nil {
			t.Errorf("ParsePlacement(%q) failed: %v", s, err)
		}
	}
	if _, err := ParsePlacement("after"); err == nil {
		t.Error("Expected error for unknown placement")
	}
}
