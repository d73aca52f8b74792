package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsJobsInOrder(t *testing.T) {
	s := NewScheduler(8, nil)

	var order []int
	done := make(chan struct{})
	for i := 1; i <= 3; i++ {
		i := i
		last := i == 3
		ok := s.Submit(Job{
			Name: "test",
			Run: func(ctx context.Context) error {
				order = append(order, i)
				if last {
					close(done)
				}
				return nil
			},
		})
		if !ok {
			t.Fatalf("submit %d rejected", i)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs did not run")
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("unexpected run order: %v", order)
	}
}

func TestSchedulerDropsWhenFull(t *testing.T) {
	s := NewScheduler(1, nil)
	defer s.Stop(context.Background())

	block := make(chan struct{})
	release := make(chan struct{})
	s.Submit(Job{Name: "blocker", Run: func(ctx context.Context) error {
		close(block)
		<-release
		return nil
	}})
	<-block

	// Worker is busy; the queue holds one slot.
	if !s.Submit(Job{Name: "queued", Run: func(ctx context.Context) error { return nil }}) {
		t.Fatal("expected queued job to be accepted")
	}
	if s.Submit(Job{Name: "overflow", Run: func(ctx context.Context) error { return nil }}) {
		t.Fatal("expected overflow job to be dropped")
	}
	close(release)
}

func TestSchedulerStopDrainsQueue(t *testing.T) {
	s := NewScheduler(4, nil)

	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		s.Submit(Job{Name: "count", Run: func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}})
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := ran.Load(); got != 3 {
		t.Fatalf("expected 3 jobs to run before stop returned, got %d", got)
	}

	// Submit after Stop must not panic and must report a drop.
	if s.Submit(Job{Name: "late", Run: func(ctx context.Context) error { return nil }}) {
		t.Fatal("expected submit after stop to be rejected")
	}
}

func TestSchedulerContinuesAfterJobError(t *testing.T) {
	s := NewScheduler(4, nil)

	var ran atomic.Int32
	s.Submit(Job{Name: "failing", Run: func(ctx context.Context) error {
		return errors.New("boom")
	}})
	s.Submit(Job{Name: "next", Run: func(ctx context.Context) error {
		ran.Add(1)
		return nil
	}})

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if ran.Load() != 1 {
		t.Fatal("job after a failing job did not run")
	}
}
