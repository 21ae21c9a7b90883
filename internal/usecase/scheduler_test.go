package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"SentiPulse/internal/domain/models"
)

type fakeRunner struct {
	calls atomic.Int64
	err   error
	ran   chan struct{}
}

func (f *fakeRunner) Aggregate(_ context.Context) (*models.AggregateResult, error) {
	f.calls.Add(1)
	if f.ran != nil {
		select {
		case f.ran <- struct{}{}:
		default:
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.AggregateResult{BullishPct: 50, BearishPct: 50, TotalPosts: 10}, nil
}

func TestSchedulerRunsInitialCycle(t *testing.T) {
	runner := &fakeRunner{ran: make(chan struct{}, 1)}
	s := NewScheduler(runner, testLogger(t), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Start(ctx)
		close(done)
	}()

	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("initial cycle never ran")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler did not stop on cancel")
	}
}

func TestSchedulerManualTrigger(t *testing.T) {
	runner := &fakeRunner{ran: make(chan struct{}, 1)}
	s := NewScheduler(runner, testLogger(t), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Start(ctx) }()

	// Initial cycle.
	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("initial cycle never ran")
	}

	if !s.TriggerNow() {
		t.Fatalf("trigger on idle scheduler must be accepted")
	}
	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("triggered cycle never ran")
	}
	if got := runner.calls.Load(); got < 2 {
		t.Fatalf("expected at least 2 cycles, got %d", got)
	}
}

func TestTriggerNowCoalesces(t *testing.T) {
	s := NewScheduler(&fakeRunner{}, testLogger(t), time.Hour)

	// Nothing is draining the channel, so the second trigger must coalesce.
	if !s.TriggerNow() {
		t.Fatalf("first trigger must be accepted")
	}
	if s.TriggerNow() {
		t.Fatalf("second trigger must coalesce with the pending one")
	}
}

func TestSchedulerSurvivesCycleError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("all sources down"), ran: make(chan struct{}, 1)}
	s := NewScheduler(runner, testLogger(t), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Start(ctx)
		close(done)
	}()

	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("cycle never ran")
	}

	s.TriggerNow()
	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler stopped scheduling after a failed cycle")
	}

	cancel()
	<-done
}
