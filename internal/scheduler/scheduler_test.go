package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/config"
	"github.com/tasknest/tasknest-api/internal/domain"
)

func testScheduler(t *testing.T, scanInterval time.Duration) (*Scheduler, *mockTaskSource, *mockNotifier) {
	t.Helper()

	tasks := newMockTaskSource()
	owner := testUser("UTC", true)
	users := &mockUserDirectory{users: map[uuid.UUID]*domain.User{owner.ID: owner}}
	notifier := &mockNotifier{}

	cfg := config.SchedulerConfig{
		GenerationTime: "00:00",
		ScanInterval:   scanInterval,
		Lookahead:      5 * time.Minute,
	}
	gen := NewOccurrenceGenerator(tasks, users, nil, nil)
	disp := NewReminderDispatcher(tasks, users, notifier,
		WindowMatcher{Lookahead: cfg.Lookahead}, nil, nil)
	return New(cfg, gen, disp, nil), tasks, notifier
}

func TestSchedulerStartStop(t *testing.T) {
	s, _, _ := testScheduler(t, time.Hour)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestSchedulerRunsScanCycles(t *testing.T) {
	s, tasks, notifier := testScheduler(t, 50*time.Millisecond)

	now := time.Now().UTC()
	due := now.Add(2 * time.Minute)
	task := windowTask(due, domain.TimeOfDay{Hour: due.Hour(), Minute: due.Minute()})
	owner := testUser("UTC", true)
	task.UserID = owner.ID

	// Rebuild the fixture around this owner so the directory resolves it.
	users := &mockUserDirectory{users: map[uuid.UUID]*domain.User{owner.ID: owner}}
	tasks.candidates = []*domain.Task{task}
	cfg := config.SchedulerConfig{GenerationTime: "00:00", ScanInterval: 50 * time.Millisecond, Lookahead: 5 * time.Minute}
	gen := NewOccurrenceGenerator(tasks, users, nil, nil)
	disp := NewReminderDispatcher(tasks, users, notifier,
		WindowMatcher{Lookahead: cfg.Lookahead}, nil, nil)
	s = New(cfg, gen, disp, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for notifier.sentCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if notifier.sentCount() != 1 {
		t.Errorf("expected the periodic scan to deliver exactly once, got %d", notifier.sentCount())
	}
}
