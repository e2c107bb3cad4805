package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/domain"
)

func recurringTemplate(owner *domain.User, due time.Time, pattern domain.RecurrencePattern) *domain.Task {
	day := domain.DateOnly(due)
	tod := domain.TimeOfDay{Hour: 9, Minute: 0}
	return &domain.Task{
		ID:          uuid.New(),
		UserID:      owner.ID,
		Title:       "weekly report",
		Priority:    domain.TaskPriorityMedium,
		Status:      domain.TaskStatusTodo,
		DueDate:     &day,
		DueTime:     &tod,
		IsRecurring: true,
		Recurrence:  &pattern,
	}
}

func generatorFixture(t *testing.T, now time.Time) (*OccurrenceGenerator, *mockTaskSource, *domain.User) {
	t.Helper()

	tasks := newMockTaskSource()
	owner := testUser("UTC", true)
	users := &mockUserDirectory{users: map[uuid.UUID]*domain.User{owner.ID: owner}}
	g := NewOccurrenceGenerator(tasks, users, fixedClock{now: now}, nil)
	return g, tasks, owner
}

func TestGeneratorSpawnsOccurrenceDueToday(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 5, 0, 0, time.UTC)
	g, tasks, owner := generatorFixture(t, now)

	// Daily template last due yesterday; the next occurrence lands today.
	tmpl := recurringTemplate(owner,
		time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC),
		domain.RecurrencePattern{Frequency: domain.FrequencyDaily, Interval: 1})
	tasks.templates = []*domain.Task{tmpl}

	created, err := g.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 occurrence created, got %d", created)
	}

	occ := tasks.created[0]
	if occ.OriginTaskID == nil || *occ.OriginTaskID != tmpl.ID {
		t.Error("occurrence does not reference its template")
	}
	wantDue := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !occ.DueDate.Equal(wantDue) {
		t.Errorf("expected due date %v, got %v", wantDue, occ.DueDate)
	}
	if occ.IsRecurring {
		t.Error("spawned occurrence must not itself be recurring")
	}
	if occ.ReminderSent {
		t.Error("spawned occurrence must start with an unsent reminder")
	}
}

func TestGeneratorSkipsWhenNextOccurrenceIsNotToday(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 5, 0, 0, time.UTC)
	g, tasks, owner := generatorFixture(t, now)

	// Weekly template due two days ago; next lands five days out.
	tmpl := recurringTemplate(owner,
		time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC),
		domain.RecurrencePattern{Frequency: domain.FrequencyWeekly, Interval: 1})
	tasks.templates = []*domain.Task{tmpl}

	created, err := g.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if created != 0 || tasks.createdCount() != 0 {
		t.Errorf("expected no occurrences, got %d", created)
	}
}

func TestGeneratorIsIdempotentWithinADay(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 5, 0, 0, time.UTC)
	g, tasks, owner := generatorFixture(t, now)

	tmpl := recurringTemplate(owner,
		time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC),
		domain.RecurrencePattern{Frequency: domain.FrequencyDaily, Interval: 1})
	tasks.templates = []*domain.Task{tmpl}

	if _, err := g.RunCycle(context.Background()); err != nil {
		t.Fatalf("first RunCycle failed: %v", err)
	}
	created, err := g.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("second RunCycle failed: %v", err)
	}
	if created != 0 {
		t.Errorf("expected second cycle to create nothing, got %d", created)
	}
	if tasks.createdCount() != 1 {
		t.Errorf("expected exactly one stored occurrence, got %d", tasks.createdCount())
	}
}

func TestGeneratorSkipsExhaustedRecurrence(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 5, 0, 0, time.UTC)
	g, tasks, owner := generatorFixture(t, now)

	end := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)
	tmpl := recurringTemplate(owner,
		time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC),
		domain.RecurrencePattern{Frequency: domain.FrequencyDaily, Interval: 1, EndDate: &end})
	tasks.templates = []*domain.Task{tmpl}

	created, err := g.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if created != 0 || tasks.createdCount() != 0 {
		t.Errorf("expected exhausted template to spawn nothing, got %d", created)
	}
}

func TestGeneratorIsolatesTemplateFailures(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 5, 0, 0, time.UTC)
	g, tasks, owner := generatorFixture(t, now)

	broken := recurringTemplate(owner,
		time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC),
		domain.RecurrencePattern{Frequency: domain.FrequencyDaily, Interval: 1})
	healthy := recurringTemplate(owner,
		time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC),
		domain.RecurrencePattern{Frequency: domain.FrequencyDaily, Interval: 1})
	tasks.templates = []*domain.Task{broken, healthy}
	tasks.createErr = func(task *domain.Task) error {
		if task.OriginTaskID != nil && *task.OriginTaskID == broken.ID {
			return errors.New("connection reset")
		}
		return nil
	}

	created, err := g.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if created != 1 {
		t.Errorf("expected the healthy template to still spawn, got %d", created)
	}
}

func TestGeneratorMatchesDayInOwnerTimezone(t *testing.T) {
	// 03:00 UTC on March 16 is still March 15 in New York.
	now := time.Date(2024, time.March, 16, 3, 0, 0, 0, time.UTC)

	tasks := newMockTaskSource()
	owner := testUser("America/New_York", true)
	users := &mockUserDirectory{users: map[uuid.UUID]*domain.User{owner.ID: owner}}
	g := NewOccurrenceGenerator(tasks, users, fixedClock{now: now}, nil)

	tmpl := recurringTemplate(owner,
		time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC),
		domain.RecurrencePattern{Frequency: domain.FrequencyDaily, Interval: 1})
	tasks.templates = []*domain.Task{tmpl}

	created, err := g.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	// Next occurrence is March 15; the owner's clock still reads March 15.
	if created != 1 {
		t.Errorf("expected occurrence for the owner's current day, got %d", created)
	}
}
