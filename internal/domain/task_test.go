package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	userID := uuid.New()

	task, err := NewTask(userID, "write report")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID")
	}
	if task.Status != TaskStatusTodo {
		t.Errorf("Expected status todo, got %s", task.Status)
	}
	if task.Priority != TaskPriorityMedium {
		t.Errorf("Expected priority medium, got %s", task.Priority)
	}
	if task.ReminderSent {
		t.Error("Expected ReminderSent false on a new task")
	}

	if _, err := NewTask(uuid.Nil, "x"); err != ErrEmptyTaskUserID {
		t.Errorf("Expected ErrEmptyTaskUserID, got %v", err)
	}
	if _, err := NewTask(userID, ""); err != ErrEmptyTaskTitle {
		t.Errorf("Expected ErrEmptyTaskTitle, got %v", err)
	}
}

func TestTaskValidateRecurring(t *testing.T) {
	due := date(2024, time.March, 10)
	valid := Task{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Title:       "water plants",
		Priority:    TaskPriorityLow,
		Status:      TaskStatusTodo,
		DueDate:     &due,
		IsRecurring: true,
		Recurrence:  &RecurrencePattern{Frequency: FrequencyDaily, Interval: 2},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	noPattern := valid
	noPattern.Recurrence = nil
	if err := noPattern.Validate(); err != ErrMissingRecurrence {
		t.Errorf("Expected ErrMissingRecurrence, got %v", err)
	}

	noDue := valid
	noDue.DueDate = nil
	if err := noDue.Validate(); err != ErrRecurrenceWithoutDue {
		t.Errorf("Expected ErrRecurrenceWithoutDue, got %v", err)
	}
	// The sentinels must sit under ErrValidation so the API layer can
	// answer with a client error instead of a server fault.
	if !errors.Is(noDue.Validate(), ErrValidation) {
		t.Error("Expected ErrRecurrenceWithoutDue to wrap ErrValidation")
	}

	badPattern := valid
	badPattern.Recurrence = &RecurrencePattern{Frequency: "hourly", Interval: 1}
	if err := badPattern.Validate(); !errors.Is(err, ErrInvalidRecurrence) {
		t.Errorf("Expected ErrInvalidRecurrence, got %v", err)
	}

	badStatus := valid
	badStatus.Status = "archived"
	if err := badStatus.Validate(); !errors.Is(err, ErrInvalidTaskStatus) {
		t.Errorf("Expected ErrInvalidTaskStatus, got %v", err)
	}
}

func TestNewOccurrenceCopiesTemplate(t *testing.T) {
	due := date(2024, time.March, 4)
	tod := TimeOfDay{Hour: 9, Minute: 30}
	end := date(2024, time.June, 1)
	template := Task{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Title:        "weekly review",
		Description:  "go through the backlog",
		Priority:     TaskPriorityHigh,
		Status:       TaskStatusDone,
		DueDate:      &due,
		DueTime:      &tod,
		ReminderSent: true,
		Tags:         []string{"work", "planning"},
		Category:     "admin",
		CustomFields: map[string]any{"room": "3b"},
		IsRecurring:  true,
		Recurrence: &RecurrencePattern{
			Frequency: FrequencyWeekly,
			Interval:  1,
			EndDate:   &end,
		},
	}

	next := date(2024, time.March, 11)
	occ := template.NewOccurrence(next)

	if occ.ID == template.ID || occ.ID == uuid.Nil {
		t.Error("Occurrence must get its own identity")
	}
	if occ.Status != TaskStatusTodo {
		t.Errorf("Expected status todo, got %s", occ.Status)
	}
	if occ.ReminderSent {
		t.Error("Occurrence must start with ReminderSent=false")
	}
	if occ.DueDate == nil || !occ.DueDate.Equal(next) {
		t.Errorf("Expected due date %v, got %v", next, occ.DueDate)
	}
	if occ.DueTime == nil || *occ.DueTime != tod {
		t.Errorf("Expected due time %v carried over, got %v", tod, occ.DueTime)
	}
	if occ.Title != template.Title || occ.Description != template.Description ||
		occ.Priority != template.Priority || occ.Category != template.Category {
		t.Error("Occurrence must copy title, description, priority, category")
	}
	if occ.OriginTaskID == nil || *occ.OriginTaskID != template.ID {
		t.Error("Occurrence must reference its template via OriginTaskID")
	}
	if occ.IsRecurring {
		t.Error("Occurrence itself must not be recurring")
	}

	// Copies are deep enough that mutating the occurrence leaves the
	// template untouched.
	occ.Tags[0] = "changed"
	occ.CustomFields["room"] = "changed"
	if template.Tags[0] != "work" || template.CustomFields["room"] != "3b" {
		t.Error("Occurrence copy mutated the template")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:03")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if tod.Hour != 9 || tod.Minute != 3 {
		t.Errorf("Expected 09:03, got %v", tod)
	}
	if tod.String() != "09:03" {
		t.Errorf("Expected canonical form 09:03, got %s", tod.String())
	}

	for _, bad := range []string{"", "9:03", "24:00", "12:60", "12-30", "12:3a", "1a:30", "+1:05", "12:-5"} {
		if _, err := ParseTimeOfDay(bad); !errors.Is(err, ErrInvalidTimeOfDay) {
			t.Errorf("%q: expected ErrInvalidTimeOfDay, got %v", bad, err)
		}
	}
}

func TestSameCalendarDay(t *testing.T) {
	a := time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, time.March, 10, 0, 1, 0, 0, time.UTC)
	if !SameCalendarDay(a, b) {
		t.Error("Expected same calendar day")
	}
	if SameCalendarDay(a, b.AddDate(0, 0, 1)) {
		t.Error("Expected different calendar days")
	}
}
