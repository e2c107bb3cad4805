package scheduler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/platform/logger"
	"github.com/tasknest/tasknest-api/internal/store"
)

// ReminderSource is the slice of the task store the dispatcher consumes.
// *postgres.PostgresTaskStore satisfies it.
type ReminderSource interface {
	// FindReminderCandidates retrieves tasks that could still need a
	// reminder: not done, reminder unsent, due date and due time present.
	FindReminderCandidates(ctx context.Context) ([]*domain.Task, error)

	// ClaimReminder atomically marks the reminder sent iff it was unsent,
	// reporting whether this call won the claim.
	ClaimReminder(ctx context.Context, id uuid.UUID) (bool, error)

	// ReleaseReminder undoes a claim after a failed delivery so a later
	// scan retries it.
	ReleaseReminder(ctx context.Context, id uuid.UUID) (bool, error)
}

// Notifier delivers a reminder to a task's owner.
type Notifier interface {
	SendReminder(ctx context.Context, user *domain.User, task *domain.Task) error
}

// ReminderDispatcher runs the frequent scan cycle: find candidate tasks,
// match them against the reminder window in the owner's timezone, claim
// each match and deliver its reminder.
type ReminderDispatcher struct {
	tasks    ReminderSource
	users    UserDirectory
	notifier Notifier
	matcher  WindowMatcher
	clock    Clock
	logger   *slog.Logger
}

// NewReminderDispatcher creates a dispatcher. A nil clock selects the
// system clock.
func NewReminderDispatcher(tasks ReminderSource, users UserDirectory, notifier Notifier, matcher WindowMatcher, clock Clock, log *slog.Logger) *ReminderDispatcher {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &ReminderDispatcher{
		tasks:    tasks,
		users:    users,
		notifier: notifier,
		matcher:  matcher,
		clock:    clock,
		logger:   log.With(slog.String("component", "reminder_dispatcher")),
	}
}

// RunCycle executes one reminder scan. The claim happens before the send:
// ClaimReminder's compare-and-set guarantees at most one delivery per task
// even when cycles overlap across processes, and a failed send releases the
// claim so the next cycle retries. A failure on one task never aborts the
// cycle. Returns the number of reminders delivered.
func (d *ReminderDispatcher) RunCycle(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	candidates, err := d.tasks.FindReminderCandidates(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, task := range candidates {
		ok, err := d.dispatchOne(ctx, task)
		if err != nil {
			log.Error("reminder dispatch failed",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if ok {
			sent++
		}
	}

	if sent > 0 {
		log.Info("reminder scan complete",
			slog.Int("candidates", len(candidates)),
			slog.Int("sent", sent))
	}
	return sent, nil
}

func (d *ReminderDispatcher) dispatchOne(ctx context.Context, task *domain.Task) (bool, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	owner, err := d.users.GetByID(ctx, task.UserID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("reminder candidate has no owner",
				slog.String("task_id", task.ID.String()))
			return false, nil
		}
		return false, err
	}
	if !owner.Preferences.EmailNotifications {
		return false, nil
	}
	loc, err := owner.Location()
	if err != nil {
		return false, err
	}

	if !d.matcher.IsDueSoon(task, loc, d.clock.Now()) {
		return false, nil
	}

	claimed, err := d.tasks.ClaimReminder(ctx, task.ID)
	if err != nil {
		return false, err
	}
	if !claimed {
		// A concurrent cycle got there first.
		return false, nil
	}

	if err := d.notifier.SendReminder(ctx, owner, task); err != nil {
		if _, relErr := d.tasks.ReleaseReminder(ctx, task.ID); relErr != nil {
			log.Error("failed to release reminder claim after send failure",
				slog.String("task_id", task.ID.String()),
				slog.String("error", relErr.Error()))
		}
		return false, err
	}

	log.Info("reminder sent",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", owner.ID.String()))
	return true, nil
}
