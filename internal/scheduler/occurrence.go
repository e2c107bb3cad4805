package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/platform/logger"
	"github.com/tasknest/tasknest-api/internal/store"
)

// TemplateSource is the slice of the task store the occurrence generator
// consumes. *postgres.PostgresTaskStore satisfies it.
type TemplateSource interface {
	// FindRecurringActive retrieves recurring template tasks whose pattern
	// has not expired as of the given calendar day.
	FindRecurringActive(ctx context.Context, day time.Time) ([]*domain.Task, error)

	// Create persists a task. For generated occurrences it returns
	// store.ErrOccurrenceExists when an occurrence for the same template
	// and calendar day is already present.
	Create(ctx context.Context, task *domain.Task) error
}

// UserDirectory resolves task owners. Both the generator and the dispatcher
// need the owner's preferences and timezone. *postgres.PostgresUserStore
// satisfies it.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// OccurrenceGenerator runs the daily cycle that spawns dated occurrences
// from recurring template tasks.
type OccurrenceGenerator struct {
	tasks  TemplateSource
	users  UserDirectory
	clock  Clock
	logger *slog.Logger
}

// NewOccurrenceGenerator creates a generator over the given sources.
// A nil clock selects the system clock.
func NewOccurrenceGenerator(tasks TemplateSource, users UserDirectory, clock Clock, log *slog.Logger) *OccurrenceGenerator {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &OccurrenceGenerator{
		tasks:  tasks,
		users:  users,
		clock:  clock,
		logger: log.With(slog.String("component", "occurrence_generator")),
	}
}

// RunCycle executes one generation pass: for every active recurring
// template, compute the next occurrence after its current due date, and if
// that occurrence lands on today's calendar day in the owner's timezone,
// spawn a concrete task for it. A failure on one template never aborts the
// pass; each template is handled in isolation. Returns the number of
// occurrences created.
func (g *OccurrenceGenerator) RunCycle(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)
	now := g.clock.Now()

	templates, err := g.tasks.FindRecurringActive(ctx, domain.DateOnly(now.UTC()))
	if err != nil {
		return 0, err
	}

	created := 0
	for _, tmpl := range templates {
		ok, err := g.generateForTemplate(ctx, tmpl, now)
		if err != nil {
			log.Error("occurrence generation failed for template",
				slog.String("task_id", tmpl.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if ok {
			created++
		}
	}

	log.Info("generation cycle complete",
		slog.Int("templates", len(templates)),
		slog.Int("created", created))
	return created, nil
}

func (g *OccurrenceGenerator) generateForTemplate(ctx context.Context, tmpl *domain.Task, now time.Time) (bool, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if tmpl.Recurrence == nil || tmpl.DueDate == nil {
		// FindRecurringActive should not return these; skip if one slips through.
		return false, nil
	}

	next, err := tmpl.Recurrence.NextOccurrence(*tmpl.DueDate)
	if err != nil {
		if errors.Is(err, domain.ErrRecurrenceExhausted) {
			log.Debug("recurrence exhausted",
				slog.String("task_id", tmpl.ID.String()))
			return false, nil
		}
		return false, err
	}

	owner, err := g.users.GetByID(ctx, tmpl.UserID)
	if err != nil {
		return false, err
	}
	loc, err := owner.Location()
	if err != nil {
		return false, err
	}

	// Spawn only when the computed occurrence lands on today, measured in
	// the owner's timezone. Cycles on other days leave the template alone.
	if !domain.SameCalendarDay(next, now.In(loc)) {
		return false, nil
	}

	occ := tmpl.NewOccurrence(domain.DateOnly(next))
	if err := g.tasks.Create(ctx, occ); err != nil {
		if errors.Is(err, store.ErrOccurrenceExists) {
			// Another cycle on the same day already spawned it.
			log.Debug("occurrence already exists",
				slog.String("task_id", tmpl.ID.String()),
				slog.String("due_date", domain.DateOnly(next).Format(time.DateOnly)))
			return false, nil
		}
		return false, err
	}

	log.Info("occurrence created",
		slog.String("template_id", tmpl.ID.String()),
		slog.String("occurrence_id", occ.ID.String()),
		slog.String("due_date", domain.DateOnly(next).Format(time.DateOnly)))
	return true, nil
}
