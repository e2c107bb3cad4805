package scheduler

import (
	"time"

	"github.com/tasknest/tasknest-api/internal/domain"
)

// WindowMatcher decides whether a task's due instant falls inside the
// reminder window [now, now+Lookahead).
type WindowMatcher struct {
	// Lookahead is the width of the reminder window. It must be at least
	// the scan interval, or a due instant could fall between two
	// consecutive scans; config validation enforces that.
	Lookahead time.Duration
}

// IsDueSoon reports whether task is due within the window starting at now,
// evaluated in the owner's location. Tasks that are done, already reminded,
// or missing a due date or due time never match. Instants already in the
// past do not match either; an overdue task gets no late reminder.
func (m WindowMatcher) IsDueSoon(task *domain.Task, loc *time.Location, now time.Time) bool {
	if task.Status == domain.TaskStatusDone || task.ReminderSent {
		return false
	}
	if task.DueDate == nil || task.DueTime == nil {
		return false
	}
	due := ComposeLocal(*task.DueDate, *task.DueTime, loc)
	return !due.Before(now) && due.Before(now.Add(m.Lookahead))
}
