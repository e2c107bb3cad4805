package scheduler

import (
	"time"

	"github.com/tasknest/tasknest-api/internal/domain"
)

// Clock abstracts "now" so cycle logic can be tested at fixed instants.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// ComposeLocal combines a calendar day, a wall-clock time and a location
// into the concrete instant a task is due. This is the only place the
// timezone-naive due date and due time meet a timezone; every comparison
// against "now" goes through it.
func ComposeLocal(day time.Time, tod domain.TimeOfDay, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, loc)
}
