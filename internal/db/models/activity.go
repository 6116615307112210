package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Activity represents one logged work session. EndTime stays NULL while the
// session is running and is set exactly once when it is finished.
type Activity struct {
	ID          uuid.UUID      `db:"id"`
	UserID      string         `db:"user_id"`
	Category    string         `db:"category"`
	Description string         `db:"description"`
	Tags        pq.StringArray `db:"tags"`
	StartTime   time.Time      `db:"start_time"`
	EndTime     *time.Time     `db:"end_time"`
	Hours       *float64       `db:"hours"`
	Year        int            `db:"year"`
	Month       int            `db:"month"`
	Day         int            `db:"day"`
}

// Open reports whether the session is still running.
func (a *Activity) Open() bool {
	return a.EndTime == nil
}

// Duration returns the elapsed time of the session. For an open session it is
// measured against now.
func (a *Activity) Duration(now time.Time) time.Duration {
	if a.EndTime != nil {
		return a.EndTime.Sub(a.StartTime)
	}
	return now.Sub(a.StartTime)
}
