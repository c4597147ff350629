// Package billing implements the membership billing cycle engine: due-date
// classification, calendar-month due-date advancement and revenue
// aggregation. Everything here is pure; persistence and delivery live in the
// repository and service layers.
package billing

import (
	"time"

	"github.com/studyhub-labs/librarypro-api/internal/models"
)

// State is the computed display status of a student.
type State string

const (
	StateActive   State = "active"
	StateDueToday State = "due_today"
	StateOverdue  State = "overdue"
	StateInactive State = "inactive"
)

// Classification is the result of classifying a student against a date.
type Classification struct {
	State       State
	DaysOverdue int
}

// Label returns the human label used by the dashboard tables.
func (c Classification) Label() string {
	switch c.State {
	case StateDueToday:
		return "Due Today"
	case StateOverdue:
		return "Overdue"
	case StateInactive:
		return "Inactive"
	default:
		return "Active"
	}
}

// Midnight truncates a timestamp to its calendar date in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Classify computes the display state of a student as of the given date.
// The inactive flag overrides every date-derived state. Both dates are
// midnight-normalized before comparison, so time-of-day never matters.
func Classify(student models.Student, asOf time.Time) Classification {
	if student.Status != models.StudentStatusActive {
		return Classification{State: StateInactive}
	}

	due := Midnight(student.DueDate)
	ref := Midnight(asOf)

	switch {
	case due.Equal(ref):
		return Classification{State: StateDueToday}
	case due.Before(ref):
		return Classification{State: StateOverdue, DaysOverdue: daysBetween(due, ref)}
	default:
		return Classification{State: StateActive}
	}
}

// IsUrgent reports whether a classification crosses the alert threshold.
// Overdue students below the threshold are still overdue for status
// purposes; alert surfacing is a separate query over the same data.
func IsUrgent(c Classification, notificationDays int) bool {
	return c.State == StateOverdue && c.DaysOverdue >= notificationDays
}

// NextDueDate advances a due date by exactly one calendar month and lands it
// on the configured due day. When the due day exceeds the length of the
// target month it clamps to that month's last day (day 31 into February
// yields Feb 28/29, never a rollover into March).
func NextDueDate(current time.Time, dueDay int) time.Time {
	cur := Midnight(current)
	year, month, _ := cur.Date()

	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	last := daysInMonth(firstOfNext.Year(), firstOfNext.Month())

	day := dueDay
	if day < 1 {
		day = 1
	}
	if day > last {
		day = last
	}

	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
