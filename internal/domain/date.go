package domain

import (
	"time"

	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day component. Slots and
// reservations are keyed on whole days.
type Date struct {
	t time.Time
}

// ParseDate parses an ISO calendar day (YYYY-MM-DD). Invalid input is
// rejected before any ledger is touched.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, apperrors.NewInvalidDate(s)
	}
	return Date{t: t}, nil
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, m, d)
}

func (d Date) String() string { return d.t.Format(DateLayout) }

// Time returns the day as midnight UTC, the representation stored in
// Postgres DATE columns.
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Equal reports whether two dates name the same calendar day.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }
