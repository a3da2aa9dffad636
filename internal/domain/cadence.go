package domain

import (
	"fmt"
	"time"
)

type CadenceKind string

const (
	// CadenceFixedInterval spaces due dates a fixed number of days apart.
	// Over a long tenure this drifts away from calendar-month billing.
	CadenceFixedInterval CadenceKind = "fixed_interval"
	// CadenceCalendarMonth keeps the disbursement day of month, clamped to
	// the last day for short months.
	CadenceCalendarMonth CadenceKind = "calendar_month"
)

const DefaultIntervalDays = 30

// Cadence is the billing period policy. It is frozen on a loan at creation
// so later configuration changes never move an existing schedule.
type Cadence struct {
	Kind         CadenceKind
	IntervalDays int
}

func DefaultCadence() Cadence {
	return Cadence{Kind: CadenceFixedInterval, IntervalDays: DefaultIntervalDays}
}

func NewCadence(kind string, intervalDays int) (Cadence, error) {
	switch CadenceKind(kind) {
	case CadenceFixedInterval:
		if intervalDays <= 0 {
			return Cadence{}, fmt.Errorf("interval days must be positive, got %d", intervalDays)
		}
		return Cadence{Kind: CadenceFixedInterval, IntervalDays: intervalDays}, nil
	case CadenceCalendarMonth:
		return Cadence{Kind: CadenceCalendarMonth}, nil
	default:
		return Cadence{}, fmt.Errorf("unknown billing cadence %q", kind)
	}
}

// DueDate returns the due date of the given 1-based period counted from anchor.
func (c Cadence) DueDate(anchor time.Time, period int) time.Time {
	if c.Kind == CadenceCalendarMonth {
		return addMonthsClamped(anchor, period)
	}
	days := c.IntervalDays
	if days <= 0 {
		days = DefaultIntervalDays
	}
	return anchor.AddDate(0, 0, period*days)
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
