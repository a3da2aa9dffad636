package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCadence_FixedIntervalDriftsFromCalendarMonths(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fixed := DefaultCadence()
	monthly := Cadence{Kind: CadenceCalendarMonth}

	assert.Equal(t, time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC), fixed.DueDate(anchor, 12))
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), monthly.DueDate(anchor, 12))

	// Over a five year tenure the fixed cadence is almost a month early.
	drift := monthly.DueDate(anchor, 60).Sub(fixed.DueDate(anchor, 60))
	assert.Equal(t, 27*24*time.Hour, drift)
}

func TestCadence_CalendarMonthClampsToMonthEnd(t *testing.T) {
	monthly := Cadence{Kind: CadenceCalendarMonth}
	anchor := time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 2, 29, 9, 30, 0, 0, time.UTC), monthly.DueDate(anchor, 1))
	assert.Equal(t, time.Date(2024, 3, 31, 9, 30, 0, 0, time.UTC), monthly.DueDate(anchor, 2))
	assert.Equal(t, time.Date(2024, 4, 30, 9, 30, 0, 0, time.UTC), monthly.DueDate(anchor, 3))
	assert.Equal(t, time.Date(2025, 2, 28, 9, 30, 0, 0, time.UTC), monthly.DueDate(anchor, 13))
}

func TestNewCadence(t *testing.T) {
	c, err := NewCadence("fixed_interval", 14)
	require.NoError(t, err)
	assert.Equal(t, 14, c.IntervalDays)

	c, err = NewCadence("calendar_month", 0)
	require.NoError(t, err)
	assert.Equal(t, CadenceCalendarMonth, c.Kind)

	_, err = NewCadence("fixed_interval", 0)
	assert.Error(t, err)

	_, err = NewCadence("weekly", 7)
	assert.Error(t, err)
}
