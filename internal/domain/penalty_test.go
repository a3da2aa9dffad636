package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPenaltyPolicy_Compute(t *testing.T) {
	policy := PenaltyPolicy{PerDay: decimal.NewFromInt(75)}
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"paid on due date", due, "0"},
		{"paid late on the due date", due.Add(23 * time.Hour), "0"},
		{"paid early", due.AddDate(0, 0, -3), "0"},
		{"five days late", due.AddDate(0, 0, 5), "375"},
		{"five days late in the evening", due.AddDate(0, 0, 5).Add(20 * time.Hour), "375"},
		{"one day late by a minute past midnight", due.AddDate(0, 0, 1).Add(time.Minute), "75"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := policy.Compute(due, tc.at)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}
}

func TestDaysLate_AcrossMonthBoundary(t *testing.T) {
	due := time.Date(2024, 2, 27, 18, 0, 0, 0, time.UTC)
	at := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 4, DaysLate(due, at))
}

func TestPenaltyPolicy_Resolve(t *testing.T) {
	policy := PenaltyPolicy{PerDay: decimal.NewFromInt(75)}
	computed := decimal.NewFromInt(150)
	ptr := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	t.Run("nil uses computed default", func(t *testing.T) {
		got, err := policy.Resolve(computed, nil, false)
		require.NoError(t, err)
		assert.True(t, got.Equal(computed))
	})

	t.Run("waiver below default is accepted", func(t *testing.T) {
		got, err := policy.Resolve(computed, ptr("50"), false)
		require.NoError(t, err)
		assert.Equal(t, "50", got.String())
	})

	t.Run("above default without override is rejected", func(t *testing.T) {
		_, err := policy.Resolve(computed, ptr("200"), false)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Contains(t, err.Error(), "override")
	})

	t.Run("above default with override is accepted", func(t *testing.T) {
		got, err := policy.Resolve(computed, ptr("200"), true)
		require.NoError(t, err)
		assert.Equal(t, "200", got.String())
	})

	t.Run("negative is rejected even with override", func(t *testing.T) {
		_, err := policy.Resolve(computed, ptr("-1"), true)
		assert.True(t, errors.Is(err, ErrValidation))
	})
}

func TestNewPenaltyPolicy(t *testing.T) {
	p, err := NewPenaltyPolicy("75")
	require.NoError(t, err)
	assert.True(t, p.PerDay.Equal(DefaultPenaltyPerDay))

	_, err = NewPenaltyPolicy("abc")
	assert.Error(t, err)

	_, err = NewPenaltyPolicy("-2")
	assert.True(t, errors.Is(err, ErrValidation))
}
