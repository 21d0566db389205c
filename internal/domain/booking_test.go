package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBookingStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		allowed  bool
	}{
		{BookingStatusPending, BookingStatusApproved, true},
		{BookingStatusPending, BookingStatusRejected, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusActive, false},
		{BookingStatusApproved, BookingStatusActive, true},
		{BookingStatusApproved, BookingStatusCancelled, true},
		{BookingStatusApproved, BookingStatusRejected, false},
		{BookingStatusActive, BookingStatusCompleted, true},
		{BookingStatusActive, BookingStatusOverdue, true},
		{BookingStatusActive, BookingStatusCancelled, true},
		{BookingStatusRejected, BookingStatusActive, false},
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusCancelled, BookingStatusCancelled, false},
		{BookingStatusOverdue, BookingStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestBookingStatus_Classification(t *testing.T) {
	for _, s := range []BookingStatus{BookingStatusRejected, BookingStatusCancelled, BookingStatusCompleted, BookingStatusOverdue} {
		assert.True(t, s.IsTerminal(), s.String())
	}
	for _, s := range []BookingStatus{BookingStatusPending, BookingStatusApproved, BookingStatusActive} {
		assert.False(t, s.IsTerminal(), s.String())
	}
	for _, s := range BindingStatuses {
		assert.True(t, s.IsBinding(), s.String())
	}
	assert.False(t, BookingStatusPending.IsBinding())
	assert.False(t, BookingStatusCompleted.IsBinding())
}

func TestBookingStatus_Text(t *testing.T) {
	text, err := BookingStatusOverdue.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "overdue", string(text))

	var s BookingStatus
	require.NoError(t, s.UnmarshalText([]byte("approved")))
	assert.Equal(t, BookingStatusApproved, s)

	err = s.UnmarshalText([]byte("APPROVED"))
	assert.True(t, errors.Is(err, ErrValidation))

	require.NoError(t, s.Scan([]byte("active")))
	assert.Equal(t, BookingStatusActive, s)
}

func TestInsurancePlan(t *testing.T) {
	plan, err := ParseInsurancePlan("")
	require.NoError(t, err)
	assert.Equal(t, InsurancePlanNone, plan)

	plan, err = ParseInsurancePlan("premium")
	require.NoError(t, err)
	assert.True(t, plan.DailyFee().Equal(decimal.RequireFromString("30")))

	_, err = ParseInsurancePlan("gold")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestRangesOverlap(t *testing.T) {
	tests := []struct {
		name     string
		aStart   time.Time
		aEnd     time.Time
		expected bool
	}{
		{"Identical", date(2026, 5, 10), date(2026, 5, 15), true},
		{"Ends where other starts", date(2026, 5, 5), date(2026, 5, 10), false},
		{"Starts where other ends", date(2026, 5, 15), date(2026, 5, 20), false},
		{"Straddles start", date(2026, 5, 8), date(2026, 5, 11), true},
		{"Straddles end", date(2026, 5, 14), date(2026, 5, 18), true},
		{"Contained", date(2026, 5, 11), date(2026, 5, 12), true},
		{"Contains", date(2026, 5, 1), date(2026, 5, 30), true},
		{"Before", date(2026, 5, 1), date(2026, 5, 3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RangesOverlap(tt.aStart, tt.aEnd, date(2026, 5, 10), date(2026, 5, 15)))
			// symmetric
			assert.Equal(t, tt.expected, RangesOverlap(date(2026, 5, 10), date(2026, 5, 15), tt.aStart, tt.aEnd))
		})
	}
}

func TestBooking_Validate(t *testing.T) {
	valid := func() *Booking {
		return &Booking{
			StartDate:     date(2026, 5, 10),
			EndDate:       date(2026, 5, 12),
			BaseDailyRate: decimal.RequireFromString("50"),
			LateFeePerDay: decimal.RequireFromString("20"),
		}
	}

	t.Run("Valid", func(t *testing.T) {
		b := valid()
		assert.NoError(t, b.Validate())
		assert.Equal(t, 2, b.RentalDays())
	})

	t.Run("Empty range", func(t *testing.T) {
		b := valid()
		b.EndDate = b.StartDate
		assert.ErrorIs(t, b.Validate(), ErrValidation)
	})

	t.Run("Zero rate", func(t *testing.T) {
		b := valid()
		b.BaseDailyRate = decimal.Zero
		assert.ErrorIs(t, b.Validate(), ErrValidation)
	})

	t.Run("Negative addon", func(t *testing.T) {
		b := valid()
		b.Addons = map[string]decimal.Decimal{"gps": decimal.RequireFromString("-1")}
		assert.ErrorIs(t, b.Validate(), ErrValidation)
	})

	t.Run("Timestamps normalized", func(t *testing.T) {
		b := valid()
		pickup := time.Date(2026, 5, 10, 9, 0, 0, 0, time.FixedZone("X", 3600))
		b.PickupTime = &pickup
		require.NoError(t, b.Validate())
		assert.Equal(t, time.UTC, b.PickupTime.Location())
		assert.Equal(t, 8, b.PickupTime.Hour())
	})
}

func TestBooking_Clone(t *testing.T) {
	ret := date(2026, 5, 12)
	b := &Booking{
		Addons:     map[string]decimal.Decimal{"gps": decimal.RequireFromString("5")},
		ReturnTime: &ret,
	}
	c := b.Clone()
	c.Addons["wifi"] = decimal.RequireFromString("3")
	*c.ReturnTime = date(2030, 1, 1)

	assert.Len(t, b.Addons, 1)
	assert.Equal(t, date(2026, 5, 12), *b.ReturnTime)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 3, DaysBetween(date(2026, 2, 27), date(2026, 3, 2)))
	assert.Equal(t, 0, DaysBetween(date(2026, 3, 2), date(2026, 3, 2).Add(23*time.Hour)))
	assert.Equal(t, -1, DaysBetween(date(2026, 3, 2), date(2026, 3, 1)))
}
