package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"carrental-backend/internal/domain"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assertMoney(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, money(expected).Equal(actual), "expected %s, got %s", expected, actual.StringFixed(2))
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"2.345", "2.35"},
		{"10", "10.00"},
		{"0", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assertMoney(t, tt.expected, RoundMoney(money(tt.in)))
		})
	}
}

func TestEstimatedTotal(t *testing.T) {
	t.Run("Rate, insurance and addon over three days", func(t *testing.T) {
		b := &domain.Booking{
			StartDate:         day(2026, 3, 1),
			EndDate:           day(2026, 3, 4),
			BaseDailyRate:     money("100.00"),
			InsuranceDailyFee: domain.InsurancePlanBasic.DailyFee(),
			Addons:            map[string]decimal.Decimal{"gps": money("5.00")},
		}
		assertMoney(t, "360.00", EstimatedTotal(b))
	})

	t.Run("No addons or insurance", func(t *testing.T) {
		b := &domain.Booking{
			StartDate:     day(2026, 3, 1),
			EndDate:       day(2026, 3, 2),
			BaseDailyRate: money("49.99"),
		}
		assertMoney(t, "49.99", EstimatedTotal(b))
	})

	t.Run("Rounds half up on fractional rates", func(t *testing.T) {
		b := &domain.Booking{
			StartDate:     day(2026, 3, 1),
			EndDate:       day(2026, 3, 4),
			BaseDailyRate: money("33.335"),
		}
		// 33.335 * 3 = 100.005
		assertMoney(t, "100.01", EstimatedTotal(b))
	})

	t.Run("Idempotent on the same snapshot", func(t *testing.T) {
		b := &domain.Booking{
			StartDate:         day(2026, 3, 1),
			EndDate:           day(2026, 3, 8),
			BaseDailyRate:     money("72.45"),
			InsuranceDailyFee: domain.InsurancePlanPremium.DailyFee(),
			Addons:            map[string]decimal.Decimal{"gps": money("5"), "child_seat": money("7.5")},
		}
		first := EstimatedTotal(b)
		second := EstimatedTotal(b)
		assert.True(t, first.Equal(second))
	})
}

func TestLateFee(t *testing.T) {
	b := &domain.Booking{
		StartDate:     day(2026, 3, 5),
		EndDate:       day(2026, 3, 10),
		BaseDailyRate: money("80.00"),
		LateFeePerDay: money("20.00"),
	}

	t.Run("Not returned", func(t *testing.T) {
		assert.Equal(t, 0, LateDays(b))
		assertMoney(t, "0.00", LateFee(b))
	})

	t.Run("Returned on end date", func(t *testing.T) {
		returned := day(2026, 3, 10).Add(17 * time.Hour)
		b := b.Clone()
		b.ReturnTime = &returned
		assert.Equal(t, 0, LateDays(b))
		assertMoney(t, "0.00", LateFee(b))
	})

	t.Run("Returned early", func(t *testing.T) {
		returned := day(2026, 3, 8)
		b := b.Clone()
		b.ReturnTime = &returned
		assert.Equal(t, 0, LateDays(b))
	})

	t.Run("Three days late has no surcharge", func(t *testing.T) {
		returned := day(2026, 3, 13).Add(9 * time.Hour)
		b := b.Clone()
		b.ReturnTime = &returned
		assert.Equal(t, 3, LateDays(b))
		assertMoney(t, "60.00", LateFee(b))
	})

	t.Run("Four days late adds one base rate", func(t *testing.T) {
		returned := day(2026, 3, 14)
		b := b.Clone()
		b.ReturnTime = &returned
		assert.Equal(t, 4, LateDays(b))
		assertMoney(t, "160.00", LateFee(b))
	})

	t.Run("Return time in another zone is normalized", func(t *testing.T) {
		// 2026-03-11 01:00 in UTC+13 is still 2026-03-10 in UTC.
		zone := time.FixedZone("NZDT", 13*3600)
		returned := time.Date(2026, 3, 11, 1, 0, 0, 0, zone)
		b := b.Clone()
		b.ReturnTime = &returned
		assert.Equal(t, 0, LateDays(b))
	})
}

func TestCancellationFee(t *testing.T) {
	b := &domain.Booking{
		StartDate:     day(2026, 6, 2),
		EndDate:       day(2026, 6, 5),
		BaseDailyRate: money("90.00"),
	}

	t.Run("Within 24 hours", func(t *testing.T) {
		assertMoney(t, "90.00", CancellationFee(b, day(2026, 6, 1).Add(10*time.Hour)))
	})

	t.Run("Exactly 24 hours before is free", func(t *testing.T) {
		assertMoney(t, "0.00", CancellationFee(b, day(2026, 6, 1)))
	})

	t.Run("48 hours before", func(t *testing.T) {
		assertMoney(t, "0.00", CancellationFee(b, day(2026, 5, 31)))
	})

	t.Run("After the start", func(t *testing.T) {
		assertMoney(t, "90.00", CancellationFee(b, day(2026, 6, 3)))
	})
}

func TestFinalTotal(t *testing.T) {
	base := &domain.Booking{
		StartDate:         day(2026, 3, 7),
		EndDate:           day(2026, 3, 10),
		BaseDailyRate:     money("80.00"),
		InsuranceDailyFee: domain.InsurancePlanNone.DailyFee(),
		LateFeePerDay:     money("20.00"),
	}

	t.Run("On time return", func(t *testing.T) {
		returned := day(2026, 3, 10)
		b := base.Clone()
		b.ReturnTime = &returned
		assertMoney(t, "240.00", FinalTotal(b, nil))
	})

	t.Run("Late return", func(t *testing.T) {
		returned := day(2026, 3, 14)
		b := base.Clone()
		b.ReturnTime = &returned
		assertMoney(t, "400.00", FinalTotal(b, nil))
	})

	t.Run("Cancelled late", func(t *testing.T) {
		cancelledAt := day(2026, 3, 6).Add(12 * time.Hour)
		assertMoney(t, "320.00", FinalTotal(base, &cancelledAt))
	})

	t.Run("Discount is subtracted", func(t *testing.T) {
		b := base.Clone()
		b.DiscountTotal = money("15.50")
		assertMoney(t, "224.50", FinalTotal(b, nil))
	})

	t.Run("Breakdown matches total", func(t *testing.T) {
		returned := day(2026, 3, 14)
		b := base.Clone()
		b.ReturnTime = &returned
		b.Addons = map[string]decimal.Decimal{"gps": money("5.00")}

		breakdown := CalculateBreakdown(b, nil)
		assert.Equal(t, 3, breakdown.RentalDays)
		assert.Equal(t, 4, breakdown.LateDays)
		assertMoney(t, "240.00", breakdown.BaseFee)
		assertMoney(t, "15.00", breakdown.AddonsFee)
		assertMoney(t, "255.00", breakdown.Subtotal)
		assertMoney(t, "160.00", breakdown.LateFee)
		assertMoney(t, "415.00", breakdown.Total)
		assert.True(t, breakdown.Total.Equal(FinalTotal(b, nil)))
	})
}
