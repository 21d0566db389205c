package utils

import (
	"time"

	"github.com/shopspring/decimal"

	"carrental-backend/internal/domain"
)

// MoneyPlaces is the number of fractional digits kept on every amount.
const MoneyPlaces = 2

const (
	// Cancelling closer than this to the start instant costs one day's rate.
	cancellationWindow = 24 * time.Hour
	// More late days than this add one base daily rate on top of the late fee.
	lateSurchargeAfterDays = 3
)

// PriceBreakdown itemizes a booking's charges.
type PriceBreakdown struct {
	RentalDays      int             `json:"rental_days"`
	LateDays        int             `json:"late_days"`
	BaseFee         decimal.Decimal `json:"base_fee"`
	AddonsFee       decimal.Decimal `json:"addons_fee"`
	InsuranceFee    decimal.Decimal `json:"insurance_fee"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	LateFee         decimal.Decimal `json:"late_fee"`
	CancellationFee decimal.Decimal `json:"cancellation_fee"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
}

// RoundMoney rounds half-up to MoneyPlaces. All amounts here are
// non-negative, so half-away-from-zero is half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// SumAddons totals the daily prices of all add-ons.
func SumAddons(addons map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, price := range addons {
		total = total.Add(price)
	}
	return total
}

// EstimatedTotal is (base rate + add-ons + insurance) per day times rental days.
func EstimatedTotal(b *domain.Booking) decimal.Decimal {
	daily := b.BaseDailyRate.Add(SumAddons(b.Addons)).Add(b.InsuranceDailyFee)
	return RoundMoney(daily.Mul(decimal.NewFromInt(int64(b.RentalDays()))))
}

// CancellationFee charges one base daily rate when cancelledAt falls less
// than 24 hours before the start instant (start date, 00:00 UTC).
func CancellationFee(b *domain.Booking, cancelledAt time.Time) decimal.Decimal {
	startInstant := domain.DateOf(b.StartDate)
	if startInstant.Sub(cancelledAt.UTC()) < cancellationWindow {
		return RoundMoney(b.BaseDailyRate)
	}
	return RoundMoney(decimal.Zero)
}

// LateDays counts whole calendar days between the end date and the return
// date. Zero when the car has not been returned.
func LateDays(b *domain.Booking) int {
	if b.ReturnTime == nil {
		return 0
	}
	return max(0, domain.DaysBetween(b.EndDate, *b.ReturnTime))
}

// LateFee is late fee per day times late days, plus one base daily rate once
// the return is more than three days late.
func LateFee(b *domain.Booking) decimal.Decimal {
	lateDays := LateDays(b)
	fee := b.LateFeePerDay.Mul(decimal.NewFromInt(int64(lateDays)))
	if lateDays > lateSurchargeAfterDays {
		fee = fee.Add(b.BaseDailyRate)
	}
	return RoundMoney(fee)
}

// FinalTotal is the estimated total plus late and cancellation fees, minus
// the booking's discount. cancelledAt is nil unless the booking is being
// cancelled.
func FinalTotal(b *domain.Booking, cancelledAt *time.Time) decimal.Decimal {
	return CalculateBreakdown(b, cancelledAt).Total
}

// CalculateBreakdown itemizes the same computation FinalTotal performs.
func CalculateBreakdown(b *domain.Booking, cancelledAt *time.Time) PriceBreakdown {
	days := decimal.NewFromInt(int64(b.RentalDays()))
	breakdown := PriceBreakdown{
		RentalDays:      b.RentalDays(),
		LateDays:        LateDays(b),
		BaseFee:         RoundMoney(b.BaseDailyRate.Mul(days)),
		AddonsFee:       RoundMoney(SumAddons(b.Addons).Mul(days)),
		InsuranceFee:    RoundMoney(b.InsuranceDailyFee.Mul(days)),
		Subtotal:        EstimatedTotal(b),
		LateFee:         LateFee(b),
		CancellationFee: RoundMoney(decimal.Zero),
		Discount:        RoundMoney(b.DiscountTotal),
	}
	if cancelledAt != nil {
		breakdown.CancellationFee = CancellationFee(b, *cancelledAt)
	}
	breakdown.Total = RoundMoney(breakdown.Subtotal.
		Add(breakdown.LateFee).
		Add(breakdown.CancellationFee).
		Sub(b.DiscountTotal))
	return breakdown
}
