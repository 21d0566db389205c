package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Global rental length bounds, in whole days.
const (
	MinRentalDays = 1
	MaxRentalDays = 30
)

type BookingStatus uint8

const (
	BookingStatusPending BookingStatus = iota + 1
	BookingStatusApproved
	BookingStatusRejected
	BookingStatusActive
	BookingStatusCompleted
	BookingStatusOverdue
	BookingStatusCancelled
)

var bookingStatusNames = map[BookingStatus]string{
	BookingStatusPending:   "pending",
	BookingStatusApproved:  "approved",
	BookingStatusRejected:  "rejected",
	BookingStatusActive:    "active",
	BookingStatusCompleted: "completed",
	BookingStatusOverdue:   "overdue",
	BookingStatusCancelled: "cancelled",
}

// bookingTransitions is the lifecycle state machine. Statuses with no
// outgoing edges are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusApproved:  {BookingStatusActive, BookingStatusCancelled},
	BookingStatusActive:    {BookingStatusCompleted, BookingStatusOverdue, BookingStatusCancelled},
	BookingStatusRejected:  {},
	BookingStatusCompleted: {},
	BookingStatusOverdue:   {},
	BookingStatusCancelled: {},
}

// BindingStatuses occupy a car's calendar and take part in the overlap check.
var BindingStatuses = []BookingStatus{
	BookingStatusApproved,
	BookingStatusActive,
	BookingStatusOverdue,
}

func (s BookingStatus) String() string {
	if name, ok := bookingStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("BookingStatus(%d)", uint8(s))
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingStatusNames[s]
	return ok
}

// CanTransitionTo reports whether the state machine has an edge from s to target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

func (s BookingStatus) IsBinding() bool {
	switch s {
	case BookingStatusApproved, BookingStatusActive, BookingStatusOverdue:
		return true
	case BookingStatusPending, BookingStatusRejected, BookingStatusCompleted, BookingStatusCancelled:
		return false
	}
	return false
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	for status, name := range bookingStatusNames {
		if name == s {
			return status, nil
		}
	}
	return 0, Validationf("invalid booking status: %q", s)
}

func (s BookingStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid booking status: %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *BookingStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseBookingStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s BookingStatus) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *BookingStatus) Scan(src any) error {
	return scanText(src, s.UnmarshalText)
}

type InsurancePlan uint8

const (
	InsurancePlanNone InsurancePlan = iota
	InsurancePlanBasic
	InsurancePlanPremium
)

var insurancePlanNames = map[InsurancePlan]string{
	InsurancePlanNone:    "none",
	InsurancePlanBasic:   "basic",
	InsurancePlanPremium: "premium",
}

var insuranceDailyFees = map[InsurancePlan]decimal.Decimal{
	InsurancePlanNone:    decimal.RequireFromString("0.00"),
	InsurancePlanBasic:   decimal.RequireFromString("15.00"),
	InsurancePlanPremium: decimal.RequireFromString("30.00"),
}

func (p InsurancePlan) String() string {
	if name, ok := insurancePlanNames[p]; ok {
		return name
	}
	return fmt.Sprintf("InsurancePlan(%d)", uint8(p))
}

func (p InsurancePlan) IsValid() bool {
	_, ok := insurancePlanNames[p]
	return ok
}

// DailyFee is the per-day price of the plan, snapshotted into a booking at creation.
func (p InsurancePlan) DailyFee() decimal.Decimal {
	return insuranceDailyFees[p]
}

func ParseInsurancePlan(s string) (InsurancePlan, error) {
	if s == "" {
		return InsurancePlanNone, nil
	}
	for plan, name := range insurancePlanNames {
		if name == s {
			return plan, nil
		}
	}
	return 0, Validationf("invalid insurance plan: %q", s)
}

func (p InsurancePlan) MarshalText() ([]byte, error) {
	if _, ok := insurancePlanNames[p]; !ok {
		return nil, fmt.Errorf("invalid insurance plan: %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *InsurancePlan) UnmarshalText(text []byte) error {
	parsed, err := ParseInsurancePlan(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p InsurancePlan) Value() (driver.Value, error) {
	return p.String(), nil
}

func (p *InsurancePlan) Scan(src any) error {
	return scanText(src, p.UnmarshalText)
}

type Booking struct {
	ID        uuid.UUID     `json:"id"`
	RenterID  uuid.UUID     `json:"renter_id"`
	CarID     uuid.UUID     `json:"car_id"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"` // exclusive
	Status    BookingStatus `json:"status"`

	PickupTime *time.Time `json:"pickup_time,omitempty"`
	ReturnTime *time.Time `json:"return_time,omitempty"`

	// Pricing snapshot, copied at creation. Later car price changes never
	// reach an existing booking.
	BaseDailyRate     decimal.Decimal            `json:"base_daily_rate"`
	Addons            map[string]decimal.Decimal `json:"addons"`
	InsurancePlan     InsurancePlan              `json:"insurance_plan"`
	InsuranceDailyFee decimal.Decimal            `json:"insurance_daily_fee"`
	LateFeePerDay     decimal.Decimal            `json:"late_fee_per_day"`
	DiscountTotal     decimal.Decimal            `json:"discount_total"`

	TotalEstimated decimal.Decimal     `json:"total_estimated"`
	TotalFinal     decimal.NullDecimal `json:"total_final"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RentalDays is the length of the rental window in whole days.
func (b *Booking) RentalDays() int {
	return DaysBetween(b.StartDate, b.EndDate)
}

// Overlaps reports whether the booking's rental window intersects [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return RangesOverlap(start, end, b.StartDate, b.EndDate)
}

// Validate checks the booking's structural invariants and normalizes
// timestamps to UTC.
func (b *Booking) Validate() error {
	if !b.StartDate.Before(b.EndDate) {
		return Validationf("start_date must be before end_date")
	}
	if !b.BaseDailyRate.IsPositive() {
		return Validationf("base_daily_rate must be > 0")
	}
	for name, value := range map[string]decimal.Decimal{
		"insurance_daily_fee": b.InsuranceDailyFee,
		"late_fee_per_day":    b.LateFeePerDay,
		"discount_total":      b.DiscountTotal,
		"total_estimated":     b.TotalEstimated,
	} {
		if value.IsNegative() {
			return Validationf("%s must be >= 0", name)
		}
	}
	for name, price := range b.Addons {
		if price.IsNegative() {
			return Validationf("addon %q price must be >= 0", name)
		}
	}
	if b.TotalFinal.Valid && b.TotalFinal.Decimal.IsNegative() {
		return Validationf("total_final must be >= 0")
	}
	if b.PickupTime != nil {
		t := b.PickupTime.UTC()
		b.PickupTime = &t
	}
	if b.ReturnTime != nil {
		t := b.ReturnTime.UTC()
		b.ReturnTime = &t
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return nil
}

// Clone returns a deep copy, so stores never share mutable state with callers.
func (b *Booking) Clone() *Booking {
	c := *b
	if b.PickupTime != nil {
		t := *b.PickupTime
		c.PickupTime = &t
	}
	if b.ReturnTime != nil {
		t := *b.ReturnTime
		c.ReturnTime = &t
	}
	if b.Addons != nil {
		c.Addons = make(map[string]decimal.Decimal, len(b.Addons))
		for k, v := range b.Addons {
			c.Addons[k] = v
		}
	}
	return &c
}

// RangesOverlap is the half-open interval test used for every double-booking
// check: NOT (aEnd <= bStart OR aStart >= bEnd).
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !(!aEnd.After(bStart) || !aStart.Before(bEnd))
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from a to b (negative if b is earlier).
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

func scanText(src any, unmarshal func([]byte) error) error {
	switch v := src.(type) {
	case string:
		return unmarshal([]byte(v))
	case []byte:
		return unmarshal(v)
	default:
		return fmt.Errorf("unsupported scan type %T", src)
	}
}
