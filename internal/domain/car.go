package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const minCarYear = 1980

// CarCategory is ordered: economy < compact < suv < luxury < van.
type CarCategory uint8

const (
	CarCategoryEconomy CarCategory = iota + 1
	CarCategoryCompact
	CarCategorySUV
	CarCategoryLuxury
	CarCategoryVan
)

var carCategoryNames = map[CarCategory]string{
	CarCategoryEconomy: "economy",
	CarCategoryCompact: "compact",
	CarCategorySUV:     "suv",
	CarCategoryLuxury:  "luxury",
	CarCategoryVan:     "van",
}

func (c CarCategory) String() string {
	if name, ok := carCategoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CarCategory(%d)", uint8(c))
}

// Rank orders categories for substitution. Unknown categories rank 0.
func (c CarCategory) Rank() int {
	if _, ok := carCategoryNames[c]; !ok {
		return 0
	}
	return int(c)
}

func ParseCarCategory(s string) (CarCategory, error) {
	for category, name := range carCategoryNames {
		if name == s {
			return category, nil
		}
	}
	return 0, Validationf("invalid car category: %q", s)
}

func (c CarCategory) MarshalText() ([]byte, error) {
	if c.Rank() == 0 {
		return nil, fmt.Errorf("invalid car category: %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *CarCategory) UnmarshalText(text []byte) error {
	parsed, err := ParseCarCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c CarCategory) Value() (driver.Value, error) { return c.String(), nil }
func (c *CarCategory) Scan(src any) error         { return scanText(src, c.UnmarshalText) }

type CarStatus uint8

const (
	CarStatusActive CarStatus = iota + 1
	CarStatusMaintenance
	CarStatusRetired
)

var carStatusNames = map[CarStatus]string{
	CarStatusActive:      "active",
	CarStatusMaintenance: "maintenance",
	CarStatusRetired:     "retired",
}

func (s CarStatus) String() string {
	if name, ok := carStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("CarStatus(%d)", uint8(s))
}

func ParseCarStatus(s string) (CarStatus, error) {
	for status, name := range carStatusNames {
		if name == s {
			return status, nil
		}
	}
	return 0, Validationf("invalid car status: %q", s)
}

func (s CarStatus) MarshalText() ([]byte, error) {
	if _, ok := carStatusNames[s]; !ok {
		return nil, fmt.Errorf("invalid car status: %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *CarStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseCarStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s CarStatus) Value() (driver.Value, error) { return s.String(), nil }
func (s *CarStatus) Scan(src any) error         { return scanText(src, s.UnmarshalText) }

type Car struct {
	ID           uuid.UUID       `json:"id"`
	PlateNo      string          `json:"plate_no"`
	Make         string          `json:"make"`
	Model        string          `json:"model"`
	Year         int             `json:"year"`
	Mileage      int             `json:"mileage"`
	Category     CarCategory     `json:"category"`
	DailyRate    decimal.Decimal `json:"daily_rate"`
	Deposit      decimal.Decimal `json:"deposit"`
	MinRentDays  int             `json:"min_rent_days"`
	MaxRentDays  int             `json:"max_rent_days"`
	Status       CarStatus       `json:"status"`
	AvailableNow bool            `json:"available_now"` // maintained by the booking lifecycle
	Location     string          `json:"location"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Validate checks fleet constraints against the given current time.
func (c *Car) Validate(now time.Time) error {
	if c.PlateNo == "" {
		return Validationf("plate_no is required")
	}
	if c.Year < minCarYear || c.Year > now.UTC().Year()+1 {
		return Validationf("year out of range")
	}
	if c.Mileage < 0 {
		return Validationf("mileage must be >= 0")
	}
	if !c.DailyRate.IsPositive() {
		return Validationf("daily_rate must be > 0")
	}
	if c.Deposit.IsNegative() {
		return Validationf("deposit must be >= 0")
	}
	if c.MinRentDays < MinRentalDays {
		return Validationf("min_rent_days must be >= %d", MinRentalDays)
	}
	if c.MaxRentDays < c.MinRentDays || c.MaxRentDays > MaxRentalDays {
		return Validationf("max_rent_days must be >= min_rent_days and <= %d", MaxRentalDays)
	}
	if c.Category.Rank() == 0 {
		return Validationf("category is required")
	}
	if _, ok := carStatusNames[c.Status]; !ok {
		return Validationf("status is required")
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return nil
}

// IsBookable reports whether new bookings may be taken for the car right now.
func (c *Car) IsBookable() bool {
	return c.Status == CarStatusActive && c.AvailableNow
}
