package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCarCategory_Rank(t *testing.T) {
	ordered := []CarCategory{CarCategoryEconomy, CarCategoryCompact, CarCategorySUV, CarCategoryLuxury, CarCategoryVan}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, ordered[i-1].Rank(), ordered[i].Rank())
	}
	assert.Equal(t, 0, CarCategory(42).Rank())

	c, err := ParseCarCategory("suv")
	assert.NoError(t, err)
	assert.Equal(t, CarCategorySUV, c)

	_, err = ParseCarCategory("truck")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCar_Validate(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	valid := func() *Car {
		return &Car{
			PlateNo:     "ABC123",
			Make:        "Toyota",
			Model:       "Corolla",
			Year:        2022,
			Category:    CarCategoryCompact,
			DailyRate:   decimal.RequireFromString("65"),
			Deposit:     decimal.RequireFromString("200"),
			MinRentDays: 1,
			MaxRentDays: 30,
			Status:      CarStatusActive,
		}
	}

	assert.NoError(t, valid().Validate(now))

	tests := []struct {
		name   string
		mutate func(c *Car)
	}{
		{"Missing plate", func(c *Car) { c.PlateNo = "" }},
		{"Too old", func(c *Car) { c.Year = 1979 }},
		{"Future model year", func(c *Car) { c.Year = 2028 }},
		{"Negative mileage", func(c *Car) { c.Mileage = -1 }},
		{"Zero rate", func(c *Car) { c.DailyRate = decimal.Zero }},
		{"Negative deposit", func(c *Car) { c.Deposit = decimal.RequireFromString("-1") }},
		{"Min below one", func(c *Car) { c.MinRentDays = 0 }},
		{"Max below min", func(c *Car) { c.MinRentDays = 5; c.MaxRentDays = 4 }},
		{"Max above global", func(c *Car) { c.MaxRentDays = 31 }},
		{"No category", func(c *Car) { c.Category = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(now), ErrValidation)
		})
	}
}

func TestCar_IsBookable(t *testing.T) {
	c := &Car{Status: CarStatusActive, AvailableNow: true}
	assert.True(t, c.IsBookable())
	c.AvailableNow = false
	assert.False(t, c.IsBookable())
	c.AvailableNow = true
	c.Status = CarStatusMaintenance
	assert.False(t, c.IsBookable())
}
