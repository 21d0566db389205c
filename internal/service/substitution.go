package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

var (
	substitutionLowerBand = decimal.RequireFromString("0.90")
	substitutionUpperBand = decimal.RequireFromString("1.10")
)

// SubstitutionAdvisor proposes replacement cars of equal or better category
// priced within ±10% of the original car's current rate.
type SubstitutionAdvisor struct {
	carRepo repository.CarRepository
	oracle  *AvailabilityOracle
}

func NewSubstitutionAdvisor(carRepo repository.CarRepository, oracle *AvailabilityOracle) *SubstitutionAdvisor {
	return &SubstitutionAdvisor{carRepo: carRepo, oracle: oracle}
}

// Suggest returns candidates ordered by daily rate, then plate number.
func (a *SubstitutionAdvisor) Suggest(ctx context.Context, booking *domain.Booking, original *domain.Car) ([]domain.Car, error) {
	minRate := original.DailyRate.Mul(substitutionLowerBand)
	maxRate := original.DailyRate.Mul(substitutionUpperBand)
	minRank := original.Category.Rank()

	available, err := a.carRepo.ListAvailable(ctx, "")
	if err != nil {
		return nil, domain.Persistence("list available cars", err)
	}

	candidates := make([]domain.Car, 0, len(available))
	for _, car := range available {
		if car.ID == original.ID {
			continue
		}
		if car.Category.Rank() < minRank {
			continue
		}
		if car.DailyRate.LessThan(minRate) || car.DailyRate.GreaterThan(maxRate) {
			continue
		}
		overlaps, err := a.oracle.HasOverlap(ctx, car.ID, booking.StartDate, booking.EndDate, booking.ID)
		if err != nil {
			return nil, err
		}
		if overlaps {
			continue
		}
		candidates = append(candidates, car)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].DailyRate.Equal(candidates[j].DailyRate) {
			return candidates[i].DailyRate.LessThan(candidates[j].DailyRate)
		}
		return candidates[i].PlateNo < candidates[j].PlateNo
	})
	return candidates, nil
}
