package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

// AvailabilityOracle answers whether a date range collides with a binding
// booking. Create and approve both go through HasOverlap.
type AvailabilityOracle struct {
	bookingRepo repository.BookingRepository
}

func NewAvailabilityOracle(bookingRepo repository.BookingRepository) *AvailabilityOracle {
	return &AvailabilityOracle{bookingRepo: bookingRepo}
}

// HasOverlap reports whether [start, end) intersects a binding booking on
// carID other than excludeID. Pass uuid.Nil to exclude nothing.
func (o *AvailabilityOracle) HasOverlap(ctx context.Context, carID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	overlaps, err := o.bookingRepo.CheckOverlap(ctx, carID, domain.DateOf(start), domain.DateOf(end), excludeID)
	if err != nil {
		return false, domain.Persistence("check overlap", err)
	}
	return overlaps, nil
}

// CoversDay reports whether a binding booking other than excludeID holds the
// car on the given calendar day.
func (o *AvailabilityOracle) CoversDay(ctx context.Context, carID uuid.UUID, day time.Time, excludeID uuid.UUID) (bool, error) {
	d := domain.DateOf(day)
	return o.HasOverlap(ctx, carID, d, d.AddDate(0, 0, 1), excludeID)
}
