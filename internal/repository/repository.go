package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"carrental-backend/internal/domain"
)

// Lookups return (nil, nil) when the entity does not exist.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
}

type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Car, error)
	GetByPlate(ctx context.Context, plateNo string) (*domain.Car, error)
	Update(ctx context.Context, car *domain.Car) error
	SetStatus(ctx context.Context, id uuid.UUID, status domain.CarStatus) error
	SetAvailability(ctx context.Context, id uuid.UUID, availableNow bool) error
	// List and ListAvailable return cars in creation order. ListAvailable keeps
	// ACTIVE cars with available_now set; an empty location matches all.
	List(ctx context.Context) ([]domain.Car, error)
	ListAvailable(ctx context.Context, location string) ([]domain.Car, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error
	SetPickupTime(ctx context.Context, id uuid.UUID, pickupTime time.Time) error
	SetReturnTime(ctx context.Context, id uuid.UUID, returnTime time.Time) error
	SetTotals(ctx context.Context, id uuid.UUID, estimated decimal.Decimal, final decimal.NullDecimal) error
	// List queries return bookings in creation order.
	ListByCar(ctx context.Context, carID uuid.UUID) ([]domain.Booking, error)
	ListByRenter(ctx context.Context, renterID uuid.UUID) ([]domain.Booking, error)
	ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error)
	// CheckOverlap reports whether a binding booking for carID, other than
	// excludeID (uuid.Nil for none), intersects [start, end).
	CheckOverlap(ctx context.Context, carID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error)
}

type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}
