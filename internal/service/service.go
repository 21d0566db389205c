package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"carrental-backend/internal/domain"
)

// CreateBookingRequest carries the renter's booking input. Dates are UTC
// calendar dates and EndDate is exclusive.
type CreateBookingRequest struct {
	RenterID      uuid.UUID
	CarID         uuid.UUID
	StartDate     time.Time
	EndDate       time.Time
	InsurancePlan domain.InsurancePlan
	Addons        map[string]decimal.Decimal
}

type BookingService interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error)
	ApproveBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.Booking, error)
	RejectBooking(ctx context.Context, actorID, bookingID uuid.UUID, reason string) (*domain.Booking, error)
	PickupBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.Booking, error)
	ReturnCar(ctx context.Context, actorID, bookingID uuid.UUID, returnedAt time.Time) (*domain.Booking, error)
	CancelBooking(ctx context.Context, actorID, bookingID uuid.UUID, cancelledAt time.Time) (*domain.Booking, error)
	SuggestSubstitutions(ctx context.Context, bookingID uuid.UUID) ([]domain.Car, error)

	GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	ListRenterBookings(ctx context.Context, renterID uuid.UUID) ([]domain.Booking, error)
	ListPendingBookings(ctx context.Context) ([]domain.Booking, error)

	// Maintenance, driven by the scheduler.
	SyncCarAvailability(ctx context.Context, today time.Time) (int, error)
	FlagLateReturns(ctx context.Context, today time.Time) ([]domain.Booking, error)
}

type CarService interface {
	AddCar(ctx context.Context, actorID uuid.UUID, car *domain.Car) error
	UpdateCar(ctx context.Context, actorID uuid.UUID, car *domain.Car) error
	SetCarStatus(ctx context.Context, actorID, carID uuid.UUID, status domain.CarStatus) (*domain.Car, error)
	GetCar(ctx context.Context, carID uuid.UUID) (*domain.Car, error)
	ListCars(ctx context.Context) ([]domain.Car, error)
	ListAvailableCars(ctx context.Context, location string) ([]domain.Car, error)
}

type AuthService interface {
	RegisterCustomer(ctx context.Context, name, email, phone, driverLicenseNo string) (*domain.User, string, error)
	Login(ctx context.Context, email string) (*domain.User, string, error)
}

type UserService interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetUserStatus(ctx context.Context, actorID, userID uuid.UUID, status domain.UserStatus) (*domain.User, error)
	EnsureAdmin(ctx context.Context, name, email string) (*domain.User, error)
}

// AuditRecorder is the fire-and-forget audit sink. Record never fails the caller.
type AuditRecorder interface {
	Record(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, detail any)
}

type AuditService interface {
	AuditRecorder
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}
