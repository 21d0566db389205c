package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/metrics"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/utils"
)

// Audit actions written by the booking lifecycle.
const (
	ActionCreateBooking       = "create_booking"
	ActionApproveBooking      = "approve_booking"
	ActionRejectBooking       = "reject_booking"
	ActionPickup              = "pickup"
	ActionReturnCar           = "return_car"
	ActionCancelBooking       = "cancel_booking"
	ActionSyncCarAvailability = "sync_car_availability"
)

type bookingService struct {
	userRepo    repository.UserRepository
	carRepo     repository.CarRepository
	bookingRepo repository.BookingRepository
	oracle      *AvailabilityOracle
	advisor     *SubstitutionAdvisor
	audit       AuditRecorder

	lateFeePerDay decimal.Decimal
	now           func() time.Time

	// writeMu serializes every mutating lifecycle operation so an overlap
	// check and the write that depends on it are never interleaved.
	writeMu *sync.Mutex
}

type BookingOption func(*bookingService)

// WithClock replaces time.Now, which decides "today" and pickup timestamps.
func WithClock(now func() time.Time) BookingOption {
	return func(s *bookingService) { s.now = now }
}

// WithWriteLock shares a writer lock with other components mutating the same store.
func WithWriteLock(mu *sync.Mutex) BookingOption {
	return func(s *bookingService) { s.writeMu = mu }
}

func NewBookingService(
	userRepo repository.UserRepository,
	carRepo repository.CarRepository,
	bookingRepo repository.BookingRepository,
	audit AuditRecorder,
	lateFeePerDay decimal.Decimal,
	opts ...BookingOption,
) BookingService {
	oracle := NewAvailabilityOracle(bookingRepo)
	s := &bookingService{
		userRepo:      userRepo,
		carRepo:       carRepo,
		bookingRepo:   bookingRepo,
		oracle:        oracle,
		advisor:       NewSubstitutionAdvisor(carRepo, oracle),
		audit:         audit,
		lateFeePerDay: lateFeePerDay,
		now:           time.Now,
		writeMu:       &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *bookingService) today() time.Time {
	return domain.DateOf(s.now())
}

func (s *bookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CreateBooking", "renterID", req.RenterID, "carID", req.CarID)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	booking, err := s.createBooking(ctx, req)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, err
	}

	logger.Info("Booking created", "bookingID", booking.ID, "carID", booking.CarID, "total", booking.TotalEstimated.StringFixed(2))
	metrics.IncBookingTransition(ActionCreateBooking, booking.Status.String())
	s.audit.Record(ctx, booking.RenterID, ActionCreateBooking, domain.AuditEntityBooking, booking.ID, map[string]any{
		"car_id":          booking.CarID,
		"start_date":      utils.FormatDate(booking.StartDate),
		"end_date":        utils.FormatDate(booking.EndDate),
		"total_estimated": booking.TotalEstimated.StringFixed(2),
	})
	logger.ExitMethod("bookingService.CreateBooking", "bookingID", booking.ID)
	return booking, nil
}

func (s *bookingService) createBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	user, err := s.userRepo.GetByID(ctx, req.RenterID)
	if err != nil {
		return nil, domain.Persistence("get renter", err)
	}
	if user == nil {
		return nil, domain.NotFoundf("renter %s", req.RenterID)
	}
	if user.IsSuspended() {
		return nil, domain.Validationf("renter is suspended")
	}

	car, err := s.carRepo.GetByID(ctx, req.CarID)
	if err != nil {
		return nil, domain.Persistence("get car", err)
	}
	if car == nil {
		return nil, domain.NotFoundf("car %s", req.CarID)
	}
	if car.Status != domain.CarStatusActive {
		return nil, domain.Validationf("car is not active")
	}
	if !car.AvailableNow {
		return nil, domain.Validationf("car is not available now")
	}

	start := domain.DateOf(req.StartDate)
	end := domain.DateOf(req.EndDate)
	if start.Before(s.today()) || !start.Before(end) {
		return nil, domain.Validationf("invalid date range %s..%s", utils.FormatDate(start), utils.FormatDate(end))
	}
	days := domain.DaysBetween(start, end)
	if days < domain.MinRentalDays || days > domain.MaxRentalDays {
		return nil, domain.Validationf("rental of %d days is outside %d..%d", days, domain.MinRentalDays, domain.MaxRentalDays)
	}
	if days < car.MinRentDays || days > car.MaxRentDays {
		return nil, domain.Validationf("rental of %d days is outside this car's %d..%d", days, car.MinRentDays, car.MaxRentDays)
	}

	addons, err := normalizeAddons(req.Addons)
	if err != nil {
		return nil, err
	}
	if !req.InsurancePlan.IsValid() {
		return nil, domain.Validationf("invalid insurance plan")
	}

	overlaps, err := s.oracle.HasOverlap(ctx, car.ID, start, end, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if overlaps {
		metrics.IncBookingConflict(ActionCreateBooking)
		return nil, domain.Conflictf("car %s is already booked between %s and %s", car.ID, utils.FormatDate(start), utils.FormatDate(end))
	}

	now := s.now().UTC()
	booking := &domain.Booking{
		ID:                uuid.New(),
		RenterID:          user.ID,
		CarID:             car.ID,
		StartDate:         start,
		EndDate:           end,
		Status:            domain.BookingStatusPending,
		BaseDailyRate:     car.DailyRate,
		Addons:            addons,
		InsurancePlan:     req.InsurancePlan,
		InsuranceDailyFee: req.InsurancePlan.DailyFee(),
		LateFeePerDay:     s.lateFeePerDay,
		DiscountTotal:     decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	booking.TotalEstimated = utils.EstimatedTotal(booking)
	if err := booking.Validate(); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, domain.Persistence("create booking", err)
	}
	return booking, nil
}

func (s *bookingService) ApproveBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.ApproveBooking", "actorID", actorID, "bookingID", bookingID)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	booking, err := s.requireBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, domain.InvalidTransition("approve", booking.Status)
	}

	overlaps, err := s.oracle.HasOverlap(ctx, booking.CarID, booking.StartDate, booking.EndDate, booking.ID)
	if err != nil {
		return nil, err
	}
	if overlaps {
		metrics.IncBookingConflict(ActionApproveBooking)
		logger.Warn("Approval blocked by overlapping booking", "bookingID", booking.ID, "carID", booking.CarID)
		return nil, domain.Conflictf("car %s is already booked for this period", booking.CarID)
	}

	if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, domain.BookingStatusApproved); err != nil {
		return nil, domain.Persistence("update booking status", err)
	}
	if !booking.StartDate.After(s.today()) {
		if err := s.carRepo.SetAvailability(ctx, booking.CarID, false); err != nil {
			return nil, domain.Persistence("set car availability", err)
		}
	}

	return s.finishTransition(ctx, actorID, booking.ID, ActionApproveBooking, booking.Status, nil)
}

func (s *bookingService) RejectBooking(ctx context.Context, actorID, bookingID uuid.UUID, reason string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.RejectBooking", "actorID", actorID, "bookingID", bookingID)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	booking, err := s.requireBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, domain.InvalidTransition("reject", booking.Status)
	}

	if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, domain.BookingStatusRejected); err != nil {
		return nil, domain.Persistence("update booking status", err)
	}

	return s.finishTransition(ctx, actorID, booking.ID, ActionRejectBooking, booking.Status, map[string]any{
		"reason": strings.TrimSpace(reason),
	})
}

func (s *bookingService) PickupBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.PickupBooking", "actorID", actorID, "bookingID", bookingID)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	booking, err := s.requireBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusApproved {
		return nil, domain.InvalidTransition("pick up", booking.Status)
	}

	pickupTime := s.now().UTC()
	if err := s.bookingRepo.SetPickupTime(ctx, booking.ID, pickupTime); err != nil {
		return nil, domain.Persistence("set pickup time", err)
	}
	if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, domain.BookingStatusActive); err != nil {
		return nil, domain.Persistence("update booking status", err)
	}
	if err := s.carRepo.SetAvailability(ctx, booking.CarID, false); err != nil {
		return nil, domain.Persistence("set car availability", err)
	}

	return s.finishTransition(ctx, actorID, booking.ID, ActionPickup, booking.Status, map[string]any{
		"pickup_time": pickupTime,
	})
}

func (s *bookingService) ReturnCar(ctx context.Context, actorID, bookingID uuid.UUID, returnedAt time.Time) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.ReturnCar", "actorID", actorID, "bookingID", bookingID)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	booking, err := s.requireBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusActive {
		return nil, domain.InvalidTransition("return", booking.Status)
	}

	returnTime := returnedAt.UTC()
	booking.ReturnTime = &returnTime
	lateDays := utils.LateDays(booking)
	next := domain.BookingStatusCompleted
	if lateDays > 0 {
		next = domain.BookingStatusOverdue
	}

	estimated := utils.EstimatedTotal(booking)
	booking.TotalEstimated = estimated
	final := utils.FinalTotal(booking, nil)

	if err := s.bookingRepo.SetReturnTime(ctx, booking.ID, returnTime); err != nil {
		return nil, domain.Persistence("set return time", err)
	}
	if err := s.bookingRepo.SetTotals(ctx, booking.ID, estimated, decimal.NewNullDecimal(final)); err != nil {
		return nil, domain.Persistence("set totals", err)
	}
	if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, next); err != nil {
		return nil, domain.Persistence("update booking status", err)
	}
	if err := s.releaseCarIfFree(ctx, booking); err != nil {
		return nil, err
	}

	return s.finishTransition(ctx, actorID, booking.ID, ActionReturnCar, booking.Status, map[string]any{
		"late_days":   lateDays,
		"late_fee":    utils.LateFee(booking).StringFixed(2),
		"total_final": final.StringFixed(2),
	})
}

func (s *bookingService) CancelBooking(ctx context.Context, actorID, bookingID uuid.UUID, cancelledAt time.Time) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CancelBooking", "actorID", actorID, "bookingID", bookingID)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	booking, err := s.requireBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(domain.BookingStatusCancelled) {
		return nil, domain.InvalidTransition("cancel", booking.Status)
	}

	at := cancelledAt.UTC()
	fee := utils.CancellationFee(booking, at)
	booking.ReturnTime = nil
	estimated := utils.EstimatedTotal(booking)
	booking.TotalEstimated = estimated
	final := utils.FinalTotal(booking, &at)

	if err := s.bookingRepo.SetTotals(ctx, booking.ID, estimated, decimal.NewNullDecimal(final)); err != nil {
		return nil, domain.Persistence("set totals", err)
	}
	if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, domain.BookingStatusCancelled); err != nil {
		return nil, domain.Persistence("update booking status", err)
	}
	// A cancelled ACTIVE rental keeps its car out until the nightly sync.
	if booking.Status == domain.BookingStatusApproved {
		if err := s.releaseCarIfFree(ctx, booking); err != nil {
			return nil, err
		}
	}

	return s.finishTransition(ctx, actorID, booking.ID, ActionCancelBooking, booking.Status, map[string]any{
		"cancel_fee":  fee.StringFixed(2),
		"total_final": final.StringFixed(2),
	})
}

func (s *bookingService) SuggestSubstitutions(ctx context.Context, bookingID uuid.UUID) ([]domain.Car, error) {
	booking, err := s.requireBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	car, err := s.carRepo.GetByID(ctx, booking.CarID)
	if err != nil {
		return nil, domain.Persistence("get car", err)
	}
	if car == nil {
		return nil, domain.NotFoundf("car %s", booking.CarID)
	}
	return s.advisor.Suggest(ctx, booking, car)
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	return s.requireBooking(ctx, bookingID)
}

func (s *bookingService) ListRenterBookings(ctx context.Context, renterID uuid.UUID) ([]domain.Booking, error) {
	bookings, err := s.bookingRepo.ListByRenter(ctx, renterID)
	if err != nil {
		return nil, domain.Persistence("list renter bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) ListPendingBookings(ctx context.Context) ([]domain.Booking, error) {
	bookings, err := s.bookingRepo.ListByStatus(ctx, domain.BookingStatusPending)
	if err != nil {
		return nil, domain.Persistence("list pending bookings", err)
	}
	return bookings, nil
}

// SyncCarAvailability recomputes available_now for every ACTIVE car from the
// binding bookings covering today. Returns the number of cars changed.
func (s *bookingService) SyncCarAvailability(ctx context.Context, today time.Time) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cars, err := s.carRepo.List(ctx)
	if err != nil {
		return 0, domain.Persistence("list cars", err)
	}

	changed := 0
	for _, car := range cars {
		if car.Status != domain.CarStatusActive {
			continue
		}
		covered, err := s.oracle.CoversDay(ctx, car.ID, today, uuid.Nil)
		if err != nil {
			return changed, err
		}
		if car.AvailableNow == !covered {
			continue
		}
		if err := s.carRepo.SetAvailability(ctx, car.ID, !covered); err != nil {
			return changed, domain.Persistence("set car availability", err)
		}
		changed++
		logger.Info("Car availability synced", "carID", car.ID, "plate", car.PlateNo, "availableNow", !covered)
		s.audit.Record(ctx, uuid.Nil, ActionSyncCarAvailability, domain.AuditEntityCar, car.ID, map[string]any{
			"available_now": !covered,
			"date":          utils.FormatDate(today),
		})
	}
	metrics.AddAvailabilityChanges(changed)
	return changed, nil
}

// FlagLateReturns reports ACTIVE bookings whose end date has passed. Status
// is left alone; only ReturnCar moves a booking to OVERDUE.
func (s *bookingService) FlagLateReturns(ctx context.Context, today time.Time) ([]domain.Booking, error) {
	active, err := s.bookingRepo.ListByStatus(ctx, domain.BookingStatusActive)
	if err != nil {
		return nil, domain.Persistence("list active bookings", err)
	}

	day := domain.DateOf(today)
	var late []domain.Booking
	for _, b := range active {
		if b.EndDate.Before(day) {
			late = append(late, b)
			logger.Warn("Booking not returned after end date",
				"bookingID", b.ID,
				"carID", b.CarID,
				"renterID", b.RenterID,
				"endDate", utils.FormatDate(b.EndDate),
				"daysLate", domain.DaysBetween(b.EndDate, day))
		}
	}
	metrics.SetLateReturns(len(late))
	return late, nil
}

// releaseCarIfFree flips available_now back on unless another binding
// booking still holds the car today.
func (s *bookingService) releaseCarIfFree(ctx context.Context, booking *domain.Booking) error {
	covered, err := s.oracle.CoversDay(ctx, booking.CarID, s.today(), booking.ID)
	if err != nil {
		return err
	}
	if covered {
		return nil
	}
	if err := s.carRepo.SetAvailability(ctx, booking.CarID, true); err != nil {
		return domain.Persistence("set car availability", err)
	}
	return nil
}

func (s *bookingService) requireBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, domain.Persistence("get booking", err)
	}
	if booking == nil {
		return nil, domain.NotFoundf("booking %s", bookingID)
	}
	return booking, nil
}

// finishTransition reloads the booking, then logs, counts and audits the change.
func (s *bookingService) finishTransition(ctx context.Context, actorID, bookingID uuid.UUID, action string, from domain.BookingStatus, detail map[string]any) (*domain.Booking, error) {
	booking, err := s.requireBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if detail == nil {
		detail = map[string]any{}
	}
	detail["from"] = from.String()
	detail["to"] = booking.Status.String()

	logger.Info("Booking transition", "action", action, "bookingID", booking.ID, "from", from, "to", booking.Status)
	metrics.IncBookingTransition(action, booking.Status.String())
	s.audit.Record(ctx, actorID, action, domain.AuditEntityBooking, booking.ID, detail)
	logger.ExitMethod("bookingService."+action, "bookingID", booking.ID, "status", booking.Status)
	return booking, nil
}

func normalizeAddons(addons map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(addons))
	for name, price := range addons {
		key := strings.TrimSpace(name)
		if key == "" {
			return nil, domain.Validationf("addon name must not be empty")
		}
		if _, dup := out[key]; dup {
			return nil, domain.Validationf("duplicate addon %q", key)
		}
		if price.IsNegative() {
			return nil, domain.Validationf("addon %q price must be >= 0", key)
		}
		out[key] = price
	}
	return out, nil
}
