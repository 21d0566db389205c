package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

const (
	ActionAddCar       = "add_car"
	ActionUpdateCar    = "update_car"
	ActionSetCarStatus = "set_car_status"
)

type carService struct {
	carRepo repository.CarRepository
	audit   AuditRecorder
	now     func() time.Time

	// writeMu is shared with the booking lifecycle when both run in one process.
	writeMu *sync.Mutex
}

type CarOption func(*carService)

// WithCarWriteLock makes fleet edits take the booking lifecycle's writer lock.
func WithCarWriteLock(mu *sync.Mutex) CarOption {
	return func(s *carService) { s.writeMu = mu }
}

func NewCarService(carRepo repository.CarRepository, audit AuditRecorder, opts ...CarOption) CarService {
	s := &carService{carRepo: carRepo, audit: audit, now: time.Now, writeMu: &sync.Mutex{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *carService) AddCar(ctx context.Context, actorID uuid.UUID, car *domain.Car) error {
	logger.EnterMethod("carService.AddCar", "plate", car.PlateNo)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := s.now().UTC()
	if car.ID == uuid.Nil {
		car.ID = uuid.New()
	}
	if car.Status == 0 {
		car.Status = domain.CarStatusActive
	}
	car.PlateNo = strings.TrimSpace(car.PlateNo)
	car.CreatedAt = now
	car.UpdatedAt = now
	if err := car.Validate(now); err != nil {
		logger.ExitMethodWithError("carService.AddCar", err)
		return err
	}

	taken, err := s.carRepo.GetByPlate(ctx, car.PlateNo)
	if err != nil {
		err = domain.Persistence("get car by plate", err)
		logger.ExitMethodWithError("carService.AddCar", err)
		return err
	}
	if taken != nil {
		err = domain.Conflictf("plate_no %s is already registered to car %s", car.PlateNo, taken.ID)
		logger.ExitMethodWithError("carService.AddCar", err)
		return err
	}

	if err := s.carRepo.Create(ctx, car); err != nil {
		err = domain.Persistence("create car", err)
		logger.ExitMethodWithError("carService.AddCar", err)
		return err
	}

	s.audit.Record(ctx, actorID, ActionAddCar, domain.AuditEntityCar, car.ID, map[string]any{
		"plate_no":   car.PlateNo,
		"category":   car.Category.String(),
		"daily_rate": car.DailyRate.String(),
	})
	logger.ExitMethod("carService.AddCar", "carID", car.ID)
	return nil
}

// UpdateCar replaces the car's descriptive and pricing fields. Status and
// availability are kept; existing bookings keep the rate they snapshotted.
func (s *carService) UpdateCar(ctx context.Context, actorID uuid.UUID, car *domain.Car) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.requireCar(ctx, car.ID)
	if err != nil {
		return err
	}

	car.PlateNo = strings.TrimSpace(car.PlateNo)
	car.Status = existing.Status
	car.AvailableNow = existing.AvailableNow
	car.CreatedAt = existing.CreatedAt
	if err := car.Validate(s.now()); err != nil {
		return err
	}
	if err := s.carRepo.Update(ctx, car); err != nil {
		return domain.Persistence("update car", err)
	}

	s.audit.Record(ctx, actorID, ActionUpdateCar, domain.AuditEntityCar, car.ID, map[string]any{
		"daily_rate_before": existing.DailyRate.String(),
		"daily_rate_after":  car.DailyRate.String(),
	})
	return nil
}

func (s *carService) SetCarStatus(ctx context.Context, actorID, carID uuid.UUID, status domain.CarStatus) (*domain.Car, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.requireCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	if _, err := domain.ParseCarStatus(status.String()); err != nil {
		return nil, err
	}

	if err := s.carRepo.SetStatus(ctx, carID, status); err != nil {
		return nil, domain.Persistence("set car status", err)
	}
	logger.Info("Car status changed", "carID", carID, "from", existing.Status, "to", status)
	s.audit.Record(ctx, actorID, ActionSetCarStatus, domain.AuditEntityCar, carID, map[string]any{
		"from": existing.Status.String(),
		"to":   status.String(),
	})
	return s.requireCar(ctx, carID)
}

func (s *carService) GetCar(ctx context.Context, carID uuid.UUID) (*domain.Car, error) {
	return s.requireCar(ctx, carID)
}

func (s *carService) ListCars(ctx context.Context) ([]domain.Car, error) {
	cars, err := s.carRepo.List(ctx)
	if err != nil {
		return nil, domain.Persistence("list cars", err)
	}
	return cars, nil
}

func (s *carService) ListAvailableCars(ctx context.Context, location string) ([]domain.Car, error) {
	cars, err := s.carRepo.ListAvailable(ctx, strings.TrimSpace(location))
	if err != nil {
		return nil, domain.Persistence("list available cars", err)
	}
	return cars, nil
}

func (s *carService) requireCar(ctx context.Context, carID uuid.UUID) (*domain.Car, error) {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, domain.Persistence("get car", err)
	}
	if car == nil {
		return nil, domain.NotFoundf("car %s", carID)
	}
	return car, nil
}
