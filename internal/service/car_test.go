package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/repository/memory"
)

// interleavingCarRepo runs beforeUpdate between UpdateCar's read and its write.
type interleavingCarRepo struct {
	repository.CarRepository
	beforeUpdate func()
}

func (r *interleavingCarRepo) Update(ctx context.Context, c *domain.Car) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	return r.CarRepository.Update(ctx, c)
}

func newCar(plate string) *domain.Car {
	return &domain.Car{
		PlateNo:      " " + plate + " ",
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2023,
		Category:     domain.CarCategoryCompact,
		DailyRate:    money("45.555"),
		Deposit:      money("200"),
		MinRentDays:  1,
		MaxRentDays:  10,
		AvailableNow: true,
		Location:     "Downtown",
	}
}

func TestCarService_AddCar(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("Success", func(t *testing.T) {
		store := memory.NewStore()
		recorder := new(MockAuditRecorder)
		recorder.On("Record", ctx, actor, ActionAddCar, domain.AuditEntityCar, mock.AnythingOfType("uuid.UUID"), mock.Anything).Return()
		svc := NewCarService(store.Cars, recorder)

		car := newCar("ABC-123")
		require.NoError(t, svc.AddCar(ctx, actor, car))
		assert.NotEqual(t, uuid.Nil, car.ID)
		assert.Equal(t, "ABC-123", car.PlateNo)
		assert.Equal(t, domain.CarStatusActive, car.Status)
		assert.Equal(t, "45.555", car.DailyRate.String())

		stored, err := svc.GetCar(ctx, car.ID)
		require.NoError(t, err)
		assert.Equal(t, "ABC-123", stored.PlateNo)
		recorder.AssertExpectations(t)
	})

	t.Run("Invalid car is not stored", func(t *testing.T) {
		store := memory.NewStore()
		recorder := new(MockAuditRecorder)
		svc := NewCarService(store.Cars, recorder)

		car := newCar("ABC-123")
		car.MaxRentDays = 40
		err := svc.AddCar(ctx, actor, car)
		assert.ErrorIs(t, err, domain.ErrValidation)

		cars, _ := svc.ListCars(ctx)
		assert.Empty(t, cars)
		recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Duplicate plate", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCarService(store.Cars, NewAuditService(store.Audit))

		first := newCar("ABC-123")
		require.NoError(t, svc.AddCar(ctx, actor, first))
		err := svc.AddCar(ctx, actor, newCar("ABC-123"))
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Contains(t, err.Error(), first.ID.String())
	})
}

func TestCarService_UpdateCar(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()
	store := memory.NewStore()
	audit := NewAuditService(store.Audit)
	svc := NewCarService(store.Cars, audit)

	car := newCar("ABC-123")
	require.NoError(t, svc.AddCar(ctx, actor, car))
	created := car.CreatedAt

	update := *car
	update.DailyRate = money("60")
	update.CreatedAt = created.AddDate(-1, 0, 0)
	require.NoError(t, svc.UpdateCar(ctx, actor, &update))

	stored, err := svc.GetCar(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "60.00", stored.DailyRate.StringFixed(2))
	assert.True(t, created.Equal(stored.CreatedAt))

	entries, _ := audit.ListRecent(ctx, 1)
	require.Len(t, entries, 1)
	assert.JSONEq(t, `{"daily_rate_before":"45.555","daily_rate_after":"60"}`, string(entries[0].Detail))

	missing := newCar("XYZ-999")
	missing.ID = uuid.New()
	assert.ErrorIs(t, svc.UpdateCar(ctx, actor, missing), domain.ErrNotFound)
}

func TestCarService_UpdateCar_KeepsControllerFields(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("Pickup between read and write", func(t *testing.T) {
		store := memory.NewStore()
		repo := &interleavingCarRepo{CarRepository: store.Cars}
		svc := NewCarService(repo, NewAuditService(store.Audit))

		car := newCar("ABC-123")
		require.NoError(t, svc.AddCar(ctx, actor, car))
		repo.beforeUpdate = func() {
			require.NoError(t, store.Cars.SetAvailability(ctx, car.ID, false))
			require.NoError(t, store.Cars.SetStatus(ctx, car.ID, domain.CarStatusMaintenance))
		}

		update := *car
		update.Mileage = 20000
		require.NoError(t, svc.UpdateCar(ctx, actor, &update))

		stored, err := svc.GetCar(ctx, car.ID)
		require.NoError(t, err)
		assert.Equal(t, 20000, stored.Mileage)
		assert.False(t, stored.AvailableNow)
		assert.Equal(t, domain.CarStatusMaintenance, stored.Status)
	})

	t.Run("Waits for the shared writer lock", func(t *testing.T) {
		store := memory.NewStore()
		mu := &sync.Mutex{}
		svc := NewCarService(store.Cars, NewAuditService(store.Audit), WithCarWriteLock(mu))

		car := newCar("ABC-123")
		require.NoError(t, svc.AddCar(ctx, actor, car))

		mu.Lock()
		done := make(chan error, 1)
		update := *car
		update.DailyRate = money("60")
		go func() { done <- svc.UpdateCar(ctx, actor, &update) }()

		select {
		case err := <-done:
			t.Fatalf("UpdateCar finished while the lock was held: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
		mu.Unlock()
		require.NoError(t, <-done)
	})
}

func TestCarService_SetCarStatus(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()
	store := memory.NewStore()
	svc := NewCarService(store.Cars, NewAuditService(store.Audit))

	car := newCar("ABC-123")
	require.NoError(t, svc.AddCar(ctx, actor, car))

	updated, err := svc.SetCarStatus(ctx, actor, car.ID, domain.CarStatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, domain.CarStatusMaintenance, updated.Status)

	available, err := svc.ListAvailableCars(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, available)

	_, err = svc.SetCarStatus(ctx, actor, car.ID, domain.CarStatus(42))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.SetCarStatus(ctx, actor, uuid.New(), domain.CarStatusActive)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCarService_ListAvailableCars(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()
	store := memory.NewStore()
	svc := NewCarService(store.Cars, NewAuditService(store.Audit))

	downtown := newCar("AAA-111")
	airport := newCar("BBB-222")
	airport.Location = "Airport"
	require.NoError(t, svc.AddCar(ctx, actor, downtown))
	require.NoError(t, svc.AddCar(ctx, actor, airport))

	all, err := svc.ListAvailableCars(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.ListAvailableCars(ctx, " Airport ")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, airport.ID, filtered[0].ID)
}
