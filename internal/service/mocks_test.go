package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

// MockAuditRepo
type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) Record(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepo) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

// MockAuditRecorder
type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, detail any) {
	m.Called(ctx, actorID, action, entityType, entityID, detail)
}

// failingBookingRepo delegates to a real repository but fails CheckOverlap.
type failingBookingRepo struct {
	repository.BookingRepository
	err error
}

func (r *failingBookingRepo) CheckOverlap(context.Context, uuid.UUID, time.Time, time.Time, uuid.UUID) (bool, error) {
	return false, r.err
}
