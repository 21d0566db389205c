// Package memory provides map-backed repositories for tests and single-node
// deployments without a database. Entities are copied on every read and write.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type Store struct {
	Users    repository.UserRepository
	Cars     repository.CarRepository
	Bookings repository.BookingRepository
	Audit    repository.AuditRepository
}

func NewStore() *Store {
	return &Store{
		Users:    NewUserRepository(),
		Cars:     NewCarRepository(),
		Bookings: NewBookingRepository(),
		Audit:    NewAuditRepository(),
	}
}

// sequenced remembers insertion order so lists come back in creation order
// even when CreatedAt collides.
type sequenced[T any] struct {
	seq   int64
	value T
}

func sortedValues[T any](m map[uuid.UUID]sequenced[T], keep func(T) bool) []T {
	items := make([]sequenced[T], 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v.value) {
			items = append(items, v)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].seq < items[j].seq })
	out := make([]T, 0, len(items))
	for _, it := range items {
		out = append(out, it.value)
	}
	return out
}

type userRepository struct {
	mu    sync.RWMutex
	seq   int64
	users map[uuid.UUID]sequenced[domain.User]
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[uuid.UUID]sequenced[domain.User])}
}

func (r *userRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.value.Email, u.Email) {
			return domain.Conflictf("email %s is already registered", u.Email)
		}
	}
	r.seq++
	r.users[u.ID] = sequenced[domain.User]{seq: r.seq, value: *u}
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		c := u.value
		return &c, nil
	}
	return nil, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.value.Email, email) {
			c := u.value
			return &c, nil
		}
	}
	return nil, nil
}

func (r *userRepository) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[u.ID]
	if !ok {
		return domain.NotFoundf("user %s", u.ID)
	}
	for id, other := range r.users {
		if id != u.ID && strings.EqualFold(other.value.Email, u.Email) {
			return domain.Conflictf("email %s is already registered", u.Email)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	existing.value = *u
	r.users[u.ID] = existing
	return nil
}

func (r *userRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedValues(r.users, nil), nil
}

type carRepository struct {
	mu   sync.RWMutex
	seq  int64
	cars map[uuid.UUID]sequenced[domain.Car]
}

func NewCarRepository() repository.CarRepository {
	return &carRepository{cars: make(map[uuid.UUID]sequenced[domain.Car])}
}

func (r *carRepository) Create(_ context.Context, c *domain.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.cars {
		if existing.value.PlateNo == c.PlateNo {
			return domain.Conflictf("plate_no %s must be unique", c.PlateNo)
		}
	}
	r.seq++
	r.cars[c.ID] = sequenced[domain.Car]{seq: r.seq, value: *c}
	return nil
}

func (r *carRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.cars[id]; ok {
		car := c.value
		return &car, nil
	}
	return nil, nil
}

func (r *carRepository) GetByPlate(_ context.Context, plateNo string) (*domain.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cars {
		if c.value.PlateNo == plateNo {
			car := c.value
			return &car, nil
		}
	}
	return nil, nil
}

func (r *carRepository) Update(_ context.Context, c *domain.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.cars[c.ID]
	if !ok {
		return domain.NotFoundf("car %s", c.ID)
	}
	for id, other := range r.cars {
		if id != c.ID && other.value.PlateNo == c.PlateNo {
			return domain.Conflictf("plate_no %s must be unique", c.PlateNo)
		}
	}
	c.UpdatedAt = time.Now().UTC()
	c.Status = existing.value.Status
	c.AvailableNow = existing.value.AvailableNow
	existing.value = *c
	r.cars[c.ID] = existing
	return nil
}

func (r *carRepository) mutate(id uuid.UUID, fn func(*domain.Car)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.cars[id]
	if !ok {
		return domain.NotFoundf("car %s", id)
	}
	fn(&existing.value)
	existing.value.UpdatedAt = time.Now().UTC()
	r.cars[id] = existing
	return nil
}

func (r *carRepository) SetStatus(_ context.Context, id uuid.UUID, status domain.CarStatus) error {
	return r.mutate(id, func(c *domain.Car) { c.Status = status })
}

func (r *carRepository) SetAvailability(_ context.Context, id uuid.UUID, availableNow bool) error {
	return r.mutate(id, func(c *domain.Car) { c.AvailableNow = availableNow })
}

func (r *carRepository) List(_ context.Context) ([]domain.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedValues(r.cars, nil), nil
}

func (r *carRepository) ListAvailable(_ context.Context, location string) ([]domain.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedValues(r.cars, func(c domain.Car) bool {
		return c.IsBookable() && (location == "" || c.Location == location)
	}), nil
}

type bookingRepository struct {
	mu       sync.RWMutex
	seq      int64
	bookings map[uuid.UUID]sequenced[*domain.Booking]
}

func NewBookingRepository() repository.BookingRepository {
	return &bookingRepository{bookings: make(map[uuid.UUID]sequenced[*domain.Booking])}
}

func (r *bookingRepository) Create(_ context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID]; ok {
		return domain.Conflictf("booking %s already exists", b.ID)
	}
	r.seq++
	r.bookings[b.ID] = sequenced[*domain.Booking]{seq: r.seq, value: b.Clone()}
	return nil
}

func (r *bookingRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.bookings[id]; ok {
		return b.value.Clone(), nil
	}
	return nil, nil
}

func (r *bookingRepository) mutate(id uuid.UUID, fn func(*domain.Booking)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.bookings[id]
	if !ok {
		return domain.NotFoundf("booking %s", id)
	}
	fn(existing.value)
	existing.value.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *bookingRepository) UpdateStatus(_ context.Context, id uuid.UUID, status domain.BookingStatus) error {
	return r.mutate(id, func(b *domain.Booking) { b.Status = status })
}

func (r *bookingRepository) SetPickupTime(_ context.Context, id uuid.UUID, pickupTime time.Time) error {
	t := pickupTime.UTC()
	return r.mutate(id, func(b *domain.Booking) { b.PickupTime = &t })
}

func (r *bookingRepository) SetReturnTime(_ context.Context, id uuid.UUID, returnTime time.Time) error {
	t := returnTime.UTC()
	return r.mutate(id, func(b *domain.Booking) { b.ReturnTime = &t })
}

func (r *bookingRepository) SetTotals(_ context.Context, id uuid.UUID, estimated decimal.Decimal, final decimal.NullDecimal) error {
	return r.mutate(id, func(b *domain.Booking) {
		b.TotalEstimated = estimated
		b.TotalFinal = final
	})
}

func (r *bookingRepository) list(keep func(*domain.Booking) bool) []domain.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := sortedValues(r.bookings, keep)
	out := make([]domain.Booking, 0, len(matched))
	for _, b := range matched {
		out = append(out, *b.Clone())
	}
	return out
}

func (r *bookingRepository) ListByCar(_ context.Context, carID uuid.UUID) ([]domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool { return b.CarID == carID }), nil
}

func (r *bookingRepository) ListByRenter(_ context.Context, renterID uuid.UUID) ([]domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool { return b.RenterID == renterID }), nil
}

func (r *bookingRepository) ListByStatus(_ context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool { return b.Status == status }), nil
}

func (r *bookingRepository) CheckOverlap(_ context.Context, carID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, b := range r.bookings {
		if id == excludeID || b.value.CarID != carID || !b.value.Status.IsBinding() {
			continue
		}
		if b.value.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

type auditRepository struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
}

func NewAuditRepository() repository.AuditRepository {
	return &auditRepository{}
}

func (r *auditRepository) Record(_ context.Context, e *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = int64(len(r.entries) + 1)
	stored := *e
	stored.Detail = append([]byte(nil), e.Detail...)
	r.entries = append(r.entries, stored)
	return nil
}

// ListRecent returns up to limit entries, newest first.
func (r *auditRepository) ListRecent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AuditEntry, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}
