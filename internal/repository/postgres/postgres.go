package postgres

import (
	"database/sql"
	"errors"

	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"carrental-backend/internal/repository"
)

const uniqueViolation = "23505"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store groups the Postgres-backed repositories over one connection pool.
type Store struct {
	db       *sql.DB
	Users    repository.UserRepository
	Cars     repository.CarRepository
	Bookings repository.BookingRepository
	Audit    repository.AuditRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Cars:     NewCarRepository(db),
		Bookings: NewBookingRepository(db),
		Audit:    NewAuditRepository(db),
	}
}

// DB exposes the underlying handle for jobs and migrations.
func (s *Store) DB() *sql.DB {
	return s.db
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
