package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

const carColumns = `id, plate_no, make, model, year, mileage, category, daily_rate, deposit, min_rent_days, max_rent_days, status, available_now, location, created_at, updated_at`

type carRepository struct {
	db *sql.DB
}

func NewCarRepository(db *sql.DB) repository.CarRepository {
	return &carRepository{db: db}
}

func (r *carRepository) Create(ctx context.Context, c *domain.Car) error {
	query := `INSERT INTO cars (` + carColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.PlateNo, c.Make, c.Model, c.Year, c.Mileage, c.Category, c.DailyRate, c.Deposit,
		c.MinRentDays, c.MaxRentDays, c.Status, c.AvailableNow, c.Location, c.CreatedAt, c.UpdatedAt)
	if isUniqueViolation(err, "cars_plate_no_key") {
		return domain.Conflictf("plate_no %s must be unique", c.PlateNo)
	}
	return err
}

func (r *carRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Car, error) {
	return scanCar(r.db.QueryRowContext(ctx, `SELECT `+carColumns+` FROM cars WHERE id = $1`, id))
}

func (r *carRepository) GetByPlate(ctx context.Context, plateNo string) (*domain.Car, error) {
	return scanCar(r.db.QueryRowContext(ctx, `SELECT `+carColumns+` FROM cars WHERE plate_no = $1`, plateNo))
}

// Update writes the descriptive and pricing columns. status and available_now
// only change through SetStatus and SetAvailability.
func (r *carRepository) Update(ctx context.Context, c *domain.Car) error {
	query := `UPDATE cars SET plate_no=$1, make=$2, model=$3, year=$4, mileage=$5, category=$6, daily_rate=$7, deposit=$8,
	          min_rent_days=$9, max_rent_days=$10, location=$11, updated_at=$12 WHERE id=$13`
	c.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		c.PlateNo, c.Make, c.Model, c.Year, c.Mileage, c.Category, c.DailyRate, c.Deposit,
		c.MinRentDays, c.MaxRentDays, c.Location, c.UpdatedAt, c.ID)
	if isUniqueViolation(err, "cars_plate_no_key") {
		return domain.Conflictf("plate_no %s must be unique", c.PlateNo)
	}
	return err
}

func (r *carRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.CarStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE cars SET status=$1, updated_at=$2 WHERE id=$3`, status, time.Now().UTC(), id)
	return err
}

func (r *carRepository) SetAvailability(ctx context.Context, id uuid.UUID, availableNow bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE cars SET available_now=$1, updated_at=$2 WHERE id=$3`, availableNow, time.Now().UTC(), id)
	return err
}

func (r *carRepository) List(ctx context.Context) ([]domain.Car, error) {
	return r.list(ctx, `SELECT `+carColumns+` FROM cars ORDER BY created_at ASC`)
}

func (r *carRepository) ListAvailable(ctx context.Context, location string) ([]domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE status = 'active' AND available_now`
	if location == "" {
		return r.list(ctx, query+` ORDER BY created_at ASC`)
	}
	return r.list(ctx, query+` AND location = $1 ORDER BY created_at ASC`, location)
}

func (r *carRepository) list(ctx context.Context, query string, args ...any) ([]domain.Car, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []domain.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, *c)
	}
	return cars, rows.Err()
}

func scanCar(row rowScanner) (*domain.Car, error) {
	c := &domain.Car{}
	err := row.Scan(&c.ID, &c.PlateNo, &c.Make, &c.Model, &c.Year, &c.Mileage, &c.Category, &c.DailyRate, &c.Deposit,
		&c.MinRentDays, &c.MaxRentDays, &c.Status, &c.AvailableNow, &c.Location, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}
