package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

const bookingColumns = `id, renter_id, car_id, start_date, end_date, status, pickup_time, return_time,
	base_daily_rate, addons, insurance_plan, insurance_daily_fee, late_fee_per_day, discount_total,
	total_estimated, total_final, created_at, updated_at`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Create", "bookingID", b.ID, "carID", b.CarID)

	addons, err := encodeAddons(b.Addons)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Create", err)
		return err
	}

	query := `INSERT INTO bookings (` + bookingColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	logger.DatabaseCall("INSERT", "bookings")
	res, err := r.db.ExecContext(ctx, query,
		b.ID, b.RenterID, b.CarID, b.StartDate, b.EndDate, b.Status, b.PickupTime, b.ReturnTime,
		b.BaseDailyRate, addons, b.InsurancePlan, b.InsuranceDailyFee, b.LateFeePerDay, b.DiscountTotal,
		b.TotalEstimated, b.TotalFinal, b.CreatedAt, b.UpdatedAt)
	logger.DatabaseResult("INSERT", rowsAffected(res), err)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Create", err)
		return err
	}

	logger.ExitMethod("bookingRepository.Create")
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	return r.exec(ctx, "UpdateStatus", `UPDATE bookings SET status=$1, updated_at=$2 WHERE id=$3`, status, time.Now().UTC(), id)
}

func (r *bookingRepository) SetPickupTime(ctx context.Context, id uuid.UUID, pickupTime time.Time) error {
	return r.exec(ctx, "SetPickupTime", `UPDATE bookings SET pickup_time=$1, updated_at=$2 WHERE id=$3`, pickupTime.UTC(), time.Now().UTC(), id)
}

func (r *bookingRepository) SetReturnTime(ctx context.Context, id uuid.UUID, returnTime time.Time) error {
	return r.exec(ctx, "SetReturnTime", `UPDATE bookings SET return_time=$1, updated_at=$2 WHERE id=$3`, returnTime.UTC(), time.Now().UTC(), id)
}

func (r *bookingRepository) SetTotals(ctx context.Context, id uuid.UUID, estimated decimal.Decimal, final decimal.NullDecimal) error {
	return r.exec(ctx, "SetTotals", `UPDATE bookings SET total_estimated=$1, total_final=$2, updated_at=$3 WHERE id=$4`,
		estimated, final, time.Now().UTC(), id)
}

func (r *bookingRepository) exec(ctx context.Context, op, query string, args ...any) error {
	logger.DatabaseCall(op, "bookings")
	res, err := r.db.ExecContext(ctx, query, args...)
	logger.DatabaseResult(op, rowsAffected(res), err)
	if err != nil {
		return err
	}
	return nil
}

func (r *bookingRepository) ListByCar(ctx context.Context, carID uuid.UUID) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE car_id = $1 ORDER BY created_at ASC`, carID)
}

func (r *bookingRepository) ListByRenter(ctx context.Context, renterID uuid.UUID) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE renter_id = $1 ORDER BY created_at ASC`, renterID)
}

func (r *bookingRepository) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE status = $1 ORDER BY created_at ASC`, status)
}

func (r *bookingRepository) CheckOverlap(ctx context.Context, carID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM bookings
	            WHERE car_id = $1
	              AND status = ANY($2)
	              AND id <> $3
	              AND NOT (end_date <= $4 OR start_date >= $5)
	          )`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, carID, pq.Array(bindingStatusNames()), excludeID, start, end).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *bookingRepository) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var pickup, ret sql.NullTime
	var addons []byte
	err := row.Scan(&b.ID, &b.RenterID, &b.CarID, &b.StartDate, &b.EndDate, &b.Status, &pickup, &ret,
		&b.BaseDailyRate, &addons, &b.InsurancePlan, &b.InsuranceDailyFee, &b.LateFeePerDay, &b.DiscountTotal,
		&b.TotalEstimated, &b.TotalFinal, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if b.Addons, err = decodeAddons(addons); err != nil {
		return nil, err
	}
	if pickup.Valid {
		t := pickup.Time.UTC()
		b.PickupTime = &t
	}
	if ret.Valid {
		t := ret.Time.UTC()
		b.ReturnTime = &t
	}
	b.StartDate = domain.DateOf(b.StartDate)
	b.EndDate = domain.DateOf(b.EndDate)
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

func encodeAddons(addons map[string]decimal.Decimal) ([]byte, error) {
	if len(addons) == 0 {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(addons)
	if err != nil {
		return nil, fmt.Errorf("encode addons: %w", err)
	}
	return data, nil
}

func decodeAddons(data []byte) (map[string]decimal.Decimal, error) {
	addons := map[string]decimal.Decimal{}
	if len(data) == 0 {
		return addons, nil
	}
	if err := json.Unmarshal(data, &addons); err != nil {
		return nil, fmt.Errorf("decode addons: %w", err)
	}
	return addons, nil
}

func bindingStatusNames() []string {
	names := make([]string, 0, len(domain.BindingStatuses))
	for _, s := range domain.BindingStatuses {
		names = append(names, s.String())
	}
	return names
}

func rowsAffected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	n, _ := res.RowsAffected()
	return n
}
