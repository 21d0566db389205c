package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"carrental-backend/internal/logger"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		role TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		driver_license_no TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS cars (
		id UUID PRIMARY KEY,
		plate_no TEXT NOT NULL,
		make TEXT NOT NULL,
		model TEXT NOT NULL,
		year INTEGER NOT NULL,
		mileage INTEGER NOT NULL,
		category TEXT NOT NULL,
		daily_rate NUMERIC NOT NULL CHECK (daily_rate > 0),
		deposit NUMERIC NOT NULL CHECK (deposit >= 0),
		min_rent_days INTEGER NOT NULL,
		max_rent_days INTEGER NOT NULL,
		status TEXT NOT NULL,
		available_now BOOLEAN NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT cars_plate_no_key UNIQUE (plate_no)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		renter_id UUID NOT NULL REFERENCES users(id),
		car_id UUID NOT NULL REFERENCES cars(id),
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		status TEXT NOT NULL,
		pickup_time TIMESTAMPTZ,
		return_time TIMESTAMPTZ,
		base_daily_rate NUMERIC NOT NULL,
		addons JSONB NOT NULL DEFAULT '{}',
		insurance_plan TEXT NOT NULL,
		insurance_daily_fee NUMERIC NOT NULL,
		late_fee_per_day NUMERIC NOT NULL,
		discount_total NUMERIC NOT NULL DEFAULT 0,
		total_estimated NUMERIC(12,2) NOT NULL,
		total_final NUMERIC(12,2),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CHECK (start_date < end_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_car_dates_status ON bookings (car_id, start_date, end_date, status)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_renter ON bookings (renter_id)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGSERIAL PRIMARY KEY,
		actor_id UUID,
		action TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id UUID NOT NULL,
		detail JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates tables and indexes that do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	logger.Info("Checking database schema...", "statements", len(schemaStatements))
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	logger.Info("Database schema is up to date")
	return nil
}
