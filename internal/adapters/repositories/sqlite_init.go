package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSqliteSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init sqlite schema: DB is nil")
	}

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		driver_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		available_at INTEGER NOT NULL DEFAULT 0,
		current_order_id TEXT,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

	// Unfulfilled rows carry no driver or timing at all; the CHECKs keep the
	// two shapes apart so a missing time is never read back as 0.
	createAssignmentsQuery := `
	CREATE TABLE IF NOT EXISTS delivery_assignments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		order_time INTEGER NOT NULL,
		travel_time INTEGER NOT NULL,
		assignment_result TEXT NOT NULL CHECK (assignment_result IN ('FULFILLED', 'UNFULFILLED')),
		driver_id TEXT,
		assignment_time INTEGER,
		completion_time INTEGER,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK (assignment_result = 'UNFULFILLED'
			OR (driver_id IS NOT NULL AND assignment_time IS NOT NULL AND completion_time IS NOT NULL)),
		CHECK (assignment_result = 'FULFILLED'
			OR (driver_id IS NULL AND assignment_time IS NULL AND completion_time IS NULL))
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_delivery_assignments_run_id
	ON delivery_assignments(run_id);
	`

	return execSchema(ctx, db, "init sqlite schema", []string{
		createDriversQuery,
		createAssignmentsQuery,
		createIndexQuery,
	})
}

// Initialize the Postgres database schema.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	return execSchema(ctx, db, "init postgres schema", postgresSchema)
}

// Timeline columns are BIGINT so any Go int round-trips.
var postgresSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS drivers (
		driver_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		available_at BIGINT NOT NULL DEFAULT 0,
		current_order_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS delivery_assignments (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		run_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		order_time BIGINT NOT NULL,
		travel_time BIGINT NOT NULL,
		assignment_result TEXT NOT NULL CHECK (assignment_result IN ('FULFILLED', 'UNFULFILLED')),
		driver_id TEXT,
		assignment_time BIGINT,
		completion_time BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (assignment_result = 'UNFULFILLED'
			OR (driver_id IS NOT NULL AND assignment_time IS NOT NULL AND completion_time IS NOT NULL)),
		CHECK (assignment_result = 'FULFILLED'
			OR (driver_id IS NULL AND assignment_time IS NULL AND completion_time IS NULL))
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_delivery_assignments_run_id
	ON delivery_assignments(run_id);
	`,
}

func execSchema(ctx context.Context, db *sql.DB, op string, statements []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: exec statement #%d: %w", op, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit tx: %w", op, err)
	}

	return nil
}
