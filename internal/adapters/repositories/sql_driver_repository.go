package repositories

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"errors"
	"fmt"
)

// SQLDriverRepository is a Postgres-backed implementation of the DriverRepository port.
type SQLDriverRepository struct {
	DB *sql.DB
}

func NewSQLDriverRepository(db *sql.DB) *SQLDriverRepository {
	return &SQLDriverRepository{DB: db}
}

// Delete every driver and insert the new pool in one transaction.
func (s *SQLDriverRepository) ReplaceAll(ctx context.Context, drivers []*domain.Driver) (err error) {
	defer obs.Time(ctx, "drivers.sql.ReplaceAll")(&err)

	if s.DB == nil {
		return errors.New("driver repository: db is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace drivers: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM drivers;`); err != nil {
		return fmt.Errorf("replace drivers: delete drivers: %w", err)
	}

	if err := s.upsert(ctx, tx, drivers); err != nil {
		return fmt.Errorf("replace drivers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace drivers commit: %w", err)
	}

	return nil
}

func (s *SQLDriverRepository) SaveAll(ctx context.Context, drivers []*domain.Driver) (err error) {
	defer obs.Time(ctx, "drivers.sql.SaveAll")(&err)

	if s.DB == nil {
		return errors.New("driver repository: db is nil")
	}

	if len(drivers) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save drivers: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.upsert(ctx, tx, drivers); err != nil {
		return fmt.Errorf("save drivers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save drivers commit: %w", err)
	}

	return nil
}

func (s *SQLDriverRepository) upsert(ctx context.Context, tx *sql.Tx, drivers []*domain.Driver) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO drivers (driver_id, status, available_at, current_order_id)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (driver_id) DO UPDATE
	SET status = EXCLUDED.status,
		available_at = EXCLUDED.available_at,
		current_order_id = EXCLUDED.current_order_id;
	`)
	if err != nil {
		return fmt.Errorf("db prepare: %w", err)
	}
	defer stmt.Close()

	for _, d := range drivers {
		if d == nil {
			return errors.New("upsert driver: nil driver")
		}
		if _, err := stmt.ExecContext(ctx, d.DriverID, string(d.Status), d.NextAvailableAt, nullString(d.CurrentOrderID)); err != nil {
			return fmt.Errorf("upsert driver_id=%q: %w", d.DriverID, err)
		}
	}

	return nil
}

// Return all drivers ordered by identity. The "C" collation forces byte-wise
// comparison regardless of the database locale.
func (s *SQLDriverRepository) ListDrivers(ctx context.Context) (_ []*domain.Driver, err error) {
	defer obs.Time(ctx, "drivers.sql.ListDrivers")(&err)

	if s.DB == nil {
		return nil, errors.New("driver repository: db is nil")
	}

	q := `
	SELECT driver_id, status, available_at, current_order_id
	FROM drivers
	ORDER BY driver_id COLLATE "C";
	`

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list drivers: query drivers table: %w", err)
	}
	defer rows.Close()

	drivers := make([]*domain.Driver, 0, 16)
	for rows.Next() {
		d, err := scanDriver(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list drivers: scan rows: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}

	return drivers, nil
}

func (s *SQLDriverRepository) Clear(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("driver repository: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM drivers;`); err != nil {
		return fmt.Errorf("clear drivers: %w", err)
	}
	return nil
}
