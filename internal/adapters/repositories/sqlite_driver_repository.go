package repositories

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/domain"
	"errors"
	"fmt"
)

// SQLite-backed implementation of the DriverRepository port.
type SqliteDriverRepository struct{ DB *sql.DB }

func NewSqliteDriverRepository(db *sql.DB) *SqliteDriverRepository {
	return &SqliteDriverRepository{DB: db}
}

// Delete every driver and insert the new pool in one transaction.
func (s *SqliteDriverRepository) ReplaceAll(ctx context.Context, drivers []*domain.Driver) error {
	if s.DB == nil {
		return errors.New("sqlite driver repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace drivers: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM drivers;`); err != nil {
		return fmt.Errorf("replace drivers: delete drivers: %w", err)
	}

	if err := s.upsert(ctx, tx, drivers); err != nil {
		return fmt.Errorf("replace drivers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace drivers: commit tx: %w", err)
	}

	return nil
}

func (s *SqliteDriverRepository) SaveAll(ctx context.Context, drivers []*domain.Driver) error {
	if s.DB == nil {
		return errors.New("sqlite driver repository: DB is nil")
	}

	if len(drivers) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save drivers: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.upsert(ctx, tx, drivers); err != nil {
		return fmt.Errorf("save drivers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save drivers: commit tx: %w", err)
	}

	return nil
}

func (s *SqliteDriverRepository) upsert(ctx context.Context, tx *sql.Tx, drivers []*domain.Driver) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO drivers (
		driver_id,
		status,
		available_at,
		current_order_id
	)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (driver_id) DO UPDATE
	SET status = excluded.status,
		available_at = excluded.available_at,
		current_order_id = excluded.current_order_id;
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, d := range drivers {
		if d == nil {
			return errors.New("upsert driver: nil driver")
		}
		if _, err := stmt.ExecContext(ctx, d.DriverID, string(d.Status), d.NextAvailableAt, nullString(d.CurrentOrderID)); err != nil {
			return fmt.Errorf("upsert driver_id=%s: %w", d.DriverID, err)
		}
	}

	return nil
}

// Return all drivers ordered by identity. SQLite's default BINARY collation
// compares byte-wise, which matches string ordering of the ids.
func (s *SqliteDriverRepository) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite driver repository: DB is nil")
	}

	query := `
	SELECT
		driver_id,
		status,
		available_at,
		current_order_id
	FROM drivers
	ORDER BY driver_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list drivers: query drivers table: %w", err)
	}
	defer rows.Close()

	drivers := make([]*domain.Driver, 0, 16)
	for rows.Next() {
		d, err := scanDriver(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list drivers: scan row: %w", err)
		}
		drivers = append(drivers, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}

	return drivers, nil
}

func (s *SqliteDriverRepository) Clear(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("sqlite driver repository: DB is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM drivers;`); err != nil {
		return fmt.Errorf("clear drivers: %w", err)
	}
	return nil
}
