package repositories

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/domain"
	"errors"
	"fmt"
)

// SQLite-backed implementation of the AssignmentRepository port.
type SqliteAssignmentRepository struct{ DB *sql.DB }

func NewSqliteAssignmentRepository(db *sql.DB) *SqliteAssignmentRepository {
	return &SqliteAssignmentRepository{DB: db}
}

func (s *SqliteAssignmentRepository) Append(ctx context.Context, records []domain.AssignmentRecord) error {
	if s.DB == nil {
		return errors.New("sqlite assignment repository: DB is nil")
	}

	if len(records) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append assignments: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO delivery_assignments (
		run_id,
		customer_id,
		order_time,
		travel_time,
		assignment_result,
		driver_id,
		assignment_time,
		completion_time
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("append assignments: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, rowFromRecord(r).args()...); err != nil {
			return fmt.Errorf("append assignments: insert customer_id=%s: %w", r.Outcome.CustomerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append assignments: commit tx: %w", err)
	}

	return nil
}

func (s *SqliteAssignmentRepository) ListAssignments(ctx context.Context) ([]domain.AssignmentRecord, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite assignment repository: DB is nil")
	}

	query := `
	SELECT
		run_id,
		customer_id,
		order_time,
		travel_time,
		assignment_result,
		driver_id,
		assignment_time,
		completion_time
	FROM delivery_assignments
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list assignments: query delivery_assignments table: %w", err)
	}
	defer rows.Close()

	records := make([]domain.AssignmentRecord, 0, 64)
	for rows.Next() {
		var row assignmentRow
		if err := rows.Scan(row.scanDest()...); err != nil {
			return nil, fmt.Errorf("list assignments: scan row: %w", err)
		}
		rec, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("list assignments: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assignments: row iteration: %w", err)
	}

	return records, nil
}

func (s *SqliteAssignmentRepository) Clear(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("sqlite assignment repository: DB is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM delivery_assignments;`); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	return nil
}
