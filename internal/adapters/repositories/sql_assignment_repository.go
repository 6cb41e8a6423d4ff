package repositories

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"errors"
	"fmt"
)

// SQLAssignmentRepository is a Postgres-backed implementation of the AssignmentRepository port.
type SQLAssignmentRepository struct {
	DB *sql.DB
}

func NewSQLAssignmentRepository(db *sql.DB) *SQLAssignmentRepository {
	return &SQLAssignmentRepository{DB: db}
}

func (s *SQLAssignmentRepository) Append(ctx context.Context, records []domain.AssignmentRecord) (err error) {
	defer obs.Time(ctx, "assignments.sql.Append")(&err)

	if s.DB == nil {
		return errors.New("assignment repository: db is nil")
	}

	if len(records) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append assignments: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO delivery_assignments (
		run_id, customer_id, order_time, travel_time,
		assignment_result, driver_id, assignment_time, completion_time
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`)
	if err != nil {
		return fmt.Errorf("append assignments: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, rowFromRecord(r).args()...); err != nil {
			return fmt.Errorf("append assignments customer_id=%q: %w", r.Outcome.CustomerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append assignments commit: %w", err)
	}

	return nil
}

func (s *SQLAssignmentRepository) ListAssignments(ctx context.Context) (_ []domain.AssignmentRecord, err error) {
	defer obs.Time(ctx, "assignments.sql.ListAssignments")(&err)

	if s.DB == nil {
		return nil, errors.New("assignment repository: db is nil")
	}

	q := `
	SELECT run_id, customer_id, order_time, travel_time,
		assignment_result, driver_id, assignment_time, completion_time
	FROM delivery_assignments
	ORDER BY id;
	`

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list assignments: query delivery_assignments table: %w", err)
	}
	defer rows.Close()

	records := make([]domain.AssignmentRecord, 0, 64)
	for rows.Next() {
		var row assignmentRow
		if err := rows.Scan(row.scanDest()...); err != nil {
			return nil, fmt.Errorf("list assignments: scan rows: %w", err)
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

func (s *SQLAssignmentRepository) Clear(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("assignment repository: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM delivery_assignments;`); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	return nil
}
