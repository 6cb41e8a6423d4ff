package repositories

import (
	"database/sql"
	"delivery-dispatch-service/internal/domain"
	"fmt"
)

// assignmentRow is the column layout of delivery_assignments shared by the SQL adapters.
type assignmentRow struct {
	RunID          string
	CustomerID     string
	OrderTime      int
	TravelTime     int
	Result         string
	DriverID       sql.NullString
	AssignmentTime sql.NullInt64
	CompletionTime sql.NullInt64
}

func rowFromRecord(r domain.AssignmentRecord) assignmentRow {
	o := r.Outcome
	row := assignmentRow{
		RunID:      r.RunID,
		CustomerID: o.CustomerID,
		OrderTime:  o.OrderTime,
		TravelTime: o.TravelTime,
		Result:     string(o.Result()),
	}
	if a := o.Assignment; a != nil {
		row.DriverID = sql.NullString{String: a.DriverID, Valid: true}
		row.AssignmentTime = sql.NullInt64{Int64: int64(a.AssignmentTime), Valid: true}
		row.CompletionTime = sql.NullInt64{Int64: int64(a.CompletionTime), Valid: true}
	}
	return row
}

func (row assignmentRow) args() []any {
	return []any{
		row.RunID,
		row.CustomerID,
		row.OrderTime,
		row.TravelTime,
		row.Result,
		row.DriverID,
		row.AssignmentTime,
		row.CompletionTime,
	}
}

func (row *assignmentRow) scanDest() []any {
	return []any{
		&row.RunID,
		&row.CustomerID,
		&row.OrderTime,
		&row.TravelTime,
		&row.Result,
		&row.DriverID,
		&row.AssignmentTime,
		&row.CompletionTime,
	}
}

func (row assignmentRow) record() (domain.AssignmentRecord, error) {
	rec := domain.AssignmentRecord{
		RunID: row.RunID,
		Outcome: domain.Outcome{
			CustomerID: row.CustomerID,
			OrderTime:  row.OrderTime,
			TravelTime: row.TravelTime,
		},
	}

	switch domain.AssignmentResult(row.Result) {
	case domain.ResultFulfilled:
		if !row.DriverID.Valid || !row.AssignmentTime.Valid || !row.CompletionTime.Valid {
			return domain.AssignmentRecord{}, fmt.Errorf("assignment row %s: fulfilled row missing driver or timing", row.CustomerID)
		}
		rec.Outcome.Assignment = &domain.Assignment{
			DriverID:       row.DriverID.String,
			AssignmentTime: int(row.AssignmentTime.Int64),
			CompletionTime: int(row.CompletionTime.Int64),
		}
	case domain.ResultUnfulfilled:
	default:
		return domain.AssignmentRecord{}, fmt.Errorf("assignment row %s: unknown result %q", row.CustomerID, row.Result)
	}

	return rec, nil
}

func scanDriver(scan func(dest ...any) error) (*domain.Driver, error) {
	var (
		d       domain.Driver
		status  string
		orderID sql.NullString
	)
	if err := scan(&d.DriverID, &status, &d.NextAvailableAt, &orderID); err != nil {
		return nil, err
	}
	d.Status = domain.DriverStatus(status)
	d.CurrentOrderID = orderID.String
	return &d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
