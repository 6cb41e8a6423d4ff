package ports

import (
	"context"
	"delivery-dispatch-service/internal/domain"
)

// Port: an append-only log of per-order outcomes.
type AssignmentRepository interface {
	// Append records, preserving their order.
	Append(ctx context.Context, records []domain.AssignmentRecord) error
	// Return all records in the order they were appended.
	ListAssignments(ctx context.Context) ([]domain.AssignmentRecord, error)
	// Remove every stored record.
	Clear(ctx context.Context) error
}
