package repositories

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"errors"
	"slices"
	"sync"
)

// In-memory implementation of the DriverRepository port.
// Drivers are copied on the way in and out so callers never share state with the store.
type MemoryDriverRepository struct {
	mu      sync.Mutex
	drivers map[string]domain.Driver
}

func NewMemoryDriverRepository() *MemoryDriverRepository {
	return &MemoryDriverRepository{drivers: make(map[string]domain.Driver)}
}

func (m *MemoryDriverRepository) ReplaceAll(ctx context.Context, drivers []*domain.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[string]domain.Driver, len(drivers))
	for _, d := range drivers {
		if d == nil {
			return errors.New("memory replace drivers: nil driver")
		}
		next[d.DriverID] = *d
	}
	m.drivers = next
	return nil
}

func (m *MemoryDriverRepository) SaveAll(ctx context.Context, drivers []*domain.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range drivers {
		if d == nil {
			return errors.New("memory save drivers: nil driver")
		}
		m.drivers[d.DriverID] = *d
	}
	return nil
}

func (m *MemoryDriverRepository) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		d := d
		out = append(out, &d)
	}
	slices.SortFunc(out, func(a, b *domain.Driver) int { return domain.CompareDriverIDs(a.DriverID, b.DriverID) })
	return out, nil
}

func (m *MemoryDriverRepository) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.drivers = make(map[string]domain.Driver)
	return nil
}

// In-memory, append-only implementation of the AssignmentRepository port.
type MemoryAssignmentRepository struct {
	mu      sync.Mutex
	records []domain.AssignmentRecord
}

func NewMemoryAssignmentRepository() *MemoryAssignmentRepository {
	return &MemoryAssignmentRepository{}
}

func (m *MemoryAssignmentRepository) Append(ctx context.Context, records []domain.AssignmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		m.records = append(m.records, cloneRecord(r))
	}
	return nil
}

func (m *MemoryAssignmentRepository) ListAssignments(ctx context.Context) ([]domain.AssignmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.AssignmentRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, cloneRecord(r))
	}
	return out, nil
}

func (m *MemoryAssignmentRepository) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
	return nil
}

func cloneRecord(r domain.AssignmentRecord) domain.AssignmentRecord {
	if r.Outcome.Assignment != nil {
		a := *r.Outcome.Assignment
		r.Outcome.Assignment = &a
	}
	return r
}
