package services

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPersistence marks a store failure that happened after outcomes were computed.
var ErrPersistence = errors.New("persistence failure")

type BatchRequest struct {
	DriverCount int
	Orders      []domain.Order
}

type BatchResult struct {
	RunID       string
	DriverCount int
	Outcomes    []domain.Outcome
}

func (r *BatchResult) Counts() (fulfilled, unfulfilled int) {
	for _, o := range r.Outcomes {
		if o.Fulfilled() {
			fulfilled++
		} else {
			unfulfilled++
		}
	}
	return fulfilled, unfulfilled
}

// Dispatcher runs batch matching against injected driver and assignment stores.
//
// ProcessBatch serializes batch runs so that no two runs share a driver pool.
// Initialize and Dispatch are the underlying steps; callers using them directly
// own the serialization of their runs.
type Dispatcher struct {
	drivers     ports.DriverRepository
	assignments ports.AssignmentRepository
	events      ports.BatchEventPublisher
	newRunID    func() string
	now         func() time.Time

	mu sync.Mutex
}

func NewDispatcher(
	drivers ports.DriverRepository,
	assignments ports.AssignmentRepository,
	events ports.BatchEventPublisher,
) *Dispatcher {
	return &Dispatcher{
		drivers:     drivers,
		assignments: assignments,
		events:      events,
		newRunID:    uuid.NewString,
		now:         time.Now,
	}
}

// Initialize replaces the stored driver pool with D1..Dn and returns the
// run-scoped pool built from the store listing.
func (d *Dispatcher) Initialize(ctx context.Context, n int) (_ *domain.Pool, err error) {
	defer obs.Time(ctx, "dispatcher.Initialize")(&err)

	seed, err := domain.NewDrivers(n)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}

	if err := d.drivers.ReplaceAll(ctx, seed); err != nil {
		return nil, fmt.Errorf("initialize: replace drivers: %w: %w", ErrPersistence, err)
	}

	listed, err := d.drivers.ListDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize: list drivers: %w: %w", ErrPersistence, err)
	}
	if len(listed) != n {
		return nil, fmt.Errorf("initialize: store returned %d drivers, want %d: %w", len(listed), n, ErrPersistence)
	}

	pool, err := domain.NewPoolFromDrivers(listed)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	pool.RunID = d.newRunID()

	return pool, nil
}

// Dispatch matches orders against the pool and stores the resulting driver
// state and outcome records. On a store failure the computed outcomes are
// still returned together with an error wrapping ErrPersistence.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	pool *domain.Pool,
	orders []domain.Order,
) (_ []domain.Outcome, err error) {
	defer obs.Time(ctx, "dispatcher.Dispatch")(&err)

	outcomes, err := MatchOrders(pool, orders)
	if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}

	// Matching depends only on in-memory pool state, so all writes happen after the loop.
	if err := d.drivers.SaveAll(ctx, pool.Drivers); err != nil {
		return outcomes, fmt.Errorf("dispatch: save drivers: %w: %w", ErrPersistence, err)
	}

	records := make([]domain.AssignmentRecord, 0, len(outcomes))
	for _, o := range outcomes {
		records = append(records, domain.AssignmentRecord{RunID: pool.RunID, Outcome: o})
	}
	if err := d.assignments.Append(ctx, records); err != nil {
		return outcomes, fmt.Errorf("dispatch: append assignments: %w: %w", ErrPersistence, err)
	}

	return outcomes, nil
}

// ProcessBatch validates the whole request, then runs Initialize and Dispatch
// as one atomic batch run.
func (d *Dispatcher) ProcessBatch(ctx context.Context, req BatchRequest) (_ *BatchResult, err error) {
	defer obs.Time(ctx, "dispatcher.ProcessBatch")(&err)

	if req.DriverCount <= 0 {
		return nil, fmt.Errorf("process batch: driver count must be positive (got %d): %w", req.DriverCount, domain.ErrInvalidCapacity)
	}
	if err := domain.ValidateOrders(req.Orders); err != nil {
		return nil, fmt.Errorf("process batch: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pool, err := d.Initialize(ctx, req.DriverCount)
	if err != nil {
		return nil, fmt.Errorf("process batch: %w", err)
	}

	result := &BatchResult{RunID: pool.RunID, DriverCount: pool.Size()}

	outcomes, err := d.Dispatch(ctx, pool, req.Orders)
	result.Outcomes = outcomes
	if err != nil {
		if outcomes == nil {
			return nil, fmt.Errorf("process batch: %w", err)
		}
		return result, fmt.Errorf("process batch run_id=%s: %w", pool.RunID, err)
	}

	d.publish(ctx, result, len(req.Orders))

	return result, nil
}

func (d *Dispatcher) publish(ctx context.Context, result *BatchResult, orderCount int) {
	if d.events == nil {
		return
	}

	fulfilled, unfulfilled := result.Counts()
	evt := ports.BatchCompletedEvent{
		RunID:       result.RunID,
		DriverCount: result.DriverCount,
		OrderCount:  orderCount,
		Fulfilled:   fulfilled,
		Unfulfilled: unfulfilled,
		CompletedAt: d.now().UTC(),
	}
	if err := d.events.PublishBatchCompleted(ctx, evt); err != nil {
		log.Printf("publish batch completed failed: run_id=%s err=%v", result.RunID, err)
	}
}

func (d *Dispatcher) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	drivers, err := d.drivers.ListDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	return drivers, nil
}

func (d *Dispatcher) ListAssignments(ctx context.Context) ([]domain.AssignmentRecord, error) {
	records, err := d.assignments.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return records, nil
}

// ListCustomers returns the order-centric view of every stored outcome.
func (d *Dispatcher) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	records, err := d.assignments.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	customers := make([]domain.Customer, 0, len(records))
	for _, r := range records {
		customers = append(customers, domain.CustomerFromOutcome(r.Outcome))
	}
	return customers, nil
}

// Reset clears drivers and assignments.
func (d *Dispatcher) Reset(ctx context.Context) (err error) {
	defer obs.Time(ctx, "dispatcher.Reset")(&err)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.assignments.Clear(ctx); err != nil {
		return fmt.Errorf("reset: clear assignments: %w", err)
	}
	if err := d.drivers.Clear(ctx); err != nil {
		return fmt.Errorf("reset: clear drivers: %w", err)
	}
	return nil
}
