package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type DriverStatus string

const (
	DriverAvailable DriverStatus = "Available"
	DriverBusy      DriverStatus = "Busy"
)

// Represents a dispatchable driver on the synthetic batch timeline.
// Status mirrors the last committed state and is not authoritative;
// NextAvailableAt is.
type Driver struct {
	DriverID        string
	NextAvailableAt int
	Status          DriverStatus
	CurrentOrderID  string
}

// DriverID returns the identity of the driver created at the given 1-based ordinal.
func DriverID(ordinal int) string { return "D" + strconv.Itoa(ordinal) }

func NewDriver(ordinal int) *Driver {
	return &Driver{
		DriverID: DriverID(ordinal),
		Status:   DriverAvailable,
	}
}

// NewDrivers creates drivers D1..Dn, all available at time 0.
func NewDrivers(n int) ([]*Driver, error) {
	if n <= 0 {
		return nil, fmt.Errorf("new drivers: driver count must be positive (got %d): %w", n, ErrInvalidCapacity)
	}

	drivers := make([]*Driver, 0, n)
	for i := 1; i <= n; i++ {
		drivers = append(drivers, NewDriver(i))
	}

	return drivers, nil
}

// IsAvailableAt reports whether the driver can take an order placed at t.
func (d *Driver) IsAvailableAt(t int) bool { return d.NextAvailableAt <= t }

func (d *Driver) StatusAt(t int) DriverStatus {
	if d.IsAvailableAt(t) {
		return DriverAvailable
	}
	return DriverBusy
}

// Assign commits the driver to an order: busy until orderTime+travelTime.
func (d *Driver) Assign(customerID string, orderTime, travelTime int) {
	d.NextAvailableAt = orderTime + travelTime
	d.Status = DriverBusy
	d.CurrentOrderID = customerID
}

// CompareDriverIDs orders identities as plain strings, so "D10" sorts before "D2".
func CompareDriverIDs(a, b string) int { return strings.Compare(a, b) }

// Pool is the run-scoped set of drivers owned by a single batch run.
// Drivers is kept in ascending identity order.
type Pool struct {
	RunID   string
	Drivers []*Driver
}

// NewPool builds a fresh pool of n drivers for one batch run.
func NewPool(n int) (*Pool, error) {
	drivers, err := NewDrivers(n)
	if err != nil {
		return nil, err
	}
	return NewPoolFromDrivers(drivers)
}

// NewPoolFromDrivers takes ownership of drivers as listed by a store.
func NewPoolFromDrivers(drivers []*Driver) (*Pool, error) {
	if len(drivers) == 0 {
		return nil, fmt.Errorf("new pool: no drivers: %w", ErrInvalidCapacity)
	}

	seen := make(map[string]struct{}, len(drivers))
	for _, d := range drivers {
		if d == nil {
			return nil, fmt.Errorf("new pool: nil driver")
		}
		if _, ok := seen[d.DriverID]; ok {
			return nil, fmt.Errorf("new pool: duplicate driver %q", d.DriverID)
		}
		seen[d.DriverID] = struct{}{}
	}

	sorted := slices.Clone(drivers)
	slices.SortFunc(sorted, func(a, b *Driver) int { return CompareDriverIDs(a.DriverID, b.DriverID) })

	return &Pool{Drivers: sorted}, nil
}

func (p *Pool) Size() int { return len(p.Drivers) }
