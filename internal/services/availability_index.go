package services

import (
	"container/heap"
	"delivery-dispatch-service/internal/domain"
)

// driverHeap implements heap.Interface ordered by (NextAvailableAt, DriverID).
type driverHeap []*domain.Driver

func (h driverHeap) Len() int { return len(h) }

func (h driverHeap) Less(i, j int) bool {
	if h[i].NextAvailableAt != h[j].NextAvailableAt {
		return h[i].NextAvailableAt < h[j].NextAvailableAt
	}
	// Identity tie-break is a string comparison: D10 precedes D2.
	return domain.CompareDriverIDs(h[i].DriverID, h[j].DriverID) < 0
}

func (h driverHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *driverHeap) Push(x any) { *h = append(*h, x.(*domain.Driver)) }

func (h *driverHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// AvailabilityIndex gives deterministic access to the earliest-available driver.
// It is not safe for concurrent use; a batch run owns its index exclusively.
type AvailabilityIndex struct {
	drivers driverHeap
}

func NewAvailabilityIndex(drivers []*domain.Driver) *AvailabilityIndex {
	h := make(driverHeap, 0, len(drivers))
	for _, d := range drivers {
		if d != nil {
			h = append(h, d)
		}
	}
	heap.Init(&h)
	return &AvailabilityIndex{drivers: h}
}

// PeekEarliest returns the driver with the smallest key without removing it.
func (ix *AvailabilityIndex) PeekEarliest() (*domain.Driver, bool) {
	if len(ix.drivers) == 0 {
		return nil, false
	}
	return ix.drivers[0], true
}

// TakeEarliest removes and returns the driver with the smallest key.
func (ix *AvailabilityIndex) TakeEarliest() (*domain.Driver, bool) {
	if len(ix.drivers) == 0 {
		return nil, false
	}
	return heap.Pop(&ix.drivers).(*domain.Driver), true
}

// Reinsert places a driver back into the index under its current key.
func (ix *AvailabilityIndex) Reinsert(d *domain.Driver) {
	heap.Push(&ix.drivers, d)
}

func (ix *AvailabilityIndex) Len() int { return len(ix.drivers) }
