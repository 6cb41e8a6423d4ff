package services

import (
	"delivery-dispatch-service/internal/domain"
	"testing"
)

func TestAvailabilityIndexTieBreakUsesStringOrder(t *testing.T) {
	drivers, err := domain.NewDrivers(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	index := NewAvailabilityIndex(drivers)

	// All drivers share NextAvailableAt=0, so the order is purely lexicographic.
	want := []string{"D1", "D10", "D2", "D3", "D4", "D5", "D6", "D7", "D8", "D9"}
	for i, w := range want {
		d, ok := index.TakeEarliest()
		if !ok {
			t.Fatalf("take %d: index empty", i)
		}
		if d.DriverID != w {
			t.Fatalf("take %d: got %q, want %q", i, d.DriverID, w)
		}
	}

	if _, ok := index.TakeEarliest(); ok {
		t.Fatal("expected empty index")
	}
}

func TestAvailabilityIndexOrdersByAvailabilityFirst(t *testing.T) {
	drivers := []*domain.Driver{
		{DriverID: "D1", NextAvailableAt: 30},
		{DriverID: "D2", NextAvailableAt: 10},
		{DriverID: "D3", NextAvailableAt: 20},
		{DriverID: "D10", NextAvailableAt: 10},
	}
	index := NewAvailabilityIndex(drivers)

	want := []string{"D10", "D2", "D3", "D1"}
	for i, w := range want {
		d, _ := index.TakeEarliest()
		if d.DriverID != w {
			t.Fatalf("take %d: got %q, want %q", i, d.DriverID, w)
		}
	}
}

func TestAvailabilityIndexPeekDoesNotMutate(t *testing.T) {
	drivers, _ := domain.NewDrivers(3)
	index := NewAvailabilityIndex(drivers)

	first, ok := index.PeekEarliest()
	if !ok || first.DriverID != "D1" {
		t.Fatalf("peek = %v, %v; want D1", first, ok)
	}
	again, _ := index.PeekEarliest()
	if again != first || index.Len() != 3 {
		t.Fatalf("peek mutated index: len=%d", index.Len())
	}
}

func TestAvailabilityIndexReinsertUpdatesKey(t *testing.T) {
	drivers, _ := domain.NewDrivers(2)
	index := NewAvailabilityIndex(drivers)

	d, _ := index.TakeEarliest()
	d.Assign("C1", 1, 10)
	index.Reinsert(d)

	next, _ := index.PeekEarliest()
	if next.DriverID != "D2" {
		t.Fatalf("peek after reinsert = %q, want D2", next.DriverID)
	}

	index.TakeEarliest()
	last, _ := index.PeekEarliest()
	if last.DriverID != "D1" || last.NextAvailableAt != 11 {
		t.Fatalf("unexpected last driver: %+v", last)
	}
}

func TestAvailabilityIndexEmpty(t *testing.T) {
	index := NewAvailabilityIndex(nil)
	if _, ok := index.PeekEarliest(); ok {
		t.Fatal("peek on empty index reported a driver")
	}
	if _, ok := index.TakeEarliest(); ok {
		t.Fatal("take on empty index reported a driver")
	}
}
