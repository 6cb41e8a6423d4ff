package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Immutable batch input. Identity is positional, see CustomerID.
type Order struct {
	OrderTime  int
	TravelTime int
}

// CustomerID returns the identity of the order at the given 1-based position.
func CustomerID(position int) string { return "C" + strconv.Itoa(position) }

func (o Order) Validate() error {
	if o.OrderTime <= 0 {
		return fmt.Errorf("order_time must be positive (got %d): %w", o.OrderTime, ErrInvalidOrder)
	}
	if o.TravelTime <= 0 {
		return fmt.Errorf("travel_time must be positive (got %d): %w", o.TravelTime, ErrInvalidOrder)
	}
	// CompletionTime must stay representable.
	if o.TravelTime > math.MaxInt-o.OrderTime {
		return fmt.Errorf("order_time + travel_time overflows (order_time %d, travel_time %d): %w", o.OrderTime, o.TravelTime, ErrInvalidOrder)
	}
	return nil
}

// CompletionTime is when a driver matched to this order becomes free again.
func (o Order) CompletionTime() int { return o.OrderTime + o.TravelTime }

// ValidateOrders checks every order, reporting the first offender by customer id.
func ValidateOrders(orders []Order) error {
	for i, o := range orders {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("validate orders: %s: %w", CustomerID(i+1), err)
		}
	}
	return nil
}
