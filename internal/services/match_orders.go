package services

import (
	"delivery-dispatch-service/internal/domain"
	"errors"
	"fmt"
)

// MatchOrders assigns each order, in input order, to the earliest-available driver.
//
// Only the single earliest driver by (NextAvailableAt, DriverID) is considered.
// If that driver is not free at the order time no driver is, so the order is
// recorded as unfulfilled and no state changes. Matched drivers in the pool are
// updated in place.
//
// Orders are validated before any driver is touched; an invalid order fails
// the whole batch with domain.ErrInvalidOrder.
func MatchOrders(pool *domain.Pool, orders []domain.Order) ([]domain.Outcome, error) {
	if pool == nil {
		return nil, errors.New("match orders: pool must be non-nil")
	}

	if err := domain.ValidateOrders(orders); err != nil {
		return nil, fmt.Errorf("match orders: %w", err)
	}

	index := NewAvailabilityIndex(pool.Drivers)
	outcomes := make([]domain.Outcome, 0, len(orders))

	for i, order := range orders {
		customerID := domain.CustomerID(i + 1)

		earliest, ok := index.PeekEarliest()
		if !ok || !earliest.IsAvailableAt(order.OrderTime) {
			outcomes = append(outcomes, domain.UnfulfilledOutcome(customerID, order))
			continue
		}

		driver, _ := index.TakeEarliest()
		driver.Assign(customerID, order.OrderTime, order.TravelTime)
		index.Reinsert(driver)

		outcomes = append(outcomes, domain.FulfilledOutcome(customerID, order, driver.DriverID))
	}

	return outcomes, nil
}
