package ports

import (
	"context"
	"delivery-dispatch-service/internal/domain"
)

// Port: a boundary for persisting the driver pool of the current batch run.
type DriverRepository interface {
	// Remove every stored driver and store the given pool in its place.
	ReplaceAll(ctx context.Context, drivers []*domain.Driver) error
	// Upsert the committed state of the given drivers.
	SaveAll(ctx context.Context, drivers []*domain.Driver) error
	// Return all drivers in ascending identity order (string comparison).
	ListDrivers(ctx context.Context) ([]*domain.Driver, error)
	// Remove every stored driver.
	Clear(ctx context.Context) error
}
