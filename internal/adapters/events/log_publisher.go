package events

import (
	"context"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"log"
)

// LogPublisher writes batch completion events to the process log.
// Used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) PublishBatchCompleted(ctx context.Context, evt ports.BatchCompletedEvent) error {
	log.Printf(
		"event=batch_completed req_id=%s run_id=%s drivers=%d orders=%d fulfilled=%d unfulfilled=%d",
		obs.RequestID(ctx), evt.RunID, evt.DriverCount, evt.OrderCount, evt.Fulfilled, evt.Unfulfilled,
	)
	return nil
}
