package ports

import (
	"context"
	"time"
)

// Summary of a completed batch run, emitted after its outcomes are stored.
type BatchCompletedEvent struct {
	RunID       string
	DriverCount int
	OrderCount  int
	Fulfilled   int
	Unfulfilled int
	CompletedAt time.Time
}

// Contract for announcing finished batch runs to downstream consumers.
type BatchEventPublisher interface {
	PublishBatchCompleted(ctx context.Context, evt BatchCompletedEvent) error
}
