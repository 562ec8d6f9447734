package outbox

import (
	"context"
	"time"
)

// Repository persists outbox events
type Repository interface {
	// Save stores a single event, using the transaction carried by ctx if any
	Save(ctx context.Context, event *Event) error

	// SaveAll stores several events in one write
	SaveAll(ctx context.Context, events []*Event) error

	// FindUnpublished returns the oldest unpublished events still eligible for retry
	FindUnpublished(ctx context.Context, limit int) ([]*Event, error)

	MarkPublished(ctx context.Context, eventID string) error

	// IncrementRetry bumps the retry count and records the failure
	IncrementRetry(ctx context.Context, eventID string, errorMsg string) error

	// DeletePublished removes events published before the cutoff and returns how many were removed
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}
