package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
)

const (
	specVersion     = "1.0"
	jsonContentType = "application/json"
)

// EventFactory stamps envelopes for one event source
type EventFactory struct {
	source string
	now    func() time.Time
}

func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source, now: time.Now}
}

// CreateEvent wraps data in a JSON envelope with a fresh id and a UTC timestamp. The
// request's correlation id, if any, rides along as an extension.
func (f *EventFactory) CreateEvent(ctx context.Context, eventType, subject string, data any) *Event {
	return f.CreateBranchEvent(ctx, eventType, subject, "", data)
}

// CreateBranchEvent is CreateEvent for events scoped to a branch
func (f *EventFactory) CreateBranchEvent(ctx context.Context, eventType, subject, branchID string, data any) *Event {
	return &Event{
		SpecVersion:     specVersion,
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.NewString(),
		Time:            f.now().UTC(),
		DataContentType: jsonContentType,
		Data:            data,
		CorrelationID:   logging.CorrelationIDFromContext(ctx),
		BranchID:        branchID,
	}
}
