// Package outbox implements the transactional outbox: events are written in the same unit
// of work as the document change and relayed to Kafka by Publisher afterwards.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/cloudevents"
)

// DefaultMaxRetries is the number of failed relays after which an event is parked
const DefaultMaxRetries = 10

// Event is one pending or relayed CloudEvent. Payload is the JSON encoded envelope.
type Event struct {
	ID            string          `bson:"_id" json:"id"`
	AggregateID   string          `bson:"aggregateId" json:"aggregateId"`
	AggregateType string          `bson:"aggregateType" json:"aggregateType"`
	EventType     string          `bson:"eventType" json:"eventType"`
	Topic         string          `bson:"topic" json:"topic"`
	Payload       json.RawMessage `bson:"payload" json:"payload"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	PublishedAt   *time.Time      `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	RetryCount    int             `bson:"retryCount" json:"retryCount"`
	LastError     string          `bson:"lastError,omitempty" json:"lastError,omitempty"`
	MaxRetries    int             `bson:"maxRetries" json:"maxRetries"`
}

// NewEvent wraps ce for the document identified by aggregateType and aggregateID
func NewEvent(aggregateID, aggregateType, topic string, ce *cloudevents.Event) (*Event, error) {
	payload, err := json.Marshal(ce)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", ce.Type, err)
	}

	return &Event{
		ID:            uuid.NewString(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     ce.Type,
		Topic:         topic,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
		MaxRetries:    DefaultMaxRetries,
	}, nil
}

func (e *Event) IsPublished() bool {
	return e.PublishedAt != nil
}

// ShouldRetry is false once the event is relayed or has used up its retries
func (e *Event) ShouldRetry() bool {
	return e.PublishedAt == nil && e.RetryCount < e.MaxRetries
}

// ToCloudEvent decodes the stored envelope. Data comes back as a generic JSON value.
func (e *Event) ToCloudEvent() (*cloudevents.Event, error) {
	ce := &cloudevents.Event{}
	if err := json.Unmarshal(e.Payload, ce); err != nil {
		return nil, fmt.Errorf("decode outbox event %s: %w", e.ID, err)
	}
	return ce, nil
}
