// Package cloudevents defines the CloudEvents v1.0 envelope published for inventory
// document changes.
package cloudevents

import "time"

// SourceInventory is the source attribute of every event this service emits
const SourceInventory = "/jewellery/inventory-service"

// Extension attribute names carried on events and Kafka headers
const (
	ExtCorrelationID = "jwlcorrelationid"
	ExtBranchID      = "jwlbranchid"
)

// Event is a CloudEvents v1.0 envelope for the inventory domain events
type Event struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            any         `json:"data"`

	CorrelationID string `json:"jwlcorrelationid,omitempty"`
	BranchID      string `json:"jwlbranchid,omitempty"`

	// W3C trace context, populated by the instrumented producer
	TraceParent string `json:"traceparent,omitempty"`
	TraceState  string `json:"tracestate,omitempty"`
}

// Extensions returns the populated extension attributes keyed by CloudEvents name
func (e *Event) Extensions() map[string]string {
	ext := make(map[string]string, 4)
	if e.CorrelationID != "" {
		ext[ExtCorrelationID] = e.CorrelationID
	}
	if e.BranchID != "" {
		ext[ExtBranchID] = e.BranchID
	}
	if e.TraceParent != "" {
		ext["traceparent"] = e.TraceParent
	}
	if e.TraceState != "" {
		ext["tracestate"] = e.TraceState
	}
	return ext
}
