package asyncapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// EventTypeKey is the schema extension naming the CloudEvent type a payload schema describes
const EventTypeKey = "x-event-type"

// EventValidator validates CloudEvent data against the payload schemas of an AsyncAPI document.
type EventValidator struct {
	schemas map[string]*jsonschema.Schema
}

// envelope holds the CloudEvent attributes the validator checks.
type envelope struct {
	SpecVersion string          `json:"specversion"`
	Type        string          `json:"type"`
	Source      string          `json:"source"`
	ID          string          `json:"id"`
	Data        json.RawMessage `json:"data"`
}

// Spec represents the relevant parts of an AsyncAPI specification.
type Spec struct {
	AsyncAPI   string     `yaml:"asyncapi"`
	Info       Info       `yaml:"info"`
	Components Components `yaml:"components"`
}

// Info contains the AsyncAPI info section.
type Info struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

// Components contains reusable components.
type Components struct {
	Schemas map[string]map[string]interface{} `yaml:"schemas"`
}

// NewEventValidator creates a new event validator from an AsyncAPI specification file.
func NewEventValidator(asyncAPIPath string) (*EventValidator, error) {
	data, err := os.ReadFile(asyncAPIPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read AsyncAPI spec: %w", err)
	}
	return NewEventValidatorFromBytes(data)
}

// NewEventValidatorFromBytes compiles every component schema that carries x-event-type.
// Schemas must be self-contained.
func NewEventValidatorFromBytes(specBytes []byte) (*EventValidator, error) {
	var spec Spec
	if err := yaml.Unmarshal(specBytes, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse AsyncAPI spec: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	schemas := make(map[string]*jsonschema.Schema)

	for name, raw := range spec.Components.Schemas {
		eventType, _ := raw[EventTypeKey].(string)
		if eventType == "" {
			continue
		}
		if _, dup := schemas[eventType]; dup {
			return nil, fmt.Errorf("event type %s is described by more than one schema", eventType)
		}

		compiled, err := compile(compiler, "asyncapi://schemas/"+name+".json", raw)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
		schemas[eventType] = compiled
	}

	return &EventValidator{schemas: schemas}, nil
}

func compile(compiler *jsonschema.Compiler, uri string, raw interface{}) (*jsonschema.Schema, error) {
	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	if err := compiler.AddResource(uri, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	return compiler.Compile(uri)
}

// ValidateEvent validates a serialized CloudEvent. eventType must match the envelope type.
func (v *EventValidator) ValidateEvent(eventType string, payload []byte) error {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("failed to parse CloudEvent: %w", err)
	}

	switch {
	case env.SpecVersion != "1.0":
		return fmt.Errorf("unsupported specversion %q", env.SpecVersion)
	case env.Type == "":
		return fmt.Errorf("event type is required")
	case env.Type != eventType:
		return fmt.Errorf("event type %s does not match envelope type %s", eventType, env.Type)
	case env.Source == "" || env.ID == "":
		return fmt.Errorf("event source and id are required")
	}

	return v.ValidateData(env.Type, env.Data)
}

// ValidateData validates the data member of an event of the given type.
func (v *EventValidator) ValidateData(eventType string, data []byte) error {
	schema, ok := v.schemas[eventType]
	if !ok {
		return fmt.Errorf("no schema found for event type: %s", eventType)
	}
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("event data is required")
	}

	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode event data: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("event data validation failed for type %s: %w", eventType, err)
	}
	return nil
}

// SupportedEventTypes returns all event types that have registered schemas, sorted.
func (v *EventValidator) SupportedEventTypes() []string {
	types := make([]string, 0, len(v.schemas))
	for eventType := range v.schemas {
		types = append(types, eventType)
	}
	sort.Strings(types)
	return types
}

// HasSchema checks if a schema exists for the given event type.
func (v *EventValidator) HasSchema(eventType string) bool {
	_, ok := v.schemas[eventType]
	return ok
}
