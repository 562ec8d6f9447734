package cloudevents

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
)

func TestEventFactory_CreateEvent(t *testing.T) {
	f := NewEventFactory(SourceInventory)
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("IST", 19800))
	f.now = func() time.Time { return fixed }

	ctx := logging.ContextWithCorrelationID(context.Background(), "corr-42")
	e := f.CreateEvent(ctx, "receiving.stock-in.posted", "stock-in/GRN-1", map[string]string{"a": "b"})

	assert.Equal(t, "1.0", e.SpecVersion)
	assert.Equal(t, SourceInventory, e.Source)
	assert.Equal(t, "stock-in/GRN-1", e.Subject)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, time.UTC, e.Time.Location())
	assert.True(t, fixed.Equal(e.Time))
	assert.Equal(t, "corr-42", e.CorrelationID)
}

func TestEventFactory_CreateBranchEvent(t *testing.T) {
	e := NewEventFactory(SourceInventory).CreateBranchEvent(context.Background(), "t", "s", "BR-1", nil)

	assert.Equal(t, "BR-1", e.BranchID)
	assert.Empty(t, e.CorrelationID)
	assert.Equal(t, map[string]string{ExtBranchID: "BR-1"}, e.Extensions())
}

func TestEvent_JSONUsesExtensionNames(t *testing.T) {
	e := &Event{SpecVersion: "1.0", Type: "t", Source: "s", ID: "1", CorrelationID: "c", BranchID: "b"}

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "c", m[ExtCorrelationID])
	assert.Equal(t, "b", m[ExtBranchID])
	assert.NotContains(t, m, "traceparent")
}
