package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UsesJewelleryNamespace(t *testing.T) {
	m := New(DefaultConfig("inventory-service"))

	m.RecordHTTPRequest("GET", "/api/v1/stock-ins", 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jewellery_http_requests_total")
}

func TestBusinessCounters(t *testing.T) {
	m := New(DefaultConfig("inventory-service"))

	m.RecordDocumentCreated("stock_in")
	m.RecordDocumentPosted("stock_in", "posted")
	m.RecordReconciliationFlag("stock_in", "EXCEEDS_ORDERED")
	m.RecordReconciliationFlag("stock_in", "EXCEEDS_ORDERED")
	m.AddFulfilledAmount("stock_in", "WEIGHT", 12.5)
	m.AddFulfilledAmount("stock_in", "WEIGHT", -3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsCreated.WithLabelValues("inventory-service", "stock_in")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReconciliationFlags.WithLabelValues("inventory-service", "stock_in", "EXCEEDS_ORDERED")))
	assert.Equal(t, 12.5, testutil.ToFloat64(m.FulfilledAmount.WithLabelValues("inventory-service", "stock_in", "WEIGHT")))
}

func TestOutboxMetrics(t *testing.T) {
	m := New(DefaultConfig("inventory-service"))

	m.SetOutboxPending(4)
	m.RecordOutboxPublish("receiving.stock-in.posted", true)
	m.RecordOutboxPublish("receiving.stock-in.posted", false)
	m.RecordOutboxRetry("receiving.stock-in.posted")

	assert.Equal(t, 4.0, testutil.ToFloat64(m.OutboxPending))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxPublished.WithLabelValues("inventory-service", "receiving.stock-in.posted", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxRetries.WithLabelValues("inventory-service", "receiving.stock-in.posted")))
}

func TestHTTPRequestsInFlight(t *testing.T) {
	m := New(DefaultConfig("inventory-service"))

	m.IncrementHTTPRequestsInFlight()
	m.IncrementHTTPRequestsInFlight()
	m.DecrementHTTPRequestsInFlight()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
}
