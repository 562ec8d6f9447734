package outbox

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/cloudevents"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/metrics"
)

type memoryRepo struct {
	mu        sync.Mutex
	events    map[string]*Event
	order     []string
	findErr   error
	deletedAt time.Time
}

func newMemoryRepo(events ...*Event) *memoryRepo {
	r := &memoryRepo{events: map[string]*Event{}}
	_ = r.SaveAll(context.Background(), events)
	return r
}

func (r *memoryRepo) Save(ctx context.Context, event *Event) error {
	return r.SaveAll(ctx, []*Event{event})
}

func (r *memoryRepo) SaveAll(_ context.Context, events []*Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range events {
		r.events[e.ID] = e
		r.order = append(r.order, e.ID)
	}
	return nil
}

func (r *memoryRepo) FindUnpublished(_ context.Context, limit int) ([]*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*Event
	for _, id := range r.order {
		if e := r.events[id]; e.ShouldRetry() && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryRepo) MarkPublished(_ context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.events[eventID].PublishedAt = &now
	return nil
}

func (r *memoryRepo) IncrementRetry(_ context.Context, eventID string, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[eventID].RetryCount++
	r.events[eventID].LastError = errorMsg
	return nil
}

func (r *memoryRepo) DeletePublished(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletedAt = before
	return 0, nil
}

type fakeProducer struct {
	mu     sync.Mutex
	err    error
	topics []string
	events []*cloudevents.Event
}

func (p *fakeProducer) PublishEvent(_ context.Context, topic string, event *cloudevents.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

type rejectAll struct{}

func (rejectAll) ValidateEvent(string, []byte) error { return errors.New("missing required property") }

func testLogger() *logging.Logger {
	return logging.New(&logging.Config{Level: logging.LevelError, ServiceName: "test", Output: io.Discard})
}

func outboxEvent(t *testing.T, aggregateID, eventType string) *Event {
	t.Helper()
	ce := cloudevents.NewEventFactory(cloudevents.SourceInventory).
		CreateEvent(context.Background(), eventType, aggregateID, map[string]string{"ref": aggregateID})
	e, err := NewEvent(aggregateID, "StockIn", "jewellery.receiving.events", ce)
	require.NoError(t, err)
	return e
}

func TestNewEvent(t *testing.T) {
	e := outboxEvent(t, "GRN-001", "receiving.stock-in.posted")

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "receiving.stock-in.posted", e.EventType)
	assert.Equal(t, DefaultMaxRetries, e.MaxRetries)
	assert.False(t, e.IsPublished())
	assert.True(t, e.ShouldRetry())

	ce, err := e.ToCloudEvent()
	require.NoError(t, err)
	assert.Equal(t, "GRN-001", ce.Subject)
	assert.Equal(t, cloudevents.SourceInventory, ce.Source)
}

func TestEvent_ShouldRetry(t *testing.T) {
	e := &Event{RetryCount: 10, MaxRetries: 10}
	assert.False(t, e.ShouldRetry())

	now := time.Now()
	e = &Event{MaxRetries: 10, PublishedAt: &now}
	assert.False(t, e.ShouldRetry())
}

func TestPublisher_ProcessOnce(t *testing.T) {
	t.Run("publishes and marks events", func(t *testing.T) {
		repo := newMemoryRepo(
			outboxEvent(t, "GRN-001", "receiving.stock-in.posted"),
			outboxEvent(t, "GRN-002", "receiving.stock-in.created"),
		)
		producer := &fakeProducer{}
		m := metrics.New(metrics.DefaultConfig("test"))
		p := NewPublisher(repo, producer, testLogger(), m, nil)

		assert.Equal(t, 2, p.ProcessOnce(context.Background()))
		assert.Equal(t, []string{"jewellery.receiving.events", "jewellery.receiving.events"}, producer.topics)
		assert.Equal(t, "GRN-001", producer.events[0].Subject)

		for _, e := range repo.events {
			assert.True(t, e.IsPublished())
		}
		assert.Equal(t, 0, p.ProcessOnce(context.Background()))
		assert.Equal(t, 2, p.Stats()["published"])
		assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxPublished.WithLabelValues("test", "receiving.stock-in.posted", "success")))
	})

	t.Run("producer failure increments retry", func(t *testing.T) {
		e := outboxEvent(t, "GRN-001", "receiving.stock-in.posted")
		repo := newMemoryRepo(e)
		p := NewPublisher(repo, &fakeProducer{err: errors.New("broker down")}, testLogger(), nil, nil)

		assert.Equal(t, 0, p.ProcessOnce(context.Background()))
		assert.Equal(t, 1, e.RetryCount)
		assert.Contains(t, e.LastError, "broker down")
		assert.False(t, e.IsPublished())
		assert.Equal(t, 1, p.Stats()["failed"])
	})

	t.Run("contract violations never reach the producer", func(t *testing.T) {
		e := outboxEvent(t, "GRN-001", "receiving.stock-in.posted")
		e.MaxRetries = 2
		repo := newMemoryRepo(e)
		producer := &fakeProducer{}
		p := NewPublisher(repo, producer, testLogger(), nil, &PublisherConfig{
			PollInterval: time.Second,
			BatchSize:    10,
			Validator:    rejectAll{},
		})

		p.ProcessOnce(context.Background())
		p.ProcessOnce(context.Background())
		p.ProcessOnce(context.Background())

		assert.Empty(t, producer.events)
		assert.Equal(t, 2, e.RetryCount)
		assert.Contains(t, e.LastError, "contract")
	})

	t.Run("repository failure publishes nothing", func(t *testing.T) {
		repo := newMemoryRepo(outboxEvent(t, "GRN-001", "receiving.stock-in.posted"))
		repo.findErr = errors.New("connection reset")
		producer := &fakeProducer{}
		p := NewPublisher(repo, producer, testLogger(), nil, nil)

		assert.Equal(t, 0, p.ProcessOnce(context.Background()))
		assert.Empty(t, producer.events)
	})

	t.Run("respects batch size", func(t *testing.T) {
		repo := newMemoryRepo(
			outboxEvent(t, "A", "catalog.entry.upserted"),
			outboxEvent(t, "B", "catalog.entry.upserted"),
			outboxEvent(t, "C", "catalog.entry.upserted"),
		)
		p := NewPublisher(repo, &fakeProducer{}, testLogger(), nil, &PublisherConfig{PollInterval: time.Second, BatchSize: 2})

		assert.Equal(t, 2, p.ProcessOnce(context.Background()))
		assert.Equal(t, 1, p.ProcessOnce(context.Background()))
	})
}

func TestPublisher_Cleanup(t *testing.T) {
	repo := newMemoryRepo()
	p := NewPublisher(repo, &fakeProducer{}, testLogger(), nil, &PublisherConfig{PollInterval: time.Second, BatchSize: 1, Retention: time.Hour})

	p.Cleanup(context.Background())
	assert.WithinDuration(t, time.Now().Add(-time.Hour), repo.deletedAt, time.Minute)

	repo = newMemoryRepo()
	p = NewPublisher(repo, &fakeProducer{}, testLogger(), nil, &PublisherConfig{PollInterval: time.Second, BatchSize: 1})
	p.Cleanup(context.Background())
	assert.True(t, repo.deletedAt.IsZero())
}

func TestPublisher_StartStop(t *testing.T) {
	repo := newMemoryRepo(outboxEvent(t, "GRN-001", "receiving.stock-in.posted"))
	producer := &fakeProducer{}
	p := NewPublisher(repo, producer, testLogger(), nil, &PublisherConfig{PollInterval: 10 * time.Millisecond, BatchSize: 10})

	require.NoError(t, p.Start(context.Background()))
	assert.True(t, p.IsRunning())
	assert.Error(t, p.Start(context.Background()))

	assert.Eventually(t, func() bool {
		producer.mu.Lock()
		defer producer.mu.Unlock()
		return len(producer.events) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, p.Stop())
	assert.False(t, p.IsRunning())
	assert.Error(t, p.Stop())
}
