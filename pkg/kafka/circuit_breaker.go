package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/cloudevents"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/metrics"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/resilience"
)

// CircuitBreakerProducer stops calling the brokers after repeated publish failures so the
// outbox relay backs off instead of hammering an unavailable cluster
type CircuitBreakerProducer struct {
	producer       EventPublisher
	circuitBreaker *resilience.CircuitBreaker
}

// ProducerBreakerConfig returns the breaker settings used for the outbox relay
func ProducerBreakerConfig() *resilience.CircuitBreakerConfig {
	return &resilience.CircuitBreakerConfig{
		Name:                  "kafka-producer",
		MaxRequests:           5,
		Interval:              time.Minute,
		Timeout:               30 * time.Second,
		FailureThreshold:      5,
		FailureRatioThreshold: 0.5,
		MinRequestsToTrip:     10,
	}
}

// NewCircuitBreakerProducer creates a circuit breaker protected producer. State changes are
// exported through m when it is not nil.
func NewCircuitBreakerProducer(producer EventPublisher, config *resilience.CircuitBreakerConfig, m *metrics.Metrics, logger *logging.Logger) *CircuitBreakerProducer {
	if config == nil {
		config = ProducerBreakerConfig()
	}

	if m != nil {
		m.SetCircuitBreakerState(config.Name, resilience.StateValue(gobreaker.StateClosed))
		config.OnStateChange = func(name string, _, to gobreaker.State) {
			m.SetCircuitBreakerState(name, resilience.StateValue(to))
			if to == gobreaker.StateOpen {
				m.RecordCircuitBreakerTrip(name)
			}
		}
	}

	return &CircuitBreakerProducer{
		producer:       producer,
		circuitBreaker: resilience.NewCircuitBreaker(config, breakerLogger(logger)),
	}
}

func breakerLogger(logger *logging.Logger) *slog.Logger {
	if logger == nil || logger.Logger == nil {
		return slog.Default()
	}
	return logger.WithComponent("kafka-breaker").Logger
}

// PublishEvent fails fast with resilience.ErrCircuitOpen while the breaker is open
func (p *CircuitBreakerProducer) PublishEvent(ctx context.Context, topic string, event *cloudevents.Event) error {
	_, err := p.circuitBreaker.Execute(ctx, func() (any, error) {
		return nil, p.producer.PublishEvent(ctx, topic, event)
	})
	return err
}

func (p *CircuitBreakerProducer) State() gobreaker.State {
	return p.circuitBreaker.State()
}

func (p *CircuitBreakerProducer) Close() error {
	return p.producer.Close()
}

// NewProductionProducer builds the producer chain used by the outbox relay:
// kafka-go writers, then instrumentation, then the circuit breaker
func NewProductionProducer(config *Config, m *metrics.Metrics, logger *logging.Logger) *CircuitBreakerProducer {
	instrumented := NewInstrumentedProducer(NewProducer(config), m, logger)
	return NewCircuitBreakerProducer(instrumented, nil, m, logger)
}
