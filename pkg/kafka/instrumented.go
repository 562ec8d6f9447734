package kafka

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/cloudevents"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/metrics"
)

// EventPublisher is implemented by every producer layer
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *cloudevents.Event) error
	Close() error
}

// InstrumentedProducer records a span, a metric and a log line per publish. m and logger
// may be nil.
type InstrumentedProducer struct {
	next    EventPublisher
	metrics *metrics.Metrics
	logger  *logging.Logger
	tracer  trace.Tracer
}

func NewInstrumentedProducer(next EventPublisher, m *metrics.Metrics, logger *logging.Logger) *InstrumentedProducer {
	return &InstrumentedProducer{
		next:    next,
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("kafka-producer"),
	}
}

func publishAttributes(topic string, event *cloudevents.Event) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.MessagingSystemKey.String("kafka"),
		semconv.MessagingDestinationNameKey.String(topic),
		semconv.MessagingOperationKey.String("publish"),
		attribute.String("messaging.message_id", event.ID),
		attribute.String("messaging.kafka.event_type", event.Type),
	}
	if event.CorrelationID != "" {
		attrs = append(attrs, attribute.String("jewellery.correlation_id", event.CorrelationID))
	}
	if event.BranchID != "" {
		attrs = append(attrs, attribute.String("jewellery.branch_id", event.BranchID))
	}
	return attrs
}

// PublishEvent stamps the producer span's W3C trace context on the event so consumers can
// continue the trace, then delegates
func (p *InstrumentedProducer) PublishEvent(ctx context.Context, topic string, event *cloudevents.Event) error {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "kafka.publish "+topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(publishAttributes(topic, event)...),
	)
	defer span.End()

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	if traceParent := carrier.Get("traceparent"); traceParent != "" {
		event.TraceParent = traceParent
		event.TraceState = carrier.Get("tracestate")
	}

	err := p.next.PublishEvent(ctx, topic, event)
	p.observe(ctx, topic, event.Type, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (p *InstrumentedProducer) observe(ctx context.Context, topic, eventType string, err error, took time.Duration) {
	success := err == nil
	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(topic, eventType, success, took)
	}
	if p.logger != nil {
		p.logger.KafkaPublish(ctx, topic, eventType, success, took)
	}
}

func (p *InstrumentedProducer) Close() error {
	return p.next.Close()
}
