package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const StoreIDKey contextKey = "storeId"

const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// InitTracer initializes the OpenTelemetry tracer provider. exporter selects
// OTLP over gRPC (sent to endpoint), pretty-printed stdout, or none.
func InitTracer(serviceName, exporter, endpoint string) (func(context.Context) error, error) {
	ctx := context.Background()

	var spanExporter sdktrace.SpanExporter
	var err error
	switch exporter {
	case ExporterNone, "":
		otel.SetTextMapPropagator(propagator())
		return func(context.Context) error { return nil }, nil
	case ExporterStdout:
		spanExporter, err = stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	case ExporterOTLP:
		spanExporter, err = otlptracegrpc.New(ctx, otlptracegrpc.WithInsecure(), otlptracegrpc.WithEndpoint(endpoint))
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s trace exporter: %w", exporter, err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator())

	return tp.Shutdown, nil
}

func propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

// StartSpanFromSQSMessage extracts trace context from SQS message attributes and starts a new span.
func StartSpanFromSQSMessage(ctx context.Context, msg types.Message) (context.Context, trace.Span) {
	carrier := SQSCarrier{Attrs: msg.MessageAttributes}
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)

	attrs := []attribute.KeyValue{attribute.String("messaging.system", "aws_sqs")}
	if msg.MessageId != nil {
		attrs = append(attrs, attribute.String("messaging.message_id", *msg.MessageId))
	}

	tracer := otel.Tracer("sqs-worker")
	ctx, span := tracer.Start(ctx, "process_message",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attrs...),
	)

	// Tag the span with the store the alert belongs to
	if msg.Body != nil {
		var payload struct {
			StoreID string `json:"storeId"`
		}
		if err := json.Unmarshal([]byte(*msg.Body), &payload); err == nil && payload.StoreID != "" {
			span.SetAttributes(attribute.String("app.storeId", payload.StoreID))
			ctx = context.WithValue(ctx, StoreIDKey, payload.StoreID)
		}
	}
	return ctx, span
}

// GetStoreIDFromContext retrieves the store ID from the context.
func GetStoreIDFromContext(ctx context.Context) string {
	if val, ok := ctx.Value(StoreIDKey).(string); ok {
		return val
	}
	return ""
}

// InjectTraceContext injects the current trace context into SQS message attributes.
func InjectTraceContext(ctx context.Context) map[string]types.MessageAttributeValue {
	attrs := make(map[string]types.MessageAttributeValue)
	otel.GetTextMapPropagator().Inject(ctx, SQSCarrier{Attrs: attrs})
	return attrs
}

// SQSCarrier implements propagation.TextMapCarrier over SQS message attributes.
type SQSCarrier struct {
	Attrs map[string]types.MessageAttributeValue
}

func (c SQSCarrier) Get(key string) string {
	if attr, ok := c.Attrs[key]; ok && attr.StringValue != nil {
		return *attr.StringValue
	}
	return ""
}

func (c SQSCarrier) Set(key string, value string) {
	c.Attrs[key] = types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(value),
	}
}

func (c SQSCarrier) Keys() []string {
	keys := make([]string, 0, len(c.Attrs))
	for k := range c.Attrs {
		keys = append(keys, k)
	}
	return keys
}
