package telemetry

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceContextRoundTripsThroughSQSAttributes(t *testing.T) {
	shutdown, err := InitTracer("test", ExporterNone, "")
	require.NoError(t, err)
	defer shutdown(context.Background())

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	otel.SetTracerProvider(tp)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "publish")
	attrs := InjectTraceContext(ctx)
	parent.End()
	require.Contains(t, attrs, "traceparent")

	msg := types.Message{
		MessageId:         aws.String("m-1"),
		Body:              aws.String(`{"storeId":"store-001"}`),
		MessageAttributes: attrs,
	}
	childCtx, child := StartSpanFromSQSMessage(context.Background(), msg)
	defer child.End()

	assert.Equal(t, parent.SpanContext().TraceID(), trace.SpanContextFromContext(childCtx).TraceID())
	assert.Equal(t, "store-001", GetStoreIDFromContext(childCtx))
}

func TestGetStoreIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, GetStoreIDFromContext(context.Background()))
}

func TestInitTracer_UnknownExporter(t *testing.T) {
	_, err := InitTracer("test", "zipkin", "")
	assert.Error(t, err)
}
