package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Producer serializes events and hands them to a MessageSender.
type Producer struct {
	sender        MessageSender
	alertQueueURL string
}

func NewProducer(sender MessageSender, alertQueueURL string) *Producer {
	return &Producer{
		sender:        sender,
		alertQueueURL: alertQueueURL,
	}
}

func NewSQSProducer(client SQSClient, alertQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, alertQueueURL)
}

func (p *Producer) PublishLunchAlert(ctx context.Context, event LunchAlertEvent) error {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("app.storeId", event.StoreID),
			attribute.String("app.userId", event.UserID),
		)
	}
	return p.publish(ctx, p.alertQueueURL, event)
}

func (p *Producer) publish(ctx context.Context, destination string, body interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	if err := p.sender.SendMessage(ctx, destination, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
