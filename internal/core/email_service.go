package core

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"laborstatus.service/internal/ports/messaging"
	"laborstatus.service/pkg/telemetry"
)

type EmailService interface {
	SendLunchAlert(ctx context.Context, to string, event messaging.LunchAlertEvent) error
}

// SESClient is the subset of the SES client used to send alerts.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESEmailService struct {
	client SESClient
	sender string
}

func NewSESEmailService(client SESClient, sender string) *SESEmailService {
	return &SESEmailService{client: client, sender: sender}
}

func (s *SESEmailService) SendLunchAlert(ctx context.Context, to string, event messaging.LunchAlertEvent) error {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, "send_lunch_alert", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if storeID := telemetry.GetStoreIDFromContext(ctx); storeID != "" {
		span.SetAttributes(attribute.String("app.storeId", storeID))
	}

	subject, body := lunchAlertMessage(event)
	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}

func lunchAlertMessage(e messaging.LunchAlertEvent) (string, string) {
	store := e.StoreName
	if store == "" {
		store = e.StoreID
	}
	subject := fmt.Sprintf("Lunch alert: %s at %s", e.EmployeeName, store)
	body := fmt.Sprintf("Hello,\n\n%s has been on the clock for %s today (%s) without a lunch break.\nLunch status: %s.",
		e.EmployeeName, e.TimeOnClock, e.Date, e.LunchLabel)
	return subject, body
}
