package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"

	"laborstatus.service/internal/core"
	"laborstatus.service/internal/ports/messaging"
)

var errNoRecipient = errors.New("lunch alert has no manager email")

type AlertProcessor struct {
	emailService core.EmailService
}

// NewProcessor sets up a processor that emails lunch alerts to store managers.
func NewProcessor(emailService core.EmailService) *AlertProcessor {
	return &AlertProcessor{emailService: emailService}
}

// Process sends one lunch alert. Malformed or unaddressed messages are not
// retried; send failures are, with exponential backoff.
func (p *AlertProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	if msg.Body == nil {
		return false, 0, errors.New("empty message body")
	}

	var event messaging.LunchAlertEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal lunch alert event")
		return false, 0, err // Do not retry on malformed message
	}

	if event.ManagerEmail == "" {
		return false, 0, fmt.Errorf("%w: store %s", errNoRecipient, event.StoreID)
	}

	if err := p.emailService.SendLunchAlert(ctx, event.ManagerEmail, event); err != nil {
		receives := receiveCount(msg)
		return true, calculateBackoff(receives), fmt.Errorf("failed to send lunch alert: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("store_id", event.StoreID).
		Str("user_id", event.UserID).
		Str("date", event.Date).
		Msg("Lunch alert sent")
	return false, 0, nil
}

// receiveCount reads the SQS ApproximateReceiveCount attribute, defaulting to 1.
func receiveCount(msg types.Message) int {
	if v, ok := msg.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// calculateBackoff determines how long to wait before retrying a failed job.
// It increases the delay exponentially with each retry.
func calculateBackoff(retryCount int) int32 {
	backoff := math.Pow(2, float64(retryCount)) * 10
	if backoff > 3600 {
		return 3600 // max at 1 hour
	}
	return int32(backoff)
}
