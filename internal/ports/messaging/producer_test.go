package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laborstatus.service/internal/ports/messaging"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestPublishLunchAlert(t *testing.T) {
	client := &fakeSQS{}
	producer := messaging.NewSQSProducer(client, "http://queue/lunch-alerts")

	event := messaging.LunchAlertEvent{EventID: "evt-1", StoreID: "store-001", UserID: "1", LunchLabel: "Overdue by 0:05"}
	require.NoError(t, producer.PublishLunchAlert(context.Background(), event))
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	assert.Equal(t, "http://queue/lunch-alerts", aws.ToString(in.QueueUrl))
	assert.Equal(t, "LUNCH_ALERT", aws.ToString(in.MessageAttributes["EventType"].StringValue))

	var got messaging.LunchAlertEvent
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &got))
	assert.Equal(t, event.EventID, got.EventID)
	assert.Equal(t, event.LunchLabel, got.LunchLabel)
}

func TestPublishLunchAlert_SendError(t *testing.T) {
	producer := messaging.NewSQSProducer(&fakeSQS{err: errors.New("queue gone")}, "http://queue/lunch-alerts")
	err := producer.PublishLunchAlert(context.Background(), messaging.LunchAlertEvent{StoreID: "store-001"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue gone")
}
