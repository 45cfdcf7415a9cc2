// Package queue provides the SQS producer that dispatches refresh
// messages to the score workers.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"fishcast/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// RefreshTrigger serializes RefreshMessages and sends them to the
// refresh queue. One message triggers one decision run.
type RefreshTrigger struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
}

// NewRefreshTrigger creates a trigger bound to one queue URL.
func NewRefreshTrigger(client SQSSender, queueURL string, logger *slog.Logger) *RefreshTrigger {
	return &RefreshTrigger{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// Dispatch sends one refresh message. The message reason is duplicated
// into an SQS attribute so queue tooling can filter without parsing
// bodies.
func (t *RefreshTrigger) Dispatch(ctx context.Context, msg types.RefreshMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("queue: failed to marshal RefreshMessage: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(t.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"reason": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.Reason),
			},
		},
	}

	if _, err := t.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("queue: failed to send RefreshMessage to %s: %w", t.queueURL, err)
	}

	t.logger.InfoContext(ctx, "refresh message sent",
		"queue_url", t.queueURL,
		"batch_id", msg.BatchID,
		"run_date", msg.RunDate,
		"region", string(msg.Region),
		"reason", msg.Reason,
	)

	return nil
}
