package queueclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/lifecycle"
)

// PublishNotice queues a lifecycle notice as a persistent JSON message and returns its message id
func (c *Client) PublishNotice(ctx context.Context, notice lifecycle.Notice) (string, error) {
	body, err := json.Marshal(notice)
	if err != nil {
		return "", fmt.Errorf("failed to encode notice: %w", err)
	}

	if c.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.publishTimeout)
		defer cancel()
	}

	messageID := uuid.NewString()
	err = c.ch.PublishWithContext(ctx, "", c.queue, true, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Type:         notice.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to publish %s notice for %s: %w", notice.Type, notice.RequestID, err)
	}

	return messageID, nil
}
