package queueclient

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/lifecycle"
)

type mockPublisher struct {
	key       string
	published []amqp.Publishing
	deadline  bool
	err       error
	closed    bool
}

func (m *mockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if m.err != nil {
		return m.err
	}
	_, m.deadline = ctx.Deadline()
	m.key = key
	m.published = append(m.published, msg)
	return nil
}

func (m *mockPublisher) Close() error {
	m.closed = true
	return nil
}

func TestPublishNotice(t *testing.T) {
	ch := &mockPublisher{}
	client := New(ch, "", 2*time.Second)

	notice := lifecycle.Notice{
		Type:       lifecycle.NoticeOpened,
		RequestID:  "req-1",
		UnitID:     "ward-7",
		Year:       2025,
		Month:      3,
		OpenDate:   "2025-02-10",
		CloseDate:  "2025-02-20",
		Recipients: []string{"nurse-1", "nurse-2"},
	}

	id, err := client.PublishNotice(context.Background(), notice)
	require.NoError(t, err)
	require.Len(t, ch.published, 1)

	msg := ch.published[0]
	assert.Equal(t, DefaultQueue, ch.key)
	assert.True(t, ch.deadline, "publish runs under the configured timeout")
	assert.Equal(t, id, msg.MessageId)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, lifecycle.NoticeOpened, msg.Type)

	var decoded lifecycle.Notice
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, notice, decoded)

	require.NoError(t, client.Close())
	assert.True(t, ch.closed)
}

func TestPublishNotice_Error(t *testing.T) {
	client := New(&mockPublisher{err: errors.New("channel closed")}, "custom", 0)

	_, err := client.PublishNotice(context.Background(), lifecycle.Notice{Type: lifecycle.NoticeOpened, RequestID: "req-1"})
	assert.ErrorContains(t, err, "failed to publish pre_schedule_opened notice for req-1")
}
