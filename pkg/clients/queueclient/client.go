package queueclient

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue is the durable queue lifecycle notices are published to
const DefaultQueue = "ward_notice_queue"

// publisher is the part of an AMQP channel the client uses
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Client publishes lifecycle notices to RabbitMQ. Delivery to staff is done by a separate consumer.
type Client struct {
	conn           *amqp.Connection
	ch             publisher
	queue          string
	publishTimeout time.Duration
}

// Dial connects to RabbitMQ and declares the durable notice queue
func Dial(url, queue string, publishTimeout time.Duration) (*Client, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	c := New(ch, queue, publishTimeout)
	c.conn = conn
	return c, nil
}

// New wraps an already open channel
func New(ch publisher, queue string, publishTimeout time.Duration) *Client {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Client{ch: ch, queue: queue, publishTimeout: publishTimeout}
}

// Close closes the channel and, when the client dialled it, the connection
func (c *Client) Close() error {
	err := c.ch.Close()
	if c.conn != nil {
		if cerr := c.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
