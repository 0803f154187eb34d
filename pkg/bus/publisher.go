// Package bus publishes catalog events to RabbitMQ.
//
// Delivery is fire-and-forget from the caller's point of view: Publish
// serialises the event, hands it to a bounded worker pool, and returns.
// Broker errors are logged and counted but never reach the HTTP client.
// After the primary store commits, a lost event only means downstream
// consumers lag until reconciliation.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shashiranjanraj/vipani/pkg/logger"
	"github.com/shashiranjanraj/vipani/pkg/metrics"
	"github.com/shashiranjanraj/vipani/pkg/workerpool"
)

const publishTimeout = 5 * time.Second

// Publisher is a fire-and-forget emitter to named queues.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	pool *workerpool.Pool

	mu       sync.Mutex // amqp channels are not safe for concurrent publish
	declared map[string]bool
}

// Connect dials the broker and opens a publishing channel.
func Connect(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("bus: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("bus: open channel: %w", err)
	}

	return &Publisher{
		conn:     conn,
		ch:       ch,
		pool:     workerpool.New(4),
		declared: map[string]bool{},
	}, nil
}

// Publish serialises event and emits it to topic asynchronously. It never
// blocks and never returns an error to the caller; failures are logged and
// recorded in metrics.
func (p *Publisher) Publish(topic string, event interface{}) {
	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("bus: marshal event", "topic", topic, "error", err)
		metrics.PublishFailures.WithLabelValues(topic).Inc()
		return
	}

	if err := p.pool.Submit(func() { p.send(topic, body) }); err != nil {
		logger.Error("bus: drop event", "topic", topic, "error", err)
		metrics.PublishFailures.WithLabelValues(topic).Inc()
	}
}

func (p *Publisher) send(topic string, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.declare(topic); err != nil {
		logger.Error("bus: declare queue", "topic", topic, "error", err)
		metrics.PublishFailures.WithLabelValues(topic).Inc()
		return
	}

	err := p.ch.PublishWithContext(ctx, "", topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		logger.Error("bus: publish", "topic", topic, "error", err)
		metrics.PublishFailures.WithLabelValues(topic).Inc()
		return
	}

	metrics.EventsPublished.WithLabelValues(topic).Inc()
}

// declare lazily creates the durable queue for topic, once per process.
// Caller must hold p.mu.
func (p *Publisher) declare(topic string) error {
	if p.declared[topic] {
		return nil
	}
	if _, err := p.ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
		return err
	}
	p.declared[topic] = true
	return nil
}

// Close drains in-flight publishes and tears down the connection.
func (p *Publisher) Close() error {
	p.pool.Shutdown()

	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return fmt.Errorf("bus: close channel: %w", err)
	}
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("bus: close connection: %w", err)
	}
	return nil
}
