// Package service holds outbound integrations used by handlers.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/mytime501/saramin/internal/queue"
)

// Publisher sends ApplicationEvents to RabbitMQ. A nil Publisher, or one
// without a URL, drops events silently so handlers never depend on the
// broker being up.
type Publisher struct {
	url string
	log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, log: log.Named("publisher")}
}

// Publish dials the broker, declares the queue and sends one persistent
// message. The connection is closed afterwards.
func (p *Publisher) Publish(ctx context.Context, ev queue.ApplicationEvent) error {
	if p == nil {
		return nil
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.ApplicationQueue, true, false, false, false, nil); err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", queue.ApplicationQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Type:         string(ev.Type),
		Body:         body,
	})
}

// PublishAsync publishes in the background and only logs failures.
func (p *Publisher) PublishAsync(ev queue.ApplicationEvent) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, ev); err != nil {
			p.log.Warn("publish event failed",
				zap.String("type", string(ev.Type)),
				zap.Uint64("application_id", ev.ApplicationID),
				zap.Error(err))
		}
	}()
}
