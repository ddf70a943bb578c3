package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrMalformedEvent marks a message that can never be handled. Such
// messages are dropped; every other failure is requeued.
var ErrMalformedEvent = errors.New("malformed event")

// requeueDelay paces redelivery while the store is failing.
var requeueDelay = time.Second

// NotificationStore persists the notification produced for an event.
type NotificationStore interface {
	Create(ctx context.Context, userID uint64, message string) error
}

// Consumer reads ApplicationQueue and writes one notification per event.
type Consumer struct {
	url   string
	store NotificationStore
	log   *zap.Logger
}

func NewConsumer(url string, store NotificationStore, log *zap.Logger) *Consumer {
	return &Consumer{url: url, store: store, log: log.Named("notification-consumer")}
}

// Run keeps a connection to the broker open until ctx is cancelled,
// reconnecting with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("set qos failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(ApplicationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ApplicationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Info("consuming", zap.String("queue", ApplicationQueue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.settle(ctx, d, d.Body)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// settle handles body and acks, drops or requeues the delivery.
func (c *Consumer) settle(ctx context.Context, d acknowledger, body []byte) {
	err := c.Handle(ctx, body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrMalformedEvent):
		c.log.Error("dropping malformed message", zap.Error(err))
		_ = d.Nack(false, false)
	default:
		c.log.Warn("handle message failed, requeueing", zap.Error(err))
		sleep(ctx, requeueDelay)
		_ = d.Nack(false, true)
	}
}

// Handle decodes one message body and stores its notification.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev ApplicationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.UserID == 0 {
		return fmt.Errorf("%w: no user_id", ErrMalformedEvent)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.store.Create(ctx, ev.UserID, ev.Message()); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	c.log.Debug("notification stored",
		zap.String("type", string(ev.Type)),
		zap.Uint64("user_id", ev.UserID),
		zap.Uint64("application_id", ev.ApplicationID))
	return nil
}
