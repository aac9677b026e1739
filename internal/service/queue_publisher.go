package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
)

// Publisher delivers booking events.  Failures are reported to the caller,
// which logs them; a booking is never undone because an event was lost.
type Publisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.BookingEvent) error { return nil }

// AMQPPublisher publishes events as persistent JSON messages to a durable
// queue on the default exchange.  Each call uses its own connection.
type AMQPPublisher struct {
	URL   string
	Queue string
}

// NewPublisher returns an AMQPPublisher for cfg, or NopPublisher when
// publishing is disabled.
func NewPublisher(cfg config.AMQPConfig) Publisher {
	if !cfg.Enabled {
		return NopPublisher{}
	}
	return &AMQPPublisher{URL: cfg.URL, Queue: cfg.Queue}
}

// defaultDialTimeout bounds the connection handshake when ctx has no
// deadline.
const defaultDialTimeout = 3 * time.Second

// dialTimeout returns the time left on ctx for connecting to the broker.
func dialTimeout(ctx context.Context) time.Duration {
	dl, ok := ctx.Deadline()
	if !ok {
		return defaultDialTimeout
	}
	return time.Until(dl)
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	timeout := dialTimeout(ctx)
	if timeout <= 0 {
		return fmt.Errorf("rabbitmq dial: %w", context.DeadlineExceeded)
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.Reference,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}
