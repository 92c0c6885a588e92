package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"conference-management-api/config"
)

// OutboundEmail is one queued dispatch request. It is JSON-serializable so
// the AMQP backend can carry it across processes.
type OutboundEmail struct {
	To       string            `json:"to"`
	CC       []string          `json:"cc,omitempty"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data,omitempty"`
}

// Outbox decouples request latency from delivery latency: callers enqueue
// and return, a worker delivers asynchronously. Per-message failures are
// logged and never abort the worker.
type Outbox interface {
	Enqueue(ctx context.Context, email OutboundEmail) error
	Close() error
}

// NewOutbox picks the AMQP backend when a queue URL is configured,
// otherwise the in-process worker.
func NewOutbox(cfg config.MailConfig, mailer *Mailer, logger zerolog.Logger) (Outbox, error) {
	if cfg.QueueURL != "" {
		return NewAMQPOutbox(cfg.QueueURL, cfg.QueueName, logger)
	}
	return NewMemoryOutbox(mailer, logger), nil
}

/* ==========================
   In-process outbox
   ========================== */

type memoryOutbox struct {
	mailer *Mailer
	logger zerolog.Logger
	ch     chan OutboundEmail
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewMemoryOutbox starts a single delivery worker over a buffered channel.
func NewMemoryOutbox(mailer *Mailer, logger zerolog.Logger) *memoryOutbox {
	o := &memoryOutbox{
		mailer: mailer,
		logger: logger,
		ch:     make(chan OutboundEmail, 256),
	}
	o.wg.Add(1)
	go o.worker()
	return o
}

func (o *memoryOutbox) worker() {
	defer o.wg.Done()
	for email := range o.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := o.mailer.Send(ctx, email.To, email.Template, email.Data, MailOptions{CC: email.CC}); err != nil {
			o.logger.Error().Err(err).
				Str("to", email.To).
				Str("template", email.Template).
				Msg("outbound email delivery failed")
		}
		cancel()
	}
}

func (o *memoryOutbox) Enqueue(ctx context.Context, email OutboundEmail) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return fmt.Errorf("outbox is closed")
	}
	o.mu.Unlock()

	select {
	case o.ch <- email:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new mail and waits for the worker to drain.
func (o *memoryOutbox) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()

	close(o.ch)
	o.wg.Wait()
	return nil
}

/* ==========================
   AMQP outbox
   ========================== */

type amqpOutbox struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	queue   string
	logger  zerolog.Logger
}

// NewAMQPOutbox publishes outbound emails to a durable queue. A consumer
// (StartAMQPConsumer, typically in a worker process) performs delivery,
// giving at-least-once semantics across restarts.
func NewAMQPOutbox(url, queueName string, logger zerolog.Logger) (*amqpOutbox, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &amqpOutbox{conn: conn, channel: channel, queue: queueName, logger: logger}, nil
}

func (o *amqpOutbox) Enqueue(ctx context.Context, email OutboundEmail) error {
	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("failed to marshal outbound email: %w", err)
	}

	err = o.channel.PublishWithContext(ctx,
		"",      // default exchange
		o.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish outbound email: %w", err)
	}
	return nil
}

func (o *amqpOutbox) Close() error {
	if err := o.channel.Close(); err != nil {
		o.conn.Close()
		return err
	}
	return o.conn.Close()
}

// StartAMQPConsumer consumes the outbound email queue and delivers through
// the mailer until ctx is cancelled. Messages failing delivery are nacked
// back onto the queue for retry; malformed payloads are dropped.
func StartAMQPConsumer(ctx context.Context, url, queueName string, mailer *Mailer, logger zerolog.Logger) error {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer channel.Close()

	if _, err := channel.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	deliveries, err := channel.Consume(
		queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	logger.Info().Str("queue", queueName).Msg("outbound email consumer started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("consumer channel closed")
			}
			var email OutboundEmail
			if err := json.Unmarshal(d.Body, &email); err != nil {
				logger.Error().Err(err).Msg("dropping malformed outbound email")
				_ = d.Nack(false, false)
				continue
			}
			if _, err := mailer.Send(ctx, email.To, email.Template, email.Data, MailOptions{CC: email.CC}); err != nil {
				logger.Error().Err(err).Str("to", email.To).Msg("outbound email delivery failed, requeueing")
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
