package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"vidlingo/internal/logging"
)

// Message is the JSON body published for every event.
type Message struct {
	Event     Event          `json:"event"`
	JobID     string         `json:"job_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Dialer opens a channel and returns a function that closes the connection.
type Dialer func(url string) (Channel, func() error, error)

// AMQPPublisher publishes events to a durable queue. It connects lazily and
// redials after a failed publish.
type AMQPPublisher struct {
	url    string
	queue  string
	dial   Dialer
	logger *slog.Logger

	mu        sync.Mutex
	ch        Channel
	closeConn func() error
}

// NewAMQPPublisher builds a publisher for queue at url.
func NewAMQPPublisher(url, queue string, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		url:    url,
		queue:  queue,
		dial:   dialAMQP,
		logger: logging.NewComponentLogger(logger, "amqp"),
	}
}

// WithDialer replaces the connection factory (for testing).
func (p *AMQPPublisher) WithDialer(dial Dialer) *AMQPPublisher {
	p.dial = dial
	return p
}

func dialAMQP(url string) (Channel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	return ch, conn.Close, nil
}

// Publish sends event as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event, payload Payload) error {
	body, err := json.Marshal(Message{
		Event:     event,
		JobID:     payload.text("jobID"),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("encode amqp message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(event),
		Body:         body,
	})
	if err != nil {
		p.reset()
		return fmt.Errorf("publish amqp message: %w", err)
	}
	p.logger.Debug("event published",
		logging.String(logging.FieldEventType, "amqp_published"),
		logging.String("event", string(event)),
		logging.String("queue", p.queue),
	)
	return nil
}

func (p *AMQPPublisher) channel() (Channel, error) {
	if p.ch != nil {
		return p.ch, nil
	}
	if p.dial == nil {
		return nil, errors.New("amqp dialer not configured")
	}
	ch, closeConn, err := p.dial(p.url)
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		if closeConn != nil {
			_ = closeConn()
		}
		return nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
	}
	p.ch = ch
	p.closeConn = closeConn
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.closeConn != nil {
		_ = p.closeConn()
	}
	p.ch = nil
	p.closeConn = nil
}

// Close shuts the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.closeConn != nil {
		errs = append(errs, p.closeConn())
	}
	p.ch = nil
	p.closeConn = nil
	return errors.Join(errs...)
}
