// Package queue hands outbound messages (adherence reminders, admin reports)
// to RabbitMQ for the chat transport to deliver.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/enums"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is the JSON body published for the delivery service.
type Message struct {
	Kind         enums.OutboundKind `json:"kind"`
	Recipient    string             `json:"recipient"`
	Text         string             `json:"text"`
	ReminderKind enums.ReminderKind `json:"reminder_kind,omitempty"`
	PurchaseID   string             `json:"purchase_id,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

func (m Message) validate() error {
	if !m.Kind.IsValid() {
		return fmt.Errorf("invalid message kind %q", m.Kind)
	}
	if m.Recipient == "" {
		return errors.New("recipient required")
	}
	if m.Text == "" {
		return errors.New("text required")
	}
	return nil
}

// Publisher keeps one lazily dialed connection and reconnects after failures.
type Publisher struct {
	url   string
	queue string
	logg  *logger.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url, queue string, logg *logger.Logger) (*Publisher, error) {
	if url == "" {
		return nil, errors.New("amqp url required")
	}
	if queue == "" {
		return nil, errors.New("queue name required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &Publisher{url: url, queue: queue, logg: logg}, nil
}

// Publish sends msg as a persistent message on the configured queue.
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	pub, err := publishing(msg, time.Now().UTC())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}
	return nil
}

func publishing(msg Message, now time.Time) (amqp.Publishing, error) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Type:         msg.Kind.String(),
		Body:         body,
	}, nil
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	p.conn, p.ch = conn, ch
	p.logg.Info(p.logg.WithField(context.Background(), "queue", p.queue), "amqp channel ready")
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
