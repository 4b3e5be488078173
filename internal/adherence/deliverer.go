package adherence

import (
	"context"
	"sync"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/enums"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/queue"
)

// Deliverer hands a reminder to transport. A returned error rolls back the
// bookkeeping for that reminder so the next scan retries it.
type Deliverer interface {
	Deliver(ctx context.Context, reminder Reminder) error
}

type publisher interface {
	Publish(ctx context.Context, msg queue.Message) error
}

// QueueDeliverer publishes reminders to the outbound delivery queue.
type QueueDeliverer struct {
	pub publisher
}

func NewQueueDeliverer(pub publisher) *QueueDeliverer {
	return &QueueDeliverer{pub: pub}
}

func (d *QueueDeliverer) Deliver(ctx context.Context, r Reminder) error {
	return d.pub.Publish(ctx, queue.Message{
		Kind:         enums.OutboundKindReminder,
		Recipient:    r.CustomerID,
		Text:         r.Message,
		ReminderKind: r.Kind,
		PurchaseID:   r.PurchaseID.String(),
	})
}

// LogDeliverer only logs. Used when the caller ships reminders itself, as the
// HTTP reminders endpoint does with its response body.
type LogDeliverer struct {
	logg *logger.Logger
}

func NewLogDeliverer(logg *logger.Logger) *LogDeliverer {
	return &LogDeliverer{logg: logg}
}

func (d *LogDeliverer) Deliver(ctx context.Context, r Reminder) error {
	d.logg.Info(d.logg.WithFields(ctx, map[string]any{
		"purchase_id": r.PurchaseID.String(),
		"kind":        r.Kind.String(),
	}), "adherence.reminder_due")
	return nil
}

// Collector keeps every delivered reminder in memory.
type Collector struct {
	mu        sync.Mutex
	reminders []Reminder
}

func (c *Collector) Deliver(_ context.Context, r Reminder) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reminders = append(c.reminders, r)
	return nil
}

// Reminders returns a copy of what was collected so far.
func (c *Collector) Reminders() []Reminder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Reminder(nil), c.reminders...)
}
