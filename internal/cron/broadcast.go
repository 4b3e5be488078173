package cron

import (
	"context"
	"fmt"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/enums"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/queue"
	"go.uber.org/multierr"
)

type publisher interface {
	Publish(ctx context.Context, msg queue.Message) error
}

// broadcast publishes text to every admin number and reports how many
// messages were accepted.
func broadcast(ctx context.Context, pub publisher, kind enums.OutboundKind, admins []string, text string, msg queue.Message) (int, error) {
	var errs error
	delivered := 0
	for _, admin := range admins {
		msg.Kind = kind
		msg.Recipient = admin
		msg.Text = text
		if err := pub.Publish(ctx, msg); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("publish %s to %s: %w", kind, admin, err))
			continue
		}
		delivered++
	}
	return delivered, errs
}
