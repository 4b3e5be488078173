package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/enums"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/queue"
)

const (
	adminDigestScope = "admin_digest"
	adminDigestTTL   = 26 * time.Hour
)

const adminDigestText = `🌅 *GOOD MORNING!*

📊 Your daily analytics digest is ready.

Reply with:
• "analytics" - Full predictive insights
• "inventory report" - Stock analysis
• "weekly report" - Week summary

Have a productive day! 💪`

// AdminDigestJobParams configures the morning nudge sent to admins.
type AdminDigestJobParams struct {
	Logger       *logger.Logger
	Publisher    publisher
	Guard        periodGuard
	Clock        clock.Clock
	AdminNumbers []string
	Hour         int
}

func NewAdminDigestJob(params AdminDigestJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	case params.Publisher == nil:
		return nil, fmt.Errorf("publisher required")
	case params.Guard == nil:
		return nil, fmt.Errorf("period guard required")
	case params.Clock == nil:
		return nil, fmt.Errorf("clock required")
	}
	return &adminDigestJob{params: params}, nil
}

type adminDigestJob struct {
	params AdminDigestJobParams
}

func (j *adminDigestJob) Name() string { return "admin-digest" }

func (j *adminDigestJob) Run(ctx context.Context) error {
	p := j.params
	now := p.Clock.Now()
	if now.Hour() < p.Hour || len(p.AdminNumbers) == 0 {
		return ErrNotDue
	}
	day := clock.DayOf(now)
	claimed, err := p.Guard.Once(ctx, adminDigestScope, day, adminDigestTTL)
	if err != nil {
		return fmt.Errorf("claim admin digest %s: %w", day, err)
	}
	if !claimed {
		return ErrNotDue
	}
	delivered, err := broadcast(ctx, p.Publisher, enums.OutboundKindAdminDigest, p.AdminNumbers, adminDigestText, queue.Message{CreatedAt: now})
	p.Logger.Info(p.Logger.WithFields(ctx, map[string]any{"day": day, "delivered": delivered}), "cron.admin_digest_sent")
	return err
}
