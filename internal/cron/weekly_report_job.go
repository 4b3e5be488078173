package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/internal/reports"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/enums"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/queue"
	"go.uber.org/multierr"
)

const (
	weeklyReportScope = "weekly_report"
	weeklyReportTTL   = 8 * 24 * time.Hour
)

type weeklyReporter interface {
	Weekly(ctx context.Context) (*reports.WeeklySummary, error)
}

// WeeklyReportJobParams configures the weekly admin summary.
type WeeklyReportJobParams struct {
	Logger       *logger.Logger
	Reports      weeklyReporter
	Publisher    publisher
	Guard        periodGuard
	Clock        clock.Clock
	AdminNumbers []string
	Weekday      time.Weekday
	Hour         int
}

func NewWeeklyReportJob(params WeeklyReportJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	case params.Reports == nil:
		return nil, fmt.Errorf("reports service required")
	case params.Publisher == nil:
		return nil, fmt.Errorf("publisher required")
	case params.Guard == nil:
		return nil, fmt.Errorf("period guard required")
	case params.Clock == nil:
		return nil, fmt.Errorf("clock required")
	}
	return &weeklyReportJob{params: params}, nil
}

type weeklyReportJob struct {
	params WeeklyReportJobParams
}

func (j *weeklyReportJob) Name() string { return "weekly-report" }

// Run sends the summary once per ISO week, on the configured weekday at or
// after the configured hour. If no admin received it the claim is released
// so the next tick retries.
func (j *weeklyReportJob) Run(ctx context.Context) error {
	p := j.params
	now := p.Clock.Now()
	if now.Weekday() != p.Weekday || now.Hour() < p.Hour {
		return ErrNotDue
	}
	if len(p.AdminNumbers) == 0 {
		p.Logger.Warn(ctx, "cron.weekly_report_no_admins")
		return ErrNotDue
	}

	week := clock.ISOWeek(now)
	claimed, err := p.Guard.Once(ctx, weeklyReportScope, week, weeklyReportTTL)
	if err != nil {
		return fmt.Errorf("claim weekly report %s: %w", week, err)
	}
	if !claimed {
		return ErrNotDue
	}

	summary, err := p.Reports.Weekly(ctx)
	if err != nil {
		return multierr.Append(fmt.Errorf("build weekly report: %w", err), p.Guard.Forget(ctx, weeklyReportScope, week))
	}

	delivered, err := broadcast(ctx, p.Publisher, enums.OutboundKindWeeklyReport, p.AdminNumbers, summary.Render(), queue.Message{CreatedAt: now})
	if delivered == 0 && err != nil {
		err = multierr.Append(err, p.Guard.Forget(ctx, weeklyReportScope, week))
	}
	p.Logger.Info(p.Logger.WithFields(ctx, map[string]any{"week": week, "delivered": delivered}), "cron.weekly_report_sent")
	return err
}
