package cron

import (
	"context"
	"fmt"

	"github.com/ejidepharmacy/pharmabot-backend/internal/adherence"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
)

type reminderDispatcher interface {
	Dispatch(ctx context.Context, d adherence.Deliverer) ([]adherence.Reminder, error)
}

// ReminderJobParams configures the medication reminder job.
type ReminderJobParams struct {
	Logger    *logger.Logger
	Scheduler reminderDispatcher
	Deliverer adherence.Deliverer
	Clock     clock.Clock
	// StartHour keeps reminders out of the night; the first tick at or after
	// it sends the day's reminders.
	StartHour int
}

func NewReminderJob(params ReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Scheduler == nil {
		return nil, fmt.Errorf("adherence scheduler required")
	}
	if params.Deliverer == nil {
		return nil, fmt.Errorf("reminder deliverer required")
	}
	if params.Clock == nil {
		return nil, fmt.Errorf("clock required")
	}
	return &reminderJob{
		logg:      params.Logger,
		scheduler: params.Scheduler,
		deliverer: params.Deliverer,
		clock:     params.Clock,
		startHour: params.StartHour,
	}, nil
}

type reminderJob struct {
	logg      *logger.Logger
	scheduler reminderDispatcher
	deliverer adherence.Deliverer
	clock     clock.Clock
	startHour int
}

func (j *reminderJob) Name() string { return "medication-reminders" }

// Run is idempotent within a day; the scheduler skips purchases already
// reminded today.
func (j *reminderJob) Run(ctx context.Context) error {
	if j.clock.Now().Hour() < j.startHour {
		return ErrNotDue
	}
	sent, err := j.scheduler.Dispatch(ctx, j.deliverer)
	j.logg.Info(j.logg.WithField(ctx, "count", len(sent)), "cron.reminders_dispatched")
	return err
}
