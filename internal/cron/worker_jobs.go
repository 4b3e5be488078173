package cron

import (
	"errors"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/internal/adherence"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
)

// ErrNoPublisher is returned when the worker has no outbound queue. Without
// one, reminders would be marked sent without reaching anyone.
var ErrNoPublisher = errors.New("cron worker requires an outbound publisher")

// WorkerJobsParams carries what the cron worker's job set needs.
type WorkerJobsParams struct {
	Logger       *logger.Logger
	Scheduler    reminderDispatcher
	Reports      weeklyReporter
	Publisher    publisher
	Guard        periodGuard
	Clock        clock.Clock
	AdminNumbers []string

	ReminderStartHour int
	WeeklyWeekday     time.Weekday
	WeeklyHour        int
	DigestEnabled     bool
	DigestHour        int
}

// NewWorkerRegistry builds the reminder, weekly report and (optionally)
// admin digest jobs, all delivering through the publisher.
func NewWorkerRegistry(params WorkerJobsParams) (*Registry, error) {
	if params.Publisher == nil {
		return nil, ErrNoPublisher
	}

	reminders, err := NewReminderJob(ReminderJobParams{
		Logger:    params.Logger,
		Scheduler: params.Scheduler,
		Deliverer: adherence.NewQueueDeliverer(params.Publisher),
		Clock:     params.Clock,
		StartHour: params.ReminderStartHour,
	})
	if err != nil {
		return nil, err
	}

	weekly, err := NewWeeklyReportJob(WeeklyReportJobParams{
		Logger:       params.Logger,
		Reports:      params.Reports,
		Publisher:    params.Publisher,
		Guard:        params.Guard,
		Clock:        params.Clock,
		AdminNumbers: params.AdminNumbers,
		Weekday:      params.WeeklyWeekday,
		Hour:         params.WeeklyHour,
	})
	if err != nil {
		return nil, err
	}

	registry, err := NewRegistry(reminders, weekly)
	if err != nil {
		return nil, err
	}
	if !params.DigestEnabled {
		return registry, nil
	}

	digest, err := NewAdminDigestJob(AdminDigestJobParams{
		Logger:       params.Logger,
		Publisher:    params.Publisher,
		Guard:        params.Guard,
		Clock:        params.Clock,
		AdminNumbers: params.AdminNumbers,
		Hour:         params.DigestHour,
	})
	if err != nil {
		return nil, err
	}
	if err := registry.Register(digest); err != nil {
		return nil, err
	}
	return registry, nil
}
