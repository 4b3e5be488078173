package adherence

import (
	"context"
	"fmt"

	"github.com/ejidepharmacy/pharmabot-backend/internal/purchases"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/enums"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Reminder is the payload handed to delivery.
type Reminder struct {
	PurchaseID      uuid.UUID          `json:"purchase_id"`
	CustomerID      string             `json:"phone_number"`
	DrugName        string             `json:"drug_name"`
	DosageFrequency string             `json:"dosage_frequency"`
	Kind            enums.ReminderKind `json:"reminder_type"`
	Message         string             `json:"message"`
	Day             string             `json:"day"`
}

// Service scans purchases for reminders due today.
type Service interface {
	// Dispatch emits every reminder due today through d and returns the ones
	// that were recorded. Running it again on the same day emits nothing new.
	Dispatch(ctx context.Context, d Deliverer) ([]Reminder, error)
}

type service struct {
	repo    *purchases.Repository
	tx      txRunner
	clock   clock.Clock
	metrics *metrics.ReminderMetrics
	logg    *logger.Logger
}

// NewService builds the adherence scheduler. m may be nil.
func NewService(repo *purchases.Repository, tx txRunner, clk clock.Clock, m *metrics.ReminderMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, clock: clk, metrics: m, logg: logg}, nil
}

func (s *service) Dispatch(ctx context.Context, d Deliverer) ([]Reminder, error) {
	if d == nil {
		return nil, fmt.Errorf("deliverer required")
	}
	today := clock.Today(s.clock)
	windowStart, err := scanWindowStart(today)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute reminder window")
	}

	candidates, err := s.repo.ReminderCandidates(ctx, today, windowStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reminder candidates")
	}

	sent := []Reminder{}
	var errs error
	for _, p := range candidates {
		kind, ok, err := Due(p, today)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("purchase %s: %w", p.ID, err))
			continue
		}
		if !ok {
			continue
		}

		reminder := newReminder(p, kind, today)
		emitted, err := s.emit(ctx, reminder, d)
		if err != nil {
			s.metrics.IncFailed(kind.String())
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"purchase_id": p.ID.String(),
				"kind":        kind.String(),
				"error":       err.Error(),
			}), "adherence.reminder_failed")
			errs = multierr.Append(errs, fmt.Errorf("purchase %s: %w", p.ID, err))
			continue
		}
		if !emitted {
			continue
		}
		s.metrics.IncSent(kind.String())
		sent = append(sent, reminder)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"day":        today,
		"candidates": len(candidates),
		"sent":       len(sent),
	}), "adherence.dispatch_complete")

	if errs != nil {
		return sent, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "some reminders were not delivered")
	}
	return sent, nil
}

// emit records the reminder and delivers it in one transaction. Losing the
// guarded update to a concurrent run reports false without delivering.
func (s *service) emit(ctx context.Context, r Reminder, d Deliverer) (bool, error) {
	emitted := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).MarkReminded(ctx, r.PurchaseID, r.Day, r.Kind.IsTerminal())
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := d.Deliver(ctx, r); err != nil {
			return err
		}
		emitted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return emitted, nil
}

func newReminder(p models.Purchase, kind enums.ReminderKind, today string) Reminder {
	return Reminder{
		PurchaseID:      p.ID,
		CustomerID:      p.CustomerID,
		DrugName:        p.DrugName,
		DosageFrequency: p.DosageFrequency,
		Kind:            kind,
		Message:         Message(kind, p.DrugName, p.DosageFrequency),
		Day:             today,
	}
}
