package conversations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
)

// HistoryLimit is how many past messages feed a reply.
const HistoryLimit = 10

// Service is the append-only chat log.
type Service interface {
	Log(ctx context.Context, customerID, message string, isAdmin bool, at time.Time) error
	Recent(ctx context.Context, customerID string) ([]models.Conversation, error)
}

type service struct {
	repo  *Repository
	clock clock.Clock
}

func NewService(repo *Repository, clk clock.Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("conversation repository required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock required")
	}
	return &service{repo: repo, clock: clk}, nil
}

// Log records an inbound message. A zero at is stamped with the current time.
func (s *service) Log(ctx context.Context, customerID, message string, isAdmin bool, at time.Time) error {
	if strings.TrimSpace(customerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if at.IsZero() {
		at = s.clock.Now()
	}
	entry := &models.Conversation{
		CustomerID: customerID,
		Message:    message,
		IsAdmin:    isAdmin,
		CreatedAt:  at.UTC(),
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "log conversation")
	}
	return nil
}

func (s *service) Recent(ctx context.Context, customerID string) ([]models.Conversation, error) {
	rows, err := s.repo.Recent(ctx, customerID, HistoryLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load conversation history")
	}
	return rows, nil
}
