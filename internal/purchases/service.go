package purchases

import (
	"context"
	"fmt"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
)

// Service exposes read access to purchase history.
type Service interface {
	Recent(ctx context.Context, customerID string, limit int) ([]models.Purchase, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Recent(ctx context.Context, customerID string, limit int) ([]models.Purchase, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.repo.RecentByCustomer(ctx, customerID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load purchase history")
	}
	return rows, nil
}
