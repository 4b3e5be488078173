package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

const defaultDosageFrequency = "as prescribed"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the inventory ledger: the only writer of drug stock.
type Service interface {
	Upsert(ctx context.Context, input UpsertInput) (*models.Drug, error)
	Decrement(ctx context.Context, name string, qty int) error
	Lookup(ctx context.Context, name string) (*models.Drug, error)
	Search(ctx context.Context, term string) ([]models.Drug, error)
	List(ctx context.Context) ([]models.Drug, error)
	Seed(ctx context.Context) (int, error)
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds the inventory ledger service.
func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

// UpsertInput carries every mutable drug attribute.
type UpsertInput struct {
	Name            string
	Quantity        int
	Price           decimal.Decimal
	Category        string
	Description     string
	CourseDays      int
	DosageFrequency string
}

func (in UpsertInput) toModel() (*models.Drug, error) {
	name := NormalizeName(in.Name)
	switch {
	case name == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "drug name is required")
	case in.Quantity < 0:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative").
			WithDetails(map[string]any{"drug": name, "quantity": in.Quantity})
	case in.Price.IsNegative():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative").
			WithDetails(map[string]any{"drug": name, "price": in.Price.String()})
	case in.CourseDays < 0:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "course days must not be negative").
			WithDetails(map[string]any{"drug": name, "course_days": in.CourseDays})
	}

	freq := strings.TrimSpace(in.DosageFrequency)
	if freq == "" {
		freq = defaultDosageFrequency
	}
	return &models.Drug{
		Name:            name,
		Quantity:        in.Quantity,
		Price:           in.Price.Round(2),
		Category:        strings.ToLower(strings.TrimSpace(in.Category)),
		Description:     strings.TrimSpace(in.Description),
		CourseDays:      in.CourseDays,
		DosageFrequency: freq,
	}, nil
}

func (s *service) Upsert(ctx context.Context, input UpsertInput) (*models.Drug, error) {
	drug, err := input.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, drug); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert drug")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"drug": drug.Name, "quantity": drug.Quantity}), "inventory.upserted")
	return drug, nil
}

func (s *service) Decrement(ctx context.Context, name string, qty int) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return DecrementTx(ctx, s.repo.WithTx(tx), name, qty)
	})
}

// DecrementTx applies a guarded decrement on a transaction-bound repository so
// callers can commit it together with their own writes.
func DecrementTx(ctx context.Context, repo *Repository, name string, qty int) error {
	name = NormalizeName(name)
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"drug": name, "quantity": qty})
	}

	ok, err := repo.Decrement(ctx, name, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
	}
	if ok {
		return nil
	}

	drug, err := repo.Find(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(name)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load drug after failed decrement")
	}
	return InsufficientStock(drug.Name, qty, drug.Quantity)
}

func (s *service) Lookup(ctx context.Context, name string) (*models.Drug, error) {
	name = NormalizeName(name)
	drug, err := s.repo.Find(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound(name)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup drug")
	}
	return drug, nil
}

func (s *service) Search(ctx context.Context, term string) ([]models.Drug, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx)
	}
	drugs, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search drugs")
	}
	return drugs, nil
}

func (s *service) List(ctx context.Context) ([]models.Drug, error) {
	drugs, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list drugs")
	}
	return drugs, nil
}

// Seed loads the default catalogue, but only into an empty ledger.
func (s *service) Seed(ctx context.Context) (int, error) {
	inserted := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		for _, in := range DefaultCatalogue() {
			drug, err := in.toModel()
			if err != nil {
				return err
			}
			if err := repo.Upsert(ctx, drug); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed inventory")
	}
	if inserted > 0 {
		s.logg.Info(s.logg.WithField(ctx, "drugs", inserted), "inventory.seeded")
	}
	return inserted, nil
}

// NormalizeName lowercases and collapses whitespace so "Vitamin  C" and
// "vitamin c" address the same drug.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// DisplayName renders a stored drug name for customers, e.g. "Vitamin C".
// A Caser holds state, so each call builds its own.
func DisplayName(name string) string {
	return cases.Title(language.English).String(name)
}

// InsufficientStock builds the user-visible stock error naming the drug.
func InsufficientStock(drug string, requested, available int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("only %d %s left in stock", available, drug)).
		WithDetails(map[string]any{"drug": drug, "requested": requested, "available": available})
}

// NotFound builds the unknown-drug error.
func NotFound(drug string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s is not in our inventory", drug)).
		WithDetails(map[string]any{"drug": drug})
}
