package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type drugLookup interface {
	Lookup(ctx context.Context, name string) (*models.Drug, error)
}

// Service manages pending order lines. Stock is checked when adding but never
// reserved; checkout re-verifies it.
type Service interface {
	Add(ctx context.Context, customerID, drugName string, qty int) (*Cart, error)
	Get(ctx context.Context, customerID string) (*Cart, error)
	Clear(ctx context.Context, customerID string) error
}

type service struct {
	repo  *Repository
	drugs drugLookup
	logg  *logger.Logger
}

// NewService builds the cart store.
func NewService(repo *Repository, drugs drugLookup, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if drugs == nil {
		return nil, fmt.Errorf("drug lookup required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, drugs: drugs, logg: logg}, nil
}

// Add puts qty units of the drug in the customer's cart, merging with an
// existing line. It fails with CodeInsufficientStock when qty alone exceeds
// the stock on hand right now.
func (s *service) Add(ctx context.Context, customerID, drugName string, qty int) (*Cart, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"quantity": qty})
	}

	drug, err := s.drugs.Lookup(ctx, drugName)
	if err != nil {
		return nil, err
	}
	if qty > drug.Quantity {
		return nil, inventory.InsufficientStock(drug.Name, qty, drug.Quantity)
	}

	if err := s.repo.Increment(ctx, customerID, drug.Name, qty); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart line")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"drug": drug.Name, "quantity": qty}), "cart.line_added")
	return s.Get(ctx, customerID)
}

func (s *service) Get(ctx context.Context, customerID string) (*Cart, error) {
	lines, err := s.repo.ListDetailed(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return newCart(customerID, lines), nil
}

// Clear is idempotent: clearing an empty cart succeeds.
func (s *service) Clear(ctx context.Context, customerID string) error {
	if err := s.repo.Clear(ctx, customerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

// Cart is a priced view of the customer's lines at current drug prices.
type Cart struct {
	CustomerID string
	Lines      []PricedLine
	Total      decimal.Decimal
}

// PricedLine is one cart line with its running line total.
type PricedLine struct {
	Line
	LineTotal decimal.Decimal
}

func newCart(customerID string, lines []Line) *Cart {
	cart := &Cart{CustomerID: customerID, Lines: make([]PricedLine, 0, len(lines)), Total: decimal.Zero}
	for _, l := range lines {
		total := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		cart.Lines = append(cart.Lines, PricedLine{Line: l, LineTotal: total})
		cart.Total = cart.Total.Add(total)
	}
	return cart
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// ItemCount sums quantities across lines.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
