package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/ejidepharmacy/pharmabot-backend/internal/cart"
	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	"github.com/ejidepharmacy/pharmabot-backend/internal/purchases"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service converts a customer's cart into purchases.
type Service interface {
	Checkout(ctx context.Context, customerID string) (*Receipt, error)
}

type service struct {
	tx          txRunner
	carts       *cart.Repository
	drugs       *inventory.Repository
	purchases   *purchases.Repository
	clock       clock.Clock
	orderPrefix string
	logg        *logger.Logger
}

// NewService builds the checkout engine.
func NewService(
	tx txRunner,
	carts *cart.Repository,
	drugs *inventory.Repository,
	purchaseRepo *purchases.Repository,
	clk clock.Clock,
	orderPrefix string,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if drugs == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if purchaseRepo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:          tx,
		carts:       carts,
		drugs:       drugs,
		purchases:   purchaseRepo,
		clock:       clk,
		orderPrefix: orderPrefix,
		logg:        logg,
	}, nil
}

// Checkout runs the whole cart in one transaction. Prices and course data are
// re-read from the ledger, every line is decremented with a conditional
// update and recorded as a purchase, then the cart is cleared. The first line
// that cannot be covered aborts everything with CodeInsufficientStock and the
// cart is left untouched. An empty cart yields an empty receipt, not an error.
func (s *service) Checkout(ctx context.Context, customerID string) (*Receipt, error) {
	now := s.clock.Now()
	receipt := &Receipt{
		OrderID:      OrderID(s.orderPrefix, customerID, now),
		CustomerID:   customerID,
		PurchaseDate: clock.DayOf(now),
		CreatedAt:    now,
		Total:        decimal.Zero,
	}
	ctx = s.logg.WithOrderID(ctx, receipt.OrderID)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		drugs := s.drugs.WithTx(tx)
		purchaseRepo := s.purchases.WithTx(tx)

		lines, err := carts.ListDetailed(ctx, customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(lines) == 0 {
			return nil
		}

		for _, line := range lines {
			item, err := s.checkoutLine(ctx, drugs, purchaseRepo, receipt, line)
			if err != nil {
				return err
			}
			receipt.Lines = append(receipt.Lines, *item)
			receipt.Total = receipt.Total.Add(item.LineTotal)
			if item.CourseDays > 0 {
				receipt.HasCourse = true
			}
		}

		if err := carts.Clear(ctx, customerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"customer_id": customerID, "error": err.Error()}), "checkout.aborted")
		return nil, err
	}

	if receipt.Empty() {
		return receipt, nil
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"customer_id": customerID,
		"lines":       len(receipt.Lines),
		"total":       receipt.Total.StringFixed(2),
	}), "checkout.completed")
	return receipt, nil
}

func (s *service) checkoutLine(
	ctx context.Context,
	drugs *inventory.Repository,
	purchaseRepo *purchases.Repository,
	receipt *Receipt,
	line cart.Line,
) (*ReceiptLine, error) {
	drug, err := drugs.Find(ctx, line.DrugName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, inventory.NotFound(line.DrugName)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load drug")
	}

	if err := inventory.DecrementTx(ctx, drugs, drug.Name, line.Quantity); err != nil {
		return nil, err
	}

	amount := drug.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
	purchase := &models.Purchase{
		OrderID:         receipt.OrderID,
		CustomerID:      receipt.CustomerID,
		DrugName:        drug.Name,
		Quantity:        line.Quantity,
		UnitPrice:       drug.Price,
		Amount:          amount,
		CourseDays:      drug.CourseDays,
		DosageFrequency: drug.DosageFrequency,
		PurchaseDate:    receipt.PurchaseDate,
		PurchasedAt:     receipt.CreatedAt,
	}
	item := &ReceiptLine{
		DrugName:        drug.Name,
		Quantity:        line.Quantity,
		UnitPrice:       drug.Price,
		LineTotal:       amount,
		CourseDays:      drug.CourseDays,
		DosageFrequency: drug.DosageFrequency,
	}
	if drug.HasCourse() {
		end, err := clock.AddDays(receipt.PurchaseDate, drug.CourseDays)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute course end")
		}
		purchase.CourseEndDate = &end
		item.CourseEndDate = end
	}

	if err := purchaseRepo.Create(ctx, purchase); err != nil {
		if db.IsUniqueViolation(err, "purchases_order_drug_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order already recorded").
				WithDetails(map[string]any{"order_id": receipt.OrderID, "drug": drug.Name})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record purchase")
	}
	return item, nil
}
