// Package chat turns one inbound message into one reply: admin commands,
// checkout, or a pipeline answer with any cart intent applied.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/internal/cart"
	"github.com/ejidepharmacy/pharmabot-backend/internal/checkout"
	"github.com/ejidepharmacy/pharmabot-backend/internal/conversations"
	"github.com/ejidepharmacy/pharmabot-backend/internal/intent"
	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	"github.com/ejidepharmacy/pharmabot-backend/internal/purchases"
	"github.com/ejidepharmacy/pharmabot-backend/internal/reports"
	"github.com/ejidepharmacy/pharmabot-backend/internal/responder"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
)

const purchaseHistoryLimit = 5

var checkoutPrefixes = []string{"checkout", "check out"}

// Inbound is one chat message as received from the transport.
type Inbound struct {
	CustomerID string
	Message    string
	IsAdmin    bool
	Timestamp  time.Time
}

type replier interface {
	Reply(ctx context.Context, p responder.Prompt) string
}

// Service answers chat messages.
type Service interface {
	Handle(ctx context.Context, in Inbound) (string, error)
}

// Deps are the collaborators a chat service needs.
type Deps struct {
	Inventory     inventory.Service
	Carts         cart.Service
	Checkout      checkout.Service
	Purchases     purchases.Service
	Conversations conversations.Service
	Reports       reports.Service
	Pipeline      replier
	StoreName     string
	PaymentLines  []string
	Logger        *logger.Logger
}

type service struct {
	inventory     inventory.Service
	carts         cart.Service
	checkout      checkout.Service
	purchases     purchases.Service
	conversations conversations.Service
	reports       reports.Service
	pipeline      replier
	storeName     string
	paymentLines  []string
	logg          *logger.Logger
}

func NewService(d Deps) (Service, error) {
	switch {
	case d.Inventory == nil:
		return nil, fmt.Errorf("inventory service required")
	case d.Carts == nil:
		return nil, fmt.Errorf("cart service required")
	case d.Checkout == nil:
		return nil, fmt.Errorf("checkout service required")
	case d.Purchases == nil:
		return nil, fmt.Errorf("purchase service required")
	case d.Conversations == nil:
		return nil, fmt.Errorf("conversation service required")
	case d.Reports == nil:
		return nil, fmt.Errorf("reports service required")
	case d.Pipeline == nil:
		return nil, fmt.Errorf("response pipeline required")
	case d.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		inventory:     d.Inventory,
		carts:         d.Carts,
		checkout:      d.Checkout,
		purchases:     d.Purchases,
		conversations: d.Conversations,
		reports:       d.Reports,
		pipeline:      d.Pipeline,
		storeName:     d.StoreName,
		paymentLines:  d.PaymentLines,
		logg:          d.Logger,
	}, nil
}

func (s *service) Handle(ctx context.Context, in Inbound) (string, error) {
	customerID := strings.TrimSpace(in.CustomerID)
	message := strings.TrimSpace(in.Message)
	if customerID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if message == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	ctx = s.logg.WithCustomerID(ctx, customerID)

	history, err := s.conversations.Recent(ctx, customerID)
	if err != nil {
		return "", err
	}
	if err := s.conversations.Log(ctx, customerID, message, in.IsAdmin, in.Timestamp); err != nil {
		return "", err
	}

	lower := strings.ToLower(message)

	if in.IsAdmin {
		reply, ok, err := s.adminCommand(ctx, lower, message)
		if err != nil {
			return "", err
		}
		if ok {
			s.logg.Info(s.logg.WithField(ctx, "command", firstWords(lower, 2)), "chat.admin_command")
			return reply, nil
		}
	}

	if hasAnyPrefix(lower, checkoutPrefixes...) {
		return s.runCheckout(ctx, customerID)
	}

	return s.converse(ctx, customerID, message, history)
}

func (s *service) runCheckout(ctx context.Context, customerID string) (string, error) {
	receipt, err := s.checkout.Checkout(ctx, customerID)
	if pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		return checkoutStockText(err), nil
	}
	if err != nil {
		return "", err
	}
	if receipt.Empty() {
		return emptyCartCheckout, nil
	}
	return receiptText(receipt, s.storeName, s.paymentLines), nil
}

// converse asks the pipeline for an answer, then applies any "<qty> <drug>"
// intent to the cart. The pipeline sees the cart as it was before the add.
func (s *service) converse(ctx context.Context, customerID, message string, history []models.Conversation) (string, error) {
	drugs, err := s.inventory.List(ctx)
	if err != nil {
		return "", err
	}
	current, err := s.carts.Get(ctx, customerID)
	if err != nil {
		return "", err
	}
	recent, err := s.purchases.Recent(ctx, customerID, purchaseHistoryLimit)
	if err != nil {
		return "", err
	}

	reply := s.pipeline.Reply(ctx, responder.BuildPrompt(responder.Snapshot{
		Message:   message,
		Inventory: drugs,
		Cart:      current,
		Purchases: recent,
		History:   history,
	}))

	names := make([]string, 0, len(drugs))
	for _, d := range drugs {
		names = append(names, d.Name)
	}
	add, ok := intent.Parse(message, names)
	if !ok {
		return reply, nil
	}

	updated, err := s.carts.Add(ctx, customerID, add.Drug, add.Quantity)
	switch {
	case err == nil:
		return reply + "\n\n" + cartSummary(updated), nil
	case pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock):
		return reply + "\n\n" + cartStockText(err), nil
	default:
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"drug":     add.Drug,
			"quantity": add.Quantity,
			"error":    err.Error(),
		}), "chat.cart_add_failed")
		return reply, nil
	}
}

func cartStockText(err error) string {
	drug, available := stockDetails(err)
	return fmt.Sprintf("⚠️ Sorry, we only have %d units of %s in stock right now.", available, inventory.DisplayName(drug))
}

func checkoutStockText(err error) string {
	drug, available := stockDetails(err)
	return fmt.Sprintf("❌ Sorry, %s just ran low: only %d units left, so your order was not placed.\n\n"+
		"Your cart is saved. Reply 'help' or contact the pharmacy to adjust it.", inventory.DisplayName(drug), available)
}

func stockDetails(err error) (string, int) {
	coded := pkgerrors.As(err)
	if coded == nil {
		return "", 0
	}
	details, _ := coded.Details().(map[string]any)
	drug, _ := details["drug"].(string)
	available, _ := details["available"].(int)
	return drug, available
}

func firstWords(s string, n int) string {
	parts := strings.Fields(s)
	if len(parts) > n {
		parts = parts[:n]
	}
	return strings.Join(parts, " ")
}
