package chat

import (
	"context"
	"testing"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/internal/cart"
	"github.com/ejidepharmacy/pharmabot-backend/internal/checkout"
	"github.com/ejidepharmacy/pharmabot-backend/internal/conversations"
	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	"github.com/ejidepharmacy/pharmabot-backend/internal/purchases"
	"github.com/ejidepharmacy/pharmabot-backend/internal/reports"
	"github.com/ejidepharmacy/pharmabot-backend/internal/responder"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/dbtest"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	customer = "2348012345678"
	admin    = "2348000000001"
)

type recordingReplier struct {
	next    replier
	prompts []responder.Prompt
}

func (r *recordingReplier) Reply(ctx context.Context, p responder.Prompt) string {
	r.prompts = append(r.prompts, p)
	return r.next.Reply(ctx, p)
}

type fixture struct {
	chat          Service
	inventory     inventory.Service
	carts         cart.Service
	conversations conversations.Service
	replies       *recordingReplier
	conn          *gorm.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	client, conn := dbtest.Client(t)
	logg := logger.Nop()
	clk := clock.Fixed{At: time.Date(2025, 10, 15, 14, 30, 0, 0, time.UTC)}

	inventoryRepo := inventory.NewRepository(conn)
	inv, err := inventory.NewService(inventoryRepo, client, logg)
	require.NoError(t, err)
	_, err = inv.Seed(ctx)
	require.NoError(t, err)

	cartRepo := cart.NewRepository(conn)
	carts, err := cart.NewService(cartRepo, inv, logg)
	require.NoError(t, err)

	purchaseRepo := purchases.NewRepository(conn)
	history, err := purchases.NewService(purchaseRepo)
	require.NoError(t, err)

	co, err := checkout.NewService(client, cartRepo, inventoryRepo, purchaseRepo, clk, "EJD", logg)
	require.NoError(t, err)

	convos, err := conversations.NewService(conversations.NewRepository(conn), clk)
	require.NoError(t, err)

	rep, err := reports.NewService(reports.NewRepository(conn), clk)
	require.NoError(t, err)

	pipeline, err := responder.NewPipeline(nil, responder.NewFallback("Ejide Pharmacy"), time.Second, nil, logg)
	require.NoError(t, err)
	replies := &recordingReplier{next: pipeline}

	svc, err := NewService(Deps{
		Inventory:     inv,
		Carts:         carts,
		Checkout:      co,
		Purchases:     history,
		Conversations: convos,
		Reports:       rep,
		Pipeline:      replies,
		StoreName:     "Ejide Pharmacy",
		PaymentLines:  []string{"Bank: GTBank", "Account Number: 0123456789"},
		Logger:        logg,
	})
	require.NoError(t, err)

	return fixture{chat: svc, inventory: inv, carts: carts, conversations: convos, replies: replies, conn: conn}
}

func (f fixture) say(t *testing.T, from, message string, isAdmin bool) string {
	t.Helper()
	reply, err := f.chat.Handle(context.Background(), Inbound{CustomerID: from, Message: message, IsAdmin: isAdmin})
	require.NoError(t, err)
	require.NotEmpty(t, reply)
	return reply
}

func TestIntentThenCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reply := f.say(t, customer, "I want 2 paracetamol", false)
	assert.Contains(t, reply, "🛒 *YOUR CART:*")
	assert.Contains(t, reply, "• Paracetamol x2 = ₦1,000.00")
	assert.Contains(t, reply, "💰 *TOTAL: ₦1,000.00*")
	assert.Contains(t, reply, "Ready to checkout? Reply 'checkout'")

	c, err := f.carts.Get(ctx, customer)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "paracetamol", c.Lines[0].DrugName)
	assert.Equal(t, 2, c.Lines[0].Quantity)

	receipt := f.say(t, customer, "Checkout please", false)
	assert.Contains(t, receipt, "🧾 *ORDER SUMMARY*")
	assert.Contains(t, receipt, "Order ID: EJD-20251015143000-")
	assert.Contains(t, receipt, "Date: October 15, 2025 02:30 PM")
	assert.Contains(t, receipt, "Qty: 2 x ₦500.00 = ₦1,000.00")
	assert.Contains(t, receipt, "📅 Treatment: 3 days (3 times daily)")
	assert.Contains(t, receipt, "💰 *TOTAL: ₦1,000.00*")
	assert.Contains(t, receipt, "Bank: GTBank\nAccount Number: 0123456789")
	assert.Contains(t, receipt, "💊 *MEDICATION REMINDERS:*")
	assert.Contains(t, receipt, "Thank you for choosing Ejide Pharmacy! 🏥")

	drug, err := f.inventory.Lookup(ctx, "paracetamol")
	require.NoError(t, err)
	assert.Equal(t, 148, drug.Quantity)

	c, err = f.carts.Get(ctx, customer)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	var recorded []models.Purchase
	require.NoError(t, f.conn.Where("customer_id = ?", customer).Find(&recorded).Error)
	require.Len(t, recorded, 1)
	assert.True(t, recorded[0].Amount.Equal(decimal.NewFromInt(1000)))
}

func TestCheckoutWithEmptyCart(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, emptyCartCheckout, f.say(t, customer, "checkout", false))
}

func TestCheckoutStockoutKeepsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.say(t, customer, "I want 40 artemether", false)
	require.NoError(t, f.inventory.Decrement(ctx, "artemether", 10))

	reply := f.say(t, customer, "checkout", false)
	assert.Contains(t, reply, "Artemether just ran low: only 35 units left")

	c, err := f.carts.Get(ctx, customer)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
}

func TestIntentBeyondStockAddsNotice(t *testing.T) {
	f := newFixture(t)

	reply := f.say(t, customer, "I want 500 paracetamol", false)
	assert.Contains(t, reply, "⚠️ Sorry, we only have 150 units of Paracetamol in stock right now.")
	assert.NotContains(t, reply, "YOUR CART")

	c, err := f.carts.Get(context.Background(), customer)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestPlainQuestionGetsPipelineReply(t *testing.T) {
	f := newFixture(t)

	reply := f.say(t, customer, "hello", false)
	assert.Contains(t, reply, "Welcome to Ejide Pharmacy")
	assert.NotContains(t, reply, "YOUR CART")
}

func TestHistoryFeedsPromptAndMessagesAreLogged(t *testing.T) {
	f := newFixture(t)

	f.say(t, customer, "hello", false)
	f.say(t, customer, "do you have coartem", false)

	require.Len(t, f.replies.prompts, 2)
	assert.NotContains(t, f.replies.prompts[0].Context, "RECENT MESSAGES:")
	assert.Contains(t, f.replies.prompts[1].Context, "RECENT MESSAGES:\n- hello")

	logged, err := f.conversations.Recent(context.Background(), customer)
	require.NoError(t, err)
	assert.Len(t, logged, 2)
}

func TestAdminAddDrug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reply := f.say(t, admin, "add drug Metformin 40 750.50 diabetes care", true)
	assert.Contains(t, reply, "✅ *Inventory Updated!*")
	assert.Contains(t, reply, "Drug: Metformin")
	assert.Contains(t, reply, "Qty: 40")
	assert.Contains(t, reply, "Price: ₦750.50")
	assert.Contains(t, reply, "Category: Diabetes Care")

	drug, err := f.inventory.Lookup(ctx, "metformin")
	require.NoError(t, err)
	assert.Equal(t, 40, drug.Quantity)
	assert.Equal(t, "diabetes care", drug.Category)
}

func TestAdminUpdateKeepsCourseData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.say(t, admin, "update drug amoxicillin 95 1300", true)

	drug, err := f.inventory.Lookup(ctx, "amoxicillin")
	require.NoError(t, err)
	assert.Equal(t, 95, drug.Quantity)
	assert.True(t, drug.Price.Equal(decimal.NewFromInt(1300)))
	assert.Equal(t, "general", drug.Category)
	assert.Equal(t, 7, drug.CourseDays)
}

func TestAdminMalformedInventoryCommand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, msg := range []string{"add drug paracetamol 100", "add drug paracetamol lots 500", "add drug paracetamol 10 cheap", "add drug paracetamol -5 500"} {
		assert.Equal(t, inventoryUsage, f.say(t, admin, msg, true), msg)
	}

	drug, err := f.inventory.Lookup(ctx, "paracetamol")
	require.NoError(t, err)
	assert.Equal(t, 150, drug.Quantity)
}

func TestAdminReportsAndHelp(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.say(t, admin, "Weekly Report", true), "📊 *WEEKLY SUMMARY REPORT*")
	assert.Contains(t, f.say(t, admin, "analytics", true), "📊 *PREDICTIVE ANALYTICS & INSIGHTS*")
	assert.Contains(t, f.say(t, admin, "stock report", true), "📦 *INVENTORY ANALYSIS*")
	assert.Equal(t, adminHelp, f.say(t, admin, "help", true))
}

func TestAdminCommandsIgnoredForCustomers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reply := f.say(t, customer, "add drug paracetamol 1 1 fever", false)
	assert.NotContains(t, reply, "Inventory Updated")

	drug, err := f.inventory.Lookup(ctx, "paracetamol")
	require.NoError(t, err)
	assert.Equal(t, 150, drug.Quantity)
}

func TestHandleValidatesInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.chat.Handle(context.Background(), Inbound{Message: "hi"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.chat.Handle(context.Background(), Inbound{CustomerID: customer, Message: "   "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(Deps{})
	assert.Error(t, err)
}
