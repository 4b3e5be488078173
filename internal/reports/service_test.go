package reports

import (
	"context"
	"testing"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/internal/conversations"
	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	"github.com/ejidepharmacy/pharmabot-backend/internal/purchases"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/dbtest"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 10, 15, 14, 0, 0, 0, time.UTC)

func newSeededService(t *testing.T) Service {
	t.Helper()
	ctx := context.Background()
	client, conn := dbtest.Client(t)

	inv, err := inventory.NewService(inventory.NewRepository(conn), client, logger.Nop())
	require.NoError(t, err)
	_, err = inv.Seed(ctx)
	require.NoError(t, err)
	_, err = inv.Upsert(ctx, inventory.UpsertInput{
		Name: "artemether", Quantity: 10, Price: decimal.NewFromInt(1800), Category: "malaria", CourseDays: 3,
	})
	require.NoError(t, err)

	repo := purchases.NewRepository(conn)
	buy := func(order, customer, drug string, qty int, amount int64, day string, completed bool) {
		require.NoError(t, repo.Create(ctx, &models.Purchase{
			OrderID:      order,
			CustomerID:   customer,
			DrugName:     drug,
			Quantity:     qty,
			UnitPrice:    decimal.NewFromInt(amount / int64(qty)),
			Amount:       decimal.NewFromInt(amount),
			CourseDays:   3,
			PurchaseDate: day,
			Completed:    completed,
			PurchasedAt:  now,
		}))
	}
	buy("A1", "cust-a", "paracetamol", 2, 1000, "2025-10-14", false)
	buy("A1", "cust-a", "artemether", 2, 3600, "2025-10-14", true)
	buy("A2", "cust-a", "coartem", 1, 2000, "2025-10-12", false)
	buy("B1", "cust-b", "paracetamol", 4, 2000, "2025-10-03", false)
	buy("C1", "cust-c", "ibuprofen", 1, 600, "2025-08-01", false)

	convos, err := conversations.NewService(conversations.NewRepository(conn), clock.Fixed{At: now})
	require.NoError(t, err)
	logAt := func(who string, admin bool, at time.Time) {
		require.NoError(t, convos.Log(ctx, who, "msg", admin, at))
	}
	logAt("cust-a", false, time.Date(2025, 10, 14, 9, 5, 0, 0, time.UTC))
	logAt("cust-a", false, time.Date(2025, 10, 13, 9, 40, 0, 0, time.UTC))
	logAt("cust-b", false, time.Date(2025, 10, 12, 9, 59, 0, 0, time.UTC))
	logAt("cust-b", false, time.Date(2025, 10, 12, 13, 0, 0, 0, time.UTC))
	logAt("admin", true, time.Date(2025, 10, 14, 9, 0, 0, 0, time.UTC))
	logAt("cust-c", false, time.Date(2025, 10, 5, 9, 0, 0, 0, time.UTC))

	svc, err := NewService(NewRepository(conn), clock.Fixed{At: now})
	require.NoError(t, err)
	return svc
}

func TestAnalytics(t *testing.T) {
	svc := newSeededService(t)

	a, err := svc.Analytics(context.Background())
	require.NoError(t, err)

	require.Len(t, a.TopDrugs, 3)
	assert.Equal(t, DrugSales{DrugName: "paracetamol", Orders: 2, Units: 6}, a.TopDrugs[0])
	assert.Equal(t, "artemether", a.TopDrugs[1].DrugName)

	require.Len(t, a.StockoutRisk, 1)
	assert.Equal(t, "artemether", a.StockoutRisk[0].DrugName)
	assert.Equal(t, 10.0, a.StockoutRisk[0].DaysUntilEmpty)

	assert.Equal(t, 2, a.Retention.TotalCustomers)
	assert.Equal(t, 1, a.Retention.ReturningCustomers)
	assert.Equal(t, 50.0, a.Retention.Rate)

	assert.True(t, a.Revenue.ThisWeek.Equal(decimal.NewFromInt(6600)), a.Revenue.ThisWeek.String())
	assert.True(t, a.Revenue.LastWeek.Equal(decimal.NewFromInt(2000)), a.Revenue.LastWeek.String())
	assert.Equal(t, 230.0, a.Revenue.GrowthPercent)

	assert.Equal(t, []HourCount{{Hour: 9, Messages: 3}, {Hour: 13, Messages: 1}}, a.PeakHours)

	assert.Equal(t, 4, a.Adherence.Courses)
	assert.Equal(t, 1, a.Adherence.Completed)
	assert.Equal(t, 25.0, a.Adherence.Rate)

	text := a.Render()
	assert.Contains(t, text, "This Week: ₦6,600.00")
	assert.Contains(t, text, "Growth: +230.0% 📈")
	assert.Contains(t, text, "1. Paracetamol: 6 units (2 orders)")
	assert.Contains(t, text, "• Artemether: 10 left (10.0 days until out)")
	assert.Contains(t, text, "• 9 AM: 3 messages")
	assert.Contains(t, text, "• 1 PM: 1 messages")
	assert.Contains(t, text, "Enhance medication reminder system")
	assert.NotContains(t, text, "Consider promotional campaigns")
}

func TestInventoryAnalysis(t *testing.T) {
	svc := newSeededService(t)

	a, err := svc.Inventory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, a.Overview.TotalItems)
	assert.True(t, a.Overview.TotalValue.Equal(decimal.NewFromInt(576500)), a.Overview.TotalValue.String())
	require.Len(t, a.LowStock, 1)
	assert.Equal(t, "artemether", a.LowStock[0].DrugName)
	require.Len(t, a.TopValue, 5)
	assert.Equal(t, "coartem", a.TopValue[0].DrugName)
	assert.Equal(t, "amoxicillin", a.TopValue[1].DrugName)
	require.NotEmpty(t, a.ByCategory)
	assert.Equal(t, "malaria", a.ByCategory[0].Category)
	assert.Equal(t, 3, a.ByCategory[0].ItemCount)
	assert.True(t, a.ByCategory[0].Value.Equal(decimal.NewFromInt(206000)))

	text := a.Render()
	assert.Contains(t, text, "Total Items: 8")
	assert.Contains(t, text, "LOW STOCK (1 items)")
	assert.Contains(t, text, "• Coartem: ₦140,000.00")
	assert.Contains(t, text, "• Malaria: 3 items (₦206,000.00)")
}

func TestWeeklySummary(t *testing.T) {
	svc := newSeededService(t)

	w, err := svc.Weekly(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, w.Purchases)
	assert.Equal(t, 1, w.UniqueCustomers)
	assert.True(t, w.Revenue.Equal(decimal.NewFromInt(6600)))
	assert.Equal(t, "artemether", w.TopDrug)
	assert.Equal(t, int64(5), w.Messages)
	assert.Equal(t, "2025-W42", w.Week)
	require.Len(t, w.LowStock, 1)

	text := w.Render()
	assert.Contains(t, text, "Total Revenue: ₦6,600.00")
	assert.Contains(t, text, "Top Drug: Artemether")
	assert.Contains(t, text, "Messages: 5")
	assert.Contains(t, text, "• Artemether: 10")
}

func TestWeeklySummaryEmptyStore(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)), clock.Fixed{At: now})
	require.NoError(t, err)

	w, err := svc.Weekly(context.Background())
	require.NoError(t, err)
	assert.Zero(t, w.Purchases)
	assert.True(t, w.Revenue.IsZero())
	assert.Contains(t, w.Render(), "Top Drug: N/A")

	a, err := svc.Analytics(context.Background())
	require.NoError(t, err)
	assert.Empty(t, a.TopDrugs)
	assert.Zero(t, a.Revenue.GrowthPercent)
	assert.Contains(t, a.Render(), "No sales yet")
}

func TestClockHour(t *testing.T) {
	assert.Equal(t, "12 AM", clockHour(0))
	assert.Equal(t, "9 AM", clockHour(9))
	assert.Equal(t, "12 PM", clockHour(12))
	assert.Equal(t, "11 PM", clockHour(23))
}
