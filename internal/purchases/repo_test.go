package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/dbtest"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newPurchase(customer, drug, day string, courseDays int, at time.Time) *models.Purchase {
	p := &models.Purchase{
		OrderID:         "EJD-" + day + "-" + drug,
		CustomerID:      customer,
		DrugName:        drug,
		Quantity:        1,
		UnitPrice:       decimal.NewFromInt(500),
		Amount:          decimal.NewFromInt(500),
		CourseDays:      courseDays,
		DosageFrequency: "Once daily",
		PurchaseDate:    day,
		PurchasedAt:     at,
	}
	if courseDays > 0 {
		end, _ := time.Parse("2006-01-02", day)
		p.CourseEndDate = strPtr(end.AddDate(0, 0, courseDays).Format("2006-01-02"))
	}
	return p
}

func TestRecentByCustomerNewestFirst(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	base := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

	for i, drug := range []string{"paracetamol", "amoxicillin", "coartem"} {
		require.NoError(t, repo.Create(ctx, newPurchase("234801", drug, "2025-10-0"+string(rune('1'+i)), 3, base.Add(time.Duration(i)*24*time.Hour))))
	}
	require.NoError(t, repo.Create(ctx, newPurchase("234999", "ibuprofen", "2025-10-05", 0, base)))

	rows, err := repo.RecentByCustomer(ctx, "234801", 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "coartem", rows[0].DrugName)
	assert.Equal(t, "amoxicillin", rows[1].DrugName)
}

func TestReminderCandidatesFilters(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	at := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

	open := newPurchase("a", "paracetamol", "2025-10-10", 3, at)
	noCourse := newPurchase("b", "vitamin c", "2025-10-10", 0, at)
	stale := newPurchase("c", "coartem", "2025-09-01", 3, at)
	done := newPurchase("d", "chloroquine", "2025-10-10", 3, at)
	done.Completed = true
	remindedToday := newPurchase("e", "ibuprofen", "2025-10-10", 5, at)
	remindedToday.LastReminderSent = strPtr("2025-10-12")

	for _, p := range []*models.Purchase{open, noCourse, stale, done, remindedToday} {
		require.NoError(t, repo.Create(ctx, p))
	}

	rows, err := repo.ReminderCandidates(ctx, "2025-10-12", "2025-10-09")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, open.ID, rows[0].ID)
}

func TestMarkRemindedIsGuardedPerDay(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	p := newPurchase("a", "paracetamol", "2025-10-10", 3, time.Now())
	require.NoError(t, repo.Create(ctx, p))

	ok, err := repo.MarkReminded(ctx, p.ID, "2025-10-11", false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkReminded(ctx, p.ID, "2025-10-11", false)
	require.NoError(t, err)
	assert.False(t, ok, "second mark on the same day must lose")

	ok, err = repo.MarkReminded(ctx, p.ID, "2025-10-16", true)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkReminded(ctx, p.ID, "2025-10-17", false)
	require.NoError(t, err)
	assert.False(t, ok, "completed purchases never change again")

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.RemindersSent)
	assert.True(t, got.Completed)
	require.NotNil(t, got.LastReminderSent)
	assert.Equal(t, "2025-10-16", *got.LastReminderSent)
}

func TestServiceRecentEmpty(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)

	rows, err := svc.Recent(context.Background(), "nobody", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
