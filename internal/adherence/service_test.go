package adherence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/internal/purchases"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/dbtest"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/enums"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/metrics"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/queue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dayClock struct {
	now time.Time
}

func (c *dayClock) Now() time.Time { return c.now }

type failingDeliverer struct{ calls int }

func (d *failingDeliverer) Deliver(context.Context, Reminder) error {
	d.calls++
	return errors.New("transport down")
}

type fakePublisher struct{ msgs []queue.Message }

func (p *fakePublisher) Publish(_ context.Context, msg queue.Message) error {
	p.msgs = append(p.msgs, msg)
	return nil
}

type fixture struct {
	svc   Service
	repo  *purchases.Repository
	clock *dayClock
	reg   *prometheus.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client, conn := dbtest.Client(t)
	repo := purchases.NewRepository(conn)
	clk := &dayClock{now: time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC)}
	reg := prometheus.NewRegistry()
	svc, err := NewService(repo, client, clk, metrics.NewReminderMetrics(reg), logger.Nop())
	require.NoError(t, err)
	return fixture{svc: svc, repo: repo, clock: clk, reg: reg}
}

func seedCourse(t *testing.T, repo *purchases.Repository, drug string, courseDays int, day string) *models.Purchase {
	t.Helper()
	p := &models.Purchase{
		OrderID:         "EJD-TEST-" + drug,
		CustomerID:      "2348012345678",
		DrugName:        drug,
		Quantity:        1,
		UnitPrice:       decimal.NewFromInt(800),
		Amount:          decimal.NewFromInt(800),
		CourseDays:      courseDays,
		DosageFrequency: "Twice daily",
		PurchaseDate:    day,
		PurchasedAt:     time.Now(),
	}
	if courseDays > 0 {
		end, err := time.Parse("2006-01-02", day)
		require.NoError(t, err)
		endDay := end.AddDate(0, 0, courseDays).Format("2006-01-02")
		p.CourseEndDate = &endDay
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestThreeDayCourseLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := seedCourse(t, f.repo, "chloroquine", 3, "2025-10-10")

	want := map[int]enums.ReminderKind{
		1: enums.ReminderKindDaily,
		2: enums.ReminderKindDaily,
		3: enums.ReminderKindDaily,
		4: enums.ReminderKindCompletion,
		6: enums.ReminderKindCheckup,
	}

	total := 0
	for day := 1; day <= 7; day++ {
		f.clock.now = time.Date(2025, 10, 10+day, 8, 0, 0, 0, time.UTC)

		for run := 0; run < 2; run++ {
			collector := &Collector{}
			sent, err := f.svc.Dispatch(ctx, collector)
			require.NoError(t, err)

			kind, due := want[day]
			if run == 0 && due {
				require.Len(t, sent, 1, "day %d", day)
				assert.Equal(t, kind, sent[0].Kind, "day %d", day)
				assert.Equal(t, p.ID, sent[0].PurchaseID)
				assert.Equal(t, sent, collector.Reminders())
				total++
				continue
			}
			assert.Empty(t, sent, "day %d run %d", day, run)
			assert.Empty(t, collector.Reminders())
		}
	}
	assert.Equal(t, 5, total)

	got, err := f.repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, 5, got.RemindersSent)
	require.NotNil(t, got.LastReminderSent)
	assert.Equal(t, "2025-10-16", *got.LastReminderSent)

	assert.Equal(t, 3.0, counterValue(t, f.reg, "reminders_sent_total", "daily"))
	assert.Equal(t, 1.0, counterValue(t, f.reg, "reminders_sent_total", "checkup"))
}

func TestDispatchSkipsPurchasesWithoutCourse(t *testing.T) {
	f := newFixture(t)
	seedCourse(t, f.repo, "ibuprofen", 0, "2025-10-10")

	sent, err := f.svc.Dispatch(context.Background(), &Collector{})
	require.NoError(t, err)
	assert.Empty(t, sent)
}

func TestFailedDeliveryIsRetriedNextScan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := seedCourse(t, f.repo, "coartem", 3, "2025-10-10")

	failing := &failingDeliverer{}
	sent, err := f.svc.Dispatch(ctx, failing)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Empty(t, sent)
	assert.Equal(t, 1, failing.calls)

	got, err := f.repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastReminderSent)
	assert.Zero(t, got.RemindersSent)

	sent, err = f.svc.Dispatch(ctx, &Collector{})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, enums.ReminderKindDaily, sent[0].Kind)
}

func TestQueueDelivererPublishesReminder(t *testing.T) {
	f := newFixture(t)
	p := seedCourse(t, f.repo, "amoxicillin", 7, "2025-10-10")
	pub := &fakePublisher{}

	sent, err := f.svc.Dispatch(context.Background(), NewQueueDeliverer(pub))
	require.NoError(t, err)
	require.Len(t, sent, 1)
	require.Len(t, pub.msgs, 1)

	msg := pub.msgs[0]
	assert.Equal(t, enums.OutboundKindReminder, msg.Kind)
	assert.Equal(t, "2348012345678", msg.Recipient)
	assert.Equal(t, enums.ReminderKindDaily, msg.ReminderKind)
	assert.Equal(t, p.ID.String(), msg.PurchaseID)
	assert.Contains(t, msg.Text, "Amoxicillin")
}

func TestDispatchRequiresDeliverer(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Dispatch(context.Background(), nil)
	require.Error(t, err)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, kind string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "kind" && label.GetValue() == kind {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s{kind=%s} not found", name, kind)
	return 0
}
