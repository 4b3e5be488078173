// Package reports builds the admin reports: predictive analytics, inventory
// analysis and the weekly summary.
package reports

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/clock"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
)

const (
	lowStockThreshold = 20
	stockoutThreshold = 50
	topDrugsLimit     = 5
	stockoutRiskLimit = 5
	topValueLimit     = 5
	peakHoursLimit    = 3
	analyticsWindow   = 30
	salesVelocityDays = 7
	weeklyWindowDays  = 7
	peakHoursWindow   = 7 * 24 * time.Hour
)

type Service interface {
	Analytics(ctx context.Context) (*Analytics, error)
	Inventory(ctx context.Context) (*InventoryAnalysis, error)
	Weekly(ctx context.Context) (*WeeklySummary, error)
}

type service struct {
	repo  *Repository
	clock clock.Clock
}

func NewService(repo *Repository, clk clock.Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock required")
	}
	return &service{repo: repo, clock: clk}, nil
}

func (s *service) Analytics(ctx context.Context) (*Analytics, error) {
	now := s.clock.Now()
	today := clock.DayOf(now)
	monthStart, _ := clock.AddDays(today, -analyticsWindow)
	weekStart, _ := clock.AddDays(today, -salesVelocityDays)
	lastWeekStart, _ := clock.AddDays(today, -2*salesVelocityDays)

	out := &Analytics{GeneratedAt: now}
	var err error

	if out.TopDrugs, err = s.repo.TopDrugs(ctx, monthStart, topDrugsLimit); err != nil {
		return nil, wrap(err, "top drugs")
	}

	risks, err := s.repo.SellingLowStock(ctx, weekStart, stockoutThreshold)
	if err != nil {
		return nil, wrap(err, "stock-out risk")
	}
	out.StockoutRisk = rankStockoutRisk(risks)

	if out.Retention, err = s.repo.Retention(ctx, monthStart); err != nil {
		return nil, wrap(err, "retention")
	}
	out.Retention.Rate = percent(out.Retention.ReturningCustomers, out.Retention.TotalCustomers)

	if out.Revenue, err = s.repo.Revenue(ctx, weekStart, lastWeekStart); err != nil {
		return nil, wrap(err, "revenue trend")
	}
	if out.Revenue.LastWeek.IsPositive() {
		growth := out.Revenue.ThisWeek.Sub(out.Revenue.LastWeek).Div(out.Revenue.LastWeek).InexactFloat64() * 100
		out.Revenue.GrowthPercent = round1(growth)
	}

	times, err := s.repo.CustomerMessageTimes(ctx, now.Add(-peakHoursWindow))
	if err != nil {
		return nil, wrap(err, "peak hours")
	}
	out.PeakHours = peakHours(times, now.Location(), peakHoursLimit)

	if out.Adherence, err = s.repo.Adherence(ctx, monthStart); err != nil {
		return nil, wrap(err, "adherence")
	}
	out.Adherence.Rate = percent(out.Adherence.Completed, out.Adherence.Courses)

	return out, nil
}

func (s *service) Inventory(ctx context.Context) (*InventoryAnalysis, error) {
	out := &InventoryAnalysis{}
	var err error
	if out.Overview, err = s.repo.InventoryOverview(ctx); err != nil {
		return nil, wrap(err, "inventory overview")
	}
	if out.LowStock, err = s.repo.LowStock(ctx, lowStockThreshold); err != nil {
		return nil, wrap(err, "low stock")
	}
	if out.TopValue, err = s.repo.TopValue(ctx, topValueLimit); err != nil {
		return nil, wrap(err, "top value items")
	}
	if out.ByCategory, err = s.repo.ByCategory(ctx); err != nil {
		return nil, wrap(err, "stock by category")
	}
	return out, nil
}

func (s *service) Weekly(ctx context.Context) (*WeeklySummary, error) {
	now := s.clock.Now()
	since, _ := clock.AddDays(clock.DayOf(now), -weeklyWindowDays)

	totals, err := s.repo.WeeklyTotals(ctx, since)
	if err != nil {
		return nil, wrap(err, "weekly totals")
	}
	out := &WeeklySummary{WeeklyTotals: totals, GeneratedAt: now, Week: clock.ISOWeek(now)}

	if out.TopDrug, err = s.repo.TopDrug(ctx, since); err != nil {
		return nil, wrap(err, "top drug")
	}
	if out.Messages, err = s.repo.MessagesSince(ctx, now.Add(-weeklyWindowDays*24*time.Hour)); err != nil {
		return nil, wrap(err, "message count")
	}
	if out.LowStock, err = s.repo.LowStock(ctx, lowStockThreshold); err != nil {
		return nil, wrap(err, "low stock")
	}
	return out, nil
}

func wrap(err error, what string) error {
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "report query failed: "+what)
}

// rankStockoutRisk estimates days of stock left at the recent sales rate and
// keeps the most urgent.
func rankStockoutRisk(rows []StockoutRisk) []StockoutRisk {
	out := make([]StockoutRisk, 0, len(rows))
	for _, r := range rows {
		if r.RecentSales <= 0 {
			continue
		}
		r.DaysUntilEmpty = round1(float64(r.Stock) / float64(r.RecentSales))
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysUntilEmpty != out[j].DaysUntilEmpty {
			return out[i].DaysUntilEmpty < out[j].DaysUntilEmpty
		}
		return out[i].DrugName < out[j].DrugName
	})
	if len(out) > stockoutRiskLimit {
		out = out[:stockoutRiskLimit]
	}
	return out
}

// peakHours buckets message times by local hour and returns the busiest.
func peakHours(times []time.Time, loc *time.Location, limit int) []HourCount {
	counts := map[int]int{}
	for _, t := range times {
		counts[t.In(loc).Hour()]++
	}
	out := make([]HourCount, 0, len(counts))
	for hour, n := range counts {
		out = append(out, HourCount{Hour: hour, Messages: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Messages != out[j].Messages {
			return out[i].Messages > out[j].Messages
		}
		return out[i].Hour < out[j].Hour
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round1(100 * float64(part) / float64(whole))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
