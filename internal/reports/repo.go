package reports

import (
	"context"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Queries stay on plain SQL shared by postgres and sqlite. Calendar days are
// compared as YYYY-MM-DD text.
const (
	topDrugsSQL = `
SELECT drug_name, COUNT(*) AS orders, COALESCE(SUM(quantity), 0) AS units
FROM purchases
WHERE purchase_date >= ?
GROUP BY drug_name
ORDER BY orders DESC, units DESC, drug_name ASC
LIMIT ?
`

	stockoutSQL = `
SELECT d.name AS drug_name, d.quantity AS stock, COUNT(p.id) AS sales
FROM drugs d
JOIN purchases p ON p.drug_name = d.name AND p.purchase_date >= ?
WHERE d.quantity < ?
GROUP BY d.name, d.quantity
`

	retentionSQL = `
SELECT
  COUNT(*) AS total_customers,
  COALESCE(SUM(CASE WHEN orders > 1 THEN 1 ELSE 0 END), 0) AS returning_customers
FROM (
  SELECT customer_id, COUNT(DISTINCT order_id) AS orders
  FROM purchases
  WHERE purchase_date >= ?
  GROUP BY customer_id
) c
`

	revenueSQL = `
SELECT
  COALESCE(SUM(CASE WHEN purchase_date >= ? THEN amount ELSE 0 END), 0) AS this_week,
  COALESCE(SUM(CASE WHEN purchase_date < ? THEN amount ELSE 0 END), 0) AS last_week
FROM purchases
WHERE purchase_date >= ?
`

	adherenceSQL = `
SELECT
  COUNT(*) AS courses,
  COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed
FROM purchases
WHERE course_days > 0 AND purchase_date >= ?
`

	inventoryOverviewSQL = `
SELECT
  COUNT(*) AS total_items,
  COALESCE(SUM(quantity * price), 0) AS total_value,
  COALESCE(AVG(quantity), 0) AS avg_stock
FROM drugs
`

	topValueSQL = `
SELECT name AS drug_name, quantity, quantity * price AS total_value
FROM drugs
ORDER BY total_value DESC, name ASC
LIMIT ?
`

	byCategorySQL = `
SELECT
  category,
  COUNT(*) AS item_count,
  COALESCE(SUM(quantity), 0) AS total_quantity,
  COALESCE(SUM(quantity * price), 0) AS category_value
FROM drugs
GROUP BY category
ORDER BY category_value DESC, category ASC
`

	weeklyTotalsSQL = `
SELECT
  COUNT(*) AS purchases,
  COUNT(DISTINCT customer_id) AS customers,
  COALESCE(SUM(amount), 0) AS revenue
FROM purchases
WHERE purchase_date >= ?
`
)

// Repository runs the report queries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) TopDrugs(ctx context.Context, since string, limit int) ([]DrugSales, error) {
	var rows []DrugSales
	if err := r.db.WithContext(ctx).Raw(topDrugsSQL, since, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) SellingLowStock(ctx context.Context, since string, below int) ([]StockoutRisk, error) {
	var rows []StockoutRisk
	if err := r.db.WithContext(ctx).Raw(stockoutSQL, since, below).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Retention(ctx context.Context, since string) (Retention, error) {
	var out Retention
	err := r.db.WithContext(ctx).Raw(retentionSQL, since).Scan(&out).Error
	return out, err
}

// Revenue sums amounts in [thisWeek, ∞) and [lastWeek, thisWeek).
func (r *Repository) Revenue(ctx context.Context, thisWeek, lastWeek string) (RevenueTrend, error) {
	var out RevenueTrend
	err := r.db.WithContext(ctx).Raw(revenueSQL, thisWeek, thisWeek, lastWeek).Scan(&out).Error
	return out, err
}

func (r *Repository) Adherence(ctx context.Context, since string) (Adherence, error) {
	var out Adherence
	err := r.db.WithContext(ctx).Raw(adherenceSQL, since).Scan(&out).Error
	return out, err
}

// CustomerMessageTimes returns when non-admin messages arrived since the instant.
func (r *Repository) CustomerMessageTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("created_at >= ? AND is_admin = ?", since.UTC(), false).
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *Repository) MessagesSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("created_at >= ?", since.UTC()).
		Count(&n).Error
	return n, err
}

func (r *Repository) InventoryOverview(ctx context.Context) (InventoryOverview, error) {
	var out InventoryOverview
	err := r.db.WithContext(ctx).Raw(inventoryOverviewSQL).Scan(&out).Error
	return out, err
}

// LowStock lists drugs under the threshold, scarcest first.
func (r *Repository) LowStock(ctx context.Context, below int) ([]LowStockItem, error) {
	var rows []LowStockItem
	err := r.db.WithContext(ctx).
		Model(&models.Drug{}).
		Select("name, quantity, price").
		Where("quantity < ?", below).
		Order("quantity ASC, name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) TopValue(ctx context.Context, limit int) ([]DrugValue, error) {
	var rows []DrugValue
	if err := r.db.WithContext(ctx).Raw(topValueSQL, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ByCategory(ctx context.Context) ([]CategoryValue, error) {
	var rows []CategoryValue
	if err := r.db.WithContext(ctx).Raw(byCategorySQL).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// WeeklyTotals counts purchase lines, distinct customers and revenue since the day.
func (r *Repository) WeeklyTotals(ctx context.Context, since string) (WeeklyTotals, error) {
	var out WeeklyTotals
	err := r.db.WithContext(ctx).Raw(weeklyTotalsSQL, since).Scan(&out).Error
	return out, err
}

// TopDrug names the most purchased drug since the day, or "" when none sold.
func (r *Repository) TopDrug(ctx context.Context, since string) (string, error) {
	rows, err := r.TopDrugs(ctx, since, 1)
	if err != nil || len(rows) == 0 {
		return "", err
	}
	return rows[0].DrugName, nil
}
