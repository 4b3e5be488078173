package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// DrugSales is one drug's sales volume over a window.
type DrugSales struct {
	DrugName string `gorm:"column:drug_name"`
	Orders   int    `gorm:"column:orders"`
	Units    int    `gorm:"column:units"`
}

// StockoutRisk flags a low-stock drug that is still selling.
type StockoutRisk struct {
	DrugName       string  `gorm:"column:drug_name"`
	Stock          int     `gorm:"column:stock"`
	RecentSales    int     `gorm:"column:sales"`
	DaysUntilEmpty float64 `gorm:"-"`
}

type Retention struct {
	TotalCustomers     int `gorm:"column:total_customers"`
	ReturningCustomers int `gorm:"column:returning_customers"`
	Rate               float64
}

type RevenueTrend struct {
	ThisWeek      decimal.Decimal `gorm:"column:this_week"`
	LastWeek      decimal.Decimal `gorm:"column:last_week"`
	GrowthPercent float64
}

type HourCount struct {
	Hour     int
	Messages int
}

type Adherence struct {
	Courses   int `gorm:"column:courses"`
	Completed int `gorm:"column:completed"`
	Rate      float64
}

// Analytics is the predictive insights report.
type Analytics struct {
	GeneratedAt  time.Time
	TopDrugs     []DrugSales
	StockoutRisk []StockoutRisk
	Retention    Retention
	Revenue      RevenueTrend
	PeakHours    []HourCount
	Adherence    Adherence
}

type InventoryOverview struct {
	TotalItems int             `gorm:"column:total_items"`
	TotalValue decimal.Decimal `gorm:"column:total_value"`
	AvgStock   float64         `gorm:"column:avg_stock"`
}

type LowStockItem struct {
	DrugName string          `gorm:"column:name"`
	Quantity int             `gorm:"column:quantity"`
	Price    decimal.Decimal `gorm:"column:price"`
}

type DrugValue struct {
	DrugName   string          `gorm:"column:drug_name"`
	Quantity   int             `gorm:"column:quantity"`
	TotalValue decimal.Decimal `gorm:"column:total_value"`
}

type CategoryValue struct {
	Category      string          `gorm:"column:category"`
	ItemCount     int             `gorm:"column:item_count"`
	TotalQuantity int             `gorm:"column:total_quantity"`
	Value         decimal.Decimal `gorm:"column:category_value"`
}

// InventoryAnalysis is the stock report.
type InventoryAnalysis struct {
	Overview   InventoryOverview
	LowStock   []LowStockItem
	TopValue   []DrugValue
	ByCategory []CategoryValue
}

type WeeklyTotals struct {
	Purchases       int             `gorm:"column:purchases"`
	UniqueCustomers int             `gorm:"column:customers"`
	Revenue         decimal.Decimal `gorm:"column:revenue"`
}

// WeeklySummary covers the trailing seven days.
type WeeklySummary struct {
	WeeklyTotals
	GeneratedAt time.Time
	Week        string
	TopDrug     string
	Messages    int64
	LowStock    []LowStockItem
}
