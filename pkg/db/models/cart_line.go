package models

import "time"

// CartLine is a pending order line, unique per (customer, drug).
type CartLine struct {
	CustomerID string    `gorm:"column:customer_id;primaryKey"`
	DrugName   string    `gorm:"column:drug_name;primaryKey"`
	Quantity   int       `gorm:"column:quantity;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartLine) TableName() string { return "cart_lines" }
