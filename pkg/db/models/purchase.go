package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase records one checked-out line. Course fields are a snapshot of the
// drug at checkout time; dates are calendar days formatted YYYY-MM-DD.
type Purchase struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID          string          `gorm:"column:order_id;not null;uniqueIndex:purchases_order_drug_key,priority:1"`
	CustomerID       string          `gorm:"column:customer_id;not null"`
	DrugName         string          `gorm:"column:drug_name;not null;uniqueIndex:purchases_order_drug_key,priority:2"`
	Quantity         int             `gorm:"column:quantity;not null"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	CourseDays       int             `gorm:"column:course_days;not null;default:0"`
	DosageFrequency  string          `gorm:"column:dosage_frequency;not null;default:''"`
	PurchaseDate     string          `gorm:"column:purchase_date;not null"`
	CourseEndDate    *string         `gorm:"column:course_end_date"`
	LastReminderSent *string         `gorm:"column:last_reminder_sent"`
	RemindersSent    int             `gorm:"column:reminders_sent;not null;default:0"`
	Completed        bool            `gorm:"column:completed;not null;default:false"`
	PurchasedAt      time.Time       `gorm:"column:purchased_at;not null"`
}

func (Purchase) TableName() string { return "purchases" }
