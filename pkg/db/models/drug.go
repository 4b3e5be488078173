package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Drug is one inventory ledger row keyed by its normalized (lowercase) name.
type Drug struct {
	Name            string          `gorm:"column:name;primaryKey"`
	Quantity        int             `gorm:"column:quantity;not null;default:0"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Category        string          `gorm:"column:category;not null;default:''"`
	Description     string          `gorm:"column:description;not null;default:''"`
	CourseDays      int             `gorm:"column:course_days;not null;default:0"`
	DosageFrequency string          `gorm:"column:dosage_frequency;not null;default:'as prescribed'"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Drug) TableName() string { return "drugs" }

// HasCourse reports whether the drug is dispensed as a multi-day course.
func (d Drug) HasCourse() bool {
	return d.CourseDays > 0
}
