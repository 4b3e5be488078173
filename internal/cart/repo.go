package cart

import (
	"context"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists per-customer cart lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Increment inserts the (customer, drug) line or adds qty to the existing one.
func (r *Repository) Increment(ctx context.Context, customerID, drugName string, qty int) error {
	line := models.CartLine{CustomerID: customerID, DrugName: drugName, Quantity: qty}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "customer_id"}, {Name: "drug_name"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_lines.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(&line).Error
}

// Line is a cart line joined with the live drug row.
type Line struct {
	DrugName        string
	Quantity        int
	Price           decimal.Decimal
	Category        string
	CourseDays      int
	DosageFrequency string
	InStock         int
	AddedAt         time.Time
}

// ListDetailed returns the customer's lines joined with current drug data,
// oldest first.
func (r *Repository) ListDetailed(ctx context.Context, customerID string) ([]Line, error) {
	var lines []Line
	err := r.db.WithContext(ctx).
		Table("cart_lines AS c").
		Select(`c.drug_name AS drug_name, c.quantity AS quantity, d.price AS price,
			d.category AS category, d.course_days AS course_days,
			d.dosage_frequency AS dosage_frequency, d.quantity AS in_stock, c.created_at AS added_at`).
		Joins("JOIN drugs AS d ON d.name = c.drug_name").
		Where("c.customer_id = ?", customerID).
		Order("c.created_at ASC, c.drug_name ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// Clear deletes every line for the customer.
func (r *Repository) Clear(ctx context.Context, customerID string) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&models.CartLine{}).Error
}
