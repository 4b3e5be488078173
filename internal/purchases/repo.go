package purchases

import (
	"context"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists purchase history and its reminder bookkeeping.
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

// Create inserts a purchase row.
func (r *Repository) Create(ctx context.Context, purchase *models.Purchase) error {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(purchase).Error
}

// FindByID loads a purchase. Returns gorm.ErrRecordNotFound when absent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// RecentByCustomer returns the customer's latest purchases, newest first.
func (r *Repository) RecentByCustomer(ctx context.Context, customerID string, limit int) ([]models.Purchase, error) {
	var rows []models.Purchase
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("purchased_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReminderCandidates returns open course purchases that may owe a reminder
// today: not completed, inside the checkup window and not yet reminded today.
func (r *Repository) ReminderCandidates(ctx context.Context, today, windowStart string) ([]models.Purchase, error) {
	var rows []models.Purchase
	err := r.db.WithContext(ctx).
		Where("completed = ? AND course_days > 0", false).
		Where("course_end_date IS NOT NULL AND course_end_date >= ?", windowStart).
		Where("(last_reminder_sent IS NULL OR last_reminder_sent < ?)", today).
		Order("purchase_date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkReminded records a reminder for today, guarded by the same predicate as
// ReminderCandidates so a concurrent run cannot record the day twice. It
// reports false when another run got there first.
func (r *Repository) MarkReminded(ctx context.Context, id uuid.UUID, today string, complete bool) (bool, error) {
	updates := map[string]any{
		"last_reminder_sent": today,
		"reminders_sent":     gorm.Expr("reminders_sent + 1"),
	}
	if complete {
		updates["completed"] = true
	}
	res := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ? AND completed = ?", id, false).
		Where("(last_reminder_sent IS NULL OR last_reminder_sent < ?)", today).
		UpdateColumns(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
