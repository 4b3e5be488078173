package conversations

import (
	"context"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository appends to and reads the conversation log.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append inserts one message. Rows are never updated.
func (r *Repository) Append(ctx context.Context, entry *models.Conversation) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// Recent returns the customer's latest messages, newest first.
func (r *Repository) Recent(ctx context.Context, customerID string, limit int) ([]models.Conversation, error) {
	var rows []models.Conversation
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
