package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is an append-only inbound chat message.
type Conversation struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID string    `gorm:"column:customer_id;not null"`
	Message    string    `gorm:"column:message;not null"`
	IsAdmin    bool      `gorm:"column:is_admin;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (Conversation) TableName() string { return "conversations" }
