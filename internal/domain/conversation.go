package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation represents the conversations table. At most one conversation
// exists per (business_id, customer_email) pair; find-or-create relies on the
// composite unique index. updated_at is bumped on every message insert and is
// the conversation list's primary sort key.
type Conversation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessID    uuid.UUID `gorm:"type:uuid;uniqueIndex:ux_conversations_business_customer,priority:1"`
	CustomerEmail string    `gorm:"uniqueIndex:ux_conversations_business_customer,priority:2"`
	CustomerName  string
	CustomerPhone string
	Pinned        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Conversation) TableName() string {
	return "conversations"
}
