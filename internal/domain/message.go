package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Sender types
const (
	SenderBusiness = "business"
	SenderCustomer = "customer"
)

// Message statuses
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// Message represents the messages table. created_at is assigned by the store
// at insertion time and is the sole ordering key; ties are broken by id.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"type:uuid;index:idx_messages_conversation_created,priority:1"`
	SenderType     string    `gorm:"type:varchar(16)"`
	SenderID       uuid.UUID `gorm:"type:uuid"`
	Content        sql.NullString
	ImageURL       sql.NullString
	Status         string         `gorm:"type:varchar(16);default:sent"`
	ReplyToID      uuid.NullUUID  `gorm:"type:uuid"`
	DedupeKey      sql.NullString `gorm:"uniqueIndex:ux_messages_dedupe_key"`
	CreatedAt      time.Time      `gorm:"index:idx_messages_conversation_created,priority:2"`
}

func (Message) TableName() string {
	return "messages"
}

// IsEmpty reports whether the message carries neither text nor an image.
func (m Message) IsEmpty() bool {
	return !m.Content.Valid && !m.ImageURL.Valid
}

// Unread reports whether a customer message still counts toward the unread
// roll-up.
func (m Message) Unread() bool {
	return m.SenderType == SenderCustomer && (m.Status == StatusSent || m.Status == StatusDelivered)
}
