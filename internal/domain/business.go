package domain

import (
	"time"

	"github.com/google/uuid"
)

// Business represents the businesses table. away_message and
// away_message_enabled govern the automated welcome trigger.
type Business struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email              string    `gorm:"uniqueIndex"`
	PasswordHash       string
	BusinessName       string
	Phone              string
	Address            string
	BusinessLogo       string
	Online             bool
	AwayMessage        string
	AwayMessageEnabled bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (Business) TableName() string {
	return "businesses"
}
