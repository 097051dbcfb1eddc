package httpdto

import (
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/rollup"

	"github.com/google/uuid"
)

type OpenConversationRequest struct {
	BusinessID    string `json:"business_id" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

type UpdateCustomerProfileRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

type PinConversationRequest struct {
	Pinned bool `json:"pinned"`
}

type ConversationResponse struct {
	ID            uuid.UUID `json:"id"`
	BusinessID    uuid.UUID `json:"business_id"`
	CustomerEmail string    `json:"customer_email"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	Pinned        bool      `json:"pinned"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewConversationResponse(c domain.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:            c.ID,
		BusinessID:    c.BusinessID,
		CustomerEmail: c.CustomerEmail,
		CustomerName:  c.CustomerName,
		CustomerPhone: c.CustomerPhone,
		Pinned:        c.Pinned,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

type SummaryResponse struct {
	Conversation  ConversationResponse `json:"conversation"`
	UnreadCount   int64                `json:"unread_count"`
	LatestPreview string               `json:"latest_message_preview"`
}

func NewSummaryResponse(s rollup.Summary) SummaryResponse {
	return SummaryResponse{
		Conversation:  NewConversationResponse(s.Conversation),
		UnreadCount:   s.UnreadCount,
		LatestPreview: s.LatestPreview,
	}
}
