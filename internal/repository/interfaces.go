package repository

import (
	"context"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"

	"github.com/google/uuid"
)

// MessageRepository is the store contract the sync core depends on. Only the
// relational surface the backing store guarantees is exposed: single-row and
// single-batch operations assumed atomic at the store level.
type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	CreateBatch(ctx context.Context, msgs []domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Message, error)
	Update(ctx context.Context, m domain.Message) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ListBefore returns up to limit messages of the conversation strictly
	// older than the (beforeCreatedAt, beforeID) watermark, newest first.
	// A zero beforeCreatedAt means no watermark.
	ListBefore(ctx context.Context, conversationID uuid.UUID, beforeCreatedAt time.Time, beforeID uuid.UUID, limit int) ([]domain.Message, error)

	CountUnread(ctx context.Context, conversationID uuid.UUID) (int64, error)
	GetLatest(ctx context.Context, conversationID uuid.UUID) (domain.Message, error)

	// MarkConversationRead flips all customer-sent, not-yet-read messages of
	// the conversation to read and returns the updated rows.
	MarkConversationRead(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)

	HasBusinessMessageWithContent(ctx context.Context, conversationID, senderID uuid.UUID, content string) (bool, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, c *domain.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Conversation, error)
	GetByBusinessAndEmail(ctx context.Context, businessID uuid.UUID, customerEmail string) (domain.Conversation, error)
	Update(ctx context.Context, c domain.Conversation) error
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error

	// Touch bumps updated_at, the conversation list's primary sort key.
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error

	ListByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]domain.Conversation, error)

	// DeleteWithMessages removes the conversation's messages first, then the
	// conversation row, in one transaction.
	DeleteWithMessages(ctx context.Context, id uuid.UUID) error
}

type BusinessRepository interface {
	Create(ctx context.Context, b *domain.Business) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Business, error)
	GetByEmail(ctx context.Context, email string) (domain.Business, error)
	Update(ctx context.Context, b domain.Business) error
}
