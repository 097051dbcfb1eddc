package rollup

import (
	"context"
	"errors"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"

	"github.com/google/uuid"
)

// MaxConversations bounds the list fetch so recomputation stays cheap.
const MaxConversations = 100

// ImagePreviewToken is the preview shown for image-only messages.
const ImagePreviewToken = "image"

// Store is the slice of the repositories the engine reads from.
type Store interface {
	ListByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]domain.Conversation, error)
	CountUnread(ctx context.Context, conversationID uuid.UUID) (int64, error)
	GetLatest(ctx context.Context, conversationID uuid.UUID) (domain.Message, error)
	MarkConversationRead(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)
}

// Summary is one row of the business's conversation list.
type Summary struct {
	Conversation  domain.Conversation
	UnreadCount   int64
	LatestPreview string
}

// Engine derives per-conversation summary state from raw message rows. Any
// push event scoped to the business invalidates the whole list; the list is
// bounded, so coarse recomputation is cheaper than tracking deltas.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Summaries returns the business's conversation list ordered by
// pinned DESC, updated_at DESC.
func (e *Engine) Summaries(ctx context.Context, businessID uuid.UUID) ([]Summary, error) {
	conversations, err := e.store.ListByBusiness(ctx, businessID, MaxConversations)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(conversations))
	for _, conv := range conversations {
		unread, err := e.store.CountUnread(ctx, conv.ID)
		if err != nil {
			return nil, err
		}

		preview := ""
		latest, err := e.store.GetLatest(ctx, conv.ID)
		switch {
		case err == nil:
			preview = Preview(latest)
		case errors.Is(err, leenk_errors.ErrNotFound):
			// No messages yet; empty preview.
		default:
			return nil, err
		}

		summaries = append(summaries, Summary{
			Conversation:  conv,
			UnreadCount:   unread,
			LatestPreview: preview,
		})
	}
	return summaries, nil
}

// Preview derives the list preview for a message: its text, the image token
// when only an image is set, empty otherwise.
func Preview(m domain.Message) string {
	if m.Content.Valid {
		return m.Content.String
	}
	if m.ImageURL.Valid {
		return ImagePreviewToken
	}
	return ""
}

// MarkMessagesAsRead flips all of the conversation's customer-sent, unread
// messages to read as one logical operation and returns the updated rows.
func (e *Engine) MarkMessagesAsRead(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	return e.store.MarkConversationRead(ctx, conversationID)
}
