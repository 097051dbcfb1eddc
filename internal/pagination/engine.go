package pagination

import (
	"context"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"

	"github.com/google/uuid"
)

// DefaultPageSize is the fixed page size of the message history API.
const DefaultPageSize = 20

// MessageLister is the slice of the store contract the engine needs.
type MessageLister interface {
	ListBefore(ctx context.Context, conversationID uuid.UUID, beforeCreatedAt time.Time, beforeID uuid.UUID, limit int) ([]domain.Message, error)
}

// Page is one page of a conversation's history, oldest first.
type Page struct {
	Items      []domain.Message
	NextCursor *Cursor
	HasMore    bool
}

// Engine computes stable, monotonic pages over a conversation's history.
// Read-only; no side effects.
type Engine struct {
	store MessageLister
}

func NewEngine(store MessageLister) *Engine {
	return &Engine{store: store}
}

// FetchPage returns up to pageSize messages strictly older than cursor
// (newest page when cursor is nil). It probes for pageSize+1 rows to decide
// HasMore; the next cursor is built from the oldest row of the returned page.
func (e *Engine) FetchPage(ctx context.Context, conversationID uuid.UUID, cursor *Cursor, pageSize int) (Page, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var beforeCreatedAt time.Time
	var beforeID uuid.UUID
	if cursor != nil {
		beforeCreatedAt = cursor.CreatedAt
		beforeID = cursor.ID
	}

	rows, err := e.store.ListBefore(ctx, conversationID, beforeCreatedAt, beforeID, pageSize+1)
	if err != nil {
		return Page{}, err
	}

	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}
	if len(rows) == 0 {
		return Page{Items: []domain.Message{}, NextCursor: nil, HasMore: false}, nil
	}

	// Rows arrive newest first; reverse to oldest first for display.
	items := make([]domain.Message, len(rows))
	for i, row := range rows {
		items[len(rows)-1-i] = row
	}

	oldest := items[0]
	return Page{
		Items:      items,
		NextCursor: &Cursor{CreatedAt: oldest.CreatedAt, ID: oldest.ID},
		HasMore:    hasMore,
	}, nil
}
