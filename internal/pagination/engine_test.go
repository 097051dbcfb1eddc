package pagination

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves ListBefore from an in-memory slice with the same tuple
// comparison the real store uses.
type fakeStore struct {
	messages []domain.Message
}

func (f *fakeStore) ListBefore(_ context.Context, conversationID uuid.UUID, beforeCreatedAt time.Time, beforeID uuid.UUID, limit int) ([]domain.Message, error) {
	var rows []domain.Message
	for _, m := range f.messages {
		if m.ConversationID != conversationID {
			continue
		}
		if !beforeCreatedAt.IsZero() {
			if m.CreatedAt.After(beforeCreatedAt) {
				continue
			}
			if m.CreatedAt.Equal(beforeCreatedAt) && !idLess(m.ID, beforeID) {
				continue
			}
		}
		rows = append(rows, m)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return idLess(rows[j].ID, rows[i].ID)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func idLess(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func seedMessages(convID uuid.UUID, n int, at func(i int) time.Time) []domain.Message {
	msgs := make([]domain.Message, n)
	for i := 0; i < n; i++ {
		msgs[i] = domain.Message{
			ID:             uuid.New(),
			ConversationID: convID,
			SenderType:     domain.SenderCustomer,
			SenderID:       uuid.New(),
			Content:        sql.NullString{String: fmt.Sprintf("message %d", i), Valid: true},
			Status:         domain.StatusSent,
			CreatedAt:      at(i),
		}
	}
	return msgs
}

func TestFetchPageNewestFirst(t *testing.T) {
	convID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{messages: seedMessages(convID, 50, func(i int) time.Time {
		return base.Add(time.Duration(i) * time.Second)
	})}
	engine := NewEngine(store)

	page, err := engine.FetchPage(context.Background(), convID, nil, DefaultPageSize)
	require.NoError(t, err)

	assert.Len(t, page.Items, DefaultPageSize)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.NextCursor)

	// Oldest first within the page; the page itself is the newest slice.
	for i := 1; i < len(page.Items); i++ {
		assert.True(t, page.Items[i-1].CreatedAt.Before(page.Items[i].CreatedAt))
	}
	assert.Equal(t, "message 49", page.Items[len(page.Items)-1].Content.String)
	assert.Equal(t, page.Items[0].ID, page.NextCursor.ID)
}

func TestFetchPageTraversalCompleteAndDisjoint(t *testing.T) {
	convID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Heavy timestamp collisions: five messages per second. Only the id
	// tie-break keeps page boundaries exact.
	store := &fakeStore{messages: seedMessages(convID, 65, func(i int) time.Time {
		return base.Add(time.Duration(i/5) * time.Second)
	})}
	engine := NewEngine(store)

	seen := make(map[uuid.UUID]bool)
	var cursor *Cursor
	pages := 0
	for {
		page, err := engine.FetchPage(context.Background(), convID, cursor, DefaultPageSize)
		require.NoError(t, err)
		for _, m := range page.Items {
			assert.False(t, seen[m.ID], "message served twice: %s", m.ID)
			seen[m.ID] = true
		}
		pages++
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	assert.Equal(t, 65, len(seen))
	assert.Equal(t, 4, pages)
}

func TestFetchPageEmptyConversation(t *testing.T) {
	engine := NewEngine(&fakeStore{})

	page, err := engine.FetchPage(context.Background(), uuid.New(), nil, DefaultPageSize)
	require.NoError(t, err)

	assert.Empty(t, page.Items)
	assert.Nil(t, page.NextCursor)
	assert.False(t, page.HasMore)
}

func TestFetchPageExactMultiple(t *testing.T) {
	convID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{messages: seedMessages(convID, DefaultPageSize, func(i int) time.Time {
		return base.Add(time.Duration(i) * time.Second)
	})}
	engine := NewEngine(store)

	page, err := engine.FetchPage(context.Background(), convID, nil, DefaultPageSize)
	require.NoError(t, err)
	assert.Len(t, page.Items, DefaultPageSize)
	assert.False(t, page.HasMore)

	// The cursor still points past the oldest row; the next page is empty.
	next, err := engine.FetchPage(context.Background(), convID, page.NextCursor, DefaultPageSize)
	require.NoError(t, err)
	assert.Empty(t, next.Items)
	assert.False(t, next.HasMore)
}

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC), ID: uuid.New()}

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	decoded, err := Decode(string(raw))
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.True(t, c.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, c.ID, decoded.ID)
}

func TestDecodeCursor(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantNil bool
		wantErr bool
	}{
		{name: "empty means first page", raw: "", wantNil: true},
		{name: "garbage", raw: "not-json", wantErr: true},
		{name: "bad timestamp", raw: `{"created_at":"yesterday","id":"` + uuid.New().String() + `"}`, wantErr: true},
		{name: "bad id", raw: `{"created_at":"2026-03-01T12:00:00Z","id":"nope"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Decode(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, c)
			}
		})
	}
}
