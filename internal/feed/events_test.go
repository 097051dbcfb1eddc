package feed

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessage(t *testing.T) {
	m := domain.Message{
		ID:             uuid.New(),
		ConversationID: uuid.New(),
		SenderType:     domain.SenderCustomer,
		SenderID:       uuid.New(),
		Content:        sql.NullString{String: "hello", Valid: true},
		Status:         domain.StatusSent,
		CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
	}
	raw, err := json.Marshal(RecordFromMessage(m))
	require.NoError(t, err)

	t.Run("insert carries the new row", func(t *testing.T) {
		got, err := DecodeMessage(ChangeEvent{Type: EventInsert, Table: TableMessages, New: raw})
		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)
		assert.Equal(t, "hello", got.Content.String)
		assert.False(t, got.ImageURL.Valid)
	})

	t.Run("delete carries the old row", func(t *testing.T) {
		got, err := DecodeMessage(ChangeEvent{Type: EventDelete, Table: TableMessages, Old: raw})
		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)
	})

	t.Run("garbage payload", func(t *testing.T) {
		_, err := DecodeMessage(ChangeEvent{Type: EventInsert, New: json.RawMessage(`{`)})
		assert.Error(t, err)
	})
}

func TestScopeChannels(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "channel:conversation:"+id.String(), ConversationScope(id).Channel())
	assert.Equal(t, "channel:business:"+id.String(), BusinessScope(id).Channel())
}
