package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/rollup"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"
	"github.com/JabulaniUsen/new-leenk/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type convRollupStore struct {
	conversations memConversationRepo
	messages      memMessageRepo
}

func (s convRollupStore) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]domain.Conversation, error) {
	return s.conversations.ListByBusiness(ctx, businessID, limit)
}

func (s convRollupStore) CountUnread(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	return s.messages.CountUnread(ctx, conversationID)
}

func (s convRollupStore) GetLatest(ctx context.Context, conversationID uuid.UUID) (domain.Message, error) {
	return s.messages.GetLatest(ctx, conversationID)
}

func (s convRollupStore) MarkConversationRead(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	return s.messages.MarkConversationRead(ctx, conversationID)
}

func newConversationService(store *memStore) *ConversationService {
	convRepo := memConversationRepo{s: store}
	msgRepo := memMessageRepo{s: store}
	engine := rollup.NewEngine(convRollupStore{conversations: convRepo, messages: msgRepo})
	return NewConversationService(convRepo, engine, testPublisher(), logger.NewNop())
}

func TestFindOrCreateConversation(t *testing.T) {
	store := newMemStore()
	svc := newConversationService(store)
	businessID := uuid.New()

	conv, created, err := svc.FindOrCreate(context.Background(), businessID, "  Customer@Example.COM ", "Pat", "+123")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "customer@example.com", conv.CustomerEmail)
	assert.Equal(t, "Pat", conv.CustomerName)

	// Same identity in a different casing resolves to the same conversation.
	again, created, err := svc.FindOrCreate(context.Background(), businessID, "customer@example.com", "", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, conv.ID, again.ID)
	assert.Len(t, store.conversations, 1)
}

func TestFindOrCreateRejectsEmptyEmail(t *testing.T) {
	svc := newConversationService(newMemStore())

	_, _, err := svc.FindOrCreate(context.Background(), uuid.New(), "   ", "", "")
	assert.ErrorIs(t, err, leenk_errors.ErrInvalidInput)
}

func TestFindOrCreateSeparatesBusinesses(t *testing.T) {
	store := newMemStore()
	svc := newConversationService(store)

	a, _, err := svc.FindOrCreate(context.Background(), uuid.New(), "c@example.com", "", "")
	require.NoError(t, err)
	b, _, err := svc.FindOrCreate(context.Background(), uuid.New(), "c@example.com", "", "")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, store.conversations, 2)
}

func TestConversationOwnership(t *testing.T) {
	store := newMemStore()
	svc := newConversationService(store)
	businessID := uuid.New()

	conv, _, err := svc.FindOrCreate(context.Background(), businessID, "c@example.com", "", "")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), conv.ID)
	assert.ErrorIs(t, err, leenk_errors.ErrUnauthorized)

	err = svc.SetPinned(context.Background(), uuid.New(), conv.ID, true)
	assert.ErrorIs(t, err, leenk_errors.ErrUnauthorized)

	err = svc.Delete(context.Background(), uuid.New(), conv.ID)
	assert.ErrorIs(t, err, leenk_errors.ErrUnauthorized)

	got, err := svc.Get(context.Background(), businessID, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
}

func TestSummariesOrderAndRollup(t *testing.T) {
	store := newMemStore()
	svc := newConversationService(store)
	businessID := uuid.New()

	quiet, _, err := svc.FindOrCreate(context.Background(), businessID, "quiet@example.com", "", "")
	require.NoError(t, err)
	busy, _, err := svc.FindOrCreate(context.Background(), businessID, "busy@example.com", "", "")
	require.NoError(t, err)

	now := time.Now()
	msgID := uuid.New()
	store.messages[msgID] = domain.Message{
		ID:             msgID,
		ConversationID: busy.ID,
		SenderType:     domain.SenderCustomer,
		Content:        sql.NullString{String: "are you open?", Valid: true},
		Status:         domain.StatusSent,
		CreatedAt:      now,
	}
	require.NoError(t, memConversationRepo{s: store}.Touch(context.Background(), busy.ID, now))

	// Pinning wins over liveness.
	require.NoError(t, svc.SetPinned(context.Background(), businessID, quiet.ID, true))

	summaries, err := svc.Summaries(context.Background(), businessID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, quiet.ID, summaries[0].Conversation.ID)
	assert.Equal(t, busy.ID, summaries[1].Conversation.ID)
	assert.Equal(t, int64(1), summaries[1].UnreadCount)
	assert.Equal(t, "are you open?", summaries[1].LatestPreview)
	assert.Equal(t, int64(0), summaries[0].UnreadCount)
}

func TestMarkRead(t *testing.T) {
	store := newMemStore()
	svc := newConversationService(store)
	businessID := uuid.New()

	conv, _, err := svc.FindOrCreate(context.Background(), businessID, "c@example.com", "", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		id := uuid.New()
		store.messages[id] = domain.Message{
			ID:             id,
			ConversationID: conv.ID,
			SenderType:     domain.SenderCustomer,
			Content:        sql.NullString{String: "ping", Valid: true},
			Status:         domain.StatusSent,
			CreatedAt:      time.Now(),
		}
	}

	updated, err := svc.MarkRead(context.Background(), businessID, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	// Idempotent: a second pass finds nothing unread.
	updated, err = svc.MarkRead(context.Background(), businessID, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}

func TestDeleteConversationCascades(t *testing.T) {
	store := newMemStore()
	svc := newConversationService(store)
	businessID := uuid.New()

	conv, _, err := svc.FindOrCreate(context.Background(), businessID, "c@example.com", "", "")
	require.NoError(t, err)

	id := uuid.New()
	store.messages[id] = domain.Message{ID: id, ConversationID: conv.ID, Status: domain.StatusSent}

	require.NoError(t, svc.Delete(context.Background(), businessID, conv.ID))
	assert.Empty(t, store.conversations)
	assert.Empty(t, store.messages)

	err = svc.Delete(context.Background(), businessID, conv.ID)
	assert.ErrorIs(t, err, leenk_errors.ErrNotFound)
}
