package autoreply

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/feed"
	"github.com/JabulaniUsen/new-leenk/internal/notify"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"
	"github.com/JabulaniUsen/new-leenk/pkg/logger"

	"github.com/google/uuid"
)

// Stores groups the narrow repository surface the trigger needs.
type Stores struct {
	Businesses interface {
		GetByID(ctx context.Context, id uuid.UUID) (domain.Business, error)
	}
	Conversations interface {
		GetByID(ctx context.Context, id uuid.UUID) (domain.Conversation, error)
		Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	}
	Messages interface {
		Create(ctx context.Context, m *domain.Message) error
		HasBusinessMessageWithContent(ctx context.Context, conversationID, senderID uuid.UUID, content string) (bool, error)
	}
}

// Publisher is the slice of the feed publisher the trigger uses.
type Publisher interface {
	PublishMessage(ctx context.Context, eventType string, m domain.Message, businessID uuid.UUID)
}

// Trigger injects the business's away/welcome message into a conversation
// exactly once, ever. Safe to call on every conversation-entry event.
type Trigger struct {
	stores    Stores
	publisher Publisher
	notifier  notify.Notifier
	log       *logger.Logger
}

func NewTrigger(stores Stores, publisher Publisher, notifier notify.Notifier, log *logger.Logger) *Trigger {
	return &Trigger{stores: stores, publisher: publisher, notifier: notifier, log: log}
}

// MaybeSendAway is idempotent: disabled/empty settings, a previously sent
// welcome, or a concurrent duplicate insert all resolve to a no-op. The
// check-then-insert race is closed by the dedupe key's unique index: whichever
// concurrent trigger loses the insert sees a unique violation and backs off.
func (t *Trigger) MaybeSendAway(ctx context.Context, businessID, conversationID uuid.UUID) error {
	biz, err := t.stores.Businesses.GetByID(ctx, businessID)
	if err != nil {
		return err
	}
	content := strings.TrimSpace(biz.AwayMessage)
	if !biz.AwayMessageEnabled || content == "" {
		return nil
	}

	sent, err := t.stores.Messages.HasBusinessMessageWithContent(ctx, conversationID, businessID, content)
	if err != nil {
		return err
	}
	if sent {
		return nil
	}

	conv, err := t.stores.Conversations.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.BusinessID != businessID {
		return leenk_errors.ErrUnauthorized
	}

	msg := domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderType:     domain.SenderBusiness,
		SenderID:       businessID,
		Content:        sql.NullString{String: content, Valid: true},
		Status:         domain.StatusSent,
		DedupeKey:      sql.NullString{String: DedupeKey(conversationID, businessID, content), Valid: true},
		CreatedAt:      time.Now(),
	}
	if err := t.stores.Messages.Create(ctx, &msg); err != nil {
		if errors.Is(err, leenk_errors.ErrAlreadyExists) {
			// Lost the race to a concurrent trigger; the message exists.
			return nil
		}
		return err
	}

	if err := t.stores.Conversations.Touch(ctx, conversationID, msg.CreatedAt); err != nil {
		t.log.Errorf("autoreply: touch conversation %s: %v", conversationID, err)
	}
	t.publisher.PublishMessage(ctx, feed.EventInsert, msg, businessID)
	t.notifier.Notify(ctx, msg, conv, biz)
	return nil
}

// DedupeKey builds the unique key that makes the automated send single-shot
// per (conversation, business, content).
func DedupeKey(conversationID, businessID uuid.UUID, content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("away:%s:%s:%x", conversationID, businessID, sum[:8])
}
