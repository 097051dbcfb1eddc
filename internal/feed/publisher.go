package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Publisher fans change events out over Redis pub/sub. Message events go to
// both the conversation channel and the owning business's channel, so the
// dashboard list view and an open conversation each get their own feed.
type Publisher struct {
	client *redis.Client
	log    *logger.Logger
}

func NewPublisher(client *redis.Client, log *logger.Logger) *Publisher {
	return &Publisher{client: client, log: log}
}

func (p *Publisher) publish(ctx context.Context, ev ChangeEvent, scopes ...Scope) {
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Errorf("feed: marshal event: %v", err)
		return
	}
	for _, scope := range scopes {
		if err := p.client.Publish(ctx, scope.Channel(), data).Err(); err != nil {
			// Push delivery is best effort; clients reconcile via re-fetch.
			p.log.Errorf("feed: publish to %s: %v", scope.Channel(), err)
		}
	}
}

// PublishMessage emits a change event for a message row.
func (p *Publisher) PublishMessage(ctx context.Context, eventType string, m domain.Message, businessID uuid.UUID) {
	rec := RecordFromMessage(m)
	raw, err := json.Marshal(rec)
	if err != nil {
		p.log.Errorf("feed: marshal message record: %v", err)
		return
	}
	ev := ChangeEvent{Type: eventType, Table: TableMessages, OccurredAt: time.Now()}
	if eventType == EventDelete {
		ev.Old = raw
	} else {
		ev.New = raw
	}
	p.publish(ctx, ev,
		ConversationScope(m.ConversationID),
		BusinessScope(businessID),
	)
}

// PublishConversation emits a change event for a conversation row on the
// business channel.
func (p *Publisher) PublishConversation(ctx context.Context, eventType string, c domain.Conversation) {
	rec := RecordFromConversation(c)
	raw, err := json.Marshal(rec)
	if err != nil {
		p.log.Errorf("feed: marshal conversation record: %v", err)
		return
	}
	ev := ChangeEvent{Type: eventType, Table: TableConversations, OccurredAt: time.Now()}
	if eventType == EventDelete {
		ev.Old = raw
	} else {
		ev.New = raw
	}
	p.publish(ctx, ev, BusinessScope(c.BusinessID), ConversationScope(c.ID))
}
