package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/feed"
	"github.com/JabulaniUsen/new-leenk/internal/repository"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"
	"github.com/JabulaniUsen/new-leenk/pkg/logger"

	"github.com/google/uuid"
)

// BroadcastService sends one message to every conversation of a business as
// a single batch insert.
type BroadcastService struct {
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
	publisher     *feed.Publisher
	log           *logger.Logger
}

func NewBroadcastService(
	messages repository.MessageRepository,
	conversations repository.ConversationRepository,
	publisher *feed.Publisher,
	log *logger.Logger,
) *BroadcastService {
	return &BroadcastService{
		messages:      messages,
		conversations: conversations,
		publisher:     publisher,
		log:           log,
	}
}

// Send inserts the broadcast into every conversation. Each copy is its own
// row with its own id; every target conversation's updated_at is bumped.
func (s *BroadcastService) Send(ctx context.Context, businessID uuid.UUID, content string) (int, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, leenk_errors.ErrEmptyMessage
	}

	conversations, err := s.conversations.ListByBusiness(ctx, businessID, 0)
	if err != nil {
		return 0, err
	}
	if len(conversations) == 0 {
		return 0, nil
	}

	now := time.Now()
	msgs := make([]domain.Message, len(conversations))
	for i, conv := range conversations {
		msgs[i] = domain.Message{
			ID:             uuid.New(),
			ConversationID: conv.ID,
			SenderType:     domain.SenderBusiness,
			SenderID:       businessID,
			Content:        sql.NullString{String: content, Valid: true},
			Status:         domain.StatusSent,
			CreatedAt:      now,
		}
	}
	if err := s.messages.CreateBatch(ctx, msgs); err != nil {
		return 0, err
	}

	for i, conv := range conversations {
		if err := s.conversations.Touch(ctx, conv.ID, now); err != nil {
			s.log.Errorf("broadcast: touch conversation %s: %v", conv.ID, err)
		}
		s.publisher.PublishMessage(ctx, feed.EventInsert, msgs[i], businessID)
	}
	return len(msgs), nil
}
