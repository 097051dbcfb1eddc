package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/feed"
	"github.com/JabulaniUsen/new-leenk/internal/notify"
	"github.com/JabulaniUsen/new-leenk/internal/repository"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"
	"github.com/JabulaniUsen/new-leenk/pkg/logger"

	"github.com/google/uuid"
)

// SendMessageInput is one send from either actor.
type SendMessageInput struct {
	ConversationID uuid.UUID
	SenderType     string
	SenderID       uuid.UUID
	Content        string
	ImageURL       string
	ReplyToID      *uuid.UUID
}

type MessageService struct {
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
	businesses    repository.BusinessRepository
	publisher     *feed.Publisher
	notifier      notify.Notifier
	log           *logger.Logger
}

func NewMessageService(
	messages repository.MessageRepository,
	conversations repository.ConversationRepository,
	businesses repository.BusinessRepository,
	publisher *feed.Publisher,
	notifier notify.Notifier,
	log *logger.Logger,
) *MessageService {
	return &MessageService{
		messages:      messages,
		conversations: conversations,
		businesses:    businesses,
		publisher:     publisher,
		notifier:      notifier,
		log:           log,
	}
}

// Send persists one message, bumps the conversation's liveness timestamp and
// pushes the INSERT to subscribers. created_at is assigned here, on the store
// side; clients never use their local clock for ordering.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (domain.Message, error) {
	conv, err := s.conversations.GetByID(ctx, in.ConversationID)
	if err != nil {
		return domain.Message{}, err
	}
	if in.SenderType == domain.SenderBusiness && in.SenderID != conv.BusinessID {
		return domain.Message{}, leenk_errors.ErrUnauthorized
	}

	content := strings.TrimSpace(in.Content)
	if content == "" && in.ImageURL == "" {
		return domain.Message{}, leenk_errors.ErrEmptyMessage
	}

	msg := domain.Message{
		ID:             uuid.New(),
		ConversationID: in.ConversationID,
		SenderType:     in.SenderType,
		SenderID:       in.SenderID,
		Status:         domain.StatusSent,
		CreatedAt:      time.Now(),
	}
	if content != "" {
		msg.Content = sql.NullString{String: content, Valid: true}
	}
	if in.ImageURL != "" {
		msg.ImageURL = sql.NullString{String: in.ImageURL, Valid: true}
	}
	if in.ReplyToID != nil {
		msg.ReplyToID = uuid.NullUUID{UUID: *in.ReplyToID, Valid: true}
	}

	if err := s.messages.Create(ctx, &msg); err != nil {
		return domain.Message{}, err
	}
	if err := s.conversations.Touch(ctx, conv.ID, msg.CreatedAt); err != nil {
		s.log.Errorf("message: touch conversation %s: %v", conv.ID, err)
	}

	s.publisher.PublishMessage(ctx, feed.EventInsert, msg, conv.BusinessID)

	if in.SenderType == domain.SenderCustomer {
		if biz, err := s.businesses.GetByID(ctx, conv.BusinessID); err == nil {
			s.notifier.Notify(ctx, msg, conv, biz)
		} else {
			s.log.Errorf("message: load business for notify: %v", err)
		}
	}
	return msg, nil
}

// Edit replaces a message's content. Business-only.
func (s *MessageService) Edit(ctx context.Context, businessID, messageID uuid.UUID, content string) (domain.Message, error) {
	msg, conv, err := s.ownedMessage(ctx, businessID, messageID)
	if err != nil {
		return domain.Message{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, leenk_errors.ErrInvalidInput
	}

	msg.Content = sql.NullString{String: content, Valid: true}
	if err := s.messages.Update(ctx, msg); err != nil {
		return domain.Message{}, err
	}
	s.publisher.PublishMessage(ctx, feed.EventUpdate, msg, conv.BusinessID)
	return msg, nil
}

// Delete removes a message. Business-only.
func (s *MessageService) Delete(ctx context.Context, businessID, messageID uuid.UUID) error {
	msg, conv, err := s.ownedMessage(ctx, businessID, messageID)
	if err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, msg.ID); err != nil {
		return err
	}
	s.publisher.PublishMessage(ctx, feed.EventDelete, msg, conv.BusinessID)
	return nil
}

func (s *MessageService) ownedMessage(ctx context.Context, businessID, messageID uuid.UUID) (domain.Message, domain.Conversation, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return domain.Message{}, domain.Conversation{}, err
	}
	conv, err := s.conversations.GetByID(ctx, msg.ConversationID)
	if err != nil {
		return domain.Message{}, domain.Conversation{}, err
	}
	if conv.BusinessID != businessID {
		return domain.Message{}, domain.Conversation{}, leenk_errors.ErrUnauthorized
	}
	return msg, conv, nil
}
