package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/feed"
	"github.com/JabulaniUsen/new-leenk/internal/repository"
	"github.com/JabulaniUsen/new-leenk/internal/rollup"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"
	"github.com/JabulaniUsen/new-leenk/pkg/logger"

	"github.com/google/uuid"
)

type ConversationService struct {
	conversations repository.ConversationRepository
	rollup        *rollup.Engine
	publisher     *feed.Publisher
	log           *logger.Logger
}

func NewConversationService(
	conversations repository.ConversationRepository,
	rollupEngine *rollup.Engine,
	publisher *feed.Publisher,
	log *logger.Logger,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		rollup:        rollupEngine,
		publisher:     publisher,
		log:           log,
	}
}

// FindOrCreate returns the business's conversation for the customer,
// creating it when absent. The (business_id, customer_email) unique index is
// the authority: a concurrent create resolves by re-reading the winner's row.
func (s *ConversationService) FindOrCreate(ctx context.Context, businessID uuid.UUID, customerEmail, customerName, customerPhone string) (domain.Conversation, bool, error) {
	customerEmail = strings.ToLower(strings.TrimSpace(customerEmail))
	if customerEmail == "" {
		return domain.Conversation{}, false, leenk_errors.ErrInvalidInput
	}

	conv, err := s.conversations.GetByBusinessAndEmail(ctx, businessID, customerEmail)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, leenk_errors.ErrNotFound) {
		return domain.Conversation{}, false, err
	}

	conv = domain.Conversation{
		ID:            uuid.New(),
		BusinessID:    businessID,
		CustomerEmail: customerEmail,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := s.conversations.Create(ctx, &conv); err != nil {
		if errors.Is(err, leenk_errors.ErrAlreadyExists) {
			existing, rerr := s.conversations.GetByBusinessAndEmail(ctx, businessID, customerEmail)
			if rerr != nil {
				return domain.Conversation{}, false, rerr
			}
			return existing, false, nil
		}
		return domain.Conversation{}, false, err
	}

	s.publisher.PublishConversation(ctx, feed.EventInsert, conv)
	return conv, true, nil
}

func (s *ConversationService) Get(ctx context.Context, businessID, conversationID uuid.UUID) (domain.Conversation, error) {
	return s.owned(ctx, businessID, conversationID)
}

// Summaries renders the business's conversation list: pinned first, then by
// liveness.
func (s *ConversationService) Summaries(ctx context.Context, businessID uuid.UUID) ([]rollup.Summary, error) {
	return s.rollup.Summaries(ctx, businessID)
}

// SetPinned toggles a conversation's pin.
func (s *ConversationService) SetPinned(ctx context.Context, businessID, conversationID uuid.UUID, pinned bool) error {
	conv, err := s.owned(ctx, businessID, conversationID)
	if err != nil {
		return err
	}
	if err := s.conversations.SetPinned(ctx, conversationID, pinned); err != nil {
		return err
	}
	conv.Pinned = pinned
	s.publisher.PublishConversation(ctx, feed.EventUpdate, conv)
	return nil
}

// UpdateProfile edits the customer-facing fields.
func (s *ConversationService) UpdateProfile(ctx context.Context, businessID, conversationID uuid.UUID, customerName, customerPhone string) (domain.Conversation, error) {
	conv, err := s.owned(ctx, businessID, conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}
	conv.CustomerName = customerName
	conv.CustomerPhone = customerPhone
	if err := s.conversations.Update(ctx, conv); err != nil {
		return domain.Conversation{}, err
	}
	s.publisher.PublishConversation(ctx, feed.EventUpdate, conv)
	return conv, nil
}

// MarkRead flips all unread customer messages to read as one logical
// operation and pushes the per-row updates so open timelines converge.
func (s *ConversationService) MarkRead(ctx context.Context, businessID, conversationID uuid.UUID) (int, error) {
	conv, err := s.owned(ctx, businessID, conversationID)
	if err != nil {
		return 0, err
	}
	updated, err := s.rollup.MarkMessagesAsRead(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	for _, msg := range updated {
		s.publisher.PublishMessage(ctx, feed.EventUpdate, msg, conv.BusinessID)
	}
	return len(updated), nil
}

// Delete cascades: messages first, then the conversation row. A send racing
// the delete fails afterward with not found.
func (s *ConversationService) Delete(ctx context.Context, businessID, conversationID uuid.UUID) error {
	conv, err := s.owned(ctx, businessID, conversationID)
	if err != nil {
		return err
	}
	if err := s.conversations.DeleteWithMessages(ctx, conversationID); err != nil {
		return err
	}
	s.publisher.PublishConversation(ctx, feed.EventDelete, conv)
	return nil
}

func (s *ConversationService) owned(ctx context.Context, businessID, conversationID uuid.UUID) (domain.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if conv.BusinessID != businessID {
		return domain.Conversation{}, leenk_errors.ErrUnauthorized
	}
	return conv, nil
}
