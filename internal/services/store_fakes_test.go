package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/feed"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"
	"github.com/JabulaniUsen/new-leenk/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// memStore is an in-memory stand-in for the relational store, shared by the
// per-table repository fakes.
type memStore struct {
	mu            sync.Mutex
	businesses    map[uuid.UUID]domain.Business
	conversations map[uuid.UUID]domain.Conversation
	messages      map[uuid.UUID]domain.Message
}

func newMemStore() *memStore {
	return &memStore{
		businesses:    make(map[uuid.UUID]domain.Business),
		conversations: make(map[uuid.UUID]domain.Conversation),
		messages:      make(map[uuid.UUID]domain.Message),
	}
}

// testPublisher returns a real publisher whose Redis client points nowhere;
// publish failures are logged and swallowed, which is the production contract.
func testPublisher() *feed.Publisher {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	return feed.NewPublisher(client, logger.NewNop())
}

type memBusinessRepo struct{ s *memStore }

func (r memBusinessRepo) Create(_ context.Context, b *domain.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.businesses {
		if existing.Email == b.Email {
			return leenk_errors.ErrAlreadyExists
		}
	}
	r.s.businesses[b.ID] = *b
	return nil
}

func (r memBusinessRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.businesses[id]
	if !ok {
		return domain.Business{}, leenk_errors.ErrNotFound
	}
	return b, nil
}

func (r memBusinessRepo) GetByEmail(_ context.Context, email string) (domain.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.businesses {
		if b.Email == email {
			return b, nil
		}
	}
	return domain.Business{}, leenk_errors.ErrNotFound
}

func (r memBusinessRepo) Update(_ context.Context, b domain.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.businesses[b.ID]; !ok {
		return leenk_errors.ErrNotFound
	}
	r.s.businesses[b.ID] = b
	return nil
}

type memConversationRepo struct{ s *memStore }

func (r memConversationRepo) Create(_ context.Context, c *domain.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.conversations {
		if existing.BusinessID == c.BusinessID && existing.CustomerEmail == c.CustomerEmail {
			return leenk_errors.ErrAlreadyExists
		}
	}
	r.s.conversations[c.ID] = *c
	return nil
}

func (r memConversationRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.conversations[id]
	if !ok {
		return domain.Conversation{}, leenk_errors.ErrNotFound
	}
	return c, nil
}

func (r memConversationRepo) GetByBusinessAndEmail(_ context.Context, businessID uuid.UUID, customerEmail string) (domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.conversations {
		if c.BusinessID == businessID && c.CustomerEmail == customerEmail {
			return c, nil
		}
	}
	return domain.Conversation{}, leenk_errors.ErrNotFound
}

func (r memConversationRepo) Update(_ context.Context, c domain.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.conversations[c.ID]; !ok {
		return leenk_errors.ErrNotFound
	}
	r.s.conversations[c.ID] = c
	return nil
}

func (r memConversationRepo) SetPinned(_ context.Context, id uuid.UUID, pinned bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.conversations[id]
	if !ok {
		return leenk_errors.ErrNotFound
	}
	c.Pinned = pinned
	r.s.conversations[id] = c
	return nil
}

func (r memConversationRepo) Touch(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.conversations[id]
	if !ok {
		return leenk_errors.ErrNotFound
	}
	c.UpdatedAt = at
	r.s.conversations[id] = c
	return nil
}

func (r memConversationRepo) ListByBusiness(_ context.Context, businessID uuid.UUID, limit int) ([]domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Conversation
	for _, c := range r.s.conversations {
		if c.BusinessID == businessID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memConversationRepo) DeleteWithMessages(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.conversations[id]; !ok {
		return leenk_errors.ErrNotFound
	}
	delete(r.s.conversations, id)
	for msgID, m := range r.s.messages {
		if m.ConversationID == id {
			delete(r.s.messages, msgID)
		}
	}
	return nil
}

type memMessageRepo struct{ s *memStore }

func (r memMessageRepo) Create(_ context.Context, m *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.DedupeKey.Valid {
		for _, existing := range r.s.messages {
			if existing.DedupeKey.Valid && existing.DedupeKey.String == m.DedupeKey.String {
				return leenk_errors.ErrAlreadyExists
			}
		}
	}
	r.s.messages[m.ID] = *m
	return nil
}

func (r memMessageRepo) CreateBatch(_ context.Context, msgs []domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range msgs {
		r.s.messages[m.ID] = m
	}
	return nil
}

func (r memMessageRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok {
		return domain.Message{}, leenk_errors.ErrNotFound
	}
	return m, nil
}

func (r memMessageRepo) Update(_ context.Context, m domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.messages[m.ID]; !ok {
		return leenk_errors.ErrNotFound
	}
	r.s.messages[m.ID] = m
	return nil
}

func (r memMessageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.messages[id]; !ok {
		return leenk_errors.ErrNotFound
	}
	delete(r.s.messages, id)
	return nil
}

func (r memMessageRepo) ListBefore(_ context.Context, conversationID uuid.UUID, beforeCreatedAt time.Time, beforeID uuid.UUID, limit int) ([]domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Message
	for _, m := range r.s.messages {
		if m.ConversationID != conversationID {
			continue
		}
		if !beforeCreatedAt.IsZero() {
			if m.CreatedAt.After(beforeCreatedAt) {
				continue
			}
			if m.CreatedAt.Equal(beforeCreatedAt) && m.ID.String() >= beforeID.String() {
				continue
			}
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memMessageRepo) CountUnread(_ context.Context, conversationID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.messages {
		if m.ConversationID == conversationID && m.SenderType == domain.SenderCustomer && m.Status != domain.StatusRead {
			n++
		}
	}
	return n, nil
}

func (r memMessageRepo) GetLatest(_ context.Context, conversationID uuid.UUID) (domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *domain.Message
	for _, m := range r.s.messages {
		if m.ConversationID != conversationID {
			continue
		}
		m := m
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) {
			latest = &m
		}
	}
	if latest == nil {
		return domain.Message{}, leenk_errors.ErrNotFound
	}
	return *latest, nil
}

func (r memMessageRepo) MarkConversationRead(_ context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var updated []domain.Message
	for id, m := range r.s.messages {
		if m.ConversationID == conversationID && m.SenderType == domain.SenderCustomer && m.Status != domain.StatusRead {
			m.Status = domain.StatusRead
			r.s.messages[id] = m
			updated = append(updated, m)
		}
	}
	return updated, nil
}

func (r memMessageRepo) HasBusinessMessageWithContent(_ context.Context, conversationID, senderID uuid.UUID, content string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages {
		if m.ConversationID == conversationID &&
			m.SenderType == domain.SenderBusiness &&
			m.SenderID == senderID &&
			m.Content.Valid && m.Content.String == content {
			return true, nil
		}
	}
	return false, nil
}
