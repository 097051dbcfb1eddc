package feed

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"

	"github.com/google/uuid"
)

// Change event types, mirroring what the backing feed delivers.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Table names carried on events.
const (
	TableMessages      = "messages"
	TableConversations = "conversations"
)

// Redis channel prefixes.
const (
	ChannelPrefixConversation = "channel:conversation:"
	ChannelPrefixBusiness     = "channel:business:"
)

// ChangeEvent is one row-level change notification. New carries the row after
// the change (INSERT/UPDATE), Old the row before it (DELETE). Events arrive
// at-least-once with no ordering guarantee across rows; consumers must
// de-duplicate and re-order.
type ChangeEvent struct {
	Type       string          `json:"type"`
	Table      string          `json:"table"`
	New        json.RawMessage `json:"new,omitempty"`
	Old        json.RawMessage `json:"old,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// MessageRecord is the wire form of a message row.
type MessageRecord struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	SenderType     string     `json:"sender_type"`
	SenderID       uuid.UUID  `json:"sender_id"`
	Content        *string    `json:"content,omitempty"`
	ImageURL       *string    `json:"image_url,omitempty"`
	Status         string     `json:"status"`
	ReplyToID      *uuid.UUID `json:"reply_to_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ConversationRecord is the wire form of a conversation row.
type ConversationRecord struct {
	ID            uuid.UUID `json:"id"`
	BusinessID    uuid.UUID `json:"business_id"`
	CustomerEmail string    `json:"customer_email"`
	CustomerName  string    `json:"customer_name"`
	Pinned        bool      `json:"pinned"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func RecordFromMessage(m domain.Message) MessageRecord {
	rec := MessageRecord{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderType:     m.SenderType,
		SenderID:       m.SenderID,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
	}
	if m.Content.Valid {
		content := m.Content.String
		rec.Content = &content
	}
	if m.ImageURL.Valid {
		imageURL := m.ImageURL.String
		rec.ImageURL = &imageURL
	}
	if m.ReplyToID.Valid {
		replyTo := m.ReplyToID.UUID
		rec.ReplyToID = &replyTo
	}
	return rec
}

func (r MessageRecord) ToDomain() domain.Message {
	m := domain.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		SenderType:     r.SenderType,
		SenderID:       r.SenderID,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
	}
	if r.Content != nil {
		m.Content = sql.NullString{String: *r.Content, Valid: true}
	}
	if r.ImageURL != nil {
		m.ImageURL = sql.NullString{String: *r.ImageURL, Valid: true}
	}
	if r.ReplyToID != nil {
		m.ReplyToID = uuid.NullUUID{UUID: *r.ReplyToID, Valid: true}
	}
	return m
}

func RecordFromConversation(c domain.Conversation) ConversationRecord {
	return ConversationRecord{
		ID:            c.ID,
		BusinessID:    c.BusinessID,
		CustomerEmail: c.CustomerEmail,
		CustomerName:  c.CustomerName,
		Pinned:        c.Pinned,
		UpdatedAt:     c.UpdatedAt,
	}
}

// DecodeMessage extracts the message row carried on the event. For DELETE
// events the old row is used.
func DecodeMessage(ev ChangeEvent) (domain.Message, error) {
	raw := ev.New
	if ev.Type == EventDelete {
		raw = ev.Old
	}
	var rec MessageRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Message{}, err
	}
	return rec.ToDomain(), nil
}

// Scope identifies one push channel: a single conversation, or all of a
// business's conversations.
type Scope struct {
	channel string
}

func ConversationScope(id uuid.UUID) Scope {
	return Scope{channel: ChannelPrefixConversation + id.String()}
}

func BusinessScope(id uuid.UUID) Scope {
	return Scope{channel: ChannelPrefixBusiness + id.String()}
}

func (s Scope) Channel() string {
	return s.channel
}
