package reconcile

import (
	"bytes"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/feed"

	"github.com/google/uuid"
)

// State of one timeline entry.
type State int

const (
	// StatePending is an optimistic local send awaiting server confirmation.
	// The entry carries a client-assigned temporary id.
	StatePending State = iota
	// StateConfirmed means the server id is known, via push INSERT or the
	// send response, whichever lands first.
	StateConfirmed
	// StateEdited is set when an UPDATE push lands on a confirmed entry.
	StateEdited
	// StateFailed is terminal: the send errored after optimistic insertion.
	// The entry stays in the sequence with the error attached.
	StateFailed
)

// Entry is one message in the visible sequence.
type Entry struct {
	Message domain.Message
	State   State
	LocalID uuid.UUID
	SendErr error
}

// DefaultMatchWindow bounds how far apart a pending entry's local timestamp
// and a pushed row's server timestamp may be and still be the same send.
const DefaultMatchWindow = 30 * time.Second

// Timeline holds one conversation's visible message sequence: ordered by
// (created_at, id) ascending at all times, de-duplicated by server id, with
// deletions tombstoned so a late-arriving page cannot resurrect a deleted row.
//
// Timeline is not safe for concurrent use; Session serializes access.
type Timeline struct {
	conversationID uuid.UUID
	matchWindow    time.Duration
	entries        []Entry
	tombstones     map[uuid.UUID]struct{}
}

func NewTimeline(conversationID uuid.UUID) *Timeline {
	return &Timeline{
		conversationID: conversationID,
		matchWindow:    DefaultMatchWindow,
		tombstones:     make(map[uuid.UUID]struct{}),
	}
}

func messageLess(a, b domain.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// Messages returns a copy of the visible sequence, oldest first.
func (t *Timeline) Messages() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Timeline) Len() int {
	return len(t.entries)
}

// ApplyPage merges one page of history into the sequence. Pages may arrive in
// any order relative to push events; merge position depends only on
// (created_at, id).
func (t *Timeline) ApplyPage(msgs []domain.Message) {
	for _, m := range msgs {
		t.upsert(m)
	}
}

// ApplyEvent merges one push notification. Events for other tables or other
// conversations are ignored; list-level reactions are the roll-up engine's
// job, not this layer's.
func (t *Timeline) ApplyEvent(ev feed.ChangeEvent) error {
	if ev.Table != feed.TableMessages {
		return nil
	}
	m, err := feed.DecodeMessage(ev)
	if err != nil {
		return err
	}
	if m.ConversationID != t.conversationID {
		return nil
	}

	switch ev.Type {
	case feed.EventInsert:
		t.upsert(m)
	case feed.EventUpdate:
		if _, gone := t.tombstones[m.ID]; gone {
			return nil
		}
		if i := t.indexOf(m.ID); i >= 0 {
			t.entries[i].Message = m
			t.entries[i].State = StateEdited
		}
		// An UPDATE for a row outside the loaded window is dropped; the row
		// arrives with its page when the user scrolls back.
	case feed.EventDelete:
		t.tombstones[m.ID] = struct{}{}
		if i := t.indexOf(m.ID); i >= 0 {
			t.remove(i)
		}
	}
	return nil
}

// AppendPending inserts an optimistic local send under a client-assigned
// temporary id.
func (t *Timeline) AppendPending(localID uuid.UUID, m domain.Message) {
	m.ID = localID
	t.insertSorted(Entry{Message: m, State: StatePending, LocalID: localID})
}

// Confirm resolves a pending entry to its server row, typically from the send
// response. If a push INSERT already confirmed it, this is a no-op for the
// sequence beyond dropping any leftover pending entry.
func (t *Timeline) Confirm(localID uuid.UUID, server domain.Message) {
	if i := t.indexOfLocal(localID); i >= 0 {
		t.remove(i)
	}
	if t.indexOf(server.ID) >= 0 {
		return
	}
	if _, gone := t.tombstones[server.ID]; gone {
		return
	}
	t.insertSorted(Entry{Message: server, State: StateConfirmed, LocalID: localID})
}

// Fail marks a pending send as failed. The entry is retained with an error
// marker, never silently dropped.
func (t *Timeline) Fail(localID uuid.UUID, sendErr error) {
	if i := t.indexOfLocal(localID); i >= 0 {
		t.entries[i].State = StateFailed
		t.entries[i].SendErr = sendErr
	}
}

// upsert merges one server row into the sequence, de-duplicating against rows
// already present and against pending optimistic sends.
func (t *Timeline) upsert(m domain.Message) {
	if _, gone := t.tombstones[m.ID]; gone {
		return
	}
	if i := t.indexOf(m.ID); i >= 0 {
		t.entries[i].Message = m
		return
	}
	if i := t.matchPending(m); i >= 0 {
		localID := t.entries[i].LocalID
		t.remove(i)
		t.insertSorted(Entry{Message: m, State: StateConfirmed, LocalID: localID})
		return
	}
	t.insertSorted(Entry{Message: m, State: StateConfirmed})
}

// matchPending finds a pending entry that is the same send as the given
// server row: same sender and payload, timestamps within the match window.
func (t *Timeline) matchPending(m domain.Message) int {
	for i, e := range t.entries {
		if e.State != StatePending {
			continue
		}
		if e.Message.SenderID != m.SenderID || e.Message.SenderType != m.SenderType {
			continue
		}
		if e.Message.Content != m.Content || e.Message.ImageURL != m.ImageURL {
			continue
		}
		delta := m.CreatedAt.Sub(e.Message.CreatedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= t.matchWindow {
			return i
		}
	}
	return -1
}

func (t *Timeline) indexOf(id uuid.UUID) int {
	for i, e := range t.entries {
		if e.Message.ID == id && e.State != StatePending {
			return i
		}
	}
	return -1
}

func (t *Timeline) indexOfLocal(localID uuid.UUID) int {
	for i, e := range t.entries {
		if e.State == StatePending && e.LocalID == localID {
			return i
		}
	}
	return -1
}

func (t *Timeline) insertSorted(e Entry) {
	pos := len(t.entries)
	for i := range t.entries {
		if messageLess(e.Message, t.entries[i].Message) {
			pos = i
			break
		}
	}
	t.entries = append(t.entries, Entry{})
	copy(t.entries[pos+1:], t.entries[pos:])
	t.entries[pos] = e
}

func (t *Timeline) remove(i int) {
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
}
