package reconcile

import (
	"context"
	"sync"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/feed"
	"github.com/JabulaniUsen/new-leenk/internal/pagination"

	"github.com/google/uuid"
)

// Pager loads pages of conversation history. Satisfied by pagination.Engine.
type Pager interface {
	FetchPage(ctx context.Context, conversationID uuid.UUID, cursor *pagination.Cursor, pageSize int) (pagination.Page, error)
}

// EventStream is a live change feed for one scope.
type EventStream interface {
	Events() <-chan feed.ChangeEvent
	Close()
}

// FeedSource opens event streams. Satisfied by NewFeedSource(feed.Feed); tests
// plug in an in-memory source.
type FeedSource interface {
	Subscribe(ctx context.Context, scope feed.Scope) (EventStream, error)
}

type redisFeedSource struct {
	f *feed.Feed
}

// NewFeedSource adapts the Redis-backed feed to the FeedSource contract.
func NewFeedSource(f *feed.Feed) FeedSource {
	return redisFeedSource{f: f}
}

func (s redisFeedSource) Subscribe(ctx context.Context, scope feed.Scope) (EventStream, error) {
	return s.f.Subscribe(ctx, scope)
}

// Session maintains one client's live, ordered view of a conversation. On
// open it subscribes to the push feed, then loads the newest page; the brief
// overlap between the two paths is absorbed by the timeline's de-duplication.
// Close cancels any in-flight fetch and releases the push channel exactly
// once.
type Session struct {
	conversationID uuid.UUID
	pager          Pager
	stream         EventStream

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	timeline *Timeline
	cursor   *pagination.Cursor
	hasMore  bool
}

// OpenSession starts a live view: subscribe, fetch the newest page, then merge
// push events as they arrive.
func OpenSession(ctx context.Context, pager Pager, feeds FeedSource, conversationID uuid.UUID) (*Session, error) {
	sctx, cancel := context.WithCancel(ctx)

	stream, err := feeds.Subscribe(sctx, feed.ConversationScope(conversationID))
	if err != nil {
		cancel()
		return nil, err
	}

	s := &Session{
		conversationID: conversationID,
		pager:          pager,
		stream:         stream,
		ctx:            sctx,
		cancel:         cancel,
		done:           make(chan struct{}),
		timeline:       NewTimeline(conversationID),
		hasMore:        true,
	}

	page, err := pager.FetchPage(sctx, conversationID, nil, pagination.DefaultPageSize)
	if err != nil {
		stream.Close()
		cancel()
		return nil, err
	}
	s.mu.Lock()
	s.timeline.ApplyPage(page.Items)
	s.cursor = page.NextCursor
	s.hasMore = page.HasMore
	s.mu.Unlock()

	go s.consume()
	return s, nil
}

func (s *Session) consume() {
	defer close(s.done)
	for ev := range s.stream.Events() {
		s.mu.Lock()
		_ = s.timeline.ApplyEvent(ev)
		s.mu.Unlock()
	}
}

// LoadOlder fetches the next page of history and merges it. Returns false when
// the conversation's history is exhausted. A result that lands after Close is
// discarded.
func (s *Session) LoadOlder(ctx context.Context) (bool, error) {
	s.mu.Lock()
	cursor := s.cursor
	hasMore := s.hasMore
	s.mu.Unlock()

	if !hasMore {
		return false, nil
	}

	page, err := s.pager.FetchPage(ctx, s.conversationID, cursor, pagination.DefaultPageSize)
	if err != nil {
		return false, err
	}
	if s.ctx.Err() != nil {
		return false, s.ctx.Err()
	}

	s.mu.Lock()
	s.timeline.ApplyPage(page.Items)
	s.cursor = page.NextCursor
	s.hasMore = page.HasMore
	s.mu.Unlock()
	return page.HasMore, nil
}

// AppendPending records an optimistic local send and returns its temporary id.
func (s *Session) AppendPending(m domain.Message) uuid.UUID {
	localID := uuid.New()
	s.mu.Lock()
	s.timeline.AppendPending(localID, m)
	s.mu.Unlock()
	return localID
}

// Confirm resolves an optimistic send to the server row from the send
// response.
func (s *Session) Confirm(localID uuid.UUID, server domain.Message) {
	s.mu.Lock()
	s.timeline.Confirm(localID, server)
	s.mu.Unlock()
}

// Fail marks an optimistic send as failed; the entry stays visible with the
// error attached.
func (s *Session) Fail(localID uuid.UUID, err error) {
	s.mu.Lock()
	s.timeline.Fail(localID, err)
	s.mu.Unlock()
}

// Messages returns the visible sequence, oldest first.
func (s *Session) Messages() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.Messages()
}

// Close cancels in-flight work and releases the push channel. Safe to call
// more than once.
func (s *Session) Close() {
	s.cancel()
	s.stream.Close()
	<-s.done
}
