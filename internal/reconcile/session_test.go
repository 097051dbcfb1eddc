package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/feed"
	"github.com/JabulaniUsen/new-leenk/internal/pagination"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePager serves canned pages keyed by cursor presence: the nil-cursor page
// first, then older pages in order.
type fakePager struct {
	mu    sync.Mutex
	pages []pagination.Page
	calls int
	err   error
}

func (f *fakePager) FetchPage(_ context.Context, _ uuid.UUID, _ *pagination.Cursor, _ int) (pagination.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return pagination.Page{}, f.err
	}
	if f.calls >= len(f.pages) {
		return pagination.Page{Items: []domain.Message{}}, nil
	}
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

type fakeStream struct {
	events    chan feed.ChangeEvent
	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan feed.ChangeEvent, 16), closed: make(chan struct{})}
}

func (s *fakeStream) Events() <-chan feed.ChangeEvent { return s.events }

func (s *fakeStream) Close() {
	s.closeOnce.Do(func() {
		close(s.events)
		close(s.closed)
	})
}

type fakeFeedSource struct {
	stream *fakeStream
	err    error
}

func (f *fakeFeedSource) Subscribe(context.Context, feed.Scope) (EventStream, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

func page(msgs []domain.Message, hasMore bool) pagination.Page {
	p := pagination.Page{Items: msgs, HasMore: hasMore}
	if len(msgs) > 0 {
		oldest := msgs[0]
		p.NextCursor = &pagination.Cursor{CreatedAt: oldest.CreatedAt, ID: oldest.ID}
	}
	return p
}

func TestOpenSessionLoadsNewestPageAndStreams(t *testing.T) {
	convID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := msg(convID, "first", base)
	second := msg(convID, "second", base.Add(time.Second))

	stream := newFakeStream()
	pager := &fakePager{pages: []pagination.Page{page([]domain.Message{first, second}, false)}}

	s, err := OpenSession(context.Background(), pager, &fakeFeedSource{stream: stream}, convID)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, []string{"first", "second"}, contents(s.Messages()))

	pushed := msg(convID, "pushed", base.Add(2*time.Second))
	stream.events <- insertEvent(t, pushed)

	assert.Eventually(t, func() bool {
		return len(s.Messages()) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"first", "second", "pushed"}, contents(s.Messages()))
}

func TestSessionLoadOlderMergesAndStops(t *testing.T) {
	convID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := msg(convID, "older", base)
	newer := msg(convID, "newer", base.Add(time.Minute))

	stream := newFakeStream()
	pager := &fakePager{pages: []pagination.Page{
		page([]domain.Message{newer}, true),
		page([]domain.Message{older}, false),
	}}

	s, err := OpenSession(context.Background(), pager, &fakeFeedSource{stream: stream}, convID)
	require.NoError(t, err)
	defer s.Close()

	more, err := s.LoadOlder(context.Background())
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, []string{"older", "newer"}, contents(s.Messages()))

	// Exhausted history short-circuits without another fetch.
	more, err = s.LoadOlder(context.Background())
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, 2, pager.calls)
}

func TestSessionOptimisticSendLifecycle(t *testing.T) {
	convID := uuid.New()
	stream := newFakeStream()
	pager := &fakePager{pages: []pagination.Page{page(nil, false)}}

	s, err := OpenSession(context.Background(), pager, &fakeFeedSource{stream: stream}, convID)
	require.NoError(t, err)
	defer s.Close()

	local := msg(convID, "on its way", time.Now())
	localID := s.AppendPending(local)

	entries := s.Messages()
	require.Len(t, entries, 1)
	assert.Equal(t, StatePending, entries[0].State)

	server := local
	server.ID = uuid.New()
	s.Confirm(localID, server)

	entries = s.Messages()
	require.Len(t, entries, 1)
	assert.Equal(t, StateConfirmed, entries[0].State)
	assert.Equal(t, server.ID, entries[0].Message.ID)
}

func TestSessionFailKeepsEntry(t *testing.T) {
	convID := uuid.New()
	stream := newFakeStream()
	pager := &fakePager{pages: []pagination.Page{page(nil, false)}}

	s, err := OpenSession(context.Background(), pager, &fakeFeedSource{stream: stream}, convID)
	require.NoError(t, err)
	defer s.Close()

	localID := s.AppendPending(msg(convID, "doomed", time.Now()))
	s.Fail(localID, errors.New("boom"))

	entries := s.Messages()
	require.Len(t, entries, 1)
	assert.Equal(t, StateFailed, entries[0].State)
}

func TestOpenSessionSubscribeError(t *testing.T) {
	pager := &fakePager{}
	_, err := OpenSession(context.Background(), pager, &fakeFeedSource{err: errors.New("no feed")}, uuid.New())
	assert.Error(t, err)
	assert.Equal(t, 0, pager.calls)
}

func TestOpenSessionFetchErrorReleasesStream(t *testing.T) {
	stream := newFakeStream()
	pager := &fakePager{err: errors.New("store down")}

	_, err := OpenSession(context.Background(), pager, &fakeFeedSource{stream: stream}, uuid.New())
	require.Error(t, err)

	select {
	case <-stream.closed:
	case <-time.After(time.Second):
		t.Fatal("stream not released on open failure")
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	stream := newFakeStream()
	pager := &fakePager{pages: []pagination.Page{page(nil, false)}}

	s, err := OpenSession(context.Background(), pager, &fakeFeedSource{stream: stream}, uuid.New())
	require.NoError(t, err)

	s.Close()
	s.Close()

	select {
	case <-stream.closed:
	default:
		t.Fatal("stream not closed")
	}
}
