package feed

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/JabulaniUsen/new-leenk/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Subscription is one live change feed. Events() delivers change events one at
// a time, in whatever order the backing channel produces them. Close releases
// the server-side channel slot; it is safe to call more than once but must be
// called at least once per subscription.
type Subscription struct {
	events    chan ChangeEvent
	closeOnce sync.Once
	closeFn   func()
}

func (s *Subscription) Events() <-chan ChangeEvent {
	return s.events
}

func (s *Subscription) Close() {
	s.closeOnce.Do(s.closeFn)
}

// Feed subscribes to change-event channels over Redis pub/sub.
type Feed struct {
	client *redis.Client
	log    *logger.Logger
}

func NewFeed(client *redis.Client, log *logger.Logger) *Feed {
	return &Feed{client: client, log: log}
}

// Subscribe opens a feed for one scope. The returned subscription's channel is
// closed when the context is cancelled or Close is called.
func (f *Feed) Subscribe(ctx context.Context, scope Scope) (*Subscription, error) {
	pubsub := f.client.Subscribe(ctx, scope.Channel())

	// Force the SUBSCRIBE round trip so a failed connect surfaces here
	// instead of as a silently dead channel.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		events: make(chan ChangeEvent, 64),
		closeFn: func() {
			cancel()
			_ = pubsub.Close()
		},
	}

	go func() {
		defer close(sub.events)
		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					f.log.Errorf("feed: bad payload on %s: %v", msg.Channel, err)
					continue
				}
				select {
				case sub.events <- ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return sub, nil
}
