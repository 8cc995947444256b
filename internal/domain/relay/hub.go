package relay

import (
	"context"
	"log"
	"sync"
	"time"
)

// Source watches one event stream until ctx ends or the stream fails.
type Source interface {
	Name() string
	Watch(ctx context.Context, emit func(Event)) error
}

// Hub records every published event in the feed and hands it to each
// current subscriber.
type Hub struct {
	feed *Feed

	mu   sync.Mutex
	subs map[*Subscription]struct{}

	retryMin time.Duration
	retryMax time.Duration
}

func NewHub(feedCap int) *Hub {
	return &Hub{
		feed:     NewFeed(feedCap),
		subs:     make(map[*Subscription]struct{}),
		retryMin: time.Second,
		retryMax: 30 * time.Second,
	}
}

func (h *Hub) Publish(e Event) {
	h.feed.Add(e)

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		s.push(e)
	}
}

// Subscribe receives events published after it returns; earlier ones are
// only available through Snapshot.
func (h *Hub) Subscribe() *Subscription {
	s := newSubscription(h.remove)
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

func (h *Hub) Snapshot() []Event { return h.feed.Snapshot() }

func (h *Hub) Clear() { h.feed.Clear() }

// Run watches every source until ctx is cancelled. A source that fails is
// restarted with capped exponential backoff; events that happened while it
// was down are not replayed.
func (h *Hub) Run(ctx context.Context, sources ...Source) {
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			h.watch(ctx, src)
		}(src)
	}
	wg.Wait()
}

func (h *Hub) watch(ctx context.Context, src Source) {
	delay := h.retryMin
	for {
		started := time.Now()
		err := src.Watch(ctx, h.Publish)
		if ctx.Err() != nil {
			return
		}
		if time.Since(started) > h.retryMax {
			delay = h.retryMin
		}
		log.Printf("[relay] %s watch stopped: %v (retry in %s)", src.Name(), err, delay)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		delay *= 2
		if delay > h.retryMax {
			delay = h.retryMax
		}
	}
}
