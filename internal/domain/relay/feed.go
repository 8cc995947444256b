package relay

import "sync"

// DefaultFeedCap is used when NewFeed gets a non-positive cap.
const DefaultFeedCap = 10

// Feed keeps the latest events, most recent first. It is memory only and
// starts empty on every process start.
type Feed struct {
	mu    sync.Mutex
	cap   int
	items []Event
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedCap
	}
	return &Feed{cap: size, items: make([]Event, 0, size)}
}

func (f *Feed) Add(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.items)
	if n < f.cap {
		f.items = append(f.items, Event{})
		n++
	}
	copy(f.items[1:n], f.items[:n-1])
	f.items[0] = e
}

// Snapshot returns a copy, most recent first.
func (f *Feed) Snapshot() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.items))
	copy(out, f.items)
	return out
}

func (f *Feed) Clear() {
	f.mu.Lock()
	f.items = f.items[:0]
	f.mu.Unlock()
}

func (f *Feed) Cap() int { return f.cap }
