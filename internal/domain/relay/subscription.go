package relay

import "sync"

// Subscription delivers events in publish order on C. Publishing never
// blocks: events queue up until the reader catches up. Once Close returns,
// nothing more is sent and C is closed.
type Subscription struct {
	mu     sync.Mutex
	queue  []Event
	closed bool

	notify chan struct{}
	out    chan Event
	done   chan struct{}
	exited chan struct{}

	once    sync.Once
	onClose func(*Subscription)
}

func newSubscription(onClose func(*Subscription)) *Subscription {
	s := &Subscription{
		notify:  make(chan struct{}, 1),
		out:     make(chan Event),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
		onClose: onClose,
	}
	go s.pump()
	return s
}

func (s *Subscription) C() <-chan Event { return s.out }

// Done is closed when Close is called.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) push(e Event) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, e)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return true
}

func (s *Subscription) next() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return Event{}, false
	}
	e := s.queue[0]
	s.queue[0] = Event{}
	s.queue = s.queue[1:]
	return e, true
}

func (s *Subscription) pump() {
	defer close(s.exited)
	defer close(s.out)
	for {
		e, ok := s.next()
		if !ok {
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		select {
		case <-s.done:
			return
		default:
		}
		select {
		case s.out <- e:
		case <-s.done:
			return
		}
	}
}

// Close is safe to call more than once and from the goroutine reading C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()
		close(s.done)
		if s.onClose != nil {
			s.onClose(s)
		}
	})
	<-s.exited
}
