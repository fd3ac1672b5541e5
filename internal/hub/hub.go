// Package hub fans NewsUpdate events out from one producer to every live
// subscriber. Each subscriber owns a bounded mailbox; a stalled consumer
// loses its oldest pending updates instead of blocking the publisher.
package hub

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/coinfeed/coinfeed/internal/news"
)

// DefaultMailboxSize is the per-subscriber pending-update bound.
const DefaultMailboxSize = 100

// Subscriber is one registered consumer. Its lifetime belongs to the caller's
// connection: Unsubscribe when the connection goes away, or registrations leak.
type Subscriber struct {
	id uint64
	ch chan news.Update

	mu     sync.Mutex
	closed bool
}

// Updates is the receive side of the mailbox. It is closed by Unsubscribe
// and by Hub.Close, never by the publisher.
func (s *Subscriber) Updates() <-chan news.Update {
	return s.ch
}

// deliver enqueues without ever blocking: a full mailbox sheds its oldest
// pending update to make room. Reports whether any update was shed.
func (s *Subscriber) deliver(u news.Update) (shed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	select {
	case s.ch <- u:
		return false
	default:
	}

	// Mailbox full: drop the oldest unread update, then retry once. The
	// consumer may have drained concurrently, so both selects stay
	// non-blocking.
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- u:
	default:
	}
	return true
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Hub is the in-process broadcast registry.
type Hub struct {
	mu      sync.RWMutex
	nextID  uint64
	subs    map[uint64]*Subscriber
	closed  bool
	mailbox int

	dropped atomic.Uint64
}

func New() *Hub {
	return &Hub{subs: make(map[uint64]*Subscriber), mailbox: DefaultMailboxSize}
}

// Subscribe registers a fresh mailbox. A subscriber only sees updates
// published after this call returns.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan news.Update, h.mailbox)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.close()
		return sub
	}
	h.nextID++
	sub.id = h.nextID
	h.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes sub and closes its mailbox. Idempotent; a nil sub is
// ignored.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	delete(h.subs, sub.id)
	h.mu.Unlock()
	sub.close()
}

// Publish delivers u to every currently-registered subscriber, in publish
// order per mailbox. It never blocks on a slow consumer; shed updates are
// counted and logged, not surfaced as errors.
func (h *Hub) Publish(u news.Update) {
	h.mu.RLock()
	snapshot := make([]*Subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	for _, sub := range snapshot {
		if sub.deliver(u) {
			h.dropped.Add(1)
			log.Printf("hub: subscriber %d mailbox full, oldest update shed (coin=%s)", sub.id, u.Coin)
		}
	}
}

// Dropped reports how many updates were shed across all subscribers.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// SubscriberCount is used by logging and the stats surface.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unregisters everyone and closes their mailboxes. Further Subscribe
// calls return already-closed subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[uint64]*Subscriber)
	h.closed = true
	h.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}
