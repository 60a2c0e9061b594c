package ws

import "sync"

const subscriptionBuffer = 32

// Hub fans state-change events out to subscribers by topic. Subscribing is an
// explicit registration; closing the subscription releases it. Sends never
// block: a subscriber that cannot keep up drops events rather than stalling
// the publisher.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Subscription]struct{})}
}

// Subscription is a registered observer. Events arrive on C.
type Subscription struct {
	C chan any

	hub    *Hub
	topics map[string]struct{}
	closed bool
}

// Subscribe registers an observer for the given topics.
func (h *Hub) Subscribe(topics ...string) *Subscription {
	s := &Subscription{
		C:      make(chan any, subscriptionBuffer),
		hub:    h,
		topics: make(map[string]struct{}),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range topics {
		h.join(t, s)
	}
	return s
}

// Add attaches an extra topic to the subscription.
func (s *Subscription) Add(topic string) {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if s.closed {
		return
	}
	s.hub.join(topic, s)
}

// Remove detaches a topic from the subscription.
func (s *Subscription) Remove(topic string) {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.leave(topic, s)
}

// Close releases the subscription and closes its channel.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for t := range s.topics {
		s.hub.leave(t, s)
	}
	close(s.C)
}

// Broadcast delivers payload to every subscriber of topic.
func (h *Hub) Broadcast(topic string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.topics[topic] {
		select {
		case s.C <- payload:
		default:
			// drop if blocked
		}
	}
}

// callers hold h.mu
func (h *Hub) join(topic string, s *Subscription) {
	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[*Subscription]struct{})
	}
	h.topics[topic][s] = struct{}{}
	s.topics[topic] = struct{}{}
}

func (h *Hub) leave(topic string, s *Subscription) {
	if subs, ok := h.topics[topic]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(s.topics, topic)
}
