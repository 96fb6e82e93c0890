package order

import "sync"

// Subscription delivers the full, freshly sorted result set of one user's
// orders on every relevant change. Cancel stops delivery immediately: no
// callback fires after it returns, even for changes already in flight.
type Subscription struct {
	Orders <-chan []Order
	Err    <-chan error

	cancelOnce sync.Once
	cancel     chan struct{}
}

func (s *Subscription) Cancel() {
	s.cancelOnce.Do(func() {
		close(s.cancel)
	})
}

// hub is the in-process change broadcaster behind live subscriptions.
// Subscribers register under the user id they watch; every order creation or
// status update signals that user's subscribers to re-query their result set.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[int]chan struct{})}
}

func (h *hub) publish(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[userID] {
		// Non-blocking: the signal is a dirty flag, so a slow listener
		// coalesces any number of changes for its user into one pending
		// re-query instead of stalling the publisher. Only same-user
		// changes ever share the slot, a full buffer never loses anything.
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *hub) subscribe(userID string) (int, chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan struct{}, 1)
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan struct{})
	}
	h.subs[userID][id] = ch
	return id, ch
}

func (h *hub) unsubscribe(userID string, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[userID], id)
	if len(h.subs[userID]) == 0 {
		delete(h.subs, userID)
	}
}
