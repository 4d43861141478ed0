package cache

import "sync"

// Hub is an in-process fan-out for membership cache invalidation signals.
// Subscribers register callbacks; the membership service emits through the
// domain.MemberCacheInvalidator interface without knowing who listens.
type Hub struct {
	mu        sync.RWMutex
	listeners []func(familyID string)
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers a callback invoked on every membership invalidation.
func (h *Hub) Subscribe(fn func(familyID string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// InvalidateFamilyMembers notifies all subscribers.
func (h *Hub) InvalidateFamilyMembers(familyID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.listeners {
		fn(familyID)
	}
}
