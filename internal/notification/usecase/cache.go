package usecase

import (
	"sort"
	"sync"

	"workbid-backend/internal/notification/domain"
)

// Cache is the UI-facing projection of all known notifications for the
// active recipient. It is updated on every change event regardless of
// the delivery decision: a record is always visible in-app once
// received, whether or not it fired a push alert. All UI surfaces read
// from here instead of opening their own feed subscriptions.
type Cache struct {
	mu      sync.RWMutex
	records map[string]domain.NotificationRecord
	subs    map[chan struct{}]struct{}
}

// NewCache creates an empty notification cache.
func NewCache() *Cache {
	return &Cache{
		records: make(map[string]domain.NotificationRecord),
		subs:    make(map[chan struct{}]struct{}),
	}
}

// Apply folds one change event into the cache and signals subscribers.
func (c *Cache) Apply(ev domain.ChangeEvent) {
	c.mu.Lock()
	switch ev.Kind {
	case domain.EventAdded, domain.EventModified:
		c.records[ev.Record.ID] = ev.Record
	case domain.EventRemoved:
		delete(c.records, ev.Record.ID)
	default:
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.notify()
}

// List returns all cached records ordered newest-first by CreatedAt.
func (c *Cache) List() []domain.NotificationRecord {
	c.mu.RLock()
	records := make([]domain.NotificationRecord, 0, len(c.records))
	for _, record := range c.records {
		records = append(records, record)
	}
	c.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Subscribe returns a coalesced change signal and a cancel function.
// The channel carries at most one pending signal; UI surfaces re-read
// List after each tick instead of polling.
func (c *Cache) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		delete(c.subs, ch)
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Cache) notify() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default: // a signal is already pending
		}
	}
}
