package usecase

import (
	"testing"
	"time"

	"workbid-backend/internal/notification/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheEvent(kind, id string, createdAt time.Time) domain.ChangeEvent {
	return domain.ChangeEvent{
		Kind: kind,
		Record: domain.NotificationRecord{
			ID:          id,
			RecipientID: "u1",
			Title:       id,
			CreatedAt:   createdAt,
		},
	}
}

func TestCacheListNewestFirst(t *testing.T) {
	cache := NewCache()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cache.Apply(cacheEvent(domain.EventAdded, "old", base))
	cache.Apply(cacheEvent(domain.EventAdded, "newest", base.Add(2*time.Second)))
	cache.Apply(cacheEvent(domain.EventAdded, "middle", base.Add(time.Second)))

	records := cache.List()
	require.Len(t, records, 3)
	assert.Equal(t, "newest", records[0].ID)
	assert.Equal(t, "middle", records[1].ID)
	assert.Equal(t, "old", records[2].ID)
}

func TestCacheUpsertAndRemove(t *testing.T) {
	cache := NewCache()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cache.Apply(cacheEvent(domain.EventAdded, "n1", ts))
	assert.Equal(t, 1, cache.Len())

	// A replayed added event replaces rather than duplicates.
	cache.Apply(cacheEvent(domain.EventAdded, "n1", ts))
	assert.Equal(t, 1, cache.Len())

	modified := cacheEvent(domain.EventModified, "n1", ts)
	modified.Record.Title = "edited"
	cache.Apply(modified)
	assert.Equal(t, "edited", cache.List()[0].Title)

	cache.Apply(cacheEvent(domain.EventRemoved, "n1", ts))
	assert.Equal(t, 0, cache.Len())

	// Removing an unknown id is a no-op.
	cache.Apply(cacheEvent(domain.EventRemoved, "ghost", ts))
	assert.Equal(t, 0, cache.Len())
}

func TestCacheSubscribeSignals(t *testing.T) {
	cache := NewCache()
	ch, cancel := cache.Subscribe()
	defer cancel()

	cache.Apply(cacheEvent(domain.EventAdded, "n1", time.Now()))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a change signal")
	}
}

func TestCacheSubscribeCoalesces(t *testing.T) {
	cache := NewCache()
	ch, cancel := cache.Subscribe()
	defer cancel()

	// Several changes while the subscriber is not draining collapse
	// into a single pending signal.
	for i := 0; i < 5; i++ {
		cache.Apply(cacheEvent(domain.EventAdded, "n1", time.Now()))
	}

	<-ch
	select {
	case <-ch:
		t.Fatal("expected signals to coalesce")
	default:
	}
}

func TestCacheCancelStopsSignals(t *testing.T) {
	cache := NewCache()
	ch, cancel := cache.Subscribe()
	cancel()

	cache.Apply(cacheEvent(domain.EventAdded, "n1", time.Now()))

	select {
	case <-ch:
		t.Fatal("cancelled subscriber must not be signalled")
	default:
	}
}
