package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"workbid-backend/internal/notification/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCursorRepo is an in-memory CursorRepository for engine tests.
type memCursorRepo struct {
	mu      sync.Mutex
	cursors map[string]*domain.Cursor
	commits int
	failing bool
}

func newMemCursorRepo() *memCursorRepo {
	return &memCursorRepo{cursors: make(map[string]*domain.Cursor)}
}

func (r *memCursorRepo) Load(ctx context.Context, recipientID string) *domain.Cursor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cursor, ok := r.cursors[recipientID]; ok {
		return cursor.Clone()
	}
	return domain.NewCursor()
}

func (r *memCursorRepo) Commit(ctx context.Context, recipientID string, cursor *domain.Cursor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits++
	if r.failing {
		return errors.New("store unavailable")
	}
	r.cursors[recipientID] = cursor.Clone()
	return nil
}

func (r *memCursorRepo) Delete(ctx context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cursors, recipientID)
	return nil
}

func (r *memCursorRepo) stored(recipientID string) *domain.Cursor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cursor, ok := r.cursors[recipientID]; ok {
		return cursor.Clone()
	}
	return nil
}

// recordingNotifier captures every Show call.
type recordingNotifier struct {
	mu    sync.Mutex
	shown []string
	err   error
}

func (n *recordingNotifier) Show(ctx context.Context, recipientID, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown = append(n.shown, title)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.shown)
}

func added(id string, createdAt time.Time) domain.ChangeEvent {
	return domain.ChangeEvent{
		Kind: domain.EventAdded,
		Record: domain.NotificationRecord{
			ID:          id,
			RecipientID: "u1",
			Title:       id,
			Description: "desc",
			Type:        domain.TypeInfo,
			CreatedAt:   createdAt,
		},
	}
}

func newTestEngine(t *testing.T) (*Deduplicator, *memCursorRepo, *recordingNotifier, *Cache) {
	t.Helper()
	repo := newMemCursorRepo()
	notifier := &recordingNotifier{}
	cache := NewCache()
	engine := NewDeduplicator(context.Background(), "u1", repo, notifier, cache, 100)
	return engine, repo, notifier, cache
}

func TestDeduplicatorShowsNewRecordOnce(t *testing.T) {
	engine, _, notifier, _ := newTestEngine(t)
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ev := added("n1", ts)
	for i := 0; i < 5; i++ {
		engine.HandleEvent(ctx, ev)
	}

	assert.Equal(t, 1, notifier.count(), "replayed event must not re-alert")
	assert.True(t, engine.Cursor().Seen("n1"))
	assert.Equal(t, ts, engine.Cursor().Watermark)
}

func TestDeduplicatorWatermarkSurvivesOutOfOrderArrival(t *testing.T) {
	engine, _, notifier, _ := newTestEngine(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Arrival order 5, 3, 7 (by offset). The record at offset 3 is
	// older than the watermark when it arrives: in-app only.
	engine.HandleEvent(ctx, added("n5", base.Add(5*time.Second)))
	engine.HandleEvent(ctx, added("n3", base.Add(3*time.Second)))
	engine.HandleEvent(ctx, added("n7", base.Add(7*time.Second)))

	assert.Equal(t, 2, notifier.count())
	cursor := engine.Cursor()
	assert.Equal(t, base.Add(7*time.Second), cursor.Watermark)
	// The straggler is still recorded as seen.
	assert.True(t, cursor.Seen("n3"))
}

func TestDeduplicatorBackfillIsSuppressed(t *testing.T) {
	engine, _, notifier, cache := newTestEngine(t)
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	engine.HandleEvent(ctx, added("n2", ts))
	require.Equal(t, 1, notifier.count())

	// At or below the watermark: no alert, but cached and marked seen.
	engine.HandleEvent(ctx, added("n1", ts.Add(-time.Hour)))
	engine.HandleEvent(ctx, added("n1b", ts))

	assert.Equal(t, 1, notifier.count())
	assert.True(t, engine.Cursor().Seen("n1"))
	assert.True(t, engine.Cursor().Seen("n1b"))
	assert.Equal(t, 3, cache.Len())
}

func TestDeduplicatorReplayIsIdempotent(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	events := []domain.ChangeEvent{
		added("n1", base.Add(time.Second)),
		added("n2", base.Add(2*time.Second)),
		added("n3", base.Add(3*time.Second)),
	}
	for _, ev := range events {
		engine.HandleEvent(ctx, ev)
	}
	before := engine.Cursor()

	// A snapshot replay after reconnect re-delivers everything.
	for _, ev := range events {
		engine.HandleEvent(ctx, ev)
	}
	after := engine.Cursor()

	assert.Equal(t, before.Watermark, after.Watermark)
	assert.Equal(t, before.ShownIDs, after.ShownIDs)
}

func TestDeduplicatorRestartWithPersistedCursor(t *testing.T) {
	repo := newMemCursorRepo()
	notifier := &recordingNotifier{}
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	engine := NewDeduplicator(ctx, "u1", repo, notifier, NewCache(), 100)
	engine.HandleEvent(ctx, added("n1", ts))
	require.Equal(t, 1, notifier.count())

	// New process, same store: the snapshot replay of n1 stays silent.
	restarted := NewDeduplicator(ctx, "u1", repo, notifier, NewCache(), 100)
	restarted.HandleEvent(ctx, added("n1", ts))

	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, ts, restarted.Cursor().Watermark)
}

func TestDeduplicatorIgnoresOtherRecipients(t *testing.T) {
	engine, _, notifier, cache := newTestEngine(t)
	ctx := context.Background()

	ev := added("n1", time.Now())
	ev.Record.RecipientID = "someone-else"
	engine.HandleEvent(ctx, ev)

	assert.Equal(t, 0, notifier.count())
	assert.Equal(t, 0, cache.Len())
	assert.False(t, engine.Cursor().Seen("n1"))
}

func TestDeduplicatorDropsMalformedRecords(t *testing.T) {
	engine, repo, notifier, cache := newTestEngine(t)
	ctx := context.Background()

	engine.HandleEvent(ctx, domain.ChangeEvent{
		Kind:   domain.EventAdded,
		Record: domain.NotificationRecord{RecipientID: "u1", CreatedAt: time.Now()},
	})
	engine.HandleEvent(ctx, domain.ChangeEvent{
		Kind:   domain.EventAdded,
		Record: domain.NotificationRecord{ID: "n1", RecipientID: "u1"},
	})

	assert.Equal(t, 0, notifier.count())
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, 0, repo.commits)
}

func TestDeduplicatorModifiedAndRemovedAreCacheOnly(t *testing.T) {
	engine, _, notifier, cache := newTestEngine(t)
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	engine.HandleEvent(ctx, added("n1", ts))
	require.Equal(t, 1, notifier.count())

	modified := added("n1", ts)
	modified.Kind = domain.EventModified
	modified.Record.Title = "edited"
	engine.HandleEvent(ctx, modified)

	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, "edited", cache.List()[0].Title)

	removed := added("n1", ts)
	removed.Kind = domain.EventRemoved
	engine.HandleEvent(ctx, removed)

	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, 0, cache.Len())
	// Removal does not reopen the delivery decision.
	assert.True(t, engine.Cursor().Seen("n1"))
}

func TestDeduplicatorNotifierFailureStillMarksShown(t *testing.T) {
	repo := newMemCursorRepo()
	notifier := &recordingNotifier{err: errors.New("push backend down")}
	ctx := context.Background()

	engine := NewDeduplicator(ctx, "u1", repo, notifier, NewCache(), 100)
	engine.HandleEvent(ctx, added("n1", time.Now()))

	// A failed dispatch is spent, not retried.
	assert.True(t, engine.Cursor().Seen("n1"))
}

func TestDeduplicatorCommitFailureIsFailOpen(t *testing.T) {
	repo := newMemCursorRepo()
	repo.failing = true
	notifier := &recordingNotifier{}
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	engine := NewDeduplicator(ctx, "u1", repo, notifier, NewCache(), 100)
	engine.HandleEvent(ctx, added("n1", ts))
	engine.HandleEvent(ctx, added("n1", ts))

	// In-memory state keeps the at-most-once guarantee for this process.
	assert.Equal(t, 1, notifier.count())
	assert.Nil(t, repo.stored("u1"))
}

func TestDeduplicatorPersistsAfterEachDecision(t *testing.T) {
	repo := newMemCursorRepo()
	notifier := &recordingNotifier{}
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	engine := NewDeduplicator(ctx, "u1", repo, notifier, NewCache(), 100)
	engine.HandleEvent(ctx, added("n1", ts))

	stored := repo.stored("u1")
	require.NotNil(t, stored)
	assert.Equal(t, ts, stored.Watermark)
	assert.True(t, stored.Seen("n1"))
}
