package usecase

import (
	"context"
	"sync"

	"workbid-backend/internal/notification/domain"
	"workbid-backend/internal/notification/repository"

	"github.com/sirupsen/logrus"
)

// Notifier fires a native alert for a recipient. Fire-and-forget: a
// platform that denies alert permission may silently no-op, and the
// engine never treats that as an error.
type Notifier interface {
	Show(ctx context.Context, recipientID, title, body string) error
}

// Deduplicator decides, exactly once per record, whether an added
// change event fires a native alert. It is the sole mutator of the
// recipient's cursor: exactly one instance exists per signed-in
// session, and events are processed one at a time under its mutex.
type Deduplicator struct {
	recipientID string
	cursorRepo  repository.CursorRepository
	notifier    Notifier
	cache       *Cache
	shownIDCap  int
	log         *logrus.Entry

	mu     sync.Mutex
	cursor *domain.Cursor
}

// NewDeduplicator loads the recipient's persisted cursor (empty on
// first subscription or read failure) and returns the session engine.
func NewDeduplicator(ctx context.Context, recipientID string, cursorRepo repository.CursorRepository, notifier Notifier, cache *Cache, shownIDCap int) *Deduplicator {
	if shownIDCap <= 0 {
		shownIDCap = domain.DefaultShownIDCap
	}
	return &Deduplicator{
		recipientID: recipientID,
		cursorRepo:  cursorRepo,
		notifier:    notifier,
		cache:       cache,
		shownIDCap:  shownIDCap,
		log:         logrus.WithField("recipient_id", recipientID),
		cursor:      cursorRepo.Load(ctx, recipientID),
	}
}

// HandleEvent processes one change event from the feed, in arrival
// order. Malformed records are dropped; records for other recipients
// are discarded before they can touch the cache or the cursor.
func (d *Deduplicator) HandleEvent(ctx context.Context, ev domain.ChangeEvent) {
	if err := ev.Record.Validate(); err != nil {
		d.log.WithField("kind", ev.Kind).Warn("[Dedup] dropping malformed record")
		return
	}
	// Guards against stale subscriptions during a recipient switch.
	if ev.Record.RecipientID != d.recipientID {
		return
	}

	// The in-app projection is independent of the delivery decision.
	d.cache.Apply(ev)

	// Only added events are delivery-relevant.
	if ev.Kind != domain.EventAdded {
		return
	}
	d.decide(ctx, ev.Record)
}

// decide runs the delivery decision as one serialized read-modify-write
// over the cursor. The decision logic itself never suspends; only the
// final persistence call can block.
func (d *Deduplicator) decide(ctx context.Context, r domain.NotificationRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Already delivered: no side effect, no state change. Uniqueness is
	// keyed by id, so records sharing a CreatedAt are each judged on
	// their own id.
	if d.cursor.Seen(r.ID) {
		return
	}

	if r.CreatedAt.After(d.cursor.Watermark) {
		// Genuinely new relative to the advancing watermark.
		if err := d.notifier.Show(ctx, r.RecipientID, r.Title, r.Description); err != nil {
			d.log.WithError(err).WithField("id", r.ID).Warn("[Dedup] alert dispatch failed")
		}
		d.cursor.MarkShown(r.ID, d.shownIDCap)
		d.cursor.Advance(r.CreatedAt)
	} else {
		// Backfill: an out-of-order straggler at or below the watermark.
		// Record it as seen without surfacing a confusing late alert.
		d.cursor.MarkShown(r.ID, d.shownIDCap)
	}

	// Fail-open: if the commit fails the in-memory decision stands for
	// this process lifetime. Worst case is a duplicate after restart,
	// never a missed or doubled in-process alert.
	if err := d.cursorRepo.Commit(ctx, d.recipientID, d.cursor.Clone()); err != nil {
		d.log.WithError(err).Warn("[Dedup] cursor commit failed, continuing with in-memory state")
	}
}

// Cursor returns a copy of the current cursor state.
func (d *Deduplicator) Cursor() *domain.Cursor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor.Clone()
}
