package usecase

import (
	"context"
	"errors"
	"sync"

	"workbid-backend/internal/notification/feed"
	"workbid-backend/internal/notification/repository"

	"github.com/sirupsen/logrus"
)

// ErrNoActiveSession is returned when an operation requires a signed-in
// recipient session and none exists.
var ErrNoActiveSession = errors.New("no active notification session")

// ChangePublisher pushes real-time signals to a connected UI surface.
// Satisfied by the SSE manager.
type ChangePublisher interface {
	SendToUser(userID, event string, data map[string]interface{})
}

// Manager is the process-wide notification service. It owns at most
// one feed-subscriber/deduplicator pair for the signed-in recipient and
// exposes that session's cache to every UI surface, replacing the ad
// hoc per-screen listeners that used to race over shared state.
type Manager struct {
	source     feed.LiveSource
	snapshots  feed.Snapshotter
	cursorRepo repository.CursorRepository
	notifier   Notifier
	changes    ChangePublisher
	shownIDCap int

	mu     sync.Mutex
	active *session
}

// session bundles the per-recipient machinery torn down as one unit.
type session struct {
	recipientID string
	sub         *feed.Subscriber
	engine      *Deduplicator
	cache       *Cache
	cancelWatch func()
	stop        chan struct{}
}

// NewManager wires the notification service. changes may be nil when no
// real-time surface is attached (tests).
func NewManager(source feed.LiveSource, snapshots feed.Snapshotter, cursorRepo repository.CursorRepository, notifier Notifier, changes ChangePublisher, shownIDCap int) *Manager {
	return &Manager{
		source:     source,
		snapshots:  snapshots,
		cursorRepo: cursorRepo,
		notifier:   notifier,
		changes:    changes,
		shownIDCap: shownIDCap,
	}
}

// StartSession activates the notification session for recipientID,
// tearing down any previous session first. The old subscription is
// fully stopped before the new recipient's cursor is loaded, so records
// can never be attributed to the wrong cursor during a switch.
// Starting the already-active recipient is a no-op.
func (m *Manager) StartSession(ctx context.Context, recipientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		if m.active.recipientID == recipientID {
			return
		}
		// Recipient switch ends the previous session without discarding
		// its cursor; only an explicit logout does that.
		m.stopActiveLocked(ctx, false)
	}

	cache := NewCache()
	engine := NewDeduplicator(ctx, recipientID, m.cursorRepo, m.notifier, cache, m.shownIDCap)
	sub := feed.NewSubscriber(m.source, m.snapshots, recipientID, engine.HandleEvent)
	sub.SetDegradedCallback(func(err error) {
		logrus.WithError(err).WithField("recipient_id", recipientID).
			Warn("[Notifications] feed degraded, still retrying")
		if m.changes != nil {
			m.changes.SendToUser(recipientID, "feed_degraded", map[string]interface{}{
				"error": err.Error(),
			})
		}
	})

	sess := &session{
		recipientID: recipientID,
		sub:         sub,
		engine:      engine,
		cache:       cache,
		stop:        make(chan struct{}),
	}
	sess.cancelWatch = m.watchCache(sess)
	m.active = sess

	sub.Start(ctx)
	logrus.WithField("recipient_id", recipientID).Info("[Notifications] session started")
}

// StopSession ends recipientID's session on explicit logout and
// discards the persisted cursor: a subsequent login, even by the same
// recipient, starts from empty state. A recipient who is no longer the
// active session (already switched away) only has their cursor
// discarded.
func (m *Manager) StopSession(ctx context.Context, recipientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil && m.active.recipientID == recipientID {
		m.stopActiveLocked(ctx, true)
		return
	}
	if err := m.cursorRepo.Delete(ctx, recipientID); err != nil {
		logrus.WithError(err).WithField("recipient_id", recipientID).
			Warn("[Notifications] failed to discard cursor on logout")
	}
}

// stopActiveLocked tears the active session down synchronously. Caller
// holds m.mu.
func (m *Manager) stopActiveLocked(ctx context.Context, discardCursor bool) {
	if m.active == nil {
		return
	}
	sess := m.active
	m.active = nil

	// No handler callback can occur once Stop returns.
	sess.sub.Stop()
	close(sess.stop)
	sess.cancelWatch()

	if discardCursor {
		if err := m.cursorRepo.Delete(ctx, sess.recipientID); err != nil {
			logrus.WithError(err).WithField("recipient_id", sess.recipientID).
				Warn("[Notifications] failed to discard cursor on logout")
		}
	}
	logrus.WithField("recipient_id", sess.recipientID).Info("[Notifications] session stopped")
}

// watchCache forwards coalesced cache-change signals to the real-time
// surface so UI clients can re-fetch without polling.
func (m *Manager) watchCache(sess *session) func() {
	ch, cancel := sess.cache.Subscribe()
	go func() {
		for {
			select {
			case <-sess.stop:
				return
			case <-ch:
				if m.changes != nil {
					m.changes.SendToUser(sess.recipientID, "notification_update", map[string]interface{}{
						"count": sess.cache.Len(),
					})
				}
			}
		}
	}()
	return cancel
}

// Cache returns the active session's cache for recipientID.
func (m *Manager) Cache(recipientID string) (*Cache, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || m.active.recipientID != recipientID {
		return nil, ErrNoActiveSession
	}
	return m.active.cache, nil
}

// ActiveRecipient returns the signed-in recipient id, if any.
func (m *Manager) ActiveRecipient() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return "", false
	}
	return m.active.recipientID, true
}
