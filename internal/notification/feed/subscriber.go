package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"workbid-backend/internal/notification/domain"

	"github.com/sirupsen/logrus"
)

// Handler consumes one change event. The subscriber invokes it from a
// single goroutine at a time, in arrival order.
type Handler func(ctx context.Context, ev domain.ChangeEvent)

// Snapshotter provides the current full set of records for a recipient.
// The subscriber replays it as added events on every (re)connect, so
// consumers must treat snapshot traffic as ordinary, possibly duplicate
// events.
type Snapshotter interface {
	ListByRecipient(ctx context.Context, recipientID string) ([]domain.NotificationRecord, error)
}

// LiveSource is the transport behind the live half of the feed. Receive
// blocks until the connection drops or ctx is cancelled, invoking
// deliver once per raw message.
type LiveSource interface {
	Receive(ctx context.Context, deliver func(ctx context.Context, data []byte)) error
}

const (
	defaultBaseBackoff   = time.Second
	defaultMaxBackoff    = time.Minute
	defaultDegradedAfter = 5
)

// Subscriber is one live subscription to the change feed for a single
// recipient. It replays a snapshot, then streams live deltas, and
// reconnects forever with exponential backoff on transport failure.
type Subscriber struct {
	recipientID string
	source      LiveSource
	snapshots   Snapshotter
	handler     Handler

	baseBackoff   time.Duration
	maxBackoff    time.Duration
	degradedAfter int
	onDegraded    func(error)

	mu      sync.Mutex
	started bool
	stopped bool
	live    bool // current connection has delivered at least one message
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSubscriber creates a subscriber for recipientID. Events for other
// recipients are dropped before they reach the handler.
func NewSubscriber(source LiveSource, snapshots Snapshotter, recipientID string, handler Handler) *Subscriber {
	return &Subscriber{
		recipientID:   recipientID,
		source:        source,
		snapshots:     snapshots,
		handler:       handler,
		baseBackoff:   defaultBaseBackoff,
		maxBackoff:    defaultMaxBackoff,
		degradedAfter: defaultDegradedAfter,
	}
}

// SetDegradedCallback installs fn, invoked when consecutive reconnect
// attempts keep failing. A degraded feed is a signal, not a fatal
// error: the subscriber keeps retrying regardless.
func (s *Subscriber) SetDegradedCallback(fn func(error)) {
	s.onDegraded = fn
}

// Start launches the subscription loop. It returns immediately; events
// flow to the handler until Stop is called or ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx)
}

// Stop tears the subscription down synchronously: once it returns no
// further handler invocation will occur, even for events already in
// flight. Safe to call more than once.
func (s *Subscriber) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Subscriber) run(ctx context.Context) {
	defer close(s.done)

	backoff := s.baseBackoff
	failures := 0
	for {
		s.setLive(false)
		err := s.replaySnapshot(ctx)
		if err == nil {
			err = s.source.Receive(ctx, s.deliver)
		}
		if ctx.Err() != nil {
			return
		}

		// A connection that carried live traffic was a successful
		// reconnect, however it ended: losing it starts a fresh failure
		// sequence rather than resuming an accumulated one.
		if err == nil || s.wasLive() {
			backoff = s.baseBackoff
			failures = 0
		}
		if err == nil {
			// Clean disconnect; resubscribe without penalty.
			continue
		}

		failures++
		logrus.WithError(err).WithFields(logrus.Fields{
			"recipient_id": s.recipientID,
			"retry_in":     backoff.String(),
		}).Warn("[Feed] subscription lost, reconnecting")
		if failures == s.degradedAfter && s.onDegraded != nil {
			s.onDegraded(err)
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}
}

// replaySnapshot emits the current stored records as added events. The
// delivery engine treats them as ordinary duplicate traffic.
func (s *Subscriber) replaySnapshot(ctx context.Context) error {
	records, err := s.snapshots.ListByRecipient(ctx, s.recipientID)
	if err != nil {
		return err
	}
	for _, record := range records {
		s.emit(ctx, domain.ChangeEvent{Kind: domain.EventAdded, Record: record})
	}
	return nil
}

func (s *Subscriber) setLive(v bool) {
	s.mu.Lock()
	s.live = v
	s.mu.Unlock()
}

func (s *Subscriber) wasLive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

func (s *Subscriber) deliver(ctx context.Context, data []byte) {
	// Any message, even a dropped one, proves the transport works.
	s.setLive(true)
	var ev domain.ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		logrus.WithError(err).Warn("[Feed] dropping undecodable change event")
		return
	}
	if ev.Record.RecipientID != s.recipientID {
		return
	}
	s.emit(ctx, ev)
}

// emit hands one event to the handler. The mutex both serializes
// handler invocations and lets Stop guarantee that nothing runs after
// it returns.
func (s *Subscriber) emit(ctx context.Context, ev domain.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.handler(ctx, ev)
}
