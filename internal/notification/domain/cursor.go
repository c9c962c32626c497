package domain

import "time"

// CursorSchemaVersion identifies the persisted cursor layout. Older
// versions are discarded on load rather than migrated.
const CursorSchemaVersion = 1

// DefaultShownIDCap bounds ShownIDs growth over a long-lived session.
// Eviction only risks a rare duplicate alert for a very old id that is
// unlikely to ever replay.
const DefaultShownIDCap = 500

// Cursor is the durable delivery state for one recipient session: the
// highest fully-processed CreatedAt and the ids that already fired an
// alert. The watermark never moves backwards and ShownIDs only grows
// (aside from cap eviction of the oldest entries).
type Cursor struct {
	Watermark time.Time `json:"watermark"`
	ShownIDs  []string  `json:"shown_ids"`
}

// NewCursor returns the empty cursor used before any delivery has been
// processed: watermark unset, nothing shown.
func NewCursor() *Cursor {
	return &Cursor{}
}

// Seen reports whether id has already triggered an alert.
func (c *Cursor) Seen(id string) bool {
	for _, shown := range c.ShownIDs {
		if shown == id {
			return true
		}
	}
	return false
}

// MarkShown records id as delivered, evicting the oldest entries once
// limit is exceeded. A non-positive limit falls back to
// DefaultShownIDCap.
func (c *Cursor) MarkShown(id string, limit int) {
	if limit <= 0 {
		limit = DefaultShownIDCap
	}
	c.ShownIDs = append(c.ShownIDs, id)
	if excess := len(c.ShownIDs) - limit; excess > 0 {
		c.ShownIDs = append([]string(nil), c.ShownIDs[excess:]...)
	}
}

// Advance raises the watermark to t if t is newer. The watermark is
// monotonically non-decreasing for the lifetime of the session.
func (c *Cursor) Advance(t time.Time) {
	if t.After(c.Watermark) {
		c.Watermark = t
	}
}

// Clone returns an independent copy, used to snapshot state for a
// persistence attempt without aliasing the live slice.
func (c *Cursor) Clone() *Cursor {
	clone := &Cursor{Watermark: c.Watermark}
	if len(c.ShownIDs) > 0 {
		clone.ShownIDs = append([]string(nil), c.ShownIDs...)
	}
	return clone
}
