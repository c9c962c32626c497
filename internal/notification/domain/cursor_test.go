package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCursorSeen(t *testing.T) {
	c := NewCursor()
	assert.False(t, c.Seen("n1"))

	c.MarkShown("n1", 10)
	assert.True(t, c.Seen("n1"))
	assert.False(t, c.Seen("n2"))
}

func TestCursorMarkShownEvictsOldest(t *testing.T) {
	c := NewCursor()
	for i := 0; i < 8; i++ {
		c.MarkShown(fmt.Sprintf("n%d", i), 5)
	}

	assert.Len(t, c.ShownIDs, 5)
	// The three oldest ids aged out; the newest five remain.
	assert.False(t, c.Seen("n0"))
	assert.False(t, c.Seen("n2"))
	assert.Equal(t, []string{"n3", "n4", "n5", "n6", "n7"}, c.ShownIDs)
}

func TestCursorMarkShownDefaultCap(t *testing.T) {
	c := NewCursor()
	for i := 0; i < DefaultShownIDCap+10; i++ {
		c.MarkShown(fmt.Sprintf("n%d", i), 0)
	}
	assert.Len(t, c.ShownIDs, DefaultShownIDCap)
}

func TestCursorAdvanceIsMonotonic(t *testing.T) {
	c := NewCursor()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c.Advance(base)
	assert.Equal(t, base, c.Watermark)

	// An older timestamp never moves the watermark backwards.
	c.Advance(base.Add(-time.Hour))
	assert.Equal(t, base, c.Watermark)

	// An equal timestamp leaves it untouched.
	c.Advance(base)
	assert.Equal(t, base, c.Watermark)

	c.Advance(base.Add(time.Minute))
	assert.Equal(t, base.Add(time.Minute), c.Watermark)
}

func TestCursorClone(t *testing.T) {
	c := NewCursor()
	c.Advance(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	c.MarkShown("n1", 10)

	clone := c.Clone()
	assert.Equal(t, c.Watermark, clone.Watermark)
	assert.Equal(t, c.ShownIDs, clone.ShownIDs)

	// Mutating the clone must not leak into the original.
	clone.MarkShown("n2", 10)
	assert.False(t, c.Seen("n2"))
}
