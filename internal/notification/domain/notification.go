package domain

import (
	"errors"
	"strings"
	"time"
)

// Notification types drive presentation styling on the client.
const (
	TypeInfo    = "info"
	TypeBid     = "bid"
	TypeMessage = "message"
)

// MaxDescriptionWords is the word limit applied to descriptions at
// creation time. Records read back from the store already satisfy it.
const MaxDescriptionWords = 15

// ErrMalformedRecord marks a record missing one of its required fields.
// Such records are dropped, logged and never retried.
var ErrMalformedRecord = errors.New("malformed notification record")

// NotificationRecord is a single notification as stored and as carried
// on the change feed. ID is assigned by the producer and immutable;
// CreatedAt is the server-assigned timestamp used for watermark
// advancement.
type NotificationRecord struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	RecipientID string    `json:"recipient_id" gorm:"index;not null"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// Validate reports whether the record carries the fields the delivery
// engine depends on.
func (r *NotificationRecord) Validate() error {
	if r.ID == "" || r.RecipientID == "" || r.CreatedAt.IsZero() {
		return ErrMalformedRecord
	}
	return nil
}

// TruncateDescription limits a description to the first
// MaxDescriptionWords whitespace-delimited words. It runs once, when
// the producer creates the record, never at read time.
func TruncateDescription(description string) string {
	words := strings.Fields(description)
	if len(words) <= MaxDescriptionWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:MaxDescriptionWords], " ")
}
