package domain

// Change-event kinds delivered by the feed. Only added events are
// delivery-relevant; modified and removed update the cache.
const (
	EventAdded    = "added"
	EventModified = "modified"
	EventRemoved  = "removed"
)

// ChangeEvent is one mutation of a notification record as observed on
// the change feed. Delivery is at-least-once: the same event may arrive
// again after a reconnect, and events are not strictly ordered by
// Record.CreatedAt.
type ChangeEvent struct {
	Kind   string             `json:"kind"`
	Record NotificationRecord `json:"record"`
}
