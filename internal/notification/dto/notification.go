package dto

// CreateNotificationRequest is the producer API payload. The
// description may be arbitrarily long; it is truncated to 15 words at
// creation time.
type CreateNotificationRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type"`
}
