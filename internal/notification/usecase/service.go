package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workbid-backend/internal/notification/domain"
	"workbid-backend/internal/notification/feed"
	"workbid-backend/internal/notification/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service is the producer-facing API: it creates notification records
// and serves reads for UI surfaces, preferring the live session cache
// over the store.
type Service struct {
	records   repository.RecordRepository
	publisher feed.EventPublisher
	manager   *Manager
}

// NewService creates the notification service. publisher may be nil
// when no feed transport is configured; records then still reach
// subscribers through snapshot replay.
func NewService(records repository.RecordRepository, publisher feed.EventPublisher, manager *Manager) *Service {
	return &Service{records: records, publisher: publisher, manager: manager}
}

// CreateNotification stores a new record and pushes its added event
// onto the feed. The description is truncated to its first 15 words
// here, at write time, so every consumer observes the bounded form.
func (s *Service) CreateNotification(ctx context.Context, recipientID, title, description, notificationType string) (*domain.NotificationRecord, error) {
	if recipientID == "" {
		return nil, errors.New("recipient id is required")
	}
	switch notificationType {
	case domain.TypeInfo, domain.TypeBid, domain.TypeMessage:
	case "":
		notificationType = domain.TypeInfo
	default:
		return nil, fmt.Errorf("unknown notification type %q", notificationType)
	}

	record := &domain.NotificationRecord{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Title:       title,
		Description: domain.TruncateDescription(description),
		Type:        notificationType,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.records.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	// A lost publish is not a lost notification: the record is durable
	// and the next snapshot replay delivers it.
	if s.publisher != nil {
		ev := domain.ChangeEvent{Kind: domain.EventAdded, Record: *record}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			logrus.WithError(err).WithField("id", record.ID).
				Warn("[Notifications] failed to publish change event")
		}
	}

	return record, nil
}

// ListNotifications returns the notifications visible to recipientID,
// newest first: the live cache when their session is active, otherwise
// the stored records.
func (s *Service) ListNotifications(ctx context.Context, recipientID string) ([]domain.NotificationRecord, error) {
	if s.manager != nil {
		if cache, err := s.manager.Cache(recipientID); err == nil {
			return cache.List(), nil
		}
	}
	return s.records.ListByRecipient(ctx, recipientID)
}
