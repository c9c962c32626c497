package repository

import (
	"context"
	"errors"

	"workbid-backend/internal/notification/domain"

	"gorm.io/gorm"
)

// RecordRepository is the system-of-record access for notification
// records. ListByRecipient doubles as the snapshot source the feed
// subscriber replays on every (re)connect.
type RecordRepository interface {
	Create(ctx context.Context, record *domain.NotificationRecord) error
	GetByID(ctx context.Context, id string) (*domain.NotificationRecord, error)
	ListByRecipient(ctx context.Context, recipientID string) ([]domain.NotificationRecord, error)
}

// recordRepository implements RecordRepository on gorm.
type recordRepository struct {
	db *gorm.DB
}

// NewRecordRepository creates a new instance of recordRepository.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) Create(ctx context.Context, record *domain.NotificationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *recordRepository) GetByID(ctx context.Context, id string) (*domain.NotificationRecord, error) {
	var record domain.NotificationRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *recordRepository) ListByRecipient(ctx context.Context, recipientID string) ([]domain.NotificationRecord, error) {
	var records []domain.NotificationRecord
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
