package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"workbid-backend/internal/notification/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CursorState is the persisted form of a recipient's delivery cursor:
// one versioned row per recipient, replaced atomically on commit.
type CursorState struct {
	RecipientID   string `gorm:"primaryKey"`
	SchemaVersion int    `gorm:"not null"`
	Watermark     time.Time
	ShownIDs      string // JSON array, bounded by the engine's cap
	UpdatedAt     time.Time
}

// CursorRepository is the durable store behind the delivery engine.
// Load is fail-open: a missing row, a read error or an unknown schema
// version all yield the empty cursor, degrading to at-most a duplicate
// alert rather than a crash. Callers guarantee single-writer access;
// the repository itself takes no locks.
type CursorRepository interface {
	Load(ctx context.Context, recipientID string) *domain.Cursor
	Commit(ctx context.Context, recipientID string, cursor *domain.Cursor) error
	Delete(ctx context.Context, recipientID string) error
}

// cursorRepository implements CursorRepository on gorm.
type cursorRepository struct {
	db *gorm.DB
}

// NewCursorRepository creates a new instance of cursorRepository.
func NewCursorRepository(db *gorm.DB) CursorRepository {
	return &cursorRepository{db: db}
}

func (r *cursorRepository) Load(ctx context.Context, recipientID string) *domain.Cursor {
	var state CursorState
	err := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).First(&state).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).WithField("recipient_id", recipientID).
				Warn("[CursorStore] load failed, starting from empty cursor")
		}
		return domain.NewCursor()
	}
	if state.SchemaVersion != domain.CursorSchemaVersion {
		logrus.WithField("schema_version", state.SchemaVersion).
			Warn("[CursorStore] unknown cursor schema version, starting from empty cursor")
		return domain.NewCursor()
	}

	cursor := &domain.Cursor{Watermark: state.Watermark}
	if state.ShownIDs != "" {
		if err := json.Unmarshal([]byte(state.ShownIDs), &cursor.ShownIDs); err != nil {
			logrus.WithError(err).Warn("[CursorStore] corrupt shown-id set, starting from empty cursor")
			return domain.NewCursor()
		}
	}
	return cursor
}

func (r *cursorRepository) Commit(ctx context.Context, recipientID string, cursor *domain.Cursor) error {
	shown, err := json.Marshal(cursor.ShownIDs)
	if err != nil {
		return err
	}

	state := &CursorState{
		RecipientID:   recipientID,
		SchemaVersion: domain.CursorSchemaVersion,
		Watermark:     cursor.Watermark,
		ShownIDs:      string(shown),
		UpdatedAt:     time.Now(),
	}

	// Atomic replace: INSERT ... ON CONFLICT (recipient_id) DO UPDATE
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recipient_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"schema_version", "watermark", "shown_ids", "updated_at"}),
	}).Create(state).Error
}

func (r *cursorRepository) Delete(ctx context.Context, recipientID string) error {
	return r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).Delete(&CursorState{}).Error
}
