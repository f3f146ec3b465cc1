package entities

import (
	"time"

	"charterhub/charter-api/internal/domain/media"
)

// PendingMedia tracks an upload through the ingestion pipeline. The nullable
// charter_media_id column is the exactly-once attachment guard: it is only
// ever set by a conditional update while still null.
type PendingMedia struct {
	ID              string       `gorm:"type:varchar(40);primaryKey"`
	UserID          string       `gorm:"type:varchar(64);index:idx_pending_media_user;uniqueIndex:idx_pending_media_correlation;not null"`
	CharterID       *string      `gorm:"type:varchar(40);index"`
	Kind            media.Kind   `gorm:"type:varchar(10);not null"`
	Status          media.Status `gorm:"type:varchar(20);index;not null;default:'QUEUED'"`
	OriginalKey     string       `gorm:"type:varchar(255);not null"`
	OriginalURL     string       `gorm:"type:varchar(512);not null"`
	FinalKey        *string      `gorm:"type:varchar(255)"`
	FinalURL        *string      `gorm:"type:varchar(512)"`
	ThumbnailKey    *string      `gorm:"type:varchar(255)"`
	ThumbnailURL    *string      `gorm:"type:varchar(512)"`
	DurationSeconds *int
	Width           *int
	Height          *int
	CorrelationID   string `gorm:"type:varchar(64);uniqueIndex:idx_pending_media_correlation;not null"`
	ConsumedAt      *time.Time
	CharterMediaID  *string   `gorm:"type:varchar(40)"`
	Error           *string   `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for PendingMedia.
func (PendingMedia) TableName() string {
	return "pending_media"
}

// EtoD converts the database entity to the domain model.
func (p *PendingMedia) EtoD() *media.PendingMedia {
	return &media.PendingMedia{
		ID:              p.ID,
		UserID:          p.UserID,
		CharterID:       p.CharterID,
		Kind:            p.Kind,
		Status:          p.Status,
		OriginalKey:     p.OriginalKey,
		OriginalURL:     p.OriginalURL,
		FinalKey:        p.FinalKey,
		FinalURL:        p.FinalURL,
		ThumbnailKey:    p.ThumbnailKey,
		ThumbnailURL:    p.ThumbnailURL,
		DurationSeconds: p.DurationSeconds,
		Width:           p.Width,
		Height:          p.Height,
		CorrelationID:   p.CorrelationID,
		ConsumedAt:      p.ConsumedAt,
		CharterMediaID:  p.CharterMediaID,
		Error:           p.Error,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// NewSchemaPendingMedia converts the domain model to its database entity.
func NewSchemaPendingMedia(pm *media.PendingMedia) *PendingMedia {
	return &PendingMedia{
		ID:              pm.ID,
		UserID:          pm.UserID,
		CharterID:       pm.CharterID,
		Kind:            pm.Kind,
		Status:          pm.Status,
		OriginalKey:     pm.OriginalKey,
		OriginalURL:     pm.OriginalURL,
		FinalKey:        pm.FinalKey,
		FinalURL:        pm.FinalURL,
		ThumbnailKey:    pm.ThumbnailKey,
		ThumbnailURL:    pm.ThumbnailURL,
		DurationSeconds: pm.DurationSeconds,
		Width:           pm.Width,
		Height:          pm.Height,
		CorrelationID:   pm.CorrelationID,
		ConsumedAt:      pm.ConsumedAt,
		CharterMediaID:  pm.CharterMediaID,
		Error:           pm.Error,
	}
}
