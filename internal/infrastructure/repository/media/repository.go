package media

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "charterhub/charter-api/internal/domain/media"
	"charterhub/charter-api/internal/infrastructure/database/entities"
	"charterhub/charter-api/internal/infrastructure/database/transaction"
	"charterhub/charter-api/internal/utils/platformerrors"
)

// Repository persists pending media and charter media rows. Status changes
// are guarded updates so the ingestion pipeline tolerates duplicate
// deliveries, and attachment claims the pending row with a conditional
// update on the nullable charter_media_id column.
type Repository struct {
	db *transaction.Database
}

func NewRepository(db *transaction.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreatePending(ctx context.Context, pm *domain.PendingMedia) error {
	entity := entities.NewSchemaPendingMedia(pm)
	if err := r.db.GetTx(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create pending media",
			err,
			"e2a7c4f1-9d6b-4e3a-8f0c-5b1d7a4e9c2f",
		)
	}
	pm.CreatedAt = entity.CreatedAt
	pm.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *Repository) GetPendingByID(ctx context.Context, id string) (*domain.PendingMedia, error) {
	var entity entities.PendingMedia
	err := r.db.GetTx(ctx).WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch pending media",
			err,
			"5c0e8b3d-2f7a-4d1e-9b6c-8a4f0d2e5b7c",
		)
	}
	return entity.EtoD(), nil
}

func (r *Repository) FindPendingByCorrelation(ctx context.Context, userID, correlationID string) (*domain.PendingMedia, error) {
	var entity entities.PendingMedia
	err := r.db.GetTx(ctx).WithContext(ctx).
		Where("user_id = ? AND correlation_id = ?", userID, correlationID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to look up media by correlation id",
			err,
			"a9d4f7b2-6e1c-4a8d-b3f0-7c5e9a1d4f8b",
		)
	}
	return entity.EtoD(), nil
}

// TransitionStatus moves the record from one status to another only while the
// stored status still equals from.
func (r *Repository) TransitionStatus(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	result := r.db.GetTx(ctx).WithContext(ctx).
		Model(&entities.PendingMedia{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to transition media status",
			result.Error,
			"3e6b9d0a-8f4c-4b7e-a1d5-9c2f6e0b8d3a",
		)
	}
	return result.RowsAffected > 0, nil
}

// MarkReady records the processed outputs. It only succeeds while the record
// is not yet terminal, so the first completion wins and duplicates are no-ops.
func (r *Repository) MarkReady(ctx context.Context, id string, outputs domain.ReadyOutputs) (bool, error) {
	result := r.db.GetTx(ctx).WithContext(ctx).
		Model(&entities.PendingMedia{}).
		Where("id = ? AND status NOT IN ?", id, []domain.Status{domain.StatusReady, domain.StatusFailed}).
		Updates(map[string]any{
			"status":           domain.StatusReady,
			"final_key":        outputs.FinalKey,
			"final_url":        outputs.FinalURL,
			"thumbnail_key":    outputs.ThumbnailKey,
			"thumbnail_url":    outputs.ThumbnailURL,
			"duration_seconds": outputs.DurationSeconds,
			"width":            outputs.Width,
			"height":           outputs.Height,
			"error":            nil,
		})
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to mark media ready",
			result.Error,
			"7f2d5a8c-0b6e-4f3a-9d1b-4e8c2a6f0d5b",
		)
	}
	return result.RowsAffected > 0, nil
}

// MarkFailed records the diagnostic while the record is not yet terminal.
func (r *Repository) MarkFailed(ctx context.Context, id string, diagnostic string) (bool, error) {
	result := r.db.GetTx(ctx).WithContext(ctx).
		Model(&entities.PendingMedia{}).
		Where("id = ? AND status NOT IN ?", id, []domain.Status{domain.StatusReady, domain.StatusFailed}).
		Updates(map[string]any{
			"status": domain.StatusFailed,
			"error":  diagnostic,
		})
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to mark media failed",
			result.Error,
			"b4e8c1f6-3a9d-4c0b-8e5f-2d7a9c4e1b6f",
		)
	}
	return result.RowsAffected > 0, nil
}

// AttachCharterMedia inserts the permanent charter media row and claims the
// pending record in a single transaction. The claim is a conditional update
// on charter_media_id while it is still null; losing that race rolls the
// insert back and reports claimed false.
func (r *Repository) AttachCharterMedia(ctx context.Context, pendingID string, ref *domain.CharterMediaRef) (bool, error) {
	claimed := false
	err := r.db.GetTx(ctx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entities.NewSchemaCharterMedia(ref)).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		result := tx.Model(&entities.PendingMedia{}).
			Where("id = ? AND charter_media_id IS NULL", pendingID).
			Updates(map[string]any{
				"charter_media_id": ref.ID,
				"consumed_at":      now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errAlreadyClaimed
		}
		claimed = true
		return nil
	})
	if err != nil {
		if errors.Is(err, errAlreadyClaimed) {
			return false, nil
		}
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to attach charter media",
			err,
			"d0a5e8b3-7c2f-4e9a-b6d1-3f8c5a0e7b4d",
		)
	}
	return claimed, nil
}

var errAlreadyClaimed = errors.New("pending media already claimed")

func (r *Repository) GetCharterMediaByID(ctx context.Context, id string) (*domain.CharterMediaRef, error) {
	var entity entities.CharterMedia
	err := r.db.GetTx(ctx).WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch charter media",
			err,
			"8c3f6a1d-5e0b-4a7c-9f2e-6b4d8a2c0e5f",
		)
	}
	return entity.EtoD(), nil
}

// NextSortOrder returns one past the highest sort order currently attached to
// the charter.
func (r *Repository) NextSortOrder(ctx context.Context, charterID string) (int, error) {
	var max *int
	err := r.db.GetTx(ctx).WithContext(ctx).
		Model(&entities.CharterMedia{}).
		Where("charter_id = ?", charterID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to compute next sort order",
			err,
			"2b7e0c5f-9a4d-4d8b-a0e3-5c1f7b9d2a6e",
		)
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

func (r *Repository) ListVideosByOwner(ctx context.Context, ownerID string) ([]*domain.PendingMedia, error) {
	var rows []entities.PendingMedia
	err := r.db.GetTx(ctx).WithContext(ctx).
		Where("user_id = ? AND kind = ?", ownerID, domain.KindVideo).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list videos",
			err,
			"f1c8b5e2-4d7a-4b0f-8a3c-0e6d9f2b5c8a",
		)
	}
	out := make([]*domain.PendingMedia, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}

func (r *Repository) ListReadyUnconsumedVideos(ctx context.Context, ownerID string) ([]*domain.PendingMedia, error) {
	var rows []entities.PendingMedia
	err := r.db.GetTx(ctx).WithContext(ctx).
		Where("user_id = ? AND kind = ? AND status = ? AND charter_media_id IS NULL",
			ownerID, domain.KindVideo, domain.StatusReady).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list attachable videos",
			err,
			"6d9a2f7b-1e5c-4c8d-b4f0-8a3e6c1d9f4b",
		)
	}
	out := make([]*domain.PendingMedia, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}
