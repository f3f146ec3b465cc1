package draft

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	domain "charterhub/charter-api/internal/domain/draft"
	"charterhub/charter-api/internal/infrastructure/database/entities"
	"charterhub/charter-api/internal/infrastructure/database/transaction"
	"charterhub/charter-api/internal/utils/platformerrors"
)

// Repository handles draft persistence. All mutating writes are conditional
// updates on the version column so concurrent writers have exactly one
// winner.
type Repository struct {
	db *transaction.Database
}

func NewRepository(db *transaction.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, d *domain.Draft) error {
	entity, err := entities.NewSchemaDraft(d)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to encode draft document",
			err,
			"b8e4d1a7-2c9f-4b6e-a3d0-7f5c8e2b4a9d",
		)
	}
	if err := r.db.GetTx(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create draft",
			err,
			"4a9c7e2d-6b0f-4d8a-9e1c-3b7f5d0a8c4e",
		)
	}
	d.CreatedAt = entity.CreatedAt
	d.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Draft, error) {
	var entity entities.Draft
	err := r.db.GetTx(ctx).WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch draft",
			err,
			"0d5b8f3a-7e2c-4a9d-b6e1-8c4f0a7d3b6e",
		)
	}
	return entity.EtoD(), nil
}

func (r *Repository) FindActiveByUser(ctx context.Context, userID string) (*domain.Draft, error) {
	var entity entities.Draft
	err := r.db.GetTx(ctx).WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.StatusDraft).
		Order("created_at DESC").
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find active draft",
			err,
			"6f2e9a4c-1d7b-4e0f-a8c5-9b3d6f1a4e7c",
		)
	}
	return entity.EtoD(), nil
}

// UpdateVersioned applies the merged document only while the stored version
// still equals expectedVersion and the draft is still DRAFT; the version is
// incremented by exactly one in the same statement.
func (r *Repository) UpdateVersioned(ctx context.Context, id string, expectedVersion int, data map[string]any, currentStep *int) (bool, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to encode draft document",
			err,
			"3c8a5e0d-9f4b-4c7a-8d2e-6b0f9c3a5e8d",
		)
	}

	updates := map[string]any{
		"data":    datatypes.JSON(raw),
		"version": gorm.Expr("version + 1"),
	}
	if currentStep != nil {
		updates["current_step"] = *currentStep
	}

	result := r.db.GetTx(ctx).WithContext(ctx).
		Model(&entities.Draft{}).
		Where("id = ? AND version = ? AND status = ?", id, expectedVersion, domain.StatusDraft).
		Updates(updates)
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update draft",
			result.Error,
			"7b4f1d8e-5a2c-4e9b-b0d6-2f8a5c1e7d4b",
		)
	}
	return result.RowsAffected > 0, nil
}

// MarkSubmitted flips the draft to SUBMITTED and records the charter id,
// guarded by the same version compare-and-swap as Patch.
func (r *Repository) MarkSubmitted(ctx context.Context, id string, expectedVersion int, charterID string) (bool, error) {
	result := r.db.GetTx(ctx).WithContext(ctx).
		Model(&entities.Draft{}).
		Where("id = ? AND version = ? AND status = ?", id, expectedVersion, domain.StatusDraft).
		Updates(map[string]any{
			"status":     domain.StatusSubmitted,
			"charter_id": charterID,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to submit draft",
			result.Error,
			"9e6d3b0f-8c1a-4f5e-a7b2-4d0c8e6f3a1d",
		)
	}
	return result.RowsAffected > 0, nil
}

// SoftDelete marks the draft DELETED while it is still DRAFT.
func (r *Repository) SoftDelete(ctx context.Context, id string) (bool, error) {
	result := r.db.GetTx(ctx).WithContext(ctx).
		Model(&entities.Draft{}).
		Where("id = ? AND status = ?", id, domain.StatusDraft).
		Updates(map[string]any{
			"status":  domain.StatusDeleted,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete draft",
			result.Error,
			"1f8c5a2e-7d4b-4a0c-9e6f-5b2d8a0c7e4f",
		)
	}
	return result.RowsAffected > 0, nil
}
