package charter

import (
	"context"

	domain "charterhub/charter-api/internal/domain/charter"
	"charterhub/charter-api/internal/domain/media"
	"charterhub/charter-api/internal/infrastructure/database/entities"
	"charterhub/charter-api/internal/infrastructure/database/transaction"
	"charterhub/charter-api/internal/utils/platformerrors"
)

// Repository persists the permanent records produced by finalize. All writes
// resolve the gorm handle through the transaction context, so when finalize
// runs them inside Transactor.Run they commit or roll back together.
type Repository struct {
	db *transaction.Database
}

func NewRepository(db *transaction.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateBoat(ctx context.Context, b *domain.Boat) error {
	if err := r.db.GetTx(ctx).WithContext(ctx).Create(entities.NewSchemaBoat(b)).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create boat",
			err,
			"4f7b2e9c-8d0a-4e5b-a6c3-1f9d4b7e0a5c",
		)
	}
	return nil
}

func (r *Repository) CreateCharter(ctx context.Context, c *domain.Charter) error {
	if err := r.db.GetTx(ctx).WithContext(ctx).Create(entities.NewSchemaCharter(c)).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create charter",
			err,
			"9a1d6f3e-0b8c-4d2a-9e7f-5c3b8a1d6e0f",
		)
	}
	return nil
}

func (r *Repository) CreateGallery(ctx context.Context, items []domain.GalleryItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]entities.CharterMedia, 0, len(items))
	for _, item := range items {
		rows = append(rows, entities.CharterMedia{
			ID:        item.ID,
			CharterID: item.CharterID,
			Kind:      media.RefKindPhoto,
			URL:       item.URL,
			SortOrder: item.SortOrder,
		})
	}
	if err := r.db.GetTx(ctx).WithContext(ctx).Create(&rows).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create charter gallery",
			err,
			"c5e0a7d4-2b9f-4f1c-8d6e-7a4c0b5e2d9f",
		)
	}
	return nil
}
