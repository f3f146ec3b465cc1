package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"charterhub/charter-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes for the charter domain.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Draft{},
		&entities.PendingMedia{},
		&entities.Boat{},
		&entities.Charter{},
		&entities.CharterMedia{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}
