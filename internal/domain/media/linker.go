package media

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"charterhub/charter-api/internal/utils/charterid"
	"charterhub/charter-api/internal/utils/platformerrors"
)

// Linker idempotently promotes a processed upload into a permanent charter
// media row. Duplicate completion signals (worker retries, double callbacks)
// produce exactly one row: the link column is claimed with a conditional
// update that only succeeds while it is still null.
type Linker struct {
	repo Repository
	log  zerolog.Logger
}

func NewLinker(repo Repository, log zerolog.Logger) *Linker {
	return &Linker{
		repo: repo,
		log:  log.With().Str("component", "media-linker").Logger(),
	}
}

// Attach links the pending record to charterID. Calling it twice with the
// same arguments returns the same reference; only the first call creates a
// row.
func (l *Linker) Attach(ctx context.Context, pendingMediaID, charterID string) (*CharterMediaRef, error) {
	pm, err := l.repo.GetPendingByID(ctx, pendingMediaID)
	if err != nil {
		return nil, err
	}
	if pm == nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound,
			"pending media not found: "+pendingMediaID,
			nil,
			"a7c2e9f4-3d6b-4e1a-8f5c-0b9d2e7a4c1f",
		)
	}

	if pm.CharterMediaID != nil {
		return l.repo.GetCharterMediaByID(ctx, *pm.CharterMediaID)
	}

	if pm.Status != StatusReady {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeInvalidState,
			"pending media is not ready for attachment",
			nil,
			"6e1b4d8a-9f2c-4a7e-b3d5-8c0f6a2e9d4b",
		)
	}

	sortOrder, err := l.repo.NextSortOrder(ctx, charterID)
	if err != nil {
		return nil, err
	}

	ref := &CharterMediaRef{
		ID:              charterid.NewCharterMedia(),
		CharterID:       charterID,
		Kind:            RefKindFor(pm.Kind),
		URL:             valueOr(pm.FinalURL, pm.OriginalURL),
		StorageKey:      valueOr(pm.FinalKey, pm.OriginalKey),
		SortOrder:       sortOrder,
		ThumbnailURL:    pm.ThumbnailURL,
		DurationSeconds: pm.DurationSeconds,
		Width:           pm.Width,
		Height:          pm.Height,
		PendingMediaID:  &pm.ID,
		CreatedAt:       time.Now().UTC(),
	}

	claimed, err := l.repo.AttachCharterMedia(ctx, pm.ID, ref)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Lost the race to a concurrent completion signal; return the
		// winner's reference.
		current, err := l.repo.GetPendingByID(ctx, pm.ID)
		if err != nil {
			return nil, err
		}
		if current == nil || current.CharterMediaID == nil {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeConflict,
				"attachment lost a race but no winner was recorded",
				nil,
				"3f8d1a6c-5e9b-4c2f-a0d7-6b4e8f1c3a9d",
			)
		}
		return l.repo.GetCharterMediaByID(ctx, *current.CharterMediaID)
	}

	l.log.Info().
		Str("pending_media_id", pm.ID).
		Str("charter_media_id", ref.ID).
		Str("charter_id", charterID).
		Msg("media attached")
	return ref, nil
}

// AttachOwnerReadyVideos links every processed, not-yet-consumed video of the
// owner to the charter. Failures on individual items are logged and skipped;
// the attach itself is duplicate-safe.
func (l *Linker) AttachOwnerReadyVideos(ctx context.Context, ownerID, charterID string) {
	pending, err := l.repo.ListReadyUnconsumedVideos(ctx, ownerID)
	if err != nil {
		l.log.Error().Err(err).Str("owner_id", ownerID).Msg("list ready videos failed")
		return
	}
	for _, pm := range pending {
		if _, err := l.Attach(ctx, pm.ID, charterID); err != nil {
			l.log.Error().Err(err).
				Str("pending_media_id", pm.ID).
				Str("charter_id", charterID).
				Msg("video attach failed")
		}
	}
}

func valueOr(v *string, fallback string) string {
	if v != nil && *v != "" {
		return *v
	}
	return fallback
}
