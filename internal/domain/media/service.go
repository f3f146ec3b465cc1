package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"charterhub/charter-api/internal/config"
	"charterhub/charter-api/internal/utils/charterid"
	"charterhub/charter-api/internal/utils/platformerrors"
)

var allowedImageMIMEs = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

var allowedVideoMIMEs = map[string]string{
	"video/mp4":        "mp4",
	"video/quicktime":  "mov",
	"video/webm":       "webm",
	"video/x-matroska": "mkv",
	"video/x-msvideo":  "avi",
}

// Service is the ingest coordinator: it accepts an uploaded object, creates
// the tracking record and decides the synchronous (image) or asynchronous
// (video) path. Video ingestion returns as soon as the record exists; it
// never waits on the transcode worker.
type Service struct {
	cfg        *config.Config
	repo       Repository
	storage    Storage
	dispatcher *Dispatcher
	linker     *Linker
	log        zerolog.Logger
}

func NewService(cfg *config.Config, repo Repository, storage Storage, dispatcher *Dispatcher, linker *Linker, log zerolog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		repo:       repo,
		storage:    storage,
		dispatcher: dispatcher,
		linker:     linker,
		log:        log.With().Str("component", "media-ingest").Logger(),
	}
}

// Ingest stores the upload and returns its tracking record. A repeated
// correlation id for the same user returns the existing record instead of
// ingesting twice.
func (s *Service) Ingest(ctx context.Context, upload Upload, kind Kind, userID string, charterID *string, correlationID string) (*PendingMedia, error) {
	if len(upload.Data) == 0 {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"uploaded file is empty",
			nil,
			"9d2f5a8c-1e4b-4d7a-b0c6-3f8e5a9d2c7b",
		)
	}
	if int64(len(upload.Data)) > s.cfg.MaxMediaBytes {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("file exceeds max size of %d bytes", s.cfg.MaxMediaBytes),
			nil,
			"4b7e1c9f-6a3d-4f8b-9e2a-5c0d8b3f6e1a",
		)
	}

	if correlationID != "" {
		existing, err := s.repo.FindPendingByCorrelation(ctx, userID, correlationID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	} else {
		correlationID = uuid.NewString()
	}

	mimeType := mimetype.Detect(upload.Data).String()
	ext, err := s.extensionFor(ctx, kind, mimeType)
	if err != nil {
		return nil, err
	}

	id := charterid.NewMedia()
	originalKey := fmt.Sprintf("media/originals/%s.%s", id, ext)
	originalURL, err := s.storage.Upload(ctx, originalKey, bytes.NewReader(upload.Data), int64(len(upload.Data)), mimeType)
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"blob store upload failed",
			err,
			"7a4d0e2b-8c5f-4b1e-a9d3-6f2c9e4b7a0d",
		)
	}

	pm := &PendingMedia{
		ID:            id,
		UserID:        userID,
		CharterID:     charterID,
		Kind:          kind,
		Status:        StatusQueued,
		OriginalKey:   originalKey,
		OriginalURL:   originalURL,
		CorrelationID: correlationID,
	}

	if kind == KindImage {
		// Images need no transcoding. Below the inline threshold the
		// original doubles as the final asset; resizing larger images is an
		// extension point, so today they pass through the same way.
		if int64(len(upload.Data)) > s.cfg.ImageInlineMaxBytes {
			s.log.Debug().Str("pending_media_id", id).Int("bytes", len(upload.Data)).Msg("image above inline threshold, passing through")
		}
		pm.Status = StatusReady
		pm.FinalKey = &originalKey
		pm.FinalURL = &originalURL
	}

	if err := s.repo.CreatePending(ctx, pm); err != nil {
		return nil, err
	}

	switch kind {
	case KindImage:
		if charterID != nil {
			if _, err := s.linker.Attach(ctx, pm.ID, *charterID); err != nil {
				s.log.Error().Err(err).Str("pending_media_id", pm.ID).Msg("inline image attach failed")
			}
		}
	case KindVideo:
		// Hand off asynchronously; the HTTP caller polls for status. The
		// dispatch outlives the request context on purpose.
		go func(id string) {
			dispatchCtx, cancel := context.WithTimeout(context.Background(), s.cfg.TranscodeTimeout)
			defer cancel()
			s.dispatcher.Dispatch(dispatchCtx, id)
		}(pm.ID)
	}

	s.log.Info().
		Str("pending_media_id", pm.ID).
		Str("kind", string(kind)).
		Str("status", string(pm.Status)).
		Msg("media ingested")
	return pm, nil
}

// ListVideos returns poll-friendly view models for the owner's uploads.
func (s *Service) ListVideos(ctx context.Context, ownerID string) ([]VideoView, error) {
	items, err := s.repo.ListVideosByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]VideoView, 0, len(items))
	for _, pm := range items {
		views = append(views, VideoView{
			ID:            pm.ID,
			Status:        pm.Status,
			CorrelationID: pm.CorrelationID,
			FinalURL:      pm.FinalURL,
			ThumbnailURL:  pm.ThumbnailURL,
			Error:         pm.Error,
			CreatedAt:     pm.CreatedAt.Unix(),
		})
	}
	return views, nil
}

func (s *Service) extensionFor(ctx context.Context, kind Kind, mimeType string) (string, error) {
	table := allowedImageMIMEs
	if kind == KindVideo {
		table = allowedVideoMIMEs
	}
	if ext, ok := table[mimeType]; ok {
		return ext, nil
	}
	return "", platformerrors.NewError(
		ctx,
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeValidation,
		fmt.Sprintf("unsupported mime type %s for %s upload", mimeType, strings.ToLower(string(kind))),
		nil,
		"0c6e3a9d-2b7f-4e5a-8d1c-9f4b6e0a3d7c",
	)
}
