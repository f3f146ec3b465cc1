package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// terminalWriteTimeout bounds the detached status writes that record READY
// or FAILED after a job's own deadline has expired.
const terminalWriteTimeout = 10 * time.Second

// Processor executes one transcode job end to end: normalize through the
// external engine, copy the outputs into the blob store, flip the record to
// READY and attach it when a charter is already known. It backs both the
// internal worker route and the dispatcher's direct tier, and is idempotent
// per record: an already-READY record short-circuits.
type Processor struct {
	repo    Repository
	storage Storage
	engine  Engine
	linker  *Linker
	log     zerolog.Logger
}

func NewProcessor(repo Repository, storage Storage, engine Engine, linker *Linker, log zerolog.Logger) *Processor {
	return &Processor{
		repo:    repo,
		storage: storage,
		engine:  engine,
		linker:  linker,
		log:     log.With().Str("component", "transcode-processor").Logger(),
	}
}

// Process runs the job for the given record. The returned error describes the
// tier failure to the dispatcher; the record itself is always left in a
// well-defined state (READY, FAILED, or untouched terminal).
func (p *Processor) Process(ctx context.Context, pendingMediaID string) (*PendingMedia, error) {
	pm, err := p.repo.GetPendingByID(ctx, pendingMediaID)
	if err != nil {
		return nil, err
	}
	if pm == nil {
		return nil, fmt.Errorf("pending media not found: %s", pendingMediaID)
	}

	if pm.Status == StatusReady {
		return pm, nil
	}
	if pm.Status == StatusFailed {
		return pm, fmt.Errorf("pending media %s is FAILED; re-queue before processing", pm.ID)
	}

	if pm.Status == StatusQueued {
		won, err := p.repo.TransitionStatus(ctx, pm.ID, StatusQueued, StatusTranscoding)
		if err != nil {
			return nil, err
		}
		if !won {
			// Another worker claimed the job; report its outcome.
			return p.repo.GetPendingByID(ctx, pm.ID)
		}
	}

	result, err := p.engine.Normalize(ctx, pm.OriginalURL)
	if err != nil {
		return p.fail(ctx, pm, fmt.Sprintf("transcode engine: %v", err))
	}

	return p.Complete(ctx, pm, result)
}

// Complete records an engine result for the record: outputs land in the blob
// store first, the original is deleted only afterwards (best effort), so at
// least one working copy exists at all times.
func (p *Processor) Complete(ctx context.Context, pm *PendingMedia, result *NormalizeResult) (*PendingMedia, error) {
	if pm.Status == StatusReady {
		return pm, nil
	}

	outputs, err := p.storeOutputs(ctx, pm, result)
	if err != nil {
		return p.fail(ctx, pm, fmt.Sprintf("store outputs: %v", err))
	}

	won, err := p.repo.MarkReady(ctx, pm.ID, *outputs)
	if err != nil {
		return nil, err
	}
	if !won {
		// Duplicate completion signal; the record is already terminal.
		return p.repo.GetPendingByID(ctx, pm.ID)
	}

	if err := p.storage.Delete(ctx, pm.OriginalKey); err != nil {
		p.log.Warn().Err(err).
			Str("pending_media_id", pm.ID).
			Str("key", pm.OriginalKey).
			Msg("original cleanup failed")
	}

	updated, err := p.repo.GetPendingByID(ctx, pm.ID)
	if err != nil {
		return nil, err
	}

	if updated.CharterID != nil {
		if _, err := p.linker.Attach(ctx, updated.ID, *updated.CharterID); err != nil {
			p.log.Error().Err(err).
				Str("pending_media_id", updated.ID).
				Msg("post-transcode attach failed")
		}
	}

	p.log.Info().Str("pending_media_id", updated.ID).Msg("transcode complete")
	return updated, nil
}

func (p *Processor) storeOutputs(ctx context.Context, pm *PendingMedia, result *NormalizeResult) (*ReadyOutputs, error) {
	finalKey := fmt.Sprintf("media/videos/%s%s", pm.ID, normalizedExt(result.VideoURL, ".mp4"))
	finalURL, err := p.copyArtifact(ctx, result.VideoURL, finalKey)
	if err != nil {
		return nil, err
	}

	outputs := &ReadyOutputs{FinalKey: finalKey, FinalURL: finalURL}
	if result.DurationSeconds > 0 {
		outputs.DurationSeconds = &result.DurationSeconds
	}
	if result.Width > 0 && result.Height > 0 {
		outputs.Width = &result.Width
		outputs.Height = &result.Height
	}

	if result.ThumbnailURL != "" {
		thumbKey := fmt.Sprintf("media/thumbs/%s%s", pm.ID, normalizedExt(result.ThumbnailURL, ".jpg"))
		thumbURL, err := p.copyArtifact(ctx, result.ThumbnailURL, thumbKey)
		if err != nil {
			// A missing thumbnail is not worth failing the whole job over.
			p.log.Warn().Err(err).Str("pending_media_id", pm.ID).Msg("thumbnail copy failed")
		} else {
			outputs.ThumbnailKey = &thumbKey
			outputs.ThumbnailURL = &thumbURL
		}
	}

	return outputs, nil
}

func (p *Processor) copyArtifact(ctx context.Context, sourceURL, key string) (string, error) {
	body, contentType, err := p.engine.FetchOutput(ctx, sourceURL)
	if err != nil {
		return "", err
	}
	defer body.Close()
	return p.storage.Upload(ctx, key, body, -1, contentType)
}

func (p *Processor) fail(ctx context.Context, pm *PendingMedia, diagnostic string) (*PendingMedia, error) {
	// The job budget is often already spent when we get here (a hung engine
	// exhausts it); the terminal write must land regardless, or the record
	// stays TRANSCODING forever.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminalWriteTimeout)
	defer cancel()
	if _, err := p.repo.MarkFailed(writeCtx, pm.ID, diagnostic); err != nil {
		p.log.Error().Err(err).Str("pending_media_id", pm.ID).Msg("mark failed errored")
	}
	updated, err := p.repo.GetPendingByID(writeCtx, pm.ID)
	if err != nil {
		updated = pm
	}
	return updated, fmt.Errorf("%s", diagnostic)
}

func normalizedExt(rawURL, fallback string) string {
	trimmed := rawURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	ext := path.Ext(trimmed)
	if ext == "" || len(ext) > 5 {
		return fallback
	}
	return ext
}
