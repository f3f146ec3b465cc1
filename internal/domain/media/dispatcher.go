package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DispatcherConfig bounds each dispatch tier.
type DispatcherConfig struct {
	QueueTimeout  time.Duration
	DirectTimeout time.Duration
}

// Dispatcher drives a queued video through the transcode pipeline using an
// ordered list of tiers: publish to the worker queue first, run the job
// in-process as a fallback. Each tier owns its own timeout and failure
// detection; the first success wins. When every tier fails the record is
// marked FAILED with a diagnostic, never left in limbo, and no error reaches
// the caller.
type Dispatcher struct {
	repo      Repository
	publisher QueuePublisher
	processor *Processor
	cfg       DispatcherConfig
	log       zerolog.Logger
}

type dispatchTier struct {
	name    string
	timeout time.Duration
	run     func(ctx context.Context, pm *PendingMedia) error
}

func NewDispatcher(repo Repository, publisher QueuePublisher, processor *Processor, cfg DispatcherConfig, log zerolog.Logger) *Dispatcher {
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = 30 * time.Second
	}
	if cfg.DirectTimeout <= 0 {
		cfg.DirectTimeout = 10 * time.Minute
	}
	return &Dispatcher{
		repo:      repo,
		publisher: publisher,
		processor: processor,
		cfg:       cfg,
		log:       log.With().Str("component", "transcode-dispatcher").Logger(),
	}
}

// Dispatch is fire-and-forget from the caller's perspective; progress is
// observable only through the record's status. Re-invoking for an
// already-READY record is a no-op; a FAILED record is explicitly re-queued
// before a new attempt.
func (d *Dispatcher) Dispatch(ctx context.Context, pendingMediaID string) {
	pm, err := d.repo.GetPendingByID(ctx, pendingMediaID)
	if err != nil {
		d.log.Error().Err(err).Str("pending_media_id", pendingMediaID).Msg("dispatch load failed")
		return
	}
	if pm == nil {
		d.log.Error().Str("pending_media_id", pendingMediaID).Msg("dispatch for unknown record")
		return
	}
	if pm.Status == StatusReady {
		return
	}
	if pm.Status == StatusFailed {
		won, err := d.repo.TransitionStatus(ctx, pm.ID, StatusFailed, StatusQueued)
		if err != nil || !won {
			d.log.Error().Err(err).Str("pending_media_id", pm.ID).Msg("re-queue failed")
			return
		}
		pm.Status = StatusQueued
		pm.Error = nil
	}

	tiers := []dispatchTier{
		{name: "queue", timeout: d.cfg.QueueTimeout, run: d.runQueueTier},
		{name: "direct", timeout: d.cfg.DirectTimeout, run: d.runDirectTier},
	}

	var failures []string
	for _, tier := range tiers {
		tierCtx, cancel := context.WithTimeout(ctx, tier.timeout)
		err := tier.run(tierCtx, pm)
		cancel()
		if err == nil {
			d.log.Info().
				Str("pending_media_id", pm.ID).
				Str("tier", tier.name).
				Msg("dispatch succeeded")
			return
		}
		failures = append(failures, fmt.Sprintf("%s: %v", tier.name, err))
		d.log.Warn().Err(err).
			Str("pending_media_id", pm.ID).
			Str("tier", tier.name).
			Msg("dispatch tier failed")
	}

	diagnostic := "all dispatch tiers failed: " + strings.Join(failures, "; ")
	// Both tiers spending their budgets usually means the dispatch context
	// is expired too; the terminal write gets a fresh deadline so the record
	// cannot be stranded in TRANSCODING.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminalWriteTimeout)
	defer cancel()
	if _, err := d.repo.MarkFailed(writeCtx, pm.ID, diagnostic); err != nil {
		d.log.Error().Err(err).Str("pending_media_id", pm.ID).Msg("mark failed errored")
	}
}

// runQueueTier hands the job to the worker queue. An acknowledging response
// is success; an inline result means the worker processed synchronously and
// the dispatcher short-circuits straight to completion.
func (d *Dispatcher) runQueueTier(ctx context.Context, pm *PendingMedia) error {
	result, err := d.publisher.Publish(ctx, TranscodeJob{
		PendingMediaID: pm.ID,
		OriginalKey:    pm.OriginalKey,
		OriginalURL:    pm.OriginalURL,
	})
	if err != nil {
		return err
	}
	if result != nil {
		if _, err := d.processor.Complete(ctx, pm, result); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) runDirectTier(ctx context.Context, pm *PendingMedia) error {
	updated, err := d.processor.Process(ctx, pm.ID)
	if err != nil {
		return err
	}
	if updated != nil && updated.Status == StatusFailed {
		return fmt.Errorf("processor left record FAILED")
	}
	return nil
}
