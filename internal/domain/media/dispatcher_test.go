package media_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"charterhub/charter-api/internal/domain/media"
)

// memoryRepo backs dispatcher and processor tests with a single mutable
// record so status transitions behave like the real conditional updates.
type memoryRepo struct {
	mu     sync.Mutex
	record media.PendingMedia
}

func newMemoryRepo(pm media.PendingMedia) *memoryRepo {
	return &memoryRepo{record: pm}
}

func (r *memoryRepo) snapshot() media.PendingMedia {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record
}

func (r *memoryRepo) CreatePending(ctx context.Context, pm *media.PendingMedia) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record = *pm
	return nil
}

func (r *memoryRepo) GetPendingByID(ctx context.Context, id string) (*media.PendingMedia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record.ID != id {
		return nil, nil
	}
	copied := r.record
	return &copied, nil
}

func (r *memoryRepo) FindPendingByCorrelation(ctx context.Context, userID, correlationID string) (*media.PendingMedia, error) {
	return nil, nil
}

func (r *memoryRepo) TransitionStatus(ctx context.Context, id string, from, to media.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record.ID != id || r.record.Status != from {
		return false, nil
	}
	r.record.Status = to
	return true, nil
}

func (r *memoryRepo) MarkReady(ctx context.Context, id string, outputs media.ReadyOutputs) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record.ID != id || r.record.Status.IsTerminal() {
		return false, nil
	}
	r.record.Status = media.StatusReady
	r.record.FinalKey = &outputs.FinalKey
	r.record.FinalURL = &outputs.FinalURL
	r.record.ThumbnailKey = outputs.ThumbnailKey
	r.record.ThumbnailURL = outputs.ThumbnailURL
	r.record.DurationSeconds = outputs.DurationSeconds
	r.record.Width = outputs.Width
	r.record.Height = outputs.Height
	r.record.Error = nil
	return true, nil
}

func (r *memoryRepo) MarkFailed(ctx context.Context, id string, diagnostic string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record.ID != id || r.record.Status.IsTerminal() {
		return false, nil
	}
	r.record.Status = media.StatusFailed
	r.record.Error = &diagnostic
	return true, nil
}

func (r *memoryRepo) AttachCharterMedia(ctx context.Context, pendingID string, ref *media.CharterMediaRef) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record.ID != pendingID || r.record.CharterMediaID != nil {
		return false, nil
	}
	r.record.CharterMediaID = &ref.ID
	return true, nil
}

func (r *memoryRepo) GetCharterMediaByID(ctx context.Context, id string) (*media.CharterMediaRef, error) {
	return &media.CharterMediaRef{ID: id}, nil
}

func (r *memoryRepo) NextSortOrder(ctx context.Context, charterID string) (int, error) {
	return 0, nil
}

func (r *memoryRepo) ListVideosByOwner(ctx context.Context, ownerID string) ([]*media.PendingMedia, error) {
	return nil, nil
}

func (r *memoryRepo) ListReadyUnconsumedVideos(ctx context.Context, ownerID string) ([]*media.PendingMedia, error) {
	return nil, nil
}

func queuedVideo() media.PendingMedia {
	return media.PendingMedia{
		ID:          "med_01",
		UserID:      "captain-1",
		Kind:        media.KindVideo,
		Status:      media.StatusQueued,
		OriginalKey: "media/originals/med_01.mp4",
		OriginalURL: "https://cdn.test/media/originals/med_01.mp4",
	}
}

func newProcessor(repo media.Repository, engine media.Engine) *media.Processor {
	storage := &MockStorage{}
	linker := media.NewLinker(repo, zerolog.Nop())
	return media.NewProcessor(repo, storage, engine, linker, zerolog.Nop())
}

func TestDispatchQueueTierFailsDirectTierSucceeds(t *testing.T) {
	repo := newMemoryRepo(queuedVideo())
	publisher := &MockPublisher{
		PublishFunc: func(ctx context.Context, job media.TranscodeJob) (*media.NormalizeResult, error) {
			return nil, errors.New("queue unavailable")
		},
	}
	engine := &MockEngine{} // succeeds by default
	dispatcher := media.NewDispatcher(repo, publisher, newProcessor(repo, engine), media.DispatcherConfig{}, zerolog.Nop())

	dispatcher.Dispatch(context.Background(), "med_01")

	got := repo.snapshot()
	if got.Status != media.StatusReady {
		t.Fatalf("status = %s, want READY (error: %v)", got.Status, got.Error)
	}
	if got.FinalURL == nil || *got.FinalURL == "" {
		t.Error("expected a final URL after direct-tier success")
	}
}

func TestDispatchAllTiersFailMarksFailedWithDiagnostic(t *testing.T) {
	repo := newMemoryRepo(queuedVideo())
	publisher := &MockPublisher{
		PublishFunc: func(ctx context.Context, job media.TranscodeJob) (*media.NormalizeResult, error) {
			return nil, errors.New("queue unavailable")
		},
	}
	engine := &MockEngine{
		NormalizeFunc: func(ctx context.Context, sourceURL string) (*media.NormalizeResult, error) {
			return nil, errors.New("engine crashed")
		},
	}
	dispatcher := media.NewDispatcher(repo, publisher, newProcessor(repo, engine), media.DispatcherConfig{}, zerolog.Nop())

	dispatcher.Dispatch(context.Background(), "med_01")

	got := repo.snapshot()
	if got.Status != media.StatusFailed {
		t.Fatalf("status = %s, want FAILED", got.Status)
	}
	if got.Error == nil || *got.Error == "" {
		t.Fatal("expected a non-empty diagnostic")
	}
	if !strings.Contains(*got.Error, "queue") {
		t.Errorf("diagnostic should name the queue tier failure: %s", *got.Error)
	}
}

func TestDispatchInlineQueueResultCompletesRecord(t *testing.T) {
	repo := newMemoryRepo(queuedVideo())
	publisher := &MockPublisher{
		PublishFunc: func(ctx context.Context, job media.TranscodeJob) (*media.NormalizeResult, error) {
			return &media.NormalizeResult{VideoURL: "https://engine.test/out.mp4"}, nil
		},
	}
	engine := &MockEngine{
		NormalizeFunc: func(ctx context.Context, sourceURL string) (*media.NormalizeResult, error) {
			t.Fatal("direct tier must not run when the queue returns inline")
			return nil, nil
		},
	}
	dispatcher := media.NewDispatcher(repo, publisher, newProcessor(repo, engine), media.DispatcherConfig{}, zerolog.Nop())

	dispatcher.Dispatch(context.Background(), "med_01")

	if got := repo.snapshot(); got.Status != media.StatusReady {
		t.Fatalf("status = %s, want READY", got.Status)
	}
}

func TestDispatchReadyRecordIsNoOp(t *testing.T) {
	ready := queuedVideo()
	ready.Status = media.StatusReady
	repo := newMemoryRepo(ready)
	publisher := &MockPublisher{
		PublishFunc: func(ctx context.Context, job media.TranscodeJob) (*media.NormalizeResult, error) {
			t.Fatal("no tier may run for a READY record")
			return nil, nil
		},
	}
	dispatcher := media.NewDispatcher(repo, publisher, newProcessor(repo, &MockEngine{}), media.DispatcherConfig{}, zerolog.Nop())

	dispatcher.Dispatch(context.Background(), "med_01")

	if got := repo.snapshot(); got.Status != media.StatusReady {
		t.Fatalf("status = %s, want READY", got.Status)
	}
}

func TestDispatchRequeuesFailedRecord(t *testing.T) {
	failed := queuedVideo()
	failed.Status = media.StatusFailed
	diag := "earlier failure"
	failed.Error = &diag
	repo := newMemoryRepo(failed)
	dispatcher := media.NewDispatcher(repo, &MockPublisher{}, newProcessor(repo, &MockEngine{}), media.DispatcherConfig{}, zerolog.Nop())

	dispatcher.Dispatch(context.Background(), "med_01")

	// queue tier acks by default, so the job ends queued-or-better, never
	// still FAILED from the earlier attempt
	if got := repo.snapshot(); got.Status == media.StatusFailed {
		t.Fatalf("record was not re-queued: %s", got.Status)
	}
}

// deadlineRepo refuses writes on an expired context, the way the real
// gorm-backed repository does.
type deadlineRepo struct {
	*memoryRepo
}

func (r *deadlineRepo) GetPendingByID(ctx context.Context, id string) (*media.PendingMedia, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.memoryRepo.GetPendingByID(ctx, id)
}

func (r *deadlineRepo) TransitionStatus(ctx context.Context, id string, from, to media.Status) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.memoryRepo.TransitionStatus(ctx, id, from, to)
}

func (r *deadlineRepo) MarkReady(ctx context.Context, id string, outputs media.ReadyOutputs) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.memoryRepo.MarkReady(ctx, id, outputs)
}

func (r *deadlineRepo) MarkFailed(ctx context.Context, id string, diagnostic string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.memoryRepo.MarkFailed(ctx, id, diagnostic)
}

func TestDispatchExpiredBudgetStillMarksFailed(t *testing.T) {
	inner := newMemoryRepo(queuedVideo())
	repo := &deadlineRepo{memoryRepo: inner}
	hang := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	publisher := &MockPublisher{
		PublishFunc: func(ctx context.Context, job media.TranscodeJob) (*media.NormalizeResult, error) {
			return nil, hang(ctx)
		},
	}
	engine := &MockEngine{
		NormalizeFunc: func(ctx context.Context, sourceURL string) (*media.NormalizeResult, error) {
			return nil, hang(ctx)
		},
	}
	cfg := media.DispatcherConfig{QueueTimeout: 10 * time.Millisecond, DirectTimeout: 10 * time.Millisecond}
	dispatcher := media.NewDispatcher(repo, publisher, newProcessor(repo, engine), cfg, zerolog.Nop())

	// The dispatch budget is fully spent by the hung tiers, so the terminal
	// write happens after every deadline on this path has expired.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	dispatcher.Dispatch(ctx, "med_01")

	got := inner.snapshot()
	if got.Status != media.StatusFailed {
		t.Fatalf("status = %s, want FAILED", got.Status)
	}
	if got.Error == nil || *got.Error == "" {
		t.Fatal("expected a diagnostic on the failed record")
	}
}
