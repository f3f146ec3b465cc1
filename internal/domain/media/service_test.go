package media_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"charterhub/charter-api/internal/config"
	"charterhub/charter-api/internal/domain/media"
	"charterhub/charter-api/internal/utils/platformerrors"
)

func ingestConfig() *config.Config {
	return &config.Config{
		MaxMediaBytes:       1 << 20,
		ImageInlineMaxBytes: 1 << 20,
		TranscodeTimeout:    time.Second,
	}
}

func pngBytes() []byte {
	return []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
}

func mp4Bytes() []byte {
	return []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")
}

func newIngestService(repo *MockRepository, storage *MockStorage) *media.Service {
	nop := zerolog.Nop()
	linker := media.NewLinker(repo, nop)
	processor := media.NewProcessor(repo, storage, &MockEngine{}, linker, nop)
	dispatcher := media.NewDispatcher(repo, &MockPublisher{}, processor, media.DispatcherConfig{}, nop)
	return media.NewService(ingestConfig(), repo, storage, dispatcher, linker, nop)
}

func TestIngestRejectsEmptyUpload(t *testing.T) {
	svc := newIngestService(&MockRepository{}, &MockStorage{})

	_, err := svc.Ingest(context.Background(), media.Upload{Filename: "empty.png"}, media.KindImage, "captain-1", nil, "")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestIngestRejectsOversizedUpload(t *testing.T) {
	svc := newIngestService(&MockRepository{}, &MockStorage{})

	data := make([]byte, (1<<20)+1)
	copy(data, pngBytes())
	_, err := svc.Ingest(context.Background(), media.Upload{Filename: "big.png", Data: data}, media.KindImage, "captain-1", nil, "")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestIngestRejectsUnsupportedMimeType(t *testing.T) {
	svc := newIngestService(&MockRepository{}, &MockStorage{})

	_, err := svc.Ingest(context.Background(), media.Upload{Filename: "notes.txt", Data: []byte("plain text, not an image")}, media.KindImage, "captain-1", nil, "")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Fatalf("expected VALIDATION for text content, got %v", err)
	}
}

func TestIngestReturnsExistingRecordForRepeatedCorrelation(t *testing.T) {
	existing := &media.PendingMedia{ID: "med_prev", UserID: "captain-1", Kind: media.KindVideo, Status: media.StatusTranscoding, CorrelationID: "corr-1"}
	repo := &MockRepository{
		FindPendingByCorrelationFunc: func(ctx context.Context, userID, correlationID string) (*media.PendingMedia, error) {
			if userID != "captain-1" || correlationID != "corr-1" {
				t.Fatalf("unexpected lookup %s/%s", userID, correlationID)
			}
			return existing, nil
		},
		CreatePendingFunc: func(ctx context.Context, pm *media.PendingMedia) error {
			t.Fatal("a duplicate correlation must not create a second record")
			return nil
		},
	}
	storage := &MockStorage{UploadFunc: func(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
		t.Fatal("a duplicate correlation must not re-upload")
		return "", nil
	}}
	svc := newIngestService(repo, storage)

	pm, err := svc.Ingest(context.Background(), media.Upload{Filename: "clip.mp4", Data: mp4Bytes()}, media.KindVideo, "captain-1", nil, "corr-1")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if pm.ID != "med_prev" {
		t.Errorf("got record %s, want the existing med_prev", pm.ID)
	}
}

func TestIngestImageIsReadyImmediately(t *testing.T) {
	var created *media.PendingMedia
	repo := &MockRepository{CreatePendingFunc: func(ctx context.Context, pm *media.PendingMedia) error {
		created = pm
		return nil
	}}
	svc := newIngestService(repo, &MockStorage{})

	pm, err := svc.Ingest(context.Background(), media.Upload{Filename: "boat.png", Data: pngBytes()}, media.KindImage, "captain-1", nil, "")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if pm.Status != media.StatusReady {
		t.Errorf("status = %s, images bypass transcoding and must be READY", pm.Status)
	}
	if pm.FinalURL == nil || *pm.FinalURL == "" {
		t.Error("a ready image must carry its final URL")
	}
	if created == nil || !strings.HasPrefix(created.OriginalKey, "media/originals/") {
		t.Errorf("original key = %+v, want media/originals/ prefix", created)
	}
	if !strings.HasSuffix(created.OriginalKey, ".png") {
		t.Errorf("original key = %s, extension must come from sniffed content", created.OriginalKey)
	}
	if pm.CorrelationID == "" {
		t.Error("a missing correlation id must be generated")
	}
}

func TestIngestVideoIsQueuedAndReturnsBeforeProcessing(t *testing.T) {
	repo := &MockRepository{}
	svc := newIngestService(repo, &MockStorage{})

	pm, err := svc.Ingest(context.Background(), media.Upload{Filename: "tour.mp4", Data: mp4Bytes()}, media.KindVideo, "captain-1", nil, "corr-9")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if pm.Status != media.StatusQueued {
		t.Errorf("status = %s, video ingest must return QUEUED without waiting", pm.Status)
	}
	if pm.FinalURL != nil {
		t.Error("a queued video has no final URL yet")
	}
	if !strings.HasSuffix(pm.OriginalKey, ".mp4") {
		t.Errorf("original key = %s, want .mp4 from sniffed content", pm.OriginalKey)
	}
}

func TestIngestImageWithCharterAttachesInline(t *testing.T) {
	var stored *media.PendingMedia
	var attachedRef *media.CharterMediaRef
	repo := &MockRepository{
		CreatePendingFunc: func(ctx context.Context, pm *media.PendingMedia) error {
			stored = pm
			return nil
		},
		GetPendingByIDFunc: func(ctx context.Context, id string) (*media.PendingMedia, error) {
			if stored != nil && stored.ID == id {
				return stored, nil
			}
			return nil, nil
		},
		AttachCharterMediaFunc: func(ctx context.Context, pendingID string, ref *media.CharterMediaRef) (bool, error) {
			attachedRef = ref
			return true, nil
		},
	}
	svc := newIngestService(repo, &MockStorage{})

	charterID := "chr_01"
	if _, err := svc.Ingest(context.Background(), media.Upload{Filename: "deck.png", Data: pngBytes()}, media.KindImage, "captain-1", &charterID, ""); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if attachedRef == nil {
		t.Fatal("an image targeting a charter must attach inline")
	}
	if attachedRef.CharterID != "chr_01" || attachedRef.Kind != media.RefKindPhoto {
		t.Errorf("ref = %+v, want photo attached to chr_01", attachedRef)
	}
}
