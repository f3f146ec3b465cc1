package media_test

import (
	"context"
	"io"
	"strings"

	"charterhub/charter-api/internal/domain/media"
)

// MockRepository is a function-field mock of media.Repository.
type MockRepository struct {
	CreatePendingFunc             func(ctx context.Context, pm *media.PendingMedia) error
	GetPendingByIDFunc            func(ctx context.Context, id string) (*media.PendingMedia, error)
	FindPendingByCorrelationFunc  func(ctx context.Context, userID, correlationID string) (*media.PendingMedia, error)
	TransitionStatusFunc          func(ctx context.Context, id string, from, to media.Status) (bool, error)
	MarkReadyFunc                 func(ctx context.Context, id string, outputs media.ReadyOutputs) (bool, error)
	MarkFailedFunc                func(ctx context.Context, id string, diagnostic string) (bool, error)
	AttachCharterMediaFunc        func(ctx context.Context, pendingID string, ref *media.CharterMediaRef) (bool, error)
	GetCharterMediaByIDFunc       func(ctx context.Context, id string) (*media.CharterMediaRef, error)
	NextSortOrderFunc             func(ctx context.Context, charterID string) (int, error)
	ListVideosByOwnerFunc         func(ctx context.Context, ownerID string) ([]*media.PendingMedia, error)
	ListReadyUnconsumedVideosFunc func(ctx context.Context, ownerID string) ([]*media.PendingMedia, error)
}

func (m *MockRepository) CreatePending(ctx context.Context, pm *media.PendingMedia) error {
	if m.CreatePendingFunc != nil {
		return m.CreatePendingFunc(ctx, pm)
	}
	return nil
}

func (m *MockRepository) GetPendingByID(ctx context.Context, id string) (*media.PendingMedia, error) {
	if m.GetPendingByIDFunc != nil {
		return m.GetPendingByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRepository) FindPendingByCorrelation(ctx context.Context, userID, correlationID string) (*media.PendingMedia, error) {
	if m.FindPendingByCorrelationFunc != nil {
		return m.FindPendingByCorrelationFunc(ctx, userID, correlationID)
	}
	return nil, nil
}

func (m *MockRepository) TransitionStatus(ctx context.Context, id string, from, to media.Status) (bool, error) {
	if m.TransitionStatusFunc != nil {
		return m.TransitionStatusFunc(ctx, id, from, to)
	}
	return true, nil
}

func (m *MockRepository) MarkReady(ctx context.Context, id string, outputs media.ReadyOutputs) (bool, error) {
	if m.MarkReadyFunc != nil {
		return m.MarkReadyFunc(ctx, id, outputs)
	}
	return true, nil
}

func (m *MockRepository) MarkFailed(ctx context.Context, id string, diagnostic string) (bool, error) {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id, diagnostic)
	}
	return true, nil
}

func (m *MockRepository) AttachCharterMedia(ctx context.Context, pendingID string, ref *media.CharterMediaRef) (bool, error) {
	if m.AttachCharterMediaFunc != nil {
		return m.AttachCharterMediaFunc(ctx, pendingID, ref)
	}
	return true, nil
}

func (m *MockRepository) GetCharterMediaByID(ctx context.Context, id string) (*media.CharterMediaRef, error) {
	if m.GetCharterMediaByIDFunc != nil {
		return m.GetCharterMediaByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRepository) NextSortOrder(ctx context.Context, charterID string) (int, error) {
	if m.NextSortOrderFunc != nil {
		return m.NextSortOrderFunc(ctx, charterID)
	}
	return 0, nil
}

func (m *MockRepository) ListVideosByOwner(ctx context.Context, ownerID string) ([]*media.PendingMedia, error) {
	if m.ListVideosByOwnerFunc != nil {
		return m.ListVideosByOwnerFunc(ctx, ownerID)
	}
	return nil, nil
}

func (m *MockRepository) ListReadyUnconsumedVideos(ctx context.Context, ownerID string) ([]*media.PendingMedia, error) {
	if m.ListReadyUnconsumedVideosFunc != nil {
		return m.ListReadyUnconsumedVideosFunc(ctx, ownerID)
	}
	return nil, nil
}

// MockStorage is a function-field mock of media.Storage.
type MockStorage struct {
	UploadFunc func(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	DeleteFunc func(ctx context.Context, key string) error
}

func (m *MockStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, body, size, contentType)
	}
	return "https://cdn.test/" + key, nil
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

// MockEngine is a function-field mock of media.Engine.
type MockEngine struct {
	NormalizeFunc   func(ctx context.Context, sourceURL string) (*media.NormalizeResult, error)
	FetchOutputFunc func(ctx context.Context, url string) (io.ReadCloser, string, error)
}

func (m *MockEngine) Normalize(ctx context.Context, sourceURL string) (*media.NormalizeResult, error) {
	if m.NormalizeFunc != nil {
		return m.NormalizeFunc(ctx, sourceURL)
	}
	return &media.NormalizeResult{VideoURL: "https://engine.test/out.mp4"}, nil
}

func (m *MockEngine) FetchOutput(ctx context.Context, url string) (io.ReadCloser, string, error) {
	if m.FetchOutputFunc != nil {
		return m.FetchOutputFunc(ctx, url)
	}
	return io.NopCloser(strings.NewReader("normalized")), "video/mp4", nil
}

// MockPublisher is a function-field mock of media.QueuePublisher.
type MockPublisher struct {
	PublishFunc func(ctx context.Context, job media.TranscodeJob) (*media.NormalizeResult, error)
}

func (m *MockPublisher) Publish(ctx context.Context, job media.TranscodeJob) (*media.NormalizeResult, error) {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, job)
	}
	return nil, nil
}
