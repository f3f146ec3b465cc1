package media

import (
	"context"
	"io"
	"time"
)

// Kind distinguishes uploaded media types.
type Kind string

const (
	KindImage Kind = "IMAGE"
	KindVideo Kind = "VIDEO"
)

// Status tracks an upload through its processing lifecycle. Transitions are
// forward-only: QUEUED -> TRANSCODING -> {READY, FAILED}; images may skip
// straight to READY. Retrying a failed job is an explicit re-queue, never a
// resurrection of the old attempt.
type Status string

const (
	StatusQueued      Status = "QUEUED"
	StatusTranscoding Status = "TRANSCODING"
	StatusReady       Status = "READY"
	StatusFailed      Status = "FAILED"
)

// IsTerminal reports whether the current job attempt is finished.
func (s Status) IsTerminal() bool {
	return s == StatusReady || s == StatusFailed
}

// CanTransitionTo reports whether the transition is a legal forward move.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusQueued:
		return next == StatusTranscoding || next == StatusReady || next == StatusFailed
	case StatusTranscoding:
		return next == StatusReady || next == StatusFailed
	case StatusFailed:
		return next == StatusQueued // explicit re-queue
	default:
		return false
	}
}

// PendingMedia tracks one uploaded file until it becomes permanent charter
// media (or fails).
type PendingMedia struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	CharterID       *string    `json:"charter_id,omitempty"`
	Kind            Kind       `json:"kind"`
	Status          Status     `json:"status"`
	OriginalKey     string     `json:"original_key"`
	OriginalURL     string     `json:"original_url"`
	FinalKey        *string    `json:"final_key,omitempty"`
	FinalURL        *string    `json:"final_url,omitempty"`
	ThumbnailKey    *string    `json:"thumbnail_key,omitempty"`
	ThumbnailURL    *string    `json:"thumbnail_url,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	Width           *int       `json:"width,omitempty"`
	Height          *int       `json:"height,omitempty"`
	CorrelationID   string     `json:"correlation_id"`
	ConsumedAt      *time.Time `json:"consumed_at,omitempty"`
	CharterMediaID  *string    `json:"charter_media_id,omitempty"`
	Error           *string    `json:"error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RefKind is the permanent media kind on a charter.
type RefKind string

const (
	RefKindPhoto RefKind = "CHARTER_PHOTO"
	RefKindVideo RefKind = "CHARTER_VIDEO"
)

// RefKindFor maps an upload kind to its permanent counterpart.
func RefKindFor(kind Kind) RefKind {
	if kind == KindVideo {
		return RefKindVideo
	}
	return RefKindPhoto
}

// CharterMediaRef is a permanent media record attached to a charter.
type CharterMediaRef struct {
	ID              string    `json:"id"`
	CharterID       string    `json:"charter_id"`
	Kind            RefKind   `json:"kind"`
	URL             string    `json:"url"`
	StorageKey      string    `json:"storage_key"`
	SortOrder       int       `json:"sort_order"`
	ThumbnailURL    *string   `json:"thumbnail_url,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	Width           *int      `json:"width,omitempty"`
	Height          *int      `json:"height,omitempty"`
	PendingMediaID  *string   `json:"pending_media_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Upload describes one uploaded object handed to Ingest.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// VideoView is the poll-friendly projection of a pending video.
type VideoView struct {
	ID            string  `json:"id"`
	Status        Status  `json:"status"`
	CorrelationID string  `json:"correlation_id"`
	FinalURL      *string `json:"final_url,omitempty"`
	ThumbnailURL  *string `json:"thumbnail_url,omitempty"`
	Error         *string `json:"error,omitempty"`
	CreatedAt     int64   `json:"created_at"`
}

// ReadyOutputs captures the normalized artifacts recorded when a job
// completes.
type ReadyOutputs struct {
	FinalKey        string
	FinalURL        string
	ThumbnailKey    *string
	ThumbnailURL    *string
	DurationSeconds *int
	Width           *int
	Height          *int
}

// Repository defines persistence operations for pending and charter media.
// Status moves and the charter link are conditional updates so concurrent
// completion signals have exactly one winner.
type Repository interface {
	CreatePending(ctx context.Context, pm *PendingMedia) error
	GetPendingByID(ctx context.Context, id string) (*PendingMedia, error)
	FindPendingByCorrelation(ctx context.Context, userID, correlationID string) (*PendingMedia, error)
	// TransitionStatus succeeds only when the stored status still equals from.
	TransitionStatus(ctx context.Context, id string, from, to Status) (bool, error)
	// MarkReady records outputs, guarded on the record not yet being terminal.
	MarkReady(ctx context.Context, id string, outputs ReadyOutputs) (bool, error)
	// MarkFailed records the diagnostic, guarded on the record not yet being terminal.
	MarkFailed(ctx context.Context, id string, diagnostic string) (bool, error)
	// AttachCharterMedia inserts the charter media row and claims the pending
	// record in one transaction; claimed is false when another attach won.
	AttachCharterMedia(ctx context.Context, pendingID string, ref *CharterMediaRef) (claimed bool, err error)
	GetCharterMediaByID(ctx context.Context, id string) (*CharterMediaRef, error)
	NextSortOrder(ctx context.Context, charterID string) (int, error)
	ListVideosByOwner(ctx context.Context, ownerID string) ([]*PendingMedia, error)
	ListReadyUnconsumedVideos(ctx context.Context, ownerID string) ([]*PendingMedia, error)
}

// Storage is the blob object store boundary: put returns a stable URL.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NormalizeResult is what the out-of-process transcode worker produces.
type NormalizeResult struct {
	VideoURL        string `json:"video_url"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
}

// TranscodeJob identifies one normalization request.
type TranscodeJob struct {
	PendingMediaID string `json:"pending_media_id"`
	OriginalKey    string `json:"original_key"`
	OriginalURL    string `json:"original_url"`
}

// Engine is the opaque normalization function: source video in, normalized
// video plus thumbnail out. FetchOutput streams a produced artifact.
type Engine interface {
	Normalize(ctx context.Context, sourceURL string) (*NormalizeResult, error)
	FetchOutput(ctx context.Context, url string) (io.ReadCloser, string, error)
}

// QueuePublisher hands a job to the worker's queue-accepting endpoint. The
// worker may process synchronously and return the result inline.
type QueuePublisher interface {
	Publish(ctx context.Context, job TranscodeJob) (*NormalizeResult, error)
}
