package transcoder

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"charterhub/charter-api/internal/config"
	"charterhub/charter-api/internal/domain/media"
	"charterhub/charter-api/internal/infrastructure/metrics"
)

// QueuePublisher hands transcode jobs to the worker queue endpoint. A small
// deployment runs the worker synchronously and answers 200 with the result
// inline; a queue-backed deployment answers 202 and the result arrives later
// through the worker callback route.
type QueuePublisher struct {
	queueURL   string
	token      string
	httpClient *resty.Client
	log        zerolog.Logger
}

func NewQueuePublisher(cfg *config.Config, log zerolog.Logger) *QueuePublisher {
	return &QueuePublisher{
		queueURL: strings.TrimSpace(cfg.WorkerQueueURL),
		token:    strings.TrimSpace(cfg.WorkerQueueToken),
		httpClient: resty.New().
			SetHeader("User-Agent", "charter-api/1.0"),
		log: log.With().Str("component", "transcode-queue").Logger(),
	}
}

func (p *QueuePublisher) IsEnabled() bool {
	return p != nil && p.queueURL != ""
}

// Publish submits the job. The returned result is non-nil only when the
// worker processed the job synchronously.
func (p *QueuePublisher) Publish(ctx context.Context, job media.TranscodeJob) (*media.NormalizeResult, error) {
	if !p.IsEnabled() {
		return nil, fmt.Errorf("worker queue is not configured")
	}

	var result media.NormalizeResult
	req := p.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(job).
		SetResult(&result)
	if p.token != "" {
		req.SetAuthToken(p.token)
	}
	resp, err := req.Post(p.queueURL)
	if err != nil {
		metrics.TranscodeDispatchTotal.WithLabelValues("queue", "error").Inc()
		return nil, fmt.Errorf("publish transcode job: %w", err)
	}
	if resp.IsError() {
		metrics.TranscodeDispatchTotal.WithLabelValues("queue", "error").Inc()
		return nil, fmt.Errorf("worker queue error (%d): %s", resp.StatusCode(), resp.String())
	}
	metrics.TranscodeDispatchTotal.WithLabelValues("queue", "ok").Inc()

	if resp.StatusCode() == http.StatusAccepted || result.VideoURL == "" {
		p.log.Debug().
			Str("pending_media_id", job.PendingMediaID).
			Msg("transcode job queued for asynchronous processing")
		return nil, nil
	}
	return &result, nil
}
