package transcoder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"charterhub/charter-api/internal/config"
	"charterhub/charter-api/internal/domain/media"
	"charterhub/charter-api/internal/infrastructure/metrics"
)

// EngineClient calls the external normalization engine: it takes the source
// video URL and returns URLs for the normalized video and its thumbnail. The
// engine is treated as opaque; this client never inspects the video itself.
type EngineClient struct {
	baseURL    string
	httpClient *resty.Client
	log        zerolog.Logger
}

type normalizeRequest struct {
	SourceURL string `json:"source_url"`
}

func NewEngineClient(cfg *config.Config, log zerolog.Logger) *EngineClient {
	baseURL := strings.TrimRight(cfg.TranscodeEngineURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", "charter-api/1.0").
		SetTimeout(cfg.EngineTimeout)
	return &EngineClient{
		baseURL:    baseURL,
		httpClient: client,
		log:        log.With().Str("component", "transcode-engine").Logger(),
	}
}

func (c *EngineClient) IsEnabled() bool {
	return c != nil && c.baseURL != ""
}

// Normalize submits the source video and waits for the engine to finish.
func (c *EngineClient) Normalize(ctx context.Context, sourceURL string) (*media.NormalizeResult, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("transcode engine is not configured")
	}
	var result media.NormalizeResult
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(normalizeRequest{SourceURL: sourceURL}).
		SetResult(&result).
		Post("/normalize")
	if err != nil {
		metrics.TranscodeDispatchTotal.WithLabelValues("direct", "error").Inc()
		return nil, fmt.Errorf("transcode engine request failed: %w", err)
	}
	if resp.IsError() {
		metrics.TranscodeDispatchTotal.WithLabelValues("direct", "error").Inc()
		return nil, fmt.Errorf("transcode engine error (%d): %s", resp.StatusCode(), resp.String())
	}
	if result.VideoURL == "" {
		metrics.TranscodeDispatchTotal.WithLabelValues("direct", "error").Inc()
		return nil, fmt.Errorf("transcode engine returned no video url")
	}
	metrics.TranscodeDispatchTotal.WithLabelValues("direct", "ok").Inc()
	return &result, nil
}

// FetchOutput streams a produced artifact so it can be copied into our own
// storage without buffering the whole file.
func (c *EngineClient) FetchOutput(ctx context.Context, url string) (io.ReadCloser, string, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("fetch transcode output: %w", err)
	}
	raw := resp.RawResponse
	if raw == nil {
		return nil, "", fmt.Errorf("fetch transcode output: empty response")
	}
	if raw.StatusCode != http.StatusOK {
		raw.Body.Close()
		return nil, "", fmt.Errorf("fetch transcode output: unexpected status %d", raw.StatusCode)
	}
	return raw.Body, raw.Header.Get("Content-Type"), nil
}
