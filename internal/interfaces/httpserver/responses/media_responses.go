package responses

import (
	"charterhub/charter-api/internal/domain/media"
)

// UploadResponse acknowledges an accepted upload. For videos the status is
// QUEUED and the client polls /v1/videos/list; for images it is READY
// immediately.
type UploadResponse struct {
	ID            string  `json:"pending_media_id"`
	Kind          string  `json:"kind"`
	Status        string  `json:"status"`
	CorrelationID string  `json:"correlation_id"`
	URL           *string `json:"url,omitempty"`
}

// BuildUploadResponse creates the response from the pending record.
func BuildUploadResponse(pm *media.PendingMedia) *UploadResponse {
	resp := &UploadResponse{
		ID:            pm.ID,
		Kind:          string(pm.Kind),
		Status:        string(pm.Status),
		CorrelationID: pm.CorrelationID,
	}
	if pm.Status == media.StatusReady {
		resp.URL = pm.FinalURL
	}
	return resp
}

// VideoListResponse is the poll answer for the owner's videos.
type VideoListResponse struct {
	Videos []media.VideoView `json:"videos"`
}

// TranscodeResultResponse is the worker route's answer: the terminal state
// the job reached.
type TranscodeResultResponse struct {
	ID     string  `json:"pending_media_id"`
	Status string  `json:"status"`
	URL    *string `json:"url,omitempty"`
	Error  *string `json:"error,omitempty"`
}

// BuildTranscodeResultResponse creates the worker response.
func BuildTranscodeResultResponse(pm *media.PendingMedia) *TranscodeResultResponse {
	return &TranscodeResultResponse{
		ID:     pm.ID,
		Status: string(pm.Status),
		URL:    pm.FinalURL,
		Error:  pm.Error,
	}
}
