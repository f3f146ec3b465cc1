package requests

// TranscodeJobRequest is the worker queue delivery for one normalization
// job.
type TranscodeJobRequest struct {
	PendingMediaID string `json:"pending_media_id" binding:"required"`
	OriginalKey    string `json:"original_key"`
	OriginalURL    string `json:"original_url"`
}
