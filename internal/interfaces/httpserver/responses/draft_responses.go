package responses

import (
	"charterhub/charter-api/internal/domain/draft"
)

// DraftResponse is the API projection of a draft.
type DraftResponse struct {
	ID          string         `json:"id"`
	Status      string         `json:"status"`
	Version     int            `json:"version"`
	Data        map[string]any `json:"data"`
	CurrentStep int            `json:"current_step"`
	CharterID   *string        `json:"charter_id,omitempty"`
	CreatedAt   int64          `json:"created_at"`
	UpdatedAt   int64          `json:"updated_at"`
}

// BuildDraftResponse creates the response from the domain draft.
func BuildDraftResponse(d *draft.Draft) *DraftResponse {
	return &DraftResponse{
		ID:          d.ID,
		Status:      string(d.Status),
		Version:     d.Version,
		Data:        d.Data,
		CurrentStep: d.CurrentStep,
		CharterID:   d.CharterID,
		CreatedAt:   d.CreatedAt.Unix(),
		UpdatedAt:   d.UpdatedAt.Unix(),
	}
}

// ConflictResponse reports a lost optimistic-concurrency race: the caller's
// version was stale and the current server draft is returned for re-merge.
type ConflictResponse struct {
	Error  string         `json:"error"`
	Server *DraftResponse `json:"server"`
}

// BuildConflictResponse creates the conflict payload.
func BuildConflictResponse(server *draft.Draft) *ConflictResponse {
	return &ConflictResponse{
		Error:  "version_conflict",
		Server: BuildDraftResponse(server),
	}
}

// FinalizeResponse reports a successful promotion.
type FinalizeResponse struct {
	CharterID string `json:"charter_id"`
	Status    string `json:"status"`
}
