package requests

import (
	"charterhub/charter-api/internal/domain/charter"
)

// PatchDraftRequest carries a partial document merge. ClientVersion is
// required: every write declares which revision it was based on.
type PatchDraftRequest struct {
	ClientVersion int            `json:"client_version" binding:"required"`
	Data          map[string]any `json:"data"`
	CurrentStep   *int           `json:"current_step"`
}

// FinalizeDraftRequest submits the draft for promotion into a charter. The
// optional version check rides the X-Draft-Version header, not the body.
type FinalizeDraftRequest struct {
	Media FinalizeMediaBlock `json:"media"`
}

// FinalizeMediaBlock is the media manifest: ordered gallery images plus any
// videos the client wants echoed in the confirmation.
type FinalizeMediaBlock struct {
	Images []MediaItemRequest `json:"images"`
	Videos []MediaItemRequest `json:"videos"`
}

// MediaItemRequest is one named media entry.
type MediaItemRequest struct {
	Name string `json:"name"`
	URL  string `json:"url" binding:"required"`
}

// ToDomain converts the media block to the domain payload.
func (b FinalizeMediaBlock) ToDomain() charter.MediaPayload {
	payload := charter.MediaPayload{
		Images: make([]charter.MediaItem, 0, len(b.Images)),
		Videos: make([]charter.MediaItem, 0, len(b.Videos)),
	}
	for _, img := range b.Images {
		payload.Images = append(payload.Images, charter.MediaItem{Name: img.Name, URL: img.URL})
	}
	for _, vid := range b.Videos {
		payload.Videos = append(payload.Videos, charter.MediaItem{Name: vid.Name, URL: vid.URL})
	}
	return payload
}
