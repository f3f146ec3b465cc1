package charter

import "time"

// Charter is the permanent record a draft is promoted into on finalize.
type Charter struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	BoatID      string    `json:"boat_id"`
	DraftID     string    `json:"draft_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Boat captures the vessel details drawn from the draft document.
type Boat struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"`
	LengthFt  float64   `json:"length_ft,omitempty"`
	Capacity  int       `json:"capacity,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MediaItem is one entry of the finalize media payload.
type MediaItem struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// MediaPayload is the media manifest submitted with finalize.
type MediaPayload struct {
	Images []MediaItem `json:"images"`
	Videos []MediaItem `json:"videos"`
}

// GalleryItem is a permanent photo row created during finalize; payload order
// is the caller's drag ordering and becomes the sort order.
type GalleryItem struct {
	ID        string
	CharterID string
	Name      string
	URL       string
	SortOrder int
}
