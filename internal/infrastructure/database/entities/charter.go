package entities

import (
	"time"

	"charterhub/charter-api/internal/domain/charter"
	"charterhub/charter-api/internal/domain/media"
)

// Charter is the permanent record created when a draft is finalized.
type Charter struct {
	ID          string    `gorm:"type:varchar(40);primaryKey"`
	OwnerID     string    `gorm:"type:varchar(64);index;not null"`
	BoatID      string    `gorm:"type:varchar(40);not null"`
	DraftID     string    `gorm:"type:varchar(40);index;not null"`
	Name        string    `gorm:"type:varchar(256);not null"`
	Description string    `gorm:"type:text"`
	Location    string    `gorm:"type:varchar(256)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Charter.
func (Charter) TableName() string {
	return "charters"
}

// Boat holds the vessel details promoted out of the draft document.
type Boat struct {
	ID        string  `gorm:"type:varchar(40);primaryKey"`
	Name      string  `gorm:"type:varchar(256);not null"`
	Type      string  `gorm:"type:varchar(64)"`
	LengthFt  float64 `gorm:"type:numeric"`
	Capacity  int
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Boat.
func (Boat) TableName() string {
	return "boats"
}

// CharterMedia is a permanent, ordered media asset attached to a charter.
type CharterMedia struct {
	ID              string        `gorm:"type:varchar(40);primaryKey"`
	CharterID       string        `gorm:"type:varchar(40);index;not null"`
	Kind            media.RefKind `gorm:"type:varchar(20);not null"`
	URL             string        `gorm:"type:varchar(512);not null"`
	StorageKey      string        `gorm:"type:varchar(255)"`
	SortOrder       int           `gorm:"not null;default:0"`
	ThumbnailURL    *string       `gorm:"type:varchar(512)"`
	DurationSeconds *int
	Width           *int
	Height          *int
	PendingMediaID  *string   `gorm:"type:varchar(40);index"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for CharterMedia.
func (CharterMedia) TableName() string {
	return "charter_media"
}

// EtoD converts the charter media entity to its domain reference.
func (c *CharterMedia) EtoD() *media.CharterMediaRef {
	return &media.CharterMediaRef{
		ID:              c.ID,
		CharterID:       c.CharterID,
		Kind:            c.Kind,
		URL:             c.URL,
		StorageKey:      c.StorageKey,
		SortOrder:       c.SortOrder,
		ThumbnailURL:    c.ThumbnailURL,
		DurationSeconds: c.DurationSeconds,
		Width:           c.Width,
		Height:          c.Height,
		PendingMediaID:  c.PendingMediaID,
		CreatedAt:       c.CreatedAt,
	}
}

// NewSchemaCharterMedia converts a domain reference to its database entity.
func NewSchemaCharterMedia(ref *media.CharterMediaRef) *CharterMedia {
	return &CharterMedia{
		ID:              ref.ID,
		CharterID:       ref.CharterID,
		Kind:            ref.Kind,
		URL:             ref.URL,
		StorageKey:      ref.StorageKey,
		SortOrder:       ref.SortOrder,
		ThumbnailURL:    ref.ThumbnailURL,
		DurationSeconds: ref.DurationSeconds,
		Width:           ref.Width,
		Height:          ref.Height,
		PendingMediaID:  ref.PendingMediaID,
	}
}

// NewSchemaCharter converts the domain model to its database entity.
func NewSchemaCharter(c *charter.Charter) *Charter {
	return &Charter{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		BoatID:      c.BoatID,
		DraftID:     c.DraftID,
		Name:        c.Name,
		Description: c.Description,
		Location:    c.Location,
	}
}

// NewSchemaBoat converts the domain model to its database entity.
func NewSchemaBoat(b *charter.Boat) *Boat {
	return &Boat{
		ID:       b.ID,
		Name:     b.Name,
		Type:     b.Type,
		LengthFt: b.LengthFt,
		Capacity: b.Capacity,
	}
}
