package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"charterhub/charter-api/internal/domain/draft"
)

// Draft represents the database schema for charter drafts. The wizard
// document is stored as a single jsonb column; the version column backs the
// optimistic-concurrency compare-and-swap.
type Draft struct {
	ID          string         `gorm:"type:varchar(40);primaryKey"`
	UserID      string         `gorm:"type:varchar(64);index:idx_draft_user_status;not null"`
	Status      draft.Status   `gorm:"type:varchar(20);index:idx_draft_user_status;not null;default:'DRAFT'"`
	Version     int            `gorm:"not null;default:1"`
	Data        datatypes.JSON `gorm:"type:jsonb"`
	CurrentStep int            `gorm:"not null;default:0"`
	CharterID   *string        `gorm:"type:varchar(40)"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Draft.
func (Draft) TableName() string {
	return "drafts"
}

// EtoD converts the database entity to the domain model. A malformed stored
// document degrades to an empty one rather than failing the read.
func (d *Draft) EtoD() *draft.Draft {
	data := map[string]any{}
	if len(d.Data) > 0 {
		if err := json.Unmarshal(d.Data, &data); err != nil {
			data = map[string]any{}
		}
	}
	return &draft.Draft{
		ID:          d.ID,
		UserID:      d.UserID,
		Status:      d.Status,
		Version:     d.Version,
		Data:        data,
		CurrentStep: d.CurrentStep,
		CharterID:   d.CharterID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// NewSchemaDraft converts the domain model to its database entity.
func NewSchemaDraft(d *draft.Draft) (*Draft, error) {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return nil, err
	}
	return &Draft{
		ID:          d.ID,
		UserID:      d.UserID,
		Status:      d.Status,
		Version:     d.Version,
		Data:        datatypes.JSON(raw),
		CurrentStep: d.CurrentStep,
		CharterID:   d.CharterID,
	}, nil
}
