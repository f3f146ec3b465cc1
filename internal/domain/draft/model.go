package draft

import "time"

// Status is the lifecycle state of a draft.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusDeleted   Status = "DELETED"
)

// IsTerminal reports whether no further mutation is accepted.
func (s Status) IsTerminal() bool {
	return s == StatusSubmitted || s == StatusDeleted
}

// CanTransitionTo reports whether the transition is allowed. Status moves
// forward only: DRAFT -> {SUBMITTED, DELETED}.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusDraft && (next == StatusSubmitted || next == StatusDeleted)
}

// Draft is a user's in-progress charter submission. Data is the
// semi-structured wizard document (operator info, boat, trips, policies,
// pickup, media refs) merged field-by-field on each patch.
type Draft struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Status      Status         `json:"status"`
	Version     int            `json:"version"`
	Data        map[string]any `json:"data"`
	CurrentStep int            `json:"current_step"`
	CharterID   *string        `json:"charter_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
