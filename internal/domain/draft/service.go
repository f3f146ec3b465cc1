package draft

import (
	"context"

	"github.com/rs/zerolog"

	"charterhub/charter-api/internal/domain/identity"
	"charterhub/charter-api/internal/utils/charterid"
	"charterhub/charter-api/internal/utils/platformerrors"
)

// Repository defines persistence operations needed by the draft service.
// Mutating operations are conditional updates: they report whether the write
// won (rows affected) instead of failing, so the service can turn a lost race
// into a conflict result.
type Repository interface {
	Create(ctx context.Context, d *Draft) error
	GetByID(ctx context.Context, id string) (*Draft, error)
	FindActiveByUser(ctx context.Context, userID string) (*Draft, error)
	// UpdateVersioned applies the merged document only when the stored
	// version still equals expectedVersion and the draft is still mutable.
	UpdateVersioned(ctx context.Context, id string, expectedVersion int, data map[string]any, currentStep *int) (bool, error)
	// MarkSubmitted flips the draft to SUBMITTED and records the charter id,
	// guarded by the same version compare-and-swap.
	MarkSubmitted(ctx context.Context, id string, expectedVersion int, charterID string) (bool, error)
	// SoftDelete marks the draft DELETED only while it is still DRAFT.
	SoftDelete(ctx context.Context, id string) (bool, error)
}

// PatchResult carries either the updated draft or, on a version mismatch, the
// current server-side draft for client-side re-merge.
type PatchResult struct {
	Draft    *Draft
	Conflict bool
	Server   *Draft
}

// Service implements the draft store: CRUD plus optimistic-concurrency
// patching over the wizard document.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "draft-service").Logger(),
	}
}

// Create returns the caller's active draft, creating one when none exists.
// A user has at most one un-submitted draft at a time.
func (s *Service) Create(ctx context.Context, userID string) (*Draft, error) {
	if userID == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeUnauthorized,
			"missing user identity",
			nil,
			"c1a4f0d2-8e6b-4f3a-9c5d-7b2e1a0f4d6c",
		)
	}

	existing, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	d := &Draft{
		ID:      charterid.NewDraft(),
		UserID:  userID,
		Status:  StatusDraft,
		Version: 1,
		Data:    map[string]any{},
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.log.Info().Str("draft_id", d.ID).Str("user_id", userID).Msg("draft created")
	return d, nil
}

// Get returns the draft when the requester owns it or is an admin. Ownership
// mismatches are reported as not found so callers cannot probe which ids
// exist.
func (s *Service) Get(ctx context.Context, id string, requester identity.Requester) (*Draft, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil || !requester.CanAccess(d.UserID) {
		return nil, s.notFound(ctx, id)
	}
	return d, nil
}

// Patch merges partial into the stored document under a version
// compare-and-swap. A clientVersion mismatch returns a conflict result
// carrying the current server draft; no partial write is possible.
func (s *Service) Patch(ctx context.Context, id string, requester identity.Requester, clientVersion int, partial map[string]any, currentStep *int) (*PatchResult, error) {
	d, err := s.Get(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	if d.Status != StatusDraft {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeInvalidState,
			"draft is no longer editable",
			nil,
			"5b9d2c7e-1f3a-4e8b-a6d0-9c4f7e2b5a8d",
		)
	}

	if d.Version != clientVersion {
		return &PatchResult{Conflict: true, Server: d}, nil
	}

	merged := MergeDocuments(d.Data, partial)
	delta := ComputeDelta(d.Data, merged)
	stepChanged := currentStep != nil && *currentStep != d.CurrentStep
	if delta.IsEmpty() && !stepChanged {
		// Nothing semantically new; skip the write and keep the version.
		return &PatchResult{Draft: d}, nil
	}

	won, err := s.repo.UpdateVersioned(ctx, id, clientVersion, merged, currentStep)
	if err != nil {
		return nil, err
	}
	if !won {
		server, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &PatchResult{Conflict: true, Server: server}, nil
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("draft_id", id).
		Int("version", updated.Version).
		Int("changed", len(delta.Changed)).
		Int("removed", len(delta.Removed)).
		Msg("draft patched")
	return &PatchResult{Draft: updated}, nil
}

// Delete soft-deletes the draft. Only drafts still in DRAFT may be deleted.
func (s *Service) Delete(ctx context.Context, id string, requester identity.Requester) error {
	d, err := s.Get(ctx, id, requester)
	if err != nil {
		return err
	}

	if d.Status != StatusDraft {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeInvalidState,
			"only drafts in DRAFT status can be deleted",
			nil,
			"8e3c6a1d-4b9f-4d2e-b7a5-0f6c9d3e8b1a",
		)
	}

	won, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !won {
		// A concurrent finalize or delete got there first.
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeInvalidState,
			"draft status changed concurrently",
			nil,
			"2f7a9d4c-6e1b-4a8f-9c3d-5b0e8f2a7d4c",
		)
	}

	s.log.Info().Str("draft_id", id).Msg("draft soft-deleted")
	return nil
}

func (s *Service) notFound(ctx context.Context, id string) error {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeNotFound,
		"draft not found: "+id,
		nil,
		"d4e8b2a6-0c5f-4f9d-8a1e-3b7c6d9f2e5a",
	)
}
