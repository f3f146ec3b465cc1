package draft_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"charterhub/charter-api/internal/domain/draft"
	"charterhub/charter-api/internal/domain/identity"
	"charterhub/charter-api/internal/utils/platformerrors"
)

// MockRepository is a function-field mock of draft.Repository.
type MockRepository struct {
	CreateFunc           func(ctx context.Context, d *draft.Draft) error
	GetByIDFunc          func(ctx context.Context, id string) (*draft.Draft, error)
	FindActiveByUserFunc func(ctx context.Context, userID string) (*draft.Draft, error)
	UpdateVersionedFunc  func(ctx context.Context, id string, expectedVersion int, data map[string]any, currentStep *int) (bool, error)
	MarkSubmittedFunc    func(ctx context.Context, id string, expectedVersion int, charterID string) (bool, error)
	SoftDeleteFunc       func(ctx context.Context, id string) (bool, error)
}

func (m *MockRepository) Create(ctx context.Context, d *draft.Draft) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, d)
	}
	return nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*draft.Draft, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRepository) FindActiveByUser(ctx context.Context, userID string) (*draft.Draft, error) {
	if m.FindActiveByUserFunc != nil {
		return m.FindActiveByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) UpdateVersioned(ctx context.Context, id string, expectedVersion int, data map[string]any, currentStep *int) (bool, error) {
	if m.UpdateVersionedFunc != nil {
		return m.UpdateVersionedFunc(ctx, id, expectedVersion, data, currentStep)
	}
	return true, nil
}

func (m *MockRepository) MarkSubmitted(ctx context.Context, id string, expectedVersion int, charterID string) (bool, error) {
	if m.MarkSubmittedFunc != nil {
		return m.MarkSubmittedFunc(ctx, id, expectedVersion, charterID)
	}
	return true, nil
}

func (m *MockRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, id)
	}
	return true, nil
}

func owner() identity.Requester {
	return identity.Requester{UserID: "captain-1"}
}

func storedDraft() *draft.Draft {
	return &draft.Draft{
		ID:      "drf_01",
		UserID:  "captain-1",
		Status:  draft.StatusDraft,
		Version: 3,
		Data:    map[string]any{"name": "Reel Deal"},
	}
}

func TestCreateReturnsExistingActiveDraft(t *testing.T) {
	existing := storedDraft()
	created := false
	repo := &MockRepository{
		FindActiveByUserFunc: func(ctx context.Context, userID string) (*draft.Draft, error) {
			return existing, nil
		},
		CreateFunc: func(ctx context.Context, d *draft.Draft) error {
			created = true
			return nil
		},
	}
	svc := draft.NewService(repo, zerolog.Nop())

	d, err := svc.Create(context.Background(), "captain-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID != existing.ID {
		t.Errorf("id = %s, want %s", d.ID, existing.ID)
	}
	if created {
		t.Error("expected no new draft to be created")
	}
}

func TestCreateNewDraftStartsAtVersionOne(t *testing.T) {
	repo := &MockRepository{}
	svc := draft.NewService(repo, zerolog.Nop())

	d, err := svc.Create(context.Background(), "captain-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Version != 1 {
		t.Errorf("version = %d, want 1", d.Version)
	}
	if d.Status != draft.StatusDraft {
		t.Errorf("status = %s, want %s", d.Status, draft.StatusDraft)
	}
	if d.ID == "" {
		t.Error("expected a generated id")
	}
}

func TestGetHidesForeignDrafts(t *testing.T) {
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*draft.Draft, error) {
			return storedDraft(), nil
		},
	}
	svc := draft.NewService(repo, zerolog.Nop())

	_, err := svc.Get(context.Background(), "drf_01", identity.Requester{UserID: "someone-else"})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Fatalf("expected NOT_FOUND for foreign draft, got %v", err)
	}
}

func TestGetAllowsAdmin(t *testing.T) {
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*draft.Draft, error) {
			return storedDraft(), nil
		},
	}
	svc := draft.NewService(repo, zerolog.Nop())

	d, err := svc.Get(context.Background(), "drf_01", identity.Requester{UserID: "ops", Admin: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID != "drf_01" {
		t.Errorf("id = %s, want drf_01", d.ID)
	}
}

func TestPatchStaleVersionReturnsConflict(t *testing.T) {
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*draft.Draft, error) {
			return storedDraft(), nil
		},
		UpdateVersionedFunc: func(ctx context.Context, id string, expectedVersion int, data map[string]any, currentStep *int) (bool, error) {
			t.Fatal("no write may happen on a stale version")
			return false, nil
		},
	}
	svc := draft.NewService(repo, zerolog.Nop())

	result, err := svc.Patch(context.Background(), "drf_01", owner(), 2, map[string]any{"name": "Other"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Conflict {
		t.Fatal("expected conflict result")
	}
	if result.Server == nil || result.Server.Version != 3 {
		t.Errorf("expected server draft at version 3, got %+v", result.Server)
	}
}

func TestPatchLostRaceReturnsConflictWithFreshDraft(t *testing.T) {
	current := storedDraft()
	moved := storedDraft()
	moved.Version = 4
	calls := 0
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*draft.Draft, error) {
			calls++
			if calls == 1 {
				return current, nil
			}
			return moved, nil
		},
		UpdateVersionedFunc: func(ctx context.Context, id string, expectedVersion int, data map[string]any, currentStep *int) (bool, error) {
			return false, nil
		},
	}
	svc := draft.NewService(repo, zerolog.Nop())

	result, err := svc.Patch(context.Background(), "drf_01", owner(), 3, map[string]any{"name": "Other"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Conflict {
		t.Fatal("expected conflict after lost compare-and-swap")
	}
	if result.Server.Version != 4 {
		t.Errorf("server version = %d, want 4", result.Server.Version)
	}
}

func TestPatchEmptyDeltaSkipsWrite(t *testing.T) {
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*draft.Draft, error) {
			return storedDraft(), nil
		},
		UpdateVersionedFunc: func(ctx context.Context, id string, expectedVersion int, data map[string]any, currentStep *int) (bool, error) {
			t.Fatal("semantically empty patches must not write")
			return false, nil
		},
	}
	svc := draft.NewService(repo, zerolog.Nop())

	result, err := svc.Patch(context.Background(), "drf_01", owner(), 3, map[string]any{"name": "Reel Deal", "notes": ""}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Conflict {
		t.Fatal("unexpected conflict")
	}
	if result.Draft.Version != 3 {
		t.Errorf("version = %d, want unchanged 3", result.Draft.Version)
	}
}

func TestPatchRejectsSubmittedDraft(t *testing.T) {
	submitted := storedDraft()
	submitted.Status = draft.StatusSubmitted
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*draft.Draft, error) {
			return submitted, nil
		},
	}
	svc := draft.NewService(repo, zerolog.Nop())

	_, err := svc.Patch(context.Background(), "drf_01", owner(), 3, map[string]any{"name": "Other"}, nil)
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeInvalidState) {
		t.Fatalf("expected INVALID_STATE, got %v", err)
	}
}

func TestDeleteRejectsNonDraftStatus(t *testing.T) {
	submitted := storedDraft()
	submitted.Status = draft.StatusSubmitted
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*draft.Draft, error) {
			return submitted, nil
		},
	}
	svc := draft.NewService(repo, zerolog.Nop())

	err := svc.Delete(context.Background(), "drf_01", owner())
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeInvalidState) {
		t.Fatalf("expected INVALID_STATE, got %v", err)
	}
}

func TestDeleteSoftDeletes(t *testing.T) {
	deleted := false
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*draft.Draft, error) {
			return storedDraft(), nil
		},
		SoftDeleteFunc: func(ctx context.Context, id string) (bool, error) {
			deleted = true
			return true, nil
		},
	}
	svc := draft.NewService(repo, zerolog.Nop())

	if err := svc.Delete(context.Background(), "drf_01", owner()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected SoftDelete to be called")
	}
}
