package charter

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"charterhub/charter-api/internal/config"
	"charterhub/charter-api/internal/domain/draft"
	"charterhub/charter-api/internal/domain/identity"
	"charterhub/charter-api/internal/utils/charterid"
	"charterhub/charter-api/internal/utils/platformerrors"
)

// DraftReader loads drafts with ownership enforcement.
type DraftReader interface {
	Get(ctx context.Context, id string, requester identity.Requester) (*draft.Draft, error)
}

// DraftSubmitter flips a draft to SUBMITTED under the version
// compare-and-swap; it must honor an ambient transaction on the context.
type DraftSubmitter interface {
	MarkSubmitted(ctx context.Context, id string, expectedVersion int, charterID string) (bool, error)
}

// Repository persists the permanent entities created by finalize; all
// methods must honor an ambient transaction on the context.
type Repository interface {
	CreateBoat(ctx context.Context, b *Boat) error
	CreateCharter(ctx context.Context, c *Charter) error
	CreateGallery(ctx context.Context, items []GalleryItem) error
}

// Transactor runs fn atomically.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// VideoAttacher links the owner's processed videos to the new charter after
// the finalize transaction commits.
type VideoAttacher interface {
	AttachOwnerReadyVideos(ctx context.Context, ownerID, charterID string)
}

// FinalizeResult reports the new charter id, or carries the current server
// draft when the caller's version was stale.
type FinalizeResult struct {
	CharterID string
	Conflict  bool
	Server    *draft.Draft
}

// Service is the finalize orchestrator: the one-way promotion of a draft into
// permanent Charter, Boat and gallery rows. Creation and the draft status
// flip happen in a single transaction; a charter without the flip (or vice
// versa) would violate the lifecycle invariant.
type Service struct {
	cfg      *config.Config
	drafts   DraftReader
	submit   DraftSubmitter
	repo     Repository
	tx       Transactor
	attacher VideoAttacher
	limiter  *RateLimiter
	log      zerolog.Logger
}

func NewService(cfg *config.Config, drafts DraftReader, submit DraftSubmitter, repo Repository, tx Transactor, attacher VideoAttacher, log zerolog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		drafts:   drafts,
		submit:   submit,
		repo:     repo,
		tx:       tx,
		attacher: attacher,
		limiter:  NewRateLimiter(cfg.FinalizeRateLimit, cfg.FinalizeRateWindow),
		log:      log.With().Str("component", "finalize-orchestrator").Logger(),
	}
}

// Limiter exposes the attempt limiter for tests.
func (s *Service) Limiter() *RateLimiter { return s.limiter }

// Finalize validates and promotes the draft. Preconditions are checked in a
// fixed order, each short-circuiting with its own error kind: ownership,
// lifecycle status, optional version match, media minimum, attempt limit.
func (s *Service) Finalize(ctx context.Context, draftID string, requester identity.Requester, clientVersion *int, media MediaPayload) (*FinalizeResult, error) {
	d, err := s.drafts.Get(ctx, draftID, requester)
	if err != nil {
		return nil, err
	}

	if d.Status != draft.StatusDraft {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeInvalidState,
			fmt.Sprintf("draft is %s and can no longer be submitted", d.Status),
			nil,
			"1e6c9b4f-8a2d-4e7b-b5f0-3d9c6a1e8f4b",
		)
	}

	if clientVersion != nil && *clientVersion != d.Version {
		return &FinalizeResult{Conflict: true, Server: d}, nil
	}

	if len(media.Images) < s.cfg.MinGalleryImages {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("at least %d gallery images are required", s.cfg.MinGalleryImages),
			nil,
			"5d8f2a7c-0b4e-4c9a-8e3d-6f1b9d4a7c2e",
		)
	}

	if !s.limiter.Allow(requester.UserID) {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeRateLimited,
			"too many submission attempts; try again later",
			nil,
			"9a3e6d0c-4f8b-4a1e-b7c2-0d5f8a3e6c9b",
		)
	}

	boat := boatFromDocument(d.Data)
	ch := &Charter{
		ID:          charterid.NewCharter(),
		OwnerID:     d.UserID,
		BoatID:      boat.ID,
		DraftID:     d.ID,
		Name:        charterNameFromDocument(d.Data, boat.Name),
		Description: stringField(d.Data, "description"),
		Location:    stringField(d.Data, "location"),
	}

	gallery := make([]GalleryItem, 0, len(media.Images))
	for i, img := range media.Images {
		gallery = append(gallery, GalleryItem{
			ID:        charterid.NewCharterMedia(),
			CharterID: ch.ID,
			Name:      img.Name,
			URL:       img.URL,
			SortOrder: i,
		})
	}

	conflict := false
	err = s.tx.Run(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateBoat(txCtx, boat); err != nil {
			return err
		}
		if err := s.repo.CreateCharter(txCtx, ch); err != nil {
			return err
		}
		if err := s.repo.CreateGallery(txCtx, gallery); err != nil {
			return err
		}
		won, err := s.submit.MarkSubmitted(txCtx, d.ID, d.Version, ch.ID)
		if err != nil {
			return err
		}
		if !won {
			conflict = true
			return fmt.Errorf("draft version moved during finalize")
		}
		return nil
	})
	if err != nil {
		if conflict {
			server, getErr := s.drafts.Get(ctx, draftID, requester)
			if getErr != nil {
				return nil, getErr
			}
			return &FinalizeResult{Conflict: true, Server: server}, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeDatabaseError,
			"finalize transaction failed",
			err,
			"2c7b0e5a-9d4f-4b8c-a1e6-3f0d7b2c5e8a",
		)
	}

	if s.attacher != nil {
		s.attacher.AttachOwnerReadyVideos(ctx, d.UserID, ch.ID)
	}

	s.log.Info().
		Str("draft_id", d.ID).
		Str("charter_id", ch.ID).
		Str("owner_id", d.UserID).
		Msg("draft finalized")
	return &FinalizeResult{CharterID: ch.ID}, nil
}

func boatFromDocument(data map[string]any) *Boat {
	boat := &Boat{
		ID:        charterid.NewBoat(),
		CreatedAt: time.Now().UTC(),
	}
	section, _ := data["boat"].(map[string]any)
	boat.Name = stringField(section, "name")
	boat.Type = stringField(section, "type")
	boat.LengthFt = floatField(section, "lengthFt")
	boat.Capacity = intField(section, "capacity")
	if boat.Name == "" {
		boat.Name = "Unnamed vessel"
	}
	return boat
}

func charterNameFromDocument(data map[string]any, boatName string) string {
	if name := stringField(data, "name"); name != "" {
		return name
	}
	if operator, ok := data["operator"].(map[string]any); ok {
		if name := stringField(operator, "displayName"); name != "" {
			return name
		}
	}
	return boatName + " charter"
}

func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	v, _ := data[key].(string)
	return v
}

func floatField(data map[string]any, key string) float64 {
	if data == nil {
		return 0
	}
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func intField(data map[string]any, key string) int {
	if data == nil {
		return 0
	}
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
