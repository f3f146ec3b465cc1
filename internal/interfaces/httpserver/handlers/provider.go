package handlers

import (
	"github.com/rs/zerolog"

	"charterhub/charter-api/internal/config"
	charterdomain "charterhub/charter-api/internal/domain/charter"
	draftdomain "charterhub/charter-api/internal/domain/draft"
	mediadomain "charterhub/charter-api/internal/domain/media"
)

// Provider wires HTTP handlers.
type Provider struct {
	Draft  *DraftHandler
	Media  *MediaHandler
	Worker *WorkerHandler
}

func NewProvider(
	cfg *config.Config,
	drafts *draftdomain.Service,
	finalize *charterdomain.Service,
	media *mediadomain.Service,
	processor *mediadomain.Processor,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Draft:  NewDraftHandler(drafts, finalize, log),
		Media:  NewMediaHandler(cfg, media, log),
		Worker: NewWorkerHandler(processor, log),
	}
}
