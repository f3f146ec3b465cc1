package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	charterdomain "charterhub/charter-api/internal/domain/charter"
	draftdomain "charterhub/charter-api/internal/domain/draft"
	"charterhub/charter-api/internal/infrastructure/auth"
	"charterhub/charter-api/internal/infrastructure/metrics"
	"charterhub/charter-api/internal/interfaces/httpserver/requests"
	"charterhub/charter-api/internal/interfaces/httpserver/responses"
	"charterhub/charter-api/internal/utils/platformerrors"
)

// DraftHandler exposes the draft lifecycle endpoints.
type DraftHandler struct {
	drafts   *draftdomain.Service
	finalize *charterdomain.Service
	log      zerolog.Logger
}

func NewDraftHandler(drafts *draftdomain.Service, finalize *charterdomain.Service, log zerolog.Logger) *DraftHandler {
	return &DraftHandler{
		drafts:   drafts,
		finalize: finalize,
		log:      log.With().Str("component", "draft-handler").Logger(),
	}
}

// Create opens a draft for the requester. When an active draft already
// exists it is returned instead of creating a second one, so the endpoint is
// safe to retry.
func (h *DraftHandler) Create(c *gin.Context) {
	requester, ok := auth.RequesterFrom(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing requester identity", "8d1f4b7a-3e0c-4c6d-9a2e-5f8b1d4c7a0e")
		return
	}

	d, err := h.drafts.Create(c.Request.Context(), requester.UserID)
	if err != nil {
		metrics.DraftWritesTotal.WithLabelValues("create", "error").Inc()
		responses.HandleError(c, err, "failed to create draft")
		return
	}

	metrics.DraftWritesTotal.WithLabelValues("create", "ok").Inc()
	c.JSON(http.StatusCreated, responses.BuildDraftResponse(d))
}

// Get returns the draft. Drafts owned by other users answer 404, not 403;
// existence is not revealed.
func (h *DraftHandler) Get(c *gin.Context) {
	requester, ok := auth.RequesterFrom(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing requester identity", "2a7d0e4f-9b5c-4f8a-b1d6-0c3e7a9f4b2d")
		return
	}

	d, err := h.drafts.Get(c.Request.Context(), c.Param("id"), requester)
	if err != nil {
		responses.HandleError(c, err, "failed to fetch draft")
		return
	}

	c.JSON(http.StatusOK, responses.BuildDraftResponse(d))
}

// Patch merges a partial document into the draft under the version
// compare-and-swap. A stale version answers 409 with the current server
// draft; nothing is partially written.
func (h *DraftHandler) Patch(c *gin.Context) {
	requester, ok := auth.RequesterFrom(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing requester identity", "6b3e8c1d-5f0a-4d7b-a9e4-2c6f0b3d8e1a")
		return
	}

	var req requests.PatchDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "0f5a8d2b-7c4e-4b9f-8e1a-6d0c4f7b2a5e")
		return
	}

	result, err := h.drafts.Patch(c.Request.Context(), c.Param("id"), requester, req.ClientVersion, req.Data, req.CurrentStep)
	if err != nil {
		metrics.DraftWritesTotal.WithLabelValues("patch", "error").Inc()
		responses.HandleError(c, err, "failed to update draft")
		return
	}
	if result.Conflict {
		metrics.DraftWritesTotal.WithLabelValues("patch", "conflict").Inc()
		c.JSON(http.StatusConflict, responses.BuildConflictResponse(result.Server))
		return
	}

	metrics.DraftWritesTotal.WithLabelValues("patch", "ok").Inc()
	c.JSON(http.StatusOK, responses.BuildDraftResponse(result.Draft))
}

// Delete abandons the draft.
func (h *DraftHandler) Delete(c *gin.Context) {
	requester, ok := auth.RequesterFrom(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing requester identity", "4c9f2b6e-0d8a-4a3c-b7f1-8e5d2c9a6f0b")
		return
	}

	if err := h.drafts.Delete(c.Request.Context(), c.Param("id"), requester); err != nil {
		metrics.DraftWritesTotal.WithLabelValues("delete", "error").Inc()
		responses.HandleError(c, err, "failed to delete draft")
		return
	}

	metrics.DraftWritesTotal.WithLabelValues("delete", "ok").Inc()
	c.Status(http.StatusNoContent)
}

// Finalize promotes the draft into a permanent charter.
func (h *DraftHandler) Finalize(c *gin.Context) {
	requester, ok := auth.RequesterFrom(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing requester identity", "e7b2d5f8-1a4c-4e0b-9d6a-3f8c5b2e0d7a")
		return
	}

	var req requests.FinalizeDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "9d4a7f0c-6e2b-4c8d-a5f1-0b7e4d9a2c6f")
		return
	}

	var clientVersion *int
	if raw := c.GetHeader("X-Draft-Version"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "X-Draft-Version must be an integer", "1b8e5d2a-7f4c-4a0e-b9d6-3c0f7e4a1b8d")
			return
		}
		clientVersion = &v
	}

	result, err := h.finalize.Finalize(c.Request.Context(), c.Param("id"), requester, clientVersion, req.Media.ToDomain())
	if err != nil {
		outcome := "error"
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeRateLimited) {
			outcome = "rate_limited"
		} else if platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
			outcome = "validation"
		}
		metrics.FinalizeTotal.WithLabelValues(outcome).Inc()
		responses.HandleError(c, err, "failed to finalize draft")
		return
	}
	if result.Conflict {
		metrics.FinalizeTotal.WithLabelValues("conflict").Inc()
		c.JSON(http.StatusConflict, responses.BuildConflictResponse(result.Server))
		return
	}

	metrics.FinalizeTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, responses.FinalizeResponse{
		CharterID: result.CharterID,
		Status:    string(draftdomain.StatusSubmitted),
	})
}
