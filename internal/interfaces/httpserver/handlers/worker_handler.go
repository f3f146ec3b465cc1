package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "charterhub/charter-api/internal/domain/media"
	"charterhub/charter-api/internal/infrastructure/metrics"
	"charterhub/charter-api/internal/interfaces/httpserver/requests"
	"charterhub/charter-api/internal/interfaces/httpserver/responses"
	"charterhub/charter-api/internal/utils/platformerrors"
)

// WorkerHandler is the queue-delivery endpoint: it runs one transcode job
// to its terminal state. The route is idempotent; redelivering a finished
// job answers with the recorded outcome without reprocessing.
type WorkerHandler struct {
	processor *domain.Processor
	log       zerolog.Logger
}

func NewWorkerHandler(processor *domain.Processor, log zerolog.Logger) *WorkerHandler {
	return &WorkerHandler{
		processor: processor,
		log:       log.With().Str("component", "worker-handler").Logger(),
	}
}

// Transcode processes one job synchronously and reports the terminal state.
func (h *WorkerHandler) Transcode(c *gin.Context) {
	var req requests.TranscodeJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "f4b9e2c7-0d5a-4f8b-a3e6-1c9d5f2b7e0a")
		return
	}

	start := time.Now()
	pm, err := h.processor.Process(c.Request.Context(), req.PendingMediaID)
	if err != nil {
		h.log.Error().Err(err).Str("pending_media_id", req.PendingMediaID).Msg("transcode job failed")
		if pm == nil {
			responses.HandleError(c, err, "transcode job failed")
			return
		}
		// The record carries the failure; answer with it so the queue does
		// not redeliver a job that already reached a terminal state.
		c.JSON(http.StatusUnprocessableEntity, responses.BuildTranscodeResultResponse(pm))
		return
	}
	metrics.TranscodeDuration.Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, responses.BuildTranscodeResultResponse(pm))
}
