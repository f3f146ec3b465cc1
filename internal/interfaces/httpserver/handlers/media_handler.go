package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"charterhub/charter-api/internal/config"
	domain "charterhub/charter-api/internal/domain/media"
	"charterhub/charter-api/internal/infrastructure/auth"
	"charterhub/charter-api/internal/infrastructure/metrics"
	"charterhub/charter-api/internal/interfaces/httpserver/responses"
	"charterhub/charter-api/internal/utils/platformerrors"
)

// MediaHandler exposes the upload and poll endpoints. Uploads are multipart
// form posts with the object in the "file" field; the optional charter_id
// form field pre-targets the attachment and X-Correlation-ID (or the
// correlation_id form field) makes the upload retryable.
type MediaHandler struct {
	cfg     *config.Config
	service *domain.Service
	log     zerolog.Logger
}

func NewMediaHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "media-handler").Logger(),
	}
}

// UploadVideo accepts a video and answers 202 as soon as the tracking
// record exists; transcoding continues in the background and the client
// polls ListVideos.
func (h *MediaHandler) UploadVideo(c *gin.Context) {
	h.upload(c, domain.KindVideo, http.StatusAccepted)
}

// UploadImage accepts an image and answers 201 with the final URL; image
// processing is synchronous.
func (h *MediaHandler) UploadImage(c *gin.Context) {
	h.upload(c, domain.KindImage, http.StatusCreated)
}

func (h *MediaHandler) upload(c *gin.Context, kind domain.Kind, successStatus int) {
	requester, ok := auth.RequesterFrom(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing requester identity", "b6e1d8a4-0c7f-4f2b-9a5d-4e8c1b6f0a3d")
		return
	}

	upload, err := h.readUpload(c)
	if err != nil {
		responses.HandleError(c, err, "invalid upload")
		return
	}

	var charterID *string
	if value := strings.TrimSpace(c.PostForm("charter_id")); value != "" {
		charterID = &value
	}
	// header wins; the correlation_id form field covers clients that cannot
	// set custom headers
	correlationID := strings.TrimSpace(c.GetHeader("X-Correlation-ID"))
	if correlationID == "" {
		correlationID = strings.TrimSpace(c.PostForm("correlation_id"))
	}

	pm, err := h.service.Ingest(c.Request.Context(), *upload, kind, requester.UserID, charterID, correlationID)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(string(kind), "error").Inc()
		responses.HandleError(c, err, "upload failed")
		return
	}

	metrics.UploadsTotal.WithLabelValues(string(kind), "accepted").Inc()
	metrics.UploadBytesTotal.WithLabelValues(string(kind)).Add(float64(len(upload.Data)))
	c.JSON(successStatus, responses.BuildUploadResponse(pm))
}

// ListVideos answers the poll: every video the requester has uploaded, with
// its current status and, once READY, the playback and thumbnail URLs.
func (h *MediaHandler) ListVideos(c *gin.Context) {
	requester, ok := auth.RequesterFrom(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing requester identity", "3f8b5c0e-7a2d-4d9f-b4e1-6c0a8f3d5b7e")
		return
	}

	ownerID := requester.UserID
	if q := strings.TrimSpace(c.Query("owner_id")); q != "" && requester.Admin {
		ownerID = q
	}

	views, err := h.service.ListVideos(c.Request.Context(), ownerID)
	if err != nil {
		responses.HandleError(c, err, "failed to list videos")
		return
	}

	c.JSON(http.StatusOK, responses.VideoListResponse{Videos: views})
}

func (h *MediaHandler) readUpload(c *gin.Context) (*domain.Upload, error) {
	ctx := c.Request.Context()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerHandler,
			platformerrors.ErrorTypeValidation,
			"multipart field 'file' is required",
			err,
			"a2d7f4b0-8e5c-4b1a-9f6d-2c8e5a0d7f4b",
		)
	}
	defer file.Close()

	if header.Size > h.cfg.MaxMediaBytes {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerHandler,
			platformerrors.ErrorTypeValidation,
			"upload exceeds the maximum allowed size",
			nil,
			"5e0c8a3f-2b7d-4e4c-8a1f-9d6b3e0c8a5f",
		)
	}

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxMediaBytes+1))
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerHandler,
			platformerrors.ErrorTypeInternal,
			"failed to read upload",
			err,
			"7c4e1b9d-6f0a-4c5e-b2d8-0a7f4c1e9b6d",
		)
	}
	if int64(len(data)) > h.cfg.MaxMediaBytes {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerHandler,
			platformerrors.ErrorTypeValidation,
			"upload exceeds the maximum allowed size",
			nil,
			"d9f6a3c0-4b8e-4a7d-9c2f-5e1b8d4a6c0f",
		)
	}

	return &domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
