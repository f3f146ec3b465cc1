package v1

import (
	"github.com/gin-gonic/gin"

	"charterhub/charter-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under the /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	group.POST("/drafts", r.handlers.Draft.Create)
	group.GET("/drafts/:id", r.handlers.Draft.Get)
	group.PATCH("/drafts/:id", r.handlers.Draft.Patch)
	group.DELETE("/drafts/:id", r.handlers.Draft.Delete)
	group.POST("/drafts/:id/finalize", r.handlers.Draft.Finalize)

	group.POST("/media/video", r.handlers.Media.UploadVideo)
	group.POST("/media/image", r.handlers.Media.UploadImage)
	group.GET("/videos/list", r.handlers.Media.ListVideos)
}
