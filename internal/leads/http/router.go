package http

import (
	"github.com/gin-gonic/gin"

	"github.com/suncrest/suncrest-backend/internal/apiversion"
)

// Register mounts the lead pipeline routes. The list endpoint is served
// per version: legacy clients get the basic shape, 1.1+ clients are
// dispatched to the enhanced handler.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("", h.dispatcher.Handle(map[apiversion.Version]gin.HandlerFunc{
		apiversion.MustParse("1.0"): h.ListBasic,
		apiversion.MustParse("1.1"): h.ListEnhanced,
		apiversion.MustParse("2.0"): h.ListEnhanced,
	}))
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.PATCH("/:id/stage", h.UpdateStage)
	r.DELETE("/:id", h.Delete)
}
