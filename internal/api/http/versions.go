package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suncrest/suncrest-backend/internal/apiversion"
)

// VersionsHandler exposes the supported version set and per-version
// compatibility metadata to API consumers.
type VersionsHandler struct {
	dispatcher *apiversion.Dispatcher
}

func NewVersionsHandler(dispatcher *apiversion.Dispatcher) *VersionsHandler {
	return &VersionsHandler{dispatcher: dispatcher}
}

func (h *VersionsHandler) ListVersions(c *gin.Context) {
	reg := h.dispatcher.Registry()

	infos := make([]apiversion.CompatibilityInfo, 0, len(reg.Supported()))
	for _, v := range reg.Supported() {
		info, _ := reg.CompatibilityInfo(v, h.dispatcher.Graph())
		infos = append(infos, info)
	}

	h.dispatcher.Respond(c, http.StatusOK, map[string]any{
		"versions":        infos,
		"default_version": reg.Default().String(),
		"latest_version":  reg.Latest().String(),
	})
}

func (h *VersionsHandler) GetVersion(c *gin.Context) {
	v, err := apiversion.Parse(c.Param("version"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unsupported API version",
			"details": gin.H{
				"supported_versions": h.dispatcher.Registry().SupportedStrings(),
			},
		})
		return
	}

	info, ok := h.dispatcher.Registry().CompatibilityInfo(v, h.dispatcher.Graph())
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unsupported API version",
			"details": gin.H{
				"supported_versions": h.dispatcher.Registry().SupportedStrings(),
			},
		})
		return
	}

	h.dispatcher.Respond(c, http.StatusOK, map[string]any{
		"version_details": info,
	})
}

func (h *VersionsHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/versions", h.ListVersions)
	r.GET("/versions/:version", h.GetVersion)
}
