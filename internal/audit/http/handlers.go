package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/suncrest/suncrest-backend/internal/audit/repository"
)

type Handler struct {
	repo *repository.AuditRepository
}

func NewHandler(repo *repository.AuditRepository) *Handler {
	return &Handler{repo: repo}
}

// List returns the tenant's audit trail, newest first.
func (h *Handler) List(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	entries, total, err := h.repo.List(c.Request.Context(), tenantID, page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   total,
		"page":    page,
	})
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("", h.List)
}
