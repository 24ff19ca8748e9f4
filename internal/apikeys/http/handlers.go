package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suncrest/suncrest-backend/internal/apikeys/domain"
	"github.com/suncrest/suncrest-backend/internal/apikeys/repository"
)

type Handler struct {
	repo *repository.APIKeyRepository
}

func NewHandler(repo *repository.APIKeyRepository) *Handler {
	return &Handler{repo: repo}
}

type createKeyBody struct {
	Name            string `json:"name" binding:"required"`
	RateLimitPerMin int    `json:"rate_limit_per_min"`
}

// Create mints a new API key for the calling tenant. The raw key is
// returned once and never again.
func (h *Handler) Create(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var body createKeyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	key, raw, err := h.repo.Create(c.Request.Context(), tenantID, body.Name, body.RateLimitPerMin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create API key"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"api_key": key,
		"key":     raw,
	})
}

func (h *Handler) List(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	keys, err := h.repo.ListByTenant(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list API keys"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"api_keys": keys})
}

func (h *Handler) Revoke(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	err := h.repo.Revoke(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrAPIKeyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "API key not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke API key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"revoked": true})
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("", h.Create)
	r.GET("", h.List)
	r.DELETE("/:id", h.Revoke)
}
