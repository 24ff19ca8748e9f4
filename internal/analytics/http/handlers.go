package http

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suncrest/suncrest-backend/internal/analytics/forecast"
	"github.com/suncrest/suncrest-backend/internal/analytics/repository"
	"github.com/suncrest/suncrest-backend/internal/apiversion"
)

type Handler struct {
	repo       *repository.AnalyticsRepository
	dispatcher *apiversion.Dispatcher
}

func NewHandler(repo *repository.AnalyticsRepository, dispatcher *apiversion.Dispatcher) *Handler {
	return &Handler{repo: repo, dispatcher: dispatcher}
}

// Dashboard returns the tenant's cached summary plus pipeline and
// revenue breakdowns. The enhanced_analytics block is stripped for
// legacy clients by the response transformer.
func (h *Handler) Dashboard(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	ctx := c.Request.Context()

	summary, err := h.repo.GetSummary(ctx, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		summary, err = h.repo.RefreshSummary(ctx, tenantID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		return
	}

	stageCounts, err := h.repo.StageCounts(ctx, tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		return
	}

	revenue, err := h.repo.MonthlyRevenueSeries(ctx, tenantID, 12)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		return
	}

	h.dispatcher.Respond(c, http.StatusOK, map[string]any{
		"summary": summary,
		"enhanced_analytics": map[string]any{
			"stage_counts":    stageCounts,
			"monthly_revenue": revenue,
			"forecast":        forecast.Project(revenue),
		},
	})
}

// Refresh recomputes the tenant's summary on demand instead of waiting
// for the hourly job.
func (h *Handler) Refresh(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	summary, err := h.repo.RefreshSummary(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to refresh analytics"})
		return
	}

	h.dispatcher.Respond(c, http.StatusOK, map[string]any{"summary": summary})
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/dashboard", h.Dashboard)
	r.POST("/refresh", h.Refresh)
}
