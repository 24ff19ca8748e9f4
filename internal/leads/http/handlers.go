package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/suncrest/suncrest-backend/internal/apiversion"
	"github.com/suncrest/suncrest-backend/internal/leads/domain"
	"github.com/suncrest/suncrest-backend/internal/leads/repository"
)

type Handler struct {
	repo       *repository.LeadRepository
	dispatcher *apiversion.Dispatcher
}

func NewHandler(repo *repository.LeadRepository, dispatcher *apiversion.Dispatcher) *Handler {
	return &Handler{repo: repo, dispatcher: dispatcher}
}

type createLeadBody struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Source      string  `json:"source"`
	EstimatedKW float64 `json:"estimated_kw"`
}

func (h *Handler) Create(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var body createLeadBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	lead := &domain.Lead{
		TenantID:    tenantID,
		Name:        body.Name,
		Email:       body.Email,
		Phone:       body.Phone,
		Source:      body.Source,
		EstimatedKW: body.EstimatedKW,
	}
	if err := h.repo.Create(c.Request.Context(), lead); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create lead"})
		return
	}

	h.dispatcher.Respond(c, http.StatusCreated, map[string]any{"lead": lead})
}

// ListBasic serves legacy clients without the analytics block.
func (h *Handler) ListBasic(c *gin.Context) {
	h.list(c, false)
}

// ListEnhanced additionally reports pipeline analytics.
func (h *Handler) ListEnhanced(c *gin.Context) {
	h.list(c, true)
}

func (h *Handler) list(c *gin.Context, withAnalytics bool) {
	tenantID := c.GetString("tenant_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	stage := domain.Stage(c.Query("stage"))
	if stage != "" && !stage.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stage filter"})
		return
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	leads, total, err := h.repo.List(c.Request.Context(), tenantID, stage, page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list leads"})
		return
	}

	totalPages := (total + perPage - 1) / perPage
	payload := map[string]any{
		"leads": leads,
		"pagination": map[string]any{
			"current_page":   page,
			"total_pages":    totalPages,
			"total_items":    total,
			"items_per_page": perPage,
			"has_next":       page < totalPages,
			"has_previous":   page > 1,
		},
	}

	if withAnalytics {
		counts, err := h.repo.StageCounts(c.Request.Context(), tenantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list leads"})
			return
		}
		open := 0
		for stage, n := range counts {
			if stage != domain.StageWon && stage != domain.StageLost {
				open += n
			}
		}
		payload["enhanced_analytics"] = map[string]any{
			"stage_counts": counts,
			"open_leads":   open,
			"won_leads":    counts[domain.StageWon],
			"lost_leads":   counts[domain.StageLost],
		}
	}

	h.dispatcher.Respond(c, http.StatusOK, payload)
}

func (h *Handler) Get(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	lead, err := h.repo.GetByID(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrLeadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get lead"})
		return
	}

	h.dispatcher.Respond(c, http.StatusOK, map[string]any{"lead": lead})
}

type updateStageBody struct {
	Stage domain.Stage `json:"stage" binding:"required"`
}

func (h *Handler) UpdateStage(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var body updateStageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	lead, err := h.repo.UpdateStage(c.Request.Context(), tenantID, c.Param("id"), body.Stage)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLeadNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		case errors.Is(err, domain.ErrInvalidStage), errors.Is(err, domain.ErrInvalidStageTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update stage"})
		}
		return
	}

	h.dispatcher.Respond(c, http.StatusOK, map[string]any{"lead": lead})
}

func (h *Handler) Delete(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	if err := h.repo.Delete(c.Request.Context(), tenantID, c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrLeadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete lead"})
		return
	}

	c.Status(http.StatusNoContent)
}
