package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/suncrest/suncrest-backend/internal/apiversion"
	"github.com/suncrest/suncrest-backend/internal/invoices/domain"
	"github.com/suncrest/suncrest-backend/internal/invoices/repository"
	"github.com/suncrest/suncrest-backend/internal/invoices/service"
)

type Handler struct {
	repo       *repository.InvoiceRepository
	svc        *service.ApprovalService
	dispatcher *apiversion.Dispatcher
}

func NewHandler(repo *repository.InvoiceRepository, svc *service.ApprovalService, dispatcher *apiversion.Dispatcher) *Handler {
	return &Handler{repo: repo, svc: svc, dispatcher: dispatcher}
}

type createInvoiceBody struct {
	ContractID  string     `json:"contract_id" binding:"required"`
	Number      string     `json:"number" binding:"required"`
	AmountCents int64      `json:"amount_cents" binding:"required"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *Handler) Create(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var body createInvoiceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	inv := &domain.Invoice{
		TenantID:    tenantID,
		ContractID:  body.ContractID,
		Number:      body.Number,
		AmountCents: body.AmountCents,
		DueDate:     body.DueDate,
	}
	if err := h.svc.Create(c.Request.Context(), inv); err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create invoice"})
		return
	}

	h.dispatcher.Respond(c, http.StatusCreated, map[string]any{"invoice": inv})
}

func (h *Handler) Get(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	inv, err := h.repo.GetByID(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.dispatcher.Respond(c, http.StatusOK, map[string]any{"invoice": inv})
}

func (h *Handler) List(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	status := domain.Status(c.Query("status"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	invoices, total, err := h.repo.List(c.Request.Context(), tenantID, status, page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list invoices"})
		return
	}

	totalPages := (total + perPage - 1) / perPage
	h.dispatcher.Respond(c, http.StatusOK, map[string]any{
		"invoices": invoices,
		"pagination": map[string]any{
			"current_page":   page,
			"total_pages":    totalPages,
			"total_items":    total,
			"items_per_page": perPage,
			"has_next":       page < totalPages,
			"has_previous":   page > 1,
		},
	})
}

func (h *Handler) Submit(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	inv, err := h.svc.Submit(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.dispatcher.Respond(c, http.StatusOK, map[string]any{"invoice": inv})
}

type approvalBody struct {
	ApproverID string `json:"approver_id" binding:"required"`
}

func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, h.svc.Approve)
}

func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, h.svc.Reject)
}

func (h *Handler) decide(c *gin.Context, fn func(ctx context.Context, tenantID, id, approverID string) (*domain.Invoice, error)) {
	tenantID := c.GetString("tenant_id")

	var body approvalBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	inv, err := fn(c.Request.Context(), tenantID, c.Param("id"), body.ApproverID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.dispatcher.Respond(c, http.StatusOK, map[string]any{"invoice": inv})
}

func (h *Handler) MarkPaid(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	inv, err := h.svc.MarkPaid(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.dispatcher.Respond(c, http.StatusOK, map[string]any{"invoice": inv})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrApproverRequired),
		errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invoice operation failed"})
	}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.POST("/:id/submit", h.Submit)
	r.POST("/:id/approve", h.Approve)
	r.POST("/:id/reject", h.Reject)
	r.POST("/:id/pay", h.MarkPaid)
}
