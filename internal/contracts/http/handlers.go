package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/suncrest/suncrest-backend/internal/apiversion"
	"github.com/suncrest/suncrest-backend/internal/contracts/domain"
	"github.com/suncrest/suncrest-backend/internal/contracts/esign"
	"github.com/suncrest/suncrest-backend/internal/contracts/repository"
	leadsdomain "github.com/suncrest/suncrest-backend/internal/leads/domain"
)

// LeadReader is the slice of the leads repository the contract flow needs.
type LeadReader interface {
	GetByID(ctx context.Context, tenantID, id string) (*leadsdomain.Lead, error)
}

// Signer is the slice of the e-signature client the handlers need.
type Signer interface {
	CreateSignatureRequest(req esign.SignatureRequest) (string, error)
}

type Handler struct {
	repo       *repository.ContractRepository
	leads      LeadReader
	signer     Signer
	dispatcher *apiversion.Dispatcher
}

func NewHandler(repo *repository.ContractRepository, leads LeadReader, signer Signer, dispatcher *apiversion.Dispatcher) *Handler {
	return &Handler{repo: repo, leads: leads, signer: signer, dispatcher: dispatcher}
}

type createContractBody struct {
	LeadID      string  `json:"lead_id" binding:"required"`
	TotalCents  int64   `json:"total_cents" binding:"required"`
	SystemKW    float64 `json:"system_kw"`
	DocumentURL string  `json:"document_url"`
}

// Create generates a draft contract for a lead that has reached a
// contractable pipeline stage.
func (h *Handler) Create(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var body createContractBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	lead, err := h.leads.GetByID(c.Request.Context(), tenantID, body.LeadID)
	if err != nil {
		if errors.Is(err, leadsdomain.ErrLeadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create contract"})
		return
	}
	if lead.Stage != leadsdomain.StageQualified && lead.Stage != leadsdomain.StageProposal {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrLeadNotQualified.Error()})
		return
	}

	contract := &domain.Contract{
		TenantID:    tenantID,
		LeadID:      body.LeadID,
		TotalCents:  body.TotalCents,
		SystemKW:    body.SystemKW,
		DocumentURL: body.DocumentURL,
	}
	if err := h.repo.Create(c.Request.Context(), contract); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create contract"})
		return
	}

	h.dispatcher.Respond(c, http.StatusCreated, map[string]any{"contract": contract})
}

type sendBody struct {
	SignerEmail string `json:"signer_email" binding:"required"`
	SignerName  string `json:"signer_name" binding:"required"`
}

// Send opens a signature flow with the provider and marks the contract
// sent.
func (h *Handler) Send(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var body sendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	contract, err := h.repo.GetByID(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send contract"})
		return
	}
	if contract.Status == domain.StatusSent {
		c.JSON(http.StatusConflict, gin.H{"error": domain.ErrAlreadyOutForSign.Error()})
		return
	}
	if !domain.CanTransition(contract.Status, domain.StatusSent) {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidTransition.Error()})
		return
	}

	requestID, err := h.signer.CreateSignatureRequest(esign.SignatureRequest{
		ContractID:  contract.ID,
		DocumentURL: contract.DocumentURL,
		SignerEmail: body.SignerEmail,
		SignerName:  body.SignerName,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "e-signature provider unavailable"})
		return
	}

	if err := h.repo.MarkSent(c.Request.Context(), tenantID, contract.ID, requestID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send contract"})
		return
	}
	contract.Status = domain.StatusSent
	contract.SignatureRequestID = requestID

	h.dispatcher.Respond(c, http.StatusOK, map[string]any{"contract": contract})
}

func (h *Handler) Get(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	contract, err := h.repo.GetByID(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get contract"})
		return
	}

	h.dispatcher.Respond(c, http.StatusOK, map[string]any{"contract": contract})
}

func (h *Handler) List(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	contracts, total, err := h.repo.List(c.Request.Context(), tenantID, page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contracts"})
		return
	}

	totalPages := (total + perPage - 1) / perPage
	h.dispatcher.Respond(c, http.StatusOK, map[string]any{
		"contracts": contracts,
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

func (h *Handler) Register(r gin.IRouter) {
	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.POST("/:id/send", h.Send)
}
