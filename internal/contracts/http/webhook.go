package http

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suncrest/suncrest-backend/internal/contracts/domain"
	"github.com/suncrest/suncrest-backend/internal/contracts/repository"
)

// signatureCallbackBody is the payload the e-signature provider posts
// when a signature flow changes state.
type signatureCallbackBody struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

// WebhookHandler receives signature outcome callbacks from the provider.
// The callback is authenticated with header X-ESign-Callback-Secret
// (optional in dev if the secret is not configured).
type WebhookHandler struct {
	repo           *repository.ContractRepository
	callbackSecret string
}

func NewWebhookHandler(repo *repository.ContractRepository, callbackSecret string) *WebhookHandler {
	return &WebhookHandler{repo: repo, callbackSecret: callbackSecret}
}

func (h *WebhookHandler) SignatureCallback(c *gin.Context) {
	if h.callbackSecret != "" {
		secret := c.GetHeader("X-ESign-Callback-Secret")
		if subtle.ConstantTimeCompare([]byte(secret), []byte(h.callbackSecret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: invalid callback secret"})
			return
		}
	}

	var body signatureCallbackBody
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Printf("Signature callback JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var status domain.Status
	switch body.Status {
	case "signed", "completed":
		status = domain.StatusSigned
	case "declined", "cancelled":
		status = domain.StatusDeclined
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown signature status"})
		return
	}

	contract, err := h.repo.GetBySignatureRequestID(c.Request.Context(), body.RequestID)
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "signature request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process callback"})
		return
	}

	if !domain.CanTransition(contract.Status, status) {
		// the provider may re-deliver callbacks; a repeated final state is
		// acknowledged without a second write
		if contract.Status == status {
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": domain.ErrInvalidTransition.Error()})
		return
	}

	if err := h.repo.UpdateStatus(c.Request.Context(), contract.TenantID, contract.ID, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process callback"})
		return
	}

	log.Printf("[esign] contract %s -> %s (request %s)", contract.ID, status, body.RequestID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *WebhookHandler) Register(r gin.IRouter) {
	r.POST("/esign", h.SignatureCallback)
}
