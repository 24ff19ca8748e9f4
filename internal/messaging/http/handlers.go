package http

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suncrest/suncrest-backend/internal/apiversion"
	"github.com/suncrest/suncrest-backend/internal/messaging/domain"
	"github.com/suncrest/suncrest-backend/internal/messaging/repository"
)

// Sender is the slice of the WhatsApp client the handlers need.
type Sender interface {
	SendText(to, body string) (string, error)
}

type Handler struct {
	repo          *repository.ThreadRepository
	sender        Sender
	dispatcher    *apiversion.Dispatcher
	webhookSecret string
}

func NewHandler(repo *repository.ThreadRepository, sender Sender, dispatcher *apiversion.Dispatcher, webhookSecret string) *Handler {
	return &Handler{repo: repo, sender: sender, dispatcher: dispatcher, webhookSecret: webhookSecret}
}

type sendMessageBody struct {
	Phone  string `json:"phone" binding:"required"`
	Body   string `json:"body" binding:"required"`
	LeadID string `json:"lead_id"`
}

// SendMessage sends an outbound WhatsApp message, creating the thread
// on first contact.
func (h *Handler) SendMessage(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var body sendMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	thread, err := h.repo.GetByPhone(c.Request.Context(), tenantID, body.Phone)
	if errors.Is(err, domain.ErrThreadNotFound) {
		thread = &domain.Thread{
			TenantID: tenantID,
			LeadID:   body.LeadID,
			Phone:    body.Phone,
		}
		err = h.repo.Create(c.Request.Context(), thread)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	providerID, err := h.sender.SendText(body.Phone, body.Body)
	if err != nil {
		log.Printf("[messaging] provider send failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "messaging provider unavailable"})
		return
	}

	msg := &domain.Message{
		ThreadID:          thread.ThreadID,
		Direction:         domain.DirectionOutbound,
		Body:              body.Body,
		ProviderMessageID: providerID,
		Status:            "sent",
	}
	if err := h.repo.AppendMessage(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record message"})
		return
	}

	h.dispatcher.Respond(c, http.StatusCreated, map[string]any{
		"thread":  thread,
		"message": msg,
	})
}

func (h *Handler) ListThreads(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	threads, err := h.repo.ListByTenant(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list threads"})
		return
	}

	h.dispatcher.Respond(c, http.StatusOK, map[string]any{"threads": threads})
}

func (h *Handler) GetThread(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	thread, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrThreadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get thread"})
		return
	}
	if thread.TenantID != tenantID {
		c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
		return
	}

	messages, err := h.repo.Messages(c.Request.Context(), thread.ThreadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	h.dispatcher.Respond(c, http.StatusOK, map[string]any{
		"thread":   thread,
		"messages": messages,
	})
}

// inboundWebhookBody is the payload the provider posts for an incoming
// message.
type inboundWebhookBody struct {
	TenantID  string `json:"tenant_id"`
	From      string `json:"from"`
	Body      string `json:"body"`
	MessageID string `json:"message_id"`
}

// InboundWebhook receives incoming WhatsApp messages from the provider.
// Authenticated with header X-Webhook-Secret when a secret is configured.
func (h *Handler) InboundWebhook(c *gin.Context) {
	if h.webhookSecret != "" {
		secret := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(secret), []byte(h.webhookSecret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: invalid webhook secret"})
			return
		}
	}

	var body inboundWebhookBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrEmptyMessage.Error()})
		return
	}

	thread, err := h.repo.GetByPhone(c.Request.Context(), body.TenantID, body.From)
	if errors.Is(err, domain.ErrThreadNotFound) {
		thread = &domain.Thread{
			TenantID: body.TenantID,
			Phone:    body.From,
		}
		err = h.repo.Create(c.Request.Context(), thread)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}

	msg := &domain.Message{
		ThreadID:          thread.ThreadID,
		Direction:         domain.DirectionInbound,
		Body:              body.Body,
		ProviderMessageID: body.MessageID,
		Status:            "received",
	}
	if err := h.repo.AppendMessage(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/threads", h.ListThreads)
	r.GET("/threads/:id", h.GetThread)
	r.POST("/messages", h.SendMessage)
}

func (h *Handler) RegisterWebhook(r gin.IRouter) {
	r.POST("/whatsapp", h.InboundWebhook)
}
