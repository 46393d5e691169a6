package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentscout/talentscout-api/internal/middleware"
	"github.com/talentscout/talentscout-api/internal/models"
	"github.com/talentscout/talentscout-api/internal/services"
	"github.com/talentscout/talentscout-api/pkg/errors"
)

// ChatHandler serves the conversational screening endpoints
type ChatHandler struct {
	service services.ConversationServiceInterface
}

// NewChatHandler creates a new chat handler
func NewChatHandler(service services.ConversationServiceInterface) *ChatHandler {
	return &ChatHandler{service: service}
}

// StartChat creates a new conversation and returns its bearer token
// POST /api/v1/chat
func (h *ChatHandler) StartChat(c *gin.Context) {
	resp, err := h.service.StartConversation(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to start conversation", err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// SendMessage processes one candidate turn
// POST /api/v1/chat/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	conversationID, ok := h.authorizedConversation(c)
	if !ok {
		return
	}

	var req models.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		attachError(c, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": ParseValidationErrors(err),
		})
		return
	}

	resp, err := h.service.HandleMessage(c.Request.Context(), conversationID, req.Text)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Conversation not found or expired", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to process message", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetChat returns the transcript and state of a conversation
// GET /api/v1/chat/:id
func (h *ChatHandler) GetChat(c *gin.Context) {
	conversationID, ok := h.authorizedConversation(c)
	if !ok {
		return
	}

	resp, err := h.service.GetState(c.Request.Context(), conversationID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Conversation not found or expired", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to load conversation", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// authorizedConversation resolves the :id route param against the token
// claims. A valid token for conversation A grants nothing on conversation B.
func (h *ChatHandler) authorizedConversation(c *gin.Context) (string, bool) {
	tokenID, err := middleware.GetConversationID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return "", false
	}

	if paramID := c.Param("id"); paramID != tokenID {
		respondError(c, http.StatusForbidden, "Token does not match conversation", errors.ErrUnauthorized)
		return "", false
	}

	return tokenID, true
}
