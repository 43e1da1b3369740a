package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"realty_messaging/internal/domain"
	"realty_messaging/internal/service"
	"realty_messaging/pkg/logger"
)

type ChatHandler struct {
	chatService service.ChatService
	log         logger.Logger
}

func NewChatHandler(chatService service.ChatService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		log:         log,
	}
}

type SendMessageRequest struct {
	// SenderID is optional; when present it must be the caller.
	SenderID   *uuid.UUID `json:"sender_id"`
	ReceiverID *uuid.UUID `json:"receiver_id"`
	Text       string     `json:"text"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	propertyID, ok := uuidParam(c, "propertyId", "property ID")
	if !ok {
		return
	}
	caller, ok := currentUser(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.SenderID != nil && *req.SenderID != caller.ID {
		h.log.Warn("Sender mismatch", "caller_id", caller.ID, "sender_id", *req.SenderID)
		c.JSON(http.StatusForbidden, gin.H{"error": "sender_id must match the authenticated user"})
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), service.SendMessageInput{
		PropertyID: propertyID,
		SenderID:   caller.ID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	propertyID, ok := uuidParam(c, "propertyId", "property ID")
	if !ok {
		return
	}
	caller, ok := currentUser(c)
	if !ok {
		return
	}

	query := service.MessageQuery{
		PropertyID:    propertyID,
		CallerID:      caller.ID,
		CallerIsAdmin: caller.Role == domain.RoleAdmin,
	}
	if with := c.Query("with"); with != "" {
		withID, err := uuid.Parse(with)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid with user ID"})
			return
		}
		query.With = &withID
	}

	messages, err := h.chatService.GetMessages(c.Request.Context(), query)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
