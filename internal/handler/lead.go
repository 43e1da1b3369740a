package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"realty_messaging/internal/domain"
	"realty_messaging/internal/service"
	"realty_messaging/pkg/logger"
)

type LeadHandler struct {
	leadService service.LeadService
	chatService service.ChatService
	log         logger.Logger
}

func NewLeadHandler(leadService service.LeadService, chatService service.ChatService, log logger.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		chatService: chatService,
		log:         log,
	}
}

func (h *LeadHandler) GetLeads(c *gin.Context) {
	userID, ok := uuidParam(c, "userId", "user ID")
	if !ok {
		return
	}
	caller, ok := currentUser(c)
	if !ok {
		return
	}
	if userID != caller.ID && caller.Role != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot read another user's leads"})
		return
	}

	leads, err := h.leadService.GetLeadsFor(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, leads)
}

// DeleteLead removes the caller's conversation with :userId about :propertyId.
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	propertyID, ok := uuidParam(c, "propertyId", "property ID")
	if !ok {
		return
	}
	counterpartID, ok := uuidParam(c, "userId", "user ID")
	if !ok {
		return
	}
	caller, ok := currentUser(c)
	if !ok {
		return
	}

	deleted, err := h.chatService.DeleteLead(c.Request.Context(), propertyID, counterpartID, caller.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted", "deleted": deleted})
}
