package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"realty_messaging/internal/service"
	"realty_messaging/pkg/logger"
)

type NotificationHandler struct {
	notificationService service.NotificationService
	log                 logger.Logger
}

func NewNotificationHandler(notificationService service.NotificationService, log logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		log:                 log,
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		return
	}

	notifications, err := h.notificationService.GetNotificationsFor(c.Request.Context(), caller.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

type InquiryRequest struct {
	Message string `json:"message"`
}

func (h *NotificationHandler) CreateInquiry(c *gin.Context) {
	propertyID, ok := uuidParam(c, "propertyId", "property ID")
	if !ok {
		return
	}
	caller, ok := currentUser(c)
	if !ok {
		return
	}

	var req InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	notification, err := h.notificationService.NotifyInquiry(c.Request.Context(), propertyID, caller.ID, req.Message)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, notification)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := uuidParam(c, "id", "notification ID")
	if !ok {
		return
	}
	caller, ok := currentUser(c)
	if !ok {
		return
	}

	notification, err := h.notificationService.MarkRead(c.Request.Context(), id, caller.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, notification)
}
