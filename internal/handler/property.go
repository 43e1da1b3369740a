package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"realty_messaging/internal/service"
	"realty_messaging/pkg/logger"
)

type PropertyHandler struct {
	propertyService service.PropertyService
	log             logger.Logger
}

func NewPropertyHandler(propertyService service.PropertyService, log logger.Logger) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		log:             log,
	}
}

type CreatePropertyRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *PropertyHandler) Create(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	property, err := h.propertyService.Create(c.Request.Context(), owner, req.Title)
	if err != nil {
		fail(c, err)
		return
	}

	h.log.Info("Property created", "property_id", property.ID, "owner_id", owner.ID)
	c.JSON(http.StatusCreated, property)
}

func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "property ID")
	if !ok {
		return
	}

	property, err := h.propertyService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, property)
}
