package delivery

import (
	"net/http"

	"workbid-backend/internal/notification/dto"
	"workbid-backend/internal/notification/usecase"

	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the UI-facing notification API.
type NotificationHandler struct {
	service *usecase.Service
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service *usecase.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List returns the signed-in recipient's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.service.ListNotifications(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// Create is the producer API: it stores a record and feeds its added
// event to subscribers.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.service.CreateNotification(c.Request.Context(), req.RecipientID, req.Title, req.Description, req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, record)
}
