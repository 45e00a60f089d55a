package handlers

import (
	"strconv"

	"brotodesk/internal/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the caller's notifications and unread count
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.Error(services.NewValidationError("Invalid limit"))
			return
		}
		limit = n
	}

	list, err := h.notificationService.ListMine(c.Request.Context(), actor, limit)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(200, list)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req services.MarkReadInput
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.notificationService.MarkRead(c.Request.Context(), actor, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(200, gin.H{
		"message": "Notifications marked as read",
		"updated": updated,
	})
}
