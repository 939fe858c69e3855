package api

import (
	"net/http"

	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/gin-gonic/gin"
)

// ListNotifications handles GET /api/notifications
func (h *Handler) ListNotifications(c *gin.Context) {
	notifications, err := h.svc.ListNotifications(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead handles PUT /api/notifications/:id/read
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.svc.MarkNotificationRead(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Status: "success", Message: "Notification marked as read"})
}

// MarkAllNotificationsRead handles PUT /api/notifications/read-all
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.svc.MarkAllNotificationsRead(c.Request.Context(), userID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Status: "success", Message: "All notifications marked as read"})
}

// DeleteNotification handles DELETE /api/notifications/:id
func (h *Handler) DeleteNotification(c *gin.Context) {
	if err := h.svc.DeleteNotification(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Status: "success", Message: "Notification removed"})
}
