package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kefystore-backend/internal/services"
)

// NotificationHandlers handles in-app notification endpoints
type NotificationHandlers struct {
	notifications *services.NotificationService
}

// NewNotificationHandlers creates new notification handlers
func NewNotificationHandlers(notifications *services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{notifications: notifications}
}

// ListNotifications returns the caller's notifications
func (h *NotificationHandlers) ListNotifications(c *gin.Context) {
	userID := c.GetString("userID")
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.notifications.ListForUser(userID, unreadOnly,
		parseIntQuery(c, "limit", 20), parseIntQuery(c, "offset", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list notifications",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
	})
}

// UnreadCount returns the caller's unread notification count
func (h *NotificationHandlers) UnreadCount(c *gin.Context) {
	userID := c.GetString("userID")

	count, err := h.notifications.UnreadCount(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to count notifications",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"count": count},
	})
}

// MarkRead marks one notification as read
func (h *NotificationHandlers) MarkRead(c *gin.Context) {
	userID := c.GetString("userID")
	notificationID := c.Param("id")

	if err := h.notifications.MarkRead(notificationID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification marked read",
	})
}

// DeleteNotification removes one notification
func (h *NotificationHandlers) DeleteNotification(c *gin.Context) {
	userID := c.GetString("userID")
	notificationID := c.Param("id")

	if err := h.notifications.Delete(notificationID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification deleted",
	})
}

// MarkAllRead marks every notification of the caller as read
func (h *NotificationHandlers) MarkAllRead(c *gin.Context) {
	userID := c.GetString("userID")

	count, err := h.notifications.MarkAllRead(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to mark notifications read",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"updated": count},
	})
}
