package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bus-tracker-backend/internal/mw"
	"bus-tracker-backend/internal/store"
)

// GetNotifications handles GET /api/notifications: the authenticated
// user's notifications, newest first.
func (h *Handler) GetNotifications(c *gin.Context) {
	claims := mw.Claims(c)
	list, err := h.store.Notifications(c.Request.Context(), claims.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve notifications"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// MarkNotificationRead handles PUT /api/notifications/:id/read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	claims := mw.Claims(c)
	err = h.store.MarkNotificationRead(c.Request.Context(), id, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.Status(http.StatusNoContent)
}
