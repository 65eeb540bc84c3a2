package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bus-tracker-backend/internal/mw"
)

// GetBuses handles GET /api/bus: all buses with their trip status.
func (h *Handler) GetBuses(c *gin.Context) {
	buses, err := h.store.ListBuses(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve buses"})
		return
	}
	c.JSON(http.StatusOK, buses)
}

// GetBusStops handles GET /api/bus/:busId/stops.
func (h *Handler) GetBusStops(c *gin.Context) {
	busID, err := strconv.ParseInt(c.Param("busId"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid bus id"})
		return
	}

	stops, err := h.store.StopsByBus(c.Request.Context(), busID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve stops"})
		return
	}
	c.JSON(http.StatusOK, stops)
}

// GetChildren handles GET /api/child: the authenticated parent's children.
func (h *Handler) GetChildren(c *gin.Context) {
	claims := mw.Claims(c)
	children, err := h.store.ChildrenByParent(c.Request.Context(), claims.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve children"})
		return
	}
	c.JSON(http.StatusOK, children)
}
