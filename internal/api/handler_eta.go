package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bus-tracker-backend/internal/eta"
	"bus-tracker-backend/internal/store"
)

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GetChildETA handles GET /api/eta/child/:childId: straight-line
// arrival estimate from the bus's live position to the child's stop.
func (h *Handler) GetChildETA(c *gin.Context) {
	childID, err := strconv.ParseInt(c.Param("childId"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid child id"})
		return
	}

	cs, err := h.store.ChildWithStop(c.Request.Context(), childID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	if cs.Child.BusID == nil {
		c.JSON(http.StatusOK, gin.H{"eta": nil, "message": "no bus assigned"})
		return
	}
	if cs.Stop == nil {
		c.JSON(http.StatusOK, gin.H{"eta": nil, "message": "no stop configured"})
		return
	}

	sample, ok := h.registry.Get(*cs.Child.BusID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"eta": nil, "message": "bus is not running"})
		return
	}

	distance := eta.DistanceKm(sample.Latitude, sample.Longitude, cs.Stop.Latitude, cs.Stop.Longitude)
	c.JSON(http.StatusOK, gin.H{
		"eta":          eta.Minutes(distance, h.eta.AvgSpeedKmh),
		"distance":     int(math.Round(distance * 1000)), // meters
		"stopName":     cs.Stop.Name,
		"busLocation":  latLng{Latitude: sample.Latitude, Longitude: sample.Longitude},
		"stopLocation": latLng{Latitude: cs.Stop.Latitude, Longitude: cs.Stop.Longitude},
	})
}

// GetBusStopETAs handles GET /api/eta/bus/:busId/stops: estimates for
// every stop on the route, for the driver dashboard.
func (h *Handler) GetBusStopETAs(c *gin.Context) {
	busID, err := strconv.ParseInt(c.Param("busId"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid bus id"})
		return
	}

	sample, ok := h.registry.Get(busID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"stops": []any{}, "message": "bus is not running"})
		return
	}

	stops, err := h.store.StopsByBus(c.Request.Context(), busID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve stops"})
		return
	}

	type stopETA struct {
		ID        int64   `json:"id"`
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		StopOrder int     `json:"stop_order"`
		ETA       int     `json:"eta"`
		Distance  int     `json:"distance"`
	}

	result := make([]stopETA, 0, len(stops))
	for _, stop := range stops {
		distance := eta.DistanceKm(sample.Latitude, sample.Longitude, stop.Latitude, stop.Longitude)
		result = append(result, stopETA{
			ID:        stop.ID,
			Name:      stop.Name,
			Latitude:  stop.Latitude,
			Longitude: stop.Longitude,
			StopOrder: stop.StopOrder,
			ETA:       eta.Minutes(distance, h.eta.AvgSpeedKmh),
			Distance:  int(math.Round(distance * 1000)),
		})
	}

	c.JSON(http.StatusOK, gin.H{"stops": result, "busLocation": sample})
}
