package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"bus-tracker-backend/config"
	"bus-tracker-backend/internal/hub"
	"bus-tracker-backend/internal/mw"
	"bus-tracker-backend/internal/registry"
	"bus-tracker-backend/internal/store"
)

// NewRouter creates and configures the Gin router, including the
// websocket endpoint served by the hub.
func NewRouter(s store.Store, reg *registry.Registry, h *hub.Hub, cfg *config.Config, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, reg, cfg.Auth, cfg.ETA, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	authed := mw.Auth(cfg.Auth.JWTSecret)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	// Real-time hub; authentication happens inside the handshake.
	r.GET("/ws", hub.ServeWS(h, cfg.Auth.JWTSecret))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/register", handler.Register)
		api.POST("/auth/login", handler.Login)

		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		protected := api.Group("")
		protected.Use(authed)
		{
			protected.GET("/bus", caching, handler.GetBuses)
			protected.GET("/bus/:busId/stops", caching, handler.GetBusStops)
			protected.GET("/child", handler.GetChildren)

			protected.GET("/eta/child/:childId", handler.GetChildETA)
			protected.GET("/eta/bus/:busId/stops", handler.GetBusStopETAs)

			protected.GET("/notifications", handler.GetNotifications)
			protected.PUT("/notifications/:id/read", handler.MarkNotificationRead)

			protected.PUT("/subscriptions", handler.PutSubscription)
			protected.DELETE("/subscriptions", handler.DeleteSubscription)
		}
	}

	return r
}
