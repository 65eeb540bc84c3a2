package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"bus-tracker-backend/config"
	"bus-tracker-backend/internal/registry"
	"bus-tracker-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	registry *registry.Registry
	auth     config.AuthConfig
	eta      config.ETAConfig
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, reg *registry.Registry, authCfg config.AuthConfig, etaCfg config.ETAConfig, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		registry: reg,
		auth:     authCfg,
		eta:      etaCfg,
		webpush:  webpushOptions,
	}
}
