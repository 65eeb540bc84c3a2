package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bus-tracker-backend/config"
	"bus-tracker-backend/internal/api"
	"bus-tracker-backend/internal/db"
	"bus-tracker-backend/internal/hub"
	"bus-tracker-backend/internal/model"
	"bus-tracker-backend/internal/registry"
	"bus-tracker-backend/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            0,
			RateLimitPerSec: 1000,
			RateLimitBurst:  1000,
			CacheTTLSeconds: 1,
		},
		Auth: config.AuthConfig{
			JWTSecret: "integration-test-secret",
			TokenTTL:  time.Hour,
		},
		Hub: config.HubConfig{
			WriteTimeout: 10 * time.Second,
			PongTimeout:  time.Minute,
			SendBuffer:   16,
		},
		ETA: config.ETAConfig{AvgSpeedKmh: 30},
	}
}

// TestAuthAndQueryFlow exercises the HTTP surface end to end on an
// in-memory database: registration, login, token-gated queries and
// the live ETA endpoint fed by the location registry.
func TestAuthAndQueryFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	cfg := testConfig()
	appStore := store.NewGormStore(gdb)
	locations := registry.New()
	h := hub.New(appStore, locations, cfg.Hub, nil)
	router := api.NewRouter(appStore, locations, h, cfg, nil)

	srv := httptest.NewServer(router)
	defer srv.Close()

	client := srv.Client()

	// Register a parent.
	body := `{"email":"parent@example.com","password":"parolparol","name":"Parent"}`
	resp, err := client.Post(srv.URL+"/api/auth/register", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Duplicate email is rejected.
	resp, err = client.Post(srv.URL+"/api/auth/register", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Wrong password fails.
	resp, err = client.Post(srv.URL+"/api/auth/login", "application/json",
		bytes.NewBufferString(`{"email":"parent@example.com","password":"wrong"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Correct login yields a token.
	resp, err = client.Post(srv.URL+"/api/auth/login", "application/json",
		bytes.NewBufferString(`{"email":"parent@example.com","password":"parolparol"}`))
	require.NoError(t, err)
	var loginBody struct {
		Token string `json:"token"`
		User  struct {
			ID   int64      `json:"id"`
			Role model.Role `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginBody))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, loginBody.Token)
	assert.Equal(t, model.RoleParent, loginBody.User.Role)

	// Protected routes require the token.
	resp, err = client.Get(srv.URL + "/api/bus")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	authedGet := func(path string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+loginBody.Token)
		resp, err := client.Do(req)
		require.NoError(t, err)
		return resp
	}

	// Seed a bus with a stop and a child riding it.
	bus := model.Bus{Name: "Bus 5", Status: model.TripStatusRunning}
	require.NoError(t, gdb.Create(&bus).Error)
	stop := model.Stop{BusID: bus.ID, Name: "School gate", Latitude: 37.51, Longitude: 127.01, StopOrder: 1}
	require.NoError(t, gdb.Create(&stop).Error)
	child := model.Child{ParentID: loginBody.User.ID, BusID: &bus.ID, StopID: &stop.ID, Name: "Minji"}
	require.NoError(t, gdb.Create(&child).Error)

	resp = authedGet("/api/bus")
	var buses []model.Bus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&buses))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, buses, 1)
	assert.Equal(t, "Bus 5", buses[0].Name)

	// Without a live location sample the ETA is null.
	resp = authedGet(fmt.Sprintf("/api/eta/child/%d", child.ID))
	var etaBody map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&etaBody))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, etaBody["eta"])

	// With a sample, the estimate comes back in whole minutes.
	locations.Set(registry.Sample{BusID: bus.ID, Latitude: 37.50, Longitude: 127.00, SpeedKmh: 20, CapturedAt: time.Now()})
	resp = authedGet(fmt.Sprintf("/api/eta/child/%d", child.ID))
	etaBody = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&etaBody))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, etaBody["eta"])
	assert.Greater(t, etaBody["eta"].(float64), 0.0)
	assert.Equal(t, "School gate", etaBody["stopName"])

	// Notifications start empty and mark-read 404s for unknown ids.
	resp = authedGet("/api/notifications")
	var notifs []model.Notification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notifs))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, notifs)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/notifications/999/read", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+loginBody.Token)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Health check needs no auth.
	resp, err = client.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
