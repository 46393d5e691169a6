package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/talentscout/talentscout-api/internal/handlers"
)

func TestHealthHandler_Healthcheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := handlers.NewHealthHandler(func() bool { return true })
	router := gin.New()
	router.GET("/api/healthcheck", handler.Healthcheck)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/healthcheck", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHealthHandler_Healthcheck_NotReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := handlers.NewHealthHandler(func() bool { return false })
	router := gin.New()
	router.GET("/api/healthcheck", handler.Healthcheck)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/healthcheck", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
