package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveHealth(h *HealthHandler, path string) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func ok(name string) HealthChecker {
	return CheckerFunc{ComponentName: name, Fn: func(context.Context) error { return nil }}
}

func TestLiveness(t *testing.T) {
	w := serveHealth(NewHealthHandler("v1.2.3"), "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "v1.2.3", resp.Version)
}

func TestReadiness_NoCheckers(t *testing.T) {
	w := serveHealth(NewHealthHandler("dev"), "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
}

func TestReadiness_AllHealthy(t *testing.T) {
	w := serveHealth(NewHealthHandler("dev", ok("redis"), ok("minio")), "/readyz")
	require.Equal(t, http.StatusOK, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "healthy", resp.Components["redis"].Status)
	assert.Equal(t, "healthy", resp.Components["minio"].Status)
}

func TestReadiness_OneUnhealthy(t *testing.T) {
	bad := CheckerFunc{ComponentName: "redis", Fn: func(context.Context) error { return fmt.Errorf("dial tcp: refused") }}
	w := serveHealth(NewHealthHandler("dev", ok("minio"), bad), "/readyz")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["redis"].Status)
	assert.Equal(t, "dial tcp: refused", resp.Components["redis"].Error)
}

//Personal.AI order the ending
