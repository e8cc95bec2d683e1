package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/fixapp/fixapp-api/internal/infrastructure/db/sqlite"
)

// HealthHandler handles GET /health, the liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ReadinessHandler handles GET /health/ready, the readiness probe.
// Verifies the storage backend can serve a trivial query before declaring
// the service ready.
type ReadinessHandler struct {
	backend *sqlite.Backend
}

func NewReadinessHandler(backend *sqlite.Backend) *ReadinessHandler {
	return &ReadinessHandler{backend: backend}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true

	if err := h.pingStorage(ctx); err != nil {
		deps["sqlite"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["sqlite"] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}

func (h *ReadinessHandler) pingStorage(ctx context.Context) error {
	conn, release, err := h.backend.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return sqlitex.ExecuteTransient(conn, "SELECT 1", nil)
}
