package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderflow/orderflow/internal/port/secondary"
)

// HealthHandler handles GET /health requests.
type HealthHandler struct {
	checks []secondary.HealthChecker
}

// NewHealthHandler creates a health check handler with the given checkers.
func NewHealthHandler(checks []secondary.HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// ServeHTTP performs all health checks and reports the aggregate status.
func (h *HealthHandler) ServeHTTP(c *gin.Context) {
	status := http.StatusOK
	checks := make(map[string]string, len(h.checks))

	for _, check := range h.checks {
		if err := check.Check(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			checks[check.Name()] = err.Error()
		} else {
			checks[check.Name()] = "ok"
		}
	}

	statusText := "healthy"
	if status != http.StatusOK {
		statusText = "unhealthy"
	}

	c.JSON(status, HealthResponse{Status: statusText, Checks: checks})
}
