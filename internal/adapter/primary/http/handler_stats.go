package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderflow/orderflow/internal/port/secondary"
)

// StatsHandler serves GET /internal/stats, the operator-visible outbox
// counters used to watch drain health and poison accumulation.
type StatsHandler struct {
	outbox     secondary.OutboxRepository
	maxRetries int
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(outbox secondary.OutboxRepository, maxRetries int) *StatsHandler {
	return &StatsHandler{outbox: outbox, maxRetries: maxRetries}
}

// ServeHTTP reports the outbox row counts.
func (h *StatsHandler) ServeHTTP(c *gin.Context) {
	stats, err := h.outbox.Stats(c.Request.Context(), h.maxRetries)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatsDTO{
		OutboxTotal:       stats.Total,
		OutboxUnprocessed: stats.Unprocessed,
		OutboxFailed:      stats.Failed,
		OutboxProcessed:   stats.Processed,
	})
}
