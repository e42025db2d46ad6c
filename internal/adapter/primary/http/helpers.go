package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderflow/orderflow/internal/domain"
)

// respondError maps a domain error to the appropriate HTTP status and
// writes a JSON error body.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrIllegalState),
		errors.Is(err, domain.ErrTransactionMismatch),
		errors.Is(err, domain.ErrDuplicateTransaction),
		errors.Is(err, domain.ErrExhausted),
		errors.Is(err, domain.ErrRetryNotDue):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrTransient):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
