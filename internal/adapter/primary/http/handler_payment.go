package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderflow/orderflow/internal/port/primary"
)

// PaymentHandler serves the read-only payment HTTP surface.
type PaymentHandler struct {
	payments primary.PaymentService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(payments primary.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Get handles GET /api/payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.payments.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentToDTO(payment))
}
