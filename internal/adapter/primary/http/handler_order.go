package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderflow/orderflow/internal/port/primary"
)

// OrderHandler serves the order-facing HTTP surface.
type OrderHandler struct {
	orders primary.OrderService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders primary.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), primary.CreateOrderRequest{
		CustomerID:  req.CustomerID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Card:        req.Card.toEntity(),
		MerchantID:  req.MerchantID,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderToDTO(order))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderToDTO(order))
}

// RetryPayment handles POST /api/orders/:id/retry-payment. It bypasses
// the scheduler's due-time gate but still honors the attempt-count
// budget.
func (h *OrderHandler) RetryPayment(c *gin.Context) {
	order, err := h.orders.ManualRetryPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderToDTO(order))
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	order, err := h.orders.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderToDTO(order))
}
