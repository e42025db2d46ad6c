package http

import (
	"time"

	"github.com/orderflow/orderflow/internal/domain/entity"
)

// CreateOrderRequestDTO is the request body for POST /api/orders.
type CreateOrderRequestDTO struct {
	CustomerID  string  `json:"customer_id" binding:"required"`
	Amount      string  `json:"amount" binding:"required"`
	Currency    string  `json:"currency" binding:"required,len=3"`
	Card        CardDTO `json:"card" binding:"required"`
	MerchantID  string  `json:"merchant_id"`
	Description string  `json:"description"`
}

// CardDTO mirrors entity.CardDataBody at the HTTP boundary. It is never
// echoed back in a response.
type CardDTO struct {
	Number          string `json:"number" binding:"required"`
	ExpiryMonthYear string `json:"expiry_month_year" binding:"required"`
	CVV             string `json:"cvv" binding:"required"`
	HolderName      string `json:"holder_name"`
}

func (c CardDTO) toEntity() entity.CardDataBody {
	return entity.CardDataBody{
		Number:          c.Number,
		ExpiryMonthYear: c.ExpiryMonthYear,
		CVV:             c.CVV,
		HolderName:      c.HolderName,
	}
}

// OrderDTO is the read representation of an order. It never includes
// card data: card.go's masking boundary only covers Payment, so the
// order response simply omits the field entirely.
type OrderDTO struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func orderToDTO(o *entity.Order) OrderDTO {
	return OrderDTO{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		Amount:        o.Amount.Decimal().StringFixed(2),
		Currency:      o.Amount.Currency(),
		Status:        string(o.Status),
		TransactionID: o.TransactionID,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// PaymentDTO is the read representation of a payment.
type PaymentDTO struct {
	ID              string     `json:"id"`
	TransactionID   string     `json:"transaction_id"`
	OrderID         string     `json:"order_id"`
	CustomerID      string     `json:"customer_id"`
	Amount          string     `json:"amount"`
	Currency        string     `json:"currency"`
	MaskedCard      string     `json:"masked_card"`
	Status          string     `json:"status"`
	GatewayResponse string     `json:"gateway_response,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
}

func paymentToDTO(p *entity.Payment) PaymentDTO {
	return PaymentDTO{
		ID:              p.ID,
		TransactionID:   p.TransactionID,
		OrderID:         p.OrderID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount.Decimal().StringFixed(2),
		Currency:        p.Amount.Currency(),
		MaskedCard:      p.Card.String(),
		Status:          string(p.Status),
		GatewayResponse: p.GatewayResponse,
		ErrorMessage:    p.ErrorMessage,
		CreatedAt:       p.CreatedAt,
		ProcessedAt:     p.ProcessedAt,
	}
}

// StatsDTO reports the outbox operator counters.
type StatsDTO struct {
	OutboxTotal       int64 `json:"outbox_total"`
	OutboxUnprocessed int64 `json:"outbox_unprocessed"`
	OutboxFailed      int64 `json:"outbox_failed"`
	OutboxProcessed   int64 `json:"outbox_processed"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
