package postgres

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/domain/valueobject"
)

// orderModel is the GORM row for the Order aggregate. Card and the last
// payment request context travel alongside the order row because a
// retry needs to resubmit them (entity.Order.CardOnFile).
type orderModel struct {
	ID            string `gorm:"primaryKey"`
	CustomerID    string `gorm:"index"`
	Amount        decimal.Decimal `gorm:"type:numeric(18,2)"`
	Currency      string
	Status        string `gorm:"index"`
	TransactionID string `gorm:"index"`
	CardNumber    string
	CardExpiry    string
	CardCVV       string
	CardHolder    string
	MerchantID    string
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time `gorm:"index"`
}

func (orderModel) TableName() string { return "orders" }

func orderToModel(o *entity.Order) orderModel {
	card := o.CardOnFile()
	return orderModel{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		Amount:        o.Amount.Decimal(),
		Currency:      o.Amount.Currency(),
		Status:        string(o.Status),
		TransactionID: o.TransactionID,
		CardNumber:    card.Number,
		CardExpiry:    card.ExpiryMonthYear,
		CardCVV:       card.CVV,
		CardHolder:    card.HolderName,
		MerchantID:    o.MerchantID(),
		Description:   o.Description(),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// modelToOrder rebuilds an Order aggregate from its row. It goes through
// the aggregate's own constructor and command methods so invariants are
// re-checked on every load, rather than poking private fields directly.
func modelToOrder(m orderModel) (*entity.Order, error) {
	money, err := valueobject.NewMoney(m.Amount, m.Currency)
	if err != nil {
		return nil, err
	}
	o, err := entity.NewOrder(m.ID, m.CustomerID, money, m.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.UpdatedAt = m.CreatedAt

	switch entity.OrderStatus(m.Status) {
	case entity.OrderCreated:
		return o, nil
	case entity.OrderCancelled:
		if err := o.Cancel(m.UpdatedAt); err != nil {
			return nil, err
		}
		return o, nil
	}

	card := entity.CardDataBody{
		Number:          m.CardNumber,
		ExpiryMonthYear: m.CardExpiry,
		CVV:             m.CardCVV,
		HolderName:      m.CardHolder,
	}
	if err := o.RequestPayment(m.TransactionID, card, m.MerchantID, m.Description, m.UpdatedAt); err != nil {
		return nil, err
	}

	switch entity.OrderStatus(m.Status) {
	case entity.OrderPaymentPending:
		// already applied above
	case entity.OrderPaymentConfirmed:
		if err := o.ConfirmPayment("", m.TransactionID, m.UpdatedAt); err != nil {
			return nil, err
		}
	case entity.OrderPaymentFailed:
		if err := o.FailPayment("", m.TransactionID, m.UpdatedAt); err != nil {
			return nil, err
		}
	}
	o.Flush() // rehydration never re-emits staged events
	return o, nil
}

// paymentModel is the GORM row for the Payment aggregate.
type paymentModel struct {
	ID              string `gorm:"primaryKey"`
	TransactionID   string `gorm:"uniqueIndex"`
	OrderID         string `gorm:"index"`
	CustomerID      string
	Amount          decimal.Decimal `gorm:"type:numeric(18,2)"`
	Currency        string
	CardLastFour    string
	CardExpiry      string
	CardHolder      string
	Status          string `gorm:"index"`
	GatewayResponse string
	ErrorMessage    string
	CreatedAt       time.Time
	ProcessedAt     *time.Time
}

func (paymentModel) TableName() string { return "payments" }

func paymentToModel(p *entity.Payment) paymentModel {
	return paymentModel{
		ID:              p.ID,
		TransactionID:   p.TransactionID,
		OrderID:         p.OrderID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount.Decimal(),
		Currency:        p.Amount.Currency(),
		CardLastFour:    p.Card.LastFour,
		CardExpiry:      p.Card.ExpiryDate,
		CardHolder:      p.Card.HolderName,
		Status:          string(p.Status),
		GatewayResponse: p.GatewayResponse,
		ErrorMessage:    p.ErrorMessage,
		CreatedAt:       p.CreatedAt,
		ProcessedAt:     p.ProcessedAt,
	}
}

func modelToPayment(m paymentModel) (*entity.Payment, error) {
	money, err := valueobject.NewMoney(m.Amount, m.Currency)
	if err != nil {
		return nil, err
	}
	card := valueobject.MaskedCard{
		LastFour:   m.CardLastFour,
		ExpiryDate: m.CardExpiry,
		HolderName: m.CardHolder,
	}
	p, err := entity.NewPayment(m.ID, m.TransactionID, m.OrderID, m.CustomerID, money, card, m.CreatedAt)
	if err != nil {
		return nil, err
	}

	switch entity.PaymentStatus(m.Status) {
	case entity.PaymentProcessing:
	case entity.PaymentSuccess:
		if err := p.Succeed(m.GatewayResponse, derefTime(m.ProcessedAt)); err != nil {
			return nil, err
		}
	case entity.PaymentFailed:
		if err := p.Fail(m.ErrorMessage, derefTime(m.ProcessedAt)); err != nil {
			return nil, err
		}
	case entity.PaymentRefunded:
		if err := p.Succeed(m.GatewayResponse, derefTime(m.ProcessedAt)); err != nil {
			return nil, err
		}
		p.Flush()
		if err := p.Refund(derefTime(m.ProcessedAt)); err != nil {
			return nil, err
		}
	}
	p.Flush()
	return p, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// outboxModel is the GORM row for a staged outbox event.
type outboxModel struct {
	EventID       string `gorm:"primaryKey"`
	EventType     string
	AggregateID   string `gorm:"index"`
	AggregateType string
	Payload       []byte
	Headers       []byte
	CreatedAt     time.Time `gorm:"index"`
	Processed     bool      `gorm:"index"`
	ProcessedAt   *time.Time
	RetryCount    int
	LastError     string
	Version       int
	ClaimedAt     *time.Time `gorm:"index"`
	TransactionID string     `gorm:"index"`
	OrderID       string     `gorm:"index"`
	CustomerID    string
}

func (outboxModel) TableName() string { return "outbox_events" }

func outboxToModel(e *entity.OutboxEvent) outboxModel {
	return outboxModel{
		EventID:       e.EventID,
		EventType:     string(e.EventType),
		AggregateID:   e.AggregateID,
		AggregateType: string(e.AggregateType),
		Payload:       e.Payload,
		Headers:       e.Headers,
		CreatedAt:     e.CreatedAt,
		Processed:     e.Processed,
		ProcessedAt:   e.ProcessedAt,
		RetryCount:    e.RetryCount,
		LastError:     e.LastError,
		Version:       e.Version,
		TransactionID: e.TransactionID,
		OrderID:       e.OrderID,
		CustomerID:    e.CustomerID,
	}
}

func modelToOutbox(m outboxModel) *entity.OutboxEvent {
	return &entity.OutboxEvent{
		EventID:       m.EventID,
		EventType:     entity.EventType(m.EventType),
		AggregateID:   m.AggregateID,
		AggregateType: entity.AggregateType(m.AggregateType),
		Payload:       m.Payload,
		Headers:       m.Headers,
		CreatedAt:     m.CreatedAt,
		Processed:     m.Processed,
		ProcessedAt:   m.ProcessedAt,
		RetryCount:    m.RetryCount,
		LastError:     m.LastError,
		Version:       m.Version,
		TransactionID: m.TransactionID,
		OrderID:       m.OrderID,
		CustomerID:    m.CustomerID,
	}
}

// retryHistoryModel is the GORM row for a RetryHistory. Attempts is kept
// as a JSON blob: it is an append-only audit trail, never queried by
// field, so a join table would add cost with no benefit here.
type retryHistoryModel struct {
	OrderID               string `gorm:"primaryKey"`
	OriginalTransactionID string
	CurrentTransactionID  string
	Status                string `gorm:"index"`
	FirstAttemptAt        time.Time
	LastAttemptAt         *time.Time
	NextRetryAt           *time.Time `gorm:"index"`
	FinalFailureReason    string
	Version               int
	Attempts              []byte
}

func (retryHistoryModel) TableName() string { return "retry_histories" }

func retryHistoryToModel(r *entity.RetryHistory) (retryHistoryModel, error) {
	attempts, err := json.Marshal(r.Attempts)
	if err != nil {
		return retryHistoryModel{}, err
	}
	return retryHistoryModel{
		OrderID:               r.OrderID,
		OriginalTransactionID: r.OriginalTransactionID,
		CurrentTransactionID:  r.CurrentTransactionID,
		Status:                string(r.Status),
		FirstAttemptAt:        r.FirstAttemptAt,
		LastAttemptAt:         r.LastAttemptAt,
		NextRetryAt:           r.NextRetryAt,
		FinalFailureReason:    r.FinalFailureReason,
		Version:               r.Version,
		Attempts:              attempts,
	}, nil
}

func modelToRetryHistory(m retryHistoryModel) (*entity.RetryHistory, error) {
	var attempts []entity.RetryAttempt
	if len(m.Attempts) > 0 {
		if err := json.Unmarshal(m.Attempts, &attempts); err != nil {
			return nil, err
		}
	}
	return &entity.RetryHistory{
		OrderID:               m.OrderID,
		OriginalTransactionID: m.OriginalTransactionID,
		CurrentTransactionID:  m.CurrentTransactionID,
		Status:                entity.RetryStatus(m.Status),
		FirstAttemptAt:        m.FirstAttemptAt,
		LastAttemptAt:         m.LastAttemptAt,
		NextRetryAt:           m.NextRetryAt,
		FinalFailureReason:    m.FinalFailureReason,
		Version:               m.Version,
		Attempts:              attempts,
	}, nil
}

// auditModel is the GORM row for a dropped/superseded message entry.
type auditModel struct {
	ID               uint `gorm:"primaryKey;autoIncrement"`
	AggregateID      string `gorm:"index"`
	TransactionID    string
	SupersededByTxID string
	Reason           string
	RecordedAt       time.Time
}

func (auditModel) TableName() string { return "audit_entries" }

// AutoMigrate creates/updates every table this package owns. Called once
// at startup by Connect.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderModel{},
		&paymentModel{},
		&outboxModel{},
		&retryHistoryModel{},
		&auditModel{},
	)
}
