package service

import (
	"context"
	"fmt"
	"time"

	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/domain/valueobject"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

func errNotFound(id string) error {
	return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

func errDuplicateTransaction(txID string) error {
	return fmt.Errorf("%w: %s", domain.ErrDuplicateTransaction, txID)
}

// mockUnitOfWork runs fn directly with the caller's context: the
// in-memory repositories below have no real transaction boundary to
// honor.
type mockUnitOfWork struct{}

func (mockUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// mockOrderRepository is an in-memory secondary.OrderRepository.
type mockOrderRepository struct {
	orders map[string]*entity.Order

	createErr error
	getErr    error
	updateErr error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[string]*entity.Order)}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string, forUpdate bool) (*entity.Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, errNotFound(id)
	}
	return o, nil
}

func (m *mockOrderRepository) Update(ctx context.Context, order *entity.Order) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) ListPaymentFailed(ctx context.Context, limit int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range m.orders {
		if o.Status == entity.OrderPaymentFailed {
			out = append(out, o)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *mockOrderRepository) ListPaymentPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range m.orders {
		if o.Status == entity.OrderPaymentPending && o.UpdatedAt.Before(cutoff) {
			out = append(out, o)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// mockRetryRepository is an in-memory secondary.RetryHistoryRepository.
type mockRetryRepository struct {
	histories map[string]*entity.RetryHistory

	createErr error
	getErr    error
	updateErr error
}

func newMockRetryRepository() *mockRetryRepository {
	return &mockRetryRepository{histories: make(map[string]*entity.RetryHistory)}
}

func (m *mockRetryRepository) Create(ctx context.Context, history *entity.RetryHistory) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.histories[history.OrderID] = history
	return nil
}

func (m *mockRetryRepository) GetByOrderID(ctx context.Context, orderID string, forUpdate bool) (*entity.RetryHistory, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	h, ok := m.histories[orderID]
	if !ok {
		return nil, errNotFound(orderID)
	}
	return h, nil
}

func (m *mockRetryRepository) Update(ctx context.Context, history *entity.RetryHistory) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.histories[history.OrderID] = history
	return nil
}

// mockAuditRepository is an in-memory secondary.AuditRepository.
type mockAuditRepository struct {
	entries []secondary.AuditEntry
}

func (m *mockAuditRepository) Record(ctx context.Context, entry secondary.AuditEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

// mockOutboxRepository is an in-memory secondary.OutboxRepository, used
// by the OutboxWriter tests directly; order/payment service tests reach
// it indirectly through *OutboxWriter.
type mockOutboxRepository struct {
	rows []*entity.OutboxEvent

	insertErr error
}

func (m *mockOutboxRepository) Insert(ctx context.Context, row *entity.OutboxEvent) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.rows = append(m.rows, row)
	return nil
}

func (m *mockOutboxRepository) ClaimDrainBatch(ctx context.Context, limit int) ([]*entity.OutboxEvent, error) {
	return nil, nil
}

func (m *mockOutboxRepository) ClaimRetryBatch(ctx context.Context, maxRetries int, backoffCap time.Duration, limit int, now time.Time) ([]*entity.OutboxEvent, error) {
	return nil, nil
}

func (m *mockOutboxRepository) MarkProcessed(ctx context.Context, eventID string, version int, processedAt time.Time) error {
	return nil
}

func (m *mockOutboxRepository) MarkFailed(ctx context.Context, eventID string, version int, errMsg string) error {
	return nil
}

func (m *mockOutboxRepository) DeleteProcessedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *mockOutboxRepository) DeletePoisonOlderThan(ctx context.Context, maxRetries int, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *mockOutboxRepository) Stats(ctx context.Context, maxRetries int) (entity.Stats, error) {
	return entity.Stats{}, nil
}

// mockPaymentRepository is an in-memory secondary.PaymentRepository.
type mockPaymentRepository struct {
	byID    map[string]*entity.Payment
	byTx    map[string]*entity.Payment

	createErr error
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{byID: make(map[string]*entity.Payment), byTx: make(map[string]*entity.Payment)}
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.byTx[payment.TransactionID]; exists {
		return errDuplicateTransaction(payment.TransactionID)
	}
	m.byID[payment.ID] = payment
	m.byTx[payment.TransactionID] = payment
	return nil
}

func (m *mockPaymentRepository) GetByID(ctx context.Context, id string, forUpdate bool) (*entity.Payment, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, errNotFound(id)
	}
	return p, nil
}

func (m *mockPaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	p, ok := m.byTx[transactionID]
	if !ok {
		return nil, errNotFound(transactionID)
	}
	return p, nil
}

func (m *mockPaymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	m.byID[payment.ID] = payment
	m.byTx[payment.TransactionID] = payment
	return nil
}

// mockGateway is an in-memory secondary.PaymentGateway.
type mockGateway struct {
	result secondary.GatewayChargeResult
	err    error
	calls  []secondary.GatewayChargeRequest
}

func (m *mockGateway) Charge(ctx context.Context, req secondary.GatewayChargeRequest) (secondary.GatewayChargeResult, error) {
	m.calls = append(m.calls, req)
	if m.err != nil {
		return secondary.GatewayChargeResult{}, m.err
	}
	return m.result, nil
}

func testCard() entity.CardDataBody {
	return entity.CardDataBody{
		Number:          "4242424242424242",
		ExpiryMonthYear: "12/30",
		CVV:             "123",
		HolderName:      "Ada Lovelace",
	}
}

func mustMoney(amount, currency string) valueobject.Money {
	return valueobject.MustMoney(amount, currency)
}

func testMaskedCard() valueobject.MaskedCard {
	return valueobject.Mask(valueobject.CardData{
		Number:          "4242424242424242",
		ExpiryMonthYear: "12/30",
		HolderName:      "Ada Lovelace",
	})
}
