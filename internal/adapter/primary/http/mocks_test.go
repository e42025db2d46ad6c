package http

import (
	"context"
	"time"

	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/port/primary"
)

type mockOrderService struct {
	createFn            func(ctx context.Context, req primary.CreateOrderRequest) (*entity.Order, error)
	getFn               func(ctx context.Context, id string) (*entity.Order, error)
	manualRetryFn       func(ctx context.Context, id string) (*entity.Order, error)
	cancelFn            func(ctx context.Context, id string) (*entity.Order, error)
	applyConfirmationFn func(ctx context.Context, body entity.PaymentConfirmationBody) error
}

func (m *mockOrderService) CreateOrder(ctx context.Context, req primary.CreateOrderRequest) (*entity.Order, error) {
	return m.createFn(ctx, req)
}

func (m *mockOrderService) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	return m.getFn(ctx, id)
}

func (m *mockOrderService) ManualRetryPayment(ctx context.Context, orderID string) (*entity.Order, error) {
	return m.manualRetryFn(ctx, orderID)
}

func (m *mockOrderService) Cancel(ctx context.Context, orderID string) (*entity.Order, error) {
	return m.cancelFn(ctx, orderID)
}

func (m *mockOrderService) ApplyPaymentConfirmation(ctx context.Context, body entity.PaymentConfirmationBody) error {
	return m.applyConfirmationFn(ctx, body)
}

type mockPaymentService struct {
	handleRequestFn func(ctx context.Context, body entity.PaymentRequestedBody) error
	getFn           func(ctx context.Context, id string) (*entity.Payment, error)
}

func (m *mockPaymentService) HandlePaymentRequest(ctx context.Context, body entity.PaymentRequestedBody) error {
	return m.handleRequestFn(ctx, body)
}

func (m *mockPaymentService) GetPayment(ctx context.Context, id string) (*entity.Payment, error) {
	return m.getFn(ctx, id)
}

type mockHealthChecker struct {
	name string
	err  error
}

func (m mockHealthChecker) Name() string { return m.name }

func (m mockHealthChecker) Check(ctx context.Context) error { return m.err }

type mockOutboxRepository struct {
	statsFn func(ctx context.Context, maxRetries int) (entity.Stats, error)
}

func (m *mockOutboxRepository) Insert(ctx context.Context, row *entity.OutboxEvent) error {
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
	return m.statsFn(ctx, maxRetries)
}
