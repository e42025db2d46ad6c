package consumer

import (
	"context"

	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/port/primary"
)

type fakeDedupCache struct {
	seen    bool
	seenErr error
	marked  []string
}

func (f *fakeDedupCache) SeenMessage(ctx context.Context, aggregateID, messageID string) (bool, error) {
	if f.seenErr != nil {
		return false, f.seenErr
	}
	return f.seen, nil
}

func (f *fakeDedupCache) MarkSeen(ctx context.Context, aggregateID, messageID string) error {
	f.marked = append(f.marked, aggregateID+":"+messageID)
	return nil
}

type fakePaymentService struct {
	handleErr error
	calls     []entity.PaymentRequestedBody
	payment   *entity.Payment
}

func (f *fakePaymentService) HandlePaymentRequest(ctx context.Context, body entity.PaymentRequestedBody) error {
	f.calls = append(f.calls, body)
	return f.handleErr
}

func (f *fakePaymentService) GetPayment(ctx context.Context, id string) (*entity.Payment, error) {
	return f.payment, nil
}

type fakeOrderService struct {
	applyErr error
	calls    []entity.PaymentConfirmationBody
	order    *entity.Order
}

func (f *fakeOrderService) CreateOrder(ctx context.Context, req primary.CreateOrderRequest) (*entity.Order, error) {
	return f.order, nil
}

func (f *fakeOrderService) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	return f.order, nil
}

func (f *fakeOrderService) ManualRetryPayment(ctx context.Context, orderID string) (*entity.Order, error) {
	return f.order, nil
}

func (f *fakeOrderService) Cancel(ctx context.Context, orderID string) (*entity.Order, error) {
	return f.order, nil
}

func (f *fakeOrderService) ApplyPaymentConfirmation(ctx context.Context, body entity.PaymentConfirmationBody) error {
	f.calls = append(f.calls, body)
	return f.applyErr
}

// settleRecorder tracks the Ack/Nack decision a handler made on a
// delivery, for assertion without a real broker connection.
type settleRecorder struct {
	acked       bool
	nacked      bool
	nackRequeue bool
}

func (r *settleRecorder) ack() error { r.acked = true; return nil }

func (r *settleRecorder) nack(requeue bool) error {
	r.nacked = true
	r.nackRequeue = requeue
	return nil
}
