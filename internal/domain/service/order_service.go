package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/orderflow/orderflow/internal/clock"
	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/domain/valueobject"
	"github.com/orderflow/orderflow/internal/port/primary"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

// OrderService implements primary.OrderService.
type OrderService struct {
	uow     secondary.UnitOfWork
	orders  secondary.OrderRepository
	retries secondary.RetryHistoryRepository
	audit   secondary.AuditRepository
	outbox  *OutboxWriter
	clock   clock.Clock
	logger  *zap.Logger

	maxRetryAttempts int
	baseDelayMinutes int
}

// NewOrderService constructs an OrderService.
func NewOrderService(
	uow secondary.UnitOfWork,
	orders secondary.OrderRepository,
	retries secondary.RetryHistoryRepository,
	audit secondary.AuditRepository,
	outbox *OutboxWriter,
	clk clock.Clock,
	logger *zap.Logger,
	maxRetryAttempts, baseDelayMinutes int,
) *OrderService {
	return &OrderService{
		uow:              uow,
		orders:           orders,
		retries:          retries,
		audit:            audit,
		outbox:           outbox,
		clock:            clk,
		logger:           logger.Named("order_service"),
		maxRetryAttempts: maxRetryAttempts,
		baseDelayMinutes: baseDelayMinutes,
	}
}

var _ primary.OrderService = (*OrderService)(nil)

// CreateOrder creates the order and immediately requests payment under a
// freshly minted transaction id, staging PaymentRequested and persisting
// the order and its retry history in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, req primary.CreateOrderRequest) (*entity.Order, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid amount %q", domain.ErrValidation, req.Amount)
	}
	money, err := valueobject.NewMoney(amount, req.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var order *entity.Order
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		now := s.clock.Now()

		o, err := entity.NewOrder(uuid.NewString(), req.CustomerID, money, now)
		if err != nil {
			return err
		}

		transactionID := uuid.NewString()
		if err := o.RequestPayment(transactionID, req.Card, req.MerchantID, req.Description, now); err != nil {
			return err
		}

		if err := s.orders.Create(ctx, o); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		history := entity.NewRetryHistory(o.ID, transactionID, now)
		if err := s.retries.Create(ctx, history); err != nil {
			return fmt.Errorf("creating retry history: %w", err)
		}

		if err := s.outbox.Stage(ctx, o.Flush()); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created", zap.String("order_id", order.ID), zap.String("transaction_id", order.TransactionID))
	return order, nil
}

// GetOrder loads an order by id without locking.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	return s.orders.GetByID(ctx, id, false)
}

// ManualRetryPayment reissues a payment request for an order in
// PAYMENT_FAILED, bypassing the scheduler's due-time guard but still
// honoring the attempt-count guard, for the operator-triggered retry
// endpoint.
func (s *OrderService) ManualRetryPayment(ctx context.Context, orderID string) (*entity.Order, error) {
	return s.retryPayment(ctx, orderID, false)
}

// ScheduledRetry reissues a payment request for orderID only if its
// retry history is due, per the scheduler's backoff window. It returns
// domain.ErrRetryNotDue — not a failure — when the window has not
// elapsed; the scheduler treats that as a no-op skip.
func (s *OrderService) ScheduledRetry(ctx context.Context, orderID string) (*entity.Order, error) {
	return s.retryPayment(ctx, orderID, true)
}

func (s *OrderService) retryPayment(ctx context.Context, orderID string, requireDue bool) (*entity.Order, error) {
	var order *entity.Order
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		now := s.clock.Now()

		o, err := s.orders.GetByID(ctx, orderID, true)
		if err != nil {
			return err
		}
		if o.Status != entity.OrderPaymentFailed {
			return fmt.Errorf("%w: order %s is not in PAYMENT_FAILED", domain.ErrIllegalState, orderID)
		}

		history, err := s.retries.GetByOrderID(ctx, orderID, true)
		if err != nil {
			return err
		}
		if requireDue && !history.IsDue(now) {
			return domain.ErrRetryNotDue
		}
		if !history.CanRetry(s.maxRetryAttempts) {
			history.MarkFinallyFailed("retry attempt budget exhausted", now)
			if err := s.retries.Update(ctx, history); err != nil {
				return err
			}
			return domain.ErrExhausted
		}

		transactionID := uuid.NewString()
		if err := history.IssueRetry(transactionID, s.baseDelayMinutes, now); err != nil {
			return err
		}
		if err := o.RequestPayment(transactionID, o.CardOnFile(), o.MerchantID(), o.Description(), now); err != nil {
			return err
		}

		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		if err := s.retries.Update(ctx, history); err != nil {
			return err
		}
		if err := s.outbox.Stage(ctx, o.Flush()); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel transitions an order to CANCELLED.
func (s *OrderService) Cancel(ctx context.Context, orderID string) (*entity.Order, error) {
	var order *entity.Order
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		o, err := s.orders.GetByID(ctx, orderID, true)
		if err != nil {
			return err
		}
		if err := o.Cancel(now); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ApplyPaymentConfirmation routes an inbound PaymentConfirmation to
// ConfirmPayment or FailPayment, relying on the aggregate's own
// transaction-id guard for deduplication. A stale confirmation (transaction
// id no longer current) is recorded to the audit log and dropped; a
// redelivered confirmation that was already applied under its own
// transaction id is dropped silently, with no audit write. Neither case is
// propagated as an error, so the consumer acks instead of retrying or
// dead-lettering.
func (s *OrderService) ApplyPaymentConfirmation(ctx context.Context, body entity.PaymentConfirmationBody) error {
	return s.uow.Do(ctx, func(ctx context.Context) error {
		now := s.clock.Now()

		o, err := s.orders.GetByID(ctx, body.OrderID, true)
		if err != nil {
			return err
		}

		var applyErr error
		switch body.Status {
		case "SUCCESS":
			applyErr = o.ConfirmPayment(body.PaymentID, body.TransactionID, now)
		case "FAILED":
			applyErr = o.FailPayment(body.ErrorMessage, body.TransactionID, now)
		default:
			return fmt.Errorf("%w: unknown confirmation status %q", domain.ErrValidation, body.Status)
		}

		if errors.Is(applyErr, domain.ErrAlreadyApplied) {
			s.logger.Info("duplicate payment confirmation already applied, acking without state change",
				zap.String("order_id", o.ID),
				zap.String("transaction_id", body.TransactionID))
			return nil
		}
		if errors.Is(applyErr, domain.ErrTransactionMismatch) {
			s.logger.Warn("dropping stale payment confirmation",
				zap.String("order_id", o.ID),
				zap.String("order_transaction_id", o.TransactionID),
				zap.String("confirmation_transaction_id", body.TransactionID))
			return s.audit.Record(ctx, secondary.AuditEntry{
				AggregateID:      o.ID,
				TransactionID:    o.TransactionID,
				SupersededByTxID: body.TransactionID,
				Reason:           "stale confirmation dropped: transaction id mismatch",
			})
		}
		if applyErr != nil {
			return applyErr
		}

		if body.Status == "SUCCESS" {
			history, herr := s.retries.GetByOrderID(ctx, o.ID, true)
			switch {
			case herr == nil:
				history.MarkSuccessful(now)
				if err := s.retries.Update(ctx, history); err != nil {
					return err
				}
			case errors.Is(herr, domain.ErrNotFound):
				// no retry history was ever opened for this order
			default:
				return herr
			}
		}

		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		return s.outbox.Stage(ctx, o.Flush())
	})
}
