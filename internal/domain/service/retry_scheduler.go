package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/orderflow/orderflow/internal/clock"
	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

// RetryScheduler drives the periodic scan described in : first
// it fails PAYMENT_PENDING orders that have sat past the configured
// timeout, then it reissues payment requests for PAYMENT_FAILED orders
// whose retry history has come due. It holds no ticker of its own — the
// worker adapter owns the interval and calls RunOnce.
type RetryScheduler struct {
	uow      secondary.UnitOfWork
	orders   secondary.OrderRepository
	outbox   *OutboxWriter
	orderSvc *OrderService
	clock    clock.Clock
	logger   *zap.Logger

	timeout   time.Duration
	batchSize int
}

// NewRetryScheduler constructs a RetryScheduler.
func NewRetryScheduler(
	uow secondary.UnitOfWork,
	orders secondary.OrderRepository,
	outbox *OutboxWriter,
	orderSvc *OrderService,
	clk clock.Clock,
	logger *zap.Logger,
	timeout time.Duration,
	batchSize int,
) *RetryScheduler {
	return &RetryScheduler{
		uow:       uow,
		orders:    orders,
		outbox:    outbox,
		orderSvc:  orderSvc,
		clock:     clk,
		logger:    logger.Named("retry_scheduler"),
		timeout:   timeout,
		batchSize: batchSize,
	}
}

// Result summarizes one scan pass, for metrics and tests.
type Result struct {
	TimedOut int
	Retried  int
	Skipped  int
	Failed   int
}

// RunOnce executes a single scan pass.
func (s *RetryScheduler) RunOnce(ctx context.Context) (Result, error) {
	var res Result

	now := s.clock.Now()
	cutoff := now.Add(-s.timeout)

	pending, err := s.orders.ListPaymentPendingOlderThan(ctx, cutoff, s.batchSize)
	if err != nil {
		return res, err
	}
	for _, o := range pending {
		if err := s.failTimedOut(ctx, o.ID); err != nil {
			s.logger.Error("failing timed out order", zap.String("order_id", o.ID), zap.Error(err))
			res.Failed++
			continue
		}
		res.TimedOut++
	}

	failedOrders, err := s.orders.ListPaymentFailed(ctx, s.batchSize)
	if err != nil {
		return res, err
	}
	for _, o := range failedOrders {
		_, err := s.orderSvc.ScheduledRetry(ctx, o.ID)
		switch {
		case err == nil:
			res.Retried++
		case errors.Is(err, domain.ErrRetryNotDue):
			res.Skipped++
		case errors.Is(err, domain.ErrExhausted):
			s.logger.Info("retry budget exhausted", zap.String("order_id", o.ID))
		default:
			s.logger.Error("retrying payment", zap.String("order_id", o.ID), zap.Error(err))
			res.Failed++
		}
	}

	return res, nil
}

func (s *RetryScheduler) failTimedOut(ctx context.Context, orderID string) error {
	return s.uow.Do(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		o, err := s.orders.GetByID(ctx, orderID, true)
		if err != nil {
			return err
		}
		if o.Status != entity.OrderPaymentPending {
			return nil // raced with a confirmation
		}
		if err := o.FailPayment("payment pending timed out", o.TransactionID, now); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		return s.outbox.Stage(ctx, o.Flush())
	})
}
