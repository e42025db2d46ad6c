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

// PaymentService implements primary.PaymentService.
//
// HandlePaymentRequest is split across two transactions with the gateway
// call outside of both:
//
//  1. create the PROCESSING payment and commit, so a duplicate delivery
//     of the same transaction id can be detected even if the process
//     crashes before the gateway responds;
//  2. call the gateway;
//  3. transition the payment to SUCCESS/FAILED and stage the
//     confirmation event, in a second transaction.
//
// A message carrying a transaction id already on a PROCESSING payment
// (step 1 committed, then a crash or redelivery) resumes from step 2
// rather than creating a second row — the unique index on transaction_id
// is what makes step 1 safe to retry.
type PaymentService struct {
	uow      secondary.UnitOfWork
	payments secondary.PaymentRepository
	gateway  secondary.PaymentGateway
	outbox   *OutboxWriter
	clock    clock.Clock
	logger   *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(
	uow secondary.UnitOfWork,
	payments secondary.PaymentRepository,
	gateway secondary.PaymentGateway,
	outbox *OutboxWriter,
	clk clock.Clock,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		uow:      uow,
		payments: payments,
		gateway:  gateway,
		outbox:   outbox,
		clock:    clk,
		logger:   logger.Named("payment_service"),
	}
}

var _ primary.PaymentService = (*PaymentService)(nil)

func (s *PaymentService) HandlePaymentRequest(ctx context.Context, body entity.PaymentRequestedBody) error {
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		return fmt.Errorf("%w: invalid amount %q", domain.ErrValidation, body.Amount)
	}
	money, err := valueobject.NewMoney(amount, body.Currency)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	maskedCard := valueobject.Mask(valueobject.CardData{
		Number:          body.Card.Number,
		ExpiryMonthYear: body.Card.ExpiryMonthYear,
		HolderName:      body.Card.HolderName,
	})

	payment, err := s.payments.GetByTransactionID(ctx, body.TransactionID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		payment, err = s.createProcessing(ctx, body, money, maskedCard)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	case payment.Status != entity.PaymentProcessing:
		// already resolved by a prior delivery of this transaction id
		s.logger.Info("dropping duplicate payment request",
			zap.String("transaction_id", body.TransactionID),
			zap.String("status", string(payment.Status)))
		return nil
	}

	result, chargeErr := s.gateway.Charge(ctx, secondary.GatewayChargeRequest{
		TransactionID: body.TransactionID,
		Amount:        money,
		Card: valueobject.CardData{
			Number:          body.Card.Number,
			ExpiryMonthYear: body.Card.ExpiryMonthYear,
			CVV:             body.Card.CVV,
			HolderName:      body.Card.HolderName,
		},
		MerchantID:  body.MerchantID,
		Description: body.Description,
	})

	return s.uow.Do(ctx, func(ctx context.Context) error {
		now := s.clock.Now()

		p, err := s.payments.GetByID(ctx, payment.ID, true)
		if err != nil {
			return err
		}
		if p.Status != entity.PaymentProcessing {
			// a concurrent redelivery already resolved it
			return nil
		}

		if chargeErr != nil {
			if err := p.Fail(chargeErr.Error(), now); err != nil {
				return err
			}
		} else if result.Approved {
			if err := p.Succeed(result.Response, now); err != nil {
				return err
			}
		} else {
			if err := p.Fail(result.Decline, now); err != nil {
				return err
			}
		}

		if err := s.payments.Update(ctx, p); err != nil {
			return err
		}
		return s.outbox.Stage(ctx, p.Flush())
	})
}

func (s *PaymentService) createProcessing(ctx context.Context, body entity.PaymentRequestedBody, money valueobject.Money, maskedCard valueobject.MaskedCard) (*entity.Payment, error) {
	var payment *entity.Payment
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		p, err := entity.NewPayment(uuid.NewString(), body.TransactionID, body.OrderID, body.CustomerID, money, maskedCard, now)
		if err != nil {
			return err
		}
		if err := s.payments.Create(ctx, p); err != nil {
			if errors.Is(err, domain.ErrDuplicateTransaction) {
				existing, getErr := s.payments.GetByTransactionID(ctx, body.TransactionID)
				if getErr != nil {
					return getErr
				}
				payment = existing
				return nil
			}
			return fmt.Errorf("creating payment: %w", err)
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// GetPayment loads a payment by id without locking.
func (s *PaymentService) GetPayment(ctx context.Context, id string) (*entity.Payment, error) {
	return s.payments.GetByID(ctx, id, false)
}
