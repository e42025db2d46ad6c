package entity

import (
	"fmt"
	"time"

	"github.com/orderflow/orderflow/internal/domain"
)

// RetryStatus enumerates the legal states of a RetryHistory row.
type RetryStatus string

const (
	RetryPending       RetryStatus = "PENDING"
	RetryRetrying      RetryStatus = "RETRYING"
	RetrySuccessful    RetryStatus = "SUCCESSFUL"
	RetryFinallyFailed RetryStatus = "FINALLY_FAILED"
)

// RetryAttempt records one issued transaction_id within a RetryHistory.
type RetryAttempt struct {
	TransactionID string
	AttemptNumber int
	IssuedAt      time.Time
}

// RetryHistory drives the order-side retry state machine.
// At most one row exists per OrderID.
type RetryHistory struct {
	OrderID               string
	OriginalTransactionID string
	CurrentTransactionID  string
	Status                RetryStatus
	FirstAttemptAt        time.Time
	LastAttemptAt         *time.Time
	NextRetryAt           *time.Time
	FinalFailureReason    string
	Version               int
	Attempts              []RetryAttempt
}

// NewRetryHistory opens a RetryHistory keyed by orderID, recording the
// original transaction id once.
func NewRetryHistory(orderID, originalTransactionID string, now time.Time) *RetryHistory {
	return &RetryHistory{
		OrderID:               orderID,
		OriginalTransactionID: originalTransactionID,
		CurrentTransactionID:  originalTransactionID,
		Status:                RetryPending,
		FirstAttemptAt:        now,
		Attempts: []RetryAttempt{{
			TransactionID: originalTransactionID,
			AttemptNumber: 1,
			IssuedAt:      now,
		}},
	}
}

// AttemptCount returns the number of attempts recorded so far.
func (r *RetryHistory) AttemptCount() int { return len(r.Attempts) }

// CanRetry reports whether another attempt is permitted under maxAttempts.
func (r *RetryHistory) CanRetry(maxAttempts int) bool {
	return r.AttemptCount() < maxAttempts
}

// IsDue reports whether now has reached NextRetryAt. A nil NextRetryAt
// (first retry) is always due.
func (r *RetryHistory) IsDue(now time.Time) bool {
	if r.NextRetryAt == nil {
		return true
	}
	return !now.Before(*r.NextRetryAt)
}

// Backoff computes delay_min = min(30, 2^attempt_count * base_delay_min).
func Backoff(attemptCount, baseDelayMin int) time.Duration {
	exp := attemptCount
	if exp < 0 {
		exp = 0
	}
	if exp > 20 {
		exp = 20
	}
	minutes := (1 << uint(exp)) * baseDelayMin
	if minutes > domainPaymentRetryBackoffCapMinutes {
		minutes = domainPaymentRetryBackoffCapMinutes
	}
	return time.Duration(minutes) * time.Minute
}

const domainPaymentRetryBackoffCapMinutes = 30

// IssueRetry mints a new attempt, rotating CurrentTransactionID and
// scheduling NextRetryAt via the backoff function.
// The caller is responsible for separately driving the Order aggregate's
// RequestPayment with newTransactionID in the same business transaction.
func (r *RetryHistory) IssueRetry(newTransactionID string, baseDelayMin int, now time.Time) error {
	if r.Status == RetryFinallyFailed || r.Status == RetrySuccessful {
		return fmt.Errorf("%w: cannot issue retry from status %s", domain.ErrIllegalState, r.Status)
	}
	r.CurrentTransactionID = newTransactionID
	r.Status = RetryRetrying
	r.LastAttemptAt = &now
	r.Attempts = append(r.Attempts, RetryAttempt{
		TransactionID: newTransactionID,
		AttemptNumber: len(r.Attempts) + 1,
		IssuedAt:      now,
	})
	next := now.Add(Backoff(len(r.Attempts), baseDelayMin))
	r.NextRetryAt = &next
	return nil
}

// MarkSuccessful closes the retry history once the order's payment
// ultimately confirms.
func (r *RetryHistory) MarkSuccessful(now time.Time) {
	r.Status = RetrySuccessful
	r.LastAttemptAt = &now
	r.NextRetryAt = nil
}

// MarkFinallyFailed closes the retry history once the attempt budget is
// exhausted. NextRetryAt must be nil once FINALLY_FAILED.
func (r *RetryHistory) MarkFinallyFailed(reason string, now time.Time) {
	r.Status = RetryFinallyFailed
	r.LastAttemptAt = &now
	r.NextRetryAt = nil
	r.FinalFailureReason = reason
}
