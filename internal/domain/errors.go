package domain

import "errors"

var (
	// ErrValidation indicates malformed or missing input fields.
	ErrValidation = errors.New("validation failed")

	// ErrIllegalState indicates a command incompatible with the aggregate's
	// current state (e.g. cancelling an already-confirmed order).
	ErrIllegalState = errors.New("illegal state transition")

	// ErrTransactionMismatch indicates an inbound transaction_id does not
	// match the aggregate's current transaction_id. Never retried.
	ErrTransactionMismatch = errors.New("transaction id mismatch")

	// ErrAlreadyApplied indicates a command was already applied under the
	// same transaction_id (a redelivered message after the first delivery
	// committed but its ack was lost). Callers should treat this as a
	// successful no-op, not a failure.
	ErrAlreadyApplied = errors.New("already applied")

	// ErrTransient indicates a broker/DB/gateway I/O failure that should
	// be retried by the appropriate layer (broker redelivery or outbox retry).
	ErrTransient = errors.New("transient infrastructure error")

	// ErrExhausted indicates a retry budget has been reached.
	ErrExhausted = errors.New("retry budget exhausted")

	// ErrNotFound indicates the requested aggregate does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateTransaction indicates a transaction_id collision on
	// payment creation.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")

	// ErrRetryNotDue indicates a scheduled retry was skipped because its
	// backoff window has not elapsed yet.
	ErrRetryNotDue = errors.New("retry not due")
)
