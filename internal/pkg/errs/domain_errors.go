package errs

import "errors"

// Error taxonomy shared by every layer. Concrete errors are marked with one of
// these so handlers can classify them with Is.
var (
	// ErrFormat covers malformed keys, memos, names and fingerprints. Always
	// fatal to the current operation.
	ErrFormat = errors.New("format error")

	// ErrInsufficientFunds is the user-actionable policy failure: the payment
	// does not cover stake, resources and fee.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvariantViolation is unrecoverable (id space exhausted).
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrCommandRejected means the host did not accept the command batch.
	ErrCommandRejected = errors.New("command batch rejected")

	ErrReservationNotFound     = errors.New("reservation not found")
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
