package paywall

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound         = errors.New("paywall: not found")
	ErrAlreadyExists    = errors.New("paywall: already exists")
	ErrInvalidParameter = errors.New("paywall: invalid parameter")
	ErrUnauthorized     = errors.New("paywall: unauthorized")

	// Article errors
	ErrArticleNotFound = errors.New("paywall: article not found")
	ErrArticleFree     = errors.New("paywall: article is free")
	ErrPaymentRequired = errors.New("paywall: payment required")

	// Payment errors
	ErrPaymentNotFound   = errors.New("paywall: no payment on record")
	ErrInsufficientFunds = errors.New("paywall: amount below article price")
	ErrAlreadyRefunded   = errors.New("paywall: payment already refunded")
	ErrWindowExpired     = errors.New("paywall: refund period expired")

	// Withdrawal errors
	ErrNothingToWithdraw   = errors.New("paywall: nothing to withdraw")
	ErrInsufficientReserve = errors.New("paywall: held funds below balance")
	ErrPayoutFailed        = errors.New("paywall: payout failed")

	// Store errors
	ErrStoreNotReady     = errors.New("paywall: store not ready")
	ErrStoreClosed       = errors.New("paywall: store is closed")
	ErrTransactionFailed = errors.New("paywall: transaction failed")
	ErrMigrationFailed   = errors.New("paywall: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("paywall: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrArticleNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}

// IsAccessError returns true if the error reflects a denied or unpaid access attempt.
func IsAccessError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrPaymentRequired)
}

// IsBalanceError returns true if the error is related to balances or withdrawals.
func IsBalanceError(err error) bool {
	return errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrNothingToWithdraw) ||
		errors.Is(err, ErrInsufficientReserve) ||
		errors.Is(err, ErrPayoutFailed)
}

// IsRetryable returns true if the error is temporary and the operation can be
// retried by the caller. The engine itself never retries (payout retry is an
// operator decision).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPayoutFailed) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
