// Package balance defines withdrawable balances and withdrawal receipts.
package balance

import (
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/types"
)

// Kind identifies which balance a withdrawal drew from.
type Kind string

const (
	KindPlatformFees Kind = "platform_fees"
	KindEarnings     Kind = "author_earnings"
	KindRefund       Kind = "refund"
)

// Status is the outcome of a withdrawal attempt. Failed receipts are kept:
// the balance was restored, but the attempt is part of the audit trail.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Withdrawal is the receipt for one withdrawal attempt.
type Withdrawal struct {
	types.Entity
	ID         id.WithdrawalID `json:"id"`
	Kind       Kind            `json:"kind"`
	Recipient  string          `json:"recipient"`
	Amount     types.Money     `json:"amount"`
	Status     Status          `json:"status"`
	FailReason string          `json:"fail_reason,omitempty"`
}

// Snapshot is a point-in-time view of all held balances, used for
// conservation checks and reporting.
type Snapshot struct {
	PlatformFees types.Money            `json:"platform_fees"`
	Earnings     map[string]types.Money `json:"earnings"`
	Reserve      types.Money            `json:"reserve"`
}

// ListOpts filters withdrawal receipt listings.
type ListOpts struct {
	Kind      Kind
	Status    Status
	Recipient string
	Limit     int
	Offset    int
}
