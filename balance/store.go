package balance

import (
	"context"

	"github.com/xraph/paywall/types"
)

// Store is the balance sub-interface of the unified paywall store.
//
// Credit and debit are expressed as signed deltas so the engine can reverse
// a split with the exact amounts recorded at payment time. Stores only move
// numbers; the engine owns ordering (debit before external payout) and
// serialization of mutating operations.
type Store interface {
	// PlatformFees returns the accumulated platform-fee balance.
	PlatformFees(ctx context.Context) (types.Money, error)
	// AddPlatformFees applies a signed delta to the platform-fee balance.
	AddPlatformFees(ctx context.Context, delta types.Money) error

	// Earnings returns the withdrawable balance for one author.
	Earnings(ctx context.Context, author string) (types.Money, error)
	// AddEarnings applies a signed delta to an author's balance.
	AddEarnings(ctx context.Context, author string, delta types.Money) error

	// Reserve returns the total value currently held by the ledger.
	Reserve(ctx context.Context) (types.Money, error)
	// AddReserve applies a signed delta to the held total.
	AddReserve(ctx context.Context, delta types.Money) error

	// Balances returns a snapshot of all held balances.
	Balances(ctx context.Context) (*Snapshot, error)

	// RecordWithdrawal persists a withdrawal receipt.
	RecordWithdrawal(ctx context.Context, w *Withdrawal) error
	ListWithdrawals(ctx context.Context, opts ListOpts) ([]*Withdrawal, error)
}
