package payment

import (
	"context"
	"time"

	"github.com/xraph/paywall/id"
)

// Store is the payment sub-interface of the unified paywall store.
type Store interface {
	Create(ctx context.Context, r *Record) error
	Get(ctx context.Context, paymentID id.PaymentID) (*Record, error)
	// LatestPaid returns the most recent record in StatePaid for the
	// (article, payer) pair.
	LatestPaid(ctx context.Context, articleID int64, payer string) (*Record, error)
	// HasPaid reports whether any record in StatePaid exists for the pair.
	HasPaid(ctx context.Context, articleID int64, payer string) (bool, error)
	List(ctx context.Context, articleID int64, payer string, opts ListOpts) ([]*Record, error)
	MarkRefunded(ctx context.Context, paymentID id.PaymentID, refundedAt time.Time) error
}
