package store

import (
	"context"
	"time"

	"github.com/xraph/paywall/article"
	"github.com/xraph/paywall/balance"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/payment"
	"github.com/xraph/paywall/types"
)

// Store is the unified storage interface for all paywall records.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
//
// Stores hold state; they do not enforce accounting order. The engine
// serializes mutating operations and owns the debit-before-payout rule.
//
// Multi-step engine operations (pay, refund, withdraw) issue each store
// call individually; there is no cross-call transaction. A store error
// partway through leaves the preceding writes in place, so store failures
// on the SQL and mongo backends can leave a partial credit until the
// operation is retried or reconciled.
type Store interface {
	// Article methods
	CreateArticle(ctx context.Context, a *article.Article) error
	GetArticle(ctx context.Context, articleID int64) (*article.Article, error)
	ListArticles(ctx context.Context, opts article.ListOpts) ([]*article.Article, error)

	// Payment methods
	CreatePayment(ctx context.Context, r *payment.Record) error
	GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Record, error)
	LatestPaidPayment(ctx context.Context, articleID int64, payer string) (*payment.Record, error)
	HasPaid(ctx context.Context, articleID int64, payer string) (bool, error)
	ListPayments(ctx context.Context, articleID int64, payer string, opts payment.ListOpts) ([]*payment.Record, error)
	MarkPaymentRefunded(ctx context.Context, paymentID id.PaymentID, refundedAt time.Time) error

	// Balance methods
	PlatformFees(ctx context.Context) (types.Money, error)
	AddPlatformFees(ctx context.Context, delta types.Money) error
	Earnings(ctx context.Context, author string) (types.Money, error)
	AddEarnings(ctx context.Context, author string, delta types.Money) error
	Reserve(ctx context.Context) (types.Money, error)
	AddReserve(ctx context.Context, delta types.Money) error
	Balances(ctx context.Context) (*balance.Snapshot, error)

	// Withdrawal receipt methods
	RecordWithdrawal(ctx context.Context, w *balance.Withdrawal) error
	ListWithdrawals(ctx context.Context, opts balance.ListOpts) ([]*balance.Withdrawal, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
