// Package plugin provides an extensible plugin system for Paywall.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"

	"github.com/xraph/paywall/article"
	"github.com/xraph/paywall/balance"
	"github.com/xraph/paywall/payment"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, pw interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Article lifecycle hooks
// ──────────────────────────────────────────────────

// OnArticlePublished is called when a new article is published.
type OnArticlePublished interface {
	Plugin
	OnArticlePublished(ctx context.Context, a *article.Article) error
}

// ──────────────────────────────────────────────────
// Payment lifecycle hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded is called when a payment is recorded and the
// split has been credited.
type OnPaymentRecorded interface {
	Plugin
	OnPaymentRecorded(ctx context.Context, r *payment.Record) error
}

// OnPaymentRefunded is called when a payment is refunded.
type OnPaymentRefunded interface {
	Plugin
	OnPaymentRefunded(ctx context.Context, r *payment.Record) error
}

// ──────────────────────────────────────────────────
// Withdrawal hooks
// ──────────────────────────────────────────────────

// OnFeesWithdrawn is called when accumulated platform fees are paid out.
type OnFeesWithdrawn interface {
	Plugin
	OnFeesWithdrawn(ctx context.Context, w *balance.Withdrawal) error
}

// OnEarningsWithdrawn is called when an author's earnings are paid out.
type OnEarningsWithdrawn interface {
	Plugin
	OnEarningsWithdrawn(ctx context.Context, w *balance.Withdrawal) error
}

// OnPayoutFailed is called when a payout sink rejects a transfer and
// the debited balance has been restored.
type OnPayoutFailed interface {
	Plugin
	OnPayoutFailed(ctx context.Context, kind balance.Kind, recipient string, err error) error
}

// OnFeeRateChanged is called when the fee authority owner changes the
// platform fee rate.
type OnFeeRateChanged interface {
	Plugin
	OnFeeRateChanged(ctx context.Context, oldRate, newRate uint32) error
}

// ──────────────────────────────────────────────────
// Access hooks
// ──────────────────────────────────────────────────

// OnAccessDenied is called when a reader requests paid content
// without an active payment.
type OnAccessDenied interface {
	Plugin
	OnAccessDenied(ctx context.Context, articleID int64, identity string) error
}
