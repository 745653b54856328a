// Package observability provides a metrics extension for Paywall that records
// lifecycle event counts via go-utils MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/paywall/article"
	"github.com/xraph/paywall/balance"
	"github.com/xraph/paywall/payment"
	"github.com/xraph/paywall/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnArticlePublished  = (*MetricsExtension)(nil)
	_ plugin.OnPaymentRecorded   = (*MetricsExtension)(nil)
	_ plugin.OnPaymentRefunded   = (*MetricsExtension)(nil)
	_ plugin.OnFeesWithdrawn     = (*MetricsExtension)(nil)
	_ plugin.OnEarningsWithdrawn = (*MetricsExtension)(nil)
	_ plugin.OnPayoutFailed      = (*MetricsExtension)(nil)
	_ plugin.OnFeeRateChanged    = (*MetricsExtension)(nil)
	_ plugin.OnAccessDenied      = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Paywall plugin to automatically track paywall metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Article metrics
	ArticlesPublished Counter
	ArticlePrice      Histogram

	// Payment metrics
	PaymentsRecorded Counter
	PaymentsRefunded Counter
	PaymentAmount    Histogram
	PlatformFeeTaken Histogram

	// Withdrawal metrics
	FeesWithdrawn     Counter
	EarningsWithdrawn Counter
	PayoutFailures    Counter
	WithdrawalAmount  Histogram

	// Access metrics
	AccessDenied Counter

	// Platform metrics
	FeeRateChanges Counter

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Article metrics
		ArticlesPublished: factory.Counter("paywall.article.published"),
		ArticlePrice:      factory.Histogram("paywall.article.price"),

		// Payment metrics
		PaymentsRecorded: factory.Counter("paywall.payment.recorded"),
		PaymentsRefunded: factory.Counter("paywall.payment.refunded"),
		PaymentAmount:    factory.Histogram("paywall.payment.amount"),
		PlatformFeeTaken: factory.Histogram("paywall.payment.platform_fee"),

		// Withdrawal metrics
		FeesWithdrawn:     factory.Counter("paywall.withdrawal.fees"),
		EarningsWithdrawn: factory.Counter("paywall.withdrawal.earnings"),
		PayoutFailures:    factory.Counter("paywall.payout.failures"),
		WithdrawalAmount:  factory.Histogram("paywall.withdrawal.amount"),

		// Access metrics
		AccessDenied: factory.Counter("paywall.access.denied"),

		// Platform metrics
		FeeRateChanges: factory.Counter("paywall.fee_rate.changes"),

		// Error metrics
		StoreErrors:  factory.Counter("paywall.store.errors"),
		PluginErrors: factory.Counter("paywall.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Article lifecycle hooks
// ──────────────────────────────────────────────────

// OnArticlePublished implements plugin.OnArticlePublished.
func (m *MetricsExtension) OnArticlePublished(_ context.Context, a *article.Article) error {
	m.ArticlesPublished.Inc()
	m.ArticlePrice.Observe(float64(a.Price.Amount))
	return nil
}

// ──────────────────────────────────────────────────
// Payment lifecycle hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded implements plugin.OnPaymentRecorded.
func (m *MetricsExtension) OnPaymentRecorded(_ context.Context, rec *payment.Record) error {
	m.PaymentsRecorded.Inc()
	m.PaymentAmount.Observe(float64(rec.Amount.Amount))
	m.PlatformFeeTaken.Observe(float64(rec.PlatformFee.Amount))
	return nil
}

// OnPaymentRefunded implements plugin.OnPaymentRefunded.
func (m *MetricsExtension) OnPaymentRefunded(_ context.Context, _ *payment.Record) error {
	m.PaymentsRefunded.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Withdrawal lifecycle hooks
// ──────────────────────────────────────────────────

// OnFeesWithdrawn implements plugin.OnFeesWithdrawn.
func (m *MetricsExtension) OnFeesWithdrawn(_ context.Context, w *balance.Withdrawal) error {
	m.FeesWithdrawn.Inc()
	m.WithdrawalAmount.Observe(float64(w.Amount.Amount))
	return nil
}

// OnEarningsWithdrawn implements plugin.OnEarningsWithdrawn.
func (m *MetricsExtension) OnEarningsWithdrawn(_ context.Context, w *balance.Withdrawal) error {
	m.EarningsWithdrawn.Inc()
	m.WithdrawalAmount.Observe(float64(w.Amount.Amount))
	return nil
}

// OnPayoutFailed implements plugin.OnPayoutFailed.
func (m *MetricsExtension) OnPayoutFailed(_ context.Context, _ balance.Kind, _ string, _ error) error {
	m.PayoutFailures.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Access and platform hooks
// ──────────────────────────────────────────────────

// OnAccessDenied implements plugin.OnAccessDenied.
func (m *MetricsExtension) OnAccessDenied(_ context.Context, _ int64, _ string) error {
	m.AccessDenied.Inc()
	return nil
}

// OnFeeRateChanged implements plugin.OnFeeRateChanged.
func (m *MetricsExtension) OnFeeRateChanged(_ context.Context, _, _ uint32) error {
	m.FeeRateChanges.Inc()
	return nil
}
