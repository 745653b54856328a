// Package audithook bridges Paywall lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xraph/paywall/article"
	"github.com/xraph/paywall/balance"
	"github.com/xraph/paywall/payment"
	"github.com/xraph/paywall/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnArticlePublished  = (*Extension)(nil)
	_ plugin.OnPaymentRecorded   = (*Extension)(nil)
	_ plugin.OnPaymentRefunded   = (*Extension)(nil)
	_ plugin.OnFeesWithdrawn     = (*Extension)(nil)
	_ plugin.OnEarningsWithdrawn = (*Extension)(nil)
	_ plugin.OnPayoutFailed      = (*Extension)(nil)
	_ plugin.OnFeeRateChanged    = (*Extension)(nil)
	_ plugin.OnAccessDenied      = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Paywall lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Article lifecycle hooks
// ──────────────────────────────────────────────────

// OnArticlePublished implements plugin.OnArticlePublished.
func (e *Extension) OnArticlePublished(ctx context.Context, a *article.Article) error {
	return e.record(ctx, ActionArticlePublished, SeverityInfo, OutcomeSuccess,
		ResourceArticle, strconv.FormatInt(a.ID, 10), CategoryContent, nil,
		"author", a.Author,
		"price", a.Price.String(),
	)
}

// ──────────────────────────────────────────────────
// Payment lifecycle hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded implements plugin.OnPaymentRecorded.
func (e *Extension) OnPaymentRecorded(ctx context.Context, rec *payment.Record) error {
	return e.record(ctx, ActionPaymentRecorded, SeverityInfo, OutcomeSuccess,
		ResourcePayment, rec.ID.String(), CategoryPayment, nil,
		"article_id", rec.ArticleID,
		"payer", rec.Payer,
		"amount", rec.Amount.String(),
		"fee", rec.PlatformFee.String(),
	)
}

// OnPaymentRefunded implements plugin.OnPaymentRefunded.
func (e *Extension) OnPaymentRefunded(ctx context.Context, rec *payment.Record) error {
	return e.record(ctx, ActionPaymentRefunded, SeverityWarning, OutcomeSuccess,
		ResourcePayment, rec.ID.String(), CategoryPayment, nil,
		"article_id", rec.ArticleID,
		"payer", rec.Payer,
		"amount", rec.Amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Withdrawal lifecycle hooks
// ──────────────────────────────────────────────────

// OnFeesWithdrawn implements plugin.OnFeesWithdrawn.
func (e *Extension) OnFeesWithdrawn(ctx context.Context, w *balance.Withdrawal) error {
	return e.record(ctx, ActionFeesWithdrawn, SeverityInfo, OutcomeSuccess,
		ResourceWithdrawal, w.ID.String(), CategoryPayout, nil,
		"recipient", w.Recipient,
		"amount", w.Amount.String(),
	)
}

// OnEarningsWithdrawn implements plugin.OnEarningsWithdrawn.
func (e *Extension) OnEarningsWithdrawn(ctx context.Context, w *balance.Withdrawal) error {
	return e.record(ctx, ActionEarningsWithdrawn, SeverityInfo, OutcomeSuccess,
		ResourceWithdrawal, w.ID.String(), CategoryPayout, nil,
		"recipient", w.Recipient,
		"amount", w.Amount.String(),
	)
}

// OnPayoutFailed implements plugin.OnPayoutFailed.
func (e *Extension) OnPayoutFailed(ctx context.Context, kind balance.Kind, recipient string, err error) error {
	return e.record(ctx, ActionPayoutFailed, SeverityCritical, OutcomeFailure,
		ResourceWithdrawal, "", CategoryPayout, err,
		"kind", string(kind),
		"recipient", recipient,
	)
}

// ──────────────────────────────────────────────────
// Access and platform hooks
// ──────────────────────────────────────────────────

// OnAccessDenied implements plugin.OnAccessDenied.
func (e *Extension) OnAccessDenied(ctx context.Context, articleID int64, identity string) error {
	return e.record(ctx, ActionAccessDenied, SeverityWarning, OutcomeFailure,
		ResourceAccess, strconv.FormatInt(articleID, 10), CategoryAccess, nil,
		"article_id", articleID,
		"identity", identity,
	)
}

// OnFeeRateChanged implements plugin.OnFeeRateChanged.
func (e *Extension) OnFeeRateChanged(ctx context.Context, oldRate, newRate uint32) error {
	return e.record(ctx, ActionFeeRateChanged, SeverityWarning, OutcomeSuccess,
		ResourceFeeRate, "", CategoryPlatform, nil,
		"old_rate", oldRate,
		"new_rate", newRate,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
