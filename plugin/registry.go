package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/paywall/article"
	"github.com/xraph/paywall/balance"
	"github.com/xraph/paywall/payment"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit              []OnInit
	onShutdown          []OnShutdown
	onArticlePublished  []OnArticlePublished
	onPaymentRecorded   []OnPaymentRecorded
	onPaymentRefunded   []OnPaymentRefunded
	onFeesWithdrawn     []OnFeesWithdrawn
	onEarningsWithdrawn []OnEarningsWithdrawn
	onPayoutFailed      []OnPayoutFailed
	onFeeRateChanged    []OnFeeRateChanged
	onAccessDenied      []OnAccessDenied
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnArticlePublished); ok {
		r.onArticlePublished = append(r.onArticlePublished, v)
	}
	if v, ok := p.(OnPaymentRecorded); ok {
		r.onPaymentRecorded = append(r.onPaymentRecorded, v)
	}
	if v, ok := p.(OnPaymentRefunded); ok {
		r.onPaymentRefunded = append(r.onPaymentRefunded, v)
	}
	if v, ok := p.(OnFeesWithdrawn); ok {
		r.onFeesWithdrawn = append(r.onFeesWithdrawn, v)
	}
	if v, ok := p.(OnEarningsWithdrawn); ok {
		r.onEarningsWithdrawn = append(r.onEarningsWithdrawn, v)
	}
	if v, ok := p.(OnPayoutFailed); ok {
		r.onPayoutFailed = append(r.onPayoutFailed, v)
	}
	if v, ok := p.(OnFeeRateChanged); ok {
		r.onFeeRateChanged = append(r.onFeeRateChanged, v)
	}
	if v, ok := p.(OnAccessDenied); ok {
		r.onAccessDenied = append(r.onAccessDenied, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnArticlePublished)(nil)).Elem(), "OnArticlePublished")
	checkInterface(reflect.TypeOf((*OnPaymentRecorded)(nil)).Elem(), "OnPaymentRecorded")
	checkInterface(reflect.TypeOf((*OnPaymentRefunded)(nil)).Elem(), "OnPaymentRefunded")
	checkInterface(reflect.TypeOf((*OnFeesWithdrawn)(nil)).Elem(), "OnFeesWithdrawn")
	checkInterface(reflect.TypeOf((*OnEarningsWithdrawn)(nil)).Elem(), "OnEarningsWithdrawn")
	checkInterface(reflect.TypeOf((*OnPayoutFailed)(nil)).Elem(), "OnPayoutFailed")
	checkInterface(reflect.TypeOf((*OnFeeRateChanged)(nil)).Elem(), "OnFeeRateChanged")
	checkInterface(reflect.TypeOf((*OnAccessDenied)(nil)).Elem(), "OnAccessDenied")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, pw interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, pw)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitArticlePublished emits an article published event.
func (r *Registry) EmitArticlePublished(ctx context.Context, a *article.Article) {
	r.mu.RLock()
	plugins := r.onArticlePublished
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnArticlePublished(ctx, a)
		}); err != nil {
			r.logger.Warn("plugin OnArticlePublished failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaymentRecorded emits a payment recorded event.
func (r *Registry) EmitPaymentRecorded(ctx context.Context, rec *payment.Record) {
	r.mu.RLock()
	plugins := r.onPaymentRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentRecorded(ctx, rec)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentRecorded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaymentRefunded emits a payment refunded event.
func (r *Registry) EmitPaymentRefunded(ctx context.Context, rec *payment.Record) {
	r.mu.RLock()
	plugins := r.onPaymentRefunded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentRefunded(ctx, rec)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentRefunded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitFeesWithdrawn emits a platform fees withdrawn event.
func (r *Registry) EmitFeesWithdrawn(ctx context.Context, w *balance.Withdrawal) {
	r.mu.RLock()
	plugins := r.onFeesWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFeesWithdrawn(ctx, w)
		}); err != nil {
			r.logger.Warn("plugin OnFeesWithdrawn failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitEarningsWithdrawn emits an author earnings withdrawn event.
func (r *Registry) EmitEarningsWithdrawn(ctx context.Context, w *balance.Withdrawal) {
	r.mu.RLock()
	plugins := r.onEarningsWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnEarningsWithdrawn(ctx, w)
		}); err != nil {
			r.logger.Warn("plugin OnEarningsWithdrawn failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPayoutFailed emits a payout failed event.
func (r *Registry) EmitPayoutFailed(ctx context.Context, kind balance.Kind, recipient string, cause error) {
	r.mu.RLock()
	plugins := r.onPayoutFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPayoutFailed(ctx, kind, recipient, cause)
		}); err != nil {
			r.logger.Warn("plugin OnPayoutFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitFeeRateChanged emits a fee rate changed event.
func (r *Registry) EmitFeeRateChanged(ctx context.Context, oldRate, newRate uint32) {
	r.mu.RLock()
	plugins := r.onFeeRateChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFeeRateChanged(ctx, oldRate, newRate)
		}); err != nil {
			r.logger.Warn("plugin OnFeeRateChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitAccessDenied emits an access denied event.
func (r *Registry) EmitAccessDenied(ctx context.Context, articleID int64, identity string) {
	r.mu.RLock()
	plugins := r.onAccessDenied
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnAccessDenied(ctx, articleID, identity)
		}); err != nil {
			r.logger.Warn("plugin OnAccessDenied failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the payment pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
