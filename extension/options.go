package extension

import (
	"time"

	"github.com/xraph/grove"

	paywall "github.com/xraph/paywall"
	"github.com/xraph/paywall/feeauthority"
	"github.com/xraph/paywall/plugin"
	"github.com/xraph/paywall/store"
)

// Option configures the Paywall Forge extension.
type Option func(*Extension)

// WithStore sets the store for the paywall engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithGroveDB sets the grove database the store is built on. The backend
// is selected by the store_backend config key (postgres/sqlite/mongo).
func WithGroveDB(db *grove.DB) Option {
	return func(e *Extension) {
		e.db = db
	}
}

// WithAuthority sets the fee authority for the paywall engine. When set,
// the fee_owner and fee_rate config keys are ignored.
func WithAuthority(a *feeauthority.Authority) Option {
	return func(e *Extension) {
		e.authority = a
	}
}

// WithEngineOption passes a paywall.Option through to the underlying engine.
func WithEngineOption(opt paywall.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a paywall plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, paywall.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithCurrency sets the engine currency.
func WithCurrency(currency string) Option {
	return func(e *Extension) { e.config.Currency = currency }
}

// WithRefundWindow sets how long after payment a refund is accepted.
func WithRefundWindow(d time.Duration) Option {
	return func(e *Extension) { e.config.RefundWindow = d }
}

// WithStoreBackend selects the store built from the grove database.
func WithStoreBackend(backend string) Option {
	return func(e *Extension) { e.config.StoreBackend = backend }
}
