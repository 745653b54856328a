package extension

import "time"

// Config holds the Paywall extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.paywall" or "paywall" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Currency is the engine currency for all prices, payments and
	// balances (default: "usd").
	Currency string `json:"currency" mapstructure:"currency" yaml:"currency"`

	// RefundWindow is how long after payment a refund is accepted
	// (default: 24h).
	RefundWindow time.Duration `json:"refund_window" mapstructure:"refund_window" yaml:"refund_window"`

	// FeeOwner is the identity that controls the platform fee rate and may
	// withdraw accumulated fees (default: "platform").
	// Ignored when an authority is provided programmatically.
	FeeOwner string `json:"fee_owner" mapstructure:"fee_owner" yaml:"fee_owner"`

	// FeeRate is the platform fee in parts per thousand of each payment
	// (default: 50, i.e. 5%). Ignored when an authority is provided
	// programmatically.
	FeeRate uint32 `json:"fee_rate" mapstructure:"fee_rate" yaml:"fee_rate"`

	// StoreBackend selects the store built from the grove.DB provided via
	// WithGroveDB: "postgres", "sqlite" or "mongo". When empty or no
	// grove.DB was provided, the in-memory store is used.
	StoreBackend string `json:"store_backend" mapstructure:"store_backend" yaml:"store_backend"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Currency:     "usd",
		RefundWindow: 24 * time.Hour,
		FeeOwner:     "platform",
		FeeRate:      50,
	}
}
