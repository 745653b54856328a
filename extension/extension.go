// Package extension provides the Forge extension adapter for Paywall.
//
// It implements the forge.Extension interface to integrate Paywall
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.paywall" or "paywall" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	paywall "github.com/xraph/paywall"
	"github.com/xraph/paywall/feeauthority"
	"github.com/xraph/paywall/store"
	"github.com/xraph/paywall/store/memory"
	"github.com/xraph/paywall/store/mongo"
	"github.com/xraph/paywall/store/postgres"
	"github.com/xraph/paywall/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "paywall"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Content-paywall ledger engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Paywall as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *paywall.Paywall
	authority  *feeauthority.Authority
	store      store.Store
	db         *grove.DB
	engineOpts []paywall.Option
}

// New creates a new Paywall Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Paywall instance.
// This is nil until Register is called.
func (e *Extension) Engine() *paywall.Paywall { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the paywall engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.authority == nil {
		authority, err := feeauthority.New(e.config.FeeOwner, e.config.FeeRate)
		if err != nil {
			return fmt.Errorf("paywall: invalid fee authority config: %w", err)
		}
		e.authority = authority
	}

	if err := e.resolveStore(); err != nil {
		return err
	}

	opts := e.buildEngineOpts()

	eng := paywall.New(e.store, e.authority, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*paywall.Paywall, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("paywall: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("paywall: store not initialized")
	}
	return e.store.Ping(ctx)
}

// resolveStore picks the store backend. A programmatic store wins; a grove
// database is dispatched on the configured backend; otherwise memory.
func (e *Extension) resolveStore() error {
	if e.store != nil {
		return nil
	}

	if e.db == nil {
		e.store = memory.New()
		return nil
	}

	switch e.config.StoreBackend {
	case "postgres":
		e.store = postgres.New(e.db)
	case "sqlite":
		e.store = sqlite.New(e.db)
	case "mongo":
		e.store = mongo.New(e.db)
	case "":
		return errors.New("paywall: grove database provided but store_backend not set; " +
			"set store_backend to postgres, sqlite or mongo")
	default:
		return fmt.Errorf("paywall: unknown store_backend %q", e.config.StoreBackend)
	}

	return nil
}

// buildEngineOpts constructs paywall.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []paywall.Option {
	opts := make([]paywall.Option, 0, len(e.engineOpts)+2)

	if e.config.Currency != "" {
		opts = append(opts, paywall.WithCurrency(e.config.Currency))
	}
	if e.config.RefundWindow > 0 {
		opts = append(opts, paywall.WithRefundWindow(e.config.RefundWindow))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("paywall: configuration is required but not found in config files; " +
				"ensure 'extensions.paywall' or 'paywall' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("paywall: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("currency", e.config.Currency),
		forge.F("refund_window", e.config.RefundWindow),
		forge.F("fee_owner", e.config.FeeOwner),
		forge.F("fee_rate", e.config.FeeRate),
		forge.F("store_backend", e.config.StoreBackend),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.paywall" first (namespaced pattern).
	if cm.IsSet("extensions.paywall") {
		if err := cm.Bind("extensions.paywall", &cfg); err == nil {
			e.Logger().Debug("paywall: loaded config from file",
				forge.F("key", "extensions.paywall"),
			)
			return cfg, true
		}
		e.Logger().Warn("paywall: failed to bind extensions.paywall config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "paywall" key.
	if cm.IsSet("paywall") {
		if err := cm.Bind("paywall", &cfg); err == nil {
			e.Logger().Debug("paywall: loaded config from file",
				forge.F("key", "paywall"),
			)
			return cfg, true
		}
		e.Logger().Warn("paywall: failed to bind paywall config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}
	if cfg.RefundWindow == 0 {
		cfg.RefundWindow = defaults.RefundWindow
	}
	if cfg.FeeOwner == "" {
		cfg.FeeOwner = defaults.FeeOwner
	}
	if cfg.FeeRate == 0 {
		cfg.FeeRate = defaults.FeeRate
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.Currency == "" && programmaticConfig.Currency != "" {
		yamlConfig.Currency = programmaticConfig.Currency
	}
	if yamlConfig.FeeOwner == "" && programmaticConfig.FeeOwner != "" {
		yamlConfig.FeeOwner = programmaticConfig.FeeOwner
	}
	if yamlConfig.StoreBackend == "" && programmaticConfig.StoreBackend != "" {
		yamlConfig.StoreBackend = programmaticConfig.StoreBackend
	}

	// Duration/int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.RefundWindow == 0 && programmaticConfig.RefundWindow != 0 {
		yamlConfig.RefundWindow = programmaticConfig.RefundWindow
	}
	if yamlConfig.FeeRate == 0 && programmaticConfig.FeeRate != 0 {
		yamlConfig.FeeRate = programmaticConfig.FeeRate
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
