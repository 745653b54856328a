// Package feeauthority holds the platform fee governance state: a single
// owner identity and a fee rate in parts-per-thousand.
//
// The authority is injected into the paywall engine by reference; the engine
// reads the rate once per payment and bakes it into that payment's split, so
// later rate changes never rewrite recorded splits.
package feeauthority

import (
	"errors"
	"log/slog"
	"sync"
)

// MaxRate is the parts-per-thousand ceiling (100.0%).
const MaxRate = 1000

// Sentinel errors for authority mutations.
var (
	ErrNotOwner     = errors.New("feeauthority: caller is not the owner")
	ErrInvalidRate  = errors.New("feeauthority: rate exceeds 1000 parts-per-thousand")
	ErrInvalidOwner = errors.New("feeauthority: owner identity must be non-empty")
)

// Authority is the fee governance object. All methods are safe for
// concurrent use.
type Authority struct {
	mu     sync.RWMutex
	owner  string
	rate   uint32
	logger *slog.Logger
}

// Option configures an Authority.
type Option func(*Authority)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authority) {
		a.logger = logger
	}
}

// New creates an Authority with an initial owner and fee rate.
func New(owner string, rate uint32, opts ...Option) (*Authority, error) {
	if owner == "" {
		return nil, ErrInvalidOwner
	}
	if rate > MaxRate {
		return nil, ErrInvalidRate
	}

	a := &Authority{
		owner:  owner,
		rate:   rate,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Owner returns the current owner identity.
func (a *Authority) Owner() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.owner
}

// FeeRate returns the current rate in parts-per-thousand.
func (a *Authority) FeeRate() uint32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rate
}

// SetFeeRate updates the rate. Only the current owner may call it; the new
// rate is observable immediately to subsequent reads. On failure the rate is
// unchanged.
func (a *Authority) SetFeeRate(caller string, rate uint32) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.owner {
		return ErrNotOwner
	}
	if rate > MaxRate {
		return ErrInvalidRate
	}

	old := a.rate
	a.rate = rate

	a.logger.Info("fee rate changed",
		"old_rate", old,
		"new_rate", rate,
	)
	return nil
}

// TransferOwnership hands the authority to a new owner. Only the current
// owner may call it; the new owner must be a non-empty identity.
func (a *Authority) TransferOwnership(caller, newOwner string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.owner {
		return ErrNotOwner
	}
	if newOwner == "" {
		return ErrInvalidOwner
	}

	old := a.owner
	a.owner = newOwner

	a.logger.Info("authority ownership transferred",
		"old_owner", old,
		"new_owner", newOwner,
	)
	return nil
}
