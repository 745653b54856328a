// Package payout defines the external value-transfer contract.
//
// It defines a local Sink interface so the engine does not depend on any
// host payment rail directly. Callers inject an adapter that bridges to
// their transfer primitive at wiring time. A payout either completes or
// returns an error; the engine treats a returned error as "no value moved"
// and restores the debited balance.
package payout

import (
	"context"
	"log/slog"
	"sync"

	"github.com/xraph/paywall/types"
)

// Sink transfers value out of the ledger to a recipient. Implementations
// must fail atomically: on error, no value may have moved.
type Sink interface {
	Payout(ctx context.Context, recipient string, amount types.Money) error
}

// Func is an adapter to use a plain function as a Sink.
type Func func(ctx context.Context, recipient string, amount types.Money) error

// Payout implements Sink.
func (f Func) Payout(ctx context.Context, recipient string, amount types.Money) error {
	return f(ctx, recipient, amount)
}

// Discard accepts every payout without moving value. It is the engine
// default so that tests and dry runs work out of the box; production
// deployments wire a real sink.
var Discard Sink = Func(func(context.Context, string, types.Money) error {
	return nil
})

// WithLogging wraps a Sink so every attempt and failure is logged.
func WithLogging(next Sink, logger *slog.Logger) Sink {
	return Func(func(ctx context.Context, recipient string, amount types.Money) error {
		err := next.Payout(ctx, recipient, amount)
		if err != nil {
			logger.Error("payout failed",
				"recipient", recipient,
				"amount", amount.String(),
				"error", err,
			)
			return err
		}
		logger.Info("payout sent",
			"recipient", recipient,
			"amount", amount.String(),
		)
		return nil
	})
}

// Transfer is one recorded payout, as captured by Recorder.
type Transfer struct {
	Recipient string
	Amount    types.Money
}

// Recorder is an in-memory Sink that records every transfer. Set FailWith
// to make all attempts fail without recording. Intended for tests.
type Recorder struct {
	mu        sync.Mutex
	transfers []Transfer

	// FailWith, when non-nil, is returned by every Payout call.
	FailWith error
}

// Payout implements Sink.
func (r *Recorder) Payout(_ context.Context, recipient string, amount types.Money) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailWith != nil {
		return r.FailWith
	}
	r.transfers = append(r.transfers, Transfer{Recipient: recipient, Amount: amount})
	return nil
}

// Transfers returns a copy of all recorded transfers.
func (r *Recorder) Transfers() []Transfer {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Transfer, len(r.transfers))
	copy(out, r.transfers)
	return out
}
