package paywall_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/paywall"
	"github.com/xraph/paywall/feeauthority"
	"github.com/xraph/paywall/store/memory"
	"github.com/xraph/paywall/types"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from README
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// Platform takes 5% (50 parts per thousand)
		authority, err := feeauthority.New("platform-ops", 50)
		if err != nil {
			t.Fatal(err)
		}

		pw := paywall.New(store, authority,
			paywall.WithLogger(slog.Default()),
			paywall.WithCurrency("USD"),
			paywall.WithRefundWindow(24*time.Hour),
		)

		// Start the engine
		ctx := context.Background()
		if err := pw.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer pw.Stop()

		// Publish an article at $5.00
		a, err := pw.Publish(ctx, "alice", paywall.USD(500), "s3://content/essay-1")
		if err != nil {
			t.Fatal(err)
		}

		// A reader pays to unlock
		rec, err := pw.Pay(ctx, "bob", a.ID, paywall.USD(500))
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("split: fee %s, author %s\n",
			rec.PlatformFee.String(), rec.AuthorAmount.String())

		// Access follows payment
		ref, err := pw.GetContent(ctx, a.ID, "bob")
		if err != nil {
			t.Fatal(err)
		}
		if ref != "s3://content/essay-1" {
			t.Fatalf("unexpected content ref %q", ref)
		}

		// The author withdraws accumulated earnings
		w, err := pw.WithdrawEarnings(ctx, "alice", "alice")
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("withdrew %s for %s\n", w.Amount.String(), w.Recipient)
	})

	// Test Money type examples
	t.Run("MoneyExamples", func(t *testing.T) {
		// Constructors
		_ = types.USD(4900)   // $49.00
		_ = types.EUR(9900)   // €99.00
		_ = types.Zero("USD") // $0.00

		// Arithmetic
		m1 := types.USD(100)
		m2 := types.USD(200)
		_ = m1.Add(m2) // $3.00

		// Fee splitting: 50 parts per thousand of $2.00
		fee, rest := m2.SplitFee(50)
		_ = fee  // $0.10
		_ = rest // $1.90

		// Comparison
		if m1.LessThan(m2) {
			// m1 is less than m2
		}

		// Formatting
		_ = m1.String()      // "$1.00"
		_ = m1.FormatMajor() // "1.00"
	})
}
