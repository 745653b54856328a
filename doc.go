// Package paywall provides an embeddable content-paywall ledger for Go applications.
//
// Paywall is designed as a library, not a service. Import it directly into
// your Go application and wire it to your own transport and payment rail.
// It provides:
//
//   - A published-article registry with per-article prices
//   - Pay-to-unlock access checks for reader identities
//   - Automatic payment splitting between author earnings and platform fees
//   - A governed fee rate in parts-per-thousand with owner-only mutation
//   - Time-windowed refunds that reverse the exact recorded split
//   - Failure-atomic withdrawals through a pluggable payout sink
//
// # Quick Start
//
// Create an engine with your preferred store and a fee authority:
//
//	import (
//	    "github.com/xraph/paywall"
//	    "github.com/xraph/paywall/feeauthority"
//	    "github.com/xraph/paywall/store/postgres"
//	)
//
//	// Initialize store (db is a *grove.DB connected to Postgres)
//	store := postgres.New(db)
//
//	// Platform takes 5% (50 parts per thousand)
//	authority, err := feeauthority.New("platform-ops", 50)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pw := paywall.New(store, authority)
//
//	// Start the engine (runs migrations, initializes plugins)
//	if err := pw.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pw.Stop()
//
// # Core Concepts
//
// Authors publish articles with a price; a zero price means free:
//
//	a, err := pw.Publish(ctx, "alice", paywall.USD(500), "s3://content/essay-1")
//
// Readers pay to unlock. The amount is split at the current fee rate and
// the split is frozen on the payment record:
//
//	rec, err := pw.Pay(ctx, "bob", a.ID, paywall.USD(500))
//
// Access follows payment:
//
//	ref, err := pw.GetContent(ctx, a.ID, "bob")
//
// Refunds inside the window reverse exactly what was credited:
//
//	rec, err := pw.Refund(ctx, "bob", a.ID)
//
// Withdrawals debit the balance to zero before invoking the payout sink;
// a failing sink restores the balance and leaves a failed receipt:
//
//	w, err := pw.WithdrawEarnings(ctx, "alice", "alice")
//
// # Money
//
// All monetary calculations use integer arithmetic to avoid floating-point
// precision issues. The Money type represents amounts in the smallest
// currency unit (cents for USD, pence for GBP, etc). Fee splits floor
// toward the platform: fee = amount * rate / 1000 in integer division, the
// author gets the remainder.
//
// # TypeID
//
// Payment records and withdrawal receipts use TypeID for globally unique,
// type-safe identifiers:
//
//	pay_01h2xcejqtf2nbrexx3vqjhp41  // Payment record
//	wd_01h455vb4pex5vsknk084sn02q   // Withdrawal receipt
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities. Article ids are sequential
// integers assigned by the store.
package paywall
