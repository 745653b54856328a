package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	paywall "github.com/xraph/paywall"
	"github.com/xraph/paywall/article"
	"github.com/xraph/paywall/balance"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/payment"
	"github.com/xraph/paywall/types"
)

func newArticle(author string, price types.Money) *article.Article {
	return &article.Article{
		Entity:      types.NewEntity(),
		Author:      author,
		Price:       price,
		ContentRef:  "posts/example.md",
		PublishedAt: time.Now().UTC(),
	}
}

func newRecord(articleID int64, payer string, amount types.Money, paidAt time.Time) *payment.Record {
	fee, remainder := amount.SplitFee(50)
	return &payment.Record{
		Entity:       types.NewEntity(),
		ID:           id.NewPaymentID(),
		ArticleID:    articleID,
		Payer:        payer,
		Author:       "alice",
		Amount:       amount,
		PlatformFee:  fee,
		AuthorAmount: remainder,
		FeeRate:      50,
		State:        payment.StatePaid,
		PaidAt:       paidAt,
	}
}

func TestArticleStore(t *testing.T) {
	ctx := context.Background()

	t.Run("SequentialIDs", func(t *testing.T) {
		s := New()
		for want := int64(1); want <= 3; want++ {
			a := newArticle("alice", types.USD(500))
			if err := s.CreateArticle(ctx, a); err != nil {
				t.Fatalf("CreateArticle: %v", err)
			}
			if a.ID != want {
				t.Errorf("article id: got %d, want %d", a.ID, want)
			}
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		s := New()
		_, err := s.GetArticle(ctx, 42)
		if !errors.Is(err, paywall.ErrArticleNotFound) {
			t.Errorf("expected ErrArticleNotFound, got %v", err)
		}
	})

	t.Run("ListByAuthor", func(t *testing.T) {
		s := New()
		for _, author := range []string{"alice", "bob", "alice"} {
			if err := s.CreateArticle(ctx, newArticle(author, types.USD(100))); err != nil {
				t.Fatalf("CreateArticle: %v", err)
			}
		}

		got, err := s.ListArticles(ctx, article.ListOpts{Author: "alice"})
		if err != nil {
			t.Fatalf("ListArticles: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 articles for alice, got %d", len(got))
		}
	})

	t.Run("ListPagination", func(t *testing.T) {
		s := New()
		for i := 0; i < 5; i++ {
			if err := s.CreateArticle(ctx, newArticle("alice", types.USD(100))); err != nil {
				t.Fatalf("CreateArticle: %v", err)
			}
		}

		got, err := s.ListArticles(ctx, article.ListOpts{Limit: 2, Offset: 4})
		if err != nil {
			t.Fatalf("ListArticles: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected 1 article at offset 4, got %d", len(got))
		}
	})
}

func TestPaymentStore(t *testing.T) {
	ctx := context.Background()

	t.Run("DuplicateIDRejected", func(t *testing.T) {
		s := New()
		rec := newRecord(1, "bob", types.USD(500), time.Now())
		if err := s.CreatePayment(ctx, rec); err != nil {
			t.Fatalf("CreatePayment: %v", err)
		}
		if err := s.CreatePayment(ctx, rec); !errors.Is(err, paywall.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("HasPaid", func(t *testing.T) {
		s := New()
		if err := s.CreatePayment(ctx, newRecord(1, "bob", types.USD(500), time.Now())); err != nil {
			t.Fatalf("CreatePayment: %v", err)
		}

		paid, err := s.HasPaid(ctx, 1, "bob")
		if err != nil {
			t.Fatalf("HasPaid: %v", err)
		}
		if !paid {
			t.Error("expected bob to have paid for article 1")
		}

		paid, err = s.HasPaid(ctx, 1, "carol")
		if err != nil {
			t.Fatalf("HasPaid: %v", err)
		}
		if paid {
			t.Error("carol never paid")
		}
	})

	t.Run("LatestPaidPicksNewest", func(t *testing.T) {
		s := New()
		first := newRecord(1, "bob", types.USD(500), time.Now().Add(-time.Hour))
		second := newRecord(1, "bob", types.USD(500), time.Now())
		for _, rec := range []*payment.Record{first, second} {
			if err := s.CreatePayment(ctx, rec); err != nil {
				t.Fatalf("CreatePayment: %v", err)
			}
		}

		got, err := s.LatestPaidPayment(ctx, 1, "bob")
		if err != nil {
			t.Fatalf("LatestPaidPayment: %v", err)
		}
		if got.ID.String() != second.ID.String() {
			t.Errorf("expected latest record %s, got %s", second.ID, got.ID)
		}
	})

	t.Run("MarkRefunded", func(t *testing.T) {
		s := New()
		rec := newRecord(1, "bob", types.USD(500), time.Now())
		if err := s.CreatePayment(ctx, rec); err != nil {
			t.Fatalf("CreatePayment: %v", err)
		}

		refundedAt := time.Now().UTC()
		if err := s.MarkPaymentRefunded(ctx, rec.ID, refundedAt); err != nil {
			t.Fatalf("MarkPaymentRefunded: %v", err)
		}
		if rec.State != payment.StateRefunded {
			t.Errorf("state: got %s, want %s", rec.State, payment.StateRefunded)
		}
		if rec.RefundedAt == nil || !rec.RefundedAt.Equal(refundedAt) {
			t.Errorf("refunded_at not recorded: %v", rec.RefundedAt)
		}

		// Refunded is terminal.
		if err := s.MarkPaymentRefunded(ctx, rec.ID, refundedAt); !errors.Is(err, paywall.ErrAlreadyRefunded) {
			t.Errorf("expected ErrAlreadyRefunded, got %v", err)
		}
	})

	t.Run("ListByState", func(t *testing.T) {
		s := New()
		kept := newRecord(1, "bob", types.USD(500), time.Now())
		refunded := newRecord(1, "bob", types.USD(500), time.Now())
		for _, rec := range []*payment.Record{kept, refunded} {
			if err := s.CreatePayment(ctx, rec); err != nil {
				t.Fatalf("CreatePayment: %v", err)
			}
		}
		if err := s.MarkPaymentRefunded(ctx, refunded.ID, time.Now()); err != nil {
			t.Fatalf("MarkPaymentRefunded: %v", err)
		}

		got, err := s.ListPayments(ctx, 1, "bob", payment.ListOpts{State: payment.StatePaid})
		if err != nil {
			t.Fatalf("ListPayments: %v", err)
		}
		if len(got) != 1 || got[0].ID.String() != kept.ID.String() {
			t.Errorf("expected only the paid record, got %d records", len(got))
		}
	})
}

func TestBalanceStore(t *testing.T) {
	ctx := context.Background()

	t.Run("AccumulateAndDebit", func(t *testing.T) {
		s := New()
		if err := s.AddPlatformFees(ctx, types.USD(25)); err != nil {
			t.Fatalf("AddPlatformFees: %v", err)
		}
		if err := s.AddPlatformFees(ctx, types.USD(75)); err != nil {
			t.Fatalf("AddPlatformFees: %v", err)
		}
		if err := s.AddPlatformFees(ctx, types.USD(100).Negate()); err != nil {
			t.Fatalf("AddPlatformFees: %v", err)
		}

		fees, err := s.PlatformFees(ctx)
		if err != nil {
			t.Fatalf("PlatformFees: %v", err)
		}
		if !fees.IsZero() {
			t.Errorf("expected zero fees after debit, got %v", fees)
		}
	})

	t.Run("EarningsPerAuthor", func(t *testing.T) {
		s := New()
		if err := s.AddEarnings(ctx, "alice", types.USD(475)); err != nil {
			t.Fatalf("AddEarnings: %v", err)
		}
		if err := s.AddEarnings(ctx, "bob", types.USD(100)); err != nil {
			t.Fatalf("AddEarnings: %v", err)
		}

		got, err := s.Earnings(ctx, "alice")
		if err != nil {
			t.Fatalf("Earnings: %v", err)
		}
		if !got.Equal(types.USD(475)) {
			t.Errorf("alice earnings: got %v, want %v", got, types.USD(475))
		}

		// Unknown author holds nothing.
		got, err = s.Earnings(ctx, "carol")
		if err != nil {
			t.Fatalf("Earnings: %v", err)
		}
		if !got.IsZero() {
			t.Errorf("carol earnings: got %v, want zero", got)
		}
	})

	t.Run("Snapshot", func(t *testing.T) {
		s := New()
		if err := s.AddPlatformFees(ctx, types.USD(25)); err != nil {
			t.Fatalf("AddPlatformFees: %v", err)
		}
		if err := s.AddEarnings(ctx, "alice", types.USD(475)); err != nil {
			t.Fatalf("AddEarnings: %v", err)
		}
		if err := s.AddReserve(ctx, types.USD(500)); err != nil {
			t.Fatalf("AddReserve: %v", err)
		}

		snap, err := s.Balances(ctx)
		if err != nil {
			t.Fatalf("Balances: %v", err)
		}
		if !snap.PlatformFees.Equal(types.USD(25)) {
			t.Errorf("platform fees: got %v", snap.PlatformFees)
		}
		if !snap.Earnings["alice"].Equal(types.USD(475)) {
			t.Errorf("alice earnings: got %v", snap.Earnings["alice"])
		}
		if !snap.Reserve.Equal(types.USD(500)) {
			t.Errorf("reserve: got %v", snap.Reserve)
		}
	})
}

func TestWithdrawalStore(t *testing.T) {
	ctx := context.Background()

	newWithdrawal := func(kind balance.Kind, recipient string, status balance.Status) *balance.Withdrawal {
		return &balance.Withdrawal{
			Entity:    types.NewEntity(),
			ID:        id.NewWithdrawalID(),
			Kind:      kind,
			Recipient: recipient,
			Amount:    types.USD(100),
			Status:    status,
		}
	}

	s := New()
	receipts := []*balance.Withdrawal{
		newWithdrawal(balance.KindPlatformFees, "platform-ops", balance.StatusCompleted),
		newWithdrawal(balance.KindEarnings, "alice", balance.StatusCompleted),
		newWithdrawal(balance.KindEarnings, "alice", balance.StatusFailed),
	}
	for _, w := range receipts {
		if err := s.RecordWithdrawal(ctx, w); err != nil {
			t.Fatalf("RecordWithdrawal: %v", err)
		}
	}

	tests := []struct {
		name string
		opts balance.ListOpts
		want int
	}{
		{"all", balance.ListOpts{}, 3},
		{"by kind", balance.ListOpts{Kind: balance.KindEarnings}, 2},
		{"by status", balance.ListOpts{Status: balance.StatusFailed}, 1},
		{"by recipient", balance.ListOpts{Recipient: "alice"}, 2},
		{"kind and status", balance.ListOpts{Kind: balance.KindEarnings, Status: balance.StatusCompleted}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListWithdrawals(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListWithdrawals: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d receipts, want %d", len(got), tt.want)
			}
		})
	}
}
