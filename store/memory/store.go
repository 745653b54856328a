package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	paywall "github.com/xraph/paywall"
	"github.com/xraph/paywall/article"
	"github.com/xraph/paywall/balance"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/payment"
	paywallstore "github.com/xraph/paywall/store"
	"github.com/xraph/paywall/types"
)

// compile-time interface check
var _ paywallstore.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	// Article registry
	articles      map[int64]*article.Article
	nextArticleID int64

	// Payment records, in creation order
	payments []*payment.Record

	// Balances
	platformFees types.Money
	earnings     map[string]types.Money
	reserve      types.Money

	// Withdrawal receipts, in creation order
	withdrawals []*balance.Withdrawal
}

func New() *Store {
	return &Store{
		articles:      make(map[int64]*article.Article),
		nextArticleID: 1,
		payments:      make([]*payment.Record, 0),
		earnings:      make(map[string]types.Money),
		withdrawals:   make([]*balance.Withdrawal, 0),
	}
}

// Article Store implementation

func (s *Store) CreateArticle(_ context.Context, a *article.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextArticleID
	s.nextArticleID++
	s.articles[a.ID] = a
	return nil
}

func (s *Store) GetArticle(_ context.Context, articleID int64) (*article.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.articles[articleID]; ok {
		return a, nil
	}
	return nil, paywall.ErrArticleNotFound
}

func (s *Store) ListArticles(_ context.Context, opts article.ListOpts) ([]*article.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*article.Article, 0)
	for _, a := range s.articles {
		if opts.Author == "" || a.Author == opts.Author {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

// Payment Store implementation

func (s *Store) CreatePayment(_ context.Context, r *payment.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.payments {
		if existing.ID.String() == r.ID.String() {
			return paywall.ErrAlreadyExists
		}
	}
	s.payments = append(s.payments, r)
	return nil
}

func (s *Store) GetPayment(_ context.Context, paymentID id.PaymentID) (*payment.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.payments {
		if r.ID.String() == paymentID.String() {
			return r, nil
		}
	}
	return nil, paywall.ErrPaymentNotFound
}

func (s *Store) LatestPaidPayment(_ context.Context, articleID int64, payer string) (*payment.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Records are appended in creation order; scan backwards.
	for i := len(s.payments) - 1; i >= 0; i-- {
		r := s.payments[i]
		if r.ArticleID == articleID && r.Payer == payer && r.State == payment.StatePaid {
			return r, nil
		}
	}
	return nil, paywall.ErrPaymentNotFound
}

func (s *Store) HasPaid(_ context.Context, articleID int64, payer string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.payments {
		if r.ArticleID == articleID && r.Payer == payer && r.State == payment.StatePaid {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListPayments(_ context.Context, articleID int64, payer string, opts payment.ListOpts) ([]*payment.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*payment.Record, 0)
	for _, r := range s.payments {
		if articleID != 0 && r.ArticleID != articleID {
			continue
		}
		if payer != "" && r.Payer != payer {
			continue
		}
		if opts.State != "" && r.State != opts.State {
			continue
		}
		result = append(result, r)
	}

	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) MarkPaymentRefunded(_ context.Context, paymentID id.PaymentID, refundedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.payments {
		if r.ID.String() == paymentID.String() {
			if r.State == payment.StateRefunded {
				return paywall.ErrAlreadyRefunded
			}
			r.State = payment.StateRefunded
			r.RefundedAt = &refundedAt
			r.Touch()
			return nil
		}
	}
	return paywall.ErrPaymentNotFound
}

// Balance Store implementation

func (s *Store) PlatformFees(_ context.Context) (types.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.platformFees, nil
}

func (s *Store) AddPlatformFees(_ context.Context, delta types.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.platformFees = addMoney(s.platformFees, delta)
	return nil
}

func (s *Store) Earnings(_ context.Context, author string) (types.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.earnings[author], nil
}

func (s *Store) AddEarnings(_ context.Context, author string, delta types.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.earnings[author] = addMoney(s.earnings[author], delta)
	return nil
}

func (s *Store) Reserve(_ context.Context) (types.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reserve, nil
}

func (s *Store) AddReserve(_ context.Context, delta types.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserve = addMoney(s.reserve, delta)
	return nil
}

func (s *Store) Balances(_ context.Context) (*balance.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	earnings := make(map[string]types.Money, len(s.earnings))
	for author, m := range s.earnings {
		earnings[author] = m
	}
	return &balance.Snapshot{
		PlatformFees: s.platformFees,
		Earnings:     earnings,
		Reserve:      s.reserve,
	}, nil
}

// Withdrawal receipt Store implementation

func (s *Store) RecordWithdrawal(_ context.Context, w *balance.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.withdrawals = append(s.withdrawals, w)
	return nil
}

func (s *Store) ListWithdrawals(_ context.Context, opts balance.ListOpts) ([]*balance.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*balance.Withdrawal, 0)
	for _, w := range s.withdrawals {
		if opts.Kind != "" && w.Kind != opts.Kind {
			continue
		}
		if opts.Status != "" && w.Status != opts.Status {
			continue
		}
		if opts.Recipient != "" && w.Recipient != opts.Recipient {
			continue
		}
		result = append(result, w)
	}

	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

// Core Store implementation

func (s *Store) Migrate(_ context.Context) error { return nil }
func (s *Store) Ping(_ context.Context) error    { return nil }
func (s *Store) Close() error                    { return nil }

// addMoney applies a signed delta, adopting the delta's currency when the
// balance has never been credited.
func addMoney(current, delta types.Money) types.Money {
	if current.Currency == "" {
		return delta
	}
	return current.Add(delta)
}
