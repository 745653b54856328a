package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

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

// Store implements store.Store using SQLite via Grove ORM.
//
// The engine serializes mutating operations, so read-modify-write sequences
// here never race with each other.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("paywall/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("paywall/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Article Store ====================

func (s *Store) CreateArticle(ctx context.Context, a *article.Article) error {
	var next int64
	err := s.sdb.NewRaw(`SELECT COALESCE(MAX(id), 0) + 1 FROM paywall_articles`).Scan(ctx, &next)
	if err != nil {
		return err
	}
	a.ID = next

	m := toArticleModel(a)
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetArticle(ctx context.Context, articleID int64) (*article.Article, error) {
	m := new(articleModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", articleID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paywall.ErrArticleNotFound
		}
		return nil, err
	}
	return fromArticleModel(m), nil
}

func (s *Store) ListArticles(ctx context.Context, opts article.ListOpts) ([]*article.Article, error) {
	var models []articleModel
	q := s.sdb.NewSelect(&models)

	if opts.Author != "" {
		q = q.Where("author = ?", opts.Author)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*article.Article, len(models))
	for i := range models {
		result[i] = fromArticleModel(&models[i])
	}
	return result, nil
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, r *payment.Record) error {
	m := toPaymentModel(r)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Record, error) {
	m := new(paymentModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", paymentID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paywall.ErrPaymentNotFound
		}
		return nil, err
	}
	return fromPaymentModel(m)
}

func (s *Store) LatestPaidPayment(ctx context.Context, articleID int64, payer string) (*payment.Record, error) {
	m := new(paymentModel)
	err := s.sdb.NewSelect(m).
		Where("article_id = ?", articleID).
		Where("payer = ?", payer).
		Where("state = ?", string(payment.StatePaid)).
		OrderExpr("paid_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paywall.ErrPaymentNotFound
		}
		return nil, err
	}
	return fromPaymentModel(m)
}

func (s *Store) HasPaid(ctx context.Context, articleID int64, payer string) (bool, error) {
	var count int64
	err := s.sdb.NewRaw(`
		SELECT COUNT(1) FROM paywall_payments
		WHERE article_id = ? AND payer = ? AND state = ?
	`, articleID, payer, string(payment.StatePaid)).Scan(ctx, &count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListPayments(ctx context.Context, articleID int64, payer string, opts payment.ListOpts) ([]*payment.Record, error) {
	var models []paymentModel
	q := s.sdb.NewSelect(&models)

	if articleID != 0 {
		q = q.Where("article_id = ?", articleID)
	}
	if payer != "" {
		q = q.Where("payer = ?", payer)
	}
	if opts.State != "" {
		q = q.Where("state = ?", string(opts.State))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("paid_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*payment.Record, len(models))
	for i := range models {
		r, err := fromPaymentModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

func (s *Store) MarkPaymentRefunded(ctx context.Context, paymentID id.PaymentID, refundedAt time.Time) error {
	t := now()
	res, err := s.sdb.NewUpdate((*paymentModel)(nil)).
		Set("state = ?", string(payment.StateRefunded)).
		Set("refunded_at = ?", refundedAt).
		Set("updated_at = ?", t).
		Where("id = ?", paymentID.String()).
		Where("state = ?", string(payment.StatePaid)).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return paywall.ErrPaymentNotFound
	}
	return nil
}

// ==================== Balance Store ====================

func (s *Store) PlatformFees(ctx context.Context) (types.Money, error) {
	return s.getBalance(ctx, accountPlatformFees, "")
}

func (s *Store) AddPlatformFees(ctx context.Context, delta types.Money) error {
	return s.addBalance(ctx, accountPlatformFees, "", delta)
}

func (s *Store) Earnings(ctx context.Context, author string) (types.Money, error) {
	return s.getBalance(ctx, accountEarnings, author)
}

func (s *Store) AddEarnings(ctx context.Context, author string, delta types.Money) error {
	return s.addBalance(ctx, accountEarnings, author, delta)
}

func (s *Store) Reserve(ctx context.Context) (types.Money, error) {
	return s.getBalance(ctx, accountReserve, "")
}

func (s *Store) AddReserve(ctx context.Context, delta types.Money) error {
	return s.addBalance(ctx, accountReserve, "", delta)
}

func (s *Store) Balances(ctx context.Context) (*balance.Snapshot, error) {
	var models []balanceModel
	if err := s.sdb.NewSelect(&models).Scan(ctx); err != nil {
		return nil, err
	}

	snap := &balance.Snapshot{
		Earnings: make(map[string]types.Money),
	}
	for i := range models {
		m := &models[i]
		switch m.Kind {
		case accountPlatformFees:
			snap.PlatformFees = fromBalanceModel(m)
		case accountReserve:
			snap.Reserve = fromBalanceModel(m)
		case accountEarnings:
			snap.Earnings[m.Owner] = fromBalanceModel(m)
		}
	}
	return snap, nil
}

func (s *Store) getBalance(ctx context.Context, kind, owner string) (types.Money, error) {
	m := new(balanceModel)
	err := s.sdb.NewSelect(m).
		Where("kind = ?", kind).
		Where("owner = ?", owner).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return types.Money{}, nil
		}
		return types.Money{}, err
	}
	return fromBalanceModel(m), nil
}

// addBalance applies a signed delta in place, inserting the account row on
// first use.
func (s *Store) addBalance(ctx context.Context, kind, owner string, delta types.Money) error {
	res, err := s.sdb.NewUpdate((*balanceModel)(nil)).
		Set("amount_cents = amount_cents + ?", delta.Amount).
		Set("updated_at = ?", now()).
		Where("kind = ?", kind).
		Where("owner = ?", owner).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	m := &balanceModel{
		Kind:        kind,
		Owner:       owner,
		AmountCents: delta.Amount,
		Currency:    delta.Currency,
		UpdatedAt:   now(),
	}
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

// ==================== Withdrawal Store ====================

func (s *Store) RecordWithdrawal(ctx context.Context, w *balance.Withdrawal) error {
	m := toWithdrawalModel(w)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListWithdrawals(ctx context.Context, opts balance.ListOpts) ([]*balance.Withdrawal, error) {
	var models []withdrawalModel
	q := s.sdb.NewSelect(&models)

	if opts.Kind != "" {
		q = q.Where("kind = ?", string(opts.Kind))
	}
	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.Recipient != "" {
		q = q.Where("recipient = ?", opts.Recipient)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*balance.Withdrawal, len(models))
	for i := range models {
		w, err := fromWithdrawalModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = w
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
