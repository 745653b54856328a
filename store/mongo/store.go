package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	paywall "github.com/xraph/paywall"
	"github.com/xraph/paywall/article"
	"github.com/xraph/paywall/balance"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/payment"
	paywallstore "github.com/xraph/paywall/store"
	"github.com/xraph/paywall/types"
)

// Collection name constants.
const (
	colArticles    = "paywall_articles"
	colPayments    = "paywall_payments"
	colBalances    = "paywall_balances"
	colWithdrawals = "paywall_withdrawals"
	colCounters    = "paywall_counters"
)

// counterArticles is the counter document backing sequential article ids.
const counterArticles = "articles"

// compile-time interface check
var _ paywallstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all paywall collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("paywall/mongo: migrate %s indexes: %w", col, err)
		}
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
	next, err := s.nextArticleID(ctx)
	if err != nil {
		return err
	}
	a.ID = next

	m := toArticleModel(a)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("paywall/mongo: create article: %w", err)
	}
	return nil
}

// nextArticleID atomically bumps the article counter document.
func (s *Store) nextArticleID(ctx context.Context) (int64, error) {
	var counter counterModel
	err := s.mdb.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": counterArticles},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("paywall/mongo: next article id: %w", err)
	}
	return counter.Seq, nil
}

func (s *Store) GetArticle(ctx context.Context, articleID int64) (*article.Article, error) {
	var m articleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": articleID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paywall.ErrArticleNotFound
		}
		return nil, fmt.Errorf("paywall/mongo: get article: %w", err)
	}
	return fromArticleModel(&m), nil
}

func (s *Store) ListArticles(ctx context.Context, opts article.ListOpts) ([]*article.Article, error) {
	var models []articleModel

	filter := bson.M{}
	if opts.Author != "" {
		filter["author"] = opts.Author
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("paywall/mongo: list articles: %w", err)
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return paywall.ErrAlreadyExists
		}
		return fmt.Errorf("paywall/mongo: create payment: %w", err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Record, error) {
	var m paymentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": paymentID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paywall.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("paywall/mongo: get payment: %w", err)
	}
	return fromPaymentModel(&m)
}

func (s *Store) LatestPaidPayment(ctx context.Context, articleID int64, payer string) (*payment.Record, error) {
	var m paymentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"article_id": articleID,
			"payer":      payer,
			"state":      string(payment.StatePaid),
		}).
		Sort(bson.D{{Key: "paid_at", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paywall.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("paywall/mongo: latest paid payment: %w", err)
	}
	return fromPaymentModel(&m)
}

func (s *Store) HasPaid(ctx context.Context, articleID int64, payer string) (bool, error) {
	count, err := s.mdb.Collection(colPayments).CountDocuments(ctx, bson.M{
		"article_id": articleID,
		"payer":      payer,
		"state":      string(payment.StatePaid),
	})
	if err != nil {
		return false, fmt.Errorf("paywall/mongo: has paid: %w", err)
	}
	return count > 0, nil
}

func (s *Store) ListPayments(ctx context.Context, articleID int64, payer string, opts payment.ListOpts) ([]*payment.Record, error) {
	var models []paymentModel

	filter := bson.M{}
	if articleID != 0 {
		filter["article_id"] = articleID
	}
	if payer != "" {
		filter["payer"] = payer
	}
	if opts.State != "" {
		filter["state"] = string(opts.State)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "paid_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("paywall/mongo: list payments: %w", err)
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
	res, err := s.mdb.NewUpdate((*paymentModel)(nil)).
		Filter(bson.M{
			"_id":   paymentID.String(),
			"state": string(payment.StatePaid),
		}).
		Set("state", string(payment.StateRefunded)).
		Set("refunded_at", refundedAt).
		Set("updated_at", t).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paywall/mongo: mark payment refunded: %w", err)
	}
	if res.MatchedCount() == 0 {
		return paywall.ErrPaymentNotFound
	}
	return nil
}

// ==================== Balance Store ====================

func (s *Store) PlatformFees(ctx context.Context) (types.Money, error) {
	return s.getBalance(ctx, string(balance.KindPlatformFees), "")
}

func (s *Store) AddPlatformFees(ctx context.Context, delta types.Money) error {
	return s.addBalance(ctx, string(balance.KindPlatformFees), "", delta)
}

func (s *Store) Earnings(ctx context.Context, author string) (types.Money, error) {
	return s.getBalance(ctx, string(balance.KindEarnings), author)
}

func (s *Store) AddEarnings(ctx context.Context, author string, delta types.Money) error {
	return s.addBalance(ctx, string(balance.KindEarnings), author, delta)
}

func (s *Store) Reserve(ctx context.Context) (types.Money, error) {
	return s.getBalance(ctx, "reserve", "")
}

func (s *Store) AddReserve(ctx context.Context, delta types.Money) error {
	return s.addBalance(ctx, "reserve", "", delta)
}

func (s *Store) Balances(ctx context.Context) (*balance.Snapshot, error) {
	var models []balanceModel
	if err := s.mdb.NewFind(&models).Filter(bson.M{}).Scan(ctx); err != nil {
		return nil, fmt.Errorf("paywall/mongo: balances: %w", err)
	}

	snap := &balance.Snapshot{
		Earnings: make(map[string]types.Money),
	}
	for i := range models {
		m := &models[i]
		switch m.Kind {
		case string(balance.KindPlatformFees):
			snap.PlatformFees = fromBalanceModel(m)
		case "reserve":
			snap.Reserve = fromBalanceModel(m)
		case string(balance.KindEarnings):
			snap.Earnings[m.Owner] = fromBalanceModel(m)
		}
	}
	return snap, nil
}

func (s *Store) getBalance(ctx context.Context, kind, owner string) (types.Money, error) {
	var m balanceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": balanceDocID(kind, owner)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return types.Money{}, nil
		}
		return types.Money{}, fmt.Errorf("paywall/mongo: get balance: %w", err)
	}
	return fromBalanceModel(&m), nil
}

// addBalance applies a signed delta with an atomic $inc upsert.
func (s *Store) addBalance(ctx context.Context, kind, owner string, delta types.Money) error {
	_, err := s.mdb.NewUpdate((*balanceModel)(nil)).
		Filter(bson.M{"_id": balanceDocID(kind, owner)}).
		SetUpdate(bson.M{
			"$inc": bson.M{"amount_cents": delta.Amount},
			"$set": bson.M{
				"updated_at": now(),
				"currency":   delta.Currency,
			},
			"$setOnInsert": bson.M{
				"kind":  kind,
				"owner": owner,
			},
		}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paywall/mongo: add balance: %w", err)
	}
	return nil
}

// ==================== Withdrawal Store ====================

func (s *Store) RecordWithdrawal(ctx context.Context, w *balance.Withdrawal) error {
	m := toWithdrawalModel(w)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("paywall/mongo: record withdrawal: %w", err)
	}
	return nil
}

func (s *Store) ListWithdrawals(ctx context.Context, opts balance.ListOpts) ([]*balance.Withdrawal, error) {
	var models []withdrawalModel

	filter := bson.M{}
	if opts.Kind != "" {
		filter["kind"] = string(opts.Kind)
	}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	if opts.Recipient != "" {
		filter["recipient"] = opts.Recipient
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("paywall/mongo: list withdrawals: %w", err)
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all paywall collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colArticles: {
			{Keys: bson.D{{Key: "author", Value: 1}}},
		},
		colPayments: {
			{Keys: bson.D{{Key: "article_id", Value: 1}, {Key: "payer", Value: 1}, {Key: "state", Value: 1}}},
			{Keys: bson.D{{Key: "article_id", Value: 1}, {Key: "payer", Value: 1}, {Key: "paid_at", Value: -1}}},
		},
		colBalances: {
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "owner", Value: 1}}},
		},
		colWithdrawals: {
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "recipient", Value: 1}}},
		},
		colCounters: {},
	}
}
