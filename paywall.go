package paywall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/xraph/paywall/article"
	"github.com/xraph/paywall/balance"
	"github.com/xraph/paywall/feeauthority"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/payment"
	"github.com/xraph/paywall/payout"
	"github.com/xraph/paywall/plugin"
	"github.com/xraph/paywall/store"
	"github.com/xraph/paywall/types"
)

// Paywall is the content-paywall ledger engine.
//
// One engine instance holds one currency, one fee authority and one store.
// Mutating operations (publish, pay, refund, withdraw) serialize on an
// internal mutex so balance transitions never interleave; reads go straight
// to the store.
type Paywall struct {
	store     store.Store
	authority *feeauthority.Authority
	plugins   *plugin.Registry
	logger    *slog.Logger

	// mu serializes mutating operations. Payout sinks are called while it
	// is held, so sinks must not call back into mutating engine methods.
	mu sync.Mutex

	// Configuration
	currency     string
	refundWindow time.Duration
	feeSink      payout.Sink
	earningsSink payout.Sink
	refundSink   payout.Sink // nil means refunds only reverse balances

	now func() time.Time
}

// New creates a new Paywall engine backed by the given store and governed by
// the given fee authority.
func New(s store.Store, authority *feeauthority.Authority, opts ...Option) *Paywall {
	p := &Paywall{
		store:        s,
		authority:    authority,
		plugins:      plugin.NewRegistry(),
		logger:       slog.Default(),
		currency:     "usd",
		refundWindow: 24 * time.Hour,
		feeSink:      payout.Discard,
		earningsSink: payout.Discard,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Option configures a Paywall instance.
type Option func(*Paywall)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Paywall) {
		p.logger = logger
		p.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(pl plugin.Plugin) Option {
	return func(p *Paywall) {
		_ = p.plugins.Register(pl) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithCurrency sets the engine currency. Every price, payment and balance
// carries this currency.
func WithCurrency(currency string) Option {
	return func(p *Paywall) {
		p.currency = strings.ToLower(currency)
	}
}

// WithRefundWindow sets how long after payment a refund is accepted.
func WithRefundWindow(window time.Duration) Option {
	return func(p *Paywall) {
		p.refundWindow = window
	}
}

// WithFeeSink sets the payout sink for platform fee withdrawals.
func WithFeeSink(s payout.Sink) Option {
	return func(p *Paywall) {
		p.feeSink = s
	}
}

// WithEarningsSink sets the payout sink for author earnings withdrawals.
func WithEarningsSink(s payout.Sink) Option {
	return func(p *Paywall) {
		p.earningsSink = s
	}
}

// WithRefundPayout makes refunds push the gross amount back to the payer
// through the given sink, under the same failure discipline as withdrawals.
// Without it a refund only reverses the ledger balances.
func WithRefundPayout(s payout.Sink) Option {
	return func(p *Paywall) {
		p.refundSink = s
	}
}

// Start migrates the store and initializes plugins.
func (p *Paywall) Start(ctx context.Context) error {
	if err := p.store.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}

	p.plugins.EmitInit(ctx, p)

	p.logger.Info("paywall started",
		"currency", p.currency,
		"refund_window", p.refundWindow,
		"fee_rate", p.authority.FeeRate(),
	)

	return nil
}

// Stop shuts down the engine.
func (p *Paywall) Stop() error {
	ctx := context.Background()
	p.plugins.EmitShutdown(ctx)

	return p.store.Close()
}

// Authority returns the fee authority governing this engine.
func (p *Paywall) Authority() *feeauthority.Authority {
	return p.authority
}

// ──────────────────────────────────────────────────
// Publishing
// ──────────────────────────────────────────────────

// Publish registers a new article and returns it with its assigned id.
// A zero price publishes a free article.
func (p *Paywall) Publish(ctx context.Context, author string, price types.Money, contentRef string) (*article.Article, error) {
	if author == "" {
		return nil, fmt.Errorf("%w: author is required", ErrInvalidParameter)
	}
	if contentRef == "" {
		return nil, fmt.Errorf("%w: content ref is required", ErrInvalidParameter)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidParameter)
	}
	if price.Currency != p.currency {
		return nil, fmt.Errorf("%w: price currency %q, engine currency %q", ErrInvalidParameter, price.Currency, p.currency)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	a := &article.Article{
		Entity:      types.NewEntity(),
		Author:      author,
		Price:       price,
		ContentRef:  contentRef,
		PublishedAt: p.now(),
	}

	if err := p.store.CreateArticle(ctx, a); err != nil {
		return nil, err
	}

	p.plugins.EmitArticlePublished(ctx, a)

	p.logger.Info("article published",
		"article_id", a.ID,
		"author", author,
		"price", price.String(),
	)

	return a, nil
}

// GetArticle retrieves an article by id.
func (p *Paywall) GetArticle(ctx context.Context, articleID int64) (*article.Article, error) {
	return p.store.GetArticle(ctx, articleID)
}

// ListArticles lists articles, optionally filtered by author.
func (p *Paywall) ListArticles(ctx context.Context, opts article.ListOpts) ([]*article.Article, error) {
	return p.store.ListArticles(ctx, opts)
}

// ──────────────────────────────────────────────────
// Payment
// ──────────────────────────────────────────────────

// Pay records a payment by payer for an article. The amount must cover the
// article price; the whole amount is split between platform fees and author
// earnings at the fee rate in force right now, and the split is baked into
// the returned record. Paying again for the same article creates a second
// independent record.
func (p *Paywall) Pay(ctx context.Context, payer string, articleID int64, amount types.Money) (*payment.Record, error) {
	if payer == "" {
		return nil, fmt.Errorf("%w: payer is required", ErrInvalidParameter)
	}
	if amount.Currency != p.currency {
		return nil, fmt.Errorf("%w: amount currency %q, engine currency %q", ErrInvalidParameter, amount.Currency, p.currency)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	a, err := p.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if a.Free() {
		return nil, ErrArticleFree
	}
	if amount.LessThan(a.Price) {
		return nil, ErrInsufficientFunds
	}

	rate := p.authority.FeeRate()
	fee, authorAmount := amount.SplitFee(rate)

	rec := &payment.Record{
		Entity:       types.NewEntity(),
		ID:           id.NewPaymentID(),
		ArticleID:    a.ID,
		Payer:        payer,
		Author:       a.Author,
		Amount:       amount,
		PlatformFee:  fee,
		AuthorAmount: authorAmount,
		FeeRate:      rate,
		State:        payment.StatePaid,
		PaidAt:       p.now(),
	}

	if err := p.store.CreatePayment(ctx, rec); err != nil {
		return nil, err
	}
	if err := p.store.AddPlatformFees(ctx, fee); err != nil {
		return nil, err
	}
	if err := p.store.AddEarnings(ctx, a.Author, authorAmount); err != nil {
		return nil, err
	}
	if err := p.store.AddReserve(ctx, amount); err != nil {
		return nil, err
	}

	p.plugins.EmitPaymentRecorded(ctx, rec)

	p.logger.Info("payment recorded",
		"payment_id", rec.ID.String(),
		"article_id", a.ID,
		"payer", payer,
		"amount", amount.String(),
		"platform_fee", fee.String(),
		"author_amount", authorAmount.String(),
		"fee_rate", rate,
	)

	return rec, nil
}

// Refund reverses the payer's most recent active payment for an article.
// The exact split stored on the record is reversed, regardless of the fee
// rate in force now. Refunds are accepted up to and including the window
// boundary, and rejected strictly after it.
func (p *Paywall) Refund(ctx context.Context, payer string, articleID int64) (*payment.Record, error) {
	if payer == "" {
		return nil, fmt.Errorf("%w: payer is required", ErrInvalidParameter)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	rec, err := p.store.LatestPaidPayment(ctx, articleID, payer)
	if err != nil {
		return nil, err
	}

	now := p.now()
	if !rec.Refundable(now, p.refundWindow) {
		return nil, ErrWindowExpired
	}

	// Reverse balances before any external transfer.
	if err := p.store.AddPlatformFees(ctx, rec.PlatformFee.Negate()); err != nil {
		return nil, err
	}
	if err := p.store.AddEarnings(ctx, rec.Author, rec.AuthorAmount.Negate()); err != nil {
		return nil, err
	}
	if err := p.store.AddReserve(ctx, rec.Amount.Negate()); err != nil {
		return nil, err
	}

	if p.refundSink != nil {
		if perr := p.refundSink.Payout(ctx, payer, rec.Amount); perr != nil {
			p.restoreBalances(ctx, rec)
			p.plugins.EmitPayoutFailed(ctx, balance.KindRefund, payer, perr)

			p.logger.Error("refund payout failed",
				"payment_id", rec.ID.String(),
				"payer", payer,
				"amount", rec.Amount.String(),
				"error", perr,
			)

			return nil, fmt.Errorf("%w: %v", ErrPayoutFailed, perr)
		}
	}

	if err := p.store.MarkPaymentRefunded(ctx, rec.ID, now); err != nil {
		return nil, err
	}
	rec.State = payment.StateRefunded
	rec.RefundedAt = &now

	p.plugins.EmitPaymentRefunded(ctx, rec)

	p.logger.Info("payment refunded",
		"payment_id", rec.ID.String(),
		"article_id", articleID,
		"payer", payer,
		"amount", rec.Amount.String(),
	)

	return rec, nil
}

func (p *Paywall) restoreBalances(ctx context.Context, rec *payment.Record) {
	if err := p.store.AddPlatformFees(ctx, rec.PlatformFee); err != nil {
		p.logger.Error("balance restore failed",
			"account", "platform_fees",
			"payment_id", rec.ID.String(),
			"error", err,
		)
	}
	if err := p.store.AddEarnings(ctx, rec.Author, rec.AuthorAmount); err != nil {
		p.logger.Error("balance restore failed",
			"account", "earnings",
			"payment_id", rec.ID.String(),
			"error", err,
		)
	}
	if err := p.store.AddReserve(ctx, rec.Amount); err != nil {
		p.logger.Error("balance restore failed",
			"account", "reserve",
			"payment_id", rec.ID.String(),
			"error", err,
		)
	}
}

// GetPayment retrieves a payment record by id.
func (p *Paywall) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Record, error) {
	return p.store.GetPayment(ctx, paymentID)
}

// ListPayments lists payment records. Zero articleID and empty payer match
// everything.
func (p *Paywall) ListPayments(ctx context.Context, articleID int64, payer string, opts payment.ListOpts) ([]*payment.Record, error) {
	return p.store.ListPayments(ctx, articleID, payer, opts)
}

// ──────────────────────────────────────────────────
// Access
// ──────────────────────────────────────────────────

// CanAccess reports whether identity may read the article's content. Free
// articles are readable by anyone; paid articles only by identities with an
// active (non-refunded) payment. Authors get no shortcut for their own
// paid articles.
func (p *Paywall) CanAccess(ctx context.Context, articleID int64, identity string) (bool, error) {
	a, err := p.store.GetArticle(ctx, articleID)
	if err != nil {
		return false, err
	}
	return p.hasAccess(ctx, a, identity)
}

func (p *Paywall) hasAccess(ctx context.Context, a *article.Article, identity string) (bool, error) {
	if a.Free() {
		return true, nil
	}
	return p.store.HasPaid(ctx, a.ID, identity)
}

// GetContent returns the article's content reference if identity has access.
func (p *Paywall) GetContent(ctx context.Context, articleID int64, identity string) (string, error) {
	a, err := p.store.GetArticle(ctx, articleID)
	if err != nil {
		return "", err
	}

	ok, err := p.hasAccess(ctx, a, identity)
	if err != nil {
		return "", err
	}
	if !ok {
		p.plugins.EmitAccessDenied(ctx, articleID, identity)
		return "", ErrPaymentRequired
	}

	return a.ContentRef, nil
}

// GetDetails returns the public view of an article. It never fails for lack
// of access; the HasAccess flag tells the caller whether GetContent would
// succeed.
func (p *Paywall) GetDetails(ctx context.Context, articleID int64, identity string) (*article.Details, error) {
	a, err := p.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	ok, err := p.hasAccess(ctx, a, identity)
	if err != nil {
		return nil, err
	}

	return &article.Details{
		ID:          a.ID,
		Author:      a.Author,
		Price:       a.Price,
		Free:        a.Free(),
		PublishedAt: a.PublishedAt,
		HasAccess:   ok,
	}, nil
}

// ──────────────────────────────────────────────────
// Withdrawals
// ──────────────────────────────────────────────────

// WithdrawPlatformFees pays the accumulated platform fees out to the fee
// authority owner. Only the current owner may call it. The balance is
// debited to zero before the sink is invoked; if the sink fails, the
// balance is restored, a failed receipt is recorded, and ErrPayoutFailed
// is returned.
func (p *Paywall) WithdrawPlatformFees(ctx context.Context, caller string) (*balance.Withdrawal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if caller != p.authority.Owner() {
		return nil, ErrUnauthorized
	}

	bal, err := p.store.PlatformFees(ctx)
	if err != nil {
		return nil, err
	}

	return p.withdraw(ctx, balance.KindPlatformFees, caller, bal,
		p.feeSink, p.store.AddPlatformFees)
}

// WithdrawEarnings pays an author's accumulated earnings out to the author.
// Authors may only withdraw their own earnings.
func (p *Paywall) WithdrawEarnings(ctx context.Context, caller, author string) (*balance.Withdrawal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if caller != author {
		return nil, ErrUnauthorized
	}

	bal, err := p.store.Earnings(ctx, author)
	if err != nil {
		return nil, err
	}

	return p.withdraw(ctx, balance.KindEarnings, author, bal,
		p.earningsSink, func(ctx context.Context, delta types.Money) error {
			return p.store.AddEarnings(ctx, author, delta)
		})
}

// withdraw runs the shared withdrawal discipline: check balance and
// reserve, debit to zero, record the attempt, then pay out. Callers hold
// the engine mutex.
func (p *Paywall) withdraw(
	ctx context.Context,
	kind balance.Kind,
	recipient string,
	bal types.Money,
	sink payout.Sink,
	add func(context.Context, types.Money) error,
) (*balance.Withdrawal, error) {
	if bal.IsZero() {
		return nil, ErrNothingToWithdraw
	}

	reserve, err := p.store.Reserve(ctx)
	if err != nil {
		return nil, err
	}
	if reserve.Currency == "" {
		reserve = types.Zero(bal.Currency)
	}
	if reserve.LessThan(bal) {
		return nil, ErrInsufficientReserve
	}

	// Debit to zero before touching the sink.
	if err := add(ctx, bal.Negate()); err != nil {
		return nil, err
	}
	if err := p.store.AddReserve(ctx, bal.Negate()); err != nil {
		return nil, err
	}

	w := &balance.Withdrawal{
		Entity:    types.NewEntity(),
		ID:        id.NewWithdrawalID(),
		Kind:      kind,
		Recipient: recipient,
		Amount:    bal,
		Status:    balance.StatusCompleted,
	}

	if perr := sink.Payout(ctx, recipient, bal); perr != nil {
		if err := add(ctx, bal); err != nil {
			p.logger.Error("balance restore failed",
				"withdrawal_id", w.ID.String(),
				"kind", kind,
				"error", err,
			)
		}
		if err := p.store.AddReserve(ctx, bal); err != nil {
			p.logger.Error("balance restore failed",
				"withdrawal_id", w.ID.String(),
				"account", "reserve",
				"error", err,
			)
		}

		w.Status = balance.StatusFailed
		w.FailReason = perr.Error()
		if err := p.store.RecordWithdrawal(ctx, w); err != nil {
			p.logger.Error("failed to record withdrawal receipt",
				"withdrawal_id", w.ID.String(),
				"error", err,
			)
		}

		p.plugins.EmitPayoutFailed(ctx, kind, recipient, perr)

		p.logger.Error("withdrawal payout failed",
			"withdrawal_id", w.ID.String(),
			"kind", kind,
			"recipient", recipient,
			"amount", bal.String(),
			"error", perr,
		)

		return nil, fmt.Errorf("%w: %v", ErrPayoutFailed, perr)
	}

	if err := p.store.RecordWithdrawal(ctx, w); err != nil {
		return nil, err
	}

	switch kind {
	case balance.KindPlatformFees:
		p.plugins.EmitFeesWithdrawn(ctx, w)
	case balance.KindEarnings:
		p.plugins.EmitEarningsWithdrawn(ctx, w)
	}

	p.logger.Info("withdrawal completed",
		"withdrawal_id", w.ID.String(),
		"kind", kind,
		"recipient", recipient,
		"amount", bal.String(),
	)

	return w, nil
}

// ListWithdrawals lists withdrawal receipts.
func (p *Paywall) ListWithdrawals(ctx context.Context, opts balance.ListOpts) ([]*balance.Withdrawal, error) {
	return p.store.ListWithdrawals(ctx, opts)
}

// Balances returns a snapshot of all held balances.
func (p *Paywall) Balances(ctx context.Context) (*balance.Snapshot, error) {
	return p.store.Balances(ctx)
}

// ──────────────────────────────────────────────────
// Fee authority passthroughs
// ──────────────────────────────────────────────────

// SetFeeRate changes the platform fee rate through the authority and
// notifies plugins. Already recorded splits are unaffected.
func (p *Paywall) SetFeeRate(ctx context.Context, caller string, rate uint32) error {
	old := p.authority.FeeRate()
	if err := p.authority.SetFeeRate(caller, rate); err != nil {
		return mapAuthorityErr(err)
	}

	p.plugins.EmitFeeRateChanged(ctx, old, rate)
	return nil
}

// TransferOwnership transfers the fee authority to a new owner.
func (p *Paywall) TransferOwnership(caller, newOwner string) error {
	return mapAuthorityErr(p.authority.TransferOwnership(caller, newOwner))
}

// mapAuthorityErr folds feeauthority sentinels into the engine taxonomy so
// callers can match with errors.Is against the root sentinels.
func mapAuthorityErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, feeauthority.ErrNotOwner):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case errors.Is(err, feeauthority.ErrInvalidRate),
		errors.Is(err, feeauthority.ErrInvalidOwner):
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	default:
		return err
	}
}
