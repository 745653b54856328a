package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/paywall/article"
	"github.com/xraph/paywall/balance"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/payment"
	"github.com/xraph/paywall/types"
)

// ==================== Article models ====================

type articleModel struct {
	grove.BaseModel `grove:"table:paywall_articles"`

	ID          int64     `grove:"id,pk"        bson:"_id"`
	Author      string    `grove:"author"       bson:"author"`
	PriceCents  int64     `grove:"price_cents"  bson:"price_cents"`
	Currency    string    `grove:"currency"     bson:"currency"`
	ContentRef  string    `grove:"content_ref"  bson:"content_ref"`
	PublishedAt time.Time `grove:"published_at" bson:"published_at"`
	CreatedAt   time.Time `grove:"created_at"   bson:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"   bson:"updated_at"`
}

func toArticleModel(a *article.Article) *articleModel {
	return &articleModel{
		ID:          a.ID,
		Author:      a.Author,
		PriceCents:  a.Price.Amount,
		Currency:    a.Price.Currency,
		ContentRef:  a.ContentRef,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func fromArticleModel(m *articleModel) *article.Article {
	return &article.Article{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          m.ID,
		Author:      m.Author,
		Price:       types.New(m.PriceCents, m.Currency),
		ContentRef:  m.ContentRef,
		PublishedAt: m.PublishedAt,
	}
}

// ==================== Payment models ====================

type paymentModel struct {
	grove.BaseModel `grove:"table:paywall_payments"`

	ID                string     `grove:"id,pk"               bson:"_id"`
	ArticleID         int64      `grove:"article_id"          bson:"article_id"`
	Payer             string     `grove:"payer"               bson:"payer"`
	Author            string     `grove:"author"              bson:"author"`
	AmountCents       int64      `grove:"amount_cents"        bson:"amount_cents"`
	Currency          string     `grove:"currency"            bson:"currency"`
	PlatformFeeCents  int64      `grove:"platform_fee_cents"  bson:"platform_fee_cents"`
	AuthorAmountCents int64      `grove:"author_amount_cents" bson:"author_amount_cents"`
	FeeRate           uint32     `grove:"fee_rate"            bson:"fee_rate"`
	State             string     `grove:"state"               bson:"state"`
	PaidAt            time.Time  `grove:"paid_at"             bson:"paid_at"`
	RefundedAt        *time.Time `grove:"refunded_at"         bson:"refunded_at,omitempty"`
	CreatedAt         time.Time  `grove:"created_at"          bson:"created_at"`
	UpdatedAt         time.Time  `grove:"updated_at"          bson:"updated_at"`
}

func toPaymentModel(r *payment.Record) *paymentModel {
	return &paymentModel{
		ID:                r.ID.String(),
		ArticleID:         r.ArticleID,
		Payer:             r.Payer,
		Author:            r.Author,
		AmountCents:       r.Amount.Amount,
		Currency:          r.Amount.Currency,
		PlatformFeeCents:  r.PlatformFee.Amount,
		AuthorAmountCents: r.AuthorAmount.Amount,
		FeeRate:           r.FeeRate,
		State:             string(r.State),
		PaidAt:            r.PaidAt,
		RefundedAt:        r.RefundedAt,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func fromPaymentModel(m *paymentModel) (*payment.Record, error) {
	paymentID, err := id.ParsePaymentID(m.ID)
	if err != nil {
		return nil, err
	}

	return &payment.Record{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:           paymentID,
		ArticleID:    m.ArticleID,
		Payer:        m.Payer,
		Author:       m.Author,
		Amount:       types.New(m.AmountCents, m.Currency),
		PlatformFee:  types.New(m.PlatformFeeCents, m.Currency),
		AuthorAmount: types.New(m.AuthorAmountCents, m.Currency),
		FeeRate:      m.FeeRate,
		State:        payment.State(m.State),
		PaidAt:       m.PaidAt,
		RefundedAt:   m.RefundedAt,
	}, nil
}

// ==================== Balance models ====================

// balanceModel documents are keyed by "kind:owner" so $inc upserts address
// one account atomically.
type balanceModel struct {
	grove.BaseModel `grove:"table:paywall_balances"`

	ID          string    `grove:"id,pk"        bson:"_id"`
	Kind        string    `grove:"kind"         bson:"kind"`
	Owner       string    `grove:"owner"        bson:"owner"`
	AmountCents int64     `grove:"amount_cents" bson:"amount_cents"`
	Currency    string    `grove:"currency"     bson:"currency"`
	UpdatedAt   time.Time `grove:"updated_at"   bson:"updated_at"`
}

func balanceDocID(kind, owner string) string {
	return kind + ":" + owner
}

func fromBalanceModel(m *balanceModel) types.Money {
	return types.New(m.AmountCents, m.Currency)
}

// ==================== Withdrawal models ====================

type withdrawalModel struct {
	grove.BaseModel `grove:"table:paywall_withdrawals"`

	ID          string    `grove:"id,pk"        bson:"_id"`
	Kind        string    `grove:"kind"         bson:"kind"`
	Recipient   string    `grove:"recipient"    bson:"recipient"`
	AmountCents int64     `grove:"amount_cents" bson:"amount_cents"`
	Currency    string    `grove:"currency"     bson:"currency"`
	Status      string    `grove:"status"       bson:"status"`
	FailReason  string    `grove:"fail_reason"  bson:"fail_reason"`
	CreatedAt   time.Time `grove:"created_at"   bson:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"   bson:"updated_at"`
}

func toWithdrawalModel(w *balance.Withdrawal) *withdrawalModel {
	return &withdrawalModel{
		ID:          w.ID.String(),
		Kind:        string(w.Kind),
		Recipient:   w.Recipient,
		AmountCents: w.Amount.Amount,
		Currency:    w.Amount.Currency,
		Status:      string(w.Status),
		FailReason:  w.FailReason,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func fromWithdrawalModel(m *withdrawalModel) (*balance.Withdrawal, error) {
	withdrawalID, err := id.ParseWithdrawalID(m.ID)
	if err != nil {
		return nil, err
	}

	return &balance.Withdrawal{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         withdrawalID,
		Kind:       balance.Kind(m.Kind),
		Recipient:  m.Recipient,
		Amount:     types.New(m.AmountCents, m.Currency),
		Status:     balance.Status(m.Status),
		FailReason: m.FailReason,
	}, nil
}

// ==================== Counter models ====================

// counterModel backs sequential article id assignment.
type counterModel struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}
