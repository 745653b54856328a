// Package payment defines paid-access records and their state machine.
package payment

import (
	"time"

	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/types"
)

// State is the lifecycle state of a payment record. There is no stored
// "unpaid" state: absence of a record is what unpaid means. Refunded is
// terminal.
type State string

const (
	StatePaid     State = "paid"
	StateRefunded State = "refunded"
)

// Record is one payment by one identity for one article. Repeated payment
// for the same article creates a second independent record; access is
// granted by any record still in StatePaid.
//
// The fee rate in force at payment time and the resulting split are stored
// on the record so a refund reverses exactly what was credited, regardless
// of later rate changes.
type Record struct {
	types.Entity
	ID           id.PaymentID `json:"id"`
	ArticleID    int64        `json:"article_id"`
	Payer        string       `json:"payer"`
	Author       string       `json:"author"`
	Amount       types.Money  `json:"amount"` // gross amount sent, >= article price
	PlatformFee  types.Money  `json:"platform_fee"`
	AuthorAmount types.Money  `json:"author_amount"`
	FeeRate      uint32       `json:"fee_rate"` // parts-per-thousand at payment time
	State        State        `json:"state"`
	PaidAt       time.Time    `json:"paid_at"`
	RefundedAt   *time.Time   `json:"refunded_at,omitempty"`
}

// Refundable reports whether the record can still be refunded at the given
// instant. A refund exactly at the window boundary is allowed; strictly
// after it is not.
func (r *Record) Refundable(now time.Time, window time.Duration) bool {
	return r.State == StatePaid && !now.After(r.PaidAt.Add(window))
}

// ListOpts filters payment listings.
type ListOpts struct {
	State  State
	Limit  int
	Offset int
}
