package payment

import (
	"testing"
	"time"

	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/types"
)

func TestRefundable(t *testing.T) {
	paidAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	tests := []struct {
		name  string
		state State
		now   time.Time
		want  bool
	}{
		{"immediately after payment", StatePaid, paidAt, true},
		{"inside window", StatePaid, paidAt.Add(12 * time.Hour), true},
		{"exactly at boundary", StatePaid, paidAt.Add(window), true},
		{"one nanosecond past boundary", StatePaid, paidAt.Add(window + time.Nanosecond), false},
		{"well past boundary", StatePaid, paidAt.Add(48 * time.Hour), false},
		{"already refunded", StateRefunded, paidAt.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Record{
				ID:     id.NewPaymentID(),
				Amount: types.USD(500),
				State:  tt.state,
				PaidAt: paidAt,
			}
			if got := r.Refundable(tt.now, window); got != tt.want {
				t.Errorf("Refundable at %v: got %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
