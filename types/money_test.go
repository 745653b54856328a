package types

import (
	"encoding/json"
	"testing"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   int64
		currency string
		display  string
	}{
		{"USD", USD(4900), 4900, "usd", "$49.00"},
		{"EUR", EUR(19900), 19900, "eur", "€199.00"},
		{"GBP", GBP(9900), 9900, "gbp", "£99.00"},
		{"New", New(250, "CHF"), 250, "chf", "CHF 2.50"},
		{"Zero USD", Zero("USD"), 0, "usd", "$0.00"},
		{"Zero EUR", Zero("EUR"), 0, "eur", "€0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Amount != tt.amount {
				t.Errorf("Amount: got %d, want %d", tt.money.Amount, tt.amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("Currency: got %s, want %s", tt.money.Currency, tt.currency)
			}
			if tt.money.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return USD(100).Add(USD(200)) }, USD(300)},
		{"Subtract", func() Money { return USD(500).Subtract(USD(200)) }, USD(300)},
		{"Negate", func() Money { return USD(100).Negate() }, USD(-100)},
		{"Complex", func() Money {
			return USD(1000).Add(USD(500)).Subtract(USD(700))
		}, USD(800)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMoneySplitFee(t *testing.T) {
	tests := []struct {
		name      string
		gross     Money
		rate      uint32
		fee       Money
		remainder Money
	}{
		{"ten percent", USD(1000), 100, USD(100), USD(900)},
		{"zero rate", USD(1000), 0, USD(0), USD(1000)},
		{"full rate", USD(1000), 1000, USD(1000), USD(0)},
		{"floor rounding", USD(999), 100, USD(99), USD(900)},
		{"single cent", USD(1), 500, USD(0), USD(1)},
		{"odd rate", USD(12345), 25, USD(308), USD(12037)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, remainder := tt.gross.SplitFee(tt.rate)
			if !fee.Equal(tt.fee) {
				t.Errorf("fee: got %v, want %v", fee, tt.fee)
			}
			if !remainder.Equal(tt.remainder) {
				t.Errorf("remainder: got %v, want %v", remainder, tt.remainder)
			}
			if !fee.Add(remainder).Equal(tt.gross) {
				t.Errorf("split does not reconstruct gross: %v + %v != %v", fee, remainder, tt.gross)
			}
		})
	}
}

func TestMoneySplitFeeInvalidRate(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for rate above ceiling")
		}
	}()

	// This should panic
	_, _ = USD(100).SplitFee(1001)
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for currency mismatch")
		}
	}()

	// This should panic
	_ = USD(100).Add(EUR(100))
}

func TestMoneyComparison(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Money
		less    bool
		greater bool
		equal   bool
	}{
		{"Equal", USD(100), USD(100), false, false, true},
		{"Less", USD(50), USD(100), true, false, false},
		{"Greater", USD(200), USD(100), false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.GreaterThan(tt.b); got != tt.greater {
				t.Errorf("GreaterThan: got %v, want %v", got, tt.greater)
			}
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal: got %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestMoneyPredicates(t *testing.T) {
	if !Zero("usd").IsZero() {
		t.Error("Zero should be zero")
	}
	if !USD(1).IsPositive() {
		t.Error("USD(1) should be positive")
	}
	if !USD(-1).IsNegative() {
		t.Error("USD(-1) should be negative")
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(USD(4900))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.Amount != 4900 || decoded.Currency != "usd" || decoded.Display != "$49.00" {
		t.Errorf("unexpected JSON payload: %+v", decoded)
	}
}

func TestSum(t *testing.T) {
	total := Sum(USD(100), USD(200), USD(300))
	if !total.Equal(USD(600)) {
		t.Errorf("Sum: got %v, want %v", total, USD(600))
	}

	if !Sum().IsZero() {
		t.Error("empty Sum should be zero")
	}
}
