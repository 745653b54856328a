package feeauthority

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		owner   string
		rate    uint32
		wantErr error
	}{
		{"valid", "platform", 100, nil},
		{"zero rate", "platform", 0, nil},
		{"max rate", "platform", 1000, nil},
		{"rate above ceiling", "platform", 1001, ErrInvalidRate},
		{"empty owner", "", 100, ErrInvalidOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.owner, tt.rate)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New: got err %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if a.Owner() != tt.owner {
				t.Errorf("Owner: got %q, want %q", a.Owner(), tt.owner)
			}
			if a.FeeRate() != tt.rate {
				t.Errorf("FeeRate: got %d, want %d", a.FeeRate(), tt.rate)
			}
		})
	}
}

func TestSetFeeRate(t *testing.T) {
	a, err := New("platform", 100)
	if err != nil {
		t.Fatal(err)
	}

	if err := a.SetFeeRate("platform", 250); err != nil {
		t.Fatalf("owner SetFeeRate failed: %v", err)
	}
	if a.FeeRate() != 250 {
		t.Errorf("FeeRate: got %d, want 250", a.FeeRate())
	}

	// Non-owner callers must not change state.
	if err := a.SetFeeRate("mallory", 999); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("non-owner SetFeeRate: got %v, want ErrNotOwner", err)
	}
	if a.FeeRate() != 250 {
		t.Errorf("rate changed by unauthorized caller: %d", a.FeeRate())
	}

	if err := a.SetFeeRate("platform", 1001); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("out-of-range SetFeeRate: got %v, want ErrInvalidRate", err)
	}
	if a.FeeRate() != 250 {
		t.Errorf("rate changed by invalid update: %d", a.FeeRate())
	}
}

func TestTransferOwnership(t *testing.T) {
	a, err := New("alice", 100)
	if err != nil {
		t.Fatal(err)
	}

	if err := a.TransferOwnership("mallory", "mallory"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("non-owner transfer: got %v, want ErrNotOwner", err)
	}
	if err := a.TransferOwnership("alice", ""); !errors.Is(err, ErrInvalidOwner) {
		t.Fatalf("empty new owner: got %v, want ErrInvalidOwner", err)
	}
	if a.Owner() != "alice" {
		t.Errorf("ownership changed by failed transfer: %q", a.Owner())
	}

	if err := a.TransferOwnership("alice", "bob"); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if a.Owner() != "bob" {
		t.Errorf("Owner: got %q, want bob", a.Owner())
	}

	// The old owner no longer has authority.
	if err := a.SetFeeRate("alice", 500); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("old owner SetFeeRate: got %v, want ErrNotOwner", err)
	}
	if err := a.SetFeeRate("bob", 500); err != nil {
		t.Fatalf("new owner SetFeeRate failed: %v", err)
	}
}
