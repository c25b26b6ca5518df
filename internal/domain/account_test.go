package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestWalletType_Valid(t *testing.T) {
	tests := []struct {
		in   WalletType
		want bool
	}{
		{WalletTypeMoney, true},
		{WalletTypePoints, true},
		{WalletTypeCommission, true},
		{WalletType("CASH"), false},
		{WalletType(""), false},
	}

	for _, tt := range tests {
		if got := tt.in.Valid(); got != tt.want {
			t.Errorf("WalletType(%q).Valid() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAccount_ApplyDelta(t *testing.T) {
	acc := &Account{Balance: decimal.NewFromInt(100)}

	if got := acc.ApplyDelta(decimal.NewFromInt(-150)); !got.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("expected -50, got %s", got)
	}

	if !acc.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("ApplyDelta must not mutate the account, got %s", acc.Balance)
	}
}

func TestAccount_Label(t *testing.T) {
	user := &Account{WalletType: WalletTypeMoney}
	if user.Label() != "MONEY" {
		t.Errorf("expected MONEY, got %s", user.Label())
	}

	pool := &Account{WalletType: WalletTypeCommission, Purpose: PurposeCommissionPool}
	if pool.Label() != "COMMISSION:commission_pool" {
		t.Errorf("unexpected label %s", pool.Label())
	}
}
