package policy

import (
	"errors"
	"testing"

	"TipSentinel/internal/model"
	"TipSentinel/internal/wallet"

	"github.com/shopspring/decimal"
)

func testLadder() model.TierLadder {
	return model.TierLadder{
		{Level: 1, MinBalance: decimal.NewFromInt(10), MaxDailyGifts: 3, MaxUniqueGifts: 1},
		{Level: 2, MinBalance: decimal.NewFromInt(100), MaxDailyGifts: 10, MaxUniqueGifts: 3},
	}
}

func TestResolve_LadderBoundaries(t *testing.T) {
	w := wallet.NewMockWallet()
	r := NewTierResolver(w, "BBH", testLadder())

	tests := []struct {
		balance string
		level   int
	}{
		{"0", 0},
		{"9.999", 0},
		{"10", 1},
		{"50", 1},
		{"99.999", 1},
		{"100", 2},
		{"100000", 2},
	}
	for _, tt := range tests {
		w.Balances["alice"] = decimal.RequireFromString(tt.balance)
		if got := r.Resolve("alice"); got != tt.level {
			t.Errorf("balance %s: expected level %d, got %d", tt.balance, tt.level, got)
		}
	}
}

func TestResolve_Monotonic(t *testing.T) {
	w := wallet.NewMockWallet()
	r := NewTierResolver(w, "BBH", testLadder())

	prev := -1
	for _, balance := range []int64{0, 5, 10, 50, 100, 500} {
		w.Balances["alice"] = decimal.NewFromInt(balance)
		level := r.Resolve("alice")
		if level < prev {
			t.Fatalf("tier decreased as balance grew: balance %d gave level %d after %d", balance, level, prev)
		}
		prev = level
	}
}

func TestResolve_LookupFailureDegradesToZero(t *testing.T) {
	w := wallet.NewMockWallet()
	w.Balances["alice"] = decimal.NewFromInt(1000)
	w.BalanceErr = errors.New("node down")
	r := NewTierResolver(w, "BBH", testLadder())

	if got := r.Resolve("alice"); got != 0 {
		t.Errorf("expected level 0 on lookup failure, got %d", got)
	}
}
