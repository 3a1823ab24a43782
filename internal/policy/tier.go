package policy

import (
	"log"

	"TipSentinel/internal/model"
	"TipSentinel/internal/wallet"

	"github.com/shopspring/decimal"
)

// TierResolver maps an account's token balance to an access level.
type TierResolver struct {
	Wallet wallet.Wallet
	Symbol string
	Ladder model.TierLadder
}

func NewTierResolver(w wallet.Wallet, symbol string, ladder model.TierLadder) *TierResolver {
	return &TierResolver{Wallet: w, Symbol: symbol, Ladder: ladder}
}

// Resolve returns the highest level whose minimum balance the account
// meets, or 0 if none. A failed balance lookup degrades to a zero
// balance rather than failing the pipeline.
func (r *TierResolver) Resolve(account string) int {
	balance, err := r.Wallet.Balance(account, r.Symbol)
	if err != nil {
		log.Printf("[WARN] balance lookup for %s failed, treating as zero: %v", account, err)
		balance = decimal.Zero
	}
	return r.levelFor(balance)
}

func (r *TierResolver) levelFor(balance decimal.Decimal) int {
	for i := len(r.Ladder) - 1; i >= 0; i-- {
		if balance.GreaterThanOrEqual(r.Ladder[i].MinBalance) {
			return r.Ladder[i].Level
		}
	}
	return 0
}
