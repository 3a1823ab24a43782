package wallet

import "github.com/shopspring/decimal"

// Wallet exposes the token balance lookup and the gift transfer. Both
// are remote, fallible operations; callers decide how failures degrade
// (balance lookups fail soft to zero, transfer failures suppress the
// ledger write).
type Wallet interface {
	Balance(account, symbol string) (decimal.Decimal, error)
	Transfer(to string, amount decimal.Decimal, symbol, memo string) error
}
