package wallet

import (
	"sync"

	"github.com/shopspring/decimal"
)

// MockWallet returns controllable balances and records transfers.
type MockWallet struct {
	mu          sync.Mutex
	Balances    map[string]decimal.Decimal // account -> balance
	BalanceErr  error
	TransferErr error
	Transfers   []MockTransfer
}

type MockTransfer struct {
	To     string
	Amount decimal.Decimal
	Symbol string
	Memo   string
}

func NewMockWallet() *MockWallet {
	return &MockWallet{Balances: make(map[string]decimal.Decimal)}
}

func (m *MockWallet) Balance(account, _ string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BalanceErr != nil {
		return decimal.Zero, m.BalanceErr
	}
	return m.Balances[account], nil
}

func (m *MockWallet) Transfer(to string, amount decimal.Decimal, symbol, memo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TransferErr != nil {
		return m.TransferErr
	}
	m.Transfers = append(m.Transfers, MockTransfer{To: to, Amount: amount, Symbol: symbol, Memo: memo})
	return nil
}

// Sent returns a copy of recorded transfers.
func (m *MockWallet) Sent() []MockTransfer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockTransfer, len(m.Transfers))
	copy(out, m.Transfers)
	return out
}
