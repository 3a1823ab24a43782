package wallet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// TokenClient implements Wallet against a sidechain token API for
// balance reads and the wallet signer RPC for transfers.
type TokenClient struct {
	APIURL    string
	SignerURL string
	Account   string
	Key       string
	HTTP      *http.Client
}

// NewTokenClient creates a wallet client for the given token API and signer.
func NewTokenClient(apiURL, signerURL, account, activeKey string) *TokenClient {
	return &TokenClient{
		APIURL:    apiURL,
		SignerURL: signerURL,
		Account:   account,
		Key:       activeKey,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Balance looks up an account's token balance. A missing balance row
// means the account never held the token, which reads as zero.
func (c *TokenClient) Balance(account, symbol string) (decimal.Decimal, error) {
	payload, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  "find",
		"params": map[string]any{
			"contract": "tokens",
			"table":    "balances",
			"query":    map[string]string{"account": account, "symbol": symbol},
			"limit":    1,
		},
		"id": 1,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("marshal balance query: %w", err)
	}
	resp, err := c.HTTP.Post(c.APIURL+"/contracts", "application/json", bytes.NewReader(payload))
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch balance: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return decimal.Zero, fmt.Errorf("fetch balance: status %d, body: %s", resp.StatusCode, string(body))
	}
	var envelope struct {
		Result []struct {
			Balance string `json:"balance"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return decimal.Zero, fmt.Errorf("decode balance: %w", err)
	}
	if len(envelope.Result) == 0 {
		return decimal.Zero, nil
	}
	balance, err := decimal.NewFromString(envelope.Result[0].Balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %q: %w", envelope.Result[0].Balance, err)
	}
	return balance, nil
}

// Transfer sends tokens from the bot account via the signer RPC.
func (c *TokenClient) Transfer(to string, amount decimal.Decimal, symbol, memo string) error {
	payload, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  "transfer_token",
		"params": map[string]any{
			"from":       c.Account,
			"to":         to,
			"amount":     amount.String(),
			"symbol":     symbol,
			"memo":       memo,
			"active_key": c.Key,
		},
		"id": 1,
	})
	if err != nil {
		return fmt.Errorf("marshal transfer: %w", err)
	}
	resp, err := c.HTTP.Post(c.SignerURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("transfer: status %d, body: %s", resp.StatusCode, string(body))
	}
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode transfer response: %w", err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("transfer rejected: %s", envelope.Error.Message)
	}
	return nil
}
