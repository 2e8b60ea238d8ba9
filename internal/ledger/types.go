package ledger

import "github.com/shopspring/decimal"

// Credentials identify the operator account the gateway signs for.
type Credentials struct {
	Account string `json:"account"`
	APIKey  string `json:"api_key"`
}

// depositRequest asks the gateway to move funds from the operator account
// into the AMM pool on behalf of a product party.
type depositRequest struct {
	Account   string          `json:"account"`
	Amount    decimal.Decimal `json:"amount"`
	Role      string          `json:"role"`
	ProductID string          `json:"product_id"`
	Memo      string          `json:"memo,omitempty"`
}

type depositResponse struct {
	LPTokensReceived decimal.Decimal `json:"lp_tokens_received"`
	TxHash           string          `json:"tx_hash"`
	Validated        bool            `json:"validated"`
}

// withdrawRequest redeems LP tokens held by the operator account for a
// given product position.
type withdrawRequest struct {
	Account   string          `json:"account"`
	LPTokens  decimal.Decimal `json:"lp_tokens"`
	ProductID string          `json:"product_id"`
}

type withdrawResponse struct {
	AmountReceived decimal.Decimal `json:"amount_received"`
	TxHash         string          `json:"tx_hash"`
	Validated      bool            `json:"validated"`
}

// paymentRequest sends a direct payout from the operator account.
type paymentRequest struct {
	Account     string          `json:"account"`
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
	Memo        string          `json:"memo,omitempty"`
}

type paymentResponse struct {
	TxHash    string `json:"tx_hash"`
	Validated bool   `json:"validated"`
}

// PoolInfo describes the AMM pool backing product deposits.
type PoolInfo struct {
	Account       string          `json:"account"`
	BaseReserve   decimal.Decimal `json:"base_reserve"`
	TokenReserve  decimal.Decimal `json:"token_reserve"`
	LPTokenSupply decimal.Decimal `json:"lp_token_supply"`
	TradingFeePct decimal.Decimal `json:"trading_fee_pct"`
}

// AccountBalance is a wallet's balance snapshot as reported by the gateway.
type AccountBalance struct {
	Address  string            `json:"address"`
	Balances map[string]string `json:"balances"`
}

// errorResponse is the gateway's failure envelope.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
