package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpiryYears is the horizon after a sale past which an unrecycled
// product may be expired.
const ExpiryYears = 6

// Fee structure, expressed as fractions of the sale price.
var (
	// ManufacturerDepositPct of the price is locked in the AMM at registration.
	ManufacturerDepositPct = decimal.NewFromFloat(0.05)
	// CustomerEscrowPct of the price is locked in the AMM at sale.
	CustomerEscrowPct = decimal.NewFromFloat(0.05)
	// CyclrFeePct of the price is retained by the platform on sale;
	// the manufacturer is paid the remainder.
	CyclrFeePct = decimal.NewFromFloat(0.01)
)

// Product tracks a single item through the full circular-economy lifecycle:
// registration deposit, sale escrow, and eventual recycle/expire/recall
// settlement against the AMM position.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	SerialNumber string          `json:"serial_number"`
	Price        decimal.Decimal `json:"price"`

	// Deposit bookkeeping, fixed at the moment of the corresponding
	// transition and never recomputed.
	ManufacturerDeposit decimal.Decimal `json:"manufacturer_deposit"`
	CustomerEscrow      decimal.Decimal `json:"customer_escrow"`
	TotalInAMM          decimal.Decimal `json:"total_in_amm"`
	CyclrFee            decimal.Decimal `json:"cyclr_fee"`
	ManufacturerPayout  decimal.Decimal `json:"manufacturer_payout"`

	// LP token claims returned by the ledger gateway on deposit.
	ManufacturerLPTokens decimal.Decimal `json:"manufacturer_lp_tokens"`
	CustomerLPTokens     decimal.Decimal `json:"customer_lp_tokens"`
	TotalLPTokens        decimal.Decimal `json:"total_lp_tokens"`

	// Transaction references, retained for audit display only.
	RegistrationTx string `json:"registration_tx,omitempty"`
	SaleDepositTx  string `json:"sale_deposit_tx,omitempty"`
	SalePayoutTx   string `json:"sale_payout_tx,omitempty"`
	RecycleTx      string `json:"recycle_tx,omitempty"`

	ManufacturerWallet string `json:"manufacturer_wallet"`
	CustomerWallet     string `json:"customer_wallet,omitempty"`
	RecyclerWallet     string `json:"recycler_wallet,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	SoldAt     *time.Time `json:"sold_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	RecycledAt *time.Time `json:"recycled_at,omitempty"`

	Status Status `json:"status"`

	// Settlement outcome, filled on recycle/expire/recall.
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
	APYEarned      decimal.Decimal `json:"apy_earned"`

	CustomerReceived     decimal.Decimal `json:"customer_received"`
	ManufacturerReceived decimal.Decimal `json:"manufacturer_received"`
	RecyclerReceived     decimal.Decimal `json:"recycler_received"`
	EcoFundReceived      decimal.Decimal `json:"eco_fund_received"`
	CyclrReceived        decimal.Decimal `json:"cyclr_received"`

	DistributionTxs map[string]string `json:"distribution_txs,omitempty"`
}
