package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/CyclrHQ/cyclr-backend/internal/ledger"
	"github.com/CyclrHQ/cyclr-backend/internal/product"
)

// ProductResponse is the public view of a product.
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	SerialNumber string          `json:"serial_number"`
	Price        decimal.Decimal `json:"price"`
	Status       string          `json:"status"`

	ManufacturerDeposit decimal.Decimal `json:"manufacturer_deposit"`
	CustomerEscrow      decimal.Decimal `json:"customer_escrow"`
	TotalInAMM          decimal.Decimal `json:"total_in_amm"`
	CyclrFee            decimal.Decimal `json:"cyclr_fee"`
	ManufacturerPayout  decimal.Decimal `json:"manufacturer_payout"`
	TotalLPTokens       decimal.Decimal `json:"total_lp_tokens"`

	ManufacturerWallet string `json:"manufacturer_wallet"`
	CustomerWallet     string `json:"customer_wallet,omitempty"`
	RecyclerWallet     string `json:"recycler_wallet,omitempty"`

	RegistrationTx string `json:"registration_tx,omitempty"`
	SaleDepositTx  string `json:"sale_deposit_tx,omitempty"`
	SalePayoutTx   string `json:"sale_payout_tx,omitempty"`
	RecycleTx      string `json:"recycle_tx,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	SoldAt     *time.Time `json:"sold_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	RecycledAt *time.Time `json:"recycled_at,omitempty"`

	// Days remaining until the product may be expired. Negative once the
	// horizon has passed; nil before the product is sold.
	DaysUntilExpiry *int `json:"days_until_expiry,omitempty"`

	TotalWithdrawn  decimal.Decimal   `json:"total_withdrawn"`
	APYEarned       decimal.Decimal   `json:"apy_earned"`
	DistributionTxs map[string]string `json:"distribution_txs,omitempty"`
}

// RegisterProductResponse wraps the created product with the outcome of the
// best-effort registration deposit.
type RegisterProductResponse struct {
	Product      ProductResponse `json:"product"`
	GatewayOK    bool            `json:"gateway_ok"`
	GatewayError string          `json:"gateway_error,omitempty"`
}

// SettlementResponse reports the outcome of a recycle or expire operation.
// Success=false means the AMM withdrawal failed and the product status is
// unchanged; the operation can be retried.
type SettlementResponse struct {
	Success        bool                       `json:"success"`
	ProductID      string                     `json:"product_id"`
	Case           string                     `json:"case"`
	TotalWithdrawn decimal.Decimal            `json:"total_withdrawn"`
	APYEarned      decimal.Decimal            `json:"apy_earned"`
	Distribution   map[string]decimal.Decimal `json:"distribution,omitempty"`
	TxRefs         map[string]string          `json:"tx_refs,omitempty"`
	ErrorMsg       string                     `json:"error,omitempty"`
}

// AMMInfoResponse is the pool state view.
type AMMInfoResponse struct {
	Success       bool            `json:"success"`
	Account       string          `json:"account,omitempty"`
	BaseReserve   decimal.Decimal `json:"base_reserve"`
	TokenReserve  decimal.Decimal `json:"token_reserve"`
	LPTokenSupply decimal.Decimal `json:"lp_token_supply"`
	TradingFeePct decimal.Decimal `json:"trading_fee_pct"`
	ErrorMsg      string          `json:"error,omitempty"`
}

// WalletBalanceResponse is a wallet balance snapshot.
type WalletBalanceResponse struct {
	Address  string            `json:"address"`
	Balances map[string]string `json:"balances"`
}

// toProductResponse maps a domain product to its API view.
func toProductResponse(p *product.Product, now time.Time) ProductResponse {
	resp := ProductResponse{
		ID:                  p.ID,
		Name:                p.Name,
		Description:         p.Description,
		SerialNumber:        p.SerialNumber,
		Price:               p.Price,
		Status:              string(p.Status),
		ManufacturerDeposit: p.ManufacturerDeposit,
		CustomerEscrow:      p.CustomerEscrow,
		TotalInAMM:          p.TotalInAMM,
		CyclrFee:            p.CyclrFee,
		ManufacturerPayout:  p.ManufacturerPayout,
		TotalLPTokens:       p.TotalLPTokens,
		ManufacturerWallet:  p.ManufacturerWallet,
		CustomerWallet:      p.CustomerWallet,
		RecyclerWallet:      p.RecyclerWallet,
		RegistrationTx:      p.RegistrationTx,
		SaleDepositTx:       p.SaleDepositTx,
		SalePayoutTx:        p.SalePayoutTx,
		RecycleTx:           p.RecycleTx,
		CreatedAt:           p.CreatedAt,
		SoldAt:              p.SoldAt,
		ExpiresAt:           p.ExpiresAt,
		RecycledAt:          p.RecycledAt,
		TotalWithdrawn:      p.TotalWithdrawn,
		APYEarned:           p.APYEarned,
		DistributionTxs:     p.DistributionTxs,
	}
	if p.ExpiresAt != nil {
		days := int(p.ExpiresAt.Sub(now).Hours() / 24)
		resp.DaysUntilExpiry = &days
	}
	return resp
}

// toSettlementResponse maps a domain settlement to its API view.
func toSettlementResponse(s *product.Settlement) SettlementResponse {
	return SettlementResponse{
		Success:        s.Success,
		ProductID:      s.ProductID,
		Case:           string(s.Case),
		TotalWithdrawn: s.TotalWithdrawn,
		APYEarned:      s.APYEarned,
		Distribution:   s.Distribution,
		TxRefs:         s.TxRefs,
		ErrorMsg:       s.Err,
	}
}

// toAMMInfoResponse maps gateway pool info to its API view.
func toAMMInfoResponse(info *ledger.PoolInfo) AMMInfoResponse {
	return AMMInfoResponse{
		Success:       true,
		Account:       info.Account,
		BaseReserve:   info.BaseReserve,
		TokenReserve:  info.TokenReserve,
		LPTokenSupply: info.LPTokenSupply,
		TradingFeePct: info.TradingFeePct,
	}
}
