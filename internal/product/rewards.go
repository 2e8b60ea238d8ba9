package product

import "github.com/shopspring/decimal"

// Case labels the four settlement outcomes.
type Case string

const (
	// CaseSoldRecycled: sold product recycled before expiry.
	CaseSoldRecycled Case = "A"
	// CaseSoldExpired: sold product expired without recycling.
	CaseSoldExpired Case = "B"
	// CaseUnsoldRecycled: unsold stock recycled by the manufacturer.
	CaseUnsoldRecycled Case = "C"
	// CaseUnsoldExpired: unsold stock expired.
	CaseUnsoldExpired Case = "D"
)

// APY split for case A. The four shares sum to 1.
var (
	apyCustomerShare     = decimal.NewFromFloat(0.40)
	apyManufacturerShare = decimal.NewFromFloat(0.20)
	apyRecyclerShare     = decimal.NewFromFloat(0.20)
	apyHalf              = decimal.NewFromFloat(0.50)
)

// Distribution entry keys, as they appear in settlement responses.
const (
	ShareManufacturerDepositReturn = "manufacturer_deposit_return"
	ShareCustomerEscrowReturn      = "customer_escrow_return"
	ShareCustomerAPY               = "customer_apy"
	ShareManufacturerAPY           = "manufacturer_apy"
	ShareRecyclerAPY               = "recycler_apy"
	ShareEcoFundAPY                = "eco_fund_apy"
	ShareCyclrAPY                  = "cyclr_apy"
)

// settlementCase derives the case label from the product's state at the
// moment of settlement.
func settlementCase(wasSold, recycled bool) Case {
	switch {
	case wasSold && recycled:
		return CaseSoldRecycled
	case wasSold:
		return CaseSoldExpired
	case recycled:
		return CaseUnsoldRecycled
	default:
		return CaseUnsoldExpired
	}
}

// Split computes the per-party distribution for a settlement case. It is a
// pure function: deposits are returned to their original depositors and the
// yield is split according to the case policy. Complement shares are derived
// by subtraction so the entries always sum to exactly the amounts put in.
func Split(c Case, manufacturerDeposit, customerEscrow, apy decimal.Decimal) map[string]decimal.Decimal {
	dist := map[string]decimal.Decimal{
		ShareManufacturerDepositReturn: manufacturerDeposit,
	}

	switch c {
	case CaseSoldRecycled:
		dist[ShareCustomerEscrowReturn] = customerEscrow
		customerAPY := apy.Mul(apyCustomerShare)
		manufacturerAPY := apy.Mul(apyManufacturerShare)
		recyclerAPY := apy.Mul(apyRecyclerShare)
		dist[ShareCustomerAPY] = customerAPY
		dist[ShareManufacturerAPY] = manufacturerAPY
		dist[ShareRecyclerAPY] = recyclerAPY
		dist[ShareEcoFundAPY] = apy.Sub(customerAPY).Sub(manufacturerAPY).Sub(recyclerAPY)

	case CaseSoldExpired:
		dist[ShareCustomerEscrowReturn] = customerEscrow
		dist[ShareCyclrAPY] = apy

	case CaseUnsoldRecycled:
		manufacturerAPY := apy.Mul(apyHalf)
		dist[ShareManufacturerAPY] = manufacturerAPY
		dist[ShareCyclrAPY] = apy.Sub(manufacturerAPY)

	case CaseUnsoldExpired:
		dist[ShareCyclrAPY] = apy
	}

	return dist
}
