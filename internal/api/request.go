package api

import "github.com/shopspring/decimal"

// RegisterProductRequest is the payload for registering a new product.
type RegisterProductRequest struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	SerialNumber       string          `json:"serial_number"`
	Price              decimal.Decimal `json:"price"`
	ManufacturerWallet string          `json:"manufacturer_wallet"`
}

// SellProductRequest is the payload for selling a registered product.
type SellProductRequest struct {
	CustomerWallet string `json:"customer_wallet"`
}

// RecycleProductRequest is the payload for recycling a product.
type RecycleProductRequest struct {
	RecyclerWallet string `json:"recycler_wallet"`
}

// RecallProductRequest is the payload for recalling a product. ProductID
// must match the URL parameter; it is an explicit confirmation field.
type RecallProductRequest struct {
	ProductID          string `json:"product_id"`
	ManufacturerWallet string `json:"manufacturer_wallet"`
}
