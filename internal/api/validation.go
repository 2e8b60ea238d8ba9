package api

import "fmt"

// Validate checks that RegisterProductRequest has all required fields.
func (r *RegisterProductRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.SerialNumber == "" {
		return fmt.Errorf("serial_number is required")
	}
	if r.Price.Sign() <= 0 {
		return fmt.Errorf("price must be positive")
	}
	if r.ManufacturerWallet == "" {
		return fmt.Errorf("manufacturer_wallet is required")
	}
	return nil
}

// Validate checks that SellProductRequest has all required fields.
func (r *SellProductRequest) Validate() error {
	if r.CustomerWallet == "" {
		return fmt.Errorf("customer_wallet is required")
	}
	return nil
}

// Validate checks that RecycleProductRequest has all required fields.
func (r *RecycleProductRequest) Validate() error {
	if r.RecyclerWallet == "" {
		return fmt.Errorf("recycler_wallet is required")
	}
	return nil
}

// Validate checks that RecallProductRequest has all required fields.
func (r *RecallProductRequest) Validate() error {
	if r.ProductID == "" {
		return fmt.Errorf("product_id is required")
	}
	if r.ManufacturerWallet == "" {
		return fmt.Errorf("manufacturer_wallet is required")
	}
	return nil
}
