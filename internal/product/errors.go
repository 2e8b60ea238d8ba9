package product

import "fmt"

// ValidationError flags malformed input, caught before any gateway call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError flags an unknown product ID.
type NotFoundError struct {
	ProductID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// InvalidStateError flags an operation that is illegal for the product's
// current status. The message always names the current status.
type InvalidStateError struct {
	Op     string
	Status Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("product cannot be %s (current status: %s)", e.Op, e.Status)
}

// InsufficientFundsError flags a settlement attempt with no liquidity
// position to withdraw.
type InsufficientFundsError struct {
	ProductID string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("no LP tokens available for withdrawal on product %s", e.ProductID)
}

// GatewayError wraps a failed ledger gateway call.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("ledger gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
