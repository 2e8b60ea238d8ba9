package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// DepositRole tags which party a ledger deposit belongs to.
type DepositRole string

const (
	RoleManufacturer DepositRole = "manufacturer"
	RoleCustomer     DepositRole = "customer"
)

// DepositResult is the gateway's answer to a successful AMM deposit.
type DepositResult struct {
	LPTokens decimal.Decimal
	TxRef    string
}

// WithdrawResult is the gateway's answer to a successful AMM withdrawal.
type WithdrawResult struct {
	AmountReceived decimal.Decimal
	TxRef          string
}

// Gateway is the ledger/AMM collaborator the lifecycle service calls out to.
// Implementations submit transactions against the operator account; callers
// must not assume concurrent calls succeed independently.
type Gateway interface {
	Deposit(ctx context.Context, amount decimal.Decimal, role DepositRole, productID string) (*DepositResult, error)
	Withdraw(ctx context.Context, lpTokens decimal.Decimal, productID string) (*WithdrawResult, error)
	Pay(ctx context.Context, destination string, amount decimal.Decimal, memo string) (string, error)
}

// Registry is the narrow read/write contract the lifecycle service uses for
// product storage. Get returns (nil, nil) for an unknown ID; the service
// translates absence into *NotFoundError for its callers.
type Registry interface {
	Save(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	ListByStatus(ctx context.Context, status Status) ([]*Product, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// EventPublisher emits lifecycle events after a transition is persisted.
// Publishing is best-effort; failures never abort a transition.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, eventType string, p *Product) error
}
