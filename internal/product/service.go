package product

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/CyclrHQ/cyclr-backend/internal/metrics"
)

// Wallets holds the platform-side payout destinations.
type Wallets struct {
	Cyclr   string
	EcoFund string
}

// RegisterInput carries the fields needed to register a product.
type RegisterInput struct {
	Name               string
	Description        string
	SerialNumber       string
	Price              decimal.Decimal
	ManufacturerWallet string
}

// RegisterResult reports the created product together with the outcome of
// the best-effort gateway deposit. Registration never fails outright on a
// gateway error; GatewayOK tells the caller whether the deposit landed.
type RegisterResult struct {
	Product      *Product
	GatewayOK    bool
	GatewayError string
}

// Settlement is the structured outcome of a recycle or expire operation.
// A failed gateway withdrawal yields Success=false with the case label and
// an empty distribution; the product's status is left unchanged.
type Settlement struct {
	Success        bool
	ProductID      string
	Case           Case
	TotalWithdrawn decimal.Decimal
	APYEarned      decimal.Decimal
	Distribution   map[string]decimal.Decimal
	TxRefs         map[string]string
	Err            string
}

// Service is the product lifecycle state machine. It validates transitions,
// computes the monetary splits, drives the ledger gateway, and persists the
// result through the Registry.
type Service struct {
	logger   *zap.Logger
	registry Registry
	gateway  Gateway
	events   EventPublisher
	wallets  Wallets
	now      func() time.Time
}

// NewService constructs the lifecycle service. events may be nil.
func NewService(logger *zap.Logger, registry Registry, gateway Gateway, events EventPublisher, wallets Wallets) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:   logger,
		registry: registry,
		gateway:  gateway,
		events:   events,
		wallets:  wallets,
		now:      time.Now,
	}
}

// Register creates a product in REGISTERED and deposits the manufacturer's
// share of the price into the AMM. The deposit is best-effort: on gateway
// failure the product is still created, with empty LP-token and tx fields.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if in.Price.Sign() <= 0 {
		return nil, &ValidationError{Msg: "price must be positive"}
	}
	if in.ManufacturerWallet == "" {
		return nil, &ValidationError{Msg: "manufacturer_wallet is required"}
	}

	deposit := in.Price.Mul(ManufacturerDepositPct)
	p := &Product{
		ID:                  uuid.NewString(),
		Name:                in.Name,
		Description:         in.Description,
		SerialNumber:        in.SerialNumber,
		Price:               in.Price,
		ManufacturerDeposit: deposit,
		TotalInAMM:          deposit,
		ManufacturerWallet:  in.ManufacturerWallet,
		CreatedAt:           s.now().UTC(),
		Status:              StatusRegistered,
	}

	result := &RegisterResult{Product: p, GatewayOK: true}

	dep, err := s.gateway.Deposit(ctx, deposit, RoleManufacturer, p.ID)
	if err != nil {
		// Lenient policy: registration completes without the deposit.
		s.logger.Warn("product.register.deposit_failed",
			zap.String("product_id", p.ID),
			zap.Error(err))
		result.GatewayOK = false
		result.GatewayError = err.Error()
	} else {
		p.ManufacturerLPTokens = dep.LPTokens
		p.TotalLPTokens = dep.LPTokens
		p.RegistrationTx = dep.TxRef
	}

	if err := s.registry.Save(ctx, p); err != nil {
		metrics.IncTransition("register", "error")
		return nil, fmt.Errorf("save product %s: %w", p.ID, err)
	}

	s.logger.Info("product.registered",
		zap.String("product_id", p.ID),
		zap.String("name", p.Name),
		zap.String("price", p.Price.String()),
		zap.String("manufacturer_deposit", deposit.String()),
		zap.Bool("gateway_ok", result.GatewayOK))

	metrics.IncTransition("register", "ok")
	s.publish(ctx, "product.registered", p)
	return result, nil
}

// Sell transitions a REGISTERED product to SOLD: locks the customer escrow
// in the AMM, records the platform fee, and pays the manufacturer their
// share of the price. The escrow deposit and payout are best-effort.
func (s *Service) Sell(ctx context.Context, productID, customerWallet string) (*Product, error) {
	if customerWallet == "" {
		return nil, &ValidationError{Msg: "customer_wallet is required"}
	}

	p, err := s.get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusRegistered {
		return nil, &InvalidStateError{Op: "sold", Status: p.Status}
	}

	escrow := p.Price.Mul(CustomerEscrowPct)
	fee := p.Price.Mul(CyclrFeePct)

	soldAt := s.now().UTC()
	expiresAt := soldAt.AddDate(ExpiryYears, 0, 0)

	p.Status = StatusSold
	p.CustomerWallet = customerWallet
	p.CustomerEscrow = escrow
	p.CyclrFee = fee
	p.ManufacturerPayout = p.Price.Sub(fee)
	p.TotalInAMM = p.ManufacturerDeposit.Add(escrow)
	p.SoldAt = &soldAt
	p.ExpiresAt = &expiresAt

	dep, err := s.gateway.Deposit(ctx, escrow, RoleCustomer, p.ID)
	if err != nil {
		s.logger.Warn("product.sell.deposit_failed",
			zap.String("product_id", p.ID),
			zap.Error(err))
	} else {
		p.CustomerLPTokens = dep.LPTokens
		p.TotalLPTokens = p.ManufacturerLPTokens.Add(dep.LPTokens)
		p.SaleDepositTx = dep.TxRef
	}

	if ref, err := s.gateway.Pay(ctx, p.ManufacturerWallet, p.ManufacturerPayout, p.ID); err != nil {
		s.logger.Warn("product.sell.payout_failed",
			zap.String("product_id", p.ID),
			zap.String("destination", p.ManufacturerWallet),
			zap.Error(err))
	} else {
		p.SalePayoutTx = ref
	}

	if err := s.registry.Save(ctx, p); err != nil {
		metrics.IncTransition("sell", "error")
		return nil, fmt.Errorf("save product %s: %w", p.ID, err)
	}

	s.logger.Info("product.sold",
		zap.String("product_id", p.ID),
		zap.String("customer", customerWallet),
		zap.String("customer_escrow", escrow.String()),
		zap.String("cyclr_fee", fee.String()),
		zap.String("manufacturer_payout", p.ManufacturerPayout.String()))

	metrics.IncTransition("sell", "ok")
	s.publish(ctx, "product.sold", p)
	return p, nil
}

// Recycle settles a REGISTERED or SOLD product as recycled: withdraws the
// full LP position, returns deposits to their depositors, and splits the
// yield per the case policy (A: 40/20/20/20, C: 50/50).
func (s *Service) Recycle(ctx context.Context, productID, recyclerWallet string) (*Settlement, error) {
	if recyclerWallet == "" {
		return nil, &ValidationError{Msg: "recycler_wallet is required"}
	}

	p, err := s.get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusRegistered && p.Status != StatusSold {
		return nil, &InvalidStateError{Op: "recycled", Status: p.Status}
	}
	if p.TotalLPTokens.Sign() <= 0 {
		return nil, &InsufficientFundsError{ProductID: p.ID}
	}

	wasSold := p.Status == StatusSold
	c := settlementCase(wasSold, true)

	wres, err := s.gateway.Withdraw(ctx, p.TotalLPTokens, p.ID)
	if err != nil {
		metrics.IncTransition("recycle", "gateway_failed")
		return s.failedSettlement(p, c, "withdraw", err), nil
	}

	dist, txRefs, apy := s.distribute(ctx, p, c, wres, recyclerWallet)

	recycledAt := s.now().UTC()
	p.Status = StatusRecycled
	p.RecycledAt = &recycledAt
	p.RecyclerWallet = recyclerWallet
	p.RecycleTx = wres.TxRef

	switch c {
	case CaseSoldRecycled:
		p.CustomerReceived = dist[ShareCustomerEscrowReturn].Add(dist[ShareCustomerAPY])
		p.ManufacturerReceived = dist[ShareManufacturerDepositReturn].Add(dist[ShareManufacturerAPY])
		p.RecyclerReceived = dist[ShareRecyclerAPY]
		p.EcoFundReceived = dist[ShareEcoFundAPY]
	case CaseUnsoldRecycled:
		p.ManufacturerReceived = dist[ShareManufacturerDepositReturn].Add(dist[ShareManufacturerAPY])
		p.CyclrReceived = dist[ShareCyclrAPY]
	}

	if err := s.registry.Save(ctx, p); err != nil {
		metrics.IncTransition("recycle", "error")
		return nil, fmt.Errorf("save product %s: %w", p.ID, err)
	}

	s.logger.Info("product.recycled",
		zap.String("product_id", p.ID),
		zap.String("case", string(c)),
		zap.String("total_withdrawn", p.TotalWithdrawn.String()),
		zap.String("apy_earned", apy.String()))

	metrics.IncTransition("recycle", "ok")
	s.publish(ctx, "product.recycled", p)

	return &Settlement{
		Success:        true,
		ProductID:      p.ID,
		Case:           c,
		TotalWithdrawn: p.TotalWithdrawn,
		APYEarned:      apy,
		Distribution:   dist,
		TxRefs:         txRefs,
	}, nil
}

// Expire settles a REGISTERED or SOLD product past its horizon: deposits go
// back to their depositors and the platform keeps the whole yield
// (cases B and D).
func (s *Service) Expire(ctx context.Context, productID string) (*Settlement, error) {
	p, err := s.get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusRegistered && p.Status != StatusSold {
		return nil, &InvalidStateError{Op: "expired", Status: p.Status}
	}
	if p.TotalLPTokens.Sign() <= 0 {
		return nil, &InsufficientFundsError{ProductID: p.ID}
	}

	wasSold := p.Status == StatusSold
	c := settlementCase(wasSold, false)

	wres, err := s.gateway.Withdraw(ctx, p.TotalLPTokens, p.ID)
	if err != nil {
		metrics.IncTransition("expire", "gateway_failed")
		return s.failedSettlement(p, c, "withdraw", err), nil
	}

	dist, txRefs, apy := s.distribute(ctx, p, c, wres, "")

	p.Status = StatusExpired

	switch c {
	case CaseSoldExpired:
		p.CustomerReceived = dist[ShareCustomerEscrowReturn]
		p.ManufacturerReceived = dist[ShareManufacturerDepositReturn]
		p.CyclrReceived = dist[ShareCyclrAPY]
	case CaseUnsoldExpired:
		p.ManufacturerReceived = dist[ShareManufacturerDepositReturn]
		p.CyclrReceived = dist[ShareCyclrAPY]
	}

	if err := s.registry.Save(ctx, p); err != nil {
		metrics.IncTransition("expire", "error")
		return nil, fmt.Errorf("save product %s: %w", p.ID, err)
	}

	s.logger.Info("product.expired",
		zap.String("product_id", p.ID),
		zap.String("case", string(c)),
		zap.String("total_withdrawn", p.TotalWithdrawn.String()),
		zap.String("apy_earned", apy.String()))

	metrics.IncTransition("expire", "ok")
	s.publish(ctx, "product.expired", p)

	return &Settlement{
		Success:        true,
		ProductID:      p.ID,
		Case:           c,
		TotalWithdrawn: p.TotalWithdrawn,
		APYEarned:      apy,
		Distribution:   dist,
		TxRefs:         txRefs,
	}, nil
}

// Recall pulls an unsold product back for the manufacturer. The withdrawal
// is best-effort: only the status change to RECALLED is guaranteed.
func (s *Service) Recall(ctx context.Context, productID, requestProductID, manufacturerWallet string) (*Product, error) {
	if requestProductID != productID {
		return nil, &ValidationError{Msg: "product ID mismatch"}
	}

	p, err := s.get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusRegistered {
		return nil, &InvalidStateError{Op: "recalled", Status: p.Status}
	}

	if p.TotalLPTokens.Sign() > 0 {
		wres, err := s.gateway.Withdraw(ctx, p.TotalLPTokens, p.ID)
		if err != nil {
			s.logger.Warn("product.recall.withdraw_failed",
				zap.String("product_id", p.ID),
				zap.Error(err))
		} else {
			p.TotalWithdrawn = wres.AmountReceived
			apy := wres.AmountReceived.Sub(p.ManufacturerDeposit)
			if apy.Sign() < 0 {
				apy = decimal.Zero
			}
			p.APYEarned = apy
			p.ManufacturerReceived = wres.AmountReceived

			txRefs := map[string]string{"withdrawal": wres.TxRef}
			if ref, payErr := s.gateway.Pay(ctx, p.ManufacturerWallet, wres.AmountReceived, p.ID); payErr != nil {
				s.logger.Warn("product.recall.payout_failed",
					zap.String("product_id", p.ID),
					zap.String("destination", p.ManufacturerWallet),
					zap.Error(payErr))
			} else {
				txRefs["manufacturer"] = ref
			}
			p.DistributionTxs = txRefs
		}
	}

	p.Status = StatusRecalled

	if err := s.registry.Save(ctx, p); err != nil {
		metrics.IncTransition("recall", "error")
		return nil, fmt.Errorf("save product %s: %w", p.ID, err)
	}

	s.logger.Info("product.recalled",
		zap.String("product_id", p.ID),
		zap.String("manufacturer", manufacturerWallet),
		zap.String("total_withdrawn", p.TotalWithdrawn.String()))

	metrics.IncTransition("recall", "ok")
	s.publish(ctx, "product.recalled", p)
	return p, nil
}

// Get returns a product by ID.
func (s *Service) Get(ctx context.Context, productID string) (*Product, error) {
	return s.get(ctx, productID)
}

// List returns all products, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]*Product, error) {
	if status == "" {
		return s.registry.List(ctx)
	}
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.registry.ListByStatus(ctx, st)
}

// distribute computes the split, issues best-effort payouts, and records the
// settlement amounts on the product. The platform's own share stays in the
// operator account, so no payment is issued for it.
func (s *Service) distribute(ctx context.Context, p *Product, c Case, wres *WithdrawResult, recyclerWallet string) (map[string]decimal.Decimal, map[string]string, decimal.Decimal) {
	deposits := p.ManufacturerDeposit.Add(p.CustomerEscrow)
	apy := wres.AmountReceived.Sub(deposits)
	if apy.Sign() < 0 {
		apy = decimal.Zero
	}

	dist := Split(c, p.ManufacturerDeposit, p.CustomerEscrow, apy)
	txRefs := map[string]string{"withdrawal": wres.TxRef}

	pay := func(party, wallet string, amount decimal.Decimal) {
		if wallet == "" || amount.Sign() <= 0 {
			return
		}
		ref, err := s.gateway.Pay(ctx, wallet, amount, p.ID)
		if err != nil {
			s.logger.Warn("product.payout_failed",
				zap.String("product_id", p.ID),
				zap.String("party", party),
				zap.String("destination", wallet),
				zap.String("amount", amount.String()),
				zap.Error(err))
			return
		}
		txRefs[party] = ref
	}

	pay("manufacturer", p.ManufacturerWallet,
		dist[ShareManufacturerDepositReturn].Add(dist[ShareManufacturerAPY]))
	pay("customer", p.CustomerWallet,
		dist[ShareCustomerEscrowReturn].Add(dist[ShareCustomerAPY]))
	pay("recycler", recyclerWallet, dist[ShareRecyclerAPY])
	pay("eco_fund", s.wallets.EcoFund, dist[ShareEcoFundAPY])

	p.TotalWithdrawn = wres.AmountReceived
	p.APYEarned = apy
	p.DistributionTxs = txRefs

	return dist, txRefs, apy
}

// failedSettlement builds the structured failure result for a gateway
// withdrawal error, leaving the product unchanged so the call can be retried.
func (s *Service) failedSettlement(p *Product, c Case, op string, err error) *Settlement {
	gerr := &GatewayError{Op: op, Err: err}
	s.logger.Error("product.settlement_failed",
		zap.String("product_id", p.ID),
		zap.String("case", string(c)),
		zap.Error(gerr))
	return &Settlement{
		Success:      false,
		ProductID:    p.ID,
		Case:         c,
		Distribution: map[string]decimal.Decimal{},
		TxRefs:       map[string]string{},
		Err:          gerr.Error(),
	}
}

func (s *Service) get(ctx context.Context, productID string) (*Product, error) {
	p, err := s.registry.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("registry get %s: %w", productID, err)
	}
	if p == nil {
		return nil, &NotFoundError{ProductID: productID}
	}
	return p, nil
}

func (s *Service) publish(ctx context.Context, eventType string, p *Product) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishProductEvent(ctx, eventType, p); err != nil {
		s.logger.Warn("product.publish_failed",
			zap.String("event", eventType),
			zap.String("product_id", p.ID),
			zap.Error(err))
	}
}
