package product

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)


type payCall struct {
	destination string
	amount      decimal.Decimal
	memo        string
}

type mockGateway struct {
	depositFn  func(ctx context.Context, amount decimal.Decimal, role DepositRole, productID string) (*DepositResult, error)
	withdrawFn func(ctx context.Context, lpTokens decimal.Decimal, productID string) (*WithdrawResult, error)
	payFn      func(ctx context.Context, destination string, amount decimal.Decimal, memo string) (string, error)

	deposits  int
	withdraws int
	pays      []payCall
}

func (m *mockGateway) Deposit(ctx context.Context, amount decimal.Decimal, role DepositRole, productID string) (*DepositResult, error) {
	m.deposits++
	if m.depositFn != nil {
		return m.depositFn(ctx, amount, role, productID)
	}
	// One LP token per unit deposited
	return &DepositResult{LPTokens: amount, TxRef: "DEP-" + productID}, nil
}

func (m *mockGateway) Withdraw(ctx context.Context, lpTokens decimal.Decimal, productID string) (*WithdrawResult, error) {
	m.withdraws++
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, lpTokens, productID)
	}
	return &WithdrawResult{AmountReceived: lpTokens, TxRef: "WD-" + productID}, nil
}

func (m *mockGateway) Pay(ctx context.Context, destination string, amount decimal.Decimal, memo string) (string, error) {
	if m.payFn != nil {
		return m.payFn(ctx, destination, amount, memo)
	}
	m.pays = append(m.pays, payCall{destination: destination, amount: amount, memo: memo})
	return fmt.Sprintf("PAY-%d", len(m.pays)), nil
}

func (m *mockGateway) paidTo(destination string) (decimal.Decimal, bool) {
	total := decimal.Zero
	found := false
	for _, p := range m.pays {
		if p.destination == destination {
			total = total.Add(p.amount)
			found = true
		}
	}
	return total, found
}

type mockRegistry struct {
	products map[string]*Product
	saveErr  error
	saves    int
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{products: make(map[string]*Product)}
}

func (m *mockRegistry) Save(ctx context.Context, p *Product) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockRegistry) Get(ctx context.Context, id string) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockRegistry) List(ctx context.Context) ([]*Product, error) {
	out := make([]*Product, 0, len(m.products))
	for _, p := range m.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockRegistry) ListByStatus(ctx context.Context, status Status) ([]*Product, error) {
	all, _ := m.List(ctx)
	out := make([]*Product, 0, len(all))
	for _, p := range all {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRegistry) HealthCheck(ctx context.Context) error { return nil }
func (m *mockRegistry) Close() error                          { return nil }

func newTestService(gw *mockGateway, reg *mockRegistry) *Service {
	return NewService(zap.NewNop(), reg, gw, nil, Wallets{
		Cyclr:   "rCyclr",
		EcoFund: "rEcoFund",
	})
}

func registerOne(t *testing.T, svc *Service, price int64) *Product {
	t.Helper()
	res, err := svc.Register(context.Background(), RegisterInput{
		Name:               "EcoWasher 3000",
		SerialNumber:       "SN-001",
		Price:              decimal.NewFromInt(price),
		ManufacturerWallet: "rManufacturer",
	})
	require.NoError(t, err)
	require.True(t, res.GatewayOK)
	return res.Product
}


func TestRegister_ComputesDeposit(t *testing.T) {
	gw := &mockGateway{}
	svc := newTestService(gw, newMockRegistry())

	p := registerOne(t, svc, 1000)

	assert.Equal(t, StatusRegistered, p.Status)
	assert.True(t, p.ManufacturerDeposit.Equal(decimal.NewFromInt(50)), "5%% of 1000")
	assert.True(t, p.TotalInAMM.Equal(p.ManufacturerDeposit))
	assert.True(t, p.TotalLPTokens.Equal(decimal.NewFromInt(50)))
	assert.NotEmpty(t, p.RegistrationTx)
	assert.Equal(t, 1, gw.deposits)
}

func TestRegister_InvalidPrice(t *testing.T) {
	svc := newTestService(&mockGateway{}, newMockRegistry())

	for _, price := range []int64{0, -10} {
		_, err := svc.Register(context.Background(), RegisterInput{
			Name:               "X",
			Price:              decimal.NewFromInt(price),
			ManufacturerWallet: "rM",
		})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "price %d", price)
	}
}

func TestRegister_MissingWallet(t *testing.T) {
	svc := newTestService(&mockGateway{}, newMockRegistry())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:  "X",
		Price: decimal.NewFromInt(100),
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRegister_GatewayFailureIsLenient(t *testing.T) {
	gw := &mockGateway{
		depositFn: func(ctx context.Context, amount decimal.Decimal, role DepositRole, productID string) (*DepositResult, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	res, err := svc.Register(context.Background(), RegisterInput{
		Name:               "X",
		Price:              decimal.NewFromInt(1000),
		ManufacturerWallet: "rM",
	})

	require.NoError(t, err, "registration must not fail on gateway error")
	assert.False(t, res.GatewayOK)
	assert.Contains(t, res.GatewayError, "connection refused")

	p := res.Product
	assert.True(t, p.ManufacturerDeposit.Equal(decimal.NewFromInt(50)), "deposit amount still computed")
	assert.True(t, p.TotalLPTokens.IsZero(), "no LP tokens recorded")
	assert.Empty(t, p.RegistrationTx)

	saved, _ := reg.Get(context.Background(), p.ID)
	require.NotNil(t, saved, "product persisted despite gateway failure")
}


func TestSell_ComputesEscrowFeeAndPayout(t *testing.T) {
	gw := &mockGateway{}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	p := registerOne(t, svc, 1000)

	sold, err := svc.Sell(context.Background(), p.ID, "rCustomer")
	require.NoError(t, err)

	assert.Equal(t, StatusSold, sold.Status)
	assert.Equal(t, "rCustomer", sold.CustomerWallet)
	assert.True(t, sold.CustomerEscrow.Equal(decimal.NewFromInt(50)))
	assert.True(t, sold.CyclrFee.Equal(decimal.NewFromInt(10)))
	assert.True(t, sold.ManufacturerPayout.Equal(decimal.NewFromInt(990)))
	assert.True(t, sold.TotalInAMM.Equal(decimal.NewFromInt(100)))
	assert.True(t, sold.TotalLPTokens.Equal(decimal.NewFromInt(100)), "manufacturer + customer LP tokens")

	// Manufacturer got paid price minus fee
	paid, ok := gw.paidTo("rManufacturer")
	require.True(t, ok)
	assert.True(t, paid.Equal(decimal.NewFromInt(990)))
}

func TestSell_ExpiryIsExactCalendarYears(t *testing.T) {
	gw := &mockGateway{}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	fixed := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	p := registerOne(t, svc, 1000)
	sold, err := svc.Sell(context.Background(), p.ID, "rCustomer")
	require.NoError(t, err)

	require.NotNil(t, sold.SoldAt)
	require.NotNil(t, sold.ExpiresAt)
	assert.Equal(t, fixed, *sold.SoldAt)
	assert.Equal(t, fixed.AddDate(ExpiryYears, 0, 0), *sold.ExpiresAt)
	assert.Equal(t, 2032, sold.ExpiresAt.Year())
}

func TestSell_NotFound(t *testing.T) {
	svc := newTestService(&mockGateway{}, newMockRegistry())

	_, err := svc.Sell(context.Background(), "missing", "rCustomer")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestSell_AlreadySoldLeavesProductUnmodified(t *testing.T) {
	gw := &mockGateway{}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	p := registerOne(t, svc, 1000)
	first, err := svc.Sell(context.Background(), p.ID, "rCustomerA")
	require.NoError(t, err)

	_, err = svc.Sell(context.Background(), p.ID, "rCustomerB")
	var iserr *InvalidStateError
	require.ErrorAs(t, err, &iserr)
	assert.Equal(t, StatusSold, iserr.Status)
	assert.Contains(t, err.Error(), "product cannot be sold (current status: sold)")

	// Second attempt must not have touched the stored product
	stored, _ := reg.Get(context.Background(), p.ID)
	assert.Equal(t, "rCustomerA", stored.CustomerWallet)
	assert.True(t, stored.CustomerEscrow.Equal(first.CustomerEscrow))
}

func TestSell_EscrowDepositBestEffort(t *testing.T) {
	gw := &mockGateway{
		depositFn: func(ctx context.Context, amount decimal.Decimal, role DepositRole, productID string) (*DepositResult, error) {
			if role == RoleCustomer {
				return nil, fmt.Errorf("gateway down")
			}
			return &DepositResult{LPTokens: amount, TxRef: "DEP"}, nil
		},
	}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	p := registerOne(t, svc, 1000)
	sold, err := svc.Sell(context.Background(), p.ID, "rCustomer")

	require.NoError(t, err, "sale completes despite escrow deposit failure")
	assert.Equal(t, StatusSold, sold.Status)
	assert.True(t, sold.CustomerLPTokens.IsZero())
	assert.Empty(t, sold.SaleDepositTx)
}


// Worked example: price 1000, withdrawal returns 110, so the yield is 10
// and case A splits it 40/20/20/20.
func TestRecycle_CaseA(t *testing.T) {
	gw := &mockGateway{
		withdrawFn: func(ctx context.Context, lpTokens decimal.Decimal, productID string) (*WithdrawResult, error) {
			return &WithdrawResult{AmountReceived: decimal.NewFromInt(110), TxRef: "WD-1"}, nil
		},
	}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	p := registerOne(t, svc, 1000)
	_, err := svc.Sell(context.Background(), p.ID, "rCustomer")
	require.NoError(t, err)

	settlement, err := svc.Recycle(context.Background(), p.ID, "rRecycler")
	require.NoError(t, err)

	assert.True(t, settlement.Success)
	assert.Equal(t, CaseSoldRecycled, settlement.Case)
	assert.True(t, settlement.TotalWithdrawn.Equal(decimal.NewFromInt(110)))
	assert.True(t, settlement.APYEarned.Equal(decimal.NewFromInt(10)))

	dist := settlement.Distribution
	assert.True(t, dist[ShareCustomerAPY].Equal(decimal.NewFromInt(4)))
	assert.True(t, dist[ShareManufacturerAPY].Equal(decimal.NewFromInt(2)))
	assert.True(t, dist[ShareRecyclerAPY].Equal(decimal.NewFromInt(2)))
	assert.True(t, dist[ShareEcoFundAPY].Equal(decimal.NewFromInt(2)))
	assert.True(t, dist[ShareManufacturerDepositReturn].Equal(decimal.NewFromInt(50)))
	assert.True(t, dist[ShareCustomerEscrowReturn].Equal(decimal.NewFromInt(50)))

	stored, _ := reg.Get(context.Background(), p.ID)
	assert.Equal(t, StatusRecycled, stored.Status)
	assert.Equal(t, "rRecycler", stored.RecyclerWallet)
	require.NotNil(t, stored.RecycledAt)
	assert.True(t, stored.CustomerReceived.Equal(decimal.NewFromInt(54)), "escrow + apy share")
	assert.True(t, stored.ManufacturerReceived.Equal(decimal.NewFromInt(52)), "deposit + apy share")
	assert.True(t, stored.RecyclerReceived.Equal(decimal.NewFromInt(2)))
	assert.True(t, stored.EcoFundReceived.Equal(decimal.NewFromInt(2)))

	// Payments to every external party; cyclr share stays in the operator account
	paid, _ := gw.paidTo("rCustomer")
	assert.True(t, paid.Equal(decimal.NewFromInt(54)))
	paid, _ = gw.paidTo("rRecycler")
	assert.True(t, paid.Equal(decimal.NewFromInt(2)))
	paid, _ = gw.paidTo("rEcoFund")
	assert.True(t, paid.Equal(decimal.NewFromInt(2)))
	_, cyclrPaid := gw.paidTo("rCyclr")
	assert.False(t, cyclrPaid)
}

func TestRecycle_CaseC_UnsoldStock(t *testing.T) {
	gw := &mockGateway{
		withdrawFn: func(ctx context.Context, lpTokens decimal.Decimal, productID string) (*WithdrawResult, error) {
			return &WithdrawResult{AmountReceived: decimal.NewFromInt(60), TxRef: "WD-1"}, nil
		},
	}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	p := registerOne(t, svc, 1000)

	settlement, err := svc.Recycle(context.Background(), p.ID, "rRecycler")
	require.NoError(t, err)

	assert.Equal(t, CaseUnsoldRecycled, settlement.Case)
	assert.True(t, settlement.APYEarned.Equal(decimal.NewFromInt(10)), "60 withdrawn - 50 deposit")

	dist := settlement.Distribution
	assert.True(t, dist[ShareManufacturerAPY].Equal(decimal.NewFromInt(5)))
	assert.True(t, dist[ShareCyclrAPY].Equal(decimal.NewFromInt(5)))

	stored, _ := reg.Get(context.Background(), p.ID)
	assert.True(t, stored.ManufacturerReceived.Equal(decimal.NewFromInt(55)))
	assert.True(t, stored.CyclrReceived.Equal(decimal.NewFromInt(5)))
}

func TestRecycle_WithdrawFailureLeavesStatusUnchanged(t *testing.T) {
	gw := &mockGateway{
		withdrawFn: func(ctx context.Context, lpTokens decimal.Decimal, productID string) (*WithdrawResult, error) {
			return nil, fmt.Errorf("tecAMM_BALANCE")
		},
	}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	p := registerOne(t, svc, 1000)
	_, err := svc.Sell(context.Background(), p.ID, "rCustomer")
	require.NoError(t, err)

	settlement, err := svc.Recycle(context.Background(), p.ID, "rRecycler")
	require.NoError(t, err, "gateway failure is a structured outcome, not an error")

	assert.False(t, settlement.Success)
	assert.Equal(t, CaseSoldRecycled, settlement.Case)
	assert.Contains(t, settlement.Err, "tecAMM_BALANCE")
	assert.Empty(t, settlement.Distribution)

	stored, _ := reg.Get(context.Background(), p.ID)
	assert.Equal(t, StatusSold, stored.Status, "retryable: status unchanged")
}

func TestRecycle_TerminalStatusRejected(t *testing.T) {
	gw := &mockGateway{
		withdrawFn: func(ctx context.Context, lpTokens decimal.Decimal, productID string) (*WithdrawResult, error) {
			return &WithdrawResult{AmountReceived: decimal.NewFromInt(110), TxRef: "WD"}, nil
		},
	}
	svc := newTestService(gw, newMockRegistry())

	p := registerOne(t, svc, 1000)
	_, err := svc.Recycle(context.Background(), p.ID, "rRecycler")
	require.NoError(t, err)

	_, err = svc.Recycle(context.Background(), p.ID, "rRecycler")
	var iserr *InvalidStateError
	require.ErrorAs(t, err, &iserr)
	assert.Equal(t, StatusRecycled, iserr.Status)
}

func TestRecycle_NoLPTokens(t *testing.T) {
	gw := &mockGateway{
		depositFn: func(ctx context.Context, amount decimal.Decimal, role DepositRole, productID string) (*DepositResult, error) {
			return nil, fmt.Errorf("gateway down")
		},
	}
	svc := newTestService(gw, newMockRegistry())

	res, err := svc.Register(context.Background(), RegisterInput{
		Name:               "X",
		Price:              decimal.NewFromInt(1000),
		ManufacturerWallet: "rM",
	})
	require.NoError(t, err)

	_, err = svc.Recycle(context.Background(), res.Product.ID, "rRecycler")
	var inferr *InsufficientFundsError
	assert.ErrorAs(t, err, &inferr)
	assert.Equal(t, 0, gw.withdraws, "no withdrawal attempted")
}

func TestRecycle_APYFlooredAtZero(t *testing.T) {
	gw := &mockGateway{
		withdrawFn: func(ctx context.Context, lpTokens decimal.Decimal, productID string) (*WithdrawResult, error) {
			// Pool lost value: less comes out than went in
			return &WithdrawResult{AmountReceived: decimal.NewFromInt(90), TxRef: "WD"}, nil
		},
	}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	p := registerOne(t, svc, 1000)
	_, err := svc.Sell(context.Background(), p.ID, "rCustomer")
	require.NoError(t, err)

	settlement, err := svc.Recycle(context.Background(), p.ID, "rRecycler")
	require.NoError(t, err)

	assert.True(t, settlement.APYEarned.IsZero(), "apy never negative")
	assert.True(t, settlement.TotalWithdrawn.Equal(decimal.NewFromInt(90)))
}


// Worked example: price 1000, withdrawal returns 110, platform keeps the
// full yield of 10.
func TestExpire_CaseB(t *testing.T) {
	gw := &mockGateway{
		withdrawFn: func(ctx context.Context, lpTokens decimal.Decimal, productID string) (*WithdrawResult, error) {
			return &WithdrawResult{AmountReceived: decimal.NewFromInt(110), TxRef: "WD-1"}, nil
		},
	}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	p := registerOne(t, svc, 1000)
	_, err := svc.Sell(context.Background(), p.ID, "rCustomer")
	require.NoError(t, err)

	settlement, err := svc.Expire(context.Background(), p.ID)
	require.NoError(t, err)

	assert.True(t, settlement.Success)
	assert.Equal(t, CaseSoldExpired, settlement.Case)
	assert.True(t, settlement.APYEarned.Equal(decimal.NewFromInt(10)))

	stored, _ := reg.Get(context.Background(), p.ID)
	assert.Equal(t, StatusExpired, stored.Status)
	assert.True(t, stored.CyclrReceived.Equal(decimal.NewFromInt(10)), "platform keeps the full apy")
	assert.True(t, stored.CustomerReceived.Equal(decimal.NewFromInt(50)), "escrow only, no apy share")
	assert.True(t, stored.ManufacturerReceived.Equal(decimal.NewFromInt(50)))
	assert.Nil(t, stored.RecycledAt)
	assert.Empty(t, stored.RecycleTx)
}

func TestExpire_CaseD_UnsoldStock(t *testing.T) {
	gw := &mockGateway{
		withdrawFn: func(ctx context.Context, lpTokens decimal.Decimal, productID string) (*WithdrawResult, error) {
			return &WithdrawResult{AmountReceived: decimal.NewFromInt(53), TxRef: "WD-1"}, nil
		},
	}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	p := registerOne(t, svc, 1000)

	settlement, err := svc.Expire(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, CaseUnsoldExpired, settlement.Case)
	assert.True(t, settlement.APYEarned.Equal(decimal.NewFromInt(3)))

	stored, _ := reg.Get(context.Background(), p.ID)
	assert.Equal(t, StatusExpired, stored.Status)
	assert.True(t, stored.ManufacturerReceived.Equal(decimal.NewFromInt(50)))
	assert.True(t, stored.CyclrReceived.Equal(decimal.NewFromInt(3)))
}

func TestExpire_WithdrawFailureLeavesStatusUnchanged(t *testing.T) {
	gw := &mockGateway{
		withdrawFn: func(ctx context.Context, lpTokens decimal.Decimal, productID string) (*WithdrawResult, error) {
			return nil, fmt.Errorf("timeout")
		},
	}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	p := registerOne(t, svc, 1000)

	settlement, err := svc.Expire(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, settlement.Success)
	assert.Equal(t, CaseUnsoldExpired, settlement.Case)

	stored, _ := reg.Get(context.Background(), p.ID)
	assert.Equal(t, StatusRegistered, stored.Status)
}


func TestRecall_Success(t *testing.T) {
	gw := &mockGateway{
		withdrawFn: func(ctx context.Context, lpTokens decimal.Decimal, productID string) (*WithdrawResult, error) {
			return &WithdrawResult{AmountReceived: decimal.NewFromInt(52), TxRef: "WD-1"}, nil
		},
	}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	p := registerOne(t, svc, 1000)

	recalled, err := svc.Recall(context.Background(), p.ID, p.ID, "rManufacturer")
	require.NoError(t, err)

	assert.Equal(t, StatusRecalled, recalled.Status)
	assert.True(t, recalled.TotalWithdrawn.Equal(decimal.NewFromInt(52)))
	assert.True(t, recalled.APYEarned.Equal(decimal.NewFromInt(2)))
	assert.True(t, recalled.ManufacturerReceived.Equal(decimal.NewFromInt(52)))
	assert.Equal(t, "WD-1", recalled.DistributionTxs["withdrawal"])
	assert.NotEmpty(t, recalled.DistributionTxs["manufacturer"])
}

func TestRecall_IDMismatch(t *testing.T) {
	svc := newTestService(&mockGateway{}, newMockRegistry())

	_, err := svc.Recall(context.Background(), "p-001", "p-999", "rManufacturer")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "mismatch")
}

// A product registered while the gateway was down has no LP position,
// so recall must not attempt a withdrawal.
func TestRecall_ZeroLPTokensSkipsWithdrawal(t *testing.T) {
	gw := &mockGateway{
		depositFn: func(ctx context.Context, amount decimal.Decimal, role DepositRole, productID string) (*DepositResult, error) {
			return nil, fmt.Errorf("gateway down")
		},
	}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	res, err := svc.Register(context.Background(), RegisterInput{
		Name:               "X",
		Price:              decimal.NewFromInt(500),
		ManufacturerWallet: "rM",
	})
	require.NoError(t, err)

	recalled, err := svc.Recall(context.Background(), res.Product.ID, res.Product.ID, "rM")
	require.NoError(t, err)

	assert.Equal(t, StatusRecalled, recalled.Status)
	assert.Equal(t, 0, gw.withdraws, "no withdrawal for an empty position")
	assert.True(t, recalled.TotalWithdrawn.IsZero())
}

func TestRecall_TwiceFailsSecondTime(t *testing.T) {
	gw := &mockGateway{}
	svc := newTestService(gw, newMockRegistry())

	p := registerOne(t, svc, 1000)

	_, err := svc.Recall(context.Background(), p.ID, p.ID, "rManufacturer")
	require.NoError(t, err)

	_, err = svc.Recall(context.Background(), p.ID, p.ID, "rManufacturer")
	var iserr *InvalidStateError
	require.ErrorAs(t, err, &iserr)
	assert.Equal(t, StatusRecalled, iserr.Status)
	assert.Contains(t, err.Error(), "current status: recalled")
}

func TestRecall_WithdrawFailureStillRecalls(t *testing.T) {
	gw := &mockGateway{
		withdrawFn: func(ctx context.Context, lpTokens decimal.Decimal, productID string) (*WithdrawResult, error) {
			return nil, fmt.Errorf("gateway down")
		},
	}
	reg := newMockRegistry()
	svc := newTestService(gw, reg)

	p := registerOne(t, svc, 1000)

	recalled, err := svc.Recall(context.Background(), p.ID, p.ID, "rManufacturer")
	require.NoError(t, err, "recall is best-effort; only the status change is guaranteed")
	assert.Equal(t, StatusRecalled, recalled.Status)
	assert.True(t, recalled.TotalWithdrawn.IsZero())
}

func TestRecall_SoldProductRejected(t *testing.T) {
	gw := &mockGateway{}
	svc := newTestService(gw, newMockRegistry())

	p := registerOne(t, svc, 1000)
	_, err := svc.Sell(context.Background(), p.ID, "rCustomer")
	require.NoError(t, err)

	_, err = svc.Recall(context.Background(), p.ID, p.ID, "rManufacturer")
	var iserr *InvalidStateError
	require.ErrorAs(t, err, &iserr)
	assert.Equal(t, StatusSold, iserr.Status)
}


func TestGet_NotFound(t *testing.T) {
	svc := newTestService(&mockGateway{}, newMockRegistry())

	_, err := svc.Get(context.Background(), "missing")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestList_StatusFilter(t *testing.T) {
	gw := &mockGateway{}
	svc := newTestService(gw, newMockRegistry())

	a := registerOne(t, svc, 1000)
	registerOne(t, svc, 2000)
	_, err := svc.Sell(context.Background(), a.ID, "rCustomer")
	require.NoError(t, err)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sold, err := svc.List(context.Background(), "sold")
	require.NoError(t, err)
	require.Len(t, sold, 1)
	assert.Equal(t, a.ID, sold[0].ID)
}

func TestList_InvalidStatus(t *testing.T) {
	svc := newTestService(&mockGateway{}, newMockRegistry())

	_, err := svc.List(context.Background(), "melted")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
