package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/CyclrHQ/cyclr-backend/internal/httpclient"
	"github.com/CyclrHQ/cyclr-backend/internal/metrics"
	"github.com/CyclrHQ/cyclr-backend/internal/product"
	"github.com/CyclrHQ/cyclr-backend/internal/rate"
)

// CredentialsFunc resolves the operator credentials for the current call.
// It is invoked per request so rotated secrets take effect without a restart.
type CredentialsFunc func(ctx context.Context) (*Credentials, error)

// Client talks to the ledger gateway's REST API. All fund-moving calls
// (deposits, withdrawals, payments) are serialized through a single mutex:
// the gateway signs with one operator account, and concurrent submissions
// against the same account race on the sequence number.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
	creds   CredentialsFunc

	// Guards transaction submission. Read-only queries bypass it.
	submitMu sync.Mutex
}

// NewClient constructs a ledger gateway client.
func NewClient(logger *zap.Logger, rateMgr *rate.Manager, baseURL string, timeout time.Duration, creds CredentialsFunc) *Client {
	httpClient := &http.Client{Timeout: timeout}
	exec := httpclient.New(logger, rateMgr, httpClient, 2, "ledger", func(status int, body []byte) error {
		var errResp errorResponse
		_ = json.Unmarshal(body, &errResp)

		logger.Warn("ledger.client_error",
			zap.Int("status", status),
			zap.String("error", errResp.Error),
			zap.String("message", errResp.Message))

		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = string(body)
		}
		return fmt.Errorf("ledger gateway returned %d: %s", status, msg)
	})
	return &Client{
		logger:  logger,
		exec:    exec,
		baseURL: baseURL,
		creds:   creds,
	}
}

// Deposit moves amount from the operator account into the AMM pool, tagged
// with the product and the depositing party's role.
// POST /v1/amm/deposits
func (c *Client) Deposit(ctx context.Context, amount decimal.Decimal, role product.DepositRole, productID string) (*product.DepositResult, error) {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	start := time.Now()
	cr, err := c.creds(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: resolve credentials: %w", err)
	}

	req := depositRequest{
		Account:   cr.Account,
		Amount:    amount,
		Role:      string(role),
		ProductID: productID,
		Memo:      "CYCLR:" + string(role) + ":" + productID,
	}
	var resp depositResponse
	err = c.postJSON(ctx, cr, "/v1/amm/deposits", req, &resp)
	metrics.ObserveGateway("deposit", start, err)
	if err != nil {
		return nil, err
	}

	c.logger.Info("ledger.deposit_ok",
		zap.String("product_id", productID),
		zap.String("role", string(role)),
		zap.String("amount", amount.String()),
		zap.String("lp_tokens", resp.LPTokensReceived.String()),
		zap.String("tx_hash", resp.TxHash))

	return &product.DepositResult{
		LPTokens: resp.LPTokensReceived,
		TxRef:    resp.TxHash,
	}, nil
}

// Withdraw redeems the product's LP token position from the AMM pool.
// POST /v1/amm/withdrawals
func (c *Client) Withdraw(ctx context.Context, lpTokens decimal.Decimal, productID string) (*product.WithdrawResult, error) {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	start := time.Now()
	cr, err := c.creds(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: resolve credentials: %w", err)
	}

	req := withdrawRequest{
		Account:   cr.Account,
		LPTokens:  lpTokens,
		ProductID: productID,
	}
	var resp withdrawResponse
	err = c.postJSON(ctx, cr, "/v1/amm/withdrawals", req, &resp)
	metrics.ObserveGateway("withdraw", start, err)
	if err != nil {
		return nil, err
	}

	c.logger.Info("ledger.withdraw_ok",
		zap.String("product_id", productID),
		zap.String("lp_tokens", lpTokens.String()),
		zap.String("amount_received", resp.AmountReceived.String()),
		zap.String("tx_hash", resp.TxHash))

	return &product.WithdrawResult{
		AmountReceived: resp.AmountReceived,
		TxRef:          resp.TxHash,
	}, nil
}

// Pay sends a direct payment from the operator account to destination.
// POST /v1/payments
func (c *Client) Pay(ctx context.Context, destination string, amount decimal.Decimal, memo string) (string, error) {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	start := time.Now()
	cr, err := c.creds(ctx)
	if err != nil {
		return "", fmt.Errorf("ledger: resolve credentials: %w", err)
	}

	req := paymentRequest{
		Account:     cr.Account,
		Destination: destination,
		Amount:      amount,
		Memo:        memo,
	}
	var resp paymentResponse
	err = c.postJSON(ctx, cr, "/v1/payments", req, &resp)
	metrics.ObserveGateway("pay", start, err)
	if err != nil {
		return "", err
	}

	c.logger.Info("ledger.payment_ok",
		zap.String("destination", destination),
		zap.String("amount", amount.String()),
		zap.String("tx_hash", resp.TxHash))

	return resp.TxHash, nil
}

// PoolInfo fetches the current AMM pool state. Read-only, not serialized.
// GET /v1/amm/pool
func (c *Client) PoolInfo(ctx context.Context) (*PoolInfo, error) {
	start := time.Now()
	cr, err := c.creds(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: resolve credentials: %w", err)
	}

	var resp PoolInfo
	err = c.getJSON(ctx, cr, "/v1/amm/pool", &resp)
	metrics.ObserveGateway("pool_info", start, err)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// AccountBalance fetches a wallet's balances. Read-only, not serialized.
// GET /v1/accounts/{address}/balances
func (c *Client) AccountBalance(ctx context.Context, address string) (*AccountBalance, error) {
	start := time.Now()
	cr, err := c.creds(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: resolve credentials: %w", err)
	}

	var resp AccountBalance
	err = c.getJSON(ctx, cr, "/v1/accounts/"+address+"/balances", &resp)
	metrics.ObserveGateway("account_balance", start, err)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// getJSON performs an authenticated GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, cr *Credentials, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	setHeaders(req, cr.APIKey)

	return c.exec.DoJSON(ctx, req, cr.Account, out)
}

// postJSON performs an authenticated POST request with a JSON body.
func (c *Client) postJSON(ctx context.Context, cr *Credentials, path string, body any, out any) error {
	var bodyBytes []byte
	if body != nil {
		var marshalErr error
		bodyBytes, marshalErr = json.Marshal(body)
		if marshalErr != nil {
			return marshalErr
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	setHeaders(req, cr.APIKey)

	return c.exec.DoJSON(ctx, req, cr.Account, out)
}

// setHeaders sets required headers for ledger gateway requests.
func setHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
