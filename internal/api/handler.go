package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/CyclrHQ/cyclr-backend/internal/ledger"
	"github.com/CyclrHQ/cyclr-backend/internal/product"
)

// LifecycleService defines the product operations used by the handler.
type LifecycleService interface {
	Register(ctx context.Context, in product.RegisterInput) (*product.RegisterResult, error)
	Sell(ctx context.Context, productID, customerWallet string) (*product.Product, error)
	Recycle(ctx context.Context, productID, recyclerWallet string) (*product.Settlement, error)
	Expire(ctx context.Context, productID string) (*product.Settlement, error)
	Recall(ctx context.Context, productID, requestProductID, manufacturerWallet string) (*product.Product, error)
	Get(ctx context.Context, productID string) (*product.Product, error)
	List(ctx context.Context, status string) ([]*product.Product, error)
}

// LedgerReader exposes the gateway's read-only queries.
type LedgerReader interface {
	PoolInfo(ctx context.Context) (*ledger.PoolInfo, error)
	AccountBalance(ctx context.Context, address string) (*ledger.AccountBalance, error)
}

// ProductHandler handles HTTP API requests for product lifecycle operations.
type ProductHandler struct {
	logger  *zap.Logger
	service LifecycleService
	reader  LedgerReader
}

// NewProductHandler creates a new ProductHandler. reader may be nil; the
// AMM endpoints then report unavailability.
func NewProductHandler(logger *zap.Logger, service LifecycleService, reader LedgerReader) *ProductHandler {
	return &ProductHandler{
		logger:  logger,
		service: service,
		reader:  reader,
	}
}

// RegisterHandler handles product registration requests.
func (h *ProductHandler) RegisterHandler(c *fiber.Ctx) error {
	var req RegisterProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := h.service.Register(c.Context(), product.RegisterInput{
		Name:               req.Name,
		Description:        req.Description,
		SerialNumber:       req.SerialNumber,
		Price:              req.Price,
		ManufacturerWallet: req.ManufacturerWallet,
	})
	if err != nil {
		h.logger.Error("api.register.failed",
			zap.String("serial", req.SerialNumber),
			zap.Error(err))
		return h.errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(RegisterProductResponse{
		Product:      toProductResponse(res.Product, time.Now().UTC()),
		GatewayOK:    res.GatewayOK,
		GatewayError: res.GatewayError,
	})
}

// SellHandler handles product sale requests.
func (h *ProductHandler) SellHandler(c *fiber.Ctx) error {
	var req SellProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	productID := c.Params("productId")
	p, err := h.service.Sell(c.Context(), productID, req.CustomerWallet)
	if err != nil {
		h.logger.Error("api.sell.failed",
			zap.String("product_id", productID),
			zap.Error(err))
		return h.errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toProductResponse(p, time.Now().UTC()))
}

// RecycleHandler handles recycle settlement requests.
func (h *ProductHandler) RecycleHandler(c *fiber.Ctx) error {
	var req RecycleProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	productID := c.Params("productId")
	settlement, err := h.service.Recycle(c.Context(), productID, req.RecyclerWallet)
	if err != nil {
		h.logger.Error("api.recycle.failed",
			zap.String("product_id", productID),
			zap.Error(err))
		return h.errorResponse(c, err)
	}

	// A failed withdrawal is a structured outcome, not an HTTP error: the
	// product status is unchanged and the call can be retried.
	return c.Status(fiber.StatusOK).JSON(toSettlementResponse(settlement))
}

// ExpireHandler handles expiry settlement requests.
func (h *ProductHandler) ExpireHandler(c *fiber.Ctx) error {
	productID := c.Params("productId")
	settlement, err := h.service.Expire(c.Context(), productID)
	if err != nil {
		h.logger.Error("api.expire.failed",
			zap.String("product_id", productID),
			zap.Error(err))
		return h.errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toSettlementResponse(settlement))
}

// RecallHandler handles manufacturer recall requests.
func (h *ProductHandler) RecallHandler(c *fiber.Ctx) error {
	var req RecallProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	productID := c.Params("productId")
	p, err := h.service.Recall(c.Context(), productID, req.ProductID, req.ManufacturerWallet)
	if err != nil {
		h.logger.Error("api.recall.failed",
			zap.String("product_id", productID),
			zap.Error(err))
		return h.errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toProductResponse(p, time.Now().UTC()))
}

// GetHandler returns one product by ID.
func (h *ProductHandler) GetHandler(c *fiber.Ctx) error {
	p, err := h.service.Get(c.Context(), c.Params("productId"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(toProductResponse(p, time.Now().UTC()))
}

// ListHandler returns all products, optionally filtered by ?status=.
func (h *ProductHandler) ListHandler(c *fiber.Ctx) error {
	products, err := h.service.List(c.Context(), c.Query("status"))
	if err != nil {
		return h.errorResponse(c, err)
	}

	now := time.Now().UTC()
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p, now))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"products": out,
		"count":    len(out),
	})
}

// AMMInfoHandler returns the current AMM pool state.
func (h *ProductHandler) AMMInfoHandler(c *fiber.Ctx) error {
	if h.reader == nil {
		return c.Status(fiber.StatusOK).JSON(AMMInfoResponse{
			Success:  false,
			ErrorMsg: "ledger gateway not configured",
		})
	}

	info, err := h.reader.PoolInfo(c.Context())
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(AMMInfoResponse{
			Success:  false,
			ErrorMsg: err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(toAMMInfoResponse(info))
}

// WalletBalanceHandler returns a wallet's balances as seen by the gateway.
func (h *ProductHandler) WalletBalanceHandler(c *fiber.Ctx) error {
	if h.reader == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "ledger gateway not configured"})
	}

	address := c.Params("address")
	bal, err := h.reader.AccountBalance(c.Context(), address)
	if err != nil {
		h.logger.Error("api.wallet_balance.failed",
			zap.String("address", address),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(WalletBalanceResponse{
		Address:  bal.Address,
		Balances: bal.Balances,
	})
}

// errorResponse maps domain errors to HTTP statuses.
func (h *ProductHandler) errorResponse(c *fiber.Ctx, err error) error {
	var (
		notFound     *product.NotFoundError
		validation   *product.ValidationError
		invalidState *product.InvalidStateError
		insufficient *product.InsufficientFundsError
	)

	switch {
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &validation),
		errors.As(err, &invalidState),
		errors.As(err, &insufficient):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
