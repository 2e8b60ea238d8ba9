package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/CyclrHQ/cyclr-backend/internal/api"
	"github.com/CyclrHQ/cyclr-backend/internal/ledger"
	"github.com/CyclrHQ/cyclr-backend/internal/product"
	"github.com/CyclrHQ/cyclr-backend/internal/publisher"
	"github.com/CyclrHQ/cyclr-backend/internal/rate"
	internalsecrets "github.com/CyclrHQ/cyclr-backend/internal/secrets"
	"github.com/CyclrHQ/cyclr-backend/internal/store"
	"github.com/CyclrHQ/cyclr-backend/pkg/config"
	"github.com/CyclrHQ/cyclr-backend/pkg/logger"
	"github.com/CyclrHQ/cyclr-backend/pkg/secrets"
	"github.com/CyclrHQ/cyclr-backend/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	logg := logger.S()
	logg.Info("starting [cyclr-backend]...")
	if cfg.DatabaseURL != "" {
		logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))
	}

	// --- Operator credentials resolver (secrets cached in-memory) ---
	var awsProvider secrets.Provider
	if cfg.UseAWSSecrets {
		p, err := secrets.NewAWSProvider(cfg.AWSRegion)
		if err != nil {
			logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
		}
		awsProvider = p
	}

	credsCache := secrets.NewCache[ledger.Credentials](cfg.CacheTTL)
	stopCleaner := make(chan struct{})
	go credsCache.StartCleaner(cfg.CleanupFreq, stopCleaner)

	var fallback *ledger.Credentials
	if cfg.OperatorAccount != "" {
		fallback = &ledger.Credentials{
			Account: cfg.OperatorAccount,
			APIKey:  cfg.OperatorAPIKey,
		}
	}

	resolver := internalsecrets.NewOperatorResolver(
		logg.Desugar(),
		cfg.Env,
		awsProvider,
		credsCache,
		fallback,
	)
	if _, err := resolver.Resolve(ctx); err != nil {
		logg.Warnw("operator credentials not resolvable at startup", "error", err)
	}

	// --- Connect to NATS ---
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		logg.Fatalw("failed to connect to NATS", "error", err)
	}

	// --- Publisher ---
	pub, err := publisher.New(nc, cfg.EventSubject, cfg.ServiceName)
	if err != nil {
		logg.Fatalw("failed to init publisher", "error", err)
	}

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: 10,
		Burst:             20,
		Cooldown:          1 * time.Second,
	})

	// --- Product registry ---
	var registry product.Registry
	switch cfg.StoreBackend {
	case "hybrid":
		registry, err = store.NewHybrid(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.DatabaseURL, store.PGPoolConfig{
			MaxConns:          int32(cfg.PGMaxConns),
			MinConns:          int32(cfg.PGMinConns),
			MaxConnLifetime:   cfg.PGMaxConnLifetime,
			MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
			HealthCheckPeriod: cfg.PGHealthCheckPeriod,
		}, logg.Desugar())
		if err != nil {
			logg.Fatalw("failed to init store", "error", err)
		}
	default:
		registry = store.NewMemory()
	}

	// --- Ledger gateway HTTP client ---
	gateway := ledger.NewClient(logg.Desugar(), rateMgr, cfg.GatewayBaseURL, cfg.GatewayTimeout, resolver.Resolve)

	// --- Lifecycle service ---
	svc := product.NewService(logg.Desugar(), registry, gateway, pub, product.Wallets{
		Cyclr:   cfg.CyclrWallet,
		EcoFund: cfg.EcoFundWallet,
	})

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	handler := api.NewProductHandler(logg.Desugar(), svc, gateway)
	api.RegisterRoutes(app, nc, registry, handler)

	// Start HTTP server
	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[cyclr-backend] running",
		"nats", cfg.NATSURL,
		"env", cfg.Env,
		"store", cfg.StoreBackend,
		"gateway", cfg.GatewayBaseURL)

	<-ctx.Done()
	logg.Info("shutting down [cyclr-backend]...")

	close(stopCleaner)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if err := nc.Drain(); err != nil {
		logg.Warnw("nats.drain_failed", "error", err)
	}
	if err := registry.Close(); err != nil {
		logg.Warnw("store.close_failed", "error", err)
	}
}
