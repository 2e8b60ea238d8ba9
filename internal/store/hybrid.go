package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/CyclrHQ/cyclr-backend/internal/product"
)

const (
	productKeyPrefix = "product:"
	productIDSet     = "product:ids"
)

// HybridRegistry is the production registry: Redis holds the serving copy
// of every product, Postgres keeps a best-effort durable mirror. Reads are
// served from Redis only; a Postgres outage degrades durability, not the
// API.
type HybridRegistry struct {
	redis  *redis.Client
	PG     *pgxpool.Pool
	logger *zap.Logger
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewHybrid creates a Redis-first, Postgres-backed registry.
func NewHybrid(redisAddr, redisPass string, redisDB int, pgURL string, pgPoolConfig PGPoolConfig, logger *zap.Logger) (*HybridRegistry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPass,
		DB:       redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	var pgPool *pgxpool.Pool
	if pgURL != "" {
		cfg, err := pgxpool.ParseConfig(pgURL)
		if err != nil {
			return nil, fmt.Errorf("invalid pg config: %w", err)
		}
		if pgPoolConfig.MaxConns > 0 {
			cfg.MaxConns = pgPoolConfig.MaxConns
		}
		if pgPoolConfig.MinConns > 0 {
			cfg.MinConns = pgPoolConfig.MinConns
		}
		if pgPoolConfig.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
		}
		if pgPoolConfig.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
		}
		if pgPoolConfig.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
		}
		pgPool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	return &HybridRegistry{redis: rdb, PG: pgPool, logger: logger}, nil
}

// Save writes the product to Redis, then mirrors it to Postgres. The mirror
// is best-effort; a failed upsert is logged but does not fail the save.
func (s *HybridRegistry) Save(ctx context.Context, p *product.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, productKeyPrefix+p.ID, data, 0)
	pipe.SAdd(ctx, productIDSet, p.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save failed: %w", err)
	}

	s.mirrorToPG(ctx, p, data)
	return nil
}

// mirrorToPG upserts the durable copy.
func (s *HybridRegistry) mirrorToPG(ctx context.Context, p *product.Product, doc []byte) {
	if s.PG == nil {
		return
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO cyclr.products (id, serial_number, status, created_at, doc, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id)
		DO UPDATE SET
			status = EXCLUDED.status,
			doc = EXCLUDED.doc,
			updated_at = NOW();
	`, p.ID, p.SerialNumber, string(p.Status), p.CreatedAt, doc)
	if err != nil {
		s.logger.Error("store.pg.upsert_product_failed",
			zap.String("product_id", p.ID),
			zap.Error(err))
	}
}

func (s *HybridRegistry) Get(ctx context.Context, id string) (*product.Product, error) {
	data, err := s.redis.Get(ctx, productKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var p product.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *HybridRegistry) List(ctx context.Context) ([]*product.Product, error) {
	ids, err := s.redis.SMembers(ctx, productIDSet).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*product.Product{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKeyPrefix + id
	}
	vals, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*product.Product, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue // ID set member without a value key
		}
		var p product.Product
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *HybridRegistry) ListByStatus(ctx context.Context, status product.Status) ([]*product.Product, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*product.Product, 0, len(all))
	for _, p := range all {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *HybridRegistry) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridRegistry) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
