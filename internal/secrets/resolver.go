package secrets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/CyclrHQ/cyclr-backend/internal/ledger"
	pkgsecrets "github.com/CyclrHQ/cyclr-backend/pkg/secrets"
)

// OperatorResolver resolves the ledger gateway operator credentials from AWS
// Secrets Manager, caching them locally so rotation takes effect without a
// flood of API calls. When no provider is configured the static fallback
// (environment-supplied credentials) is used instead.
//
// Secret naming convention: {env}/ledger-gateway
// Secret JSON format:       {"account": "r...", "api_key": "..."}
type OperatorResolver struct {
	logger   *zap.Logger
	env      string
	provider pkgsecrets.Provider
	cache    *pkgsecrets.Cache[ledger.Credentials]
	fallback *ledger.Credentials
}

// NewOperatorResolver constructs an operator credentials resolver.
func NewOperatorResolver(
	logger *zap.Logger,
	env string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[ledger.Credentials],
	fallback *ledger.Credentials,
) *OperatorResolver {
	return &OperatorResolver{
		logger:   logger,
		env:      env,
		provider: provider,
		cache:    cache,
		fallback: fallback,
	}
}

// cacheKey builds the in-memory cache key.
func (r *OperatorResolver) cacheKey() string {
	return strings.ToLower(r.env + "|ledger-gateway")
}

// secretName builds the AWS Secrets Manager key.
func (r *OperatorResolver) secretName() string {
	return strings.ToLower(r.env + "/ledger-gateway")
}

// Resolve returns the operator credentials, from cache when fresh.
func (r *OperatorResolver) Resolve(ctx context.Context) (*ledger.Credentials, error) {
	if r.provider == nil {
		if r.fallback == nil || r.fallback.Account == "" || r.fallback.APIKey == "" {
			return nil, fmt.Errorf("no secrets provider and no operator credentials configured")
		}
		return r.fallback, nil
	}

	key := r.cacheKey()
	if creds, ok := r.cache.Get(key); ok {
		return &creds, nil
	}

	secretName := r.secretName()
	secretMap, err := r.provider.GetSecret(ctx, secretName)
	if err != nil {
		r.logger.Warn("aws.secret_fetch_failed",
			zap.String("key", secretName),
			zap.Error(err))
		return nil, fmt.Errorf("resolve operator credentials: %w", err)
	}

	creds, err := parseCredentials(secretMap)
	if err != nil {
		return nil, fmt.Errorf("parse secret %q: %w", secretName, err)
	}

	r.cache.Put(key, creds)

	r.logger.Info("aws.operator_credentials_resolved",
		zap.String("env", r.env),
		zap.String("account", creds.Account),
	)
	return &creds, nil
}

// Bust drops the cached credentials, forcing a refetch on the next call.
func (r *OperatorResolver) Bust() {
	r.cache.Bust(r.cacheKey())
}

// parseCredentials extracts operator credentials from the raw secret map.
func parseCredentials(m map[string]string) (ledger.Credentials, error) {
	creds := ledger.Credentials{
		Account: m["account"],
		APIKey:  m["api_key"],
	}
	if creds.Account == "" {
		return ledger.Credentials{}, fmt.Errorf("missing required field 'account'")
	}
	if creds.APIKey == "" {
		return ledger.Credentials{}, fmt.Errorf("missing required field 'api_key'")
	}
	return creds, nil
}
