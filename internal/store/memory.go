package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/CyclrHQ/cyclr-backend/internal/product"
)

// MemoryRegistry keeps products in process memory. Used for local
// development and tests; state is lost on restart.
type MemoryRegistry struct {
	mu       sync.RWMutex
	products map[string]json.RawMessage
}

func NewMemory() *MemoryRegistry {
	return &MemoryRegistry{products: make(map[string]json.RawMessage)}
}

func (m *MemoryRegistry) Save(ctx context.Context, p *product.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.products[p.ID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryRegistry) Get(ctx context.Context, id string) (*product.Product, error) {
	m.mu.RLock()
	data, ok := m.products[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var p product.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *MemoryRegistry) List(ctx context.Context) ([]*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*product.Product, 0, len(m.products))
	for _, data := range m.products {
		var p product.Product
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRegistry) ListByStatus(ctx context.Context, status product.Status) ([]*product.Product, error) {
	all, err := m.List(ctx)
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

func (m *MemoryRegistry) HealthCheck(ctx context.Context) error { return nil }

func (m *MemoryRegistry) Close() error { return nil }
