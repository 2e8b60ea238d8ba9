package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/CyclrHQ/cyclr-backend/internal/product"
)

func TestMemory_SaveGetList(t *testing.T) {
	ctx := context.Background()
	reg := NewMemory()

	base := time.Now().UTC()
	p1 := testProduct("m1", product.StatusRegistered)
	p1.CreatedAt = base
	p2 := testProduct("m2", product.StatusSold)
	p2.CreatedAt = base.Add(time.Minute)

	if err := reg.Save(ctx, p1); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := reg.Save(ctx, p2); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := reg.Get(ctx, "m1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.ID != "m1" {
		t.Fatalf("expected m1, got %+v", got)
	}

	all, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != "m1" || all[1].ID != "m2" {
		t.Errorf("unexpected list contents: %+v", all)
	}

	sold, err := reg.ListByStatus(ctx, product.StatusSold)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(sold) != 1 || sold[0].ID != "m2" {
		t.Errorf("expected only m2 sold, got %+v", sold)
	}
}

func TestMemory_GetMiss(t *testing.T) {
	reg := NewMemory()

	got, err := reg.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown ID, got %+v", got)
	}
}

func TestMemory_SaveCopies(t *testing.T) {
	ctx := context.Background()
	reg := NewMemory()

	p := testProduct("m1", product.StatusRegistered)
	_ = reg.Save(ctx, p)

	// Mutating the saved pointer must not leak into the registry.
	p.Status = product.StatusRecalled

	got, _ := reg.Get(ctx, "m1")
	if got.Status != product.StatusRegistered {
		t.Errorf("registry copy mutated externally: %s", got.Status)
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	reg := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.Save(ctx, testProduct("shared", product.StatusRegistered))
			_, _ = reg.Get(ctx, "shared")
			_, _ = reg.List(ctx)
		}()
	}
	wg.Wait()

	got, err := reg.Get(ctx, "shared")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected product after concurrent saves")
	}
}
