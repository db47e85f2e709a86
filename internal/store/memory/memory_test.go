package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/store"
)

func TestAdjustStockSkipsMissingProducts(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	before, err := s.GetProductByID(ctx, "prd-notebook")
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}

	err = s.AdjustStock(ctx, []store.StockAdjustment{
		{ProductID: "prd-notebook", Delta: -3},
		{ProductID: "prd-deleted-long-ago", Delta: -99},
	})
	if err != nil {
		t.Fatalf("adjust stock failed: %v", err)
	}

	after, err := s.GetProductByID(ctx, "prd-notebook")
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if after.Stock != before.Stock-3 {
		t.Fatalf("expected stock %d, got %d", before.Stock-3, after.Stock)
	}
}

func TestAdjustStockAllowsNegative(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	err := s.AdjustStock(ctx, []store.StockAdjustment{
		{ProductID: "prd-paper-towel", Delta: -1000},
	})
	if err != nil {
		t.Fatalf("adjust stock failed: %v", err)
	}

	product, err := s.GetProductByID(ctx, "prd-paper-towel")
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if product.Stock >= 0 {
		t.Fatalf("expected negative stock, got %d", product.Stock)
	}
}

func TestSettlementClampsAtZero(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	_, err := s.ApplyCustomerSettlement(ctx, store.CustomerSettlement{
		CustomerID:  "cst-amara",
		SpentDelta:  12000,
		CreditDelta: 12000,
	})
	if err != nil {
		t.Fatalf("apply settlement failed: %v", err)
	}

	customer, err := s.ApplyCustomerSettlement(ctx, store.CustomerSettlement{
		CustomerID:  "cst-amara",
		SpentDelta:  -20000,
		CreditDelta: -20000,
		ClampAtZero: true,
	})
	if err != nil {
		t.Fatalf("apply settlement failed: %v", err)
	}
	if customer.CreditBalanceCents != 0 {
		t.Fatalf("expected credit balance 0, got %d", customer.CreditBalanceCents)
	}
	if customer.TotalSpentCents != 0 {
		t.Fatalf("expected total spent 0, got %d", customer.TotalSpentCents)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewPersistent(dir)
	if err != nil {
		t.Fatalf("new persistent store failed: %v", err)
	}

	created, err := first.CreateProduct(ctx, domain.Product{
		Name:       "Sparkling Water 1L",
		Category:   "Beverages",
		SKU:        "BEV-SPW-1L",
		PriceCents: 1500,
		Stock:      42,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	second, err := NewPersistent(dir)
	if err != nil {
		t.Fatalf("reopen persistent store failed: %v", err)
	}
	reloaded, err := second.GetProductByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("expected product to survive reopen: %v", err)
	}
	if reloaded.Stock != 42 {
		t.Fatalf("expected stock 42 after reload, got %d", reloaded.Stock)
	}
}

func TestCorruptSnapshotFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pos_products.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt snapshot failed: %v", err)
	}

	s, err := NewPersistent(dir)
	if err != nil {
		t.Fatalf("new persistent store failed: %v", err)
	}

	products, err := s.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if len(products) == 0 {
		t.Fatalf("expected seeded catalog when snapshot is unreadable")
	}
}
