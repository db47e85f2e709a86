package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/store"
)

func TestSettlementAndStockAdjustments(t *testing.T) {
	databaseURL := os.Getenv("RETAILPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set RETAILPOS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	productID := fmt.Sprintf("prd-it-%d", stamp)
	customerID := fmt.Sprintf("cst-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, customerID)
	})

	if _, err := s.CreateProduct(ctx, domain.Product{
		ID:             productID,
		Name:           "Integration Beans",
		Category:       "Beverages",
		PriceCents:     12000,
		CostPriceCents: 7000,
		Stock:          10,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if _, err := s.CreateCustomer(ctx, domain.Customer{
		ID:   customerID,
		Name: "Integration Customer",
	}); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	// Missing product ids are skipped, existing ones move.
	if err := s.AdjustStock(ctx, []store.StockAdjustment{
		{ProductID: productID, Delta: -3},
		{ProductID: "prd-it-missing", Delta: -99},
	}); err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	p, err := s.GetProductByID(ctx, productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Stock != 7 {
		t.Fatalf("expected stock 7 after adjustment, got %d", p.Stock)
	}

	visit := time.Now().UTC()
	c, err := s.ApplyCustomerSettlement(ctx, store.CustomerSettlement{
		CustomerID:      customerID,
		SpentDelta:      36000,
		CreditDelta:     36000,
		UpdateLastVisit: true,
		VisitAt:         visit,
	})
	if err != nil {
		t.Fatalf("apply settlement: %v", err)
	}
	if c.TotalSpentCents != 36000 || c.CreditBalanceCents != 36000 {
		t.Fatalf("expected balances 36000/36000, got %d/%d", c.TotalSpentCents, c.CreditBalanceCents)
	}

	// Reversal larger than the balance clamps at zero.
	c, err = s.ApplyCustomerSettlement(ctx, store.CustomerSettlement{
		CustomerID:  customerID,
		SpentDelta:  -50000,
		CreditDelta: -50000,
		ClampAtZero: true,
	})
	if err != nil {
		t.Fatalf("apply reversal: %v", err)
	}
	if c.TotalSpentCents != 0 || c.CreditBalanceCents != 0 {
		t.Fatalf("expected clamped balances 0/0, got %d/%d", c.TotalSpentCents, c.CreditBalanceCents)
	}

	if _, err := s.ApplyCustomerSettlement(ctx, store.CustomerSettlement{
		CustomerID: "cst-it-missing",
		SpentDelta: 100,
	}); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing customer, got %v", err)
	}
}
