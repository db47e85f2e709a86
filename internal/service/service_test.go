package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"retailpos/backend/internal/advisor"
	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/store/memory"
)

func newTestService() *Service {
	return New(memory.NewSeeded(), advisor.Offline{})
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: domain.RoleAdmin})
}

func cashierCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "cashier", Role: domain.RoleCashier})
}

func managerCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "manager", Role: domain.RoleManager})
}

func cart(productID string, priceCents int64, qty int) []domain.CartItem {
	return []domain.CartItem{{
		ProductID:      productID,
		Name:           "line for " + productID,
		Category:       "Test",
		PriceCents:     priceCents,
		CostPriceCents: priceCents / 2,
		Quantity:       qty,
	}}
}

func TestCheckoutTotalsApplyFlatTax(t *testing.T) {
	svc := newTestService()

	resp, err := svc.Checkout(cashierCtx(), domain.CheckoutRequest{
		Items:         cart("prd-espresso-beans", 5000, 2),
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	tx := resp.Transaction
	if tx.SubtotalCents != 10000 {
		t.Fatalf("expected subtotal 10000, got %d", tx.SubtotalCents)
	}
	if tx.TaxCents != 800 {
		t.Fatalf("expected tax 800, got %d", tx.TaxCents)
	}
	if tx.TotalCents != 10800 {
		t.Fatalf("expected total 10800, got %d", tx.TotalCents)
	}
}

func TestCheckoutDiscountFloorsTotalAtZero(t *testing.T) {
	svc := newTestService()

	resp, err := svc.Checkout(cashierCtx(), domain.CheckoutRequest{
		Items:         cart("prd-espresso-beans", 10000, 1),
		DiscountCents: 15000,
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if resp.Transaction.TotalCents != 0 {
		t.Fatalf("expected total 0, got %d", resp.Transaction.TotalCents)
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	svc := newTestService()

	_, err := svc.Checkout(cashierCtx(), domain.CheckoutRequest{
		PaymentMethod: domain.PaymentCash,
	})
	if !errors.Is(err, store.ErrInvalidTransaction) {
		t.Fatalf("expected ErrInvalidTransaction for empty cart, got %v", err)
	}
}

func TestCheckoutCreditWithoutCustomerLeavesStateUntouched(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	before, err := svc.repo.GetProductByID(ctx, "prd-espresso-beans")
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}

	_, err = svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         cart("prd-espresso-beans", 5000, 2),
		PaymentMethod: domain.PaymentCredit,
	})
	if !errors.Is(err, store.ErrInvalidTransaction) {
		t.Fatalf("expected ErrInvalidTransaction, got %v", err)
	}

	after, err := svc.repo.GetProductByID(ctx, "prd-espresso-beans")
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if after.Stock != before.Stock {
		t.Fatalf("expected stock unchanged, got %d -> %d", before.Stock, after.Stock)
	}

	transactions, err := svc.ListTransactions(ctx, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(transactions) != 0 {
		t.Fatalf("expected no transaction recorded, got %d", len(transactions))
	}
}

func TestCheckoutDecrementsStockExactly(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	before, _ := svc.repo.GetProductByID(ctx, "prd-notebook")

	_, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         cart("prd-notebook", 1800, 7),
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	after, _ := svc.repo.GetProductByID(ctx, "prd-notebook")
	if after.Stock != before.Stock-7 {
		t.Fatalf("expected stock %d, got %d", before.Stock-7, after.Stock)
	}
}

func TestCheckoutSkipsDeletedProductLines(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	items := append(cart("prd-notebook", 1800, 2), domain.CartItem{
		ProductID:  "prd-gone",
		Name:       "Deleted Product",
		PriceCents: 900,
		Quantity:   3,
	})
	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         items,
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	// Missing products still participate in totals; only the stock movement
	// is skipped.
	wantSubtotal := int64(1800*2 + 900*3)
	if resp.Transaction.SubtotalCents != wantSubtotal {
		t.Fatalf("expected subtotal %d, got %d", wantSubtotal, resp.Transaction.SubtotalCents)
	}
	if len(resp.Transaction.Items) != 2 {
		t.Fatalf("expected 2 snapshot lines, got %d", len(resp.Transaction.Items))
	}
}

func TestCheckoutCreditGrowsCustomerLedger(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         cart("prd-espresso-beans", 5000, 2),
		PaymentMethod: domain.PaymentCredit,
		CustomerID:    "cst-amara",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	customer, err := svc.GetCustomer(ctx, "cst-amara")
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	if customer.TotalSpentCents != resp.Transaction.TotalCents {
		t.Fatalf("expected total spent %d, got %d", resp.Transaction.TotalCents, customer.TotalSpentCents)
	}
	if customer.CreditBalanceCents != resp.Transaction.TotalCents {
		t.Fatalf("expected credit balance %d, got %d", resp.Transaction.TotalCents, customer.CreditBalanceCents)
	}
}

func TestCheckoutCashWithCustomerLeavesCreditAlone(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         cart("prd-espresso-beans", 5000, 1),
		PaymentMethod: domain.PaymentCash,
		CustomerID:    "cst-kofi",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	customer, err := svc.GetCustomer(ctx, "cst-kofi")
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	if customer.TotalSpentCents != resp.Transaction.TotalCents {
		t.Fatalf("expected total spent %d, got %d", resp.Transaction.TotalCents, customer.TotalSpentCents)
	}
	if customer.CreditBalanceCents != 0 {
		t.Fatalf("expected credit balance 0, got %d", customer.CreditBalanceCents)
	}
}

func TestSalesReturnRestocksAndReversesCredit(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         cart("prd-espresso-beans", 5000, 2),
		PaymentMethod: domain.PaymentCredit,
		CustomerID:    "cst-amara",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	stockBefore, _ := svc.repo.GetProductByID(ctx, "prd-espresso-beans")

	_, err = svc.ProcessReturn(ctx, domain.ReturnRequest{
		Type:        domain.ReturnTypeSales,
		ReferenceID: resp.Transaction.ID,
		AmountCents: 5000,
		Items: []domain.ReturnItem{
			{ProductID: "prd-espresso-beans", Name: "Espresso Beans 1kg", Quantity: 1, PriceCents: 5000},
		},
	})
	if err != nil {
		t.Fatalf("process return failed: %v", err)
	}

	stockAfter, _ := svc.repo.GetProductByID(ctx, "prd-espresso-beans")
	if stockAfter.Stock != stockBefore.Stock+1 {
		t.Fatalf("expected stock %d, got %d", stockBefore.Stock+1, stockAfter.Stock)
	}

	customer, _ := svc.GetCustomer(ctx, "cst-amara")
	want := resp.Transaction.TotalCents - 5000
	if customer.CreditBalanceCents != want {
		t.Fatalf("expected credit balance %d, got %d", want, customer.CreditBalanceCents)
	}
	if customer.TotalSpentCents != want {
		t.Fatalf("expected total spent %d, got %d", want, customer.TotalSpentCents)
	}
}

func TestSalesReturnReversalClampsAtZero(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         cart("prd-espresso-beans", 5000, 1),
		PaymentMethod: domain.PaymentCredit,
		CustomerID:    "cst-amara",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	_, err = svc.ProcessReturn(ctx, domain.ReturnRequest{
		Type:        domain.ReturnTypeSales,
		ReferenceID: resp.Transaction.ID,
		AmountCents: resp.Transaction.TotalCents + 99999,
		Items: []domain.ReturnItem{
			{ProductID: "prd-espresso-beans", Quantity: 1, PriceCents: 5000},
		},
	})
	if err != nil {
		t.Fatalf("process return failed: %v", err)
	}

	customer, _ := svc.GetCustomer(ctx, "cst-amara")
	if customer.CreditBalanceCents != 0 {
		t.Fatalf("expected credit balance clamped to 0, got %d", customer.CreditBalanceCents)
	}
	if customer.TotalSpentCents != 0 {
		t.Fatalf("expected total spent clamped to 0, got %d", customer.TotalSpentCents)
	}
}

func TestSalesReturnOnCashSaleSkipsLedger(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         cart("prd-espresso-beans", 5000, 1),
		PaymentMethod: domain.PaymentCash,
		CustomerID:    "cst-kofi",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	spent := resp.Transaction.TotalCents

	_, err = svc.ProcessReturn(ctx, domain.ReturnRequest{
		Type:        domain.ReturnTypeSales,
		ReferenceID: resp.Transaction.ID,
		AmountCents: 5000,
		Items: []domain.ReturnItem{
			{ProductID: "prd-espresso-beans", Quantity: 1, PriceCents: 5000},
		},
	})
	if err != nil {
		t.Fatalf("process return failed: %v", err)
	}

	customer, _ := svc.GetCustomer(ctx, "cst-kofi")
	if customer.TotalSpentCents != spent {
		t.Fatalf("expected total spent unchanged at %d, got %d", spent, customer.TotalSpentCents)
	}
}

func TestPurchaseReturnRemovesStock(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	before, _ := svc.repo.GetProductByID(ctx, "prd-olive-oil")

	_, err := svc.ProcessReturn(ctx, domain.ReturnRequest{
		Type:        domain.ReturnTypePurchase,
		ReferenceID: "pur-unknown-reference",
		AmountCents: 6400,
		Items: []domain.ReturnItem{
			{ProductID: "prd-olive-oil", Quantity: 5, PriceCents: 6400},
		},
	})
	if err != nil {
		t.Fatalf("process return failed: %v", err)
	}

	after, _ := svc.repo.GetProductByID(ctx, "prd-olive-oil")
	if after.Stock != before.Stock-5 {
		t.Fatalf("expected stock %d, got %d", before.Stock-5, after.Stock)
	}
}

func TestDoubleReturnAppliesTwice(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         cart("prd-espresso-beans", 5000, 2),
		PaymentMethod: domain.PaymentCredit,
		CustomerID:    "cst-amara",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	stockBefore, _ := svc.repo.GetProductByID(ctx, "prd-espresso-beans")

	req := domain.ReturnRequest{
		Type:        domain.ReturnTypeSales,
		ReferenceID: resp.Transaction.ID,
		AmountCents: 5000,
		Items: []domain.ReturnItem{
			{ProductID: "prd-espresso-beans", Quantity: 2, PriceCents: 5000},
		},
	}
	if _, err := svc.ProcessReturn(ctx, req); err != nil {
		t.Fatalf("first return failed: %v", err)
	}
	if _, err := svc.ProcessReturn(ctx, req); err != nil {
		t.Fatalf("second return failed: %v", err)
	}

	// Nothing tracks already-returned quantities, so the second pass restocks
	// and reverses again.
	stockAfter, _ := svc.repo.GetProductByID(ctx, "prd-espresso-beans")
	if stockAfter.Stock != stockBefore.Stock+4 {
		t.Fatalf("expected stock %d after double return, got %d", stockBefore.Stock+4, stockAfter.Stock)
	}

	customer, _ := svc.GetCustomer(ctx, "cst-amara")
	want := resp.Transaction.TotalCents - 10000
	if want < 0 {
		want = 0
	}
	if customer.CreditBalanceCents != want {
		t.Fatalf("expected credit balance %d, got %d", want, customer.CreditBalanceCents)
	}
}

func TestRepaymentClampsAtZero(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	_, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         cart("prd-espresso-beans", 10000, 1),
		PaymentMethod: domain.PaymentCredit,
		CustomerID:    "cst-efua",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	balance := mustCustomer(t, svc, "cst-efua").CreditBalanceCents

	updated, err := svc.RecordRepayment(ctx, "cst-efua", domain.RepaymentRequest{AmountCents: 5000})
	if err != nil {
		t.Fatalf("repayment failed: %v", err)
	}
	if updated.CreditBalanceCents != balance-5000 {
		t.Fatalf("expected balance %d, got %d", balance-5000, updated.CreditBalanceCents)
	}

	updated, err = svc.RecordRepayment(ctx, "cst-efua", domain.RepaymentRequest{AmountCents: balance * 2})
	if err != nil {
		t.Fatalf("overpayment failed: %v", err)
	}
	if updated.CreditBalanceCents != 0 {
		t.Fatalf("expected balance 0, got %d", updated.CreditBalanceCents)
	}
}

func TestRepaymentRejectsNonPositiveAmount(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	_, err := svc.RecordRepayment(ctx, "cst-amara", domain.RepaymentRequest{AmountCents: 0})
	if !errors.Is(err, store.ErrInvalidTransaction) {
		t.Fatalf("expected ErrInvalidTransaction, got %v", err)
	}
	_, err = svc.RecordRepayment(ctx, "cst-amara", domain.RepaymentRequest{AmountCents: -500})
	if !errors.Is(err, store.ErrInvalidTransaction) {
		t.Fatalf("expected ErrInvalidTransaction, got %v", err)
	}
}

func TestRepaymentLeavesTotalSpentAlone(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         cart("prd-espresso-beans", 10000, 1),
		PaymentMethod: domain.PaymentCredit,
		CustomerID:    "cst-efua",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := svc.RecordRepayment(ctx, "cst-efua", domain.RepaymentRequest{AmountCents: 4000}); err != nil {
		t.Fatalf("repayment failed: %v", err)
	}

	customer := mustCustomer(t, svc, "cst-efua")
	if customer.TotalSpentCents != resp.Transaction.TotalCents {
		t.Fatalf("expected total spent untouched at %d, got %d", resp.Transaction.TotalCents, customer.TotalSpentCents)
	}
}

func TestDeleteTransactionGatedBySettings(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         cart("prd-notebook", 1800, 1),
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	err = svc.DeleteTransaction(ctx, resp.Transaction.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected deletion to be disabled by default, got %v", err)
	}

	settings, _ := svc.GetSettings(ctx)
	settings.AllowTransactionDeletion = true
	if _, err := svc.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, resp.Transaction.ID); err != nil {
		t.Fatalf("delete transaction failed: %v", err)
	}
}

func TestReturnRequiresManagerRole(t *testing.T) {
	svc := newTestService()

	_, err := svc.ProcessReturn(cashierCtx(), domain.ReturnRequest{
		Type:        domain.ReturnTypeSales,
		ReferenceID: "txn-any",
		AmountCents: 100,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for cashier, got %v", err)
	}
}

func TestManagerSettingsAccessGate(t *testing.T) {
	svc := newTestService()

	settings, err := svc.GetSettings(managerCtx())
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	settings.BusinessName = "Renamed Store"

	_, err = svc.UpdateSettings(managerCtx(), settings)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected manager settings access denied by default, got %v", err)
	}

	settings.ManagerAccessToSettings = true
	if _, err := svc.UpdateSettings(adminCtx(), settings); err != nil {
		t.Fatalf("admin update settings failed: %v", err)
	}

	settings.BusinessName = "Renamed Again"
	if _, err := svc.UpdateSettings(managerCtx(), settings); err != nil {
		t.Fatalf("expected manager settings access after toggle, got %v", err)
	}
}

func TestPurchaseStatusTransitions(t *testing.T) {
	svc := newTestService()
	ctx := managerCtx()

	created, err := svc.AddPurchase(ctx, domain.PurchaseCreateRequest{
		Supplier:    "Harvest Wholesale",
		AmountCents: 52000,
	})
	if err != nil {
		t.Fatalf("add purchase failed: %v", err)
	}
	if created.Status != domain.PurchaseStatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}

	received, err := svc.UpdatePurchaseStatus(ctx, created.ID, domain.PurchaseStatusRequest{Status: domain.PurchaseStatusReceived})
	if err != nil {
		t.Fatalf("receive purchase failed: %v", err)
	}
	if received.Status != domain.PurchaseStatusReceived {
		t.Fatalf("expected received status, got %s", received.Status)
	}

	_, err = svc.UpdatePurchaseStatus(ctx, created.ID, domain.PurchaseStatusRequest{Status: domain.PurchaseStatusCancelled})
	if !errors.Is(err, store.ErrInvalidTransaction) {
		t.Fatalf("expected settled purchase to be immutable, got %v", err)
	}
}

func TestProfitAndLossComputation(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	_, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items: []domain.CartItem{{
			ProductID:      "prd-espresso-beans",
			Name:           "Espresso Beans 1kg",
			Category:       "Beverages",
			PriceCents:     10000,
			CostPriceCents: 6000,
			Quantity:       2,
		}},
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := svc.AddExpense(ctx, domain.ExpenseCreateRequest{
		Title:       "Shop rent",
		Category:    "Rent",
		AmountCents: 3000,
	}); err != nil {
		t.Fatalf("add expense failed: %v", err)
	}

	from := time.Now().UTC().Add(-24 * time.Hour)
	to := time.Now().UTC().Add(24 * time.Hour)
	pnl, err := svc.ProfitAndLoss(ctx, from, to)
	if err != nil {
		t.Fatalf("pnl failed: %v", err)
	}

	if pnl.Transactions != 1 {
		t.Fatalf("expected 1 transaction, got %d", pnl.Transactions)
	}
	if pnl.GrossProfitCents != 8000 {
		t.Fatalf("expected gross profit 8000, got %d", pnl.GrossProfitCents)
	}
	if pnl.ExpenseCents != 3000 {
		t.Fatalf("expected expenses 3000, got %d", pnl.ExpenseCents)
	}
	if pnl.NetProfitCents != 5000 {
		t.Fatalf("expected net profit 5000, got %d", pnl.NetProfitCents)
	}
	if len(pnl.ByCategory) == 0 || pnl.ByCategory[0].Category != "Beverages" {
		t.Fatalf("expected Beverages category breakdown, got %+v", pnl.ByCategory)
	}
}

func TestAdvisoryDegradesWhenOffline(t *testing.T) {
	svc := newTestService()

	_, err := svc.StoreInsights(adminCtx(), domain.InsightRequest{Query: "how are sales?"})
	if !errors.Is(err, advisor.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestAdvisoryRespectsSettingsToggle(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	settings, _ := svc.GetSettings(ctx)
	settings.EnableAIRecommendations = false
	if _, err := svc.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}

	_, err := svc.InventoryReport(ctx)
	if !errors.Is(err, advisor.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable when disabled, got %v", err)
	}
}

func TestStaffLifecycle(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	created, err := svc.CreateStaff(ctx, domain.StaffCreateRequest{
		Username: "New.Cashier",
		Name:     "New Cashier",
		Role:     domain.RoleCashier,
		Password: "longenough1",
	})
	if err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	if created.Username != "new.cashier" {
		t.Fatalf("expected lowercased username, got %s", created.Username)
	}

	inactive := false
	updated, err := svc.UpdateStaff(ctx, "new.cashier", domain.StaffUpdateRequest{Active: &inactive})
	if err != nil {
		t.Fatalf("update staff failed: %v", err)
	}
	if updated.Active {
		t.Fatalf("expected staff to be deactivated")
	}

	_, err = svc.UpdateStaff(ctx, "admin", domain.StaffUpdateRequest{Active: &inactive})
	if !errors.Is(err, store.ErrInvalidTransaction) {
		t.Fatalf("expected self-deactivation to be rejected, got %v", err)
	}
}

func TestTransactionsListedNewestFirst(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	first, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         cart("prd-notebook", 1800, 1),
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}
	second, err := svc.Checkout(ctx, domain.CheckoutRequest{
		Items:         cart("prd-gel-pens", 2400, 1),
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("second checkout failed: %v", err)
	}

	list, err := svc.ListTransactions(ctx, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(list))
	}
	if list[0].ID != second.Transaction.ID || list[1].ID != first.Transaction.ID {
		t.Fatalf("expected newest first ordering")
	}
}

func mustCustomer(t *testing.T, svc *Service, id string) domain.Customer {
	t.Helper()
	customer, err := svc.GetCustomer(context.Background(), id)
	if err != nil {
		t.Fatalf("get customer %s failed: %v", id, err)
	}
	return customer
}
