// Package settlement holds the pure money math of the system: sale totals,
// customer ledger deltas, and stock movements. Nothing here touches storage.
package settlement

import (
	"math"

	"retailpos/backend/internal/domain"
)

// TaxRatePercent is the flat sales tax applied to every sale.
const TaxRatePercent = 8.0

type Totals struct {
	SubtotalCents int64
	TaxCents      int64
	DiscountCents int64
	TotalCents    int64
}

// ComputeTotals prices a cart. Tax applies to the pre-discount subtotal and
// the discount is a flat amount; the grand total never goes below zero.
func ComputeTotals(items []domain.CartItem, discountCents int64) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.PriceCents * int64(item.Quantity)
	}
	tax := int64(math.Round(float64(subtotal) * TaxRatePercent / 100))
	total := subtotal + tax - discountCents
	if total < 0 {
		total = 0
	}
	return Totals{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		DiscountCents: discountCents,
		TotalCents:    total,
	}
}

// StockDeltas maps cart lines to signed stock adjustments. direction is -1
// for a sale and +1 for a sales return; purchase returns pass -1 as well
// since returned purchase stock leaves the shelf.
func StockDeltas(items []domain.CartItem, direction int) map[string]int {
	deltas := make(map[string]int, len(items))
	for _, item := range items {
		deltas[item.ProductID] += direction * item.Quantity
	}
	return deltas
}

// ReturnStockDeltas maps return lines to signed stock adjustments by return
// type: sales returns restock, purchase returns pull stock back off the shelf.
func ReturnStockDeltas(items []domain.ReturnItem, returnType string) map[string]int {
	direction := 1
	if returnType == domain.ReturnTypePurchase {
		direction = -1
	}
	deltas := make(map[string]int, len(items))
	for _, item := range items {
		deltas[item.ProductID] += direction * item.Quantity
	}
	return deltas
}

// ClampSubtract lowers balance by amount, flooring at zero. Used for both
// credit repayments and the financial reversal of a credit sale.
func ClampSubtract(balance, amount int64) int64 {
	if amount >= balance {
		return 0
	}
	return balance - amount
}

// CreditReversalApplies reports whether a return triggers the customer
// ledger reversal: only sales returns against a credit-paid transaction
// that carried a customer qualify.
func CreditReversalApplies(returnType string, original *domain.Transaction) bool {
	if returnType != domain.ReturnTypeSales || original == nil {
		return false
	}
	return original.PaymentMethod == domain.PaymentCredit && original.CustomerID != ""
}
