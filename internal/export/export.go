// Package export builds xlsx workbooks for the catalog and report screens.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"retailpos/backend/internal/domain"
)

const sheetName = "Sheet1"

// WriteCatalog writes the product catalog as a spreadsheet. Prices are in
// major currency units so the file is readable without a converter.
func WriteCatalog(w io.Writer, products []domain.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"ID", "Name", "Category", "Brand", "SKU", "Price", "Cost Price", "Stock"}
	if err := writeHeaderRow(f, headers); err != nil {
		return err
	}

	for i, p := range products {
		row := i + 2
		values := []any{p.ID, p.Name, p.Category, p.Brand, p.SKU, cents(p.PriceCents), cents(p.CostPriceCents), p.Stock}
		if err := writeRow(f, row, values); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// WriteTransactions writes the sales history, one row per transaction.
func WriteTransactions(w io.Writer, transactions []domain.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"ID", "Date", "Items", "Subtotal", "Tax", "Discount", "Total", "Payment", "Customer", "Cashier"}
	if err := writeHeaderRow(f, headers); err != nil {
		return err
	}

	for i, tx := range transactions {
		itemCount := 0
		for _, item := range tx.Items {
			itemCount += item.Quantity
		}
		row := i + 2
		values := []any{
			tx.ID,
			tx.Timestamp.Format("2006-01-02 15:04"),
			itemCount,
			cents(tx.SubtotalCents),
			cents(tx.TaxCents),
			cents(tx.DiscountCents),
			cents(tx.TotalCents),
			tx.PaymentMethod,
			tx.CustomerID,
			tx.CashierName,
		}
		if err := writeRow(f, row, values); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// WriteProfitAndLoss writes the P&L summary followed by the per-category
// breakdown.
func WriteProfitAndLoss(w io.Writer, pnl domain.ProfitAndLoss) error {
	f := excelize.NewFile()
	defer f.Close()

	summary := [][]any{
		{"Profit & Loss", fmt.Sprintf("%s to %s", pnl.From, pnl.To)},
		{"Revenue", cents(pnl.RevenueCents)},
		{"Gross Profit", cents(pnl.GrossProfitCents)},
		{"Expenses", cents(pnl.ExpenseCents)},
		{"Purchases", cents(pnl.PurchaseCents)},
		{"Net Profit", cents(pnl.NetProfitCents)},
		{"Transactions", pnl.Transactions},
	}
	for i, values := range summary {
		if err := writeRow(f, i+1, values); err != nil {
			return err
		}
	}

	headerRow := len(summary) + 2
	if err := writeRow(f, headerRow, []any{"Category", "Revenue", "Profit"}); err != nil {
		return err
	}
	for i, cat := range pnl.ByCategory {
		values := []any{cat.Category, cents(cat.RevenueCents), cents(cat.ProfitCents)}
		if err := writeRow(f, headerRow+1+i, values); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeHeaderRow(f *excelize.File, headers []string) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	return writeRow(f, 1, values)
}

func writeRow(f *excelize.File, row int, values []any) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func cents(v int64) float64 {
	return float64(v) / 100
}
