// Package advisor wraps the generative model behind the store assistant
// features: free-text insights, structured inventory reports, profit
// commentary, task suggestions and product image generation. The rest of the
// system only sees the Advisor interface; when no API key is configured the
// offline implementation degrades every call to ErrUnavailable without
// touching any sale or ledger state.
package advisor

import (
	"context"
	"errors"

	"retailpos/backend/internal/domain"
)

// ErrUnavailable means the upstream model could not be reached or is not
// configured. Callers surface it as a service-unavailable condition.
var ErrUnavailable = errors.New("advisor unavailable")

type Advisor interface {
	StoreInsights(ctx context.Context, query string, products []domain.Product, recent []domain.Transaction) (string, error)
	InventoryReport(ctx context.Context, products []domain.Product) (domain.InventoryReport, error)
	ProfitAnalysis(ctx context.Context, pnl domain.ProfitAndLoss) (string, error)
	SuggestTasks(ctx context.Context, products []domain.Product, pendingPurchases int) ([]domain.SuggestedTask, error)
	GenerateProductImage(ctx context.Context, prompt string, aspectRatio string) (string, error)
}

// Offline is the no-key fallback.
type Offline struct{}

func (Offline) StoreInsights(_ context.Context, _ string, _ []domain.Product, _ []domain.Transaction) (string, error) {
	return "", ErrUnavailable
}

func (Offline) InventoryReport(_ context.Context, _ []domain.Product) (domain.InventoryReport, error) {
	return domain.InventoryReport{}, ErrUnavailable
}

func (Offline) ProfitAnalysis(_ context.Context, _ domain.ProfitAndLoss) (string, error) {
	return "", ErrUnavailable
}

func (Offline) SuggestTasks(_ context.Context, _ []domain.Product, _ int) ([]domain.SuggestedTask, error) {
	return nil, ErrUnavailable
}

func (Offline) GenerateProductImage(_ context.Context, _ string, _ string) (string, error) {
	return "", ErrUnavailable
}
