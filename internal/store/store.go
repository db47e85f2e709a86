package store

import (
	"context"
	"errors"
	"time"

	"retailpos/backend/internal/domain"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrConflict           = errors.New("conflict")
)

// StockAdjustment is a signed stock delta keyed by product id.
type StockAdjustment struct {
	ProductID string
	Delta     int
}

// CustomerSettlement carries the ledger side effects of a checkout or a
// sales return, applied atomically with the stock movement.
type CustomerSettlement struct {
	CustomerID      string
	SpentDelta      int64
	CreditDelta     int64
	ClampAtZero     bool
	UpdateLastVisit bool
	VisitAt         time.Time
}

type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, adjustments []StockAdjustment) error

	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	ApplyCustomerSettlement(ctx context.Context, settlement CustomerSettlement) (*domain.Customer, error)

	ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	ListReturns(ctx context.Context, limit int) ([]domain.Return, error)
	CreateReturn(ctx context.Context, ret domain.Return) (*domain.Return, error)

	ListExpenses(ctx context.Context, from time.Time, to time.Time) ([]domain.Expense, error)
	CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
	ListExpenseCategories(ctx context.Context) ([]string, error)
	AddExpenseCategory(ctx context.Context, category string) error

	ListPurchases(ctx context.Context, status string) ([]domain.Purchase, error)
	GetPurchaseByID(ctx context.Context, id string) (*domain.Purchase, error)
	CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error)
	UpdatePurchaseStatus(ctx context.Context, id string, status string) (*domain.Purchase, error)

	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, task domain.Task) (*domain.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status string) (*domain.Task, error)

	GetSettings(ctx context.Context) (domain.Settings, error)
	UpdateSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	GetUserByUsername(ctx context.Context, username string) (*domain.UserAccount, error)
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUser(ctx context.Context, user domain.UserAccount) error

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)
}
