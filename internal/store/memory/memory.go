package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/xid"
)

// Store is the in-memory repository. All collections live behind a single
// RWMutex; reads hand out copies so callers never alias internal state.
// When snapshotDir is set, each mutated collection is rewritten to a JSON
// file after the mutation (best effort, failures are logged and swallowed).
type Store struct {
	mu                sync.RWMutex
	products          map[string]domain.Product
	customers         map[string]domain.Customer
	transactions      []domain.Transaction
	returns           []domain.Return
	expenses          []domain.Expense
	expenseCategories []string
	purchases         map[string]domain.Purchase
	tasks             map[string]domain.Task
	settings          domain.Settings
	usersByUsername   map[string]domain.UserAccount
	auditLogs         []domain.AuditLog
	snapshotDir       string
}

// Snapshot file names, one JSON document per collection.
const (
	snapProducts     = "pos_products.json"
	snapCustomers    = "pos_customers.json"
	snapTransactions = "pos_transactions.json"
	snapReturns      = "pos_returns.json"
	snapExpenses     = "pos_expenses.json"
	snapExpenseCats  = "pos_expense_categories.json"
	snapPurchases    = "pos_purchases.json"
	snapTasks        = "pos_tasks.json"
	snapSettings     = "pos_settings.json"
)

var defaultExpenseCategories = []string{
	"Rent", "Utilities", "Salaries", "Marketing", "Maintenance", "Transport", "Other",
}

func defaultSettings() domain.Settings {
	return domain.Settings{
		BusinessName:               "GeminiPOS Pro",
		BaseCurrency:               "GHS",
		Language:                   "en",
		ManagerAccessToSettings:    false,
		ManagerAccessToReports:     true,
		ManagerAccessToStaff:       false,
		ManagerAccessToExpenses:    true,
		CashierAccessToInventory:   false,
		AllowTransactionDeletion:   false,
		LowStockThreshold:          10,
		EnableAIRecommendations:    true,
		AutoBackup:                 true,
		NotifyOnLowStock:           true,
		NotifyOnCreditLimit:        true,
		CreditLimitThresholdCents:  50000,
		DefaultPaymentMethod:       domain.PaymentCash,
		RequireCustomerForCredit:   true,
		ShowCostPricesToManagement: true,
	}
}

// seedUsers builds the initial user accounts for dev/demo mode. Credentials
// come from SEED_ADMIN_PASSWORD / SEED_MANAGER_PASSWORD / SEED_CASHIER_PASSWORD,
// falling back to hardcoded dev defaults with a warning. These seeds are
// never used in production (the backend uses PostgreSQL when DATABASE_URL is
// set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	managerPwd := envOr("SEED_MANAGER_PASSWORD", "manager123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD, SEED_MANAGER_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		name     string
		password string
		role     string
	}{
		{"admin", "Store Owner", adminPwd, domain.RoleAdmin},
		{"manager", "Floor Manager", managerPwd, domain.RoleManager},
		{"cashier", "Front Cashier", cashierPwd, domain.RoleCashier},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Name:      u.name,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	now := time.Now().UTC()
	products := []domain.Product{
		{ID: "prd-espresso-beans", Name: "Espresso Beans 1kg", Category: "Beverages", Brand: "Aroma", SKU: "BEV-ESP-1K", PriceCents: 14500, CostPriceCents: 9000, Stock: 40},
		{ID: "prd-green-tea", Name: "Green Tea 50 Bags", Category: "Beverages", Brand: "Leaf&Co", SKU: "BEV-GRT-50", PriceCents: 6200, CostPriceCents: 3500, Stock: 55},
		{ID: "prd-olive-oil", Name: "Olive Oil 750ml", Category: "Grocery", Brand: "Oliva", SKU: "GRO-OIL-750", PriceCents: 9800, CostPriceCents: 6400, Stock: 30},
		{ID: "prd-basmati-rice", Name: "Basmati Rice 5kg", Category: "Grocery", Brand: "Harvest", SKU: "GRO-RIC-5K", PriceCents: 12400, CostPriceCents: 8700, Stock: 24},
		{ID: "prd-dark-choc", Name: "Dark Chocolate Bar", Category: "Snacks", Brand: "Cocoa", SKU: "SNK-CHO-01", PriceCents: 2800, CostPriceCents: 1500, Stock: 90},
		{ID: "prd-trail-mix", Name: "Trail Mix 400g", Category: "Snacks", Brand: "Nutty", SKU: "SNK-TRM-400", PriceCents: 4500, CostPriceCents: 2600, Stock: 62},
		{ID: "prd-hand-soap", Name: "Hand Soap 500ml", Category: "Household", Brand: "Pure", SKU: "HSH-SOP-500", PriceCents: 2100, CostPriceCents: 1100, Stock: 75},
		{ID: "prd-paper-towel", Name: "Paper Towels 6pk", Category: "Household", Brand: "Soft", SKU: "HSH-PTW-06", PriceCents: 5400, CostPriceCents: 3300, Stock: 18},
		{ID: "prd-notebook", Name: "A5 Notebook", Category: "Stationery", Brand: "Scribe", SKU: "STA-NBK-A5", PriceCents: 1800, CostPriceCents: 800, Stock: 120},
		{ID: "prd-gel-pens", Name: "Gel Pens 10pk", Category: "Stationery", Brand: "Scribe", SKU: "STA-PEN-10", PriceCents: 2400, CostPriceCents: 1200, Stock: 85},
	}
	customers := []domain.Customer{
		{ID: "cst-amara", Name: "Amara Mensah", Email: "amara@example.com", Phone: "+233201112233", TotalSpentCents: 0, CreditBalanceCents: 0, LastVisit: now},
		{ID: "cst-kofi", Name: "Kofi Boateng", Email: "kofi@example.com", Phone: "+233209998877", TotalSpentCents: 0, CreditBalanceCents: 0, LastVisit: now},
		{ID: "cst-efua", Name: "Efua Armah", Phone: "+233244556677", TotalSpentCents: 0, CreditBalanceCents: 0, LastVisit: now},
	}

	productMap := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}
	customerMap := make(map[string]domain.Customer, len(customers))
	for _, c := range customers {
		customerMap[c.ID] = c
	}

	return &Store{
		products:          productMap,
		customers:         customerMap,
		transactions:      make([]domain.Transaction, 0, 128),
		returns:           make([]domain.Return, 0, 32),
		expenses:          make([]domain.Expense, 0, 32),
		expenseCategories: slices.Clone(defaultExpenseCategories),
		purchases:         make(map[string]domain.Purchase),
		tasks:             make(map[string]domain.Task),
		settings:          defaultSettings(),
		usersByUsername:   seedUsers(),
		auditLogs:         make([]domain.AuditLog, 0, 128),
	}
}

// NewPersistent returns a seeded store that additionally snapshots each
// collection to JSON files under dir and reloads them at startup. A missing
// or unreadable snapshot is not an error: the collection keeps its seeded
// default, mirroring a fresh install.
func NewPersistent(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	s := NewSeeded()
	s.snapshotDir = dir
	s.loadSnapshots()
	return s, nil
}

func (s *Store) loadSnapshots() {
	loadSnapshot(s.snapshotDir, snapProducts, &s.products)
	loadSnapshot(s.snapshotDir, snapCustomers, &s.customers)
	loadSnapshot(s.snapshotDir, snapTransactions, &s.transactions)
	loadSnapshot(s.snapshotDir, snapReturns, &s.returns)
	loadSnapshot(s.snapshotDir, snapExpenses, &s.expenses)
	loadSnapshot(s.snapshotDir, snapExpenseCats, &s.expenseCategories)
	loadSnapshot(s.snapshotDir, snapPurchases, &s.purchases)
	loadSnapshot(s.snapshotDir, snapTasks, &s.tasks)
	loadSnapshot(s.snapshotDir, snapSettings, &s.settings)
}

func loadSnapshot[T any](dir, name string, dst *T) {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return
	}
	var decoded T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		log.Printf("[memory-store] snapshot %s unreadable, keeping defaults: %v", name, err)
		return
	}
	*dst = decoded
}

// persist writes one collection snapshot. Callers hold the write lock.
func (s *Store) persist(name string, value any) {
	if s.snapshotDir == "" {
		return
	}
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		log.Printf("[memory-store] snapshot %s marshal failed: %v", name, err)
		return
	}
	path := filepath.Join(s.snapshotDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		log.Printf("[memory-store] snapshot %s write failed: %v", name, err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		log.Printf("[memory-store] snapshot %s rename failed: %v", name, err)
	}
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.Category, b.Category)
	})

	return products, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.PriceCents < 0 || product.CostPriceCents < 0 {
		return nil, store.ErrInvalidTransaction
	}
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	if _, exists := s.products[product.ID]; exists {
		return nil, store.ErrConflict
	}

	s.products[product.ID] = product
	s.persist(snapProducts, s.products)
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.PriceCents < 0 || product.CostPriceCents < 0 {
		return nil, store.ErrInvalidTransaction
	}
	if _, exists := s.products[product.ID]; !exists {
		return nil, store.ErrNotFound
	}

	s.products[product.ID] = product
	s.persist(snapProducts, s.products)
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.products, id)
	s.persist(snapProducts, s.products)
	return nil
}

// AdjustStock applies signed deltas to the catalog. Deltas for products no
// longer in the catalog are skipped silently; stock is allowed to go
// negative, the catalog just records what the till reported.
func (s *Store) AdjustStock(_ context.Context, adjustments []store.StockAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, adj := range adjustments {
		product, exists := s.products[adj.ProductID]
		if !exists {
			continue
		}
		product.Stock += adj.Delta
		s.products[adj.ProductID] = product
	}
	s.persist(snapProducts, s.products)
	return nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		customers = append(customers, c)
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int {
		return cmpString(a.Name, b.Name)
	})
	return customers, nil
}

func (s *Store) GetCustomerByID(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, exists := s.customers[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyCustomer := customer
	return &copyCustomer, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.Name == "" {
		return nil, store.ErrInvalidTransaction
	}
	if customer.ID == "" {
		customer.ID = xid.New("cst")
	}
	if _, exists := s.customers[customer.ID]; exists {
		return nil, store.ErrConflict
	}
	if customer.LastVisit.IsZero() {
		customer.LastVisit = time.Now().UTC()
	}

	s.customers[customer.ID] = customer
	s.persist(snapCustomers, s.customers)
	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.Name == "" {
		return nil, store.ErrInvalidTransaction
	}
	if _, exists := s.customers[customer.ID]; !exists {
		return nil, store.ErrNotFound
	}

	s.customers[customer.ID] = customer
	s.persist(snapCustomers, s.customers)
	updated := customer
	return &updated, nil
}

func (s *Store) ApplyCustomerSettlement(_ context.Context, settlement store.CustomerSettlement) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, exists := s.customers[settlement.CustomerID]
	if !exists {
		return nil, store.ErrNotFound
	}

	customer.TotalSpentCents += settlement.SpentDelta
	customer.CreditBalanceCents += settlement.CreditDelta
	if settlement.ClampAtZero {
		if customer.TotalSpentCents < 0 {
			customer.TotalSpentCents = 0
		}
		if customer.CreditBalanceCents < 0 {
			customer.CreditBalanceCents = 0
		}
	}
	if settlement.UpdateLastVisit {
		at := settlement.VisitAt
		if at.IsZero() {
			at = time.Now().UTC()
		}
		customer.LastVisit = at
	}

	s.customers[settlement.CustomerID] = customer
	s.persist(snapCustomers, s.customers)
	updated := customer
	return &updated, nil
}

func (s *Store) ListTransactions(_ context.Context, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Stored oldest first; listed newest first.
	result := make([]domain.Transaction, 0, len(s.transactions))
	for i := len(s.transactions) - 1; i >= 0; i-- {
		result = append(result, cloneTransaction(s.transactions[i]))
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *Store) GetTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.transactions {
		if s.transactions[i].ID == id {
			tx := cloneTransaction(s.transactions[i])
			return &tx, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateTransaction(_ context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ID == "" {
		tx.ID = xid.New("txn")
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}
	s.transactions = append(s.transactions, cloneTransaction(tx))
	s.persist(snapTransactions, s.transactions)
	created := cloneTransaction(tx)
	return &created, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = slices.Delete(s.transactions, i, i+1)
			s.persist(snapTransactions, s.transactions)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListReturns(_ context.Context, limit int) ([]domain.Return, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Return, 0, len(s.returns))
	for i := len(s.returns) - 1; i >= 0; i-- {
		result = append(result, cloneReturn(s.returns[i]))
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *Store) CreateReturn(_ context.Context, ret domain.Return) (*domain.Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ret.ID == "" {
		ret.ID = xid.New("ret")
	}
	if ret.Date.IsZero() {
		ret.Date = time.Now().UTC()
	}
	s.returns = append(s.returns, cloneReturn(ret))
	s.persist(snapReturns, s.returns)
	created := cloneReturn(ret)
	return &created, nil
}

func (s *Store) ListExpenses(_ context.Context, from time.Time, to time.Time) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}
		result = append(result, e)
	}
	slices.SortFunc(result, func(a, b domain.Expense) int {
		if a.Date.Equal(b.Date) {
			return cmpString(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	return result, nil
}

func (s *Store) CreateExpense(_ context.Context, expense domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expense.Title == "" || expense.AmountCents <= 0 {
		return nil, store.ErrInvalidTransaction
	}
	if expense.ID == "" {
		expense.ID = xid.New("exp")
	}
	if expense.Date.IsZero() {
		expense.Date = time.Now().UTC()
	}
	s.expenses = append(s.expenses, expense)
	s.persist(snapExpenses, s.expenses)
	created := expense
	return &created, nil
}

func (s *Store) ListExpenseCategories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.expenseCategories), nil
}

func (s *Store) AddExpenseCategory(_ context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category = strings.TrimSpace(category)
	if category == "" {
		return store.ErrInvalidTransaction
	}
	for _, existing := range s.expenseCategories {
		if strings.EqualFold(existing, category) {
			return store.ErrConflict
		}
	}
	s.expenseCategories = append(s.expenseCategories, category)
	s.persist(snapExpenseCats, s.expenseCategories)
	return nil
}

func (s *Store) ListPurchases(_ context.Context, status string) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		if status != "" && p.Status != status {
			continue
		}
		result = append(result, clonePurchase(p))
	}
	slices.SortFunc(result, func(a, b domain.Purchase) int {
		if a.Date.Equal(b.Date) {
			return cmpString(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	return result, nil
}

func (s *Store) GetPurchaseByID(_ context.Context, id string) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchase, exists := s.purchases[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyPurchase := clonePurchase(purchase)
	return &copyPurchase, nil
}

func (s *Store) CreatePurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if purchase.Supplier == "" || purchase.AmountCents < 0 {
		return nil, store.ErrInvalidTransaction
	}
	if purchase.ID == "" {
		purchase.ID = xid.New("pur")
	}
	if purchase.Date.IsZero() {
		purchase.Date = time.Now().UTC()
	}
	if purchase.Status == "" {
		purchase.Status = domain.PurchaseStatusPending
	}
	s.purchases[purchase.ID] = clonePurchase(purchase)
	s.persist(snapPurchases, s.purchases)
	created := clonePurchase(purchase)
	return &created, nil
}

func (s *Store) UpdatePurchaseStatus(_ context.Context, id string, status string) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purchase, exists := s.purchases[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	purchase.Status = status
	s.purchases[id] = purchase
	s.persist(snapPurchases, s.purchases)
	updated := clonePurchase(purchase)
	return &updated, nil
}

func (s *Store) ListTasks(_ context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		result = append(result, t)
	}
	slices.SortFunc(result, func(a, b domain.Task) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(a.ID, b.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return result, nil
}

func (s *Store) CreateTask(_ context.Context, task domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.Title == "" {
		return nil, store.ErrInvalidTransaction
	}
	if task.ID == "" {
		task.ID = xid.New("tsk")
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = domain.TaskPriorityMedium
	}
	s.tasks[task.ID] = task
	s.persist(snapTasks, s.tasks)
	created := task
	return &created, nil
}

func (s *Store) UpdateTaskStatus(_ context.Context, id string, status string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	task.Status = status
	s.tasks[id] = task
	s.persist(snapTasks, s.tasks)
	updated := task
	return &updated, nil
}

func (s *Store) GetSettings(_ context.Context) (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *Store) UpdateSettings(_ context.Context, settings domain.Settings) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	s.persist(snapSettings, s.settings)
	return s.settings, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidTransaction
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrConflict
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyUser := user
	return &copyUser, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[user.Username]; !exists {
		return store.ErrNotFound
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("aud")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, 0, len(s.auditLogs))
	for i := len(s.auditLogs) - 1; i >= 0; i-- {
		entry := s.auditLogs[i]
		if !from.IsZero() && entry.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && entry.CreatedAt.After(to) {
			continue
		}
		result = append(result, entry)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func cloneTransaction(tx domain.Transaction) domain.Transaction {
	clone := tx
	clone.Items = slices.Clone(tx.Items)
	return clone
}

func cloneReturn(ret domain.Return) domain.Return {
	clone := ret
	clone.Items = slices.Clone(ret.Items)
	return clone
}

func clonePurchase(p domain.Purchase) domain.Purchase {
	clone := p
	clone.Items = slices.Clone(p.Items)
	return clone
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
