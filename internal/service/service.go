package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"retailpos/backend/internal/advisor"
	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/settlement"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/xid"
)

// ErrForbidden marks an operation the acting user's role does not allow.
var ErrForbidden = errors.New("forbidden")

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo    store.Repository
	advisor advisor.Advisor
}

func New(repo store.Repository, adv advisor.Advisor) *Service {
	if adv == nil {
		adv = advisor.Offline{}
	}
	return &Service{repo: repo, advisor: adv}
}

// requireRole checks the actor against an allow list. Admin passes every
// check.
func requireRole(ctx context.Context, roles ...string) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Actor{}, fmt.Errorf("%w: no actor", ErrForbidden)
	}
	if actor.Role == domain.RoleAdmin {
		return actor, nil
	}
	for _, role := range roles {
		if actor.Role == role {
			return actor, nil
		}
	}
	return domain.Actor{}, fmt.Errorf("%w: role %s", ErrForbidden, actor.Role)
}

// requireArea enforces the per-area manager toggles from settings. Admin
// always passes; managers pass when the matching toggle is on; cashiers
// never manage these areas.
func (s *Service) requireArea(ctx context.Context, area string) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Actor{}, fmt.Errorf("%w: no actor", ErrForbidden)
	}
	if actor.Role == domain.RoleAdmin {
		return actor, nil
	}
	if actor.Role != domain.RoleManager {
		return domain.Actor{}, fmt.Errorf("%w: role %s", ErrForbidden, actor.Role)
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return domain.Actor{}, err
	}

	allowed := false
	switch area {
	case "settings":
		allowed = settings.ManagerAccessToSettings
	case "reports":
		allowed = settings.ManagerAccessToReports
	case "staff":
		allowed = settings.ManagerAccessToStaff
	case "expenses":
		allowed = settings.ManagerAccessToExpenses
	}
	if !allowed {
		return domain.Actor{}, fmt.Errorf("%w: manager access to %s disabled", ErrForbidden, area)
	}
	return actor, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, err := requireRole(ctx, domain.RoleManager)
	if err != nil {
		return domain.Product{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	if req.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name required", store.ErrInvalidTransaction)
	}
	if req.PriceCents < 0 || req.CostPriceCents < 0 {
		return domain.Product{}, fmt.Errorf("%w: negative price", store.ErrInvalidTransaction)
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:           req.Name,
		Category:       req.Category,
		Brand:          strings.TrimSpace(req.Brand),
		SKU:            req.SKU,
		Image:          req.Image,
		PriceCents:     req.PriceCents,
		CostPriceCents: req.CostPriceCents,
		Stock:          req.Stock,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", created.ID, fmt.Sprintf("name=%s,price=%d,stock=%d,by=%s", created.Name, created.PriceCents, created.Stock, actor.Username))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if _, err := requireRole(ctx, domain.RoleManager); err != nil {
		return domain.Product{}, err
	}

	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, fmt.Errorf("%w: product name required", store.ErrInvalidTransaction)
		}
		updated.Name = name
	}
	if req.Category != nil {
		updated.Category = strings.TrimSpace(*req.Category)
	}
	if req.Brand != nil {
		updated.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.SKU != nil {
		updated.SKU = strings.ToUpper(strings.TrimSpace(*req.SKU))
	}
	if req.Image != nil {
		updated.Image = *req.Image
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return domain.Product{}, fmt.Errorf("%w: negative price", store.ErrInvalidTransaction)
		}
		updated.PriceCents = *req.PriceCents
	}
	if req.CostPriceCents != nil {
		if *req.CostPriceCents < 0 {
			return domain.Product{}, fmt.Errorf("%w: negative cost price", store.ErrInvalidTransaction)
		}
		updated.CostPriceCents = *req.CostPriceCents
	}
	if req.Stock != nil {
		updated.Stock = *req.Stock
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_update", "product", saved.ID, fmt.Sprintf("price=%d,stock=%d", saved.PriceCents, saved.Stock))
	return *saved, nil
}

// DeleteProduct removes a product from the catalog. Transaction history
// keeps its snapshots; later stock movements referencing the id are skipped.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if _, err := requireRole(ctx); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "product_delete", "product", id, "")
	return nil
}

// Checkout settles a sale. Validation happens before any mutation; on
// success the ledger append, the stock decrements and the customer update
// are applied in that fixed order.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	items := normalizeItems(req.Items)
	if len(items) == 0 {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: empty cart", store.ErrInvalidTransaction)
	}
	if !validPaymentMethod(req.PaymentMethod) {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: unknown payment method %q", store.ErrInvalidTransaction, req.PaymentMethod)
	}
	if req.DiscountCents < 0 {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: negative discount", store.ErrInvalidTransaction)
	}
	if req.PaymentMethod == domain.PaymentCredit && req.CustomerID == "" {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: credit sale requires a customer", store.ErrInvalidTransaction)
	}

	totals := settlement.ComputeTotals(items, req.DiscountCents)
	now := time.Now().UTC()

	actor, _ := ActorFromContext(ctx)
	created, err := s.repo.CreateTransaction(ctx, domain.Transaction{
		ID:            xid.New("txn"),
		Timestamp:     now,
		Items:         items,
		SubtotalCents: totals.SubtotalCents,
		TaxCents:      totals.TaxCents,
		DiscountCents: totals.DiscountCents,
		TotalCents:    totals.TotalCents,
		PaymentMethod: req.PaymentMethod,
		CustomerID:    req.CustomerID,
		CashierName:   actor.Username,
	})
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	if err := s.adjustStock(ctx, settlement.StockDeltas(items, -1)); err != nil {
		return domain.CheckoutResponse{}, err
	}

	if req.CustomerID != "" {
		creditDelta := int64(0)
		if req.PaymentMethod == domain.PaymentCredit {
			creditDelta = totals.TotalCents
		}
		_, err := s.repo.ApplyCustomerSettlement(ctx, store.CustomerSettlement{
			CustomerID:      req.CustomerID,
			SpentDelta:      totals.TotalCents,
			CreditDelta:     creditDelta,
			UpdateLastVisit: true,
			VisitAt:         now,
		})
		// A customer deleted mid-sale drops their ledger update silently;
		// the transaction itself stands.
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return domain.CheckoutResponse{}, err
		}
	}

	s.logAudit(ctx, "checkout", "transaction", created.ID, fmt.Sprintf("total=%d,method=%s,customer=%s", created.TotalCents, created.PaymentMethod, created.CustomerID))
	return domain.CheckoutResponse{Transaction: *created}, nil
}

func (s *Service) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	return s.repo.ListTransactions(ctx, limit)
}

func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := requireRole(ctx); err != nil {
		return err
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	if !settings.AllowTransactionDeletion {
		return fmt.Errorf("%w: transaction deletion disabled", ErrForbidden)
	}
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "transaction_delete", "transaction", id, "")
	return nil
}

func (s *Service) ListReturns(ctx context.Context, limit int) ([]domain.Return, error) {
	return s.repo.ListReturns(ctx, limit)
}

// ProcessReturn records a return and applies its stock and ledger effects.
// Sales returns restock; purchase returns pull stock back. The customer
// ledger is reversed only for sales returns against a credit-paid
// transaction that carried a customer. There is no per-transaction returned
// quantity tracking: processing the same reference twice applies the
// effects twice.
func (s *Service) ProcessReturn(ctx context.Context, req domain.ReturnRequest) (domain.Return, error) {
	if _, err := requireRole(ctx, domain.RoleManager); err != nil {
		return domain.Return{}, err
	}
	if req.Type != domain.ReturnTypeSales && req.Type != domain.ReturnTypePurchase {
		return domain.Return{}, fmt.Errorf("%w: unknown return type %q", store.ErrInvalidTransaction, req.Type)
	}
	if req.ReferenceID == "" {
		return domain.Return{}, fmt.Errorf("%w: reference required", store.ErrInvalidTransaction)
	}
	if req.AmountCents < 0 {
		return domain.Return{}, fmt.Errorf("%w: negative amount", store.ErrInvalidTransaction)
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return domain.Return{}, fmt.Errorf("%w: return quantity must be positive", store.ErrInvalidTransaction)
		}
	}

	status := req.Status
	if status == "" {
		status = domain.ReturnStatusCompleted
	}

	created, err := s.repo.CreateReturn(ctx, domain.Return{
		ID:          xid.New("ret"),
		Type:        req.Type,
		ReferenceID: req.ReferenceID,
		Date:        time.Now().UTC(),
		AmountCents: req.AmountCents,
		Items:       req.Items,
		Status:      status,
		Reason:      strings.TrimSpace(req.Reason),
	})
	if err != nil {
		return domain.Return{}, err
	}

	if err := s.adjustStock(ctx, settlement.ReturnStockDeltas(req.Items, req.Type)); err != nil {
		return domain.Return{}, err
	}

	if req.Type == domain.ReturnTypeSales {
		original, err := s.repo.GetTransactionByID(ctx, req.ReferenceID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return domain.Return{}, err
		}
		if settlement.CreditReversalApplies(req.Type, original) {
			_, err := s.repo.ApplyCustomerSettlement(ctx, store.CustomerSettlement{
				CustomerID:  original.CustomerID,
				SpentDelta:  -req.AmountCents,
				CreditDelta: -req.AmountCents,
				ClampAtZero: true,
			})
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return domain.Return{}, err
			}
		}
	}

	s.logAudit(ctx, "return_process", "return", created.ID, fmt.Sprintf("type=%s,ref=%s,amount=%d", created.Type, created.ReferenceID, created.AmountCents))
	return *created, nil
}

// RecordRepayment settles part of a customer's store credit. The balance
// floors at zero and no ledger entry is written for the payment itself.
func (s *Service) RecordRepayment(ctx context.Context, customerID string, req domain.RepaymentRequest) (domain.Customer, error) {
	if _, err := requireRole(ctx, domain.RoleManager); err != nil {
		return domain.Customer{}, err
	}
	if req.AmountCents <= 0 {
		return domain.Customer{}, fmt.Errorf("%w: repayment must be positive", store.ErrInvalidTransaction)
	}
	if _, err := s.repo.GetCustomerByID(ctx, customerID); err != nil {
		return domain.Customer{}, err
	}

	updated, err := s.repo.ApplyCustomerSettlement(ctx, store.CustomerSettlement{
		CustomerID:  customerID,
		CreditDelta: -req.AmountCents,
		ClampAtZero: true,
	})
	if err != nil {
		return domain.Customer{}, err
	}

	s.logAudit(ctx, "credit_repayment", "customer", customerID, fmt.Sprintf("amount=%d,balance=%d", req.AmountCents, updated.CreditBalanceCents))
	return *updated, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, fmt.Errorf("%w: customer name required", store.ErrInvalidTransaction)
	}

	created, err := s.repo.CreateCustomer(ctx, domain.Customer{
		ID:        xid.New("cst"),
		Name:      name,
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		LastVisit: time.Now().UTC(),
	})
	if err != nil {
		return domain.Customer{}, err
	}

	s.logAudit(ctx, "customer_create", "customer", created.ID, created.Name)
	return *created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, req domain.CustomerUpdateRequest) (domain.Customer, error) {
	existing, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, fmt.Errorf("%w: customer name required", store.ErrInvalidTransaction)
		}
		updated.Name = name
	}
	if req.Email != nil {
		updated.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		updated.Phone = strings.TrimSpace(*req.Phone)
	}

	saved, err := s.repo.UpdateCustomer(ctx, updated)
	if err != nil {
		return domain.Customer{}, err
	}
	return *saved, nil
}

func (s *Service) ListExpenses(ctx context.Context, from time.Time, to time.Time) ([]domain.Expense, error) {
	if _, err := s.requireArea(ctx, "expenses"); err != nil {
		return nil, err
	}
	return s.repo.ListExpenses(ctx, from, to)
}

func (s *Service) AddExpense(ctx context.Context, req domain.ExpenseCreateRequest) (domain.Expense, error) {
	if _, err := s.requireArea(ctx, "expenses"); err != nil {
		return domain.Expense{}, err
	}
	if strings.TrimSpace(req.Title) == "" || req.AmountCents <= 0 {
		return domain.Expense{}, fmt.Errorf("%w: title and positive amount required", store.ErrInvalidTransaction)
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return domain.Expense{}, fmt.Errorf("%w: bad date %q", store.ErrInvalidTransaction, req.Date)
		}
		date = parsed
	}

	created, err := s.repo.CreateExpense(ctx, domain.Expense{
		ID:          xid.New("exp"),
		Title:       strings.TrimSpace(req.Title),
		Category:    strings.TrimSpace(req.Category),
		AmountCents: req.AmountCents,
		Date:        date,
		Note:        strings.TrimSpace(req.Note),
		IsRecurring: req.IsRecurring,
	})
	if err != nil {
		return domain.Expense{}, err
	}

	s.logAudit(ctx, "expense_add", "expense", created.ID, fmt.Sprintf("amount=%d,category=%s", created.AmountCents, created.Category))
	return *created, nil
}

func (s *Service) ListExpenseCategories(ctx context.Context) ([]string, error) {
	if _, err := s.requireArea(ctx, "expenses"); err != nil {
		return nil, err
	}
	return s.repo.ListExpenseCategories(ctx)
}

func (s *Service) AddExpenseCategory(ctx context.Context, category string) error {
	if _, err := s.requireArea(ctx, "expenses"); err != nil {
		return err
	}
	return s.repo.AddExpenseCategory(ctx, category)
}

func (s *Service) ListPurchases(ctx context.Context, status string) ([]domain.Purchase, error) {
	if _, err := requireRole(ctx, domain.RoleManager); err != nil {
		return nil, err
	}
	return s.repo.ListPurchases(ctx, status)
}

func (s *Service) AddPurchase(ctx context.Context, req domain.PurchaseCreateRequest) (domain.Purchase, error) {
	if _, err := requireRole(ctx, domain.RoleManager); err != nil {
		return domain.Purchase{}, err
	}
	if strings.TrimSpace(req.Supplier) == "" {
		return domain.Purchase{}, fmt.Errorf("%w: supplier required", store.ErrInvalidTransaction)
	}
	if req.AmountCents < 0 {
		return domain.Purchase{}, fmt.Errorf("%w: negative amount", store.ErrInvalidTransaction)
	}

	created, err := s.repo.CreatePurchase(ctx, domain.Purchase{
		ID:          xid.New("pur"),
		Supplier:    strings.TrimSpace(req.Supplier),
		Date:        time.Now().UTC(),
		AmountCents: req.AmountCents,
		Status:      domain.PurchaseStatusPending,
		Items:       req.Items,
	})
	if err != nil {
		return domain.Purchase{}, err
	}

	s.logAudit(ctx, "purchase_add", "purchase", created.ID, fmt.Sprintf("supplier=%s,amount=%d", created.Supplier, created.AmountCents))
	return *created, nil
}

// UpdatePurchaseStatus moves a pending purchase to received or cancelled.
// Settled purchases stay settled.
func (s *Service) UpdatePurchaseStatus(ctx context.Context, id string, req domain.PurchaseStatusRequest) (domain.Purchase, error) {
	if _, err := requireRole(ctx, domain.RoleManager); err != nil {
		return domain.Purchase{}, err
	}
	if req.Status != domain.PurchaseStatusReceived && req.Status != domain.PurchaseStatusCancelled {
		return domain.Purchase{}, fmt.Errorf("%w: unknown purchase status %q", store.ErrInvalidTransaction, req.Status)
	}

	existing, err := s.repo.GetPurchaseByID(ctx, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	if existing.Status != domain.PurchaseStatusPending {
		return domain.Purchase{}, fmt.Errorf("%w: purchase already %s", store.ErrInvalidTransaction, existing.Status)
	}

	updated, err := s.repo.UpdatePurchaseStatus(ctx, id, req.Status)
	if err != nil {
		return domain.Purchase{}, err
	}

	s.logAudit(ctx, "purchase_status", "purchase", id, req.Status)
	return *updated, nil
}

func (s *Service) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.repo.ListTasks(ctx)
}

func (s *Service) CreateTask(ctx context.Context, req domain.TaskCreateRequest) (domain.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return domain.Task{}, fmt.Errorf("%w: task title required", store.ErrInvalidTransaction)
	}
	priority := req.Priority
	switch priority {
	case "":
		priority = domain.TaskPriorityMedium
	case domain.TaskPriorityLow, domain.TaskPriorityMedium, domain.TaskPriorityHigh:
	default:
		return domain.Task{}, fmt.Errorf("%w: unknown priority %q", store.ErrInvalidTransaction, priority)
	}

	created, err := s.repo.CreateTask(ctx, domain.Task{
		ID:          xid.New("tsk"),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Status:      domain.TaskStatusTodo,
		Priority:    priority,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return domain.Task{}, err
	}
	return *created, nil
}

func (s *Service) MoveTask(ctx context.Context, id string, req domain.TaskStatusRequest) (domain.Task, error) {
	switch req.Status {
	case domain.TaskStatusTodo, domain.TaskStatusInProgress, domain.TaskStatusDone:
	default:
		return domain.Task{}, fmt.Errorf("%w: unknown task status %q", store.ErrInvalidTransaction, req.Status)
	}
	updated, err := s.repo.UpdateTaskStatus(ctx, id, req.Status)
	if err != nil {
		return domain.Task{}, err
	}
	return *updated, nil
}

func (s *Service) GetSettings(ctx context.Context) (domain.Settings, error) {
	return s.repo.GetSettings(ctx)
}

func (s *Service) UpdateSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	if _, err := s.requireArea(ctx, "settings"); err != nil {
		return domain.Settings{}, err
	}
	if strings.TrimSpace(settings.BusinessName) == "" {
		return domain.Settings{}, fmt.Errorf("%w: business name required", store.ErrInvalidTransaction)
	}

	updated, err := s.repo.UpdateSettings(ctx, settings)
	if err != nil {
		return domain.Settings{}, err
	}
	s.logAudit(ctx, "settings_update", "settings", "global", "")
	return updated, nil
}

func (s *Service) ListStaff(ctx context.Context) ([]domain.StaffUser, error) {
	if _, err := s.requireArea(ctx, "staff"); err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	staff := make([]domain.StaffUser, 0, len(users))
	for _, u := range users {
		staff = append(staff, domain.StaffUser{
			Username:  u.Username,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			Active:    u.Active,
			CreatedAt: u.CreatedAt,
		})
	}
	return staff, nil
}

func (s *Service) CreateStaff(ctx context.Context, req domain.StaffCreateRequest) (domain.StaffUser, error) {
	if _, err := s.requireArea(ctx, "staff"); err != nil {
		return domain.StaffUser{}, err
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || len(req.Password) < 8 {
		return domain.StaffUser{}, fmt.Errorf("%w: username and a password of at least 8 characters required", store.ErrInvalidTransaction)
	}
	switch req.Role {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleCashier:
	default:
		return domain.StaffUser{}, fmt.Errorf("%w: unknown role %q", store.ErrInvalidTransaction, req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.StaffUser{}, fmt.Errorf("hash password: %w", err)
	}

	account := domain.UserAccount{
		Username:  req.Username,
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Password:  string(hash),
		Role:      req.Role,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, account); err != nil {
		return domain.StaffUser{}, err
	}

	s.logAudit(ctx, "staff_create", "user", account.Username, account.Role)
	return domain.StaffUser{
		Username:  account.Username,
		Name:      account.Name,
		Email:     account.Email,
		Role:      account.Role,
		Active:    account.Active,
		CreatedAt: account.CreatedAt,
	}, nil
}

func (s *Service) UpdateStaff(ctx context.Context, username string, req domain.StaffUpdateRequest) (domain.StaffUser, error) {
	actor, err := s.requireArea(ctx, "staff")
	if err != nil {
		return domain.StaffUser{}, err
	}

	existing, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.StaffUser{}, err
	}

	updated := *existing
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updated.Email = strings.TrimSpace(*req.Email)
	}
	if req.Role != nil {
		switch *req.Role {
		case domain.RoleAdmin, domain.RoleManager, domain.RoleCashier:
			updated.Role = *req.Role
		default:
			return domain.StaffUser{}, fmt.Errorf("%w: unknown role %q", store.ErrInvalidTransaction, *req.Role)
		}
	}
	if req.Active != nil {
		if !*req.Active && username == actor.Username {
			return domain.StaffUser{}, fmt.Errorf("%w: cannot deactivate own account", store.ErrInvalidTransaction)
		}
		updated.Active = *req.Active
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return domain.StaffUser{}, fmt.Errorf("%w: password of at least 8 characters required", store.ErrInvalidTransaction)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.StaffUser{}, fmt.Errorf("hash password: %w", err)
		}
		updated.Password = string(hash)
	}

	if err := s.repo.UpdateUser(ctx, updated); err != nil {
		return domain.StaffUser{}, err
	}

	s.logAudit(ctx, "staff_update", "user", username, updated.Role)
	return domain.StaffUser{
		Username:  updated.Username,
		Name:      updated.Name,
		Email:     updated.Email,
		Role:      updated.Role,
		Active:    updated.Active,
		CreatedAt: updated.CreatedAt,
	}, nil
}

// ProfitAndLoss aggregates the period: revenue and gross profit come from
// transaction snapshots, operational expenses and received purchases are
// separate buckets, and net profit is gross profit minus operational
// expenses.
func (s *Service) ProfitAndLoss(ctx context.Context, from time.Time, to time.Time) (domain.ProfitAndLoss, error) {
	if _, err := s.requireArea(ctx, "reports"); err != nil {
		return domain.ProfitAndLoss{}, err
	}

	transactions, err := s.repo.ListTransactions(ctx, 0)
	if err != nil {
		return domain.ProfitAndLoss{}, err
	}

	pnl := domain.ProfitAndLoss{
		From: from.Format("2006-01-02"),
		To:   to.Format("2006-01-02"),
	}
	byCategory := make(map[string]*domain.CategoryProfit)

	for _, tx := range transactions {
		if !inRange(tx.Timestamp, from, to) {
			continue
		}
		pnl.Transactions++
		pnl.RevenueCents += tx.TotalCents
		for _, item := range tx.Items {
			profit := (item.PriceCents - item.CostPriceCents) * int64(item.Quantity)
			pnl.GrossProfitCents += profit

			category := item.Category
			if category == "" {
				category = "Uncategorized"
			}
			entry, ok := byCategory[category]
			if !ok {
				entry = &domain.CategoryProfit{Category: category}
				byCategory[category] = entry
			}
			entry.RevenueCents += item.PriceCents * int64(item.Quantity)
			entry.ProfitCents += profit
		}
	}

	expenses, err := s.repo.ListExpenses(ctx, from, to)
	if err != nil {
		return domain.ProfitAndLoss{}, err
	}
	for _, e := range expenses {
		pnl.ExpenseCents += e.AmountCents
	}

	purchases, err := s.repo.ListPurchases(ctx, domain.PurchaseStatusReceived)
	if err != nil {
		return domain.ProfitAndLoss{}, err
	}
	for _, p := range purchases {
		if inRange(p.Date, from, to) {
			pnl.PurchaseCents += p.AmountCents
		}
	}

	pnl.NetProfitCents = pnl.GrossProfitCents - pnl.ExpenseCents
	for _, entry := range byCategory {
		pnl.ByCategory = append(pnl.ByCategory, *entry)
	}
	sortCategoryProfits(pnl.ByCategory)

	return pnl, nil
}

func (s *Service) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	summary := domain.DashboardSummary{}

	transactions, err := s.repo.ListTransactions(ctx, 0)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	for _, tx := range transactions {
		if tx.Timestamp.Before(dayStart) {
			continue
		}
		summary.TodaySalesCents += tx.TotalCents
		summary.TodayTransactions++
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	summary.ProductCount = len(products)
	for _, p := range products {
		if p.Stock <= settings.LowStockThreshold {
			summary.LowStockCount++
		}
	}

	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	summary.CustomerCount = len(customers)
	for _, c := range customers {
		summary.OutstandingCreditCents += c.CreditBalanceCents
	}

	purchases, err := s.repo.ListPurchases(ctx, domain.PurchaseStatusPending)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	summary.PendingPurchases = len(purchases)

	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	for _, t := range tasks {
		if t.Status != domain.TaskStatusDone {
			summary.OpenTasks++
		}
	}

	return summary, nil
}

func (s *Service) StoreInsights(ctx context.Context, req domain.InsightRequest) (domain.InsightResponse, error) {
	if err := s.requireAdvisory(ctx); err != nil {
		return domain.InsightResponse{}, err
	}
	if strings.TrimSpace(req.Query) == "" {
		return domain.InsightResponse{}, fmt.Errorf("%w: query required", store.ErrInvalidTransaction)
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.InsightResponse{}, err
	}
	recent, err := s.repo.ListTransactions(ctx, 50)
	if err != nil {
		return domain.InsightResponse{}, err
	}

	text, err := s.advisor.StoreInsights(ctx, req.Query, products, recent)
	if err != nil {
		return domain.InsightResponse{}, err
	}
	return domain.InsightResponse{Text: text}, nil
}

func (s *Service) InventoryReport(ctx context.Context) (domain.InventoryReport, error) {
	if err := s.requireAdvisory(ctx); err != nil {
		return domain.InventoryReport{}, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.InventoryReport{}, err
	}
	return s.advisor.InventoryReport(ctx, products)
}

func (s *Service) ProfitAnalysis(ctx context.Context, from time.Time, to time.Time) (domain.InsightResponse, error) {
	if err := s.requireAdvisory(ctx); err != nil {
		return domain.InsightResponse{}, err
	}
	pnl, err := s.ProfitAndLoss(ctx, from, to)
	if err != nil {
		return domain.InsightResponse{}, err
	}
	text, err := s.advisor.ProfitAnalysis(ctx, pnl)
	if err != nil {
		return domain.InsightResponse{}, err
	}
	return domain.InsightResponse{Text: text}, nil
}

func (s *Service) SuggestTasks(ctx context.Context) ([]domain.SuggestedTask, error) {
	if err := s.requireAdvisory(ctx); err != nil {
		return nil, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.ListPurchases(ctx, domain.PurchaseStatusPending)
	if err != nil {
		return nil, err
	}
	return s.advisor.SuggestTasks(ctx, products, len(pending))
}

func (s *Service) GenerateProductImage(ctx context.Context, req domain.ImageRequest) (domain.ImageResponse, error) {
	if err := s.requireAdvisory(ctx); err != nil {
		return domain.ImageResponse{}, err
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return domain.ImageResponse{}, fmt.Errorf("%w: prompt required", store.ErrInvalidTransaction)
	}
	uri, err := s.advisor.GenerateProductImage(ctx, req.Prompt, req.AspectRatio)
	if err != nil {
		return domain.ImageResponse{}, err
	}
	return domain.ImageResponse{DataURI: uri}, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if _, err := requireRole(ctx); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 200
	}
	return s.repo.ListAuditLogs(ctx, from, to, limit)
}

func (s *Service) requireAdvisory(ctx context.Context) error {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	if !settings.EnableAIRecommendations {
		return advisor.ErrUnavailable
	}
	return nil
}

// adjustStock converts a delta map into the repository call. Products missing
// from the catalog are skipped by the store.
func (s *Service) adjustStock(ctx context.Context, deltas map[string]int) error {
	if len(deltas) == 0 {
		return nil
	}
	adjustments := make([]store.StockAdjustment, 0, len(deltas))
	for id, delta := range deltas {
		adjustments = append(adjustments, store.StockAdjustment{ProductID: id, Delta: delta})
	}
	return s.repo.AdjustStock(ctx, adjustments)
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}

// normalizeItems drops empty lines but keeps distinct cart lines as they
// arrived: each line is its own price snapshot.
func normalizeItems(items []domain.CartItem) []domain.CartItem {
	normalized := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 {
			continue
		}
		normalized = append(normalized, item)
	}
	return normalized
}

func validPaymentMethod(method string) bool {
	switch method {
	case domain.PaymentCash, domain.PaymentCard, domain.PaymentDigital, domain.PaymentCredit:
		return true
	}
	return false
}

func inRange(at time.Time, from time.Time, to time.Time) bool {
	if !from.IsZero() && at.Before(from) {
		return false
	}
	if !to.IsZero() && at.After(to) {
		return false
	}
	return true
}

func sortCategoryProfits(entries []domain.CategoryProfit) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].RevenueCents == entries[j].RevenueCents {
			return entries[i].Category < entries[j].Category
		}
		return entries[i].RevenueCents > entries[j].RevenueCents
	})
}
