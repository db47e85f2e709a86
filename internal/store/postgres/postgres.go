package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema bootstraps the tables on first run. Statements are idempotent
// so repeated startups are safe.
func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			brand TEXT NOT NULL DEFAULT '',
			sku TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			price_cents BIGINT NOT NULL,
			cost_price_cents BIGINT NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			total_spent_cents BIGINT NOT NULL DEFAULT 0,
			credit_balance_cents BIGINT NOT NULL DEFAULT 0,
			last_visit TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			seq BIGSERIAL,
			ts TIMESTAMPTZ NOT NULL,
			items JSONB NOT NULL,
			subtotal_cents BIGINT NOT NULL,
			tax_cents BIGINT NOT NULL,
			discount_cents BIGINT NOT NULL,
			total_cents BIGINT NOT NULL,
			payment_method TEXT NOT NULL,
			customer_id TEXT NOT NULL DEFAULT '',
			cashier_name TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS returns (
			id TEXT PRIMARY KEY,
			seq BIGSERIAL,
			type TEXT NOT NULL,
			reference_id TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			amount_cents BIGINT NOT NULL,
			items JSONB NOT NULL,
			status TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			amount_cents BIGINT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			is_recurring BOOLEAN NOT NULL DEFAULT false
		)`,
		`CREATE TABLE IF NOT EXISTS expense_categories (
			name TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS purchases (
			id TEXT PRIMARY KEY,
			supplier TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			amount_cents BIGINT NOT NULL,
			status TEXT NOT NULL,
			items JSONB NOT NULL DEFAULT '[]'
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			priority TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INT PRIMARY KEY,
			payload JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id TEXT PRIMARY KEY,
			actor_username TEXT NOT NULL,
			actor_role TEXT NOT NULL,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_seq ON transactions (seq DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at DESC)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for _, category := range []string{"Rent", "Utilities", "Salaries", "Marketing", "Maintenance", "Transport", "Other"} {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO expense_categories (name) VALUES ($1) ON CONFLICT DO NOTHING
		`, category); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, brand, sku, image, price_cents, cost_price_cents, stock
		FROM products
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Brand, &p.SKU, &p.Image, &p.PriceCents, &p.CostPriceCents, &p.Stock); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, brand, sku, image, price_cents, cost_price_cents, stock
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Category, &p.Brand, &p.SKU, &p.Image, &p.PriceCents, &p.CostPriceCents, &p.Stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.PriceCents < 0 || product.CostPriceCents < 0 {
		return nil, store.ErrInvalidTransaction
	}
	if product.ID == "" {
		product.ID = xid.New("prd")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, brand, sku, image, price_cents, cost_price_cents, stock, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now(),now())
	`, product.ID, product.Name, product.Category, product.Brand, product.SKU, product.Image, product.PriceCents, product.CostPriceCents, product.Stock)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.PriceCents < 0 || product.CostPriceCents < 0 {
		return nil, store.ErrInvalidTransaction
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, brand = $4, sku = $5, image = $6,
		    price_cents = $7, cost_price_cents = $8, stock = $9, updated_at = now()
		WHERE id = $1
	`, product.ID, product.Name, product.Category, product.Brand, product.SKU, product.Image, product.PriceCents, product.CostPriceCents, product.Stock)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// AdjustStock applies signed deltas. Missing rows are skipped, matching the
// catalog-snapshot decoupling of checkout.
func (s *Store) AdjustStock(ctx context.Context, adjustments []store.StockAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, adj := range adjustments {
		if _, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1
		`, adj.ProductID, adj.Delta); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, total_spent_cents, credit_balance_cents, last_visit
		FROM customers
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.TotalSpentCents, &c.CreditBalanceCents, &c.LastVisit); err != nil {
			return nil, err
		}
		c.LastVisit = c.LastVisit.UTC()
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Store) GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, total_spent_cents, credit_balance_cents, last_visit
		FROM customers
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.TotalSpentCents, &c.CreditBalanceCents, &c.LastVisit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	c.LastVisit = c.LastVisit.UTC()
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.Name == "" {
		return nil, store.ErrInvalidTransaction
	}
	if customer.ID == "" {
		customer.ID = xid.New("cst")
	}
	if customer.LastVisit.IsZero() {
		customer.LastVisit = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, email, phone, total_spent_cents, credit_balance_cents, last_visit)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, customer.ID, customer.Name, customer.Email, customer.Phone, customer.TotalSpentCents, customer.CreditBalanceCents, customer.LastVisit)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.Name == "" {
		return nil, store.ErrInvalidTransaction
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $2, email = $3, phone = $4, total_spent_cents = $5, credit_balance_cents = $6, last_visit = $7
		WHERE id = $1
	`, customer.ID, customer.Name, customer.Email, customer.Phone, customer.TotalSpentCents, customer.CreditBalanceCents, customer.LastVisit)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := customer
	return &updated, nil
}

func (s *Store) ApplyCustomerSettlement(ctx context.Context, settlement store.CustomerSettlement) (*domain.Customer, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var c domain.Customer
	err = tx.QueryRowContext(ctx, `
		SELECT id, name, email, phone, total_spent_cents, credit_balance_cents, last_visit
		FROM customers
		WHERE id = $1
		FOR UPDATE
	`, settlement.CustomerID).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.TotalSpentCents, &c.CreditBalanceCents, &c.LastVisit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	c.TotalSpentCents += settlement.SpentDelta
	c.CreditBalanceCents += settlement.CreditDelta
	if settlement.ClampAtZero {
		if c.TotalSpentCents < 0 {
			c.TotalSpentCents = 0
		}
		if c.CreditBalanceCents < 0 {
			c.CreditBalanceCents = 0
		}
	}
	if settlement.UpdateLastVisit {
		at := settlement.VisitAt
		if at.IsZero() {
			at = time.Now().UTC()
		}
		c.LastVisit = at
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE customers
		SET total_spent_cents = $2, credit_balance_cents = $3, last_visit = $4
		WHERE id = $1
	`, c.ID, c.TotalSpentCents, c.CreditBalanceCents, c.LastVisit); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	c.LastVisit = c.LastVisit.UTC()
	return &c, nil
}

func (s *Store) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT id, ts, items, subtotal_cents, tax_cents, discount_cents, total_cents, payment_method, customer_id, cashier_name
		FROM transactions
		ORDER BY seq DESC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, 128)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var tx domain.Transaction
	var itemsRaw []byte
	if err := row.Scan(&tx.ID, &tx.Timestamp, &itemsRaw, &tx.SubtotalCents, &tx.TaxCents, &tx.DiscountCents, &tx.TotalCents, &tx.PaymentMethod, &tx.CustomerID, &tx.CashierName); err != nil {
		return domain.Transaction{}, err
	}
	if err := json.Unmarshal(itemsRaw, &tx.Items); err != nil {
		return domain.Transaction{}, fmt.Errorf("decode transaction items: %w", err)
	}
	tx.Timestamp = tx.Timestamp.UTC()
	return tx, nil
}

func (s *Store) GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, ts, items, subtotal_cents, tax_cents, discount_cents, total_cents, payment_method, customer_id, cashier_name
		FROM transactions
		WHERE id = $1
	`, id)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	if tx.ID == "" {
		tx.ID = xid.New("txn")
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}
	itemsRaw, err := json.Marshal(tx.Items)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, ts, items, subtotal_cents, tax_cents, discount_cents, total_cents, payment_method, customer_id, cashier_name)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, tx.ID, tx.Timestamp, itemsRaw, tx.SubtotalCents, tx.TaxCents, tx.DiscountCents, tx.TotalCents, tx.PaymentMethod, tx.CustomerID, tx.CashierName)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	created := tx
	return &created, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListReturns(ctx context.Context, limit int) ([]domain.Return, error) {
	query := `
		SELECT id, type, reference_id, date, amount_cents, items, status, reason
		FROM returns
		ORDER BY seq DESC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	returns := make([]domain.Return, 0, 32)
	for rows.Next() {
		var ret domain.Return
		var itemsRaw []byte
		if err := rows.Scan(&ret.ID, &ret.Type, &ret.ReferenceID, &ret.Date, &ret.AmountCents, &itemsRaw, &ret.Status, &ret.Reason); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(itemsRaw, &ret.Items); err != nil {
			return nil, fmt.Errorf("decode return items: %w", err)
		}
		ret.Date = ret.Date.UTC()
		returns = append(returns, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return returns, nil
}

func (s *Store) CreateReturn(ctx context.Context, ret domain.Return) (*domain.Return, error) {
	if ret.ID == "" {
		ret.ID = xid.New("ret")
	}
	if ret.Date.IsZero() {
		ret.Date = time.Now().UTC()
	}
	itemsRaw, err := json.Marshal(ret.Items)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO returns (id, type, reference_id, date, amount_cents, items, status, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, ret.ID, ret.Type, ret.ReferenceID, ret.Date, ret.AmountCents, itemsRaw, ret.Status, ret.Reason)
	if err != nil {
		return nil, err
	}

	created := ret
	return &created, nil
}

func (s *Store) ListExpenses(ctx context.Context, from time.Time, to time.Time) ([]domain.Expense, error) {
	var (
		clauses []string
		args    []any
	)
	if !from.IsZero() {
		args = append(args, from)
		clauses = append(clauses, fmt.Sprintf("date >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		clauses = append(clauses, fmt.Sprintf("date <= $%d", len(args)))
	}
	query := `
		SELECT id, title, category, amount_cents, date, note, is_recurring
		FROM expenses
	`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0, 64)
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.Title, &e.Category, &e.AmountCents, &e.Date, &e.Note, &e.IsRecurring); err != nil {
			return nil, err
		}
		e.Date = e.Date.UTC()
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *Store) CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	if expense.Title == "" || expense.AmountCents <= 0 {
		return nil, store.ErrInvalidTransaction
	}
	if expense.ID == "" {
		expense.ID = xid.New("exp")
	}
	if expense.Date.IsZero() {
		expense.Date = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, title, category, amount_cents, date, note, is_recurring)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, expense.ID, expense.Title, expense.Category, expense.AmountCents, expense.Date, expense.Note, expense.IsRecurring)
	if err != nil {
		return nil, err
	}

	created := expense
	return &created, nil
}

func (s *Store) ListExpenseCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM expense_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]string, 0, 16)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		categories = append(categories, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) AddExpenseCategory(ctx context.Context, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return store.ErrInvalidTransaction
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO expense_categories (name) VALUES ($1)`, category)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) ListPurchases(ctx context.Context, status string) ([]domain.Purchase, error) {
	query := `
		SELECT id, supplier, date, amount_cents, status, items
		FROM purchases
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0, 32)
	for rows.Next() {
		var p domain.Purchase
		var itemsRaw []byte
		if err := rows.Scan(&p.ID, &p.Supplier, &p.Date, &p.AmountCents, &p.Status, &itemsRaw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(itemsRaw, &p.Items); err != nil {
			return nil, fmt.Errorf("decode purchase items: %w", err)
		}
		p.Date = p.Date.UTC()
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}

func (s *Store) GetPurchaseByID(ctx context.Context, id string) (*domain.Purchase, error) {
	var p domain.Purchase
	var itemsRaw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, supplier, date, amount_cents, status, items
		FROM purchases
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Supplier, &p.Date, &p.AmountCents, &p.Status, &itemsRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(itemsRaw, &p.Items); err != nil {
		return nil, fmt.Errorf("decode purchase items: %w", err)
	}
	p.Date = p.Date.UTC()
	return &p, nil
}

func (s *Store) CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
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
	itemsRaw, err := json.Marshal(purchase.Items)
	if err != nil {
		return nil, err
	}
	if purchase.Items == nil {
		itemsRaw = []byte("[]")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO purchases (id, supplier, date, amount_cents, status, items)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, purchase.ID, purchase.Supplier, purchase.Date, purchase.AmountCents, purchase.Status, itemsRaw)
	if err != nil {
		return nil, err
	}

	created := purchase
	return &created, nil
}

func (s *Store) UpdatePurchaseStatus(ctx context.Context, id string, status string) (*domain.Purchase, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE purchases SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetPurchaseByID(ctx, id)
}

func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, status, priority, created_at
		FROM tasks
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0, 32)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.CreatedAt = t.CreatedAt.UTC()
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) CreateTask(ctx context.Context, task domain.Task) (*domain.Task, error) {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, task.ID, task.Title, task.Description, task.Status, task.Priority, task.CreatedAt)
	if err != nil {
		return nil, err
	}

	created := task
	return &created, nil
}

func (s *Store) UpdateTaskStatus(ctx context.Context, id string, status string) (*domain.Task, error) {
	var t domain.Task
	err := s.db.QueryRowContext(ctx, `
		UPDATE tasks SET status = $2 WHERE id = $1
		RETURNING id, title, description, status, priority, created_at
	`, id, status).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}

func (s *Store) GetSettings(ctx context.Context) (domain.Settings, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM settings WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Settings{
			BusinessName:             "GeminiPOS Pro",
			BaseCurrency:             "GHS",
			Language:                 "en",
			ManagerAccessToReports:   true,
			ManagerAccessToExpenses:  true,
			LowStockThreshold:        10,
			EnableAIRecommendations:  true,
			AutoBackup:               true,
			NotifyOnLowStock:         true,
			DefaultPaymentMethod:     domain.PaymentCash,
			RequireCustomerForCredit: true,
		}, nil
	}
	if err != nil {
		return domain.Settings{}, err
	}

	var settings domain.Settings
	if err := json.Unmarshal(payload, &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

func (s *Store) UpdateSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	payload, err := json.Marshal(settings)
	if err != nil {
		return domain.Settings{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (id, payload) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload
	`, payload)
	if err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidTransaction
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, name, email, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, user.Username, user.Name, user.Email, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	var u domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT username, name, email, password, role, active, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&u.Username, &u.Name, &u.Email, &u.Password, &u.Role, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, name, email, password, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.Username, &u.Name, &u.Email, &u.Password, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.CreatedAt = u.CreatedAt.UTC()
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user domain.UserAccount) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, email = $3, password = $4, role = $5, active = $6
		WHERE username = $1
	`, user.Username, user.Name, user.Email, user.Password, user.Role, user.Active)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("aud")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 200
	}
	var (
		clauses []string
		args    []any
	)
	if !from.IsZero() {
		args = append(args, from)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	query := `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
	`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
