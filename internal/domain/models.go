package domain

import "time"

type Product struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	Brand          string `json:"brand"`
	SKU            string `json:"sku"`
	Image          string `json:"image,omitempty"`
	PriceCents     int64  `json:"price_cents"`
	CostPriceCents int64  `json:"cost_price_cents"`
	Stock          int    `json:"stock"`
}

type ProductCreateRequest struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	Brand          string `json:"brand"`
	SKU            string `json:"sku"`
	Image          string `json:"image,omitempty"`
	PriceCents     int64  `json:"price_cents"`
	CostPriceCents int64  `json:"cost_price_cents"`
	Stock          int    `json:"stock"`
}

type ProductUpdateRequest struct {
	Name           *string `json:"name,omitempty"`
	Category       *string `json:"category,omitempty"`
	Brand          *string `json:"brand,omitempty"`
	SKU            *string `json:"sku,omitempty"`
	Image          *string `json:"image,omitempty"`
	PriceCents     *int64  `json:"price_cents,omitempty"`
	CostPriceCents *int64  `json:"cost_price_cents,omitempty"`
	Stock          *int    `json:"stock,omitempty"`
}

// CartItem is a request-scoped product snapshot plus a quantity. Checkout
// copies these into the transaction untouched, so later catalog edits never
// rewrite history.
type CartItem struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Category       string `json:"category,omitempty"`
	PriceCents     int64  `json:"price_cents"`
	CostPriceCents int64  `json:"cost_price_cents"`
	Quantity       int    `json:"quantity"`
}

type Transaction struct {
	ID            string     `json:"id"`
	Timestamp     time.Time  `json:"timestamp"`
	Items         []CartItem `json:"items"`
	SubtotalCents int64      `json:"subtotal_cents"`
	TaxCents      int64      `json:"tax_cents"`
	DiscountCents int64      `json:"discount_cents"`
	TotalCents    int64      `json:"total_cents"`
	PaymentMethod string     `json:"payment_method"`
	CustomerID    string     `json:"customer_id,omitempty"`
	CashierName   string     `json:"cashier_name,omitempty"`
}

type CheckoutRequest struct {
	Items         []CartItem `json:"items"`
	DiscountCents int64      `json:"discount_cents"`
	PaymentMethod string     `json:"payment_method"`
	CustomerID    string     `json:"customer_id,omitempty"`
}

type CheckoutResponse struct {
	Transaction Transaction `json:"transaction"`
}

type Customer struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	TotalSpentCents    int64     `json:"total_spent_cents"`
	CreditBalanceCents int64     `json:"credit_balance_cents"`
	LastVisit          time.Time `json:"last_visit"`
}

type CustomerCreateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type CustomerUpdateRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type RepaymentRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type ReturnItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

type Return struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	ReferenceID string       `json:"reference_id"`
	Date        time.Time    `json:"date"`
	AmountCents int64        `json:"amount_cents"`
	Items       []ReturnItem `json:"items"`
	Status      string       `json:"status"`
	Reason      string       `json:"reason,omitempty"`
}

type ReturnRequest struct {
	Type        string       `json:"type"`
	ReferenceID string       `json:"reference_id"`
	AmountCents int64        `json:"amount_cents"`
	Items       []ReturnItem `json:"items"`
	Status      string       `json:"status,omitempty"`
	Reason      string       `json:"reason,omitempty"`
}

type Expense struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	AmountCents int64     `json:"amount_cents"`
	Date        time.Time `json:"date"`
	Note        string    `json:"note,omitempty"`
	IsRecurring bool      `json:"is_recurring"`
}

type ExpenseCreateRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date,omitempty"`
	Note        string `json:"note,omitempty"`
	IsRecurring bool   `json:"is_recurring"`
}

type PurchaseItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	CostCents int64  `json:"cost_cents"`
}

type Purchase struct {
	ID          string         `json:"id"`
	Supplier    string         `json:"supplier"`
	Date        time.Time      `json:"date"`
	AmountCents int64          `json:"amount_cents"`
	Status      string         `json:"status"`
	Items       []PurchaseItem `json:"items,omitempty"`
}

type PurchaseCreateRequest struct {
	Supplier    string         `json:"supplier"`
	AmountCents int64          `json:"amount_cents"`
	Items       []PurchaseItem `json:"items,omitempty"`
}

type PurchaseStatusRequest struct {
	Status string `json:"status"`
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

type TaskCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

type TaskStatusRequest struct {
	Status string `json:"status"`
}

type Settings struct {
	BusinessName               string `json:"business_name"`
	Phone                      string `json:"phone,omitempty"`
	Email                      string `json:"email,omitempty"`
	Address                    string `json:"address,omitempty"`
	BaseCurrency               string `json:"base_currency"`
	Language                   string `json:"language"`
	ManagerAccessToSettings    bool   `json:"manager_access_to_settings"`
	ManagerAccessToReports     bool   `json:"manager_access_to_reports"`
	ManagerAccessToStaff       bool   `json:"manager_access_to_staff"`
	ManagerAccessToExpenses    bool   `json:"manager_access_to_expenses"`
	CashierAccessToInventory   bool   `json:"cashier_access_to_inventory"`
	AllowTransactionDeletion   bool   `json:"allow_transaction_deletion"`
	LowStockThreshold          int    `json:"low_stock_threshold"`
	ReceiptFooter              string `json:"receipt_footer,omitempty"`
	EnableAIRecommendations    bool   `json:"enable_ai_recommendations"`
	AutoBackup                 bool   `json:"auto_backup"`
	NotifyOnLowStock           bool   `json:"notify_on_low_stock"`
	NotifyOnCreditLimit        bool   `json:"notify_on_credit_limit"`
	CreditLimitThresholdCents  int64  `json:"credit_limit_threshold_cents"`
	DefaultPaymentMethod       string `json:"default_payment_method"`
	RequireCustomerForCredit   bool   `json:"require_customer_for_credit"`
	ShowCostPricesToManagement bool   `json:"show_cost_prices_to_management"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type StaffUpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Name      string
	Email     string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type CategoryProfit struct {
	Category     string `json:"category"`
	RevenueCents int64  `json:"revenue_cents"`
	ProfitCents  int64  `json:"profit_cents"`
}

type ProfitAndLoss struct {
	From             string           `json:"from"`
	To               string           `json:"to"`
	RevenueCents     int64            `json:"revenue_cents"`
	GrossProfitCents int64            `json:"gross_profit_cents"`
	ExpenseCents     int64            `json:"expense_cents"`
	PurchaseCents    int64            `json:"purchase_cents"`
	NetProfitCents   int64            `json:"net_profit_cents"`
	Transactions     int64            `json:"transactions"`
	ByCategory       []CategoryProfit `json:"by_category"`
}

type DashboardSummary struct {
	TodaySalesCents        int64 `json:"today_sales_cents"`
	TodayTransactions      int64 `json:"today_transactions"`
	LowStockCount          int   `json:"low_stock_count"`
	OutstandingCreditCents int64 `json:"outstanding_credit_cents"`
	CustomerCount          int   `json:"customer_count"`
	ProductCount           int   `json:"product_count"`
	PendingPurchases       int   `json:"pending_purchases"`
	OpenTasks              int   `json:"open_tasks"`
}

type InsightRequest struct {
	Query string `json:"query"`
}

type InsightResponse struct {
	Text string `json:"text"`
}

type InventoryReport struct {
	RestockAlerts []string `json:"restock_alerts"`
	MarketingTips []string `json:"marketing_tips"`
	Summary       string   `json:"summary"`
}

type ImageRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

type ImageResponse struct {
	DataURI string `json:"data_uri"`
}

type SuggestedTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	PaymentCash    = "cash"
	PaymentCard    = "card"
	PaymentDigital = "digital"
	PaymentCredit  = "credit"
)

const (
	ReturnTypeSales    = "sales"
	ReturnTypePurchase = "purchase"
)

const (
	ReturnStatusPending   = "pending"
	ReturnStatusCompleted = "completed"
	ReturnStatusRejected  = "rejected"
)

const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusReceived  = "received"
	PurchaseStatusCancelled = "cancelled"
)

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusDone       = "done"
)

const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)
