package advisor

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"retailpos/backend/internal/cache"
	"retailpos/backend/internal/domain"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com"
	defaultTextModel  = "gemini-2.5-flash"
	defaultImageModel = "imagen-4.0-generate-001"
)

// GeminiClient talks to the Generative Language REST API. Text features go
// through generateContent; product images go through the image model's
// predict endpoint and come back as a base64 data URI.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	textModel  string
	imageModel string
	httpClient *http.Client
	cache      cache.AdvisoryCache
	cacheTTL   time.Duration
}

type GeminiOption func(*GeminiClient)

func WithBaseURL(url string) GeminiOption {
	return func(c *GeminiClient) { c.baseURL = strings.TrimRight(url, "/") }
}

func WithModels(textModel string, imageModel string) GeminiOption {
	return func(c *GeminiClient) {
		if textModel != "" {
			c.textModel = textModel
		}
		if imageModel != "" {
			c.imageModel = imageModel
		}
	}
}

func WithCache(cacheStore cache.AdvisoryCache, ttl time.Duration) GeminiOption {
	return func(c *GeminiClient) {
		if cacheStore != nil {
			c.cache = cacheStore
		}
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

func WithHTTPClient(client *http.Client) GeminiOption {
	return func(c *GeminiClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewGeminiClient(apiKey string, opts ...GeminiOption) *GeminiClient {
	c := &GeminiClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		textModel:  defaultTextModel,
		imageModel: defaultImageModel,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache.NoopAdvisoryCache{},
		cacheTTL:   10 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generatePart struct {
	Text string `json:"text,omitempty"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

func (c *GeminiClient) StoreInsights(ctx context.Context, query string, products []domain.Product, recent []domain.Transaction) (string, error) {
	prompt := buildInsightPrompt(query, products, recent)
	return c.generateText(ctx, prompt, "", "insight")
}

func (c *GeminiClient) InventoryReport(ctx context.Context, products []domain.Product) (domain.InventoryReport, error) {
	prompt := buildInventoryPrompt(products)
	raw, err := c.generateText(ctx, prompt, "application/json", "inventory-report")
	if err != nil {
		return domain.InventoryReport{}, err
	}

	var report domain.InventoryReport
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &report); err != nil {
		return domain.InventoryReport{}, fmt.Errorf("%w: malformed report payload", ErrUnavailable)
	}
	return report, nil
}

func (c *GeminiClient) ProfitAnalysis(ctx context.Context, pnl domain.ProfitAndLoss) (string, error) {
	prompt := buildProfitPrompt(pnl)
	return c.generateText(ctx, prompt, "", "profit-analysis")
}

func (c *GeminiClient) SuggestTasks(ctx context.Context, products []domain.Product, pendingPurchases int) ([]domain.SuggestedTask, error) {
	prompt := buildTaskPrompt(products, pendingPurchases)
	raw, err := c.generateText(ctx, prompt, "application/json", "task-suggestions")
	if err != nil {
		return nil, err
	}

	var tasks []domain.SuggestedTask
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &tasks); err != nil {
		return nil, fmt.Errorf("%w: malformed task payload", ErrUnavailable)
	}
	return tasks, nil
}

func (c *GeminiClient) GenerateProductImage(ctx context.Context, prompt string, aspectRatio string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: empty prompt", ErrUnavailable)
	}
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}

	body, err := json.Marshal(predictRequest{
		Instances:  []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{SampleCount: 1, AspectRatio: aspectRatio},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:predict?key=%s", c.baseURL, c.imageModel, c.apiKey)
	raw, err := c.post(ctx, url, body)
	if err != nil {
		return "", err
	}

	var resp predictResponse
	if err := json.Unmarshal(raw, &resp); err != nil || len(resp.Predictions) == 0 {
		return "", fmt.Errorf("%w: no image in response", ErrUnavailable)
	}

	mime := resp.Predictions[0].MimeType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + resp.Predictions[0].BytesBase64Encoded, nil
}

func (c *GeminiClient) generateText(ctx context.Context, prompt string, responseMime string, kind string) (string, error) {
	cacheKey := advisoryCacheKey(kind, prompt)
	if cached, ok, err := c.cache.Get(ctx, cacheKey); err == nil && ok {
		return string(cached), nil
	}

	req := generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	}
	if responseMime != "" {
		req.GenerationConfig = &generationConfig{ResponseMimeType: responseMime}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.textModel, c.apiKey)
	raw, err := c.post(ctx, url, body)
	if err != nil {
		return "", err
	}

	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: malformed response", ErrUnavailable)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	text := resp.Candidates[0].Content.Parts[0].Text
	_ = c.cache.Set(ctx, cacheKey, []byte(text), c.cacheTTL)
	return text, nil
}

func (c *GeminiClient) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream status %d", ErrUnavailable, httpResp.StatusCode)
	}
	return raw, nil
}

func buildInsightPrompt(query string, products []domain.Product, recent []domain.Transaction) string {
	var b strings.Builder
	b.WriteString("You are a retail analyst for a small store. Answer the owner's question using the data below. Be concise and concrete.\n\n")
	b.WriteString("Catalog:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s (%s) price=%s stock=%d\n", p.Name, p.Category, formatCents(p.PriceCents), p.Stock)
	}
	b.WriteString("\nRecent sales:\n")
	for i, tx := range recent {
		if i >= 25 {
			break
		}
		fmt.Fprintf(&b, "- %s total=%s method=%s items=%d\n", tx.Timestamp.Format("2006-01-02"), formatCents(tx.TotalCents), tx.PaymentMethod, len(tx.Items))
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}

func buildInventoryPrompt(products []domain.Product) string {
	var b strings.Builder
	b.WriteString("Analyze this store inventory. Respond with a JSON object with keys restock_alerts (array of strings naming products to reorder), marketing_tips (array of strings) and summary (string).\n\nInventory:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s (%s) price=%s cost=%s stock=%d\n", p.Name, p.Category, formatCents(p.PriceCents), formatCents(p.CostPriceCents), p.Stock)
	}
	return b.String()
}

func buildProfitPrompt(pnl domain.ProfitAndLoss) string {
	return fmt.Sprintf(
		"Review this profit and loss summary for %s to %s and give three short observations with one actionable suggestion each.\nRevenue: %s\nGross profit: %s\nOperational expenses: %s\nPurchases: %s\nNet profit: %s\nTransactions: %d",
		pnl.From, pnl.To,
		formatCents(pnl.RevenueCents), formatCents(pnl.GrossProfitCents),
		formatCents(pnl.ExpenseCents), formatCents(pnl.PurchaseCents),
		formatCents(pnl.NetProfitCents), pnl.Transactions,
	)
}

func buildTaskPrompt(products []domain.Product, pendingPurchases int) string {
	var b strings.Builder
	b.WriteString("Suggest up to five daily operations tasks for a small retail store. Respond with a JSON array of objects with keys title, description and priority (low, medium or high).\n\n")
	fmt.Fprintf(&b, "Pending purchase orders: %d\nLow or negative stock items:\n", pendingPurchases)
	for _, p := range products {
		if p.Stock <= 10 {
			fmt.Fprintf(&b, "- %s stock=%d\n", p.Name, p.Stock)
		}
	}
	return b.String()
}

// stripCodeFence removes a markdown ```json fence if the model wrapped its
// JSON output in one.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func advisoryCacheKey(kind string, prompt string) string {
	hash := sha1.Sum([]byte(prompt))
	return "pos:advisory:" + kind + ":" + hex.EncodeToString(hash[:])
}
