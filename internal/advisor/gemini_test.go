package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"retailpos/backend/internal/domain"
)

func writeTextResponse(w http.ResponseWriter, text string) {
	payload := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func TestStoreInsightsRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request failed: %v", err)
		}
		if len(req.Contents) == 0 || !strings.Contains(req.Contents[0].Parts[0].Text, "best seller") {
			t.Fatalf("expected query in prompt")
		}
		writeTextResponse(w, "Espresso beans lead this week.")
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", WithBaseURL(server.URL))
	text, err := client.StoreInsights(context.Background(), "what is my best seller?", []domain.Product{
		{Name: "Espresso Beans 1kg", Category: "Beverages", PriceCents: 14500, Stock: 40},
	}, nil)
	if err != nil {
		t.Fatalf("insights failed: %v", err)
	}
	if text != "Espresso beans lead this week." {
		t.Fatalf("unexpected insight text: %q", text)
	}
}

func TestInventoryReportParsesFencedJSON(t *testing.T) {
	payload := "```json\n{\"restock_alerts\":[\"Paper Towels 6pk\"],\"marketing_tips\":[\"Bundle pens with notebooks\"],\"summary\":\"Stock is healthy overall.\"}\n```"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeTextResponse(w, payload)
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", WithBaseURL(server.URL))
	report, err := client.InventoryReport(context.Background(), []domain.Product{
		{Name: "Paper Towels 6pk", Stock: 3},
	})
	if err != nil {
		t.Fatalf("inventory report failed: %v", err)
	}
	if len(report.RestockAlerts) != 1 || report.RestockAlerts[0] != "Paper Towels 6pk" {
		t.Fatalf("unexpected restock alerts: %v", report.RestockAlerts)
	}
	if report.Summary == "" {
		t.Fatalf("expected summary")
	}
}

func TestUpstreamFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", WithBaseURL(server.URL))
	_, err := client.StoreInsights(context.Background(), "anything", nil, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGenerateProductImageReturnsDataURI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":predict") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"predictions":[{"bytesBase64Encoded":"aGVsbG8=","mimeType":"image/png"}]}`)
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", WithBaseURL(server.URL))
	uri, err := client.GenerateProductImage(context.Background(), "a jar of honey on a shelf", "1:1")
	if err != nil {
		t.Fatalf("image generation failed: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected data uri: %q", uri)
	}
}

func TestSuggestTasksParsesArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeTextResponse(w, `[{"title":"Reorder paper towels","description":"Stock is at 3 units","priority":"high"}]`)
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", WithBaseURL(server.URL))
	tasks, err := client.SuggestTasks(context.Background(), []domain.Product{
		{Name: "Paper Towels 6pk", Stock: 3},
	}, 2)
	if err != nil {
		t.Fatalf("suggest tasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Priority != "high" {
		t.Fatalf("unexpected tasks: %v", tasks)
	}
}

func TestOfflineAdvisorDegrades(t *testing.T) {
	var offline Offline
	if _, err := offline.StoreInsights(context.Background(), "q", nil, nil); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := offline.GenerateProductImage(context.Background(), "p", ""); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
