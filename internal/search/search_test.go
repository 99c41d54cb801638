package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"songsmith/internal/core"
)

func TestProviderTypeConstants(t *testing.T) {
	expectedTypes := map[ProviderType]string{
		ProviderTypeBuiltin: "builtin",
		ProviderTypeGoogle:  "google",
		ProviderTypeTavily:  "tavily",
		ProviderTypeNone:    "none",
		ProviderTypeMock:    "mock",
	}

	for providerType, expectedValue := range expectedTypes {
		if string(providerType) != expectedValue {
			t.Errorf("Expected %s to be %s, got %s", providerType, expectedValue, string(providerType))
		}
	}
}

func TestIsNetworkBacked(t *testing.T) {
	tests := []struct {
		backend ProviderType
		want    bool
	}{
		{ProviderTypeBuiltin, false},
		{ProviderTypeNone, false},
		{ProviderTypeGoogle, true},
		{ProviderTypeTavily, true},
		{ProviderTypeMock, true},
	}

	for _, tt := range tests {
		if got := tt.backend.IsNetworkBacked(); got != tt.want {
			t.Errorf("%s.IsNetworkBacked() = %v, want %v", tt.backend, got, tt.want)
		}
	}
}

func TestCreateGoogleProviderMissingAPIKey(t *testing.T) {
	factory := NewProviderFactory()
	config := map[string]string{
		"search_id": "test-search-id",
	}

	provider, err := factory.CreateProvider(ProviderTypeGoogle, config)
	if err == nil {
		t.Error("Expected error when creating Google provider without API key")
	}
	if provider != nil {
		t.Error("Expected nil provider when creation fails")
	}
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestCreateGoogleProviderMissingSearchID(t *testing.T) {
	factory := NewProviderFactory()
	config := map[string]string{
		"api_key": "test-key",
	}

	_, err := factory.CreateProvider(ProviderTypeGoogle, config)
	if !errors.Is(err, ErrMissingSearchID) {
		t.Errorf("Expected ErrMissingSearchID, got %v", err)
	}
}

func TestCreateTavilyProviderMissingAPIKey(t *testing.T) {
	factory := NewProviderFactory()

	_, err := factory.CreateProvider(ProviderTypeTavily, map[string]string{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestCreateUnsupportedProvider(t *testing.T) {
	factory := NewProviderFactory()

	_, err := factory.CreateProvider(ProviderType("bing"), map[string]string{})
	if !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("Expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestGoogleProviderSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "test query" {
			t.Errorf("Expected query 'test query', got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]string{
				{"title": "First", "link": "https://a.example/1", "snippet": "first snippet"},
				{"title": "Second", "link": "https://b.example/2", "snippet": "second snippet"},
			},
		})
	}))
	defer server.Close()

	provider := NewGoogleProvider("key", "cx")
	provider.baseURL = server.URL

	results, err := provider.Search(context.Background(), "test query", Config{MaxResults: 5})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Title != "First" || results[0].Rank != 1 {
		t.Errorf("Unexpected first result: %+v", results[0])
	}
}

func TestGoogleProviderSearchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewGoogleProvider("key", "cx")
	provider.baseURL = server.URL

	if _, err := provider.Search(context.Background(), "q", Config{MaxResults: 5}); err == nil {
		t.Error("Expected error on HTTP 500")
	}
}

func TestTavilyProviderSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if body["api_key"] != "tvly-key" {
			t.Errorf("Expected api_key in body, got %v", body["api_key"])
		}
		if body["search_depth"] != "basic" {
			t.Errorf("Expected search_depth 'basic', got %v", body["search_depth"])
		}
		if body["max_results"] != float64(5) {
			t.Errorf("Expected max_results 5, got %v", body["max_results"])
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"title": "Genre Deep Dive", "url": "https://c.example", "content": "darkwave roots", "score": 0.91},
			},
		})
	}))
	defer server.Close()

	provider := NewTavilyProvider("tvly-key", "")
	provider.baseURL = server.URL

	results, err := provider.Search(context.Background(), "darkwave", Config{MaxResults: 5})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Snippet != "darkwave roots" {
		t.Errorf("Expected content mapped to snippet, got %q", results[0].Snippet)
	}
}

func TestFormatSnippets(t *testing.T) {
	results := []Result{
		{Title: "A", Snippet: "alpha"},
		{Title: "B", Snippet: "beta"},
	}

	got := FormatSnippets(results)
	want := "- A: alpha\n- B: beta"
	if got != want {
		t.Errorf("FormatSnippets = %q, want %q", got, want)
	}
}

func TestFormatSnippetsCap(t *testing.T) {
	var results []Result
	for i := 0; i < 8; i++ {
		results = append(results, Result{Title: "T", Snippet: "s"})
	}

	got := FormatSnippets(results)
	if lines := strings.Count(got, "\n") + 1; lines != maxContextSnippets {
		t.Errorf("Expected %d snippet lines, got %d", maxContextSnippets, lines)
	}
}

func TestFormatSnippetsEmpty(t *testing.T) {
	if got := FormatSnippets(nil); got != MsgNoResults {
		t.Errorf("Expected no-results sentinel, got %q", got)
	}
}

func TestBuildMediaQuery(t *testing.T) {
	meta := &core.ResolvedMetadata{Title: "Night Drive", Author: "DJ Foo"}
	got := BuildMediaQuery(meta)
	want := `"Night Drive" DJ Foo music genre style analysis`
	if got != want {
		t.Errorf("BuildMediaQuery = %q, want %q", got, want)
	}
}

func TestBuildMediaQueryNoAuthor(t *testing.T) {
	meta := &core.ResolvedMetadata{Title: "Night Drive"}
	got := BuildMediaQuery(meta)
	want := `"Night Drive" music genre style analysis`
	if got != want {
		t.Errorf("BuildMediaQuery = %q, want %q", got, want)
	}
}

func TestAdapterBuiltinReturnsEmpty(t *testing.T) {
	a := NewAdapter(ProviderTypeBuiltin, nil, "en", time.Second)
	if got := a.GatherContext(context.Background(), "anything"); got != "" {
		t.Errorf("Expected empty context for builtin backend, got %q", got)
	}
}

func TestAdapterNoneReturnsEmpty(t *testing.T) {
	a := NewAdapter(ProviderTypeNone, nil, "en", time.Second)
	if got := a.GatherContext(context.Background(), "anything"); got != "" {
		t.Errorf("Expected empty context for none backend, got %q", got)
	}
}

func TestAdapterMisconfiguredReturnsSentinel(t *testing.T) {
	a := NewAdapter(ProviderTypeGoogle, map[string]string{}, "en", time.Second)
	if got := a.GatherContext(context.Background(), "anything"); got != MsgNotConfigured {
		t.Errorf("Expected not-configured sentinel, got %q", got)
	}
}

func TestAdapterSearchFailureReturnsSentinel(t *testing.T) {
	a := NewAdapter(ProviderTypeMock, nil, "en", time.Second)
	mock := a.provider.(*MockProvider)
	mock.SetError(errors.New("network down"))

	if got := a.GatherContext(context.Background(), "anything"); got != MsgSearchFailed {
		t.Errorf("Expected search-failed sentinel, got %q", got)
	}
}

func TestAdapterRendersSnippets(t *testing.T) {
	a := NewAdapter(ProviderTypeMock, nil, "en", time.Second)
	mock := a.provider.(*MockProvider)
	mock.SetResults([]Result{
		{Title: "Review", Snippet: "synthwave with driving bass"},
	})

	got := a.GatherContext(context.Background(), "query")
	if got != "- Review: synthwave with driving bass" {
		t.Errorf("Unexpected rendered context: %q", got)
	}
}

func TestAdapterEmptyResultsReturnsSentinel(t *testing.T) {
	a := NewAdapter(ProviderTypeMock, nil, "en", time.Second)
	mock := a.provider.(*MockProvider)
	mock.SetResults(nil)

	if got := a.GatherContext(context.Background(), "query"); got != MsgNoResults {
		t.Errorf("Expected no-results sentinel, got %q", got)
	}
}
