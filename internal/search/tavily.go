package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"songsmith/internal/logger"
)

// TavilyProvider implements Provider using the Tavily AI-search API
type TavilyProvider struct {
	apiKey      string
	searchDepth string
	baseURL     string
	client      *http.Client
}

// NewTavilyProvider creates a new Tavily search provider. searchDepth may be
// "basic" or "advanced"; empty defaults to "basic".
func NewTavilyProvider(apiKey, searchDepth string) *TavilyProvider {
	if searchDepth == "" {
		searchDepth = "basic"
	}
	return &TavilyProvider{
		apiKey:      apiKey,
		searchDepth: searchDepth,
		baseURL:     "https://api.tavily.com/search",
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// GetName returns the name of this provider
func (t *TavilyProvider) GetName() string {
	return "Tavily"
}

// Search performs a search using the Tavily API
func (t *TavilyProvider) Search(ctx context.Context, query string, config Config) ([]Result, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"api_key":      t.apiKey,
		"query":        query,
		"search_depth": t.searchDepth,
		"max_results":  config.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode Tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create Tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute Tavily request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily request failed with status: %d", resp.StatusCode)
	}

	// Parse JSON response
	var apiResponse struct {
		Results []struct {
			Title   string  `json:"title"`
			URL     string  `json:"url"`
			Content string  `json:"content"`
			Score   float64 `json:"score"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse Tavily response: %w", err)
	}

	// Convert to Result format
	var results []Result
	for i, item := range apiResponse.Results {
		results = append(results, Result{
			URL:     item.URL,
			Title:   item.Title,
			Snippet: item.Content,
			Source:  "Tavily",
			Rank:    i + 1,
		})
	}

	logger.Info("Tavily search completed", "query", query, "results_found", len(results))

	return results, nil
}
