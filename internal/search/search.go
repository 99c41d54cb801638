package search

import (
	"context"
)

// Provider defines the unified interface for web-search providers used to
// gather supplementary context about a media item.
type Provider interface {
	// Search performs a search with configuration
	Search(ctx context.Context, query string, config Config) ([]Result, error)

	// GetName returns the name of the search provider
	GetName() string
}

// Config holds configuration for search requests
type Config struct {
	MaxResults int    // Maximum number of results to return
	Language   string // Language preference (e.g., "en", "es")
}

// Result represents a unified search result
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"` // Provider-specific source identifier
	Rank    int    `json:"rank"`   // Position in search results
}

// ProviderType represents the kind of search backend
type ProviderType string

const (
	// ProviderTypeBuiltin signals that search is delegated to the generative
	// model's own search tool; no network provider is created for it.
	ProviderTypeBuiltin ProviderType = "builtin"
	ProviderTypeGoogle  ProviderType = "google"
	ProviderTypeTavily  ProviderType = "tavily"
	ProviderTypeNone    ProviderType = "none"
	ProviderTypeMock    ProviderType = "mock"
)

// IsNetworkBacked reports whether the provider type performs its own HTTP
// searches (as opposed to builtin/none which never touch the network here).
func (t ProviderType) IsNetworkBacked() bool {
	return t == ProviderTypeGoogle || t == ProviderTypeTavily || t == ProviderTypeMock
}

// ProviderFactory creates search providers based on type and configuration
type ProviderFactory struct{}

// NewProviderFactory creates a new provider factory
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// CreateProvider creates a search provider of the specified type
func (f *ProviderFactory) CreateProvider(providerType ProviderType, config map[string]string) (Provider, error) {
	switch providerType {
	case ProviderTypeGoogle:
		apiKey, exists := config["api_key"]
		if !exists || apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		searchID, exists := config["search_id"]
		if !exists || searchID == "" {
			return nil, ErrMissingSearchID
		}
		return NewGoogleProvider(apiKey, searchID), nil
	case ProviderTypeTavily:
		apiKey, exists := config["api_key"]
		if !exists || apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewTavilyProvider(apiKey, config["search_depth"]), nil
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// GetAvailableProviders returns a list of available provider types
func (f *ProviderFactory) GetAvailableProviders() []ProviderType {
	return []ProviderType{
		ProviderTypeBuiltin,
		ProviderTypeGoogle,
		ProviderTypeTavily,
		ProviderTypeNone,
		ProviderTypeMock,
	}
}
