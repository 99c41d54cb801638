package search

import (
	"context"
)

// MockProvider implements Provider for testing purposes
type MockProvider struct {
	name    string
	results []Result
	err     error
}

// NewMockProvider creates a new mock search provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name: "Mock",
		results: []Result{
			{
				URL:     "https://example.com/review1",
				Title:   "Track Review",
				Snippet: "A moody synthwave track with driving bass and retro pads.",
				Source:  "Mock",
				Rank:    1,
			},
			{
				URL:     "https://example.org/genre-guide",
				Title:   "Genre Guide",
				Snippet: "Synthwave blends 80s film-score nostalgia with modern production.",
				Source:  "Mock",
				Rank:    2,
			},
		},
	}
}

// GetName returns the name of this provider
func (m *MockProvider) GetName() string {
	return m.name
}

// Search returns the configured mock results
func (m *MockProvider) Search(ctx context.Context, query string, config Config) ([]Result, error) {
	if m.err != nil {
		return nil, m.err
	}

	maxResults := config.MaxResults
	if maxResults <= 0 || maxResults > len(m.results) {
		maxResults = len(m.results)
	}

	results := make([]Result, maxResults)
	copy(results, m.results[:maxResults])
	return results, nil
}

// SetResults allows customization of mock results for testing
func (m *MockProvider) SetResults(results []Result) {
	m.results = results
}

// SetError makes every Search call fail (for testing failure paths)
func (m *MockProvider) SetError(err error) {
	m.err = err
}
