package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"songsmith/internal/core"
	"songsmith/internal/logger"
)

// Sentinel context strings. They are folded into the generation prompt as-is
// so the model knows why no external context is available; search problems
// must never fail a generation request.
const (
	// MsgNotConfigured explains missing API keys or search engine ids.
	MsgNotConfigured = "Web search is not configured (missing API key or search engine id). Proceed using the verified metadata and general knowledge only."

	// MsgSearchFailed is used for any network or parse failure.
	MsgSearchFailed = "Web search failed. Proceed using the verified metadata and general knowledge only."

	// MsgNoResults is used when the backend returned an empty result set.
	MsgNoResults = "Web search returned no results."
)

// maxContextSnippets caps how many results are folded into the prompt.
const maxContextSnippets = 5

// Adapter gathers supplementary web context for a resolved media item. It
// wraps a Provider and converts every failure mode into an explanatory
// string, allowing generation to proceed degraded rather than failing.
type Adapter struct {
	provider Provider // nil when the backend is builtin, none, or misconfigured
	backend  ProviderType
	language string
	timeout  time.Duration
	ready    bool // false when configuration was missing
}

// NewAdapter builds an Adapter for the given backend. Missing configuration
// is not an error: the adapter is created in a degraded state and reports it
// through the sentinel string.
func NewAdapter(backend ProviderType, providerConfig map[string]string, language string, timeout time.Duration) *Adapter {
	a := &Adapter{
		backend:  backend,
		language: language,
		timeout:  timeout,
	}
	if timeout <= 0 {
		a.timeout = 30 * time.Second
	}

	if !backend.IsNetworkBacked() {
		a.ready = true
		return a
	}

	provider, err := NewProviderFactory().CreateProvider(backend, providerConfig)
	if err != nil {
		logger.Warn("Search backend not configured, context gathering disabled",
			"backend", string(backend), "reason", err.Error())
		return a
	}

	a.provider = provider
	a.ready = true
	return a
}

// Backend returns the adapter's backend kind.
func (a *Adapter) Backend() ProviderType {
	return a.backend
}

// GatherContext searches for the query and renders the results as a snippet
// block. It always returns a usable string: rendered snippets, or one of the
// sentinel messages. Backends without a network provider (builtin, none)
// return an empty string, meaning no context block at all.
func (a *Adapter) GatherContext(ctx context.Context, query string) string {
	if !a.backend.IsNetworkBacked() {
		return ""
	}
	if !a.ready {
		return MsgNotConfigured
	}

	searchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results, err := a.provider.Search(searchCtx, query, Config{
		MaxResults: maxContextSnippets,
		Language:   a.language,
	})
	if err != nil {
		logger.Warn("Context search failed", "backend", string(a.backend), "error", err.Error())
		return MsgSearchFailed
	}

	return FormatSnippets(results)
}

// FormatSnippets renders search results as a newline-joined snippet block,
// one "- <title>: <snippet>" line per result, capped at maxContextSnippets.
// Empty result sets render as the fixed no-results sentinel.
func FormatSnippets(results []Result) string {
	if len(results) == 0 {
		return MsgNoResults
	}

	limit := len(results)
	if limit > maxContextSnippets {
		limit = maxContextSnippets
	}

	lines := make([]string, 0, limit)
	for _, r := range results[:limit] {
		lines = append(lines, fmt.Sprintf("- %s: %s", r.Title, r.Snippet))
	}
	return strings.Join(lines, "\n")
}

// BuildMediaQuery constructs the context-search query for a resolved media
// item: `"<title>" <author> music genre style analysis`.
func BuildMediaQuery(meta *core.ResolvedMetadata) string {
	if meta == nil {
		return ""
	}
	parts := []string{fmt.Sprintf("%q", meta.Title)}
	if meta.Author != "" {
		parts = append(parts, meta.Author)
	}
	parts = append(parts, "music genre style analysis")
	return strings.Join(parts, " ")
}
