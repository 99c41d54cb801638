// Package resolver turns arbitrary media URLs into verified metadata via
// provider-specific oEmbed lookups. Resolution is best-effort: every failure
// path yields nil metadata, never an error, so enrichment can degrade
// silently without aborting a generation request.
package resolver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"songsmith/internal/config"
	"songsmith/internal/core"
	"songsmith/internal/logger"
)

// oembedEndpoint builds a provider lookup URL for a target media URL.
// An empty return means the URL does not actually belong to this provider.
type oembedEndpoint func(target string) string

// provider is one entry in the ordered match table.
type provider struct {
	name     string
	patterns []*regexp.Regexp
	endpoint oembedEndpoint
}

// youtubeIDPattern matches the 11-character video identifier in the common
// YouTube URL shapes. Anything of a different length is not a video ID.
var youtubeIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?.*v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})(?:[&?/]|$)`)

const youtubeVideoIDLength = 11

// maxDescriptorBytes bounds how much of a provider response is read. oEmbed
// descriptors and feed records are small JSON documents; anything larger is
// a misbehaving endpoint.
const maxDescriptorBytes = 1 << 20

// providers is the ordered provider match table. The first matching entry
// wins; ambiguous URLs always resolve to the earliest-listed provider.
var providers = []provider{
	{
		name: "YouTube",
		patterns: compile(
			`youtube\.com/watch\?`,
			`youtu\.be/`,
			`youtube\.com/embed/`,
			`youtube\.com/shorts/`,
			`m\.youtube\.com/watch\?`,
		),
		endpoint: youtubeEndpoint,
	},
	{
		name:     "Spotify",
		patterns: compile(`open\.spotify\.com/(track|album|playlist|artist|episode|show)/`),
		endpoint: func(target string) string {
			return "https://open.spotify.com/oembed?url=" + url.QueryEscape(target)
		},
	},
	{
		name:     "SoundCloud",
		patterns: compile(`soundcloud\.com/`),
		endpoint: func(target string) string {
			return "https://soundcloud.com/oembed?format=json&url=" + url.QueryEscape(target)
		},
	},
	{
		name:     "TikTok",
		patterns: compile(`tiktok\.com/`),
		endpoint: func(target string) string {
			return "https://www.tiktok.com/oembed?url=" + url.QueryEscape(target)
		},
	},
	{
		name:     "Vimeo",
		patterns: compile(`vimeo\.com/`),
		endpoint: func(target string) string {
			return "https://vimeo.com/api/oembed.json?url=" + url.QueryEscape(target)
		},
	},
	{
		name:     "Twitter/X",
		patterns: compile(`(twitter\.com|x\.com)/`),
		endpoint: func(target string) string {
			return "https://publish.twitter.com/oembed?url=" + url.QueryEscape(target)
		},
	},
	{
		name:     "Instagram",
		patterns: compile(`instagram\.com/`),
		endpoint: func(target string) string {
			return "https://api.instagram.com/oembed?url=" + url.QueryEscape(target)
		},
	},
}

// sunoPattern matches links to the first-party generation service, which has
// no oEmbed endpoint and is special-cased in Resolve.
var sunoPattern = regexp.MustCompile(`(suno\.com|suno\.ai|app\.suno\.ai)/`)

func compile(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// youtubeEndpoint extracts the video ID and builds a canonical oEmbed lookup
// URL. A match of the wrong length is treated as no match.
func youtubeEndpoint(target string) string {
	matches := youtubeIDPattern.FindStringSubmatch(target)
	if len(matches) < 2 || len(matches[1]) != youtubeVideoIDLength {
		return ""
	}
	canonical := "https://www.youtube.com/watch?v=" + matches[1]
	return "https://www.youtube.com/oembed?format=json&url=" + url.QueryEscape(canonical)
}

// ProviderFor returns the name of the provider whose pattern matches the URL
// without performing any network lookup, or "" when no provider matches.
// Useful for template selection on URLs that failed to resolve.
func ProviderFor(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	for _, p := range providers {
		for _, re := range p.patterns {
			if re.MatchString(rawURL) {
				return p.name
			}
		}
	}
	if sunoPattern.MatchString(rawURL) {
		return "Suno"
	}
	return ""
}

// Resolver performs provider metadata lookups.
type Resolver struct {
	client       *http.Client
	sunoEndpoint string // optional local analysis service for first-party links
}

// New creates a Resolver from explicit configuration.
func New(cfg config.Resolver) *Resolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Resolver{
		client:       &http.Client{Timeout: timeout},
		sunoEndpoint: cfg.SunoEndpoint,
	}
}

// Resolve matches the URL against the ordered provider table and fetches
// normalized metadata from the first matching provider. It returns nil for
// empty or unsupported URLs and for any lookup failure.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) *core.ResolvedMetadata {
	if rawURL == "" {
		return nil
	}

	for _, p := range providers {
		for _, re := range p.patterns {
			if !re.MatchString(rawURL) {
				continue
			}
			lookupURL := p.endpoint(rawURL)
			if lookupURL == "" {
				// Pattern matched but no usable identifier (e.g. malformed
				// video ID); treat as unsupported.
				return nil
			}
			meta := r.fetchOEmbed(ctx, p.name, lookupURL)
			if meta == nil {
				logger.Debug("Metadata lookup failed", "provider", p.name, "url", rawURL)
			}
			return meta
		}
	}

	if sunoPattern.MatchString(rawURL) {
		meta := r.resolveSuno(ctx, rawURL)
		if meta == nil {
			logger.Debug("First-party metadata lookup failed", "url", rawURL)
		}
		return meta
	}

	return nil
}

// oembedDocument is the subset of an oEmbed response this resolver uses.
type oembedDocument struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
	Author     string `json:"author"`
}

// fetchOEmbed fetches and parses a provider's oEmbed descriptor. All error
// paths return nil.
func (r *Resolver) fetchOEmbed(ctx context.Context, providerName, lookupURL string) *core.ResolvedMetadata {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		logger.Debug("oEmbed endpoint returned non-success status",
			"provider", providerName, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDescriptorBytes))
	if err != nil {
		return nil
	}

	var doc oembedDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil
	}

	author := doc.AuthorName
	if author == "" {
		author = doc.Author
	}

	return &core.ResolvedMetadata{
		Title:    doc.Title,
		Author:   author,
		Provider: providerName,
	}
}
