package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"songsmith/internal/core"
	"songsmith/internal/logger"
)

const sunoProviderName = "Suno"

// sunoSongIDPattern extracts the UUID song identifier from a song page URL.
var sunoSongIDPattern = regexp.MustCompile(`song/([0-9a-fA-F-]{36})`)

const sunoFeedAPI = "https://studio-api.suno.ai/api/feed/?ids="

const scrapeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// resolveSuno handles the first-party service, which has no oEmbed endpoint.
// When a local analysis service is configured it is preferred; otherwise the
// song page is scraped directly. Both paths return nil on any failure.
func (r *Resolver) resolveSuno(ctx context.Context, rawURL string) *core.ResolvedMetadata {
	if r.sunoEndpoint != "" {
		if meta := r.analyzeViaService(ctx, rawURL); meta != nil {
			return meta
		}
		logger.Debug("Local analysis service lookup failed, falling back to scraping", "url", rawURL)
	}
	return r.scrapeSunoPage(ctx, rawURL)
}

// analyzeViaService asks the local analysis backend to resolve the link.
func (r *Resolver) analyzeViaService(ctx context.Context, rawURL string) *core.ResolvedMetadata {
	payload, err := json.Marshal(map[string]string{"url": rawURL})
	if err != nil {
		return nil
	}

	endpoint := strings.TrimRight(r.sunoEndpoint, "/") + "/suno/analyze"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var doc struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Provider    string `json:"provider"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil
	}
	if doc.Title == "" {
		return nil
	}

	title, author := splitTitleByAuthor(doc.Title)
	return &core.ResolvedMetadata{
		Title:       title,
		Author:      author,
		Provider:    sunoProviderName,
		Description: doc.Description,
	}
}

// scrapeSunoPage fetches the song page and extracts metadata from OpenGraph
// tags, falling back to the embedded Next.js JSON blob and finally the
// unofficial feed API.
func (r *Resolver) scrapeSunoPage(ctx context.Context, rawURL string) *core.ResolvedMetadata {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	// Short links redirect to the canonical song URL; use the final URL for
	// ID extraction.
	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil
	}

	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	description, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	var author string

	// Generic OG titles mean the page was served without song data; dig into
	// the Next.js payload instead.
	if title == "" || title == "Suno" {
		if clip := extractNextData(doc); clip != nil {
			if clip.Title != "" {
				title = clip.Title
			}
			if name := clip.artistName(); name != "" {
				author = name
			}
			if clip.Metadata.Prompt != "" {
				description = clip.Metadata.Prompt
			}
		}
	}

	// Heuristic artist extraction from profile links when the JSON missed it.
	if author == "" {
		if link := doc.Find(`a[href^="/@"]`).First(); link.Length() > 0 {
			author = strings.TrimSpace(link.Text())
		}
	}

	if (title == "" || title == "Suno" || author == "") && sunoSongIDPattern.MatchString(finalURL) {
		songID := sunoSongIDPattern.FindStringSubmatch(finalURL)[1]
		if feedTitle, feedAuthor, feedPrompt := r.fetchSunoFeed(ctx, songID); feedTitle != "" {
			title = feedTitle
			if feedAuthor != "" {
				author = feedAuthor
			}
			if description == "" {
				description = feedPrompt
			}
		}
	}

	if title == "" || title == "Suno" {
		return nil
	}

	return &core.ResolvedMetadata{
		Title:       title,
		Author:      author,
		Provider:    sunoProviderName,
		Description: description,
	}
}

// sunoClip is the song record embedded in the page's Next.js data.
type sunoClip struct {
	Title       string `json:"title"`
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle"`
	Metadata    struct {
		Prompt string `json:"prompt"`
	} `json:"metadata"`
}

func (c *sunoClip) artistName() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Handle
}

// extractNextData parses the __NEXT_DATA__ script for the clip record.
func extractNextData(doc *goquery.Document) *sunoClip {
	raw := doc.Find(`script#__NEXT_DATA__`).Text()
	if raw == "" {
		return nil
	}

	var payload struct {
		Props struct {
			PageProps struct {
				Clip *sunoClip `json:"clip"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		logger.Debug("Failed to parse __NEXT_DATA__ payload", "error", err.Error())
		return nil
	}
	return payload.Props.PageProps.Clip
}

// fetchSunoFeed queries the unofficial feed API for a song by ID.
func (r *Resolver) fetchSunoFeed(ctx context.Context, songID string) (title, author, prompt string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sunoFeedAPI+songID, nil)
	if err != nil {
		return "", "", ""
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", "", ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", "", ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDescriptorBytes))
	if err != nil {
		return "", "", ""
	}

	var songs []struct {
		Title       string `json:"title"`
		DisplayName string `json:"display_name"`
		Handle      string `json:"handle"`
		Metadata    struct {
			Prompt string `json:"prompt"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(body, &songs); err != nil || len(songs) == 0 {
		return "", "", ""
	}

	song := songs[0]
	author = song.DisplayName
	if author == "" {
		author = song.Handle
	}
	return song.Title, author, song.Metadata.Prompt
}

// splitTitleByAuthor splits the "Title by Artist" form the local analysis
// service returns into its parts. Titles without the marker pass through.
func splitTitleByAuthor(combined string) (title, author string) {
	if idx := strings.LastIndex(combined, " by "); idx > 0 {
		return combined[:idx], combined[idx+len(" by "):]
	}
	return combined, ""
}
