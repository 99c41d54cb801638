// Package gen issues structured-output requests to the Gemini API with a
// strict response schema, an overload retry policy, and grounding-source
// extraction.
package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"songsmith/internal/core"
	"songsmith/internal/logger"
	"songsmith/internal/prompt"
)

const (
	// DefaultModel is the default Gemini model for concept generation.
	DefaultModel = "gemini-2.5-flash"

	// defaultTemperature biases toward deterministic, schema-faithful output
	// over variety.
	defaultTemperature = float32(0.3)
	defaultTopP        = float32(0.9)
)

// placeholderSourceTitle is used for grounding records the model returned
// without a title.
const placeholderSourceTitle = "Untitled source"

// Config is the explicit configuration a Client is constructed from. No
// ambient environment access happens inside the client.
type Config struct {
	APIKey      string
	Model       string  // Concept-generation model; DefaultModel when empty
	RefineModel string  // Refinement model; falls back to Model
	Temperature float32 // 0 means defaultTemperature
	TopP        float32 // 0 means defaultTopP
}

// MediaAttachment is an optional binary part (image or video) sent with the
// instruction payload.
type MediaAttachment struct {
	MIMEType string
	Data     []byte
}

// Request is one first-phase generation request.
type Request struct {
	Prompt           string
	Media            *MediaAttachment
	EnableSearchTool bool // Attach the model's own web-search tool
}

// generateFunc matches the underlying SDK call; swapped out in tests.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client issues generation requests against the Gemini API.
type Client struct {
	cfg     Config
	gClient *genai.Client

	call  generateFunc
	sleep func(time.Duration)
}

// NewClient creates a generation client from explicit configuration. A
// missing API key is a fatal configuration error, surfaced before any
// network call is attempted.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set GEMINI_API_KEY or ai.gemini.api_key in the config file", ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.RefineModel == "" {
		cfg.RefineModel = cfg.Model
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.TopP == 0 {
		cfg.TopP = defaultTopP
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		cfg:     cfg,
		gClient: gClient,
		sleep:   time.Sleep,
	}
	c.call = func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return c.gClient.Models.GenerateContent(ctx, model, contents, config)
	}
	return c, nil
}

// Model returns the concept-generation model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Generate issues a structured-output generation request and parses the
// schema-conformant result. Transient overload is retried with exponential
// backoff; all other failures propagate immediately.
func (c *Client) Generate(ctx context.Context, req Request) (*core.GenerationResult, error) {
	parts := []*genai.Part{{Text: req.Prompt}}
	if req.Media != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: req.Media.MIMEType,
				Data:     req.Media.Data,
			},
		})
	}
	contents := []*genai.Content{{Parts: parts, Role: "user"}}

	config := c.baseConfig()
	config.ResponseMIMEType = "application/json"
	config.ResponseSchema = ConceptSchema()
	if req.EnableSearchTool {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := c.generateWithRetry(ctx, c.cfg.Model, contents, config)
	if err != nil {
		return nil, err
	}

	text := resp.Text()
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var concept core.SongConcept
	if err := json.Unmarshal([]byte(text), &concept); err != nil {
		return nil, &SchemaError{Raw: text, Err: err}
	}
	if err := validateConcept(&concept); err != nil {
		return nil, &SchemaError{Raw: text, Err: err}
	}

	result := &core.GenerationResult{
		ID:            uuid.NewString(),
		Concept:       concept,
		Sources:       DedupeSources(extractSources(resp)),
		Usage:         extractUsage(resp),
		ModelUsed:     c.cfg.Model,
		DateGenerated: time.Now().UTC(),
	}

	logger.Info("Generation completed",
		"model", c.cfg.Model,
		"sources", len(result.Sources),
		"search_tool", req.EnableSearchTool)

	return result, nil
}

// baseConfig builds the shared generation config: system instruction and
// determinism controls.
func (c *Client) baseConfig() *genai.GenerateContentConfig {
	temp := c.cfg.Temperature
	topP := c.cfg.TopP
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: prompt.SystemInstruction}},
		},
		Temperature: &temp,
		TopP:        &topP,
	}
}

// validateConcept enforces the shape constraints the schema promises:
// exactly five candidates of each kind and fully populated selections.
func validateConcept(concept *core.SongConcept) error {
	if concept.Analysis == "" {
		return fmt.Errorf("missing analysis")
	}
	if got := len(concept.TitleCandidates); got != candidateCount {
		return fmt.Errorf("expected %d title candidates, got %d", candidateCount, got)
	}
	if got := len(concept.StyleCandidates); got != candidateCount {
		return fmt.Errorf("expected %d style candidates, got %d", candidateCount, got)
	}
	if err := validateSelection("bestSelection", &concept.BestSelection); err != nil {
		return err
	}
	return validateSelection("alternativeSelection", &concept.AlternativeSelection)
}

func validateSelection(field string, sel *core.SongSelection) error {
	if sel.Title == "" {
		return fmt.Errorf("%s has no title", field)
	}
	if sel.Style == "" {
		return fmt.Errorf("%s has no style", field)
	}
	if sel.Content == "" {
		return fmt.Errorf("%s has no content", field)
	}
	return nil
}

// extractUsage pulls informational token counters from the response, if
// present. Never used for control flow.
func extractUsage(resp *genai.GenerateContentResponse) *core.TokenUsage {
	if resp.UsageMetadata == nil {
		return nil
	}
	return &core.TokenUsage{
		PromptTokens:   resp.UsageMetadata.PromptTokenCount,
		ResponseTokens: resp.UsageMetadata.CandidatesTokenCount,
		TotalTokens:    resp.UsageMetadata.TotalTokenCount,
	}
}

// extractSources collects grounding citations attached to the response.
// Records without a reference URI are dropped; records without a title get a
// fixed placeholder.
func extractSources(resp *genai.GenerateContentResponse) []core.GroundingSource {
	var sources []core.GroundingSource
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			title := chunk.Web.Title
			if title == "" {
				title = placeholderSourceTitle
			}
			sources = append(sources, core.GroundingSource{
				URI:   chunk.Web.URI,
				Title: title,
			})
		}
	}
	return sources
}
