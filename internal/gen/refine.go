package gen

import (
	"context"
	"encoding/json"

	"google.golang.org/genai"

	"songsmith/internal/core"
	"songsmith/internal/logger"
	"songsmith/internal/prompt"
)

// RefineRequest asks for two fresh takes on a title the user already locked
// in, informed by the first-phase analysis.
type RefineRequest struct {
	SelectedTitle   string
	Analysis        string
	StyleCandidates []string
}

// Refine runs the second-phase request: the model produces two contrasting
// full realizations for the selected title. The same overload policy as
// Generate applies. Whatever titles the model returns, both results carry
// the user's selected title.
func (c *Client) Refine(ctx context.Context, req RefineRequest) (*core.RefinementResult, error) {
	text := prompt.AssembleRefine(req.SelectedTitle, req.Analysis, req.StyleCandidates)
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: text}},
		Role:  "user",
	}}

	config := c.baseConfig()
	config.ResponseMIMEType = "application/json"
	config.ResponseSchema = RefineSchema()

	resp, err := c.generateWithRetry(ctx, c.cfg.RefineModel, contents, config)
	if err != nil {
		return nil, err
	}

	raw := resp.Text()
	if raw == "" {
		return nil, ErrEmptyResponse
	}

	var parsed struct {
		BestSelection        core.SongSelection `json:"bestSelection"`
		AlternativeSelection core.SongSelection `json:"alternativeSelection"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &SchemaError{Raw: raw, Err: err}
	}

	// The selection is the user's, not the model's.
	parsed.BestSelection.Title = req.SelectedTitle
	parsed.AlternativeSelection.Title = req.SelectedTitle

	result := &core.RefinementResult{
		Best:        parsed.BestSelection,
		Alternative: parsed.AlternativeSelection,
		Usage:       extractUsage(resp),
	}

	logger.Info("Refinement completed", "model", c.cfg.RefineModel, "title", req.SelectedTitle)

	return result, nil
}
