// Package pipeline wires the full generation flow together: resolve the
// media link, gather search context, assemble the instruction payload, call
// the model.
package pipeline

import (
	"context"

	"songsmith/internal/core"
	"songsmith/internal/gen"
	"songsmith/internal/logger"
	"songsmith/internal/prompt"
	"songsmith/internal/resolver"
	"songsmith/internal/search"
)

// Generator is the model-facing surface the pipeline needs. *gen.Client
// satisfies it; tests substitute a fake.
type Generator interface {
	Generate(ctx context.Context, req gen.Request) (*core.GenerationResult, error)
	Refine(ctx context.Context, req gen.RefineRequest) (*core.RefinementResult, error)
}

// MetadataResolver resolves a media URL to verified metadata, nil on miss.
type MetadataResolver interface {
	Resolve(ctx context.Context, rawURL string) *core.ResolvedMetadata
}

// ContextGatherer supplies external search context for a prompt.
type ContextGatherer interface {
	Backend() search.ProviderType
	GatherContext(ctx context.Context, query string) string
}

// Pipeline runs end-to-end generation requests.
type Pipeline struct {
	resolver  MetadataResolver
	search    ContextGatherer
	generator Generator
}

// New assembles a pipeline from its three stages.
func New(res MetadataResolver, gatherer ContextGatherer, generator Generator) *Pipeline {
	return &Pipeline{
		resolver:  res,
		search:    gatherer,
		generator: generator,
	}
}

// GenerateRequest is one end-to-end generation request.
type GenerateRequest struct {
	Theme        string
	MediaURL     string
	Media        *gen.MediaAttachment
	DeepAnalysis bool
}

// Generate runs resolution, context gathering, prompt assembly, and the
// model call for one request.
func (p *Pipeline) Generate(ctx context.Context, req GenerateRequest) (*core.GenerationResult, error) {
	var meta *core.ResolvedMetadata
	if req.MediaURL != "" {
		meta = p.resolver.Resolve(ctx, req.MediaURL)
		if meta == nil {
			logger.Debug("Media URL did not resolve", "url", req.MediaURL)
		}
	}

	searchContext := ""
	if meta != nil && p.search.Backend().IsNetworkBacked() {
		searchContext = p.search.GatherContext(ctx, search.BuildMediaQuery(meta))
	}

	var providerHint string
	if meta == nil && req.MediaURL != "" {
		providerHint = resolver.ProviderFor(req.MediaURL)
	}

	text := prompt.Assemble(prompt.Input{
		Theme:         req.Theme,
		MediaURL:      req.MediaURL,
		Metadata:      meta,
		SearchContext: searchContext,
		HasAttachment: req.Media != nil,
		DeepAnalysis:  req.DeepAnalysis,
		ProviderHint:  providerHint,
	})

	return p.generator.Generate(ctx, gen.Request{
		Prompt:           text,
		Media:            req.Media,
		EnableSearchTool: p.search.Backend() == search.ProviderTypeBuiltin,
	})
}

// Refine forwards a second-phase refinement request.
func (p *Pipeline) Refine(ctx context.Context, req gen.RefineRequest) (*core.RefinementResult, error) {
	return p.generator.Refine(ctx, req)
}
