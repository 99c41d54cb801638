package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"songsmith/internal/config"
	"songsmith/internal/gen"
	"songsmith/internal/pipeline"
	"songsmith/internal/resolver"
	"songsmith/internal/search"
	"songsmith/internal/separation"
)

// services bundles the wired stages commands run against.
type services struct {
	cfg        *config.Config
	resolver   *resolver.Resolver
	search     *search.Adapter
	generator  *gen.Client
	pipeline   *pipeline.Pipeline
	separation *separation.Client
}

// buildServices wires the full stack from configuration. withModel controls
// whether a Gemini client is constructed; commands that never call the model
// skip it so they work without an API key.
func buildServices(ctx context.Context, withModel bool) (*services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	s := &services{
		cfg:      cfg,
		resolver: resolver.New(cfg.Resolver),
		search: search.NewAdapter(
			search.ProviderType(cfg.Search.Backend),
			config.GetSearchProviderConfig(cfg.Search.Backend),
			"",
			cfg.Search.Timeout,
		),
		separation: separation.New(cfg.Separation),
	}

	if withModel {
		generator, err := gen.NewClient(ctx, gen.Config{
			APIKey:      cfg.AI.Gemini.APIKey,
			Model:       cfg.AI.Gemini.Model,
			RefineModel: cfg.AI.Gemini.RefineModel,
			Temperature: cfg.AI.Gemini.Temperature,
			TopP:        cfg.AI.Gemini.TopP,
		})
		if err != nil {
			return nil, err
		}
		s.generator = generator
		s.pipeline = pipeline.New(s.resolver, s.search, generator)
	}

	return s, nil
}

// printJSON writes a result as indented JSON to stdout or a file.
func printJSON(data any, outputPath string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if outputPath == "" {
		fmt.Println(string(raw))
		return nil
	}
	if err := os.WriteFile(outputPath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	fmt.Printf("Result written to %s\n", outputPath)
	return nil
}
