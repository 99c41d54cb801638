package handlers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"songsmith/internal/core"
	"songsmith/internal/gen"
)

// NewRefineCmd creates the refine command
func NewRefineCmd() *cobra.Command {
	var (
		title      string
		analysis   string
		styles     []string
		fromFile   string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "refine",
		Short: "Produce two fresh takes on a title you already picked",
		Long: `Refine a chosen title into two contrasting, complete selections. The
prior analysis and style candidates steer the result; both outputs keep
the title exactly as given.

Examples:
  # Refine with explicit context
  songsmith refine --title "Harbor Lights" --analysis "coastal farewell" --style "indie folk" --style "dream pop"

  # Refine using a saved generate result as context
  songsmith refine --title "Harbor Lights" --from result.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefine(cmd, title, analysis, styles, fromFile, outputPath)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Selected song title (required)")
	cmd.Flags().StringVar(&analysis, "analysis", "", "Prior analysis text to steer the refinement")
	cmd.Flags().StringArrayVar(&styles, "style", nil, "Style candidate, repeatable")
	cmd.Flags().StringVar(&fromFile, "from", "", "Saved generate result JSON to take analysis and styles from")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the result JSON to a file instead of stdout")
	cmd.MarkFlagRequired("title")

	return cmd
}

func runRefine(cmd *cobra.Command, title, analysis string, styles []string, fromFile, outputPath string) error {
	if fromFile != "" {
		raw, err := os.ReadFile(fromFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", fromFile, err)
		}
		var prior core.GenerationResult
		if err := json.Unmarshal(raw, &prior); err != nil {
			return fmt.Errorf("failed to parse %s: %w", fromFile, err)
		}
		if analysis == "" {
			analysis = prior.Concept.Analysis
		}
		if len(styles) == 0 {
			styles = prior.Concept.StyleCandidates
		}
	}

	svc, err := buildServices(cmd.Context(), true)
	if err != nil {
		return err
	}

	result, err := svc.pipeline.Refine(cmd.Context(), gen.RefineRequest{
		SelectedTitle:   title,
		Analysis:        analysis,
		StyleCandidates: styles,
	})
	if err != nil {
		return fmt.Errorf("refinement failed: %w", err)
	}

	return printJSON(result, outputPath)
}
