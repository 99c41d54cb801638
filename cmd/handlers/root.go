package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"songsmith/internal/config"
	"songsmith/internal/logger"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "songsmith",
		Short: "Songsmith turns a theme or media link into generation parameters for a music service",
		Long: `Songsmith converts a free-text theme, an uploaded image or video, or a
media link (YouTube, Spotify, SoundCloud, Suno, ...) into a structured song
concept: an analysis, five title candidates, five style candidates, and two
complete selections ready for a generative-music service.

Examples:
  # Generate from a theme
  songsmith generate --theme "rainy night drive, synthwave"

  # Generate from a YouTube link with deep analysis
  songsmith generate --url https://youtu.be/dQw4w9WgXcQ --deep

  # Refine a chosen title into two fresh takes
  songsmith refine --title "Harbor Lights" --analysis "..." --style "indie folk"

  # Start the HTTP API for the browser frontend
  songsmith serve --port 8080`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.songsmith.yaml)")

	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewRefineCmd())
	rootCmd.AddCommand(NewResolveCmd())
	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewSeparateCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads configuration once per command invocation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.App.Debug {
		logger.SetLevel("debug")
	}
	return cfg, nil
}
