package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"songsmith/internal/gen"
	"songsmith/internal/pipeline"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var (
		theme      string
		mediaURL   string
		mediaFile  string
		deep       bool
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a song concept from a theme, media link, or attachment",
		Long: `Generate a structured song concept: an analysis, five title candidates,
five style candidates, and two complete selections.

At least one of --theme, --url, or --file is required. Inputs combine: a
theme can steer the interpretation of a linked or attached media item.

Examples:
  # Theme only
  songsmith generate --theme "lo-fi study beats, autumn rain"

  # YouTube link, visual and audio analysis
  songsmith generate --url https://youtu.be/dQw4w9WgXcQ --deep

  # Image attachment plus a theme
  songsmith generate --file cover.jpg --theme "what this artwork sounds like"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, theme, mediaURL, mediaFile, deep, outputPath)
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "Free-text theme or direction for the song")
	cmd.Flags().StringVar(&mediaURL, "url", "", "Media link (YouTube, Spotify, SoundCloud, Suno, ...)")
	cmd.Flags().StringVar(&mediaFile, "file", "", "Image or video file to attach")
	cmd.Flags().BoolVar(&deep, "deep", false, "Request visual and audio content analysis for video links")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the result JSON to a file instead of stdout")

	return cmd
}

func runGenerate(cmd *cobra.Command, theme, mediaURL, mediaFile string, deep bool, outputPath string) error {
	if theme == "" && mediaURL == "" && mediaFile == "" {
		return fmt.Errorf("provide at least one of --theme, --url, or --file")
	}

	var media *gen.MediaAttachment
	if mediaFile != "" {
		attachment, err := loadAttachment(mediaFile)
		if err != nil {
			return err
		}
		media = attachment
	}

	svc, err := buildServices(cmd.Context(), true)
	if err != nil {
		return err
	}

	result, err := svc.pipeline.Generate(cmd.Context(), pipeline.GenerateRequest{
		Theme:        theme,
		MediaURL:     mediaURL,
		Media:        media,
		DeepAnalysis: deep,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	return printJSON(result, outputPath)
}

// loadAttachment reads a local image or video file and determines its MIME
// type from the extension, falling back to content sniffing.
func loadAttachment(path string) (*gen.MediaAttachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") && !strings.HasPrefix(mimeType, "video/") {
		return nil, fmt.Errorf("unsupported attachment type %s for %s", mimeType, path)
	}

	return &gen.MediaAttachment{MIMEType: mimeType, Data: data}, nil
}
