package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"songsmith/internal/resolver"
)

// NewResolveCmd creates the resolve command
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [url]",
		Short: "Resolve a media link to title and author metadata",
		Long: `Look up a media link against its provider's oEmbed endpoint (or the Suno
page for Suno links) and print the verified metadata.

An unsupported or unreachable link is not an error; the command reports
that nothing resolved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildServices(cmd.Context(), false)
			if err != nil {
				return err
			}

			rawURL := args[0]
			meta := svc.resolver.Resolve(cmd.Context(), rawURL)
			if meta == nil {
				provider := resolver.ProviderFor(rawURL)
				if provider == "" {
					fmt.Println("No provider matched this URL.")
				} else {
					fmt.Printf("Matched provider %s, but the lookup did not resolve.\n", provider)
				}
				return nil
			}

			return printJSON(meta, "")
		},
	}

	return cmd
}
