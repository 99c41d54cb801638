package handlers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run the configured search backend and print the gathered context",
		Long: `Run a query through the configured search backend (google or tavily) and
print the snippet context exactly as it would be folded into a generation
prompt. Useful for checking backend configuration.

With the builtin or none backend this prints nothing, since those backends
gather no external context.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildServices(cmd.Context(), false)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")

			fmt.Printf("Backend: %s\n\n", svc.search.Backend())
			context := svc.search.GatherContext(cmd.Context(), query)
			if context == "" {
				fmt.Println("(no external context for this backend)")
				return nil
			}
			fmt.Println(context)
			return nil
		},
	}

	return cmd
}
