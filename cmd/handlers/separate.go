package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"songsmith/internal/core"
)

// NewSeparateCmd creates the separate command
func NewSeparateCmd() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "separate [audio file]",
		Short: "Split an audio file into vocal and instrumental stems",
		Long: `Upload an audio file to the separation backend and print the task ID.
With --wait the command polls until the job finishes and prints the stem
URLs.

Requires a configured separation backend (SEPARATION_BASE_URL or
separation.base_url in the config file).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildServices(cmd.Context(), false)
			if err != nil {
				return err
			}

			taskID, err := svc.separation.Submit(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("separation failed: %w", err)
			}
			fmt.Printf("Task submitted: %s\n", taskID)

			if !wait {
				fmt.Printf("Poll with: songsmith serve and GET /api/separate/%s\n", taskID)
				return nil
			}

			lastProgress := -1
			job, err := svc.separation.Wait(cmd.Context(), taskID, func(j *core.SeparationJob) {
				if j.Progress != lastProgress {
					fmt.Printf("  %s %d%%\n", j.Status, j.Progress)
					lastProgress = j.Progress
				}
			})
			if err != nil {
				return fmt.Errorf("separation failed: %w", err)
			}

			fmt.Println("Stems:")
			for stem, url := range job.Result {
				fmt.Printf("  %s: %s\n", stem, url)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until the job finishes and print stem URLs")

	return cmd
}
