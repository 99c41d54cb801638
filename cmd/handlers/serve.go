package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"songsmith/internal/logger"
	"songsmith/internal/server"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API for the browser frontend",
		Long: `Start the songsmith HTTP server.

The server provides:
  • POST /api/generate  - full generation pipeline
  • POST /api/refine    - second-phase refinement
  • POST /api/resolve   - media metadata lookup
  • POST /api/search    - search backend check
  • POST /api/separate  - stem separation upload (when configured)
  • GET  /health        - health check

Examples:
  # Start on the port from the config file (default 8080)
  songsmith serve

  # Start on a custom port
  songsmith serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 127.0.0.1)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	svc, err := buildServices(ctx, true)
	if err != nil {
		return err
	}

	serverCfg := svc.cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	srv := server.New(server.Deps{
		Pipeline:   svc.pipeline,
		Resolver:   svc.resolver,
		Search:     svc.search,
		Separation: svc.separation,
	}, serverCfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
