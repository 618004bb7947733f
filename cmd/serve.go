package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/helmcode/nifty-ai/pkg/logger"
	"github.com/helmcode/nifty-ai/pkg/metrics"
	"github.com/helmcode/nifty-ai/pkg/server"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	configPath string
	addr       string
	model      string
	verbose    bool
}

func NewServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis page and JSON API over HTTP",
		Long: `Start an HTTP server with a page that generates and renders a Nifty 50
analysis on demand, a JSON API, a health check and Prometheus metrics.

Examples:
  nifty-ai serve --addr :8080
  curl -X POST localhost:8080/api/analyze`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default from config or :8080)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Gemini model")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg, err := loadConfig(opts.configPath, opts.model, opts.verbose)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := newGeminiFetcher(ctx, cfg)
	if err != nil {
		return err
	}
	srv := server.New(f, cfg, metrics.NewCollector(), logger.Log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.Server.Addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
