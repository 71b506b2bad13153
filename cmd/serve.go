package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/helmcode/leafdoc/pkg/server"
)

const shutdownTimeout = 10 * time.Second

var (
	servePort      int
	serveStaticDir string
	serveProvider  string
	serveModel     string
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diagnosis HTTP API",
		Long: `Start the HTTP API that accepts leaf photos and returns diagnoses.

Examples:
  # Serve on the configured port (default 8080)
  leafdoc serve

  # Serve a static web UI alongside the API
  leafdoc serve --port 5000 --static ./web`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	cmd.Flags().StringVar(&serveStaticDir, "static", "", "Directory with static UI files (overrides config)")
	cmd.Flags().StringVar(&serveProvider, "provider", "", "LLM provider ("+providerList()+")")
	cmd.Flags().StringVar(&serveModel, "model", "", "Model name for the selected provider")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveStaticDir != "" {
		cfg.Server.StaticDir = serveStaticDir
	}
	if err := applyLLMFlags(serveProvider, serveModel); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildAnalyzer(ctx)
	if err != nil {
		return err
	}

	var history server.Recorder
	store, err := openHistory()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		history = store
		logger.Info("Recording predictions", zap.String("path", cfg.Storage.Path))
	}

	srv := server.New(server.Config{
		StaticDir: cfg.Server.StaticDir,
		BodyLimit: cfg.Server.BodyLimitMB * 1024 * 1024,
	}, a, history, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(cfg.Addr()); err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
