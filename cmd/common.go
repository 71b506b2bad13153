package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helmcode/leafdoc/pkg/analyzer"
	"github.com/helmcode/leafdoc/pkg/config"
	"github.com/helmcode/leafdoc/pkg/knowledge"
	"github.com/helmcode/leafdoc/pkg/llm"
	"github.com/helmcode/leafdoc/pkg/logging"
	"github.com/helmcode/leafdoc/pkg/storage"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// BindGlobalFlags registers the persistent flags and the hooks that load
// configuration and build the logger before any subcommand runs.
func BindGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default leafdoc.yaml if present)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if c.Name() == "version" {
			return nil
		}
		return setup()
	}
	root.PersistentPostRun = func(c *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	}
}

func setup() error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger, err = logging.New(level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// applyLLMFlags lets --provider and --model override the loaded config.
// Switching provider re-reads the credential from that provider's variable.
func applyLLMFlags(provider, model string) error {
	if provider != "" {
		p, err := llm.ParseProvider(provider)
		if err != nil {
			return err
		}
		if string(p) != cfg.LLM.Provider {
			cfg.LLM.Provider = string(p)
			cfg.LLM.APIKey = os.Getenv(llm.APIKeyEnv(p))
			cfg.LLM.Model = os.Getenv(llm.ModelEnv(p))
		}
	}
	if model != "" {
		cfg.LLM.Model = model
	}
	return nil
}

// buildAnalyzer creates the analyzer for the configured provider, falling
// back to simulation mode when no credential is available.
func buildAnalyzer(ctx context.Context) (*analyzer.Analyzer, error) {
	provider, err := llm.ParseProvider(cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}

	opts := []analyzer.Option{
		analyzer.WithFallback(knowledge.PlantClass(cfg.Diagnosis.FallbackClass)),
		analyzer.WithTimeout(cfg.LLM.Timeout),
		analyzer.WithMaxDimension(cfg.Diagnosis.MaxImageDim),
		analyzer.WithLogger(logger.Named("analyzer")),
	}

	a, err := analyzer.NewWithProvider(ctx, provider, cfg.Settings(), opts...)
	if errors.Is(err, llm.ErrMissingCredential) {
		envVar := llm.APIKeyEnv(provider)
		logger.Warn("No provider credential configured, running in simulation mode",
			zap.String("provider", string(provider)),
			zap.String("env", envVar))
		return analyzer.NewSimulated(envVar, opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", provider, err)
	}

	logger.Debug("Analyzer ready", zap.String("provider", a.Provider()), zap.String("model", a.Model()))
	return a, nil
}

// openHistory opens the configured history store. It returns nil when
// history is disabled.
func openHistory() (*storage.Store, error) {
	if cfg.Storage.Path == "" {
		return nil, nil
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history %s: %w", cfg.Storage.Path, err)
	}
	return store, nil
}

func providerList() string {
	providers := llm.NewFactory().GetAvailableProviders()
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Printf("✓ %s\n", msg)
}

func printWarning(msg string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("! %s\n", msg)
}
