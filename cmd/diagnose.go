package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helmcode/leafdoc/pkg/formatter"
	"github.com/helmcode/leafdoc/pkg/storage"
)

var (
	diagnoseOutputFormat string
	diagnoseProvider     string
	diagnoseModel        string
	diagnoseNoHistory    bool
)

func NewDiagnoseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose IMAGE",
		Short: "Diagnose a leaf photo with a vision model",
		Long: `Send a leaf photo to the configured vision model and print the diagnosis.

Examples:
  # Diagnose with the default provider (Gemini)
  leafdoc diagnose leaf.jpg

  # Use OpenAI and a specific model
  leafdoc diagnose leaf.jpg --provider openai --model gpt-4o-mini

  # Machine-readable output
  leafdoc diagnose leaf.jpg -o json`,
		Args: cobra.ExactArgs(1),
		RunE: runDiagnose,
	}

	cmd.Flags().StringVarP(&diagnoseOutputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().StringVar(&diagnoseProvider, "provider", "", "LLM provider ("+providerList()+")")
	cmd.Flags().StringVar(&diagnoseModel, "model", "", "Model name for the selected provider")
	cmd.Flags().BoolVar(&diagnoseNoHistory, "no-history", false, "Do not record the diagnosis in the history store")

	return cmd
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	if err := formatter.ValidateFormat(diagnoseOutputFormat); err != nil {
		return err
	}
	if err := applyLLMFlags(diagnoseProvider, diagnoseModel); err != nil {
		return err
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := buildAnalyzer(ctx)
	if err != nil {
		return err
	}

	human := diagnoseOutputFormat == formatter.FormatHuman
	if human {
		printHeader(imagePath, a.Provider(), a.Model())
		if a.Simulated() {
			printWarning("No API key configured, returning a simulated diagnosis")
		}
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " Analyzing leaf with AI..."
	s.Writer = os.Stderr
	if human {
		s.Start()
	}

	result, err := a.Diagnose(ctx, data)
	s.Stop()
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}
	if human {
		printSuccess("Analysis complete")
	}

	if !diagnoseNoHistory {
		recordDiagnosis(ctx, storage.NewPrediction(result, storage.Meta{
			Filename: filepath.Base(imagePath),
			Provider: a.Provider(),
			Model:    a.Model(),
		}))
	}

	return formatter.DisplayResult(os.Stdout, result, diagnoseOutputFormat)
}

func recordDiagnosis(ctx context.Context, p *storage.Prediction) {
	store, err := openHistory()
	if err != nil {
		logger.Warn("History unavailable", zap.Error(err))
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	if err := store.Save(ctx, p); err != nil {
		logger.Warn("Failed to record prediction", zap.Error(err))
	}
}

func printHeader(imagePath, provider, model string) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Println()
	cyan.Println("🔍 Leaf Disease Diagnosis")
	fmt.Printf("📷 Image: %s\n", imagePath)
	if model != "" {
		fmt.Printf("🤖 Model: %s (%s)\n", model, provider)
	} else {
		fmt.Printf("🤖 Provider: %s\n", provider)
	}
	fmt.Println()
}
