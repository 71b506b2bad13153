package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helmcode/leafdoc/pkg/formatter"
)

var (
	historyOutputFormat string
	historyLimit        int
)

func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent diagnoses and aggregate stats",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}

	cmd.Flags().StringVarP(&historyOutputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of predictions to show")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := formatter.ValidateFormat(historyOutputFormat); err != nil {
		return err
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("history is disabled (storage.path is empty)")
	}
	defer store.Close()

	ctx := cmd.Context()
	items, err := store.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	if err := formatter.DisplayHistory(os.Stdout, items, historyOutputFormat); err != nil {
		return err
	}

	if historyOutputFormat != formatter.FormatHuman {
		return nil
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	color.New(color.FgCyan, color.Bold).Println("📊 STATS:")
	fmt.Printf("   Total predictions: %d\n", stats.TotalPredictions)
	if stats.TopPlant != "" {
		fmt.Printf("   Most diagnosed:    %s\n", stats.TopPlant)
	}
	if stats.Degraded > 0 {
		fmt.Printf("   Fallback replies:  %s\n", color.YellowString("%d", stats.Degraded))
	}

	categories := make([]string, 0, len(stats.Categories))
	for c := range stats.Categories {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Printf("   %-18s %d\n", c+":", stats.Categories[c])
	}
	return nil
}
