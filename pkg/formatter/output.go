package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/leafdoc/pkg/knowledge"
	"github.com/helmcode/leafdoc/pkg/model"
	"github.com/helmcode/leafdoc/pkg/storage"
)

// Formats accepted by the Display functions.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ValidateFormat rejects unknown output formats.
func ValidateFormat(format string) error {
	switch format {
	case FormatHuman, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, json, yaml)", format)
	}
}

// DisplayResult formats and displays a diagnosis
func DisplayResult(w io.Writer, result *model.DiagnosisResult, format string) error {
	switch format {
	case FormatJSON:
		return displayJSON(w, result)
	case FormatYAML:
		return displayYAML(w, result)
	default:
		displayHumanResult(w, result)
	}
	return nil
}

// DisplayExplanation shows the full knowledge record for a class.
func DisplayExplanation(w io.Writer, class knowledge.PlantClass, exp knowledge.Explanation, format string) error {
	switch format {
	case FormatJSON:
		return displayJSON(w, exp)
	case FormatYAML:
		return displayYAML(w, exp)
	}

	title := color.New(color.FgWhite, color.Bold)
	label := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	title.Fprintf(w, "🌿 %s: %s\n", class.PlantName(), class.Condition())
	categoryColor(exp.Category).Fprintf(w, "📊 CATEGORY: %s\n\n", strings.ToUpper(string(exp.Category)))

	sections := []struct {
		name string
		text string
	}{
		{"CAUSE", exp.Cause},
		{"SYMPTOMS", exp.Symptoms},
		{"SCIENTIFIC REASON", exp.ScientificReason},
		{"PRECAUTION", exp.Precaution},
		{"RECOMMENDED ACTION", exp.RecommendedAction},
		{"NUTRIENT CORRECTION", exp.NutrientCorrection},
	}
	for _, s := range sections {
		label.Fprintf(w, "%s:\n", s.name)
		fmt.Fprintln(w, wrapText(s.text, 80, "   "))
		fmt.Fprintln(w)
	}
	return nil
}

// DisplayClasses lists the enumeration with each class's category.
func DisplayClasses(w io.Writer, table *knowledge.Table, format string) error {
	type entry struct {
		Class    knowledge.PlantClass `json:"class" yaml:"class"`
		Category knowledge.Category   `json:"category" yaml:"category"`
		Authored bool                 `json:"authored" yaml:"authored"`
	}

	classes := table.Classes()
	entries := make([]entry, 0, len(classes))
	for _, c := range classes {
		entries = append(entries, entry{Class: c, Category: table.Lookup(c).Category, Authored: table.Authored(c)})
	}

	switch format {
	case FormatJSON:
		return displayJSON(w, entries)
	case FormatYAML:
		return displayYAML(w, entries)
	}

	for i, e := range entries {
		marker := " "
		if e.Authored {
			marker = "*"
		}
		fmt.Fprintf(w, "%2d. %s %-50s %s\n", i+1, marker, e.Class, categoryColor(e.Category).Sprint(e.Category))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", color.HiBlackString("* detailed explanation available"))
	return nil
}

// DisplayHistory shows recent predictions, newest first.
func DisplayHistory(w io.Writer, items []storage.Prediction, format string) error {
	switch format {
	case FormatJSON:
		if items == nil {
			items = []storage.Prediction{}
		}
		return displayJSON(w, items)
	case FormatYAML:
		return displayYAML(w, items)
	}

	if len(items) == 0 {
		fmt.Fprintln(w, color.HiBlackString("No predictions recorded yet"))
		return nil
	}

	for _, p := range items {
		status := ""
		if p.ReplyStatus == string(model.ReplyNoJSON) || p.ReplyStatus == string(model.ReplyMalformed) {
			status = color.YellowString(" (fallback)")
		}
		fmt.Fprintf(w, "%s  %-12s %-35s %8s  %s%s\n",
			p.CreatedAt.Local().Format("2006-01-02 15:04"),
			p.PlantName,
			p.PredictedDisease,
			p.ConfidenceScore,
			categoryColor(knowledge.Category(p.Category)).Sprint(p.Category),
			status)
	}
	return nil
}

func displayJSON(w io.Writer, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func displayYAML(w io.Writer, v interface{}) error {
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(output))
	return nil
}

func displayHumanResult(w io.Writer, result *model.DiagnosisResult) {
	white := color.New(color.FgWhite, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)

	fmt.Fprintln(w)

	white.Fprintln(w, "🌿 DIAGNOSIS:")
	fmt.Fprintf(w, "   Plant:      %s\n", result.PlantName)
	fmt.Fprintf(w, "   Condition:  %s\n", result.PredictedDisease)
	fmt.Fprintf(w, "   Confidence: %s\n\n", result.ConfidenceScore)

	categoryColor(result.Category).Fprintf(w, "📊 CATEGORY: %s\n\n", strings.ToUpper(string(result.Category)))

	if result.BiologicalExplanation != "" {
		cyan.Fprintln(w, "🔬 BIOLOGICAL EXPLANATION:")
		fmt.Fprintln(w, wrapText(result.BiologicalExplanation, 80, "   "))
		fmt.Fprintln(w)
	}

	if result.RecommendedAction != "" {
		green.Fprintln(w, "🚀 RECOMMENDED ACTION:")
		fmt.Fprintln(w, color.GreenString(wrapText(result.RecommendedAction, 80, "   ")))
		fmt.Fprintln(w)
	}

	switch {
	case result.ReplyStatus.Degraded():
		fmt.Fprintf(w, "⚠️  %s\n", color.YellowString("The model reply could not be read; showing the default class"))
	case result.ReplyStatus == model.ReplySimulated:
		fmt.Fprintf(w, "⚠️  %s\n", color.YellowString("Simulation mode: no provider credential configured"))
	}

	// Footer
	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func categoryColor(category knowledge.Category) *color.Color {
	switch category {
	case knowledge.CategoryHealthy:
		return color.New(color.FgGreen, color.Bold)
	case knowledge.CategoryFungal:
		return color.New(color.FgYellow, color.Bold)
	case knowledge.CategoryBacterial, knowledge.CategoryViral:
		return color.New(color.FgRed, color.Bold)
	case knowledge.CategoryPest:
		return color.New(color.FgMagenta, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
