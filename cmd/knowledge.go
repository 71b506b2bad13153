package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helmcode/leafdoc/pkg/formatter"
	"github.com/helmcode/leafdoc/pkg/knowledge"
)

var (
	classesOutputFormat string
	explainOutputFormat string
)

func NewClassesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List every plant class the model can report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := formatter.ValidateFormat(classesOutputFormat); err != nil {
				return err
			}
			return formatter.DisplayClasses(os.Stdout, knowledge.Default, classesOutputFormat)
		},
	}

	cmd.Flags().StringVarP(&classesOutputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	return cmd
}

func NewExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain CLASS",
		Short: "Show background and treatment for a plant class",
		Long: `Print the knowledge record for a plant class: cause, symptoms, scientific
reason, precautions, recommended action and nutrient correction.

Examples:
  leafdoc explain Tomato___Late_blight
  leafdoc explain "Grape___Esca_(Black_Measles)" -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := formatter.ValidateFormat(explainOutputFormat); err != nil {
				return err
			}
			class := knowledge.PlantClass(args[0])
			if !knowledge.Known(class) {
				return fmt.Errorf("unknown class %q (run 'leafdoc classes' for the full list)", args[0])
			}
			return formatter.DisplayExplanation(os.Stdout, class, knowledge.Lookup(class), explainOutputFormat)
		},
	}

	cmd.Flags().StringVarP(&explainOutputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	return cmd
}
