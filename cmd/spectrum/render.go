package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.design/x/clipboard"

	"github.com/aretw0/spectrum/internal/presentation/tui"
	"github.com/aretw0/spectrum/pkg/domain"
)

var renderCmd = &cobra.Command{
	Use:   "render [color...]",
	Short: "Print the linear-gradient expression for colors and a direction",
	Long: `Serializes the colors and direction into a CSS linear-gradient expression.
Without colors the default pair is used. --preset loads a named preset instead.`,
	Example: `  spectrum render "#ff512f" "#dd2476" -d 45deg --preview
  spectrum render --preset ocean --report`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("direction", "d", domain.DefaultDirection, "Gradient direction")
	renderCmd.Flags().String("preset", "", "Render a preset from the configured catalog")
	renderCmd.Flags().Bool("preview", false, "Draw a terminal swatch")
	renderCmd.Flags().Int("width", tui.DefaultSwatchWidth, "Swatch width in cells")
	renderCmd.Flags().Bool("report", false, "Print a Markdown report of the colors")
	renderCmd.Flags().Bool("copy", false, "Copy the expression to the clipboard")
}

func runRender(cmd *cobra.Command, args []string) error {
	direction, _ := cmd.Flags().GetString("direction")
	presetName, _ := cmd.Flags().GetString("preset")
	preview, _ := cmd.Flags().GetBool("preview")
	width, _ := cmd.Flags().GetInt("width")
	report, _ := cmd.Flags().GetBool("report")
	copyExpr, _ := cmd.Flags().GetBool("copy")

	colors := args
	if presetName != "" {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer closeEngine(eng)

		p, err := eng.Catalog().Get(cmd.Context(), presetName)
		if err != nil {
			return err
		}
		colors = p.Colors
	}

	g := domain.NewGradient(colors, direction)
	if err := g.Validate(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	expr := g.Expression()
	fmt.Fprintln(out, expr)

	if preview {
		swatch, err := swatchRenderer(width, true)(g)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, swatch)
	}

	if report {
		rendered, err := tui.RenderReport(g, tui.StyleFor(currentPreferences(), stdoutIsTerminal()))
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
	}

	if copyExpr {
		if err := clipboard.Init(); err != nil {
			return fmt.Errorf("clipboard unavailable: %w", err)
		}
		clipboard.Write(clipboard.FmtText, []byte(expr))
		logger.Info("expression copied to clipboard")
	}
	return nil
}
