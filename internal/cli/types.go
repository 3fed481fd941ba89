package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roboco-io/feishu2html/internal/block"
	"github.com/roboco-io/feishu2html/internal/render"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List block types and how they are rendered",
	Long: `List every docx block type with its wire code, payload key and
rendering status.

Status:
  rendered     converted to HTML
  placeholder  shown as "Unsupported block" with --show-unsupported
  fallback     unknown codes; text payloads are kept, otherwise a placeholder
  missing      no renderer registered (export refuses to start)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTypes(cmd.OutOrStdout(), render.DefaultRegistry())
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}

func printTypes(out io.Writer, reg *render.Registry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tTYPE\tPAYLOAD KEY\tSTATUS")
	for _, t := range block.Types() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.Code(), t, t.Key(), renderStatus(reg, t))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d of %d types have a renderer\n", reg.Count(), len(block.Types()))
	return nil
}

func renderStatus(reg *render.Registry, t block.Type) string {
	switch {
	case !reg.Has(t):
		return "missing"
	case t == block.TypeUndefined:
		return "fallback"
	case render.IsPlaceholder(t):
		return "placeholder"
	default:
		return "rendered"
	}
}
