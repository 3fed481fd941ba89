package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/roboco-io/feishu2html/internal/config"
	"github.com/roboco-io/feishu2html/internal/export"
	"github.com/roboco-io/feishu2html/internal/feishu"
	"github.com/roboco-io/feishu2html/internal/render"
)

var (
	exportOutput          string
	exportTemplate        string
	exportCSSMode         string
	exportCustomCSS       string
	exportAssetsDir       string
	exportShowUnsupported bool
	exportInlineImages    bool
	exportShowTitle       bool
	exportBaseURL         string
	exportQuiet           bool
)

var exportCmd = &cobra.Command{
	Use:   "export <document>...",
	Short: "Export documents to HTML",
	Long: `Export one or more docx documents to HTML.

A document is given as its id or as a docx URL. Images, attachments and
boards are downloaded into the assets directory next to the HTML file
unless --inline-images embeds images as data URLs.

Templates:
  full      complete page linking style.css (or inline CSS with --css inline)
  inline    complete page with inline CSS and no external resources
  fragment  rendered blocks only, for embedding

Examples:
  feishu2html export doxcnAbCdEf12
  feishu2html export https://acme.feishu.cn/docx/ZzYyXx1234567890 -o ./html
  feishu2html export doxcnAbCdEf12 --template inline --inline-images`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output directory (default: output.dir)")
	exportCmd.Flags().StringVarP(&exportTemplate, "template", "t", "", "template (full, inline, fragment)")
	exportCmd.Flags().StringVar(&exportCSSMode, "css", "", "stylesheet mode for the full template (external, inline)")
	exportCmd.Flags().StringVar(&exportCustomCSS, "custom-css", "", "stylesheet file replacing the built-in CSS")
	exportCmd.Flags().StringVar(&exportAssetsDir, "assets-dir", "", "assets directory, relative to the output directory")
	exportCmd.Flags().BoolVar(&exportShowUnsupported, "show-unsupported", false, "emit placeholders for blocks that cannot be rendered")
	exportCmd.Flags().BoolVar(&exportInlineImages, "inline-images", false, "embed images and boards as data URLs")
	exportCmd.Flags().BoolVar(&exportShowTitle, "show-title", true, "emit the document title as a heading")
	exportCmd.Flags().StringVar(&exportBaseURL, "base-url", "", "open platform base URL (default: derived from the document URL)")
	exportCmd.Flags().BoolVarP(&exportQuiet, "quiet", "q", false, "do not print the result table")

	rootCmd.AddCommand(exportCmd)
}

// applyExportFlags copies explicitly set flags over the config values.
func applyExportFlags(cmd *cobra.Command, cfg *config.Config) error {
	set := map[string]string{
		"output":     "output.dir",
		"template":   "output.template",
		"css":        "output.css_mode",
		"custom-css": "output.custom_css_path",
		"assets-dir": "output.assets_dir",
	}
	for flag, key := range set {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		if err := cfg.Set(key, cmd.Flags().Lookup(flag).Value.String()); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("show-unsupported") {
		cfg.Output.ShowUnsupported = exportShowUnsupported
	}
	if cmd.Flags().Changed("inline-images") {
		cfg.Output.InlineImages = exportInlineImages
	}
	if cmd.Flags().Changed("base-url") {
		cfg.App.BaseURL = exportBaseURL
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyExportFlags(cmd, cfg); err != nil {
		return err
	}

	ids, baseURL, err := resolveRefs(args, cfg.App.BaseURL)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("base-url") {
		baseURL = exportBaseURL
	}

	logger, cleanup, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	client, err := newClient(cfg, baseURL, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	var css string
	if cfg.Output.CustomCSSPath != "" {
		data, err := os.ReadFile(cfg.Output.CustomCSSPath)
		if err != nil {
			return fmt.Errorf("failed to read custom stylesheet: %w", err)
		}
		css = string(data)
	}

	exporter, err := export.New(client, export.Options{
		OutputDir:       cfg.Output.Dir,
		AssetsDir:       cfg.Output.AssetsDir,
		Template:        render.TemplateKind(cfg.Output.Template),
		CSSMode:         render.CSSMode(cfg.Output.CSSMode),
		CSS:             css,
		ShowTitle:       exportShowTitle,
		ShowUnsupported: cfg.Output.ShowUnsupported,
		InlineImages:    cfg.Output.InlineImages,
	}, export.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	results, err := exporter.ExportAll(ctx, ids)
	if !exportQuiet {
		printResults(cmd.OutOrStdout(), results)
	}
	if err != nil {
		failures := multierr.Errors(err)
		for _, e := range failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "\n%s\n", feishu.Describe(e))
		}
		return fmt.Errorf("%d of %d documents failed", len(failures), len(ids))
	}
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printResults(out io.Writer, results []export.Result) {
	if len(results) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "DOCUMENT\tTITLE\tBLOCKS\tASSETS\tFILE")
	for _, r := range results {
		assets := fmt.Sprintf("%d", r.Assets)
		if r.Reused > 0 {
			assets = fmt.Sprintf("%d (+%d reused)", r.Assets, r.Reused)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.DocumentID, r.Title, r.Blocks, assets, r.HTMLPath)
	}
}
