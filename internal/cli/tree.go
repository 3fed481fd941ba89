package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/roboco-io/feishu2html/internal/block"
	"github.com/roboco-io/feishu2html/internal/tree"
)

var (
	treeFormat string
	treeStats  bool
)

var treeCmd = &cobra.Command{
	Use:   "tree <document>",
	Short: "Print the block tree of a document",
	Long: `Fetch a document and print its reconstructed block tree without
rendering it. Useful for inspecting documents that export unexpectedly.

Output formats:
  text  indented outline with block type, id and a text preview
  json  nested JSON

Examples:
  feishu2html tree doxcnAbCdEf12
  feishu2html tree doxcnAbCdEf12 --format json
  feishu2html tree doxcnAbCdEf12 --stats`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func init() {
	treeCmd.Flags().StringVarP(&treeFormat, "format", "f", "text", "output format (text, json)")
	treeCmd.Flags().BoolVar(&treeStats, "stats", false, "print block counts by type instead of the tree")

	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	if treeFormat != "text" && treeFormat != "json" {
		return fmt.Errorf("unsupported output format: %s", treeFormat)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ids, baseURL, err := resolveRefs(args, cfg.App.BaseURL)
	if err != nil {
		return err
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

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	doc, err := client.DocumentBlocks(ctx, ids[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if treeStats {
		printStats(out, doc)
		return nil
	}
	forest := tree.Build(doc.Blocks)
	if treeFormat == "json" {
		return writeTreeJSON(out, doc.Meta, forest)
	}
	fmt.Fprintf(out, "%s (%s, revision %d)\n", doc.Meta.Title, doc.Meta.DocumentID, doc.Meta.RevisionID)
	writeTreeText(out, forest)
	return nil
}

const previewLen = 40

// preview returns the first characters of a block's text, if it has any.
func preview(b block.Block) string {
	t, ok := b.(block.Texter)
	if !ok || t.TextData() == nil {
		return ""
	}
	s := strings.Join(strings.Fields(t.TextData().PlainText()), " ")
	if utf8.RuneCountInString(s) > previewLen {
		s = string([]rune(s)[:previewLen]) + "..."
	}
	return s
}

func writeTreeText(out io.Writer, forest []*tree.Node) {
	tree.Walk(forest, func(n *tree.Node, depth int) bool {
		line := fmt.Sprintf("%s%s %s", strings.Repeat("  ", depth), n.Type(), n.Block.ID())
		if p := preview(n.Block); p != "" {
			line += fmt.Sprintf(" %q", p)
		}
		fmt.Fprintln(out, line)
		return true
	})
}

type jsonNode struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

func toJSONNodes(nodes []*tree.Node) []*jsonNode {
	out := make([]*jsonNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &jsonNode{
			ID:       n.Block.ID(),
			Type:     n.Type().String(),
			Text:     preview(n.Block),
			Children: toJSONNodes(n.Children),
		})
	}
	return out
}

func writeTreeJSON(out io.Writer, meta block.DocumentMeta, forest []*tree.Node) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Document block.DocumentMeta `json:"document"`
		Blocks   []*jsonNode        `json:"blocks"`
	}{meta, toJSONNodes(forest)})
}

func printStats(out io.Writer, doc *block.Document) {
	counts := doc.CountByType()
	types := make([]block.Type, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "TYPE\tCODE\tCOUNT")
	for _, t := range types {
		fmt.Fprintf(w, "%s\t%d\t%d\n", t, t.Code(), counts[t])
	}
	fmt.Fprintf(w, "total\t\t%d\n", len(doc.Blocks))
}
