package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/roboco-io/feishu2html/internal/block"
	"github.com/roboco-io/feishu2html/internal/tree"
)

var calloutEmoji = map[string]string{
	"bulb":               "💡",
	"warning":            "⚠️",
	"pushpin":            "📌",
	"memo":               "📝",
	"star":               "⭐",
	"white_check_mark":   "✅",
	"x":                  "❌",
	"fire":               "🔥",
	"heart":              "❤️",
	"information_source": "ℹ️",
	"question":           "❓",
	"exclamation":        "❗",
	"rocket":             "🚀",
	"tada":               "🎉",
	"smile":              "😄",
	"grinning":           "😀",
	"thumbsup":           "👍",
	"eyes":               "👀",
	"link":               "🔗",
	"calendar":           "📅",
}

func renderCallout(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.Callout](node)
	if err != nil {
		return err
	}
	classes := []string{"callout"}
	emoji := ""
	if d := b.Callout; d != nil {
		if d.BackgroundColor > 0 {
			classes = append(classes, fmt.Sprintf("callout-bg-%d", d.BackgroundColor))
		}
		if d.BorderColor > 0 {
			classes = append(classes, fmt.Sprintf("callout-border-%d", d.BorderColor))
		}
		if d.TextColor > 0 {
			classes = append(classes, fmt.Sprintf("text-color-%d", d.TextColor))
		}
		emoji = calloutEmoji[d.EmojiID]
	}
	fmt.Fprintf(out, `<div class="%s">`, strings.Join(classes, " "))
	if emoji != "" {
		fmt.Fprintf(out, `<span class="callout-emoji">%s</span>`, emoji)
	}
	out.WriteString(`<div class="callout-body">`)
	if err := rc.RenderChildren(out, node); err != nil {
		return err
	}
	out.WriteString("</div></div>\n")
	return nil
}

func renderGrid(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	if _, err := as[*block.Grid](node); err != nil {
		return err
	}
	out.WriteString(`<div class="grid">`)
	if err := rc.RenderChildren(out, node); err != nil {
		return err
	}
	out.WriteString("</div>\n")
	return nil
}

func renderGridColumn(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.GridColumn](node)
	if err != nil {
		return err
	}
	style := ""
	if b.GridColumn != nil && b.GridColumn.WidthRatio > 0 {
		style = fmt.Sprintf(` style="flex:%d"`, b.GridColumn.WidthRatio)
	}
	fmt.Fprintf(out, `<div class="grid-column"%s>`, style)
	if err := rc.RenderChildren(out, node); err != nil {
		return err
	}
	out.WriteString("</div>")
	return nil
}

func renderQuoteContainer(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	out.WriteString(`<blockquote class="quote-container">`)
	if err := rc.RenderChildren(out, node); err != nil {
		return err
	}
	out.WriteString("</blockquote>\n")
	return nil
}

// renderTable groups the cell children into rows of ColumnSize cells in
// child order. A short final row is emitted as is. Cells covered by a merged
// neighbour are skipped.
func renderTable(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.Table](node)
	if err != nil {
		return err
	}
	cols := b.ColumnSize()
	if cols <= 0 {
		cols = max(len(node.Children), 1)
	}
	var prop block.TableProperty
	if b.Table != nil && b.Table.Property != nil {
		prop = *b.Table.Property
	}
	covered := coveredCells(prop.MergeInfo, cols)

	out.WriteString(`<table class="table">`)
	if len(prop.ColumnWidth) > 0 {
		out.WriteString("<colgroup>")
		for _, w := range prop.ColumnWidth {
			fmt.Fprintf(out, `<col style="width:%dpx">`, w)
		}
		out.WriteString("</colgroup>")
	}
	out.WriteString("<tbody>\n")
	for start := 0; start < len(node.Children); start += cols {
		row := start / cols
		end := min(start+cols, len(node.Children))
		out.WriteString("<tr>")
		for i := start; i < end; i++ {
			if covered[i] {
				continue
			}
			col := i - start
			tag := "td"
			if (prop.HeaderRow && row == 0) || (prop.HeaderColumn && col == 0) {
				tag = "th"
			}
			out.WriteString("<" + tag)
			if i < len(prop.MergeInfo) {
				if m := prop.MergeInfo[i]; m.RowSpan > 1 || m.ColSpan > 1 {
					if m.RowSpan > 1 {
						fmt.Fprintf(out, ` rowspan="%d"`, m.RowSpan)
					}
					if m.ColSpan > 1 {
						fmt.Fprintf(out, ` colspan="%d"`, m.ColSpan)
					}
				}
			}
			out.WriteString(">")
			if err := renderCellContent(out, node.Children[i], rc); err != nil {
				return err
			}
			out.WriteString("</" + tag + ">")
		}
		out.WriteString("</tr>\n")
	}
	out.WriteString("</tbody></table>\n")
	return nil
}

// coveredCells marks cell indexes hidden by a row or column span.
func coveredCells(merges []block.MergeInfo, cols int) map[int]bool {
	covered := make(map[int]bool)
	for i, m := range merges {
		if covered[i] || (m.RowSpan <= 1 && m.ColSpan <= 1) {
			continue
		}
		row, col := i/cols, i%cols
		for r := row; r < row+max(m.RowSpan, 1); r++ {
			for c := col; c < min(col+max(m.ColSpan, 1), cols); c++ {
				if r == row && c == col {
					continue
				}
				covered[r*cols+c] = true
			}
		}
	}
	return covered
}

// renderCellContent renders a table cell's children directly, or any other
// block through the registry.
func renderCellContent(out *bytes.Buffer, cell *tree.Node, rc *Context) error {
	if cell.Type() == block.TypeTableCell {
		return rc.RenderChildren(out, cell)
	}
	return rc.Render(out, cell)
}

// renderTableCell handles a cell found outside a table.
func renderTableCell(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	out.WriteString(`<div class="table-cell">`)
	if err := rc.RenderChildren(out, node); err != nil {
		return err
	}
	out.WriteString("</div>\n")
	return nil
}

func renderView(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	return renderNested(out, node, rc, "view")
}

func renderAgenda(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	return renderNested(out, node, rc, "agenda")
}

func renderAgendaItem(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	return renderNested(out, node, rc, "agenda-item")
}

func renderAgendaItemTitle(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.AgendaItemTitle](node)
	if err != nil {
		return err
	}
	out.WriteString(`<div class="agenda-item-title">`)
	if b.AgendaItemTitle != nil {
		rc.Elements.Convert(out, b.AgendaItemTitle.Elements)
	}
	out.WriteString("</div>\n")
	return nil
}

func renderAgendaItemContent(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	return renderNested(out, node, rc, "agenda-item-content")
}

func renderSourceSynced(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	return renderNested(out, node, rc, "synced-block")
}

// renderReferenceSynced renders the synced content when the API expanded
// it, and falls back to a placeholder otherwise.
func renderReferenceSynced(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	if len(node.Children) > 0 {
		return renderNested(out, node, rc, "synced-block reference")
	}
	return renderUnsupported(out, node, rc)
}

func renderOkr(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	return renderNested(out, node, rc, "okr")
}

func renderOkrObjective(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.OkrObjective](node)
	if err != nil {
		return err
	}
	out.WriteString(`<div class="okr-objective"><div class="okr-title">`)
	if b.OkrObjective != nil && b.OkrObjective.Content != nil {
		rc.Elements.Convert(out, b.OkrObjective.Content.Elements)
	}
	out.WriteString("</div>")
	if err := rc.RenderChildren(out, node); err != nil {
		return err
	}
	out.WriteString("</div>\n")
	return nil
}

func renderOkrKeyResult(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.OkrKeyResult](node)
	if err != nil {
		return err
	}
	out.WriteString(`<div class="okr-key-result">`)
	if b.OkrKeyResult != nil && b.OkrKeyResult.Content != nil {
		rc.Elements.Convert(out, b.OkrKeyResult.Content.Elements)
	}
	out.WriteString("</div>\n")
	return nil
}

func renderJiraIssue(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.JiraIssue](node)
	if err != nil {
		return err
	}
	if b.JiraIssue == nil || b.JiraIssue.Key == "" {
		return renderUnsupported(out, node, rc)
	}
	fmt.Fprintf(out, `<div class="jira-issue">%s</div>`+"\n", html.EscapeString(b.JiraIssue.Key))
	return nil
}
