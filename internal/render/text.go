package render

import (
	"bytes"
	"fmt"
	"html"
	"strconv"

	"github.com/roboco-io/feishu2html/internal/block"
	"github.com/roboco-io/feishu2html/internal/tree"
)

// as asserts the concrete block type a renderer was registered for.
func as[T block.Block](node *tree.Node) (T, error) {
	b, ok := node.Block.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("block %s: %s renderer got %T", node.Block.ID(), node.Type(), node.Block)
	}
	return b, nil
}

func alignStyle(align int) string {
	switch align {
	case 2:
		return ` style="text-align:center"`
	case 3:
		return ` style="text-align:right"`
	}
	return ""
}

// renderNested writes the children of node inside a wrapper div.
func renderNested(out *bytes.Buffer, node *tree.Node, rc *Context, class string) error {
	if len(node.Children) == 0 {
		return nil
	}
	fmt.Fprintf(out, `<div class="%s">`, class)
	if err := rc.RenderChildren(out, node); err != nil {
		return err
	}
	out.WriteString(`</div>`)
	return nil
}

// The page is the document root; only its children produce output.
func renderPage(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	return rc.RenderChildren(out, node)
}

func renderText(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.Text](node)
	if err != nil {
		return err
	}
	if d := b.TextData(); d != nil {
		fmt.Fprintf(out, `<p%s>`, alignStyle(d.Align()))
		rc.Elements.Convert(out, d.Elements)
		out.WriteString("</p>\n")
	}
	return renderNested(out, node, rc, "indent")
}

func renderHeading(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.Heading](node)
	if err != nil {
		return err
	}
	level := b.Level()
	if d := b.TextData(); d != nil {
		tag := "h" + strconv.Itoa(min(level, 6))
		if level > 6 {
			fmt.Fprintf(out, `<%s class="heading heading-%d" data-level="%d"%s>`, tag, level, level, alignStyle(d.Align()))
		} else {
			fmt.Fprintf(out, `<%s%s>`, tag, alignStyle(d.Align()))
		}
		rc.Elements.Convert(out, d.Elements)
		fmt.Fprintf(out, "</%s>\n", tag)
	}
	return renderNested(out, node, rc, "heading-children")
}

func renderCode(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.Code](node)
	if err != nil {
		return err
	}
	d := b.TextData()
	if d == nil {
		return nil
	}
	lang := "plaintext"
	wrap := ""
	if d.Style != nil {
		lang = block.CodeLanguage(d.Style.Language)
		if d.Style.Wrap {
			wrap = ` class="wrap"`
		}
	}
	fmt.Fprintf(out, `<pre%s><code class="language-%s">%s</code></pre>`+"\n", wrap, lang, html.EscapeString(d.PlainText()))
	return nil
}

func renderQuote(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.Quote](node)
	if err != nil {
		return err
	}
	out.WriteString("<blockquote>")
	if d := b.TextData(); d != nil {
		rc.Elements.Convert(out, d.Elements)
	}
	if err := rc.RenderChildren(out, node); err != nil {
		return err
	}
	out.WriteString("</blockquote>\n")
	return nil
}

func renderEquation(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.Equation](node)
	if err != nil {
		return err
	}
	d := b.TextData()
	if d == nil {
		return nil
	}
	fmt.Fprintf(out, `<div class="equation">\[%s\]</div>`+"\n", html.EscapeString(d.PlainText()))
	return nil
}

func renderTodo(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.Todo](node)
	if err != nil {
		return err
	}
	d := b.TextData()
	done := d != nil && d.Style != nil && d.Style.Done

	class, checked := "todo", ""
	if done {
		class, checked = "todo done", " checked"
	}
	fmt.Fprintf(out, `<div class="%s"><input type="checkbox" disabled%s><span>`, class, checked)
	if d != nil {
		rc.Elements.Convert(out, d.Elements)
	}
	out.WriteString("</span>")
	if err := renderNested(out, node, rc, "todo-children"); err != nil {
		return err
	}
	out.WriteString("</div>\n")
	return nil
}

func renderDivider(out *bytes.Buffer, _ *tree.Node, _ *Context) error {
	out.WriteString("<hr>\n")
	return nil
}

func renderNothing(*bytes.Buffer, *tree.Node, *Context) error {
	return nil
}
