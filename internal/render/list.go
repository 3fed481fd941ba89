package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/roboco-io/feishu2html/internal/block"
	"github.com/roboco-io/feishu2html/internal/tree"
)

// Consecutive siblings of the same list type share one <ul>/<ol>: the first
// item of a run opens it and the last closes it.

func renderBullet(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.Bullet](node)
	if err != nil {
		return err
	}
	first, last := runEdges(rc, node)
	if first {
		out.WriteString("<ul>\n")
	}
	out.WriteString("<li>")
	if err := renderItem(out, node, rc, b.TextData()); err != nil {
		return err
	}
	out.WriteString("</li>\n")
	if last {
		out.WriteString("</ul>\n")
	}
	return nil
}

func renderOrdered(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.Ordered](node)
	if err != nil {
		return err
	}
	first, last := runEdges(rc, node)
	if first {
		out.WriteString("<ol>\n")
	}
	fmt.Fprintf(out, `<li value="%d">`, rc.ordinal(node))
	if err := renderItem(out, node, rc, b.TextData()); err != nil {
		return err
	}
	out.WriteString("</li>\n")
	if last {
		out.WriteString("</ol>\n")
	}
	return nil
}

// renderItem writes the item text followed by its children in a nested
// wrapper.
func renderItem(out *bytes.Buffer, node *tree.Node, rc *Context, d *block.TextData) error {
	if d != nil {
		rc.Elements.Convert(out, d.Elements)
	}
	return renderNested(out, node, rc, "list-nested")
}

// runEdges reports whether node starts and ends its run of same-typed
// siblings.
func runEdges(rc *Context, node *tree.Node) (first, last bool) {
	list, i := rc.siblings(node)
	t := node.Type()
	first = i == 0 || list[i-1].Type() != t
	last = i == len(list)-1 || list[i+1].Type() != t
	return first, last
}

// ordinal computes the number of an ordered item from its position in the
// run. A numeric sequence style on the item, or the nearest earlier item of
// the run, restarts counting at that value.
func (rc *Context) ordinal(node *tree.Node) int {
	list, idx := rc.siblings(node)
	for i := idx; i >= 0 && list[i].Type() == block.TypeOrdered; i-- {
		if n, ok := sequenceStart(list[i].Block); ok {
			return n + idx - i
		}
		if i == 0 || list[i-1].Type() != block.TypeOrdered {
			return idx - i + 1
		}
	}
	return 1
}

func sequenceStart(b block.Block) (int, bool) {
	o, ok := b.(*block.Ordered)
	if !ok || o.Ordered == nil || o.Ordered.Style == nil {
		return 0, false
	}
	n, err := strconv.Atoi(o.Ordered.Style.Sequence)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
