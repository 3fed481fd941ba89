package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"sort"

	"github.com/roboco-io/feishu2html/internal/block"
	"github.com/roboco-io/feishu2html/internal/tree"
)

// baseKeys are the block fields that never carry a payload.
var baseKeys = map[string]bool{
	"block_id":    true,
	"block_type":  true,
	"parent_id":   true,
	"children":    true,
	"comment_ids": true,
}

// renderUnsupported writes a placeholder when ShowUnsupported is set and
// nothing otherwise.
func renderUnsupported(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	if !rc.ShowUnsupported {
		return nil
	}
	fmt.Fprintf(out, `<div class="unsupported-block">Unsupported block: %s</div>`+"\n", html.EscapeString(typeName(node.Block)))
	return nil
}

func typeName(b block.Block) string {
	if u, ok := b.(*block.Unknown); ok {
		if u.Code == 0 {
			return "UNKNOWN"
		}
		return fmt.Sprintf("type %d", u.Code)
	}
	return b.Type().String()
}

// renderUnknown reinterprets a text-shaped payload as a blockquote. Blocks
// without one fall back to the unsupported placeholder.
func renderUnknown(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	u, ok := node.Block.(*block.Unknown)
	if !ok {
		return renderUnsupported(out, node, rc)
	}
	d := textPayload(u)
	if d == nil {
		return renderUnsupported(out, node, rc)
	}
	out.WriteString(`<blockquote class="fallback-block">`)
	rc.Elements.Convert(out, d.Elements)
	if err := rc.RenderChildren(out, node); err != nil {
		return err
	}
	out.WriteString("</blockquote>\n")
	return nil
}

// textPayload returns the first payload, in key order, that decodes as text
// with at least one element.
func textPayload(u *block.Unknown) *block.TextData {
	keys := make([]string, 0, len(u.Fields))
	for k := range u.Fields {
		if !baseKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		var d block.TextData
		if err := json.Unmarshal(u.Fields[k], &d); err != nil {
			continue
		}
		if !d.IsEmpty() {
			return &d
		}
	}
	return nil
}
