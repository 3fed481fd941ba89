// Package render converts a block tree into HTML.
package render

import (
	"bytes"
	"fmt"

	"github.com/roboco-io/feishu2html/internal/tree"
)

// Context is the state shared by the renderers of one Build call.
type Context struct {
	Registry *Registry
	Elements *ElementConverter
	Assets   AssetResolver
	// Images maps image tokens to data URLs. When an image is cached its
	// data URL is used instead of Assets.ImageSrc.
	Images          *ImageCache
	ShowUnsupported bool

	// forest is the top-level sibling list, used for nodes without a parent.
	forest []*tree.Node
}

// NewContext creates a Context rendering with reg. A nil reg uses
// DefaultRegistry and a nil assets resolves to the "assets" directory.
func NewContext(reg *Registry, assets AssetResolver) *Context {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if assets == nil {
		assets = RelativeAssets{Dir: "assets"}
	}
	return &Context{
		Registry: reg,
		Elements: &ElementConverter{Assets: assets},
		Assets:   assets,
	}
}

// RenderForest renders each top-level node in order.
func (rc *Context) RenderForest(out *bytes.Buffer, forest []*tree.Node) error {
	rc.forest = forest
	for _, n := range forest {
		if err := rc.Render(out, n); err != nil {
			return err
		}
	}
	return nil
}

// Render dispatches node to the renderer registered for its type.
func (rc *Context) Render(out *bytes.Buffer, node *tree.Node) error {
	rd, err := rc.Registry.Get(node.Type())
	if err != nil {
		return fmt.Errorf("block %s: %w", node.Block.ID(), err)
	}
	return rd.Render(out, node, rc)
}

// RenderChildren renders the children of node in order.
func (rc *Context) RenderChildren(out *bytes.Buffer, node *tree.Node) error {
	for _, c := range node.Children {
		if err := rc.Render(out, c); err != nil {
			return err
		}
	}
	return nil
}

// siblings returns the list node belongs to and its index in it.
func (rc *Context) siblings(node *tree.Node) ([]*tree.Node, int) {
	list := rc.forest
	if node.Parent != nil {
		list = node.Parent.Children
	}
	for i, n := range list {
		if n == node {
			return list, i
		}
	}
	return []*tree.Node{node}, 0
}
