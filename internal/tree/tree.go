// Package tree rebuilds the document hierarchy from the flat block map.
package tree

import (
	"sort"

	"github.com/maruel/natural"

	"github.com/roboco-io/feishu2html/internal/block"
)

// Node is one block with its recursively built children. Parent is a
// back-reference for lookups only; top-level nodes have a nil Parent.
type Node struct {
	Block    block.Block
	Children []*Node
	Parent   *Node
}

// Type returns the block type of the node.
func (n *Node) Type() block.Type {
	return n.Block.Type()
}

// Build converts blocks into a forest of top-level nodes.
//
// The Page block is the implicit root: its children, in list order, become the
// top-level nodes and the Page itself is not part of the result. Child ids
// absent from the map are skipped. Every block is owned by at most one node:
// a second reference to an already visited block (including a cycle back to
// an ancestor) is dropped.
//
// Without a Page block every other block becomes a childless top-level node,
// ordered by block id.
func Build(blocks map[string]block.Block) []*Node {
	page := findPage(blocks)
	if page == nil {
		return flat(blocks)
	}

	b := &builder{
		blocks: blocks,
		memo:   make(map[string]*Node, len(blocks)),
	}
	// The page is memoized so that stray references to it are dropped.
	b.memo[page.ID()] = &Node{Block: page}

	forest := make([]*Node, 0, len(page.ChildIDs()))
	for _, id := range page.ChildIDs() {
		if n := b.build(id, nil); n != nil {
			forest = append(forest, n)
		}
	}
	return forest
}

type builder struct {
	blocks map[string]block.Block
	memo   map[string]*Node
}

func (b *builder) build(id string, parent *Node) *Node {
	if _, seen := b.memo[id]; seen {
		return nil
	}
	blk, ok := b.blocks[id]
	if !ok || blk == nil {
		return nil
	}

	n := &Node{Block: blk, Parent: parent}
	b.memo[id] = n

	ids := blk.ChildIDs()
	if len(ids) > 0 {
		n.Children = make([]*Node, 0, len(ids))
	}
	for _, childID := range ids {
		if c := b.build(childID, n); c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

func findPage(blocks map[string]block.Block) block.Block {
	var pages []block.Block
	for _, b := range blocks {
		if b != nil && b.Type() == block.TypePage {
			pages = append(pages, b)
		}
	}
	if len(pages) == 0 {
		return nil
	}
	// More than one page violates the API contract; pick deterministically.
	sort.Slice(pages, func(i, j int) bool { return natural.Less(pages[i].ID(), pages[j].ID()) })
	return pages[0]
}

func flat(blocks map[string]block.Block) []*Node {
	ids := make([]string, 0, len(blocks))
	for id, b := range blocks {
		if b == nil || b.Type() == block.TypePage {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return natural.Less(ids[i], ids[j]) })

	forest := make([]*Node, 0, len(ids))
	for _, id := range ids {
		forest = append(forest, &Node{Block: blocks[id]})
	}
	return forest
}

// Walk visits every node depth-first in document order. Returning false from
// fn skips the node's children.
func Walk(forest []*Node, fn func(n *Node, depth int) bool) {
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				visit(n.Children, depth+1)
			}
		}
	}
	visit(forest, 0)
}

// Count returns the total number of nodes in the forest.
func Count(forest []*Node) int {
	total := 0
	Walk(forest, func(*Node, int) bool {
		total++
		return true
	})
	return total
}
