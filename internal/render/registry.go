package render

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"

	"github.com/roboco-io/feishu2html/internal/block"
	"github.com/roboco-io/feishu2html/internal/tree"
)

// ErrNoRenderer is returned when a block type has no registered renderer.
var ErrNoRenderer = errors.New("no renderer registered")

// Renderer emits HTML for one block kind.
type Renderer interface {
	Render(out *bytes.Buffer, node *tree.Node, rc *Context) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(out *bytes.Buffer, node *tree.Node, rc *Context) error

// Render calls f.
func (f RendererFunc) Render(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	return f(out, node, rc)
}

// Registry maps block types to renderers.
type Registry struct {
	mu        sync.RWMutex
	renderers map[block.Type]Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[block.Type]Renderer),
	}
}

// Register adds a renderer for t.
func (r *Registry) Register(t block.Type, rd Renderer) error {
	if rd == nil {
		return fmt.Errorf("cannot register nil renderer for %s", t)
	}
	if t != block.TypeUndefined {
		if _, ok := block.FromCode(int(t)); !ok {
			return fmt.Errorf("cannot register renderer for undeclared %s", t)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[t]; exists {
		return fmt.Errorf("renderer already registered: %s", t)
	}
	r.renderers[t] = rd
	return nil
}

// MustRegister is Register for static setup; it panics on error.
func (r *Registry) MustRegister(rd Renderer, types ...block.Type) {
	for _, t := range types {
		if err := r.Register(t, rd); err != nil {
			panic(err)
		}
	}
}

// Get returns the renderer for t.
func (r *Registry) Get(t block.Type) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rd, ok := r.renderers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRenderer, t)
	}
	return rd, nil
}

// List returns all registered types in code order.
func (r *Registry) List() []block.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]block.Type, 0, len(r.renderers))
	for t := range r.renderers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Has checks if t has a renderer.
func (r *Registry) Has(t block.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.renderers[t]
	return ok
}

// Count returns the number of registered types.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.renderers)
}

// Unregister removes the renderer for t.
func (r *Registry) Unregister(t block.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.renderers[t]; !ok {
		return fmt.Errorf("%w: %s", ErrNoRenderer, t)
	}
	delete(r.renderers, t)
	return nil
}

// Validate reports every declared block type that lacks a renderer.
func (r *Registry) Validate() error {
	var err error
	for _, t := range block.Types() {
		if !r.Has(t) {
			err = multierr.Append(err, fmt.Errorf("%w: %s", ErrNoRenderer, t))
		}
	}
	return err
}

// placeholderTypes have no HTML form; DefaultRegistry renders them as the
// unsupported-block placeholder.
var placeholderTypes = []block.Type{
	block.TypeBitable, block.TypeChatCard, block.TypeDiagram, block.TypeIsv,
	block.TypeMindnote, block.TypeSheet, block.TypeTask, block.TypeAddOns,
	block.TypeWikiCatalog, block.TypeSubPageList, block.TypeAITemplate,
}

// IsPlaceholder reports whether DefaultRegistry renders t only as a
// placeholder.
func IsPlaceholder(t block.Type) bool {
	for _, p := range placeholderTypes {
		if p == t {
			return true
		}
	}
	return false
}

// DefaultRegistry returns a registry with a renderer for every block type.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(RendererFunc(renderPage), block.TypePage)
	r.MustRegister(RendererFunc(renderText), block.TypeText)
	r.MustRegister(RendererFunc(renderHeading),
		block.TypeHeading1, block.TypeHeading2, block.TypeHeading3,
		block.TypeHeading4, block.TypeHeading5, block.TypeHeading6,
		block.TypeHeading7, block.TypeHeading8, block.TypeHeading9)
	r.MustRegister(RendererFunc(renderBullet), block.TypeBullet)
	r.MustRegister(RendererFunc(renderOrdered), block.TypeOrdered)
	r.MustRegister(RendererFunc(renderCode), block.TypeCode)
	r.MustRegister(RendererFunc(renderQuote), block.TypeQuote)
	r.MustRegister(RendererFunc(renderEquation), block.TypeEquation)
	r.MustRegister(RendererFunc(renderTodo), block.TypeTodo)
	r.MustRegister(RendererFunc(renderDivider), block.TypeDivider)

	r.MustRegister(RendererFunc(renderCallout), block.TypeCallout)
	r.MustRegister(RendererFunc(renderGrid), block.TypeGrid)
	r.MustRegister(RendererFunc(renderGridColumn), block.TypeGridColumn)
	r.MustRegister(RendererFunc(renderQuoteContainer), block.TypeQuoteContainer)
	r.MustRegister(RendererFunc(renderTable), block.TypeTable)
	r.MustRegister(RendererFunc(renderTableCell), block.TypeTableCell)
	r.MustRegister(RendererFunc(renderView), block.TypeView)
	r.MustRegister(RendererFunc(renderAgenda), block.TypeAgenda)
	r.MustRegister(RendererFunc(renderAgendaItem), block.TypeAgendaItem)
	r.MustRegister(RendererFunc(renderAgendaItemTitle), block.TypeAgendaItemTitle)
	r.MustRegister(RendererFunc(renderAgendaItemContent), block.TypeAgendaItemContent)
	r.MustRegister(RendererFunc(renderSourceSynced), block.TypeSourceSynced)
	r.MustRegister(RendererFunc(renderReferenceSynced), block.TypeReferenceSynced)

	r.MustRegister(RendererFunc(renderImage), block.TypeImage)
	r.MustRegister(RendererFunc(renderFile), block.TypeFile)
	r.MustRegister(RendererFunc(renderBoard), block.TypeBoard)
	r.MustRegister(RendererFunc(renderIframe), block.TypeIframe)
	r.MustRegister(RendererFunc(renderLinkPreview), block.TypeLinkPreview)
	r.MustRegister(RendererFunc(renderJiraIssue), block.TypeJiraIssue)
	r.MustRegister(RendererFunc(renderOkr), block.TypeOkr)
	r.MustRegister(RendererFunc(renderOkrObjective), block.TypeOkrObjective)
	r.MustRegister(RendererFunc(renderOkrKeyResult), block.TypeOkrKeyResult)
	r.MustRegister(RendererFunc(renderNothing), block.TypeOkrProgress)

	r.MustRegister(RendererFunc(renderUnsupported), placeholderTypes...)

	r.MustRegister(RendererFunc(renderUnknown), block.TypeUndefined)
	return r
}
