package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	sprig "github.com/go-task/slim-sprig/v3"

	"github.com/roboco-io/feishu2html/internal/tree"
)

// TemplateKind selects the document shell.
type TemplateKind string

const (
	// TemplateFull is a complete page with stylesheet and script includes.
	TemplateFull TemplateKind = "full"
	// TemplateInline is a complete page with inline CSS and no external resources.
	TemplateInline TemplateKind = "inline"
	// TemplateFragment is the rendered blocks without outer document tags.
	TemplateFragment TemplateKind = "fragment"
)

// ParseTemplateKind validates a template name.
func ParseTemplateKind(s string) (TemplateKind, error) {
	switch k := TemplateKind(strings.ToLower(strings.TrimSpace(s))); k {
	case TemplateFull, TemplateInline, TemplateFragment:
		return k, nil
	case "":
		return TemplateFull, nil
	default:
		return "", fmt.Errorf("unknown template %q (want full, inline or fragment)", s)
	}
}

// CSSMode selects how TemplateFull includes the stylesheet.
type CSSMode string

const (
	CSSExternal CSSMode = "external"
	CSSInline   CSSMode = "inline"
)

// StylesheetName is the sibling file linked in external CSS mode.
const StylesheetName = "style.css"

const fullTemplate = `<!DOCTYPE html>
<html lang="{{ .Lang | default "en" }}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="generator" content="feishu2html">
<title>{{ .Title | trim | default "Untitled" }}</title>
{{- if .ExternalCSS }}
<link rel="stylesheet" href="{{ .CSSHref }}">
{{- else }}
<style>
{{ .CSS }}
</style>
{{- end }}
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/highlight.js/11.9.0/styles/github.min.css">
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/katex.min.css">
<script defer src="https://cdnjs.cloudflare.com/ajax/libs/highlight.js/11.9.0/highlight.min.js" onload="hljs.highlightAll()"></script>
<script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/katex.min.js"></script>
<script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/contrib/auto-render.min.js" onload="renderMathInElement(document.body)"></script>
</head>
<body>
<article class="document">
{{ if .ShowTitle }}<h1 class="document-title">{{ .Title | trim }}</h1>
{{ end }}{{ content }}
</article>
</body>
</html>
`

const inlineTemplate = `<!DOCTYPE html>
<html lang="{{ .Lang | default "en" }}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="generator" content="feishu2html">
<title>{{ .Title | trim | default "Untitled" }}</title>
<style>
{{ .CSS }}
</style>
</head>
<body>
<article class="document">
{{ if .ShowTitle }}<h1 class="document-title">{{ .Title | trim }}</h1>
{{ end }}{{ content }}
</article>
</body>
</html>
`

const fragmentTemplate = `{{ content }}`

var templates = map[TemplateKind]string{
	TemplateFull:     fullTemplate,
	TemplateInline:   inlineTemplate,
	TemplateFragment: fragmentTemplate,
}

// Builder assembles a document around the rendered block forest.
type Builder struct {
	Template TemplateKind
	CSSMode  CSSMode
	// CSS replaces DefaultCSS when set.
	CSS     string
	CSSHref string
	Title   string
	Lang    string
	// ShowTitle emits the title as a heading above the content.
	ShowTitle bool

	Registry        *Registry
	Assets          AssetResolver
	Images          *ImageCache
	ShowUnsupported bool
}

type shellData struct {
	Title       string
	Lang        string
	ShowTitle   bool
	ExternalCSS bool
	CSSHref     string
	CSS         template.CSS
}

// Stylesheet returns the CSS the builder emits or links.
func (b *Builder) Stylesheet() string {
	if b.CSS != "" {
		return b.CSS
	}
	return DefaultCSS
}

// Build renders forest into the selected template.
func (b *Builder) Build(forest []*tree.Node) (string, error) {
	kind := b.Template
	if kind == "" {
		kind = TemplateFull
	}
	src, ok := templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown template %q", kind)
	}

	rc := NewContext(b.Registry, b.Assets)
	rc.Images = b.Images
	rc.ShowUnsupported = b.ShowUnsupported

	funcs := sprig.FuncMap()
	funcs["content"] = func() (template.HTML, error) {
		var buf bytes.Buffer
		if err := rc.RenderForest(&buf, forest); err != nil {
			return "", err
		}
		return template.HTML(buf.String()), nil
	}

	tmpl, err := template.New(string(kind)).Funcs(funcs).Parse(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", kind, err)
	}

	href := b.CSSHref
	if href == "" {
		href = StylesheetName
	}
	data := shellData{
		Title:       b.Title,
		Lang:        b.Lang,
		ShowTitle:   b.ShowTitle && strings.TrimSpace(b.Title) != "",
		ExternalCSS: b.CSSMode == CSSExternal,
		CSSHref:     href,
		CSS:         template.CSS(b.Stylesheet()),
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return out.String(), nil
}
