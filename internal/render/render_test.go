package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roboco-io/feishu2html/internal/block"
	"github.com/roboco-io/feishu2html/internal/tree"
)

func base(id string, t block.Type, parent string, children ...string) block.Base {
	return block.Base{BlockID: id, BlockType: t, Parent: parent, Children: children}
}

func runs(content string) *block.TextData {
	return &block.TextData{Elements: []block.TextElement{{TextRun: &block.TextRun{Content: content}}}}
}

func page(children ...string) *block.Page {
	return &block.Page{Base: base("page", block.TypePage, "", children...), Page: runs("Title")}
}

func text(id, content string, children ...string) *block.Text {
	return &block.Text{Base: base(id, block.TypeText, "page", children...), Text: runs(content)}
}

func forestOf(blocks ...block.Block) []*tree.Node {
	m := make(map[string]block.Block, len(blocks))
	for _, b := range blocks {
		m[b.ID()] = b
	}
	return tree.Build(m)
}

func build(t *testing.T, b *Builder, blocks ...block.Block) string {
	t.Helper()
	if b.Template == "" {
		b.Template = TemplateFragment
	}
	out, err := b.Build(forestOf(blocks...))
	require.NoError(t, err)
	return out
}

func parse(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func TestBuild_EndToEndOrder(t *testing.T) {
	out := build(t, &Builder{},
		page("text1", "bullet1"),
		text("text1", "Hello"),
		&block.Bullet{Base: base("bullet1", block.TypeBullet, "page", "text2"), Bullet: runs("Item")},
		&block.Text{Base: base("text2", block.TypeText, "bullet1"), Text: runs("Nested")},
	)
	doc := parse(t, out)

	assert.Equal(t, "Hello", doc.Find("body > p").First().Text())
	li := doc.Find("ul > li")
	require.Equal(t, 1, li.Length())
	assert.True(t, strings.HasPrefix(li.Text(), "Item"))
	assert.Equal(t, "Nested", li.Find(".list-nested > p").Text())

	hello := strings.Index(out, "Hello")
	item := strings.Index(out, "Item")
	nested := strings.Index(out, "Nested")
	assert.True(t, hello < item && item < nested, "render order: %s", out)
	assert.Equal(t, 1, strings.Count(out, "Item"))
	assert.Equal(t, 1, strings.Count(out, "Nested"))
}

func TestTable_ShortFinalRow(t *testing.T) {
	cells := []string{"c1", "c2", "c3", "c4", "c5"}
	blocks := []block.Block{
		page("tbl"),
		&block.Table{
			Base:  base("tbl", block.TypeTable, "page", cells...),
			Table: &block.TableData{Cells: cells, Property: &block.TableProperty{RowSize: 3, ColumnSize: 2}},
		},
	}
	for _, id := range cells {
		blocks = append(blocks,
			&block.TableCell{Base: base(id, block.TypeTableCell, "tbl", "t"+id)},
			&block.Text{Base: base("t"+id, block.TypeText, id), Text: runs(id)},
		)
	}
	doc := parse(t, build(t, &Builder{}, blocks...))

	rows := doc.Find("table tr")
	require.Equal(t, 3, rows.Length())
	assert.Equal(t, 2, rows.Eq(0).Find("td").Length())
	assert.Equal(t, 2, rows.Eq(1).Find("td").Length())
	assert.Equal(t, 1, rows.Eq(2).Find("td").Length())
	assert.Equal(t, "c5", strings.TrimSpace(rows.Eq(2).Find("td").Text()))
}

func TestTable_HeaderAndMerge(t *testing.T) {
	cells := []string{"a", "b", "c", "d"}
	blocks := []block.Block{
		page("tbl"),
		&block.Table{
			Base: base("tbl", block.TypeTable, "page", cells...),
			Table: &block.TableData{Property: &block.TableProperty{
				RowSize: 2, ColumnSize: 2, HeaderRow: true,
				MergeInfo: []block.MergeInfo{{RowSpan: 1, ColSpan: 2}, {RowSpan: 1, ColSpan: 1}, {RowSpan: 1, ColSpan: 1}, {RowSpan: 1, ColSpan: 1}},
			}},
		},
	}
	for _, id := range cells {
		blocks = append(blocks, &block.TableCell{Base: base(id, block.TypeTableCell, "tbl")})
	}
	doc := parse(t, build(t, &Builder{}, blocks...))

	first := doc.Find("tr").Eq(0)
	require.Equal(t, 1, first.Find("th").Length())
	colspan, _ := first.Find("th").Attr("colspan")
	assert.Equal(t, "2", colspan)
	assert.Equal(t, 2, doc.Find("tr").Eq(1).Find("td").Length())
}

func TestHeadings(t *testing.T) {
	var blocks []block.Block
	var ids []string
	for level := 1; level <= 9; level++ {
		id := "h" + string(rune('0'+level))
		ids = append(ids, id)
		blocks = append(blocks, &block.Heading{
			Base:    base(id, block.TypeHeading1+block.Type(level-1), "page"),
			Heading: runs("Level " + string(rune('0'+level))),
		})
	}
	blocks = append(blocks, page(ids...))
	doc := parse(t, build(t, &Builder{}, blocks...))

	assert.Equal(t, "Level 1", doc.Find("h1").Text())
	assert.Equal(t, "Level 6", doc.Find("h6").First().Text())
	assert.Equal(t, 4, doc.Find("h6").Length())

	h8 := doc.Find("h6.heading-8")
	require.Equal(t, 1, h8.Length())
	assert.Equal(t, "Level 8", h8.Text())
	level, _ := h8.Attr("data-level")
	assert.Equal(t, "8", level)
}

func ordered(id, content, seq string) *block.Ordered {
	d := runs(content)
	if seq != "" {
		d.Style = &block.TextStyle{Sequence: seq}
	}
	return &block.Ordered{Base: base(id, block.TypeOrdered, "page"), Ordered: d}
}

func TestOrdered_NumberingIsPositional(t *testing.T) {
	render := func() string {
		return build(t, &Builder{},
			page("o1", "o2", "sep", "o3", "o4", "o5"),
			ordered("o1", "one", "1"),
			ordered("o2", "two", "auto"),
			text("sep", "between"),
			ordered("o3", "again", ""),
			ordered("o4", "jump", "5"),
			ordered("o5", "next", "auto"),
		)
	}
	out := render()
	doc := parse(t, out)

	lists := doc.Find("ol")
	require.Equal(t, 2, lists.Length())
	var values []string
	doc.Find("ol > li").Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr("value")
		values = append(values, v)
	})
	assert.Equal(t, []string{"1", "2", "1", "5", "6"}, values)

	assert.Equal(t, out, render(), "numbering must not carry state between builds")
}

func TestUnsupportedPlaceholder(t *testing.T) {
	blocks := []block.Block{
		page("bt"),
		&block.Bitable{Base: base("bt", block.TypeBitable, "page"), Bitable: &block.TokenData{Token: "x"}},
	}

	hidden := build(t, &Builder{}, blocks...)
	assert.NotContains(t, hidden, "Unsupported block")

	shown := build(t, &Builder{ShowUnsupported: true}, blocks...)
	doc := parse(t, shown)
	assert.Equal(t, "Unsupported block: BITABLE", doc.Find(".unsupported-block").Text())
}

func TestUnknownBlock(t *testing.T) {
	raw := map[string]json.RawMessage{
		"block_id":   json.RawMessage(`"u1"`),
		"block_type": json.RawMessage(`4242`),
		"mystery":    json.RawMessage(`{"flag":true}`),
	}
	opaque := &block.Unknown{Base: base("u1", block.TypeUndefined, "page"), Code: 4242, Fields: raw}

	t.Run("opaque payload hidden", func(t *testing.T) {
		out := build(t, &Builder{}, page("u1"), opaque)
		assert.Empty(t, strings.TrimSpace(out))
	})

	t.Run("opaque payload placeholder", func(t *testing.T) {
		out := build(t, &Builder{ShowUnsupported: true}, page("u1"), opaque)
		assert.Contains(t, out, "Unsupported block: type 4242")
	})

	t.Run("text-shaped payload becomes blockquote", func(t *testing.T) {
		quoteish := &block.Unknown{
			Base: base("u2", block.TypeUndefined, "page"),
			Code: 77,
			Fields: map[string]json.RawMessage{
				"block_id": json.RawMessage(`"u2"`),
				"callout2": json.RawMessage(`{"elements":[{"text_run":{"content":"quoted"}}]}`),
			},
		}
		doc := parse(t, build(t, &Builder{}, page("u2"), quoteish))
		assert.Equal(t, "quoted", doc.Find("blockquote.fallback-block").Text())
	})
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	require.NoError(t, r.Validate())
	assert.Equal(t, len(block.Types()), r.Count())

	empty := NewRegistry()
	err := empty.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRenderer)

	assert.Error(t, r.Register(block.TypeText, RendererFunc(renderNothing)), "duplicate")
	assert.Error(t, empty.Register(block.TypeText, nil), "nil renderer")
	assert.Error(t, empty.Register(block.Type(4242), RendererFunc(renderNothing)), "undeclared type")

	require.NoError(t, r.Unregister(block.TypeDivider))
	assert.False(t, r.Has(block.TypeDivider))
	assert.ErrorIs(t, r.Unregister(block.TypeDivider), ErrNoRenderer)

	_, err = (&Builder{Registry: r, Template: TemplateFragment}).Build(forestOf(
		page("d"), &block.Divider{Base: base("d", block.TypeDivider, "page")},
	))
	assert.ErrorIs(t, err, ErrNoRenderer)
}

func TestRegistry_ListIsOrdered(t *testing.T) {
	types := DefaultRegistry().List()
	require.NotEmpty(t, types)
	assert.Equal(t, block.TypePage, types[0])
	assert.Equal(t, block.TypeUndefined, types[len(types)-1])
}

func TestElementConverter(t *testing.T) {
	ec := &ElementConverter{Assets: RelativeAssets{Dir: "assets"}}
	var buf bytes.Buffer
	ec.Convert(&buf, []block.TextElement{
		{TextRun: &block.TextRun{Content: "a<b>\nc"}},
		{TextRun: &block.TextRun{Content: "bold", TextElementStyle: &block.TextElementStyle{Bold: true, Italic: true}}},
		{TextRun: &block.TextRun{Content: "site", TextElementStyle: &block.TextElementStyle{Link: &block.Link{URL: "https%3A%2F%2Fexample.com%2Fa%3Fb%3D1"}}}},
		{TextRun: &block.TextRun{Content: "bad", TextElementStyle: &block.TextElementStyle{Link: &block.Link{URL: "javascript%3Aalert(1)"}}}},
		{TextRun: &block.TextRun{Content: "red", TextElementStyle: &block.TextElementStyle{TextColor: 1}}},
		{MentionDoc: &block.MentionDoc{Token: "doc", Title: "Roadmap", URL: "https%3A%2F%2Fx.feishu.cn%2Fdocx%2Fdoc"}},
		{MentionUser: &block.MentionUser{UserID: "ou_1"}},
		{Equation: &block.InlineEquation{Content: "E=mc^2\n"}},
	})
	out := buf.String()

	assert.Contains(t, out, "a&lt;b&gt;<br>c")
	assert.Contains(t, out, "<strong><em>bold</em></strong>")
	assert.Contains(t, out, `<a href="https://example.com/a?b=1">site</a>`)
	assert.Contains(t, out, `<a href="#">bad</a>`)
	assert.Contains(t, out, `<span class="text-color-1">red</span>`)
	assert.Contains(t, out, `<a class="mention-doc" href="https://x.feishu.cn/docx/doc">Roadmap</a>`)
	assert.Contains(t, out, "@ou_1")
	assert.Contains(t, out, `\(E=mc^2\)`)
}

func TestReminderTime(t *testing.T) {
	r := &block.Reminder{ExpireTime: "1700000000000"}
	assert.Equal(t, "2023-11-14 22:13", reminderTime(r))
	r.IsWholeDay = true
	assert.Equal(t, "2023-11-14", reminderTime(r))
	assert.Equal(t, "soon", reminderTime(&block.Reminder{ExpireTime: "soon"}))
}

func TestMediaBlocks(t *testing.T) {
	pngData := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	cache, err := NewImageCache(4)
	require.NoError(t, err)
	cache.Put("img-cached", pngData)

	out := build(t, &Builder{
		Assets: RelativeAssets{Dir: "assets", Files: map[string]string{"img1": "img1.jpg", "f1": "f1.pdf"}},
		Images: cache,
	},
		page("i1", "i2", "f", "b", "c"),
		&block.Image{Base: base("i1", block.TypeImage, "page"), Image: &block.ImageData{Token: "img1", Width: 100, Caption: &block.ImageCaption{Content: "cap"}}},
		&block.Image{Base: base("i2", block.TypeImage, "page"), Image: &block.ImageData{Token: "img-cached"}},
		&block.File{Base: base("f", block.TypeFile, "page"), File: &block.FileData{Token: "f1", Name: "report.pdf"}},
		&block.Board{Base: base("b", block.TypeBoard, "page"), Board: &block.TokenData{Token: "brd"}},
		&block.Code{Base: base("c", block.TypeCode, "page"), Code: &block.TextData{
			Style:    &block.TextStyle{Language: 22},
			Elements: []block.TextElement{{TextRun: &block.TextRun{Content: "if a < b {}"}}},
		}},
	)
	doc := parse(t, out)

	imgs := doc.Find("figure.image img")
	require.Equal(t, 2, imgs.Length())
	src, _ := imgs.Eq(0).Attr("src")
	assert.Equal(t, "assets/img1.jpg", src)
	assert.Equal(t, "cap", doc.Find("figcaption").Text())
	src, _ = imgs.Eq(1).Attr("src")
	assert.True(t, strings.HasPrefix(src, "data:image/png;base64,"))

	href, _ := doc.Find(".file a").Attr("href")
	assert.Equal(t, "assets/f1.pdf", href)
	assert.Equal(t, "report.pdf", doc.Find(".file a").Text())

	src, _ = doc.Find("figure.board img").Attr("src")
	assert.Equal(t, "assets/brd", src)

	assert.Equal(t, "if a < b {}", doc.Find("pre code.language-go").Text())
}

func TestContainers(t *testing.T) {
	doc := parse(t, build(t, &Builder{},
		page("call", "grid", "qc"),
		&block.Callout{Base: base("call", block.TypeCallout, "page", "ct"), Callout: &block.CalloutData{BackgroundColor: 3, EmojiID: "bulb"}},
		&block.Text{Base: base("ct", block.TypeText, "call"), Text: runs("inside callout")},
		&block.Grid{Base: base("grid", block.TypeGrid, "page", "g1", "g2"), Grid: &block.GridData{ColumnSize: 2}},
		&block.GridColumn{Base: base("g1", block.TypeGridColumn, "grid", "gt1"), GridColumn: &block.GridColumnData{WidthRatio: 30}},
		&block.GridColumn{Base: base("g2", block.TypeGridColumn, "grid", "gt2"), GridColumn: &block.GridColumnData{WidthRatio: 70}},
		&block.Text{Base: base("gt1", block.TypeText, "g1"), Text: runs("left")},
		&block.Text{Base: base("gt2", block.TypeText, "g2"), Text: runs("right")},
		&block.QuoteContainer{Base: base("qc", block.TypeQuoteContainer, "page", "qt")},
		&block.Text{Base: base("qt", block.TypeText, "qc"), Text: runs("quoted")},
	))

	callout := doc.Find("div.callout.callout-bg-3")
	require.Equal(t, 1, callout.Length())
	assert.Equal(t, "💡", callout.Find(".callout-emoji").Text())
	assert.Equal(t, "inside callout", callout.Find(".callout-body p").Text())

	cols := doc.Find(".grid > .grid-column")
	require.Equal(t, 2, cols.Length())
	style, _ := cols.Eq(1).Attr("style")
	assert.Equal(t, "flex:70", style)
	assert.Equal(t, "right", strings.TrimSpace(cols.Eq(1).Text()))

	assert.Equal(t, "quoted", doc.Find("blockquote.quote-container p").Text())
}

func TestTodoAndNilPayload(t *testing.T) {
	doc := parse(t, build(t, &Builder{},
		page("t1", "t2", "empty"),
		&block.Todo{Base: base("t1", block.TypeTodo, "page"), Todo: &block.TextData{
			Style: &block.TextStyle{Done: true}, Elements: runs("ship it").Elements,
		}},
		&block.Todo{Base: base("t2", block.TypeTodo, "page"), Todo: runs("later")},
		&block.Text{Base: base("empty", block.TypeText, "page")},
	))

	done := doc.Find(".todo.done")
	require.Equal(t, 1, done.Length())
	_, checked := done.Find("input").Attr("checked")
	assert.True(t, checked)
	assert.Equal(t, 2, doc.Find(".todo").Length())
	assert.Equal(t, 0, doc.Find("p").Length())
}

func TestBuilder_Templates(t *testing.T) {
	blocks := []block.Block{page("t"), text("t", "body")}

	full := build(t, &Builder{Template: TemplateFull, CSSMode: CSSExternal, Title: "A & B"}, blocks...)
	doc := parse(t, full)
	assert.Equal(t, "A & B", doc.Find("title").Text())
	href, ok := doc.Find(`link[rel="stylesheet"]`).First().Attr("href")
	require.True(t, ok)
	assert.Equal(t, StylesheetName, href)
	assert.Equal(t, 0, doc.Find("style").Length())
	assert.Equal(t, "body", doc.Find("article p").Text())

	inline := build(t, &Builder{Template: TemplateInline, CSS: ".custom{}"}, blocks...)
	assert.Contains(t, inline, ".custom{}")
	assert.NotContains(t, inline, "<script")
	assert.NotContains(t, inline, "<link")
	assert.Contains(t, inline, "<title>Untitled</title>")

	frag := build(t, &Builder{Template: TemplateFragment}, blocks...)
	assert.NotContains(t, frag, "<html")
	assert.Equal(t, "<p>body</p>", strings.TrimSpace(frag))

	_, err := (&Builder{Template: "bogus"}).Build(nil)
	assert.Error(t, err)
}

func TestParseTemplateKind(t *testing.T) {
	k, err := ParseTemplateKind(" Inline ")
	require.NoError(t, err)
	assert.Equal(t, TemplateInline, k)

	k, err = ParseTemplateKind("")
	require.NoError(t, err)
	assert.Equal(t, TemplateFull, k)

	_, err = ParseTemplateKind("pdf")
	assert.Error(t, err)
}

func TestImageCache(t *testing.T) {
	var nilCache *ImageCache
	_, ok := nilCache.Get("x")
	assert.False(t, ok)
	assert.Zero(t, nilCache.Len())

	c, err := NewImageCache(1)
	require.NoError(t, err)
	c.Put("a", []byte("a"))
	c.Put("b", []byte("b"))
	_, ok = c.Get("a")
	assert.False(t, ok, "evicted")
	u, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, "data:application/octet-stream;base64,Yg==", u)
}

func TestRenderChildrenDirect(t *testing.T) {
	rc := NewContext(nil, nil)
	var buf bytes.Buffer
	node := &tree.Node{Block: &block.Divider{Base: base("d", block.TypeDivider, "")}}
	require.NoError(t, rc.Render(&buf, node))
	assert.Equal(t, "<hr>\n", buf.String())
}
