package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/roboco-io/feishu2html/internal/block"
	"github.com/roboco-io/feishu2html/internal/fsys"
	"github.com/roboco-io/feishu2html/internal/render"
	"github.com/roboco-io/feishu2html/internal/tree"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

// memFS is an in-memory fsys.FileSystem.
type memFS struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
}

func newMemFS() *memFS {
	return &memFS{files: map[string][]byte{}, dirs: map[string]bool{}}
}

func (m *memFS) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok || m.dirs[path]
}

func (m *memFS) WriteText(path, content string) error {
	return m.WriteBytes(path, []byte(content))
}

func (m *memFS) WriteBytes(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	return nil
}

func (m *memFS) CreateDirectories(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
	return nil
}

func (m *memFS) text(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.files[path])
}

// mockFS records calls through testify/mock.
type mockFS struct {
	mock.Mock
}

func (m *mockFS) Exists(path string) bool {
	return m.Called(path).Bool(0)
}

func (m *mockFS) WriteText(path, content string) error {
	return m.Called(path, content).Error(0)
}

func (m *mockFS) WriteBytes(path string, data []byte) error {
	return m.Called(path, data).Error(0)
}

func (m *mockFS) CreateDirectories(path string) error {
	return m.Called(path).Error(0)
}

var _ fsys.FileSystem = (*mockFS)(nil)

// fakeSource serves documents and media from memory.
type fakeSource struct {
	mu       sync.Mutex
	docs     map[string]*block.Document
	docErr   map[string]error
	media    map[string][]byte
	mediaErr error
	fetched  []string
}

func (f *fakeSource) DocumentBlocks(_ context.Context, id string) (*block.Document, error) {
	if err := f.docErr[id]; err != nil {
		return nil, err
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return doc, nil
}

func (f *fakeSource) FetchMedia(_ context.Context, token string) ([]byte, error) {
	if f.mediaErr != nil {
		return nil, f.mediaErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, token)
	return f.media[token], nil
}

func (f *fakeSource) FetchBoardImage(ctx context.Context, token string) ([]byte, error) {
	return f.FetchMedia(ctx, token)
}

func base(id string, t block.Type, parent string, children ...string) block.Base {
	return block.Base{BlockID: id, BlockType: t, Parent: parent, Children: children}
}

func runs(content string) *block.TextData {
	return &block.TextData{Elements: []block.TextElement{{TextRun: &block.TextRun{Content: content}}}}
}

func sampleDoc(id, title string) *block.Document {
	doc := block.NewDocument(block.DocumentMeta{DocumentID: id, Title: title})
	doc.AddAll([]block.Block{
		&block.Page{Base: base(id, block.TypePage, "", "h1", "p1", "img", "file", "board", "img2"), Page: runs(title)},
		&block.Heading{Base: base("h1", block.TypeHeading1, id), Heading: runs("Overview")},
		&block.Text{Base: base("p1", block.TypeText, id), Text: runs("Body text")},
		&block.Image{Base: base("img", block.TypeImage, id), Image: &block.ImageData{Token: "imgtok"}},
		&block.File{Base: base("file", block.TypeFile, id), File: &block.FileData{Token: "filetok", Name: "report.pdf"}},
		&block.Board{Base: base("board", block.TypeBoard, id), Board: &block.TokenData{Token: "boardtok"}},
		// Second reference to the same image is fetched once.
		&block.Image{Base: base("img2", block.TypeImage, id), Image: &block.ImageData{Token: "imgtok"}},
	})
	return doc
}

func newSource(docs ...*block.Document) *fakeSource {
	src := &fakeSource{
		docs:   map[string]*block.Document{},
		docErr: map[string]error{},
		media: map[string][]byte{
			"imgtok":   pngBytes,
			"filetok":  []byte("%PDF-1.4"),
			"boardtok": pngBytes,
		},
	}
	for _, d := range docs {
		src.docs[d.Meta.DocumentID] = d
	}
	return src
}

func TestExport_WritesHTMLAssetsAndStylesheet(t *testing.T) {
	fs := newMemFS()
	src := newSource(sampleDoc("doxA", "Weekly Notes"))
	mclock := clock.NewMock()

	e, err := New(src, Options{OutputDir: "out"}, WithFileSystem(fs), WithClock(mclock))
	require.NoError(t, err)

	res, err := e.Export(context.Background(), "doxA")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("out", "weekly-notes.html"), res.HTMLPath)
	assert.Equal(t, filepath.Join("out", "style.css"), res.CSSPath)
	assert.Equal(t, "Weekly Notes", res.Title)
	assert.Equal(t, 6, res.Blocks)
	assert.Equal(t, 3, res.Assets)
	assert.Equal(t, []string{"imgtok", "filetok", "boardtok"}, src.fetched)

	assert.Equal(t, render.DefaultCSS, fs.text(filepath.Join("out", "style.css")))
	assert.Equal(t, string(pngBytes), fs.text(filepath.Join("out", "assets", "imgtok.png")))
	assert.Equal(t, "%PDF-1.4", fs.text(filepath.Join("out", "assets", "filetok.pdf")))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fs.text(res.HTMLPath)))
	require.NoError(t, err)
	assert.Equal(t, "Weekly Notes", doc.Find("title").Text())
	assert.Equal(t, "style.css", doc.Find(`link[rel="stylesheet"]`).First().AttrOr("href", ""))
	assert.Equal(t, "Overview", doc.Find("h1").Text())
	assert.Equal(t, "assets/imgtok.png", doc.Find("figure.image img").First().AttrOr("src", ""))
	assert.Equal(t, "assets/filetok.pdf", doc.Find("div.file a").AttrOr("href", ""))
	assert.Equal(t, "assets/boardtok.png", doc.Find("figure.board img").AttrOr("src", ""))
}

func TestExport_ReusesExistingAssets(t *testing.T) {
	fs := newMemFS()
	require.NoError(t, fs.WriteBytes(filepath.Join("out", "assets", "imgtok.jpg"), []byte("old")))
	require.NoError(t, fs.WriteBytes(filepath.Join("out", "assets", "boardtok.png"), []byte("old")))
	src := newSource(sampleDoc("doxA", "Notes"))

	e, err := New(src, Options{OutputDir: "out", Template: render.TemplateFragment}, WithFileSystem(fs))
	require.NoError(t, err)

	res, err := e.Export(context.Background(), "doxA")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Reused)
	assert.Equal(t, 1, res.Assets)
	assert.Equal(t, []string{"filetok"}, src.fetched)
	assert.Empty(t, res.CSSPath, "fragment output has no stylesheet")
	assert.Contains(t, fs.text(res.HTMLPath), `src="assets/imgtok.jpg"`)
}

func TestExport_InlineImages(t *testing.T) {
	fs := newMemFS()
	src := newSource(sampleDoc("doxA", "Notes"))

	e, err := New(src, Options{
		OutputDir:    "out",
		Template:     render.TemplateInline,
		InlineImages: true,
	}, WithFileSystem(fs))
	require.NoError(t, err)

	res, err := e.Export(context.Background(), "doxA")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Assets)
	assert.Empty(t, res.CSSPath)
	assert.Equal(t, "%PDF-1.4", fs.text(filepath.Join("out", "assets", "filetok.pdf")))
	assert.False(t, fs.Exists(filepath.Join("out", "assets", "imgtok.png")), "embedded images stay off disk")

	out := fs.text(res.HTMLPath)
	assert.Contains(t, out, `src="data:image/png;base64,`)
	assert.Contains(t, out, "<style>")
	assert.NotContains(t, out, "<link")
}

func TestExport_AssetFailureIsNotFatal(t *testing.T) {
	fs := newMemFS()
	src := newSource(sampleDoc("doxA", "Notes"))
	src.mediaErr = errors.New("download rejected")

	e, err := New(src, Options{OutputDir: "out"}, WithFileSystem(fs))
	require.NoError(t, err)

	res, err := e.Export(context.Background(), "doxA")
	require.NoError(t, err)
	assert.Zero(t, res.Assets)
	assert.Contains(t, fs.text(res.HTMLPath), `src="assets/imgtok"`)
}

func TestExport_FetchErrorWritesNothing(t *testing.T) {
	fs := &mockFS{}
	src := newSource()
	src.docErr["doxBad"] = errors.New("permission denied")

	e, err := New(src, Options{OutputDir: "out"}, WithFileSystem(fs))
	require.NoError(t, err)

	_, err = e.Export(context.Background(), "doxBad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	fs.AssertNotCalled(t, "WriteText", mock.Anything, mock.Anything)
}

func TestExport_RenderFailureWritesNothing(t *testing.T) {
	fs := &mockFS{}
	fs.On("Exists", mock.Anything).Return(false)

	reg := render.DefaultRegistry()
	require.NoError(t, reg.Unregister(block.TypeHeading1))
	src := newSource(sampleDoc("doxA", "Notes"))

	e := &Exporter{src: src, fs: fs, clock: clock.New(), logger: zap.NewNop(),
		opts: Options{OutputDir: "out", AssetsDir: "assets", Template: render.TemplateFull, CSSMode: render.CSSExternal, Registry: reg}}

	_, err := e.Export(context.Background(), "doxA")
	require.ErrorIs(t, err, render.ErrNoRenderer)
	assert.Len(t, src.fetched, 3)
	fs.AssertNotCalled(t, "WriteText", mock.Anything, mock.Anything)
	fs.AssertNotCalled(t, "WriteBytes", mock.Anything, mock.Anything)
	fs.AssertNotCalled(t, "CreateDirectories", mock.Anything)
}

func TestExport_WriteFailure(t *testing.T) {
	fs := &mockFS{}
	fs.On("Exists", mock.Anything).Return(false)
	fs.On("WriteBytes", mock.Anything, mock.Anything).Return(nil)
	fs.On("CreateDirectories", "out").Return(nil)
	fs.On("CreateDirectories", filepath.Join("out", "assets")).Return(nil)
	fs.On("WriteText", filepath.Join("out", "style.css"), mock.Anything).Return(errors.New("disk full"))

	e, err := New(newSource(sampleDoc("doxA", "Notes")), Options{OutputDir: "out"}, WithFileSystem(fs))
	require.NoError(t, err)

	_, err = e.Export(context.Background(), "doxA")
	assert.EqualError(t, err, "disk full")
	fs.AssertExpectations(t)
}

func TestExport_Cancelled(t *testing.T) {
	fs := newMemFS()
	src := newSource(sampleDoc("doxA", "Notes"))
	e, err := New(src, Options{OutputDir: "out"}, WithFileSystem(fs))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Export(ctx, "doxA")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, fs.Exists(filepath.Join("out", "notes.html")))
}

func TestExportAll_ContinuesPastFailures(t *testing.T) {
	fs := newMemFS()
	src := newSource(sampleDoc("doxA", "First"), sampleDoc("doxC", "Third"))
	src.docErr["doxB"] = errors.New("not found")

	e, err := New(src, Options{OutputDir: "out"}, WithFileSystem(fs))
	require.NoError(t, err)

	results, err := e.ExportAll(context.Background(), []string{"doxA", "doxB", "doxC"})
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 1)
	assert.Contains(t, err.Error(), "doxB")

	require.Len(t, results, 2)
	assert.Equal(t, "doxA", results[0].DocumentID)
	assert.Equal(t, "doxC", results[1].DocumentID)
	assert.True(t, fs.Exists(filepath.Join("out", "first.html")))
	assert.True(t, fs.Exists(filepath.Join("out", "third.html")))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)

	_, err = New(&fakeSource{}, Options{Template: "pdf"})
	assert.Error(t, err)

	_, err = New(&fakeSource{}, Options{CSSMode: "cdn"})
	assert.Error(t, err)

	reg := render.DefaultRegistry()
	require.NoError(t, reg.Unregister(block.TypeTable))
	_, err = New(&fakeSource{}, Options{Registry: reg})
	assert.ErrorIs(t, err, render.ErrNoRenderer)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		title, id, want string
	}{
		{"Weekly Notes", "doxA", "weekly-notes.html"},
		{"  Q3 Plan: Draft 2 ", "doxA", "q3-plan-draft-2.html"},
		{"", "doxA", "doxA.html"},
		{"!!!", "doxA", "doxA.html"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(tt.title, tt.id), tt.title)
	}

	assert.Equal(t, "weekly-notes-doxB.html", uniqueFileName("Weekly Notes", "doxB"))
	assert.Equal(t, "doxB.html", uniqueFileName("", "doxB"))
}

func TestAssetFileName(t *testing.T) {
	assert.Equal(t, "b.png", assetFileName(assetRef{kind: assetBoard, token: "b"}, []byte("x")))
	assert.Equal(t, "f.pdf", assetFileName(assetRef{kind: assetFile, token: "f", name: "a.pdf"}, pngBytes))
	assert.Equal(t, "f.png", assetFileName(assetRef{kind: assetFile, token: "f", name: "README"}, pngBytes))
	assert.Equal(t, "i.png", assetFileName(assetRef{kind: assetImage, token: "i"}, pngBytes))
	assert.Equal(t, "i", assetFileName(assetRef{kind: assetImage, token: "i"}, []byte("plain")))
}

func TestCollectAssets(t *testing.T) {
	refs := collectAssets(tree.Build(sampleDoc("doxA", "Notes").Blocks))
	require.Len(t, refs, 3)
	assert.Equal(t, assetRef{kind: assetImage, token: "imgtok"}, refs[0])
	assert.Equal(t, assetRef{kind: assetFile, token: "filetok", name: "report.pdf"}, refs[1])
	assert.Equal(t, assetRef{kind: assetBoard, token: "boardtok"}, refs[2])
}

func TestExport_InlineImagesBeyondCacheDefault(t *testing.T) {
	const n = render.DefaultImageCacheSize + 44
	doc := block.NewDocument(block.DocumentMeta{DocumentID: "doxMany", Title: "Gallery"})
	children := make([]string, 0, n)
	src := newSource()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("img%03d", i)
		token := "tok" + id
		children = append(children, id)
		doc.Add(&block.Image{Base: base(id, block.TypeImage, "doxMany"), Image: &block.ImageData{Token: token}})
		src.media[token] = pngBytes
	}
	doc.Add(&block.Page{Base: base("doxMany", block.TypePage, "", children...), Page: runs("Gallery")})
	src.docs["doxMany"] = doc

	fs := newMemFS()
	e, err := New(src, Options{OutputDir: "out", Template: render.TemplateInline, InlineImages: true}, WithFileSystem(fs))
	require.NoError(t, err)

	res, err := e.Export(context.Background(), "doxMany")
	require.NoError(t, err)
	assert.Equal(t, n, res.Assets)

	page, err := goquery.NewDocumentFromReader(strings.NewReader(fs.text(res.HTMLPath)))
	require.NoError(t, err)
	imgs := page.Find("figure.image img")
	require.Equal(t, n, imgs.Length())
	imgs.Each(func(i int, sel *goquery.Selection) {
		assert.True(t, strings.HasPrefix(sel.AttrOr("src", ""), "data:image/png;base64,"), "image %d: %s", i, sel.AttrOr("src", ""))
	})
	for p := range fs.files {
		assert.NotContains(t, p, "assets", "nothing written under assets")
	}
}

func TestExportAll_SameTitleGetsDistinctFiles(t *testing.T) {
	fs := newMemFS()
	first := sampleDoc("doxA", "Weekly Notes")
	second := block.NewDocument(block.DocumentMeta{DocumentID: "doxB", Title: "Weekly Notes"})
	second.AddAll([]block.Block{
		&block.Page{Base: base("doxB", block.TypePage, "", "p"), Page: runs("Weekly Notes")},
		&block.Text{Base: base("p", block.TypeText, "doxB"), Text: runs("Second week")},
	})
	src := newSource(first, second)

	e, err := New(src, Options{OutputDir: "out", Template: render.TemplateFragment}, WithFileSystem(fs))
	require.NoError(t, err)

	results, err := e.ExportAll(context.Background(), []string{"doxA", "doxB", "doxA"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, filepath.Join("out", "weekly-notes.html"), results[0].HTMLPath)
	assert.Equal(t, filepath.Join("out", "weekly-notes-doxB.html"), results[1].HTMLPath)
	assert.Equal(t, results[0].HTMLPath, results[2].HTMLPath, "re-exporting a document reuses its own file")

	assert.Contains(t, fs.text(results[0].HTMLPath), "Body text")
	assert.Contains(t, fs.text(results[1].HTMLPath), "Second week")
}

func TestExport_SingleDocumentKeepsTitleName(t *testing.T) {
	fs := newMemFS()
	e, err := New(newSource(sampleDoc("doxB", "Weekly Notes")), Options{OutputDir: "out"}, WithFileSystem(fs))
	require.NoError(t, err)

	res, err := e.Export(context.Background(), "doxB")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "weekly-notes.html"), res.HTMLPath)
}
