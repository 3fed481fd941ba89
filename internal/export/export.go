// Package export turns documents into HTML files on disk: it fetches the
// blocks and the assets they reference, renders the tree and writes the
// result. Nothing is written for a document until it rendered successfully.
package export

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/roboco-io/feishu2html/internal/block"
	"github.com/roboco-io/feishu2html/internal/feishu"
	"github.com/roboco-io/feishu2html/internal/fsys"
	"github.com/roboco-io/feishu2html/internal/render"
	"github.com/roboco-io/feishu2html/internal/tree"
)

// Source is the document API the exporter reads from. *feishu.Client
// implements it.
type Source interface {
	DocumentBlocks(ctx context.Context, documentID string) (*block.Document, error)
	FetchMedia(ctx context.Context, token string) ([]byte, error)
	FetchBoardImage(ctx context.Context, token string) ([]byte, error)
}

// Options controls the output of an export.
type Options struct {
	OutputDir string
	// AssetsDir is relative to OutputDir.
	AssetsDir string
	Template  render.TemplateKind
	CSSMode   render.CSSMode
	// CSS replaces the built-in stylesheet when set.
	CSS             string
	ShowTitle       bool
	ShowUnsupported bool
	// InlineImages embeds images and boards as data URLs instead of
	// downloading them next to the HTML file.
	InlineImages bool
	Registry     *render.Registry
}

// Result describes one exported document.
type Result struct {
	DocumentID string
	Title      string
	HTMLPath   string
	CSSPath    string
	Blocks     int
	Assets     int // fetched or embedded
	Reused     int // already present on disk
	Duration   time.Duration
}

// Exporter runs exports against a Source.
type Exporter struct {
	src    Source
	fs     fsys.FileSystem
	opts   Options
	clock  clock.Clock
	logger *zap.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithFileSystem sets the file system outputs are written to.
func WithFileSystem(fs fsys.FileSystem) Option {
	return func(e *Exporter) {
		e.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) {
		e.logger = l
	}
}

// WithClock sets the clock used to time exports.
func WithClock(clk clock.Clock) Option {
	return func(e *Exporter) {
		e.clock = clk
	}
}

// New creates an exporter. It fails when the template is unknown or the
// registry does not cover every block type.
func New(src Source, opts Options, options ...Option) (*Exporter, error) {
	if src == nil {
		return nil, errors.New("export source is required")
	}
	kind, err := render.ParseTemplateKind(string(opts.Template))
	if err != nil {
		return nil, err
	}
	opts.Template = kind
	if opts.CSSMode == "" {
		opts.CSSMode = render.CSSExternal
	}
	if opts.CSSMode != render.CSSExternal && opts.CSSMode != render.CSSInline {
		return nil, fmt.Errorf("unknown css mode %q (want external or inline)", opts.CSSMode)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.AssetsDir == "" {
		opts.AssetsDir = "assets"
	}
	if opts.Registry == nil {
		opts.Registry = render.DefaultRegistry()
	}
	if err := opts.Registry.Validate(); err != nil {
		return nil, err
	}

	e := &Exporter{
		src:    src,
		fs:     fsys.OS{},
		opts:   opts,
		clock:  clock.New(),
		logger: zap.NewNop(),
	}
	for _, o := range options {
		o(e)
	}
	e.logger = e.logger.Named("export")
	return e, nil
}

// Export writes one document with its assets. Nothing is written until the
// whole document rendered successfully.
func (e *Exporter) Export(ctx context.Context, documentID string) (Result, error) {
	return e.export(ctx, documentID, nil, e.logger.With(zap.String("run", uuid.NewString())))
}

// ExportAll exports every document, continuing past failures. The returned
// error combines the failures; results hold the successful exports.
func (e *Exporter) ExportAll(ctx context.Context, documentIDs []string) ([]Result, error) {
	log := e.logger.With(zap.String("run", uuid.NewString()))
	results := make([]Result, 0, len(documentIDs))
	var errs error
	// HTML file name -> document that owns it in this batch.
	names := make(map[string]string, len(documentIDs))
	for _, id := range documentIDs {
		if ctx.Err() != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", id, ctx.Err()))
			continue
		}
		res, err := e.export(ctx, id, names, log)
		if err != nil {
			log.Error("Export failed", zap.String("document", id), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		results = append(results, res)
	}
	log.Info("Batch finished",
		zap.Int("exported", len(results)),
		zap.Int("failed", len(multierr.Errors(errs))))
	return results, errs
}

// export renders one document. names, when set, holds the HTML file names
// already written in this batch; a document whose title collides with another
// document's gets the document id appended.
func (e *Exporter) export(ctx context.Context, documentID string, names map[string]string, log *zap.Logger) (Result, error) {
	start := e.clock.Now()
	log = log.With(zap.String("document", documentID))

	doc, err := e.src.DocumentBlocks(ctx, documentID)
	if err != nil {
		return Result{}, fmt.Errorf("fetch blocks: %w", err)
	}
	title := doc.Meta.Title
	if title == "" {
		title = documentID
	}
	forest := tree.Build(doc.Blocks)
	log.Debug("Tree built", zap.Int("blocks", len(doc.Blocks)), zap.Int("nodes", tree.Count(forest)))

	res := Result{DocumentID: documentID, Title: title, Blocks: tree.Count(forest)}

	refs := collectAssets(forest)
	assets := render.RelativeAssets{Dir: filepath.ToSlash(e.opts.AssetsDir), Files: map[string]string{}}
	var images *render.ImageCache
	if e.opts.InlineImages {
		// Sized to hold every embedded asset so none is evicted before Build.
		if images, err = render.NewImageCache(max(len(refs), 1)); err != nil {
			return Result{}, err
		}
	}
	staged, err := e.fetchAssets(ctx, refs, assets.Files, images, &res, log)
	if err != nil {
		return Result{}, err
	}

	b := &render.Builder{
		Template:        e.opts.Template,
		CSSMode:         e.opts.CSSMode,
		CSS:             e.opts.CSS,
		CSSHref:         render.StylesheetName,
		Title:           title,
		ShowTitle:       e.opts.ShowTitle,
		Registry:        e.opts.Registry,
		Assets:          assets,
		Images:          images,
		ShowUnsupported: e.opts.ShowUnsupported,
	}
	out, err := b.Build(forest)
	if err != nil {
		return Result{}, fmt.Errorf("render: %w", err)
	}

	if err := e.fs.CreateDirectories(e.opts.OutputDir); err != nil {
		return Result{}, err
	}
	if err := e.writeAssets(staged); err != nil {
		return Result{}, err
	}
	if e.opts.Template == render.TemplateFull && e.opts.CSSMode == render.CSSExternal {
		res.CSSPath = filepath.Join(e.opts.OutputDir, render.StylesheetName)
		if err := e.fs.WriteText(res.CSSPath, b.Stylesheet()); err != nil {
			return Result{}, err
		}
	}
	name := FileName(title, documentID)
	if owner, taken := names[name]; taken && owner != documentID {
		unique := uniqueFileName(title, documentID)
		log.Warn("Title already exported in this batch",
			zap.String("file", name),
			zap.String("owner", owner),
			zap.String("renamed", unique))
		name = unique
	}
	res.HTMLPath = filepath.Join(e.opts.OutputDir, name)
	if err := e.fs.WriteText(res.HTMLPath, out); err != nil {
		return Result{}, err
	}
	if names != nil {
		names[name] = documentID
	}

	res.Duration = e.clock.Since(start)
	log.Info("Exported",
		zap.String("title", title),
		zap.String("path", res.HTMLPath),
		zap.Int("blocks", res.Blocks),
		zap.Int("assets", res.Assets),
		zap.Duration("took", res.Duration))
	return res, nil
}

// FileName returns the HTML file name for a document title, falling back to
// the document id when the title has no usable characters.
func FileName(title, documentID string) string {
	name := slug.Make(title)
	if name == "" {
		name = documentID
	}
	return name + ".html"
}

// uniqueFileName is FileName with the document id appended, for titles shared
// by several documents.
func uniqueFileName(title, documentID string) string {
	name := slug.Make(title)
	if name == "" {
		return documentID + ".html"
	}
	return name + "-" + documentID + ".html"
}

type assetKind int

const (
	assetImage assetKind = iota
	assetFile
	assetBoard
)

type assetRef struct {
	kind  assetKind
	token string
	name  string
}

// collectAssets lists the assets referenced by the forest in document order,
// each token once.
func collectAssets(forest []*tree.Node) []assetRef {
	var refs []assetRef
	seen := make(map[string]bool)
	add := func(r assetRef) {
		if r.token == "" || seen[r.token] {
			return
		}
		seen[r.token] = true
		refs = append(refs, r)
	}
	tree.Walk(forest, func(n *tree.Node, _ int) bool {
		switch b := n.Block.(type) {
		case *block.Image:
			if b.Image != nil {
				add(assetRef{kind: assetImage, token: b.Image.Token})
			}
		case *block.File:
			if b.File != nil {
				add(assetRef{kind: assetFile, token: b.File.Token, name: b.File.Name})
			}
		case *block.Board:
			if b.Board != nil {
				add(assetRef{kind: assetBoard, token: b.Board.Token})
			}
		}
		return true
	})
	return refs
}

// imageExts are the extensions checked when looking for an image downloaded
// by an earlier run.
var imageExts = []string{".png", ".jpg", ".gif", ".webp", ".bmp", ".tif", ".ico", ".heif", ".avif"}

// stagedAsset is a downloaded asset waiting to be written.
type stagedAsset struct {
	path string
	data []byte
}

// fetchAssets fetches every asset into memory. Images and boards are embedded
// when images is set; the rest are staged for writeAssets. A failed asset is
// logged and left pointing at its token path; cancellation aborts the export.
func (e *Exporter) fetchAssets(ctx context.Context, refs []assetRef, files map[string]string, images *render.ImageCache, res *Result, log *zap.Logger) ([]stagedAsset, error) {
	dir := filepath.Join(e.opts.OutputDir, e.opts.AssetsDir)
	var staged []stagedAsset
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		embed := images != nil && ref.kind != assetFile
		if !embed {
			if name, ok := e.existing(dir, ref); ok {
				files[ref.token] = name
				res.Reused++
				log.Debug("Asset already present", zap.String("token", ref.token), zap.String("file", name))
				continue
			}
		}

		data, err := e.fetchBytes(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("Unable to fetch asset", zap.String("token", ref.token), zap.Error(err))
			continue
		}
		res.Assets++
		if embed {
			images.Put(ref.token, data)
			continue
		}
		name := assetFileName(ref, data)
		files[ref.token] = name
		staged = append(staged, stagedAsset{path: filepath.Join(dir, name), data: data})
	}
	return staged, nil
}

// writeAssets writes staged assets under the assets directory.
func (e *Exporter) writeAssets(staged []stagedAsset) error {
	if len(staged) == 0 {
		return nil
	}
	if err := e.fs.CreateDirectories(filepath.Join(e.opts.OutputDir, e.opts.AssetsDir)); err != nil {
		return err
	}
	for _, a := range staged {
		if err := e.fs.WriteBytes(a.path, a.data); err != nil {
			return fmt.Errorf("write asset %s: %w", filepath.Base(a.path), err)
		}
	}
	return nil
}

// assetFileName names a downloaded asset after its token. Boards are always
// PNG; files keep the extension of their original name; images get the
// extension of their content.
func assetFileName(ref assetRef, data []byte) string {
	switch {
	case ref.kind == assetBoard:
		return ref.token + ".png"
	case ref.kind == assetFile && path.Ext(ref.name) != "":
		return ref.token + path.Ext(ref.name)
	default:
		return ref.token + feishu.Extension(data)
	}
}

func (e *Exporter) fetchBytes(ctx context.Context, ref assetRef) ([]byte, error) {
	if ref.kind == assetBoard {
		return e.src.FetchBoardImage(ctx, ref.token)
	}
	return e.src.FetchMedia(ctx, ref.token)
}

// existing returns the file name of an asset a previous export already wrote.
func (e *Exporter) existing(dir string, ref assetRef) (string, bool) {
	var candidates []string
	switch ref.kind {
	case assetBoard:
		candidates = []string{ref.token + ".png"}
	case assetFile:
		if ext := path.Ext(ref.name); ext != "" {
			candidates = []string{ref.token + ext}
		}
	case assetImage:
		for _, ext := range imageExts {
			candidates = append(candidates, ref.token+ext)
		}
	}
	for _, name := range candidates {
		if e.fs.Exists(filepath.Join(dir, name)) {
			return name, true
		}
	}
	return "", false
}
