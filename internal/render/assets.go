package render

import (
	"encoding/base64"
	"path"

	"github.com/h2non/filetype"
	lru "github.com/hashicorp/golang-lru/v2"
)

// AssetResolver maps asset tokens to URLs used in the output.
type AssetResolver interface {
	ImageSrc(token string) string
	FileHref(token, name string) string
	BoardSrc(token string) string
}

// RelativeAssets resolves assets to files in Dir, relative to the HTML file.
// Files maps a token to its file name; unmapped tokens use the token itself.
type RelativeAssets struct {
	Dir   string
	Files map[string]string
}

func (a RelativeAssets) file(token string) string {
	if name, ok := a.Files[token]; ok {
		return path.Join(a.Dir, name)
	}
	return path.Join(a.Dir, token)
}

// ImageSrc returns the relative path of an image.
func (a RelativeAssets) ImageSrc(token string) string { return a.file(token) }

// FileHref returns the relative path of an attachment.
func (a RelativeAssets) FileHref(token, _ string) string { return a.file(token) }

// BoardSrc returns the relative path of an exported board image.
func (a RelativeAssets) BoardSrc(token string) string { return a.file(token) }

// DefaultImageCacheSize bounds the number of cached data URLs.
const DefaultImageCacheSize = 256

// ImageCache holds data URLs keyed by image token. A nil cache is empty.
type ImageCache struct {
	cache *lru.Cache[string, string]
}

// NewImageCache creates a cache holding up to size entries.
func NewImageCache(size int) (*ImageCache, error) {
	if size <= 0 {
		size = DefaultImageCacheSize
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &ImageCache{cache: c}, nil
}

// Put stores data for token and returns its data URL.
func (c *ImageCache) Put(token string, data []byte) string {
	u := DataURL(data)
	c.cache.Add(token, u)
	return u
}

// Get returns the data URL stored for token.
func (c *ImageCache) Get(token string) (string, bool) {
	if c == nil {
		return "", false
	}
	return c.cache.Get(token)
}

// Len returns the number of cached entries.
func (c *ImageCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}

// DataURL encodes data as a base64 data URL with a sniffed MIME type.
func DataURL(data []byte) string {
	mime := "application/octet-stream"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		mime = kind.MIME.Value
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// imageSrc prefers a cached data URL over the resolver.
func (rc *Context) imageSrc(token string) string {
	if u, ok := rc.Images.Get(token); ok {
		return u
	}
	return rc.Assets.ImageSrc(token)
}

// boardSrc prefers a cached data URL over the resolver.
func (rc *Context) boardSrc(token string) string {
	if u, ok := rc.Images.Get(token); ok {
		return u
	}
	return rc.Assets.BoardSrc(token)
}
