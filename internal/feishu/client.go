// Package feishu provides a client for the Feishu/Lark open platform docx API.
package feishu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"github.com/roboco-io/feishu2html/internal/block"
	"github.com/roboco-io/feishu2html/internal/fsys"
)

const (
	// DefaultBaseURL is the Feishu open platform endpoint.
	DefaultBaseURL = "https://open.feishu.cn"
	// LarkBaseURL is the endpoint for Lark (international) tenants.
	LarkBaseURL = "https://open.larksuite.com"
	// MaxPageSize is the largest page_size accepted by the blocks endpoint.
	MaxPageSize = 500
)

// Config holds the app credentials and transport settings.
type Config struct {
	AppID     string
	AppSecret string
	BaseURL   string
	Timeout   time.Duration
}

// Client fetches documents and assets. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       *AuthService
	limiter    *RateLimiter
	retry      Policy
	pageSize   int
	fs         fsys.FileSystem
	clock      clock.Clock
	logger     *zap.Logger

	closeOnce sync.Once
	closed    atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRateLimiter replaces the default rate limiter.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = r
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p Policy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// WithPageSize sets the blocks page size, capped at MaxPageSize.
func WithPageSize(n int) Option {
	return func(c *Client) {
		c.pageSize = n
	}
}

// WithFileSystem sets where downloaded assets are written.
func WithFileSystem(fs fsys.FileSystem) Option {
	return func(c *Client) {
		c.fs = fs
	}
}

// WithClientClock sets the clock used for token expiry and retry delays.
func WithClientClock(clk clock.Clock) Option {
	return func(c *Client) {
		c.clock = clk
	}
}

// New creates a new Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, errors.New("app id and app secret must be configured")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = time.Minute
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retry:      DefaultPolicy(),
		pageSize:   MaxPageSize,
		fs:         fsys.OS{},
		clock:      clock.New(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pageSize <= 0 || c.pageSize > MaxPageSize {
		c.pageSize = MaxPageSize
	}
	if c.limiter == nil {
		c.limiter = NewRateLimiter(DefaultRateLimitConfig(), WithClock(c.clock), WithLimiterLogger(c.logger))
	}
	if c.retry.Logger == nil {
		c.retry.Logger = c.logger
	}
	if c.retry.Clock == nil {
		c.retry.Clock = c.clock
	}
	c.auth = NewAuthService(cfg.AppID, cfg.AppSecret, baseURL, c.httpClient, c.clock, c.logger)
	return c, nil
}

// Close releases idle transport connections. It is safe to call repeatedly.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.httpClient.CloseIdleConnections()
	})
	return nil
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type documentData struct {
	Document block.DocumentMeta `json:"document"`
}

type blocksPage struct {
	Items     []json.RawMessage `json:"items"`
	PageToken string            `json:"page_token"`
	HasMore   bool              `json:"has_more"`
}

// call runs one logical request through the retry policy and rate limiter.
// The limiter owns rate-limit backoff, so the outer policy only retries
// transport and server failures.
func call[T any](ctx context.Context, c *Client, op func(ctx context.Context) (T, error)) (T, error) {
	if c.closed.Load() {
		var zero T
		return zero, ErrClosed
	}
	return Do(ctx, c.retry, retryTransient, func(ctx context.Context) (T, error) {
		return Limit(ctx, c.limiter, op)
	})
}

func retryTransient(err error) bool {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return false
	}
	return IsRetryable(err)
}

// DocumentMeta fetches document metadata.
func (c *Client) DocumentMeta(ctx context.Context, documentID string) (block.DocumentMeta, error) {
	path := "/open-apis/docx/v1/documents/" + url.PathEscape(documentID)
	return call(ctx, c, func(ctx context.Context) (block.DocumentMeta, error) {
		var data documentData
		if err := c.getJSON(ctx, path, nil, &data); err != nil {
			return block.DocumentMeta{}, err
		}
		return data.Document, nil
	})
}

// DocumentBlocks fetches metadata and every block of a document. Pages are
// requested sequentially, each threading the previous page token.
func (c *Client) DocumentBlocks(ctx context.Context, documentID string) (*block.Document, error) {
	meta, err := c.DocumentMeta(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if meta.DocumentID == "" {
		meta.DocumentID = documentID
	}
	doc := block.NewDocument(meta)

	path := "/open-apis/docx/v1/documents/" + url.PathEscape(documentID) + "/blocks"
	seen := make(map[string]struct{})
	pageToken := ""
	for pageNum := 1; ; pageNum++ {
		query := url.Values{}
		query.Set("page_size", strconv.Itoa(c.pageSize))
		query.Set("document_revision_id", "-1")
		if pageToken != "" {
			query.Set("page_token", pageToken)
		}

		page, err := call(ctx, c, func(ctx context.Context) (blocksPage, error) {
			var p blocksPage
			err := c.getJSON(ctx, path, query, &p)
			return p, err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch blocks page %d: %w", pageNum, err)
		}

		blocks, err := block.DecodeList(page.Items)
		if err != nil {
			return nil, fmt.Errorf("failed to decode blocks page %d: %w", pageNum, err)
		}
		doc.AddAll(blocks)
		c.logger.Debug("fetched blocks page",
			zap.String("document", documentID),
			zap.Int("page", pageNum),
			zap.Int("items", len(blocks)))

		if !page.HasMore {
			break
		}
		if page.PageToken == "" {
			return nil, fmt.Errorf("blocks page %d reports more data without a page token", pageNum)
		}
		if _, dup := seen[page.PageToken]; dup {
			return nil, fmt.Errorf("blocks page %d repeats page token %q", pageNum, page.PageToken)
		}
		seen[page.PageToken] = struct{}{}
		pageToken = page.PageToken
	}
	return doc, nil
}

// FetchMedia downloads the content of an uploaded image or file.
func (c *Client) FetchMedia(ctx context.Context, token string) ([]byte, error) {
	path := "/open-apis/drive/v1/medias/" + url.PathEscape(token) + "/download"
	return call(ctx, c, func(ctx context.Context) ([]byte, error) {
		return c.getBinary(ctx, path, nil)
	})
}

// FetchBoardImage renders a board (whiteboard) as PNG.
func (c *Client) FetchBoardImage(ctx context.Context, token string) ([]byte, error) {
	path := "/open-apis/board/v1/whiteboards/" + url.PathEscape(token) + "/download_as_image"
	query := url.Values{"format": []string{"png"}}
	return call(ctx, c, func(ctx context.Context) ([]byte, error) {
		return c.getBinary(ctx, path, query)
	})
}

// DownloadMedia downloads a media asset to destPath. When destPath has no
// extension one is derived from the content; the final path is returned.
func (c *Client) DownloadMedia(ctx context.Context, token, destPath string) (string, error) {
	data, err := c.FetchMedia(ctx, token)
	if err != nil {
		return "", err
	}
	return c.write(destPath, data)
}

// ExportBoardImage downloads a board as PNG to destPath.
func (c *Client) ExportBoardImage(ctx context.Context, token, destPath string) (string, error) {
	data, err := c.FetchBoardImage(ctx, token)
	if err != nil {
		return "", err
	}
	if filepath.Ext(destPath) == "" {
		destPath += ".png"
	}
	return c.write(destPath, data)
}

func (c *Client) write(destPath string, data []byte) (string, error) {
	if filepath.Ext(destPath) == "" {
		destPath += Extension(data)
	}
	if err := c.fs.CreateDirectories(filepath.Dir(destPath)); err != nil {
		return "", err
	}
	if err := c.fs.WriteBytes(destPath, data); err != nil {
		return "", err
	}
	return destPath, nil
}

// Extension returns the file extension (with dot) matching data, or "" when
// the type is not recognized.
func Extension(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return "." + kind.Extension
}

func (c *Client) newRequest(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	token, err := c.auth.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, nil, req.Context().Err()
		}
		return nil, nil, &NetworkError{Op: req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{Op: req.URL.Path, Err: err}
	}
	return resp, body, nil
}

// getJSON issues a GET and decodes the envelope's data into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, path, query)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, body, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return c.checkAuth(errorFromResponse(resp.StatusCode, resp.Header, body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Code != CodeOK {
		return c.checkAuth(classify(resp.StatusCode, env.Code, env.Msg))
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// getBinary issues a GET for raw content. Any 400 is a rate-limit signal:
// this endpoint's error body does not reliably carry a code.
func (c *Client) getBinary(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := c.newRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}

	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusBadRequest:
		return nil, &RateLimitError{Code: CodeRateLimited, Msg: "download rejected", RetryAfter: retryAfter(resp.Header)}
	default:
		return nil, c.checkAuth(errorFromResponse(resp.StatusCode, resp.Header, body))
	}
}

// checkAuth drops the cached token when the server rejected it.
func (c *Client) checkAuth(err error) error {
	var ae *AuthenticationError
	if errors.As(err, &ae) {
		c.auth.Invalidate()
	}
	return err
}
