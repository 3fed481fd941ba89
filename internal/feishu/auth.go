package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const (
	tokenPath = "/open-apis/auth/v3/tenant_access_token/internal"

	// tokenSafetyMargin is subtracted from the server-side expiry.
	tokenSafetyMargin = 60 * time.Second
)

// AuthService caches the tenant access token. Concurrent callers that find
// the cache empty or expired share a single refresh.
type AuthService struct {
	appID     string
	appSecret string
	baseURL   string
	client    *http.Client
	clock     clock.Clock
	logger    *zap.Logger

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

type tokenRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

type tokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"` // seconds
}

// NewAuthService creates an AuthService for the given app credentials.
func NewAuthService(appID, appSecret, baseURL string, client *http.Client, clk clock.Clock, logger *zap.Logger) *AuthService {
	if client == nil {
		client = http.DefaultClient
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		appID:     appID,
		appSecret: appSecret,
		baseURL:   baseURL,
		client:    client,
		clock:     clk,
		logger:    logger,
	}
}

// AccessToken returns a valid token, fetching a new one when the cached token
// is missing or expired.
func (a *AuthService) AccessToken(ctx context.Context) (string, error) {
	a.mu.RLock()
	token, ok := a.cachedLocked()
	a.mu.RUnlock()
	if ok {
		return token, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if token, ok := a.cachedLocked(); ok {
		return token, nil
	}

	token, expire, err := a.fetch(ctx)
	if err != nil {
		return "", err
	}
	a.token = token
	a.expiresAt = a.clock.Now().Add(time.Duration(expire)*time.Second - tokenSafetyMargin)
	a.logger.Debug("access token refreshed", zap.Time("expires_at", a.expiresAt))
	return token, nil
}

func (a *AuthService) cachedLocked() (string, bool) {
	if a.token == "" || !a.clock.Now().Before(a.expiresAt) {
		return "", false
	}
	return a.token, true
}

// Invalidate drops the cached token so that the next call fetches a new one.
func (a *AuthService) Invalidate() {
	a.mu.Lock()
	a.token = ""
	a.expiresAt = time.Time{}
	a.mu.Unlock()
}

func (a *AuthService) fetch(ctx context.Context) (string, int, error) {
	payload, err := json.Marshal(tokenRequest{AppID: a.appID, AppSecret: a.appSecret})
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+tokenPath, bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", 0, ctx.Err()
		}
		return "", 0, &NetworkError{Op: "token request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, &NetworkError{Op: "token response", Err: err}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return "", 0, errorFromResponse(resp.StatusCode, resp.Header, body)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", 0, &AuthenticationError{Msg: fmt.Sprintf("malformed token response (status %d)", resp.StatusCode)}
	}
	if tr.Code != CodeOK {
		return "", 0, &AuthenticationError{Code: tr.Code, Msg: tr.Msg}
	}
	if tr.TenantAccessToken == "" {
		return "", 0, &AuthenticationError{Msg: "empty access token"}
	}
	return tr.TenantAccessToken, tr.Expire, nil
}
