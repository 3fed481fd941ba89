package feishu

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", &RateLimitError{Code: CodeRateLimited}, true},
		{"network", &NetworkError{Op: "get", Err: errors.New("reset")}, true},
		{"wrapped network", fmt.Errorf("page 2: %w", &NetworkError{Op: "get", Err: errors.New("eof")}), true},
		{"api 500", &APIError{StatusCode: 500}, true},
		{"api 502", &APIError{StatusCode: 502}, true},
		{"api 503 code", &APIError{Code: 503, StatusCode: 200}, true},
		{"api 504", &APIError{StatusCode: 504}, true},
		{"api 501", &APIError{StatusCode: 501}, false},
		{"api 400", &APIError{Code: 1234, StatusCode: 400}, false},
		{"auth", &AuthenticationError{Code: CodeInvalidToken}, false},
		{"permission", &PermissionError{Code: CodeNoPermission}, false},
		{"not found", &NotFoundError{Code: CodeDocNotFound}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	var (
		auth *AuthenticationError
		perm *PermissionError
		nf   *NotFoundError
		rl   *RateLimitError
		api  *APIError
	)
	assert.ErrorAs(t, classify(200, CodeTokenExpired, "expired"), &auth)
	assert.ErrorAs(t, classify(200, CodeAppNoScope, "scope"), &perm)
	assert.ErrorAs(t, classify(200, CodeDocDeleted, "gone"), &nf)
	assert.ErrorAs(t, classify(200, CodeRateLimited, "slow down"), &rl)
	assert.ErrorAs(t, classify(401, 0, "unauthorized"), &auth)
	assert.ErrorAs(t, classify(403, 0, "forbidden"), &perm)
	assert.ErrorAs(t, classify(404, 0, "missing"), &nf)

	require.ErrorAs(t, classify(502, 0, "bad gateway"), &api)
	assert.Equal(t, 502, api.Code)
	assert.Equal(t, 502, api.StatusCode)
}

func TestErrorFromResponse(t *testing.T) {
	t.Run("429 with reset header", func(t *testing.T) {
		h := http.Header{}
		h.Set("x-ogw-ratelimit-reset", "3")
		var rl *RateLimitError
		require.ErrorAs(t, errorFromResponse(429, h, nil), &rl)
		assert.Equal(t, 3*time.Second, rl.RetryAfter)
	})

	t.Run("400 with rate limit body", func(t *testing.T) {
		body := []byte(`{"code":99991400,"msg":"request trigger frequency limit"}`)
		var rl *RateLimitError
		require.ErrorAs(t, errorFromResponse(400, http.Header{}, body), &rl)
		assert.Equal(t, CodeRateLimited, rl.Code)
	})

	t.Run("400 with other code", func(t *testing.T) {
		body := []byte(`{"code":1770002,"msg":"not found"}`)
		var nf *NotFoundError
		assert.ErrorAs(t, errorFromResponse(400, http.Header{}, body), &nf)
	})

	t.Run("non-json body", func(t *testing.T) {
		var api *APIError
		require.ErrorAs(t, errorFromResponse(503, http.Header{}, []byte("upstream down")), &api)
		assert.Equal(t, "upstream down", api.Msg)
		assert.True(t, IsRetryable(api))
	})
}

func TestDescribe(t *testing.T) {
	assert.Empty(t, Describe(nil))

	out := Describe(&PermissionError{Code: CodeDocForbidden, Msg: "forbidden"})
	assert.Contains(t, out, "error code: 1770032")
	assert.Contains(t, out, "probable causes:")
	assert.Contains(t, out, "not shared with the app")

	out = Describe(&AuthenticationError{Code: CodeInvalidApp, Msg: "bad app"})
	assert.Contains(t, out, "app id or app secret is wrong")

	out = Describe(&NetworkError{Op: "get", Err: errors.New("dial tcp: refused")})
	assert.NotContains(t, out, "error code:")
	assert.Contains(t, out, "unreachable")

	out = Describe(errors.New("something odd"))
	assert.Equal(t, "message: something odd", out)
}
