package feishu

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Error codes returned in the "code" field of API responses.
const (
	CodeOK            = 0
	CodeRateLimited   = 99991400
	CodeDocNotFound   = 1770002
	CodeDocDeleted    = 1770003
	CodeDocForbidden  = 1770032
	CodeNoPermission  = 1770014
	CodeAppNoScope    = 99991672
	CodeUserNoScope   = 99991679
	CodeInvalidToken  = 99991663
	CodeTokenExpired  = 99991668
	CodeInvalidApp    = 10014
	CodeInvalidSecret = 99991661
)

var (
	authCodes       = codeSet(CodeInvalidSecret, CodeInvalidToken, 99991664, 99991665, CodeTokenExpired, 99991671, CodeInvalidApp)
	permissionCodes = codeSet(CodeAppNoScope, CodeUserNoScope, CodeDocForbidden, CodeNoPermission)
	notFoundCodes   = codeSet(CodeDocNotFound, CodeDocDeleted)
)

func codeSet(codes ...int) map[int]struct{} {
	m := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}

// ErrClosed is returned by a Client after Close.
var ErrClosed = errors.New("feishu: client is closed")

// RateLimitError signals that the server rejected the request for exceeding
// its rate limit.
type RateLimitError struct {
	Code       int
	Msg        string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("rate limited (code %d)", e.Code)
	}
	return fmt.Sprintf("rate limited (code %d): %s", e.Code, e.Msg)
}

// AuthenticationError signals invalid app credentials or access token.
type AuthenticationError struct {
	Code int
	Msg  string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (code %d): %s", e.Code, e.Msg)
}

// PermissionError signals a missing scope or a document not shared with the app.
type PermissionError struct {
	Code int
	Msg  string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("insufficient permission (code %d): %s", e.Code, e.Msg)
}

// NotFoundError signals that the requested document does not exist.
type NotFoundError struct {
	Code int
	Msg  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document not found (code %d): %s", e.Code, e.Msg)
}

// NetworkError wraps a transport failure.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is any other remote failure. Code is the API error code, or the
// HTTP status when the body carried none.
type APIError struct {
	Code       int
	Msg        string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Msg)
}

// IsRetryable reports whether err is worth retrying: network and rate-limit
// errors are; API errors only for 500, 502, 503 and 504.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var (
		rl  *RateLimitError
		ne  *NetworkError
		api *APIError
	)
	switch {
	case errors.As(err, &rl), errors.As(err, &ne):
		return true
	case errors.As(err, &api):
		return isServerError(api.StatusCode) || isServerError(api.Code)
	default:
		return false
	}
}

func isServerError(code int) bool {
	switch code {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// errorBody is the common shape of an API response envelope.
type errorBody struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// classify maps a non-zero API code to the error taxonomy.
func classify(status, code int, msg string) error {
	if _, ok := authCodes[code]; ok {
		return &AuthenticationError{Code: code, Msg: msg}
	}
	if _, ok := permissionCodes[code]; ok {
		return &PermissionError{Code: code, Msg: msg}
	}
	if _, ok := notFoundCodes[code]; ok {
		return &NotFoundError{Code: code, Msg: msg}
	}
	if code == CodeRateLimited {
		return &RateLimitError{Code: code, Msg: msg}
	}
	switch status {
	case http.StatusUnauthorized:
		return &AuthenticationError{Code: code, Msg: msg}
	case http.StatusForbidden:
		return &PermissionError{Code: code, Msg: msg}
	case http.StatusNotFound:
		return &NotFoundError{Code: code, Msg: msg}
	}
	if code == 0 {
		code = status
	}
	return &APIError{Code: code, Msg: msg, StatusCode: status}
}

// decodeRateLimit reports the rate-limit error carried by a 400 body, if any.
func decodeRateLimit(body []byte) (*RateLimitError, bool) {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return nil, false
	}
	if eb.Code != CodeRateLimited {
		return nil, false
	}
	return &RateLimitError{Code: eb.Code, Msg: eb.Msg}, true
}

// errorFromResponse builds the error for a non-200 JSON response.
func errorFromResponse(status int, header http.Header, body []byte) error {
	if status == http.StatusTooManyRequests {
		return &RateLimitError{Code: CodeRateLimited, Msg: http.StatusText(status), RetryAfter: retryAfter(header)}
	}
	if status == http.StatusBadRequest {
		if rl, ok := decodeRateLimit(body); ok {
			rl.RetryAfter = retryAfter(header)
			return rl
		}
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Code == 0 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(status)
		}
		return classify(status, 0, msg)
	}
	return classify(status, eb.Code, eb.Msg)
}

func retryAfter(h http.Header) time.Duration {
	for _, key := range []string{"x-ogw-ratelimit-reset", "Retry-After"} {
		if v := h.Get(key); v != "" {
			var secs int
			if _, err := fmt.Sscanf(v, "%d", &secs); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return 0
}

// Describe renders err as a multi-line, human-readable report with probable
// causes for known error codes.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	code, msg := codeOf(err)

	var sb strings.Builder
	if code != 0 {
		fmt.Fprintf(&sb, "error code: %d\n", code)
	}
	fmt.Fprintf(&sb, "message: %s\n", msg)

	causes := probableCauses(err, code)
	if len(causes) > 0 {
		sb.WriteString("probable causes:\n")
		for _, c := range causes {
			fmt.Fprintf(&sb, "  - %s\n", c)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func codeOf(err error) (int, string) {
	var (
		rl   *RateLimitError
		auth *AuthenticationError
		perm *PermissionError
		nf   *NotFoundError
		api  *APIError
	)
	switch {
	case errors.As(err, &rl):
		return rl.Code, err.Error()
	case errors.As(err, &auth):
		return auth.Code, err.Error()
	case errors.As(err, &perm):
		return perm.Code, err.Error()
	case errors.As(err, &nf):
		return nf.Code, err.Error()
	case errors.As(err, &api):
		return api.Code, err.Error()
	}
	return 0, err.Error()
}

func probableCauses(err error, code int) []string {
	var ne *NetworkError
	switch {
	case errors.As(err, &ne):
		return []string{
			"the API host is unreachable; check network access and the configured base URL",
		}
	case code == CodeRateLimited:
		return []string{
			"too many requests per second for this app; lower api.rate_limit",
		}
	case code == CodeInvalidApp || code == CodeInvalidSecret:
		return []string{
			"app id or app secret is wrong",
			"the app was disabled or deleted in the developer console",
		}
	case code >= 99991660 && code <= 99991679:
		return []string{
			"the access token is invalid or expired",
			"the app lacks a required scope (docx:document:readonly, drive:drive:readonly)",
			"the app version with the new scopes has not been published",
		}
	case code >= 1770000 && code < 1780000:
		return []string{
			"the document id is wrong or the document was deleted",
			"the document is not shared with the app; add the app as a collaborator",
		}
	case code >= 1061000 && code < 1070000:
		return []string{
			"the media token is invalid or the file was removed",
		}
	case code >= 500 && code < 600:
		return []string{
			"the service is temporarily unavailable; retry later",
		}
	}
	return nil
}
