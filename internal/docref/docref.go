// Package docref resolves user input into a document token.
package docref

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Kind is the kind of document a reference points to.
type Kind int

const (
	KindUnknown Kind = iota
	KindDocx
	KindWiki
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindDocx:
		return "docx"
	case KindWiki:
		return "wiki"
	default:
		return "unknown"
	}
}

// Ref is a parsed document reference.
type Ref struct {
	Kind  Kind
	Token string
	Host  string // empty for bare tokens
}

// APIBaseURL returns the open platform endpoint matching the URL host, or ""
// when the reference carried no host.
func (r Ref) APIBaseURL() string {
	switch {
	case r.Host == "":
		return ""
	case strings.HasSuffix(r.Host, "larksuite.com"):
		return "https://open.larksuite.com"
	default:
		return "https://open.feishu.cn"
	}
}

// DetectKind detects the document kind from a URL path such as
// "/docx/<token>".
func DetectKind(p string) Kind {
	segs := strings.Split(strings.Trim(path.Clean(p), "/"), "/")
	if len(segs) < 2 {
		return KindUnknown
	}
	switch strings.ToLower(segs[len(segs)-2]) {
	case "docx":
		return KindDocx
	case "wiki":
		return KindWiki
	default:
		return KindUnknown
	}
}

// Parse accepts a bare document token or a docx URL on a feishu.cn or
// larksuite.com host. Wiki URLs are recognized but rejected because wiki
// nodes need a separate resolution step.
func Parse(input string) (Ref, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Ref{}, fmt.Errorf("empty document reference")
	}
	if !strings.Contains(s, "/") {
		if !validToken(s) {
			return Ref{}, fmt.Errorf("invalid document token %q", s)
		}
		return Ref{Kind: KindDocx, Token: s}, nil
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return Ref{}, fmt.Errorf("invalid document URL %q: %w", input, err)
	}
	host := strings.ToLower(u.Hostname())
	if !knownHost(host) {
		return Ref{}, fmt.Errorf("unsupported host %q (want *.feishu.cn or *.larksuite.com)", host)
	}

	kind := DetectKind(u.Path)
	token := path.Base(path.Clean(u.Path))
	switch kind {
	case KindDocx:
		if !validToken(token) {
			return Ref{}, fmt.Errorf("invalid document token %q in %s", token, input)
		}
		return Ref{Kind: KindDocx, Token: token, Host: host}, nil
	case KindWiki:
		return Ref{Kind: KindWiki, Token: token, Host: host},
			fmt.Errorf("wiki links are not supported; open the page and use its /docx/ link")
	default:
		return Ref{}, fmt.Errorf("unrecognized document URL %q (want .../docx/<token>)", input)
	}
}

func knownHost(host string) bool {
	for _, suffix := range []string{"feishu.cn", "larksuite.com"} {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}

func validToken(s string) bool {
	if len(s) < 8 {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
