package render

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/roboco-io/feishu2html/internal/block"
)

// ElementConverter renders inline text elements.
type ElementConverter struct {
	Assets AssetResolver
}

// Convert writes elems to out. Line breaks inside runs become <br>.
func (ec *ElementConverter) Convert(out *bytes.Buffer, elems []block.TextElement) {
	for _, e := range elems {
		ec.convert(out, e)
	}
}

func (ec *ElementConverter) convert(out *bytes.Buffer, e block.TextElement) {
	switch {
	case e.TextRun != nil:
		styled(out, e.TextRun.TextElementStyle, func() {
			out.WriteString(escapeText(e.TextRun.Content))
		})
	case e.MentionUser != nil:
		styled(out, e.MentionUser.TextElementStyle, func() {
			fmt.Fprintf(out, `<span class="mention-user" data-user-id="%s">@%s</span>`,
				escapeAttr(e.MentionUser.UserID), html.EscapeString(e.MentionUser.UserID))
		})
	case e.MentionDoc != nil:
		m := e.MentionDoc
		title := m.Title
		if title == "" {
			title = m.Token
		}
		href := safeURL(m.URL)
		fmt.Fprintf(out, `<a class="mention-doc" href="%s">`, escapeAttr(href))
		styled(out, plainStyle(m.TextElementStyle), func() {
			out.WriteString(html.EscapeString(title))
		})
		out.WriteString(`</a>`)
	case e.Reminder != nil:
		styled(out, e.Reminder.TextElementStyle, func() {
			fmt.Fprintf(out, `<span class="reminder">%s</span>`, html.EscapeString(reminderTime(e.Reminder)))
		})
	case e.File != nil:
		href := e.File.FileToken
		if ec.Assets != nil {
			href = ec.Assets.FileHref(e.File.FileToken, "")
		}
		fmt.Fprintf(out, `<a class="inline-file" href="%s">%s</a>`,
			escapeAttr(href), html.EscapeString(e.File.FileToken))
	case e.InlineBlock != nil:
		fmt.Fprintf(out, `<span class="inline-block" data-block-id="%s"></span>`, escapeAttr(e.InlineBlock.BlockID))
	case e.Equation != nil:
		styled(out, e.Equation.TextElementStyle, func() {
			fmt.Fprintf(out, `<span class="equation-inline">\(%s\)</span>`,
				html.EscapeString(strings.TrimSpace(e.Equation.Content)))
		})
	case e.LinkPreview != nil:
		lp := e.LinkPreview
		href := safeURL(lp.URL)
		title := lp.Title
		if title == "" {
			title = href
		}
		fmt.Fprintf(out, `<a class="link-preview-inline" href="%s">%s</a>`, escapeAttr(href), html.EscapeString(title))
	}
}

// plainStyle drops the link of s, for elements that already emit an anchor.
func plainStyle(s *block.TextElementStyle) *block.TextElementStyle {
	if s == nil || s.Link == nil {
		return s
	}
	c := *s
	c.Link = nil
	return &c
}

// styled wraps body in the tags for s, outermost first: link, color,
// background, bold, italic, underline, strikethrough, inline code.
func styled(out *bytes.Buffer, s *block.TextElementStyle, body func()) {
	if s == nil {
		body()
		return
	}
	var closers []string
	open := func(tag, closer string) {
		out.WriteString(tag)
		closers = append(closers, closer)
	}
	if s.Link != nil && s.Link.URL != "" {
		open(fmt.Sprintf(`<a href="%s">`, escapeAttr(safeURL(s.Link.URL))), "</a>")
	}
	if s.TextColor > 0 {
		open(fmt.Sprintf(`<span class="text-color-%d">`, s.TextColor), "</span>")
	}
	if s.BackgroundColor > 0 {
		open(fmt.Sprintf(`<span class="bg-color-%d">`, s.BackgroundColor), "</span>")
	}
	if s.Bold {
		open("<strong>", "</strong>")
	}
	if s.Italic {
		open("<em>", "</em>")
	}
	if s.Underline {
		open("<u>", "</u>")
	}
	if s.Strikethrough {
		open("<del>", "</del>")
	}
	if s.InlineCode {
		open("<code>", "</code>")
	}
	body()
	for i := len(closers) - 1; i >= 0; i-- {
		out.WriteString(closers[i])
	}
}

func escapeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}

func escapeAttr(s string) string {
	return html.EscapeString(s)
}

// safeURL decodes a URL-encoded link target and neutralizes script URLs.
func safeURL(raw string) string {
	u := raw
	if dec, err := url.QueryUnescape(raw); err == nil {
		u = dec
	}
	u = strings.TrimSpace(u)
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "vbscript:") || strings.HasPrefix(lower, "data:") {
		return "#"
	}
	return u
}

func reminderTime(r *block.Reminder) string {
	ms, err := strconv.ParseInt(r.ExpireTime, 10, 64)
	if err != nil || ms <= 0 {
		return r.ExpireTime
	}
	t := time.UnixMilli(ms).UTC()
	if r.IsWholeDay {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}
