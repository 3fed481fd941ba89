package block

import "strings"

// TextData is the payload shared by text-like blocks (text, headings, lists,
// code, quote, equation, todo).
type TextData struct {
	Style    *TextStyle    `json:"style,omitempty"`
	Elements []TextElement `json:"elements,omitempty"`
}

// TextStyle contains block-level text styling.
type TextStyle struct {
	Align            int    `json:"align,omitempty"` // 1 left, 2 center, 3 right
	Done             bool   `json:"done,omitempty"`
	Folded           bool   `json:"folded,omitempty"`
	Language         int    `json:"language,omitempty"`
	Wrap             bool   `json:"wrap,omitempty"`
	BackgroundColor  string `json:"background_color,omitempty"`
	IndentationLevel string `json:"indentation_level,omitempty"`
	Sequence         string `json:"sequence,omitempty"` // "1", "auto", ...
}

// TextElement is one inline run. Exactly one field is expected to be set.
type TextElement struct {
	TextRun     *TextRun           `json:"text_run,omitempty"`
	MentionUser *MentionUser       `json:"mention_user,omitempty"`
	MentionDoc  *MentionDoc        `json:"mention_doc,omitempty"`
	Reminder    *Reminder          `json:"reminder,omitempty"`
	File        *InlineFile        `json:"file,omitempty"`
	InlineBlock *InlineBlock       `json:"inline_block,omitempty"`
	Equation    *InlineEquation    `json:"equation,omitempty"`
	LinkPreview *InlineLinkPreview `json:"link_preview,omitempty"`
}

// TextRun is plain content with inline style.
type TextRun struct {
	Content          string            `json:"content"`
	TextElementStyle *TextElementStyle `json:"text_element_style,omitempty"`
}

// TextElementStyle contains inline styling of a run.
type TextElementStyle struct {
	Bold            bool  `json:"bold,omitempty"`
	Italic          bool  `json:"italic,omitempty"`
	Strikethrough   bool  `json:"strikethrough,omitempty"`
	Underline       bool  `json:"underline,omitempty"`
	InlineCode      bool  `json:"inline_code,omitempty"`
	BackgroundColor int   `json:"background_color,omitempty"`
	TextColor       int   `json:"text_color,omitempty"`
	Link            *Link `json:"link,omitempty"`
}

// Link holds a URL-encoded target.
type Link struct {
	URL string `json:"url"`
}

// MentionUser references a user.
type MentionUser struct {
	UserID           string            `json:"user_id"`
	TextElementStyle *TextElementStyle `json:"text_element_style,omitempty"`
}

// MentionDoc references another cloud document.
type MentionDoc struct {
	Token            string            `json:"token"`
	ObjType          int               `json:"obj_type,omitempty"`
	URL              string            `json:"url,omitempty"`
	Title            string            `json:"title,omitempty"`
	TextElementStyle *TextElementStyle `json:"text_element_style,omitempty"`
}

// Reminder is an inline date reminder.
type Reminder struct {
	CreateUserID     string            `json:"create_user_id,omitempty"`
	IsNotify         bool              `json:"is_notify,omitempty"`
	IsWholeDay       bool              `json:"is_whole_day,omitempty"`
	ExpireTime       string            `json:"expire_time,omitempty"` // unix millis
	NotifyTime       string            `json:"notify_time,omitempty"`
	TextElementStyle *TextElementStyle `json:"text_element_style,omitempty"`
}

// InlineFile is an attachment embedded in a line of text.
type InlineFile struct {
	FileToken        string            `json:"file_token"`
	SourceBlockID    string            `json:"source_block_id,omitempty"`
	TextElementStyle *TextElementStyle `json:"text_element_style,omitempty"`
}

// InlineBlock references another block inline.
type InlineBlock struct {
	BlockID          string            `json:"block_id"`
	TextElementStyle *TextElementStyle `json:"text_element_style,omitempty"`
}

// InlineEquation is a LaTeX expression inside text.
type InlineEquation struct {
	Content          string            `json:"content"`
	TextElementStyle *TextElementStyle `json:"text_element_style,omitempty"`
}

// InlineLinkPreview is a rich link rendered inline.
type InlineLinkPreview struct {
	URL              string            `json:"url"`
	Title            string            `json:"title,omitempty"`
	TextElementStyle *TextElementStyle `json:"text_element_style,omitempty"`
}

// PlainText concatenates the textual content of all elements.
func (d *TextData) PlainText() string {
	if d == nil {
		return ""
	}
	var sb strings.Builder
	for _, e := range d.Elements {
		switch {
		case e.TextRun != nil:
			sb.WriteString(e.TextRun.Content)
		case e.Equation != nil:
			sb.WriteString(e.Equation.Content)
		case e.MentionDoc != nil:
			sb.WriteString(e.MentionDoc.Title)
		case e.LinkPreview != nil:
			sb.WriteString(e.LinkPreview.Title)
		}
	}
	return sb.String()
}

// IsEmpty reports whether the payload has no elements.
func (d *TextData) IsEmpty() bool {
	return d == nil || len(d.Elements) == 0
}

// Align returns the block alignment, or 0 when unset.
func (d *TextData) Align() int {
	if d == nil || d.Style == nil {
		return 0
	}
	return d.Style.Align
}

var codeLanguages = map[int]string{
	1: "plaintext", 2: "abap", 3: "ada", 4: "apache", 5: "apex",
	6: "assembly", 7: "bash", 8: "csharp", 9: "cpp", 10: "c",
	11: "cobol", 12: "css", 13: "coffeescript", 14: "d", 15: "dart",
	16: "delphi", 17: "django", 18: "dockerfile", 19: "erlang", 20: "fortran",
	21: "foxpro", 22: "go", 23: "groovy", 24: "html", 25: "htmlbars",
	26: "http", 27: "haskell", 28: "json", 29: "java", 30: "javascript",
	31: "julia", 32: "kotlin", 33: "latex", 34: "lisp", 35: "logo",
	36: "lua", 37: "matlab", 38: "makefile", 39: "markdown", 40: "nginx",
	41: "objectivec", 42: "openedge-abl", 43: "php", 44: "perl", 45: "postscript",
	46: "powershell", 47: "prolog", 48: "protobuf", 49: "python", 50: "r",
	51: "rpg", 52: "ruby", 53: "rust", 54: "sas", 55: "scss",
	56: "sql", 57: "scala", 58: "scheme", 59: "scratch", 60: "shell",
	61: "swift", 62: "thrift", 63: "typescript", 64: "vbscript", 65: "vbnet",
	66: "xml", 67: "yaml", 68: "cmake", 69: "diff", 70: "gherkin",
	71: "graphql", 72: "glsl", 73: "properties", 74: "solidity", 75: "toml",
}

// CodeLanguage maps a code block language id to a highlight.js class name.
// Unknown ids map to "plaintext".
func CodeLanguage(id int) string {
	if lang, ok := codeLanguages[id]; ok {
		return lang
	}
	return "plaintext"
}
