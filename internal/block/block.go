package block

import "encoding/json"

// Block is one structural unit of a document. The set of implementations is
// closed: every variant embeds Base and is declared in this package.
type Block interface {
	ID() string
	Type() Type
	ParentID() string
	ChildIDs() []string
	CommentIDs() []string

	sealed()
}

// Texter is implemented by variants whose payload is TextData.
type Texter interface {
	Block
	TextData() *TextData
}

// Base holds the fields common to every block.
type Base struct {
	BlockID   string   `json:"block_id"`
	BlockType Type     `json:"block_type"`
	Parent    string   `json:"parent_id,omitempty"`
	Children  []string `json:"children,omitempty"`
	Comments  []string `json:"comment_ids,omitempty"`
}

func (b Base) ID() string           { return b.BlockID }
func (b Base) Type() Type           { return b.BlockType }
func (b Base) ParentID() string     { return b.Parent }
func (b Base) ChildIDs() []string   { return b.Children }
func (b Base) CommentIDs() []string { return b.Comments }
func (Base) sealed()                {}

// Page is the implicit document root. It is never rendered.
type Page struct {
	Base
	Page *TextData
}

func (b *Page) TextData() *TextData { return b.Page }

// Text is a paragraph.
type Text struct {
	Base
	Text *TextData
}

func (b *Text) TextData() *TextData { return b.Text }

// Heading covers HEADING1 through HEADING9; the level comes from the type.
type Heading struct {
	Base
	Heading *TextData
}

func (b *Heading) TextData() *TextData { return b.Heading }

// Level returns the logical heading level, 1-9.
func (b *Heading) Level() int { return b.BlockType.HeadingLevel() }

// Bullet is an unordered list item.
type Bullet struct {
	Base
	Bullet *TextData
}

func (b *Bullet) TextData() *TextData { return b.Bullet }

// Ordered is a numbered list item.
type Ordered struct {
	Base
	Ordered *TextData
}

func (b *Ordered) TextData() *TextData { return b.Ordered }

// Code is a code block; the language is in Style.Language.
type Code struct {
	Base
	Code *TextData
}

func (b *Code) TextData() *TextData { return b.Code }

// Quote is a single quoted paragraph.
type Quote struct {
	Base
	Quote *TextData
}

func (b *Quote) TextData() *TextData { return b.Quote }

// Equation is a display equation.
type Equation struct {
	Base
	Equation *TextData
}

func (b *Equation) TextData() *TextData { return b.Equation }

// Todo is a checklist item; completion is in Style.Done.
type Todo struct {
	Base
	Todo *TextData
}

func (b *Todo) TextData() *TextData { return b.Todo }

type Bitable struct {
	Base
	Bitable *TokenData
}

type Callout struct {
	Base
	Callout *CalloutData
}

type ChatCard struct {
	Base
	ChatCard *ChatCardData
}

type Diagram struct {
	Base
	Diagram *DiagramData
}

type Divider struct {
	Base
	Divider *DividerData
}

type File struct {
	Base
	File *FileData
}

type Grid struct {
	Base
	Grid *GridData
}

type GridColumn struct {
	Base
	GridColumn *GridColumnData
}

type Iframe struct {
	Base
	Iframe *IframeData
}

type Image struct {
	Base
	Image *ImageData
}

type Isv struct {
	Base
	Isv *IsvData
}

type Mindnote struct {
	Base
	Mindnote *TokenData
}

type Sheet struct {
	Base
	Sheet *TokenData
}

type Table struct {
	Base
	Table *TableData
}

// ColumnSize returns the declared column count, or 0 when unknown.
func (b *Table) ColumnSize() int {
	if b.Table == nil || b.Table.Property == nil {
		return 0
	}
	return b.Table.Property.ColumnSize
}

type TableCell struct {
	Base
	TableCell *TableCellData
}

type View struct {
	Base
	View *ViewData
}

type QuoteContainer struct {
	Base
	QuoteContainer *QuoteContainerData
}

type Task struct {
	Base
	Task *TaskData
}

type Okr struct {
	Base
	Okr *OkrData
}

type OkrObjective struct {
	Base
	OkrObjective *OkrObjectiveData
}

type OkrKeyResult struct {
	Base
	OkrKeyResult *OkrKeyResultData
}

type OkrProgress struct {
	Base
	OkrProgress *OkrProgressData
}

type AddOns struct {
	Base
	AddOns *AddOnsData
}

type JiraIssue struct {
	Base
	JiraIssue *JiraIssueData
}

type WikiCatalog struct {
	Base
	WikiCatalog *WikiCatalogData
}

type Board struct {
	Base
	Board *TokenData
}

type Agenda struct {
	Base
	Agenda *AgendaData
}

type AgendaItem struct {
	Base
	AgendaItem *AgendaItemData
}

type AgendaItemTitle struct {
	Base
	AgendaItemTitle *AgendaItemTitleData
}

type AgendaItemContent struct {
	Base
	AgendaItemContent *AgendaItemContentData
}

type LinkPreview struct {
	Base
	LinkPreview *LinkPreviewData
}

type SourceSynced struct {
	Base
	SourceSynced *SourceSyncedData
}

type ReferenceSynced struct {
	Base
	ReferenceSynced *ReferenceSyncedData
}

type SubPageList struct {
	Base
	SubPageList *SubPageListData
}

type AITemplate struct {
	Base
	AITemplate *AITemplateData
}

// Unknown is the fallback variant for absent or unmapped type codes. Code is
// the code seen on the wire (0 when absent) and Fields keeps every top-level
// key for best-effort rendering.
type Unknown struct {
	Base
	Code   int
	Fields map[string]json.RawMessage
}

// Payload returns the raw value stored under key, or nil.
func (b *Unknown) Payload(key string) json.RawMessage {
	return b.Fields[key]
}
