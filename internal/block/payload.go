package block

// PageData is the payload of the document root.
type PageData = TextData

// CalloutData describes a highlighted callout box.
type CalloutData struct {
	BackgroundColor int    `json:"background_color,omitempty"`
	BorderColor     int    `json:"border_color,omitempty"`
	TextColor       int    `json:"text_color,omitempty"`
	EmojiID         string `json:"emoji_id,omitempty"`
}

// ChatCardData embeds a group chat card.
type ChatCardData struct {
	ChatID string `json:"chat_id"`
	Align  int    `json:"align,omitempty"`
}

// DiagramData describes a flowchart or UML diagram.
type DiagramData struct {
	DiagramType int `json:"diagram_type,omitempty"` // 1 flowchart, 2 UML
}

// DividerData is empty on the wire.
type DividerData struct{}

// FileData references an uploaded attachment.
type FileData struct {
	Token    string `json:"token"`
	Name     string `json:"name,omitempty"`
	ViewType int    `json:"view_type,omitempty"` // 1 card, 2 preview, 3 inline
}

// GridData is a multi-column layout.
type GridData struct {
	ColumnSize int `json:"column_size"`
}

// GridColumnData is one column of a grid.
type GridColumnData struct {
	WidthRatio int `json:"width_ratio,omitempty"` // percent
}

// IframeData embeds an external page.
type IframeData struct {
	Component IframeComponent `json:"component"`
}

// IframeComponent holds the iframe target.
type IframeComponent struct {
	IframeType int    `json:"iframe_type,omitempty"`
	URL        string `json:"url"` // URL-encoded
}

// ImageData references an uploaded image.
type ImageData struct {
	Token   string        `json:"token"`
	Width   int           `json:"width,omitempty"`
	Height  int           `json:"height,omitempty"`
	Align   int           `json:"align,omitempty"`
	Caption *ImageCaption `json:"caption,omitempty"`
}

// ImageCaption is the optional caption below an image.
type ImageCaption struct {
	Content string `json:"content"`
}

// IsvData is a third-party widget.
type IsvData struct {
	ComponentID     string `json:"component_id,omitempty"`
	ComponentTypeID string `json:"component_type_id,omitempty"`
}

// TokenData is the shape of payloads that only reference another object
// (bitable, sheet, mindnote, board).
type TokenData struct {
	Token    string `json:"token"`
	ViewType int    `json:"view_type,omitempty"`
}

// TableData describes a table. Cells are also listed in the block's children.
type TableData struct {
	Cells    []string       `json:"cells,omitempty"`
	Property *TableProperty `json:"property,omitempty"`
}

// TableProperty carries table geometry.
type TableProperty struct {
	RowSize      int         `json:"row_size"`
	ColumnSize   int         `json:"column_size"`
	ColumnWidth  []int       `json:"column_width,omitempty"`
	MergeInfo    []MergeInfo `json:"merge_info,omitempty"`
	HeaderRow    bool        `json:"header_row,omitempty"`
	HeaderColumn bool        `json:"header_column,omitempty"`
}

// MergeInfo gives the span of the cell at the same index.
type MergeInfo struct {
	RowSpan int `json:"row_span"`
	ColSpan int `json:"col_span"`
}

// TableCellData is empty on the wire; content lives in children.
type TableCellData struct{}

// ViewData controls how an embedded file is displayed.
type ViewData struct {
	ViewType int `json:"view_type,omitempty"`
}

// QuoteContainerData is empty on the wire.
type QuoteContainerData struct{}

// TaskData references a task.
type TaskData struct {
	TaskID string `json:"task_id"`
	Folded bool   `json:"folded,omitempty"`
}

// OkrData references an OKR.
type OkrData struct {
	OkrID               string `json:"okr_id"`
	PeriodDisplayStatus string `json:"period_display_status,omitempty"`
	PeriodNameZh        string `json:"period_name_zh,omitempty"`
	PeriodNameEn        string `json:"period_name_en,omitempty"`
	UserID              string `json:"user_id,omitempty"`
}

// OkrObjectiveData is an objective inside an OKR block.
type OkrObjectiveData struct {
	ObjectiveID  string    `json:"objective_id"`
	Content      *TextData `json:"content,omitempty"`
	Confidential bool      `json:"confidential,omitempty"`
	Position     int       `json:"position,omitempty"`
	Score        int       `json:"score,omitempty"`
	Weight       float64   `json:"weight,omitempty"`
}

// OkrKeyResultData is a key result inside an objective.
type OkrKeyResultData struct {
	KrID    string    `json:"kr_id"`
	Content *TextData `json:"content,omitempty"`
	Score   int       `json:"score,omitempty"`
	Weight  float64   `json:"weight,omitempty"`
}

// OkrProgressData is empty on the wire.
type OkrProgressData struct{}

// AddOnsData is a docs add-on widget.
type AddOnsData struct {
	ComponentID     string `json:"component_id,omitempty"`
	ComponentTypeID string `json:"component_type_id,omitempty"`
	Record          string `json:"record,omitempty"`
}

// JiraIssueData references a Jira issue.
type JiraIssueData struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// WikiCatalogData lists wiki child nodes.
type WikiCatalogData struct {
	WikiToken string `json:"wiki_token"`
}

// AgendaData is empty on the wire; items are children.
type AgendaData struct{}

// AgendaItemData is empty on the wire; title and content are children.
type AgendaItemData struct{}

// AgendaItemTitleData holds the agenda item heading.
type AgendaItemTitleData struct {
	Elements []TextElement `json:"elements,omitempty"`
}

// AgendaItemContentData is empty on the wire; content blocks are children.
type AgendaItemContentData struct{}

// LinkPreviewData is a rich link card.
type LinkPreviewData struct {
	URL     string `json:"url"` // URL-encoded
	URLType string `json:"url_type,omitempty"`
}

// SourceSyncedData marks the origin of a synced block.
type SourceSyncedData struct {
	Elements []TextElement `json:"elements,omitempty"`
	Align    int           `json:"align,omitempty"`
}

// ReferenceSyncedData references a synced block in another document.
type ReferenceSyncedData struct {
	SourceBlockID    string `json:"source_block_id"`
	SourceDocumentID string `json:"source_document_id"`
}

// SubPageListData lists sub pages of a wiki node.
type SubPageListData struct {
	WikiToken string `json:"wiki_token"`
}

// AITemplateData is empty on the wire.
type AITemplateData struct{}
