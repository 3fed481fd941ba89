// Package block defines the document block model returned by the Feishu docx API.
package block

import "strconv"

// Type is the wire-format block type code.
type Type int

const (
	TypePage              Type = 1
	TypeText              Type = 2
	TypeHeading1          Type = 3
	TypeHeading2          Type = 4
	TypeHeading3          Type = 5
	TypeHeading4          Type = 6
	TypeHeading5          Type = 7
	TypeHeading6          Type = 8
	TypeHeading7          Type = 9
	TypeHeading8          Type = 10
	TypeHeading9          Type = 11
	TypeBullet            Type = 12
	TypeOrdered           Type = 13
	TypeCode              Type = 14
	TypeQuote             Type = 15
	TypeEquation          Type = 16
	TypeTodo              Type = 17
	TypeBitable           Type = 18
	TypeCallout           Type = 19
	TypeChatCard          Type = 20
	TypeDiagram           Type = 21
	TypeDivider           Type = 22
	TypeFile              Type = 23
	TypeGrid              Type = 24
	TypeGridColumn        Type = 25
	TypeIframe            Type = 26
	TypeImage             Type = 27
	TypeIsv               Type = 28
	TypeMindnote          Type = 29
	TypeSheet             Type = 30
	TypeTable             Type = 31
	TypeTableCell         Type = 32
	TypeView              Type = 33
	TypeQuoteContainer    Type = 34
	TypeTask              Type = 35
	TypeOkr               Type = 36
	TypeOkrObjective      Type = 37
	TypeOkrKeyResult      Type = 38
	TypeOkrProgress       Type = 39
	TypeAddOns            Type = 40
	TypeJiraIssue         Type = 41
	TypeWikiCatalog       Type = 42
	TypeBoard             Type = 43
	TypeAgenda            Type = 44
	TypeAgendaItem        Type = 45
	TypeAgendaItemTitle   Type = 46
	TypeAgendaItemContent Type = 47
	TypeLinkPreview       Type = 48
	TypeSourceSynced      Type = 49
	TypeReferenceSynced   Type = 50
	TypeSubPageList       Type = 51
	TypeAITemplate        Type = 52
	TypeUndefined         Type = 999
)

type typeInfo struct {
	name string // symbolic name
	key  string // JSON key of the payload object
}

var typeTable = map[Type]typeInfo{
	TypePage:              {"PAGE", "page"},
	TypeText:              {"TEXT", "text"},
	TypeHeading1:          {"HEADING1", "heading1"},
	TypeHeading2:          {"HEADING2", "heading2"},
	TypeHeading3:          {"HEADING3", "heading3"},
	TypeHeading4:          {"HEADING4", "heading4"},
	TypeHeading5:          {"HEADING5", "heading5"},
	TypeHeading6:          {"HEADING6", "heading6"},
	TypeHeading7:          {"HEADING7", "heading7"},
	TypeHeading8:          {"HEADING8", "heading8"},
	TypeHeading9:          {"HEADING9", "heading9"},
	TypeBullet:            {"BULLET", "bullet"},
	TypeOrdered:           {"ORDERED", "ordered"},
	TypeCode:              {"CODE", "code"},
	TypeQuote:             {"QUOTE", "quote"},
	TypeEquation:          {"EQUATION", "equation"},
	TypeTodo:              {"TODO", "todo"},
	TypeBitable:           {"BITABLE", "bitable"},
	TypeCallout:           {"CALLOUT", "callout"},
	TypeChatCard:          {"CHAT_CARD", "chat_card"},
	TypeDiagram:           {"DIAGRAM", "diagram"},
	TypeDivider:           {"DIVIDER", "divider"},
	TypeFile:              {"FILE", "file"},
	TypeGrid:              {"GRID", "grid"},
	TypeGridColumn:        {"GRID_COLUMN", "grid_column"},
	TypeIframe:            {"IFRAME", "iframe"},
	TypeImage:             {"IMAGE", "image"},
	TypeIsv:               {"ISV", "isv"},
	TypeMindnote:          {"MINDNOTE", "mindnote"},
	TypeSheet:             {"SHEET", "sheet"},
	TypeTable:             {"TABLE", "table"},
	TypeTableCell:         {"TABLE_CELL", "table_cell"},
	TypeView:              {"VIEW", "view"},
	TypeQuoteContainer:    {"QUOTE_CONTAINER", "quote_container"},
	TypeTask:              {"TASK", "task"},
	TypeOkr:               {"OKR", "okr"},
	TypeOkrObjective:      {"OKR_OBJECTIVE", "okr_objective"},
	TypeOkrKeyResult:      {"OKR_KEY_RESULT", "okr_key_result"},
	TypeOkrProgress:       {"OKR_PROGRESS", "okr_progress"},
	TypeAddOns:            {"ADD_ONS", "add_ons"},
	TypeJiraIssue:         {"JIRA_ISSUE", "jira_issue"},
	TypeWikiCatalog:       {"WIKI_CATALOG", "wiki_catalog"},
	TypeBoard:             {"BOARD", "board"},
	TypeAgenda:            {"AGENDA", "agenda"},
	TypeAgendaItem:        {"AGENDA_ITEM", "agenda_item"},
	TypeAgendaItemTitle:   {"AGENDA_ITEM_TITLE", "agenda_item_title"},
	TypeAgendaItemContent: {"AGENDA_ITEM_CONTENT", "agenda_item_content"},
	TypeLinkPreview:       {"LINK_PREVIEW", "link_preview"},
	TypeSourceSynced:      {"SOURCE_SYNCED", "source_synced"},
	TypeReferenceSynced:   {"REFERENCE_SYNCED", "reference_synced"},
	TypeSubPageList:       {"SUB_PAGE_LIST", "sub_page_list"},
	TypeAITemplate:        {"AI_TEMPLATE", "ai_template"},
	TypeUndefined:         {"UNDEFINED", "undefined"},
}

// FromCode returns the Type declared for code. Unrecognized codes report false;
// callers substitute TypeUndefined.
func FromCode(code int) (Type, bool) {
	t := Type(code)
	if _, ok := typeTable[t]; !ok {
		return 0, false
	}
	return t, true
}

// Code returns the wire-format integer code.
func (t Type) Code() int {
	return int(t)
}

// String returns the symbolic name (e.g. "HEADING1").
func (t Type) String() string {
	if info, ok := typeTable[t]; ok {
		return info.name
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// Key returns the JSON key holding the kind-specific payload.
func (t Type) Key() string {
	return typeTable[t].key
}

// HeadingLevel returns 1-9 for heading types and 0 otherwise.
func (t Type) HeadingLevel() int {
	if t >= TypeHeading1 && t <= TypeHeading9 {
		return int(t-TypeHeading1) + 1
	}
	return 0
}

// Types returns every declared type in code order, including TypeUndefined.
func Types() []Type {
	types := make([]Type, 0, len(typeTable))
	for t := TypePage; t <= TypeAITemplate; t++ {
		if _, ok := typeTable[t]; ok {
			types = append(types, t)
		}
	}
	return append(types, TypeUndefined)
}
