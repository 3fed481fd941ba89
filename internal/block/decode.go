package block

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeFunc builds a variant from the common fields and the raw payload
// object found under the type's key (nil when absent).
type decodeFunc func(base Base, payload json.RawMessage) (Block, error)

// variant adapts a constructor into a decodeFunc. A missing or null payload
// leaves the variant's payload pointer nil.
func variant[T any](build func(Base, *T) Block) decodeFunc {
	return func(base Base, payload json.RawMessage) (Block, error) {
		var data *T
		if len(payload) > 0 && !bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
			data = new(T)
			if err := json.Unmarshal(payload, data); err != nil {
				return nil, err
			}
		}
		return build(base, data), nil
	}
}

func heading(b Base, d *TextData) Block { return &Heading{Base: b, Heading: d} }

// decoders must list every Type except TypeUndefined; renderers are keyed by
// the same Type values.
var decoders = map[Type]decodeFunc{
	TypePage:     variant(func(b Base, d *TextData) Block { return &Page{Base: b, Page: d} }),
	TypeText:     variant(func(b Base, d *TextData) Block { return &Text{Base: b, Text: d} }),
	TypeHeading1: variant(heading),
	TypeHeading2: variant(heading),
	TypeHeading3: variant(heading),
	TypeHeading4: variant(heading),
	TypeHeading5: variant(heading),
	TypeHeading6: variant(heading),
	TypeHeading7: variant(heading),
	TypeHeading8: variant(heading),
	TypeHeading9: variant(heading),
	TypeBullet:   variant(func(b Base, d *TextData) Block { return &Bullet{Base: b, Bullet: d} }),
	TypeOrdered:  variant(func(b Base, d *TextData) Block { return &Ordered{Base: b, Ordered: d} }),
	TypeCode:     variant(func(b Base, d *TextData) Block { return &Code{Base: b, Code: d} }),
	TypeQuote:    variant(func(b Base, d *TextData) Block { return &Quote{Base: b, Quote: d} }),
	TypeEquation: variant(func(b Base, d *TextData) Block { return &Equation{Base: b, Equation: d} }),
	TypeTodo:     variant(func(b Base, d *TextData) Block { return &Todo{Base: b, Todo: d} }),
	TypeBitable:  variant(func(b Base, d *TokenData) Block { return &Bitable{Base: b, Bitable: d} }),
	TypeCallout:  variant(func(b Base, d *CalloutData) Block { return &Callout{Base: b, Callout: d} }),
	TypeChatCard: variant(func(b Base, d *ChatCardData) Block { return &ChatCard{Base: b, ChatCard: d} }),
	TypeDiagram:  variant(func(b Base, d *DiagramData) Block { return &Diagram{Base: b, Diagram: d} }),
	TypeDivider:  variant(func(b Base, d *DividerData) Block { return &Divider{Base: b, Divider: d} }),
	TypeFile:     variant(func(b Base, d *FileData) Block { return &File{Base: b, File: d} }),
	TypeGrid:     variant(func(b Base, d *GridData) Block { return &Grid{Base: b, Grid: d} }),
	TypeGridColumn: variant(func(b Base, d *GridColumnData) Block {
		return &GridColumn{Base: b, GridColumn: d}
	}),
	TypeIframe:   variant(func(b Base, d *IframeData) Block { return &Iframe{Base: b, Iframe: d} }),
	TypeImage:    variant(func(b Base, d *ImageData) Block { return &Image{Base: b, Image: d} }),
	TypeIsv:      variant(func(b Base, d *IsvData) Block { return &Isv{Base: b, Isv: d} }),
	TypeMindnote: variant(func(b Base, d *TokenData) Block { return &Mindnote{Base: b, Mindnote: d} }),
	TypeSheet:    variant(func(b Base, d *TokenData) Block { return &Sheet{Base: b, Sheet: d} }),
	TypeTable:    variant(func(b Base, d *TableData) Block { return &Table{Base: b, Table: d} }),
	TypeTableCell: variant(func(b Base, d *TableCellData) Block {
		return &TableCell{Base: b, TableCell: d}
	}),
	TypeView: variant(func(b Base, d *ViewData) Block { return &View{Base: b, View: d} }),
	TypeQuoteContainer: variant(func(b Base, d *QuoteContainerData) Block {
		return &QuoteContainer{Base: b, QuoteContainer: d}
	}),
	TypeTask: variant(func(b Base, d *TaskData) Block { return &Task{Base: b, Task: d} }),
	TypeOkr:  variant(func(b Base, d *OkrData) Block { return &Okr{Base: b, Okr: d} }),
	TypeOkrObjective: variant(func(b Base, d *OkrObjectiveData) Block {
		return &OkrObjective{Base: b, OkrObjective: d}
	}),
	TypeOkrKeyResult: variant(func(b Base, d *OkrKeyResultData) Block {
		return &OkrKeyResult{Base: b, OkrKeyResult: d}
	}),
	TypeOkrProgress: variant(func(b Base, d *OkrProgressData) Block {
		return &OkrProgress{Base: b, OkrProgress: d}
	}),
	TypeAddOns: variant(func(b Base, d *AddOnsData) Block { return &AddOns{Base: b, AddOns: d} }),
	TypeJiraIssue: variant(func(b Base, d *JiraIssueData) Block {
		return &JiraIssue{Base: b, JiraIssue: d}
	}),
	TypeWikiCatalog: variant(func(b Base, d *WikiCatalogData) Block {
		return &WikiCatalog{Base: b, WikiCatalog: d}
	}),
	TypeBoard:  variant(func(b Base, d *TokenData) Block { return &Board{Base: b, Board: d} }),
	TypeAgenda: variant(func(b Base, d *AgendaData) Block { return &Agenda{Base: b, Agenda: d} }),
	TypeAgendaItem: variant(func(b Base, d *AgendaItemData) Block {
		return &AgendaItem{Base: b, AgendaItem: d}
	}),
	TypeAgendaItemTitle: variant(func(b Base, d *AgendaItemTitleData) Block {
		return &AgendaItemTitle{Base: b, AgendaItemTitle: d}
	}),
	TypeAgendaItemContent: variant(func(b Base, d *AgendaItemContentData) Block {
		return &AgendaItemContent{Base: b, AgendaItemContent: d}
	}),
	TypeLinkPreview: variant(func(b Base, d *LinkPreviewData) Block {
		return &LinkPreview{Base: b, LinkPreview: d}
	}),
	TypeSourceSynced: variant(func(b Base, d *SourceSyncedData) Block {
		return &SourceSynced{Base: b, SourceSynced: d}
	}),
	TypeReferenceSynced: variant(func(b Base, d *ReferenceSyncedData) Block {
		return &ReferenceSynced{Base: b, ReferenceSynced: d}
	}),
	TypeSubPageList: variant(func(b Base, d *SubPageListData) Block {
		return &SubPageList{Base: b, SubPageList: d}
	}),
	TypeAITemplate: variant(func(b Base, d *AITemplateData) Block {
		return &AITemplate{Base: b, AITemplate: d}
	}),
}

// Decode parses one block object. The block_type field is read first and
// selects the variant; a missing or unmapped code yields *Unknown.
func Decode(data []byte) (Block, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode block: %w", err)
	}

	code, hasCode := 0, false
	if raw, ok := fields["block_type"]; ok {
		if err := json.Unmarshal(raw, &code); err != nil {
			return nil, fmt.Errorf("failed to decode block_type: %w", err)
		}
		hasCode = true
	}

	t, known := FromCode(code)
	decode, hasDecoder := decoders[t]
	if !hasCode || !known || !hasDecoder {
		return decodeUnknown(data, code, fields)
	}

	var base Base
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("failed to decode block %s: %w", t, err)
	}
	b, err := decode(base, fields[t.Key()])
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload of block %s: %w", t, base.BlockID, err)
	}
	return b, nil
}

func decodeUnknown(data []byte, code int, fields map[string]json.RawMessage) (Block, error) {
	var base struct {
		BlockID  string   `json:"block_id"`
		Parent   string   `json:"parent_id,omitempty"`
		Children []string `json:"children,omitempty"`
		Comments []string `json:"comment_ids,omitempty"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("failed to decode unknown block: %w", err)
	}
	return &Unknown{
		Base: Base{
			BlockID:   base.BlockID,
			BlockType: TypeUndefined,
			Parent:    base.Parent,
			Children:  base.Children,
			Comments:  base.Comments,
		},
		Code:   code,
		Fields: fields,
	}, nil
}

// DecodeList decodes a page of raw block objects in order.
func DecodeList(items []json.RawMessage) ([]Block, error) {
	blocks := make([]Block, 0, len(items))
	for i, item := range items {
		b, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
