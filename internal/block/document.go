package block

// DocumentMeta contains document metadata.
type DocumentMeta struct {
	DocumentID string `json:"document_id"`
	RevisionID int    `json:"revision_id"`
	Title      string `json:"title"`
}

// Document is the full block set of one document. Blocks are unordered;
// document order is recoverable only through the tree.
type Document struct {
	Meta   DocumentMeta
	Blocks map[string]Block
}

// NewDocument creates an empty document for meta.
func NewDocument(meta DocumentMeta) *Document {
	return &Document{
		Meta:   meta,
		Blocks: make(map[string]Block),
	}
}

// Add stores b under its id, replacing any block with the same id.
func (d *Document) Add(b Block) {
	d.Blocks[b.ID()] = b
}

// AddAll stores every block in bs.
func (d *Document) AddAll(bs []Block) {
	for _, b := range bs {
		d.Add(b)
	}
}

// CountByType returns the number of blocks of each type.
func (d *Document) CountByType() map[Type]int {
	counts := make(map[Type]int)
	for _, b := range d.Blocks {
		counts[b.Type()]++
	}
	return counts
}
