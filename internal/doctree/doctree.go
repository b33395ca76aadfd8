package doctree

// Paper is the normalized record for one source paper.
type Paper struct {
	Title    string  `json:"title"`
	Summary  string  `json:"summary"` // The paper's own abstract, used as ground truth
	Document []Block `json:"document"`
	URL      string  `json:"url"`
	ID       string  `json:"id"`
}

// Block is one titled unit of document content. Hierarchy is encoded by
// emission order only; Level records the heading level it was read from.
type Block struct {
	Subtitle string `json:"subtitle"`
	Text     string `json:"text"`
	Level    int    `json:"level,omitempty"` // 2 section, 3 subsection, 4 subsubsection or paragraph
}

// Chunk is a prompt-sized text segment cut from one block.
type Chunk struct {
	Text       string   // Chunk text content
	Index      int      // Sequence number within the paper
	BlockIndex int      // Index of the source block in Paper.Document
	Breadcrumb []string // Paper title and block subtitle
}
