package types

import "fmt"

// Document is one page of a source PDF as produced by the loader.
// Immutable once loaded.
type Document struct {
	Text   string
	Source string
	Page   int
}

// Chunk is a bounded slice of a document's text, the unit of embedding
// and retrieval. ID is assigned by the identity pass and is stable across
// ingestion runs: "{source}:{page}:{index}".
type Chunk struct {
	ID        string
	Text      string
	Source    string
	Page      int
	Embedding []float32
}

// PageID groups chunks sharing a (source, page) pair during ID assignment.
func (c Chunk) PageID() string {
	return fmt.Sprintf("%s:%d", c.Source, c.Page)
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn in the shape the chat model expects.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StructuredAnswer is the parsed model output for one query.
// Confidence is in [0,1]. Transient, never persisted.
type StructuredAnswer struct {
	Answer     string
	Confidence float64
}

// SearchResult is one retrieved chunk with its similarity score.
// Score is cosine similarity (1 - distance): higher means more relevant.
type SearchResult struct {
	Text   string
	Source string
	Page   int
	Score  float64
}

// LoaderConfig holds the ingestion parameters.
type LoaderConfig struct {
	DataDir      string
	ChunkSize    int
	ChunkOverlap int
	CropTop      float64
	CropBottom   float64
}
