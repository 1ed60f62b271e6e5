package agent

import (
	"context"
	"fmt"
	"strings"

	"rag/model"
	"rag/store"
	"rag/types"

	"github.com/pkoukk/tiktoken-go"
)

// ContextSeparator joins retrieved chunks inside the context block. Chosen
// so it cannot plausibly occur inside chunk text.
const ContextSeparator = "\n\n---\n\n"

// Retriever embeds a query, fetches the top-k similar chunks and assembles
// them into one bounded context block.
type Retriever struct {
	embedder  model.Embedder
	store     store.VectorStorer
	topK      int
	maxTokens int
	encoder   *tiktoken.Tiktoken
}

func NewRetriever(embedder model.Embedder, storer store.VectorStorer, topK, maxTokens int) *Retriever {
	// Encoder download can fail offline; assembly then falls back to a
	// character-based estimate.
	enc, _ := tiktoken.EncodingForModel("gpt-3.5-turbo")
	return &Retriever{
		embedder:  embedder,
		store:     storer,
		topK:      topK,
		maxTokens: maxTokens,
		encoder:   enc,
	}
}

// Context returns the assembled context block plus the retrieved results.
// Empty retrieval yields an empty string and no error: the generator
// surfaces that as an insufficient-information answer.
func (r *Retriever) Context(ctx context.Context, query string) (string, []types.SearchResult, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return "", nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.store.Search(ctx, vec, r.topK)
	if err != nil {
		return "", nil, fmt.Errorf("search chunks: %w", err)
	}

	return r.assembleContext(results), results, nil
}

// assembleContext concatenates chunk texts in store order (most relevant
// first) and stops appending whole chunks once the token budget is spent.
// The first chunk is always included.
func (r *Retriever) assembleContext(results []types.SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var sb strings.Builder
	budget := r.maxTokens
	for i, res := range results {
		sep := ""
		if i > 0 {
			sep = ContextSeparator
		}
		cost := r.countTokens(sep + res.Text)
		if cost > budget && sb.Len() > 0 {
			break
		}
		sb.WriteString(sep)
		sb.WriteString(res.Text)
		budget -= cost
	}
	return sb.String()
}

func (r *Retriever) countTokens(text string) int {
	if r.encoder == nil {
		// rough heuristic: ~4 chars per token
		return len(text) / 4
	}
	return len(r.encoder.Encode(text, nil, nil))
}
