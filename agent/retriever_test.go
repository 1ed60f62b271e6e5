package agent

import (
	"context"
	"strings"
	"testing"

	"rag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetriever_EmptyResultsYieldEmptyContext(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeStore{results: nil}, 5, 3000)

	contextText, results, err := r.Context(context.Background(), "anything")

	require.NoError(t, err)
	assert.Empty(t, contextText)
	assert.Empty(t, results)
}

func TestRetriever_JoinsChunksWithSeparator(t *testing.T) {
	store := &fakeStore{results: []types.SearchResult{
		{Text: "first chunk", Score: 0.95},
		{Text: "second chunk", Score: 0.90},
		{Text: "third chunk", Score: 0.85},
	}}
	r := NewRetriever(&fakeEmbedder{}, store, 5, 3000)

	contextText, results, err := r.Context(context.Background(), "query")

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t,
		"first chunk"+ContextSeparator+"second chunk"+ContextSeparator+"third chunk",
		contextText)
}

func TestRetriever_PreservesStoreOrder(t *testing.T) {
	store := &fakeStore{results: []types.SearchResult{
		{Text: "most relevant", Score: 0.99},
		{Text: "less relevant", Score: 0.42},
	}}
	r := NewRetriever(&fakeEmbedder{}, store, 5, 3000)

	contextText, _, err := r.Context(context.Background(), "query")

	require.NoError(t, err)
	assert.Less(t,
		strings.Index(contextText, "most relevant"),
		strings.Index(contextText, "less relevant"))
}

func TestRetriever_TokenBudgetKeepsFirstChunk(t *testing.T) {
	long := strings.Repeat("constitutional provision text ", 40)
	store := &fakeStore{results: []types.SearchResult{
		{Text: long, Score: 0.95},
		{Text: long, Score: 0.90},
	}}
	r := NewRetriever(&fakeEmbedder{}, store, 5, 1)

	contextText, _, err := r.Context(context.Background(), "query")

	require.NoError(t, err)
	assert.Equal(t, long, contextText, "first chunk is always included, later ones dropped at budget")
}
