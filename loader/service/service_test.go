package service

import (
	"context"
	"errors"
	"testing"

	"rag/loader/internal"
	"rag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	return []float32{1, 0, 0}, nil
}

type fakeStore struct {
	existing map[string]struct{}
	upserted [][]types.Chunk
	probeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{existing: make(map[string]struct{})}
}

func (f *fakeStore) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	ids := make(map[string]struct{}, len(f.existing))
	for id := range f.existing {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (f *fakeStore) UpsertChunks(ctx context.Context, chunks []types.Chunk) error {
	f.upserted = append(f.upserted, chunks)
	for _, c := range chunks {
		f.existing[c.ID] = struct{}{}
	}
	return nil
}

func (f *fakeStore) Search(ctx context.Context, vec []float32, k int) ([]types.SearchResult, error) {
	return nil, nil
}

func (f *fakeStore) Clear(ctx context.Context) error {
	f.existing = make(map[string]struct{})
	return nil
}

func corpusChunks(source string, pages ...string) []types.Chunk {
	var docs []types.Document
	for i, text := range pages {
		docs = append(docs, types.Document{Text: text, Source: source, Page: i})
	}
	return internal.AssignChunkIDs(internal.SplitDocuments(docs, 800, 80))
}

func TestIngest_Idempotent(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{}
	s := New(store, embedder, types.LoaderConfig{ChunkSize: 800, ChunkOverlap: 80})

	chunks := corpusChunks("X", "preamble text", "article one text")

	added, err := s.Ingest(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// second run over the unchanged corpus inserts nothing
	added, err = s.Ingest(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Len(t, store.upserted, 1, "no second upsert batch")
	assert.Equal(t, 2, embedder.calls, "already-present chunks are not re-embedded")
}

func TestIngest_DeduplicatesAcrossCorpora(t *testing.T) {
	store := newFakeStore()
	s := New(store, &fakeEmbedder{}, types.LoaderConfig{ChunkSize: 800, ChunkOverlap: 80})

	first := corpusChunks("X", "page zero", "page one")
	added, err := s.Ingest(context.Background(), first)
	require.NoError(t, err)
	require.Equal(t, 2, added)

	// extended corpus: only Y's chunks are new
	extended := append(corpusChunks("X", "page zero", "page one"), corpusChunks("Y", "fresh page")...)
	added, err = s.Ingest(context.Background(), extended)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	require.Len(t, store.upserted, 2)
	second := store.upserted[1]
	require.Len(t, second, 1)
	assert.Equal(t, "Y:0:0", second[0].ID)
}

func TestIngest_EmbedsOnlyNewChunks(t *testing.T) {
	store := newFakeStore()
	store.existing["X:0:0"] = struct{}{}
	embedder := &fakeEmbedder{}
	s := New(store, embedder, types.LoaderConfig{ChunkSize: 800, ChunkOverlap: 80})

	added, err := s.Ingest(context.Background(), corpusChunks("X", "page zero", "page one"))

	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, embedder.calls)
}

func TestIngest_AbortsOnEmbeddingFailure(t *testing.T) {
	store := newFakeStore()
	s := New(store, &fakeEmbedder{err: errors.New("network down")}, types.LoaderConfig{ChunkSize: 800, ChunkOverlap: 80})

	_, err := s.Ingest(context.Background(), corpusChunks("X", "page zero"))

	require.Error(t, err)
	assert.Empty(t, store.upserted, "failed batch must not be upserted")
}

func TestIngest_ProbeFailureAborts(t *testing.T) {
	store := newFakeStore()
	store.probeErr = errors.New("store unavailable")
	s := New(store, &fakeEmbedder{}, types.LoaderConfig{ChunkSize: 800, ChunkOverlap: 80})

	_, err := s.Ingest(context.Background(), corpusChunks("X", "page zero"))

	require.Error(t, err)
	assert.Empty(t, store.upserted)
}
