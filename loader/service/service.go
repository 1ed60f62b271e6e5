package service

import (
	"context"
	"fmt"
	"log/slog"

	"rag/loader/internal"
	"rag/model"
	"rag/store"
	"rag/types"
)

// Service runs one ingestion batch: load the PDF corpus, split it into
// chunks, assign stable IDs, drop chunks the store already holds, embed and
// upsert the rest. Re-running over an unchanged corpus inserts nothing.
type Service struct {
	logger   *slog.Logger
	store    store.VectorStorer
	embedder model.Embedder
	loader   *internal.PDFLoader
	cfg      types.LoaderConfig
}

func New(storer store.VectorStorer, embedder model.Embedder, cfg types.LoaderConfig) *Service {
	return &Service{
		logger:   slog.Default(),
		store:    storer,
		embedder: embedder,
		loader:   internal.NewPDFLoader(cfg),
		cfg:      cfg,
	}
}

// Run executes the full ingestion path and returns the number of newly
// persisted chunks. A failure aborts the batch; already-upserted chunks
// remain and a rerun is the recovery path.
func (s *Service) Run(ctx context.Context) (int, error) {
	docs, err := s.loader.LoadDocuments()
	if err != nil {
		return 0, fmt.Errorf("load documents: %w", err)
	}
	s.logger.Info("loaded documents", "pages", len(docs), "dir", s.cfg.DataDir)

	chunks := internal.SplitDocuments(docs, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	chunks = internal.AssignChunkIDs(chunks)
	s.logger.Info("split documents", "chunks", len(chunks),
		"chunk_size", s.cfg.ChunkSize, "overlap", s.cfg.ChunkOverlap)

	return s.Ingest(ctx, chunks)
}

// Ingest filters out chunks whose ID the store already holds, embeds only
// the new ones and upserts them. The existence probe reads IDs only, no
// vector payload.
func (s *Service) Ingest(ctx context.Context, chunks []types.Chunk) (int, error) {
	existing, err := s.store.ExistingIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("probe existing ids: %w", err)
	}

	var newChunks []types.Chunk
	for _, c := range chunks {
		if _, ok := existing[c.ID]; !ok {
			newChunks = append(newChunks, c)
		}
	}

	if len(newChunks) == 0 {
		s.logger.Info("no new chunks to add")
		return 0, nil
	}

	for i := range newChunks {
		embedding, err := s.embedder.Embed(ctx, newChunks[i].Text)
		if err != nil {
			return 0, fmt.Errorf("embed chunk %s: %w", newChunks[i].ID, err)
		}
		newChunks[i].Embedding = embedding
	}

	if err := s.store.UpsertChunks(ctx, newChunks); err != nil {
		return 0, fmt.Errorf("upsert chunks: %w", err)
	}

	s.logger.Info("added new chunks to the database", "count", len(newChunks))
	return len(newChunks), nil
}
