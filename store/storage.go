package store

import (
	"context"
	"fmt"
	"log"

	"rag/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// VectorStorer is the persistence boundary for embedded chunks. The store
// is the sole source of truth for "already ingested" status.
type VectorStorer interface {
	ExistingIDs(context.Context) (map[string]struct{}, error)
	UpsertChunks(context.Context, []types.Chunk) error
	// Search returns the k nearest chunks by cosine distance, most relevant
	// first. Score is similarity (1 - distance): higher is better.
	Search(context.Context, []float32, int) ([]types.SearchResult, error)
	Clear(context.Context) error
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

func (p *PostgresStore) createRagTables(ctx context.Context) error {
	query := `
    CREATE EXTENSION IF NOT EXISTS vector;

    CREATE TABLE IF NOT EXISTS chunks (
        id TEXT PRIMARY KEY,
        source TEXT NOT NULL,
        page INT NOT NULL,
        content TEXT NOT NULL,
        embedding vector(1536)
    );

	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
    `
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createRagTables(ctx)
}

// ExistingIDs probes which chunk IDs are already persisted. No vector
// payload is read, so re-running ingestion over a large corpus stays cheap.
func (p *PostgresStore) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := p.pool.Query(ctx, "SELECT id FROM chunks")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// UpsertChunks persists chunks keyed by their stable ID. Re-upserting an
// existing ID overwrites it with identical content, so concurrent ingestion
// runs over overlapping corpora converge.
func (p *PostgresStore) UpsertChunks(ctx context.Context, chunks []types.Chunk) error {
	query := `
    INSERT INTO chunks (id, source, page, content, embedding)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (id) DO UPDATE SET
        source = EXCLUDED.source,
        page = EXCLUDED.page,
        content = EXCLUDED.content,
        embedding = EXCLUDED.embedding
    `
	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(query, c.ID, c.Source, c.Page, c.Text, pgvector.NewVector(c.Embedding))
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("error upserting chunk: %w", err)
		}
	}
	return nil
}

func (p *PostgresStore) Search(ctx context.Context, queryVec []float32, limit int) ([]types.SearchResult, error) {
	if len(queryVec) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	vector := pgvector.NewVector(queryVec)

	query := `
		SELECT content, source, page,
		       1-(embedding <=> $1) as score
		FROM chunks
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := p.pool.Query(ctx, query, vector, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []types.SearchResult
	for rows.Next() {
		var r types.SearchResult
		if err := rows.Scan(&r.Text, &r.Source, &r.Page, &r.Score); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Clear wipes the persisted chunks entirely. Safe to call when the table
// does not exist yet; Init recreates it.
func (p *PostgresStore) Clear(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, "DROP TABLE IF EXISTS chunks")
	if err != nil {
		return err
	}
	return p.createRagTables(ctx)
}

// Close закрывает пул подключений
func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
