package repository

import (
	"context"
	"errors"

	"github.com/cortexa-labs/cortexa/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgVectorIndex is the Postgres-backed index variant. Chunks and their
// embeddings live in the context_chunks table; the embedding-space metadata
// recorded at build time lives in context_index_meta. Persistence is the
// database itself, so there is no separate save/load step.
type PgVectorIndex struct {
	pool *pgxpool.Pool
}

// NewPgVectorIndex creates a new PgVectorIndex backed by the given pool.
func NewPgVectorIndex(pool *pgxpool.Pool) *PgVectorIndex {
	return &PgVectorIndex{pool: pool}
}

// Replace deletes all indexed chunks and inserts the new set in one
// transaction, so concurrent searches never observe a half-built index.
func (r *PgVectorIndex) Replace(ctx context.Context, meta domain.IndexMeta, chunks []domain.IndexedChunk) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "failed to begin index rebuild", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM context_chunks`); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "failed to clear index", err)
	}

	for _, c := range chunks {
		_, err := tx.Exec(ctx,
			`INSERT INTO context_chunks (build_id, source_id, position, content, embedding)
			 VALUES ($1, $2, $3, $4, $5)`,
			meta.BuildID,
			c.SourceID,
			c.Position,
			c.Content,
			pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "failed to insert chunk", err)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO context_index_meta (id, build_id, model, dimensions, chunk_size, chunk_overlap, built_at)
		 VALUES (1, $1, $2, $3, $4, $5, now())
		 ON CONFLICT (id) DO UPDATE
		 SET build_id = EXCLUDED.build_id,
		     model = EXCLUDED.model,
		     dimensions = EXCLUDED.dimensions,
		     chunk_size = EXCLUDED.chunk_size,
		     chunk_overlap = EXCLUDED.chunk_overlap,
		     built_at = EXCLUDED.built_at`,
		meta.BuildID, meta.Model, meta.Dimensions, meta.ChunkSize, meta.Overlap,
	)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "failed to record index metadata", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "failed to commit index rebuild", err)
	}
	return nil
}

// Search returns the k nearest chunks by cosine similarity. Ties are broken
// by insertion order (serial id).
func (r *PgVectorIndex) Search(ctx context.Context, query []float32, k int) ([]domain.ChunkMatch, error) {
	if k <= 0 {
		k = 1
	}

	vec := pgvector.NewVector(query)
	rows, err := r.pool.Query(ctx,
		`SELECT source_id, position, content, 1 - (embedding <=> $1) AS score
		 FROM context_chunks
		 ORDER BY embedding <=> $1, id
		 LIMIT $2`,
		vec, k,
	)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "index search failed", err)
	}
	defer rows.Close()

	matches := make([]domain.ChunkMatch, 0, k)
	for rows.Next() {
		var m domain.ChunkMatch
		if err := rows.Scan(&m.SourceID, &m.Position, &m.Content, &m.Score); err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "failed to scan search result", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "index search failed", err)
	}
	return matches, nil
}

// Meta returns the embedding-space metadata of the current index build. An
// index that was never built reads as missing.
func (r *PgVectorIndex) Meta(ctx context.Context) (domain.IndexMeta, error) {
	var meta domain.IndexMeta
	err := r.pool.QueryRow(ctx,
		`SELECT build_id, model, dimensions, chunk_size, chunk_overlap
		 FROM context_index_meta WHERE id = 1`,
	).Scan(&meta.BuildID, &meta.Model, &meta.Dimensions, &meta.ChunkSize, &meta.Overlap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.IndexMeta{}, domain.ErrIndexMissing
		}
		return domain.IndexMeta{}, domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "failed to read index metadata", err)
	}
	return meta, nil
}

// Count returns the number of indexed chunks.
func (r *PgVectorIndex) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM context_chunks`).Scan(&count)
	if err != nil {
		return 0, domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "failed to count chunks", err)
	}
	return count, nil
}
