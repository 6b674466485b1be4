package repository

import (
	"context"
	"fmt"

	"expenselens/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ChunkRepository stores the indexed chunks of the current summary generation
// in Postgres with a pgvector embedding column.
type ChunkRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChunkRepository(db *pgxpool.Pool, logger *zap.Logger) *ChunkRepository {
	return &ChunkRepository{
		db:     db,
		logger: logger,
	}
}

// ReplaceAll deletes every indexed chunk and inserts the new set inside one
// transaction, so a concurrent search sees either the old generation or the
// new one, never a partially repopulated index.
func (r *ChunkRepository) ReplaceAll(ctx context.Context, chunks []models.IndexedChunk) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM summary_chunks"); err != nil {
		return fmt.Errorf("failed to delete previous chunks: %w", err)
	}

	if len(chunks) > 0 {
		builder := squirrel.Insert("summary_chunks").
			Columns("id", "title", "content", "embedding").
			PlaceholderFormat(squirrel.Dollar)

		for _, chunk := range chunks {
			builder = builder.Values(chunk.ID, chunk.Title, chunk.Content, toVector(chunk.Embedding))
		}

		sql, args, err := builder.ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to insert chunks: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chunk replacement: %w", err)
	}

	r.logger.Info("Summary chunks replaced", zap.Int("count", len(chunks)))
	return nil
}

// SearchSimilar returns the contents of the k chunks nearest to the query
// embedding, ordered by increasing cosine distance.
func (r *ChunkRepository) SearchSimilar(ctx context.Context, embedding []float32, k int) ([]string, error) {
	query := squirrel.Select("content").
		Column(squirrel.Alias(squirrel.Expr("embedding <=> ?", toVector(embedding)), "distance")).
		From("summary_chunks").
		OrderBy("distance ASC").
		Limit(uint64(k)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var content string
		var distance float64
		if err := rows.Scan(&content, &distance); err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}

	return contents, rows.Err()
}

func toVector(embedding []float32) pgtype.FlatArray[float32] {
	vec := make(pgtype.FlatArray[float32], len(embedding))
	copy(vec, embedding)
	return vec
}
