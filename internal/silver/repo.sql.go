package silver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/silverlake-dw/silverlake/internal/cleanse"
)

// Repository owns the validated silver tables. Every load is a full replace:
// truncate plus bulk copy inside one transaction, so readers only ever see a
// complete table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Replace swaps the entity's silver table for the given rows. Each row gets
// the run's loaded_at stamp appended for lineage.
func (r *Repository) Replace(ctx context.Context, schema cleanse.Schema, rows []cleanse.Row, loadedAt time.Time) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("silver: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	table := pgx.Identifier{"silver", schema.Table}
	if _, err := tx.Exec(ctx, fmt.Sprintf(`TRUNCATE %s`, table.Sanitize())); err != nil {
		return fmt.Errorf("silver: truncate %s: %w", schema.Table, err)
	}

	columns := append(schema.Columns(), "loaded_at")
	_, err = tx.CopyFrom(ctx, table, columns, pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		return append(append([]any(nil), rows[i]...), loadedAt), nil
	}))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return fmt.Errorf("silver: copy %s: %s (%s): %w", schema.Table, pgErr.Message, pgErr.Code, err)
		}
		return fmt.Errorf("silver: copy %s: %w", schema.Table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("silver: commit %s: %w", schema.Table, err)
	}
	return nil
}
