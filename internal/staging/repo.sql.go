package staging

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cast"

	"github.com/silverlake-dw/silverlake/internal/cleanse"
)

// Repository reads raw records from the staging schema. Staging tables are
// all-text by contract: the bronze loader bulk-copies files verbatim and
// leaves typing to the cleansing layer.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Fetch returns every raw row for the entity's staging table.
func (r *Repository) Fetch(ctx context.Context, entity cleanse.Entity) ([]cleanse.RawRecord, error) {
	schema, ok := cleanse.SchemaFor(entity)
	if !ok {
		return nil, fmt.Errorf("staging: unknown entity %s", entity)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT * FROM staging.%s`, schema.Table))
	if err != nil {
		return nil, fmt.Errorf("staging: query %s: %w", entity, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var records []cleanse.RawRecord
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("staging: read %s: %w", entity, err)
		}
		record := make(cleanse.RawRecord, len(fields))
		for i, field := range fields {
			if values[i] == nil {
				continue
			}
			record[string(field.Name)] = cast.ToString(values[i])
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("staging: scan %s: %w", entity, err)
	}
	return records, nil
}
