package cleanse

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Transform cleanses one raw record against the schema. The result always has
// exactly one value per schema column; invalid fields come back nil.
func (s Schema) Transform(raw RawRecord, now time.Time) Row {
	row := make(Row, len(s.Cols))
	for i, col := range s.Cols {
		row[i] = col.Rule.Apply(raw[col.Name], now)
	}
	return row
}

// TransformAll maps raw records to typed rows using a bounded worker pool.
// Rows have no cross-row dependency, so they fan out freely; results keep the
// input order so repeated runs stay byte-identical. workers <= 0 falls back
// to GOMAXPROCS.
func TransformAll(ctx context.Context, schema Schema, raws []RawRecord, now time.Time, workers int) ([]Row, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rows := make([]Row, len(raws))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, raw := range raws {
		i, raw := i, raw
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows[i] = schema.Transform(raw, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}
