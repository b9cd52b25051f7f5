package cleanse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func saleRecord() RawRecord {
	return RawRecord{
		"sale_id":             "S-1001",
		"order_id":            "O-2001",
		"sale_date":           "2023-05-01",
		"sku_id":              " SKU-9 ",
		"channel":             "online",
		"quantity":            "3",
		"unit_price":          "19.99",
		"promo_flag":          "1",
		"discount_pct":        "150",
		"customer_segment_id": "2",
		"customer_segment":    "premium",
		"gross_revenue":       "59.97",
		"platform_fee":        "1.2",
		"net_revenue":         "58.77",
		"returned_flag":       "0",
		"quarter_bucket":      "2023Q2",
		"sale_month":          "2023-05",
	}
}

func TestTransformSale(t *testing.T) {
	schema, ok := SchemaFor(EntitySales)
	require.True(t, ok)

	row := schema.Transform(saleRecord(), testNow)
	require.Len(t, row, len(schema.Cols))

	byName := make(map[string]any, len(row))
	for i, col := range schema.Cols {
		byName[col.Name] = row[i]
	}

	require.Equal(t, "S-1001", byName["sale_id"])
	require.Equal(t, "SKU-9", byName["sku_id"])
	require.Equal(t, time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), byName["sale_date"])
	require.Equal(t, float64(3), byName["quantity"])
	require.Equal(t, 19.99, byName["unit_price"])
	require.Equal(t, int64(2), byName["customer_segment_id"])
	require.Equal(t, "premium", byName["customer_segment"])
	require.Equal(t, "2023Q2", byName["quarter_bucket"])
	// discount_pct has no range guard: out-of-range values pass through.
	require.Equal(t, float64(150), byName["discount_pct"])
}

func TestTransformDegradesInvalidFieldsToNull(t *testing.T) {
	schema, ok := SchemaFor(EntitySales)
	require.True(t, ok)

	raw := saleRecord()
	raw["quantity"] = "0"
	raw["sale_date"] = "1999-12-31"
	raw["customer_segment_id"] = "7"
	raw["customer_segment"] = "luxury"
	raw["quarter_bucket"] = "2019-Q2"
	raw["gross_revenue"] = "-5"

	row := schema.Transform(raw, testNow)
	require.Len(t, row, len(schema.Cols), "bad fields never drop the row")

	byName := make(map[string]any, len(row))
	for i, col := range schema.Cols {
		byName[col.Name] = row[i]
	}
	require.Nil(t, byName["quantity"])
	require.Nil(t, byName["sale_date"])
	require.Nil(t, byName["customer_segment_id"])
	require.Nil(t, byName["customer_segment"])
	require.Nil(t, byName["quarter_bucket"])
	require.Nil(t, byName["gross_revenue"])
	require.Equal(t, "S-1001", byName["sale_id"], "valid siblings survive")
}

func TestTransformMissingColumnsBecomeNull(t *testing.T) {
	schema, ok := SchemaFor(EntityProducts)
	require.True(t, ok)

	row := schema.Transform(RawRecord{"sku_id": "SKU-1"}, testNow)
	require.Len(t, row, len(schema.Cols))
	require.Equal(t, "SKU-1", row[0])
	for _, v := range row[1:] {
		require.Nil(t, v)
	}
}

func TestTransformAllPreservesCountAndOrder(t *testing.T) {
	schema, ok := SchemaFor(EntityDailyInventory)
	require.True(t, ok)

	raws := make([]RawRecord, 500)
	for i := range raws {
		raws[i] = RawRecord{
			"snapshot_date": "2024-01-02",
			"sku_id":        fmt.Sprintf("SKU-%d", i),
			"stock_on_hand": fmt.Sprintf("%d", i),
		}
	}

	rows, err := TransformAll(context.Background(), schema, raws, testNow, 8)
	require.NoError(t, err)
	require.Len(t, rows, len(raws))
	for i, row := range rows {
		require.Equal(t, fmt.Sprintf("SKU-%d", i), row[1])
	}
}

func TestTransformAllDeterministic(t *testing.T) {
	schema, ok := SchemaFor(EntitySales)
	require.True(t, ok)

	raws := []RawRecord{saleRecord(), saleRecord(), saleRecord()}
	first, err := TransformAll(context.Background(), schema, raws, testNow, 4)
	require.NoError(t, err)
	second, err := TransformAll(context.Background(), schema, raws, testNow, 1)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSchemasCoverRunOrder(t *testing.T) {
	for _, entity := range RunOrder {
		schema, ok := SchemaFor(entity)
		require.True(t, ok, "entity %s", entity)
		require.NotEmpty(t, schema.Table)
		require.NotEmpty(t, schema.Cols)
		require.Len(t, schema.Columns(), len(schema.Cols))
	}
}
