package cleanse

import "regexp"

// quarterPattern matches quarter buckets shaped like 2019Q2.
var quarterPattern = regexp.MustCompile(`^\d{4}Q\d$`)

// Column binds one output column to its cleansing rule.
type Column struct {
	Name string
	Rule Rule
}

// Schema is the declarative rule table for one entity: the ordered output
// columns and the rule applied to each. One engine executes every schema, so
// the transform control flow is never duplicated per entity.
type Schema struct {
	Entity Entity
	Table  string
	Cols   []Column
}

// Columns returns the output column names in schema order.
func (s Schema) Columns() []string {
	names := make([]string, len(s.Cols))
	for i, col := range s.Cols {
		names[i] = col.Name
	}
	return names
}

var schemas = map[Entity]Schema{
	EntityProducts: {
		Entity: EntityProducts,
		Table:  "products",
		Cols: []Column{
			{Name: "sku_id", Rule: Trim()},
			{Name: "product_name", Rule: Trim()},
			{Name: "category", Rule: Trim()},
			{Name: "subcategory", Rule: Trim()},
			{Name: "launch_date", Rule: BoundedDate()},
			{Name: "shelf_life_days", Rule: NonNegative()},
			{Name: "unit_price", Rule: NonNegative()},
			{Name: "supplier_id", Rule: Trim()},
			{Name: "is_active", Rule: BoolText()},
			{Name: "online_only", Rule: BoolText()},
			{Name: "discontinued", Rule: BoolText()},
			// Ratings live on a 1-5 scale; below 1 is invalid, not below 0.
			// The count side carries no upper bound at load time.
			{Name: "avg_rating", Rule: AtLeast(1)},
			{Name: "rating_count", Rule: NonNegative()},
		},
	},
	EntitySuppliers: {
		Entity: EntitySuppliers,
		Table:  "suppliers",
		Cols: []Column{
			{Name: "supplier_id", Rule: Trim()},
			{Name: "supplier_name", Rule: Trim()},
			{Name: "region", Rule: Trim()},
			{Name: "shipping_mode", Rule: Trim()},
			{Name: "status", Rule: Enum("active", "inactive")},
			{Name: "lead_time_category", Rule: Enum("long", "medium", "short")},
			{Name: "min_order_qty", Rule: NonNegative()},
			{Name: "contract_start_date", Rule: BoundedDate()},
		},
	},
	EntitySales: {
		Entity: EntitySales,
		Table:  "sales",
		Cols: []Column{
			{Name: "sale_id", Rule: Trim()},
			{Name: "order_id", Rule: Trim()},
			{Name: "sale_date", Rule: BoundedDate()},
			{Name: "sku_id", Rule: Trim()},
			{Name: "channel", Rule: Trim()},
			{Name: "quantity", Rule: GreaterThan(0)},
			{Name: "unit_price", Rule: NonNegative()},
			// promo_flag, discount_pct and returned_flag intentionally skip
			// the range guard their sibling numerics get; the source loader
			// has always passed them through as-is.
			{Name: "promo_flag", Rule: Numeric()},
			{Name: "discount_pct", Rule: Numeric()},
			{Name: "customer_segment_id", Rule: IntEnum("0", "1", "2")},
			{Name: "customer_segment", Rule: Enum("budget", "value", "premium")},
			{Name: "gross_revenue", Rule: NonNegative()},
			{Name: "platform_fee", Rule: NonNegative()},
			{Name: "net_revenue", Rule: NonNegative()},
			{Name: "returned_flag", Rule: Numeric()},
			{Name: "quarter_bucket", Rule: Pattern(quarterPattern)},
			{Name: "sale_month", Rule: Trim()},
		},
	},
	EntityPurchaseOrders: {
		Entity: EntityPurchaseOrders,
		Table:  "purchase_orders",
		Cols: []Column{
			{Name: "po_id", Rule: Trim()},
			{Name: "sku_id", Rule: Trim()},
			{Name: "supplier_id", Rule: Trim()},
			{Name: "po_date", Rule: BoundedDate()},
			{Name: "promised_date", Rule: BoundedDate()},
			{Name: "actual_delivery_date", Rule: BoundedDate()},
			{Name: "order_qty", Rule: GreaterThan(0)},
			{Name: "unit_cost", Rule: NonNegative()},
			{Name: "status", Rule: Enum("delivered", "pending")},
			{Name: "freight_cost", Rule: NonNegative()},
			{Name: "import_duty", Rule: NonNegative()},
		},
	},
	EntityDailyInventory: {
		Entity: EntityDailyInventory,
		Table:  "daily_inventory",
		Cols: []Column{
			{Name: "snapshot_date", Rule: BoundedDate()},
			{Name: "sku_id", Rule: Trim()},
			{Name: "stock_on_hand", Rule: NonNegative()},
			{Name: "stock_allocated", Rule: NonNegative()},
			{Name: "stock_available", Rule: NonNegative()},
			{Name: "in_transit_qty", Rule: NonNegative()},
			{Name: "days_of_supply", Rule: NonNegative()},
		},
	},
	EntityInventorySnapshot: {
		Entity: EntityInventorySnapshot,
		Table:  "inventory_snapshot",
		Cols: []Column{
			{Name: "snapshot_date", Rule: BoundedDate()},
			{Name: "sku_id", Rule: Trim()},
			{Name: "stock_on_hand", Rule: NonNegative()},
			{Name: "stock_allocated", Rule: NonNegative()},
			{Name: "stock_available", Rule: NonNegative()},
			{Name: "in_transit_qty", Rule: NonNegative()},
			{Name: "stock_age_days", Rule: NonNegative()},
			{Name: "backorder_qty", Rule: NonNegative()},
			{Name: "opening_buffer", Rule: NonNegative()},
		},
	},
}

// SchemaFor returns the rule table for an entity.
func SchemaFor(entity Entity) (Schema, bool) {
	schema, ok := schemas[entity]
	return schema, ok
}
