package cleanse

// Entity identifies one of the cleansed record types.
type Entity string

const (
	// EntityProducts is the product master.
	EntityProducts Entity = "products"
	// EntitySuppliers is the supplier master.
	EntitySuppliers Entity = "suppliers"
	// EntitySales holds individual sale lines.
	EntitySales Entity = "sales"
	// EntityPurchaseOrders holds purchase order headers.
	EntityPurchaseOrders Entity = "purchase_orders"
	// EntityDailyInventory holds per-day stock positions.
	EntityDailyInventory Entity = "daily_inventory"
	// EntityInventorySnapshot holds the extended stock snapshot.
	EntityInventorySnapshot Entity = "inventory_snapshot"
)

// RunOrder is the fixed processing order for a full pipeline run.
var RunOrder = []Entity{
	EntityProducts,
	EntitySuppliers,
	EntitySales,
	EntityPurchaseOrders,
	EntityDailyInventory,
	EntityInventorySnapshot,
}

// RawRecord is one staging row: column name to raw string value, as
// delivered by the bronze loader. Missing columns read as empty strings.
type RawRecord map[string]string

// Row is one typed output row. Values are positional and aligned with the
// entity schema columns; nil marks a value the rules degraded to NULL.
type Row []any
