package pipeline

import (
	"github.com/shopspring/decimal"
)

// OrderRecord is one point-of-sale sale event, as deposited by a store
type OrderRecord struct {
	OrderID     string `json:"order_id"`
	StoreID     string `json:"store_id"`
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Category    string `json:"category"`
	Timestamp   string `json:"timestamp"`
}

// StockRecord is one warehouse stock snapshot line for a SKU
type StockRecord struct {
	WarehouseID    string `json:"warehouse_id"`
	SKU            string `json:"sku"`
	ProductName    string `json:"product_name"`
	AvailableStock int    `json:"available_stock"`
	ReservedStock  int    `json:"reserved_stock"`
	SafetyStock    int    `json:"safety_stock"`
	ReorderPoint   int    `json:"reorder_point"`
	SnapshotDate   string `json:"snapshot_date"`
	SnapshotTime   string `json:"snapshot_time"`
}

// AggregatedDemand is the day's demand for one SKU across all stores
type AggregatedDemand struct {
	SKU           string `json:"sku"`
	TotalQuantity int    `json:"total_quantity"`
	NumOrders     int    `json:"num_orders"`
	NumStores     int    `json:"num_stores"`
}

// ProductRule carries the reference data needed to replenish one SKU.
// The MOQ comes from the supplier the SKU is assigned to.
type ProductRule struct {
	SKU         string          `json:"sku"`
	SupplierID  string          `json:"supplier_id"`
	PackSize    int             `json:"pack_size"`
	SafetyStock int             `json:"safety_stock"`
	MOQ         int             `json:"moq"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// NetDemand is the replenishment requirement computed for one SKU
type NetDemand struct {
	SKU               string `json:"sku"`
	SupplierID        string `json:"supplier_id"`
	AggregatedOrders  int    `json:"aggregated_orders"`
	AvailableStock    int    `json:"available_stock"`
	ReservedStock     int    `json:"reserved_stock"`
	SafetyStock       int    `json:"safety_stock"`
	PreliminaryDemand int    `json:"preliminary_demand"`
	PackSize          int    `json:"pack_size"`
	RoundedDemand     int    `json:"rounded_demand"`
	MOQ               int    `json:"moq"`
}

// OrderItem is one purchase order line
type OrderItem struct {
	SKU      string          `json:"sku"`
	Quantity int             `json:"quantity"`
	PackSize int             `json:"pack_size"`
	NumPacks int             `json:"num_packs"`
	LineCost decimal.Decimal `json:"line_cost"`
}

// SupplierOrder is the purchase order emitted for one supplier
type SupplierOrder struct {
	SupplierID  string          `json:"supplier_id"`
	OrderDate   string          `json:"order_date"`
	GeneratedAt string          `json:"generated_at"`
	TotalItems  int             `json:"total_items"`
	TotalUnits  int             `json:"total_units"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	Items       []OrderItem     `json:"items"`
}

// Exception severities, ranked
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
)

// Exception types
const (
	ExceptionMissingStockData = "MISSING_STOCK_DATA"
	ExceptionHighDemand       = "HIGH_DEMAND"
	ExceptionNegativeStock    = "NEGATIVE_STOCK"
)

// ExceptionDetail identifies one offending SKU inside an exception entry
type ExceptionDetail struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity,omitempty"`
	Stock    int    `json:"stock,omitempty"`
}

// Exception is one detected anomaly class
type Exception struct {
	Type     string            `json:"type"`
	Severity string            `json:"severity"`
	Count    int               `json:"count"`
	SKUs     []string          `json:"skus,omitempty"`
	Details  []ExceptionDetail `json:"details,omitempty"`
}

// ExceptionReport wraps the day's detected anomalies. It is only written
// when at least one exception triggered.
type ExceptionReport struct {
	Date            string      `json:"date"`
	Timestamp       string      `json:"timestamp"`
	TotalExceptions int         `json:"total_exceptions"`
	Exceptions      []Exception `json:"exceptions"`
}
