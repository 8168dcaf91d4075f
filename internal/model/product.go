package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier represents a supplier in the reference master data
type Supplier struct {
	SupplierID       string `json:"supplier_id" gorm:"primaryKey;type:varchar(50)"`
	SupplierName     string `json:"supplier_name" gorm:"type:varchar(255);not null"`
	LeadTimeDays     int    `json:"lead_time_days" gorm:"default:2"`
	MinOrderQuantity int    `json:"min_order_quantity" gorm:"default:24"`
	ContactEmail     string `json:"contact_email" gorm:"type:varchar(255)"`
	Active           bool   `json:"active" gorm:"default:true"`
}

// TableName overrides the table name to match the reference schema
func (Supplier) TableName() string {
	return "suppliers"
}

// Product represents the product master data
type Product struct {
	SKU         string          `json:"sku" gorm:"primaryKey;type:varchar(50)"`
	ProductName string          `json:"product_name" gorm:"type:varchar(255);not null"`
	SupplierID  string          `json:"supplier_id" gorm:"type:varchar(50);index"`
	Supplier    *Supplier       `json:"supplier,omitempty" gorm:"foreignKey:SupplierID;references:SupplierID"`
	PackSize    int             `json:"pack_size" gorm:"not null;default:12"`
	UnitCost    decimal.Decimal `json:"unit_cost" gorm:"type:decimal(10,2)"`
	Category    string          `json:"category" gorm:"type:varchar(100)"`
	Perishable  bool            `json:"perishable" gorm:"default:false"`
}

// TableName overrides the table name to match the reference schema
func (Product) TableName() string {
	return "products"
}

// ReplenishmentRule holds the per-SKU replenishment parameters
type ReplenishmentRule struct {
	SKU           string    `json:"sku" gorm:"primaryKey;type:varchar(50)"`
	SafetyStock   int       `json:"safety_stock" gorm:"not null;default:50"`
	ReorderPoint  int       `json:"reorder_point" gorm:"not null;default:100"`
	MaxStockLevel int       `json:"max_stock_level"`
	LastUpdated   time.Time `json:"last_updated" gorm:"autoUpdateTime"`
}

// TableName overrides the table name to match the reference schema
func (ReplenishmentRule) TableName() string {
	return "replenishment_rules"
}
