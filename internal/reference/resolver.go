// Package reference resolves replenishment rules from the master data store.
package reference

import (
	"context"
	"fmt"

	"github.com/Yousra-khallou/PipelineProc/internal/model"
	"github.com/Yousra-khallou/PipelineProc/internal/pipeline"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Resolver looks up product rules in the reference database
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a resolver backed by the given database
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

type ruleRow struct {
	SKU              string
	SupplierID       string
	PackSize         int
	SafetyStock      int
	MinOrderQuantity int
	UnitCost         decimal.Decimal
}

// Resolve fetches the rules for exactly the given SKUs in one batched query.
// SKUs absent from the reference store are simply absent from the result; the
// caller reports them as a reference data gap.
func (r *Resolver) Resolve(ctx context.Context, skus []string) (map[string]pipeline.ProductRule, error) {
	if len(skus) == 0 {
		return map[string]pipeline.ProductRule{}, nil
	}

	var rows []ruleRow
	err := r.db.WithContext(ctx).
		Table("products p").
		Select("p.sku, p.supplier_id, p.pack_size, p.unit_cost, r.safety_stock, s.min_order_quantity").
		Joins("JOIN replenishment_rules r ON p.sku = r.sku").
		Joins("JOIN suppliers s ON p.supplier_id = s.supplier_id").
		Where("p.sku IN ?", skus).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query replenishment rules: %w", err)
	}

	rules := make(map[string]pipeline.ProductRule, len(rows))
	for _, row := range rows {
		rules[row.SKU] = pipeline.ProductRule{
			SKU:         row.SKU,
			SupplierID:  row.SupplierID,
			PackSize:    row.PackSize,
			SafetyStock: row.SafetyStock,
			MOQ:         row.MinOrderQuantity,
			UnitCost:    row.UnitCost,
		}
	}
	return rules, nil
}

// SupplierMOQ returns the minimum order quantity for a single supplier
func (r *Resolver) SupplierMOQ(ctx context.Context, supplierID string) (int, error) {
	var supplier model.Supplier
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		First(&supplier).Error
	if err != nil {
		return 0, fmt.Errorf("query supplier %s: %w", supplierID, err)
	}
	return supplier.MinOrderQuantity, nil
}
