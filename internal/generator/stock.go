package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/Yousra-khallou/PipelineProc/internal/pipeline"
	"github.com/Yousra-khallou/PipelineProc/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NumWarehouses is the number of simulated warehouses
const NumWarehouses = 2

// StockGenerator fabricates daily warehouse stock snapshot files
type StockGenerator struct {
	db    *gorm.DB
	store storage.Store
	path  string
	log   *zap.Logger
}

// NewStockGenerator wires a generator writing under the given stock prefix
func NewStockGenerator(db *gorm.DB, store storage.Store, path string, log *zap.Logger) *StockGenerator {
	return &StockGenerator{db: db, store: store, path: path, log: log}
}

type productWithRule struct {
	SKU           string
	ProductName   string
	SafetyStock   int
	ReorderPoint  int
	MaxStockLevel int
}

// Generate writes one snapshot file per warehouse for the given date
func (g *StockGenerator) Generate(ctx context.Context, date string) error {
	var products []productWithRule
	err := g.db.WithContext(ctx).
		Table("products p").
		Select("p.sku, p.product_name, r.safety_stock, r.reorder_point, r.max_stock_level").
		Joins("JOIN replenishment_rules r ON p.sku = r.sku").
		Scan(&products).Error
	if err != nil {
		return fmt.Errorf("load products with rules: %w", err)
	}
	if len(products) == 0 {
		return fmt.Errorf("no products with replenishment rules")
	}

	for whNum := 1; whNum <= NumWarehouses; whNum++ {
		warehouseID := fmt.Sprintf("WH%02d", whNum)
		records := g.warehouseStock(warehouseID, date, products)

		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal stock for %s: %w", warehouseID, err)
		}

		key := fmt.Sprintf("%s/%s/stock_%s_%s.json", g.path, date, warehouseID, date)
		if err := g.store.Put(ctx, key, data); err != nil {
			return fmt.Errorf("write stock for %s: %w", warehouseID, err)
		}
	}

	g.log.Info("stock snapshots generated",
		zap.String("date", date),
		zap.Int("warehouses", NumWarehouses),
		zap.Int("skus", len(products)))
	return nil
}

// warehouseStock builds a snapshot biased toward low stock so replenishment
// actually triggers: 30% below safety stock, 20% near the reorder point, the
// rest at normal levels
func (g *StockGenerator) warehouseStock(warehouseID, date string, products []productWithRule) []pipeline.StockRecord {
	records := make([]pipeline.StockRecord, 0, len(products))
	for _, product := range products {
		var available int
		switch band := rand.Float64(); {
		case band < 0.3:
			available = rand.Intn(product.SafetyStock + 1)
		case band < 0.5:
			available = product.SafetyStock + rand.Intn(product.ReorderPoint-product.SafetyStock+1)
		default:
			upper := int(float64(product.MaxStockLevel) * 0.8)
			if upper <= product.ReorderPoint {
				upper = product.ReorderPoint + 1
			}
			available = product.ReorderPoint + rand.Intn(upper-product.ReorderPoint)
		}

		reserved := 0
		if available > 0 {
			reserved = rand.Intn(available/5 + 1)
		}

		records = append(records, pipeline.StockRecord{
			WarehouseID:    warehouseID,
			SKU:            product.SKU,
			ProductName:    product.ProductName,
			AvailableStock: available,
			ReservedStock:  reserved,
			SafetyStock:    product.SafetyStock,
			ReorderPoint:   product.ReorderPoint,
			SnapshotDate:   date,
			SnapshotTime:   fmt.Sprintf("%sT23:00:00", date),
		})
	}
	return records
}
