package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/Yousra-khallou/PipelineProc/internal/model"
	"github.com/Yousra-khallou/PipelineProc/internal/pipeline"
	"github.com/Yousra-khallou/PipelineProc/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NumStores is the number of simulated points of sale
const NumStores = 5

// OrderGenerator fabricates daily point-of-sale order files
type OrderGenerator struct {
	db    *gorm.DB
	store storage.Store
	path  string
	log   *zap.Logger
}

// NewOrderGenerator wires a generator writing under the given orders prefix
func NewOrderGenerator(db *gorm.DB, store storage.Store, path string, log *zap.Logger) *OrderGenerator {
	return &OrderGenerator{db: db, store: store, path: path, log: log}
}

// Generate writes one order file per store for the given date
func (g *OrderGenerator) Generate(ctx context.Context, date string) error {
	var products []model.Product
	err := g.db.WithContext(ctx).
		Joins("JOIN suppliers s ON products.supplier_id = s.supplier_id").
		Where("s.active = ?", true).
		Find(&products).Error
	if err != nil {
		return fmt.Errorf("load active products: %w", err)
	}
	if len(products) == 0 {
		return fmt.Errorf("no active products to generate orders for")
	}

	totalOrders := 0
	for storeNum := 1; storeNum <= NumStores; storeNum++ {
		storeID := fmt.Sprintf("STORE%03d", storeNum)
		orders := g.storeOrders(storeID, date, products)

		data, err := json.MarshalIndent(orders, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal orders for %s: %w", storeID, err)
		}

		key := fmt.Sprintf("%s/%s/orders_%s_%s.json", g.path, date, storeID, date)
		if err := g.store.Put(ctx, key, data); err != nil {
			return fmt.Errorf("write orders for %s: %w", storeID, err)
		}
		totalOrders += len(orders)
	}

	g.log.Info("order files generated",
		zap.String("date", date),
		zap.Int("stores", NumStores),
		zap.Int("orders", totalOrders))
	return nil
}

// storeOrders builds the day's sales for one store: each store sells between
// 30% and 70% of the catalog, perishables in smaller quantities
func (g *OrderGenerator) storeOrders(storeID, date string, products []model.Product) []pipeline.OrderRecord {
	shuffled := make([]model.Product, len(products))
	copy(shuffled, products)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	low := int(float64(len(shuffled)) * 0.3)
	high := int(float64(len(shuffled)) * 0.7)
	count := low
	if high > low {
		count += rand.Intn(high - low)
	}

	orders := make([]pipeline.OrderRecord, 0, count)
	for _, product := range shuffled[:count] {
		baseQty := 10 + rand.Intn(71)
		if product.Perishable {
			baseQty = 5 + rand.Intn(26)
		}
		// ±30% variation
		quantity := int(float64(baseQty) * (0.7 + rand.Float64()*0.6))

		orders = append(orders, pipeline.OrderRecord{
			OrderID:     fmt.Sprintf("ORD-%s-%s-%s", storeID, date, uuid.NewString()[:8]),
			StoreID:     storeID,
			SKU:         product.SKU,
			ProductName: product.ProductName,
			Quantity:    quantity,
			Category:    product.Category,
			Timestamp:   fmt.Sprintf("%sT%02d:%02d:00", date, 8+rand.Intn(15), rand.Intn(60)),
		})
	}
	return orders
}
