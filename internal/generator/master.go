// Package generator produces synthetic master data, order files and stock
// snapshots for development and rehearsal runs.
package generator

import (
	"fmt"
	"math/rand"

	"github.com/Yousra-khallou/PipelineProc/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var categories = []string{
	"Fruits", "Vegetables", "Dairy", "Meat", "Fish",
	"Grocery", "Beverages", "Frozen", "Bakery", "Hygiene",
}

var perishableCategories = map[string]bool{
	"Fruits": true, "Vegetables": true, "Dairy": true, "Meat": true, "Fish": true,
}

// SeedMasterData fills the reference store with suppliers, products and
// replenishment rules. Existing rows are left untouched so reseeding is safe.
func SeedMasterData(db *gorm.DB, numSuppliers, numProducts int, log *zap.Logger) error {
	if numSuppliers <= 0 {
		numSuppliers = 15
	}
	if numProducts <= 0 {
		numProducts = 200
	}

	suppliers := make([]model.Supplier, 0, numSuppliers)
	for i := 1; i <= numSuppliers; i++ {
		suppliers = append(suppliers, model.Supplier{
			SupplierID:       fmt.Sprintf("SUP%03d", i),
			SupplierName:     fmt.Sprintf("Supplier %03d", i),
			LeadTimeDays:     1 + rand.Intn(5),
			MinOrderQuantity: []int{12, 24, 36, 48}[rand.Intn(4)],
			ContactEmail:     fmt.Sprintf("orders@supplier%03d.example.com", i),
			Active:           true,
		})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&suppliers).Error; err != nil {
		return fmt.Errorf("seed suppliers: %w", err)
	}

	products := make([]model.Product, 0, numProducts)
	rules := make([]model.ReplenishmentRule, 0, numProducts)
	for i := 1; i <= numProducts; i++ {
		sku := fmt.Sprintf("SKU%04d", i)
		category := categories[rand.Intn(len(categories))]

		products = append(products, model.Product{
			SKU:         sku,
			ProductName: fmt.Sprintf("Product %04d", i),
			SupplierID:  suppliers[rand.Intn(len(suppliers))].SupplierID,
			PackSize:    []int{6, 12, 24, 48}[rand.Intn(4)],
			UnitCost:    decimal.NewFromFloat(0.5 + rand.Float64()*49.5).Round(2),
			Category:    category,
			Perishable:  perishableCategories[category],
		})

		safetyStock := 20 + rand.Intn(81)
		reorderPoint := safetyStock + 50 + rand.Intn(101)
		rules = append(rules, model.ReplenishmentRule{
			SKU:           sku,
			SafetyStock:   safetyStock,
			ReorderPoint:  reorderPoint,
			MaxStockLevel: reorderPoint + 200 + rand.Intn(301),
		})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error; err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rules).Error; err != nil {
		return fmt.Errorf("seed replenishment rules: %w", err)
	}

	log.Info("master data seeded",
		zap.Int("suppliers", len(suppliers)),
		zap.Int("products", len(products)),
		zap.Int("rules", len(rules)))
	return nil
}
