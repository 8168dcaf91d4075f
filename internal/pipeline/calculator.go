package pipeline

import (
	"fmt"
	"sort"
)

// StockPolicy decides how multiple warehouse snapshots for the same SKU are
// combined into the single stock figure the calculator uses.
type StockPolicy string

const (
	// StockFirstSeen keeps the first record encountered per SKU. This is the
	// historical behavior; whether it should be a sum is an open question with
	// the system owner.
	StockFirstSeen StockPolicy = "first-seen"
	// StockSum adds available and reserved stock across warehouses
	StockSum StockPolicy = "sum"
	// StockMax keeps the record with the highest available stock
	StockMax StockPolicy = "max"
)

// ParseStockPolicy validates a configured policy name
func ParseStockPolicy(name string) (StockPolicy, error) {
	switch StockPolicy(name) {
	case StockFirstSeen, StockSum, StockMax:
		return StockPolicy(name), nil
	case "":
		return StockFirstSeen, nil
	}
	return "", fmt.Errorf("unknown stock aggregation policy %q", name)
}

// BuildStockIndex folds the raw warehouse snapshots into one record per SKU
// according to the policy
func BuildStockIndex(records []StockRecord, policy StockPolicy) map[string]StockRecord {
	index := make(map[string]StockRecord)

	for _, record := range records {
		existing, ok := index[record.SKU]
		if !ok {
			index[record.SKU] = record
			continue
		}

		switch policy {
		case StockSum:
			existing.AvailableStock += record.AvailableStock
			existing.ReservedStock += record.ReservedStock
			index[record.SKU] = existing
		case StockMax:
			if record.AvailableStock > existing.AvailableStock {
				index[record.SKU] = record
			}
		default:
			// first-seen: keep what we have
		}
	}

	return index
}

// ReconciliationGap lists the SKUs that had demand but could not be planned.
// It is computed once here and shared with the exception detector, which
// reports the missing-stock side as MISSING_STOCK_DATA.
type ReconciliationGap struct {
	MissingStock []string
	MissingRule  []string
}

// Empty reports whether no SKU was skipped
func (g ReconciliationGap) Empty() bool {
	return len(g.MissingStock) == 0 && len(g.MissingRule) == 0
}

// ComputeNetDemand turns aggregated demand into per-SKU replenishment
// requirements. A SKU missing stock or rule data is excluded and recorded in
// the returned gap. Results are sorted by SKU so re-runs produce identical
// artifacts.
func ComputeNetDemand(
	aggregated map[string]AggregatedDemand,
	stockBySKU map[string]StockRecord,
	rules map[string]ProductRule,
) ([]NetDemand, ReconciliationGap) {
	skus := make([]string, 0, len(aggregated))
	for sku := range aggregated {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	demands := make([]NetDemand, 0, len(skus))
	var gap ReconciliationGap

	for _, sku := range skus {
		stock, hasStock := stockBySKU[sku]
		rule, hasRule := rules[sku]

		if !hasStock {
			gap.MissingStock = append(gap.MissingStock, sku)
		}
		if !hasRule {
			gap.MissingRule = append(gap.MissingRule, sku)
		}
		if !hasStock || !hasRule {
			continue
		}

		demand := aggregated[sku]

		// Order enough to cover today's demand plus the safety buffer, net of
		// stock not already committed to reservations.
		preliminary := demand.TotalQuantity + rule.SafetyStock - (stock.AvailableStock - stock.ReservedStock)
		if preliminary < 0 {
			preliminary = 0
		}

		rounded := 0
		if preliminary > 0 {
			packs := (preliminary + rule.PackSize - 1) / rule.PackSize
			rounded = packs * rule.PackSize

			// MOQ is applied after pack rounding and may itself break pack
			// alignment when the MOQ is not a pack multiple.
			if rounded < rule.MOQ {
				rounded = rule.MOQ
			}
		}

		demands = append(demands, NetDemand{
			SKU:               sku,
			SupplierID:        rule.SupplierID,
			AggregatedOrders:  demand.TotalQuantity,
			AvailableStock:    stock.AvailableStock,
			ReservedStock:     stock.ReservedStock,
			SafetyStock:       rule.SafetyStock,
			PreliminaryDemand: preliminary,
			PackSize:          rule.PackSize,
			RoundedDemand:     rounded,
			MOQ:               rule.MOQ,
		})
	}

	return demands, gap
}
