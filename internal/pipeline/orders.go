package pipeline

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BuildSupplierOrders groups positive net requirements by supplier and emits
// one purchase order per supplier. Suppliers with nothing to order get no
// order at all. Orders and their items are sorted for deterministic output.
func BuildSupplierOrders(demands []NetDemand, rules map[string]ProductRule, date string, now time.Time) []SupplierOrder {
	bySupplier := make(map[string][]NetDemand)
	for _, demand := range demands {
		if demand.RoundedDemand <= 0 {
			continue
		}
		bySupplier[demand.SupplierID] = append(bySupplier[demand.SupplierID], demand)
	}

	supplierIDs := make([]string, 0, len(bySupplier))
	for supplierID := range bySupplier {
		supplierIDs = append(supplierIDs, supplierID)
	}
	sort.Strings(supplierIDs)

	generatedAt := now.Format(time.RFC3339)

	orders := make([]SupplierOrder, 0, len(supplierIDs))
	for _, supplierID := range supplierIDs {
		lines := bySupplier[supplierID]
		sort.Slice(lines, func(i, j int) bool { return lines[i].SKU < lines[j].SKU })

		order := SupplierOrder{
			SupplierID:  supplierID,
			OrderDate:   date,
			GeneratedAt: generatedAt,
			TotalItems:  len(lines),
			Items:       make([]OrderItem, 0, len(lines)),
		}

		for _, line := range lines {
			item := OrderItem{
				SKU:      line.SKU,
				Quantity: line.RoundedDemand,
				PackSize: line.PackSize,
				// Full packs only; the MOQ floor can leave a remainder
				NumPacks: line.RoundedDemand / line.PackSize,
			}
			if rule, ok := rules[line.SKU]; ok {
				item.LineCost = rule.UnitCost.Mul(decimal.NewFromInt(int64(line.RoundedDemand)))
			}

			order.TotalUnits += item.Quantity
			order.TotalCost = order.TotalCost.Add(item.LineCost)
			order.Items = append(order.Items, item)
		}

		orders = append(orders, order)
	}

	return orders
}
