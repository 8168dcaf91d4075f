package pipeline

// Aggregate collapses the day's order records by SKU. The result is
// independent of input order: all three measures are commutative.
func Aggregate(orders []OrderRecord) map[string]AggregatedDemand {
	totals := make(map[string]AggregatedDemand)
	stores := make(map[string]map[string]struct{})

	for _, order := range orders {
		agg := totals[order.SKU]
		agg.SKU = order.SKU
		agg.TotalQuantity += order.Quantity
		agg.NumOrders++

		seen, ok := stores[order.SKU]
		if !ok {
			seen = make(map[string]struct{})
			stores[order.SKU] = seen
		}
		seen[order.StoreID] = struct{}{}
		agg.NumStores = len(seen)

		totals[order.SKU] = agg
	}

	return totals
}
