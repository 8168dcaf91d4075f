package pipeline

// maxReportedSKUs caps the missing-stock payload; the count still reflects
// every affected SKU.
const maxReportedSKUs = 10

// DetectExceptions runs the three anomaly checks. Each check contributes at
// most one entry; a clean day yields an empty slice and no report artifact.
// The missing-stock set comes from the calculator's reconciliation gap so it
// is not derived twice.
func DetectExceptions(
	demands []NetDemand,
	rawStock []StockRecord,
	gap ReconciliationGap,
	highDemandThreshold int,
) []Exception {
	var exceptions []Exception

	// SKUs ordered today with no stock snapshot anywhere
	if len(gap.MissingStock) > 0 {
		reported := gap.MissingStock
		if len(reported) > maxReportedSKUs {
			reported = reported[:maxReportedSKUs]
		}
		exceptions = append(exceptions, Exception{
			Type:     ExceptionMissingStockData,
			Severity: SeverityHigh,
			Count:    len(gap.MissingStock),
			SKUs:     reported,
		})
	}

	// Unusually high aggregated demand. The threshold is a policy constant,
	// not derived from historical statistics.
	var highDemand []ExceptionDetail
	for _, demand := range demands {
		if demand.AggregatedOrders > highDemandThreshold {
			highDemand = append(highDemand, ExceptionDetail{
				SKU:      demand.SKU,
				Quantity: demand.AggregatedOrders,
			})
		}
	}
	if len(highDemand) > 0 {
		exceptions = append(exceptions, Exception{
			Type:     ExceptionHighDemand,
			Severity: SeverityMedium,
			Count:    len(highDemand),
			Details:  highDemand,
		})
	}

	// Negative available stock in any raw warehouse snapshot
	var negativeStock []ExceptionDetail
	for _, record := range rawStock {
		if record.AvailableStock < 0 {
			negativeStock = append(negativeStock, ExceptionDetail{
				SKU:   record.SKU,
				Stock: record.AvailableStock,
			})
		}
	}
	if len(negativeStock) > 0 {
		exceptions = append(exceptions, Exception{
			Type:     ExceptionNegativeStock,
			Severity: SeverityCritical,
			Count:    len(negativeStock),
			Details:  negativeStock,
		})
	}

	return exceptions
}
