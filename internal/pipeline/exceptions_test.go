package pipeline

import (
	"fmt"
	"testing"
)

func TestDetectExceptions_CleanData(t *testing.T) {
	demands := []NetDemand{
		{SKU: "SKU0001", AggregatedOrders: 100},
	}
	stock := []StockRecord{
		{SKU: "SKU0001", AvailableStock: 50},
	}

	exceptions := DetectExceptions(demands, stock, ReconciliationGap{}, 500)
	if len(exceptions) != 0 {
		t.Fatalf("expected no exceptions on clean data, got %+v", exceptions)
	}
}

// A single negative-stock record in otherwise clean data must yield exactly
// one CRITICAL entry and nothing else
func TestDetectExceptions_NegativeStockIsolated(t *testing.T) {
	demands := []NetDemand{
		{SKU: "SKU0001", AggregatedOrders: 100},
	}
	stock := []StockRecord{
		{SKU: "SKU0001", WarehouseID: "WH01", AvailableStock: 50},
		{SKU: "SKU0002", WarehouseID: "WH01", AvailableStock: -7},
	}

	exceptions := DetectExceptions(demands, stock, ReconciliationGap{}, 500)

	if len(exceptions) != 1 {
		t.Fatalf("expected exactly 1 exception, got %d", len(exceptions))
	}
	exception := exceptions[0]
	if exception.Type != ExceptionNegativeStock {
		t.Errorf("expected %s, got %s", ExceptionNegativeStock, exception.Type)
	}
	if exception.Severity != SeverityCritical {
		t.Errorf("expected severity %s, got %s", SeverityCritical, exception.Severity)
	}
	if exception.Count != 1 {
		t.Errorf("expected count 1, got %d", exception.Count)
	}
	if len(exception.Details) != 1 || exception.Details[0].SKU != "SKU0002" || exception.Details[0].Stock != -7 {
		t.Errorf("unexpected details: %+v", exception.Details)
	}
}

func TestDetectExceptions_HighDemand(t *testing.T) {
	demands := []NetDemand{
		{SKU: "SKU0001", AggregatedOrders: 501},
		{SKU: "SKU0002", AggregatedOrders: 500}, // at the threshold, not over
		{SKU: "SKU0003", AggregatedOrders: 1200},
	}

	exceptions := DetectExceptions(demands, nil, ReconciliationGap{}, 500)

	if len(exceptions) != 1 {
		t.Fatalf("expected 1 exception, got %d", len(exceptions))
	}
	exception := exceptions[0]
	if exception.Type != ExceptionHighDemand || exception.Severity != SeverityMedium {
		t.Errorf("unexpected classification: %+v", exception)
	}
	if exception.Count != 2 || len(exception.Details) != 2 {
		t.Errorf("expected 2 offending SKUs, got count=%d details=%d", exception.Count, len(exception.Details))
	}
}

func TestDetectExceptions_MissingStockTruncation(t *testing.T) {
	var missing []string
	for i := 1; i <= 14; i++ {
		missing = append(missing, fmt.Sprintf("SKU%04d", i))
	}

	exceptions := DetectExceptions(nil, nil, ReconciliationGap{MissingStock: missing}, 500)

	if len(exceptions) != 1 {
		t.Fatalf("expected 1 exception, got %d", len(exceptions))
	}
	exception := exceptions[0]
	if exception.Type != ExceptionMissingStockData || exception.Severity != SeverityHigh {
		t.Errorf("unexpected classification: %+v", exception)
	}
	if exception.Count != 14 {
		t.Errorf("count must reflect every affected SKU, got %d", exception.Count)
	}
	if len(exception.SKUs) != 10 {
		t.Errorf("payload must be capped at 10 SKUs, got %d", len(exception.SKUs))
	}
}

func TestDetectExceptions_AllThreeClasses(t *testing.T) {
	demands := []NetDemand{
		{SKU: "SKU0001", AggregatedOrders: 800},
	}
	stock := []StockRecord{
		{SKU: "SKU0002", AvailableStock: -1},
	}
	gap := ReconciliationGap{MissingStock: []string{"SKU0003"}}

	exceptions := DetectExceptions(demands, stock, gap, 500)

	if len(exceptions) != 3 {
		t.Fatalf("expected all 3 exception classes, got %d", len(exceptions))
	}
	types := map[string]bool{}
	for _, exception := range exceptions {
		types[exception.Type] = true
	}
	for _, want := range []string{ExceptionMissingStockData, ExceptionHighDemand, ExceptionNegativeStock} {
		if !types[want] {
			t.Errorf("missing exception class %s", want)
		}
	}
}
