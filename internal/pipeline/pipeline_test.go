package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Yousra-khallou/PipelineProc/internal/storage"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, strings.TrimSuffix(prefix, "/")+"/") {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (s *fakeStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

type fakeResolver struct {
	rules map[string]ProductRule
	err   error
}

func (r *fakeResolver) Resolve(_ context.Context, skus []string) (map[string]ProductRule, error) {
	if r.err != nil {
		return nil, r.err
	}
	resolved := make(map[string]ProductRule)
	for _, sku := range skus {
		if rule, ok := r.rules[sku]; ok {
			resolved[sku] = rule
		}
	}
	return resolved, nil
}

const testDate = "2026-09-01"

func putJSON(t *testing.T, store *fakeStore, key string, value any) {
	t.Helper()
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	store.objects[key] = data
}

func seedInputs(t *testing.T, store *fakeStore) {
	t.Helper()
	putJSON(t, store, "orders/"+testDate+"/orders_STORE001_"+testDate+".json", []OrderRecord{
		{OrderID: "O1", StoreID: "STORE001", SKU: "SKU0001", Quantity: 80, Timestamp: testDate + "T09:00:00"},
	})
	putJSON(t, store, "orders/"+testDate+"/orders_STORE002_"+testDate+".json", []OrderRecord{
		{OrderID: "O2", StoreID: "STORE002", SKU: "SKU0001", Quantity: 40, Timestamp: testDate + "T10:00:00"},
	})
	putJSON(t, store, "stock/"+testDate+"/stock_WH01_"+testDate+".json", []StockRecord{
		{WarehouseID: "WH01", SKU: "SKU0001", AvailableStock: 50, ReservedStock: 10, SnapshotDate: testDate},
	})
}

func testRunner(store *fakeStore, resolver ReferenceResolver) *Runner {
	runner := NewRunner(store, resolver, Options{
		OrdersPath:  "orders",
		StockPath:   "stock",
		OutputPath:  "output",
		LoadWorkers: 2,
	}, zap.NewNop())
	runner.now = func() time.Time {
		return time.Date(2026, 9, 1, 22, 0, 0, 0, time.UTC)
	}
	return runner
}

func TestRunner_EndToEnd(t *testing.T) {
	store := newFakeStore()
	seedInputs(t, store)

	resolver := &fakeResolver{rules: map[string]ProductRule{
		"SKU0001": {SKU: "SKU0001", SupplierID: "SUP001", PackSize: 12, SafetyStock: 30, MOQ: 24},
	}}

	result, err := testRunner(store, resolver).Run(context.Background(), testDate)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.OrdersLoaded != 2 || result.StockLoaded != 1 {
		t.Errorf("unexpected load counts: %+v", result)
	}
	if result.SKUsToOrder != 1 || result.TotalUnits != 120 {
		t.Errorf("expected 1 SKU / 120 units to order, got %d / %d", result.SKUsToOrder, result.TotalUnits)
	}

	// Net demand artifact carries the computed requirement
	data, err := store.Get(context.Background(), "output/net_demand_"+testDate+".json")
	if err != nil {
		t.Fatalf("net demand artifact missing: %v", err)
	}
	var demands []NetDemand
	if err := json.Unmarshal(data, &demands); err != nil {
		t.Fatalf("unmarshal net demand: %v", err)
	}
	if len(demands) != 1 || demands[0].PreliminaryDemand != 110 || demands[0].RoundedDemand != 120 {
		t.Errorf("unexpected net demand: %+v", demands)
	}

	// Supplier order artifact for SUP001
	data, err = store.Get(context.Background(), "output/supplier_orders/"+testDate+"/supplier_SUP001_"+testDate+".json")
	if err != nil {
		t.Fatalf("supplier order artifact missing: %v", err)
	}
	var order SupplierOrder
	if err := json.Unmarshal(data, &order); err != nil {
		t.Fatalf("unmarshal supplier order: %v", err)
	}
	if order.TotalUnits != 120 || len(order.Items) != 1 || order.Items[0].NumPacks != 10 {
		t.Errorf("unexpected supplier order: %+v", order)
	}

	// Clean data: no exception report artifact
	if _, err := store.Get(context.Background(), "output/exceptions_"+testDate+".json"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("exception report should not exist on clean data, got err=%v", err)
	}
}

func TestRunner_Idempotent(t *testing.T) {
	store := newFakeStore()
	seedInputs(t, store)

	resolver := &fakeResolver{rules: map[string]ProductRule{
		"SKU0001": {SKU: "SKU0001", SupplierID: "SUP001", PackSize: 12, SafetyStock: 30, MOQ: 24},
	}}
	runner := testRunner(store, resolver)

	first, err := runner.Run(context.Background(), testDate)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	snapshot := make(map[string][]byte)
	for _, key := range first.Artifacts {
		snapshot[key], _ = store.Get(context.Background(), key)
	}

	second, err := runner.Run(context.Background(), testDate)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if len(first.Artifacts) != len(second.Artifacts) {
		t.Fatalf("artifact sets differ: %v vs %v", first.Artifacts, second.Artifacts)
	}
	for _, key := range second.Artifacts {
		data, err := store.Get(context.Background(), key)
		if err != nil {
			t.Fatalf("artifact %s missing after re-run: %v", key, err)
		}
		if !bytes.Equal(snapshot[key], data) {
			t.Errorf("artifact %s changed between identical runs", key)
		}
	}
}

func TestRunner_MissingPartitionIsFatal(t *testing.T) {
	store := newFakeStore() // nothing seeded
	resolver := &fakeResolver{rules: map[string]ProductRule{}}

	_, err := testRunner(store, resolver).Run(context.Background(), testDate)
	if err == nil {
		t.Fatal("expected an ingestion error for a missing partition")
	}

	var ingestionErr *IngestionError
	if !errors.As(err, &ingestionErr) {
		t.Fatalf("expected IngestionError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrPartitionMissing) {
		t.Errorf("expected ErrPartitionMissing in the chain, got %v", err)
	}

	// Nothing may have been written
	if keys, _ := store.List(context.Background(), "output"); len(keys) != 0 {
		t.Errorf("failed run must not write artifacts, found %v", keys)
	}
}

func TestRunner_MalformedRecordsSkipped(t *testing.T) {
	store := newFakeStore()
	seedInputs(t, store)
	// One record without a store_id and one with negative quantity hide among
	// valid ones in an extra file
	putJSON(t, store, "orders/"+testDate+"/orders_STORE003_"+testDate+".json", []OrderRecord{
		{OrderID: "O3", SKU: "SKU0001", Quantity: 10},
		{OrderID: "O4", StoreID: "STORE003", SKU: "SKU0001", Quantity: -5},
		{OrderID: "O5", StoreID: "STORE003", SKU: "SKU0001", Quantity: 10},
	})

	resolver := &fakeResolver{rules: map[string]ProductRule{
		"SKU0001": {SKU: "SKU0001", SupplierID: "SUP001", PackSize: 12, SafetyStock: 30, MOQ: 24},
	}}

	result, err := testRunner(store, resolver).Run(context.Background(), testDate)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.OrdersLoaded != 3 {
		t.Errorf("expected 3 valid orders after skipping 2 malformed, got %d", result.OrdersLoaded)
	}
}

func TestRunner_ExceptionReportWritten(t *testing.T) {
	store := newFakeStore()
	seedInputs(t, store)
	putJSON(t, store, "stock/"+testDate+"/stock_WH02_"+testDate+".json", []StockRecord{
		{WarehouseID: "WH02", SKU: "SKU0002", AvailableStock: -3, SnapshotDate: testDate},
	})

	resolver := &fakeResolver{rules: map[string]ProductRule{
		"SKU0001": {SKU: "SKU0001", SupplierID: "SUP001", PackSize: 12, SafetyStock: 30, MOQ: 24},
	}}

	if _, err := testRunner(store, resolver).Run(context.Background(), testDate); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	data, err := store.Get(context.Background(), "output/exceptions_"+testDate+".json")
	if err != nil {
		t.Fatalf("exception report missing: %v", err)
	}
	var report ExceptionReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("unmarshal exception report: %v", err)
	}
	if report.TotalExceptions != 1 || report.Exceptions[0].Type != ExceptionNegativeStock {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestRunner_ResolverFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	seedInputs(t, store)

	resolver := &fakeResolver{err: fmt.Errorf("reference store unreachable")}

	_, err := testRunner(store, resolver).Run(context.Background(), testDate)
	if err == nil {
		t.Fatal("expected the run to fail when the reference store is unreachable")
	}
	if keys, _ := store.List(context.Background(), "output"); len(keys) != 0 {
		t.Errorf("failed run must not write artifacts, found %v", keys)
	}
}
