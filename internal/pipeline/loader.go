package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Yousra-khallou/PipelineProc/internal/storage"
	"github.com/Yousra-khallou/PipelineProc/prometheus"
	"go.uber.org/zap"
)

// Loader reads the day's order and stock files from the ingestion source.
// Files are independent and read concurrently; the aggregation downstream is
// order-independent so the merge order does not matter.
type Loader struct {
	store      storage.Store
	ordersPath string
	stockPath  string
	workers    int
	log        *zap.Logger
}

// NewLoader creates a loader reading under the given prefixes
func NewLoader(store storage.Store, ordersPath, stockPath string, workers int, log *zap.Logger) *Loader {
	if workers <= 0 {
		workers = 1
	}
	return &Loader{
		store:      store,
		ordersPath: ordersPath,
		stockPath:  stockPath,
		workers:    workers,
		log:        log,
	}
}

// Load reads every order file and every stock file for the processing date.
// A missing date partition is fatal; individual malformed records are skipped
// with a warning.
func (l *Loader) Load(ctx context.Context, date string) ([]OrderRecord, []StockRecord, error) {
	orders, err := loadFiles(ctx, l, l.ordersPath, date, "orders", l.validOrder)
	if err != nil {
		return nil, nil, err
	}

	stock, err := loadFiles(ctx, l, l.stockPath, date, "stock", l.validStock)
	if err != nil {
		return nil, nil, err
	}

	l.log.Info("input loaded",
		zap.String("date", date),
		zap.Int("orders", len(orders)),
		zap.Int("stock_records", len(stock)))
	prometheus.RecordLoaded("orders", len(orders))
	prometheus.RecordLoaded("stock", len(stock))

	return orders, stock, nil
}

// loadFiles lists the date partition under prefix and parses every file with
// a bounded worker pool
func loadFiles[T any](ctx context.Context, l *Loader, prefix, date, source string, valid func(T) error) ([]T, error) {
	partition := fmt.Sprintf("%s/%s", prefix, date)

	keys, err := l.store.List(ctx, partition)
	if err != nil {
		return nil, &IngestionError{Source: source, Date: date, Err: err}
	}
	if len(keys) == 0 {
		return nil, &IngestionError{Source: source, Date: date, Err: ErrPartitionMissing}
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		records  []T
		firstErr error
	)

	sem := make(chan struct{}, l.workers)
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			data, err := l.store.Get(ctx, key)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("read %s: %w", key, err)
				}
				mu.Unlock()
				return
			}

			var fileRecords []T
			if err := json.Unmarshal(data, &fileRecords); err != nil {
				// One unreadable file does not abort the run
				l.log.Warn("skipping malformed input file",
					zap.String("key", key), zap.Error(err))
				prometheus.RecordSkipped(source)
				return
			}

			kept := fileRecords[:0]
			for _, record := range fileRecords {
				if err := valid(record); err != nil {
					l.log.Warn("skipping malformed record",
						zap.String("key", key), zap.Error(err))
					prometheus.RecordSkipped(source)
					continue
				}
				kept = append(kept, record)
			}

			mu.Lock()
			records = append(records, kept...)
			mu.Unlock()
		}(key)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, &IngestionError{Source: source, Date: date, Err: firstErr}
	}
	return records, nil
}

func (l *Loader) validOrder(r OrderRecord) error {
	switch {
	case r.OrderID == "":
		return fmt.Errorf("order record missing order_id")
	case r.StoreID == "":
		return fmt.Errorf("order %s missing store_id", r.OrderID)
	case r.SKU == "":
		return fmt.Errorf("order %s missing sku", r.OrderID)
	case r.Quantity < 0:
		return fmt.Errorf("order %s has negative quantity %d", r.OrderID, r.Quantity)
	}
	return nil
}

func (l *Loader) validStock(r StockRecord) error {
	switch {
	case r.WarehouseID == "":
		return fmt.Errorf("stock record missing warehouse_id")
	case r.SKU == "":
		return fmt.Errorf("stock record from %s missing sku", r.WarehouseID)
	case r.ReservedStock < 0:
		return fmt.Errorf("stock record for %s has negative reserved_stock %d", r.SKU, r.ReservedStock)
	}
	// Negative available_stock is intentionally accepted here: it is a
	// business anomaly reported by the exception detector, not a parse error.
	return nil
}
