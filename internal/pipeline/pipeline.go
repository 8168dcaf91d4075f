// Package pipeline implements the daily supplier replenishment computation:
// it aggregates point-of-sale demand, nets it against warehouse stock and
// replenishment rules, emits per-supplier purchase orders and reports the
// anomalies that need human review.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Yousra-khallou/PipelineProc/internal/storage"
	"github.com/Yousra-khallou/PipelineProc/prometheus"
	"go.uber.org/zap"
)

// ReferenceResolver supplies replenishment rules for the SKUs that actually
// traded on the processing date
type ReferenceResolver interface {
	Resolve(ctx context.Context, skus []string) (map[string]ProductRule, error)
}

// Options tunes a Runner
type Options struct {
	OrdersPath          string
	StockPath           string
	OutputPath          string
	LoadWorkers         int
	HighDemandThreshold int
	StockPolicy         StockPolicy
}

// Runner executes the full computation for one processing date
type Runner struct {
	store    storage.Store
	resolver ReferenceResolver
	opts     Options
	log      *zap.Logger
	now      func() time.Time
}

// NewRunner wires a runner from its collaborators
func NewRunner(store storage.Store, resolver ReferenceResolver, opts Options, log *zap.Logger) *Runner {
	if opts.HighDemandThreshold <= 0 {
		opts.HighDemandThreshold = 500
	}
	if opts.StockPolicy == "" {
		opts.StockPolicy = StockFirstSeen
	}
	return &Runner{
		store:    store,
		resolver: resolver,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// RunResult summarizes a completed run
type RunResult struct {
	Date           string        `json:"date"`
	Duration       time.Duration `json:"duration"`
	OrdersLoaded   int           `json:"orders_loaded"`
	StockLoaded    int           `json:"stock_loaded"`
	SKUsAggregated int           `json:"skus_aggregated"`
	SKUsToOrder    int           `json:"skus_to_order"`
	TotalUnits     int           `json:"total_units"`
	SupplierOrders int           `json:"supplier_orders"`
	Exceptions     int           `json:"exceptions"`
	Artifacts      []string      `json:"artifacts"`
}

// Run executes the pipeline for the given date (YYYY-MM-DD). The run is
// idempotent: identical inputs produce identical artifacts, and artifacts are
// only written once every stage has succeeded.
func (r *Runner) Run(ctx context.Context, date string) (*RunResult, error) {
	started := r.now()
	log := r.log.With(zap.String("date", date))
	log.Info("pipeline run started")

	loader := NewLoader(r.store, r.opts.OrdersPath, r.opts.StockPath, r.opts.LoadWorkers, log)
	orders, stock, err := loader.Load(ctx, date)
	if err != nil {
		prometheus.RecordRun("failed", time.Since(started))
		return nil, err
	}

	aggregated := Aggregate(orders)
	log.Info("demand aggregated", zap.Int("skus", len(aggregated)))

	skus := make([]string, 0, len(aggregated))
	for sku := range aggregated {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	rules, err := r.resolver.Resolve(ctx, skus)
	if err != nil {
		prometheus.RecordRun("failed", time.Since(started))
		return nil, fmt.Errorf("resolve reference data: %w", err)
	}

	stockIndex := BuildStockIndex(stock, r.opts.StockPolicy)

	demands, gap := ComputeNetDemand(aggregated, stockIndex, rules)
	for _, sku := range gap.MissingRule {
		log.Warn("sku has no replenishment rule, excluded from net demand",
			zap.String("sku", sku))
	}
	for _, sku := range gap.MissingStock {
		log.Warn("sku has no stock snapshot, excluded from net demand",
			zap.String("sku", sku))
	}

	supplierOrders := BuildSupplierOrders(demands, rules, date, started)
	exceptions := DetectExceptions(demands, stock, gap, r.opts.HighDemandThreshold)

	result := &RunResult{
		Date:           date,
		OrdersLoaded:   len(orders),
		StockLoaded:    len(stock),
		SKUsAggregated: len(aggregated),
		SupplierOrders: len(supplierOrders),
		Exceptions:     len(exceptions),
	}
	for _, demand := range demands {
		if demand.RoundedDemand > 0 {
			result.SKUsToOrder++
			result.TotalUnits += demand.RoundedDemand
		}
	}

	// Stage every artifact in memory before the first write so a marshalling
	// failure cannot leave a partial output partition behind.
	artifacts, err := r.stageArtifacts(date, started, aggregated, demands, supplierOrders, exceptions)
	if err != nil {
		prometheus.RecordRun("failed", time.Since(started))
		return nil, err
	}

	keys := make([]string, 0, len(artifacts))
	for key := range artifacts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := r.store.Put(ctx, key, artifacts[key]); err != nil {
			prometheus.RecordRun("failed", time.Since(started))
			return nil, fmt.Errorf("write artifact %s: %w", key, err)
		}
	}
	result.Artifacts = keys

	for _, exception := range exceptions {
		prometheus.RecordException(exception.Type, exception.Count)
		log.Warn("exception detected",
			zap.String("type", exception.Type),
			zap.String("severity", exception.Severity),
			zap.Int("count", exception.Count))
	}

	result.Duration = time.Since(started)
	prometheus.RecordRun("success", result.Duration)
	prometheus.RecordSupplierOrders(len(supplierOrders))

	log.Info("pipeline run completed",
		zap.Duration("duration", result.Duration),
		zap.Int("skus_to_order", result.SKUsToOrder),
		zap.Int("total_units", result.TotalUnits),
		zap.Int("supplier_orders", result.SupplierOrders),
		zap.Int("exceptions", result.Exceptions))

	return result, nil
}

// stageArtifacts marshals every output artifact keyed by its storage path
func (r *Runner) stageArtifacts(
	date string,
	started time.Time,
	aggregated map[string]AggregatedDemand,
	demands []NetDemand,
	supplierOrders []SupplierOrder,
	exceptions []Exception,
) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)

	aggregatedList := make([]AggregatedDemand, 0, len(aggregated))
	for _, demand := range aggregated {
		aggregatedList = append(aggregatedList, demand)
	}
	sort.Slice(aggregatedList, func(i, j int) bool {
		return aggregatedList[i].SKU < aggregatedList[j].SKU
	})

	out := r.opts.OutputPath

	data, err := json.MarshalIndent(aggregatedList, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal aggregated demand: %w", err)
	}
	artifacts[fmt.Sprintf("%s/aggregated_orders_%s.json", out, date)] = data

	data, err = json.MarshalIndent(demands, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal net demand: %w", err)
	}
	artifacts[fmt.Sprintf("%s/net_demand_%s.json", out, date)] = data

	for _, order := range supplierOrders {
		data, err = json.MarshalIndent(order, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal supplier order %s: %w", order.SupplierID, err)
		}
		key := fmt.Sprintf("%s/supplier_orders/%s/supplier_%s_%s.json", out, date, order.SupplierID, date)
		artifacts[key] = data
	}

	// The exception report is only written when something triggered
	if len(exceptions) > 0 {
		report := ExceptionReport{
			Date:            date,
			Timestamp:       started.Format(time.RFC3339),
			TotalExceptions: len(exceptions),
			Exceptions:      exceptions,
		}
		data, err = json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal exception report: %w", err)
		}
		artifacts[fmt.Sprintf("%s/exceptions_%s.json", out, date)] = data
	}

	return artifacts, nil
}
