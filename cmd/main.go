package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yousra-khallou/PipelineProc/internal/generator"
	"github.com/Yousra-khallou/PipelineProc/internal/pipeline"
	"github.com/Yousra-khallou/PipelineProc/internal/reference"
	"github.com/Yousra-khallou/PipelineProc/internal/scheduler"
	"github.com/Yousra-khallou/PipelineProc/internal/storage"
	"github.com/Yousra-khallou/PipelineProc/pkg/config"
	"github.com/Yousra-khallou/PipelineProc/pkg/database"
	"github.com/Yousra-khallou/PipelineProc/pkg/logger"
	"github.com/Yousra-khallou/PipelineProc/prometheus"
	"go.uber.org/zap"
)

func main() {
	date := flag.String("date", time.Now().Format("2006-01-02"), "processing date (YYYY-MM-DD)")
	seed := flag.Bool("seed", false, "seed the reference store with synthetic master data and exit")
	generate := flag.Bool("generate", false, "generate synthetic order and stock files for the date before running")
	schedule := flag.Bool("schedule", false, "run as a daemon triggering the pipeline daily")
	flag.Parse()

	// Load configuration
	appConfig, err := config.Load("procurement-pipeline")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting procurement pipeline",
		zap.String("environment", appConfig.Server.Env),
		zap.String("storage_backend", appConfig.Storage.Backend))

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)

	// Initialize reference database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Reference database connection established")

	db := database.GetDB()

	if *seed {
		if err := generator.SeedMasterData(db, 0, 0, log); err != nil {
			log.Fatal("Failed to seed master data", zap.Error(err))
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the ingestion/result store
	store, err := newStore(ctx, appConfig)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}

	stockPolicy, err := pipeline.ParseStockPolicy(appConfig.Pipeline.StockPolicy)
	if err != nil {
		log.Fatal("Invalid pipeline configuration", zap.Error(err))
	}

	resolver := reference.NewResolver(db)
	runner := pipeline.NewRunner(store, resolver, pipeline.Options{
		OrdersPath:          appConfig.Storage.OrdersPath,
		StockPath:           appConfig.Storage.StockPath,
		OutputPath:          appConfig.Storage.OutputPath,
		LoadWorkers:         appConfig.Pipeline.LoadWorkers,
		HighDemandThreshold: appConfig.Pipeline.HighDemandThreshold,
		StockPolicy:         stockPolicy,
	}, log)

	orderGen := generator.NewOrderGenerator(db, store, appConfig.Storage.OrdersPath, log)
	stockGen := generator.NewStockGenerator(db, store, appConfig.Storage.StockPath, log)

	job := func(ctx context.Context, date string) (*pipeline.RunResult, error) {
		if *generate || (*schedule && appConfig.Scheduler.GenerateData) {
			if err := orderGen.Generate(ctx, date); err != nil {
				return nil, err
			}
			if err := stockGen.Generate(ctx, date); err != nil {
				return nil, err
			}
		}
		return runner.Run(ctx, date)
	}

	if *schedule {
		if err := scheduler.New(appConfig, job, log).Start(ctx); err != nil && err != context.Canceled {
			log.Fatal("Scheduler failed", zap.Error(err))
		}
		return
	}

	result, err := job(ctx, *date)
	if err != nil {
		log.Fatal("Pipeline run failed", zap.String("date", *date), zap.Error(err))
	}

	log.Info("Run artifacts written",
		zap.String("date", result.Date),
		zap.Strings("artifacts", result.Artifacts))
}

// newStore builds the configured storage backend
func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Backend == "minio" {
		return storage.NewMinioStore(ctx, &cfg.Storage)
	}
	return storage.NewLocalStore(cfg.Storage.BasePath), nil
}
