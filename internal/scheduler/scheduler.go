// Package scheduler runs the replenishment pipeline on a daily schedule and
// exposes the operational HTTP surface (health, metrics, manual trigger).
package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	mid "github.com/Yousra-khallou/PipelineProc/internal/middleware"
	"github.com/Yousra-khallou/PipelineProc/internal/pipeline"
	"github.com/Yousra-khallou/PipelineProc/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RunFunc executes the whole daily job (data generation if enabled, then the
// pipeline) for one processing date
type RunFunc func(ctx context.Context, date string) (*pipeline.RunResult, error)

// Scheduler triggers the job once per day at the configured time
type Scheduler struct {
	cfg *config.Config
	run RunFunc
	log *zap.Logger

	mu      sync.Mutex
	running bool
	lastDay string
}

// New creates a scheduler around the given job
func New(cfg *config.Config, run RunFunc, log *zap.Logger) *Scheduler {
	return &Scheduler{cfg: cfg, run: run, log: log}
}

// Start blocks, polling the clock and serving HTTP until the context is
// cancelled
func (s *Scheduler) Start(ctx context.Context) error {
	runAt, err := time.Parse("15:04", s.cfg.Scheduler.RunAt)
	if err != nil {
		return fmt.Errorf("invalid SCHEDULER_RUN_AT %q: %w", s.cfg.Scheduler.RunAt, err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "healthy",
			"service": s.cfg.ServiceName,
		})
	})
	e.POST("/run", s.handleRun)

	go func() {
		if err := e.Start(":" + s.cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			s.log.Error("http server stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		e.Shutdown(shutdownCtx)
	}()

	s.log.Info("scheduler started",
		zap.String("run_at", s.cfg.Scheduler.RunAt),
		zap.Duration("check_interval", s.cfg.Scheduler.CheckInterval),
		zap.String("port", s.cfg.Server.Port))

	ticker := time.NewTicker(s.cfg.Scheduler.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return ctx.Err()
		case now := <-ticker.C:
			s.maybeTrigger(ctx, now, runAt)
		}
	}
}

// maybeTrigger fires the daily job once the scheduled time has passed and the
// job has not run yet today
func (s *Scheduler) maybeTrigger(ctx context.Context, now time.Time, runAt time.Time) {
	today := now.Format("2006-01-02")
	scheduled := time.Date(now.Year(), now.Month(), now.Day(),
		runAt.Hour(), runAt.Minute(), 0, 0, now.Location())

	s.mu.Lock()
	due := now.After(scheduled) && s.lastDay != today && !s.running
	if due {
		s.lastDay = today
		s.running = true
	}
	s.mu.Unlock()

	if !due {
		return
	}

	s.log.Info("daily run triggered", zap.String("date", today))
	if _, err := s.run(ctx, today); err != nil {
		s.log.Error("daily run failed", zap.String("date", today), zap.Error(err))
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// handleRun executes the pipeline on demand for an arbitrary date
func (s *Scheduler) handleRun(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "date must be YYYY-MM-DD",
		})
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "a run is already in progress",
		})
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	result, err := s.run(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, result)
}
