package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/seatfeed/offer-aggregator/internal/app"
	"github.com/seatfeed/offer-aggregator/internal/config"
	"github.com/seatfeed/offer-aggregator/internal/observability"
	"github.com/seatfeed/offer-aggregator/internal/platform/logging"
	"github.com/seatfeed/offer-aggregator/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", zap.Error(err))
		os.Exit(1)
	}
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exitCode := run(ctx, cfg, logger)

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("shutdown tracing", zap.Error(err))
	}
	if err := stopProfiler(); err != nil {
		logger.Warn("stop profiler", zap.Error(err))
	}

	os.Exit(exitCode)
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger) int {
	aggregator, err := app.NewAggregator(ctx, cfg, logger)
	if err != nil {
		logger.Error("build aggregator", zap.Error(err))
		return 1
	}
	defer func() { _ = aggregator.Close() }()

	result, err := aggregator.Pipeline.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "aggregation run failed", zap.Error(err))
		return 1
	}

	doc := report.Build(result, time.Now())
	writer := report.NewWriter(logger)

	if !cfg.ReportSummaryOnly {
		if err := writer.WriteFile(ctx, doc, cfg.ReportPath); err != nil {
			logger.ErrorContext(ctx, "write report", zap.Error(err))
			return 1
		}
	}
	if err := writer.WriteSummary(doc, os.Stdout); err != nil {
		logger.ErrorContext(ctx, "write summary", zap.Error(err))
		return 1
	}

	return 0
}
