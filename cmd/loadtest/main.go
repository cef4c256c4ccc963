// Package main provides the entry point for the load-test driver binary: it
// loads configuration, constructs the selected workload, runs the driver to
// completion, and prints the resulting JSON report to stdout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brokle-loadtest/internal/config"
	"brokle-loadtest/internal/driver"
	"brokle-loadtest/internal/ledger/sink"
	"brokle-loadtest/internal/metrics"
	"brokle-loadtest/internal/workload"
	"brokle-loadtest/internal/workload/httpworkload"
	"brokle-loadtest/internal/workload/ledgerworkload"
	"brokle-loadtest/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.NewLoggerWithFormat(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)

	work, err := buildWorkload(cfg.Workload)
	if err != nil {
		log.Fatalf("failed to construct workload: %v", err)
	}

	driverCfg := driver.Config{
		Concurrency:                cfg.Driver.Concurrency,
		TargetRequestRatePerSecond: cfg.Driver.TargetRequestRatePerSecond,
		Duration:                   time.Duration(cfg.Driver.DurationSeconds * float64(time.Second)),
		TimeoutValue:               time.Duration(cfg.Driver.TimeoutValueMs * float64(time.Millisecond)),
		SkipWarmup:                 cfg.Driver.SkipWarmup,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting load test run",
		"workload", cfg.Workload.Kind,
		"concurrency", driverCfg.Concurrency,
		"targetRatePerSecond", driverCfg.TargetRequestRatePerSecond,
		"duration", driverCfg.Duration.String(),
	)

	d := driver.New(driverCfg, work)

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		d = d.WithMetrics(metrics.New(reg))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer srv.Close()

		logger.Info("metrics exporter listening", "addr", cfg.Metrics.Addr)
	}

	rep, err := d.Run(ctx)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}

	logger.Info("run complete",
		"completed", rep.CompletedIterations,
		"errors", rep.ErrorIterations,
		"missed", rep.MissedIterations,
	)

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal report: %v", err)
	}
	fmt.Println(string(out))
}

func buildWorkload(cfg config.WorkloadConfig) (workload.Workload, error) {
	switch cfg.Kind {
	case "http":
		return httpworkload.New(httpworkload.Config{
			URL:            cfg.HTTP.URL,
			RequestTimeout: cfg.HTTP.RequestTimeout,
			Headers:        cfg.HTTP.Headers,
		}), nil
	case "ledger":
		return ledgerworkload.New(ledgerworkload.Config{
			AccountIDs: cfg.Ledger.AccountIDs,
			BatchSize:  cfg.Ledger.BatchSize,
			Amount:     cfg.Ledger.Amount,
			Sink:       sink.NewMemory(),
		}), nil
	default:
		return nil, fmt.Errorf("unknown workload kind %q", cfg.Kind)
	}
}
