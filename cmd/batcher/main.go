package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pumpbatch/engine/internal/batch"
	"github.com/pumpbatch/engine/internal/computebudget"
	"github.com/pumpbatch/engine/internal/config"
	"github.com/pumpbatch/engine/internal/export"
	"github.com/pumpbatch/engine/internal/logger"
	"github.com/pumpbatch/engine/internal/metrics"
	"github.com/pumpbatch/engine/internal/pumpswap"
	solclient "github.com/pumpbatch/engine/internal/solana"
	"github.com/pumpbatch/engine/internal/wallet"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "path to configuration file")
	operationsPath := flag.String("operations", "operations.json", "path to operations file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath, *operationsPath); err != nil {
		fmt.Fprintf(os.Stderr, "batcher: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, operationsPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()
	log.Info("Starting batch engine")

	wallets, err := wallet.LoadWallets(cfg.WalletsFile)
	if err != nil {
		return fmt.Errorf("failed to load wallets: %w", err)
	}
	feePayer, ok := wallets[cfg.FeePayer]
	if !ok {
		return fmt.Errorf("fee payer wallet %q not found in %s", cfg.FeePayer, cfg.WalletsFile)
	}

	collector := metrics.NewCollector()
	client, err := solclient.NewClient(cfg.RPCList, collector, log)
	if err != nil {
		return fmt.Errorf("failed to create RPC client: %w", err)
	}

	operations, err := loadOperations(operationsPath, wallets, cfg.SlippageBps)
	if err != nil {
		return err
	}
	if len(operations) == 0 {
		log.Info("No operations to execute")
		return nil
	}

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(collector.Gatherer(), promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Warn("Metrics server stopped", zap.Error(err))
			}
		}()
	}

	sdk := pumpswap.New(client, log)
	builder := batch.NewBuildContext(client, sdk, feePayer.PublicKey, log)
	executor := batch.NewExecutor(client, builder, feePayer, batch.ExecutorConfig{
		MaxParallel:          cfg.MaxParallel,
		DelayBetween:         time.Duration(cfg.DelayBetweenMs) * time.Millisecond,
		FailFast:             cfg.FailFast,
		DisableFallbackRetry: cfg.DisableFallbackRetry,
		ConfirmTimeout:       time.Duration(cfg.ConfirmTimeoutSec) * time.Second,
		ComputeBudget: computebudget.Config{
			Units:     cfg.ComputeUnits,
			UnitPrice: cfg.ComputeUnitPrice,
		},
		Metrics: collector,
	}, log)

	results, err := executor.Execute(ctx, operations, cfg.ProbeLimit)

	succeeded := 0
	for _, result := range results {
		if result.Success {
			succeeded++
			log.Info("Operation succeeded",
				zap.String("operation_id", result.OperationID),
				zap.String("type", string(result.Type)),
				zap.String("signature", result.Signature))
		} else {
			log.Error("Operation failed",
				zap.String("operation_id", result.OperationID),
				zap.String("type", string(result.Type)),
				zap.String("error", result.Error))
		}
	}
	log.Info("Batch run finished",
		zap.Int("succeeded", succeeded),
		zap.Int("failed", len(results)-succeeded))
	client.LogEndpointHealth()

	if cfg.ExportDir != "" && len(results) > 0 {
		exporter := export.NewResultExporter(log)
		if _, exportErr := exporter.Export(results, export.Options{
			Format:    export.Format(cfg.ExportFormat),
			OutputDir: cfg.ExportDir,
		}); exportErr != nil {
			log.Warn("Failed to export results", zap.Error(exportErr))
		}
	}

	if err != nil {
		return fmt.Errorf("execution aborted: %w", err)
	}
	if succeeded < len(results) {
		return fmt.Errorf("%d of %d operations failed", len(results)-succeeded, len(results))
	}
	return nil
}
