// cmd/fsd-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"figma-to-fsd/internal/common/camunda"
	"figma-to-fsd/internal/common/config"
	"figma-to-fsd/internal/common/llm"
	"figma-to-fsd/internal/common/logger"
	"figma-to-fsd/internal/common/observability"
	"figma-to-fsd/internal/server"
	generatedocs "figma-to-fsd/internal/workers/docs/generate-docs"
	"figma-to-fsd/internal/workflow"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting FSD server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Event sinks ---
	sinks, closeSinks, err := workflow.SinksFromConfig(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("event sinks failed", zap.Error(err))
	}
	defer closeSinks()

	orchestrator := workflow.NewFromConfig(cfg, obs, log, sinks...)

	provider := llm.NewProvider(cfg.LLM)
	checks := map[string]server.ReadinessCheck{
		"llm": func(context.Context) error { return provider.Ready() },
	}

	var events server.EventStore
	for _, sink := range sinks {
		if store, ok := sink.(server.EventStore); ok {
			events = store
		}
	}

	// --- Zeebe worker ---
	var jobWorker *camunda.CamundaWorker
	if cfg.Camunda.Enabled {
		var client *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			client, err = camunda.NewClientFromConfig(cfg.Camunda)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer client.Close()
		checks["zeebe"] = client.HealthCheck

		handler, err := generatedocs.NewHandler(generatedocs.HandlerOptions{
			AppConfig: cfg,
			Runner:    orchestrator,
			Logger:    log,
		})
		if err != nil {
			zapLog.Fatal("failed to create generate-docs handler", zap.Error(err))
		}
		if handler.IsEnabled() {
			wcfg := handler.GetConfig()
			jobWorker = camunda.NewWorker(client.GetClient(), camunda.WorkerOptions{
				TaskType:      generatedocs.TaskType,
				Name:          cfg.App.Name,
				MaxJobsActive: wcfg.MaxJobsActive,
				Timeout:       wcfg.Timeout,
			}, handler, zapLog)
			jobWorker.Start()
		} else {
			zapLog.Info("worker disabled", zap.String("taskType", generatedocs.TaskType))
		}
	}

	// --- HTTP server ---
	srv := server.New(server.Deps{
		Config: &cfg.Server,
		Runner: orchestrator,
		Events: events,
		Checks: checks,
		Logger: log,
	})
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, stopping...")
	case err := <-errCh:
		if err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if jobWorker != nil {
		jobWorker.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("FSD server stopped gracefully")
}
