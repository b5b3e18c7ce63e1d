package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"help-desk/auth"
	"help-desk/classifier"
	"help-desk/domain"
	"help-desk/guardrail"
	"help-desk/infrastructure/api"
	"help-desk/internal"
	"help-desk/llm"
	"help-desk/observability"
	"help-desk/repositories"
	"help-desk/runtime"
	"help-desk/runtime/workers"
	"help-desk/services"
	"help-desk/specialist"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Exit codes reported to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Help desk terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a server failure.
// Returning instead of exiting lets the deferred closes run.
func run() (int, error) {
	// 1. Configuration & Logger
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return exitConfig, fmt.Errorf(".env loading failed: %w", err)
	}
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage (Badger + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, KnowledgeMapper)
	}

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	knowledge := repositories.NewKnowledgeRepository(db, blugeWriter, logger, config.CacheTTL, config.CacheMinScore)
	organizations := repositories.NewOrganizationRepository(db)

	// 3. Shared read-only configuration
	registry, err := specialist.DefaultRegistry()
	if err != nil {
		return exitConfig, fmt.Errorf("specialist registry: %w", err)
	}
	phrases, err := classifier.DefaultPhraseSets()
	if err != nil {
		return exitConfig, fmt.Errorf("phrase sets: %w", err)
	}
	intent, err := classifier.New(registry, phrases)
	if err != nil {
		return exitConfig, fmt.Errorf("classifier: %w", err)
	}
	catalog, err := llm.NewCatalog(llm.DefaultCatalogConfig())
	if err != nil {
		return exitConfig, fmt.Errorf("model catalog: %w", err)
	}
	rules, err := guardrail.DefaultRules()
	if err != nil {
		return exitConfig, fmt.Errorf("guardrail rules: %w", err)
	}
	if config.AnthropicAPIKey == "" {
		logger.Warn("ANTHROPIC_API_KEY is empty, every specialist call will fall back")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	toolkit := runtime.Toolkit{
		Classifier: intent,
		Registry:   registry,
		Catalog:    catalog,
		Completer:  llm.NewAnthropicCompleter(config.AnthropicAPIKey, config.CompletionTimeout),
		Rules:      rules,
		Knowledge:  knowledge,
		Metrics:    metrics,
	}
	options := runtime.Options{
		EnablePerspectives: config.EnablePerspectives,
		CacheMinConfidence: config.CacheMinConfidence,
		GuardrailPolicy:    guardrail.FailurePolicy(config.GuardrailPolicy),
		PerspectiveTimeout: config.PerspectiveTimeout,
		GuardrailTimeout:   config.GuardrailTimeout,
	}

	// 4. Sessions & background loops
	sessions := runtime.NewRegistry(logger, func(s domain.Session) *runtime.Orchestrator {
		return runtime.NewOrchestrator(logger, s, toolkit, options)
	}, config.SessionIdleTimeout, metrics)
	monitoring := observability.NewMonitoringManager(logger)

	sup := workers.NewSupervisor(logger).Add(
		workers.NewWorker("session-evictor", func(ctx context.Context) error {
			sessions.Run(ctx, config.EvictionInterval)
			return nil
		}),
		workers.NewWorker("health-sampler", func(ctx context.Context) error {
			monitoring.Listen(ctx, config.MetricInterval)
			return nil
		}),
	)
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 5. HTTP Server
	service := services.NewHelpDeskService(logger, sessions, organizations, monitoring, config.MaxQuestionLength)
	tokens := auth.NewTokens(config.JWTSecret, config.AuthTokenDuration)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           api.NewServer(logger, service, tokens, monitoring, reg).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 7. Graceful Shutdown
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("http shutdown: %w", err)
	}
	sup.Stop()
	<-supDone
	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG).WithBypassLockGuard(true)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// KnowledgeMapper renders stored answers in the Badger inspector.
func KnowledgeMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	if !strings.HasPrefix(key, repositories.KnowledgePrefix) {
		return row
	}
	answer, err := repositories.DecodeAnswer(val)
	if err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	row.Type = string(answer.Domain)
	row.Detail = answer.Question
	if answer.Verified {
		row.Scores = "verified"
	}
	return row
}
