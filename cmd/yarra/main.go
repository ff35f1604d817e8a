// Command yarra answers natural-language questions about the Australian
// economy from locally collected RBA and ABS data.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/meridian-labs/yarra/internal/adapters/driven/ai"
	"github.com/meridian-labs/yarra/internal/adapters/driven/config/file"
	"github.com/meridian-labs/yarra/internal/adapters/driven/storage/sqlite"
	"github.com/meridian-labs/yarra/internal/adapters/driving/cli"
	"github.com/meridian-labs/yarra/internal/collectors/abs"
	"github.com/meridian-labs/yarra/internal/collectors/rba"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/core/services"
	"github.com/meridian-labs/yarra/internal/handlers/housing"
	"github.com/meridian-labs/yarra/internal/handlers/labour"
	"github.com/meridian-labs/yarra/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}
	baseDir := filepath.Join(home, ".yarra")

	configStore, err := file.NewConfigStore(baseDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settings := file.LoadSettings(configStore)
	if err := settings.Validate(); err != nil {
		logger.Warn("invalid settings, using defaults where needed: %v", err)
	}

	store, err := sqlite.NewStore(filepath.Join(baseDir, "data"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close() //nolint:errcheck

	executor, err := sqlite.NewQueryExecutor(store)
	if err != nil {
		return fmt.Errorf("opening query executor: %w", err)
	}
	defer executor.Close() //nolint:errcheck

	gateway := services.NewGateway(executor, settings.Query)

	// The LLM is optional: composition and topic generation degrade to
	// deterministic behaviour when no provider is configured or the
	// configured one is unreachable.
	llm, err := ai.CreateAndValidateLLMService(ai.Config{
		Provider: settings.Provider,
		Model:    configStore.GetString("ai.model"),
		APIKey:   configStore.GetString("ai.api_key"),
		BaseURL:  configStore.GetString("ai.base_url"),
	})
	if err != nil {
		logger.Warn("%v; continuing without AI composition", err)
		llm = nil
	}
	if llm != nil {
		defer llm.Close() //nolint:errcheck
	}

	metrics := store.MetricStore()
	docs := store.DocumentStore()

	buildHandlers := func() []driven.Handler {
		return []driven.Handler{
			housing.New(metrics, docs, gateway, llm),
			labour.New(metrics, llm),
		}
	}

	registry, err := services.NewRegistryWith(buildHandlers()...)
	if err != nil {
		return fmt.Errorf("registering handlers: %w", err)
	}

	router := services.NewRouter(settings.RelevanceThreshold)
	dispatcher := services.NewDispatcher(settings.PerCallTimeout, settings.MaxConcurrency)
	synthesizer := services.NewSynthesizer(llm)
	orchestrator := services.NewOrchestrator(
		registry, router, dispatcher, synthesizer, store.ThreadStore(), llm,
	)

	collection := services.NewCollection()
	collection.RegisterCollector("housing", rba.NewRatesCollector(metrics))
	collection.RegisterCollector("housing", rba.NewLendingRatesCollector(metrics))
	collection.RegisterCollector("housing", rba.NewInflationCollector(metrics))
	collection.RegisterCollector("housing", rba.NewMinutesCollector(docs))
	collection.RegisterCollector("housing", abs.NewBuildingApprovals(metrics))
	collection.RegisterCollector("labour", abs.NewUnemploymentRate(metrics))
	collection.RegisterCollector("labour", abs.NewParticipationRate(metrics))
	collection.RegisterCollector("labour", abs.NewWeeklyEarnings(metrics))

	sched := services.NewScheduler(settings.Scheduler, store.SchedulerStore(), collection)

	// Apply config file edits without a restart: swap the routing
	// threshold, dispatch limits and query policy in place, and replace
	// the handler table atomically.
	watcher, err := file.NewWatcher(configStore,
		reloadSettings(configStore, router, dispatcher, gateway, registry, buildHandlers))
	if err != nil {
		logger.Warn("config watcher unavailable: %v", err)
	} else {
		defer watcher.Close() //nolint:errcheck
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Ask:       orchestrator,
		Collect:   collection,
		Registry:  registry,
		Gateway:   gateway,
		Scheduler: sched,
		Metrics:   metrics,
		Threads:   store.ThreadStore(),
		Config:    configStore,
		LLM:       llm,
		Settings:  settings,
	})
	return cli.Execute()
}

// reloadSettings returns the config watcher callback. It re-reads the
// settings snapshot from the freshly loaded store, applies it to the
// routing, dispatch and query services, and swaps a rebuilt handler
// table into the registry. An invalid snapshot leaves everything on the
// previous values. The LLM provider is the one setting that still
// needs a restart, because the orchestrator and synthesizer hold the
// client built at startup.
func reloadSettings(
	configStore driven.ConfigStore,
	router *services.Router,
	dispatcher *services.Dispatcher,
	gateway *services.Gateway,
	registry *services.Registry,
	buildHandlers func() []driven.Handler,
) func() {
	return func() {
		settings := file.LoadSettings(configStore)
		if err := settings.Validate(); err != nil {
			logger.Warn("reloaded settings invalid, keeping previous: %v", err)
			return
		}

		router.SetThreshold(settings.RelevanceThreshold)
		dispatcher.SetLimits(settings.PerCallTimeout, settings.MaxConcurrency)
		gateway.SetPolicy(settings.Query)

		if err := registry.ReplaceAll(buildHandlers()); err != nil {
			logger.Warn("handler rebuild failed, keeping previous table: %v", err)
			return
		}
		logger.Info("configuration reloaded")
	}
}
