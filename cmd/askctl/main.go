package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mikey/knowledge-engine/internal/config"
	"github.com/mikey/knowledge-engine/internal/core"
	"github.com/mikey/knowledge-engine/internal/factory"
	"github.com/mikey/knowledge-engine/internal/logging"
	"go.uber.org/zap"
)

var (
	// Engine flags
	budget       = flag.Duration("budget", 3*time.Second, "Overall time budget for the categorized fan-out")
	probeTimeout = flag.Duration("probe-timeout", 2*time.Second, "Per-probe timeout for the fallback chain")

	// Cache flags
	cacheType = flag.String("cache-type", "memory", "Cache backend (memory, sqlite, mysql)")
	noCache   = flag.Bool("no-cache", false, "Disable result caching")

	// Output flags
	showStats  = flag.Bool("stats", false, "Print cache statistics after answering")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: askctl [flags] <query>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	// Initialize cache
	cacheFactory := factory.NewCacheFactory(cfg, logger)
	cacheRepo, err := cacheFactory.CreateCacheRepository()
	if err != nil {
		logger.Fatal("Failed to create cache repository", zap.Error(err))
	}

	// Initialize sources
	sourceFactory, err := factory.NewSourceFactory(cfg, cacheRepo, logger)
	if err != nil {
		logger.Fatal("Failed to create source factory", zap.Error(err))
	}
	registry, err := sourceFactory.CreateSourceRegistry()
	if err != nil {
		logger.Fatal("Failed to create source registry", zap.Error(err))
	}
	chain, err := sourceFactory.CreateFallbackChain()
	if err != nil {
		logger.Fatal("Failed to create fallback chain", zap.Error(err))
	}

	engineCfg, err := cfg.GetEngine()
	if err != nil {
		logger.Fatal("Invalid engine configuration", zap.Error(err))
	}

	analyzer := core.NewIntentAnalyzer(engineCfg.MinQueryLength, logger)
	orchestrator := core.NewSourceOrchestrator(registry, logger)
	service := core.NewKnowledgeService(analyzer, orchestrator, chain, engineCfg.Budget, logger)

	startTime := time.Now()
	result := service.Answer(context.Background(), query)
	duration := time.Since(startTime)

	fmt.Printf("Query: %s\n", query)
	fmt.Printf("Intent: %s (confidence %.2f)\n", result.Analysis.PrimaryIntent, result.Analysis.Confidence)
	fmt.Println()

	answered := result.BestAnswer != nil
	if answered {
		fmt.Println(result.BestAnswer.Text)
		for _, item := range result.BestAnswer.Items {
			fmt.Printf("  - %s\n", item)
		}
		if result.BestAnswer.URL != "" {
			fmt.Printf("  %s\n", result.BestAnswer.URL)
		}
	} else if len(result.AllResults) > 0 {
		fmt.Println("No direct answer; closest matches:")
		for _, r := range result.AllResults {
			if r.Text != "" {
				fmt.Printf("  - %s [%s]\n", r.Text, r.Source)
				continue
			}
			for _, item := range r.Items {
				fmt.Printf("  - %s [%s]\n", item, r.Source)
			}
		}
	} else {
		fmt.Println("No answer found.")
	}

	fmt.Println()
	if len(result.SourcesUsed) > 0 {
		fmt.Printf("Sources: %s\n", strings.Join(result.SourcesUsed, ", "))
	}
	fmt.Printf("Elapsed: %v\n", duration)

	if *showStats && cacheRepo != nil {
		stats := cacheRepo.Stats()
		fmt.Printf("Cache: %d hits, %d misses, %d sets, %d entries (hit rate %.2f)\n",
			stats.Hits, stats.Misses, stats.Sets, stats.Size, stats.HitRate)
	}

	// Stop the cache if needed
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	if !answered {
		os.Exit(1)
	}
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("engine.budget", budget.String())
	v.Set("engine.probe_timeout", probeTimeout.String())

	v.Set("cache.type", *cacheType)
	v.Set("cache.enabled", !*noCache)

	return config.NewFromViper(v)
}
