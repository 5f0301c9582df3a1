package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/knowledge-engine/internal/config"
	"github.com/mikey/knowledge-engine/internal/core"
	"github.com/mikey/knowledge-engine/internal/factory"
	"github.com/mikey/knowledge-engine/internal/logging"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewSourceFactory); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register intent analyzer
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*core.IntentAnalyzer, error) {
		engineCfg, err := cfg.GetEngine()
		if err != nil {
			return nil, err
		}
		return core.NewIntentAnalyzer(engineCfg.MinQueryLength, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register source orchestrator
	if err := container.Provide(func(f *factory.SourceFactory, logger *zap.Logger) (*core.SourceOrchestrator, error) {
		registry, err := f.CreateSourceRegistry()
		if err != nil {
			return nil, err
		}
		return core.NewSourceOrchestrator(registry, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register fallback chain
	if err := container.Provide(func(f *factory.SourceFactory) (*core.FallbackChain, error) {
		return f.CreateFallbackChain()
	}); err != nil {
		return nil, err
	}

	// Register knowledge service
	if err := container.Provide(func(
		cfg *config.Config,
		analyzer *core.IntentAnalyzer,
		orchestrator *core.SourceOrchestrator,
		chain *core.FallbackChain,
		logger *zap.Logger,
	) (*core.KnowledgeService, error) {
		engineCfg, err := cfg.GetEngine()
		if err != nil {
			return nil, err
		}
		return core.NewKnowledgeService(analyzer, orchestrator, chain, engineCfg.Budget, logger), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
