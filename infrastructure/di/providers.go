package di

import (
	"context"
	"fmt"

	"studycapture/application/ports"
	"studycapture/application/services"
	domainservices "studycapture/domain/services"
	"studycapture/infrastructure/config"
	"studycapture/infrastructure/llm"
	"studycapture/infrastructure/notion"
	"studycapture/infrastructure/observability"
	"studycapture/infrastructure/persistence/sqlite"
	"studycapture/infrastructure/resilience"
	"studycapture/interfaces/http/rest"

	"go.uber.org/zap"
)

// ProvideLogger creates the process logger. Production uses JSON output;
// everything else uses the console encoder.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Observability.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Observability.LogLevel, err)
	}

	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", cfg.Observability.ServiceName)), nil
}

// ProvideCollector returns nil when metrics are disabled.
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.Features.EnableMetrics {
		return nil
	}
	return observability.NewCollector(cfg.Observability.ServiceName)
}

// ProvideMetrics adapts the collector to the pipeline's metrics port.
func ProvideMetrics(collector *observability.Collector) ports.Metrics {
	if collector == nil {
		return ports.NopMetrics{}
	}
	return collector
}

// ProvideBreakerObserver reports breaker transitions to the collector.
func ProvideBreakerObserver(collector *observability.Collector) resilience.StateObserver {
	if collector == nil {
		return nil
	}
	return collector
}

// ProvideTracing installs the global tracer provider when tracing is on.
// Spans are still created when it is off; they go to the no-op provider.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.Features.EnableTracing {
		return nil, func() {}, nil
	}
	tp, err := observability.InitTracing(ctx, cfg.Observability, string(cfg.Environment))
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideStore opens the SQLite store and closes it on cleanup.
func ProvideStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlite.Store, func(), error) {
	store, err := sqlite.Open(ctx, cfg.Store.Path, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("store close failed", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideTextGenerator selects the model provider named in the config.
func ProvideTextGenerator(cfg *config.Config, observer resilience.StateObserver, logger *zap.Logger) (ports.TextGenerator, error) {
	switch cfg.LLM.Provider {
	case "ollama":
		breaker := resilience.NewBreaker("ollama", cfg.Breaker, logger, observer)
		return llm.NewOllamaProvider(cfg.LLM, breaker, logger), nil
	case "mock":
		return llm.NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// ProvidePageService returns nil when no credential or root id is set,
// which leaves mirroring disabled.
func ProvidePageService(cfg *config.Config, observer resilience.StateObserver, logger *zap.Logger) ports.PageService {
	if !cfg.Notion.Configured() {
		logger.Info("notion is not configured; mirroring disabled")
		return nil
	}
	breaker := resilience.NewBreaker("notion", cfg.Breaker, logger, observer)
	return notion.NewClient(cfg.Notion, breaker, logger)
}

func ProvideClassifier(gen ports.TextGenerator, cfg *config.Config, metrics ports.Metrics, logger *zap.Logger) *services.Classifier {
	return services.NewClassifier(gen, domainservices.NewFallbackClassifier(nil), cfg.LLM.Temperature, metrics, logger)
}

func ProvideTopicRegistry(store *sqlite.Store, metrics ports.Metrics, logger *zap.Logger) *services.TopicRegistry {
	return services.NewTopicRegistry(store, metrics, logger)
}

func ProvideHierarchySync(pages ports.PageService, cfg *config.Config, logger *zap.Logger) *services.HierarchySync {
	return services.NewHierarchySync(pages, cfg.Notion.DatabaseID, logger)
}

func ProvideCapturePipeline(
	classifier *services.Classifier,
	topics *services.TopicRegistry,
	store *sqlite.Store,
	mirror *services.HierarchySync,
	cfg *config.Config,
	metrics ports.Metrics,
	logger *zap.Logger,
) *services.CapturePipeline {
	return services.NewCapturePipeline(classifier, topics, store, mirror, cfg.Features.SyncToNotion, metrics, logger)
}

func ProvideRouter(
	pipeline *services.CapturePipeline,
	store *sqlite.Store,
	collector *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(pipeline, store, collector, cfg, logger)
}
