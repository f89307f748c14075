package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"studycapture/application/ports"
	"studycapture/infrastructure/config"
	"studycapture/infrastructure/llm"
	"studycapture/infrastructure/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.LLM.Provider = "mock"
	cfg.Store.Path = filepath.Join(t.TempDir(), "study.db")
	cfg.Observability.LogLevel = "error"
	return cfg
}

func TestInitializeContainer(t *testing.T) {
	cfg := testConfig(t)

	c, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, c.Collector)
	assert.Nil(t, c.Tracer)
	assert.True(t, c.Pipeline.SyncEnabled())

	handler := c.Router.Setup()
	req := httptest.NewRequest(http.MethodPost, "/capture", strings.NewReader(`{"text":"Solar panels convert sunlight"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"synced_to_notion":false`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `studycapture_mirror_outcomes_total{status="disabled"} 1`)
	assert.Contains(t, rec.Body.String(), `studycapture_classifications_total{path="fallback"} 1`)
}

func TestInitializeContainer_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Features.EnableMetrics = false

	c, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, c.Collector)
	rec := httptest.NewRecorder()
	c.Router.Setup().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProviders(t *testing.T) {
	logger := zap.NewNop()

	t.Run("logger rejects unknown level", func(t *testing.T) {
		cfg := config.Default()
		cfg.Observability.LogLevel = "chatty"
		_, err := ProvideLogger(cfg)
		assert.Error(t, err)
	})

	t.Run("text generator", func(t *testing.T) {
		cfg := config.Default()
		gen, err := ProvideTextGenerator(cfg, nil, logger)
		require.NoError(t, err)
		assert.Equal(t, "ollama", gen.Name())

		cfg.LLM.Provider = "mock"
		gen, err = ProvideTextGenerator(cfg, nil, logger)
		require.NoError(t, err)
		assert.IsType(t, &llm.MockProvider{}, gen)

		cfg.LLM.Provider = "gpt"
		_, err = ProvideTextGenerator(cfg, nil, logger)
		assert.Error(t, err)
	})

	t.Run("page service needs key and root", func(t *testing.T) {
		cfg := config.Default()
		assert.Nil(t, ProvidePageService(cfg, nil, logger))

		cfg.Notion.APIKey = "secret"
		cfg.Notion.DatabaseID = "root"
		assert.NotNil(t, ProvidePageService(cfg, nil, logger))
	})

	t.Run("nil collector", func(t *testing.T) {
		assert.Equal(t, ports.NopMetrics{}, ProvideMetrics(nil))
		assert.Nil(t, ProvideBreakerObserver(nil))

		c := observability.NewCollector("x")
		assert.Same(t, c, ProvideMetrics(c))
	})
}
