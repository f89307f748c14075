package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from, in increasing priority, built-in
// defaults, the YAML file named by CONFIG_FILE (if set) and environment
// variables. The result is validated before it is returned.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"), os.LookupEnv)
}

// LoadFrom is Load with an explicit file path and environment lookup.
func LoadFrom(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	cfg.LoadedFrom = append(cfg.LoadedFrom, "defaults")

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
		cfg.LoadedFrom = append(cfg.LoadedFrom, path)
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	cfg.LoadedFrom = append(cfg.LoadedFrom, "environment")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []string
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = parseBool(v)
		}
	}

	if v, ok := lookup("ENVIRONMENT"); ok && v != "" {
		cfg.Environment = Environment(strings.ToLower(v))
	}
	str("SERVER_ADDRESS", &cfg.Server.Address)
	if v, ok := lookup("PORT"); ok && v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			errs = append(errs, fmt.Sprintf("PORT: %v", err))
		} else {
			cfg.Server.Address = ":" + v
		}
	}

	str("LLM_PROVIDER", &cfg.LLM.Provider)
	str("OLLAMA_MODEL", &cfg.LLM.Model)
	str("OLLAMA_BASE_URL", &cfg.LLM.BaseURL)
	if v, ok := lookup("LLM_TEMPERATURE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("LLM_TEMPERATURE: %v", err))
		} else {
			cfg.LLM.Temperature = f
		}
	}
	duration("LLM_TIMEOUT", &cfg.LLM.Timeout)

	str("NOTION_API_KEY", &cfg.Notion.APIKey)
	str("NOTION_DATABASE_ID", &cfg.Notion.DatabaseID)
	str("NOTION_BASE_URL", &cfg.Notion.BaseURL)
	duration("NOTION_TIMEOUT", &cfg.Notion.Timeout)

	str("DB_PATH", &cfg.Store.Path)

	// SYNC_TO_NOTION is on unless it is set to something other than "true".
	if v, ok := lookup("SYNC_TO_NOTION"); ok {
		cfg.Features.SyncToNotion = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	boolean("ENABLE_METRICS", &cfg.Features.EnableMetrics)
	boolean("ENABLE_TRACING", &cfg.Features.EnableTracing)

	str("LOG_LEVEL", &cfg.Observability.LogLevel)
	str("OTLP_ENDPOINT", &cfg.Observability.OTLPEndpoint)
	str("SERVICE_NAME", &cfg.Observability.ServiceName)

	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		cfg.CORS.AllowedOrigins = splitList(v)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
