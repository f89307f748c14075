// Package config holds the process configuration. It is built once at
// startup and handed to every component; nothing else reads the environment.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Environment is the deployment environment name.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the complete process configuration.
type Config struct {
	Environment   Environment   `yaml:"environment"`
	Server        Server        `yaml:"server"`
	LLM           LLM           `yaml:"llm"`
	Notion        Notion        `yaml:"notion"`
	Store         Store         `yaml:"store"`
	Features      Features      `yaml:"features"`
	Breaker       Breaker       `yaml:"circuit_breaker"`
	Observability Observability `yaml:"observability"`
	CORS          CORS          `yaml:"cors"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-"`
}

// Server configures the HTTP listener.
type Server struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxRequestSize  int64         `yaml:"max_request_size"`
}

// LLM configures the local generative-text service.
type LLM struct {
	// Provider is "ollama" or "mock".
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	// Timeout bounds a single completion. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
}

// Notion configures the page service used for mirroring.
type Notion struct {
	APIKey     string        `yaml:"api_key"`
	DatabaseID string        `yaml:"database_id"`
	BaseURL    string        `yaml:"base_url"`
	Version    string        `yaml:"version"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Configured reports whether both the credential and the root id are set.
func (n Notion) Configured() bool {
	return n.APIKey != "" && n.DatabaseID != ""
}

// Store configures the local SQLite file.
type Store struct {
	Path string `yaml:"path"`
}

// Features holds behaviour toggles.
type Features struct {
	SyncToNotion  bool `yaml:"sync_to_notion"`
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
}

// Breaker configures the circuit breakers around outbound calls.
type Breaker struct {
	FailureRatio float64       `yaml:"failure_ratio"`
	MinRequests  uint32        `yaml:"min_requests"`
	MaxRequests  uint32        `yaml:"max_requests"`
	Interval     time.Duration `yaml:"interval"`
	OpenTimeout  time.Duration `yaml:"open_timeout"`
}

// Observability configures logging and tracing output.
type Observability struct {
	ServiceName  string `yaml:"service_name"`
	LogLevel     string `yaml:"log_level"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// CORS configures cross-origin access for the browser extension.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: Server{
			Address:         ":8000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxRequestSize:  1 << 20,
		},
		LLM: LLM{
			Provider:    "ollama",
			Model:       "llama2",
			BaseURL:     "http://localhost:11434",
			Temperature: 0.7,
		},
		Notion: Notion{
			BaseURL: "https://api.notion.com",
			Version: "2022-06-28",
			Timeout: 30 * time.Second,
		},
		Store: Store{
			Path: "study_assistant.db",
		},
		Features: Features{
			SyncToNotion:  true,
			EnableMetrics: true,
		},
		Breaker: Breaker{
			FailureRatio: 0.6,
			MinRequests:  3,
			MaxRequests:  1,
			Interval:     time.Minute,
			OpenTimeout:  30 * time.Second,
		},
		Observability: Observability{
			ServiceName:  "studycapture",
			LogLevel:     "info",
			OTLPEndpoint: "localhost:4317",
		},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
		},
	}
}

// Validate checks the configuration for values the process cannot run with.
func (c *Config) Validate() error {
	var problems []string

	switch c.Environment {
	case Development, Staging, Production:
	default:
		problems = append(problems, fmt.Sprintf("unknown environment %q", c.Environment))
	}
	if c.Server.Address == "" {
		problems = append(problems, "server address is required")
	}
	if c.Store.Path == "" {
		problems = append(problems, "store path is required")
	}
	switch c.LLM.Provider {
	case "ollama":
		if c.LLM.BaseURL == "" || c.LLM.Model == "" {
			problems = append(problems, "ollama provider needs base_url and model")
		}
	case "mock":
	default:
		problems = append(problems, fmt.Sprintf("unknown llm provider %q", c.LLM.Provider))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		problems = append(problems, "llm temperature must be between 0 and 2")
	}
	if c.LLM.Timeout < 0 {
		problems = append(problems, "llm timeout must not be negative")
	}
	if c.Notion.BaseURL == "" {
		problems = append(problems, "notion base_url is required")
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		problems = append(problems, "circuit breaker failure_ratio must be in (0, 1]")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DebugResponses reports whether error responses may carry internals such
// as stack traces. Only LOG_LEVEL=debug turns this on, in any environment.
func (c *Config) DebugResponses() bool {
	return strings.EqualFold(strings.TrimSpace(c.Observability.LogLevel), "debug")
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
