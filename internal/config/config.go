package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the ragdex engine configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Reranker  RerankerConfig  `yaml:"reranker"`
	Cache     CacheConfig     `yaml:"cache"`
	Fusion    FusionConfig    `yaml:"fusion"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds document store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	IndexName        string   `yaml:"index_name"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// ScoringConfig holds LLM relevance scoring provider settings.
type ScoringConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// RetrievalConfig holds iterative retrieval settings.
type RetrievalConfig struct {
	Enabled            bool    `yaml:"enabled"`
	InitialK           int     `yaml:"initial_k"`
	FilteredTopK       int     `yaml:"filtered_top_k"`
	RelevanceThreshold float64 `yaml:"relevance_threshold"`
	MaxIterations      int     `yaml:"max_iterations"`
	StandardTopK       int     `yaml:"standard_top_k"`
	StandardThreshold  float64 `yaml:"standard_threshold"`
}

// RerankerConfig holds cross-encoder reranker settings.
type RerankerConfig struct {
	Mode       string `yaml:"mode"` // dedicated, llm, keyword, auto (default: auto)
	BatchSize  int    `yaml:"batch_size"`
	TimeoutSec int    `yaml:"timeout_sec"`
	MaxWorkers int    `yaml:"max_workers"`
	QueueSize  int    `yaml:"queue_size"`
}

// CacheConfig holds score cache settings.
type CacheConfig struct {
	Size   int `yaml:"size"`
	TTLSec int `yaml:"ttl_sec"`
}

// FusionConfig holds hybrid fusion weight settings.
type FusionConfig struct {
	VectorWeight float64 `yaml:"vector_weight"`
	BM25Weight   float64 `yaml:"bm25_weight"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.IndexName == "" {
		c.Database.IndexName = "ragdex:docs"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Retrieval.InitialK <= 0 {
		c.Retrieval.InitialK = 20
	}
	if c.Retrieval.FilteredTopK <= 0 {
		c.Retrieval.FilteredTopK = 5
	}
	if c.Retrieval.RelevanceThreshold <= 0 {
		c.Retrieval.RelevanceThreshold = 0.5
	}
	if c.Retrieval.MaxIterations <= 0 {
		c.Retrieval.MaxIterations = 2
	}
	if c.Retrieval.StandardTopK <= 0 {
		c.Retrieval.StandardTopK = 5
	}
	if c.Retrieval.StandardThreshold <= 0 {
		c.Retrieval.StandardThreshold = 0.7
	}
	if c.Reranker.Mode == "" {
		c.Reranker.Mode = "auto"
	}
	if c.Reranker.BatchSize <= 0 {
		c.Reranker.BatchSize = 5
	}
	if c.Reranker.TimeoutSec <= 0 {
		c.Reranker.TimeoutSec = 30
	}
	if c.Reranker.MaxWorkers <= 0 {
		c.Reranker.MaxWorkers = 4
	}
	if c.Reranker.QueueSize <= 0 {
		c.Reranker.QueueSize = 64
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = 1000
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Fusion.VectorWeight <= 0 && c.Fusion.BM25Weight <= 0 {
		c.Fusion.VectorWeight = 0.6
		c.Fusion.BM25Weight = 0.4
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Retrieval.RelevanceThreshold < 0 || c.Retrieval.RelevanceThreshold > 1 {
		return fmt.Errorf(
			"retrieval.relevance_threshold must be in [0, 1], got %f", c.Retrieval.RelevanceThreshold,
		)
	}
	if c.Retrieval.MaxIterations < 1 {
		return fmt.Errorf("retrieval.max_iterations must be >= 1, got %d", c.Retrieval.MaxIterations)
	}
	switch c.Reranker.Mode {
	case "dedicated", "llm", "keyword", "auto":
		// ok
	default:
		return fmt.Errorf(
			"reranker.mode must be \"dedicated\", \"llm\", \"keyword\" or \"auto\", got %q",
			c.Reranker.Mode,
		)
	}
	if c.Fusion.VectorWeight < 0 || c.Fusion.BM25Weight < 0 {
		return fmt.Errorf("fusion weights must be non-negative")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
