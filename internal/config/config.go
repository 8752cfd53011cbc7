// Package config loads the jurisrank YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/jurisrank/internal/domain"
)

// Known driver and provider names.
const (
	BackendValkey = "valkey"
	BackendQdrant = "qdrant"

	RerankCrossEncoder = "crossencoder"
	RerankLLM          = "llm"
	RerankNone         = "none"

	RerankStyleTEI    = "tei"
	RerankStyleCohere = "cohere"

	CacheMemory = "memory"
	CacheValkey = "valkey"
)

// Court weight keys under ranking.court_weights.
const (
	CourtHR        = "hr"
	CourtHof       = "hof"
	CourtRechtbank = "rechtbank"
	CourtUnknown   = "unknown"
)

// Config holds the jurisrank service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Rerank    RerankConfig    `yaml:"rerank"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Valkey connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey (default)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig selects and tunes the vector index.
type IndexConfig struct {
	Backend         string `yaml:"backend"` // valkey | qdrant
	Name            string `yaml:"name"`    // qdrant collection name
	QdrantAddr      string `yaml:"qdrant_addr"`
	QdrantAPIKey    string `yaml:"qdrant_api_key"`
	Dimensions      int    `yaml:"dimensions"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
	SearchTimeoutMs int    `yaml:"search_timeout_ms"`
	MaxBatchSize    int    `yaml:"max_batch_size"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	Provider            string `yaml:"provider"`
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	QueryInstruction    string `yaml:"query_instruction"`
	DocumentInstruction string `yaml:"document_instruction"`
	CacheTTLSec         int    `yaml:"cache_ttl_sec"` // 0 disables the embedding cache
}

// RerankConfig holds the rerank provider settings.
type RerankConfig struct {
	Provider          string `yaml:"provider"` // crossencoder | llm | none
	APIStyle          string `yaml:"api_style"` // tei | cohere, crossencoder only
	BaseURL           string `yaml:"base_url"`
	APIKey            string `yaml:"api_key"`
	Model             string `yaml:"model"`
	TimeoutMs         int    `yaml:"timeout_ms"`
	BatchSize         int    `yaml:"batch_size"`
	MaxDocumentTokens int    `yaml:"max_document_tokens"`
}

// RankingConfig holds the composite score weights.
type RankingConfig struct {
	CourtWeights    map[string]float64 `yaml:"court_weights"`
	KeywordPerMatch *float64           `yaml:"keyword_per_match"`
	KeywordMaxBonus *float64           `yaml:"keyword_max_bonus"`
	CandidatePool   int                `yaml:"candidate_pool"`
}

// CacheConfig holds the rerank cache settings.
type CacheConfig struct {
	Driver  string `yaml:"driver"` // memory | valkey
	TTLSec  int    `yaml:"ttl_sec"`
	Version string `yaml:"version"`
}

// SearchTimeout returns the vector search budget.
func (c IndexConfig) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutMs) * time.Millisecond
}

// Timeout returns the rerank provider budget.
func (c RerankConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// TTL returns the rerank cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// CacheTTL returns the embedding cache entry lifetime.
func (c EmbeddingConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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

func floatPtr(v float64) *float64 { return &v }

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
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	if c.Index.Backend == "" {
		c.Index.Backend = BackendValkey
	}
	if c.Index.Name == "" {
		c.Index.Name = "decisions"
	}
	if c.Index.Dimensions <= 0 {
		c.Index.Dimensions = c.Embedding.Dimensions
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = c.Index.Dimensions
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.SearchTimeoutMs <= 0 {
		c.Index.SearchTimeoutMs = 5000
	}
	if c.Index.MaxBatchSize <= 0 {
		c.Index.MaxBatchSize = 100
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}

	if c.Rerank.Provider == "" {
		c.Rerank.Provider = RerankNone
	}
	if c.Rerank.APIStyle == "" {
		c.Rerank.APIStyle = RerankStyleTEI
	}
	if c.Rerank.TimeoutMs <= 0 {
		c.Rerank.TimeoutMs = 15000
	}
	if c.Rerank.BatchSize <= 0 {
		c.Rerank.BatchSize = 20
	}
	if c.Rerank.MaxDocumentTokens <= 0 {
		c.Rerank.MaxDocumentTokens = 512
	}

	defaults := map[string]float64{CourtHR: 0.10, CourtHof: 0.05, CourtRechtbank: 0, CourtUnknown: -0.05}
	if c.Ranking.CourtWeights == nil {
		c.Ranking.CourtWeights = make(map[string]float64, len(defaults))
	}
	for k, v := range defaults {
		if _, ok := c.Ranking.CourtWeights[k]; !ok {
			c.Ranking.CourtWeights[k] = v
		}
	}
	if c.Ranking.KeywordPerMatch == nil {
		c.Ranking.KeywordPerMatch = floatPtr(0.015)
	}
	if c.Ranking.KeywordMaxBonus == nil {
		c.Ranking.KeywordMaxBonus = floatPtr(0.045)
	}
	if c.Ranking.CandidatePool <= 0 {
		c.Ranking.CandidatePool = 50
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheMemory
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 600
	}
	if c.Cache.Version == "" {
		c.Cache.Version = "2"
	}
}

// Validate checks the configuration for correctness.
// Every failure is a *domain.ConfigError naming the field.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return domain.NewConfigError("http.port", fmt.Sprintf("must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	if c.Database.Driver != "valkey" {
		return domain.NewConfigError("database.driver", fmt.Sprintf("must be \"valkey\", got %q", c.Database.Driver))
	}
	if len(c.Database.Addrs) == 0 {
		return domain.NewConfigError("database.addrs", "is required")
	}

	switch c.Index.Backend {
	case BackendValkey:
	case BackendQdrant:
		if c.Index.QdrantAddr == "" {
			return domain.NewConfigError("index.qdrant_addr", "is required for the qdrant backend")
		}
	default:
		return domain.NewConfigError("index.backend", fmt.Sprintf("must be \"valkey\" or \"qdrant\", got %q", c.Index.Backend))
	}
	if c.Embedding.Dimensions <= 0 {
		return domain.NewConfigError("embedding.dimensions", "is required")
	}
	if c.Index.Dimensions != c.Embedding.Dimensions {
		return domain.NewConfigError("index.dimensions",
			fmt.Sprintf("%d does not match embedding.dimensions %d", c.Index.Dimensions, c.Embedding.Dimensions))
	}
	if c.Embedding.Model == "" {
		return domain.NewConfigError("embedding.model", "is required")
	}

	switch c.Rerank.Provider {
	case RerankNone:
	case RerankCrossEncoder:
		if c.Rerank.BaseURL == "" {
			return domain.NewConfigError("rerank.base_url", "is required for the crossencoder provider")
		}
		switch c.Rerank.APIStyle {
		case RerankStyleTEI:
		case RerankStyleCohere:
			if c.Rerank.Model == "" {
				return domain.NewConfigError("rerank.model", "is required for the cohere api style")
			}
		default:
			return domain.NewConfigError("rerank.api_style",
				fmt.Sprintf("must be \"tei\" or \"cohere\", got %q", c.Rerank.APIStyle))
		}
	case RerankLLM:
		if strings.TrimSpace(c.Rerank.APIKey) == "" {
			return domain.NewConfigError("rerank.api_key", "is required for the llm provider")
		}
		if c.Rerank.Model == "" {
			return domain.NewConfigError("rerank.model", "is required for the llm provider")
		}
	default:
		return domain.NewConfigError("rerank.provider",
			fmt.Sprintf("must be \"crossencoder\", \"llm\" or \"none\", got %q", c.Rerank.Provider))
	}

	for k, w := range c.Ranking.CourtWeights {
		switch k {
		case CourtHR, CourtHof, CourtRechtbank, CourtUnknown:
		default:
			return domain.NewConfigError("ranking.court_weights", fmt.Sprintf("unknown court tier %q", k))
		}
		if w < -1 || w > 1 {
			return domain.NewConfigError("ranking.court_weights."+k, fmt.Sprintf("must be within [-1,1], got %v", w))
		}
	}
	if p := c.Ranking.KeywordPerMatch; p != nil && *p < 0 {
		return domain.NewConfigError("ranking.keyword_per_match", "must not be negative")
	}
	if p := c.Ranking.KeywordMaxBonus; p != nil && *p < 0 {
		return domain.NewConfigError("ranking.keyword_max_bonus", "must not be negative")
	}

	switch c.Cache.Driver {
	case CacheMemory, CacheValkey:
	default:
		return domain.NewConfigError("cache.driver", fmt.Sprintf("must be \"memory\" or \"valkey\", got %q", c.Cache.Driver))
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
