package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/jurisrank/internal/domain"
)

// validConfig returns a defaulted config that passes validation.
func validConfig() Config {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-small", Dimensions: 1536},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"port zero", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"port too high", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"redis driver", func(c *Config) { c.Database.Driver = "redis" }, "database.driver"},
		{"no addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"unknown backend", func(c *Config) { c.Index.Backend = "pgvector" }, "index.backend"},
		{"qdrant without addr", func(c *Config) { c.Index.Backend = BackendQdrant }, "index.qdrant_addr"},
		{"dimension mismatch", func(c *Config) { c.Index.Dimensions = 768 }, "index.dimensions"},
		{"no model", func(c *Config) { c.Embedding.Model = "" }, "embedding.model"},
		{"unknown rerank provider", func(c *Config) { c.Rerank.Provider = "cohere" }, "rerank.provider"},
		{"crossencoder without url", func(c *Config) { c.Rerank.Provider = RerankCrossEncoder }, "rerank.base_url"},
		{"unknown api style", func(c *Config) {
			c.Rerank.Provider = RerankCrossEncoder
			c.Rerank.BaseURL = "http://tei:8080"
			c.Rerank.APIStyle = "jina"
		}, "rerank.api_style"},
		{"cohere without model", func(c *Config) {
			c.Rerank.Provider = RerankCrossEncoder
			c.Rerank.BaseURL = "https://api.cohere.com/v2"
			c.Rerank.APIStyle = RerankStyleCohere
			c.Rerank.Model = ""
		}, "rerank.model"},
		{"llm without key", func(c *Config) {
			c.Rerank.Provider = RerankLLM
			c.Rerank.Model = "gpt-4o-mini"
		}, "rerank.api_key"},
		{"llm without model", func(c *Config) {
			c.Rerank.Provider = RerankLLM
			c.Rerank.APIKey = "sk"
		}, "rerank.model"},
		{"weight out of range", func(c *Config) { c.Ranking.CourtWeights[CourtHR] = 1.5 }, "ranking.court_weights.hr"},
		{"unknown tier", func(c *Config) { c.Ranking.CourtWeights["kantongerecht"] = 0 }, "ranking.court_weights"},
		{"negative per match", func(c *Config) { *c.Ranking.KeywordPerMatch = -0.01 }, "ranking.keyword_per_match"},
		{"negative cap", func(c *Config) { *c.Ranking.KeywordMaxBonus = -1 }, "ranking.keyword_max_bonus"},
		{"unknown cache driver", func(c *Config) { c.Cache.Driver = "memcached" }, "cache.driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !errors.Is(err, domain.ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
			var ce *domain.ConfigError
			if !errors.As(err, &ce) || ce.Field != tt.field {
				t.Errorf("field = %v, want %q", err, tt.field)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Embedding: EmbeddingConfig{Dimensions: 1024}}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != "valkey" || cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("unexpected database defaults %+v", cfg.Database)
	}
	if cfg.Index.Backend != BackendValkey || cfg.Index.Dimensions != 1024 {
		t.Errorf("unexpected index defaults %+v", cfg.Index)
	}
	if cfg.Index.HNSWM != 16 || cfg.Index.HNSWEFConstruct != 200 {
		t.Errorf("unexpected HNSW defaults m=%d ef=%d", cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct)
	}
	if cfg.Index.MaxBatchSize != 100 {
		t.Errorf("expected MaxBatchSize=100, got %d", cfg.Index.MaxBatchSize)
	}
	if cfg.Rerank.Provider != RerankNone || cfg.Rerank.APIStyle != RerankStyleTEI ||
		cfg.Rerank.BatchSize != 20 || cfg.Rerank.MaxDocumentTokens != 512 {
		t.Errorf("unexpected rerank defaults %+v", cfg.Rerank)
	}
	if cfg.Ranking.CourtWeights[CourtHR] != 0.10 || cfg.Ranking.CourtWeights[CourtUnknown] != -0.05 {
		t.Errorf("unexpected court weights %v", cfg.Ranking.CourtWeights)
	}
	if *cfg.Ranking.KeywordPerMatch != 0.015 || *cfg.Ranking.KeywordMaxBonus != 0.045 {
		t.Errorf("unexpected keyword defaults %v/%v", *cfg.Ranking.KeywordPerMatch, *cfg.Ranking.KeywordMaxBonus)
	}
	if cfg.Ranking.CandidatePool != 50 {
		t.Errorf("expected CandidatePool=50, got %d", cfg.Ranking.CandidatePool)
	}
	if cfg.Cache.Driver != CacheMemory || cfg.Cache.TTLSec != 600 || cfg.Cache.Version != "2" {
		t.Errorf("unexpected cache defaults %+v", cfg.Cache)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	zero := 0.0
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Index:   IndexConfig{HNSWM: 32, Dimensions: 768},
		Rerank:  RerankConfig{BatchSize: 10},
		Ranking: RankingConfig{CourtWeights: map[string]float64{CourtHof: 0.07}, KeywordPerMatch: &zero},
		Cache:   CacheConfig{Version: "7"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 || cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("http timeouts overridden: %+v", cfg.HTTP)
	}
	if cfg.Index.HNSWM != 32 || cfg.Embedding.Dimensions != 768 {
		t.Errorf("index settings overridden: %+v", cfg.Index)
	}
	if cfg.Rerank.BatchSize != 10 {
		t.Errorf("expected BatchSize=10, got %d", cfg.Rerank.BatchSize)
	}
	if cfg.Ranking.CourtWeights[CourtHof] != 0.07 || cfg.Ranking.CourtWeights[CourtHR] != 0.10 {
		t.Errorf("unexpected court weights %v", cfg.Ranking.CourtWeights)
	}
	if *cfg.Ranking.KeywordPerMatch != 0 {
		t.Error("explicit zero keyword weight must be kept")
	}
	if cfg.Cache.Version != "7" {
		t.Errorf("expected Version=7, got %q", cfg.Cache.Version)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("JURISRANK_TEST_KEY", "sk-live")

	data := []byte(`
http:
  port: ${JURISRANK_TEST_PORT:-9090}
database:
  addrs: ["localhost:6379"]
embedding:
  api_key: ${JURISRANK_TEST_KEY}
  model: text-embedding-3-small
  dimensions: 1536
rerank:
  provider: llm
  api_key: ${JURISRANK_TEST_KEY}
  model: gpt-4o-mini
ranking:
  court_weights:
    unknown: -0.1
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want default 9090", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "sk-live" || cfg.Rerank.APIKey != "sk-live" {
		t.Errorf("env not expanded: %q / %q", cfg.Embedding.APIKey, cfg.Rerank.APIKey)
	}
	if cfg.Ranking.CourtWeights[CourtUnknown] != -0.1 {
		t.Errorf("unknown weight = %v", cfg.Ranking.CourtWeights[CourtUnknown])
	}
}

func TestParse_LLMWithoutKeyIsConfigError(t *testing.T) {
	data := []byte(`
http: {port: 8080}
database: {addrs: ["localhost:6379"]}
embedding: {model: m, dimensions: 8}
rerank: {provider: llm, model: gpt-4o-mini, api_key: "${JURISRANK_TEST_UNSET}"}
`)
	_, err := Parse(data)
	if !errors.Is(err, domain.ErrConfig) || !strings.Contains(err.Error(), "rerank.api_key") {
		t.Fatalf("expected rerank.api_key config error, got %v", err)
	}
}

func TestLoad_RepositoryConfigs(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RERANK_API_KEY", "sk-test")
	for _, env := range []string{"local", "prod"} {
		t.Run(env, func(t *testing.T) {
			if _, err := Load(env); err != nil {
				t.Fatalf("Load(%q): %v", env, err)
			}
		})
	}
}
