// Package config loads ticketvec settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/dshills/ticketvec-mcp/internal/embedder"
	"github.com/dshills/ticketvec-mcp/internal/ingester"
	"github.com/dshills/ticketvec-mcp/internal/tracker"
)

// Defaults that must match the struct tags below.
const (
	DefaultDBDir              = "databases"
	DefaultEmbeddingProvider  = embedder.ProviderLocal
	DefaultEmbeddingDimension = embedder.DefaultDimension
	DefaultSearchLimit        = 5
	DefaultLogLevel           = "INFO"
	DefaultLogFormat          = "text"
)

// Config holds all environment-based configuration.
type Config struct {
	// DBDir is the directory holding one store file per project.
	// Env: DB_DIR (default: databases)
	DBDir string `envconfig:"DB_DIR" default:"databases"`

	// EmbeddingProvider is one of local, openai, azure, jina, hugot.
	// Env: EMBEDDING_PROVIDER (default: local)
	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER" default:"local"`

	// Env: EMBEDDING_DIMENSION (default: 384)
	EmbeddingDimension int `envconfig:"EMBEDDING_DIMENSION" default:"384"`

	// Env: EMBEDDING_MODEL
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL"`

	// Env: EMBEDDING_API_KEY
	EmbeddingAPIKey string `envconfig:"EMBEDDING_API_KEY"`

	// Env: EMBEDDING_BASE_URL
	EmbeddingBaseURL string `envconfig:"EMBEDDING_BASE_URL"`

	// EmbeddingCacheSize bounds the LRU embedding cache; negative disables it.
	// Env: EMBEDDING_CACHE_SIZE (default: 10000)
	EmbeddingCacheSize int `envconfig:"EMBEDDING_CACHE_SIZE" default:"10000"`

	// HugotModelDir points at a local all-MiniLM-L6-v2 export for the hugot provider.
	// Env: HUGOT_MODEL_DIR
	HugotModelDir string `envconfig:"HUGOT_MODEL_DIR"`

	// Tracker credentials used by sync. Missing values mean local-only mode.
	// Env: JIRA_SERVER, JIRA_USER, JIRA_API_TOKEN
	JiraServer   string `envconfig:"JIRA_SERVER"`
	JiraUser     string `envconfig:"JIRA_USER"`
	JiraAPIToken string `envconfig:"JIRA_API_TOKEN"`

	// IngestDedup is upsert or append.
	// Env: INGEST_DEDUP (default: upsert)
	IngestDedup string `envconfig:"INGEST_DEDUP" default:"upsert"`

	// IngestWorkers bounds concurrent embedding calls; 0 means one per CPU.
	// Env: INGEST_WORKERS (default: 0)
	IngestWorkers int `envconfig:"INGEST_WORKERS" default:"0"`

	// SearchDefaultLimit is used when a caller does not pass top_n.
	// Env: SEARCH_DEFAULT_LIMIT (default: 5)
	SearchDefaultLimit int `envconfig:"SEARCH_DEFAULT_LIMIT" default:"5"`

	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is text or json.
	// Env: LOG_FORMAT (default: text)
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// LogFile redirects logs away from stderr. Stdout is never used since
	// it carries the MCP stdio transport.
	// Env: LOG_FILE
	LogFile string `envconfig:"LOG_FILE"`

	// MetricsAddr enables the Prometheus endpoint when set, e.g. ":9090".
	// Env: METRICS_ADDR
	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// LoadDotEnv loads environment variables from a .env file. If path is empty
// it loads ".env" from the current directory. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// LoadFromEnv reads configuration from environment variables only.
func LoadFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads an optional .env file, then the environment, then validates.
// Variables already set in the environment win over the file.
func Load(envPath string) (Config, error) {
	if err := LoadDotEnv(envPath); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", envPath, err)
	}
	cfg, err := LoadFromEnv()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown providers, policies and formats, and
// non-positive sizes.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.DBDir) == "" {
		problems = append(problems, "DB_DIR must not be empty")
	}
	if !slices.Contains(embedder.Providers, strings.ToLower(c.EmbeddingProvider)) {
		problems = append(problems, fmt.Sprintf("EMBEDDING_PROVIDER %q is not one of %s",
			c.EmbeddingProvider, strings.Join(embedder.Providers, ", ")))
	}
	if c.EmbeddingDimension <= 0 {
		problems = append(problems, fmt.Sprintf("EMBEDDING_DIMENSION must be positive, got %d", c.EmbeddingDimension))
	}
	if _, err := ingester.ParseDedupPolicy(c.IngestDedup); err != nil {
		problems = append(problems, "INGEST_DEDUP: "+err.Error())
	}
	if c.IngestWorkers < 0 {
		problems = append(problems, fmt.Sprintf("INGEST_WORKERS must not be negative, got %d", c.IngestWorkers))
	}
	if c.SearchDefaultLimit <= 0 {
		problems = append(problems, fmt.Sprintf("SEARCH_DEFAULT_LIMIT must be positive, got %d", c.SearchDefaultLimit))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("LOG_FORMAT %q is not text or json", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// EmbedderConfig converts the embedding settings for embedder.New.
func (c Config) EmbedderConfig() embedder.Config {
	return embedder.Config{
		Provider:  c.EmbeddingProvider,
		APIKey:    c.EmbeddingAPIKey,
		BaseURL:   c.EmbeddingBaseURL,
		Model:     c.EmbeddingModel,
		Dimension: c.EmbeddingDimension,
		CacheSize: c.EmbeddingCacheSize,
		ModelDir:  c.HugotModelDir,
	}
}

// JiraConfig converts the tracker settings for tracker.NewJiraClient.
func (c Config) JiraConfig() tracker.JiraConfig {
	return tracker.JiraConfig{
		Server:   c.JiraServer,
		User:     c.JiraUser,
		APIToken: c.JiraAPIToken,
	}
}

// IngesterConfig converts the ingestion settings. Call Validate first.
func (c Config) IngesterConfig() ingester.Config {
	policy, _ := ingester.ParseDedupPolicy(c.IngestDedup)
	return ingester.Config{Dedup: policy, Workers: c.IngestWorkers}
}
