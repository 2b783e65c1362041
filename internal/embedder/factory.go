package embedder

import (
	"fmt"
	"strings"
)

// Config holds embedder configuration
type Config struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
	CacheSize int
	ModelDir  string // hugot model files
}

func (c Config) dimension() int {
	if c.Dimension > 0 {
		return c.Dimension
	}
	return DefaultDimension
}

// Providers lists the accepted provider names
var Providers = []string{ProviderLocal, ProviderOpenAI, ProviderAzure, ProviderJina, ProviderHugot}

// New creates an embedder with explicit configuration. Every provider gets an
// LRU cache unless CacheSize is negative.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize >= 0 {
		cache = NewCache(cfg.CacheSize)
	}

	cfg.Provider = strings.ToLower(cfg.Provider)
	switch cfg.Provider {
	case ProviderLocal, "":
		return NewLocalProvider(cfg, cache)
	case ProviderOpenAI, ProviderAzure:
		return NewOpenAIProvider(cfg, cache)
	case ProviderJina:
		return NewJinaProvider(cfg, cache)
	case ProviderHugot:
		return NewHugotProvider(cfg, cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}
}
