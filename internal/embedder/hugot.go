package embedder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

const hugotBatchMax = 16

// hugotRuntime holds the process-wide session and pipeline. The mutex
// serializes initialization and inference.
var hugotRuntime struct {
	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
	users    int
}

// HugotProvider embeds text in-process with a sentence-transformers ONNX
// model (all-MiniLM-L6-v2 by default) through the pure Go hugot backend.
type HugotProvider struct {
	modelDir  string
	dimension int
	cache     *Cache
	closeOnce sync.Once
}

// NewHugotProvider loads the model found under cfg.ModelDir. The directory
// must contain tokenizer.json, either directly or in one subdirectory.
func NewHugotProvider(cfg Config, cache *Cache) (*HugotProvider, error) {
	if cfg.ModelDir == "" {
		return nil, fmt.Errorf("%w: hugot requires a model directory", ErrNoProviderEnabled)
	}
	modelPath, err := resolveModelPath(cfg.ModelDir)
	if err != nil {
		return nil, err
	}
	if err := acquireHugot(modelPath); err != nil {
		return nil, err
	}
	return &HugotProvider{modelDir: modelPath, dimension: cfg.dimension(), cache: cache}, nil
}

func resolveModelPath(dir string) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, "tokenizer.json")); err == nil {
		return dir, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read model directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(candidate, "tokenizer.json")); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no model with tokenizer.json found in %s", dir)
}

func acquireHugot(modelPath string) error {
	hugotRuntime.mu.Lock()
	defer hugotRuntime.mu.Unlock()

	if hugotRuntime.pipeline != nil {
		hugotRuntime.users++
		return nil
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return fmt.Errorf("create hugot session: %w", err)
	}
	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "ticket-embeddings",
		Options: []hugot.FeatureExtractionOption{
			pipelines.WithNormalization(),
		},
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("create feature extraction pipeline: %w", err)
	}

	hugotRuntime.session = session
	hugotRuntime.pipeline = pipeline
	hugotRuntime.users = 1
	return nil
}

func (h *HugotProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	resp, err := h.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{req.Text}})
	if err != nil {
		return nil, err
	}
	return resp.Embeddings[0], nil
}

func (h *HugotProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	embeddings, err := cachedBatch(h.cache, req.Texts, func(texts []string) ([]*Embedding, error) {
		out := make([]*Embedding, 0, len(texts))
		for start := 0; start < len(texts); start += hugotBatchMax {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			end := min(start+hugotBatchMax, len(texts))
			vectors, err := runHugot(texts[start:end])
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
			}
			for _, vec := range vectors {
				out = append(out, &Embedding{
					Vector:    vec,
					Dimension: len(vec),
					Provider:  ProviderHugot,
					Model:     DefaultHugotModel,
				})
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   ProviderHugot,
		Model:      DefaultHugotModel,
	}, nil
}

func runHugot(texts []string) ([][]float32, error) {
	hugotRuntime.mu.Lock()
	defer hugotRuntime.mu.Unlock()

	if hugotRuntime.pipeline == nil {
		return nil, fmt.Errorf("hugot pipeline closed")
	}
	result, err := hugotRuntime.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("run embedding pipeline: %w", err)
	}
	return result.Embeddings, nil
}

func (h *HugotProvider) Dimension() int {
	return h.dimension
}

func (h *HugotProvider) Provider() string {
	return ProviderHugot
}

func (h *HugotProvider) Model() string {
	return DefaultHugotModel
}

// Close releases the shared session once the last provider is closed
func (h *HugotProvider) Close() error {
	var err error
	h.closeOnce.Do(func() {
		hugotRuntime.mu.Lock()
		defer hugotRuntime.mu.Unlock()

		hugotRuntime.users--
		if hugotRuntime.users > 0 || hugotRuntime.session == nil {
			return
		}
		err = hugotRuntime.session.Destroy()
		hugotRuntime.session = nil
		hugotRuntime.pipeline = nil
	})
	return err
}
