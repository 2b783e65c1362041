// Package embedder generates vector embeddings for ticket text.
//
// One Embedder is created at startup, passed to the ingestion pipeline and
// the searcher, and closed at shutdown. Every provider fronts its calls with
// an LRU cache keyed by the SHA-256 of the text, so repeated query strings
// cost nothing after the first call.
//
// # Basic Usage
//
//	emb, err := embedder.New(embedder.Config{Provider: "local", Dimension: 384})
//	if err != nil {
//	    return err
//	}
//	defer emb.Close()
//
//	result, err := emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{
//	    Text: ticket.EmbeddingText(),
//	})
//
// # Providers
//
// local (default):
//   - Hashed bag of words, L2-normalized, any dimension
//   - Offline and deterministic; good for tests and small stores
//
// hugot:
//   - sentence-transformers/all-MiniLM-L6-v2 run in-process (384 dimensions)
//   - Needs the ONNX model directory (HUGOT_MODEL_DIR)
//
// openai / azure:
//   - OpenAI embeddings API through go-openai, or an Azure deployment
//   - The dimensions parameter is passed through for text-embedding-3 models
//
// jina:
//   - Jina AI embeddings API (jina-embeddings-v3)
//
// Remote providers retry transient failures with exponential backoff.
// Authentication and request errors fail immediately.
package embedder
