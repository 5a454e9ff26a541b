// Package embedding turns document and query text into vectors.
package embedding

import "context"

// Embedder is implemented by every embedding backend
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

var (
	_ Embedder = &OllamaConnector{}
	_ Embedder = &GenAIConnector{}
	_ Embedder = &MockConnector{}
	_ Embedder = &CachedEmbedder{}
)
