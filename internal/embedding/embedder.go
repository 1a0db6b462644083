// Package embedding turns chunk text into vectors for similarity search.
package embedding

import "context"

// Embedder produces vector embeddings for text. Implementations return
// unit-length vectors so inner product equals cosine similarity.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Model() string
	Close() error
}
