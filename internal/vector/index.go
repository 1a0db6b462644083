// Package vector stores chunk embeddings and selects results by relevance and diversity.
package vector

import (
	"context"
	"errors"
)

// ErrDimensionMismatch is returned when vectors of a different size are added or loaded.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// VectorIndex defines vector storage and similarity search.
type VectorIndex interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Remove(ctx context.Context, ids []string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Dimensions() int
	Close() error
}

// VectorResult is a single hit. Vector is the stored embedding, needed for
// diversity re-ranking.
type VectorResult struct {
	ID     string
	Score  float64
	Vector []float32
}
