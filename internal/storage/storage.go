// Package storage persists chunk text and timestamp metadata for one video index.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kiku/internal/models"
)

// ErrChunkNotFound is returned when a chunk id is not stored.
var ErrChunkNotFound = errors.New("chunk not found")

// Storage defines chunk and index metadata persistence.
type Storage interface {
	// Chunk operations
	BatchCreateChunks(ctx context.Context, chunks []*models.Chunk) error
	GetChunk(ctx context.Context, id string) (*models.Chunk, error)
	GetChunks(ctx context.Context, ids []string) ([]*models.Chunk, error)
	ListChunks(ctx context.Context) ([]*models.Chunk, error)
	CountChunks(ctx context.Context) (int64, error)

	// Index metadata (video id, language, embedding model, completion marker)
	SetMeta(ctx context.Context, key, value string) error
	GetMeta(ctx context.Context, key string) (string, bool, error)

	// Reset removes every chunk and metadata row.
	Reset(ctx context.Context) error
	Close() error
}
