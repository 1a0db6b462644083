// Package keyword provides term search over transcript chunks.
package keyword

import (
	"context"

	"github.com/hyperjump/kiku/internal/models"
)

// SearchOptions tune a keyword search. Nil means plain match semantics.
type SearchOptions struct {
	// PhraseBoost multiplies the score of chunks containing the query as a phrase.
	PhraseBoost float64
	// Fuzziness enables typo-tolerant matching with the given edit distance (1 or 2).
	Fuzziness int
}

// KeywordIndex defines keyword search operations.
type KeywordIndex interface {
	IndexChunks(ctx context.Context, chunks []*models.Chunk) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string
	Score float64
}
