// Package search retrieves the transcript chunks that best answer a question.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kiku/internal/embedding"
	"github.com/hyperjump/kiku/internal/index"
	"github.com/hyperjump/kiku/internal/keyword"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/vector"
)

// Retrieval defaults.
const (
	DefaultK          = 5
	DefaultFetchK     = 20
	DefaultLambdaMult = 0.5
)

// Config tunes diversity re-ranking.
type Config struct {
	// FetchK is how many candidates are fetched by similarity before re-ranking.
	FetchK int
	// LambdaMult weighs relevance (1) against novelty (0).
	LambdaMult float64
	// Fuzziness enables typo tolerance for keyword lookups.
	Fuzziness int
}

// Retriever runs maximal-marginal-relevance retrieval and keyword lookups.
type Retriever struct {
	embedder embedding.Embedder
	cfg      Config
	logger   *zap.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Retriever) { r.logger = l }
}

// NewRetriever creates a retriever. A zero FetchK falls back to the default;
// a LambdaMult outside [0, 1] is clamped, and 0 means pure novelty.
func NewRetriever(embedder embedding.Embedder, cfg Config, opts ...Option) *Retriever {
	if cfg.FetchK <= 0 {
		cfg.FetchK = DefaultFetchK
	}
	if cfg.LambdaMult < 0 {
		cfg.LambdaMult = 0
	}
	if cfg.LambdaMult > 1 {
		cfg.LambdaMult = 1
	}
	r := &Retriever{embedder: embedder, cfg: cfg}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Retrieve returns up to k chunks for question. Candidates are over-fetched by
// similarity, then picked greedily to balance relevance against redundancy
// with chunks already picked. The result is in pick order, not strictly by score.
func (r *Retriever) Retrieve(ctx context.Context, ix *index.Index, question string, k int) ([]*models.Chunk, error) {
	if k <= 0 {
		k = DefaultK
	}
	fetchK := r.cfg.FetchK
	if fetchK < k {
		fetchK = k
	}
	q, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	cands, err := ix.Candidates(ctx, q, fetchK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	vecs := make([][]float32, len(cands))
	for i, c := range cands {
		vecs[i] = c.Vector
	}
	picks := vector.MaxMarginalRelevance(q, vecs, k, r.cfg.LambdaMult)
	out := make([]*models.Chunk, len(picks))
	for i, p := range picks {
		out[i] = cands[p].Chunk
	}
	if r.logger != nil {
		r.logger.Debug("retrieved chunks",
			zap.String("video_id", ix.Meta().VideoID),
			zap.Int("candidates", len(cands)),
			zap.Int("selected", len(out)))
	}
	return out, nil
}

// Lookup returns chunks containing the query terms, best match first.
// Chunks quoting the query as a phrase are promoted.
func (r *Retriever) Lookup(ctx context.Context, ix *index.Index, query string, limit int) ([]*models.Chunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.ErrEmptyQuestion
	}
	if limit <= 0 {
		limit = DefaultK
	}
	hits, err := ix.Lookup(ctx, query, limit, &keyword.SearchOptions{PhraseBoost: 2, Fuzziness: r.cfg.Fuzziness})
	if err != nil {
		return nil, fmt.Errorf("keyword lookup: %w", err)
	}
	out := make([]*models.Chunk, len(hits))
	for i, h := range hits {
		out[i] = h.Chunk
	}
	return out, nil
}
