package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kiku/internal/embedding"
	"github.com/hyperjump/kiku/internal/index"
	"github.com/hyperjump/kiku/internal/models"
)

// ErrNoChunks is returned when there is nothing to index.
var ErrNoChunks = errors.New("no chunks to index")

// Indexer embeds chunks and writes them to a per-video index directory.
type Indexer struct {
	embedder embedding.Embedder
	logger   *zap.Logger // optional; when set, logs debug events
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer backed by embedder.
func NewIndexer(embedder embedding.Embedder, opts ...IndexerOption) *Indexer {
	idx := &Indexer{embedder: embedder}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Embedder returns the embedder used for chunks and questions.
func (idx *Indexer) Embedder() embedding.Embedder {
	return idx.embedder
}

// BuildIndex embeds every chunk and writes a fresh index at path. All
// embeddings are computed before anything touches disk, and the new index is
// assembled in a staging directory that replaces path only once complete, so a
// failed build leaves whatever was at path untouched. Video id and language
// are taken from the chunks; chunks without timestamps mark a translated index.
func (idx *Indexer) BuildIndex(ctx context.Context, chunks []*models.Chunk, path string) (*index.Index, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vecs, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vecs) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vecs[i]
	}

	first := chunks[0].Metadata
	meta := index.Meta{
		VideoID:        first.VideoID,
		Lang:           first.Lang,
		Translated:     !first.HasTimestamps(),
		EmbeddingModel: idx.embedder.Model(),
	}

	staging := path + ".staging-" + uuid.New().String()[:8]
	if err := idx.write(ctx, staging, chunks, meta); err != nil {
		_ = index.Remove(staging)
		return nil, err
	}
	if err := idx.swap(staging, path); err != nil {
		_ = index.Remove(staging)
		return nil, err
	}

	ix, err := index.Open(path, idx.embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("reopen index: %w", err)
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer built index",
			zap.String("video_id", meta.VideoID),
			zap.String("path", path),
			zap.Int("chunks", len(chunks)))
	}
	return ix, nil
}

func (idx *Indexer) write(ctx context.Context, dir string, chunks []*models.Chunk, meta index.Meta) error {
	ix, err := index.Create(dir, idx.embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := ix.Add(ctx, chunks); err != nil {
		ix.Close()
		return err
	}
	if err := ix.Commit(ctx, meta); err != nil {
		ix.Close()
		return err
	}
	return ix.Close()
}

// swap moves staging to path. Any previous index is renamed aside first and
// restored if the move fails, and deleted only once the new one is in place.
// Handles still open on the previous index keep reading the moved files.
func (idx *Indexer) swap(staging, path string) error {
	var previous string
	if _, err := os.Stat(path); err == nil {
		previous = path + ".previous-" + uuid.New().String()[:8]
		if err := os.Rename(path, previous); err != nil {
			return fmt.Errorf("move previous index aside: %w", err)
		}
	}
	if err := os.Rename(staging, path); err != nil {
		if previous != "" {
			if rerr := os.Rename(previous, path); rerr != nil && idx.logger != nil {
				idx.logger.Error("restore previous index",
					zap.String("path", path), zap.String("previous", previous), zap.Error(rerr))
			}
		}
		return fmt.Errorf("install index: %w", err)
	}
	if previous != "" {
		if err := index.Remove(previous); err != nil && idx.logger != nil {
			idx.logger.Warn("remove previous index", zap.String("path", previous), zap.Error(err))
		}
	}
	return nil
}

// Load opens a previously built index at path.
func (idx *Indexer) Load(path string) (*index.Index, error) {
	return index.Open(path, idx.embedder.Dimensions())
}
