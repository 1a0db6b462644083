// Package index is the persistent, per-video store of embedded chunks. An
// index directory holds the chunk table, the vector file and a keyword index.
package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hyperjump/kiku/internal/keyword"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/storage"
	"github.com/hyperjump/kiku/internal/vector"
)

// File names inside an index directory.
const (
	ChunksFile  = "chunks.db"
	VectorsFile = "vectors.bin"
	KeywordDir  = "keyword.bleve"
)

// Metadata keys.
const (
	metaVideoID    = "video_id"
	metaLang       = "lang"
	metaTranslated = "translated"
	metaModel      = "embedding_model"
	metaDimensions = "dimensions"
	metaChunks     = "chunk_count"
	metaBuiltAt    = "built_at"
	metaComplete   = "complete"
)

// ErrNotFound is returned when no completed index exists at a path.
var ErrNotFound = errors.New("index not found")

// ErrLocked is returned by Open when another handle already holds the index.
var ErrLocked = keyword.ErrLocked

// Meta describes a built index.
type Meta struct {
	VideoID        string    `json:"video_id"`
	Lang           string    `json:"lang"`
	Translated     bool      `json:"translated"`
	EmbeddingModel string    `json:"embedding_model"`
	Dimensions     int       `json:"dimensions"`
	ChunkCount     int       `json:"chunk_count"`
	BuiltAt        time.Time `json:"built_at"`
}

// Index is an open handle on one index directory.
type Index struct {
	path     string
	store    storage.Storage
	vectors  vector.VectorIndex
	keywords keyword.KeywordIndex
	meta     Meta
}

// Candidate is a chunk returned by vector search together with its score and embedding.
type Candidate struct {
	Chunk  *models.Chunk
	Score  float64
	Vector []float32
}

// Hit is a chunk returned by keyword search.
type Hit struct {
	Chunk *models.Chunk
	Score float64
}

// Exists reports whether a completed index lives at path.
func Exists(path string) bool {
	if _, err := os.Stat(filepath.Join(path, VectorsFile)); err != nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(path, ChunksFile)); err != nil {
		return false
	}
	store, err := storage.NewSQLiteStorage(filepath.Join(path, ChunksFile))
	if err != nil {
		return false
	}
	defer store.Close()
	v, ok, err := store.GetMeta(context.Background(), metaComplete)
	return err == nil && ok && v == "1"
}

// Create makes an empty index at path, removing anything already there.
func Create(path string, dimensions int) (*Index, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("clear index dir: %w", err)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	vecs, err := vector.NewMemoryIndex(dimensions)
	if err != nil {
		return nil, err
	}
	return open(path, vecs, Meta{Dimensions: dimensions})
}

// Open loads the completed index at path. dimensions must match the
// embedder that built it.
func Open(path string, dimensions int) (*Index, error) {
	if !Exists(path) {
		return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
	}
	stored, err := vector.ReadDimensions(filepath.Join(path, VectorsFile))
	if err != nil {
		return nil, fmt.Errorf("read vector header: %w", err)
	}
	if stored != dimensions {
		return nil, fmt.Errorf("%w: index at %s has %d dimensions, embedder produces %d",
			vector.ErrDimensionMismatch, path, stored, dimensions)
	}
	vecs, err := vector.NewMemoryIndex(dimensions)
	if err != nil {
		return nil, err
	}
	if err := vecs.Load(filepath.Join(path, VectorsFile)); err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}
	ix, err := open(path, vecs, Meta{})
	if err != nil {
		return nil, err
	}
	if err := ix.loadMeta(context.Background()); err != nil {
		ix.Close()
		return nil, err
	}
	return ix, nil
}

func open(path string, vecs vector.VectorIndex, meta Meta) (*Index, error) {
	store, err := storage.NewSQLiteStorage(filepath.Join(path, ChunksFile))
	if err != nil {
		return nil, err
	}
	kw, err := keyword.NewBleveIndex(filepath.Join(path, KeywordDir))
	if err != nil {
		store.Close()
		return nil, err
	}
	return &Index{path: path, store: store, vectors: vecs, keywords: kw, meta: meta}, nil
}

// Remove deletes the index directory at path.
func Remove(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}
	return nil
}

// Add stores chunks that already carry embeddings.
func (ix *Index) Add(ctx context.Context, chunks []*models.Chunk) error {
	ids := make([]string, len(chunks))
	vecs := make([][]float32, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("chunk %s has no embedding", c.ID)
		}
		ids[i] = c.ID
		vecs[i] = c.Embedding
	}
	if err := ix.store.BatchCreateChunks(ctx, chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	if err := ix.vectors.Add(ctx, ids, vecs); err != nil {
		return fmt.Errorf("add vectors: %w", err)
	}
	if err := ix.keywords.IndexChunks(ctx, chunks); err != nil {
		return fmt.Errorf("index keywords: %w", err)
	}
	return nil
}

// Commit persists vectors and metadata. The completion marker is written last,
// so an interrupted build is never reported by Exists.
func (ix *Index) Commit(ctx context.Context, meta Meta) error {
	if err := ix.vectors.Save(filepath.Join(ix.path, VectorsFile)); err != nil {
		return fmt.Errorf("save vectors: %w", err)
	}
	meta.Dimensions = ix.vectors.Dimensions()
	meta.ChunkCount = ix.vectors.Size()
	if meta.BuiltAt.IsZero() {
		meta.BuiltAt = time.Now().UTC()
	}
	pairs := [][2]string{
		{metaVideoID, meta.VideoID},
		{metaLang, meta.Lang},
		{metaTranslated, strconv.FormatBool(meta.Translated)},
		{metaModel, meta.EmbeddingModel},
		{metaDimensions, strconv.Itoa(meta.Dimensions)},
		{metaChunks, strconv.Itoa(meta.ChunkCount)},
		{metaBuiltAt, meta.BuiltAt.Format(time.RFC3339)},
		{metaComplete, "1"},
	}
	for _, p := range pairs {
		if err := ix.store.SetMeta(ctx, p[0], p[1]); err != nil {
			return fmt.Errorf("write %s: %w", p[0], err)
		}
	}
	ix.meta = meta
	return nil
}

func (ix *Index) loadMeta(ctx context.Context) error {
	get := func(key string) string {
		v, _, _ := ix.store.GetMeta(ctx, key)
		return v
	}
	ix.meta = Meta{
		VideoID:        get(metaVideoID),
		Lang:           get(metaLang),
		EmbeddingModel: get(metaModel),
	}
	ix.meta.Dimensions, _ = strconv.Atoi(get(metaDimensions))
	ix.meta.Translated, _ = strconv.ParseBool(get(metaTranslated))
	ix.meta.ChunkCount, _ = strconv.Atoi(get(metaChunks))
	ix.meta.BuiltAt, _ = time.Parse(time.RFC3339, get(metaBuiltAt))
	if ix.meta.VideoID == "" {
		return fmt.Errorf("index at %s has no video id", ix.path)
	}
	return nil
}

// Candidates returns up to fetchK chunks ranked by similarity to query.
func (ix *Index) Candidates(ctx context.Context, query []float32, fetchK int) ([]*Candidate, error) {
	results, err := ix.vectors.Search(ctx, query, fetchK)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	chunks, err := ix.store.GetChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load candidate chunks: %w", err)
	}
	out := make([]*Candidate, len(results))
	for i, r := range results {
		out[i] = &Candidate{Chunk: chunks[i], Score: r.Score, Vector: r.Vector}
	}
	return out, nil
}

// Lookup runs a keyword search over chunk content.
func (ix *Index) Lookup(ctx context.Context, query string, limit int, opts *keyword.SearchOptions) ([]*Hit, error) {
	results, err := ix.keywords.Search(ctx, query, limit, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	chunks, err := ix.store.GetChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load keyword hits: %w", err)
	}
	out := make([]*Hit, len(results))
	for i, r := range results {
		out[i] = &Hit{Chunk: chunks[i], Score: r.Score}
	}
	return out, nil
}

// Chunks returns every stored chunk in index order.
func (ix *Index) Chunks(ctx context.Context) ([]*models.Chunk, error) {
	return ix.store.ListChunks(ctx)
}

// Meta returns the index description.
func (ix *Index) Meta() Meta { return ix.meta }

// Path returns the index directory.
func (ix *Index) Path() string { return ix.path }

// Size returns the number of embedded chunks.
func (ix *Index) Size() int { return ix.vectors.Size() }

// DiskUsage returns the bytes used by the index directory.
func (ix *Index) DiskUsage() (int64, error) {
	return storage.DiskUsageBytes(ix.path)
}

// Close releases the chunk store and keyword index.
func (ix *Index) Close() error {
	var errs []error
	if ix.keywords != nil {
		errs = append(errs, ix.keywords.Close())
		ix.keywords = nil
	}
	if ix.store != nil {
		errs = append(errs, ix.store.Close())
		ix.store = nil
	}
	if ix.vectors != nil {
		errs = append(errs, ix.vectors.Close())
	}
	return errors.Join(errs...)
}
