// Package indexer turns a timed transcript into embedded, persisted chunks.
package indexer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/textsplit"
)

// Default chunk sizing, in characters.
const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 150
)

// Chunker re-splits segments or translated text into overlapping pieces sized for embedding.
type Chunker struct {
	splitter *textsplit.Splitter
}

// NewChunker creates a chunker with the given size and overlap (in characters).
func NewChunker(chunkSize, chunkOverlap int) (*Chunker, error) {
	s, err := textsplit.New(chunkSize, chunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}
	return &Chunker{splitter: s}, nil
}

// ChunkSegments splits every segment and copies its timestamps and language
// onto each piece. Pieces share their parent's range even though they cover
// only part of it.
func (c *Chunker) ChunkSegments(segments []*models.Chunk) []*models.Chunk {
	var out []*models.Chunk
	for _, seg := range segments {
		for _, piece := range c.splitter.Split(seg.Content) {
			meta := seg.Metadata
			meta.Start = copySeconds(seg.Metadata.Start)
			meta.End = copySeconds(seg.Metadata.End)
			out = append(out, newChunk(piece, meta, len(out)))
		}
	}
	return out
}

// ChunkText splits reflowed text, such as a translation, into chunks without
// timestamps.
func (c *Chunker) ChunkText(text, videoID, lang string) []*models.Chunk {
	var out []*models.Chunk
	for _, piece := range c.splitter.Split(text) {
		out = append(out, newChunk(piece, models.ChunkMetadata{VideoID: videoID, Lang: lang}, len(out)))
	}
	return out
}

func newChunk(content string, meta models.ChunkMetadata, index int) *models.Chunk {
	return &models.Chunk{
		ID:         fmt.Sprintf("%s_%04d_%s", meta.VideoID, index, uuid.New().String()[:8]),
		Content:    content,
		Metadata:   meta,
		ChunkIndex: index,
	}
}

func copySeconds(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return models.Seconds(*v)
}
