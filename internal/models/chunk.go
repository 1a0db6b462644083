package models

// ChunkMetadata holds the provenance of a chunk. Start and End are nil when the
// content was produced from reflowed (translated) text and no timestamp applies.
type ChunkMetadata struct {
	VideoID string   `json:"video_id"`
	Start   *float64 `json:"start"`
	End     *float64 `json:"end"`
	Lang    string   `json:"lang"`
}

// HasTimestamps reports whether both start and end are known.
func (m ChunkMetadata) HasTimestamps() bool {
	return m.Start != nil && m.End != nil
}

// Chunk is the atomic unit stored in and retrieved from a video index.
type Chunk struct {
	ID         string        `json:"id,omitempty"`
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
	ChunkIndex int           `json:"chunk_index"`
	Embedding  []float32     `json:"-"`
}

// Seconds returns a pointer to v, for building timestamped metadata.
func Seconds(v float64) *float64 {
	return &v
}
