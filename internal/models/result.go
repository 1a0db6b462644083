package models

// BuildResult describes an index built (or reused) for one video.
type BuildResult struct {
	VideoID      string   `json:"video_id"`
	DetectedLang string   `json:"detected_lang"`
	Translated   bool     `json:"translated"`
	Reused       bool     `json:"reused"`
	IndexPath    string   `json:"index_path"`
	ChunkCount   int      `json:"chunk_count"`
	DurationMs   int64    `json:"duration_ms"`
	Chunks       []*Chunk `json:"-"`
	// IndexedText is the text the chunks were cut from: the raw transcript, or its translation.
	IndexedText string `json:"-"`
}

// AnswerResult is the outcome of one question asked against a video index.
type AnswerResult struct {
	VideoID    string      `json:"video_id"`
	Question   string      `json:"question"`
	Answer     string      `json:"answer"`
	Citations  []*Citation `json:"citations"`
	DurationMs int64       `json:"duration_ms"`
	Chunks     []*Chunk    `json:"-"`
}

// LookupResult is the outcome of a keyword lookup against a video index.
type LookupResult struct {
	VideoID   string      `json:"video_id"`
	Query     string      `json:"query"`
	Citations []*Citation `json:"citations"`
}
