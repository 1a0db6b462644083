// Package models defines core data structures for transcripts, chunks, citations, and pipeline results.
package models

// TranscriptSnippet is one caption line as returned by a transcript source.
type TranscriptSnippet struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// End returns the time in seconds at which the snippet stops being displayed.
func (s TranscriptSnippet) End() float64 {
	return s.Start + s.Duration
}
