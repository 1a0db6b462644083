package transcript

import (
	"context"
	"sync"

	"github.com/hyperjump/kiku/internal/models"
)

// StaticSource serves transcripts held in memory.
type StaticSource struct {
	mu       sync.Mutex
	tracks   map[string][]Track
	snippets map[Track][]models.TranscriptSnippet
	disabled map[string]bool
	fetches  int
}

// NewStaticSource returns an empty source.
func NewStaticSource() *StaticSource {
	return &StaticSource{
		tracks:   make(map[string][]Track),
		snippets: make(map[Track][]models.TranscriptSnippet),
		disabled: make(map[string]bool),
	}
}

// Add registers a track for videoID.
func (s *StaticSource) Add(videoID, lang string, generated bool, snippets []models.TranscriptSnippet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := Track{VideoID: videoID, LanguageCode: lang, Generated: generated}
	s.tracks[videoID] = append(s.tracks[videoID], t)
	s.snippets[t] = snippets
}

// Disable makes ListTracks report ErrTranscriptsDisabled for videoID.
func (s *StaticSource) Disable(videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled[videoID] = true
}

// Fetches returns how many tracks have been downloaded.
func (s *StaticSource) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func (s *StaticSource) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled[videoID] {
		return nil, ErrTranscriptsDisabled
	}
	return append([]Track(nil), s.tracks[videoID]...), nil
}

func (s *StaticSource) FetchTrack(ctx context.Context, track Track) ([]models.TranscriptSnippet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snippets, ok := s.snippets[track]
	if !ok {
		return nil, ErrNoTranscript
	}
	s.fetches++
	return append([]models.TranscriptSnippet(nil), snippets...), nil
}
