// Package transcript fetches timed caption snippets for a video.
//
// Every backend implements Source. The Fetcher applies track selection and
// snippet cleanup on top, so backends only report what exists.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kiku/internal/models"
)

var (
	// ErrTranscriptsDisabled means the video owner has turned captions off.
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	// ErrNoTranscript means captions are enabled but no track is available.
	ErrNoTranscript = errors.New("no transcript available for this video")
	// ErrEmptyTranscript means a track was fetched but held no text.
	ErrEmptyTranscript = errors.New("transcript fetched but empty")
)

// Track describes one caption track of a video.
type Track struct {
	VideoID      string `json:"video_id"`
	LanguageCode string `json:"language_code"`
	Name         string `json:"name,omitempty"`
	// Generated is true for automatic speech recognition tracks.
	Generated bool `json:"generated"`
	// Location is backend-specific: a URL or a file path.
	Location string `json:"-"`
}

// Source lists and downloads caption tracks.
type Source interface {
	ListTracks(ctx context.Context, videoID string) ([]Track, error)
	FetchTrack(ctx context.Context, track Track) ([]models.TranscriptSnippet, error)
}

// Result is a fetched transcript and the track it came from.
type Result struct {
	Track    Track
	Snippets []models.TranscriptSnippet
}

// Fetcher selects the best track for a video and returns its cleaned snippets.
type Fetcher struct {
	source Source
	logger *zap.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithLogger sets the logger used for track selection messages.
func WithLogger(l *zap.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher wraps source.
func NewFetcher(source Source, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{source: source}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch returns the snippets of the preferred track. Snippets whose text is
// blank after trimming are dropped; if none remain ErrEmptyTranscript is
// returned.
func (f *Fetcher) Fetch(ctx context.Context, videoID, preferredLang string) (*Result, error) {
	tracks, err := f.source.ListTracks(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("list tracks for %s: %w", videoID, err)
	}
	track, ok := SelectTrack(tracks, preferredLang)
	if !ok {
		return nil, fmt.Errorf("%s: %w", videoID, ErrNoTranscript)
	}
	raw, err := f.source.FetchTrack(ctx, track)
	if err != nil {
		return nil, fmt.Errorf("fetch %s track for %s: %w", track.LanguageCode, videoID, err)
	}

	snippets := Clean(raw)
	if len(snippets) == 0 {
		return nil, fmt.Errorf("%s: %w", videoID, ErrEmptyTranscript)
	}
	if f.logger != nil {
		f.logger.Info("fetched transcript",
			zap.String("video_id", videoID),
			zap.String("lang", track.LanguageCode),
			zap.Bool("generated", track.Generated),
			zap.Int("snippets", len(snippets)),
			zap.Int("dropped", len(raw)-len(snippets)))
	}
	return &Result{Track: track, Snippets: snippets}, nil
}

// SelectTrack picks, in order: a manual track in preferredLang, a generated
// track in preferredLang, then the first track listed.
func SelectTrack(tracks []Track, preferredLang string) (Track, bool) {
	if len(tracks) == 0 {
		return Track{}, false
	}
	for _, generated := range []bool{false, true} {
		for _, t := range tracks {
			if t.Generated == generated && sameLanguage(t.LanguageCode, preferredLang) {
				return t, true
			}
		}
	}
	return tracks[0], true
}

func sameLanguage(a, b string) bool {
	return b != "" && strings.EqualFold(a, b)
}

// Clean trims snippet text and drops blank snippets.
func Clean(snippets []models.TranscriptSnippet) []models.TranscriptSnippet {
	out := make([]models.TranscriptSnippet, 0, len(snippets))
	for _, s := range snippets {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// IsUnavailable reports whether err means the video has no usable transcript.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrTranscriptsDisabled) ||
		errors.Is(err, ErrNoTranscript) ||
		errors.Is(err, ErrEmptyTranscript)
}
