package transcript

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hyperjump/kiku/internal/models"
)

// DefaultYouTubeURL is the site the watch page is read from.
const DefaultYouTubeURL = "https://www.youtube.com"

const (
	playerResponseMarker = "ytInitialPlayerResponse = "
	captionTracksPath    = "captions.playerCaptionsTracklistRenderer.captionTracks"
	userAgent            = "Mozilla/5.0 (X11; Linux x86_64) kiku"
	maxPageBytes         = 8 << 20
)

// YouTubeSource reads caption tracks from the watch page player response and
// downloads them as timed text XML.
type YouTubeSource struct {
	baseURL    string
	httpClient *http.Client
}

// YouTubeOption configures a YouTubeSource.
type YouTubeOption func(*YouTubeSource)

// WithBaseURL points the source at a different host, mainly for tests.
func WithBaseURL(u string) YouTubeOption {
	return func(s *YouTubeSource) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPTimeout bounds every request. Zero means no timeout.
func WithHTTPTimeout(d time.Duration) YouTubeOption {
	return func(s *YouTubeSource) { s.httpClient.Timeout = d }
}

// NewYouTubeSource creates a source for youtube.com.
func NewYouTubeSource(opts ...YouTubeOption) *YouTubeSource {
	s := &YouTubeSource{baseURL: DefaultYouTubeURL, httpClient: &http.Client{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListTracks returns the caption tracks advertised by the watch page.
func (s *YouTubeSource) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	page, err := s.get(ctx, s.baseURL+"/watch?v="+url.QueryEscape(videoID)+"&hl=en")
	if err != nil {
		return nil, fmt.Errorf("load watch page: %w", err)
	}
	player, ok := playerResponse(string(page))
	if !ok {
		return nil, fmt.Errorf("watch page has no player response")
	}
	if status := gjson.Get(player, "playabilityStatus.status").String(); status != "" && status != "OK" {
		reason := gjson.Get(player, "playabilityStatus.reason").String()
		return nil, fmt.Errorf("video unplayable (%s): %s: %w", status, reason, ErrNoTranscript)
	}
	captions := gjson.Get(player, captionTracksPath)
	if !captions.Exists() {
		return nil, ErrTranscriptsDisabled
	}

	var tracks []Track
	captions.ForEach(func(_, t gjson.Result) bool {
		base := t.Get("baseUrl").String()
		if base == "" {
			return true
		}
		name := t.Get("name.simpleText").String()
		if name == "" {
			name = t.Get("name.runs.0.text").String()
		}
		tracks = append(tracks, Track{
			VideoID:      videoID,
			LanguageCode: t.Get("languageCode").String(),
			Name:         name,
			Generated:    t.Get("kind").String() == "asr",
			Location:     s.resolve(base),
		})
		return true
	})
	return tracks, nil
}

// FetchTrack downloads and parses a timed text track.
func (s *YouTubeSource) FetchTrack(ctx context.Context, track Track) ([]models.TranscriptSnippet, error) {
	body, err := s.get(ctx, track.Location)
	if err != nil {
		return nil, fmt.Errorf("download timed text: %w", err)
	}
	return ParseTimedText(body)
}

func (s *YouTubeSource) resolve(ref string) string {
	if strings.HasPrefix(ref, "/") {
		return s.baseURL + ref
	}
	return ref
}

func (s *YouTubeSource) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}
	return body, nil
}

// playerResponse returns the JSON that follows the player response marker.
// Trailing page content is left in place; gjson stops at the end of the
// first value.
func playerResponse(page string) (string, bool) {
	i := strings.Index(page, playerResponseMarker)
	if i < 0 {
		return "", false
	}
	rest := strings.TrimSpace(page[i+len(playerResponseMarker):])
	if !strings.HasPrefix(rest, "{") {
		return "", false
	}
	return rest, true
}

type timedText struct {
	Texts []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
}

// ParseTimedText decodes a <transcript><text start=".." dur="..">..</text></transcript>
// document. Text is entity-decoded twice since YouTube escapes it inside XML.
func ParseTimedText(data []byte) ([]models.TranscriptSnippet, error) {
	var doc timedText
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse timed text: %w", err)
	}
	out := make([]models.TranscriptSnippet, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		start, _ := strconv.ParseFloat(t.Start, 64)
		dur, _ := strconv.ParseFloat(t.Dur, 64)
		out = append(out, models.TranscriptSnippet{
			Text:     strings.ReplaceAll(html.UnescapeString(t.Body), "\n", " "),
			Start:    start,
			Duration: dur,
		})
	}
	return out, nil
}
