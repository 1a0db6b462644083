// Package videoid extracts YouTube video identifiers and derives links, display timestamps,
// and the on-disk index location for a video.
package videoid

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrInvalidReference is returned when input is neither a video id nor a recognised video URL.
var ErrInvalidReference = errors.New("invalid YouTube URL/ID: paste a valid YouTube URL or 11-character video id")

const watchURL = "https://www.youtube.com/watch"

var (
	idPattern       = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	fallbackPattern = regexp.MustCompile(`(?:v=|youtu\.be/)([A-Za-z0-9_-]{11})`)
)

// IsValid reports whether id is a bare 11-character video identifier.
func IsValid(id string) bool {
	return idPattern.MatchString(id)
}

// Extract returns the bare video id from ref, which may be an id, a youtu.be/<id> link,
// or a ...watch?v=<id> URL.
func Extract(ref string) (string, error) {
	s := strings.TrimSpace(ref)
	if s == "" {
		return "", ErrInvalidReference
	}
	if IsValid(s) {
		return s, nil
	}
	if u, err := url.Parse(s); err == nil {
		if strings.Contains(u.Host, "youtu.be") || strings.HasPrefix(s, "youtu.be/") {
			p := strings.Trim(u.Path, "/")
			p = strings.TrimPrefix(p, "youtu.be/")
			if IsValid(p) {
				return p, nil
			}
		}
		if v := strings.TrimSpace(u.Query().Get("v")); IsValid(v) {
			return v, nil
		}
	}
	if m := fallbackPattern.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w (got %q)", ErrInvalidReference, ref)
}

// wholeSeconds floors seconds to a non-negative integer.
func wholeSeconds(seconds float64) int {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	if math.IsInf(seconds, 1) {
		return math.MaxInt32
	}
	return int(math.Floor(seconds))
}

// DeepLink returns the watch URL for videoID positioned at start seconds.
func DeepLink(videoID string, start float64) string {
	return fmt.Sprintf("%s?v=%s&t=%ds", watchURL, videoID, wholeSeconds(start))
}

// FormatTimestamp renders seconds as MM:SS. Minutes are unbounded and negatives clamp to 00:00.
func FormatTimestamp(seconds float64) string {
	s := wholeSeconds(seconds)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// IndexPath returns the directory holding the persisted index for videoID under root.
func IndexPath(root, videoID string) string {
	return filepath.Join(filepath.Clean(root), videoID)
}
