package transcript

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperjump/kiku/internal/models"
)

// FileSource reads transcripts from a directory. A video's tracks are files
// named <id>.json or <id>.srt, optionally with a language code before the
// extension (<id>.es.srt). JSON files hold an array of
// {"text","start","duration"} objects.
type FileSource struct {
	dir string
}

// NewFileSource returns a source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, videoID+".*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var tracks []Track
	for _, m := range matches {
		ext := filepath.Ext(m)
		if ext != ".json" && ext != ".srt" {
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(m), ext)
		lang := strings.TrimPrefix(strings.TrimPrefix(stem, videoID), ".")
		tracks = append(tracks, Track{VideoID: videoID, LanguageCode: lang, Name: filepath.Base(m), Location: m})
	}
	return tracks, nil
}

func (s *FileSource) FetchTrack(ctx context.Context, track Track) ([]models.TranscriptSnippet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(track.Location)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(track.Location) == ".srt" {
		return ParseSRT(data)
	}
	var snippets []models.TranscriptSnippet
	if err := json.Unmarshal(data, &snippets); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(track.Location), err)
	}
	return snippets, nil
}

// ParseSRT decodes SubRip cues. Multi-line cue text is joined with spaces.
func ParseSRT(data []byte) ([]models.TranscriptSnippet, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	sc := bufio.NewScanner(bytes.NewReader(data))

	var (
		out     []models.TranscriptSnippet
		cur     *models.TranscriptSnippet
		lines   []string
		lineNum int
	)
	flush := func() {
		if cur != nil {
			cur.Text = strings.Join(lines, " ")
			out = append(out, *cur)
		}
		cur, lines = nil, nil
	}
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			flush()
		case cur == nil && strings.Contains(line, "-->"):
			start, end, err := parseSRTRange(line)
			if err != nil {
				return nil, fmt.Errorf("srt line %d: %w", lineNum, err)
			}
			cur = &models.TranscriptSnippet{Start: start, Duration: end - start}
		case cur == nil:
			// cue number
		default:
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}

func parseSRTRange(line string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	start, err := parseSRTTime(parts[0])
	if err != nil {
		return 0, 0, err
	}
	// Position settings may follow the end time.
	endField := strings.Fields(parts[1])
	if len(endField) == 0 {
		return 0, 0, fmt.Errorf("missing end time")
	}
	end, err := parseSRTTime(endField[0])
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		end = start
	}
	return start, end, nil
}

// parseSRTTime parses HH:MM:SS,mmm.
func parseSRTTime(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	fields := strings.Split(s, ":")
	if len(fields) != 3 {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	h, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	m, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	sec, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	return float64(h*3600+m*60) + sec, nil
}
