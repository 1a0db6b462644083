// Package textsplit splits long text into overlapping pieces, preferring
// paragraph, line and word boundaries before falling back to characters.
package textsplit

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order; the empty separator splits into characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter is a recursive character splitter. Lengths are counted in runes.
// Separators are kept at the start of the piece that follows them and every
// emitted piece is whitespace-trimmed; pieces that trim to nothing are dropped.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// New creates a splitter producing pieces of at most chunkSize runes (when a
// boundary allows it) with up to chunkOverlap runes shared between neighbours.
func New(chunkSize, chunkOverlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, %d)", chunkOverlap, chunkSize)
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   DefaultSeparators,
	}, nil
}

// ChunkSize returns the configured target size.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// ChunkOverlap returns the configured overlap.
func (s *Splitter) ChunkOverlap() int { return s.chunkOverlap }

// Split returns the ordered pieces of text.
func (s *Splitter) Split(text string) []string {
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	var final []string

	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	var good []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if length(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// merge greedily packs pieces into chunks. Pieces already carry their
// separators, so they are joined with nothing in between.
func (s *Splitter) merge(pieces []string) []string {
	var (
		docs    []string
		current []string
		total   int
	)
	for _, p := range pieces {
		n := length(p)
		if total+n > s.chunkSize {
			if len(current) > 0 {
				if doc := join(current); doc != "" {
					docs = append(docs, doc)
				}
				for total > s.chunkOverlap || (total+n > s.chunkSize && total > 0) {
					total -= length(current[0])
					current = current[1:]
				}
			}
		}
		current = append(current, p)
		total += n
	}
	if doc := join(current); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func splitKeepingSeparator(text, separator string) []string {
	var parts []string
	if separator == "" {
		parts = make([]string, 0, len(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
	} else {
		raw := strings.Split(text, separator)
		parts = make([]string, 0, len(raw))
		parts = append(parts, raw[0])
		for _, r := range raw[1:] {
			parts = append(parts, separator+r)
		}
	}
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func join(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
