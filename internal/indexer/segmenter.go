package indexer

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/kiku/internal/models"
)

// DefaultSegmentChars is the default character budget per segment.
const DefaultSegmentChars = 1800

// Segment groups timed snippets into blocks of roughly charBudget characters.
// Each block spans from the start of its first snippet to the end of its last
// one. Blank snippets are skipped. A block is flushed before a snippet that
// would push it past the budget, so only a single oversized snippet can make
// a block exceed charBudget.
func Segment(snippets []models.TranscriptSnippet, videoID, lang string, charBudget int) []*models.Chunk {
	if charBudget <= 0 {
		charBudget = DefaultSegmentChars
	}
	var (
		out        []*models.Chunk
		buf        []string
		count      int
		start, end float64
	)
	flush := func() {
		out = append(out, &models.Chunk{
			Content:    strings.Join(buf, " "),
			ChunkIndex: len(out),
			Metadata: models.ChunkMetadata{
				VideoID: videoID,
				Start:   models.Seconds(start),
				End:     models.Seconds(end),
				Lang:    lang,
			},
		})
		buf = buf[:0]
		count = 0
	}

	for _, s := range snippets {
		text := Preprocess(s.Text)
		if text == "" {
			continue
		}
		n := utf8.RuneCountInString(text)
		if len(buf) > 0 && count+n+1 > charBudget {
			flush()
		}
		if len(buf) == 0 {
			start = s.Start
		}
		buf = append(buf, text)
		count += n + 1
		end = s.End()
	}
	if len(buf) > 0 {
		flush()
	}
	return out
}
