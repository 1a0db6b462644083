package answer

import (
	"strings"

	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/videoid"
	"github.com/hyperjump/kiku/pkg/utils"
)

// PreviewChars bounds the citation preview length.
const PreviewChars = 220

// NoTimestamp is the label for citations whose chunk has no start time.
const NoTimestamp = "no timestamp"

// BuildCitations returns one citation per chunk, in the same order.
func BuildCitations(chunks []*models.Chunk) []*models.Citation {
	out := make([]*models.Citation, len(chunks))
	for i, c := range chunks {
		cit := &models.Citation{
			VideoID: c.Metadata.VideoID,
			Start:   c.Metadata.Start,
			End:     c.Metadata.End,
			Preview: Preview(c.Content),
			Label:   Label(c.Metadata.Start, c.Metadata.End),
		}
		if cit.Start != nil {
			cit.URL = videoid.DeepLink(cit.VideoID, *cit.Start)
		}
		out[i] = cit
	}
	return out
}

// Preview returns the first PreviewChars characters of content with line
// breaks turned into spaces and surrounding whitespace trimmed.
func Preview(content string) string {
	content = utils.FirstRunes(content, PreviewChars)
	content = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(content)
	return strings.TrimSpace(content)
}

// Label renders a display range. A missing end repeats the start.
func Label(start, end *float64) string {
	if start == nil {
		return NoTimestamp
	}
	e := *start
	if end != nil {
		e = *end
	}
	return videoid.FormatTimestamp(*start) + " → " + videoid.FormatTimestamp(e)
}
