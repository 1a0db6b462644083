package answer

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hyperjump/kiku/internal/models"
)

func TestBuildCitations(t *testing.T) {
	chunks := []*models.Chunk{
		{Content: "Hello world this is a test", Metadata: models.ChunkMetadata{
			VideoID: "dQw4w9WgXcQ", Start: models.Seconds(0), End: models.Seconds(5), Lang: "en"}},
		{Content: "translated\ntext", Metadata: models.ChunkMetadata{VideoID: "dQw4w9WgXcQ", Lang: "es"}},
		{Content: "later", Metadata: models.ChunkMetadata{
			VideoID: "dQw4w9WgXcQ", Start: models.Seconds(125.9), End: models.Seconds(130)}},
	}
	got := BuildCitations(chunks)
	if len(got) != 3 {
		t.Fatalf("got %d citations", len(got))
	}

	if got[0].URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=0s" {
		t.Errorf("URL = %q", got[0].URL)
	}
	if got[0].Label != "00:00 → 00:05" || got[0].Preview != "Hello world this is a test" {
		t.Errorf("citation 0 = %+v", got[0])
	}

	if got[1].URL != "" || got[1].Label != NoTimestamp || got[1].HasTimestamp() {
		t.Errorf("untimed citation = %+v", got[1])
	}
	if got[1].Preview != "translated text" {
		t.Errorf("Preview = %q", got[1].Preview)
	}

	if got[2].URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=125s" || got[2].Label != "02:05 → 02:10" {
		t.Errorf("citation 2 = %+v", got[2])
	}
}

func TestLabel_missingEnd(t *testing.T) {
	if got := Label(models.Seconds(61), nil); got != "01:01 → 01:01" {
		t.Errorf("Label = %q", got)
	}
}

func TestPreview_bounded(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	alphabet := []rune("ab ñ\n\r\tz語")
	for i := 0; i < 300; i++ {
		n := rng.Intn(600)
		var b strings.Builder
		for j := 0; j < n; j++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		p := Preview(b.String())
		if utf8.RuneCountInString(p) > PreviewChars {
			t.Fatalf("preview has %d chars", utf8.RuneCountInString(p))
		}
		if strings.ContainsAny(p, "\n\r") {
			t.Fatalf("preview contains a line break: %q", p)
		}
	}
	long := strings.Repeat("x", 500)
	if got := Preview(long); got != strings.Repeat("x", PreviewChars) {
		t.Errorf("Preview(long) has %d chars", len(got))
	}
}
