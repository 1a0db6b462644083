package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/hyperjump/kiku/internal/index"
	"github.com/hyperjump/kiku/internal/models"
)

func init() {
	color.NoColor = true
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestFormatCitation(t *testing.T) {
	c := &models.Citation{Label: "01:05 → 01:10", Preview: "hello there"}
	if got := FormatCitation(c); got != "[01:05 → 01:10] hello there" {
		t.Errorf("FormatCitation = %q", got)
	}
	c = &models.Citation{Label: "no timestamp", Preview: "translated"}
	if got := FormatCitation(c); got != "[no timestamp] translated" {
		t.Errorf("FormatCitation = %q", got)
	}
}

func TestWriteAnswer_text(t *testing.T) {
	start := 65.0
	res := &models.AnswerResult{
		Answer: "1. Something.",
		Citations: []*models.Citation{
			{Start: &start, Label: "01:05 → 01:10", Preview: "first", URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=65s"},
			{Label: "no timestamp", Preview: "second"},
		},
	}
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, res, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"1. Something.", "[01:05 → 01:10] first", "&t=65s", "[no timestamp] second"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "first") > strings.Index(out, "second") {
		t.Error("citations out of order")
	}
}

func TestWriteAnswer_json(t *testing.T) {
	res := &models.AnswerResult{VideoID: "dQw4w9WgXcQ", Answer: "I don't know.", Citations: []*models.Citation{}}
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, res, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["answer"] != "I don't know." || got["video_id"] != "dQw4w9WgXcQ" {
		t.Errorf("json = %v", got)
	}
}

func TestWriteLookup_empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLookup(&buf, &models.LookupResult{Query: "whales"}, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `No passages match "whales"`) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteBuild_translated(t *testing.T) {
	var buf bytes.Buffer
	res := &models.BuildResult{VideoID: "dQw4w9WgXcQ", DetectedLang: "es", Translated: true, ChunkCount: 3, IndexPath: "/tmp/x"}
	if err := WriteBuild(&buf, res, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Indexed dQw4w9WgXcQ") || !strings.Contains(out, "no timestamps") || !strings.Contains(out, "chunks:   3") {
		t.Errorf("output = %q", out)
	}
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStatus(&buf, "/idx", nil, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No videos indexed.") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	summaries := []*index.Summary{{
		Meta:      index.Meta{VideoID: "dQw4w9WgXcQ", Lang: "es", Translated: true, ChunkCount: 12, BuiltAt: time.Now(), EmbeddingModel: "mock"},
		DiskBytes: 2048,
	}}
	if err := WriteStatus(&buf, "/idx", summaries, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "dQw4w9WgXcQ") || !strings.Contains(out, "es→en") || !strings.Contains(out, "1 videos") {
		t.Errorf("output = %q", out)
	}
}
