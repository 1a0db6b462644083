package models

import (
	"errors"
	"testing"
)

func TestQuestion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		q       *Question
		wantErr error
		wantK   int
	}{
		{"empty", &Question{Text: ""}, ErrEmptyQuestion, 0},
		{"whitespace", &Question{Text: "   \t"}, ErrEmptyQuestion, 0},
		{"default k", &Question{Text: "what?"}, nil, DefaultTopK},
		{"k below minimum", &Question{Text: "what?", K: 1}, nil, MinTopK},
		{"k capped", &Question{Text: "what?", K: 50}, nil, MaxTopK},
		{"k kept", &Question{Text: "what?", K: 7}, nil, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && tt.q.K != tt.wantK {
				t.Errorf("K = %d, want %d", tt.q.K, tt.wantK)
			}
		})
	}
}

func TestQuestion_ValidateTrims(t *testing.T) {
	q := &Question{Text: "  Summarize this video  "}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if q.Text != "Summarize this video" {
		t.Errorf("Text = %q", q.Text)
	}
}

func TestTranscriptSnippet_End(t *testing.T) {
	s := TranscriptSnippet{Text: "x", Start: 2, Duration: 3}
	if s.End() != 5 {
		t.Errorf("End() = %v, want 5", s.End())
	}
}

func TestChunkMetadata_HasTimestamps(t *testing.T) {
	if (ChunkMetadata{}).HasTimestamps() {
		t.Error("empty metadata should have no timestamps")
	}
	m := ChunkMetadata{Start: Seconds(0), End: Seconds(1)}
	if !m.HasTimestamps() {
		t.Error("expected timestamps")
	}
}
