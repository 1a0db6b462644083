package videoid

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"  dQw4w9WgXcQ  ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://m.youtube.com/watch?v=a-b_c1234XY", "a-b_c1234XY"},
		{"youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, tt := range tests {
		got, err := Extract(tt.in)
		if err != nil {
			t.Errorf("Extract(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Extract(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtract_invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "not a url", "https://www.youtube.com/watch?v=short", "https://example.com/"} {
		_, err := Extract(in)
		if !errors.Is(err, ErrInvalidReference) {
			t.Errorf("Extract(%q) error = %v, want ErrInvalidReference", in, err)
		}
	}
}

func TestDeepLink(t *testing.T) {
	tests := []struct {
		start float64
		want  string
	}{
		{0, "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=0s"},
		{61.9, "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=61s"},
		{-3, "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=0s"},
	}
	for _, tt := range tests {
		if got := DeepLink("dQw4w9WgXcQ", tt.start); got != tt.want {
			t.Errorf("DeepLink(%v) = %q, want %q", tt.start, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00"},
		{5.7, "00:05"},
		{65, "01:05"},
		{3600, "60:00"},
		{6005, "100:05"},
		{-10, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIndexPath(t *testing.T) {
	got := IndexPath("/var/kiku/indices/", "dQw4w9WgXcQ")
	want := filepath.Join("/var/kiku/indices", "dQw4w9WgXcQ")
	if got != want {
		t.Errorf("IndexPath = %q, want %q", got, want)
	}
	if IndexPath("/r", "aaaaaaaaaaa") == IndexPath("/r", "bbbbbbbbbbb") {
		t.Error("different videos must map to different paths")
	}
}
