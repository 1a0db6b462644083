package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
	if got := Truncate("déjà vu", 4); got != "déjà..." {
		t.Errorf("got %s", got)
	}
}

func TestFirstRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"abc", 0, ""},
		{"abc", 2, "ab"},
		{"abc", 5, "abc"},
		{"日本語テキスト", 3, "日本語"},
	}
	for _, tt := range tests {
		if got := FirstRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("FirstRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
