package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperjump/kiku/internal/llm"
)

func TestNew_requiresProvider(t *testing.T) {
	if _, err := New(nil, 2000, 200); err == nil {
		t.Fatal("expected error without provider")
	}
	if _, err := New(llm.NewMockProvider("x"), 100, 100); err == nil {
		t.Fatal("expected error for overlap >= window")
	}
}

func TestTranslate_singleWindow(t *testing.T) {
	m := llm.NewMockProvider("  Hello everyone  ")
	tr, err := New(m, DefaultWindow, DefaultOverlap)
	if err != nil {
		t.Fatal(err)
	}
	got, err := tr.Translate(context.Background(), "Hola a todos", "es")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello everyone" {
		t.Errorf("Translate = %q", got)
	}
	calls := m.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0].SystemPrompt != systemPrompt {
		t.Errorf("system prompt = %q", calls[0].SystemPrompt)
	}
	if want := "Source language guess: es\n\nTEXT:\nHola a todos"; calls[0].UserPrompt != want {
		t.Errorf("user prompt = %q, want %q", calls[0].UserPrompt, want)
	}
	if calls[0].Temperature != 0 {
		t.Errorf("temperature = %v, want 0", calls[0].Temperature)
	}
}

func TestTranslate_windowsJoinedWithNewlines(t *testing.T) {
	n := 0
	m := &llm.MockProvider{Respond: func(req llm.CompletionRequest) (string, error) {
		n++
		return "part", nil
	}}
	tr, err := New(m, 50, 10)
	if err != nil {
		t.Fatal(err)
	}
	text := strings.Repeat("palabra ", 40)
	got, err := tr.Translate(context.Background(), text, "es")
	if err != nil {
		t.Fatal(err)
	}
	if n < 2 {
		t.Fatalf("expected several windows, got %d", n)
	}
	if want := strings.TrimSpace(strings.Repeat("part\n", n)); got != want {
		t.Errorf("Translate = %q, want %q", got, want)
	}
}

func TestTranslate_propagatesErrors(t *testing.T) {
	boom := errors.New("rate limited")
	tr, _ := New(&llm.MockProvider{Err: boom}, DefaultWindow, DefaultOverlap)
	if _, err := tr.Translate(context.Background(), "Bonjour", "fr"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}
