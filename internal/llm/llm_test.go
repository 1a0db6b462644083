package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewOpenAI_requiresKey(t *testing.T) {
	if _, err := NewOpenAI("", "gpt-4o-mini"); err == nil {
		t.Fatal("expected error for empty api key")
	}
	p, err := NewOpenAI("sk-test", "")
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	if p.Model() != DefaultModel {
		t.Errorf("Model() = %q, want %q", p.Model(), DefaultModel)
	}
}

func TestMockProvider_recordsCalls(t *testing.T) {
	m := NewMockProvider("fixed")
	resp, err := m.Complete(context.Background(), CompletionRequest{SystemPrompt: "sys", UserPrompt: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "fixed" {
		t.Errorf("Content = %q", resp.Content)
	}
	if m.CallCount() != 1 || m.Calls()[0].UserPrompt != "hi" {
		t.Errorf("calls = %+v", m.Calls())
	}
}

func TestMockProvider_respondFunc(t *testing.T) {
	m := &MockProvider{Respond: func(req CompletionRequest) (string, error) {
		return strings.ToUpper(req.UserPrompt), nil
	}}
	resp, err := m.Complete(context.Background(), CompletionRequest{UserPrompt: "abc"})
	if err != nil || resp.Content != "ABC" {
		t.Errorf("Complete = %v, %v", resp, err)
	}
}

func TestMockProvider_errors(t *testing.T) {
	boom := errors.New("boom")
	m := &MockProvider{Err: boom}
	if _, err := m.Complete(context.Background(), CompletionRequest{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m = NewMockProvider("x")
	if _, err := m.Complete(ctx, CompletionRequest{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
