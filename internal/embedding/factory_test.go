package embedding

import (
	"strings"
	"testing"
)

func TestNew_providers(t *testing.T) {
	t.Setenv("KIKU_TEST_KEY", "")

	e, err := New(Options{Provider: ProviderMock, Dimensions: 32, CacheSize: 8})
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	if _, ok := e.(*CachedEmbedder); !ok {
		t.Errorf("expected cached wrapper, got %T", e)
	}
	if e.Dimensions() != 32 {
		t.Errorf("Dimensions = %d", e.Dimensions())
	}

	_, err = New(Options{Provider: ProviderOpenAI, APIKeyEnv: "KIKU_TEST_KEY"})
	if err == nil || !strings.Contains(err.Error(), "KIKU_TEST_KEY") {
		t.Errorf("openai without key: err = %v", err)
	}

	t.Setenv("KIKU_TEST_KEY", "sk-test")
	e, err = New(Options{Provider: ProviderOpenAI, APIKeyEnv: "KIKU_TEST_KEY", Model: "text-embedding-3-large"})
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if e.Dimensions() != 3072 || e.Model() != "text-embedding-3-large" {
		t.Errorf("openai embedder = %d %s", e.Dimensions(), e.Model())
	}

	if _, err := New(Options{Provider: "word2vec"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
