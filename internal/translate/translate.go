// Package translate rewrites transcript text into English with a chat model.
package translate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kiku/internal/llm"
	"github.com/hyperjump/kiku/internal/textsplit"
)

const systemPrompt = "You are a translation engine. Translate to English.\n" +
	"- Preserve meaning and tone.\n" +
	"- Do NOT add commentary.\n" +
	"- Output ONLY translated English text."

// Default window sizes, in characters.
const (
	DefaultWindow  = 2000
	DefaultOverlap = 200
)

// Translator turns text in sourceLang into English.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang string) (string, error)
}

// LLMTranslator translates overlapping windows independently and joins the
// results with newlines. Seams near window edges are expected.
type LLMTranslator struct {
	provider    llm.Provider
	splitter    *textsplit.Splitter
	temperature float64
	logger      *zap.Logger
}

// Option configures an LLMTranslator.
type Option func(*LLMTranslator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(t *LLMTranslator) { t.logger = logger }
}

// WithTemperature sets the sampling temperature (0 by default).
func WithTemperature(temp float64) Option {
	return func(t *LLMTranslator) { t.temperature = temp }
}

// New creates a translator that sends windows of window characters sharing overlap characters.
func New(provider llm.Provider, window, overlap int, opts ...Option) (*LLMTranslator, error) {
	if provider == nil {
		return nil, fmt.Errorf("translate: provider is required")
	}
	if window <= 0 {
		window = DefaultWindow
	}
	splitter, err := textsplit.New(window, overlap)
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}
	t := &LLMTranslator{provider: provider, splitter: splitter}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Translate returns the English rendition of text. Any window failure aborts
// the whole translation.
func (t *LLMTranslator) Translate(ctx context.Context, text, sourceLang string) (string, error) {
	windows := t.splitter.Split(text)
	out := make([]string, 0, len(windows))
	for i, w := range windows {
		resp, err := t.provider.Complete(ctx, llm.CompletionRequest{
			SystemPrompt: systemPrompt,
			UserPrompt:   Prompt(sourceLang, w),
			Temperature:  t.temperature,
		})
		if err != nil {
			return "", fmt.Errorf("translate window %d/%d: %w", i+1, len(windows), err)
		}
		out = append(out, resp.Content)
	}
	if t.logger != nil {
		t.logger.Debug("Translated transcript",
			zap.String("lang", sourceLang),
			zap.Int("windows", len(windows)))
	}
	return strings.TrimSpace(strings.Join(out, "\n")), nil
}

// Prompt builds the user message for one window.
func Prompt(sourceLang, text string) string {
	return "Source language guess: " + sourceLang + "\n\nTEXT:\n" + text
}
