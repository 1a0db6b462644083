// Package answer produces grounded answers from retrieved chunks and maps
// them back to playback positions.
package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kiku/internal/llm"
	"github.com/hyperjump/kiku/internal/models"
)

// Refusal is the exact reply the model is instructed to give when the context
// does not contain the answer.
const Refusal = "I don't know."

// DefaultTemperature is the sampling temperature for answers.
const DefaultTemperature = 0.2

const systemPrompt = "You are a helpful assistant.\n" +
	"Answer ONLY from the provided transcript context.\n" +
	"If the context is insufficient, say exactly: " + Refusal + "\n" +
	"Return the answer in numbered points:\n" +
	"1. ...\n2. ...\n3. ...\n4. ..."

// Answerer generates an answer to a question from transcript chunks.
type Answerer interface {
	Answer(ctx context.Context, question string, chunks []*models.Chunk) (string, error)
}

// LLMAnswerer asks a chat model to answer strictly from the supplied context.
// Grounding is a prompt contract; the model is not mechanically prevented
// from straying.
type LLMAnswerer struct {
	provider    llm.Provider
	temperature float64
	logger      *zap.Logger
}

// Option configures an LLMAnswerer.
type Option func(*LLMAnswerer)

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float64) Option {
	return func(a *LLMAnswerer) { a.temperature = t }
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(a *LLMAnswerer) { a.logger = l }
}

// New creates an answerer backed by provider.
func New(provider llm.Provider, opts ...Option) *LLMAnswerer {
	a := &LLMAnswerer{provider: provider, temperature: DefaultTemperature}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Answer returns the model's reply, trimmed.
func (a *LLMAnswerer) Answer(ctx context.Context, question string, chunks []*models.Chunk) (string, error) {
	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   UserPrompt(BuildContext(chunks), question),
		Temperature:  a.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	if a.logger != nil {
		a.logger.Debug("generated answer",
			zap.Int("chunks", len(chunks)),
			zap.Int("answer_chars", len(resp.Content)),
			zap.Int("total_tokens", resp.Usage.TotalTokens))
	}
	return strings.TrimSpace(resp.Content), nil
}

// BuildContext joins chunk contents, in order, separated by blank lines.
func BuildContext(chunks []*models.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n\n")
}

// UserPrompt formats the context block and question for the model.
func UserPrompt(context, question string) string {
	return "Context:\n" + context + "\n\nQuestion:\n" + question
}
