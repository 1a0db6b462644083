package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hyperjump/kiku/internal/answer"
	"github.com/hyperjump/kiku/internal/embedding"
	"github.com/hyperjump/kiku/internal/indexer"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/textsplit"
	"github.com/hyperjump/kiku/internal/vector"
)

func snippets(n int) []models.TranscriptSnippet {
	out := make([]models.TranscriptSnippet, n)
	for i := range out {
		out[i] = models.TranscriptSnippet{
			Text:     fmt.Sprintf("caption line %d talks about something slightly different", i),
			Start:    float64(i) * 2.5,
			Duration: 2.5,
		}
	}
	return out
}

func BenchmarkSegment(b *testing.B) {
	in := snippets(2000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = indexer.Segment(in, "dQw4w9WgXcQ", "en", indexer.DefaultSegmentChars)
	}
}

func BenchmarkSplit(b *testing.B) {
	s, _ := textsplit.New(1200, 150)
	text := strings.Repeat("A sentence about the topic of the video. Another one follows here.\n\n", 500)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Split(text)
	}
}

func BenchmarkMaxMarginalRelevance(b *testing.B) {
	e := embedding.NewMockEmbedder(384)
	ctx := context.Background()
	candidates := make([][]float32, 40)
	for i := range candidates {
		candidates[i], _ = e.Embed(ctx, fmt.Sprintf("candidate chunk %d", i))
	}
	query, _ := e.Embed(ctx, "what is this video about")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = vector.MaxMarginalRelevance(query, candidates, 5, 0.5)
	}
}

func BenchmarkBuildCitations(b *testing.B) {
	segments := indexer.Segment(snippets(500), "dQw4w9WgXcQ", "en", indexer.DefaultSegmentChars)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = answer.BuildCitations(segments)
	}
}
