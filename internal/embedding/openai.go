package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/hyperjump/kiku/pkg/utils"
)

// DefaultOpenAIModel is used when no embedding model is configured.
const DefaultOpenAIModel = oai.EmbeddingModelTextEmbedding3Small

// maxBatch bounds the inputs per embeddings request.
const maxBatch = 256

var _ Embedder = (*OpenAIEmbedder)(nil)

// OpenAIEmbedder calls the OpenAI embeddings API (or a compatible server).
type OpenAIEmbedder struct {
	client     oai.Client
	model      string
	dimensions int
}

// OpenAIOptions configures NewOpenAIEmbedder.
type OpenAIOptions struct {
	BaseURL    string
	Dimensions int
	Timeout    time.Duration
}

// NewOpenAIEmbedder creates an embedder. When opts.Dimensions is zero the
// model's native size is assumed.
func NewOpenAIEmbedder(apiKey, model string, opts OpenAIOptions) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai embeddings: api key must not be empty")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: opts.Timeout}))
	}
	dims := opts.Dimensions
	if dims <= 0 {
		dims = modelDimensions(model)
	}
	return &OpenAIEmbedder{client: oai.NewClient(reqOpts...), model: model, dimensions: dims}, nil
}

// Embed embeds a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch embeds texts in request-sized batches, preserving order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := start + maxBatch
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		result = append(result, batch...)
	}
	return result, nil
}

func (e *OpenAIEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	params := oai.EmbeddingNewParams{
		Model: e.model,
		Input: oai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	}
	if e.dimensions != modelDimensions(e.model) {
		params.Dimensions = param.NewOpt(int64(e.dimensions))
	}
	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if int(d.Index) >= len(texts) {
			return nil, fmt.Errorf("openai embeddings: unexpected index %d", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = float32(f)
		}
		utils.NormalizeL2(v)
		out[d.Index] = v
	}
	return out, nil
}

// Dimensions returns the vector size.
func (e *OpenAIEmbedder) Dimensions() int { return e.dimensions }

// Model returns the embedding model name.
func (e *OpenAIEmbedder) Model() string { return e.model }

// Close is a no-op.
func (e *OpenAIEmbedder) Close() error { return nil }

func modelDimensions(model string) int {
	lower := strings.ToLower(model)
	switch {
	case strings.Contains(lower, "text-embedding-3-large"):
		return 3072
	default:
		return 1536
	}
}
