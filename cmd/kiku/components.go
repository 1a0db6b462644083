package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hyperjump/kiku/internal/answer"
	"github.com/hyperjump/kiku/internal/config"
	"github.com/hyperjump/kiku/internal/embedding"
	"github.com/hyperjump/kiku/internal/indexer"
	"github.com/hyperjump/kiku/internal/language"
	"github.com/hyperjump/kiku/internal/llm"
	"github.com/hyperjump/kiku/internal/observe"
	"github.com/hyperjump/kiku/internal/pipeline"
	"github.com/hyperjump/kiku/internal/search"
	"github.com/hyperjump/kiku/internal/transcript"
	"github.com/hyperjump/kiku/internal/translate"
)

// Components holds the long-lived objects built from config.
type Components struct {
	Embedder embedding.Embedder
	Pipeline *pipeline.Pipeline
	Metrics  *observe.Metrics
}

// Close releases the embedder.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func newSource(cfg *config.Config) transcript.Source {
	if cfg.Transcript.Source == "file" {
		return transcript.NewFileSource(cfg.Transcript.Dir)
	}
	return transcript.NewYouTubeSource(transcript.WithHTTPTimeout(cfg.Transcript.HTTPTimeout))
}

func newProvider(cfg *config.GenerationConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "mock":
		return llm.NewMockProvider(answer.Refusal), nil
	case "openai", "":
		key := os.Getenv(cfg.APIKeyEnv)
		p, err := llm.NewOpenAI(key, cfg.Model, llm.WithBaseURL(cfg.BaseURL), llm.WithTimeout(cfg.Timeout))
		if err != nil {
			return nil, fmt.Errorf("%w (set %s)", err, cfg.APIKeyEnv)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	embedder, err := embedding.New(embedding.Options{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BaseURL:    cfg.Embedding.BaseURL,
		APIKeyEnv:  cfg.Embedding.APIKeyEnv,
		ModelPath:  cfg.Embedding.ModelPath,
		MaxTokens:  cfg.Embedding.MaxTokens,
		CacheSize:  cfg.Embedding.CacheSize,
		Timeout:    cfg.Generation.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	provider, err := newProvider(&cfg.Generation)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to initialize generation model: %w", err)
	}

	var debugLogger *zap.Logger
	if debug {
		debugLogger = logger
	}

	var translator translate.Translator
	if cfg.Pipeline.TranslateOrDefault() && cfg.Generation.Provider != "mock" {
		translator, err = translate.New(provider, cfg.Pipeline.TranslateWindow, *cfg.Pipeline.TranslateOverlap,
			translate.WithTemperature(cfg.Generation.TranslateTemperature),
			translate.WithLogger(debugLogger))
		if err != nil {
			_ = embedder.Close()
			return nil, err
		}
	}

	chunker, err := indexer.NewChunker(cfg.Pipeline.ChunkSize, *cfg.Pipeline.ChunkOverlap)
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}

	metrics := observe.DefaultMetrics()
	p, err := pipeline.New(pipeline.Deps{
		Fetcher:    transcript.NewFetcher(newSource(cfg), transcript.WithLogger(debugLogger)),
		Detector:   language.NewDetector(cfg.Pipeline.DetectSampleChars),
		Translator: translator,
		Chunker:    chunker,
		Indexer:    indexer.NewIndexer(embedder, indexer.WithLogger(debugLogger)),
		Retriever: search.NewRetriever(embedder, search.Config{
			FetchK:     cfg.Retrieval.FetchK,
			LambdaMult: *cfg.Retrieval.LambdaMult,
			Fuzziness:  cfg.Retrieval.Fuzziness,
		}, search.WithLogger(debugLogger)),
		Answerer: answer.New(provider,
			answer.WithTemperature(*cfg.Generation.AnswerTemperature),
			answer.WithLogger(debugLogger)),
	}, pipeline.Config{
		IndexRoot:         cfg.Storage.IndexRoot,
		PreferredLanguage: cfg.Transcript.PreferredLanguage,
		Translate:         cfg.Pipeline.TranslateOrDefault(),
		SegmentChars:      cfg.Pipeline.SegmentChars,
	}, pipeline.WithLogger(logger), pipeline.WithMetrics(metrics))
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}

	if logger != nil {
		logger.Debug("components initialized",
			zap.String("embedding_model", embedder.Model()),
			zap.Int("dimensions", embedder.Dimensions()),
			zap.String("generation_model", provider.Model()),
			zap.Bool("translate", translator != nil))
	}
	return &Components{Embedder: embedder, Pipeline: p, Metrics: metrics}, nil
}
