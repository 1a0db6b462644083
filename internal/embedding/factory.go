package embedding

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted by New.
const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
	ProviderONNX   = "onnx"
)

// ONNXConfig configures the local ONNX embedder.
type ONNXConfig struct {
	ModelPath  string
	Dimensions int
	MaxTokens  int
	OutputName string
}

func (c ONNXConfig) withDefaults() ONNXConfig {
	if c.Dimensions <= 0 {
		c.Dimensions = 384
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 256
	}
	if c.OutputName == "" {
		c.OutputName = "output"
	}
	return c
}

// Options selects and configures an embedder.
type Options struct {
	Provider   string
	Model      string
	Dimensions int
	BaseURL    string
	APIKeyEnv  string
	ModelPath  string
	MaxTokens  int
	CacheSize  int
	Timeout    time.Duration
}

// New builds the configured embedder, wrapped in an LRU cache when CacheSize > 0.
func New(opts Options) (Embedder, error) {
	var (
		e   Embedder
		err error
	)
	switch opts.Provider {
	case ProviderMock:
		e = NewMockEmbedder(opts.Dimensions)
	case ProviderOpenAI, "":
		keyEnv := opts.APIKeyEnv
		if keyEnv == "" {
			keyEnv = "OPENAI_API_KEY"
		}
		e, err = NewOpenAIEmbedder(os.Getenv(keyEnv), opts.Model, OpenAIOptions{
			BaseURL:    opts.BaseURL,
			Dimensions: opts.Dimensions,
			Timeout:    opts.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set %s)", err, keyEnv)
		}
	case ProviderONNX:
		e, err = NewONNXEmbedder(ONNXConfig{
			ModelPath:  opts.ModelPath,
			Dimensions: opts.Dimensions,
			MaxTokens:  opts.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
	if opts.CacheSize > 0 {
		return NewCachedEmbedder(e, opts.CacheSize), nil
	}
	return e, nil
}
