// Package config provides configuration loading and structs for kiku.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the directory under which one index per video is kept.
type StorageConfig struct {
	IndexRoot string `yaml:"index_root"`
}

// TranscriptConfig selects where transcripts come from.
type TranscriptConfig struct {
	// Source is "youtube" or "file".
	Source            string        `yaml:"source"`
	Dir               string        `yaml:"dir"`
	PreferredLanguage string        `yaml:"preferred_language"`
	HTTPTimeout       time.Duration `yaml:"http_timeout"`
}

// EmbeddingConfig holds embedder settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	ModelPath  string `yaml:"model_path"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// GenerationConfig holds chat model settings for answers and translation.
type GenerationConfig struct {
	// Provider is "openai" or "mock".
	Provider             string        `yaml:"provider"`
	Model                string        `yaml:"model"`
	BaseURL              string        `yaml:"base_url"`
	APIKeyEnv            string        `yaml:"api_key_env"`
	AnswerTemperature    *float64      `yaml:"answer_temperature"`
	TranslateTemperature float64       `yaml:"translate_temperature"`
	Timeout              time.Duration `yaml:"timeout"`
}

// PipelineConfig holds segmentation, chunking and translation settings.
type PipelineConfig struct {
	SegmentChars      int   `yaml:"segment_chars"`
	ChunkSize         int   `yaml:"chunk_size"`
	ChunkOverlap      *int  `yaml:"chunk_overlap"`
	Translate         *bool `yaml:"translate"`
	TranslateWindow   int   `yaml:"translate_window"`
	TranslateOverlap  *int  `yaml:"translate_overlap"`
	DetectSampleChars int   `yaml:"detect_sample_chars"`
}

// TranslateOrDefault returns whether non-English transcripts are translated; true when unset.
func (p *PipelineConfig) TranslateOrDefault() bool {
	if p.Translate != nil {
		return *p.Translate
	}
	return true
}

// RetrievalConfig holds MMR retrieval settings.
type RetrievalConfig struct {
	K          int     `yaml:"k"`
	FetchK     int     `yaml:"fetch_k"`
	LambdaMult *float64 `yaml:"lambda_mult"`
	Fuzziness  int     `yaml:"fuzziness"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.finish(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	cfg.expandPaths("")
	return &cfg
}

func (c *Config) finish(configDir string) error {
	ApplyDefaults(c)
	c.expandPaths(configDir)
	return c.Validate()
}

func (c *Config) expandPaths(configDir string) {
	c.Storage.IndexRoot = expandPath(c.Storage.IndexRoot, configDir)
	if c.Transcript.Dir != "" {
		c.Transcript.Dir = expandPath(c.Transcript.Dir, configDir)
	}
	if c.Embedding.ModelPath != "" {
		c.Embedding.ModelPath = expandPath(c.Embedding.ModelPath, configDir)
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Transcript.Source {
	case "youtube":
	case "file":
		if c.Transcript.Dir == "" {
			return fmt.Errorf("transcript.dir is required when transcript.source is \"file\"")
		}
	default:
		return fmt.Errorf("unknown transcript.source %q", c.Transcript.Source)
	}
	if o := *c.Pipeline.ChunkOverlap; o < 0 || o >= c.Pipeline.ChunkSize {
		return fmt.Errorf("pipeline.chunk_overlap (%d) must be within [0, chunk_size %d)", o, c.Pipeline.ChunkSize)
	}
	if o := *c.Pipeline.TranslateOverlap; o < 0 || o >= c.Pipeline.TranslateWindow {
		return fmt.Errorf("pipeline.translate_overlap (%d) must be within [0, translate_window %d)", o, c.Pipeline.TranslateWindow)
	}
	if l := *c.Retrieval.LambdaMult; l < 0 || l > 1 {
		return fmt.Errorf("retrieval.lambda_mult must be within [0, 1], got %v", l)
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
