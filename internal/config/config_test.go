package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
transcript:
  preferred_language: "es"
  http_timeout: 5s
retrieval:
  k: 7
  lambda_mult: 0.8
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.Transcript.PreferredLanguage != "es" || cfg.Transcript.HTTPTimeout != 5*time.Second {
		t.Errorf("transcript = %+v", cfg.Transcript)
	}
	if cfg.Retrieval.K != 7 || *cfg.Retrieval.LambdaMult != 0.8 || cfg.Retrieval.FetchK != 20 {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Pipeline.SegmentChars != 1800 || cfg.Pipeline.ChunkSize != 1200 || *cfg.Pipeline.ChunkOverlap != 150 {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.TranslateWindow != 2000 || *cfg.Pipeline.TranslateOverlap != 200 || cfg.Pipeline.DetectSampleChars != 2000 {
		t.Errorf("translation defaults = %+v", cfg.Pipeline)
	}
	if !cfg.Pipeline.TranslateOrDefault() {
		t.Error("translation should default to on")
	}
	if cfg.Retrieval.K != 5 || cfg.Retrieval.FetchK != 20 || *cfg.Retrieval.LambdaMult != 0.5 {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	if *cfg.Generation.AnswerTemperature != 0.2 || cfg.Generation.TranslateTemperature != 0 {
		t.Errorf("temperatures = %v, %v", *cfg.Generation.AnswerTemperature, cfg.Generation.TranslateTemperature)
	}
	if cfg.Embedding.APIKeyEnv != "OPENAI_API_KEY" || cfg.Transcript.Source != "youtube" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_explicitZeroes(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
generation:
  answer_temperature: 0
pipeline:
  translate: false
`))
	if err != nil {
		t.Fatal(err)
	}
	if *cfg.Generation.AnswerTemperature != 0 {
		t.Errorf("answer_temperature = %v", *cfg.Generation.AnswerTemperature)
	}
	if cfg.Pipeline.TranslateOrDefault() {
		t.Error("translate: false was overridden")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  index_root: "./data/indexes"
transcript:
  source: file
  dir: "./transcripts"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Dir(path)
	if want := filepath.Join(dir, "data", "indexes"); cfg.Storage.IndexRoot != want {
		t.Errorf("IndexRoot = %q, want %q", cfg.Storage.IndexRoot, want)
	}
	if want := filepath.Join(dir, "transcripts"); cfg.Transcript.Dir != want {
		t.Errorf("Dir = %q, want %q", cfg.Transcript.Dir, want)
	}
}

func TestLoad_relativeToHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg, err := Load(writeConfig(t, "storage:\n  index_root: kiku/idx\n"))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "kiku", "idx"); cfg.Storage.IndexRoot != want {
		t.Errorf("IndexRoot = %q, want %q", cfg.Storage.IndexRoot, want)
	}
}

func TestLoad_invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "server: [", "failed to parse config"},
		{"unknown source", "transcript:\n  source: ftp\n", "unknown transcript.source"},
		{"file source without dir", "transcript:\n  source: file\n", "transcript.dir"},
		{"overlap too large", "pipeline:\n  chunk_size: 100\n  chunk_overlap: 100\n", "chunk_overlap"},
		{"lambda out of range", "retrieval:\n  lambda_mult: 1.5\n", "lambda_mult"},
		{"negative overlap", "pipeline:\n  chunk_overlap: -1\n", "chunk_overlap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad_explicitZeros(t *testing.T) {
	path := writeConfig(t, "pipeline:\n  chunk_overlap: 0\n  translate_overlap: 0\nretrieval:\n  lambda_mult: 0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *cfg.Pipeline.ChunkOverlap != 0 || *cfg.Pipeline.TranslateOverlap != 0 {
		t.Errorf("overlaps = %d/%d, want 0/0", *cfg.Pipeline.ChunkOverlap, *cfg.Pipeline.TranslateOverlap)
	}
	if *cfg.Retrieval.LambdaMult != 0 {
		t.Errorf("LambdaMult = %v, want 0", *cfg.Retrieval.LambdaMult)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if !filepath.IsAbs(cfg.Storage.IndexRoot) && cfg.Storage.IndexRoot != ".kiku/indexes" {
		t.Errorf("IndexRoot = %q", cfg.Storage.IndexRoot)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
