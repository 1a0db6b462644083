package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg. Pointer fields
// are defaulted only when unset, so an explicit zero survives.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.IndexRoot == "" {
		cfg.Storage.IndexRoot = ".kiku/indexes"
	}
	if cfg.Transcript.Source == "" {
		cfg.Transcript.Source = "youtube"
	}
	if cfg.Transcript.PreferredLanguage == "" {
		cfg.Transcript.PreferredLanguage = "en"
	}
	if cfg.Transcript.HTTPTimeout == 0 {
		cfg.Transcript.HTTPTimeout = 30 * time.Second
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = "openai"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "gpt-4o-mini"
	}
	if cfg.Generation.APIKeyEnv == "" {
		cfg.Generation.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Generation.AnswerTemperature == nil {
		t := 0.2
		cfg.Generation.AnswerTemperature = &t
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = 2 * time.Minute
	}
	if cfg.Pipeline.SegmentChars == 0 {
		cfg.Pipeline.SegmentChars = 1800
	}
	if cfg.Pipeline.ChunkSize == 0 {
		cfg.Pipeline.ChunkSize = 1200
	}
	if cfg.Pipeline.ChunkOverlap == nil {
		cfg.Pipeline.ChunkOverlap = intPtr(150)
	}
	if cfg.Pipeline.TranslateWindow == 0 {
		cfg.Pipeline.TranslateWindow = 2000
	}
	if cfg.Pipeline.TranslateOverlap == nil {
		cfg.Pipeline.TranslateOverlap = intPtr(200)
	}
	if cfg.Pipeline.DetectSampleChars == 0 {
		cfg.Pipeline.DetectSampleChars = 2000
	}
	if cfg.Retrieval.K == 0 {
		cfg.Retrieval.K = 5
	}
	if cfg.Retrieval.FetchK == 0 {
		cfg.Retrieval.FetchK = 20
	}
	if cfg.Retrieval.LambdaMult == nil {
		l := 0.5
		cfg.Retrieval.LambdaMult = &l
	}
}

func intPtr(v int) *int { return &v }
