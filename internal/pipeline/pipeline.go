// Package pipeline ties transcript acquisition, indexing and question
// answering together. Build runs once per video; Ask runs once per question
// against the index Build returned.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kiku/internal/answer"
	"github.com/hyperjump/kiku/internal/index"
	"github.com/hyperjump/kiku/internal/indexer"
	"github.com/hyperjump/kiku/internal/language"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/observe"
	"github.com/hyperjump/kiku/internal/search"
	"github.com/hyperjump/kiku/internal/transcript"
	"github.com/hyperjump/kiku/internal/translate"
	"github.com/hyperjump/kiku/internal/videoid"
)

// Config holds pipeline settings that do not change per request.
type Config struct {
	IndexRoot         string
	PreferredLanguage string
	Translate         bool
	SegmentChars      int
}

// Deps are the collaborators a Pipeline drives. Translator may be nil, in
// which case nothing is translated.
type Deps struct {
	Fetcher    *transcript.Fetcher
	Detector   language.Detector
	Translator translate.Translator
	Chunker    *indexer.Chunker
	Indexer    *indexer.Indexer
	Retriever  *search.Retriever
	Answerer   answer.Answerer
}

// BuildRequest asks for one video to be indexed.
type BuildRequest struct {
	// Reference is a video id or URL.
	Reference string
	// PreferredLanguage overrides Config.PreferredLanguage when set.
	PreferredLanguage string
	// Translate overrides Config.Translate when set.
	Translate *bool
	// Rebuild ignores an existing index at the video's path.
	Rebuild bool
}

// Pipeline runs builds and questions.
type Pipeline struct {
	deps    Deps
	cfg     Config
	metrics *observe.Metrics
	logger  *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records builds, questions and failures on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New validates deps and returns a Pipeline.
func New(deps Deps, cfg Config, opts ...Option) (*Pipeline, error) {
	switch {
	case deps.Fetcher == nil:
		return nil, errors.New("pipeline: transcript fetcher is required")
	case deps.Chunker == nil || deps.Indexer == nil:
		return nil, errors.New("pipeline: chunker and indexer are required")
	case deps.Retriever == nil || deps.Answerer == nil:
		return nil, errors.New("pipeline: retriever and answerer are required")
	}
	if deps.Detector == nil {
		deps.Detector = language.NewDetector(language.DefaultSampleChars)
	}
	if cfg.SegmentChars <= 0 {
		cfg.SegmentChars = indexer.DefaultSegmentChars
	}
	if cfg.PreferredLanguage == "" {
		cfg.PreferredLanguage = language.English
	}
	p := &Pipeline{deps: deps, cfg: cfg, logger: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// IndexPath returns where the index for videoID lives.
func (p *Pipeline) IndexPath(videoID string) string {
	return videoid.IndexPath(p.cfg.IndexRoot, videoID)
}

// Build fetches the transcript for req.Reference and indexes it. Unless
// req.Rebuild is set, a completed index already on disk is opened instead.
// The caller owns the returned index and must close it.
func (p *Pipeline) Build(ctx context.Context, req BuildRequest) (*models.BuildResult, *index.Index, error) {
	start := time.Now()
	res, ix, err := p.build(ctx, req)
	if p.metrics != nil {
		p.metrics.RecordBuild(ctx, time.Since(start), res != nil && res.Reused, err)
	}
	if err != nil {
		p.logger.Error("build failed", zap.String("reference", req.Reference), zap.Error(err))
		return nil, nil, err
	}
	res.DurationMs = time.Since(start).Milliseconds()
	p.logger.Info("index ready",
		zap.String("video_id", res.VideoID),
		zap.String("lang", res.DetectedLang),
		zap.Bool("translated", res.Translated),
		zap.Bool("reused", res.Reused),
		zap.Int("chunks", res.ChunkCount),
		zap.Duration("duration", time.Since(start)))
	return res, ix, nil
}

func (p *Pipeline) build(ctx context.Context, req BuildRequest) (*models.BuildResult, *index.Index, error) {
	id, err := videoid.Extract(req.Reference)
	if err != nil {
		return nil, nil, err
	}
	path := p.IndexPath(id)

	if !req.Rebuild && index.Exists(path) {
		ix, err := p.deps.Indexer.Load(path)
		if err == nil {
			meta := ix.Meta()
			return &models.BuildResult{
				VideoID:      id,
				DetectedLang: meta.Lang,
				Translated:   meta.Translated,
				Reused:       true,
				IndexPath:    path,
				ChunkCount:   ix.Size(),
			}, ix, nil
		}
		if errors.Is(err, index.ErrLocked) {
			return nil, nil, err
		}
		p.logger.Warn("existing index unusable, rebuilding", zap.String("path", path), zap.Error(err))
	}

	lang := p.cfg.PreferredLanguage
	if req.PreferredLanguage != "" {
		lang = req.PreferredLanguage
	}
	tr, err := p.deps.Fetcher.Fetch(ctx, id, lang)
	if err != nil {
		p.recordError(ctx, observe.StageTranscript)
		return nil, nil, err
	}

	doTranslate := p.cfg.Translate
	if req.Translate != nil {
		doTranslate = *req.Translate
	}
	return p.BuildFromSnippets(ctx, id, tr.Snippets, doTranslate)
}

// BuildFromSnippets indexes an already fetched transcript, replacing any
// index at the video's path. Blank snippets are ignored; if nothing is left
// transcript.ErrEmptyTranscript is returned before anything is embedded.
func (p *Pipeline) BuildFromSnippets(ctx context.Context, videoID string, snippets []models.TranscriptSnippet, translateText bool) (*models.BuildResult, *index.Index, error) {
	snippets = transcript.Clean(snippets)
	if len(snippets) == 0 {
		p.recordError(ctx, observe.StageTranscript)
		return nil, nil, fmt.Errorf("%s: %w", videoID, transcript.ErrEmptyTranscript)
	}

	raw := JoinSnippets(snippets)
	lang := p.deps.Detector.Detect(raw)
	res := &models.BuildResult{
		VideoID:      videoID,
		DetectedLang: lang,
		IndexPath:    p.IndexPath(videoID),
		IndexedText:  raw,
	}

	var chunks []*models.Chunk
	if translateText && p.deps.Translator != nil && language.NeedsTranslation(lang) {
		english, err := p.deps.Translator.Translate(ctx, raw, lang)
		if err != nil {
			p.recordError(ctx, observe.StageTranslate)
			return nil, nil, fmt.Errorf("translate transcript: %w", err)
		}
		if p.metrics != nil {
			p.metrics.RecordTranslation(ctx, lang)
		}
		res.Translated = true
		res.IndexedText = english
		chunks = p.deps.Chunker.ChunkText(english, videoID, lang)
	} else {
		segments := indexer.Segment(snippets, videoID, lang, p.cfg.SegmentChars)
		chunks = p.deps.Chunker.ChunkSegments(segments)
	}

	ix, err := p.deps.Indexer.BuildIndex(ctx, chunks, res.IndexPath)
	if err != nil {
		p.recordError(ctx, observe.StageIndex)
		return nil, nil, fmt.Errorf("build index: %w", err)
	}
	res.ChunkCount = len(chunks)
	res.Chunks = chunks
	return res, ix, nil
}

// Ask answers q from ix and cites the chunks the answer was grounded on.
// Input errors are reported before a missing index.
func (p *Pipeline) Ask(ctx context.Context, ix *index.Index, q models.Question) (*models.AnswerResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if ix == nil {
		return nil, index.ErrNotFound
	}
	start := time.Now()
	res, err := p.ask(ctx, ix, q)
	if p.metrics != nil {
		p.metrics.RecordAsk(ctx, time.Since(start), err)
	}
	if err != nil {
		p.logger.Error("ask failed", zap.String("video_id", ix.Meta().VideoID), zap.Error(err))
		return nil, err
	}
	res.DurationMs = time.Since(start).Milliseconds()
	p.logger.Info("answered question",
		zap.String("video_id", res.VideoID),
		zap.Int("chunks", len(res.Chunks)),
		zap.Duration("duration", time.Since(start)))
	return res, nil
}

func (p *Pipeline) ask(ctx context.Context, ix *index.Index, q models.Question) (*models.AnswerResult, error) {
	chunks, err := p.deps.Retriever.Retrieve(ctx, ix, q.Text, q.K)
	if err != nil {
		p.recordError(ctx, observe.StageRetrieve)
		return nil, err
	}
	text, err := p.deps.Answerer.Answer(ctx, q.Text, chunks)
	if err != nil {
		p.recordError(ctx, observe.StageAnswer)
		return nil, err
	}
	return &models.AnswerResult{
		VideoID:   ix.Meta().VideoID,
		Question:  q.Text,
		Answer:    text,
		Citations: answer.BuildCitations(chunks),
		Chunks:    chunks,
	}, nil
}

// Search runs a keyword lookup against ix. No model is called.
func (p *Pipeline) Search(ctx context.Context, ix *index.Index, query string, limit int) (*models.LookupResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.ErrEmptyQuestion
	}
	if ix == nil {
		return nil, index.ErrNotFound
	}
	chunks, err := p.deps.Retriever.Lookup(ctx, ix, query, limit)
	if err != nil {
		return nil, err
	}
	return &models.LookupResult{
		VideoID:   ix.Meta().VideoID,
		Query:     strings.TrimSpace(query),
		Citations: answer.BuildCitations(chunks),
	}, nil
}

func (p *Pipeline) recordError(ctx context.Context, stage string) {
	if p.metrics != nil {
		p.metrics.RecordError(ctx, stage)
	}
}

// JoinSnippets concatenates snippet texts with single spaces.
func JoinSnippets(snippets []models.TranscriptSnippet) string {
	parts := make([]string, len(snippets))
	for i, s := range snippets {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}
