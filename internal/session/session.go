// Package session keeps one loaded index per video and serializes work
// against it: at most one build per video id is in flight, and questions
// against a session run one at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hyperjump/kiku/internal/index"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/pipeline"
	"github.com/hyperjump/kiku/internal/videoid"
)

// ErrNoSession is returned when a video has no ready index.
var ErrNoSession = errors.New("no index loaded for this video; build it first")

// Runner performs builds and questions. *pipeline.Pipeline implements it.
type Runner interface {
	Build(ctx context.Context, req pipeline.BuildRequest) (*models.BuildResult, *index.Index, error)
	Ask(ctx context.Context, ix *index.Index, q models.Question) (*models.AnswerResult, error)
	Search(ctx context.Context, ix *index.Index, query string, limit int) (*models.LookupResult, error)
}

// Session is a video with a loaded index.
type Session struct {
	VideoID   string              `json:"video_id"`
	Build     *models.BuildResult `json:"build"`
	CreatedAt time.Time           `json:"created_at"`

	mu     sync.Mutex
	ix     *index.Index
	closed bool
}

// Info returns the index metadata of the session.
func (s *Session) Info() index.Meta {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ix == nil {
		return index.Meta{}
	}
	return s.ix.Meta()
}

func (s *Session) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.ix == nil {
		return nil
	}
	return s.ix.Close()
}

// Manager owns the sessions of a process.
type Manager struct {
	runner Runner
	logger *zap.Logger
	active func(delta int64)

	builds singleflight.Group

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithActiveHook is called with +1 when a session opens and -1 when one closes.
func WithActiveHook(fn func(delta int64)) Option {
	return func(m *Manager) { m.active = fn }
}

// NewManager returns an empty manager.
func NewManager(runner Runner, opts ...Option) *Manager {
	m := &Manager{runner: runner, logger: zap.NewNop(), sessions: make(map[string]*Session)}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Create builds (or reuses) the index for req.Reference and makes it the
// video's session, closing any session it replaces. Without Rebuild a live
// session is returned as is. Concurrent calls for the same video share one
// build and its result. A failed build leaves the existing session in place.
func (m *Manager) Create(ctx context.Context, req pipeline.BuildRequest) (*Session, error) {
	id, err := videoid.Extract(req.Reference)
	if err != nil {
		return nil, err
	}
	req.Reference = id
	if s := m.live(id); s != nil && !req.Rebuild {
		return s, nil
	}

	v, err, shared := m.builds.Do(id, func() (interface{}, error) {
		if s := m.live(id); s != nil && !req.Rebuild {
			return s, nil
		}
		res, ix, err := m.runner.Build(ctx, req)
		if err != nil {
			return nil, err
		}
		s := &Session{VideoID: id, Build: res, CreatedAt: time.Now(), ix: ix}
		m.install(s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		m.logger.Debug("joined in-flight build", zap.String("video_id", id))
	}
	return v.(*Session), nil
}

func (m *Manager) live(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

func (m *Manager) install(s *Session) {
	m.mu.Lock()
	old := m.sessions[s.VideoID]
	m.sessions[s.VideoID] = s
	m.mu.Unlock()

	if old != nil {
		if err := old.close(); err != nil {
			m.logger.Warn("closing replaced session", zap.String("video_id", s.VideoID), zap.Error(err))
		}
	} else if m.active != nil {
		m.active(1)
	}
}

// Get returns the session for a video id or URL.
func (m *Manager) Get(ref string) (*Session, error) {
	id, err := videoid.Extract(ref)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNoSession)
	}
	return s, nil
}

// List returns all sessions ordered by video id.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].VideoID < out[j].VideoID })
	return out
}

// Clear closes and forgets the session for a video. The index stays on disk.
func (m *Manager) Clear(ref string) error {
	id, err := videoid.Extract(ref)
	if err != nil {
		return err
	}
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNoSession)
	}
	if m.active != nil {
		m.active(-1)
	}
	return s.close()
}

// Ask answers q against the video's session. Questions to one session run
// one at a time.
func (m *Manager) Ask(ctx context.Context, ref string, q models.Question) (*models.AnswerResult, error) {
	s, err := m.Get(ref)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%s: %w", s.VideoID, ErrNoSession)
	}
	return m.runner.Ask(ctx, s.ix, q)
}

// Search runs a keyword lookup against the video's session.
func (m *Manager) Search(ctx context.Context, ref, query string, limit int) (*models.LookupResult, error) {
	s, err := m.Get(ref)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%s: %w", s.VideoID, ErrNoSession)
	}
	return m.runner.Search(ctx, s.ix, query, limit)
}

// Close closes every session.
func (m *Manager) Close() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if m.active != nil {
			m.active(-1)
		}
		if err := s.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
