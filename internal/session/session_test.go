package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperjump/kiku/internal/index"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/pipeline"
	"github.com/hyperjump/kiku/internal/videoid"
)

const vid = "dQw4w9WgXcQ"

// fakeRunner returns sessions without indexes; Ask and Search echo the request.
type fakeRunner struct {
	builds  atomic.Int32
	delay   time.Duration
	err     error
	asking  atomic.Int32
	overlap atomic.Bool
}

func (f *fakeRunner) Build(ctx context.Context, req pipeline.BuildRequest) (*models.BuildResult, *index.Index, error) {
	f.builds.Add(1)
	time.Sleep(f.delay)
	if f.err != nil {
		return nil, nil, f.err
	}
	return &models.BuildResult{VideoID: req.Reference, ChunkCount: int(f.builds.Load())}, nil, nil
}

func (f *fakeRunner) Ask(ctx context.Context, _ *index.Index, q models.Question) (*models.AnswerResult, error) {
	if f.asking.Add(1) > 1 {
		f.overlap.Store(true)
	}
	time.Sleep(5 * time.Millisecond)
	f.asking.Add(-1)
	return &models.AnswerResult{Question: q.Text, Answer: "ok"}, nil
}

func (f *fakeRunner) Search(ctx context.Context, _ *index.Index, query string, _ int) (*models.LookupResult, error) {
	return &models.LookupResult{Query: query}, nil
}

func TestManager_lifecycle(t *testing.T) {
	var active int64
	r := &fakeRunner{}
	m := NewManager(r, WithActiveHook(func(d int64) { active += d }))

	if _, err := m.Get(vid); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Get before create: %v", err)
	}
	if _, err := m.Ask(context.Background(), vid, models.Question{Text: "q"}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Ask before create: %v", err)
	}

	s1, err := m.Create(context.Background(), pipeline.BuildRequest{Reference: "https://www.youtube.com/watch?v=" + vid})
	if err != nil {
		t.Fatal(err)
	}
	if s1.VideoID != vid || active != 1 {
		t.Fatalf("session = %+v, active = %d", s1, active)
	}

	s2, err := m.Create(context.Background(), pipeline.BuildRequest{Reference: vid, Rebuild: true})
	if err != nil {
		t.Fatal(err)
	}
	if s2 == s1 || !s1.closed || active != 1 {
		t.Errorf("replace: s1 closed = %v, active = %d", s1.closed, active)
	}
	got, _ := m.Get("https://youtu.be/" + vid)
	if got != s2 {
		t.Error("Get did not return the replacement session")
	}

	ans, err := m.Ask(context.Background(), vid, models.Question{Text: "hello"})
	if err != nil || ans.Answer != "ok" {
		t.Errorf("Ask = %+v, %v", ans, err)
	}
	if _, err := m.Search(context.Background(), vid, "term", 3); err != nil {
		t.Errorf("Search: %v", err)
	}

	if err := m.Clear(vid); err != nil {
		t.Fatal(err)
	}
	if err := m.Clear(vid); !errors.Is(err, ErrNoSession) {
		t.Errorf("second Clear = %v", err)
	}
	if active != 0 || len(m.List()) != 0 {
		t.Errorf("after clear: active = %d, sessions = %d", active, len(m.List()))
	}
}

func TestManager_failedBuildKeepsSession(t *testing.T) {
	r := &fakeRunner{}
	m := NewManager(r)
	s, err := m.Create(context.Background(), pipeline.BuildRequest{Reference: vid})
	if err != nil {
		t.Fatal(err)
	}

	r.err = errors.New("embedding service down")
	if _, err := m.Create(context.Background(), pipeline.BuildRequest{Reference: vid, Rebuild: true}); err == nil {
		t.Fatal("expected build error")
	}
	got, err := m.Get(vid)
	if err != nil || got != s || s.closed {
		t.Errorf("previous session lost: %v", err)
	}
}

func TestManager_invalidReference(t *testing.T) {
	r := &fakeRunner{}
	m := NewManager(r)
	if _, err := m.Create(context.Background(), pipeline.BuildRequest{Reference: "not a url"}); !errors.Is(err, videoid.ErrInvalidReference) {
		t.Errorf("err = %v", err)
	}
	if r.builds.Load() != 0 {
		t.Error("invalid reference reached the runner")
	}
}

func TestManager_concurrentBuildsShared(t *testing.T) {
	r := &fakeRunner{delay: 200 * time.Millisecond}
	m := NewManager(r)

	var wg sync.WaitGroup
	sessions := make([]*Session, 8)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Create(context.Background(), pipeline.BuildRequest{Reference: vid})
			if err != nil {
				t.Error(err)
				return
			}
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	if n := r.builds.Load(); n < 1 || n >= 8 {
		t.Errorf("builds = %d, want shared builds", n)
	}
	if len(m.List()) != 1 {
		t.Errorf("sessions = %d", len(m.List()))
	}
}

func TestManager_asksSerialized(t *testing.T) {
	r := &fakeRunner{}
	m := NewManager(r)
	if _, err := m.Create(context.Background(), pipeline.BuildRequest{Reference: vid}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Ask(context.Background(), vid, models.Question{Text: "q"}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if r.overlap.Load() {
		t.Error("questions to one session overlapped")
	}
}

func TestManager_Close(t *testing.T) {
	m := NewManager(&fakeRunner{})
	for _, id := range []string{vid, "aaaaaaaaaaa"} {
		if _, err := m.Create(context.Background(), pipeline.BuildRequest{Reference: id}); err != nil {
			t.Fatal(err)
		}
	}
	if got := m.List(); len(got) != 2 || got[0].VideoID != "aaaaaaaaaaa" {
		t.Errorf("List = %v", got)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if len(m.List()) != 0 {
		t.Error("sessions left after Close")
	}
}

func TestManager_createReusesLiveSession(t *testing.T) {
	r := &fakeRunner{}
	m := NewManager(r)
	s1, err := m.Create(context.Background(), pipeline.BuildRequest{Reference: vid})
	if err != nil {
		t.Fatal(err)
	}
	s2, err := m.Create(context.Background(), pipeline.BuildRequest{Reference: "https://youtu.be/" + vid})
	if err != nil {
		t.Fatal(err)
	}
	if s2 != s1 || s1.closed {
		t.Error("second create without rebuild replaced the live session")
	}
	if n := r.builds.Load(); n != 1 {
		t.Errorf("builds = %d, want 1", n)
	}
}
