package transcript

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const timedTextXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0" dur="2.5">Hello &amp;#39;world&amp;#39;</text>
<text start="2.5" dur="3">this is
a test</text>
</transcript>`

func newYouTubeServer(t *testing.T, player string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "dQw4w9WgXcQ" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = %s;var meta = {};</script></html>`, player)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(timedTextXML))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestYouTubeSource(t *testing.T) {
	player := `{"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
		{"baseUrl":"/api/timedtext?lang=en&kind=asr","name":{"simpleText":"English (auto-generated)"},"languageCode":"en","kind":"asr"},
		{"baseUrl":"/api/timedtext?lang=fr","name":{"runs":[{"text":"French"}]},"languageCode":"fr"}
	]}}}`
	srv := newYouTubeServer(t, player)
	src := NewYouTubeSource(WithBaseURL(srv.URL))

	tracks, err := src.ListTracks(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks", len(tracks))
	}
	if !tracks[0].Generated || tracks[0].Name != "English (auto-generated)" || tracks[1].Name != "French" {
		t.Errorf("tracks = %+v", tracks)
	}
	if tracks[1].Location != srv.URL+"/api/timedtext?lang=fr" {
		t.Errorf("location = %q", tracks[1].Location)
	}

	res, err := NewFetcher(src).Fetch(context.Background(), "dQw4w9WgXcQ", "en")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Snippets) != 2 {
		t.Fatalf("got %d snippets", len(res.Snippets))
	}
	if res.Snippets[0].Text != "Hello 'world'" {
		t.Errorf("text = %q", res.Snippets[0].Text)
	}
	if res.Snippets[1].Text != "this is a test" || res.Snippets[1].Start != 2.5 || res.Snippets[1].End() != 5.5 {
		t.Errorf("snippet = %+v", res.Snippets[1])
	}
}

func TestYouTubeSource_noCaptions(t *testing.T) {
	srv := newYouTubeServer(t, `{"playabilityStatus":{"status":"OK"},"videoDetails":{}}`)
	_, err := NewYouTubeSource(WithBaseURL(srv.URL)).ListTracks(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, ErrTranscriptsDisabled) {
		t.Errorf("err = %v", err)
	}
}

func TestYouTubeSource_unplayable(t *testing.T) {
	srv := newYouTubeServer(t, `{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`)
	_, err := NewYouTubeSource(WithBaseURL(srv.URL)).ListTracks(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, ErrNoTranscript) {
		t.Errorf("err = %v", err)
	}
}

func TestYouTubeSource_httpError(t *testing.T) {
	srv := newYouTubeServer(t, `{}`)
	_, err := NewYouTubeSource(WithBaseURL(srv.URL)).ListTracks(context.Background(), "aaaaaaaaaaa")
	if err == nil || IsUnavailable(err) {
		t.Errorf("err = %v", err)
	}
}

func TestParseTimedText_invalid(t *testing.T) {
	if _, err := ParseTimedText([]byte("<transcript><text")); err == nil {
		t.Error("expected parse error")
	}
}
