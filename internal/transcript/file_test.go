package transcript

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const sampleSRT = "\xef\xbb\xbf1\n00:00:01,000 --> 00:00:04,500\nBonjour\nà tous\n\n2\n00:00:05,000 --> 00:00:07,000 X1:0\nmerci\n"

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "abcdefghijk.json", `[{"text":"Hello world","start":0.0,"duration":2.0},{"text":"this is a test","start":2.0,"duration":3.0}]`)
	writeFile(t, dir, "abcdefghijk.fr.srt", sampleSRT)
	writeFile(t, dir, "abcdefghijk.txt", "ignored")

	src := NewFileSource(dir)
	tracks, err := src.ListTracks(context.Background(), "abcdefghijk")
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 2 {
		t.Fatalf("tracks = %+v", tracks)
	}

	res, err := NewFetcher(src).Fetch(context.Background(), "abcdefghijk", "fr")
	if err != nil {
		t.Fatal(err)
	}
	if res.Track.LanguageCode != "fr" || len(res.Snippets) != 2 {
		t.Fatalf("result = %+v", res)
	}
	if res.Snippets[0].Text != "Bonjour à tous" || res.Snippets[0].Start != 1 || math.Abs(res.Snippets[0].Duration-3.5) > 1e-9 {
		t.Errorf("snippet = %+v", res.Snippets[0])
	}

	// No English track: the first listed track is used.
	res, err = NewFetcher(src).Fetch(context.Background(), "abcdefghijk", "en")
	if err != nil {
		t.Fatal(err)
	}
	if res.Track.LanguageCode != "fr" {
		t.Errorf("fallback track = %+v", res.Track)
	}

	snippets, err := src.FetchTrack(context.Background(), tracks[1])
	if err != nil {
		t.Fatal(err)
	}
	if tracks[1].LanguageCode != "" || len(snippets) != 2 || snippets[1].Text != "this is a test" || snippets[1].End() != 5 {
		t.Errorf("json track = %+v, snippets = %+v", tracks[1], snippets)
	}
}

func TestParseSRT_badTimestamp(t *testing.T) {
	if _, err := ParseSRT([]byte("1\n00:00:xx,000 --> 00:00:01,000\nhi\n")); err == nil {
		t.Error("expected error")
	}
}
