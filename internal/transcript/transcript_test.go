package transcript

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/kiku/internal/models"
)

func TestSelectTrack(t *testing.T) {
	manualEN := Track{LanguageCode: "en"}
	autoEN := Track{LanguageCode: "en", Generated: true}
	manualES := Track{LanguageCode: "es"}
	autoDE := Track{LanguageCode: "de", Generated: true}

	tests := []struct {
		name      string
		tracks    []Track
		preferred string
		want      Track
		wantOK    bool
	}{
		{"none", nil, "en", Track{}, false},
		{"manual preferred wins", []Track{autoEN, manualES, manualEN}, "en", manualEN, true},
		{"generated preferred next", []Track{manualES, autoEN}, "en", autoEN, true},
		{"first available last", []Track{autoDE, manualES}, "en", autoDE, true},
		{"case insensitive", []Track{manualES, manualEN}, "EN", manualEN, true},
		{"no preference", []Track{manualES, manualEN}, "", manualES, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectTrack(tt.tracks, tt.preferred)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("SelectTrack() = %+v, %v; want %+v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFetcher_Fetch(t *testing.T) {
	src := NewStaticSource()
	src.Add("vid00000001", "es", false, []models.TranscriptSnippet{{Text: "hola", Start: 0, Duration: 1}})
	src.Add("vid00000001", "en", true, []models.TranscriptSnippet{
		{Text: "  Hello world ", Start: 0, Duration: 2},
		{Text: "   ", Start: 2, Duration: 1},
		{Text: "this is a test", Start: 3, Duration: 2},
	})

	res, err := NewFetcher(src).Fetch(context.Background(), "vid00000001", "en")
	if err != nil {
		t.Fatal(err)
	}
	if res.Track.LanguageCode != "en" || !res.Track.Generated {
		t.Errorf("track = %+v", res.Track)
	}
	if len(res.Snippets) != 2 || res.Snippets[0].Text != "Hello world" || res.Snippets[1].Start != 3 {
		t.Errorf("snippets = %+v", res.Snippets)
	}
}

func TestFetcher_errors(t *testing.T) {
	src := NewStaticSource()
	src.Disable("disabled000")
	src.Add("blank000000", "en", false, []models.TranscriptSnippet{{Text: " "}, {Text: "\n"}})

	tests := []struct {
		id   string
		want error
	}{
		{"disabled000", ErrTranscriptsDisabled},
		{"missing0000", ErrNoTranscript},
		{"blank000000", ErrEmptyTranscript},
	}
	f := NewFetcher(src)
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), tt.id, "en")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !IsUnavailable(err) {
				t.Errorf("IsUnavailable(%v) = false", err)
			}
		})
	}
	if IsUnavailable(errors.New("network down")) {
		t.Error("generic error reported as unavailable")
	}
}
