// Package language guesses the dominant language of transcript text.
package language

import (
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"

	"github.com/hyperjump/kiku/pkg/utils"
)

// Unknown is returned when the language cannot be determined.
const Unknown = "unknown"

// English is the code of the pipeline's target language.
const English = "en"

// DefaultSampleChars is how much leading text is analysed.
const DefaultSampleChars = 2000

// Detector guesses the language of a text. Results are best-effort metadata.
type Detector interface {
	Detect(text string) string
}

// WhatlangDetector detects languages with whatlanggo on a bounded sample.
type WhatlangDetector struct {
	sampleChars int
}

// NewDetector returns a detector that analyses at most sampleChars characters
// (DefaultSampleChars when sampleChars <= 0).
func NewDetector(sampleChars int) *WhatlangDetector {
	if sampleChars <= 0 {
		sampleChars = DefaultSampleChars
	}
	return &WhatlangDetector{sampleChars: sampleChars}
}

// Detect returns an ISO 639-1 code (ISO 639-3 when no two-letter code exists), or
// Unknown for blank input or when detection fails. It never panics.
func (d *WhatlangDetector) Detect(text string) (code string) {
	defer func() {
		if r := recover(); r != nil {
			code = Unknown
		}
	}()
	sample := utils.FirstRunes(strings.TrimSpace(text), d.sampleChars)
	if sample == "" {
		return Unknown
	}
	if !utf8.ValidString(sample) {
		sample = strings.ToValidUTF8(sample, " ")
	}
	info := whatlanggo.Detect(sample)
	if info.Lang < 0 {
		return Unknown
	}
	if c := info.Lang.Iso6391(); c != "" {
		return c
	}
	if c := info.Lang.Iso6393(); c != "" {
		return c
	}
	return Unknown
}

// Detect runs the default detector.
func Detect(text string) string {
	return NewDetector(DefaultSampleChars).Detect(text)
}

// NeedsTranslation reports whether text detected as lang should be translated to English.
func NeedsTranslation(lang string) bool {
	return lang != English && lang != Unknown && lang != ""
}
