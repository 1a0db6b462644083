package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/hyperjump/kiku/internal/index"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/storage"
	"github.com/hyperjump/kiku/pkg/utils"
)

// WriteBuild reports a finished build.
func WriteBuild(w io.Writer, res *models.BuildResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	verb := "Indexed"
	if res.Reused {
		verb = "Loaded existing index for"
	}
	fmt.Fprintf(w, "%s %s %s\n", label("✓"), verb, heading(res.VideoID))
	fmt.Fprintf(w, "  language: %s", res.DetectedLang)
	if res.Translated {
		fmt.Fprintf(w, " (translated to English, %s)", warn("no timestamps"))
	}
	fmt.Fprintf(w, "\n  chunks:   %d\n  index:    %s\n", res.ChunkCount, res.IndexPath)
	if res.DurationMs > 0 {
		fmt.Fprintf(w, "  took:     %s\n", time.Duration(res.DurationMs)*time.Millisecond)
	}
	return nil
}

// WriteAnswer prints the answer followed by its citations.
func WriteAnswer(w io.Writer, res *models.AnswerResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "\n%s\n%s\n\n", heading("Answer"), res.Answer)
	writeCitations(w, res.Citations)
	return nil
}

// WriteLookup prints keyword lookup matches as citations.
func WriteLookup(w io.Writer, res *models.LookupResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	if len(res.Citations) == 0 {
		fmt.Fprintf(w, "No passages match %q.\n", res.Query)
		return nil
	}
	fmt.Fprintf(w, "\n%d passages match %q\n\n", len(res.Citations), res.Query)
	writeCitations(w, res.Citations)
	return nil
}

func writeCitations(w io.Writer, citations []*models.Citation) {
	if len(citations) == 0 {
		return
	}
	fmt.Fprintln(w, heading("Sources"))
	for _, c := range citations {
		fmt.Fprintln(w, FormatCitation(c))
		if c.URL != "" {
			fmt.Fprintf(w, "    %s\n", faint(c.URL))
		}
	}
}

// FormatCitation renders "[MM:SS → MM:SS] preview", or "[no timestamp] preview"
// when the citation has no start time.
func FormatCitation(c *models.Citation) string {
	return fmt.Sprintf("%s %s", label("["+c.Label+"]"), c.Preview)
}

// WriteStatus lists the indexes under root.
func WriteStatus(w io.Writer, root string, summaries []*index.Summary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{"index_root": root, "indexes": summaries})
	}
	fmt.Fprintf(w, "%s %s\n", heading("Index root:"), root)
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No videos indexed.")
		return nil
	}
	var total int64
	for _, s := range summaries {
		total += s.DiskBytes
		lang := s.Meta.Lang
		if s.Meta.Translated {
			lang += "→en"
		}
		fmt.Fprintf(w, "  %s  %-8s %4d chunks  %9s  %s  %s\n",
			label(s.Meta.VideoID), lang, s.Meta.ChunkCount,
			storage.FormatBytes(s.DiskBytes),
			s.Meta.BuiltAt.Local().Format("2006-01-02 15:04"),
			faint(utils.Truncate(s.Meta.EmbeddingModel, 32)))
	}
	fmt.Fprintf(w, "%d videos, %s on disk\n", len(summaries), storage.FormatBytes(total))
	return nil
}
