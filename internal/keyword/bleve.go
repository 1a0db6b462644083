package keyword

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	bolt "go.etcd.io/bbolt"

	"github.com/hyperjump/kiku/internal/models"
)

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

type chunkDoc struct {
	Content string `json:"content"`
	VideoID string `json:"video_id"`
	Lang    string `json:"lang"`
}

// ErrLocked is returned when another handle holds the index open.
var ErrLocked = errors.New("keyword index is in use by another process or session")

// LockTimeout bounds how long opening an existing index waits for its file lock.
const LockTimeout = time.Second

// NewBleveIndex creates or opens a Bleve index at path.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, err := bleve.OpenUsing(path, map[string]interface{}{
			"bolt_timeout": LockTimeout.String(),
		})
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

func newMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	// Standard analyzer (lowercase + tokenize, no stemming): transcripts mix
	// languages, and an English stemmer would mangle non-English terms.
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", text)

	kw := bleve.NewKeywordFieldMapping()
	kw.IncludeInAll = false
	docMapping.AddFieldMappingsAt("video_id", kw)
	docMapping.AddFieldMappingsAt("lang", kw)

	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping
	return im
}

// IndexChunks indexes chunks in a single batch keyed by chunk id.
func (b *BleveIndex) IndexChunks(ctx context.Context, chunks []*models.Chunk) error {
	batch := b.index.NewBatch()
	for _, c := range chunks {
		if err := batch.Index(c.ID, chunkDoc{Content: c.Content, VideoID: c.Metadata.VideoID, Lang: c.Metadata.Lang}); err != nil {
			return fmt.Errorf("batch chunk %s: %w", c.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("bleve batch: %w", err)
	}
	return nil
}

// Search runs a match query over chunk content and returns up to limit hits.
// With a phrase boost, chunks containing the query as a phrase are promoted.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil, nil
	}
	var o SearchOptions
	if opts != nil {
		o = *opts
	}

	reqSize := limit
	if o.PhraseBoost > 1 && reqSize < 50 {
		reqSize = 50
	}
	req := bleve.NewSearchRequest(b.termQuery(query, o.Fuzziness))
	req.Size = reqSize
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}

	if o.PhraseBoost > 1 && len(tokenizeQuery(query)) > 1 {
		phrases, err := b.phraseMatches(ctx, query, reqSize)
		if err != nil {
			return nil, err
		}
		for _, r := range out {
			if phrases[r.ID] {
				r.Score *= o.PhraseBoost
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// termQuery matches any query term; with fuzziness each term tolerates typos.
func (b *BleveIndex) termQuery(query string, fuzziness int) blevequery.Query {
	terms := tokenizeQuery(query)
	if fuzziness <= 0 || len(terms) == 0 {
		mq := bleve.NewMatchQuery(query)
		mq.SetField("content")
		return mq
	}
	if fuzziness > 2 {
		fuzziness = 2
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField("content")
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

func (b *BleveIndex) phraseMatches(ctx context.Context, query string, size int) (map[string]bool, error) {
	pq := bleve.NewMatchPhraseQuery(query)
	pq.SetField("content")
	req := bleve.NewSearchRequest(pq)
	req.Size = size
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve phrase search failed: %w", err)
	}
	matches := make(map[string]bool, len(results.Hits))
	for _, hit := range results.Hits {
		matches[hit.ID] = true
	}
	return matches, nil
}

// tokenizeQuery splits query into lowercase terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// DocCount returns the number of indexed chunks.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
