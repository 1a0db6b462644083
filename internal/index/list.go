package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperjump/kiku/internal/storage"
)

// Summary describes one index found under a root directory.
type Summary struct {
	Meta
	Path      string `json:"path"`
	DiskBytes int64  `json:"disk_bytes"`
}

// List returns the completed indexes directly under root, sorted by video id.
// A missing root yields an empty list.
func List(root string) ([]*Summary, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index root: %w", err)
	}
	var out []*Summary
	for _, e := range entries {
		// Staging and replaced indexes carry a dotted suffix; video ids never do.
		if !e.IsDir() || strings.Contains(e.Name(), ".") {
			continue
		}
		path := filepath.Join(root, e.Name())
		if !Exists(path) {
			continue
		}
		s, err := summarize(path)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VideoID < out[j].VideoID })
	return out, nil
}

func summarize(path string) (*Summary, error) {
	store, err := storage.NewSQLiteStorage(filepath.Join(path, ChunksFile))
	if err != nil {
		return nil, err
	}
	ix := &Index{path: path, store: store}
	defer store.Close()
	if err := ix.loadMeta(context.Background()); err != nil {
		return nil, err
	}
	size, err := storage.DiskUsageBytes(path)
	if err != nil {
		return nil, err
	}
	return &Summary{Meta: ix.meta, Path: path, DiskBytes: size}, nil
}
