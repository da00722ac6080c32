package dict

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// LoadExtra loads every name in names from dictDir/<name>.txt and merges
// each through MergeText. Files are read
// concurrently since disk reads of independent files don't need to be
// serialized; merging into the dictionary is serialized by Dictionary's
// own lock. A missing or unreadable file is a non-fatal per-file error,
// accumulated and returned alongside however many entries were added from
// the files that did load — one bad supplementary file must not discard
// the others.
func (d *Dictionary) LoadExtra(dictDir string, names []string) (added int, err error) {
	texts := make([]string, len(names))
	var g errgroup.Group
	var mu sync.Mutex
	var errs error

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			path := filepath.Join(dictDir, name+".txt")
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				mu.Lock()
				errs = multierr.Append(errs, readErr)
				mu.Unlock()
				return nil
			}
			texts[i] = string(data)
			return nil
		})
	}
	_ = g.Wait()

	for _, text := range texts {
		if text == "" {
			continue
		}
		added += d.MergeText(text)
	}
	return added, errs
}
