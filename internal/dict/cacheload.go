package dict

import (
	"log"
	"os"

	"github.com/dustin/go-humanize"

	dictcache "github.com/aipinyin/engine/internal/dict/cache"
)

// LoadWithCache behaves like Load, but additionally consults (and
// maintains) a SQLite-backed binary cache of the built index at
// cacheDBPath, per spec.md §4.2: "a binary cache of the built index may
// be written alongside the source and read eagerly on subsequent
// starts — this is an optimization, not a contract; the text corpus is
// always authoritative." If the cache is missing, unreadable, or stale
// (the corpus hash doesn't match), the text corpus is parsed as usual and
// the cache is rebuilt; any cache error degrades to the plain-Load path
// rather than failing startup.
func LoadWithCache(corpusPath, cacheDBPath string, logger *log.Logger) (*Dictionary, error) {
	if logger == nil {
		logger = log.Default()
	}

	corpusText, err := os.ReadFile(corpusPath)
	if err != nil {
		logger.Printf("dict: corpus unreadable, starting empty: path=%s err=%v", corpusPath, err)
		return New(logger), nil
	}
	hash := dictcache.Hash(string(corpusText))

	c, cacheErr := dictcache.Open(cacheDBPath)
	if cacheErr != nil {
		logger.Printf("dict: cache unavailable, falling back to text corpus: err=%v", cacheErr)
		return Load(corpusPath, logger)
	}
	defer c.Close()

	entries, hit, readErr := c.Read(hash)
	if readErr != nil {
		logger.Printf("dict: cache read failed, falling back to text corpus: err=%v", readErr)
		return Load(corpusPath, logger)
	}
	if hit {
		logger.Printf("dict: loaded %s entries from cache", humanize.Comma(int64(len(entries))))
		return fromCacheEntries(entries, logger), nil
	}

	d, err := Load(corpusPath, logger)
	if err != nil {
		return d, err
	}
	if writeErr := c.Write(hash, toCacheEntries(d)); writeErr != nil {
		logger.Printf("dict: cache write failed: err=%v", writeErr)
	}
	return d, nil
}

func fromCacheEntries(entries []dictcache.Entry, logger *log.Logger) *Dictionary {
	d := New(logger)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range entries {
		d.insert(e.Pinyin, e.Word, e.Weight)
	}
	for p := range d.exact {
		sortExactBucket(d.exact[p])
	}
	return d
}

func toCacheEntries(d *Dictionary) []dictcache.Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]dictcache.Entry, len(d.all))
	for i, c := range d.all {
		out[i] = dictcache.Entry{Pinyin: c.Pinyin, Word: c.Word, Weight: c.Weight, Seq: i}
	}
	return out
}
