// Package aicache remembers long phrases proposed by the neural ranker
// that are not already in the static dictionary, so they survive process
// restarts without requiring a full dictionary retrain. It is an
// in-memory side map backed by an append-only text file in the same
// comma-separated format as the dictionary corpus.
package aicache

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/aipinyin/engine/internal/dict"
	"github.com/aipinyin/engine/internal/types"
)

// MinWordLen is the minimum character length a ranker-proposed word must
// have before it is eligible for caching; shorter proposals are assumed
// already covered by the static dictionary or user store.
const MinWordLen = 3

// MaxEntries bounds the in-memory map during a run: once full, Offer
// evicts the oldest entry (by insertion order) to admit a new one. The
// on-disk file is append-only and never compacted, so evicted entries
// stay in it, and Open loads every line it holds without applying the
// bound.
const MaxEntries = 5000

type entry struct {
	word   string
	weight uint32
}

// Cache is the runtime AI-discovered-word store. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	path    string
	byKey   map[string][]entry // pinyin -> entries, insertion order
	order   []string           // pinyin keys in insertion order, for eviction
	seen    map[string]bool    // "pinyin\x00word" membership
	logger  *log.Logger
	entries int
}

// Open loads any existing cache file at path (same format as the
// dictionary corpus: pinyin,word,weight) and returns a ready Cache. A
// missing file starts empty.
func Open(path string, logger *log.Logger) (*Cache, error) {
	if logger == nil {
		logger = log.Default()
	}
	c := &Cache{
		path:   path,
		byKey:  make(map[string][]entry),
		seen:   make(map[string]bool),
		logger: logger,
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("open ai cache: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, ",", 3)
		if len(fields) < 2 {
			continue
		}
		pinyin := dict.SanitizePinyin(strings.TrimSpace(fields[0]))
		word := strings.TrimSpace(fields[1])
		if pinyin == "" || word == "" {
			continue
		}
		weight := uint32(50)
		if len(fields) == 3 {
			if parsed, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32); err == nil {
				weight = uint32(parsed)
			}
		}
		c.insertLocked(pinyin, word, weight)
	}
	return c, nil
}

// Offer considers a ranker-proposed word for caching. It is a no-op if
// the word is shorter than MinWordLen, if the dictionary already serves
// this (pinyin, word) pair, or if it is already cached. Otherwise it is
// added to the in-memory map and appended to the on-disk file, evicting
// the oldest entry first if the cache is full.
func (c *Cache) Offer(d *dict.Dictionary, pinyin, word string, weight uint32) {
	if len([]rune(word)) < MinWordLen {
		return
	}
	if d != nil {
		for _, cand := range d.Lookup(pinyin) {
			if cand.Word == word {
				return
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[cacheKey(pinyin, word)] {
		return
	}
	if c.entries >= MaxEntries {
		c.evictOldestLocked()
	}
	c.insertLocked(pinyin, word, weight)
	c.appendLocked(pinyin, word, weight)
}

// Lookup returns cached candidates for pinyin, in insertion order. Callers
// check the main dictionary first and only consult the cache afterward.
func (c *Cache) Lookup(pinyin string) []types.Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket := c.byKey[pinyin]
	out := make([]types.Candidate, len(bucket))
	for i, e := range bucket {
		out[i] = types.Candidate{Word: e.word, Weight: e.weight, Pinyin: pinyin}
	}
	return out
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries
}

func cacheKey(pinyin, word string) string { return pinyin + "\x00" + word }

func (c *Cache) insertLocked(pinyin, word string, weight uint32) {
	key := cacheKey(pinyin, word)
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	if _, ok := c.byKey[pinyin]; !ok {
		c.order = append(c.order, pinyin)
	}
	c.byKey[pinyin] = append(c.byKey[pinyin], entry{word: word, weight: weight})
	c.entries++
}

func (c *Cache) evictOldestLocked() {
	for len(c.order) > 0 {
		pinyin := c.order[0]
		bucket := c.byKey[pinyin]
		if len(bucket) == 0 {
			c.order = c.order[1:]
			delete(c.byKey, pinyin)
			continue
		}
		evicted := bucket[0]
		c.byKey[pinyin] = bucket[1:]
		delete(c.seen, cacheKey(pinyin, evicted.word))
		c.entries--
		if len(c.byKey[pinyin]) == 0 {
			c.order = c.order[1:]
			delete(c.byKey, pinyin)
		}
		return
	}
}

func (c *Cache) appendLocked(pinyin, word string, weight uint32) {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		c.logger.Printf("aicache: write failed: path=%s err=%v", c.path, err)
		return
	}
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		c.logger.Printf("aicache: write failed: path=%s err=%v", c.path, err)
		return
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s,%s,%d\n", pinyin, word, weight); err != nil {
		c.logger.Printf("aicache: write failed: path=%s err=%v", c.path, err)
	}
}
