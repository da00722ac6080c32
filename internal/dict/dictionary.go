// Package dict implements the three-index Pinyin dictionary: exact,
// prefix and initial-abbreviation lookup over a static (pinyin, word,
// weight) corpus, built once and queried in O(1) per stroke.
package dict

import (
	"log"
	"sort"
	"sync"

	"github.com/aipinyin/engine/internal/types"
)

// defaultWeight is used for corpus lines that omit the weight field.
const defaultWeight = 50

// maxPrefixLen bounds how many prefix lengths of a candidate's pinyin are
// indexed: 1 through 6 letters.
const maxPrefixLen = 6

// Dictionary is the three-index corpus: exact, prefix and abbreviation
// lookup plus the flat vector that is the single source of candidate
// identity. Built once; safe for concurrent readers. Mutating operations
// (Boost, MergeText) take a write lock and are expected to run only
// during load or an explicit retrain; otherwise the index is immutable.
type Dictionary struct {
	mu sync.RWMutex

	exact  map[string][]types.Candidate
	prefix map[string][]int
	abbrev map[string][]int
	all    []types.Candidate

	// entryIndex maps "pinyin\x00word" to its position in all, so Boost
	// and MergeText's dedup check are O(1) instead of a linear scan.
	entryIndex map[string]int

	logger *log.Logger
}

func (d *Dictionary) setLogger(l *log.Logger) { d.logger = l }

func entryKey(pinyin, word string) string {
	return pinyin + "\x00" + word
}

// New builds an empty dictionary, ready to receive MergeText calls.
func New(logger *log.Logger) *Dictionary {
	if logger == nil {
		logger = log.Default()
	}
	return &Dictionary{
		exact:      make(map[string][]types.Candidate),
		prefix:     make(map[string][]int),
		abbrev:     make(map[string][]int),
		entryIndex: make(map[string]int),
		logger:     logger,
	}
}

// Len returns the number of distinct (pinyin, word) entries loaded.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.all)
}

// insert adds a new (pinyin, word, weight) entry in file order, indexing it
// into exact/prefix/abbrev. Caller holds the write lock. Returns false if
// the (pinyin, word) pair already exists.
func (d *Dictionary) insert(pinyin, word string, weight uint32) bool {
	key := entryKey(pinyin, word)
	if _, exists := d.entryIndex[key]; exists {
		return false
	}

	cand := types.Candidate{Word: word, Weight: weight, Pinyin: pinyin}
	idx := len(d.all)
	d.all = append(d.all, cand)
	d.entryIndex[key] = idx

	d.exact[pinyin] = append(d.exact[pinyin], cand)

	n := len(pinyin)
	if n > maxPrefixLen {
		n = maxPrefixLen
	}
	for l := 1; l <= n; l++ {
		p := pinyin[:l]
		d.prefix[p] = append(d.prefix[p], idx)
	}

	abbr := Initials(pinyin)
	if len(abbr) >= 2 && abbr != pinyin {
		d.abbrev[abbr] = append(d.abbrev[abbr], idx)
	}

	return true
}

// sortExactBucket sorts one exact[] bucket by weight descending, stable
// so ties keep insertion order.
func sortExactBucket(bucket []types.Candidate) {
	sort.SliceStable(bucket, func(i, j int) bool {
		return bucket[i].Weight > bucket[j].Weight
	})
}

func sortByWeightDesc(cands []types.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Weight > cands[j].Weight
	})
}
