package syllable

// maxAlternatives bounds how many alternative segmentations Alternatives
// returns.
const maxAlternatives = 5

// searchBudget caps the number of search-tree nodes visited so a long
// buffer of single-letter-valid syllables (e.g. "aaaaaa...") cannot blow up
// enumeration; it's generous enough for realistic IME buffer lengths.
const searchBudget = 20000

// Alternatives enumerates up to five full segmentations of raw that use
// only valid syllables (no one-letter fallback tokens unless the letter is
// itself a syllable), are distinct from the greedy Segment(raw) result, and
// distinct from each other. Results are ordered by total syllable count
// ascending (fewer, longer syllables first), matching the intuition that a
// segmentation covering the buffer with fewer pieces is a more natural read.
func Alternatives(raw string) [][]string {
	if raw == "" || !isASCIILower(raw) {
		return nil
	}

	greedy := Segment(raw)
	greedyKey := Join(greedy) + "\x00" + joinWithSep(greedy)

	var found [][]string
	seen := map[string]struct{}{greedyKey: {}}
	budget := searchBudget

	var walk func(pos int, acc []string) bool
	walk = func(pos int, acc []string) bool {
		if len(found) >= maxAlternatives {
			return false
		}
		budget--
		if budget <= 0 {
			return false
		}
		if pos == len(raw) {
			key := Join(acc) + "\x00" + joinWithSep(acc)
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				out := make([]string, len(acc))
				copy(out, acc)
				found = append(found, out)
			}
			return len(found) < maxAlternatives
		}
		maxN := maxLen
		if remaining := len(raw) - pos; remaining < maxN {
			maxN = remaining
		}
		for l := maxN; l >= 1; l-- {
			piece := raw[pos : pos+l]
			if !IsValid(piece) {
				continue
			}
			if !walk(pos+l, append(acc, piece)) {
				return false
			}
		}
		return true
	}
	walk(0, nil)

	sortByLength(found)
	return found
}

func joinWithSep(syllables []string) string {
	// Distinguishes segmentations whose concatenation matches but whose
	// split points differ, e.g. ["xi","an"] vs ["xian"] both join to "xian".
	out := make([]byte, 0, len(syllables)*3)
	for _, s := range syllables {
		out = append(out, s...)
		out = append(out, '|')
	}
	return string(out)
}

func sortByLength(segs [][]string) {
	for i := 1; i < len(segs); i++ {
		for j := i; j > 0 && len(segs[j]) < len(segs[j-1]); j-- {
			segs[j], segs[j-1] = segs[j-1], segs[j]
		}
	}
}
