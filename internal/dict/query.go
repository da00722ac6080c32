package dict

import "github.com/aipinyin/engine/internal/types"

// All returns every loaded entry, in file order. Intended for callers
// that need to scan the whole corpus (e.g. the abbreviation solver's
// single-character fallback); ordinary queries should prefer Lookup,
// LookupPrefix or LookupAbbreviation.
func (d *Dictionary) All() []types.Candidate {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]types.Candidate, len(d.all))
	copy(out, d.all)
	return out
}

// Lookup returns the exact[p] bucket, already sorted by weight descending,
// or empty if p has no entries.
func (d *Dictionary) Lookup(p string) []types.Candidate {
	d.mu.RLock()
	defer d.mu.RUnlock()
	bucket := d.exact[p]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]types.Candidate, len(bucket))
	copy(out, bucket)
	return out
}

// LookupPrefix returns candidates whose pinyin begins with p (1..6 letters),
// sorted by weight descending.
func (d *Dictionary) LookupPrefix(p string) []types.Candidate {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(p) > maxPrefixLen {
		p = p[:maxPrefixLen]
	}
	indices := d.prefix[p]
	if len(indices) == 0 {
		return nil
	}
	out := make([]types.Candidate, len(indices))
	for i, idx := range indices {
		out[i] = d.all[idx]
	}
	sortByWeightDesc(out)
	return out
}

// LookupAbbreviation returns candidates whose per-syllable initials equal a,
// sorted by weight descending.
func (d *Dictionary) LookupAbbreviation(a string) []types.Candidate {
	d.mu.RLock()
	defer d.mu.RUnlock()
	indices := d.abbrev[a]
	if len(indices) == 0 {
		return nil
	}
	out := make([]types.Candidate, len(indices))
	for i, idx := range indices {
		out[i] = d.all[idx]
	}
	sortByWeightDesc(out)
	return out
}
