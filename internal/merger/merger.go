// Package merger combines the engine's candidate sources into one
// ordered, deduplicated, paginated list under a fixed priority law:
// user-learned words first, then whichever AI list is available for the
// current generation, then the dictionary (after any plugin hooks),
// deduplicated by exact word string.
package merger

import "github.com/aipinyin/engine/internal/types"

// DefaultPageSize is the number of candidates shown per page when the
// caller doesn't override it.
const DefaultPageSize = 9

// Merge fuses userLearned, then either syncAI or asyncAI (whichever is
// non-nil; asyncAI wins if both are supplied, since an async result for
// the current generation supersedes the sync fast path that preceded
// it), then dictAfterPlugins, deduplicating by word. Every candidate that
// doesn't already carry a Source (types.SourceUnknown) is stamped with
// the default for the bucket it arrived through, so a caller or test can
// tell which of the three priority tiers a given result came from even
// when the producer didn't bother tagging it itself.
func Merge(userLearned, syncAI, asyncAI, dictAfterPlugins []types.Candidate) []types.Candidate {
	seen := make(map[string]bool)
	var out []types.Candidate

	appendNew := func(cands []types.Candidate, def types.Source) {
		for _, c := range cands {
			if c.Word == "" || seen[c.Word] {
				continue
			}
			seen[c.Word] = true
			if c.Source == types.SourceUnknown {
				c.Source = def
			}
			out = append(out, c)
		}
	}

	appendNew(userLearned, types.SourceUserLearned)
	if asyncAI != nil {
		appendNew(asyncAI, types.SourceAI)
	} else {
		appendNew(syncAI, types.SourceAI)
	}
	appendNew(dictAfterPlugins, types.SourceDict)

	return out
}

// Paginate slices all into the requested page (1-indexed), clamping page
// to [1, total]. Page.Total is 0 when there is exactly one page (or
// none), matching the "page counter exposed only when total > 1"
// convention the view relies on to decide whether to show a counter.
func Paginate(all []types.Candidate, page, pageSize int) ([]types.Candidate, types.Page) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if len(all) == 0 {
		return nil, types.Page{Current: 1, Total: 0}
	}

	total := (len(all) + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	info := types.Page{Current: page, Total: 0}
	if total > 1 {
		info.Total = total
	}
	return all[start:end], info
}
