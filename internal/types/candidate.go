// Package types holds data-model structures shared across the pinyin
// pipeline packages, so leaf packages (dict, userdict, ranker, merge, ...)
// don't import each other just to pass candidates around.
package types

// Candidate is a single Chinese-character proposal for a pinyin key.
// Word is never empty. Weight is a relative score, not a probability.
type Candidate struct {
	Word   string
	Weight uint32
	Pinyin string

	// Source records which producer contributed this Candidate. The
	// merger stamps it onto every candidate that reaches it whose Source
	// is still SourceUnknown, using the bucket it arrived through; a
	// producer that already knows a finer-grained source (the
	// abbreviation solver's word-graph vs. beam-search halves) sets it
	// itself and the merger leaves that alone. Not part of the persisted
	// data model — it exists for merge-order bookkeeping and tests.
	Source Source
}

// Source records which producer contributed a Candidate, for merge-order
// bookkeeping and tests; it is not part of the persisted data model.
type Source int

const (
	SourceUnknown Source = iota
	SourceUserLearned
	SourceAI
	SourceDict
	SourceAbbrevGraph
	SourceAbbrevBeam
)

// Page describes the merger's pagination cursor. Total is 0 when there is
// exactly one page; a page counter is only meaningful once more than one
// page exists.
type Page struct {
	Current int
	Total   int
}
