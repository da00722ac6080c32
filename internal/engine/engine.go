// Package engine wires every other package in the module into the single
// stateful object a host (an IME hook, a test harness, the httpview demo
// server) talks to: it owns the input state machine, dispatches the async
// neural pipeline, assembles the merged candidate list on every keystroke,
// and pushes the result to a view. Everything outside the hook thread's
// own eat/pass-through decision lives here.
package engine

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/aipinyin/engine/internal/abbrev"
	"github.com/aipinyin/engine/internal/adapter"
	"github.com/aipinyin/engine/internal/aicache"
	"github.com/aipinyin/engine/internal/config"
	"github.com/aipinyin/engine/internal/dict"
	"github.com/aipinyin/engine/internal/history"
	"github.com/aipinyin/engine/internal/inputstate"
	"github.com/aipinyin/engine/internal/merger"
	"github.com/aipinyin/engine/internal/pipeline"
	"github.com/aipinyin/engine/internal/plugin"
	"github.com/aipinyin/engine/internal/ranker"
	"github.com/aipinyin/engine/internal/syllable"
	"github.com/aipinyin/engine/internal/types"
	"github.com/aipinyin/engine/internal/userdict"
	"github.com/aipinyin/engine/internal/view"
	"github.com/aipinyin/engine/internal/vocab"
	"github.com/aipinyin/engine/internal/wordgraph"
)

// SyntheticInput is re-exported from adapter so callers that only import
// engine still have the name they need to supply to New.
type SyntheticInput = adapter.SyntheticInput

// Engine is the engine's single stateful orchestrator. Construct with New,
// then feed it classified key events through Classify/Enqueue exactly as
// adapter.Adapter expects; everything else happens on its own worker
// goroutines.
type Engine struct {
	cfg     config.Config
	dict    *dict.Dictionary
	users   *userdict.Store
	aiCache *aicache.Cache
	history *history.Buffer
	ranker  *ranker.Ranker
	scorer  ranker.Scorer
	voc     *vocab.Vocab
	pipe    *pipeline.Pipeline
	plugins *plugin.Registry
	view    view.View
	si      SyntheticInput
	logger  *log.Logger

	state   *inputstate.Machine
	adapter *adapter.Adapter

	chineseMode    atomic.Bool
	bufferNonEmpty atomic.Bool
	pageOffsetSnap atomic.Int32

	viewMu  sync.Mutex
	lastAll []types.Candidate
}

// New builds an Engine over its already-opened collaborators. scorer/voc
// may both be nil, meaning no neural ranker is available; the engine then
// runs in pure-dictionary mode regardless of cfg.Mode. si performs the
// actual synthetic-input injection for commits; it may be nil, in which
// case commits are computed but never injected (useful for tests and the
// headless httpview demo).
func New(cfg config.Config, d *dict.Dictionary, users *userdict.Store, aiCache *aicache.Cache, hist *history.Buffer, scorer ranker.Scorer, voc *vocab.Vocab, pipe *pipeline.Pipeline, plugins *plugin.Registry, v view.View, si SyntheticInput, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	if v == nil {
		v = view.Null{}
	}
	e := &Engine{
		cfg:     cfg,
		dict:    d,
		users:   users,
		aiCache: aiCache,
		history: hist,
		ranker:  ranker.New(scorer, voc),
		scorer:  scorer,
		voc:     voc,
		pipe:    pipe,
		plugins: plugins,
		view:    v,
		si:      si,
		logger:  logger,
		state:   inputstate.New(users),
	}
	e.chineseMode.Store(true)
	e.adapter = adapter.New(e.handle, logger)
	go e.drainResults()
	return e
}

// Classify reports whether the engine wants to eat evt, given its current
// mode and buffer state. Safe to call from the hook thread: it only reads
// an atomically maintained snapshot, never the live input state machine.
func (e *Engine) Classify(evt adapter.Event) bool {
	return adapter.Classify(e.chineseMode.Load(), e.bufferNonEmpty.Load(), evt)
}

// Enqueue hands evt to the worker goroutine for processing. Never blocks.
func (e *Engine) Enqueue(evt adapter.Event) {
	e.adapter.Enqueue(evt)
}

// Close stops the engine's worker goroutines and the async pipeline.
func (e *Engine) Close() {
	e.adapter.Close()
	e.pipe.Close()
}

// handle runs on the adapter's single worker goroutine; it is the only
// reader or writer of the input state machine anywhere in the engine.
// drainResults (its own goroutine) never touches e.state: it works only
// from the generation-scoped raw string a job was dispatched with and
// from the atomically published snapshots (chineseMode, bufferNonEmpty,
// pageOffsetSnap) handle publishes after every event, plus lastAll under
// viewMu. That split is what keeps inputstate.Machine's "not safe for
// concurrent use" contract from ever being violated across goroutines.
func (e *Engine) handle(evt adapter.Event) {
	if evt.Kind == adapter.Shift {
		if evt.Direction == adapter.Down {
			e.state.ShiftDown()
		} else if injected, toggled := e.state.ShiftUp(); toggled {
			if injected != "" {
				e.inject(injected)
				e.history.Push(injected)
			}
			if e.state.Mode == inputstate.Chinese {
				e.refreshCandidates()
			} else {
				e.view.Hide()
			}
		}
		e.publishSnapshot()
		return
	}

	e.state.NoteOtherKey()

	switch evt.Kind {
	case adapter.Letter:
		e.state.Letter(evt.Rune)
		e.refreshCandidates()
	case adapter.Backspace:
		e.state.Backspace()
		e.refreshCandidates()
	case adapter.Space:
		e.commitAt(0)
	case adapter.Digit:
		if evt.Digit >= 1 {
			e.commitAt(evt.Digit - 1)
		}
	case adapter.Escape:
		e.state.Escape()
		e.setLastAll(nil)
		e.view.Hide()
	case adapter.Enter:
		text := e.state.CommitRaw()
		if text != "" {
			e.inject(text)
			e.history.Push(text)
		}
		e.setLastAll(nil)
		e.view.Hide()
	case adapter.PageNext:
		e.state.PageNext()
		e.render(e.state.Raw, e.state.PageOffset)
	case adapter.PagePrev:
		e.state.PagePrev()
		e.render(e.state.Raw, e.state.PageOffset)
	}

	e.publishSnapshot()
}

// commitAt commits the candidate at zero-based index idx within the
// current page (space always means index 0, a digit key 1-9 means
// index-1). Out-of-range indices are a no-op: nothing to commit.
func (e *Engine) commitAt(idx int) {
	page := e.currentPage(e.state.PageOffset)
	if idx < 0 || idx >= len(page) {
		return
	}
	word := page[idx].Word
	result := e.state.CommitCandidate(word)
	e.inject(result.Injected)
	if result.WasFull {
		e.history.Push(result.Injected)
	}
	if result.Remaining == "" {
		e.setLastAll(nil)
		e.view.Hide()
		return
	}
	e.refreshCandidates()
}

func (e *Engine) inject(text string) {
	if e.si == nil || text == "" {
		return
	}
	adapter.InjectUTF16(e.si, text)
}

// refreshCandidates recomputes the full candidate list for the live
// buffer, pushes it to the view immediately (the synchronous fast path),
// and — when AI mode is selected and the ranker is available — dispatches
// a background job to refine it.
func (e *Engine) refreshCandidates() {
	raw := e.state.Raw
	if raw == "" {
		e.setLastAll(nil)
		e.view.Hide()
		return
	}

	userLearned := e.userCandidates(raw)
	dictAfter := e.assembleDictionaryCandidates(raw)

	var syncAI []types.Candidate
	if e.cfg.Mode == config.ModeAI && e.ranker.Available() && len(e.state.Syllables()) == 1 {
		// One score_next call, bounded by a single syllable's candidate-id
		// mask: cheap enough to run on the keystroke path itself (spec.md
		// §4.8's sync fast path), unlike the beam search the async job runs
		// for multi-syllable buffers.
		syncAI = e.ranker.Predict(context.Background(), raw, e.history.ContextString(), e.cfg.AITopK)
	}

	all := merger.Merge(userLearned, syncAI, nil, dictAfter)
	e.setLastAll(all)
	e.render(raw, e.state.PageOffset)

	if e.cfg.Mode == config.ModeAI && e.ranker.Available() {
		e.dispatchAsync(raw, dictAfter)
	}
}

// assembleDictionaryCandidates builds the "dictionary after plugins" input
// to the merger: the abbreviation solver's output when the buffer is
// initials-only, otherwise the word-graph covering of the buffer's
// syllables, the exact match for the buffer as a whole, exact matches for
// each shorter leading run of syllables (longest first), and prefix
// matches for the buffer; then any AI-discovered words cached for the
// buffer — in that order, deduplicated by word, then passed through every
// registered plugin hook. It segments raw
// itself rather than reading the live input state machine, both so it
// stays internally consistent (raw and its syllables always agree) and
// so drainResults (a different goroutine than the one owning e.state)
// can call it safely against a generation-scoped raw string.
func (e *Engine) assembleDictionaryCandidates(raw string) []types.Candidate {
	syllables := syllable.Segment(raw)

	var cands []types.Candidate
	if abbrev.IsAbbreviationInput(raw, allValidSyllables(syllables)) {
		cands = abbrev.Solve(context.Background(), e.dict, e.scorerForAbbrev(), e.vocabForAbbrev(), raw, e.cfg.AITopK)
	} else {
		cands = appendUnique(nil, sentencesToCandidates(wordgraph.Segment(e.dict, syllables, e.cfg.AITopK))...)
		cands = appendUnique(cands, e.dict.Lookup(raw)...)
		// Surface candidates that cover only a leading run of the buffer's
		// syllables, not just the whole-buffer exact match: CommitCandidate
		// consumes as many syllables as the chosen word has characters, so a
		// shorter word must already be in the list to be selectable as a
		// partial commit.
		for k := len(syllables) - 1; k >= 1; k-- {
			cands = appendUnique(cands, e.dict.Lookup(syllable.Join(syllables[:k]))...)
		}
		cands = appendUnique(cands, e.dict.LookupPrefix(raw)...)
	}
	if e.aiCache != nil {
		cands = appendUnique(cands, e.aiCache.Lookup(raw)...)
	}
	if e.plugins != nil {
		cands = e.plugins.Apply(raw, cands)
	}
	return cands
}

// scorerForAbbrev and vocabForAbbrev expose the ranker's beam-search
// collaborators to abbrev.Solve without abbrev importing ranker/vocab
// construction details; a model-unavailable Ranker yields nil for both,
// and abbrev.Solve degrades to its dictionary-only strategy.
func (e *Engine) scorerForAbbrev() ranker.Scorer {
	if !e.ranker.Available() {
		return nil
	}
	return e.scorer
}

func (e *Engine) vocabForAbbrev() *vocab.Vocab {
	if !e.ranker.Available() {
		return nil
	}
	return e.voc
}

// userCandidates returns the learned words for raw as candidates, highest
// count first.
func (e *Engine) userCandidates(raw string) []types.Candidate {
	if e.users == nil {
		return nil
	}
	learned := e.users.GetLearnedWords(raw)
	out := make([]types.Candidate, len(learned))
	for i, l := range learned {
		out[i] = types.Candidate{Word: l.Word, Weight: l.Count, Pinyin: raw}
	}
	return out
}

// dispatchAsync enqueues the background neural refinement job: Predict
// when the engine is pure-generation, Rerank of dictAfter when
// ai.rerank is enabled, tagged with the pipeline's generation counter so a
// result overtaken by a later keystroke is discarded in full.
func (e *Engine) dispatchAsync(raw string, dictAfter []types.Candidate) {
	context_ := e.history.ContextString()
	rerank := e.cfg.AIRerank
	topK := e.cfg.AITopK

	e.pipe.Dispatch(raw, context_, func(ctx context.Context) []types.Candidate {
		if rerank {
			return e.ranker.Rerank(ctx, raw, dictAfter, context_)
		}
		return e.ranker.Predict(ctx, raw, context_, topK)
	})
}

// drainResults applies every completed pipeline job whose generation is
// still current, recomputing userLearned fresh (it may have changed by
// the time the job completes) and merging it with the async result over
// the dictAfter snapshot captured at dispatch time. It runs on its own
// goroutine and must never touch e.state: Apply(r) returning true means
// no later keystroke has been handled since this job's raw was current,
// so r.Raw itself stands in for the live buffer. The page to render is
// read from pageOffsetSnap (published by handle after every event)
// rather than e.state.PageOffset, since paging doesn't bump the
// generation counter and so can't be inferred from r alone.
func (e *Engine) drainResults() {
	for r := range e.pipe.Results() {
		if !e.pipe.Apply(r) {
			e.logger.Printf("engine: discarding stale async result for raw=%q generation=%d", r.Raw, r.Generation)
			continue
		}
		e.offerToCache(r.Raw, r.Candidates)

		userLearned := e.userCandidates(r.Raw)
		dictAfter := e.assembleDictionaryCandidates(r.Raw)
		all := merger.Merge(userLearned, nil, r.Candidates, dictAfter)
		e.setLastAll(all)
		e.render(r.Raw, int(e.pageOffsetSnap.Load()))
	}
}

// offerToCache proposes every sufficiently long AI-generated word not
// already in the static dictionary to the AI cache, so it survives a
// restart without the model having to be invoked again.
func (e *Engine) offerToCache(raw string, cands []types.Candidate) {
	if e.aiCache == nil {
		return
	}
	for _, c := range cands {
		e.aiCache.Offer(e.dict, raw, c.Word, c.Weight)
	}
}

func (e *Engine) setLastAll(all []types.Candidate) {
	e.viewMu.Lock()
	e.lastAll = all
	e.viewMu.Unlock()
}

// currentPage returns the candidates on the page at pageOffset, against
// the most recently published candidate list.
func (e *Engine) currentPage(pageOffset int) []types.Candidate {
	e.viewMu.Lock()
	all := e.lastAll
	e.viewMu.Unlock()
	page, _ := merger.Paginate(all, pageOffset+1, merger.DefaultPageSize)
	return page
}

// render pushes the page at pageOffset of the most recently published
// candidate list to the view for the given raw buffer, hiding it when
// both raw and the candidate list are empty. raw and pageOffset are
// always supplied by the caller rather than read from e.state here, so
// render is safe to call from drainResults as well as from handle.
func (e *Engine) render(raw string, pageOffset int) {
	e.viewMu.Lock()
	all := e.lastAll
	e.viewMu.Unlock()

	if raw == "" && len(all) == 0 {
		e.view.Hide()
		return
	}
	page, info := merger.Paginate(all, pageOffset+1, merger.DefaultPageSize)
	e.view.Update(raw, page, info)
}

// publishSnapshot updates the atomically readable mode/buffer/page
// snapshot Classify and drainResults depend on. Called once at the end
// of every handled event, from the single goroutine that owns e.state.
func (e *Engine) publishSnapshot() {
	e.chineseMode.Store(e.state.Mode == inputstate.Chinese)
	e.bufferNonEmpty.Store(e.state.Raw != "")
	e.pageOffsetSnap.Store(int32(e.state.PageOffset))
}

func allValidSyllables(syllables []string) bool {
	if len(syllables) == 0 {
		return false
	}
	for _, s := range syllables {
		if !syllable.IsValid(s) {
			return false
		}
	}
	return true
}

func appendUnique(out []types.Candidate, cands ...types.Candidate) []types.Candidate {
	seen := make(map[string]bool, len(out))
	for _, c := range out {
		seen[c.Word] = true
	}
	for _, c := range cands {
		if c.Word == "" || seen[c.Word] {
			continue
		}
		seen[c.Word] = true
		out = append(out, c)
	}
	return out
}

func sentencesToCandidates(sentences []wordgraph.Sentence) []types.Candidate {
	out := make([]types.Candidate, len(sentences))
	for i, s := range sentences {
		out[i] = types.Candidate{Word: s.Text, Weight: clampWeight(s.Score)}
	}
	return out
}

func clampWeight(score int64) uint32 {
	if score < 0 {
		return 0
	}
	if score > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(score)
}
