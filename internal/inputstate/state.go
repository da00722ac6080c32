// Package inputstate owns the raw letter buffer, its segmentation, mode,
// and the undo trace for a mis-selected commit. It does not compute
// candidates itself — that's the merger's job, fed by the dictionary,
// user store, and ranker — but it decides what a keystroke does to the
// buffer and when a commit should invert a prior learn.
package inputstate

import (
	"github.com/aipinyin/engine/internal/syllable"
	"github.com/aipinyin/engine/internal/userdict"
)

// Mode is the engine's top-level input mode.
type Mode int

const (
	Chinese Mode = iota
	English
)

// commitTrace records the most recent full index-form commit (partial
// commits do not learn and do not arm it), so a run of
// backspaces that exactly deletes the committed word's character count
// can invert its learn call.
type commitTrace struct {
	pinyin        string
	word          string
	commitWasFull bool
	runeCount     int
}

// Machine is the input state machine. Not safe for concurrent use from
// more than one goroutine; the design assumes a single owner (the async
// pipeline's synchronous fast path).
type Machine struct {
	Raw           string
	Mode          Mode
	ShiftHeld     bool
	ShiftModified bool
	PageOffset    int

	backspaceCount int
	trace          *commitTrace

	users *userdict.Store
}

// New builds a Machine starting in Chinese mode with an empty buffer.
func New(users *userdict.Store) *Machine {
	return &Machine{users: users}
}

// Syllables returns the current greedy segmentation of Raw.
func (m *Machine) Syllables() []string {
	return syllable.Segment(m.Raw)
}

// Letter appends r to the buffer. Per the adapter's classification rules
// this is only called in Chinese mode.
func (m *Machine) Letter(r rune) {
	m.clearTraceOnNonBackspace()
	m.Raw += string(r)
	m.PageOffset = 0
}

// Backspace drops the last letter when the buffer is non-empty. When the
// buffer is already empty, it instead advances the undo trace: if the
// count of consecutive empty-buffer backspaces since the last full
// index-form commit equals that commit's character count, the corresponding learn is
// inverted. Returns true if this call triggered an unlearn.
func (m *Machine) Backspace() bool {
	if m.Raw != "" {
		r := []rune(m.Raw)
		m.Raw = string(r[:len(r)-1])
		m.PageOffset = 0
		return false
	}

	if m.trace == nil {
		return false
	}
	m.backspaceCount++
	if m.backspaceCount != m.trace.runeCount {
		return false
	}
	if m.users != nil {
		_ = m.users.Unlearn(m.trace.pinyin, m.trace.word)
	}
	m.trace = nil
	m.backspaceCount = 0
	return true
}

// Escape clears the buffer unconditionally (the caller hides the view).
func (m *Machine) Escape() {
	m.clearTraceOnNonBackspace()
	m.Raw = ""
	m.PageOffset = 0
}

// CommitResult describes the effect of a commit on the buffer.
type CommitResult struct {
	Injected  string
	Remaining string
	WasFull   bool
}

// CommitCandidate consumes exactly as many syllables from the front of
// the buffer as word has characters (a "partial commit"), leaving any
// remainder live. If the commit exhausts the buffer it is a full commit;
// only full commits feed the user store, learning (pinyin, word) for the
// consumed portion and arming the undo trace.
func (m *Machine) CommitCandidate(word string) CommitResult {
	m.clearTraceOnNonBackspace()

	syllables := m.Syllables()
	k := len([]rune(word))
	if k > len(syllables) {
		k = len(syllables)
	}
	consumedPinyin := join(syllables[:k])
	remaining := join(syllables[k:])

	full := remaining == ""
	if full && m.users != nil {
		_ = m.users.Learn(consumedPinyin, word)
		m.trace = &commitTrace{pinyin: consumedPinyin, word: word, commitWasFull: true, runeCount: len([]rune(word))}
		m.backspaceCount = 0
	}

	m.Raw = remaining
	m.PageOffset = 0
	return CommitResult{Injected: word, Remaining: remaining, WasFull: full}
}

// CommitRaw commits the entire raw buffer verbatim (the enter key) and
// clears it. This is not an index-form commit: it never touches the user
// store or the undo trace.
func (m *Machine) CommitRaw() string {
	m.clearTraceOnNonBackspace()
	injected := m.Raw
	m.Raw = ""
	m.PageOffset = 0
	return injected
}

// ShiftDown marks the shift key as held and resets the "used as a
// modifier" flag; any other key pressed before ShiftUp will set it.
func (m *Machine) ShiftDown() {
	m.ShiftHeld = true
	m.ShiftModified = false
}

// NoteOtherKey marks the current shift-held interval (if any) as having
// been used as a modifier, so the matching ShiftUp will not toggle mode.
func (m *Machine) NoteOtherKey() {
	if m.ShiftHeld {
		m.ShiftModified = true
	}
}

// ShiftUp releases the shift key. If it was never used as a modifier
// since the matching ShiftDown, the mode toggles; any non-empty buffer is
// committed as raw ASCII when transitioning to English mode. Returns the
// raw text to inject (non-empty only on a transition to English with a
// live buffer) and whether mode toggled.
func (m *Machine) ShiftUp() (injected string, toggled bool) {
	wasModified := m.ShiftModified
	m.ShiftHeld = false
	m.ShiftModified = false
	if wasModified {
		return "", false
	}

	if m.Mode == Chinese {
		m.Mode = English
		if m.Raw != "" {
			injected = m.Raw
			m.Raw = ""
		}
	} else {
		m.Mode = Chinese
	}
	m.trace = nil
	m.backspaceCount = 0
	m.PageOffset = 0
	return injected, true
}

// PageNext advances the page offset by one.
func (m *Machine) PageNext() { m.PageOffset++ }

// PagePrev retreats the page offset by one, not going below zero.
func (m *Machine) PagePrev() {
	if m.PageOffset > 0 {
		m.PageOffset--
	}
}

func (m *Machine) clearTraceOnNonBackspace() {
	m.trace = nil
	m.backspaceCount = 0
}

func join(syllables []string) string {
	out := ""
	for _, s := range syllables {
		out += s
	}
	return out
}
