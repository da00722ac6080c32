package inputstate

import (
	"path/filepath"
	"testing"

	"github.com/aipinyin/engine/internal/userdict"
)

func newMachine(t *testing.T) *Machine {
	t.Helper()
	s, err := userdict.Open(filepath.Join(t.TempDir(), "user_dict.txt"), nil)
	if err != nil {
		t.Fatalf("userdict.Open: %v", err)
	}
	return New(s)
}

func TestLetterAppendsAndSegments(t *testing.T) {
	m := newMachine(t)
	m.Letter('n')
	m.Letter('i')
	if m.Raw != "ni" {
		t.Fatalf("Raw = %q, want %q", m.Raw, "ni")
	}
	syllables := m.Syllables()
	if len(syllables) != 1 || syllables[0] != "ni" {
		t.Fatalf("Syllables() = %v, want [ni]", syllables)
	}
}

func TestCommitConsumesPrefix(t *testing.T) {
	m := newMachine(t)
	for _, r := range "nihao" {
		m.Letter(r)
	}
	res := m.CommitCandidate("你")
	if res.Remaining != "hao" {
		t.Fatalf("Remaining = %q, want %q", res.Remaining, "hao")
	}
	if m.Raw != "hao" {
		t.Fatalf("Raw after partial commit = %q, want %q", m.Raw, "hao")
	}
	if res.WasFull {
		t.Fatalf("WasFull = true, want false for partial commit")
	}
}

func TestFullCommitClearsBuffer(t *testing.T) {
	m := newMachine(t)
	for _, r := range "ni" {
		m.Letter(r)
	}
	res := m.CommitCandidate("你")
	if !res.WasFull || m.Raw != "" {
		t.Fatalf("after full commit: WasFull=%v Raw=%q, want true \"\"", res.WasFull, m.Raw)
	}
}

func TestUndoInvertsLearnAfterFullCommit(t *testing.T) {
	m := newMachine(t)
	for _, r := range "shi" {
		m.Letter(r)
	}
	m.CommitCandidate("是")
	if got := m.users.GetWeight("shi", "是"); got != 1 {
		t.Fatalf("GetWeight after commit = %d, want 1", got)
	}

	triggered := m.Backspace()
	if !triggered {
		t.Fatalf("Backspace() = false, want true (single-char word undo fires on first empty-buffer backspace)")
	}
	if got := m.users.GetWeight("shi", "是"); got != 0 {
		t.Fatalf("GetWeight after undo = %d, want 0", got)
	}
}

func TestPartialCommitDoesNotLearn(t *testing.T) {
	m := newMachine(t)
	for _, r := range "nihao" {
		m.Letter(r)
	}
	m.CommitCandidate("你")
	if got := m.users.GetWeight("ni", "你"); got != 0 {
		t.Fatalf("GetWeight after partial commit = %d, want 0 (only full commits learn)", got)
	}
}

func TestShiftTapTogglesMode(t *testing.T) {
	m := newMachine(t)
	m.ShiftDown()
	_, toggled := m.ShiftUp()
	if !toggled || m.Mode != English {
		t.Fatalf("Mode = %v toggled=%v, want English true", m.Mode, toggled)
	}
}

func TestShiftAsModifierDoesNotToggle(t *testing.T) {
	m := newMachine(t)
	m.ShiftDown()
	m.NoteOtherKey()
	_, toggled := m.ShiftUp()
	if toggled || m.Mode != Chinese {
		t.Fatalf("Mode = %v toggled=%v, want Chinese false", m.Mode, toggled)
	}
}

func TestModeToggleCommitsLiveBufferAsRaw(t *testing.T) {
	m := newMachine(t)
	m.Letter('n')
	m.ShiftDown()
	injected, _ := m.ShiftUp()
	if injected != "n" {
		t.Fatalf("injected = %q, want %q", injected, "n")
	}
	if m.Raw != "" {
		t.Fatalf("Raw after mode toggle = %q, want empty", m.Raw)
	}
}
