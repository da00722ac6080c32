// Package view defines the candidate-view contract spec.md §6 describes
// as an external collaborator: something that can display
// (raw, candidates, page) tuples near the caret, be shown at a screen
// coordinate, and be hidden, tolerating being updated twice per
// keystroke (the sync and async phases of spec.md §4.8).
package view

import "github.com/aipinyin/engine/internal/types"

// View is the interface every concrete candidate-window renderer
// implements. The core only ever calls these three methods; it never
// reaches into rendering details.
type View interface {
	// Update pushes a new (raw, candidates, page) tuple. page.Total == 0
	// means no page counter should be shown.
	Update(raw string, candidates []types.Candidate, page types.Page)
	// ShowAt positions the view near screen coordinates (x, y), typically
	// just below the caret.
	ShowAt(x, y int)
	// Hide removes the view from the screen.
	Hide()
}

// Null is a View that discards every call; useful as a default when no
// renderer is wired in (headless operation, tests).
type Null struct{}

func (Null) Update(string, []types.Candidate, types.Page) {}
func (Null) ShowAt(int, int)                               {}
func (Null) Hide()                                          {}
