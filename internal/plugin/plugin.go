// Package plugin is the authorization bookkeeping and candidate-hook
// registry for user scripts, per spec.md §6 ("plugin-authorization
// file") and §1 ("plugin script host" is an external collaborator). The
// JS sandbox itself (rquickjs, in the original source this was distilled
// from) is out of scope; this package only tracks which plugin names are
// authorized to run and exposes the on_candidates(raw, candidates) hook
// contract as a registered Go func, so the merger's "dictionary after
// plugins" input (spec.md §4.7) has somewhere concrete to come from.
package plugin

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aipinyin/engine/internal/types"
)

// MaxActive bounds how many plugins may be registered with an active
// candidate hook at once, matching the original source's MAX_ACTIVE.
const MaxActive = 5

// CandidateHook is the on_candidates(raw, candidates) contract: given the
// current raw buffer and the candidate list so far, a plugin returns a
// (possibly reordered, filtered, or augmented) replacement list.
type CandidateHook func(raw string, candidates []types.Candidate) []types.Candidate

// Registry tracks plugin authorization state and active candidate hooks.
// Authorization is persisted to a flat one-name-per-line file with
// #-comments allowed; hook registration is in-memory only and must be
// redone by the host each run.
type Registry struct {
	mu           sync.RWMutex
	path         string
	authorized   map[string]bool
	hooks        map[string]CandidateHook
	activeOrder  []string // registration order, for MaxActive enforcement
}

// Open loads the authorization file at path, if present, and returns a
// ready Registry. A missing file starts with nothing authorized.
func Open(path string) (*Registry, error) {
	r := &Registry{
		path:       path,
		authorized: make(map[string]bool),
		hooks:      make(map[string]CandidateHook),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("open plugin authorization file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r.authorized[line] = true
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan plugin authorization file: %w", err)
	}
	return r, nil
}

// IsAuthorized reports whether name has been granted authorization.
func (r *Registry) IsAuthorized(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.authorized[name]
}

// Authorize grants name authorization and persists the updated list.
func (r *Registry) Authorize(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authorized[name] = true
	return r.flushLocked()
}

// Revoke removes name's authorization (and any active hook) and persists
// the updated list.
func (r *Registry) Revoke(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.authorized, name)
	delete(r.hooks, name)
	r.removeFromActiveOrderLocked(name)
	return r.flushLocked()
}

// Register installs name's candidate hook, provided name is authorized
// and fewer than MaxActive hooks are already registered. Returns false
// (and installs nothing) otherwise.
func (r *Registry) Register(name string, hook CandidateHook) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.authorized[name] {
		return false
	}
	if _, exists := r.hooks[name]; !exists && len(r.activeOrder) >= MaxActive {
		return false
	}
	if _, exists := r.hooks[name]; !exists {
		r.activeOrder = append(r.activeOrder, name)
	}
	r.hooks[name] = hook
	return true
}

// Unregister removes name's active hook without revoking authorization.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.hooks, name)
	r.removeFromActiveOrderLocked(name)
}

// Apply runs every registered hook, in registration order, over
// candidates, threading each hook's output into the next.
func (r *Registry) Apply(raw string, candidates []types.Candidate) []types.Candidate {
	r.mu.RLock()
	order := append([]string(nil), r.activeOrder...)
	hooks := make(map[string]CandidateHook, len(r.hooks))
	for k, v := range r.hooks {
		hooks[k] = v
	}
	r.mu.RUnlock()

	out := candidates
	for _, name := range order {
		if hook, ok := hooks[name]; ok {
			out = hook(raw, out)
		}
	}
	return out
}

// Authorized returns every authorized plugin name, sorted.
func (r *Registry) Authorized() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.authorized))
	for name := range r.authorized {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) removeFromActiveOrderLocked(name string) {
	for i, n := range r.activeOrder {
		if n == name {
			r.activeOrder = append(r.activeOrder[:i], r.activeOrder[i+1:]...)
			return
		}
	}
}

const header = "# one plugin name per line; # starts a comment\n"

func (r *Registry) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create plugin authorization dir: %w", err)
	}
	tmp := r.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("write plugin authorization file: %w", err)
	}
	w := bufio.NewWriter(f)
	if _, err := w.WriteString(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("write plugin authorization file: %w", err)
	}
	names := make([]string, 0, len(r.authorized))
	for name := range r.authorized {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			_ = f.Close()
			return fmt.Errorf("write plugin authorization file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write plugin authorization file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write plugin authorization file: %w", err)
	}
	return os.Rename(tmp, r.path)
}
