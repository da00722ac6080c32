package plugin

import (
	"path/filepath"
	"testing"

	"github.com/aipinyin/engine/internal/types"
)

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	r, err := Open(filepath.Join(t.TempDir(), "plugins.txt"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if r.IsAuthorized("foo") {
		t.Fatal("expected unauthorized by default")
	}
}

func TestAuthorizeRevokeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins.txt")
	r, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := r.Authorize("pinyin-fixer"); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !r.IsAuthorized("pinyin-fixer") {
		t.Fatal("expected authorized after Authorize")
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !reopened.IsAuthorized("pinyin-fixer") {
		t.Fatal("expected authorization to persist across reopen")
	}

	if err := r.Revoke("pinyin-fixer"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if r.IsAuthorized("pinyin-fixer") {
		t.Fatal("expected unauthorized after Revoke")
	}
}

func TestRegisterRequiresAuthorization(t *testing.T) {
	r, _ := Open(filepath.Join(t.TempDir(), "plugins.txt"))
	ok := r.Register("unauthorized", func(raw string, c []types.Candidate) []types.Candidate { return c })
	if ok {
		t.Fatal("expected Register to fail for unauthorized plugin")
	}
}

func TestRegisterEnforcesMaxActive(t *testing.T) {
	r, _ := Open(filepath.Join(t.TempDir(), "plugins.txt"))
	noop := func(raw string, c []types.Candidate) []types.Candidate { return c }
	for i := 0; i < MaxActive; i++ {
		name := string(rune('a' + i))
		_ = r.Authorize(name)
		if !r.Register(name, noop) {
			t.Fatalf("expected plugin %d to register", i)
		}
	}
	_ = r.Authorize("overflow")
	if r.Register("overflow", noop) {
		t.Fatal("expected registration beyond MaxActive to fail")
	}
}

func TestApplyRunsHooksInOrder(t *testing.T) {
	r, _ := Open(filepath.Join(t.TempDir(), "plugins.txt"))
	_ = r.Authorize("tagger")
	r.Register("tagger", func(raw string, c []types.Candidate) []types.Candidate {
		return append(c, types.Candidate{Word: "plugin-added", Weight: 1, Pinyin: raw})
	})

	out := r.Apply("ni", []types.Candidate{{Word: "你", Weight: 100, Pinyin: "ni"}})
	if len(out) != 2 || out[1].Word != "plugin-added" {
		t.Fatalf("expected plugin hook to append a candidate, got %+v", out)
	}
}

func TestRevokeRemovesActiveHook(t *testing.T) {
	r, _ := Open(filepath.Join(t.TempDir(), "plugins.txt"))
	_ = r.Authorize("tagger")
	r.Register("tagger", func(raw string, c []types.Candidate) []types.Candidate {
		return append(c, types.Candidate{Word: "x", Weight: 1, Pinyin: raw})
	})
	_ = r.Revoke("tagger")

	out := r.Apply("ni", []types.Candidate{{Word: "你", Weight: 100, Pinyin: "ni"}})
	if len(out) != 1 {
		t.Fatalf("expected hook removed after revoke, got %+v", out)
	}
}
