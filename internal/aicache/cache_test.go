package aicache

import (
	"path/filepath"
	"testing"

	"github.com/aipinyin/engine/internal/dict"
)

func TestOfferRejectsShortWords(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "ai_cache.txt"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c.Offer(nil, "wo", "我", 50)
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", c.Len())
	}
}

func TestOfferRejectsWordAlreadyInDict(t *testing.T) {
	d := dict.New(nil)
	d.MergeText("women,我们,100\n")

	c, err := Open(filepath.Join(t.TempDir(), "ai_cache.txt"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c.Offer(d, "women", "我们", 50)
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", c.Len())
	}
}

func TestOfferAddsNewLongWord(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "ai_cache.txt"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c.Offer(nil, "haokanji", "好看极了", 50)
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	got := c.Lookup("haokanji")
	if len(got) != 1 || got[0].Word != "好看极了" {
		t.Fatalf("Lookup = %+v, want [{好看极了 ...}]", got)
	}
}

func TestOfferPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai_cache.txt")
	c1, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c1.Offer(nil, "haokanji", "好看极了", 50)

	c2, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if c2.Len() != 1 {
		t.Fatalf("Len() after reopen = %d, want 1", c2.Len())
	}
}

func TestEvictsOldestWhenFull(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "ai_cache.txt"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c.entries = MaxEntries
	c.insertLocked("firstpy", "第一个词语", 10)
	c.order = []string{"firstpy"}
	c.entries = MaxEntries

	c.Offer(nil, "secondpy", "第二个词语", 10)
	if got := c.Lookup("firstpy"); len(got) != 0 {
		t.Fatalf("oldest entry should have been evicted, got %+v", got)
	}
	if got := c.Lookup("secondpy"); len(got) != 1 {
		t.Fatalf("new entry should be present, got %+v", got)
	}
}
