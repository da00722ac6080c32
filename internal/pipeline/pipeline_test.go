package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/aipinyin/engine/internal/types"
)

func TestDispatchBumpsGeneration(t *testing.T) {
	p := New(nil)
	defer p.Close()

	g1 := p.Dispatch("n", "", func(ctx context.Context) []types.Candidate { return nil })
	g2 := p.Dispatch("ni", "", func(ctx context.Context) []types.Candidate { return nil })
	if g2 <= g1 {
		t.Fatalf("generation did not increase monotonically: g1=%d g2=%d", g1, g2)
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	p := New(nil)
	defer p.Close()

	release := make(chan struct{})
	gen1 := p.Dispatch("n", "", func(ctx context.Context) []types.Candidate {
		<-release
		return []types.Candidate{{Word: "你", Weight: 1}}
	})

	gen2 := p.Dispatch("ni", "", func(ctx context.Context) []types.Candidate {
		return []types.Candidate{{Word: "尼", Weight: 1}}
	})
	if gen2 <= gen1 {
		t.Fatalf("expected gen2 > gen1, got gen1=%d gen2=%d", gen1, gen2)
	}

	close(release)

	seenCurrent := false
	timeout := time.After(2 * time.Second)
	for !seenCurrent {
		select {
		case r := <-p.Results():
			if p.Apply(r) {
				if r.Generation != gen2 {
					t.Fatalf("applied a stale result: generation=%d, want %d", r.Generation, gen2)
				}
				seenCurrent = true
			}
		case <-timeout:
			t.Fatalf("timed out waiting for current-generation result")
		}
	}
}
