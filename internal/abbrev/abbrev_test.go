package abbrev

import (
	"context"
	"testing"

	"github.com/aipinyin/engine/internal/dict"
	"github.com/aipinyin/engine/internal/types"
)

func TestParseInitialsRecognizesDigraphs(t *testing.T) {
	got := ParseInitials("zhsh")
	want := []string{"zh", "sh"}
	if len(got) != len(want) {
		t.Fatalf("ParseInitials(%q) = %v, want %v", "zhsh", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ParseInitials(%q)[%d] = %q, want %q", "zhsh", i, got[i], want[i])
		}
	}
}

func TestParseInitialsTruncatesToMax(t *testing.T) {
	got := ParseInitials("abcdefghij")
	if len(got) != maxInitials {
		t.Fatalf("len(ParseInitials) = %d, want %d", len(got), maxInitials)
	}
}

func TestWordGraphRoundTrip(t *testing.T) {
	d := dict.New(nil)
	d.MergeText("women,我们,500\n")

	tokens := ParseInitials("wm")
	sentences := WordGraph(d, tokens, 5)
	if len(sentences) == 0 {
		t.Fatalf("WordGraph returned no sentences for %v", tokens)
	}
	found := false
	for _, s := range sentences {
		if s.Text == "我们" {
			found = true
		}
	}
	if !found {
		t.Fatalf("WordGraph(%v) = %v, want to contain 我们", tokens, sentences)
	}
}

func TestSolveMergesWordGraphAndDict(t *testing.T) {
	d := dict.New(nil)
	d.MergeText("women,我们,500\n")

	got := Solve(context.Background(), d, nil, nil, "wm", 9)
	if len(got) == 0 {
		t.Fatalf("Solve returned nothing")
	}
	if got[0].Word != "我们" {
		t.Fatalf("Solve()[0].Word = %q, want %q", got[0].Word, "我们")
	}
	if got[0].Source != types.SourceAbbrevGraph {
		t.Fatalf("Solve()[0].Source = %v, want %v", got[0].Source, types.SourceAbbrevGraph)
	}
}

func TestSolveRequiresAtLeastTwoInitials(t *testing.T) {
	d := dict.New(nil)
	if got := Solve(context.Background(), d, nil, nil, "w", 9); got != nil {
		t.Fatalf("Solve with single initial = %v, want nil", got)
	}
}
