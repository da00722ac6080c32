package wordgraph

import (
	"testing"

	"github.com/aipinyin/engine/internal/dict"
)

func buildDict() *dict.Dictionary {
	d := dict.New(nil)
	d.MergeText("ni,你,100\nhao,好,100\nnihao,你好,250\n")
	return d
}

func TestSegmentPrefersMultiSyllableCovering(t *testing.T) {
	d := buildDict()
	sentences := Segment(d, []string{"ni", "hao"}, 5)
	if len(sentences) == 0 {
		t.Fatalf("Segment returned no sentences")
	}
	if sentences[0].Text != "你好" {
		t.Fatalf("top sentence = %q, want %q", sentences[0].Text, "你好")
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	d := buildDict()
	if got := Segment(d, nil, 5); got != nil {
		t.Fatalf("Segment(nil) = %v, want nil", got)
	}
}

func TestSegmentDedupesIdenticalText(t *testing.T) {
	d := buildDict()
	sentences := Segment(d, []string{"ni", "hao"}, 10)
	seen := make(map[string]bool)
	for _, s := range sentences {
		if seen[s.Text] {
			t.Fatalf("duplicate sentence text %q in results", s.Text)
		}
		seen[s.Text] = true
	}
}
