package ranker

import (
	"context"
	"testing"

	"github.com/aipinyin/engine/internal/types"
	"github.com/aipinyin/engine/internal/vocab"
)

// fakeScorer is a deterministic stand-in for a real model session: it
// scores every id by its own value, so higher ids always win. This is
// enough to exercise masking, beam search and the failure policy without
// a real ONNX/HTTP backend.
type fakeScorer struct {
	fail bool
	size int
}

func (f *fakeScorer) ScoreNext(ctx context.Context, ids []int32) ([]float32, error) {
	if f.fail {
		return nil, errFake
	}
	logits := make([]float32, f.size)
	for i := range logits {
		logits[i] = float32(i)
	}
	return logits, nil
}

var errFake = fakeErr("fake scorer failure")

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

func testVocab() *vocab.Vocab {
	v := &vocab.Vocab{
		CharToID:        map[string]int32{"你": 1, "尼": 2, "好": 3},
		IDToChar:        map[int32]string{1: "你", 2: "尼", 3: "好"},
		PinyinIDs:       map[string][]int32{"ni": {1, 2}, "hao": {3}},
		Pinyin:          map[string]int32{},
		MaxContextChars: 50,
	}
	return v
}

func TestPredictUnavailableReturnsEmpty(t *testing.T) {
	r := New(nil, testVocab())
	got := r.Predict(context.Background(), "ni", "", 9)
	if len(got) != 0 {
		t.Fatalf("Predict with nil scorer = %v, want empty", got)
	}
}

func TestPredictSingleSyllablePicksHigherID(t *testing.T) {
	r := New(&fakeScorer{size: 10}, testVocab())
	got := r.Predict(context.Background(), "ni", "", 9)
	if len(got) == 0 {
		t.Fatalf("Predict returned empty")
	}
	if got[0].Word != "尼" {
		t.Fatalf("Predict()[0].Word = %q, want %q (id 2 > id 1)", got[0].Word, "尼")
	}
}

func TestPredictCallFailureReturnsEmpty(t *testing.T) {
	r := New(&fakeScorer{size: 10, fail: true}, testVocab())
	got := r.Predict(context.Background(), "ni", "", 9)
	if len(got) != 0 {
		t.Fatalf("Predict on failing scorer = %v, want empty", got)
	}
}

func TestRerankUnavailableReturnsInputUnmodified(t *testing.T) {
	r := New(nil, testVocab())
	in := []types.Candidate{{Word: "你", Weight: 100, Pinyin: "ni"}, {Word: "尼", Weight: 90, Pinyin: "ni"}}
	got := r.Rerank(context.Background(), "ni", in, "")
	if len(got) != 2 || got[0].Word != "你" || got[1].Word != "尼" {
		t.Fatalf("Rerank with nil scorer = %v, want input unchanged", got)
	}
}

func TestRerankCallFailureReturnsInputUnmodified(t *testing.T) {
	r := New(&fakeScorer{size: 10, fail: true}, testVocab())
	in := []types.Candidate{{Word: "你", Weight: 100, Pinyin: "ni"}}
	got := r.Rerank(context.Background(), "ni", in, "")
	if len(got) != 1 || got[0].Word != "你" {
		t.Fatalf("Rerank on failing scorer = %v, want input unchanged", got)
	}
}

func TestDeterministicGivenFixedScorer(t *testing.T) {
	r := New(&fakeScorer{size: 10}, testVocab())
	a := r.Predict(context.Background(), "ni", "", 9)
	b := r.Predict(context.Background(), "ni", "", 9)
	if len(a) != len(b) {
		t.Fatalf("two Predict calls with fixed scorer disagree in length: %v vs %v", a, b)
	}
	for i := range a {
		if a[i].Word != b[i].Word {
			t.Fatalf("two Predict calls with fixed scorer disagree at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRerankWeightsTable(t *testing.T) {
	cases := []struct {
		contextLen       int
		wantAI, wantDict float64
	}{
		{0, 0.50, 0.50},
		{1, 0.60, 0.40},
		{2, 0.60, 0.40},
		{3, 0.70, 0.30},
		{4, 0.70, 0.30},
		{5, 0.80, 0.20},
		{20, 0.80, 0.20},
	}
	for _, tc := range cases {
		ai, dict := rerankWeights(tc.contextLen)
		if ai != tc.wantAI || dict != tc.wantDict {
			t.Errorf("rerankWeights(%d) = (%v, %v), want (%v, %v)", tc.contextLen, ai, dict, tc.wantAI, tc.wantDict)
		}
	}
}
