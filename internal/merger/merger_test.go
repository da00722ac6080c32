package merger

import (
	"testing"

	"github.com/aipinyin/engine/internal/types"
)

func cand(word string, weight uint32) types.Candidate {
	return types.Candidate{Word: word, Weight: weight, Pinyin: "ni"}
}

func TestMergePriorityOrder(t *testing.T) {
	userLearned := []types.Candidate{cand("你", 1)}
	syncAI := []types.Candidate{cand("尼", 50)}
	dict := []types.Candidate{cand("拟", 100), cand("你", 100)}

	got := Merge(userLearned, syncAI, nil, dict)
	want := []string{"你", "尼", "拟"}
	if len(got) != len(want) {
		t.Fatalf("Merge() = %v, want words %v", got, want)
	}
	for i, w := range want {
		if got[i].Word != w {
			t.Fatalf("Merge()[%d].Word = %q, want %q", i, got[i].Word, w)
		}
	}
}

func TestMergeStampsSourceByBucket(t *testing.T) {
	userLearned := []types.Candidate{cand("你", 1)}
	asyncAI := []types.Candidate{cand("尼", 50)}
	dict := []types.Candidate{cand("拟", 100)}

	got := Merge(userLearned, nil, asyncAI, dict)
	want := map[string]types.Source{
		"你": types.SourceUserLearned,
		"尼": types.SourceAI,
		"拟": types.SourceDict,
	}
	for _, c := range got {
		if c.Source != want[c.Word] {
			t.Fatalf("Merge() %q.Source = %v, want %v", c.Word, c.Source, want[c.Word])
		}
	}
}

func TestMergePreservesPresetSource(t *testing.T) {
	dictAfter := []types.Candidate{{Word: "我们", Weight: 100, Pinyin: "wm", Source: types.SourceAbbrevGraph}}
	got := Merge(nil, nil, nil, dictAfter)
	if len(got) != 1 || got[0].Source != types.SourceAbbrevGraph {
		t.Fatalf("Merge() = %+v, want Source preserved as SourceAbbrevGraph", got)
	}
}

func TestMergeAsyncAIPreferredOverSync(t *testing.T) {
	syncAI := []types.Candidate{cand("同步", 10)}
	asyncAI := []types.Candidate{cand("异步", 10)}
	got := Merge(nil, syncAI, asyncAI, nil)
	if len(got) != 1 || got[0].Word != "异步" {
		t.Fatalf("Merge() = %v, want only 异步", got)
	}
}

func TestPaginateSinglePageHasNoTotal(t *testing.T) {
	all := []types.Candidate{cand("a", 1), cand("b", 1)}
	page, info := Paginate(all, 1, 9)
	if len(page) != 2 {
		t.Fatalf("len(page) = %d, want 2", len(page))
	}
	if info.Total != 0 {
		t.Fatalf("info.Total = %d, want 0 for a single page", info.Total)
	}
}

func TestPaginateClampsToRange(t *testing.T) {
	all := make([]types.Candidate, 20)
	for i := range all {
		all[i] = cand(string(rune('a'+i)), 1)
	}
	_, info := Paginate(all, 99, 9)
	if info.Current != 3 {
		t.Fatalf("info.Current = %d, want 3 (clamped to last page)", info.Current)
	}
	_, info = Paginate(all, -1, 9)
	if info.Current != 1 {
		t.Fatalf("info.Current = %d, want 1 (clamped to first page)", info.Current)
	}
}

func TestPaginateEmptyInput(t *testing.T) {
	page, info := Paginate(nil, 1, 9)
	if page != nil {
		t.Fatalf("Paginate(nil) page = %v, want nil", page)
	}
	if info.Total != 0 {
		t.Fatalf("info.Total = %d, want 0", info.Total)
	}
}
