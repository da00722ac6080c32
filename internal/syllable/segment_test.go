package syllable

import "testing"

func TestSegmentSoundness(t *testing.T) {
	cases := []string{"", "nihao", "xian", "fangan", "wm", "shi", "women", "zzz", "q"}
	for _, raw := range cases {
		got := Segment(raw)
		if Join(got) != raw {
			t.Errorf("Segment(%q) = %v, concatenation %q != input", raw, got, Join(got))
		}
	}
}

func TestSegmentGreedyChoosesLongest(t *testing.T) {
	got := Segment("xian")
	if len(got) != 1 || got[0] != "xian" {
		t.Fatalf("Segment(xian) = %v, want [xian]", got)
	}
}

func TestSegmentFallbackOnInvalidFragment(t *testing.T) {
	got := Segment("zzz")
	if Join(got) != "zzz" {
		t.Fatalf("Segment(zzz) concatenation mismatch: %v", got)
	}
	for _, s := range got {
		if len(s) != 1 {
			t.Fatalf("expected single-letter fallback tokens, got %v", got)
		}
	}
}

func TestSegmentEmpty(t *testing.T) {
	if got := Segment(""); got != nil {
		t.Fatalf("Segment(\"\") = %v, want nil", got)
	}
}

func TestSegmentNonASCIIUnsplit(t *testing.T) {
	got := Segment("你好")
	if len(got) != 1 || got[0] != "你好" {
		t.Fatalf("Segment(non-ascii) = %v, want single unsplit token", got)
	}
}

func TestSegmentIdempotentRoundTrip(t *testing.T) {
	for _, raw := range []string{"nihao", "xian", "fangan"} {
		first := Segment(raw)
		second := Segment(Join(first))
		if len(first) != len(second) {
			t.Fatalf("segment(join(segment(%q))) changed shape: %v vs %v", raw, first, second)
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("segment(join(segment(%q))) mismatch at %d: %v vs %v", raw, i, first, second)
			}
		}
	}
}

func TestAlternativesDistinctFromGreedy(t *testing.T) {
	alts := Alternatives("xian")
	if len(alts) == 0 {
		t.Fatal("expected at least one alternative for xian")
	}
	for _, alt := range alts {
		if Join(alt) != "xian" {
			t.Fatalf("alternative %v does not reconstruct input", alt)
		}
		if len(alt) == 1 && alt[0] == "xian" {
			t.Fatalf("alternative equals the greedy segmentation: %v", alt)
		}
	}
	foundSplit := false
	for _, alt := range alts {
		if len(alt) == 2 && alt[0] == "xi" && alt[1] == "an" {
			foundSplit = true
		}
	}
	if !foundSplit {
		t.Fatalf("expected [xi an] among alternatives, got %v", alts)
	}
}

func TestAlternativesFanganSplitsToFanGan(t *testing.T) {
	alts := Alternatives("fangan")
	foundSplit := false
	for _, alt := range alts {
		if len(alt) == 2 && alt[0] == "fan" && alt[1] == "gan" {
			foundSplit = true
		}
	}
	if !foundSplit {
		t.Fatalf("expected [fan gan] among alternatives for fangan, got %v", alts)
	}
}

func TestAlternativesBounded(t *testing.T) {
	alts := Alternatives("xian")
	if len(alts) > maxAlternatives {
		t.Fatalf("Alternatives returned %d > %d", len(alts), maxAlternatives)
	}
}

func TestAlternativesEmpty(t *testing.T) {
	if got := Alternatives(""); got != nil {
		t.Fatalf("Alternatives(\"\") = %v, want nil", got)
	}
}
