package matching

import (
	"testing"

	"github.com/bnema/wayoutd/internal/profile"
	"github.com/bnema/wayoutd/internal/search"
	"github.com/bnema/wayoutd/internal/store"
)

func mustSearch(t *testing.T, s string) search.MultiSearch {
	t.Helper()
	ms, err := search.ParseMulti(s)
	if err != nil {
		t.Fatalf("search.ParseMulti(%q): %v", s, err)
	}
	return ms
}

func headSnapshot(id store.ID, name string, modes ...store.Mode) store.Snapshot {
	var modeIDs []store.ID
	for _, m := range modes {
		modeIDs = append(modeIDs, m.ID)
	}
	return store.Snapshot{
		Head: store.Head{ID: id, Name: name, Modes: modeIDs, Scale: 1},
		Modes: modes,
	}
}

func TestLaptopOnlySingleVariant(t *testing.T) {
	mode := store.Mode{ID: 1, Width: 1920, Height: 1080, Refresh: 60000, Preferred: true}
	head := headSnapshot(1, "eDP-1", mode)

	tgt := profile.TargetMode{Kind: profile.ModeWiHeRe, Width: 1920, Height: 1080, Refresh: 60000}
	p := profile.Profile{
		Name: "laptop",
		Outputs: []profile.Output{
			{Enable: true, Search: mustSearch(t, "%eDP-1"), Mode: &tgt},
		},
	}

	report := Run(p, []store.Snapshot{head})
	if len(report.Variants) != 1 {
		t.Fatalf("expected exactly 1 variant, got %d (unrelated=%d invalid=%d)",
			len(report.Variants), len(report.UnrelatedPairings), len(report.InvalidSubsets))
	}
	v := report.Variants[0]
	if len(v.Pairings) != 1 || v.Pairings[0].Mode == nil || v.Pairings[0].Mode.ID != 1 {
		t.Fatalf("unexpected pairing result: %+v", v.Pairings)
	}
}

func TestRefreshBoundaryMatchesAt500NotAt501(t *testing.T) {
	atBoundary := store.Mode{ID: 1, Width: 1920, Height: 1080, Refresh: 59500}
	overBoundary := store.Mode{ID: 2, Width: 1920, Height: 1080, Refresh: 59499}

	headIn := headSnapshot(1, "eDP-1", atBoundary)
	headOut := headSnapshot(2, "eDP-1", overBoundary)

	tgt := profile.TargetMode{Kind: profile.ModeWiHeRe, Width: 1920, Height: 1080, Refresh: 60000}

	cIn := candidateModes(headIn, tgt)
	if len(cIn) != 1 {
		t.Errorf("expected exact +500mHz boundary to match, got %d candidates", len(cIn))
	}
	cOut := candidateModes(headOut, tgt)
	if len(cOut) != 0 {
		t.Errorf("expected 501mHz beyond boundary to not match, got %d candidates", len(cOut))
	}
}

func TestNoValidVariantWhenOutputCountMismatch(t *testing.T) {
	head := headSnapshot(1, "eDP-1")
	p := profile.Profile{
		Name: "two-output",
		Outputs: []profile.Output{
			{Enable: true, Search: mustSearch(t, "%eDP-1")},
			{Enable: true, Search: mustSearch(t, "%HDMI-A-1")},
		},
	}
	report := Run(p, []store.Snapshot{head})
	if len(report.Variants) != 0 {
		t.Fatalf("expected no variants on head/output count mismatch, got %d", len(report.Variants))
	}
}

// TestMultiSubsetVariantIndicesAreUnique drives two interchangeable
// heads through two substring outputs, yielding two valid subsets; the
// tie-break key must stay unique across subsets, not restart at zero
// for each one.
func TestMultiSubsetVariantIndicesAreUnique(t *testing.T) {
	heads := []store.Snapshot{
		headSnapshot(1, "DP-1"),
		headSnapshot(2, "DP-2"),
	}
	p := profile.Profile{
		Name: "dual",
		Outputs: []profile.Output{
			{Enable: true, Search: mustSearch(t, "%DP")},
			{Enable: true, Search: mustSearch(t, "%DP")},
		},
	}

	report := Run(p, heads)
	if len(report.Variants) != 2 {
		t.Fatalf("expected 2 variants (one per valid subset), got %d", len(report.Variants))
	}
	seen := map[int]bool{}
	for _, v := range report.Variants {
		if seen[v.VariantIndex] {
			t.Fatalf("duplicate variant index %d across subsets", v.VariantIndex)
		}
		seen[v.VariantIndex] = true
	}
}

func TestSortVariantsOrdersBySpecificity(t *testing.T) {
	fulltext := search.MultiSearch{Searches: []search.SingleSearch{{
		Pattern: search.Pattern{Kind: search.KindFulltext, Literal: "x"},
		Method:  search.AtLeastOne,
	}}}
	substring := search.MultiSearch{Searches: []search.SingleSearch{{
		Pattern: search.Pattern{Kind: search.KindSubstring, Literal: "x"},
		Method:  search.AtLeastOne,
	}}}

	highSpec := ValidVariant{
		Profile:  profile.Profile{Index: 0},
		Pairings: []Pairing{{Result: fulltext.Run(search.Query{Name: "x"})}},
	}
	lowSpec := ValidVariant{
		Profile:  profile.Profile{Index: 1},
		Pairings: []Pairing{{Result: substring.Run(search.Query{Name: "xyz"})}},
	}
	variants := []ValidVariant{lowSpec, highSpec}
	SortVariants(variants)
	if Specificity(variants[0]) < Specificity(variants[1]) {
		t.Fatal("expected descending specificity order")
	}
}
