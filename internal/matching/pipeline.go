package matching

import (
	"sort"

	"github.com/bnema/wayoutd/internal/profile"
	"github.com/bnema/wayoutd/internal/store"
)

// Report carries a profile's sorted valid variants plus diagnostic
// residue from every stage of the pipeline.
type Report struct {
	Profile  profile.Profile
	Variants []ValidVariant

	UnrelatedPairings []unrelatedPairing
	InvalidSubsets    []invalidSubset
}

// Run executes the full three-stage pipeline for one profile against one
// head snapshot and returns its Report. A stage-1 failure (wrong output
// count, or pairing count outside [n, n^2]) yields an empty-variant
// Report carrying whatever unrelated pairings stage 1 collected; the
// stage-1 error itself is not recorded in the Report.
func Run(p profile.Profile, heads []store.Snapshot) Report {
	n := len(heads)

	intermediates, unrelated, err := stage1(p.Outputs, heads)
	if err != nil {
		return Report{Profile: p, UnrelatedPairings: unrelated}
	}

	valid, invalid := stage2(intermediates, n)
	variants := stage3(p, valid, n)

	return Report{
		Profile:           p,
		Variants:          variants,
		UnrelatedPairings: unrelated,
		InvalidSubsets:    invalid,
	}
}

// Specificity is the variant-level score used for ranking: the AVERAGE
// (not sum) of its pairings' specificities, so profiles with more
// outputs aren't automatically favored purely by pairing count.
func Specificity(v ValidVariant) uint64 {
	if len(v.Pairings) == 0 {
		return 0
	}
	var total uint64
	for _, p := range v.Pairings {
		total += p.Specificity()
	}
	return total / uint64(len(v.Pairings))
}

// ModeDeviation sums the absolute millihertz deviation across a
// variant's pairings.
func ModeDeviation(v ValidVariant) uint32 {
	var total uint32
	for _, p := range v.Pairings {
		d := p.ModeDeviation()
		if d < 0 {
			d = -d
		}
		total += uint32(d)
	}
	return total
}

// SortVariants orders variants by (specificity desc, mode_deviation asc,
// profile-index asc, variant-index asc), the global ranking stage
// performed once by the Profile Manager after collecting every
// profile's Report.
func SortVariants(variants []ValidVariant) {
	sort.SliceStable(variants, func(i, j int) bool {
		a, b := variants[i], variants[j]
		sa, sb := Specificity(a), Specificity(b)
		if sa != sb {
			return sa > sb
		}
		da, db := ModeDeviation(a), ModeDeviation(b)
		if da != db {
			return da < db
		}
		if a.Profile.Index != b.Profile.Index {
			return a.Profile.Index < b.Profile.Index
		}
		return a.VariantIndex < b.VariantIndex
	})
}
