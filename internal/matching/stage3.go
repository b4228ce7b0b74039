package matching

import (
	"strconv"

	"github.com/bnema/wayoutd/internal/profile"
	"github.com/bnema/wayoutd/internal/store"
)

// ValidVariant is a fully-resolved assignment of a profile's outputs to
// heads and (where applicable) modes, numbered for tie-break stability.
type ValidVariant struct {
	Profile      profile.Profile
	Pairings     []Pairing
	SubsetIndex  int
	VariantIndex int
}

// IdxStr renders the stable "profile-index,variant-index" tie-break key
// used in logs and diagnostics.
func (v ValidVariant) IdxStr() string {
	return strconv.Itoa(v.Profile.Index) + "," + strconv.Itoa(v.VariantIndex)
}

// stage3 expands every valid subset into one or more concrete variants:
// each intermediate-with-multiple-modes pairing expands to one concrete
// pairing per matched mode, and a variant is the cartesian product of
// those expansions across the subset's pairings. VariantIndex is the
// variant's position in generation order across all of a profile's
// subsets, so the tie-break key stays unique across subsets, not just
// within one; n (the head count) does not enter the numbering.
func stage3(p profile.Profile, subsets []validSubset, n int) []ValidVariant {
	var variants []ValidVariant

	for subsetIdx, subset := range subsets {
		combos := expandCombinations(subset.pairings)
		for _, combo := range combos {
			variants = append(variants, ValidVariant{
				Profile:      p,
				Pairings:     combo,
				SubsetIndex:  subsetIdx,
				VariantIndex: len(variants),
			})
		}
	}

	return variants
}

// expandCombinations computes the multi-cartesian product across a
// subset's pairings' mode expansions.
func expandCombinations(pairings []intermediatePairing) [][]Pairing {
	combos := [][]Pairing{{}}

	for _, ip := range pairings {
		var modeOptions []*store.Mode
		if ip.withoutMode() {
			modeOptions = []*store.Mode{nil}
		} else {
			for i := range ip.candidateModes {
				m := ip.candidateModes[i]
				modeOptions = append(modeOptions, &m)
			}
		}

		var next [][]Pairing
		for _, prefix := range combos {
			for _, mode := range modeOptions {
				pairing := Pairing{
					Output: ip.output,
					Head:   ip.head,
					Mode:   mode,
					Result: ip.result,
				}
				extended := append(append([]Pairing(nil), prefix...), pairing)
				next = append(next, extended)
			}
		}
		combos = next
	}

	return combos
}
