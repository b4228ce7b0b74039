// Package matching implements the three-stage pipeline that turns a
// profile's declarative outputs plus the current head snapshot into a
// ranked list of fully-resolved variants.
package matching

import (
	"github.com/bnema/wayoutd/internal/profile"
	"github.com/bnema/wayoutd/internal/search"
	"github.com/bnema/wayoutd/internal/store"
)

// Pairing is a resolved (Output, Head, optional Mode) triple plus the
// search result that produced the match.
type Pairing struct {
	Output profile.Output
	Head   store.Snapshot
	Mode   *store.Mode // nil if the output left the mode unspecified/custom
	Result search.MultiResult
}

// ModeDeviation is the absolute millihertz difference between the
// requested refresh and the selected mode's refresh, or 0 when the
// output carries no refresh constraint.
func (p Pairing) ModeDeviation() int32 {
	if p.Mode == nil || p.Output.Mode == nil {
		return 0
	}
	switch p.Output.Mode.Kind {
	case profile.ModeWiHeRe, profile.ModeWiHeReCustom:
		d := p.Output.Mode.Refresh - p.Mode.Refresh
		if d < 0 {
			d = -d
		}
		return d
	default:
		return 0
	}
}

// Specificity is the search result's field-weighted specificity.
func (p Pairing) Specificity() uint64 { return p.Result.Specificity() }

// unrelatedPairing is diagnostic residue: an (Output, Head) pair that
// could not be turned into a Pairing, along with why.
type unrelatedPairing struct {
	Output profile.Output
	Head   store.Snapshot
	Result search.MultiResult
	Reason string
}

// intermediatePairing is stage 1's output. An output with no target mode
// (or a custom mode, which never resolves against the store) carries no
// candidate modes at all; every other output carries one candidate per
// matching protocol mode — even Best/Preferred, which always resolve to
// exactly one — for stage 3 to expand uniformly.
type intermediatePairing struct {
	outputIndex int
	output      profile.Output
	head        store.Snapshot
	result      search.MultiResult

	candidateModes []store.Mode
}

func (ip intermediatePairing) withoutMode() bool { return len(ip.candidateModes) == 0 }
