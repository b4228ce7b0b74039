package matching

import (
	"fmt"
	"sort"

	"github.com/bnema/wayoutd/internal/profile"
	"github.com/bnema/wayoutd/internal/search"
	"github.com/bnema/wayoutd/internal/store"
)

const refreshDeltaMaxMHz = 500

// stage1 forms the full cross product of a profile's outputs against the
// current heads and classifies every pair, failing early if the counts
// don't match and rejecting the result if the intermediate-pairing count
// falls outside [n, n^2].
func stage1(outputs []profile.Output, heads []store.Snapshot) ([]intermediatePairing, []unrelatedPairing, error) {
	n := len(heads)
	if len(outputs) != n {
		return nil, nil, fmt.Errorf("matching: output count %d != head count %d", len(outputs), n)
	}

	var intermediates []intermediatePairing
	var unrelated []unrelatedPairing

	for outIdx, out := range outputs {
		for _, head := range heads {
			q := queryFromHead(head.Head)
			result := out.Search.Run(q)
			if !result.IsOK() {
				unrelated = append(unrelated, unrelatedPairing{
					Output: out, Head: head, Result: result, Reason: "search",
				})
				continue
			}

			if out.Mode == nil || out.Mode.Kind == profile.ModeWiHeReCustom {
				intermediates = append(intermediates, intermediatePairing{
					outputIndex: outIdx, output: out, head: head, result: result,
				})
				continue
			}

			candidates := candidateModes(head, *out.Mode)
			if len(candidates) == 0 {
				unrelated = append(unrelated, unrelatedPairing{
					Output: out, Head: head, Result: result, Reason: "unsupported_mode",
				})
				continue
			}
			intermediates = append(intermediates, intermediatePairing{
				outputIndex: outIdx, output: out, head: head, result: result, candidateModes: candidates,
			})
		}
	}

	k := len(intermediates)
	if k < n || k > n*n {
		return nil, unrelated, fmt.Errorf(
			"matching: intermediate pairing count %d outside [%d, %d]", k, n, n*n)
	}
	return intermediates, unrelated, nil
}

func queryFromHead(h store.Head) search.Query {
	return search.Query{
		Description: h.Description,
		Name:        h.Name,
		Vendor:      h.Vendor,
		Model:       h.Model,
		Serial:      h.Serial,
	}
}

// sortedModes returns a head's modes sorted ascending by
// (pixels, width, height, refresh).
func sortedModes(head store.Snapshot) []store.Mode {
	modes := append([]store.Mode(nil), head.Modes...)
	sort.Slice(modes, func(i, j int) bool {
		pi := int64(modes[i].Width) * int64(modes[i].Height)
		pj := int64(modes[j].Width) * int64(modes[j].Height)
		if pi != pj {
			return pi < pj
		}
		if modes[i].Width != modes[j].Width {
			return modes[i].Width < modes[j].Width
		}
		if modes[i].Height != modes[j].Height {
			return modes[i].Height < modes[j].Height
		}
		return modes[i].Refresh < modes[j].Refresh
	})
	return modes
}

// candidateModes resolves a TargetMode against a head's modes.
func candidateModes(head store.Snapshot, target profile.TargetMode) []store.Mode {
	modes := sortedModes(head)
	if len(modes) == 0 {
		return nil
	}

	switch target.Kind {
	case profile.ModeBest:
		return modes[len(modes)-1:]
	case profile.ModePreferred:
		for _, m := range modes {
			if m.Preferred {
				return []store.Mode{m}
			}
		}
		return modes[len(modes)-1:]
	case profile.ModeWiHe:
		var out []store.Mode
		for _, m := range modes {
			if m.Width == target.Width && m.Height == target.Height {
				out = append(out, m)
			}
		}
		return out
	case profile.ModeWiHeRe:
		var out []store.Mode
		for _, m := range modes {
			if m.Width != target.Width || m.Height != target.Height {
				continue
			}
			diff := target.Refresh - m.Refresh
			if diff < 0 {
				diff = -diff
			}
			if diff <= refreshDeltaMaxMHz {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}
