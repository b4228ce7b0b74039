package daemon

import (
	"github.com/bnema/wayoutd/internal/matching"
	"github.com/bnema/wayoutd/internal/profile"
	"github.com/bnema/wayoutd/internal/search"
	"github.com/bnema/wayoutd/internal/store"
)

// headIdentity is the subset of a head's attributes that defines whether
// "the same head" is present across two snapshots: trivial positional
// changes (same internal id reassigned the same identity) don't count
// as a cache-outdating change.
type headIdentity struct {
	id          store.ID
	serial      string
	model       string
	vendor      string
	description string
	name        string
}

func identityOf(h store.Head) headIdentity {
	return headIdentity{
		id: h.ID, serial: h.Serial, model: h.Model, vendor: h.Vendor,
		description: h.Description, name: h.Name,
	}
}

// ProfileManager owns the full profile list, the ranked pending-variant
// queue generated against the last known head snapshot, diagnostic
// reports from the last generation pass, and an optional name
// restriction.
type ProfileManager struct {
	profiles    []profile.Profile
	pending     []matching.ValidVariant
	reports     []matching.Report
	restriction *search.SingleSearch

	cachedHeads []store.Snapshot
}

// NewProfileManager builds a manager over a fixed profile list.
func NewProfileManager(profiles []profile.Profile) *ProfileManager {
	return &ProfileManager{profiles: profiles}
}

// SetRestriction installs a name-filtering search pattern; pass nil to
// clear it.
func (pm *ProfileManager) SetRestriction(r *search.SingleSearch) { pm.restriction = r }

// Restriction returns the currently installed restriction, if any.
func (pm *ProfileManager) Restriction() *search.SingleSearch { return pm.restriction }

// ReplaceProfiles swaps in a freshly loaded profile list (used by
// ReloadConfig).
func (pm *ProfileManager) ReplaceProfiles(profiles []profile.Profile) { pm.profiles = profiles }

// Reports returns the diagnostic reports from the last GenerateVariants
// call.
func (pm *ProfileManager) Reports() []matching.Report { return pm.reports }

// eligible reports whether a profile's name satisfies the current
// restriction (always true when there is none).
func (pm *ProfileManager) eligible(p profile.Profile) bool {
	if pm.restriction == nil {
		return true
	}
	res := pm.restriction.Run(search.Query{Name: p.Name})
	return res.IsOK()
}

// GenerateVariants caches heads, runs the Matcher for every eligible
// profile whose output count matches the head count, concatenates all
// resulting valid variants, sorts them by the global ranking, and
// replaces the pending queue.
func (pm *ProfileManager) GenerateVariants(heads []store.Snapshot) {
	pm.cachedHeads = heads
	pm.reports = pm.reports[:0]

	var all []matching.ValidVariant
	for _, p := range pm.profiles {
		if !pm.eligible(p) {
			continue
		}
		if len(p.Outputs) != len(heads) {
			continue
		}
		report := matching.Run(p, heads)
		pm.reports = append(pm.reports, report)
		all = append(all, report.Variants...)
	}

	matching.SortVariants(all)
	pm.pending = all
}

// IsCacheOutdated reports whether the multiset of head identities
// differs from the cached snapshot used at the last GenerateVariants
// call.
func (pm *ProfileManager) IsCacheOutdated(heads []store.Snapshot) bool {
	if len(heads) != len(pm.cachedHeads) {
		return true
	}
	counts := make(map[headIdentity]int, len(heads))
	for _, h := range pm.cachedHeads {
		counts[identityOf(h.Head)]++
	}
	for _, h := range heads {
		id := identityOf(h.Head)
		if counts[id] == 0 {
			return true
		}
		counts[id]--
	}
	for _, n := range counts {
		if n != 0 {
			return true
		}
	}
	return false
}

// NextVariant pops the front of the pending queue, or returns false if
// it is empty.
func (pm *ProfileManager) NextVariant() (matching.ValidVariant, bool) {
	if len(pm.pending) == 0 {
		return matching.ValidVariant{}, false
	}
	v := pm.pending[0]
	pm.pending = pm.pending[1:]
	return v, true
}

// PendingLen reports how many variants remain in the queue.
func (pm *ProfileManager) PendingLen() int { return len(pm.pending) }
