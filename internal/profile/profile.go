// Package profile holds the declarative configuration data model: named
// profiles binding search-matched outputs to target modes, positions,
// and transforms.
package profile

import (
	"fmt"

	"github.com/bnema/wayoutd/internal/search"
	"github.com/bnema/wayoutd/internal/store"
)

// TargetModeKind tags which shape of target-mode specification an Output
// carries.
type TargetModeKind int

const (
	ModeBest TargetModeKind = iota
	ModePreferred
	ModeWiHe
	ModeWiHeRe
	ModeWiHeReCustom
)

// TargetMode is a tagged union over the five ways a profile output can
// request a mode.
type TargetMode struct {
	Kind    TargetModeKind
	Width   int32
	Height  int32
	Refresh int32 // millihertz; only meaningful for WiHeRe/WiHeReCustom
}

// Position is an absolute output placement in the compositor's layout.
type Position struct {
	X, Y int32
}

// Output is one declarative binding within a Profile: one or more
// search patterns (all of which must match the same head) plus the
// properties to apply to whatever head they resolve to.
type Output struct {
	Enable       bool
	Search       search.MultiSearch
	Mode         *TargetMode // nil means "leave current mode"
	Position     *Position
	Scale        *float64
	Transform    *store.Transform
	AdaptiveSync *store.AdaptiveSync
	Exec         []string
}

// Profile is a named, ordered list of Outputs plus profile-level commands.
type Profile struct {
	Name  string
	Index int // position within the loaded config, used for tie-breaks
	Outputs []Output
	Exec  []string
}

// Validate reports a configuration error if the profile is structurally
// unusable (no name, or no outputs).
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile: profile at index %d has no name", p.Index)
	}
	if len(p.Outputs) == 0 {
		return fmt.Errorf("profile %q: has no outputs", p.Name)
	}
	return nil
}
