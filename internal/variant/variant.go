// Package variant implements the per-variant micro state machine that
// drives one matched variant through test, apply, and either success or
// discard.
package variant

import (
	"fmt"

	"github.com/bnema/wayoutd/internal/matching"
)

// State is where a variant currently sits in its lifecycle.
type State int

const (
	Untested State = iota // initial
	Testing
	Applying
	Applied   // terminal success
	Discarded // terminal failure
)

func (s State) String() string {
	switch s {
	case Untested:
		return "Untested"
	case Testing:
		return "Testing"
	case Applying:
		return "Applying"
	case Applied:
		return "Applied"
	case Discarded:
		return "Discarded"
	default:
		return "Unknown"
	}
}

// Input is a compositor-driven event fed into the variant state machine.
type Input int

const (
	InputSucceeded Input = iota
	InputCancelled
	InputFailed
	InputAtomicChangeDone
)

func (i Input) String() string {
	switch i {
	case InputSucceeded:
		return "Succeeded"
	case InputCancelled:
		return "Cancelled"
	case InputFailed:
		return "Failed"
	case InputAtomicChangeDone:
		return "AtomicChangeDone"
	default:
		return "Unknown"
	}
}

// Action is what the driver must do in response to a state transition.
// Actions are returned values, never side effects performed inline, so
// the state machine stays unit-testable without a live Backend.
type Action int

const (
	ActionInert Action = iota
	ActionTestVariant
	ActionApplyVariant
	ActionRestart
	ActionTryNextVariant
	ActionExecCmd
)

func (a Action) String() string {
	switch a {
	case ActionInert:
		return "Inert"
	case ActionTestVariant:
		return "TestVariant"
	case ActionApplyVariant:
		return "ApplyVariant"
	case ActionRestart:
		return "Restart"
	case ActionTryNextVariant:
		return "TryNextVariant"
	case ActionExecCmd:
		return "ExecCmd"
	default:
		return "Unknown"
	}
}

// Variant wraps a matched ValidVariant with its current micro state.
type Variant struct {
	Valid matching.ValidVariant
	State State
}

// New wraps a freshly matched ValidVariant in its initial Untested state.
func New(v matching.ValidVariant) *Variant {
	return &Variant{Valid: v, State: Untested}
}

// Start resets the state and kicks off the variant's lifecycle. When
// skipTests is set it jumps straight to Applying, simulating a
// successful test, and returns ActionApplyVariant directly instead of
// going through Advance.
func (v *Variant) Start(skipTests bool) Action {
	v.State = Untested
	if skipTests {
		v.State = Applying
		return ActionApplyVariant
	}
	return v.Advance(InputAtomicChangeDone)
}

// Discard forces the variant into its terminal failure state.
func (v *Variant) Discard() { v.State = Discarded }

// Advance feeds input into the state machine, updating State in place
// and returning the resulting Action. If the (state, input) pair isn't
// covered by the transition table, it returns Inert without changing
// state and without logging anything; InvalidTransitionWarning renders
// the message for such a pair.
func (v *Variant) Advance(input Input) Action {
	next, action, ok := v.State.next(input)
	if !ok {
		return ActionInert
	}
	v.State = next
	return action
}

// next implements the transition table from state x input to (new
// state, action, ok). ok is false for combinations not covered by the
// table.
func (s State) next(input Input) (State, Action, bool) {
	switch {
	case s == Untested && input == InputAtomicChangeDone:
		return Testing, ActionTestVariant, true

	case s == Testing && input == InputSucceeded:
		return Applying, ActionApplyVariant, true
	case s == Testing && input == InputCancelled:
		return Discarded, ActionRestart, true
	case s == Testing && input == InputFailed:
		return Discarded, ActionTryNextVariant, true
	case s == Testing && input == InputAtomicChangeDone:
		return Testing, ActionInert, true

	case s == Applying && input == InputSucceeded:
		return Applied, ActionExecCmd, true
	case s == Applying && input == InputCancelled:
		return Discarded, ActionRestart, true
	case s == Applying && input == InputFailed:
		return Discarded, ActionTryNextVariant, true
	case s == Applying && input == InputAtomicChangeDone:
		return Applying, ActionInert, true

	case s == Applied && input == InputAtomicChangeDone:
		return Discarded, ActionRestart, true

	default:
		return s, ActionInert, false
	}
}

// InvalidTransitionWarning renders a human-readable warning for a
// transition not covered by the table. No caller in this module logs it.
func InvalidTransitionWarning(s State, input Input) string {
	return fmt.Sprintf("received invalid input %s at state %s", input, s)
}
