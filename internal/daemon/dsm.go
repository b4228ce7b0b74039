package daemon

import (
	"github.com/bnema/wayoutd/internal/store"
	"github.com/bnema/wayoutd/internal/variant"
)

// DSMState tags which of the four daemon states the machine is in.
type DSMState int

const (
	NoVariantApplied DSMState = iota
	VariantInProgress
	VariantApplied
	RestartAfterResponse
)

func (s DSMState) String() string {
	switch s {
	case NoVariantApplied:
		return "NoVariantApplied"
	case VariantInProgress:
		return "VariantInProgress"
	case VariantApplied:
		return "VariantApplied"
	case RestartAfterResponse:
		return "RestartAfterResponse"
	default:
		return "Unknown"
	}
}

// Backend is the narrow surface the DSM needs from the protocol adapter.
// A driver applies DSM-returned actions against this interface so tests
// can substitute a mock instead of a live Wayland connection.
type Backend interface {
	// Test submits the variant as a test-only configuration. Returns an
	// error immediately on a configuration build error; a
	// successful submission's outcome arrives later as an Event fed
	// back into the DSM.
	Test(v *variant.Variant) error
	// Apply submits the variant as an apply configuration. Same error
	// contract as Test.
	Apply(v *variant.Variant) error
	// Heads returns the current store snapshot, used by restart() to
	// regenerate variants.
	Heads() []store.Snapshot
}

// CommandRunner runs the per-profile/per-output commands of an applied
// variant.
type CommandRunner interface {
	RunForVariant(v *variant.Variant)
}

// Logger is the narrow logging surface the DSM needs; satisfied by the
// project logger and easily stubbed in tests.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// DSM is the outer state machine: it owns the current in-flight variant
// (if any), delegates per-event transitions to that variant's VSM, and
// recomputes from the Profile Manager on restart.
type DSM struct {
	state   DSMState
	current *variant.Variant

	pm        *ProfileManager
	backend   Backend
	cmds      CommandRunner
	log       Logger
	skipTests bool
	oneshot   bool

	// shutdown is set once a NeededResourceFinished event has been
	// processed, or a oneshot run has exec'd its commands.
	shutdown bool
}

// NewDSM wires a DSM to its collaborators.
func NewDSM(pm *ProfileManager, backend Backend, cmds CommandRunner, log Logger, skipTests, oneshot bool) *DSM {
	return &DSM{
		state: NoVariantApplied, pm: pm, backend: backend, cmds: cmds,
		log: log, skipTests: skipTests, oneshot: oneshot,
	}
}

// State returns the current DSM state, for diagnostics/tests.
func (d *DSM) State() DSMState { return d.state }

// ShouldShutdown reports whether the event loop should stop.
func (d *DSM) ShouldShutdown() bool { return d.shutdown }

// ProcessBatch processes one batch of events in order. If any event in
// the batch is NeededResourceFinished, the batch is aborted immediately
// — the rest of the batch is not drained — and the DSM marks itself for
// shutdown.
func (d *DSM) ProcessBatch(events []Event) {
	for _, e := range events {
		if e.Kind == EventNeededResourceFinished {
			d.log.Warnf("output-management global finished, shutting down")
			d.shutdown = true
			return
		}
		d.processOne(e)
		if d.shutdown {
			return
		}
	}
}

func (d *DSM) processOne(e Event) {
	switch d.state {
	case NoVariantApplied:
		if e.Kind == EventAtomicChangeDone {
			d.restart()
		}

	case VariantApplied:
		if e.Kind == EventAtomicChangeDone {
			d.restart()
		}

	case VariantInProgress:
		d.feedVariant(e)

	case RestartAfterResponse:
		// Swallow further change events until the outstanding
		// configuration resolves, to avoid submitting against a stale
		// serial; any terminal response (Succeeded/Failed/Cancelled)
		// releases the deferred restart: the outstanding variant is
		// dropped and variants are regenerated from the current heads.
		switch e.Kind {
		case EventSucceeded, EventFailed, EventCancelled:
			d.feedVariantTerminal(e)
			d.current = nil
			d.ForceRestart()
		case EventAtomicChangeDone:
			// self-loop: stay in RestartAfterResponse
		}
	}
}

func (d *DSM) feedVariant(e Event) {
	if d.current == nil {
		return
	}
	var input variant.Input
	switch e.Kind {
	case EventSucceeded:
		input = variant.InputSucceeded
	case EventFailed:
		input = variant.InputFailed
	case EventCancelled:
		input = variant.InputCancelled
	case EventAtomicChangeDone:
		input = variant.InputAtomicChangeDone
	default:
		return
	}

	action := d.current.Advance(input)
	d.applyAction(action)
}

// feedVariantTerminal advances the current variant with a terminal
// response while already restarting, without re-entering applyAction's
// restart-deferral path (we're already deferring).
func (d *DSM) feedVariantTerminal(e Event) {
	if d.current == nil {
		return
	}
	var input variant.Input
	switch e.Kind {
	case EventSucceeded:
		input = variant.InputSucceeded
	case EventFailed:
		input = variant.InputFailed
	case EventCancelled:
		input = variant.InputCancelled
	}
	d.current.Advance(input)
}

func (d *DSM) applyAction(action variant.Action) {
	switch action {
	case variant.ActionTestVariant:
		if err := d.backend.Test(d.current); err != nil {
			d.log.Warnf("test variant %s failed: %v", d.current.Valid.IdxStr(), err)
			d.current.Advance(variant.InputFailed)
			d.tryNextVariant()
			return
		}
		d.state = VariantInProgress

	case variant.ActionApplyVariant:
		if err := d.backend.Apply(d.current); err != nil {
			d.log.Warnf("apply variant %s failed: %v", d.current.Valid.IdxStr(), err)
			d.current.Advance(variant.InputFailed)
			d.tryNextVariant()
			return
		}
		d.state = VariantInProgress

	case variant.ActionTryNextVariant:
		d.tryNextVariant()

	case variant.ActionRestart:
		d.restart()

	case variant.ActionExecCmd:
		d.cmds.RunForVariant(d.current)
		d.state = VariantApplied
		if d.oneshot {
			d.shutdown = true
		}

	case variant.ActionInert:
		// no state change
	}
}

func (d *DSM) tryNextVariant() {
	v, ok := d.pm.NextVariant()
	if !ok {
		d.log.Infof("no more variants to try")
		d.current = nil
		d.state = NoVariantApplied
		if d.oneshot {
			d.shutdown = true
		}
		return
	}
	d.current = variant.New(v)
	action := d.current.Start(d.skipTests)
	d.state = VariantInProgress
	d.applyAction(action)
}

// restart recomputes from the Store if the heads cache is outdated,
// otherwise stays put. If a variant is currently Testing or Applying,
// restart defers to RestartAfterResponse instead of issuing a second
// configuration — the single-in-flight invariant.
func (d *DSM) restart() {
	if d.current != nil && (d.current.State == variant.Testing || d.current.State == variant.Applying) {
		d.state = RestartAfterResponse
		return
	}
	if d.current != nil && d.current.State == variant.Discarded {
		d.current = nil
		d.state = NoVariantApplied
	}

	heads := d.backend.Heads()
	if !d.pm.IsCacheOutdated(heads) {
		return
	}
	d.pm.GenerateVariants(heads)
	d.current = nil
	d.state = NoVariantApplied
	d.tryNextVariant()
}

// ForceRestart bypasses IsCacheOutdated — used by SwitchProfile and
// ReloadConfig, which must re-evaluate even when the head set itself
// hasn't changed.
func (d *DSM) ForceRestart() {
	if d.current != nil && (d.current.State == variant.Testing || d.current.State == variant.Applying) {
		d.state = RestartAfterResponse
		return
	}
	heads := d.backend.Heads()
	d.pm.GenerateVariants(heads)
	d.current = nil
	d.state = NoVariantApplied
	d.tryNextVariant()
}

// CurrentVariant returns the in-flight or applied variant, if any.
func (d *DSM) CurrentVariant() *variant.Variant { return d.current }
