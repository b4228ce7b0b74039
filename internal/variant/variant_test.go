package variant

import (
	"testing"

	"github.com/bnema/wayoutd/internal/matching"
)

func TestFullLifecycleApplied(t *testing.T) {
	v := New(anyValidVariant())

	if action := v.Start(false); action != ActionTestVariant {
		t.Fatalf("Start: got %v, want TestVariant", action)
	}
	if v.State != Testing {
		t.Fatalf("state after Start: got %v, want Testing", v.State)
	}

	if action := v.Advance(InputSucceeded); action != ActionApplyVariant {
		t.Fatalf("Testing+Succeeded: got %v, want ApplyVariant", action)
	}
	if action := v.Advance(InputSucceeded); action != ActionExecCmd {
		t.Fatalf("Applying+Succeeded: got %v, want ExecCmd", action)
	}
	if v.State != Applied {
		t.Fatalf("final state: got %v, want Applied", v.State)
	}
}

func TestSkipTestsJumpsToApplying(t *testing.T) {
	v := New(anyValidVariant())
	if action := v.Start(true); action != ActionApplyVariant {
		t.Fatalf("Start(skipTests): got %v, want ApplyVariant", action)
	}
	if v.State != Applying {
		t.Fatalf("state: got %v, want Applying", v.State)
	}
}

func TestCancelledMidApplyDiscardsAndRestarts(t *testing.T) {
	v := &Variant{State: Applying}
	action := v.Advance(InputCancelled)
	if action != ActionRestart {
		t.Fatalf("got %v, want Restart", action)
	}
	if v.State != Discarded {
		t.Fatalf("state: got %v, want Discarded", v.State)
	}
}

func TestFailedDuringTestingTriesNext(t *testing.T) {
	v := &Variant{State: Testing}
	if action := v.Advance(InputFailed); action != ActionTryNextVariant {
		t.Fatalf("got %v, want TryNextVariant", action)
	}
}

func TestAppliedThenChangeRestarts(t *testing.T) {
	v := &Variant{State: Applied}
	if action := v.Advance(InputAtomicChangeDone); action != ActionRestart {
		t.Fatalf("got %v, want Restart", action)
	}
	if v.State != Discarded {
		t.Fatalf("state: got %v, want Discarded", v.State)
	}
}

func TestInvalidTransitionIsInertAndDoesNotChangeState(t *testing.T) {
	v := &Variant{State: Untested}
	if action := v.Advance(InputSucceeded); action != ActionInert {
		t.Fatalf("got %v, want Inert", action)
	}
	if v.State != Untested {
		t.Fatalf("state changed on invalid transition: %v", v.State)
	}
}

func anyValidVariant() matching.ValidVariant { return matching.ValidVariant{} }
