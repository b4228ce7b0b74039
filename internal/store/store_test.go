package store

import "testing"

type foreignHandle struct{ tag string }

func populated(t *testing.T) (*Store, *foreignHandle, *foreignHandle, *foreignHandle) {
	t.Helper()
	s := New()

	headF := &foreignHandle{tag: "head"}
	modeA := &foreignHandle{tag: "mode-a"}
	modeB := &foreignHandle{tag: "mode-b"}

	s.InsertHead(headF)
	if _, err := s.InsertMode(headF, modeA); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertMode(headF, modeB); err != nil {
		t.Fatal(err)
	}
	return s, headF, modeA, modeB
}

func TestRemoveModePurgesAllReferences(t *testing.T) {
	s, headF, modeA, _ := populated(t)

	h, err := s.HeadMut(headF)
	if err != nil {
		t.Fatal(err)
	}
	ma, err := s.ModeMut(modeA)
	if err != nil {
		t.Fatal(err)
	}
	h.CurrentMode = ma.ID
	removedID := ma.ID

	if err := s.RemoveMode(modeA); err != nil {
		t.Fatalf("RemoveMode: %v", err)
	}

	h, err = s.HeadMut(headF)
	if err != nil {
		t.Fatal(err)
	}
	if h.CurrentMode == removedID {
		t.Error("current-mode reference not cleared on mode removal")
	}
	for _, id := range h.Modes {
		if id == removedID {
			t.Error("removed mode id still listed in head's mode list")
		}
	}
	if _, err := s.ModeMut(modeA); err == nil {
		t.Error("removed mode still resolvable by foreign handle")
	}
}

func TestInsertModeUnknownHead(t *testing.T) {
	s := New()
	if _, err := s.InsertMode(&foreignHandle{}, &foreignHandle{}); err == nil {
		t.Fatal("expected ErrUnknownHead for mode on untracked head")
	}
}

func TestRemoveModeWithoutOwnerIsReleaseError(t *testing.T) {
	s, _, modeA, _ := populated(t)

	// Simulate the upstream invariant violation: the owner record is gone
	// but the mode is still indexed.
	delete(s.modeOwner, modeA)
	if err := s.RemoveMode(modeA); err != ErrReleaseOutputMode {
		t.Fatalf("got %v, want ErrReleaseOutputMode", err)
	}
}

func TestStableIDsAreNeverReused(t *testing.T) {
	s, headF, modeA, _ := populated(t)

	ma, err := s.ModeMut(modeA)
	if err != nil {
		t.Fatal(err)
	}
	oldID := ma.ID
	if err := s.RemoveMode(modeA); err != nil {
		t.Fatal(err)
	}

	newID, err := s.InsertMode(headF, &foreignHandle{tag: "mode-c"})
	if err != nil {
		t.Fatal(err)
	}
	if newID <= oldID {
		t.Errorf("internal id reused: new %d <= old %d", newID, oldID)
	}
}

func TestExportSnapshotsAreCopies(t *testing.T) {
	s, headF, modeA, _ := populated(t)

	h, err := s.HeadMut(headF)
	if err != nil {
		t.Fatal(err)
	}
	ma, err := s.ModeMut(modeA)
	if err != nil {
		t.Fatal(err)
	}
	h.Name = "eDP-1"
	h.CurrentMode = ma.ID
	ma.Width, ma.Height, ma.Refresh = 1920, 1080, 60000

	snaps := s.Export()
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	snap := snaps[0]
	if snap.CurrentMode == nil || snap.CurrentMode.Width != 1920 {
		t.Fatalf("unexpected current mode in snapshot: %+v", snap.CurrentMode)
	}

	// Mutating live store state must not reach through into the snapshot.
	h.Name = "changed"
	ma.Width = 1
	if snap.Head.Name != "eDP-1" || snap.CurrentMode.Width != 1920 {
		t.Error("snapshot shares state with the live store")
	}

	if len(snap.Modes) != 2 {
		t.Fatalf("expected 2 embedded modes, got %d", len(snap.Modes))
	}
}
