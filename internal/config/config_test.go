package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/wayoutd/internal/profile"
	"github.com/bnema/wayoutd/internal/store"
)

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "wayout.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWhenSettingsOmitted(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[[profile]]
name = "laptop"

[[profile.output]]
search = "%eDP-1"
mode = "best"
`)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if doc.Settings.SettleDelayMs != DefaultSettings.SettleDelayMs {
		t.Errorf("expected default settle delay %d, got %d", DefaultSettings.SettleDelayMs, doc.Settings.SettleDelayMs)
	}
	if len(doc.Profiles) != 1 || doc.Profiles[0].Name != "laptop" {
		t.Fatalf("expected one profile named laptop, got %+v", doc.Profiles)
	}
	if doc.Profiles[0].Outputs[0].Enable != true {
		t.Error("expected enable to default true when omitted")
	}
}

func TestLoadParsesModeAndTransformAndAdaptiveSync(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[settings]
socket = "/tmp/wayout.socket"
skip_tests = true

[[profile]]
name = "desk"

[[profile.output]]
search = "%DP-1"
mode = { width = 2560, height = 1440, refresh = 144000 }
position = [1920, 0]
scale = 1.5
transform = "flipped-90"
adaptive_sync = "enabled"
`)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !doc.Settings.SkipTests {
		t.Error("expected skip_tests true")
	}
	out := doc.Profiles[0].Outputs[0]
	if out.Mode == nil || out.Mode.Width != 2560 || out.Mode.Height != 1440 || out.Mode.Refresh != 144000 {
		t.Fatalf("unexpected mode: %+v", out.Mode)
	}
	if out.Position == nil || out.Position.X != 1920 || out.Position.Y != 0 {
		t.Fatalf("unexpected position: %+v", out.Position)
	}
	if out.Scale == nil || *out.Scale != 1.5 {
		t.Fatalf("unexpected scale: %v", out.Scale)
	}
	if out.Transform == nil || *out.Transform != store.TransformFlipped90 {
		t.Fatalf("unexpected transform: %v", out.Transform)
	}
	if out.AdaptiveSync == nil || *out.AdaptiveSync != store.AdaptiveSyncEnabled {
		t.Fatal("expected adaptive_sync enabled")
	}
}

func TestLoadParsesModeAndPositionStringGrammar(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[[profile]]
name = "laptop"

[[profile.output]]
search = "%eDP-1"
mode = "1920x1080@60Hz"
position = "0,0"

[[profile.output]]
search = "%HDMI-A-1"
mode = "3840x2160"
position = "1920,-10"

[[profile.output]]
search = "%DP-2"
mode = "!2560x1440@75Hz"
`)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	outs := doc.Profiles[0].Outputs

	laptop := outs[0].Mode
	if laptop == nil || laptop.Width != 1920 || laptop.Height != 1080 || laptop.Refresh != 60000 {
		t.Fatalf("unexpected mode for eDP-1: %+v", laptop)
	}
	if laptop.Kind != profile.ModeWiHeRe {
		t.Fatalf("expected WiHeRe kind, got %v", laptop.Kind)
	}
	if outs[0].Position == nil || outs[0].Position.X != 0 || outs[0].Position.Y != 0 {
		t.Fatalf("unexpected position for eDP-1: %+v", outs[0].Position)
	}

	hdmi := outs[1].Mode
	if hdmi == nil || hdmi.Width != 3840 || hdmi.Height != 2160 || hdmi.Refresh != 0 {
		t.Fatalf("unexpected mode for HDMI-A-1: %+v", hdmi)
	}
	if outs[1].Position == nil || outs[1].Position.X != 1920 || outs[1].Position.Y != -10 {
		t.Fatalf("unexpected position for HDMI-A-1: %+v", outs[1].Position)
	}

	custom := outs[2].Mode
	if custom == nil || custom.Width != 2560 || custom.Height != 1440 || custom.Refresh != 75000 {
		t.Fatalf("unexpected custom mode for DP-2: %+v", custom)
	}
}

func TestLoadParsesSearchListForm(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[[profile]]
name = "desk"

[[profile.output]]
search = ["n=DP-1", "v%Dell"]
mode = "best"
`)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	ms := doc.Profiles[0].Outputs[0].Search
	if len(ms.Searches) != 2 {
		t.Fatalf("expected 2 inner searches, got %d", len(ms.Searches))
	}
	if got := ms.String(); got != "n=DP-1;v%Dell" {
		t.Errorf("unexpected text form: %q", got)
	}
}

func TestLoadRejectsNonStringSearchListElement(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[[profile]]
name = "bad"

[[profile.output]]
search = ["n=DP-1", 5]
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-string search list element")
	}
}

func TestLoadRejectsCustomModeWithoutRefresh(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[[profile]]
name = "bad"

[[profile.output]]
search = "%eDP-1"
mode = "!1920x1080"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for custom mode without a refresh rate")
	}
}

func TestLoadRejectsUnknownModeKeyword(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[[profile]]
name = "bad"

[[profile.output]]
search = "%eDP-1"
mode = "ultra"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown mode keyword")
	}
}

func TestLoadRejectsProfileWithNoOutputs(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[[profile]]
name = "empty"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for profile with no outputs")
	}
}
