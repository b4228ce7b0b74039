// Package command runs the shell commands an applied variant carries:
// profile-level commands followed by per-pairing commands, each with the
// matching name injected into its environment. Each run is a detached
// goroutine, joined via sync.WaitGroup only at oneshot shutdown.
package command

import (
	"os/exec"
	"sync"

	"github.com/bnema/wayoutd/internal/logger"
	"github.com/bnema/wayoutd/internal/matching"
	"github.com/bnema/wayoutd/internal/variant"
)

const (
	envProfileName = "WAYOUT_PROFILE_NAME"
	envOutputName  = "WAYOUT_OUTPUT_NAME"
)

// entry is one shell command plus the extra environment variable it runs
// under.
type entry struct {
	line   string
	envKey string
	envVal string
}

// Runner executes the command lists of applied variants. Each run is a
// detached goroutine in normal operation; RunForVariant's caller joins
// via Wait only when shutting down in oneshot mode.
type Runner struct {
	wg sync.WaitGroup
}

// New returns an idle Runner.
func New() *Runner { return &Runner{} }

// RunForVariant composes the applied variant's command list: the
// profile's own commands first, then each selected pairing's commands in
// pairing order. Only pairings that made it into the winning variant run
// their commands, not every output the profile declares. The list runs
// on its own goroutine.
func (r *Runner) RunForVariant(v *variant.Variant) {
	entries := buildEntries(v.Valid)
	if len(entries) == 0 {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		runEntries(entries)
	}()
}

// Wait blocks until every launched command run has returned. Used only
// during oneshot shutdown.
func (r *Runner) Wait() { r.wg.Wait() }

func buildEntries(v matching.ValidVariant) []entry {
	var entries []entry
	for _, line := range v.Profile.Exec {
		entries = append(entries, entry{line: line, envKey: envProfileName, envVal: v.Profile.Name})
	}
	for _, p := range v.Pairings {
		for _, line := range p.Output.Exec {
			entries = append(entries, entry{line: line, envKey: envOutputName, envVal: p.Head.Head.Name})
		}
	}
	return entries
}

func runEntries(entries []entry) {
	for _, e := range entries {
		cmd := exec.Command("/bin/sh", "-c", e.line)
		cmd.Env = append(cmd.Environ(), e.envKey+"="+e.envVal)
		if err := cmd.Run(); err != nil {
			logger.Warnf("command runner: %q (%s=%s): %v", e.line, e.envKey, e.envVal, err)
		}
	}
}
