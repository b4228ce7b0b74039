// Package app wires the coordination engine together: it owns the live
// Backend connection, the Profile Manager, the Daemon State Machine, the
// Command Runner, and the IPC server, and runs the single-goroutine
// cooperative event loop: it drains Backend events into a batch, arms
// the settle-delay timer only when the batch contains an
// AtomicChangeDone, and feeds each batch to the DSM in one pass.
package app

import (
	"fmt"
	"time"

	"github.com/bnema/wayoutd/internal/backend"
	"github.com/bnema/wayoutd/internal/command"
	"github.com/bnema/wayoutd/internal/config"
	"github.com/bnema/wayoutd/internal/daemon"
	"github.com/bnema/wayoutd/internal/ipc"
	"github.com/bnema/wayoutd/internal/logger"
	"github.com/bnema/wayoutd/internal/matching"
	"github.com/bnema/wayoutd/internal/search"
	"github.com/bnema/wayoutd/internal/store"
)

// Options carries the daemon-entrypoint CLI flags.
type Options struct {
	ConfigPath string
	Oneshot    bool
	SocketPath string
	SkipTests  bool
	TimeoutMs  int
	Watch      bool
}

// App owns every long-lived collaborator the event loop drives.
type App struct {
	opts Options

	backend *backend.Backend
	pm      *daemon.ProfileManager
	dsm     *daemon.DSM
	cmds    *command.Runner
	ipcSrv  *ipc.Server

	configPath string // resolved path, for ReloadConfig() with no argument

	// calls is how IPC-handler goroutines reach into main-loop-owned
	// state (Store/ProfileManager/DSM): every Handler method submits a
	// closure here and blocks until the main loop has run it, instead of
	// mutating shared state directly from the connection goroutine.
	calls   chan ipcCall
	stopped chan struct{}

	settleDelayMs int
}

// ipcCall is one piece of main-loop work an IPC connection goroutine has
// queued; done is closed once fn has run.
type ipcCall struct {
	fn   func()
	done chan struct{}
}

// runOnLoop queues fn to run on the main event-loop goroutine and blocks
// until it has, or until Run's loop has already exited — a connection
// goroutine straggling past shutdown gets a no-op instead of hanging
// Close() forever.
func (a *App) runOnLoop(fn func()) {
	done := make(chan struct{})
	select {
	case a.calls <- ipcCall{fn: fn, done: done}:
	case <-a.stopped:
		return
	}
	select {
	case <-done:
	case <-a.stopped:
	}
}

// New loads the initial configuration, connects the Backend, and wires
// every collaborator. It does not yet start the event loop.
func New(opts Options) (*App, error) {
	doc, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("app: load config: %w", err)
	}
	resolvedPath, _ := config.ConfigFilePath(opts.ConfigPath)

	if doc.Settings.FileLogging {
		if _, err := logger.SetupFileLogging(); err != nil {
			return nil, fmt.Errorf("app: setup file logging: %w", err)
		}
	}

	b, err := backend.Connect("")
	if err != nil {
		return nil, fmt.Errorf("app: connect backend: %w", err)
	}

	pm := daemon.NewProfileManager(doc.Profiles)
	cmds := command.New()

	skipTests := opts.SkipTests || doc.Settings.SkipTests
	dsm := daemon.NewDSM(pm, b, cmds, logger.Get(), skipTests, opts.Oneshot)

	settleDelayMs := doc.Settings.SettleDelayMs
	if opts.TimeoutMs > 0 {
		settleDelayMs = opts.TimeoutMs
	}

	a := &App{
		opts:          opts,
		backend:       b,
		pm:            pm,
		dsm:           dsm,
		cmds:          cmds,
		configPath:    resolvedPath,
		calls:         make(chan ipcCall),
		stopped:       make(chan struct{}),
		settleDelayMs: settleDelayMs,
	}

	socketPath := opts.SocketPath
	if socketPath == "" {
		if socketPath, err = ipc.SocketPath(); err != nil {
			return nil, fmt.Errorf("app: resolve socket path: %w", err)
		}
	}
	srv, err := ipc.Listen(socketPath, a)
	if err != nil {
		return nil, fmt.Errorf("app: listen ipc: %w", err)
	}
	a.ipcSrv = srv

	return a, nil
}

// ConfigPath returns the resolved config file path used at startup, for
// a --watch caller to attach an fsnotify watcher to.
func (a *App) ConfigPath() string { return a.configPath }

// settleDelay is the debounce timer's duration, configurable via
// [settings] settle_delay_ms.
func (a *App) settleDelay() time.Duration {
	return time.Duration(a.settleDelayMs) * time.Millisecond
}

// Run starts the Backend dispatch loop and the IPC accept loop on their
// own goroutines, then drives the single-threaded cooperative event loop
// until the DSM signals shutdown or ctx-equivalent stop conditions are
// met. It returns the process exit code.
func (a *App) Run() int {
	go func() {
		if err := a.backend.Run(); err != nil {
			logger.Warnf("backend: dispatch loop ended: %v", err)
		}
	}()
	go a.ipcSrv.Serve()
	defer a.ipcSrv.Close()
	defer close(a.stopped)

	var (
		pending []daemon.Event
		timer   *time.Timer
		timerC  <-chan time.Time
	)

	for {
		select {
		case e := <-a.backend.Events():
			pending = append(pending, e)
			if e.Kind == daemon.EventAtomicChangeDone {
				if timer == nil {
					timer = time.NewTimer(a.settleDelay())
					timerC = timer.C
				}
			} else if timer == nil {
				timerC = immediateC()
			}

		case c := <-a.calls:
			c.fn()
			close(c.done)

		case <-timerC:
			batch := pending
			pending = nil
			timer = nil
			timerC = nil
			a.dsm.ProcessBatch(batch)
			if a.dsm.ShouldShutdown() {
				if a.opts.Oneshot {
					a.cmds.Wait()
				}
				return 0
			}
		}
	}
}

// immediateC returns a channel that is ready right away, used when a
// batch contains no AtomicChangeDone and should be processed on the next
// loop tick instead of waiting out the settle delay.
func immediateC() <-chan time.Time {
	c := make(chan time.Time, 1)
	c <- time.Now()
	return c
}

// --- ipc.Handler ---

// CurrentHeads satisfies ipc.Handler for the CurrentHeads request. It
// runs on the main loop because it reads the Backend's live Store.
func (a *App) CurrentHeads() ([]ipc.HeadView, error) {
	var views []ipc.HeadView
	a.runOnLoop(func() {
		snaps := a.backend.Heads()
		views = make([]ipc.HeadView, 0, len(snaps))
		for _, s := range snaps {
			views = append(views, headView(s))
		}
	})
	return views, nil
}

// CurrentState satisfies ipc.Handler for the CurrentState request: the
// DSM's state name plus, when a variant is in flight or applied, its
// stable tie-break key.
func (a *App) CurrentState() (string, error) {
	var out string
	a.runOnLoop(func() {
		state := a.dsm.State().String()
		if v := a.dsm.CurrentVariant(); v != nil {
			out = fmt.Sprintf("%s(%s)", state, v.Valid.IdxStr())
			return
		}
		out = state
	})
	return out, nil
}

// MatchReports satisfies ipc.Handler for the MatchReports request: the
// diagnostic reports from the Profile Manager's last GenerateVariants
// pass.
func (a *App) MatchReports() ([]ipc.ReportView, error) {
	var views []ipc.ReportView
	a.runOnLoop(func() {
		reports := a.pm.Reports()
		views = make([]ipc.ReportView, 0, len(reports))
		for _, r := range reports {
			views = append(views, reportView(r))
		}
	})
	return views, nil
}

// ReloadConfig satisfies ipc.Handler for the ReloadConfig request: it
// reloads the TOML document (from path, or the last-resolved path when
// path is empty), rebuilds the Profile Manager's profile list, and
// forces a restart. The TOML document is loaded on the calling
// goroutine; the profile swap and the restart run on the main loop
// since they mutate the Profile Manager and the DSM.
func (a *App) ReloadConfig(path string) error {
	if path == "" {
		path = a.configPath
	}
	doc, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("app: reload config: %w", err)
	}
	a.runOnLoop(func() {
		a.pm.ReplaceProfiles(doc.Profiles)
		a.dsm.ForceRestart()
	})
	return nil
}

// SwitchProfile satisfies ipc.Handler for the SwitchProfile request: it
// installs a Fulltext name restriction and forces a restart, bypassing
// IsCacheOutdated so re-evaluation happens even with an unchanged head
// set. Runs on the main loop for the same reason as ReloadConfig.
func (a *App) SwitchProfile(name string) error {
	pattern := search.Pattern{Kind: search.KindFulltext, Literal: name}
	if err := pattern.Compile(); err != nil {
		return err
	}
	restriction := search.SingleSearch{Pattern: pattern, Method: search.AtLeastOne}
	a.runOnLoop(func() {
		a.pm.SetRestriction(&restriction)
		a.dsm.ForceRestart()
	})
	return nil
}

func headView(s store.Snapshot) ipc.HeadView {
	h := s.Head
	v := ipc.HeadView{
		ID:           uint64(h.ID),
		Name:         h.Name,
		Description:  h.Description,
		Vendor:       h.Vendor,
		Model:        h.Model,
		Serial:       h.Serial,
		Enabled:      h.Enabled,
		PosX:         h.PosX,
		PosY:         h.PosY,
		Transform:    h.Transform.String(),
		Scale:        h.Scale,
		AdaptiveSync: adaptiveSyncString(h.AdaptiveSync),
	}
	if s.CurrentMode != nil {
		v.CurrentModeID = uint64(s.CurrentMode.ID)
	}
	for _, m := range s.Modes {
		v.Modes = append(v.Modes, ipc.ModeView{
			ID: uint64(m.ID), Width: m.Width, Height: m.Height,
			RefreshMz: m.Refresh, Preferred: m.Preferred,
		})
	}
	return v
}

func reportView(r matching.Report) ipc.ReportView {
	rv := ipc.ReportView{ProfileName: r.Profile.Name}
	for _, v := range r.Variants {
		vv := ipc.VariantView{VariantIndex: v.VariantIndex}
		for _, p := range v.Pairings {
			pv := ipc.PairingView{
				OutputSearch: p.Output.Search.String(),
				HeadName:     p.Head.Head.Name,
				Specificity:  p.Specificity(),
			}
			if p.Mode != nil {
				pv.ModeID = uint64(p.Mode.ID)
			}
			vv.Pairings = append(vv.Pairings, pv)
		}
		rv.Variants = append(rv.Variants, vv)
	}
	rv.Residue = residueSummary(r)
	return rv
}

func residueSummary(r matching.Report) []string {
	var out []string
	for range r.UnrelatedPairings {
		out = append(out, "unrelated pairing")
	}
	for range r.InvalidSubsets {
		out = append(out, "invalid subset")
	}
	return out
}

func adaptiveSyncString(v store.AdaptiveSync) string {
	switch v {
	case store.AdaptiveSyncDisabled:
		return "disabled"
	case store.AdaptiveSyncEnabled:
		return "enabled"
	default:
		return "unknown"
	}
}
