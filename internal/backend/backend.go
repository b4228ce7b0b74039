// Package backend adapts the wlr-output-management-v1 wire protocol
// (bound via internal/wlproto) into the daemon's protocol-agnostic
// event stream and implements the daemon.Backend interface the outer
// state machine drives configuration requests through.
package backend

import (
	"fmt"

	"github.com/bnema/wayoutd/internal/daemon"
	"github.com/bnema/wayoutd/internal/logger"
	"github.com/bnema/wayoutd/internal/matching"
	"github.com/bnema/wayoutd/internal/profile"
	"github.com/bnema/wayoutd/internal/store"
	"github.com/bnema/wayoutd/internal/variant"
	"github.com/bnema/wayoutd/internal/wlproto"
	"github.com/bnema/wlturbo/wl"
)

// Version bounds for zwlr_output_manager_v1: below 3 the head
// name/make/model/serial events this daemon matches on don't exist, so
// the connection is refused; adaptive-sync requests and events are
// gated behind version 4.
const (
	minSupportedVersion = 3
	maxSupportedVersion = 4
)

// Backend owns the live Wayland connection, the protocol-state Store,
// and the single outstanding Configuration (if any). All of its
// exported methods except Events are called from the single event-loop
// goroutine that also drains Dispatch; Events is safe to read from
// concurrently since it is a channel.
type Backend struct {
	display  *wl.Display
	ctx      *wl.Context
	registry *wl.Registry
	manager  *wlproto.Manager

	managerName    uint32
	managerVersion uint32

	store *store.Store

	headProxyByID        map[store.ID]*wlproto.Head
	modeProxyByID        map[store.ID]*wlproto.Mode
	modeProxyByForeignID map[uint32]*wlproto.Mode

	lastSerial uint32
	liveConfig *wlproto.Configuration

	events chan daemon.Event
}

// Connect opens the Wayland display named by socketName (empty uses
// WAYLAND_DISPLAY), binds the zwlr_output_manager_v1 global, and
// starts listening for head/mode/done events. Events surfaces the
// translated event stream the daemon's event loop consumes; callers
// must keep draining it.
func Connect(socketName string) (*Backend, error) {
	display, err := wl.Connect(socketName)
	if err != nil {
		return nil, fmt.Errorf("backend: connect: %w", err)
	}

	b := &Backend{
		display:              display,
		ctx:                  display.Context(),
		store:                store.New(),
		headProxyByID:        make(map[store.ID]*wlproto.Head),
		modeProxyByID:        make(map[store.ID]*wlproto.Mode),
		modeProxyByForeignID: make(map[uint32]*wlproto.Mode),
		events:               make(chan daemon.Event, 32),
	}
	wlproto.SetModeLookup(b)

	b.registry = display.GetRegistry()
	b.registry.AddGlobalHandler(b)
	b.registry.AddGlobalRemoveHandler(b)

	if err := display.Roundtrip(); err != nil {
		return nil, fmt.Errorf("backend: initial roundtrip: %w", err)
	}
	if b.managerName == 0 {
		return nil, fmt.Errorf("backend: compositor does not advertise %s", wlproto.ManagerInterface)
	}
	if b.managerVersion < minSupportedVersion {
		return nil, fmt.Errorf("backend: %s version %d is below the minimum supported version %d",
			wlproto.ManagerInterface, b.managerVersion, minSupportedVersion)
	}

	version := b.managerVersion
	if version > maxSupportedVersion {
		version = maxSupportedVersion
	}
	manager := wlproto.NewManager(b.ctx, version)
	if err := b.registry.Bind(b.managerName, wlproto.ManagerInterface, version, manager); err != nil {
		return nil, fmt.Errorf("backend: bind manager: %w", err)
	}
	b.manager = manager
	b.wireManager(manager)

	// Second roundtrip pulls in the initial head/mode burst and the
	// first Done{serial}.
	if err := display.Roundtrip(); err != nil {
		return nil, fmt.Errorf("backend: manager roundtrip: %w", err)
	}

	return b, nil
}

// HandleRegistryGlobal records the output-management global's name and
// advertised version when the registry announces it.
func (b *Backend) HandleRegistryGlobal(ev wl.RegistryGlobalEvent) {
	if ev.Interface == wlproto.ManagerInterface {
		b.managerName = ev.Name
		b.managerVersion = ev.Version
	}
}

// HandleRegistryGlobalRemove treats removal of the output-management
// global as the unrecoverable resource loss it is.
func (b *Backend) HandleRegistryGlobalRemove(ev wl.RegistryGlobalRemoveEvent) {
	if b.managerName != 0 && ev.Name == b.managerName {
		b.emit(daemon.EventNeededResourceFinished)
	}
}

// Run drains the connection forever, translating protocol events and
// pushing them onto the Events channel, until the connection is closed
// or an unrecoverable read error occurs.
func (b *Backend) Run() error {
	for {
		if err := b.display.Dispatch(); err != nil {
			b.emit(daemon.EventNeededResourceFinished)
			return fmt.Errorf("backend: dispatch: %w", err)
		}
	}
}

// Events returns the channel of translated daemon events.
func (b *Backend) Events() <-chan daemon.Event { return b.events }

func (b *Backend) emit(kind daemon.EventKind) {
	b.events <- daemon.Event{Kind: kind}
}

func (b *Backend) wireManager(m *wlproto.Manager) {
	m.SetHeadHandler(b.onHead)
	m.SetDoneHandler(b.onDone)
	m.SetFinishedHandler(func() { b.emit(daemon.EventNeededResourceFinished) })
}

func (b *Backend) onHead(h *wlproto.Head) {
	id := b.store.InsertHead(h)
	b.headProxyByID[id] = h

	h.SetNameHandler(func(name string) {
		hd, _ := b.store.HeadMut(h)
		if hd != nil {
			hd.Name = name
		}
	})
	h.SetDescriptionHandler(func(desc string) {
		hd, _ := b.store.HeadMut(h)
		if hd != nil {
			hd.Description = desc
		}
	})
	h.SetMakeHandler(func(vendor string) {
		hd, _ := b.store.HeadMut(h)
		if hd != nil {
			hd.Vendor = vendor
		}
	})
	h.SetModelHandler(func(model string) {
		hd, _ := b.store.HeadMut(h)
		if hd != nil {
			hd.Model = model
		}
	})
	h.SetSerialNumberHandler(func(serial string) {
		hd, _ := b.store.HeadMut(h)
		if hd != nil {
			hd.Serial = serial
		}
	})
	h.SetPhysicalSizeHandler(func(w, ht int32) {
		hd, _ := b.store.HeadMut(h)
		if hd != nil {
			hd.PhysWidth, hd.PhysHeight = w, ht
		}
	})
	h.SetEnabledHandler(func(enabled int32) {
		hd, _ := b.store.HeadMut(h)
		if hd != nil {
			hd.Enabled = enabled != 0
		}
	})
	h.SetPositionHandler(func(x, y int32) {
		hd, _ := b.store.HeadMut(h)
		if hd != nil {
			hd.PosX, hd.PosY = x, y
		}
	})
	h.SetTransformHandler(func(t int32) {
		hd, _ := b.store.HeadMut(h)
		if hd != nil {
			hd.Transform = store.Transform(t)
		}
	})
	h.SetScaleHandler(func(scale wl.Fixed) {
		hd, _ := b.store.HeadMut(h)
		if hd != nil {
			hd.Scale = fixedToFloat(scale)
		}
	})
	h.SetAdaptiveSyncHandler(func(state uint32) {
		hd, _ := b.store.HeadMut(h)
		if hd != nil {
			if state != 0 {
				hd.AdaptiveSync = store.AdaptiveSyncEnabled
			} else {
				hd.AdaptiveSync = store.AdaptiveSyncDisabled
			}
		}
	})
	h.SetModeHandler(func(m *wlproto.Mode) { b.onMode(h, m) })
	h.SetCurrentModeHandler(func(m *wlproto.Mode) {
		hd, _ := b.store.HeadMut(h)
		if hd == nil {
			return
		}
		if mode, err := b.store.ModeMut(m); err == nil {
			hd.CurrentMode = mode.ID
		}
	})
	h.SetFinishedHandler(func() {
		delete(b.headProxyByID, id)
		_ = b.store.RemoveHead(h)
	})
}

func (b *Backend) onMode(h *wlproto.Head, m *wlproto.Mode) {
	id, err := b.store.InsertMode(h, m)
	if err != nil {
		return
	}
	b.modeProxyByID[id] = m
	b.modeProxyByForeignID[m.ID()] = m

	m.SetSizeHandler(func(w, ht int32) {
		md, _ := b.store.ModeMut(m)
		if md != nil {
			md.Width, md.Height = w, ht
		}
	})
	m.SetRefreshHandler(func(mhz int32) {
		md, _ := b.store.ModeMut(m)
		if md != nil {
			md.Refresh = mhz
		}
	})
	m.SetPreferredHandler(func() {
		md, _ := b.store.ModeMut(m)
		if md != nil {
			md.Preferred = true
		}
	})
	m.SetFinishedHandler(func() {
		delete(b.modeProxyByID, id)
		_ = b.store.RemoveMode(m)
	})
}

func (b *Backend) onDone(serial uint32) {
	b.lastSerial = serial
	b.emit(daemon.EventAtomicChangeDone)
}

// ModeByProxyID satisfies wlproto's modeLookup interface for
// current_mode events, which carry only a bare object id on the wire.
// wlturbo proxies are looked up by identity, not id, in this package's
// other maps, so this keeps a parallel index by the protocol-assigned
// new_id captured at mode-creation time.
func (b *Backend) ModeByProxyID(id uint32) *wlproto.Mode {
	return b.modeProxyByForeignID[id]
}

// Heads returns the current store snapshot.
func (b *Backend) Heads() []store.Snapshot { return b.store.Export() }

// Test submits variant as a test-only configuration.
func (b *Backend) Test(v *variant.Variant) error {
	return b.submit(v, false)
}

// Apply submits variant as an apply configuration.
func (b *Backend) Apply(v *variant.Variant) error {
	return b.submit(v, true)
}

// submit builds a fresh Configuration from the variant's pairings and
// submits it as a test or an apply request. Only one configuration may
// be outstanding at a time; building a new one first destroys any
// still-live configuration, since the protocol permits at most one
// live configuration per manager and a prior one that hasn't resolved
// yet is presumed superseded.
func (b *Backend) submit(v *variant.Variant, apply bool) error {
	if len(v.Valid.Pairings) != b.store.Count() {
		return fmt.Errorf("backend: variant %s has %d pairings for %d heads",
			v.Valid.IdxStr(), len(v.Valid.Pairings), b.store.Count())
	}

	if b.liveConfig != nil {
		_ = b.liveConfig.Destroy()
		b.liveConfig = nil
	}

	cfg, err := b.manager.CreateConfiguration(b.lastSerial)
	if err != nil {
		return fmt.Errorf("backend: create configuration: %w", err)
	}

	for i := range v.Valid.Pairings {
		p := &v.Valid.Pairings[i]
		headProxy, ok := b.headProxyByID[p.Head.Head.ID]
		if !ok {
			_ = cfg.Destroy()
			return fmt.Errorf("backend: head %d is no longer live", p.Head.Head.ID)
		}

		if !p.Output.Enable {
			if err := cfg.DisableHead(headProxy); err != nil {
				_ = cfg.Destroy()
				return fmt.Errorf("backend: disable head: %w", err)
			}
			continue
		}

		ch, err := cfg.EnableHead(headProxy)
		if err != nil {
			_ = cfg.Destroy()
			return fmt.Errorf("backend: enable head: %w", err)
		}
		if err := b.configureHead(ch, p); err != nil {
			_ = cfg.Destroy()
			return err
		}
	}

	cfg.SetSucceededHandler(func() { b.onConfigResolved(daemon.EventSucceeded) })
	cfg.SetFailedHandler(func() { b.onConfigResolved(daemon.EventFailed) })
	cfg.SetCancelledHandler(func() { b.onConfigResolved(daemon.EventCancelled) })

	b.liveConfig = cfg
	if apply {
		return cfg.Apply()
	}
	return cfg.Test()
}

func (b *Backend) configureHead(ch *wlproto.ConfigurationHead, p *matching.Pairing) error {
	out := p.Output
	if out.Mode != nil && out.Mode.Kind == profile.ModeWiHeReCustom {
		if err := ch.SetCustomMode(out.Mode.Width, out.Mode.Height, out.Mode.Refresh); err != nil {
			return fmt.Errorf("backend: set custom mode: %w", err)
		}
	} else if p.Mode != nil {
		if modeProxy, ok := b.modeProxyByID[p.Mode.ID]; ok {
			if err := ch.SetMode(modeProxy); err != nil {
				return fmt.Errorf("backend: set mode: %w", err)
			}
		}
	}
	if out.Position != nil {
		if err := ch.SetPosition(out.Position.X, out.Position.Y); err != nil {
			return fmt.Errorf("backend: set position: %w", err)
		}
	}
	if out.Scale != nil {
		if err := ch.SetScale(floatToFixed(*out.Scale)); err != nil {
			return fmt.Errorf("backend: set scale: %w", err)
		}
	}
	if out.Transform != nil {
		if err := ch.SetTransform(int32(*out.Transform)); err != nil {
			return fmt.Errorf("backend: set transform: %w", err)
		}
	}
	if out.AdaptiveSync != nil {
		if !b.manager.SupportsAdaptiveSync() {
			logger.Warnf("backend: server speaks %s version %d, skipping adaptive-sync for %s",
				wlproto.ManagerInterface, b.manager.Version(), p.Head.Head.Name)
			return nil
		}
		state := uint32(0)
		if *out.AdaptiveSync == store.AdaptiveSyncEnabled {
			state = 1
		}
		if err := ch.SetAdaptiveSync(state); err != nil {
			return fmt.Errorf("backend: set adaptive sync: %w", err)
		}
	}
	return nil
}

func (b *Backend) onConfigResolved(kind daemon.EventKind) {
	if b.liveConfig != nil {
		_ = b.liveConfig.Destroy()
		b.liveConfig = nil
	}
	b.emit(kind)
}

func fixedToFloat(f wl.Fixed) float64 { return float64(f) / 256.0 }
func floatToFixed(v float64) wl.Fixed { return wl.Fixed(v * 256.0) }
