// Package wlproto binds the wlr-output-management-v1 Wayland protocol
// objects directly against wlturbo's low-level request/event primitives:
// no generated stubs, just the opcode tables the protocol XML defines.
package wlproto

import (
	"github.com/bnema/wlturbo/wl"
)

// Interface names as advertised on the registry.
const (
	ManagerInterface           = "zwlr_output_manager_v1"
	HeadInterface              = "zwlr_output_head_v1"
	ModeInterface              = "zwlr_output_mode_v1"
	ConfigurationInterface     = "zwlr_output_configuration_v1"
	ConfigurationHeadInterface = "zwlr_output_configuration_head_v1"
)

// Manager is the zwlr_output_manager_v1 global: the entry point for
// enumerating heads/modes and creating configurations.
type Manager struct {
	wl.BaseProxy
	version uint32

	headHandler     func(*Head)
	doneHandler     func(serial uint32)
	finishedHandler func()
}

// NewManager wraps a freshly bound manager object. version is the
// version negotiated at bind time; it gates adaptive-sync support.
func NewManager(ctx *wl.Context, version uint32) *Manager {
	m := &Manager{version: version}
	m.SetContext(ctx)
	return m
}

// Version reports the negotiated protocol version (3 or 4).
func (m *Manager) Version() uint32 { return m.version }

// SupportsAdaptiveSync reports whether the negotiated version gates in
// adaptive-sync support (version >= 4).
func (m *Manager) SupportsAdaptiveSync() bool { return m.version >= 4 }

func (m *Manager) SetHeadHandler(h func(*Head)) { m.headHandler = h }
func (m *Manager) SetDoneHandler(h func(serial uint32)) { m.doneHandler = h }
func (m *Manager) SetFinishedHandler(h func()) { m.finishedHandler = h }

// CreateConfiguration requests a new configuration object against the
// given serial, the most recent Done event's serial.
func (m *Manager) CreateConfiguration(serial uint32) (*Configuration, error) {
	cfg := NewConfiguration(m.Context())
	const opcode = 0 // create_configuration
	if err := m.Context().SendRequest(m, opcode, cfg, serial); err != nil {
		m.Context().Unregister(cfg)
		return nil, err
	}
	return cfg, nil
}

// Stop requests the compositor stop sending events on this manager.
func (m *Manager) Stop() error {
	const opcode = 1 // stop
	return m.Context().SendRequest(m, opcode)
}

func (m *Manager) Destroy() error {
	m.Context().Unregister(m)
	return nil
}

// Dispatch routes manager events to their handlers.
func (m *Manager) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // head
		headID := event.Uint32()
		head := NewHead(m.Context())
		head.SetID(headID)
		m.Context().Register(head)
		if m.headHandler != nil {
			m.headHandler(head)
		}
	case 1: // done
		serial := event.Uint32()
		if m.doneHandler != nil {
			m.doneHandler(serial)
		}
	case 2: // finished
		if m.finishedHandler != nil {
			m.finishedHandler()
		}
		m.Context().Unregister(m)
	}
}

// Head is the zwlr_output_head_v1 proxy for one physical output.
type Head struct {
	wl.BaseProxy
	alive bool

	nameHandler         func(string)
	descriptionHandler  func(string)
	physicalSizeHandler func(w, h int32)
	modeHandler         func(*Mode)
	enabledHandler      func(enabled int32)
	currentModeHandler  func(*Mode)
	positionHandler     func(x, y int32)
	transformHandler    func(transform int32)
	scaleHandler        func(scale wl.Fixed)
	makeHandler         func(string)
	modelHandler        func(string)
	serialNumberHandler func(string)
	adaptiveSyncHandler func(state uint32)
	finishedHandler     func()
}

func NewHead(ctx *wl.Context) *Head {
	h := &Head{alive: true}
	h.SetContext(ctx)
	return h
}

// IsAlive reports whether the compositor has not yet sent Finished for
// this head. A dead handle must never be referenced in a new
// configuration request.
func (h *Head) IsAlive() bool { return h.alive }

func (h *Head) SetNameHandler(f func(string)) { h.nameHandler = f }
func (h *Head) SetDescriptionHandler(f func(string)) { h.descriptionHandler = f }
func (h *Head) SetPhysicalSizeHandler(f func(w, h int32)) { h.physicalSizeHandler = f }
func (h *Head) SetModeHandler(f func(*Mode)) { h.modeHandler = f }
func (h *Head) SetEnabledHandler(f func(enabled int32)) { h.enabledHandler = f }
func (h *Head) SetCurrentModeHandler(f func(*Mode)) { h.currentModeHandler = f }
func (h *Head) SetPositionHandler(f func(x, y int32)) { h.positionHandler = f }
func (h *Head) SetTransformHandler(f func(transform int32)) { h.transformHandler = f }
func (h *Head) SetScaleHandler(f func(scale wl.Fixed)) { h.scaleHandler = f }
func (h *Head) SetMakeHandler(f func(string)) { h.makeHandler = f }
func (h *Head) SetModelHandler(f func(string)) { h.modelHandler = f }
func (h *Head) SetSerialNumberHandler(f func(string)) { h.serialNumberHandler = f }
func (h *Head) SetAdaptiveSyncHandler(f func(state uint32)) { h.adaptiveSyncHandler = f }
func (h *Head) SetFinishedHandler(f func()) { h.finishedHandler = f }

// Release is valid only since version 3; callers on an older manager
// must not call it.
func (h *Head) Release() error {
	const opcode = 0
	err := h.Context().SendRequest(h, opcode)
	h.Context().Unregister(h)
	return err
}

func (h *Head) Destroy() error {
	h.Context().Unregister(h)
	return nil
}

// modeLookup resolves a proxy id seen in a current_mode event to
// its Mode object; the caller (the backend adapter) keeps this index
// since the low-level proxy table doesn't expose reverse lookup here.
type modeLookup interface {
	ModeByProxyID(id uint32) *Mode
}

var lookup modeLookup

// SetModeLookup installs the backend's proxy-id index so current_mode
// events (which only carry a bare object id on the wire) can resolve to
// a live Mode.
func SetModeLookup(l modeLookup) { lookup = l }

func (h *Head) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // name
		if h.nameHandler != nil {
			h.nameHandler(event.String())
		}
	case 1: // description
		if h.descriptionHandler != nil {
			h.descriptionHandler(event.String())
		}
	case 2: // physical_size
		w, ht := event.Int32(), event.Int32()
		if h.physicalSizeHandler != nil {
			h.physicalSizeHandler(w, ht)
		}
	case 3: // mode
		id := event.Uint32()
		mode := NewMode(h.Context())
		mode.SetID(id)
		h.Context().Register(mode)
		if h.modeHandler != nil {
			h.modeHandler(mode)
		}
	case 4: // enabled
		if h.enabledHandler != nil {
			h.enabledHandler(event.Int32())
		}
	case 5: // current_mode
		id := event.Uint32()
		if h.currentModeHandler != nil && lookup != nil {
			if m := lookup.ModeByProxyID(id); m != nil {
				h.currentModeHandler(m)
			}
		}
	case 6: // position
		x, y := event.Int32(), event.Int32()
		if h.positionHandler != nil {
			h.positionHandler(x, y)
		}
	case 7: // transform
		if h.transformHandler != nil {
			h.transformHandler(event.Int32())
		}
	case 8: // scale
		raw := event.Uint32()
		if raw <= 0x7FFFFFFF && h.scaleHandler != nil {
			h.scaleHandler(wl.Fixed(raw))
		}
	case 9: // finished
		h.alive = false
		if h.finishedHandler != nil {
			h.finishedHandler()
		}
		h.Context().Unregister(h)
	case 10: // make, since version 2
		if h.makeHandler != nil {
			h.makeHandler(event.String())
		}
	case 11: // model, since version 2
		if h.modelHandler != nil {
			h.modelHandler(event.String())
		}
	case 12: // serial_number, since version 2
		if h.serialNumberHandler != nil {
			h.serialNumberHandler(event.String())
		}
	case 13: // adaptive_sync, since version 4
		if h.adaptiveSyncHandler != nil {
			h.adaptiveSyncHandler(event.Uint32())
		}
	}
}

// Mode is the zwlr_output_mode_v1 proxy for one supported mode.
type Mode struct {
	wl.BaseProxy
	alive bool

	sizeHandler      func(w, h int32)
	refreshHandler   func(mhz int32)
	preferredHandler func()
	finishedHandler  func()
}

func NewMode(ctx *wl.Context) *Mode {
	m := &Mode{alive: true}
	m.SetContext(ctx)
	return m
}

func (m *Mode) IsAlive() bool { return m.alive }

func (m *Mode) SetSizeHandler(f func(w, h int32)) { m.sizeHandler = f }
func (m *Mode) SetRefreshHandler(f func(mhz int32)) { m.refreshHandler = f }
func (m *Mode) SetPreferredHandler(f func()) { m.preferredHandler = f }
func (m *Mode) SetFinishedHandler(f func()) { m.finishedHandler = f }

func (m *Mode) Release() error {
	const opcode = 0 // release, since version 3
	err := m.Context().SendRequest(m, opcode)
	m.Context().Unregister(m)
	return err
}

func (m *Mode) Destroy() error {
	m.Context().Unregister(m)
	return nil
}

func (m *Mode) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // size
		w, h := event.Int32(), event.Int32()
		if m.sizeHandler != nil {
			m.sizeHandler(w, h)
		}
	case 1: // refresh
		if m.refreshHandler != nil {
			m.refreshHandler(event.Int32())
		}
	case 2: // preferred
		if m.preferredHandler != nil {
			m.preferredHandler()
		}
	case 3: // finished
		m.alive = false
		if m.finishedHandler != nil {
			m.finishedHandler()
		}
		m.Context().Unregister(m)
	}
}

// Configuration is a single-use zwlr_output_configuration_v1 object: one
// test-or-apply attempt.
type Configuration struct {
	wl.BaseProxy

	succeededHandler func()
	failedHandler    func()
	cancelledHandler func()
}

func NewConfiguration(ctx *wl.Context) *Configuration {
	c := &Configuration{}
	c.SetContext(ctx)
	return c
}

func (c *Configuration) SetSucceededHandler(f func()) { c.succeededHandler = f }
func (c *Configuration) SetFailedHandler(f func()) { c.failedHandler = f }
func (c *Configuration) SetCancelledHandler(f func()) { c.cancelledHandler = f }

func (c *Configuration) EnableHead(head *Head) (*ConfigurationHead, error) {
	ch := NewConfigurationHead(c.Context())
	const opcode = 0 // enable_head
	if err := c.Context().SendRequest(c, opcode, ch, head); err != nil {
		c.Context().Unregister(ch)
		return nil, err
	}
	return ch, nil
}

func (c *Configuration) DisableHead(head *Head) error {
	const opcode = 1 // disable_head
	return c.Context().SendRequest(c, opcode, head)
}

func (c *Configuration) Apply() error {
	const opcode = 2
	return c.Context().SendRequest(c, opcode)
}

func (c *Configuration) Test() error {
	const opcode = 3
	return c.Context().SendRequest(c, opcode)
}

func (c *Configuration) Destroy() error {
	const opcode = 4
	err := c.Context().SendRequest(c, opcode)
	c.Context().Unregister(c)
	return err
}

func (c *Configuration) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0:
		if c.succeededHandler != nil {
			c.succeededHandler()
		}
	case 1:
		if c.failedHandler != nil {
			c.failedHandler()
		}
	case 2:
		if c.cancelledHandler != nil {
			c.cancelledHandler()
		}
	}
}

// ConfigurationHead carries the per-head property requests for one
// configuration attempt.
type ConfigurationHead struct {
	wl.BaseProxy
}

func NewConfigurationHead(ctx *wl.Context) *ConfigurationHead {
	h := &ConfigurationHead{}
	h.SetContext(ctx)
	return h
}

func (h *ConfigurationHead) SetMode(mode *Mode) error {
	const opcode = 0
	return h.Context().SendRequest(h, opcode, mode)
}

func (h *ConfigurationHead) SetCustomMode(width, height, refresh int32) error {
	const opcode = 1
	return h.Context().SendRequest(h, opcode, width, height, refresh)
}

func (h *ConfigurationHead) SetPosition(x, y int32) error {
	const opcode = 2
	return h.Context().SendRequest(h, opcode, x, y)
}

func (h *ConfigurationHead) SetTransform(transform int32) error {
	const opcode = 3
	return h.Context().SendRequest(h, opcode, transform)
}

func (h *ConfigurationHead) SetScale(scale wl.Fixed) error {
	const opcode = 4
	return h.Context().SendRequest(h, opcode, scale)
}

// SetAdaptiveSync is only valid on manager version >= 4.
func (h *ConfigurationHead) SetAdaptiveSync(state uint32) error {
	const opcode = 5
	return h.Context().SendRequest(h, opcode, state)
}

func (h *ConfigurationHead) Destroy() error {
	h.Context().Unregister(h)
	return nil
}

func (h *ConfigurationHead) Dispatch(event *wl.Event) {}
