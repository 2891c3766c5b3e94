package wasmext

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/extension"
	"github.com/wippyai/xr-bridge/xr"
)

// ExtensionsSection is the custom section listing requested extensions.
const ExtensionsSection = "xr_extensions"

// Event codes passed to on_event.
const (
	EventUnknown int32 = iota
	EventEventsLost
	EventInstanceLossPending
	EventSessionStateChanged
	EventReferenceSpaceChangePending
	EventInteractionProfileChanged
	EventVisibilityMaskChanged
)

// EventCode maps a runtime event to its on_event code.
func EventCode(ev xr.Event) int32 {
	switch ev.(type) {
	case *xr.EventDataEventsLost:
		return EventEventsLost
	case *xr.EventDataInstanceLossPending:
		return EventInstanceLossPending
	case *xr.EventDataSessionStateChanged:
		return EventSessionStateChanged
	case *xr.EventDataReferenceSpaceChangePending:
		return EventReferenceSpaceChangePending
	case *xr.EventDataInteractionProfileChanged:
		return EventInteractionProfileChanged
	case *xr.EventDataVisibilityMaskChanged:
		return EventVisibilityMaskChanged
	}
	return EventUnknown
}

// Plugin is an extension.Wrapper backed by a WebAssembly module.
// Hooks run on the bridge's thread.
type Plugin struct {
	extension.Base

	ctx       context.Context
	engine    *Engine
	module    api.Module
	name      string
	requested map[string]*bool
	failed    map[string]bool
}

var _ extension.Wrapper = (*Plugin)(nil)

// LoadFile loads a plugin from a .wasm file, named after the file.
func (e *Engine) LoadFile(ctx context.Context, path string) (*Plugin, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhasePlugin, errors.KindNotFound, err, "read "+path)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return e.Load(ctx, name, b)
}

// Load compiles and instantiates a plugin. ctx is kept for hook calls.
func (e *Engine) Load(ctx context.Context, name string, wasm []byte) (*Plugin, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhasePlugin, "plugin needs a name")
	}
	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.New(errors.PhasePlugin, errors.KindInvalidData).
			Path(name).
			Cause(err).
			Detail("compile failed").
			Build()
	}

	p := &Plugin{
		ctx:       ctx,
		engine:    e,
		name:      name,
		requested: make(map[string]*bool),
		failed:    make(map[string]bool),
	}
	for _, sec := range compiled.CustomSections() {
		if sec.Name() == ExtensionsSection {
			p.parseExtensions(sec.Data())
		}
	}

	if err := e.register(p); err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}
	mod, err := e.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		e.unregister(name)
		_ = compiled.Close(ctx)
		return nil, errors.New(errors.PhasePlugin, errors.KindRuntimeCall).
			Path(name).
			Cause(err).
			Detail("instantiate failed").
			Build()
	}
	p.module = mod

	Logger().Info("plugin loaded",
		zap.String("plugin", name),
		zap.Int("extensions", len(p.requested)))
	return p, nil
}

func (p *Plugin) parseExtensions(data []byte) {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, "?") {
			p.requested[strings.TrimSuffix(line, "?")] = new(bool)
		} else {
			p.requested[line] = nil
		}
	}
}

// Name returns the plugin's module name.
func (p *Plugin) Name() string { return p.name }

// Close unloads the plugin module.
func (p *Plugin) Close(ctx context.Context) error {
	p.engine.unregister(p.name)
	if p.module == nil {
		return nil
	}
	return p.module.Close(ctx)
}

// Enabled reports whether an optional extension the plugin requested was
// enabled. Mandatory extensions are enabled whenever an instance exists.
func (p *Plugin) Enabled(name string) bool {
	flag, ok := p.requested[name]
	if !ok {
		return false
	}
	return flag == nil || *flag
}

func (p *Plugin) RequestedExtensions() map[string]*bool {
	return p.requested
}

// call invokes an export if present. A trapping export is logged once and
// not called again.
func (p *Plugin) call(export string, params ...uint64) ([]uint64, bool) {
	if p.module == nil || p.failed[export] {
		return nil, false
	}
	fn := p.module.ExportedFunction(export)
	if fn == nil {
		return nil, false
	}
	results, err := fn.Call(p.ctx, params...)
	if err != nil {
		p.failed[export] = true
		Logger().Warn("plugin hook failed",
			zap.String("plugin", p.name),
			zap.String("export", export),
			zap.Error(err))
		return nil, false
	}
	return results, true
}

func (p *Plugin) OnInstanceCreated(instance xr.Instance) {
	p.call("on_instance_created", api.EncodeI64(int64(instance)))
}

func (p *Plugin) OnInstanceDestroyed() { p.call("on_instance_destroyed") }

func (p *Plugin) OnSessionCreated(session xr.Session) {
	p.call("on_session_created", api.EncodeI64(int64(session)))
}

func (p *Plugin) OnSessionDestroyed() { p.call("on_session_destroyed") }

func (p *Plugin) OnStateIdle()         { p.call("on_state_idle") }
func (p *Plugin) OnStateReady()        { p.call("on_state_ready") }
func (p *Plugin) OnStateSynchronized() { p.call("on_state_synchronized") }
func (p *Plugin) OnStateVisible()      { p.call("on_state_visible") }
func (p *Plugin) OnStateFocused()      { p.call("on_state_focused") }
func (p *Plugin) OnStateStopping()     { p.call("on_state_stopping") }
func (p *Plugin) OnStateLossPending()  { p.call("on_state_loss_pending") }
func (p *Plugin) OnStateExiting()      { p.call("on_state_exiting") }

func (p *Plugin) OnPreRender() { p.call("on_pre_render") }
func (p *Plugin) OnProcess()   { p.call("on_process") }

func (p *Plugin) OnEventPolled(ev xr.Event) bool {
	results, ok := p.call("on_event", api.EncodeI32(EventCode(ev)))
	return ok && len(results) == 1 && api.DecodeI32(results[0]) != 0
}
