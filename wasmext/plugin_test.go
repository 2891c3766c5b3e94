package wasmext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/xr-bridge/config"
	"github.com/wippyai/xr-bridge/extension"
	_ "github.com/wippyai/xr-bridge/graphics/software"
	"github.com/wippyai/xr-bridge/openxr"
	"github.com/wippyai/xr-bridge/xr"
	"github.com/wippyai/xr-bridge/xr/sim"
)

func uleb(n uint32) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func name(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func section(id byte, content ...[]byte) []byte {
	var body []byte
	for _, c := range content {
		body = append(body, c...)
	}
	out := append([]byte{id}, uleb(uint32(len(body)))...)
	return append(out, body...)
}

func vec(items ...[]byte) []byte {
	out := uleb(uint32(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func body(code ...byte) []byte {
	fn := append([]byte{0x00}, code...) // no locals
	return append(uleb(uint32(len(fn))), fn...)
}

// testModule builds a plugin that:
//   - counts on_state_focused calls in the exported global "calls"
//   - consumes reference-space-change events in on_event
//   - logs "hello" at info level from on_instance_created
//
// and requests the given extensions.
func testModule(extensions string) []byte {
	return loggingModule(extensions, 0)
}

// loggingModule is testModule with on_instance_created logging at level.
// level must fit a single signed LEB128 byte.
func loggingModule(extensions string, level int8) []byte {
	const (
		i32 = 0x7f
		i64 = 0x7e
	)
	m := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	m = append(m, section(1, vec(
		[]byte{0x60, 0x00, 0x00},
		[]byte{0x60, 0x01, i32, 0x01, i32},
		[]byte{0x60, 0x01, i64, 0x00},
		[]byte{0x60, 0x03, i32, i32, i32, 0x00},
	))...)

	m = append(m, section(2, vec(
		append(append(name(HostModule), name("log")...), 0x00, 0x03),
	))...)

	m = append(m, section(3, vec([]byte{0x00}, []byte{0x01}, []byte{0x02}))...)
	m = append(m, section(5, vec([]byte{0x00, 0x01}))...)
	m = append(m, section(6, vec([]byte{i32, 0x01, 0x41, 0x00, 0x0b}))...)

	m = append(m, section(7, vec(
		append(name("memory"), 0x02, 0x00),
		append(name("calls"), 0x03, 0x00),
		append(name("on_state_focused"), 0x00, 0x01),
		append(name("on_event"), 0x00, 0x02),
		append(name("on_instance_created"), 0x00, 0x03),
	))...)

	refSpaceChange := byte(EventReferenceSpaceChangePending)
	m = append(m, section(10, vec(
		// calls = calls + 1
		body(0x23, 0x00, 0x41, 0x01, 0x6a, 0x24, 0x00, 0x0b),
		// return code == reference space change
		body(0x20, 0x00, 0x41, refSpaceChange, 0x46, 0x0b),
		// log(level, 0, 5)
		body(0x41, byte(level)&0x7f, 0x41, 0x00, 0x41, 0x05, 0x10, 0x00, 0x0b),
	))...)

	m = append(m, section(11, vec(
		append([]byte{0x00, 0x41, 0x00, 0x0b}, name("hello")...),
	))...)

	if extensions != "" {
		m = append(m, section(0, name(ExtensionsSection), []byte(extensions))...)
	}
	return m
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e
}

func calls(t *testing.T, p *Plugin) uint64 {
	t.Helper()
	g := p.module.ExportedGlobal("calls")
	if g == nil {
		t.Fatal("calls global not exported")
	}
	return g.Get()
}

func TestPlugin_Hooks(t *testing.T) {
	e := newEngine(t)
	p, err := e.Load(context.Background(), "counter", testModule(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p.OnStateFocused()
	p.OnStateFocused()
	p.OnStateVisible() // not exported
	if got := calls(t, p); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}

	if !p.OnEventPolled(&xr.EventDataReferenceSpaceChangePending{}) {
		t.Error("reference space change should be consumed")
	}
	if p.OnEventPolled(&xr.EventDataEventsLost{}) {
		t.Error("events lost should pass through")
	}
}

func TestPlugin_GuestLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	e := newEngine(t)
	p, err := e.Load(context.Background(), "greeter", testModule(""))
	if err != nil {
		t.Fatal(err)
	}
	p.OnInstanceCreated(xr.Instance(7))

	entries := logs.FilterMessage("hello").All()
	if len(entries) != 1 {
		t.Fatalf("entries = %+v", logs.All())
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].ContextMap()["plugin"] != "greeter" {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestPlugin_GuestLogLevelClamped(t *testing.T) {
	tests := []struct {
		name  string
		level int8
		want  zapcore.Level
	}{
		{"panic", int8(zapcore.PanicLevel), zapcore.ErrorLevel},
		{"fatal", int8(zapcore.FatalLevel), zapcore.ErrorLevel},
		{"above fatal", 40, zapcore.ErrorLevel},
		{"below debug", -20, zapcore.DebugLevel},
		{"warn", int8(zapcore.WarnLevel), zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			SetLogger(zap.New(core))
			defer SetLogger(zap.NewNop())

			e := newEngine(t)
			p, err := e.Load(context.Background(), "loud", loggingModule("", tt.level))
			if err != nil {
				t.Fatal(err)
			}
			p.OnInstanceCreated(xr.Instance(1))
			p.OnInstanceCreated(xr.Instance(2))

			entries := logs.FilterMessage("hello").All()
			if len(entries) != 2 {
				t.Fatalf("entries = %+v", logs.All())
			}
			if entries[0].Level != tt.want {
				t.Errorf("level = %v, want %v", entries[0].Level, tt.want)
			}
		})
	}
}

func TestPlugin_Extensions(t *testing.T) {
	e := newEngine(t)
	p, err := e.Load(context.Background(), "ext", testModule("# comment\nXR_FB_passthrough?\n\nXR_KHR_mandatory\n"))
	if err != nil {
		t.Fatal(err)
	}
	req := p.RequestedExtensions()
	if len(req) != 2 {
		t.Fatalf("requested = %v", req)
	}
	if req["XR_KHR_mandatory"] != nil {
		t.Error("XR_KHR_mandatory should be mandatory")
	}
	if req["XR_FB_passthrough"] == nil {
		t.Fatal("XR_FB_passthrough should be optional")
	}
	if p.Enabled("XR_FB_passthrough") {
		t.Error("optional extension reported enabled before negotiation")
	}
	*req["XR_FB_passthrough"] = true
	if !p.Enabled("XR_FB_passthrough") || p.Enabled("XR_other") {
		t.Error("Enabled mismatch")
	}
}

func TestEngine_LoadErrors(t *testing.T) {
	e := newEngine(t)
	if _, err := e.Load(context.Background(), "bad", []byte("not wasm")); err == nil {
		t.Error("invalid module accepted")
	}
	if _, err := e.Load(context.Background(), "", testModule("")); err == nil {
		t.Error("unnamed plugin accepted")
	}
	if _, err := e.Load(context.Background(), "twice", testModule("")); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Load(context.Background(), "twice", testModule("")); err == nil {
		t.Error("duplicate plugin name accepted")
	}
}

func TestEngine_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recenter.wasm")
	if err := os.WriteFile(path, testModule(""), 0o644); err != nil {
		t.Fatal(err)
	}
	e := newEngine(t)
	p, err := e.LoadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if p.Name() != "recenter" {
		t.Errorf("name = %q", p.Name())
	}
	if err := p.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	p.OnStateFocused()
}

func TestEventCode(t *testing.T) {
	tests := []struct {
		ev   xr.Event
		want int32
	}{
		{&xr.EventDataEventsLost{}, EventEventsLost},
		{&xr.EventDataInstanceLossPending{}, EventInstanceLossPending},
		{&xr.EventDataSessionStateChanged{}, EventSessionStateChanged},
		{&xr.EventDataReferenceSpaceChangePending{}, EventReferenceSpaceChangePending},
		{&xr.EventDataInteractionProfileChanged{}, EventInteractionProfileChanged},
		{&xr.EventDataVisibilityMaskChanged{}, EventVisibilityMaskChanged},
	}
	for _, tt := range tests {
		if got := EventCode(tt.ev); got != tt.want {
			t.Errorf("EventCode(%s) = %d, want %d", tt.ev.EventName(), got, tt.want)
		}
	}
}

type recenterHost struct {
	openxr.NopHost
	recentered int
}

func (h *recenterHost) OnPoseRecentered() { h.recentered++ }

func TestPlugin_InBridge(t *testing.T) {
	e := newEngine(t)
	p, err := e.Load(context.Background(), "bridge", testModule("XR_MND_headless?\n"))
	if err != nil {
		t.Fatal(err)
	}

	registry := extension.NewRegistry()
	if err := registry.Register(p); err != nil {
		t.Fatal(err)
	}
	host := &recenterHost{}
	opts := openxr.DefaultOptions()
	opts.Registry = registry
	opts.Host = host

	rt := sim.New(sim.DefaultConfig())
	b := openxr.New(rt, config.Default(), opts)
	t.Cleanup(b.Finish)

	if err := b.Initialize(""); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := b.InitializeSession(); err != nil {
		t.Fatal(err)
	}
	b.Process()
	if got := calls(t, p); got != 1 {
		t.Errorf("on_state_focused ran %d times", got)
	}

	rt.PushEvent(&xr.EventDataReferenceSpaceChangePending{Session: b.Session(), PoseValid: true})
	b.Process()
	if host.recentered != 0 {
		t.Error("plugin did not consume the event")
	}
}
