package wasmext

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/xr-bridge/errors"
)

// HostModule is the import namespace plugins link against.
const HostModule = "xr_bridge"

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages caps each plugin's memory in 64KB pages. 0 keeps the
	// wazero default.
	MemoryLimitPages uint32
}

// Engine compiles and instantiates plugins in one wazero runtime.
// Thread-safe.
type Engine struct {
	runtime wazero.Runtime
	plugins map[string]*Plugin
	mu      sync.RWMutex
}

// NewEngine creates an engine and instantiates the host module.
func NewEngine(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig().WithCustomSections(true)
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	e := &Engine{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		plugins: make(map[string]*Plugin),
	}

	i32 := api.ValueTypeI32
	_, err := e.runtime.NewHostModuleBuilder(HostModule).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostLog), []api.ValueType{i32, i32, i32}, nil).
		Export("log").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostExtensionEnabled), []api.ValueType{i32, i32}, []api.ValueType{i32}).
		Export("extension_enabled").
		Instantiate(ctx)
	if err != nil {
		_ = e.runtime.Close(ctx)
		return nil, errors.Wrap(errors.PhasePlugin, errors.KindRuntimeCall, err, "instantiate host module")
	}
	return e, nil
}

// Close closes every plugin and the runtime.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	e.plugins = make(map[string]*Plugin)
	e.mu.Unlock()
	return e.runtime.Close(ctx)
}

func (e *Engine) plugin(name string) *Plugin {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.plugins[name]
}

func (e *Engine) register(p *Plugin) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.plugins[p.name]; ok {
		return errors.AlreadyInitialized(errors.PhasePlugin, fmt.Sprintf("plugin %q", p.name))
	}
	e.plugins[p.name] = p
	return nil
}

func (e *Engine) unregister(name string) {
	e.mu.Lock()
	delete(e.plugins, name)
	e.mu.Unlock()
}

func readString(mod api.Module, ptr, length uint32) (string, bool) {
	mem := mod.Memory()
	if mem == nil {
		return "", false
	}
	b, ok := mem.Read(ptr, length)
	if !ok {
		return "", false
	}
	return string(b), true
}

// guestLevel maps a guest level onto debug..error. Guests never reach the
// panic and fatal levels, which terminate the host.
func guestLevel(v int32) zapcore.Level {
	switch {
	case v < int32(zapcore.DebugLevel):
		return zapcore.DebugLevel
	case v > int32(zapcore.ErrorLevel):
		return zapcore.ErrorLevel
	}
	return zapcore.Level(v)
}

// hostLog writes a guest message at the given zap level.
func (e *Engine) hostLog(_ context.Context, mod api.Module, stack []uint64) {
	level := guestLevel(api.DecodeI32(stack[0]))
	msg, ok := readString(mod, api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
	if !ok {
		Logger().Warn("plugin log out of bounds", zap.String("plugin", mod.Name()))
		return
	}
	if ce := Logger().Check(level, msg); ce != nil {
		ce.Write(zap.String("plugin", mod.Name()))
	}
}

func (e *Engine) hostExtensionEnabled(_ context.Context, mod api.Module, stack []uint64) {
	name, ok := readString(mod, api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
	p := e.plugin(mod.Name())
	if !ok || p == nil {
		stack[0] = 0
		return
	}
	if p.Enabled(name) {
		stack[0] = 1
	} else {
		stack[0] = 0
	}
}
