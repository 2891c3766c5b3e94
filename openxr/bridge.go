package openxr

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/xr-bridge/config"
	"github.com/wippyai/xr-bridge/extension"
	"github.com/wippyai/xr-bridge/graphics"
	"github.com/wippyai/xr-bridge/handle"
	"github.com/wippyai/xr-bridge/xr"
)

// DefaultImageWaitTimeout bounds xrWaitSwapchainImage.
const DefaultImageWaitTimeout xr.Duration = 17000000

// maxDisplayPeriod is the largest predicted display period taken at face value.
const maxDisplayPeriod xr.Duration = 500000000

// Options configures bridge behavior.
type Options struct {
	// Registry receives the graphics adapter and the bridge's own wrappers.
	// A new registry is created when nil.
	Registry *extension.Registry
	// Host receives state notifications. NopHost when nil.
	Host             Host
	EngineName       string
	ImageWaitTimeout xr.Duration
}

// DefaultOptions returns default bridge configuration.
func DefaultOptions() Options {
	return Options{
		EngineName:       "xr-bridge",
		ImageWaitTimeout: DefaultImageWaitTimeout,
	}
}

// Bridge drives one OpenXR instance and at most one session on behalf of a
// host engine. All methods must be called from the host's main thread.
type Bridge struct {
	rt       xr.Runtime
	cfg      config.Settings
	opts     Options
	registry *extension.Registry
	host     Host
	adapter  graphics.Adapter
	optional *controllerExtensions

	instance          xr.Instance
	enabledExtensions []string
	system            xr.SystemID
	systemProps       xr.SystemProperties
	instanceProps     xr.InstanceProperties
	viewConfigViews   []xr.ViewConfigurationView

	session          xr.Session
	state            xr.SessionState
	running          bool
	playSpace        xr.Space
	viewSpace        xr.Space
	swapchainFormats []int64
	swapchain        *swapchain

	frame           frameState
	views           []xr.View
	projectionViews []xr.CompositionLayerProjectionView
	headConfidence  TrackingConfidence

	trackers   *handle.Store[*tracker]
	actionSets *handle.Store[*actionSet]
	actions    *handle.Store[*action]
	profiles   *handle.Store[*profile]
}

// New creates a bridge over rt. Settings are read once, here.
func New(rt xr.Runtime, cfg config.Settings, opts Options) *Bridge {
	if opts.Registry == nil {
		opts.Registry = extension.NewRegistry()
	}
	if opts.Host == nil {
		opts.Host = NopHost{}
	}
	if opts.EngineName == "" {
		opts.EngineName = DefaultOptions().EngineName
	}
	if opts.ImageWaitTimeout <= 0 {
		opts.ImageWaitTimeout = DefaultImageWaitTimeout
	}

	b := &Bridge{
		rt:         rt,
		cfg:        cfg,
		opts:       opts,
		registry:   opts.Registry,
		host:       opts.Host,
		optional:   newControllerExtensions(),
		trackers:   handle.NewStore[*tracker](handle.KindTracker),
		actionSets: handle.NewStore[*actionSet](handle.KindActionSet),
		actions:    handle.NewStore[*action](handle.KindAction),
		profiles:   handle.NewStore[*profile](handle.KindProfile),
	}
	b.trackers.Subscribe(recordLog{})
	b.actionSets.Subscribe(recordLog{})
	b.actions.Subscribe(recordLog{})
	b.profiles.Subscribe(recordLog{})
	if err := b.registry.Register(b.optional); err != nil {
		Logger().Warn("controller extensions not registered", zap.Error(err))
	}
	return b
}

// NewWithDefaults creates a bridge with default options.
func NewWithDefaults(rt xr.Runtime, cfg config.Settings) *Bridge {
	return New(rt, cfg, DefaultOptions())
}

func (b *Bridge) Runtime() xr.Runtime                   { return b.rt }
func (b *Bridge) Settings() config.Settings             { return b.cfg }
func (b *Bridge) Registry() *extension.Registry         { return b.registry }
func (b *Bridge) Adapter() graphics.Adapter             { return b.adapter }
func (b *Bridge) Instance() xr.Instance                 { return b.instance }
func (b *Bridge) System() xr.SystemID                   { return b.system }
func (b *Bridge) Session() xr.Session                   { return b.session }
func (b *Bridge) State() xr.SessionState                { return b.state }
func (b *Bridge) IsRunning() bool                       { return b.running }
func (b *Bridge) IsInitialized() bool                   { return b.instance != 0 }
func (b *Bridge) PlaySpace() xr.Space                   { return b.playSpace }
func (b *Bridge) ViewSpace() xr.Space                   { return b.viewSpace }
func (b *Bridge) SystemProperties() xr.SystemProperties { return b.systemProps }

// RuntimeName returns the runtime name reported after instance creation.
func (b *Bridge) RuntimeName() string { return b.instanceProps.RuntimeName }

// EnabledExtensions returns the extensions the instance was created with.
func (b *Bridge) EnabledExtensions() []string {
	return append([]string(nil), b.enabledExtensions...)
}

// ViewCount returns the number of views in the configured view configuration.
func (b *Bridge) ViewCount() int { return len(b.viewConfigViews) }

// IsControllerExtensionEnabled reports whether an optional controller
// interaction extension was enabled on the instance.
func (b *Bridge) IsControllerExtensionEnabled(name string) bool {
	return b.optional.enabled(name)
}

// ResultString stringifies a result code through the runtime.
func (b *Bridge) ResultString(res xr.Result) string {
	if b.instance == 0 {
		return fmt.Sprintf("Error code %d", int32(res))
	}
	s, r := b.rt.ResultToString(b.instance, res)
	if r.Failed() {
		return fmt.Sprintf("Error code %d", int32(res))
	}
	return s
}

// logFailure logs a failed runtime call with its stringified result.
func (b *Bridge) logFailure(call string, res xr.Result, fields ...zap.Field) {
	fields = append(fields, zap.String("call", call), zap.String("result", b.ResultString(res)))
	Logger().Error("runtime call failed", fields...)
}

// RecommendedTargetSize returns the render target size for one view.
func (b *Bridge) RecommendedTargetSize() (width, height uint32) {
	if len(b.viewConfigViews) == 0 {
		return 0, 0
	}
	v := b.viewConfigViews[0]
	return v.RecommendedImageRectWidth, v.RecommendedImageRectHeight
}

// Controller interaction extensions the bridge asks for on its own behalf.
var controllerExtensionNames = []string{
	"XR_EXT_hp_mixed_reality_controller",
	"XR_EXT_samsung_odyssey_controller",
	"XR_HTC_vive_cosmos_controller_interaction",
	"XR_HTC_vive_focus3_controller_interaction",
	"XR_HUAWEI_controller_interaction",
}

type controllerExtensions struct {
	extension.Base
	flags map[string]*bool
}

func newControllerExtensions() *controllerExtensions {
	c := &controllerExtensions{flags: make(map[string]*bool, len(controllerExtensionNames))}
	for _, name := range controllerExtensionNames {
		c.flags[name] = new(bool)
	}
	return c
}

func (c *controllerExtensions) Name() string { return "controller-extensions" }

func (c *controllerExtensions) RequestedExtensions() map[string]*bool {
	return c.flags
}

func (c *controllerExtensions) enabled(name string) bool {
	f, ok := c.flags[name]
	return ok && *f
}
