package openxr

import (
	"go.uber.org/zap"

	"github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/graphics"
	"github.com/wippyai/xr-bridge/xr"
)

// Initialize selects the graphics adapter for driver, negotiates extensions,
// creates the instance and loads the system and its view configuration.
// An empty driver uses the configured render driver. On failure the bridge
// stays uninitialized.
func (b *Bridge) Initialize(driver string) error {
	if !b.cfg.Enabled {
		return errors.Unsupported(errors.PhaseInit, "xr is disabled by configuration")
	}
	if b.instance != 0 {
		return errors.AlreadyInitialized(errors.PhaseInit, "instance")
	}
	if driver == "" {
		driver = b.cfg.RenderDriver
	}

	adapter, err := graphics.New(driver, b.rt)
	if err != nil {
		return err
	}
	if err := b.registry.Register(adapter); err != nil {
		return err
	}
	b.adapter = adapter

	if err := b.createInstance(); err != nil {
		b.dropAdapter()
		return err
	}
	if err := b.loadSystem(); err != nil {
		b.destroyInstance()
		b.dropAdapter()
		return err
	}

	Logger().Info("instance initialized",
		zap.String("driver", driver),
		zap.String("runtime", b.instanceProps.RuntimeName),
		zap.String("system", b.systemProps.SystemName),
		zap.Int("views", len(b.viewConfigViews)))
	return nil
}

func (b *Bridge) dropAdapter() {
	if b.adapter == nil {
		return
	}
	b.registry.Unregister(b.adapter)
	b.adapter = nil
}

// enabledExtensionList resolves every requested extension against what the
// runtime supports and returns the names to enable.
func (b *Bridge) enabledExtensionList(supported map[string]bool) ([]string, error) {
	var enabled, missing []string
	for _, req := range b.registry.CollectRequestedExtensions() {
		if supported[req.Name] {
			req.Resolve(true)
			enabled = append(enabled, req.Name)
			continue
		}
		req.Resolve(false)
		if req.Mandatory {
			missing = append(missing, req.Name)
		} else {
			Logger().Debug("optional extension unavailable", zap.String("extension", req.Name))
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingExtensionsError(missing)
	}
	return enabled, nil
}

func (b *Bridge) createInstance() error {
	layers, res := xr.Enumerate(b.rt.EnumerateAPILayerProperties)
	if res.Failed() {
		return errors.RuntimeCall(errors.PhaseInit, errors.KindRuntimeCall, "xrEnumerateApiLayerProperties", res)
	}
	for _, l := range layers {
		Logger().Debug("api layer", zap.String("name", l.LayerName), zap.String("spec", l.SpecVersion.String()))
	}

	exts, res := xr.Enumerate(func(dst []xr.ExtensionProperties) (uint32, xr.Result) {
		return b.rt.EnumerateInstanceExtensionProperties("", dst)
	})
	if res.Failed() {
		return errors.RuntimeCall(errors.PhaseInit, errors.KindRuntimeCall, "xrEnumerateInstanceExtensionProperties", res)
	}
	supported := make(map[string]bool, len(exts))
	for _, e := range exts {
		supported[e.ExtensionName] = true
	}

	enabled, err := b.enabledExtensionList(supported)
	if err != nil {
		return err
	}

	info := &xr.InstanceCreateInfo{
		Next:              b.registry.InstanceCreateChain(nil),
		EnabledExtensions: enabled,
		ApplicationInfo: xr.ApplicationInfo{
			ApplicationName:    b.cfg.ApplicationName,
			ApplicationVersion: 1,
			EngineName:         b.opts.EngineName,
			EngineVersion:      b.cfg.EngineVersionNumber(),
			APIVersion:         xr.CurrentAPIVersion,
		},
	}
	instance, res := b.rt.CreateInstance(info)
	if res.Failed() {
		return errors.New(errors.PhaseInit, errors.KindInstanceCreate).
			Call("xrCreateInstance", res).
			Value(enabled).
			Detail("%d extension(s) requested", len(enabled)).
			Build()
	}
	b.instance = instance
	b.enabledExtensions = enabled
	Logger().Info("enabled extensions", zap.Strings("extensions", enabled))

	var props xr.InstanceProperties
	if res := b.rt.GetInstanceProperties(instance, &props); res.Failed() {
		b.logFailure("xrGetInstanceProperties", res)
	} else {
		b.instanceProps = props
		Logger().Info("runtime",
			zap.String("name", props.RuntimeName),
			zap.String("version", props.RuntimeVersion.String()))
	}

	b.registry.InstanceCreated(instance)
	return nil
}

func (b *Bridge) loadSystem() error {
	formFactor := b.cfg.XRFormFactor()
	system, res := b.rt.GetSystem(b.instance, &xr.SystemGetInfo{FormFactor: formFactor})
	if res.Failed() {
		return errors.NoSystem(formFactor.String(), res)
	}
	b.system = system

	props := xr.SystemProperties{Next: b.registry.SystemPropertiesChain(nil)}
	if res := b.rt.GetSystemProperties(b.instance, system, &props); res.Failed() {
		return errors.RuntimeCall(errors.PhaseInit, errors.KindRuntimeCall, "xrGetSystemProperties", res)
	}
	b.systemProps = props
	Logger().Info("system",
		zap.String("name", props.SystemName),
		zap.Uint32("vendor", props.VendorID),
		zap.Uint32("max_width", props.GraphicsProperties.MaxSwapchainImageWidth),
		zap.Uint32("max_height", props.GraphicsProperties.MaxSwapchainImageHeight),
		zap.Uint32("max_layers", props.GraphicsProperties.MaxLayerCount),
		zap.Bool("orientation_tracking", props.TrackingProperties.OrientationTracking),
		zap.Bool("position_tracking", props.TrackingProperties.PositionTracking))

	viewConfig := b.cfg.XRViewConfiguration()
	types, res := xr.Enumerate(func(dst []xr.ViewConfigurationType) (uint32, xr.Result) {
		return b.rt.EnumerateViewConfigurations(b.instance, system, dst)
	})
	if res.Failed() {
		return errors.RuntimeCall(errors.PhaseInit, errors.KindRuntimeCall, "xrEnumerateViewConfigurations", res)
	}
	found := false
	for _, t := range types {
		if t == viewConfig {
			found = true
			break
		}
	}
	if !found {
		return errors.UnsupportedViewConfig(viewConfig.String())
	}

	views, res := xr.Enumerate(func(dst []xr.ViewConfigurationView) (uint32, xr.Result) {
		return b.rt.EnumerateViewConfigurationViews(b.instance, system, viewConfig, dst)
	})
	if res.Failed() {
		return errors.RuntimeCall(errors.PhaseInit, errors.KindRuntimeCall, "xrEnumerateViewConfigurationViews", res)
	}
	if len(views) == 0 {
		return errors.UnsupportedViewConfig(viewConfig.String())
	}
	b.viewConfigViews = views
	b.views = make([]xr.View, len(views))
	for i := range b.views {
		b.views[i].Pose = xr.IdentityPose
	}
	return nil
}

// Finish tears down the session, then the instance. It is safe to call
// more than once.
func (b *Bridge) Finish() {
	if b.session != 0 {
		b.destroySession()
	}
	if b.instance != 0 {
		b.destroyInstance()
	}
	b.dropAdapter()
}

// destroyInstance frees every input record, then the instance itself.
func (b *Bridge) destroyInstance() {
	b.actions.Clear()
	b.actionSets.Clear()
	b.profiles.Clear()
	b.trackers.Clear()

	b.registry.InstanceDestroyed()
	if res := b.rt.DestroyInstance(b.instance); res.Failed() {
		b.logFailure("xrDestroyInstance", res)
	}
	b.instance = 0
	b.system = 0
	b.enabledExtensions = nil
	b.viewConfigViews = nil
	b.views = nil
	b.systemProps = xr.SystemProperties{}
	b.instanceProps = xr.InstanceProperties{}
}
