package openxr

import (
	"go.uber.org/zap"

	"github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/graphics"
	"github.com/wippyai/xr-bridge/handle"
	"github.com/wippyai/xr-bridge/xr"
)

// swapchain is the main color swapchain. It is created on entering ready.
type swapchain struct {
	handle    xr.Swapchain
	data      graphics.ImageData
	format    int64
	width     uint32
	height    uint32
	samples   uint32
	arraySize uint32

	imageIndex uint32
	// held is set between a successful acquire and its release.
	held bool
	// acquired is set once the held image was waited on.
	acquired bool
	// written is set once the render target was copied into the image.
	written bool
}

// InitializeSession creates the session and its play and view spaces and
// caches the runtime's swapchain formats. The main swapchain is created
// later, when the session becomes ready. On failure everything created here
// is torn down again.
func (b *Bridge) InitializeSession() error {
	if b.instance == 0 {
		return errors.NotInitialized(errors.PhaseSession, "instance")
	}
	if b.session != 0 {
		return errors.AlreadyInitialized(errors.PhaseSession, "session")
	}

	info := &xr.SessionCreateInfo{
		Next:     b.registry.SessionCreateChain(nil),
		SystemID: b.system,
	}
	session, res := b.rt.CreateSession(b.instance, info)
	if res.Failed() {
		return errors.SessionCreate(errors.KindSessionCreate, "xrCreateSession", res, "create session")
	}
	b.session = session
	b.state = xr.SessionStateUnknown
	b.registry.SessionCreated(session)

	if err := b.createSpaces(); err != nil {
		b.destroySession()
		return err
	}

	formats, res := xr.Enumerate(func(dst []int64) (uint32, xr.Result) {
		return b.rt.EnumerateSwapchainFormats(b.session, dst)
	})
	if res.Failed() {
		b.destroySession()
		return errors.SessionCreate(errors.KindRuntimeCall, "xrEnumerateSwapchainFormats", res, "enumerate swapchain formats")
	}
	b.swapchainFormats = formats

	Logger().Info("session created", zap.Int("swapchain_formats", len(formats)))
	return nil
}

func (b *Bridge) createSpaces() error {
	spaces, res := xr.Enumerate(func(dst []xr.ReferenceSpaceType) (uint32, xr.Result) {
		return b.rt.EnumerateReferenceSpaces(b.session, dst)
	})
	if res.Failed() {
		return errors.SessionCreate(errors.KindSpaceCreate, "xrEnumerateReferenceSpaces", res, "enumerate reference spaces")
	}

	play := b.cfg.XRReferenceSpace()
	var hasPlay, hasView bool
	for _, s := range spaces {
		switch s {
		case play:
			hasPlay = true
		case xr.ReferenceSpaceTypeView:
			hasView = true
		}
	}
	if !hasPlay {
		return errors.New(errors.PhaseSession, errors.KindSpaceCreate).
			Path("play_space").
			Value(play.String()).
			Detail("reference space %s not supported", play).
			Build()
	}
	if !hasView {
		return errors.New(errors.PhaseSession, errors.KindSpaceCreate).
			Path("view_space").
			Detail("view reference space not supported").
			Build()
	}

	space, res := b.rt.CreateReferenceSpace(b.session, &xr.ReferenceSpaceCreateInfo{
		ReferenceSpaceType:   play,
		PoseInReferenceSpace: xr.IdentityPose,
	})
	if res.Failed() {
		return errors.New(errors.PhaseSession, errors.KindSpaceCreate).
			Path("play_space").
			Call("xrCreateReferenceSpace", res).
			Build()
	}
	b.playSpace = space

	space, res = b.rt.CreateReferenceSpace(b.session, &xr.ReferenceSpaceCreateInfo{
		ReferenceSpaceType:   xr.ReferenceSpaceTypeView,
		PoseInReferenceSpace: xr.IdentityPose,
	})
	if res.Failed() {
		return errors.New(errors.PhaseSession, errors.KindSpaceCreate).
			Path("view_space").
			Call("xrCreateReferenceSpace", res).
			Build()
	}
	b.viewSpace = space
	return nil
}

// destroySession ends a running session and releases everything that hangs
// off it: the swapchain, action spaces and reference spaces.
func (b *Bridge) destroySession() {
	if b.running {
		if res := b.rt.EndSession(b.session); res.Failed() {
			b.logFailure("xrEndSession", res)
		}
		b.running = false
	}

	b.destroySwapchain()

	b.actions.Each(func(_ handle.Handle, a *action) bool {
		a.destroySpaces()
		return true
	})
	b.actionSets.Each(func(_ handle.Handle, s *actionSet) bool {
		s.attached = false
		return true
	})

	for _, sp := range []*xr.Space{&b.viewSpace, &b.playSpace} {
		if *sp == 0 {
			continue
		}
		if res := b.rt.DestroySpace(*sp); res.Failed() {
			b.logFailure("xrDestroySpace", res)
		}
		*sp = 0
	}

	b.registry.SessionDestroyed()
	if res := b.rt.DestroySession(b.session); res.Failed() {
		b.logFailure("xrDestroySession", res)
	}
	b.session = 0
	b.state = xr.SessionStateUnknown
	b.swapchainFormats = nil
	b.frame = frameState{}
	b.headConfidence = ConfidenceNone
}

// selectSwapchainFormat picks the first adapter format the runtime supports.
func (b *Bridge) selectSwapchainFormat() (int64, error) {
	usable := b.adapter.UsableSwapchainFormats()
	if len(usable) == 0 {
		return 0, errors.New(errors.PhaseSession, errors.KindSwapchainCreate).
			Detail("graphics adapter %s offers no swapchain formats", b.adapter.Name()).
			Build()
	}
	for _, f := range usable {
		for _, s := range b.swapchainFormats {
			if f == s {
				return f, nil
			}
		}
	}
	Logger().Warn("no usable swapchain format supported by runtime, using first preferred",
		zap.String("format", b.adapter.SwapchainFormatName(usable[0])))
	return usable[0], nil
}

// createSwapchain creates the main swapchain sized for the first view with
// one array layer per view.
func (b *Bridge) createSwapchain() error {
	if b.swapchain != nil {
		return nil
	}
	if len(b.viewConfigViews) == 0 {
		return errors.NotInitialized(errors.PhaseSession, "view configuration")
	}
	format, err := b.selectSwapchainFormat()
	if err != nil {
		return err
	}

	view := b.viewConfigViews[0]
	info := &xr.SwapchainCreateInfo{
		Next:        b.registry.SwapchainCreateChain(nil),
		UsageFlags:  xr.SwapchainUsageSampled | xr.SwapchainUsageColorAttachment,
		Format:      format,
		SampleCount: view.RecommendedSwapchainSampleCount,
		Width:       view.RecommendedImageRectWidth,
		Height:      view.RecommendedImageRectHeight,
		FaceCount:   1,
		ArraySize:   uint32(len(b.viewConfigViews)),
		MipCount:    1,
	}
	sc, res := b.rt.CreateSwapchain(b.session, info)
	if res.Failed() {
		return errors.New(errors.PhaseSession, errors.KindSwapchainCreate).
			Call("xrCreateSwapchain", res).
			Value(format).
			Detail("format %s, %dx%d", b.adapter.SwapchainFormatName(format), info.Width, info.Height).
			Build()
	}

	data, err := b.adapter.SwapchainImageData(sc, format, info.Width, info.Height, info.SampleCount, info.ArraySize)
	if err != nil {
		if res := b.rt.DestroySwapchain(sc); res.Failed() {
			b.logFailure("xrDestroySwapchain", res)
		}
		return errors.Wrap(errors.PhaseSession, errors.KindSwapchainCreate, err, "swapchain image data")
	}

	b.swapchain = &swapchain{
		handle:    sc,
		data:      data,
		format:    format,
		width:     info.Width,
		height:    info.Height,
		samples:   info.SampleCount,
		arraySize: info.ArraySize,
	}

	b.projectionViews = make([]xr.CompositionLayerProjectionView, len(b.viewConfigViews))
	for i, v := range b.viewConfigViews {
		b.projectionViews[i] = xr.CompositionLayerProjectionView{
			Pose: xr.IdentityPose,
			SubImage: xr.SwapchainSubImage{
				Swapchain: sc,
				ImageRect: xr.Rect2Di{Extent: xr.Extent2Di{
					Width:  int32(v.RecommendedImageRectWidth),
					Height: int32(v.RecommendedImageRectHeight),
				}},
				ImageArrayIndex: uint32(i),
			},
		}
	}

	Logger().Info("swapchain created",
		zap.String("format", b.adapter.SwapchainFormatName(format)),
		zap.Uint32("width", info.Width),
		zap.Uint32("height", info.Height),
		zap.Uint32("samples", info.SampleCount),
		zap.Uint32("array_size", info.ArraySize))
	return nil
}

func (b *Bridge) destroySwapchain() {
	sc := b.swapchain
	if sc == nil {
		return
	}
	if b.adapter != nil {
		b.adapter.CleanupSwapchainData(sc.data)
	}
	if res := b.rt.DestroySwapchain(sc.handle); res.Failed() {
		b.logFailure("xrDestroySwapchain", res)
	}
	b.swapchain = nil
	b.projectionViews = nil
}

// Swapchain returns the main swapchain handle, or 0 without one.
func (b *Bridge) Swapchain() xr.Swapchain {
	if b.swapchain == nil {
		return 0
	}
	return b.swapchain.handle
}

// SwapchainFormat returns the main swapchain's format, or 0 without one.
func (b *Bridge) SwapchainFormat() int64 {
	if b.swapchain == nil {
		return 0
	}
	return b.swapchain.format
}

// SwapchainFormats returns the formats the runtime supports for this session.
func (b *Bridge) SwapchainFormats() []int64 {
	return append([]int64(nil), b.swapchainFormats...)
}

// RequestExit asks the runtime to end the running session. The session then
// walks down to stopping through the usual events.
func (b *Bridge) RequestExit() error {
	if !b.running {
		return errors.NotRunning(errors.PhaseSession)
	}
	if res := b.rt.RequestExitSession(b.session); res.Failed() {
		b.logFailure("xrRequestExitSession", res)
		return errors.RuntimeCall(errors.PhaseSession, errors.KindRuntimeCall, "xrRequestExitSession", res)
	}
	return nil
}
