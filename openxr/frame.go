package openxr

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/xr"
)

// frameState is what WaitFrame predicted plus the progress of the current frame.
type frameState struct {
	xr.FrameState
	begun         bool
	viewPoseValid bool
}

// FrameState returns the last predicted frame timing.
func (b *Bridge) FrameState() xr.FrameState { return b.frame.FrameState }

// ViewPoseValid reports whether every view of the current frame was located.
func (b *Bridge) ViewPoseValid() bool { return b.frame.viewPoseValid }

// ImageAcquired reports whether the current frame holds a waited swapchain image.
func (b *Bridge) ImageAcquired() bool {
	return b.swapchain != nil && b.swapchain.acquired
}

// NextFrameTime is the predicted display time of the frame after the current
// one, or 0 before the first WaitFrame.
func (b *Bridge) NextFrameTime() xr.Time {
	if b.frame.PredictedDisplayTime == 0 {
		return 0
	}
	return b.frame.PredictedDisplayTime + xr.Time(b.frame.PredictedDisplayPeriod)
}

// PreRender waits for the next frame, locates the views and begins the frame.
// Runtime failures skip the frame and are returned after logging.
func (b *Bridge) PreRender(ctx context.Context) error {
	if !b.running {
		return errors.NotRunning(errors.PhaseFrame)
	}
	if b.swapchain != nil && b.swapchain.acquired {
		return errors.ImageAcquired(b.swapchain.imageIndex)
	}

	var state xr.FrameState
	if res := b.rt.WaitFrame(ctx, b.session, &xr.FrameWaitInfo{}, &state); res.Failed() {
		b.logFailure("xrWaitFrame", res)
		b.frame = frameState{}
		return errors.RuntimeCall(errors.PhaseFrame, errors.KindRuntimeCall, "xrWaitFrame", res)
	}
	if state.PredictedDisplayPeriod > maxDisplayPeriod {
		state.PredictedDisplayPeriod = 0
	}
	b.frame = frameState{FrameState: state}

	b.registry.PreRender()

	b.locateViews()

	res := b.rt.BeginFrame(b.session)
	if res.Failed() {
		b.logFailure("xrBeginFrame", res)
		return errors.RuntimeCall(errors.PhaseFrame, errors.KindRuntimeCall, "xrBeginFrame", res)
	}
	if res == xr.FrameDiscarded {
		Logger().Debug("previous frame discarded")
	}
	b.frame.begun = true
	return nil
}

func (b *Bridge) locateViews() {
	b.frame.viewPoseValid = false
	if len(b.views) == 0 {
		return
	}

	var viewState xr.ViewState
	info := &xr.ViewLocateInfo{
		ViewConfigurationType: b.cfg.XRViewConfiguration(),
		DisplayTime:           b.frame.PredictedDisplayTime,
		Space:                 b.playSpace,
	}
	n, res := b.rt.LocateViews(b.session, info, &viewState, b.views)
	if res.Failed() {
		b.logFailure("xrLocateViews", res)
		return
	}
	if int(n) != len(b.views) {
		Logger().Warn("located view count mismatch", zap.Uint32("got", n), zap.Int("want", len(b.views)))
		return
	}
	valid := xr.ViewStateOrientationValid | xr.ViewStatePositionValid
	b.frame.viewPoseValid = viewState.ViewStateFlags&valid == valid
}

func (b *Bridge) canRender() bool {
	return b.running && b.frame.begun && b.frame.ShouldRender && b.swapchain != nil
}

// PreDrawViewport reports whether the host should render this frame.
func (b *Bridge) PreDrawViewport() bool {
	return b.canRender()
}

// PostDrawViewport copies the host render target into a swapchain image. The
// image is acquired and written once per frame; later calls are no-ops. A
// timed-out wait leaves the image held and is retried by the next frame.
func (b *Bridge) PostDrawViewport(ctx context.Context, target any) error {
	if !b.canRender() {
		return nil
	}
	sc := b.swapchain
	if sc.acquired {
		return nil
	}

	if !sc.held {
		index, res := b.rt.AcquireSwapchainImage(sc.handle)
		if res.Failed() {
			b.logFailure("xrAcquireSwapchainImage", res)
			return errors.RuntimeCall(errors.PhaseFrame, errors.KindRuntimeCall, "xrAcquireSwapchainImage", res)
		}
		sc.held = true
		sc.imageIndex = index
	}

	res := b.rt.WaitSwapchainImage(ctx, sc.handle, &xr.SwapchainImageWaitInfo{Timeout: b.opts.ImageWaitTimeout})
	if res == xr.TimeoutExpired {
		Logger().Warn("swapchain image wait timed out", zap.Uint32("index", sc.imageIndex))
		return errors.RuntimeCall(errors.PhaseFrame, errors.KindRuntimeCall, "xrWaitSwapchainImage", res)
	}
	if res.Failed() {
		b.logFailure("xrWaitSwapchainImage", res)
		return errors.RuntimeCall(errors.PhaseFrame, errors.KindRuntimeCall, "xrWaitSwapchainImage", res)
	}

	sc.acquired = true
	if err := b.adapter.CopyRenderTargetToImage(target, sc.data, sc.imageIndex); err != nil {
		Logger().Error("render target copy failed", zap.Uint32("index", sc.imageIndex), zap.Error(err))
		return errors.Wrap(errors.PhaseFrame, errors.KindRuntimeCall, err, "copy render target")
	}
	sc.written = true
	return nil
}

// EndFrame releases the acquired image and submits the frame. A frame is
// submitted with zero layers unless it should render, has a valid view pose
// and its image was written.
func (b *Bridge) EndFrame() error {
	if !b.frame.begun {
		return nil
	}
	b.frame.begun = false

	submit := b.frame.ShouldRender && b.frame.viewPoseValid && b.swapchain != nil && b.swapchain.written

	if sc := b.swapchain; sc != nil && sc.acquired {
		sc.acquired = false
		sc.held = false
		sc.written = false
		if res := b.rt.ReleaseSwapchainImage(sc.handle); res.Failed() {
			b.logFailure("xrReleaseSwapchainImage", res)
			submit = false
		}
	}

	info := &xr.FrameEndInfo{
		DisplayTime:          b.frame.PredictedDisplayTime,
		EnvironmentBlendMode: xr.EnvironmentBlendModeOpaque,
	}
	if submit {
		info.Layers = b.compositionLayers()
	}

	if res := b.rt.EndFrame(b.session, info); res.Failed() {
		b.logFailure("xrEndFrame", res, zap.Int("layers", len(info.Layers)))
		return errors.RuntimeCall(errors.PhaseFrame, errors.KindRuntimeCall, "xrEndFrame", res)
	}
	return nil
}

// compositionLayers returns provider layers followed by the projection layer.
func (b *Bridge) compositionLayers() []xr.CompositionLayer {
	for i := range b.projectionViews {
		b.projectionViews[i].Pose = b.views[i].Pose
		b.projectionViews[i].Fov = b.views[i].Fov
	}

	layers := b.registry.Layers()
	flags := xr.CompositionLayerCorrectChromaticAberration
	if len(layers) > 0 {
		flags |= xr.CompositionLayerBlendTextureSourceAlpha
	}
	projection := &xr.CompositionLayerProjection{
		Space:      b.playSpace,
		LayerFlags: flags,
		Views:      append([]xr.CompositionLayerProjectionView(nil), b.projectionViews...),
	}
	return append(layers, projection)
}

// ViewTransform returns the located transform of view i in play space.
func (b *Bridge) ViewTransform(i int) (Transform, bool) {
	if i < 0 || i >= len(b.views) || b.frame.PredictedDisplayTime == 0 {
		return IdentityTransform(), false
	}
	return poseTransform(b.views[i].Pose), true
}

// ViewProjection returns the projection matrix of view i.
func (b *Bridge) ViewProjection(i int, zNear, zFar float32) (mgl32.Mat4, bool) {
	if b.adapter == nil || i < 0 || i >= len(b.views) || b.frame.PredictedDisplayTime == 0 {
		return mgl32.Ident4(), false
	}
	return b.adapter.ProjectionFov(b.views[i].Fov, zNear, zFar), true
}

// HeadCenter locates the view space in play space at the next frame time.
func (b *Bridge) HeadCenter() PoseReading {
	t := b.NextFrameTime()
	if !b.running || t == 0 {
		return noPose()
	}

	var vel xr.SpaceVelocity
	loc := xr.SpaceLocation{Velocity: &vel}
	if res := b.rt.LocateSpace(b.viewSpace, b.playSpace, t, &loc); res.Failed() {
		b.logFailure("xrLocateSpace", res, zap.String("space", "view"))
		return noPose()
	}

	reading := readingFromLocation(loc, vel)
	if reading.Confidence != b.headConfidence {
		Logger().Info("head tracking confidence changed",
			zap.Stringer("from", b.headConfidence),
			zap.Stringer("to", reading.Confidence))
		b.headConfidence = reading.Confidence
	}
	return reading
}
