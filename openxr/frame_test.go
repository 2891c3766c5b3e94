package openxr

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	xrerrors "github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/xr"
)

func runFrame(t *testing.T, b *Bridge) {
	t.Helper()
	ctx := context.Background()
	if err := b.PreRender(ctx); err != nil {
		t.Fatalf("PreRender: %v", err)
	}
	if b.PreDrawViewport() {
		if err := b.PostDrawViewport(ctx, renderTarget(b)); err != nil {
			t.Fatalf("PostDrawViewport: %v", err)
		}
	}
	if err := b.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
}

func TestFrame_StereoCycle(t *testing.T) {
	f := newRunning(t)

	sc := f.bridge.swapchain
	if sc == nil {
		t.Fatal("swapchain not created on ready")
	}
	info, ok := f.rt.SwapchainInfo(sc.handle)
	if !ok {
		t.Fatal("swapchain unknown to runtime")
	}
	if info.ArraySize != 2 || info.Width != 1600 || info.Height != 1600 || info.SampleCount != 1 {
		t.Fatalf("swapchain info = %+v", info)
	}

	runFrame(t, f.bridge)

	frames := f.rt.Frames()
	if len(frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(frames))
	}
	if len(frames[0].Layers) != 1 {
		t.Fatalf("layers = %d, want 1", len(frames[0].Layers))
	}
	proj, ok := frames[0].Layers[0].(*xr.CompositionLayerProjection)
	if !ok {
		t.Fatalf("layer is %T", frames[0].Layers[0])
	}
	if len(proj.Views) != 2 {
		t.Errorf("view count = %d, want 2", len(proj.Views))
	}
	if proj.LayerFlags&xr.CompositionLayerCorrectChromaticAberration == 0 {
		t.Error("missing chromatic aberration flag")
	}
	if proj.LayerFlags&xr.CompositionLayerBlendTextureSourceAlpha != 0 {
		t.Error("alpha blend flag set without other layers")
	}
	for i, v := range proj.Views {
		if v.SubImage.ImageArrayIndex != uint32(i) || v.SubImage.Swapchain != sc.handle {
			t.Errorf("view %d sub-image = %+v", i, v.SubImage)
		}
	}
	if proj.Views[0].Pose.Position.X >= 0 {
		t.Errorf("left view pose not copied: %+v", proj.Views[0].Pose)
	}
	if frames[0].DisplayTime != f.bridge.FrameState().PredictedDisplayTime {
		t.Errorf("display time = %d", frames[0].DisplayTime)
	}

	order := []string{"xrWaitFrame", "xrLocateViews", "xrBeginFrame", "xrAcquireSwapchainImage",
		"xrWaitSwapchainImage", "xrReleaseSwapchainImage", "xrEndFrame"}
	calls := f.rt.Calls()
	pos := 0
	for _, c := range calls {
		if pos < len(order) && c == order[pos] {
			pos++
		}
	}
	if pos != len(order) {
		t.Errorf("call order broken at %q: %v", order[pos], calls)
	}
}

func TestFrame_InvalidViewPose(t *testing.T) {
	f := newRunning(t)
	f.rt.SetViewStateFlags(xr.ViewStateOrientationValid | xr.ViewStateOrientationTracked)

	runFrame(t, f.bridge)

	if f.bridge.ViewPoseValid() {
		t.Error("view pose should be invalid")
	}
	frames := f.rt.Frames()
	if len(frames) != 1 || len(frames[0].Layers) != 0 {
		t.Fatalf("frames = %+v, want one frame with no layers", frames)
	}
	if n := f.rt.CallCount("xrReleaseSwapchainImage"); n != 1 {
		t.Errorf("release count = %d, want 1", n)
	}
}

func TestFrame_ShouldNotRender(t *testing.T) {
	f := newRunning(t)
	no := false
	f.rt.SetShouldRender(&no)

	runFrame(t, f.bridge)

	if n := f.rt.CallCount("xrAcquireSwapchainImage"); n != 0 {
		t.Errorf("acquired %d images", n)
	}
	if n := f.rt.CallCount("xrReleaseSwapchainImage"); n != 0 {
		t.Errorf("released %d images", n)
	}
	frames := f.rt.Frames()
	if len(frames) != 1 || len(frames[0].Layers) != 0 {
		t.Fatalf("frames = %+v", frames)
	}
}

func TestFrame_DisplayPeriodClamp(t *testing.T) {
	tests := []struct {
		period xr.Duration
		want   xr.Duration
	}{
		{11111111, 11111111},
		{500000000, 500000000},
		{600000000, 0},
	}

	for _, tt := range tests {
		f := newRunning(t)
		f.rt.SetDisplayPeriod(tt.period)
		runFrame(t, f.bridge)
		if got := f.bridge.FrameState().PredictedDisplayPeriod; got != tt.want {
			t.Errorf("period %d: stored %d, want %d", tt.period, got, tt.want)
		}
	}
}

func TestFrame_WaitImageTimeout(t *testing.T) {
	f := newRunning(t)
	ctx := context.Background()
	f.rt.FailNext("xrWaitSwapchainImage", xr.TimeoutExpired, 1)

	if err := f.bridge.PreRender(ctx); err != nil {
		t.Fatalf("PreRender: %v", err)
	}
	if err := f.bridge.PostDrawViewport(ctx, renderTarget(f.bridge)); err == nil {
		t.Fatal("expected timeout error")
	}
	if f.bridge.ImageAcquired() {
		t.Fatal("timeout must not mark the image acquired")
	}
	if err := f.bridge.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if n := f.rt.CallCount("xrReleaseSwapchainImage"); n != 0 {
		t.Errorf("release issued for unacquired image")
	}
	if frames := f.rt.Frames(); len(frames) != 1 || len(frames[0].Layers) != 0 {
		t.Fatalf("frames = %+v", frames)
	}

	runFrame(t, f.bridge)

	if n := f.rt.CallCount("xrAcquireSwapchainImage"); n != 1 {
		t.Errorf("acquire count = %d, want 1", n)
	}
	if n := f.rt.CallCount("xrReleaseSwapchainImage"); n != 1 {
		t.Errorf("release count = %d, want 1", n)
	}
	frames := f.rt.Frames()
	if len(frames) != 2 || len(frames[1].Layers) != 1 {
		t.Fatalf("second frame = %+v", frames)
	}
}

func TestFrame_CopyFailureSubmitsNoLayers(t *testing.T) {
	f := newRunning(t)
	ctx := context.Background()

	if err := f.bridge.PreRender(ctx); err != nil {
		t.Fatalf("PreRender: %v", err)
	}
	if err := f.bridge.PostDrawViewport(ctx, "not an image"); err == nil {
		t.Fatal("expected copy error")
	}
	if err := f.bridge.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if n := f.rt.CallCount("xrReleaseSwapchainImage"); n != 1 {
		t.Errorf("release count = %d, want 1", n)
	}
	if frames := f.rt.Frames(); len(frames) != 1 || len(frames[0].Layers) != 0 {
		t.Fatalf("frames = %+v", frames)
	}

	runFrame(t, f.bridge)
	if frames := f.rt.Frames(); len(frames) != 2 || len(frames[1].Layers) != 1 {
		t.Fatalf("second frame = %+v", frames)
	}
}

func TestFrame_ImageStillAcquired(t *testing.T) {
	f := newRunning(t)
	ctx := context.Background()

	if err := f.bridge.PreRender(ctx); err != nil {
		t.Fatalf("PreRender: %v", err)
	}
	if err := f.bridge.PostDrawViewport(ctx, renderTarget(f.bridge)); err != nil {
		t.Fatalf("PostDrawViewport: %v", err)
	}
	waits := f.rt.CallCount("xrWaitFrame")

	err := f.bridge.PreRender(ctx)
	if !errors.Is(err, xrerrors.ErrImageAcquired) {
		t.Fatalf("err = %v, want image_acquired", err)
	}
	if n := f.rt.CallCount("xrWaitFrame"); n != waits {
		t.Error("no runtime call should be made")
	}
}

func TestFrame_PostDrawOncePerFrame(t *testing.T) {
	f := newRunning(t)
	ctx := context.Background()
	target := renderTarget(f.bridge)

	if err := f.bridge.PreRender(ctx); err != nil {
		t.Fatalf("PreRender: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := f.bridge.PostDrawViewport(ctx, target); err != nil {
			t.Fatalf("PostDrawViewport: %v", err)
		}
	}
	if n := f.rt.CallCount("xrAcquireSwapchainImage"); n != 1 {
		t.Errorf("acquire count = %d, want 1", n)
	}
}

func TestFrame_WaitFrameFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	f := newRunning(t)
	f.rt.FailNext("xrWaitFrame", xr.ErrorRuntimeFailure, 1)

	if err := f.bridge.PreRender(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if f.bridge.NextFrameTime() != 0 {
		t.Error("frame state should be reset")
	}
	if f.bridge.PreDrawViewport() {
		t.Error("failed frame should not render")
	}

	entries := logs.FilterField(zap.String("call", "xrWaitFrame")).All()
	if len(entries) != 1 {
		t.Fatalf("logged %d wait failures", len(entries))
	}
	if got := entries[0].ContextMap()["result"]; got != "XR_ERROR_RUNTIME_FAILURE" {
		t.Errorf("result field = %v", got)
	}

	runFrame(t, f.bridge)
	if n := len(f.rt.Frames()); n != 1 {
		t.Errorf("frames = %d, want 1 after recovery", n)
	}
}

func TestFrame_NotRunning(t *testing.T) {
	f := newFixture(t, defaultSim(), defaultSettings())
	if err := f.bridge.PreRender(context.Background()); !errors.Is(err, &xrerrors.Error{Phase: xrerrors.PhaseFrame, Kind: xrerrors.KindNotRunning}) {
		t.Fatalf("err = %v", err)
	}
	if err := f.bridge.EndFrame(); err != nil {
		t.Fatalf("EndFrame without frame: %v", err)
	}
}

type quadProvider struct {
	layer xr.CompositionLayer
}

func (p *quadProvider) CompositionLayer() xr.CompositionLayer { return p.layer }

func TestFrame_ProviderLayers(t *testing.T) {
	f := newRunning(t)
	quad := &xr.CompositionLayerQuad{Space: f.bridge.PlaySpace(), Size: xr.Vector2f{X: 1, Y: 1}}
	if err := f.registry.RegisterLayerProvider(&quadProvider{layer: quad}); err != nil {
		t.Fatal(err)
	}
	if err := f.registry.RegisterLayerProvider(&quadProvider{}); err != nil {
		t.Fatal(err)
	}

	runFrame(t, f.bridge)

	layers := f.rt.Frames()[0].Layers
	if len(layers) != 2 {
		t.Fatalf("layers = %d, want 2", len(layers))
	}
	if layers[0] != xr.CompositionLayer(quad) {
		t.Errorf("first layer = %T", layers[0])
	}
	proj := layers[1].(*xr.CompositionLayerProjection)
	want := xr.CompositionLayerCorrectChromaticAberration | xr.CompositionLayerBlendTextureSourceAlpha
	if proj.LayerFlags != want {
		t.Errorf("flags = %#x, want %#x", proj.LayerFlags, want)
	}
}

func TestViewsAndHead(t *testing.T) {
	f := newRunning(t)
	if _, ok := f.bridge.ViewTransform(0); ok {
		t.Error("view transform before first frame")
	}
	if got := f.bridge.HeadCenter(); got.Confidence != ConfidenceNone {
		t.Errorf("head before first frame = %v", got.Confidence)
	}

	runFrame(t, f.bridge)

	tr, ok := f.bridge.ViewTransform(1)
	if !ok || tr.Origin.X() <= 0 {
		t.Errorf("right view = %+v", tr)
	}
	proj, ok := f.bridge.ViewProjection(0, 0.05, 100)
	if !ok || proj[0] == 0 {
		t.Errorf("projection = %v", proj)
	}
	if _, ok := f.bridge.ViewTransform(2); ok {
		t.Error("view 2 should not exist")
	}

	head := f.bridge.HeadCenter()
	if head.Confidence != ConfidenceHigh {
		t.Errorf("head confidence = %v", head.Confidence)
	}
	if y := head.Transform.Origin.Y(); y < 1.59 || y > 1.61 {
		t.Errorf("head height = %v", y)
	}
	if f.bridge.NextFrameTime() != f.bridge.FrameState().PredictedDisplayTime+xr.Time(f.bridge.FrameState().PredictedDisplayPeriod) {
		t.Error("next frame time mismatch")
	}
}
