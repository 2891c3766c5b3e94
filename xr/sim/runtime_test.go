package sim

import (
	"context"
	"testing"

	"github.com/wippyai/xr-bridge/xr"
)

func newStarted(t *testing.T) (*Runtime, xr.Session) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Extensions = []string{"XR_KHR_test"}
	rt := New(cfg)

	inst, res := rt.CreateInstance(&xr.InstanceCreateInfo{
		ApplicationInfo:   xr.ApplicationInfo{ApplicationName: "test"},
		EnabledExtensions: []string{"XR_KHR_test"},
	})
	if res.Failed() {
		t.Fatalf("CreateInstance: %v", res)
	}
	sys, res := rt.GetSystem(inst, &xr.SystemGetInfo{FormFactor: xr.FormFactorHeadMountedDisplay})
	if res.Failed() {
		t.Fatalf("GetSystem: %v", res)
	}
	sess, res := rt.CreateSession(inst, &xr.SessionCreateInfo{SystemID: sys})
	if res.Failed() {
		t.Fatalf("CreateSession: %v", res)
	}
	for rt.SessionState() != xr.SessionStateReady {
		if _, res := rt.PollEvent(inst); res != xr.Success {
			t.Fatalf("PollEvent: %v", res)
		}
	}
	if res := rt.BeginSession(sess, &xr.SessionBeginInfo{PrimaryViewConfigurationType: xr.ViewConfigurationTypePrimaryStereo}); res.Failed() {
		t.Fatalf("BeginSession: %v", res)
	}
	return rt, sess
}

func TestRuntime_UnsupportedExtension(t *testing.T) {
	rt := New(DefaultConfig())
	_, res := rt.CreateInstance(&xr.InstanceCreateInfo{
		ApplicationInfo:   xr.ApplicationInfo{ApplicationName: "test"},
		EnabledExtensions: []string{"FOO"},
	})
	if res != xr.ErrorExtensionNotPresent {
		t.Fatalf("res = %v, want %v", res, xr.ErrorExtensionNotPresent)
	}
}

func TestRuntime_FrameOrder(t *testing.T) {
	rt, sess := newStarted(t)

	if res := rt.BeginFrame(sess); res != xr.ErrorCallOrderInvalid {
		t.Fatalf("BeginFrame without WaitFrame = %v", res)
	}

	var fs xr.FrameState
	if res := rt.WaitFrame(context.Background(), sess, nil, &fs); res.Failed() {
		t.Fatalf("WaitFrame: %v", res)
	}
	if fs.PredictedDisplayTime == 0 {
		t.Fatal("predicted display time not advanced")
	}
	if res := rt.EndFrame(sess, &xr.FrameEndInfo{DisplayTime: fs.PredictedDisplayTime, EnvironmentBlendMode: xr.EnvironmentBlendModeOpaque}); res != xr.ErrorCallOrderInvalid {
		t.Fatalf("EndFrame without BeginFrame = %v", res)
	}
	if res := rt.BeginFrame(sess); res.Failed() {
		t.Fatalf("BeginFrame: %v", res)
	}
	if res := rt.EndFrame(sess, &xr.FrameEndInfo{DisplayTime: fs.PredictedDisplayTime, EnvironmentBlendMode: xr.EnvironmentBlendModeOpaque}); res.Failed() {
		t.Fatalf("EndFrame: %v", res)
	}
	if len(rt.Frames()) != 1 {
		t.Fatalf("Frames = %d, want 1", len(rt.Frames()))
	}
}

func TestRuntime_SwapchainAcquireDiscipline(t *testing.T) {
	rt, sess := newStarted(t)

	sc, res := rt.CreateSwapchain(sess, &xr.SwapchainCreateInfo{
		Format: 1, Width: 4, Height: 4, SampleCount: 1, FaceCount: 1, ArraySize: 2, MipCount: 1,
	})
	if res.Failed() {
		t.Fatalf("CreateSwapchain: %v", res)
	}
	images, res := xr.Enumerate(func(dst []xr.SwapchainImage) (uint32, xr.Result) {
		return rt.EnumerateSwapchainImages(sc, dst)
	})
	if res.Failed() || len(images) != 3 {
		t.Fatalf("EnumerateSwapchainImages = %d, %v", len(images), res)
	}

	if _, res := rt.AcquireSwapchainImage(sc); res.Failed() {
		t.Fatalf("Acquire: %v", res)
	}
	if _, res := rt.AcquireSwapchainImage(sc); res != xr.ErrorCallOrderInvalid {
		t.Fatalf("second Acquire = %v", res)
	}
	if res := rt.ReleaseSwapchainImage(sc); res.Failed() {
		t.Fatalf("Release: %v", res)
	}
	if res := rt.ReleaseSwapchainImage(sc); res != xr.ErrorCallOrderInvalid {
		t.Fatalf("second Release = %v", res)
	}
}

func TestRuntime_FailureInjection(t *testing.T) {
	rt, sess := newStarted(t)

	rt.FailNext("xrWaitFrame", xr.ErrorRuntimeFailure, 1)
	var fs xr.FrameState
	if res := rt.WaitFrame(context.Background(), sess, nil, &fs); res != xr.ErrorRuntimeFailure {
		t.Fatalf("first WaitFrame = %v", res)
	}
	if res := rt.WaitFrame(context.Background(), sess, nil, &fs); res.Failed() {
		t.Fatalf("second WaitFrame = %v", res)
	}
	if rt.CallCount("xrWaitFrame") != 2 {
		t.Fatalf("CallCount = %d", rt.CallCount("xrWaitFrame"))
	}
}

func TestRuntime_Paths(t *testing.T) {
	rt, _ := newStarted(t)
	inst := rt.Instance()

	for _, bad := range []string{"", "user", "/user/", "/User/hand", "/user//hand"} {
		if _, res := rt.StringToPath(inst, bad); res != xr.ErrorPathFormatInvalid {
			t.Errorf("StringToPath(%q) = %v", bad, res)
		}
	}
	p1, _ := rt.StringToPath(inst, "/user/hand/left")
	p2, _ := rt.StringToPath(inst, "/user/hand/left")
	if p1 != p2 || p1 == xr.NullPath {
		t.Fatalf("paths not interned: %v %v", p1, p2)
	}
	s, res := rt.PathToString(inst, p1)
	if res.Failed() || s != "/user/hand/left" {
		t.Fatalf("PathToString = %q, %v", s, res)
	}
}

func TestRuntime_InactiveBeforeSync(t *testing.T) {
	rt, sess := newStarted(t)
	inst := rt.Instance()

	set, _ := rt.CreateActionSet(inst, &xr.ActionSetCreateInfo{ActionSetName: "game", LocalizedActionSetName: "Game"})
	left, _ := rt.StringToPath(inst, "/user/hand/left")
	act, res := rt.CreateAction(set, &xr.ActionCreateInfo{ActionName: "fire", LocalizedActionName: "Fire", ActionType: xr.ActionTypeBooleanInput, SubactionPaths: []xr.Path{left}})
	if res.Failed() {
		t.Fatalf("CreateAction: %v", res)
	}
	rt.SetBool("fire", "/user/hand/left", true)
	if res := rt.AttachSessionActionSets(sess, &xr.SessionActionSetsAttachInfo{ActionSets: []xr.ActionSet{set}}); res.Failed() {
		t.Fatalf("Attach: %v", res)
	}

	var st xr.ActionStateBoolean
	rt.GetActionStateBoolean(sess, &xr.ActionStateGetInfo{Action: act, SubactionPath: left}, &st)
	if st.IsActive || st.CurrentState {
		t.Fatalf("state before sync = %+v", st)
	}

	rt.SyncActions(sess, &xr.ActionsSyncInfo{ActiveActionSets: []xr.ActiveActionSet{{ActionSet: set}}})
	rt.GetActionStateBoolean(sess, &xr.ActionStateGetInfo{Action: act, SubactionPath: left}, &st)
	if !st.IsActive || !st.CurrentState {
		t.Fatalf("state after sync = %+v", st)
	}

	var fs xr.ActionStateFloat
	if res := rt.GetActionStateFloat(sess, &xr.ActionStateGetInfo{Action: act}, &fs); res != xr.ErrorActionTypeMismatch {
		t.Fatalf("float read on bool action = %v", res)
	}
}
