package openxr

import (
	"errors"
	"reflect"
	"testing"

	"github.com/wippyai/xr-bridge/config"
	xrerrors "github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/extension"
	"github.com/wippyai/xr-bridge/xr"
	"github.com/wippyai/xr-bridge/xr/sim"
)

// consumingWrapper swallows every event of one kind.
type consumingWrapper struct {
	extension.Base
	match func(xr.Event) bool
	seen  int
}

func (w *consumingWrapper) OnEventPolled(ev xr.Event) bool {
	if w.match(ev) {
		w.seen++
		return true
	}
	return false
}

func startWith(t *testing.T, wrappers ...extension.Wrapper) *fixture {
	t.Helper()
	f := newFixture(t, sim.DefaultConfig(), config.Default())
	for _, w := range wrappers {
		if err := f.registry.Register(w); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	if err := f.bridge.Initialize(""); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := f.bridge.InitializeSession(); err != nil {
		t.Fatalf("InitializeSession: %v", err)
	}
	if !f.bridge.Process() {
		t.Fatal("Process returned false")
	}
	return f
}

func TestState_ReadyToFocused(t *testing.T) {
	f := newFixture(t, sim.DefaultConfig(), config.Default())
	b := f.bridge
	if err := b.Initialize(""); err != nil {
		t.Fatal(err)
	}
	if err := b.InitializeSession(); err != nil {
		t.Fatal(err)
	}
	if b.IsRunning() {
		t.Fatal("running before ready was processed")
	}

	if !b.Process() {
		t.Fatal("Process returned false")
	}
	want := []string{"host:ready", "host:visible", "host:focused"}
	if !reflect.DeepEqual(*f.host.log, want) {
		t.Errorf("host log = %v, want %v", *f.host.log, want)
	}
	if !f.rt.Running() || b.Swapchain() == 0 {
		t.Error("session should be begun with a swapchain")
	}
}

func TestState_RequestExit(t *testing.T) {
	w := &lifecycleWrapper{name: "a"}
	f := newFixture(t, sim.DefaultConfig(), config.Default())
	w.log = f.host.log
	if err := f.registry.Register(w); err != nil {
		t.Fatal(err)
	}
	b := f.bridge
	if err := b.Initialize(""); err != nil {
		t.Fatal(err)
	}
	if err := b.InitializeSession(); err != nil {
		t.Fatal(err)
	}
	b.Process()
	*f.host.log = nil

	if err := b.RequestExit(); err != nil {
		t.Fatalf("RequestExit: %v", err)
	}
	if b.Process() {
		t.Error("Process should report no frames after stopping")
	}

	want := []string{"host:visible", "host:stopping", "a:stopping", "host:exiting"}
	if !reflect.DeepEqual(*f.host.log, want) {
		t.Errorf("log = %v, want %v", *f.host.log, want)
	}
	if b.State() != xr.SessionStateExiting {
		t.Errorf("state = %v, want exiting", b.State())
	}
	if b.IsRunning() {
		t.Error("still running")
	}
	if n := f.rt.CallCount("xrEndSession"); n != 1 {
		t.Errorf("xrEndSession called %d times", n)
	}
	if err := b.PreRender(t.Context()); !errors.Is(err, &xrerrors.Error{Phase: xrerrors.PhaseFrame, Kind: xrerrors.KindNotRunning}) {
		t.Errorf("PreRender after exit = %v", err)
	}
}

func TestState_LossPending(t *testing.T) {
	f := newRunning(t)
	b := f.bridge
	*f.host.log = nil

	f.rt.PushSessionState(xr.SessionStateLossPending)
	if b.Process() {
		t.Error("Process should stop frames on loss pending")
	}
	if !reflect.DeepEqual(*f.host.log, []string{"host:loss_pending"}) {
		t.Errorf("log = %v", *f.host.log)
	}
	if b.IsRunning() {
		t.Error("still running")
	}
	if n := f.rt.CallCount("xrEndSession"); n != 0 {
		t.Errorf("xrEndSession called %d times on loss", n)
	}
}

func TestState_InstanceLoss(t *testing.T) {
	f := newRunning(t)
	f.rt.PushEvent(&xr.EventDataInstanceLossPending{LossTime: 1})
	if f.bridge.Process() {
		t.Error("Process should return false on instance loss")
	}
}

func TestState_UnknownStateIgnored(t *testing.T) {
	f := newRunning(t)
	f.rt.PushSessionState(xr.SessionState(99))
	if !f.bridge.Process() {
		t.Fatal("unknown state should not stop the loop")
	}
	if f.bridge.State() != xr.SessionStateFocused {
		t.Errorf("state = %v", f.bridge.State())
	}
}

func TestState_ForeignSessionIgnored(t *testing.T) {
	f := newRunning(t)
	f.rt.PushEvent(&xr.EventDataSessionStateChanged{Session: f.bridge.Session() + 100, State: xr.SessionStateStopping})
	f.bridge.Process()
	if !f.bridge.IsRunning() {
		t.Error("event for another session changed state")
	}
}

func TestState_Recentered(t *testing.T) {
	f := newRunning(t)
	f.rt.PushEvent(&xr.EventDataReferenceSpaceChangePending{
		Session:            f.bridge.Session(),
		ReferenceSpaceType: xr.ReferenceSpaceTypeStage,
		PoseValid:          true,
	})
	f.rt.PushEvent(&xr.EventDataReferenceSpaceChangePending{
		Session:            f.bridge.Session(),
		ReferenceSpaceType: xr.ReferenceSpaceTypeStage,
	})
	f.bridge.Process()
	if f.host.recentered != 1 {
		t.Errorf("recentered = %d, want 1", f.host.recentered)
	}
}

func TestState_WrapperConsumesEvent(t *testing.T) {
	w := &consumingWrapper{match: func(ev xr.Event) bool {
		_, ok := ev.(*xr.EventDataReferenceSpaceChangePending)
		return ok
	}}
	f := startWith(t, w)
	f.rt.PushEvent(&xr.EventDataReferenceSpaceChangePending{Session: f.bridge.Session(), PoseValid: true})
	f.bridge.Process()

	if w.seen != 1 {
		t.Errorf("wrapper saw %d events", w.seen)
	}
	if f.host.recentered != 0 {
		t.Error("consumed event reached core handling")
	}
}

func TestState_PollFailure(t *testing.T) {
	f := newRunning(t)
	f.rt.FailNext("xrPollEvent", xr.ErrorRuntimeFailure, 1)
	if f.bridge.Process() {
		t.Error("Process should return false when polling fails")
	}
	if !f.bridge.Process() {
		t.Error("Process should recover on the next tick")
	}
}
