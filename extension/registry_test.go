package extension

import (
	"errors"
	"testing"

	xrerrors "github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/xr"
)

type recordingWrapper struct {
	Base
	name     string
	log      *[]string
	requests map[string]*bool
	consume  bool
}

func (w *recordingWrapper) RequestedExtensions() map[string]*bool { return w.requests }

func (w *recordingWrapper) OnInstanceCreated(xr.Instance) {
	*w.log = append(*w.log, w.name+":instance_created")
}

func (w *recordingWrapper) OnInstanceDestroyed() {
	*w.log = append(*w.log, w.name+":instance_destroyed")
}

func (w *recordingWrapper) OnStateStopping() {
	*w.log = append(*w.log, w.name+":stopping")
}

func (w *recordingWrapper) OnEventPolled(xr.Event) bool {
	*w.log = append(*w.log, w.name+":event")
	return w.consume
}

func (w *recordingWrapper) SessionCreateNext(next *xr.Chain) *xr.Chain {
	return xr.Prepend(next, w.name)
}

type quadProvider struct {
	layer xr.CompositionLayer
}

func (p *quadProvider) CompositionLayer() xr.CompositionLayer { return p.layer }

func TestRegistry_RegisterValidation(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(nil); !errors.Is(err, &xrerrors.Error{Phase: xrerrors.PhaseRegistry, Kind: xrerrors.KindInvalidInput}) {
		t.Fatalf("Register(nil) = %v", err)
	}

	var log []string
	w := &recordingWrapper{name: "a", log: &log}
	if err := r.Register(w); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(w); err == nil {
		t.Fatal("duplicate Register should fail")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d", r.Len())
	}
	if !r.Unregister(w) || r.Unregister(w) {
		t.Fatal("Unregister should succeed once")
	}
}

func TestRegistry_BroadcastOrder(t *testing.T) {
	var log []string
	r := NewRegistry()
	r.Register(&recordingWrapper{name: "a", log: &log})
	r.Register(&recordingWrapper{name: "b", log: &log})

	r.InstanceCreated(1)
	r.InstanceDestroyed()

	want := []string{"a:instance_created", "b:instance_created", "a:instance_destroyed", "b:instance_destroyed"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
}

func TestRegistry_State(t *testing.T) {
	var log []string
	r := NewRegistry()
	r.Register(&recordingWrapper{name: "a", log: &log})

	r.State(xr.SessionStateStopping)
	r.State(xr.SessionState(99))

	if len(log) != 1 || log[0] != "a:stopping" {
		t.Fatalf("log = %v", log)
	}
}

func TestRegistry_EventPolledVisitsAll(t *testing.T) {
	var log []string
	r := NewRegistry()
	r.Register(&recordingWrapper{name: "a", log: &log, consume: true})
	r.Register(&recordingWrapper{name: "b", log: &log})

	if !r.EventPolled(&xr.EventDataEventsLost{}) {
		t.Fatal("event should be reported handled")
	}
	if len(log) != 2 {
		t.Fatalf("every wrapper should see the event: %v", log)
	}
}

func TestRegistry_CollectRequestedExtensions(t *testing.T) {
	var log []string
	var aFlag, bFlag, cFlag bool
	r := NewRegistry()
	r.Register(&recordingWrapper{name: "a", log: &log, requests: map[string]*bool{
		"XR_EXT_shared": &aFlag,
		"XR_KHR_gfx":    nil,
	}})
	r.Register(&recordingWrapper{name: "b", log: &log, requests: map[string]*bool{
		"XR_EXT_shared": &bFlag,
		"XR_EXT_only_b": &cFlag,
	}})

	reqs := r.CollectRequestedExtensions()
	if len(reqs) != 3 {
		t.Fatalf("requests = %+v", reqs)
	}
	if reqs[0].Name != "XR_EXT_only_b" || reqs[1].Name != "XR_EXT_shared" || reqs[2].Name != "XR_KHR_gfx" {
		t.Fatalf("requests not sorted: %+v", reqs)
	}
	if !reqs[2].Mandatory || reqs[1].Mandatory {
		t.Fatalf("mandatory flags wrong: %+v", reqs)
	}
	if len(reqs[1].Flags) != 2 {
		t.Fatalf("shared request should carry both flags")
	}

	reqs[1].Resolve(true)
	if !aFlag || !bFlag {
		t.Fatal("Resolve should set every requester's flag")
	}
}

func TestRegistry_Chains(t *testing.T) {
	var log []string
	r := NewRegistry()
	r.Register(&recordingWrapper{name: "a", log: &log})
	r.Register(&recordingWrapper{name: "b", log: &log})

	head := r.SessionCreateChain(nil)
	values := head.Values()
	if len(values) != 2 || values[0] != "b" || values[1] != "a" {
		t.Fatalf("chain = %v, want [b a]", values)
	}

	if r.SwapchainCreateChain(nil) != nil {
		t.Fatal("no-op hooks must keep the head")
	}
}

func TestRegistry_Layers(t *testing.T) {
	r := NewRegistry()
	quad := &xr.CompositionLayerQuad{Space: 5}
	r.RegisterLayerProvider(&quadProvider{layer: quad})
	r.RegisterLayerProvider(&quadProvider{})

	layers := r.Layers()
	if len(layers) != 1 || layers[0] != quad {
		t.Fatalf("layers = %v", layers)
	}
}
