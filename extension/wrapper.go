package extension

import (
	"github.com/wippyai/xr-bridge/xr"
)

// Wrapper is a pluggable module that requests runtime extensions, observes
// the bridge lifecycle and splices structures into create-info chains.
// Embed Base to get no-op defaults.
type Wrapper interface {
	// RequestedExtensions maps extension names to out-flags. The bridge sets
	// a flag to whether the extension was enabled. A nil flag marks the
	// extension mandatory: initialization fails if the runtime lacks it.
	RequestedExtensions() map[string]*bool

	OnInstanceCreated(instance xr.Instance)
	OnInstanceDestroyed()
	OnSessionCreated(session xr.Session)
	OnSessionDestroyed()

	OnStateIdle()
	OnStateReady()
	OnStateSynchronized()
	OnStateVisible()
	OnStateFocused()
	OnStateStopping()
	OnStateLossPending()
	OnStateExiting()

	OnPreRender()
	OnProcess()

	// OnEventPolled reports whether the wrapper consumed the event.
	OnEventPolled(ev xr.Event) bool

	// The *Next hooks receive the current chain head and return the new head.
	InstanceCreateNext(next *xr.Chain) *xr.Chain
	SessionCreateNext(next *xr.Chain) *xr.Chain
	SwapchainCreateNext(next *xr.Chain) *xr.Chain
	SystemPropertiesNext(next *xr.Chain) *xr.Chain
}

// CompositionLayerProvider contributes a layer at end of frame.
// A nil layer means nothing to submit this frame.
type CompositionLayerProvider interface {
	CompositionLayer() xr.CompositionLayer
}

// Base implements every Wrapper hook as a no-op.
type Base struct{}

func (Base) RequestedExtensions() map[string]*bool { return nil }

func (Base) OnInstanceCreated(xr.Instance) {}
func (Base) OnInstanceDestroyed()          {}
func (Base) OnSessionCreated(xr.Session)   {}
func (Base) OnSessionDestroyed()           {}

func (Base) OnStateIdle()         {}
func (Base) OnStateReady()        {}
func (Base) OnStateSynchronized() {}
func (Base) OnStateVisible()      {}
func (Base) OnStateFocused()      {}
func (Base) OnStateStopping()     {}
func (Base) OnStateLossPending()  {}
func (Base) OnStateExiting()      {}

func (Base) OnPreRender() {}
func (Base) OnProcess()   {}

func (Base) OnEventPolled(xr.Event) bool { return false }

func (Base) InstanceCreateNext(next *xr.Chain) *xr.Chain   { return next }
func (Base) SessionCreateNext(next *xr.Chain) *xr.Chain    { return next }
func (Base) SwapchainCreateNext(next *xr.Chain) *xr.Chain  { return next }
func (Base) SystemPropertiesNext(next *xr.Chain) *xr.Chain { return next }

var _ Wrapper = Base{}
