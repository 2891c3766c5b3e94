package openxr

import (
	"go.uber.org/zap"

	"github.com/wippyai/xr-bridge/xr"
)

// Process runs one host tick: it drains the event queue and, while the
// session runs, broadcasts OnProcess. It reports whether frames should be
// issued this tick.
func (b *Bridge) Process() bool {
	if !b.PollEvents() {
		return false
	}
	if !b.running {
		return false
	}
	b.registry.Process()
	return true
}

// PollEvents drains the runtime's event queue. It returns false when polling
// failed or the instance is about to be lost.
func (b *Bridge) PollEvents() bool {
	if b.instance == 0 {
		return false
	}
	for {
		ev, res := b.rt.PollEvent(b.instance)
		if res == xr.EventUnavailable {
			return true
		}
		if res.Failed() {
			b.logFailure("xrPollEvent", res)
			return false
		}
		if ev == nil {
			return true
		}

		if b.registry.EventPolled(ev) {
			continue
		}

		switch e := ev.(type) {
		case *xr.EventDataEventsLost:
			Logger().Warn("runtime dropped events", zap.Uint32("count", e.LostEventCount))
		case *xr.EventDataInstanceLossPending:
			Logger().Warn("instance loss pending", zap.Int64("loss_time", int64(e.LossTime)))
			return false
		case *xr.EventDataSessionStateChanged:
			if e.Session != b.session {
				Logger().Debug("state change for unknown session ignored")
				continue
			}
			b.onStateChanged(e.State)
		case *xr.EventDataReferenceSpaceChangePending:
			Logger().Debug("reference space change pending",
				zap.String("space", e.ReferenceSpaceType.String()),
				zap.Bool("pose_valid", e.PoseValid))
			if e.PoseValid {
				b.host.OnPoseRecentered()
			}
		case *xr.EventDataInteractionProfileChanged:
			b.checkTrackerProfiles()
		case *xr.EventDataVisibilityMaskChanged:
			Logger().Debug("visibility mask changed", zap.Uint32("view", e.ViewIndex))
		default:
			Logger().Debug("unhandled event", zap.String("event", ev.EventName()))
		}
	}
}

// onStateChanged is the only writer of the session state.
func (b *Bridge) onStateChanged(state xr.SessionState) {
	if !state.Valid() || state == xr.SessionStateUnknown {
		Logger().Debug("unknown session state ignored", zap.Int32("state", int32(state)))
		return
	}
	Logger().Info("session state", zap.String("from", b.state.String()), zap.String("to", state.String()))
	b.state = state

	switch state {
	case xr.SessionStateIdle:
		b.registry.State(state)
	case xr.SessionStateReady:
		b.onReady()
	case xr.SessionStateSynchronized:
		b.checkTrackerProfiles()
		b.registry.State(state)
	case xr.SessionStateVisible:
		b.registry.State(state)
		b.host.OnStateVisible()
	case xr.SessionStateFocused:
		b.registry.State(state)
		b.host.OnStateFocused()
	case xr.SessionStateStopping:
		b.host.OnStateStopping()
		b.registry.State(state)
		if b.running {
			if res := b.rt.EndSession(b.session); res.Failed() {
				b.logFailure("xrEndSession", res)
			}
		}
		b.running = false
	case xr.SessionStateLossPending:
		b.registry.State(state)
		if h, ok := b.host.(LossHandler); ok {
			h.OnStateLossPending()
		}
		b.running = false
	case xr.SessionStateExiting:
		b.registry.State(state)
		if h, ok := b.host.(LossHandler); ok {
			h.OnStateExiting()
		}
	}
}

func (b *Bridge) onReady() {
	res := b.rt.BeginSession(b.session, &xr.SessionBeginInfo{
		PrimaryViewConfigurationType: b.cfg.XRViewConfiguration(),
	})
	if res.Failed() {
		b.logFailure("xrBeginSession", res)
		return
	}
	if err := b.createSwapchain(); err != nil {
		Logger().Error("swapchain not created", zap.Error(err))
	}
	b.running = true
	b.registry.State(xr.SessionStateReady)
	b.host.OnStateReady()
}
