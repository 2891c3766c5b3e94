package sim

import (
	"image/draw"

	"github.com/wippyai/xr-bridge/xr"
)

// FrameRecord is a submitted EndFrame.
type FrameRecord struct {
	Layers      []xr.CompositionLayer
	DisplayTime xr.Time
	BlendMode   xr.EnvironmentBlendMode
}

// HapticRecord is an applied haptic vibration.
type HapticRecord struct {
	Action    string
	Path      string
	Duration  xr.Duration
	Frequency float32
	Amplitude float32
}

// Fail makes every subsequent call to the named entry point return res.
func (r *Runtime) Fail(call string, res xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[call] = failure{res: res, remain: -1}
}

// FailNext makes the next n calls to the named entry point return res.
func (r *Runtime) FailNext(call string, res xr.Result, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 {
		return
	}
	r.failures[call] = failure{res: res, remain: n}
}

// Heal removes an injected failure.
func (r *Runtime) Heal(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failures, call)
}

// Calls returns a copy of the call log.
func (r *Runtime) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// CallCount returns how many times the named entry point was called.
func (r *Runtime) CallCount(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log.
func (r *Runtime) ResetCalls() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// PushEvent queues an event for PollEvent.
func (r *Runtime) PushEvent(ev xr.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.push(ev)
}

// PushSessionState queues a state change for the current session.
func (r *Runtime) PushSessionState(state xr.SessionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushState(state)
}

// PendingEvents returns the number of queued events.
func (r *Runtime) PendingEvents() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// SessionState returns the last state delivered through PollEvent.
func (r *Runtime) SessionState() xr.SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionState
}

// Running reports whether the session has been begun and not ended.
func (r *Runtime) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Instance returns the live instance handle, or 0.
func (r *Runtime) Instance() xr.Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.instance
}

// Session returns the live session handle, or 0.
func (r *Runtime) Session() xr.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// SetDisplayPeriod overrides the predicted display period reported by WaitFrame.
func (r *Runtime) SetDisplayPeriod(d xr.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.period = d
}

// SetShouldRender forces WaitFrame's shouldRender. Nil restores the
// state-derived default.
func (r *Runtime) SetShouldRender(v *bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shouldRender = v
}

// SetViewStateFlags sets the flags LocateViews reports.
func (r *Runtime) SetViewStateFlags(flags xr.ViewStateFlags) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewFlags = flags
}

// SetHeadLocation sets the view space location relative to any base space.
func (r *Runtime) SetHeadLocation(loc xr.SpaceLocation, vel xr.SpaceVelocity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.headLocation = loc
	r.headVelocity = vel
}

// SetPoseLocation sets what an action space for (action, subaction path)
// locates to once actions are synced.
func (r *Runtime) SetPoseLocation(actionName, subactionPath string, loc xr.SpaceLocation, vel xr.SpaceVelocity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.poseLocations[actionName+"|"+subactionPath] = poseState{location: loc, velocity: vel}
}

// SetBool sets a boolean action state for the subaction path.
func (r *Runtime) SetBool(actionName, subactionPath string, v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boolStates[stateKey{action: actionName, path: subactionPath}] = v
}

// SetFloat sets a float action state for the subaction path.
func (r *Runtime) SetFloat(actionName, subactionPath string, v float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.floatStates[stateKey{action: actionName, path: subactionPath}] = v
}

// SetVector2 sets a 2-D action state for the subaction path.
func (r *Runtime) SetVector2(actionName, subactionPath string, v xr.Vector2f) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vec2States[stateKey{action: actionName, path: subactionPath}] = v
}

// SetInteractionProfile binds a profile to a top-level path and queues an
// interaction profile changed event. An empty profile unbinds.
func (r *Runtime) SetInteractionProfile(topLevel, profile string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	top := r.intern(topLevel)
	if profile == "" {
		delete(r.currentProfiles, top)
	} else {
		r.currentProfiles[top] = r.intern(profile)
	}
	if r.session != 0 {
		r.push(&xr.EventDataInteractionProfileChanged{Session: r.session})
	}
}

// SuggestedBindings returns binding path strings suggested for a profile,
// keyed by action name.
func (r *Runtime) SuggestedBindings(profile string) (map[string][]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.paths[profile]
	if !ok {
		return nil, false
	}
	bindings, ok := r.suggested[p]
	if !ok {
		return nil, false
	}
	out := make(map[string][]string)
	for _, b := range bindings {
		name := ""
		if a := r.actions[b.Action]; a != nil {
			name = a.name
		}
		out[name] = append(out[name], r.pathNames[b.Binding])
	}
	return out, true
}

// Frames returns the submitted frames.
func (r *Runtime) Frames() []FrameRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FrameRecord(nil), r.frames...)
}

// Haptics returns the applied haptic vibrations.
func (r *Runtime) Haptics() []HapticRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]HapticRecord(nil), r.haptics...)
}

// SpaceCount returns the number of live spaces.
func (r *Runtime) SpaceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spaces)
}

// ActionSpaceCount returns the number of live action spaces.
func (r *Runtime) ActionSpaceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.spaces {
		if s.action != 0 {
			n++
		}
	}
	return n
}

// ActionCount returns the number of live actions.
func (r *Runtime) ActionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}

// ActionSetCount returns the number of live action sets.
func (r *Runtime) ActionSetCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actionSets)
}

// Attached reports whether action sets were attached to the session.
func (r *Runtime) Attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attached
}

// SwapchainInfo returns the create info of a live swapchain.
func (r *Runtime) SwapchainInfo(sc xr.Swapchain) (xr.SwapchainCreateInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.swapchains[sc]
	if !ok {
		return xr.SwapchainCreateInfo{}, false
	}
	return s.info, true
}

// SwapchainImage returns the array layers of one swapchain image.
func (r *Runtime) SwapchainImage(sc xr.Swapchain, index uint32) ([]draw.Image, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.swapchains[sc]
	if !ok || int(index) >= len(s.images) {
		return nil, false
	}
	return s.images[index], true
}

// SwapchainCount returns the number of live swapchains.
func (r *Runtime) SwapchainCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.swapchains)
}
